package config

import "snyk-mcp/internal/common"

// NewDefaultConfig creates a configuration with default values.
func NewDefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Name: "Snyk-MCP",
			Port: "4280",
		},
		Snyk: SnykConfig{
			Command: "snyk",
		},
		Logging: common.LoggingConfig{
			Level:      "info",
			Outputs:    []string{"console", "file"},
			FilePath:   "logs/snyk-mcp.log",
			MaxSizeMB:  100,
			MaxBackups: 3,
		},
	}
}
