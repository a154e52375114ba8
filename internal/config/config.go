// Package config loads snyk-mcp configuration from TOML files with
// environment variable overrides.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"

	"snyk-mcp/internal/common"
)

// Config represents the application configuration. It is read once at
// startup and never mutated afterwards.
type Config struct {
	Server  ServerConfig         `toml:"server"`
	Snyk    SnykConfig           `toml:"snyk"`
	Logging common.LoggingConfig `toml:"logging"`
}

// ServerConfig contains MCP server settings.
type ServerConfig struct {
	Name string `toml:"name"`
	Port string `toml:"port"`
}

// SnykConfig contains settings for the Snyk CLI this server shells out to.
type SnykConfig struct {
	// APIKey authenticates the CLI, passed to it as SNYK_TOKEN. Required;
	// the process refuses to start without it.
	APIKey string `toml:"api_key"`
	// OrgID is the default organisation used when a tool call does not
	// provide one. Optional; the resolver falls back to the CLI's own
	// configured org when this is empty.
	OrgID string `toml:"org_id"`
	// Command is the CLI executable name or path.
	Command string `toml:"command"`
}

// LoadFromFile loads configuration with priority: defaults -> file -> env.
// A missing file is not an error (defaults + env apply); an unreadable or
// unparsable file is.
func LoadFromFile(path string) (*Config, error) {
	config := NewDefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
			}
		} else {
			if err := toml.Unmarshal(data, config); err != nil {
				return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
			}
		}
	}

	applyEnvOverrides(config)

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config.
// SNYK_API_KEY and SNYK_ORG_ID match the names the Snyk CLI ecosystem uses;
// SNYK_TOKEN is accepted as an alias for the API key.
func applyEnvOverrides(config *Config) {
	if key := os.Getenv("SNYK_API_KEY"); key != "" {
		config.Snyk.APIKey = key
	} else if key := os.Getenv("SNYK_TOKEN"); key != "" {
		config.Snyk.APIKey = key
	}
	if org := os.Getenv("SNYK_ORG_ID"); org != "" {
		config.Snyk.OrgID = org
	}
	if cmd := os.Getenv("SNYK_CLI_PATH"); cmd != "" {
		config.Snyk.Command = cmd
	}
	if port := os.Getenv("SNYK_MCP_PORT"); port != "" {
		config.Server.Port = port
	}
	if level := os.Getenv("SNYK_MCP_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
	if path := os.Getenv("SNYK_MCP_LOG_FILE"); path != "" {
		config.Logging.FilePath = path
	}
}

// Validate checks that startup-required settings are present. The API key is
// mandatory: without it every scanner invocation would fail authentication,
// so the process refuses to start.
func (c *Config) Validate() error {
	if c.Snyk.APIKey == "" {
		return errors.New("missing Snyk API key: set SNYK_API_KEY or snyk.api_key in the config file")
	}
	if c.Snyk.Command == "" {
		return errors.New("snyk.command must not be empty")
	}
	return nil
}
