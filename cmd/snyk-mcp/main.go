// Command snyk-mcp exposes Snyk security scanning to MCP clients. It wraps
// the Snyk CLI behind four tools and serves them over stdio or streamable
// HTTP.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"snyk-mcp/internal/common"
	"snyk-mcp/internal/config"
	"snyk-mcp/internal/mcp"
	"snyk-mcp/internal/server"
	"snyk-mcp/internal/snyk"
)

func main() {
	stdio := flag.Bool("stdio", false, "Use stdio transport (for Claude Desktop)")
	configFile := flag.String("config", "snyk-mcp.toml", "Path to config file")
	showVersion := flag.Bool("version", false, "Print version information")
	flag.Parse()

	common.LoadVersionFromFile()

	if *showVersion {
		fmt.Printf("snyk-mcp version %s\n", common.GetFullVersion())
		os.Exit(0)
	}

	cfg, err := config.LoadFromFile(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}

	// A missing API key is fatal: without it every scan would fail to
	// authenticate, so refuse to start before any transport comes up.
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}

	logger := common.NewLoggerFromConfig(cfg.Logging)
	logger.Info().
		Str("version", common.GetFullVersion()).
		Str("command", cfg.Snyk.Command).
		Msg("starting snyk-mcp")

	cli := snyk.NewCLI(cfg.Snyk, logger)
	orgs := snyk.NewOrgResolver(cfg.Snyk.OrgID, cli)

	registry, err := mcp.NewRegistry(cli, orgs, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build tool registry: %v\n", err)
		os.Exit(1)
	}

	mcpSrv := mcp.NewServer(cfg.Server.Name, registry)

	if *stdio {
		// Stdio transport reads stdin and writes stdout; logs stay on
		// stderr and the log file.
		if err := mcpserver.ServeStdio(mcpSrv); err != nil {
			fmt.Fprintf(os.Stderr, "stdio server error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	httpSrv := server.New(cfg, mcpSrv, logger)

	go func() {
		if err := httpSrv.Start(); err != nil {
			fmt.Fprintf(os.Stderr, "http server error: %v\n", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info().Msg("shutdown signal received")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpSrv.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("server shutdown failed")
	}

	logger.Info().Msg("server stopped")
}
