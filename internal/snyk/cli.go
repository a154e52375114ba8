package snyk

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"snyk-mcp/internal/common"
	"snyk-mcp/internal/config"
	"snyk-mcp/internal/telemetry"
)

// Runner abstracts CLI invocation so handlers and the resolver can be
// tested without spawning subprocesses.
type Runner interface {
	Run(ctx context.Context, args ...string) (string, error)
}

// CLI invokes the Snyk executable with discrete argument vectors. No shell
// is involved, so argument values never need quoting or escaping.
type CLI struct {
	command string
	token   string
	logger  *common.Logger
}

// NewCLI creates a CLI bound to the configured executable and API key.
func NewCLI(cfg config.SnykConfig, logger *common.Logger) *CLI {
	return &CLI{
		command: cfg.Command,
		token:   cfg.APIKey,
		logger:  logger,
	}
}

// Run executes the CLI with the given arguments and blocks until it exits.
// It always returns the best available text: stdout on success; on failure
// stdout if non-empty, else stderr, else the error's own description. The
// returned error reports a non-zero exit or spawn failure. The scan tools
// deliberately ignore it, because the scanner exits non-zero when it finds
// vulnerabilities and the JSON on stdout IS the result. verify_token and
// the org resolver's probe are the callers that honour it.
func (c *CLI) Run(ctx context.Context, args ...string) (string, error) {
	display := c.command + " " + strings.Join(args, " ")
	c.logger.Debug().Str("command", display).Msg("executing snyk cli")

	cmd := exec.CommandContext(ctx, c.command, args...)
	cmd.Env = os.Environ()
	if c.token != "" {
		cmd.Env = append(cmd.Env, "SNYK_TOKEN="+c.token)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	runErr := cmd.Run()
	duration := time.Since(start)
	telemetry.CLIDuration.Observe(duration.Seconds())

	out := stdout.String()
	if runErr != nil {
		exitCode := -1
		var exitErr *exec.ExitError
		if errors.As(runErr, &exitErr) {
			exitCode = exitErr.ExitCode()
		}
		telemetry.CLIInvocations.WithLabelValues("error").Inc()
		c.logger.Debug().
			Str("command", display).
			Int("exit_code", exitCode).
			Dur("duration", duration).
			Msg("snyk cli exited non-zero")

		if out == "" {
			out = stderr.String()
		}
		if out == "" {
			out = runErr.Error()
		}
		return out, fmt.Errorf("%s %s failed: %w", c.command, strings.Join(args, " "), runErr)
	}

	telemetry.CLIInvocations.WithLabelValues("ok").Inc()
	c.logger.Debug().
		Str("command", display).
		Dur("duration", duration).
		Msg("snyk cli completed")

	return out, nil
}
