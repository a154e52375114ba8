package mcp

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"snyk-mcp/internal/snyk"
)

// --- Helpers ---

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(text),
		},
	}
}

func errorResult(message string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(message),
		},
		IsError: true,
	}
}

// --- Handlers ---

// handleVerifyToken runs the CLI identity check against the configured token.
// This is the only tool that surfaces a subprocess failure as an error result:
// a failed identity check means the token is bad, whereas for the scan tools a
// non-zero exit still carries the findings the caller asked for.
func handleVerifyToken(cli snyk.Runner) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		out, err := cli.Run(ctx, snyk.WhoamiArgs()...)
		if err != nil {
			return errorResult("Token verification failed: " + out), nil
		}
		return textResult("Token verified successfully.\n\n" + out), nil
	}
}

// handleScanRepository scans a GitHub repository with Snyk Code. The URL is
// parsed before the organisation is resolved so that a bad URL never triggers
// a subprocess, not even the resolver's CLI probe.
func handleScanRepository(cli snyk.Runner, orgs *snyk.OrgResolver) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		repoPath, err := snyk.RepoPath(request.GetString("url", ""))
		if err != nil {
			return errorResult(fmt.Sprintf("Error: %v", err)), nil
		}

		org, err := orgs.Resolve(ctx, request.GetString("org", ""))
		if err != nil {
			return errorResult(fmt.Sprintf("Error: %v", err)), nil
		}

		// The scanner exits non-zero when it finds vulnerabilities; the JSON
		// on stdout is still the result the caller wants.
		out, _ := cli.Run(ctx, snyk.CodeTestArgs(repoPath, org, request.GetString("branch", ""))...)
		return textResult(out), nil
	}
}

// handleScanProject scans an existing Snyk project by ID.
func handleScanProject(cli snyk.Runner, orgs *snyk.OrgResolver) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		org, err := orgs.Resolve(ctx, request.GetString("org", ""))
		if err != nil {
			return errorResult(fmt.Sprintf("Error: %v", err)), nil
		}

		out, _ := cli.Run(ctx, snyk.ProjectTestArgs(request.GetString("projectId", ""), org)...)
		return textResult(out), nil
	}
}

// handleListProjects lists the projects in the resolved organisation.
func handleListProjects(cli snyk.Runner, orgs *snyk.OrgResolver) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		org, err := orgs.Resolve(ctx, request.GetString("org", ""))
		if err != nil {
			return errorResult(fmt.Sprintf("Error: %v", err)), nil
		}

		out, _ := cli.Run(ctx, snyk.ListProjectsArgs(org)...)
		return textResult(out), nil
	}
}
