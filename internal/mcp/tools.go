package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// --- Tool definitions ---

func createScanRepositoryTool() mcp.Tool {
	return mcp.NewTool("scan_repository",
		mcp.WithDescription("Scan a GitHub repository for vulnerabilities with Snyk Code. Returns the scan findings as JSON; findings are a normal result, not an error."),
		mcp.WithString("url", mcp.Required(), mcp.Pattern("^https?://"), mcp.Description("GitHub repository URL (e.g., 'https://github.com/owner/repo'). Only github.com URLs are supported.")),
		mcp.WithString("branch", mcp.Description("Branch to scan. Uses the repository's default branch if not specified.")),
		mcp.WithString("org", mcp.Description("Snyk organisation ID. Uses the configured default if not specified.")),
	)
}

func createScanProjectTool() mcp.Tool {
	return mcp.NewTool("scan_project",
		mcp.WithDescription("Scan an existing Snyk project for vulnerabilities. Returns the scan findings as JSON; findings are a normal result, not an error."),
		mcp.WithString("projectId", mcp.Required(), mcp.Description("ID of the Snyk project to scan")),
		mcp.WithString("org", mcp.Description("Snyk organisation ID. Uses the configured default if not specified.")),
	)
}

func createListProjectsTool() mcp.Tool {
	return mcp.NewTool("list_projects",
		mcp.WithDescription("List the projects in a Snyk organisation. Returns the project list as JSON."),
		mcp.WithString("org", mcp.Description("Snyk organisation ID. Uses the configured default if not specified.")),
	)
}

func createVerifyTokenTool() mcp.Tool {
	return mcp.NewTool("verify_token",
		mcp.WithDescription("Verify that the configured Snyk API token is valid. Returns the authenticated identity on success. Use this to check connectivity before scanning."),
	)
}
