package mcp

import (
	"github.com/mark3labs/mcp-go/server"

	"snyk-mcp/internal/common"
)

// NewServer builds the MCP server with the registry's tools attached. The
// same server instance backs both the stdio and the streamable HTTP
// transports.
func NewServer(name string, registry *Registry) *server.MCPServer {
	s := server.NewMCPServer(
		name,
		common.GetVersion(),
		server.WithToolCapabilities(true),
	)
	registry.Attach(s)
	return s
}
