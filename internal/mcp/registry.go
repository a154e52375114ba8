// Package mcp exposes the Snyk scanning tools over the Model Context
// Protocol: tool descriptors, argument validation, and dispatch.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	jsonschema "github.com/santhosh-tekuri/jsonschema/v6"

	"snyk-mcp/internal/common"
	"snyk-mcp/internal/snyk"
	"snyk-mcp/internal/telemetry"
)

// registeredTool bundles a tool descriptor with its handler and the compiled
// input schema used to validate arguments before dispatch.
type registeredTool struct {
	tool    mcp.Tool
	schema  *jsonschema.Schema
	handler server.ToolHandlerFunc
}

// Registry holds the scanning tools and routes calls to them. Lookup happens
// before validation, and validation before the handler, so an unknown tool or
// a bad argument set never reaches a subprocess.
type Registry struct {
	logger *common.Logger
	order  []string
	byName map[string]*registeredTool
}

// NewRegistry builds the registry with all four tools wired to the given CLI
// and organisation resolver. Each tool's input schema is compiled once here;
// a schema that fails to compile is a startup error.
func NewRegistry(cli snyk.Runner, orgs *snyk.OrgResolver, logger *common.Logger) (*Registry, error) {
	r := &Registry{
		logger: logger,
		byName: make(map[string]*registeredTool),
	}

	registrations := []struct {
		tool    mcp.Tool
		handler server.ToolHandlerFunc
	}{
		{createScanRepositoryTool(), handleScanRepository(cli, orgs)},
		{createScanProjectTool(), handleScanProject(cli, orgs)},
		{createListProjectsTool(), handleListProjects(cli, orgs)},
		{createVerifyTokenTool(), handleVerifyToken(cli)},
	}

	for _, reg := range registrations {
		if err := r.register(reg.tool, reg.handler); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func (r *Registry) register(tool mcp.Tool, handler server.ToolHandlerFunc) error {
	schema, err := compileInputSchema(tool)
	if err != nil {
		return fmt.Errorf("failed to compile input schema for tool %q: %w", tool.Name, err)
	}
	r.byName[tool.Name] = &registeredTool{tool: tool, schema: schema, handler: handler}
	r.order = append(r.order, tool.Name)
	return nil
}

// compileInputSchema compiles a tool's input schema as an anonymous in-memory
// JSON schema document.
func compileInputSchema(tool mcp.Tool) (*jsonschema.Schema, error) {
	raw, err := json.Marshal(tool.InputSchema)
	if err != nil {
		return nil, err
	}
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	c := jsonschema.NewCompiler()
	url := "mem://" + tool.Name + ".json"
	if err := c.AddResource(url, doc); err != nil {
		return nil, err
	}
	return c.Compile(url)
}

// Tools returns the tool descriptors in registration order.
func (r *Registry) Tools() []mcp.Tool {
	tools := make([]mcp.Tool, 0, len(r.order))
	for _, name := range r.order {
		tools = append(tools, r.byName[name].tool)
	}
	return tools
}

// Attach registers every tool on the MCP server, routing all calls through
// Dispatch so they share one validation and logging path.
func (r *Registry) Attach(s *server.MCPServer) {
	for _, name := range r.order {
		s.AddTool(r.byName[name].tool, r.Dispatch)
	}
}

// Dispatch routes a tools/call request to the registered handler. Per-call
// errors come back as results with IsError set; the Go error return stays
// nil so the transport never reports a protocol-level failure for them.
func (r *Registry) Dispatch(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name := request.Params.Name

	rt, ok := r.byName[name]
	if !ok {
		r.logger.Warn().Str("tool", name).Msg("call for unregistered tool")
		telemetry.ToolCalls.WithLabelValues(name, "unknown_tool").Inc()
		return errorResult(fmt.Sprintf("Error: %v", &UnknownToolError{Tool: name})), nil
	}

	if err := rt.validateArguments(request.GetArguments()); err != nil {
		r.logger.Warn().Str("tool", name).Err(err).Msg("rejected tool arguments")
		telemetry.ToolCalls.WithLabelValues(name, "invalid_arguments").Inc()
		return errorResult(fmt.Sprintf("Error: %v", err)), nil
	}

	logger := r.logger.WithCorrelationId(uuid.New().String())
	logger.Info().Str("tool", name).Msg("dispatching tool call")

	start := time.Now()
	result, err := rt.handler(ctx, request)
	elapsed := time.Since(start)

	outcome := "ok"
	if err != nil || (result != nil && result.IsError) {
		outcome = "error"
	}
	telemetry.ToolCalls.WithLabelValues(name, outcome).Inc()
	telemetry.ToolDuration.WithLabelValues(name).Observe(elapsed.Seconds())

	logger.Info().
		Str("tool", name).
		Str("outcome", outcome).
		Dur("elapsed", elapsed).
		Msg("tool call finished")

	return result, err
}

// validateArguments checks the raw arguments against the tool's compiled
// schema. The instance is round-tripped through encoding/json so the
// validator sees the same shapes a wire decode would produce.
func (rt *registeredTool) validateArguments(args map[string]any) error {
	if args == nil {
		args = map[string]any{}
	}
	raw, err := json.Marshal(args)
	if err != nil {
		return &InvalidArgumentsError{Tool: rt.tool.Name, Err: err}
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return &InvalidArgumentsError{Tool: rt.tool.Name, Err: err}
	}
	if err := rt.schema.Validate(v); err != nil {
		return &InvalidArgumentsError{Tool: rt.tool.Name, Err: err}
	}
	return nil
}
