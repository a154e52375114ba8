package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	mcpgo "github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"snyk-mcp/internal/common"
	"snyk-mcp/internal/snyk"
)

// --- Helpers ---

func newTestRegistry(t *testing.T, cli snyk.Runner, defaultOrg string) *Registry {
	t.Helper()
	reg, err := NewRegistry(cli, snyk.NewOrgResolver(defaultOrg, cli), common.NewSilentLogger())
	if err != nil {
		t.Fatalf("NewRegistry failed: %v", err)
	}
	return reg
}

// listTools calls tools/list on the MCPServer and returns the tools.
func listTools(t *testing.T, s *mcpserver.MCPServer) []mcpgo.Tool {
	t.Helper()

	msg := json.RawMessage(`{"jsonrpc":"2.0","id":1,"method":"tools/list","params":{}}`)
	result := s.HandleMessage(t.Context(), msg)

	resp, ok := result.(mcpgo.JSONRPCResponse)
	if !ok {
		t.Fatalf("expected JSONRPCResponse, got %T", result)
	}

	resultJSON, err := json.Marshal(resp.Result)
	if err != nil {
		t.Fatalf("failed to marshal result: %v", err)
	}

	var toolsResult mcpgo.ListToolsResult
	if err := json.Unmarshal(resultJSON, &toolsResult); err != nil {
		t.Fatalf("failed to unmarshal ListToolsResult: %v", err)
	}

	return toolsResult.Tools
}

// callTool calls a tool on the MCPServer and returns the result.
func callTool(t *testing.T, s *mcpserver.MCPServer, name string, args map[string]interface{}) *mcpgo.CallToolResult {
	t.Helper()

	params := map[string]interface{}{
		"name":      name,
		"arguments": args,
	}
	paramsJSON, _ := json.Marshal(params)

	msg := json.RawMessage(`{"jsonrpc":"2.0","id":2,"method":"tools/call","params":` + string(paramsJSON) + `}`)
	result := s.HandleMessage(t.Context(), msg)

	resp, ok := result.(mcpgo.JSONRPCResponse)
	if !ok {
		t.Fatalf("expected JSONRPCResponse, got %T", result)
	}

	resultJSON, err := json.Marshal(resp.Result)
	if err != nil {
		t.Fatalf("failed to marshal result: %v", err)
	}

	var toolResult mcpgo.CallToolResult
	if err := json.Unmarshal(resultJSON, &toolResult); err != nil {
		t.Fatalf("failed to unmarshal CallToolResult: %v", err)
	}

	return &toolResult
}

// extractText extracts the text field from an MCP content block.
func extractText(t *testing.T, content mcpgo.Content) string {
	t.Helper()
	contentJSON, _ := json.Marshal(content)
	var tc struct {
		Text string `json:"text"`
	}
	json.Unmarshal(contentJSON, &tc)
	return tc.Text
}

// --- Registry construction ---

func TestNewRegistry_RegistersExactlyFourTools(t *testing.T) {
	reg := newTestRegistry(t, newFakeRunner(), "")

	tools := reg.Tools()
	if len(tools) != 4 {
		t.Fatalf("expected 4 tools, got %d", len(tools))
	}

	want := []string{"scan_repository", "scan_project", "list_projects", "verify_token"}
	for i, name := range want {
		if tools[i].Name != name {
			t.Errorf("expected tool %d to be %s, got %s", i, name, tools[i].Name)
		}
	}
}

func TestNewRegistry_ToolsHaveDescriptions(t *testing.T) {
	reg := newTestRegistry(t, newFakeRunner(), "")

	for _, tool := range reg.Tools() {
		if tool.Description == "" {
			t.Errorf("tool %q has empty description", tool.Name)
		}
	}
}

func TestNewRegistry_RequiredFields(t *testing.T) {
	reg := newTestRegistry(t, newFakeRunner(), "")

	required := map[string][]string{}
	for _, tool := range reg.Tools() {
		required[tool.Name] = tool.InputSchema.Required
	}

	if len(required["scan_repository"]) != 1 || required["scan_repository"][0] != "url" {
		t.Errorf("expected scan_repository to require exactly url, got %v", required["scan_repository"])
	}
	if len(required["scan_project"]) != 1 || required["scan_project"][0] != "projectId" {
		t.Errorf("expected scan_project to require exactly projectId, got %v", required["scan_project"])
	}
	if len(required["list_projects"]) != 0 {
		t.Errorf("expected list_projects to require nothing, got %v", required["list_projects"])
	}
	if len(required["verify_token"]) != 0 {
		t.Errorf("expected verify_token to require nothing, got %v", required["verify_token"])
	}
}

func TestNewRegistry_VerifyTokenHasNoFields(t *testing.T) {
	reg := newTestRegistry(t, newFakeRunner(), "")

	for _, tool := range reg.Tools() {
		if tool.Name == "verify_token" && len(tool.InputSchema.Properties) != 0 {
			t.Errorf("expected verify_token to declare no fields, got %v", tool.InputSchema.Properties)
		}
	}
}

// --- Dispatch: lookup and validation ---

func TestDispatch_UnknownTool(t *testing.T) {
	cli := newFakeRunner()
	reg := newTestRegistry(t, cli, "org-1")

	result, err := reg.Dispatch(context.Background(), callRequest("drop_database", map[string]interface{}{}))
	if err != nil {
		t.Fatalf("Dispatch returned error: %v", err)
	}

	if !result.IsError {
		t.Error("expected IsError=true for unknown tool")
	}
	if !strings.Contains(resultText(t, result), `unknown tool "drop_database"`) {
		t.Errorf("expected error naming the tool, got: %s", resultText(t, result))
	}
	if cli.callCount() != 0 {
		t.Errorf("expected zero subprocess calls for unknown tool, got %v", cli.calls)
	}
}

func TestDispatch_MissingRequiredArgument(t *testing.T) {
	cli := newFakeRunner()
	reg := newTestRegistry(t, cli, "org-1")

	result, err := reg.Dispatch(context.Background(), callRequest("scan_project", map[string]interface{}{}))
	if err != nil {
		t.Fatalf("Dispatch returned error: %v", err)
	}

	if !result.IsError {
		t.Error("expected IsError=true for missing projectId")
	}
	if !strings.Contains(resultText(t, result), "projectId") {
		t.Errorf("expected error naming projectId, got: %s", resultText(t, result))
	}
	if cli.callCount() != 0 {
		t.Errorf("expected zero subprocess calls for invalid arguments, got %v", cli.calls)
	}
}

func TestDispatch_WrongArgumentType(t *testing.T) {
	cli := newFakeRunner()
	reg := newTestRegistry(t, cli, "org-1")

	result, err := reg.Dispatch(context.Background(), callRequest("scan_project", map[string]interface{}{
		"projectId": 42,
	}))
	if err != nil {
		t.Fatalf("Dispatch returned error: %v", err)
	}

	if !result.IsError {
		t.Error("expected IsError=true for wrong argument type")
	}
	if !strings.Contains(resultText(t, result), "projectId") {
		t.Errorf("expected error naming projectId, got: %s", resultText(t, result))
	}
	if cli.callCount() != 0 {
		t.Errorf("expected zero subprocess calls, got %v", cli.calls)
	}
}

func TestDispatch_MalformedURLRejectedBySchema(t *testing.T) {
	cli := newFakeRunner()
	reg := newTestRegistry(t, cli, "org-1")

	// Missing scheme fails the url pattern before the handler ever runs.
	result, err := reg.Dispatch(context.Background(), callRequest("scan_repository", map[string]interface{}{
		"url": "github.com/acme/widgets",
	}))
	if err != nil {
		t.Fatalf("Dispatch returned error: %v", err)
	}

	if !result.IsError {
		t.Error("expected IsError=true for malformed URL")
	}
	if !strings.Contains(resultText(t, result), "invalid arguments") {
		t.Errorf("expected validation error text, got: %s", resultText(t, result))
	}
	if cli.callCount() != 0 {
		t.Errorf("expected zero subprocess calls, got %v", cli.calls)
	}
}

func TestDispatch_NamesEveryOffendingField(t *testing.T) {
	cli := newFakeRunner()
	reg := newTestRegistry(t, cli, "org-1")

	// projectId missing and org mistyped: one message reports both.
	result, err := reg.Dispatch(context.Background(), callRequest("scan_project", map[string]interface{}{
		"org": 7,
	}))
	if err != nil {
		t.Fatalf("Dispatch returned error: %v", err)
	}

	if !result.IsError {
		t.Error("expected IsError=true")
	}
	text := resultText(t, result)
	if !strings.Contains(text, "projectId") {
		t.Errorf("expected message to name projectId, got: %s", text)
	}
	if !strings.Contains(text, "org") {
		t.Errorf("expected message to name org, got: %s", text)
	}
}

func TestDispatch_UnknownKeysIgnored(t *testing.T) {
	cli := newFakeRunner()
	reg := newTestRegistry(t, cli, "org-1")

	result, err := reg.Dispatch(context.Background(), callRequest("list_projects", map[string]interface{}{
		"verbose": true,
	}))
	if err != nil {
		t.Fatalf("Dispatch returned error: %v", err)
	}

	if result.IsError {
		t.Errorf("expected unknown keys to be ignored, got error: %s", resultText(t, result))
	}
	if cli.callCount() != 1 {
		t.Errorf("expected the listing to run, got %v", cli.calls)
	}
}

func TestDispatch_NilArguments(t *testing.T) {
	cli := newFakeRunner()
	reg := newTestRegistry(t, cli, "org-1")

	result, err := reg.Dispatch(context.Background(), callRequest("verify_token", nil))
	if err != nil {
		t.Fatalf("Dispatch returned error: %v", err)
	}
	if result.IsError {
		t.Errorf("expected nil arguments to validate for verify_token, got: %s", resultText(t, result))
	}
}

func TestValidateArguments_ErrorType(t *testing.T) {
	reg := newTestRegistry(t, newFakeRunner(), "")

	err := reg.byName["scan_project"].validateArguments(map[string]any{})
	if err == nil {
		t.Fatal("expected validation error")
	}
	var invalid *InvalidArgumentsError
	if !errors.As(err, &invalid) {
		t.Fatalf("expected InvalidArgumentsError, got %T", err)
	}
	if invalid.Tool != "scan_project" {
		t.Errorf("expected tool scan_project, got %s", invalid.Tool)
	}
	if invalid.Unwrap() == nil {
		t.Error("expected wrapped cause")
	}
}

// --- Full protocol path through the MCP server ---

func TestServer_ListsExactlyFourTools(t *testing.T) {
	reg := newTestRegistry(t, newFakeRunner(), "")
	s := NewServer("Snyk-MCP", reg)

	tools := listTools(t, s)
	if len(tools) != 4 {
		t.Fatalf("expected 4 tools, got %d", len(tools))
	}

	names := map[string]bool{}
	for _, tool := range tools {
		names[tool.Name] = true
	}
	for _, want := range []string{"scan_repository", "scan_project", "list_projects", "verify_token"} {
		if !names[want] {
			t.Errorf("expected tool %q to be listed", want)
		}
	}
}

func TestServer_ScanProjectRoundTrip(t *testing.T) {
	cli := newFakeRunner()
	cli.outputs["test --org=org-1 --project-id=proj-9 --json"] = `{"issues":[]}`
	reg := newTestRegistry(t, cli, "")
	s := NewServer("Snyk-MCP", reg)

	result := callTool(t, s, "scan_project", map[string]interface{}{
		"projectId": "proj-9",
		"org":       "org-1",
	})

	if result.IsError {
		t.Errorf("expected non-error result, got: %s", extractText(t, result.Content[0]))
	}
	if extractText(t, result.Content[0]) != `{"issues":[]}` {
		t.Errorf("expected raw scan output, got: %s", extractText(t, result.Content[0]))
	}
}

func TestServer_MissingArgumentRoundTrip(t *testing.T) {
	cli := newFakeRunner()
	reg := newTestRegistry(t, cli, "org-1")
	s := NewServer("Snyk-MCP", reg)

	result := callTool(t, s, "scan_project", map[string]interface{}{})

	if !result.IsError {
		t.Error("expected IsError=true for missing projectId")
	}
	if !strings.Contains(extractText(t, result.Content[0]), "projectId") {
		t.Errorf("expected error naming projectId, got: %s", extractText(t, result.Content[0]))
	}
	if cli.callCount() != 0 {
		t.Errorf("expected zero subprocess calls, got %v", cli.calls)
	}
}

func TestServer_UnknownToolRejectedByTransport(t *testing.T) {
	cli := newFakeRunner()
	reg := newTestRegistry(t, cli, "org-1")
	s := NewServer("Snyk-MCP", reg)

	msg := json.RawMessage(`{"jsonrpc":"2.0","id":3,"method":"tools/call","params":{"name":"drop_database","arguments":{}}}`)
	result := s.HandleMessage(t.Context(), msg)

	if _, ok := result.(mcpgo.JSONRPCError); !ok {
		t.Fatalf("expected JSONRPCError for unknown tool, got %T", result)
	}
	if cli.callCount() != 0 {
		t.Errorf("expected zero subprocess calls, got %v", cli.calls)
	}
}

func TestServer_VerifyTokenRoundTrip(t *testing.T) {
	cli := newFakeRunner()
	cli.outputs["whoami --experimental"] = "user@example.com"
	reg := newTestRegistry(t, cli, "")
	s := NewServer("Snyk-MCP", reg)

	result := callTool(t, s, "verify_token", map[string]interface{}{})

	if result.IsError {
		t.Error("expected IsError=false")
	}
	if !strings.HasPrefix(extractText(t, result.Content[0]), "Token verified successfully.") {
		t.Errorf("expected success marker, got: %s", extractText(t, result.Content[0]))
	}
}
