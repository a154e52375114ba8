package mcp

import "fmt"

// UnknownToolError reports a tools/call for a name that was never registered.
// Raised before any argument validation.
type UnknownToolError struct {
	Tool string
}

func (e *UnknownToolError) Error() string {
	return fmt.Sprintf("unknown tool %q", e.Tool)
}

// InvalidArgumentsError reports arguments that failed schema validation.
// Err carries every offending field in a single message, so a call missing
// two fields is reported once, not twice.
type InvalidArgumentsError struct {
	Tool string
	Err  error
}

func (e *InvalidArgumentsError) Error() string {
	return fmt.Sprintf("invalid arguments for tool %q: %v", e.Tool, e.Err)
}

func (e *InvalidArgumentsError) Unwrap() error { return e.Err }
