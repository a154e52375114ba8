package snyk

import (
	"context"
	"strings"
)

// unsetPlaceholders are literal CLI outputs that mean "no org configured".
var unsetPlaceholders = map[string]bool{
	"":          true,
	"undefined": true,
	"null":      true,
}

// OrgResolver resolves the organisation ID for one tool call.
//
// Resolution is strict priority: the explicit value from the call, then the
// default configured at startup, then whatever organisation the CLI itself
// is configured with. The CLI probe runs on every call that reaches it;
// CLI configuration can change while this server is running, so the result
// is never cached.
type OrgResolver struct {
	defaultOrg string
	cli        Runner
}

// NewOrgResolver creates a resolver over the startup default and the CLI.
func NewOrgResolver(defaultOrg string, cli Runner) *OrgResolver {
	return &OrgResolver{
		defaultOrg: defaultOrg,
		cli:        cli,
	}
}

// Resolve returns the organisation ID to use for a call, or MissingOrgError
// when none of the three sources yields one.
func (r *OrgResolver) Resolve(ctx context.Context, provided string) (string, error) {
	if provided != "" {
		return provided, nil
	}

	if r.defaultOrg != "" {
		return r.defaultOrg, nil
	}

	// The version check doubles as an "is the CLI installed" probe; only
	// ask it for its configured org when it answered.
	if _, err := r.cli.Run(ctx, VersionArgs()...); err == nil {
		out, err := r.cli.Run(ctx, ConfigGetOrgArgs()...)
		if err == nil {
			org := strings.TrimSpace(out)
			if !unsetPlaceholders[org] {
				return org, nil
			}
		}
	}

	return "", &MissingOrgError{}
}
