// Package snyk drives the Snyk CLI: it builds argument vectors for the
// subcommands the MCP tools need, executes them, and resolves the
// organisation ID a call should run under.
package snyk

import "strings"

// repoMarker is the only repository URL shape the scan tools understand.
// GitLab and other hosts are not supported; see README.
const repoMarker = "github.com/"

// RepoPath extracts the "owner/repo" path following the github.com/ marker
// in a repository URL. The path is taken verbatim apart from a trailing
// slash. Returns InvalidURLError when the marker is absent or nothing
// follows it.
func RepoPath(url string) (string, error) {
	idx := strings.Index(url, repoMarker)
	if idx < 0 {
		return "", &InvalidURLError{URL: url}
	}
	path := strings.TrimSuffix(url[idx+len(repoMarker):], "/")
	if path == "" {
		return "", &InvalidURLError{URL: url}
	}
	return path, nil
}

// VersionArgs is the probe used to detect whether the CLI is installed.
func VersionArgs() []string { return []string{"--version"} }

// ConfigGetOrgArgs reads the organisation configured in the CLI itself.
func ConfigGetOrgArgs() []string { return []string{"config", "get", "org"} }

// WhoamiArgs is the identity check behind verify_token.
func WhoamiArgs() []string { return []string{"whoami", "--experimental"} }

// CodeTestArgs builds a static-analysis scan of a repository path in JSON
// output mode, optionally constrained to a branch.
func CodeTestArgs(repoPath, org, branch string) []string {
	args := []string{"code", "test", "--org=" + org, "--json", repoPath}
	if branch != "" {
		args = append(args, "--branch="+branch)
	}
	return args
}

// ProjectTestArgs builds a scan of an existing Snyk project in JSON output mode.
func ProjectTestArgs(projectID, org string) []string {
	return []string{"test", "--org=" + org, "--project-id=" + projectID, "--json"}
}

// ListProjectsArgs builds the organisation's project listing in JSON output mode.
func ListProjectsArgs(org string) []string {
	return []string{"projects", "--org=" + org, "--json"}
}
