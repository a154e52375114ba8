package snyk

import "fmt"

// MissingOrgError is returned when no organisation ID can be resolved from
// any source. It is raised before any scan subprocess runs.
type MissingOrgError struct{}

func (e *MissingOrgError) Error() string {
	return "no organisation ID available: pass 'org' in the tool arguments, " +
		"set SNYK_ORG_ID (or snyk.org_id in the config file), " +
		"or configure the CLI with 'snyk config set org=<ORG_ID>'"
}

// InvalidURLError is returned by RepoPath when a repository URL does not
// contain the github.com/ marker.
type InvalidURLError struct {
	URL string
}

func (e *InvalidURLError) Error() string {
	return fmt.Sprintf("invalid repository URL %q: expected a GitHub URL like https://github.com/<owner>/<repo>", e.URL)
}
