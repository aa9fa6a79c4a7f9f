// Package git provides Git operations for bwckit.
// This file defines the Remote type and the remote detection scan.
package git

import (
	"fmt"
	"strings"
)

// remoteURLTemplate is the canonical hosting location of the upstream
// project. Every remote bwckit manages points at a fork (or the origin)
// of this repository, keyed by the GitHub organization name.
const remoteURLTemplate = "https://github.com/%s/elasticsearch.git"

// DefaultRemoteName is the remote ensured in every checkout unless
// overridden by configuration or the --remote flag.
const DefaultRemoteName = "elastic"

// Remote is a named git remote pointing at an elasticsearch fork.
type Remote struct {
	// Name is the git remote name, conventionally the GitHub org ("elastic").
	Name string
	// URL is the fetch URL for the remote.
	URL string
}

// NewRemote builds the Remote for a GitHub organization name using the
// canonical URL template.
func NewRemote(name string) Remote {
	return Remote{
		Name: name,
		URL:  fmt.Sprintf(remoteURLTemplate, name),
	}
}

// Listed reports whether this remote already appears in the raw output of
// `git remote -v`.
//
// The check is a plain substring match for "<name>\t<url>", exactly as the
// original orchestration scripted it. That makes it deliberately brittle:
// a remote with the right name but an ssh URL, a trailing slash, or extra
// whitespace is treated as absent and the remote gets re-added (git then
// rejects the duplicate name). Matching only the name would mask URL drift,
// so the full-line form is kept as-is. Callers must not "improve" this scan
// without migrating existing checkouts.
func (r Remote) Listed(remoteListOutput string) bool {
	return strings.Contains(remoteListOutput, r.Name+"\t"+r.URL)
}
