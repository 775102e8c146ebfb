// Package giturl parses the remote URL syntaxes accepted by `git clone`.
// It is used to decide whether a remote advertised by the hosting service
// is usable as a clone source.
package giturl

import (
	"fmt"
	"regexp"
	"strings"
)

// The repository name can contain
// ASCII letters, digits, and the characters ., -, and _.
var schemes = []struct {
	name string
	rgx  *regexp.Regexp
}{
	// user@host.xz:path/to/repo.git
	{"scp", regexp.MustCompile(`^(?P<user>[\w\-\.]+)@(?P<host>([\w\-]+\.?[\w\-]+)+(\:\d+)?):(?P<path>([\w\-\.]+\/)*)(?P<repo>[\w\-\.]+(\.git)?)$`)},
	// ssh://user@host.xz[:port]/path/to/repo.git
	{"ssh", regexp.MustCompile(`^ssh://(?P<user>[\w\-\.]+)@(?P<host>([\w\-]+\.?[\w\-]+)+(\:\d+)??)/(?P<path>([\w\-\.]+\/)*)(?P<repo>[\w\-\.]+(\.git)?)$`)},
	// https://host.xz[:port]/path/to/repo.git
	{"https", regexp.MustCompile(`^https://(?P<host>([\w\-]+\.?[\w\-]+)+(\:\d+)?)/(?P<path>([\w\-\.]+\/)*)(?P<repo>[\w\-\.]+(\.git)?)$`)},
	// file:///path/to/repo.git
	{"local", regexp.MustCompile(`^file:///(?P<path>([\w\-\.]+\/)*)(?P<repo>[\w\-\.]+(\.git)?)$`)},
}

// URL represents parsed git url
type URL struct {
	Scheme string // value will be either 'scp', 'ssh', 'https' or 'local'
	User   string // might be empty for http and local urls
	Host   string // host or host:port
	Path   string // path to the repo (org)
	Repo   string // repository name from the path includes .git
}

// NormaliseURL will return normalised url
func NormaliseURL(rawURL string) string {
	nURL := strings.ToLower(strings.TrimSpace(rawURL))
	return strings.TrimRight(nURL, "/")
}

// Parse parses a raw url into a URL structure.
// valid git urls are...
//   - user@host.xz:path/to/repo.git
//   - ssh://user@host.xz[:port]/path/to/repo.git
//   - https://host.xz[:port]/path/to/repo.git
//   - file:///path/to/repo.git
func Parse(rawURL string) (*URL, error) {
	nURL := NormaliseURL(rawURL)

	for _, s := range schemes {
		sections := s.rgx.FindStringSubmatch(nURL)
		if sections == nil {
			continue
		}
		group := func(name string) string {
			if i := s.rgx.SubexpIndex(name); i > 0 {
				return sections[i]
			}
			return ""
		}

		gURL := &URL{
			Scheme: s.name,
			User:   group("user"),
			Host:   group("host"),
			// scp path doesn't have leading "/"
			// also removing training "/" for consistency
			Path: strings.Trim(group("path"), "/"),
			Repo: group("repo"),
		}

		if gURL.Path == "" {
			return nil, fmt.Errorf("repo path (org) cannot be empty")
		}
		if gURL.Repo == "" || gURL.Repo == ".git" {
			return nil, fmt.Errorf("repo name is invalid")
		}
		return gURL, nil
	}

	return nil, fmt.Errorf(
		"provided '%s' remote url is invalid, supported urls are 'user@host.xz:path/to/repo.git','ssh://user@host.xz/path/to/repo.git' or 'https://host.xz/path/to/repo.git'",
		rawURL)
}
