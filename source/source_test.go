package source

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/utilitywarehouse/ghopac/syncer"
)

type fakeLister map[string][]Repo

func (f fakeLister) ListOrgRepos(_ context.Context, org string) ([]Repo, error) {
	repos, ok := f[org]
	if !ok {
		return nil, errors.New("org not found")
	}
	return repos, nil
}

type recordQueue []syncer.Job

func (q *recordQueue) Enqueue(job syncer.Job) { *q = append(*q, job) }

var testOrgs = fakeLister{
	"acme": {
		{Name: "api", SSHURL: "git@github.com:acme/api.git", CloneURL: "https://github.com/acme/api.git"},
		{Name: "old", SSHURL: "git@github.com:acme/old.git", CloneURL: "https://github.com/acme/old.git", Archived: true},
		{Name: "broken", SSHURL: "not a url", CloneURL: "https://github.com/acme/broken.git"},
	},
	"tools": {
		{Name: "cli", SSHURL: "git@github.com:tools/cli.git", CloneURL: "https://github.com/tools/cli.git"},
	},
}

func TestSource_Produce(t *testing.T) {
	tests := []struct {
		name      string
		conf      Config
		lister    Lister
		wantJobs  []syncer.Job
		wantStats Stats
	}{
		{
			name: "ssh",
			conf: Config{
				Orgs:       []Org{{Name: "acme", Path: "/src/acme"}, {Name: "tools", Path: "/src/tools"}},
				Syncpoints: []string{"/src/misc", "/src/dotfiles"},
			},
			lister: testOrgs,
			wantJobs: []syncer.Job{
				{Path: "/src/acme/api", Remote: "git@github.com:acme/api.git"},
				{Path: "/src/acme/old", Remote: "git@github.com:acme/old.git"},
				{Path: "/src/acme/broken"},
				{Path: "/src/tools/cli", Remote: "git@github.com:tools/cli.git"},
				{Path: "/src/misc"},
				{Path: "/src/dotfiles"},
			},
			wantStats: Stats{Orgs: 2, OrgJobs: 4, SyncpointJobs: 2},
		},
		{
			name: "https_skip_archived",
			conf: Config{
				Orgs:          []Org{{Name: "acme", Path: "/src/acme"}},
				CloneProtocol: ProtocolHTTPS,
				SkipArchived:  true,
			},
			lister: testOrgs,
			wantJobs: []syncer.Job{
				{Path: "/src/acme/api", Remote: "https://github.com/acme/api.git"},
				{Path: "/src/acme/broken", Remote: "https://github.com/acme/broken.git"},
			},
			wantStats: Stats{Orgs: 1, OrgJobs: 2},
		},
		{
			name: "org_error_continues",
			conf: Config{
				Orgs:       []Org{{Name: "missing", Path: "/src/missing"}, {Name: "tools", Path: "/src/tools"}},
				Syncpoints: []string{"/src/misc"},
			},
			lister: testOrgs,
			wantJobs: []syncer.Job{
				{Path: "/src/tools/cli", Remote: "git@github.com:tools/cli.git"},
				{Path: "/src/misc"},
			},
			wantStats: Stats{Orgs: 2, OrgErrors: 1, OrgJobs: 1, SyncpointJobs: 1},
		},
		{
			name: "no_lister",
			conf: Config{
				Orgs:       []Org{{Name: "acme", Path: "/src/acme"}},
				Syncpoints: []string{"/src/misc"},
			},
			wantJobs:  []syncer.Job{{Path: "/src/misc"}},
			wantStats: Stats{Orgs: 1, OrgErrors: 1, SyncpointJobs: 1},
		},
		{
			name:      "empty",
			lister:    testOrgs,
			wantStats: Stats{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var q recordQueue
			stats := New(tt.conf, tt.lister, nil).Produce(t.Context(), &q)

			if diff := cmp.Diff(tt.wantJobs, []syncer.Job(q)); diff != "" {
				t.Errorf("jobs mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(tt.wantStats, stats); diff != "" {
				t.Errorf("stats mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
