// Package source turns the configured organisations and syncpoints into
// sync jobs.
package source

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/utilitywarehouse/ghopac/giturl"
	"github.com/utilitywarehouse/ghopac/syncer"
)

const (
	ProtocolSSH   = "ssh"
	ProtocolHTTPS = "https"
)

var errNoLister = errors.New("no repository lister configured")

// Repo is a single repository as returned by a Lister
type Repo struct {
	Name     string
	SSHURL   string
	CloneURL string
	Archived bool
}

// Lister lists the repositories of an organisation
type Lister interface {
	ListOrgRepos(ctx context.Context, org string) ([]Repo, error)
}

// Enqueuer accepts jobs produced by the Source
type Enqueuer interface {
	Enqueue(job syncer.Job)
}

// Org maps a GitHub organisation to the local directory its repositories
// are cloned into
type Org struct {
	Name string
	Path string
}

type Config struct {
	Orgs       []Org
	Syncpoints []string
	// CloneProtocol is either ProtocolSSH or ProtocolHTTPS, defaults to ssh
	CloneProtocol string
	SkipArchived  bool
	ReportOrphans bool
}

// Stats summarises a single Produce call
type Stats struct {
	Orgs          int
	OrgErrors     int
	OrgJobs       int
	SyncpointJobs int
	Orphans       int
}

type Source struct {
	conf   Config
	lister Lister
	log    *slog.Logger
}

// New returns a Source. lister may be nil when no orgs are configured.
func New(conf Config, lister Lister, log *slog.Logger) *Source {
	if log == nil {
		log = slog.Default()
	}
	if conf.CloneProtocol == "" {
		conf.CloneProtocol = ProtocolSSH
	}
	return &Source{conf: conf, lister: lister, log: log}
}

// Produce enqueues one job per repository of every configured org, in
// config order, followed by one job per syncpoint. Org listing failures are
// logged and do not stop the remaining orgs. It does not close the queue.
func (s *Source) Produce(ctx context.Context, q Enqueuer) Stats {
	var stats Stats

	for _, org := range s.conf.Orgs {
		stats.Orgs++
		n, orphans, err := s.produceOrg(ctx, org, q)
		if err != nil {
			stats.OrgErrors++
			s.log.Warn("unable to list org repositories", "org", org.Name, "err", err)
		}
		stats.OrgJobs += n
		stats.Orphans += orphans
	}

	for _, sp := range s.conf.Syncpoints {
		q.Enqueue(syncer.Job{Path: sp})
		stats.SyncpointJobs++
	}

	s.log.Debug("jobs produced", "orgs", stats.Orgs, "org_errors", stats.OrgErrors,
		"org_jobs", stats.OrgJobs, "syncpoint_jobs", stats.SyncpointJobs)

	return stats
}

func (s *Source) produceOrg(ctx context.Context, org Org, q Enqueuer) (int, int, error) {
	if s.lister == nil {
		return 0, 0, errNoLister
	}

	repos, err := s.lister.ListOrgRepos(ctx, org.Name)
	if err != nil {
		return 0, 0, err
	}

	var enqueued int
	names := make([]string, 0, len(repos))
	for _, repo := range repos {
		names = append(names, repo.Name)

		if repo.Archived && s.conf.SkipArchived {
			s.log.Log(ctx, -8, "skipping archived repository", "org", org.Name, "repo", repo.Name)
			continue
		}

		q.Enqueue(syncer.Job{
			Path:   filepath.Join(org.Path, repo.Name),
			Remote: s.remote(org, repo),
		})
		enqueued++
	}

	var orphans int
	if s.conf.ReportOrphans {
		orphans = s.reportOrphans(org, names)
	}

	return enqueued, orphans, nil
}

// remote picks the clone URL for the configured protocol, invalid URLs are
// dropped so the job is treated as having no source
func (s *Source) remote(org Org, repo Repo) string {
	remote := repo.SSHURL
	if s.conf.CloneProtocol == ProtocolHTTPS {
		remote = repo.CloneURL
	}

	if _, err := giturl.Parse(remote); err != nil {
		s.log.Warn("ignoring invalid clone url", "org", org.Name, "repo", repo.Name, "err", fmt.Errorf("%q: %w", remote, err))
		return ""
	}
	return remote
}
