package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/utilitywarehouse/ghopac/source"
	"github.com/utilitywarehouse/ghopac/syncer"
	"github.com/utilitywarehouse/ghopac/syncpool"
)

// runOptions are command line overrides applied on top of the config file
type runOptions struct {
	gitExec     string
	concurrency int
	verbose     bool
}

// unavailableLister fails every listing with the error which prevented the
// github client from being created
type unavailableLister struct {
	err error
}

func (l unavailableLister) ListOrgRepos(_ context.Context, org string) ([]source.Repo, error) {
	return nil, fmt.Errorf("github client unavailable: %w", l.err)
}

// githubLister returns lister for the configured orgs or nil if there are
// none. If the client cannot be created every org listing fails with the
// cause.
func githubLister(ctx context.Context, conf *Config, log *slog.Logger) source.Lister {
	if len(conf.Orgs) == 0 {
		return nil
	}

	gh, err := source.NewGitHub(ctx, source.GitHubConfig{
		APIURL: conf.GithubAPIURL,
		Token:  conf.GithubAccessToken,
		App:    conf.githubApp(),
	}, log)
	if err != nil {
		log.Error("unable to create github client", "err", err)
		return unavailableLister{err: err}
	}
	return gh
}

// runSync runs a single sync pass over every org repository and syncpoint.
// workers are started before the source begins producing jobs.
func runSync(ctx context.Context, conf *Config, opts runOptions, lister source.Lister, log *slog.Logger) (syncpool.Result, error) {
	concurrency := conf.Concurrency
	if opts.concurrency > 0 {
		concurrency = opts.concurrency
	}

	exec := syncer.NewExecutor(syncer.ExecutorConfig{
		GitExec: opts.gitExec,
		Verbose: conf.Verbose || opts.verbose,
	}, log.With("logger", "syncer"))

	pool, err := syncpool.New(syncpool.Config{Concurrency: concurrency}, exec, log.With("logger", "syncpool"))
	if err != nil {
		return syncpool.Result{}, err
	}

	pool.Start(ctx)

	stats := source.New(conf.sourceConfig(), lister, log.With("logger", "source")).Produce(ctx, pool)
	pool.Close()

	res := pool.Wait()

	log.Info("sync finished",
		"jobs", res.Processed, "failed", res.Failed, "org_errors", stats.OrgErrors,
		"orphans", stats.Orphans, "concurrency", pool.Concurrency(), "duration", res.Duration)

	return res, nil
}
