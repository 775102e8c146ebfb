package source

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/go-github/v66/github"
	"github.com/utilitywarehouse/ghopac/auth"
)

const reposPerPage = 100

// GitHubConfig holds the credentials and endpoint used to list organisation
// repositories. App takes precedence over Token when set.
type GitHubConfig struct {
	// APIURL is the GitHub Enterprise base URL, empty for github.com
	APIURL string
	Token  string
	App    *auth.GithubApp
}

// GitHub lists organisation repositories using the GitHub REST API
type GitHub struct {
	client *github.Client
	log    *slog.Logger
}

// NewGitHub returns a GitHub lister. If a GitHub App is configured an
// installation token is requested straight away.
func NewGitHub(ctx context.Context, conf GitHubConfig, log *slog.Logger) (*GitHub, error) {
	if log == nil {
		log = slog.Default()
	}

	client := github.NewClient(nil)
	if conf.APIURL != "" {
		var err error
		client, err = client.WithEnterpriseURLs(conf.APIURL, conf.APIURL)
		if err != nil {
			return nil, fmt.Errorf("invalid github api url %q: %w", conf.APIURL, err)
		}
	}

	token := conf.Token
	if conf.App != nil {
		appToken, err := auth.GithubAppInstallationToken(ctx, nil, strings.TrimRight(client.BaseURL.String(), "/"), *conf.App,
			auth.GithubAppTokenReqPermissions{Permissions: map[string]string{"metadata": "read", "contents": "read"}},
		)
		if err != nil {
			return nil, fmt.Errorf("unable to get github app installation token: %w", err)
		}
		log.Debug("github app installation token created", "expires_at", appToken.ExpiresAt)
		token = appToken.Token
	}

	if token != "" {
		client = client.WithAuthToken(token)
	}

	return &GitHub{client: client, log: log}, nil
}

// ListOrgRepos returns every repository of the org, following pagination
func (g *GitHub) ListOrgRepos(ctx context.Context, org string) ([]Repo, error) {
	opts := &github.RepositoryListByOrgOptions{
		ListOptions: github.ListOptions{PerPage: reposPerPage},
	}

	var repos []Repo
	for {
		page, resp, err := g.client.Repositories.ListByOrg(ctx, org, opts)
		if err != nil {
			return nil, fmt.Errorf("unable to list repositories of %s: %w", org, err)
		}

		for _, r := range page {
			repos = append(repos, Repo{
				Name:     r.GetName(),
				SSHURL:   r.GetSSHURL(),
				CloneURL: r.GetCloneURL(),
				Archived: r.GetArchived(),
			})
		}

		g.log.Log(ctx, -8, "listed repositories page", "org", org, "page", opts.Page, "count", len(page))

		if resp.NextPage == 0 {
			return repos, nil
		}
		opts.Page = resp.NextPage
	}
}
