// Package github enumerates a user's repositories for batch ingestion.
package github

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/fyrsmithlabs/repodigest/internal/config"
	"github.com/fyrsmithlabs/repodigest/internal/logging"
	gh "github.com/google/go-github/v57/github"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

// Repo is the subset of repository metadata ingestion cares about.
type Repo struct {
	Name     string
	CloneURL string
	Fork     bool
}

// Client lists repositories through the GitHub API with client-side rate
// limiting. Unauthenticated use works for public repositories; a token
// raises the API quota.
type Client struct {
	log     *logging.Logger
	gh      *gh.Client
	limiter *rate.Limiter
}

// NewClient creates a GitHub API client. An unset token yields an
// unauthenticated client.
func NewClient(log *logging.Logger, token config.Secret) *Client {
	if log == nil {
		log = logging.Nop()
	}
	log = log.Named("github")

	var httpClient *http.Client
	if token.IsSet() {
		src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token.Value()})
		httpClient = oauth2.NewClient(context.Background(), src)
	}

	return &Client{
		log: log,
		gh:  gh.NewClient(httpClient),
		// One request per second, bursting to five. Stays well inside
		// GitHub's secondary rate limits.
		limiter: rate.NewLimiter(1, 5),
	}
}

// SetBaseURL points the client at a different API endpoint, for tests and
// GitHub Enterprise.
func (c *Client) SetBaseURL(raw string) error {
	if !strings.HasSuffix(raw, "/") {
		raw += "/"
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("parsing base URL: %w", err)
	}
	c.gh.BaseURL = u
	return nil
}

// ListRepos returns all of user's repositories, most recently updated first,
// following pagination to the end.
func (c *Client) ListRepos(ctx context.Context, user string) ([]Repo, error) {
	opts := &gh.RepositoryListByUserOptions{
		Sort:        "updated",
		ListOptions: gh.ListOptions{PerPage: 100},
	}

	var all []Repo
	for {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		repos, resp, err := c.gh.Repositories.ListByUser(ctx, user, opts)
		if err != nil {
			return nil, fmt.Errorf("listing repositories for %s: %w", user, err)
		}

		for _, r := range repos {
			all = append(all, Repo{
				Name:     r.GetName(),
				CloneURL: r.GetCloneURL(),
				Fork:     r.GetFork(),
			})
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	c.log.Debug(ctx, "listed repositories",
		zap.String("user", user),
		zap.Int("count", len(all)))

	return all, nil
}

// FilterSources drops repositories that would pollute a user digest: forks,
// and the repository named after the user (profile readme convention).
func FilterSources(user string, repos []Repo) []Repo {
	filtered := make([]Repo, 0, len(repos))
	for _, r := range repos {
		if r.Fork {
			continue
		}
		if strings.EqualFold(r.Name, user) {
			continue
		}
		filtered = append(filtered, r)
	}
	return filtered
}
