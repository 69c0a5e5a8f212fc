package github

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/go-github/v62/github"
	"golang.org/x/oauth2"

	"cvescout/internal/model"
)

// The search API caps results at 1000 per query regardless of paging.
const perPage = 100

// Client is a wrapper around the go-github client.
type Client struct {
	gh     *github.Client
	logger *slog.Logger
}

// NewClient creates and configures a new Client instance.
// The provided token is used to create an authenticated http.Client.
func NewClient(token string, logger *slog.Logger) *Client {
	ctx := context.Background()
	ts := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: token},
	)
	tc := oauth2.NewClient(ctx, ts)

	return &Client{
		gh:     github.NewClient(tc),
		logger: logger,
	}
}

// SearchRepositories runs one repository-search query and translates every
// result to the internal record model, tagging each with the query that
// produced it. It handles API pagination transparently.
func (c *Client) SearchRepositories(ctx context.Context, query string) ([]model.Repository, error) {
	var all []model.Repository

	opts := &github.SearchOptions{
		Sort:  "updated",
		Order: "desc",
		ListOptions: github.ListOptions{
			PerPage: perPage,
		},
	}

	for {
		c.logger.Debug("Fetching search page", "query", query, "page", opts.Page)

		result, resp, err := c.gh.Search.Repositories(ctx, query, opts)
		if err != nil {
			return nil, err
		}

		for _, repo := range result.Repositories {
			all = append(all, toInternalRepository(repo, query))
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return all, nil
}

// toInternalRepository translates a github.Repository object to our internal model.Repository.
func toInternalRepository(r *github.Repository, query string) model.Repository {
	rec := model.Repository{
		ID:              r.GetID(),
		FullName:        r.GetFullName(),
		Description:     r.GetDescription(),
		HTMLURL:         r.GetHTMLURL(),
		Language:        r.GetLanguage(),
		Size:            r.GetSize(),
		StargazersCount: r.GetStargazersCount(),
		ForksCount:      r.GetForksCount(),
		MatchedOn:       query,
	}
	if pushed := r.GetPushedAt(); !pushed.IsZero() {
		rec.PushedAt = pushed.Format(time.RFC3339)
	}
	return rec
}
