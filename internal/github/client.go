// internal/github/client.go
package github

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/go-github/v62/github"
	"golang.org/x/oauth2"

	apperrors "github-repo-analyzer/internal/errors"
	"github-repo-analyzer/internal/model"
)

const (
	pageSize = 100
	// Commits are capped at five pages (500 commits) to bound the cost
	// of analyzing very large repositories.
	maxCommitPages = 5
)

// Client is a wrapper around the go-github client. The repository
// metadata fetch is fatal on failure; every other fetch degrades to
// whatever was accumulated before the error, so one failing data
// source never aborts an analysis.
type Client struct {
	gh     *github.Client
	logger *slog.Logger
}

// NewClient creates and configures a new Client instance. An empty
// token yields an unauthenticated client, which works against the
// public API at lower rate limits. A non-empty baseURL points the
// client at a different API host (GitHub Enterprise, test servers).
func NewClient(token, baseURL string, logger *slog.Logger) (*Client, error) {
	gh := github.NewClient(nil)
	if token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
		gh = github.NewClient(oauth2.NewClient(context.Background(), ts))
	}

	if baseURL != "" {
		var err error
		gh, err = gh.WithEnterpriseURLs(baseURL, baseURL)
		if err != nil {
			return nil, fmt.Errorf("invalid GitHub API base URL %q: %w", baseURL, err)
		}
	}

	return &Client{gh: gh, logger: logger}, nil
}

// GetRepository fetches repository metadata and translates it to our
// internal model. A failure here means the repository is unreachable
// and the whole analysis must abort.
func (c *Client) GetRepository(ctx context.Context, owner, name string) (*model.Repository, error) {
	repo, _, err := c.gh.Repositories.Get(ctx, owner, name)
	if err != nil {
		return nil, &apperrors.ErrRepositoryNotFound{Owner: owner, Name: name, Err: err}
	}
	return toInternalRepository(repo), nil
}

// ListCommits fetches up to 500 of the most recent commits, 100 per
// page. A page error returns the commits accumulated so far.
func (c *Client) ListCommits(ctx context.Context, owner, name string) []model.Commit {
	var allCommits []model.Commit

	opts := &github.CommitsListOptions{
		ListOptions: github.ListOptions{PerPage: pageSize},
	}

	for page := 0; page < maxCommitPages; page++ {
		commits, resp, err := c.gh.Repositories.ListCommits(ctx, owner, name, opts)
		if err != nil {
			c.logger.Warn("Commit fetch degraded", "owner", owner, "repo", name, "page", opts.Page, "error", err)
			return allCommits
		}

		for _, commit := range commits {
			allCommits = append(allCommits, toInternalCommit(commit))
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return allCommits
}

// ListContributors fetches all contributors, 100 per page. A page
// error returns the contributors accumulated so far.
func (c *Client) ListContributors(ctx context.Context, owner, name string) []model.Contributor {
	var allContributors []model.Contributor

	opts := &github.ListContributorsOptions{
		ListOptions: github.ListOptions{PerPage: pageSize},
	}

	for {
		contributors, resp, err := c.gh.Repositories.ListContributors(ctx, owner, name, opts)
		if err != nil {
			c.logger.Warn("Contributor fetch degraded", "owner", owner, "repo", name, "page", opts.Page, "error", err)
			return allContributors
		}

		for _, contributor := range contributors {
			allContributors = append(allContributors, model.Contributor{
				Login:         contributor.GetLogin(),
				Contributions: contributor.GetContributions(),
				AvatarURL:     contributor.GetAvatarURL(),
			})
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return allContributors
}

// ListLanguages fetches the language byte map, or an empty map on
// failure.
func (c *Client) ListLanguages(ctx context.Context, owner, name string) map[string]int {
	languages, _, err := c.gh.Repositories.ListLanguages(ctx, owner, name)
	if err != nil {
		c.logger.Warn("Language fetch degraded", "owner", owner, "repo", name, "error", err)
		return map[string]int{}
	}
	return languages
}

// ListBranches fetches all branch names, 100 per page. A page error
// returns the branches accumulated so far.
func (c *Client) ListBranches(ctx context.Context, owner, name string) []string {
	var allBranches []string

	opts := &github.BranchListOptions{
		ListOptions: github.ListOptions{PerPage: pageSize},
	}

	for {
		branches, resp, err := c.gh.Repositories.ListBranches(ctx, owner, name, opts)
		if err != nil {
			c.logger.Warn("Branch fetch degraded", "owner", owner, "repo", name, "page", opts.Page, "error", err)
			return allBranches
		}

		for _, branch := range branches {
			allBranches = append(allBranches, branch.GetName())
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return allBranches
}

// GetFileTree fetches the flattened file tree of the given branch via
// the recursive git tree API. Any failure yields an empty tree.
func (c *Client) GetFileTree(ctx context.Context, owner, name, branch string) []model.TreeEntry {
	if branch == "" {
		branch = "main"
	}

	tree, _, err := c.gh.Git.GetTree(ctx, owner, name, branch, true)
	if err != nil {
		c.logger.Warn("File tree fetch degraded", "owner", owner, "repo", name, "branch", branch, "error", err)
		return nil
	}

	entries := make([]model.TreeEntry, 0, len(tree.Entries))
	for _, entry := range tree.Entries {
		entries = append(entries, model.TreeEntry{
			Path: entry.GetPath(),
			Type: entry.GetType(),
		})
	}
	return entries
}

// toInternalRepository translates a github.Repository object to our internal model.Repository.
func toInternalRepository(r *github.Repository) *model.Repository {
	return &model.Repository{
		Owner:           r.GetOwner().GetLogin(),
		Name:            r.GetName(),
		Description:     r.GetDescription(),
		StarsCount:      r.GetStargazersCount(),
		ForksCount:      r.GetForksCount(),
		OpenIssuesCount: r.GetOpenIssuesCount(),
		// watchers_count mirrors the star count; subscribers_count is
		// the real watcher number.
		WatchersCount: r.GetSubscribersCount(),
		Size:          r.GetSize(),
		CreatedAt:     r.GetCreatedAt().Time,
		HTMLURL:       r.GetHTMLURL(),
		AvatarURL:     r.GetOwner().GetAvatarURL(),
		DefaultBranch: r.GetDefaultBranch(),
	}
}

// toInternalCommit translates a github.RepositoryCommit object to our internal model.Commit.
func toInternalCommit(c *github.RepositoryCommit) model.Commit {
	return model.Commit{
		Author:     c.GetCommit().GetAuthor().GetName(),
		Message:    c.GetCommit().GetMessage(),
		CommitDate: c.GetCommit().GetCommitter().GetDate().Time,
	}
}
