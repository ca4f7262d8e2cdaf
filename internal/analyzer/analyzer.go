// internal/analyzer/analyzer.go

// Package analyzer orchestrates one repository analysis: it drives the
// GitHub fetches, runs the aggregation transforms and persists the
// resulting summary.
package analyzer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github-repo-analyzer/internal/model"
	"github-repo-analyzer/internal/stats"
	"github-repo-analyzer/internal/store"
)

// Fetcher is the GitHub data source the orchestrator depends on. Only
// GetRepository can fail; the secondary fetches degrade to empty
// collections inside the adapter.
type Fetcher interface {
	GetRepository(ctx context.Context, owner, name string) (*model.Repository, error)
	ListCommits(ctx context.Context, owner, name string) []model.Commit
	ListContributors(ctx context.Context, owner, name string) []model.Contributor
	ListLanguages(ctx context.Context, owner, name string) map[string]int
	ListBranches(ctx context.Context, owner, name string) []string
	GetFileTree(ctx context.Context, owner, name, branch string) []model.TreeEntry
}

// Service assembles analysis records. All dependencies are injected so
// tests can substitute doubles.
type Service struct {
	fetcher Fetcher
	store   store.Store
	logger  *slog.Logger
	now     func() time.Time
}

// NewService creates a new analysis Service.
func NewService(fetcher Fetcher, st store.Store, logger *slog.Logger) *Service {
	return &Service{
		fetcher: fetcher,
		store:   st,
		logger:  logger,
		now:     time.Now,
	}
}

// Analyze fetches, aggregates and persists one repository analysis.
// It returns the full record including the id assigned by the store.
func (s *Service) Analyze(ctx context.Context, repoRef string) (*model.AnalysisRecord, error) {
	id, err := model.ParseRepoRef(repoRef)
	if err != nil {
		return nil, err
	}

	logger := s.logger.With("owner", id.Owner, "repo", id.Name)
	logger.Info("Analyzing repository")

	repo, err := s.fetcher.GetRepository(ctx, id.Owner, id.Name)
	if err != nil {
		return nil, err
	}

	// The five secondary fetches are independent and feed immutable
	// collections into the aggregation, so they run concurrently.
	var (
		commits      []model.Commit
		contributors []model.Contributor
		languages    map[string]int
		branches     []string
		tree         []model.TreeEntry
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		commits = s.fetcher.ListCommits(gctx, id.Owner, id.Name)
		return nil
	})
	g.Go(func() error {
		contributors = s.fetcher.ListContributors(gctx, id.Owner, id.Name)
		return nil
	})
	g.Go(func() error {
		languages = s.fetcher.ListLanguages(gctx, id.Owner, id.Name)
		return nil
	})
	g.Go(func() error {
		branches = s.fetcher.ListBranches(gctx, id.Owner, id.Name)
		return nil
	})
	g.Go(func() error {
		tree = s.fetcher.GetFileTree(gctx, id.Owner, id.Name, repo.DefaultBranch)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	record := s.assembleRecord(repoRef, repo, commits, contributors, languages, branches, tree)

	recordID, err := s.store.InsertAnalysis(ctx, record.Summary())
	if err != nil {
		return nil, fmt.Errorf("persist analysis: %w", err)
	}
	record.ID = recordID

	logger.Info("Analysis complete",
		"analysis_id", recordID,
		"total_commits", record.TotalCommits,
		"total_contributors", record.TotalContributors)

	return record, nil
}

// assembleRecord runs the aggregation transforms and fills the
// canonical record.
func (s *Service) assembleRecord(
	repoRef string,
	repo *model.Repository,
	commits []model.Commit,
	contributors []model.Contributor,
	languages map[string]int,
	branches []string,
	tree []model.TreeEntry,
) *model.AnalysisRecord {
	// One clock read so the timestamp and the histogram anchor cannot
	// straddle a month boundary.
	now := s.now().UTC()

	lastCommitDate := "N/A"
	if len(commits) > 0 {
		lastCommitDate = commits[0].CommitDate.UTC().Format(time.RFC3339)
	}

	createdAt := ""
	if !repo.CreatedAt.IsZero() {
		createdAt = repo.CreatedAt.UTC().Format(time.RFC3339)
	}

	return &model.AnalysisRecord{
		RepoName:          repo.Name,
		RepoURL:           repoRef,
		Owner:             repo.Owner,
		Stars:             repo.StarsCount,
		Forks:             repo.ForksCount,
		TotalCommits:      len(commits),
		TotalContributors: len(contributors),
		PrimaryLanguage:   stats.PrimaryLanguage(languages),
		AnalyzedAt:        now,
		Description:       repo.Description,
		Watchers:          repo.WatchersCount,
		Size:              repo.Size,
		CreatedAt:         createdAt,
		LastCommitDate:    lastCommitDate,
		BranchesCount:     len(branches),
		OpenIssues:        repo.OpenIssuesCount,
		HTMLURL:           repo.HTMLURL,
		AvatarURL:         repo.AvatarURL,
		Languages:         stats.Languages(languages),
		TopContributors:   stats.TopContributors(contributors),
		CommitActivity:    stats.CommitActivity(commits, now),
		FileStructure:     stats.FileStructure(tree),
		// Per-file churn needs per-commit diff stats, which are too
		// rate-limit intensive to fetch. Always empty.
		MostModifiedFiles: []string{},
	}
}
