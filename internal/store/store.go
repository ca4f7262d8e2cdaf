// internal/store/store.go

// Package store is the persistence gateway for analysis summaries.
// Only the scalar projection of an analysis is stored; derived
// structures are computed fresh per request.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	apperrors "github-repo-analyzer/internal/errors"
	"github-repo-analyzer/internal/model"
)

// Store describes the operations the API and orchestrator need from
// the persistence layer.
type Store interface {
	InsertAnalysis(ctx context.Context, summary model.AnalysisSummary) (int64, error)
	ListAnalyses(ctx context.Context) ([]model.AnalysisSummary, error)
	GetAnalysis(ctx context.Context, id int64) (model.AnalysisSummary, error)
	DeleteAnalysis(ctx context.Context, id int64) error
}

// PostgresStore implements Store on top of a pgx connection pool.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a store backed by the given pool.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const summaryColumns = `id, repo_name, repo_url, owner, stars, forks,
	total_commits, total_contributors, primary_language, analyzed_at`

// InsertAnalysis persists one analysis summary and returns its
// assigned id.
func (s *PostgresStore) InsertAnalysis(ctx context.Context, summary model.AnalysisSummary) (int64, error) {
	var id int64
	err := s.pool.QueryRow(ctx,
		`INSERT INTO analyses (repo_name, repo_url, owner, stars, forks,
			total_commits, total_contributors, primary_language, analyzed_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING id`,
		summary.RepoName, summary.RepoURL, summary.Owner, summary.Stars, summary.Forks,
		summary.TotalCommits, summary.TotalContributors, summary.PrimaryLanguage, summary.AnalyzedAt,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert analysis: %w", err)
	}
	return id, nil
}

// ListAnalyses returns all persisted summaries, newest first.
func (s *PostgresStore) ListAnalyses(ctx context.Context) ([]model.AnalysisSummary, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+summaryColumns+` FROM analyses ORDER BY analyzed_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list analyses: %w", err)
	}
	defer rows.Close()

	// Non-nil so an empty history serializes as a JSON array.
	summaries := []model.AnalysisSummary{}
	for rows.Next() {
		summary, err := scanSummary(rows)
		if err != nil {
			return nil, fmt.Errorf("scan analysis row: %w", err)
		}
		summaries = append(summaries, summary)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list analyses: %w", err)
	}
	return summaries, nil
}

// GetAnalysis returns the summary with the given id, or
// ErrRecordNotFound if it does not exist.
func (s *PostgresStore) GetAnalysis(ctx context.Context, id int64) (model.AnalysisSummary, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+summaryColumns+` FROM analyses WHERE id = $1`, id)

	summary, err := scanSummary(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.AnalysisSummary{}, apperrors.ErrRecordNotFound
	}
	if err != nil {
		return model.AnalysisSummary{}, fmt.Errorf("get analysis %d: %w", id, err)
	}
	return summary, nil
}

// DeleteAnalysis removes the summary with the given id, or returns
// ErrRecordNotFound if it does not exist.
func (s *PostgresStore) DeleteAnalysis(ctx context.Context, id int64) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM analyses WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete analysis %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrRecordNotFound
	}
	return nil
}

func scanSummary(row pgx.Row) (model.AnalysisSummary, error) {
	var s model.AnalysisSummary
	err := row.Scan(
		&s.ID, &s.RepoName, &s.RepoURL, &s.Owner, &s.Stars, &s.Forks,
		&s.TotalCommits, &s.TotalContributors, &s.PrimaryLanguage, &s.AnalyzedAt,
	)
	return s, err
}
