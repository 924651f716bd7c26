package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"content_publisher/internal/domain"
)

// RunStore keeps the summary line of every publication run.
type RunStore struct {
	db *sqlx.DB
}

func NewRunStore(db *sqlx.DB) *RunStore {
	return &RunStore{db: db}
}

func (s *RunStore) Record(ctx context.Context, report *domain.PublicationReport) error {
	query := `
		INSERT INTO publication_runs (run_at, published, failed, skipped, deferred, duration_ms)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := s.db.ExecContext(ctx, query,
		report.RunAt,
		report.Published,
		report.Failed,
		report.Skipped,
		report.Deferred,
		report.Duration.Milliseconds(),
	)
	return err
}

// Latest returns the most recent run summary, or nil if none was recorded yet.
func (s *RunStore) Latest(ctx context.Context) (*domain.RunSummary, error) {
	var run domain.RunSummary
	query := `
		SELECT run_at, published, failed, skipped, deferred, duration_ms
		FROM publication_runs
		ORDER BY run_at DESC, id DESC
		LIMIT 1`

	err := s.db.GetContext(ctx, &run, query)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &run, nil
}
