package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"content_publisher/internal/domain"
)

// SyndicationStore is the append-only audit log of platform publish attempts.
type SyndicationStore struct {
	db *sqlx.DB
}

func NewSyndicationStore(db *sqlx.DB) *SyndicationStore {
	return &SyndicationStore{db: db}
}

func (s *SyndicationStore) Append(ctx context.Context, rec *domain.SyndicationRecord) error {
	query := `
		INSERT INTO syndication_records (
			id, content_id, platform, external_id, outcome, error, posted_at, payload, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9
		)`

	payload := string(rec.Payload)
	if payload == "" {
		payload = "{}"
	}

	_, err := GetExecutor(ctx, s.db).ExecContext(ctx, query,
		rec.ID,
		rec.ContentID,
		rec.Platform,
		rec.ExternalID,
		rec.Outcome,
		rec.Error,
		rec.PostedAt,
		payload,
		rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("append syndication record: %w", err)
	}
	return nil
}

func (s *SyndicationStore) ListByContent(ctx context.Context, contentID uuid.UUID) ([]domain.SyndicationRecord, error) {
	query := `
		SELECT id, content_id, platform, external_id, outcome, error, posted_at, payload, created_at
		FROM syndication_records
		WHERE content_id = $1
		ORDER BY created_at, id`

	var records []domain.SyndicationRecord
	err := sqlx.SelectContext(ctx, GetExecutor(ctx, s.db), &records, query, contentID)
	return records, err
}
