package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"content_publisher/internal/domain"
)

const contentColumns = `
	id, slug, title, excerpt, body, category, keywords, hashtags, sources, image_url, views,
	status, scheduled_for, published_at, approval_token, sent_for_approval_to, sent_for_approval_at,
	approved_at, approved_by, rejection_reason, revision_count,
	facebook_post_id, instagram_post_id, linkedin_post_id, twitter_post_id,
	created_at, updated_at`

var platformColumns = map[domain.Platform]string{
	domain.PlatformFacebook:  "facebook_post_id",
	domain.PlatformInstagram: "instagram_post_id",
	domain.PlatformLinkedIn:  "linkedin_post_id",
	domain.PlatformTwitter:   "twitter_post_id",
}

type contentRow struct {
	domain.ContentItem
	Keywords pq.StringArray `db:"keywords"`
	Hashtags pq.StringArray `db:"hashtags"`
	Sources  pq.StringArray `db:"sources"`
}

func (r *contentRow) toDomain() *domain.ContentItem {
	item := r.ContentItem
	item.Keywords = []string(r.Keywords)
	item.Hashtags = []string(r.Hashtags)
	item.Sources = []string(r.Sources)
	return &item
}

type ContentStore struct {
	db *sqlx.DB
}

func NewContentStore(db *sqlx.DB) *ContentStore {
	return &ContentStore{db: db}
}

func (s *ContentStore) Create(ctx context.Context, item *domain.ContentItem) error {
	query := `
		INSERT INTO content_items (
			id, slug, title, excerpt, body, category, keywords, hashtags, sources, image_url,
			status, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13
		)`

	_, err := GetExecutor(ctx, s.db).ExecContext(ctx, query,
		item.ID,
		item.Slug,
		item.Title,
		item.Excerpt,
		item.Body,
		item.Category,
		pq.Array(nonNil(item.Keywords)),
		pq.Array(nonNil(item.Hashtags)),
		pq.Array(nonNil(item.Sources)),
		item.ImageURL,
		item.Status,
		item.CreatedAt,
		item.UpdatedAt,
	)
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" && pqErr.Constraint == "content_items_slug_key" {
		return fmt.Errorf("insert content item: %w", domain.ErrSlugTaken)
	}
	if err != nil {
		return fmt.Errorf("insert content item: %w", err)
	}
	return nil
}

func (s *ContentStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.ContentItem, error) {
	return s.getOne(ctx, "id = $1", id)
}

func (s *ContentStore) GetByToken(ctx context.Context, token string) (*domain.ContentItem, error) {
	return s.getOne(ctx, "approval_token = $1", token)
}

func (s *ContentStore) GetBySlug(ctx context.Context, slug string) (*domain.ContentItem, error) {
	return s.getOne(ctx, "slug = $1", slug)
}

func (s *ContentStore) getOne(ctx context.Context, where string, arg interface{}) (*domain.ContentItem, error) {
	var row contentRow
	query := "SELECT " + contentColumns + " FROM content_items WHERE " + where

	err := sqlx.GetContext(ctx, GetExecutor(ctx, s.db), &row, query, arg)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return row.toDomain(), nil
}

// ListDue returns APPROVED items whose scheduled time is at or before now.
func (s *ContentStore) ListDue(ctx context.Context, now time.Time, limit int) ([]domain.ContentItem, error) {
	query := "SELECT " + contentColumns + `
		FROM content_items
		WHERE status = $1 AND scheduled_for <= $2
		ORDER BY scheduled_for, id
		LIMIT $3`

	var rows []contentRow
	if err := sqlx.SelectContext(ctx, GetExecutor(ctx, s.db), &rows, query, domain.StatusApproved, now, limit); err != nil {
		return nil, err
	}

	items := make([]domain.ContentItem, 0, len(rows))
	for i := range rows {
		items = append(items, *rows[i].toDomain())
	}
	return items, nil
}

// UpdateIfStatus persists the lifecycle fields of item only while the stored
// status still equals expected. A lost race yields domain.ErrClaimConflict.
// Timestamps that are written once are never overwritten.
func (s *ContentStore) UpdateIfStatus(ctx context.Context, item *domain.ContentItem, expected domain.Status) error {
	query := `
		UPDATE content_items SET
			status = $3,
			scheduled_for = $4,
			published_at = COALESCE(published_at, $5),
			approval_token = $6,
			sent_for_approval_to = $7,
			sent_for_approval_at = $8,
			approved_at = COALESCE(approved_at, $9),
			approved_by = $10,
			rejection_reason = $11,
			revision_count = $12,
			updated_at = $13
		WHERE id = $1 AND status = $2`

	exec := GetExecutor(ctx, s.db)
	res, err := exec.ExecContext(ctx, query,
		item.ID,
		expected,
		item.Status,
		item.ScheduledFor,
		item.PublishedAt,
		item.ApprovalToken,
		item.SentForApprovalTo,
		item.SentForApprovalAt,
		item.ApprovedAt,
		item.ApprovedBy,
		item.RejectionReason,
		item.RevisionCount,
		item.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update content status: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 1 {
		return nil
	}

	var exists bool
	if err := sqlx.GetContext(ctx, exec, &exists, "SELECT EXISTS (SELECT 1 FROM content_items WHERE id = $1)", item.ID); err != nil {
		return fmt.Errorf("check content exists: %w", err)
	}
	if !exists {
		return domain.ErrNotFound
	}
	return domain.ErrClaimConflict
}

// SetPlatformPostIDs records external post ids. Columns that already hold an
// id keep it.
func (s *ContentStore) SetPlatformPostIDs(ctx context.Context, id uuid.UUID, ids map[domain.Platform]string) error {
	if len(ids) == 0 {
		return nil
	}

	var sb strings.Builder
	sb.WriteString("UPDATE content_items SET updated_at = NOW()")
	args := []interface{}{id}

	for _, p := range domain.Platforms {
		externalID, ok := ids[p]
		if !ok || externalID == "" {
			continue
		}
		args = append(args, externalID)
		col := platformColumns[p]
		fmt.Fprintf(&sb, ", %s = COALESCE(%s, $%d)", col, col, len(args))
	}
	if len(args) == 1 {
		return nil
	}
	sb.WriteString(" WHERE id = $1")

	res, err := GetExecutor(ctx, s.db).ExecContext(ctx, sb.String(), args...)
	if err != nil {
		return fmt.Errorf("set platform post ids: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ClaimResyndication leases a published item to one resyndication until
// until. An expired lease can be taken over, so a crashed process does not
// block the item for good.
func (s *ContentStore) ClaimResyndication(ctx context.Context, id uuid.UUID, now, until time.Time) (*domain.ContentItem, error) {
	query := `
		UPDATE content_items SET resyndication_lease_until = $3
		WHERE id = $1
			AND status = $4
			AND (resyndication_lease_until IS NULL OR resyndication_lease_until <= $2)
		RETURNING ` + contentColumns

	var row contentRow
	err := sqlx.GetContext(ctx, GetExecutor(ctx, s.db), &row, query, id, now, until, domain.StatusPublished)
	if errors.Is(err, sql.ErrNoRows) {
		if _, err := s.GetByID(ctx, id); err != nil {
			return nil, err
		}
		return nil, domain.ErrClaimConflict
	}
	if err != nil {
		return nil, fmt.Errorf("claim resyndication: %w", err)
	}
	return row.toDomain(), nil
}

func (s *ContentStore) ReleaseResyndication(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE content_items SET resyndication_lease_until = NULL WHERE id = $1`
	if _, err := GetExecutor(ctx, s.db).ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("release resyndication: %w", err)
	}
	return nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
