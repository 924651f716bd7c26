package service

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

import (
	"context"
	"time"

	"github.com/google/uuid"

	"content_publisher/internal/domain"
	"content_publisher/internal/syndication"
)

type ContentStore interface {
	Create(ctx context.Context, item *domain.ContentItem) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.ContentItem, error)
	GetByToken(ctx context.Context, token string) (*domain.ContentItem, error)
	ListDue(ctx context.Context, now time.Time, limit int) ([]domain.ContentItem, error)
	UpdateIfStatus(ctx context.Context, item *domain.ContentItem, expected domain.Status) error
	SetPlatformPostIDs(ctx context.Context, id uuid.UUID, ids map[domain.Platform]string) error
	// ClaimResyndication leases a published item to one resyndication until
	// until, returning its current state. A held lease yields domain.ErrClaimConflict.
	ClaimResyndication(ctx context.Context, id uuid.UUID, now, until time.Time) (*domain.ContentItem, error)
	ReleaseResyndication(ctx context.Context, id uuid.UUID) error
}

type RunStore interface {
	Record(ctx context.Context, report *domain.PublicationReport) error
}

type Fanout interface {
	PublishToAll(ctx context.Context, contentID uuid.UUID, post domain.Post, opts ...syndication.Option) []domain.PublishResult
	EnabledPlatforms() []domain.Platform
}

type Notifier interface {
	NotifyPublished(ctx context.Context, item *domain.ContentItem, url string, results []domain.PublishResult) error
}

type Sender interface {
	Send(ctx context.Context, to, subject, html, text string) error
}
