// Package memory is an in-process implementation of the content stores with
// the same conditional-update semantics as the postgres stores. It backs the
// service tests and local dry runs.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"content_publisher/internal/domain"
)

type Store struct {
	mu      sync.Mutex
	items   map[uuid.UUID]*domain.ContentItem
	leases  map[uuid.UUID]time.Time
	records []domain.SyndicationRecord
	runs    []domain.RunSummary
}

func New() *Store {
	return &Store{
		items:  make(map[uuid.UUID]*domain.ContentItem),
		leases: make(map[uuid.UUID]time.Time),
	}
}

func (s *Store) Create(_ context.Context, item *domain.ContentItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.items {
		if existing.Slug == item.Slug {
			return domain.ErrSlugTaken
		}
	}
	s.items[item.ID] = item.Clone()
	return nil
}

func (s *Store) GetByID(_ context.Context, id uuid.UUID) (*domain.ContentItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.items[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return item.Clone(), nil
}

func (s *Store) GetByToken(_ context.Context, token string) (*domain.ContentItem, error) {
	return s.find(func(c *domain.ContentItem) bool {
		return c.ApprovalToken != nil && *c.ApprovalToken == token
	})
}

func (s *Store) GetBySlug(_ context.Context, slug string) (*domain.ContentItem, error) {
	return s.find(func(c *domain.ContentItem) bool { return c.Slug == slug })
}

func (s *Store) find(match func(*domain.ContentItem) bool) (*domain.ContentItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, item := range s.items {
		if match(item) {
			return item.Clone(), nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *Store) ListDue(_ context.Context, now time.Time, limit int) ([]domain.ContentItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var due []domain.ContentItem
	for _, item := range s.items {
		if item.Due(now) {
			due = append(due, *item.Clone())
		}
	}
	sort.Slice(due, func(i, j int) bool {
		return due[i].ScheduledFor.Before(*due[j].ScheduledFor)
	})
	if limit > 0 && len(due) > limit {
		due = due[:limit]
	}
	return due, nil
}

func (s *Store) UpdateIfStatus(_ context.Context, item *domain.ContentItem, expected domain.Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.items[item.ID]
	if !ok {
		return domain.ErrNotFound
	}
	if stored.Status != expected {
		return domain.ErrClaimConflict
	}

	next := item.Clone()
	if stored.PublishedAt != nil {
		next.PublishedAt = stored.PublishedAt
	}
	if stored.ApprovedAt != nil {
		next.ApprovedAt = stored.ApprovedAt
	}
	next.Views = stored.Views
	s.items[item.ID] = next
	return nil
}

func (s *Store) SetPlatformPostIDs(_ context.Context, id uuid.UUID, ids map[domain.Platform]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.items[id]
	if !ok {
		return domain.ErrNotFound
	}
	for p, externalID := range ids {
		item.SetPlatformPostID(p, externalID)
	}
	return nil
}

func (s *Store) ClaimResyndication(_ context.Context, id uuid.UUID, now, until time.Time) (*domain.ContentItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.items[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if item.Status != domain.StatusPublished {
		return nil, domain.ErrClaimConflict
	}
	if held, ok := s.leases[id]; ok && held.After(now) {
		return nil, domain.ErrClaimConflict
	}
	s.leases[id] = until
	return item.Clone(), nil
}

func (s *Store) ReleaseResyndication(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.leases, id)
	return nil
}

func (s *Store) Append(_ context.Context, rec *domain.SyndicationRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, *rec)
	return nil
}

func (s *Store) ListByContent(_ context.Context, contentID uuid.UUID) ([]domain.SyndicationRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []domain.SyndicationRecord
	for _, rec := range s.records {
		if rec.ContentID == contentID {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (s *Store) Record(_ context.Context, report *domain.PublicationReport) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs = append(s.runs, domain.RunSummary{
		RunAt:      report.RunAt,
		Published:  report.Published,
		Failed:     report.Failed,
		Skipped:    report.Skipped,
		Deferred:   report.Deferred,
		DurationMS: report.Duration.Milliseconds(),
	})
	return nil
}

func (s *Store) Latest(_ context.Context) (*domain.RunSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.runs) == 0 {
		return nil, nil
	}
	run := s.runs[len(s.runs)-1]
	return &run, nil
}

// WithTransaction runs fn directly; every single operation is already atomic.
func (s *Store) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
