package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"content_publisher/internal/config"
	"content_publisher/internal/domain"
	"content_publisher/internal/syndication"
)

// PublicationService is the time-triggered orchestrator: it claims due items,
// publishes them on the site, syndicates them and sends the confirmation.
type PublicationService struct {
	contents ContentStore
	runs     RunStore
	fanout   Fanout
	notifier Notifier
	site     config.SiteConfig
	config   config.PublicationConfig
	logger   *slog.Logger
}

func NewPublicationService(
	contents ContentStore,
	runs RunStore,
	fanout Fanout,
	notifier Notifier,
	site config.SiteConfig,
	cfg config.PublicationConfig,
	logger *slog.Logger,
) *PublicationService {
	return &PublicationService{
		contents: contents,
		runs:     runs,
		fanout:   fanout,
		notifier: notifier,
		site:     site,
		config:   cfg,
		logger:   logger.With("component", "publication"),
	}
}

// CanonicalURL is the public address of a published item.
func (s *PublicationService) CanonicalURL(slug string) string {
	return CanonicalURL(s.site, slug)
}

func CanonicalURL(site config.SiteConfig, slug string) string {
	return strings.TrimRight(site.BaseURL, "/") + path.Join("/", site.ContentPath, slug)
}

// RunScheduledPublication publishes every APPROVED item scheduled at or before
// now. Items are independent: a failure is reported for that item only.
func (s *PublicationService) RunScheduledPublication(ctx context.Context, now time.Time) (*domain.PublicationReport, error) {
	startTime := time.Now()

	runCtx := ctx
	if s.config.RunTimeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, s.config.RunTimeout)
		defer cancel()
	}

	due, err := s.contents.ListDue(runCtx, now, s.config.BatchSize)
	if err != nil {
		return nil, fmt.Errorf("list due content: %w", err)
	}

	s.logger.Info("starting publication run", "due", len(due), "workers", s.config.Workers)

	items := make([]domain.ItemReport, len(due))
	g := new(errgroup.Group)
	if s.config.Workers > 0 {
		g.SetLimit(s.config.Workers)
	}
	for i := range due {
		g.Go(func() error {
			items[i] = s.publishItem(runCtx, &due[i], now)
			return nil
		})
	}
	_ = g.Wait()

	report := &domain.PublicationReport{RunAt: now, Items: []domain.ItemReport{}}
	for _, item := range items {
		report.Add(item)
	}
	report.Duration = time.Since(startTime)

	if err := s.runs.Record(context.WithoutCancel(ctx), report); err != nil {
		s.logger.Error("failed to record publication run", "error", err)
	}

	s.logger.Info("publication run completed",
		"published", report.Published,
		"failed", report.Failed,
		"skipped", report.Skipped,
		"deferred", report.Deferred,
		"duration", report.Duration,
	)

	return report, nil
}

func (s *PublicationService) publishItem(ctx context.Context, item *domain.ContentItem, now time.Time) domain.ItemReport {
	logger := s.logger.With("content_id", item.ID, "slug", item.Slug)
	report := domain.ItemReport{ID: item.ID, Title: item.Title, Slug: item.Slug}

	// Past the deadline nothing is claimed; the next run picks the item up.
	if ctx.Err() != nil {
		report.Outcome = domain.ItemDeferred
		return report
	}

	// From the claim on, the item runs to completion even if the run deadline passes.
	ctx = context.WithoutCancel(ctx)

	if err := s.claim(ctx, item, now); err != nil {
		if errors.Is(err, domain.ErrClaimConflict) {
			logger.Info("item already claimed by another run")
			report.Outcome = domain.ItemSkipped
			return report
		}
		logger.Error("failed to publish item on site", "error", err)
		report.Outcome = domain.ItemFailed
		report.Error = err.Error()
		return report
	}

	report.Outcome = domain.ItemPublished
	report.SitePublished = true
	report.Platforms = s.syndicate(ctx, item, logger)
	return report
}

// claim is the idempotency boundary: the write only lands if the item is still APPROVED.
func (s *PublicationService) claim(ctx context.Context, item *domain.ContentItem, now time.Time) error {
	if err := item.Publish(now); err != nil {
		return err
	}
	if err := s.contents.UpdateIfStatus(ctx, item, domain.StatusApproved); err != nil {
		return fmt.Errorf("claim item: %w", err)
	}
	return nil
}

func (s *PublicationService) syndicate(ctx context.Context, item *domain.ContentItem, logger *slog.Logger, opts ...syndication.Option) []domain.PublishResult {
	url := s.CanonicalURL(item.Slug)
	results := s.fanout.PublishToAll(ctx, item.ID, item.Post(url), opts...)

	ids := make(map[domain.Platform]string)
	for _, r := range results {
		if r.Success && r.ExternalID != "" {
			ids[r.Platform] = r.ExternalID
			item.SetPlatformPostID(r.Platform, r.ExternalID)
		}
	}
	if len(ids) > 0 {
		if err := s.contents.SetPlatformPostIDs(ctx, item.ID, ids); err != nil {
			logger.Error("failed to store platform post ids", "error", err)
		}
	}

	if err := s.notifier.NotifyPublished(ctx, item, url, results); err != nil {
		logger.Warn("publication notice not sent", "error", err)
	}

	logger.Info("item published",
		"url", url,
		"platforms", len(results),
		"posted", len(ids),
	)
	return results
}

// Resyndicate retries syndication of a published item on the enabled
// platforms that have no recorded post yet. The item is leased in the store
// first, so concurrent calls for one item never post twice.
func (s *PublicationService) Resyndicate(ctx context.Context, id uuid.UUID) (*domain.ItemReport, error) {
	item, err := s.contents.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get content: %w", err)
	}
	if item.Status != domain.StatusPublished {
		return nil, &domain.InvalidTransitionError{Action: "resyndicate", From: domain.StatusPublished, Actual: item.Status}
	}

	report := &domain.ItemReport{
		ID:            item.ID,
		Title:         item.Title,
		Slug:          item.Slug,
		Outcome:       domain.ItemPublished,
		SitePublished: true,
		Platforms:     []domain.PublishResult{},
	}
	if len(s.missingPlatforms(item)) == 0 {
		return report, nil
	}

	now := time.Now().UTC()
	claimed, err := s.contents.ClaimResyndication(ctx, id, now, now.Add(s.resyndicationLease()))
	if err != nil {
		return nil, fmt.Errorf("claim resyndication: %w", err)
	}

	ctx = context.WithoutCancel(ctx)
	logger := s.logger.With("content_id", item.ID, "slug", item.Slug)
	defer func() {
		if err := s.contents.ReleaseResyndication(ctx, id); err != nil {
			logger.Error("failed to release resyndication lease", "error", err)
		}
	}()

	// The claimed state is fresh: a resyndication that finished in between
	// may already have filled some platforms.
	missing := s.missingPlatforms(claimed)
	if len(missing) == 0 {
		return report, nil
	}

	logger.Info("resyndicating item", "platforms", missing)
	report.Platforms = s.syndicate(ctx, claimed, logger, syndication.Only(missing...))
	return report, nil
}

func (s *PublicationService) missingPlatforms(item *domain.ContentItem) []domain.Platform {
	var missing []domain.Platform
	for _, p := range s.fanout.EnabledPlatforms() {
		if item.PlatformPostID(p) == nil {
			missing = append(missing, p)
		}
	}
	return missing
}

// resyndicationLease outlives one fan-out; an expired lease is taken over.
func (s *PublicationService) resyndicationLease() time.Duration {
	if s.config.RunTimeout > 0 {
		return s.config.RunTimeout
	}
	return 5 * time.Minute
}
