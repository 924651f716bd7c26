// Package syndication fans a published content item out to the configured
// social platforms and keeps the audit trail of every attempt.
package syndication

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"content_publisher/internal/domain"
)

// Adapter is one social channel. The implementations form a closed set, one
// per domain.Platform.
type Adapter interface {
	Platform() domain.Platform
	Enabled() bool
	// Render returns the platform request body, without credentials.
	Render(post domain.Post) interface{}
	Publish(ctx context.Context, post domain.Post) (domain.Receipt, error)
}

type RecordStore interface {
	Append(ctx context.Context, rec *domain.SyndicationRecord) error
}

type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type Fanout struct {
	adapters    []Adapter
	records     RecordStore
	txManager   TransactionManager
	callTimeout time.Duration
	logger      *slog.Logger
	now         func() time.Time
}

func NewFanout(
	adapters []Adapter,
	records RecordStore,
	txManager TransactionManager,
	callTimeout time.Duration,
	logger *slog.Logger,
) *Fanout {
	return &Fanout{
		adapters:    adapters,
		records:     records,
		txManager:   txManager,
		callTimeout: callTimeout,
		logger:      logger.With("component", "syndication"),
		now:         func() time.Time { return time.Now().UTC() },
	}
}

type options struct {
	only map[domain.Platform]bool
}

type Option func(*options)

// Only restricts a fan-out to the given platforms.
func Only(platforms ...domain.Platform) Option {
	return func(o *options) {
		o.only = make(map[domain.Platform]bool, len(platforms))
		for _, p := range platforms {
			o.only[p] = true
		}
	}
}

// EnabledPlatforms lists the platforms a fan-out would attempt.
func (f *Fanout) EnabledPlatforms() []domain.Platform {
	var out []domain.Platform
	for _, a := range f.adapters {
		if a.Enabled() {
			out = append(out, a.Platform())
		}
	}
	return out
}

// PublishToAll posts to every enabled adapter concurrently and returns one
// result per attempted adapter, in adapter order. It never fails: adapter
// errors become failed results, and every result is appended to the audit log.
func (f *Fanout) PublishToAll(ctx context.Context, contentID uuid.UUID, post domain.Post, opts ...Option) []domain.PublishResult {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	var selected []Adapter
	for _, a := range f.adapters {
		if !a.Enabled() {
			continue
		}
		if o.only != nil && !o.only[a.Platform()] {
			continue
		}
		selected = append(selected, a)
	}

	results := make([]domain.PublishResult, len(selected))
	var wg sync.WaitGroup
	for i, a := range selected {
		wg.Add(1)
		go func(i int, a Adapter) {
			defer wg.Done()
			results[i] = f.publishOne(ctx, a, post)
		}(i, a)
	}
	wg.Wait()

	f.record(ctx, contentID, results)
	return results
}

func (f *Fanout) publishOne(ctx context.Context, a Adapter, post domain.Post) (result domain.PublishResult) {
	logger := f.logger.With("platform", a.Platform())
	result.Platform = a.Platform()

	defer func() {
		if r := recover(); r != nil {
			logger.Error("adapter panicked", "panic", r)
			result.Success = false
			result.ExternalID, result.PostURL = "", ""
			result.Error = fmt.Sprintf("%s: panic: %v", domain.ErrAdapterFailure, r)
		}
	}()

	if payload, err := json.Marshal(a.Render(post)); err == nil {
		result.Payload = payload
	}

	callCtx := ctx
	if f.callTimeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, f.callTimeout)
		defer cancel()
	}

	start := time.Now()
	receipt, err := a.Publish(callCtx, post)
	if err != nil {
		logger.Warn("platform publish failed", "error", err, "elapsed", time.Since(start))
		result.Error = err.Error()
		return result
	}

	logger.Info("platform publish succeeded", "external_id", receipt.ExternalID, "elapsed", time.Since(start))
	result.Success = true
	result.ExternalID = receipt.ExternalID
	result.PostURL = receipt.PostURL
	return result
}

// record appends the whole attempt set in one transaction so an item never
// ends up with audit entries for only some of the platforms it was sent to.
func (f *Fanout) record(ctx context.Context, contentID uuid.UUID, results []domain.PublishResult) {
	if len(results) == 0 {
		return
	}
	now := f.now()

	err := f.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		for _, r := range results {
			if err := f.records.Append(txCtx, domain.NewSyndicationRecord(contentID, r, now)); err != nil {
				return fmt.Errorf("append %s record: %w", r.Platform, err)
			}
		}
		return nil
	})
	if err != nil {
		f.logger.Error("failed to record syndication attempts",
			"content_id", contentID,
			"results", len(results),
			"error", err,
		)
	}
}
