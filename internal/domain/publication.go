package domain

import (
	"time"

	"github.com/google/uuid"
)

type ItemOutcome string

const (
	ItemPublished ItemOutcome = "published"
	ItemFailed    ItemOutcome = "failed"
	// ItemSkipped means another run claimed the item first.
	ItemSkipped ItemOutcome = "skipped"
	// ItemDeferred means the run deadline passed before the item was claimed.
	ItemDeferred ItemOutcome = "deferred"
)

// ItemReport holds the outcome of one content item within a publication run.
type ItemReport struct {
	ID            uuid.UUID       `json:"id"`
	Title         string          `json:"title"`
	Slug          string          `json:"slug"`
	Outcome       ItemOutcome     `json:"outcome"`
	SitePublished bool            `json:"site_published"`
	Error         string          `json:"error,omitempty"`
	Platforms     []PublishResult `json:"platforms"`
}

// PublicationReport summarizes one orchestrator run.
type PublicationReport struct {
	RunAt     time.Time     `json:"run_at"`
	Published int           `json:"published"`
	Failed    int           `json:"failed"`
	Skipped   int           `json:"skipped"`
	Deferred  int           `json:"deferred"`
	Duration  time.Duration `json:"duration_ns"`
	Items     []ItemReport  `json:"items"`
}

func (r *PublicationReport) Add(item ItemReport) {
	if item.Platforms == nil {
		item.Platforms = []PublishResult{}
	}
	switch item.Outcome {
	case ItemPublished:
		r.Published++
	case ItemFailed:
		r.Failed++
	case ItemSkipped:
		r.Skipped++
	case ItemDeferred:
		r.Deferred++
	}
	r.Items = append(r.Items, item)
}

// RunSummary is the persisted headline of a past run.
type RunSummary struct {
	RunAt      time.Time `db:"run_at" json:"run_at"`
	Published  int       `db:"published" json:"published"`
	Failed     int       `db:"failed" json:"failed"`
	Skipped    int       `db:"skipped" json:"skipped"`
	Deferred   int       `db:"deferred" json:"deferred"`
	DurationMS int64     `db:"duration_ms" json:"duration_ms"`
}
