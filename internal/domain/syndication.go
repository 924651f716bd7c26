package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Platform identifies one social channel. The set is closed.
type Platform string

const (
	PlatformFacebook  Platform = "facebook"
	PlatformInstagram Platform = "instagram"
	PlatformLinkedIn  Platform = "linkedin"
	PlatformTwitter   Platform = "twitter"
)

// Platforms lists every supported platform in fan-out order.
var Platforms = []Platform{PlatformFacebook, PlatformInstagram, PlatformLinkedIn, PlatformTwitter}

func (p Platform) Valid() bool {
	for _, known := range Platforms {
		if p == known {
			return true
		}
	}
	return false
}

// PublishResult is one adapter's answer for one content item.
type PublishResult struct {
	Platform   Platform        `json:"platform"`
	Success    bool            `json:"success"`
	ExternalID string          `json:"external_id,omitempty"`
	PostURL    string          `json:"post_url,omitempty"`
	Error      string          `json:"error,omitempty"`
	Payload    json.RawMessage `json:"-"`
}

type Outcome string

const (
	OutcomePosted Outcome = "posted"
	OutcomeFailed Outcome = "failed"
)

// SyndicationRecord is the append-only audit entry for one publish attempt on one platform.
type SyndicationRecord struct {
	ID         uuid.UUID       `db:"id"`
	ContentID  uuid.UUID       `db:"content_id"`
	Platform   Platform        `db:"platform"`
	ExternalID *string         `db:"external_id"`
	Outcome    Outcome         `db:"outcome"`
	Error      *string         `db:"error"`
	PostedAt   *time.Time      `db:"posted_at"`
	Payload    json.RawMessage `db:"payload"`
	CreatedAt  time.Time       `db:"created_at"`
}

// NewSyndicationRecord converts a result into its audit record.
func NewSyndicationRecord(contentID uuid.UUID, r PublishResult, now time.Time) *SyndicationRecord {
	rec := &SyndicationRecord{
		ID:        uuid.Must(uuid.NewV7()),
		ContentID: contentID,
		Platform:  r.Platform,
		Payload:   r.Payload,
		CreatedAt: now,
	}
	if len(rec.Payload) == 0 {
		rec.Payload = json.RawMessage("{}")
	}
	if r.Success {
		rec.Outcome = OutcomePosted
		rec.PostedAt = &now
		if r.ExternalID != "" {
			id := r.ExternalID
			rec.ExternalID = &id
		}
	} else {
		rec.Outcome = OutcomeFailed
		msg := r.Error
		if msg == "" {
			msg = ErrAdapterFailure.Error()
		}
		rec.Error = &msg
	}
	return rec
}

// Receipt is what a platform hands back after a successful post.
type Receipt struct {
	ExternalID string
	PostURL    string
}
