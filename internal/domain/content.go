package domain

import (
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusDraft           Status = "DRAFT"
	StatusPendingApproval Status = "PENDING_APPROVAL"
	StatusApproved        Status = "APPROVED"
	StatusPublished       Status = "PUBLISHED"
	StatusRejected        Status = "REJECTED"
	StatusArchived        Status = "ARCHIVED"
)

func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusPendingApproval, StatusApproved,
		StatusPublished, StatusRejected, StatusArchived:
		return true
	}
	return false
}

// ContentItem is the editorial unit tracked through the publication lifecycle.
type ContentItem struct {
	ID       uuid.UUID `db:"id"`
	Slug     string    `db:"slug"`
	Title    string    `db:"title"`
	Excerpt  string    `db:"excerpt"`
	Body     string    `db:"body"` // markdown
	Category string    `db:"category"`
	Keywords []string  `db:"-"`
	Hashtags []string  `db:"-"`
	Sources  []string  `db:"-"`
	ImageURL *string   `db:"image_url"`
	Views    int64     `db:"views"`

	Status            Status     `db:"status"`
	ScheduledFor      *time.Time `db:"scheduled_for"`
	PublishedAt       *time.Time `db:"published_at"`
	ApprovalToken     *string    `db:"approval_token"`
	SentForApprovalTo string     `db:"sent_for_approval_to"`
	SentForApprovalAt *time.Time `db:"sent_for_approval_at"`
	ApprovedAt        *time.Time `db:"approved_at"`
	ApprovedBy        *string    `db:"approved_by"`
	RejectionReason   *string    `db:"rejection_reason"`
	RevisionCount     int        `db:"revision_count"`

	FacebookPostID  *string `db:"facebook_post_id"`
	InstagramPostID *string `db:"instagram_post_id"`
	LinkedInPostID  *string `db:"linkedin_post_id"`
	TwitterPostID   *string `db:"twitter_post_id"`

	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// NewDraft builds a DRAFT item with a fresh id and a slug derived from the title.
func NewDraft(title, excerpt, body, category string, now time.Time) *ContentItem {
	return &ContentItem{
		ID:        uuid.Must(uuid.NewV7()),
		Slug:      Slugify(title),
		Title:     title,
		Excerpt:   excerpt,
		Body:      body,
		Category:  category,
		Status:    StatusDraft,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// PlatformPostID returns the recorded external post id for p, or nil.
func (c *ContentItem) PlatformPostID(p Platform) *string {
	switch p {
	case PlatformFacebook:
		return c.FacebookPostID
	case PlatformInstagram:
		return c.InstagramPostID
	case PlatformLinkedIn:
		return c.LinkedInPostID
	case PlatformTwitter:
		return c.TwitterPostID
	}
	return nil
}

// SetPlatformPostID records id for p unless one is already present.
func (c *ContentItem) SetPlatformPostID(p Platform, id string) {
	if id == "" || c.PlatformPostID(p) != nil {
		return
	}
	switch p {
	case PlatformFacebook:
		c.FacebookPostID = &id
	case PlatformInstagram:
		c.InstagramPostID = &id
	case PlatformLinkedIn:
		c.LinkedInPostID = &id
	case PlatformTwitter:
		c.TwitterPostID = &id
	}
}

// Clone returns a copy that shares no mutable state with c.
func (c *ContentItem) Clone() *ContentItem {
	cp := *c
	cp.Keywords = append([]string(nil), c.Keywords...)
	cp.Hashtags = append([]string(nil), c.Hashtags...)
	cp.Sources = append([]string(nil), c.Sources...)
	return &cp
}

// Post is the platform-neutral rendering handed to every adapter.
type Post struct {
	Title    string   `json:"title"`
	Excerpt  string   `json:"excerpt"`
	Body     string   `json:"body"`
	Hashtags []string `json:"hashtags,omitempty"`
	URL      string   `json:"url"`
	ImageURL string   `json:"image_url,omitempty"`
}

func (c *ContentItem) Post(url string) Post {
	p := Post{
		Title:    c.Title,
		Excerpt:  c.Excerpt,
		Body:     c.Body,
		Hashtags: c.Hashtags,
		URL:      url,
	}
	if c.ImageURL != nil {
		p.ImageURL = *c.ImageURL
	}
	return p
}
