// Package notify delivers the best-effort emails around publication: the
// approval request sent to a reviewer and the confirmation sent once an item
// went live.
package notify

import (
	"context"
	"time"

	"github.com/google/uuid"

	"content_publisher/internal/domain"
)

// Sender is the mail transport.
type Sender interface {
	Send(ctx context.Context, to, subject, html, text string) error
}

// PublishedMessage carries everything needed to render the confirmation
// email, so the worker never has to read the content store.
type PublishedMessage struct {
	ContentID   uuid.UUID              `json:"content_id"`
	To          string                 `json:"to"`
	Title       string                 `json:"title"`
	Slug        string                 `json:"slug"`
	URL         string                 `json:"url"`
	ApprovedBy  string                 `json:"approved_by"`
	PublishedAt time.Time              `json:"published_at"`
	Results     []domain.PublishResult `json:"results"`
	Timestamp   time.Time              `json:"timestamp"`
}

func NewPublishedMessage(item *domain.ContentItem, url string, results []domain.PublishResult) PublishedMessage {
	msg := PublishedMessage{
		ContentID: item.ID,
		Title:     item.Title,
		Slug:      item.Slug,
		URL:       url,
		Results:   results,
		Timestamp: time.Now().UTC(),
	}
	msg.To = item.SentForApprovalTo
	if item.ApprovedBy != nil {
		msg.ApprovedBy = *item.ApprovedBy
		msg.To = *item.ApprovedBy
	}
	if item.PublishedAt != nil {
		msg.PublishedAt = *item.PublishedAt
	}
	return msg
}
