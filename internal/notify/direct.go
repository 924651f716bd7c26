package notify

import (
	"context"
	"fmt"
	"log/slog"

	"content_publisher/internal/domain"
)

// Direct renders and sends the confirmation inline. It is used when no
// broker is configured.
type Direct struct {
	sender Sender
	logger *slog.Logger
}

func NewDirect(sender Sender, logger *slog.Logger) *Direct {
	return &Direct{sender: sender, logger: logger.With("component", "notify")}
}

func (d *Direct) NotifyPublished(ctx context.Context, item *domain.ContentItem, url string, results []domain.PublishResult) error {
	return Deliver(ctx, d.sender, NewPublishedMessage(item, url, results))
}

// Deliver renders msg and hands it to sender.
func Deliver(ctx context.Context, sender Sender, msg PublishedMessage) error {
	if msg.To == "" {
		return fmt.Errorf("%w: no recipient for %s", domain.ErrNotificationFailure, msg.ContentID)
	}

	subject, html, text, err := RenderPublished(msg)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrNotificationFailure, err)
	}

	if err := sender.Send(ctx, msg.To, subject, html, text); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrNotificationFailure, err)
	}
	return nil
}
