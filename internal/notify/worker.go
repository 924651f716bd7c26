package notify

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	amqp "github.com/rabbitmq/amqp091-go"

	"content_publisher/internal/domain"
)

// Acknowledger is the subset of amqp.Delivery the worker settles messages with.
type Acknowledger interface {
	Ack(multiple bool) error
	Nack(multiple, requeue bool) error
}

// Worker drains the notification queue into a Sender.
type Worker struct {
	sender Sender
	logger *slog.Logger
}

func NewWorker(sender Sender, logger *slog.Logger) *Worker {
	return &Worker{sender: sender, logger: logger.With("component", "notify-worker")}
}

// Run handles deliveries until ctx is done or the channel closes.
func (w *Worker) Run(ctx context.Context, deliveries <-chan amqp.Delivery) error {
	w.logger.Info("notify worker started")
	for {
		select {
		case <-ctx.Done():
			w.logger.Info("notify worker stopped")
			return nil
		case d, ok := <-deliveries:
			if !ok {
				return errors.New("delivery channel closed")
			}
			w.Handle(ctx, d.Body, d.Redelivered, d)
		}
	}
}

// Handle sends one message. A failed send is requeued once; a message that
// cannot be decoded or has no recipient is dropped.
func (w *Worker) Handle(ctx context.Context, body []byte, redelivered bool, ack Acknowledger) {
	var msg PublishedMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		w.logger.Error("drop undecodable message", "error", err)
		_ = ack.Nack(false, false)
		return
	}

	err := Deliver(ctx, w.sender, msg)
	switch {
	case err == nil:
		w.logger.Info("publication notice sent", "content_id", msg.ContentID, "to", msg.To)
		_ = ack.Ack(false)
	case errors.Is(err, domain.ErrNotConfigured) || msg.To == "":
		w.logger.Warn("drop publication notice", "content_id", msg.ContentID, "error", err)
		_ = ack.Nack(false, false)
	default:
		requeue := !redelivered
		w.logger.Error("send publication notice",
			"content_id", msg.ContentID,
			"requeue", requeue,
			"error", err,
		)
		_ = ack.Nack(false, requeue)
	}
}
