package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"content_publisher/internal/config"
	"content_publisher/internal/domain"
	"content_publisher/internal/notify"
)

// WorkflowService drives the human side of the lifecycle: drafting, the
// approval round trip and archiving.
type WorkflowService struct {
	contents ContentStore
	sender   Sender
	baseURL  string
	approval config.ApprovalConfig
	logger   *slog.Logger
	now      func() time.Time
}

// maxSlugAttempts bounds the numeric suffixes tried for a taken slug.
const maxSlugAttempts = 20

func NewWorkflowService(
	contents ContentStore,
	sender Sender,
	baseURL string,
	approval config.ApprovalConfig,
	logger *slog.Logger,
) *WorkflowService {
	return &WorkflowService{
		contents: contents,
		sender:   sender,
		baseURL:  strings.TrimRight(baseURL, "/"),
		approval: approval,
		logger:   logger.With("component", "workflow"),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// PreviewURL is the tokenized link mailed to the approver.
func (s *WorkflowService) PreviewURL(token string) string {
	return s.baseURL + "/preview/" + token
}

func (s *WorkflowService) CreateDraft(ctx context.Context, item *domain.ContentItem) error {
	if item.Status != domain.StatusDraft {
		return &domain.InvalidTransitionError{Action: "create", From: domain.StatusDraft, Actual: item.Status}
	}
	base := item.Slug
	for n := 2; ; n++ {
		err := s.contents.Create(ctx, item)
		if err == nil {
			break
		}
		if !errors.Is(err, domain.ErrSlugTaken) || n > maxSlugAttempts {
			return fmt.Errorf("create draft: %w", err)
		}
		item.Slug = fmt.Sprintf("%s-%d", base, n)
	}
	s.logger.Info("draft created", "content_id", item.ID, "slug", item.Slug)
	return nil
}

// SubmitForApproval issues a fresh approval token and mails the preview link
// to approver. The mail is best-effort; the transition stands if it fails.
func (s *WorkflowService) SubmitForApproval(ctx context.Context, id uuid.UUID, approver string) (*domain.ContentItem, error) {
	approver = strings.TrimSpace(approver)
	if approver == "" {
		return nil, errors.New("approver is required")
	}

	item, err := s.transition(ctx, id, domain.StatusDraft, func(item *domain.ContentItem, now time.Time) error {
		return item.SubmitForApproval(uuid.NewString(), approver, now)
	})
	if err != nil {
		return nil, err
	}

	logger := s.logger.With("content_id", item.ID, "approver", approver)
	previewURL := s.PreviewURL(*item.ApprovalToken)
	subject, html, text, err := notify.RenderApprovalRequest(item, previewURL)
	if err == nil {
		err = s.sender.Send(ctx, approver, subject, html, text)
	}
	if err != nil {
		logger.Warn("approval request not sent", "preview_url", previewURL, "error", err)
	} else {
		logger.Info("approval requested")
	}
	return item, nil
}

// Approve schedules the item behind token. A nil or past scheduledFor
// publishes at the next run; nil means now plus the default approval delay.
func (s *WorkflowService) Approve(ctx context.Context, token string, scheduledFor *time.Time) (*domain.ContentItem, error) {
	return s.decide(ctx, token, func(item *domain.ContentItem, now time.Time) error {
		at := now.Add(s.approval.DefaultDelay)
		if scheduledFor != nil {
			at = *scheduledFor
			if at.Before(now) {
				at = now
			}
		}
		return item.Approve(item.SentForApprovalTo, at.UTC(), now)
	})
}

func (s *WorkflowService) Reject(ctx context.Context, token, reason string) (*domain.ContentItem, error) {
	return s.decide(ctx, token, func(item *domain.ContentItem, now time.Time) error {
		return item.Reject(reason, now)
	})
}

// Revise reopens a rejected item as a draft.
func (s *WorkflowService) Revise(ctx context.Context, id uuid.UUID) (*domain.ContentItem, error) {
	return s.transition(ctx, id, domain.StatusRejected, func(item *domain.ContentItem, now time.Time) error {
		return item.Revise(now)
	})
}

func (s *WorkflowService) Archive(ctx context.Context, id uuid.UUID) (*domain.ContentItem, error) {
	return s.transition(ctx, id, domain.StatusPublished, func(item *domain.ContentItem, now time.Time) error {
		return item.Archive(now)
	})
}

// decide applies an approver's decision. Tokens are honoured only while the
// item is PENDING_APPROVAL; afterwards they only report the current status.
func (s *WorkflowService) decide(ctx context.Context, token string, apply func(*domain.ContentItem, time.Time) error) (*domain.ContentItem, error) {
	item, err := s.contents.GetByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if !item.ApprovalTokenUsable() {
		return nil, &domain.AlreadyProcessedError{Status: item.Status}
	}

	decided, err := s.transition(ctx, item.ID, domain.StatusPendingApproval, apply)
	if errors.Is(err, domain.ErrClaimConflict) || errors.Is(err, domain.ErrInvalidTransition) {
		// Lost a race with another decision on the same token.
		if current, getErr := s.contents.GetByID(ctx, item.ID); getErr == nil {
			return nil, &domain.AlreadyProcessedError{Status: current.Status}
		}
	}
	return decided, err
}

func (s *WorkflowService) transition(
	ctx context.Context,
	id uuid.UUID,
	from domain.Status,
	apply func(*domain.ContentItem, time.Time) error,
) (*domain.ContentItem, error) {
	item, err := s.contents.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := apply(item, s.now()); err != nil {
		return nil, err
	}

	if err := s.contents.UpdateIfStatus(ctx, item, from); err != nil {
		return nil, fmt.Errorf("update content: %w", err)
	}

	s.logger.Info("content transitioned",
		"content_id", item.ID,
		"from", from,
		"to", item.Status,
	)
	return item, nil
}
