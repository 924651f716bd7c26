package service

import (
	"context"
	"fmt"
	"html/template"
	"strings"

	"content_publisher/internal/domain"
	"content_publisher/internal/render"
)

// Preview is what the approver sees for a pending item.
type Preview struct {
	Token      string
	Title      string
	Slug       string
	Excerpt    string
	Category   string
	BodyHTML   template.HTML
	Keywords   []string
	Sources    []string
	ImageURL   string
	ApproveURL string
	RejectURL  string
}

// PreviewService is the token-gated approval preview. It never writes.
type PreviewService struct {
	contents ContentStore
	baseURL  string
}

// NewPreviewService builds the approve/reject links on baseURL, the public
// address of the HTTP server.
func NewPreviewService(contents ContentStore, baseURL string) *PreviewService {
	return &PreviewService{contents: contents, baseURL: strings.TrimRight(baseURL, "/")}
}

// Render returns the preview for token, domain.ErrNotFound for an unknown
// token, or *domain.AlreadyProcessedError once the item left PENDING_APPROVAL.
func (s *PreviewService) Render(ctx context.Context, token string) (*Preview, error) {
	if token == "" {
		return nil, domain.ErrNotFound
	}

	item, err := s.contents.GetByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if !item.ApprovalTokenUsable() {
		return nil, &domain.AlreadyProcessedError{Status: item.Status}
	}

	body, err := render.Markdown(item.Body)
	if err != nil {
		return nil, fmt.Errorf("render body: %w", err)
	}

	base := s.baseURL
	p := &Preview{
		Token:      token,
		Title:      item.Title,
		Slug:       item.Slug,
		Excerpt:    item.Excerpt,
		Category:   item.Category,
		BodyHTML:   body,
		Keywords:   item.Keywords,
		Sources:    item.Sources,
		ApproveURL: base + "/approve/" + token,
		RejectURL:  base + "/reject/" + token,
	}
	if item.ImageURL != nil {
		p.ImageURL = *item.ImageURL
	}
	return p, nil
}
