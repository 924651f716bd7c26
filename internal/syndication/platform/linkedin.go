package platform

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"content_publisher/internal/config"
	"content_publisher/internal/domain"
)

const linkedInBaseURL = "https://api.linkedin.com"

// LinkedIn shares an article on behalf of an organization page.
type LinkedIn struct {
	client *client
	author string
	token  string
	on     bool
}

type linkedInShare struct {
	Author          string                  `json:"author"`
	LifecycleState  string                  `json:"lifecycleState"`
	SpecificContent linkedInSpecificContent `json:"specificContent"`
	Visibility      map[string]string       `json:"visibility"`
}

type linkedInSpecificContent struct {
	ShareContent linkedInShareContent `json:"com.linkedin.ugc.ShareContent"`
}

type linkedInShareContent struct {
	ShareCommentary    linkedInText    `json:"shareCommentary"`
	ShareMediaCategory string          `json:"shareMediaCategory"`
	Media              []linkedInMedia `json:"media"`
}

type linkedInText struct {
	Text string `json:"text"`
}

type linkedInMedia struct {
	Status      string       `json:"status"`
	OriginalURL string       `json:"originalUrl"`
	Title       linkedInText `json:"title"`
	Description linkedInText `json:"description"`
}

func NewLinkedIn(cfg config.PlatformConfig, logger *slog.Logger) *LinkedIn {
	author := ""
	if cfg.AccountID != "" {
		author = "urn:li:organization:" + cfg.AccountID
	}
	return &LinkedIn{
		client: newClient(cfg, linkedInBaseURL, logger.With("platform", domain.PlatformLinkedIn)),
		author: author,
		token:  cfg.AccessToken,
		on:     cfg.Enabled,
	}
}

func (l *LinkedIn) Platform() domain.Platform { return domain.PlatformLinkedIn }

func (l *LinkedIn) Enabled() bool {
	return l.on && l.token != "" && l.author != ""
}

func (l *LinkedIn) Render(post domain.Post) interface{} {
	return linkedInShare{
		Author:         l.author,
		LifecycleState: "PUBLISHED",
		SpecificContent: linkedInSpecificContent{
			ShareContent: linkedInShareContent{
				ShareCommentary:    linkedInText{Text: caption(post, false)},
				ShareMediaCategory: "ARTICLE",
				Media: []linkedInMedia{{
					Status:      "READY",
					OriginalURL: post.URL,
					Title:       linkedInText{Text: post.Title},
					Description: linkedInText{Text: post.Excerpt},
				}},
			},
		},
		Visibility: map[string]string{"com.linkedin.ugc.MemberNetworkVisibility": "PUBLIC"},
	}
}

func (l *LinkedIn) Publish(ctx context.Context, post domain.Post) (domain.Receipt, error) {
	headers := map[string]string{
		"Authorization":             "Bearer " + l.token,
		"X-Restli-Protocol-Version": "2.0.0",
	}

	var resp struct {
		ID string `json:"id"`
	}
	header, err := l.client.createJSON(ctx, "/v2/ugcPosts", headers, l.Render(post), &resp)
	if err != nil {
		return domain.Receipt{}, fmt.Errorf("create share: %w", err)
	}

	id := header.Get("X-Restli-Id")
	if id == "" {
		id = resp.ID
	}
	if id == "" {
		return domain.Receipt{}, errors.New("create share: empty share id")
	}

	return domain.Receipt{
		ExternalID: id,
		PostURL:    "https://www.linkedin.com/feed/update/" + id,
	}, nil
}
