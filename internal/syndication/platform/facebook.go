package platform

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"

	"content_publisher/internal/config"
	"content_publisher/internal/domain"
)

const graphBaseURL = "https://graph.facebook.com/v19.0"

// Facebook posts a link share to a Page feed.
type Facebook struct {
	client *client
	pageID string
	token  string
	on     bool
}

type facebookFeedRequest struct {
	Message string `json:"message"`
	Link    string `json:"link"`
}

type graphIDResponse struct {
	ID string `json:"id"`
}

func NewFacebook(cfg config.PlatformConfig, logger *slog.Logger) *Facebook {
	return &Facebook{
		client: newClient(cfg, graphBaseURL, logger.With("platform", domain.PlatformFacebook)),
		pageID: cfg.AccountID,
		token:  cfg.AccessToken,
		on:     cfg.Enabled,
	}
}

func (f *Facebook) Platform() domain.Platform { return domain.PlatformFacebook }

func (f *Facebook) Enabled() bool {
	return f.on && f.token != "" && f.pageID != ""
}

func (f *Facebook) Render(post domain.Post) interface{} {
	return facebookFeedRequest{
		Message: caption(post, false),
		Link:    post.URL,
	}
}

func (f *Facebook) Publish(ctx context.Context, post domain.Post) (domain.Receipt, error) {
	path := fmt.Sprintf("/%s/feed?access_token=%s", url.PathEscape(f.pageID), url.QueryEscape(f.token))

	var resp graphIDResponse
	if _, err := f.client.createJSON(ctx, path, nil, f.Render(post), &resp); err != nil {
		return domain.Receipt{}, fmt.Errorf("post to page feed: %w", err)
	}
	if resp.ID == "" {
		return domain.Receipt{}, errors.New("post to page feed: empty post id")
	}

	return domain.Receipt{
		ExternalID: resp.ID,
		PostURL:    "https://www.facebook.com/" + resp.ID,
	}, nil
}
