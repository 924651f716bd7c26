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

var ErrImageRequired = errors.New("instagram requires an image")

// Instagram publishes an image post through the two-step container API.
type Instagram struct {
	client *client
	userID string
	token  string
	on     bool
}

type instagramMediaRequest struct {
	ImageURL string `json:"image_url"`
	Caption  string `json:"caption"`
}

type instagramPublishRequest struct {
	CreationID string `json:"creation_id"`
}

func NewInstagram(cfg config.PlatformConfig, logger *slog.Logger) *Instagram {
	return &Instagram{
		client: newClient(cfg, graphBaseURL, logger.With("platform", domain.PlatformInstagram)),
		userID: cfg.AccountID,
		token:  cfg.AccessToken,
		on:     cfg.Enabled,
	}
}

func (i *Instagram) Platform() domain.Platform { return domain.PlatformInstagram }

func (i *Instagram) Enabled() bool {
	return i.on && i.token != "" && i.userID != ""
}

// Render uses the link-in-caption form since Instagram captions are not clickable.
func (i *Instagram) Render(post domain.Post) interface{} {
	return instagramMediaRequest{
		ImageURL: post.ImageURL,
		Caption:  caption(post, true),
	}
}

func (i *Instagram) Publish(ctx context.Context, post domain.Post) (domain.Receipt, error) {
	if post.ImageURL == "" {
		return domain.Receipt{}, ErrImageRequired
	}

	auth := "?access_token=" + url.QueryEscape(i.token)
	user := url.PathEscape(i.userID)

	var container graphIDResponse
	if _, err := i.client.postJSON(ctx, "/"+user+"/media"+auth, nil, i.Render(post), &container); err != nil {
		return domain.Receipt{}, fmt.Errorf("create media container: %w", err)
	}
	if container.ID == "" {
		return domain.Receipt{}, errors.New("create media container: empty container id")
	}

	var published graphIDResponse
	req := instagramPublishRequest{CreationID: container.ID}
	if _, err := i.client.createJSON(ctx, "/"+user+"/media_publish"+auth, nil, req, &published); err != nil {
		return domain.Receipt{}, fmt.Errorf("publish media container: %w", err)
	}
	if published.ID == "" {
		return domain.Receipt{}, errors.New("publish media container: empty media id")
	}

	return domain.Receipt{ExternalID: published.ID}, nil
}
