package platform

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"content_publisher/internal/config"
	"content_publisher/internal/domain"
)

const (
	twitterBaseURL = "https://api.twitter.com"
	tweetLimit     = 280
	// t.co wraps every link to this length regardless of the original.
	tweetURLLength = 23
)

// Twitter posts a tweet through the v2 API with a user-context bearer token.
type Twitter struct {
	client *client
	token  string
	on     bool
}

type tweetRequest struct {
	Text string `json:"text"`
}

type tweetResponse struct {
	Data struct {
		ID   string `json:"id"`
		Text string `json:"text"`
	} `json:"data"`
}

func NewTwitter(cfg config.PlatformConfig, logger *slog.Logger) *Twitter {
	return &Twitter{
		client: newClient(cfg, twitterBaseURL, logger.With("platform", domain.PlatformTwitter)),
		token:  cfg.AccessToken,
		on:     cfg.Enabled,
	}
}

func (t *Twitter) Platform() domain.Platform { return domain.PlatformTwitter }

func (t *Twitter) Enabled() bool {
	return t.on && t.token != ""
}

func (t *Twitter) Render(post domain.Post) interface{} {
	return tweetRequest{Text: tweetText(post)}
}

func (t *Twitter) Publish(ctx context.Context, post domain.Post) (domain.Receipt, error) {
	headers := map[string]string{"Authorization": "Bearer " + t.token}

	var resp tweetResponse
	if _, err := t.client.createJSON(ctx, "/2/tweets", headers, t.Render(post), &resp); err != nil {
		return domain.Receipt{}, fmt.Errorf("create tweet: %w", err)
	}
	if resp.Data.ID == "" {
		return domain.Receipt{}, errors.New("create tweet: empty tweet id")
	}

	return domain.Receipt{
		ExternalID: resp.Data.ID,
		PostURL:    "https://twitter.com/i/web/status/" + resp.Data.ID,
	}, nil
}

// tweetText fits title, hashtags and link into one tweet, shortening the
// title first and dropping hashtags only if the title alone cannot fit.
func tweetText(post domain.Post) string {
	tags := hashtags(post.Hashtags)

	budget := tweetLimit
	if post.URL != "" {
		budget -= tweetURLLength + 1
	}

	text := post.Title
	if tags != "" && utf8.RuneCountInString(text)+1+utf8.RuneCountInString(tags) <= budget {
		text += " " + tags
	} else if utf8.RuneCountInString(text) > budget {
		text = truncate(text, budget)
	}

	if post.URL != "" {
		text = strings.TrimSpace(text + " " + post.URL)
	}
	return text
}

func truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return strings.TrimSpace(string(runes[:limit-1])) + "…"
}
