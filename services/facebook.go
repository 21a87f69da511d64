package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bellapacxx/academy-backend/metrics"
	"github.com/bellapacxx/academy-backend/utils/logger"
)

// Announcer publishes a short message with a link somewhere public.
type Announcer interface {
	Announce(ctx context.Context, message, link string) error
}

// PagePoster posts to the feed of a Facebook page through the Graph API.
type PagePoster struct {
	APIURL      string
	PageID      string
	AccessToken string
	Client      *http.Client
}

func NewPagePoster(apiURL, pageID, accessToken string) *PagePoster {
	return &PagePoster{
		APIURL:      strings.TrimSuffix(apiURL, "/"),
		PageID:      pageID,
		AccessToken: accessToken,
		Client:      &http.Client{Timeout: 10 * time.Second},
	}
}

type pagePostResponse struct {
	ID    string `json:"id"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    int    `json:"code"`
	} `json:"error"`
}

// Announce posts message with link to the page feed. It does nothing when
// the poster has no page or token configured.
func (p *PagePoster) Announce(ctx context.Context, message, link string) error {
	if p.PageID == "" || p.AccessToken == "" {
		logger.Debugf("[Facebook] posting disabled, skipping %q", message)
		metrics.PagePosts.WithLabelValues("skipped").Inc()
		return nil
	}

	form := url.Values{}
	form.Set("message", message)
	form.Set("link", link)
	form.Set("access_token", p.AccessToken)

	endpoint := fmt.Sprintf("%s/%s/feed", p.APIURL, url.PathEscape(p.PageID))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.Client.Do(req)
	if err != nil {
		metrics.PagePosts.WithLabelValues("error").Inc()
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		metrics.PagePosts.WithLabelValues("error").Inc()
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		metrics.PagePosts.WithLabelValues("error").Inc()
		var parsed pagePostResponse
		if json.Unmarshal(body, &parsed) == nil && parsed.Error != nil {
			return fmt.Errorf("page post rejected (%d): %s", resp.StatusCode, parsed.Error.Message)
		}
		return fmt.Errorf("page post rejected (%d): %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var parsed pagePostResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		metrics.PagePosts.WithLabelValues("error").Inc()
		return fmt.Errorf("failed to parse response JSON: %w", err)
	}

	metrics.PagePosts.WithLabelValues("posted").Inc()
	logger.Infof("[Facebook] posted %s", parsed.ID)
	return nil
}

// AnnounceGame builds the game-start message for the given player names.
func AnnounceGame(usernames []string) string {
	return fmt.Sprintf("A game between %s just started!", strings.Join(usernames, ", "))
}
