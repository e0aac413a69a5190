package vlr

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/dkotenko/vlrbot/internal/pkg/config"
	"github.com/dkotenko/vlrbot/internal/pkg/models"
)

// QueryMode selects which result set the provider returns.
type QueryMode string

const (
	ModeUpcoming QueryMode = "upcoming"
	ModeLive     QueryMode = "live_score"
)

// Client fetches match snapshots from a vlrggapi instance. One request per
// call, no retries; polling callers simply try again next cycle.
type Client struct {
	client    *http.Client
	baseURL   string
	userAgent string
}

func NewClient(cfg *config.VLRConfig) *Client {
	return &Client{
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL:   cfg.BaseURL,
		userAgent: cfg.UserAgent,
	}
}

func (c *Client) Fetch(ctx context.Context, mode QueryMode) (*models.MatchSnapshot, error) {
	url := c.baseURL + "/match"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	q := req.URL.Query()
	q.Set("q", string(mode))
	req.URL.RawQuery = q.Encode()

	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &TransportError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &TransportError{URL: url, StatusCode: resp.StatusCode}
	}

	var snapshot models.MatchSnapshot
	if err := json.NewDecoder(resp.Body).Decode(&snapshot); err != nil {
		return nil, &ParseError{Err: err}
	}

	return &snapshot, nil
}
