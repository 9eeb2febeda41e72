// Package stravaapi provides an HTTP client for the Strava v3 API with
// OAuth token management backed by a local token-cache file.
package stravaapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/kemsio/relayd/internal/config"
	"github.com/kemsio/relayd/internal/port/fitness"
)

const virtualRideType = "VirtualRide"

var _ fitness.Client = (*Client)(nil)

// Client talks to the Strava API on behalf of a single athlete.
type Client struct {
	baseURL      string
	tokenURL     string
	clientID     string
	clientSecret string
	tokenFile    string

	// Optional env-seeded tokens used before a cache file exists.
	initialAccess  string
	initialRefresh string

	httpClient *http.Client

	mu           sync.Mutex
	tokens       *tokenData
	refreshGroup singleflight.Group
	now          func() time.Time // for testing
}

// NewClient creates a Strava client from configuration.
func NewClient(cfg config.Strava) *Client {
	return &Client{
		baseURL:        cfg.BaseURL,
		tokenURL:       cfg.TokenURL,
		clientID:       cfg.ClientID,
		clientSecret:   cfg.ClientSecret,
		tokenFile:      cfg.TokenFile,
		initialAccess:  cfg.AccessToken,
		initialRefresh: cfg.RefreshToken,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		now: time.Now,
	}
}

// Activity fetches full details for the given activity id.
func (c *Client) Activity(ctx context.Context, id int64) (fitness.Activity, error) {
	token, err := c.accessToken(ctx)
	if err != nil {
		return fitness.Activity{}, err
	}

	url := fmt.Sprintf("%s/activities/%d", c.baseURL, id)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fitness.Activity{}, fmt.Errorf("activity request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fitness.Activity{}, fmt.Errorf("fetch activity %d: %w", id, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fitness.Activity{}, fmt.Errorf("strava API %d: %s", resp.StatusCode, string(body))
	}

	var raw struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
		Type string `json:"type"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return fitness.Activity{}, fmt.Errorf("parse activity: %w", err)
	}

	return fitness.Activity{ID: raw.ID, Name: raw.Name, Type: raw.Type}, nil
}

// IsVirtualRide reports whether the activity is a VirtualRide.
func (c *Client) IsVirtualRide(ctx context.Context, id int64) (bool, error) {
	activity, err := c.Activity(ctx, id)
	if err != nil {
		return false, err
	}
	return activity.Type == virtualRideType, nil
}
