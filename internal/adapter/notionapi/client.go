// Package notionapi provides an HTTP client for the Notion pages API.
package notionapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/kemsio/relayd/internal/port/pages"
)

const (
	apiVersion = "2022-06-28"

	// Property names inspected on fetched pages.
	todayProperty = "Today"
	nameProperty  = "Name"

	unknownTitle = "Unknown Title"
)

var _ pages.Client = (*Client)(nil)

// Client talks to the Notion REST API.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewClient creates a Notion API client.
func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL: baseURL,
		token:   token,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// pageResponse mirrors the subset of the Notion page object we inspect.
// Properties are dynamic per database, so values are decoded loosely.
type pageResponse struct {
	ID         string                  `json:"id"`
	Object     string                  `json:"object"`
	Properties map[string]pageProperty `json:"properties"`
}

type pageProperty struct {
	Type     string     `json:"type"`
	Checkbox *bool      `json:"checkbox,omitempty"`
	Title    []richText `json:"title,omitempty"`
}

type richText struct {
	PlainText string `json:"plain_text"`
}

// FetchPage fetches the page's properties. The returned Page reports
// the "Today" checkbox state and a best-effort title.
func (c *Client) FetchPage(ctx context.Context, pageID string) (pages.Page, error) {
	if c.token == "" {
		return pages.Page{}, fmt.Errorf("notion: api token not configured")
	}

	url := fmt.Sprintf("%s/v1/pages/%s", c.baseURL, pageID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return pages.Page{}, fmt.Errorf("notion request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Notion-Version", apiVersion)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return pages.Page{}, fmt.Errorf("fetch page %s: %w", pageID, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return pages.Page{}, fmt.Errorf("notion API %d: %s", resp.StatusCode, string(body))
	}

	var raw pageResponse
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return pages.Page{}, fmt.Errorf("parse page: %w", err)
	}

	return pages.Page{
		ID:    raw.ID,
		Today: todayChecked(raw.Properties),
		Title: pageTitle(raw.Properties),
	}, nil
}

func todayChecked(props map[string]pageProperty) bool {
	p, ok := props[todayProperty]
	if !ok || p.Type != "checkbox" || p.Checkbox == nil {
		return false
	}
	return *p.Checkbox
}

// pageTitle extracts the page title, tolerating a missing or empty
// title property.
func pageTitle(props map[string]pageProperty) string {
	p, ok := props[nameProperty]
	if !ok || len(p.Title) == 0 {
		return unknownTitle
	}
	if p.Title[0].PlainText == "" {
		return unknownTitle
	}
	return p.Title[0].PlainText
}
