// Package githubactions provides an HTTP client for the GitHub Actions API.
package githubactions

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/kemsio/relayd/internal/port/workflow"
	"github.com/kemsio/relayd/internal/resilience"
)

const defaultBaseURL = "https://api.github.com"

var _ workflow.Dispatcher = (*Client)(nil)

// Client talks to the GitHub Actions REST API. Credentials travel with
// each workflow.Settings, so a single client serves every source.
type Client struct {
	baseURL    string
	httpClient *http.Client
	breaker    *resilience.Breaker
}

// NewClient creates a GitHub Actions client against the public API.
func NewClient() *Client {
	return NewClientWithBaseURL(defaultBaseURL)
}

// NewClientWithBaseURL creates a client against the given API base URL.
func NewClientWithBaseURL(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// SetBreaker attaches a circuit breaker to workflow dispatch calls.
// The latest-run query stays outside the breaker: the cooldown guard
// already fails open on any error.
func (c *Client) SetBreaker(b *resilience.Breaker) {
	c.breaker = b
}

// DispatchWorkflow fires a workflow_dispatch event.
func (c *Client) DispatchWorkflow(ctx context.Context, s workflow.Settings) error {
	if err := s.Validate(); err != nil {
		return err
	}

	if c.breaker != nil {
		return c.breaker.Execute(func() error {
			return c.dispatch(ctx, s)
		})
	}
	return c.dispatch(ctx, s)
}

func (c *Client) dispatch(ctx context.Context, s workflow.Settings) error {
	payload := struct {
		Ref    string         `json:"ref"`
		Inputs map[string]any `json:"inputs,omitempty"`
	}{
		Ref:    s.Ref,
		Inputs: s.Inputs,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal dispatch: %w", err)
	}

	url := fmt.Sprintf("%s/repos/%s/actions/workflows/%s/dispatches", c.baseURL, s.Repo, s.WorkflowID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("dispatch request: %w", err)
	}
	c.setHeaders(req, s.Token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("dispatch workflow: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	// GitHub returns 204 on a successful dispatch.
	if resp.StatusCode != http.StatusNoContent {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("github API %d: %s", resp.StatusCode, string(respBody))
	}

	return nil
}

// LatestRun returns the creation time of the most recent run of the
// workflow, or workflow.ErrNoRuns when the workflow has never run.
func (c *Client) LatestRun(ctx context.Context, s workflow.Settings) (time.Time, error) {
	url := fmt.Sprintf("%s/repos/%s/actions/workflows/%s/runs?per_page=1", c.baseURL, s.Repo, s.WorkflowID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return time.Time{}, fmt.Errorf("latest run request: %w", err)
	}
	c.setHeaders(req, s.Token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return time.Time{}, fmt.Errorf("latest run: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return time.Time{}, fmt.Errorf("github API %d: %s", resp.StatusCode, string(respBody))
	}

	var result struct {
		WorkflowRuns []struct {
			CreatedAt time.Time `json:"created_at"`
		} `json:"workflow_runs"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return time.Time{}, fmt.Errorf("parse runs: %w", err)
	}

	if len(result.WorkflowRuns) == 0 {
		return time.Time{}, workflow.ErrNoRuns
	}
	return result.WorkflowRuns[0].CreatedAt, nil
}

func (c *Client) setHeaders(req *http.Request, token string) {
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("X-GitHub-Api-Version", "2022-11-28")
}
