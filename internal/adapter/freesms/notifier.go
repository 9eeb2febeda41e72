// Package freesms implements a notifier.Notifier for the Free Mobile SMS API.
package freesms

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/kemsio/relayd/internal/port/notifier"
	"github.com/kemsio/relayd/internal/resilience"
)

const providerName = "freemobile"

var _ notifier.Notifier = (*Gateway)(nil)

// Gateway sends SMS through the Free Mobile notification endpoint.
// The API is a single GET with user/pass/msg query parameters.
type Gateway struct {
	baseURL    string
	user       string
	pass       string
	httpClient *http.Client
	breaker    *resilience.Breaker
}

// NewGateway creates a Free Mobile SMS gateway client.
func NewGateway(baseURL, user, pass string) *Gateway {
	return &Gateway{
		baseURL: baseURL,
		user:    user,
		pass:    pass,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// SetBreaker attaches a circuit breaker to all outgoing calls.
func (g *Gateway) SetBreaker(b *resilience.Breaker) {
	g.breaker = b
}

func (g *Gateway) Name() string { return providerName }

// Send delivers one SMS with the given message text.
func (g *Gateway) Send(ctx context.Context, message string) error {
	if g.user == "" || g.pass == "" {
		return notifier.ErrNotConfigured
	}

	if g.breaker != nil {
		return g.breaker.Execute(func() error {
			return g.send(ctx, message)
		})
	}
	return g.send(ctx, message)
}

func (g *Gateway) send(ctx context.Context, message string) error {
	q := url.Values{}
	q.Set("user", g.user)
	q.Set("pass", g.pass)
	q.Set("msg", message)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return fmt.Errorf("freesms request: %w", err)
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("freesms send: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	// The gateway answers 200 on success, 402 on disabled option,
	// 403 on bad credentials.
	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("freesms API %d: %s", resp.StatusCode, string(body))
	}

	return nil
}
