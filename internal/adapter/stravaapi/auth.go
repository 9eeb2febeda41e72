package stravaapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"
)

// ErrNotAuthorized is returned when no usable token or refresh token
// exists. The caller must complete the authorization-code exchange.
var ErrNotAuthorized = errors.New("strava: not authorized, complete the OAuth flow first")

// expiryBuffer refreshes tokens slightly before they actually expire.
const expiryBuffer = 5 * time.Minute

// tokenData is the on-disk token cache format.
type tokenData struct {
	TokenType    string `json:"token_type"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresAt    int64  `json:"expires_at"`
}

func (t *tokenData) expired(now time.Time) bool {
	return now.Unix() >= t.ExpiresAt-int64(expiryBuffer.Seconds())
}

// loadTokens reads the token cache file. A missing file is tolerated:
// it means the client has not been authorized yet on this host.
func (c *Client) loadTokens() (*tokenData, error) {
	data, err := os.ReadFile(c.tokenFile)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read token file: %w", err)
	}

	var t tokenData
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("parse token file: %w", err)
	}
	return &t, nil
}

func (c *Client) saveTokens(t *tokenData) error {
	data, err := json.MarshalIndent(t, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal tokens: %w", err)
	}
	if err := os.WriteFile(c.tokenFile, data, 0o600); err != nil {
		return fmt.Errorf("write token file: %w", err)
	}
	return nil
}

// accessToken returns a valid access token, refreshing it when expired.
// Concurrent refreshes are collapsed through singleflight.
func (c *Client) accessToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	tok := c.tokens
	c.mu.Unlock()

	if tok == nil {
		loaded, err := c.loadTokens()
		if err != nil {
			return "", err
		}
		if loaded == nil {
			// No cache file yet; fall back to env-seeded tokens.
			loaded = c.seedTokens()
		}
		if loaded == nil {
			return "", ErrNotAuthorized
		}
		c.mu.Lock()
		c.tokens = loaded
		c.mu.Unlock()
		tok = loaded
	}

	if !tok.expired(c.now()) {
		return tok.AccessToken, nil
	}

	if tok.RefreshToken == "" {
		// Cannot refresh; use the access token as-is if one exists.
		if tok.AccessToken != "" {
			return tok.AccessToken, nil
		}
		return "", ErrNotAuthorized
	}

	v, err, _ := c.refreshGroup.Do("refresh", func() (any, error) {
		return c.refresh(ctx, tok.RefreshToken)
	})
	if err != nil {
		return "", err
	}
	return v.(*tokenData).AccessToken, nil
}

// seedTokens builds an initial token record from configured credentials,
// or nil when none were provided.
func (c *Client) seedTokens() *tokenData {
	if c.initialRefresh == "" && c.initialAccess == "" {
		return nil
	}
	return &tokenData{
		TokenType:    "Bearer",
		AccessToken:  c.initialAccess,
		RefreshToken: c.initialRefresh,
		// Zero expiry forces an immediate refresh when possible.
	}
}

// refresh exchanges the refresh token for a fresh access token and
// persists the result.
func (c *Client) refresh(ctx context.Context, refreshToken string) (*tokenData, error) {
	form := url.Values{}
	form.Set("client_id", c.clientID)
	form.Set("client_secret", c.clientSecret)
	form.Set("grant_type", "refresh_token")
	form.Set("refresh_token", refreshToken)

	tok, err := c.tokenRequest(ctx, form)
	if err != nil {
		return nil, fmt.Errorf("refresh token: %w", err)
	}
	return tok, nil
}

// ExchangeCode completes the initial OAuth authorization flow with the
// code from the redirect URL and persists the resulting tokens.
func (c *Client) ExchangeCode(ctx context.Context, code string) error {
	form := url.Values{}
	form.Set("client_id", c.clientID)
	form.Set("client_secret", c.clientSecret)
	form.Set("grant_type", "authorization_code")
	form.Set("code", code)

	if _, err := c.tokenRequest(ctx, form); err != nil {
		return fmt.Errorf("exchange code: %w", err)
	}
	return nil
}

// AuthorizationURL returns the URL a user must open to grant access.
func (c *Client) AuthorizationURL(redirectURI string) string {
	q := url.Values{}
	q.Set("client_id", c.clientID)
	q.Set("response_type", "code")
	q.Set("redirect_uri", redirectURI)
	q.Set("scope", "activity:read_all")
	return "https://www.strava.com/oauth/authorize?" + q.Encode()
}

func (c *Client) tokenRequest(ctx context.Context, form url.Values) (*tokenData, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("token endpoint returned %d", resp.StatusCode)
	}

	var tok tokenData
	if err := json.NewDecoder(resp.Body).Decode(&tok); err != nil {
		return nil, fmt.Errorf("parse token response: %w", err)
	}
	if tok.TokenType == "" {
		tok.TokenType = "Bearer"
	}

	if err := c.saveTokens(&tok); err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.tokens = &tok
	c.mu.Unlock()

	return &tok, nil
}
