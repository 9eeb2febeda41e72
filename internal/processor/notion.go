package processor

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/kemsio/relayd/internal/port/pages"
	"github.com/kemsio/relayd/internal/port/workflow"
)

// signatureHeader carries the HMAC-SHA256 signature of the raw body.
const signatureHeader = "X-Notion-Signature"

var notionEventTypes = map[string]struct{}{
	"page.created":            {},
	"page.properties_updated": {},
	"page.content_updated":    {},
}

// notionEvent is the parsed view of a Notion page event.
type notionEvent struct {
	eventType string
	pageID    string
	client    pages.Client
	trigger   *workflow.Settings
}

// Notion returns the descriptor for Notion page events.
// webhookSecret enables inbound signature enforcement when non-empty.
func Notion(client pages.Client, trigger *workflow.Settings, webhookSecret string) Descriptor {
	return Descriptor{
		Name: "notion",
		Recognize: func(payload map[string]any) bool {
			ev := notionEventPayload(payload)

			typ, ok := getString(ev, "type")
			if !ok {
				return false
			}
			if _, known := notionEventTypes[typ]; !known {
				return false
			}

			entity, ok := getMap(ev, "entity")
			if !ok {
				return false
			}
			entityType, _ := getString(entity, "type")
			entityID, _ := getString(entity, "id")
			return entityType == "page" && entityID != ""
		},
		Parse: func(payload map[string]any) (Handler, error) {
			ev := notionEventPayload(payload)

			typ, _ := getString(ev, "type")
			entity, ok := getMap(ev, "entity")
			if !ok {
				return nil, errors.New("notion: missing entity")
			}
			pageID, ok := getString(entity, "id")
			if !ok || pageID == "" {
				return nil, errors.New("notion: missing entity id")
			}

			return &notionEvent{
				eventType: typ,
				pageID:    pageID,
				client:    client,
				trigger:   trigger,
			}, nil
		},
		Challenge: func(payload map[string]any) *ChallengeResponse {
			token, ok := getString(payload, "verification_token")
			if !ok {
				return nil
			}
			// The operator must copy this token into the Notion
			// integration settings to complete the handshake.
			slog.Warn("notion verification token received, paste it into the integration settings",
				"verification_token", token)
			return &ChallengeResponse{
				Status: 200,
				Body:   map[string]string{"status": "received", "verification_token": token},
			}
		},
		CheckSignature: func(body []byte, header http.Header) error {
			if webhookSecret == "" {
				return nil
			}
			sig := header.Get(signatureHeader)
			if sig == "" {
				return fmt.Errorf("notion: missing %s header", signatureHeader)
			}
			if !VerifyNotionSignature(body, sig, webhookSecret) {
				return errors.New("notion: invalid webhook signature")
			}
			return nil
		},
	}
}

// notionEventPayload unwraps the event envelope some delivery paths nest
// under an "event" key.
func notionEventPayload(payload map[string]any) map[string]any {
	if inner, ok := getMap(payload, "event"); ok {
		return inner
	}
	return payload
}

// VerifyNotionSignature checks an HMAC-SHA256 signature of the raw body.
// Supports both raw hex and "sha256=<hex>" prefix formats, compared in
// constant time.
func VerifyNotionSignature(body []byte, signature, secret string) bool {
	if signature == "" || secret == "" {
		return false
	}

	sig := strings.TrimPrefix(signature, "sha256=")
	sigBytes, err := hex.DecodeString(sig)
	if err != nil {
		return false
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	expected := mac.Sum(nil)

	return hmac.Equal(sigBytes, expected)
}

// Gate fetches the page and acts only when its "Today" checkbox is set.
// A failed fetch disables the workflow: intent cannot be assumed.
func (e *notionEvent) Gate(ctx context.Context) (Outcome, error) {
	page, err := e.client.FetchPage(ctx, e.pageID)
	if err != nil {
		slog.Error("notion page fetch failed, disabling workflow",
			"page_id", e.pageID, "error", err)
		return Outcome{}, nil
	}

	if !page.Today {
		slog.Debug("notion page 'Today' unchecked, ignoring", "page_id", e.pageID)
		return Outcome{}, nil
	}

	var trigger *workflow.Settings
	if e.trigger != nil {
		// Clone so the shared settings stay immutable across requests.
		t := *e.trigger
		t.Inputs = map[string]any{
			"page_id":    e.pageID,
			"page_title": page.Title,
		}
		trigger = &t
	}

	return Outcome{Enabled: true, Trigger: trigger}, nil
}
