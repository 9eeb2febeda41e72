package processor

import (
	"context"
	"crypto/subtle"
	"errors"
	"log/slog"
)

// simpleEvent is the parsed view of a generic token-triggered event.
type simpleEvent struct {
	message     string
	token       string
	sharedToken string
}

// Simple returns the descriptor for generic token-triggered messages.
// sharedToken comes from configuration; empty disables the source.
func Simple(sharedToken string) Descriptor {
	return Descriptor{
		Name: "simple",
		Recognize: func(payload map[string]any) bool {
			typ, ok := getString(payload, "type")
			return ok && typ == "simple"
		},
		Parse: func(payload map[string]any) (Handler, error) {
			message, ok := getString(payload, "message")
			if !ok {
				return nil, errors.New("simple: missing message")
			}
			token, ok := getString(payload, "token")
			if !ok {
				return nil, errors.New("simple: missing token")
			}
			return &simpleEvent{
				message:     message,
				token:       token,
				sharedToken: sharedToken,
			}, nil
		},
	}
}

func (e *simpleEvent) Gate(_ context.Context) (Outcome, error) {
	if e.sharedToken == "" {
		slog.Error("simple trigger token not configured")
		return Outcome{}, nil
	}

	if subtle.ConstantTimeCompare([]byte(e.token), []byte(e.sharedToken)) != 1 {
		slog.Warn("invalid simple trigger token received")
		return Outcome{}, nil
	}

	return Outcome{Enabled: true, SMS: e.message}, nil
}
