// Package notifier defines the SMS notification port (interface).
package notifier

import (
	"context"
	"errors"
)

// ErrNotConfigured is returned when a notifier is missing its credentials.
var ErrNotConfigured = errors.New("notifier: not configured")

// Notifier is the port interface for sending a short text notification.
type Notifier interface {
	// Name returns the unique identifier for this notifier (e.g. "freemobile").
	Name() string

	// Send delivers the message. At most one call is made per inbound event.
	Send(ctx context.Context, message string) error
}
