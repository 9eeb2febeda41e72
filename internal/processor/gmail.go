package processor

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/kemsio/relayd/internal/port/workflow"
)

// gmailEvent is the parsed view of a Gmail push notification delivered
// through a Pub/Sub push subscription.
type gmailEvent struct {
	data      string // base64-encoded notification
	messageID string
	trigger   *workflow.Settings
}

// gmailNotification is the decoded inner message.
type gmailNotification struct {
	EmailAddress string `json:"emailAddress"`
	HistoryID    int64  `json:"historyId"`
}

// Gmail returns the descriptor for Gmail mailbox push notifications.
func Gmail(trigger *workflow.Settings) Descriptor {
	return Descriptor{
		Name: "gmail",
		Recognize: func(payload map[string]any) bool {
			message, ok := getMap(payload, "message")
			if !ok {
				return false
			}
			data, ok := getString(message, "data")
			if !ok || data == "" {
				return false
			}
			id, ok := getString(message, "messageId")
			return ok && id != ""
		},
		Parse: func(payload map[string]any) (Handler, error) {
			message, ok := getMap(payload, "message")
			if !ok {
				return nil, errors.New("gmail: missing message envelope")
			}
			data, ok := getString(message, "data")
			if !ok {
				return nil, errors.New("gmail: missing message data")
			}
			id, _ := getString(message, "messageId")

			return &gmailEvent{data: data, messageID: id, trigger: trigger}, nil
		},
	}
}

// Gate decodes the notification. Email arrival itself is the trigger,
// so a successfully decoded notification always enables the workflow.
func (e *gmailEvent) Gate(_ context.Context) (Outcome, error) {
	notification, ok := e.decode()
	if !ok {
		return Outcome{}, nil
	}

	slog.Info("gmail notification received",
		"email", notification.EmailAddress,
		"history_id", notification.HistoryID,
	)

	return Outcome{Enabled: true, Trigger: e.trigger}, nil
}

func (e *gmailEvent) decode() (gmailNotification, bool) {
	raw, err := base64.StdEncoding.DecodeString(e.data)
	if err != nil {
		slog.Warn("gmail: bad base64 in message data", "message_id", e.messageID, "error", err)
		return gmailNotification{}, false
	}

	var n gmailNotification
	if err := json.Unmarshal(raw, &n); err != nil {
		slog.Warn("gmail: bad JSON in message data", "message_id", e.messageID, "error", err)
		return gmailNotification{}, false
	}
	if n.EmailAddress == "" || n.HistoryID == 0 {
		slog.Warn("gmail: incomplete notification", "message_id", e.messageID)
		return gmailNotification{}, false
	}

	return n, true
}
