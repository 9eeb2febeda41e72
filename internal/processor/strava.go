package processor

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/kemsio/relayd/internal/port/fitness"
	"github.com/kemsio/relayd/internal/port/workflow"
)

var stravaObjectTypes = map[string]struct{}{
	"activity": {},
	"athlete":  {},
}

var stravaAspectTypes = map[string]struct{}{
	"create": {},
	"update": {},
	"delete": {},
}

// stravaEvent is the parsed view of a Strava push event.
type stravaEvent struct {
	objectType string
	aspectType string
	objectID   int64
	client     fitness.Client
	trigger    *workflow.Settings
}

// Strava returns the descriptor for Strava activity events.
// verifyToken is the shared token for the subscription handshake.
func Strava(client fitness.Client, trigger *workflow.Settings, verifyToken string) Descriptor {
	return Descriptor{
		Name: "strava",
		Recognize: func(payload map[string]any) bool {
			objectType, ok := getString(payload, "object_type")
			if !ok {
				return false
			}
			if _, known := stravaObjectTypes[objectType]; !known {
				return false
			}
			aspectType, ok := getString(payload, "aspect_type")
			if !ok {
				return false
			}
			if _, known := stravaAspectTypes[aspectType]; !known {
				return false
			}
			return isNumber(payload["object_id"]) &&
				isNumber(payload["owner_id"]) &&
				isNumber(payload["subscription_id"]) &&
				isNumber(payload["event_time"])
		},
		Parse: func(payload map[string]any) (Handler, error) {
			objectType, _ := getString(payload, "object_type")
			aspectType, _ := getString(payload, "aspect_type")
			objectID, ok := asInt64(payload["object_id"])
			if !ok {
				return nil, errors.New("strava: missing object_id")
			}

			return &stravaEvent{
				objectType: objectType,
				aspectType: aspectType,
				objectID:   objectID,
				client:     client,
				trigger:    trigger,
			}, nil
		},
		Verify: func(q url.Values) *ChallengeResponse {
			if q.Get("hub.mode") != "subscribe" {
				return nil
			}
			if verifyToken == "" || q.Get("hub.verify_token") != verifyToken {
				return nil
			}
			return &ChallengeResponse{
				Status: 200,
				Body:   map[string]string{"hub.challenge": q.Get("hub.challenge")},
			}
		},
	}
}

func (e *stravaEvent) Gate(ctx context.Context) (Outcome, error) {
	if e.objectType != "activity" || e.aspectType != "create" {
		return Outcome{}, nil
	}

	// No safe default exists when the activity lookup fails, so the
	// error propagates to the dispatcher.
	virtual, err := e.client.IsVirtualRide(ctx, e.objectID)
	if err != nil {
		return Outcome{}, fmt.Errorf("strava: check activity %d: %w", e.objectID, err)
	}
	if !virtual {
		return Outcome{}, nil
	}

	activity, err := e.client.Activity(ctx, e.objectID)
	if err != nil {
		return Outcome{}, fmt.Errorf("strava: fetch activity %d: %w", e.objectID, err)
	}

	return Outcome{
		Enabled: true,
		SMS:     fmt.Sprintf("New activity virtual ride: %s, ", activity.Name),
		Trigger: e.trigger,
	}, nil
}
