package processor

import (
	"context"
	"errors"
	"fmt"

	"github.com/kemsio/relayd/internal/port/workflow"
)

// calEventKinds is the closed set of Cal.com trigger events, plus the
// PING liveness check Cal.com sends when a webhook is saved.
var calEventKinds = map[string]struct{}{
	"BOOKING_CREATED":           {},
	"BOOKING_RESCHEDULED":       {},
	"BOOKING_CANCELLED":         {},
	"MEETING_ENDED":             {},
	"BOOKING_REJECTED":          {},
	"BOOKING_REQUESTED":         {},
	"BOOKING_PAYMENT_INITIATED": {},
	"BOOKING_PAID":              {},
	"MEETING_STARTED":           {},
	"RECORDING_READY":           {},
	"FORM_SUBMITTED":            {},
	"PING":                      {},
}

const (
	calPingEvent = "PING"

	// calPingMessage is the diagnostic SMS for liveness checks. The
	// workflow stays enabled so a probe produces an observable message.
	calPingMessage = "Cal.com liveness check received"

	calDefaultTitle     = "No Title"
	calDefaultOrganizer = "Unknown"
)

// calEvent is the parsed view of a Cal.com booking event.
type calEvent struct {
	triggerEvent string
	title        string
	organizer    string
	trigger      *workflow.Settings
}

// CalCom returns the descriptor for Cal.com booking events.
// trigger is an optional cooldown-backed CI trigger; nil disables it.
func CalCom(trigger *workflow.Settings) Descriptor {
	return Descriptor{
		Name: "calcom",
		Recognize: func(payload map[string]any) bool {
			v, ok := getString(payload, "triggerEvent")
			if !ok {
				return false
			}
			_, known := calEventKinds[v]
			return known
		},
		Parse: func(payload map[string]any) (Handler, error) {
			triggerEvent, ok := getString(payload, "triggerEvent")
			if !ok {
				return nil, errors.New("calcom: missing triggerEvent")
			}

			ev := &calEvent{
				triggerEvent: triggerEvent,
				title:        calDefaultTitle,
				organizer:    calDefaultOrganizer,
				trigger:      trigger,
			}

			if inner, ok := getMap(payload, "payload"); ok {
				if title, ok := getString(inner, "title"); ok && title != "" {
					ev.title = title
				}
				if organizer, ok := getMap(inner, "organizer"); ok {
					if name, ok := getString(organizer, "name"); ok && name != "" {
						ev.organizer = name
					}
				}
			}

			return ev, nil
		},
	}
}

func (e *calEvent) Gate(_ context.Context) (Outcome, error) {
	if e.triggerEvent == calPingEvent {
		return Outcome{Enabled: true, SMS: calPingMessage, Trigger: e.trigger}, nil
	}

	sms := fmt.Sprintf("Booking '%s' (%s) created by %s", e.title, e.triggerEvent, e.organizer)
	return Outcome{Enabled: true, SMS: sms, Trigger: e.trigger}, nil
}
