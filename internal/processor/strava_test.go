package processor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kemsio/relayd/internal/port/fitness"
	"github.com/kemsio/relayd/internal/port/workflow"
)

// fakeFitness is a test double for the fitness port.
type fakeFitness struct {
	virtual    bool
	activity   fitness.Activity
	err        error
	virtCalls  int
	fetchCalls int
}

func (f *fakeFitness) IsVirtualRide(_ context.Context, _ int64) (bool, error) {
	f.virtCalls++
	return f.virtual, f.err
}

func (f *fakeFitness) Activity(_ context.Context, id int64) (fitness.Activity, error) {
	f.fetchCalls++
	if f.err != nil {
		return fitness.Activity{}, f.err
	}
	f.activity.ID = id
	return f.activity, nil
}

var _ fitness.Client = (*fakeFitness)(nil)

func stravaPayload(objectType, aspectType string) map[string]any {
	return map[string]any{
		"object_type":     objectType,
		"aspect_type":     aspectType,
		"object_id":       float64(123),
		"owner_id":        float64(456),
		"subscription_id": float64(789),
		"event_time":      float64(1234567890),
		"updates":         map[string]any{},
	}
}

func TestStravaRecognize(t *testing.T) {
	desc := Strava(&fakeFitness{}, nil, "STRAVA")

	if !desc.Recognize(stravaPayload("activity", "create")) {
		t.Fatal("expected recognition of valid payload")
	}

	negatives := []map[string]any{
		{"object_type": "activity"},
		{"triggerEvent": "BOOKING_CREATED"},
		stravaPayload("race", "create"),
		stravaPayload("activity", "started"),
		{},
	}
	for i, p := range negatives {
		if desc.Recognize(p) {
			t.Fatalf("case %d: expected no recognition", i)
		}
	}

	// Missing numeric identifiers must not be recognized.
	p := stravaPayload("activity", "create")
	delete(p, "object_id")
	if desc.Recognize(p) {
		t.Fatal("expected no recognition without object_id")
	}
}

func TestStravaGateVirtualRide(t *testing.T) {
	client := &fakeFitness{virtual: true, activity: fitness.Activity{Name: "Virtual Ride", Type: "VirtualRide"}}
	trigger := &workflow.Settings{Token: "t", Repo: "o/r", WorkflowID: "w.yml", Ref: "main", Cooldown: time.Minute}
	desc := Strava(client, trigger, "STRAVA")

	h, err := desc.Parse(stravaPayload("activity", "create"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	outcome, err := h.Gate(context.Background())
	if err != nil {
		t.Fatalf("Gate: %v", err)
	}
	if !outcome.Enabled {
		t.Fatal("expected workflow enabled")
	}
	want := "New activity virtual ride: Virtual Ride, "
	if outcome.SMS != want {
		t.Fatalf("SMS = %q, want %q", outcome.SMS, want)
	}
	if outcome.Trigger == nil || outcome.Trigger.Repo != "o/r" {
		t.Fatalf("expected CI trigger to be set, got %+v", outcome.Trigger)
	}
}

func TestStravaGateNotVirtual(t *testing.T) {
	client := &fakeFitness{virtual: false}
	desc := Strava(client, &workflow.Settings{Token: "t", Repo: "o/r", WorkflowID: "w"}, "STRAVA")

	h, err := desc.Parse(stravaPayload("activity", "create"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	outcome, err := h.Gate(context.Background())
	if err != nil {
		t.Fatalf("Gate: %v", err)
	}
	if outcome.Enabled {
		t.Fatal("expected workflow disabled for non-virtual ride")
	}
	if outcome.SMS != "" || outcome.Trigger != nil {
		t.Fatal("expected no side effects for non-virtual ride")
	}
}

func TestStravaGateUpdateDisabled(t *testing.T) {
	client := &fakeFitness{virtual: true}
	desc := Strava(client, nil, "STRAVA")

	h, err := desc.Parse(stravaPayload("activity", "update"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	outcome, err := h.Gate(context.Background())
	if err != nil {
		t.Fatalf("Gate: %v", err)
	}
	if outcome.Enabled {
		t.Fatal("expected workflow disabled for update aspect")
	}
	if client.virtCalls != 0 {
		t.Fatalf("expected no remote calls, got %d", client.virtCalls)
	}
}

func TestStravaGateFetchErrorPropagates(t *testing.T) {
	client := &fakeFitness{err: errors.New("strava down")}
	desc := Strava(client, nil, "STRAVA")

	h, err := desc.Parse(stravaPayload("activity", "create"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if _, err := h.Gate(context.Background()); err == nil {
		t.Fatal("expected gate error when activity lookup fails")
	}
}

func TestStravaVerify(t *testing.T) {
	desc := Strava(&fakeFitness{}, nil, "STRAVA")

	q := map[string][]string{
		"hub.mode":         {"subscribe"},
		"hub.verify_token": {"STRAVA"},
		"hub.challenge":    {"challenge-123"},
	}
	resp := desc.Verify(q)
	if resp == nil {
		t.Fatal("expected verification response")
	}
	body, ok := resp.Body.(map[string]string)
	if !ok || body["hub.challenge"] != "challenge-123" {
		t.Fatalf("unexpected body: %#v", resp.Body)
	}

	q["hub.verify_token"] = []string{"wrong"}
	if desc.Verify(q) != nil {
		t.Fatal("expected nil for wrong verify token")
	}

	q["hub.verify_token"] = []string{"STRAVA"}
	q["hub.mode"] = []string{"unsubscribe"}
	if desc.Verify(q) != nil {
		t.Fatal("expected nil for non-subscribe mode")
	}
}
