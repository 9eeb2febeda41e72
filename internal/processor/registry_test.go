package processor

import (
	"reflect"
	"testing"
)

func TestAssembleOrder(t *testing.T) {
	registry := Assemble(Deps{
		Fitness:     &fakeFitness{},
		Pages:       &fakePages{},
		SimpleToken: "tok",
	})

	want := []string{"calcom", "strava", "notion", "gmail", "simple", "githubci"}
	if got := registry.Names(); !reflect.DeepEqual(got, want) {
		t.Fatalf("registry order = %v, want %v", got, want)
	}
}

func TestNewRegistryRejectsDuplicates(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on duplicate registration")
		}
	}()
	NewRegistry(Simple("a"), Simple("b"))
}

func TestFirstRecognizerWins(t *testing.T) {
	registry := Assemble(Deps{
		Fitness:     &fakeFitness{},
		Pages:       &fakePages{},
		SimpleToken: "tok",
	})

	// A Cal.com payload must be claimed by calcom even though later
	// descriptors would not match it anyway; the walk stops at the first.
	payload := map[string]any{"triggerEvent": "BOOKING_CREATED", "payload": map[string]any{}}
	var matched string
	for _, desc := range registry.Descriptors() {
		if desc.Recognize(payload) {
			matched = desc.Name
			break
		}
	}
	if matched != "calcom" {
		t.Fatalf("matched %q, want calcom", matched)
	}
}

func TestAsInt64(t *testing.T) {
	if v, ok := asInt64(float64(42)); !ok || v != 42 {
		t.Fatalf("float64: got %d, %v", v, ok)
	}
	if _, ok := asInt64("42"); ok {
		t.Fatal("string must not convert")
	}
}
