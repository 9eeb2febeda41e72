package processor

import (
	"context"
	"testing"
)

func TestSimpleRecognize(t *testing.T) {
	desc := Simple("tok")

	if !desc.Recognize(map[string]any{"type": "simple", "message": "hi", "token": "tok"}) {
		t.Fatal("expected recognition")
	}
	if desc.Recognize(map[string]any{"type": "complex"}) {
		t.Fatal("expected no recognition for other type")
	}
	if desc.Recognize(map[string]any{"message": "hi"}) {
		t.Fatal("expected no recognition without type")
	}
}

func TestSimpleParseRequiresFields(t *testing.T) {
	desc := Simple("tok")

	if _, err := desc.Parse(map[string]any{"type": "simple", "token": "tok"}); err == nil {
		t.Fatal("expected error without message")
	}
	if _, err := desc.Parse(map[string]any{"type": "simple", "message": "hi"}); err == nil {
		t.Fatal("expected error without token")
	}
}

func TestSimpleGate(t *testing.T) {
	desc := Simple("tok")

	h, err := desc.Parse(map[string]any{"type": "simple", "message": "hello there", "token": "tok"})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	outcome, err := h.Gate(context.Background())
	if err != nil {
		t.Fatalf("Gate: %v", err)
	}
	if !outcome.Enabled || outcome.SMS != "hello there" {
		t.Fatalf("unexpected outcome: %+v", outcome)
	}
	if outcome.Trigger != nil {
		t.Fatal("simple source never triggers CI")
	}
}

func TestSimpleGateWrongToken(t *testing.T) {
	desc := Simple("tok")

	h, err := desc.Parse(map[string]any{"type": "simple", "message": "hi", "token": "wrong"})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	outcome, err := h.Gate(context.Background())
	if err != nil {
		t.Fatalf("Gate: %v", err)
	}
	if outcome.Enabled {
		t.Fatal("expected workflow disabled for wrong token")
	}
}

func TestSimpleGateUnconfigured(t *testing.T) {
	desc := Simple("")

	h, err := desc.Parse(map[string]any{"type": "simple", "message": "hi", "token": ""})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	outcome, err := h.Gate(context.Background())
	if err != nil {
		t.Fatalf("Gate: %v", err)
	}
	if outcome.Enabled {
		t.Fatal("expected disabled source when no shared token is configured")
	}
}
