package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/kemsio/relayd/internal/port/workflow"
	"github.com/kemsio/relayd/internal/processor"
	"github.com/kemsio/relayd/internal/service"
)

type noopNotifier struct{}

func (noopNotifier) Name() string                       { return "noop" }
func (noopNotifier) Send(context.Context, string) error { return nil }

type noopActions struct{}

func (noopActions) DispatchWorkflow(context.Context, workflow.Settings) error {
	return nil
}

func (noopActions) LatestRun(context.Context, workflow.Settings) (time.Time, error) {
	return time.Time{}, workflow.ErrNoRuns
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	registry := processor.NewRegistry(processor.Simple("tok"))
	dispatcher := service.NewDispatcher(registry, noopNotifier{}, noopActions{}, nil)

	r := chi.NewRouter()
	MountRoutes(r, &Handlers{Dispatcher: dispatcher})
	return r
}

func TestHealth(t *testing.T) {
	r := newTestRouter(t)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("code = %d, want 200", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["status"] != "ok" {
		t.Fatalf("body = %v", body)
	}
}

func TestWebhookProcessed(t *testing.T) {
	r := newTestRouter(t)

	payload := `{"type":"simple","message":"hi","token":"tok"}`
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(payload)))

	if rec.Code != http.StatusOK {
		t.Fatalf("code = %d, want 200, body %s", rec.Code, rec.Body.String())
	}
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["status"] != "processed" {
		t.Fatalf("body = %v", body)
	}
}

func TestWebhookUnmatched(t *testing.T) {
	r := newTestRouter(t)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(`{"type":"mystery"}`)))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("code = %d, want 400", rec.Code)
	}
}

func TestWebhookMalformedJSON(t *testing.T) {
	r := newTestRouter(t)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader("{oops")))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("code = %d, want 400", rec.Code)
	}
}

func TestWebhookVerificationNoMatch(t *testing.T) {
	r := newTestRouter(t)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/webhook?hub.mode=subscribe", nil))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("code = %d, want 400", rec.Code)
	}
}
