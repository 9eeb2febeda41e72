package http

import (
	"io"
	"net/http"

	"github.com/kemsio/relayd/internal/service"
)

// maxBodyBytes caps inbound webhook bodies; provider payloads are small.
const maxBodyBytes = 1 << 20 // 1 MiB

// Handlers bundles the services the HTTP layer exposes.
type Handlers struct {
	Dispatcher *service.Dispatcher
}

// Webhook handles POST /webhook: the main ingestion entry point.
func (h *Handlers) Webhook(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read body")
		return
	}

	result := h.Dispatcher.Dispatch(r.Context(), body, r.Header)
	writeJSON(w, result.Code, result.Body)
}

// WebhookVerification handles GET /webhook: provider subscription
// handshakes carried in query parameters.
func (h *Handlers) WebhookVerification(w http.ResponseWriter, r *http.Request) {
	result := h.Dispatcher.Verification(r.URL.Query())
	writeJSON(w, result.Code, result.Body)
}

// Health handles GET /health.
func (h *Handlers) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
