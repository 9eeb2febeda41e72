package http

import (
	"github.com/go-chi/chi/v5"
)

// MountRoutes attaches all relay routes to the router.
func MountRoutes(r chi.Router, h *Handlers) {
	r.Get("/health", h.Health)
	r.Post("/webhook", h.Webhook)
	r.Get("/webhook", h.WebhookVerification)
}
