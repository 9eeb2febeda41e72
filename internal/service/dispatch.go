// Package service contains the dispatch orchestration for inbound webhooks.
package service

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"

	relayotel "github.com/kemsio/relayd/internal/adapter/otel"
	"github.com/kemsio/relayd/internal/logger"
	"github.com/kemsio/relayd/internal/port/notifier"
	"github.com/kemsio/relayd/internal/port/workflow"
	"github.com/kemsio/relayd/internal/processor"
)

// Result is the structured outcome of one dispatch, ready for HTTP.
type Result struct {
	Code int
	Body any
}

// workflow outcome strings reported in the response body. A cooldown
// skip must stay distinguishable from a dispatch failure.
const (
	workflowTriggered = "triggered"
	workflowSkipped   = "skipped_cooldown"
)

// Dispatcher walks the processor registry and runs the matched
// processor's full workflow: gate, then at most one SMS send and at
// most one cooldown-guarded CI dispatch.
type Dispatcher struct {
	registry *processor.Registry
	sms      notifier.Notifier
	actions  workflow.Dispatcher
	guard    *CooldownGuard
	metrics  *relayotel.Metrics
}

// NewDispatcher creates a Dispatcher. metrics may be nil in tests.
func NewDispatcher(registry *processor.Registry, sms notifier.Notifier, actions workflow.Dispatcher, metrics *relayotel.Metrics) *Dispatcher {
	return &Dispatcher{
		registry: registry,
		sms:      sms,
		actions:  actions,
		guard:    NewCooldownGuard(actions),
		metrics:  metrics,
	}
}

// Dispatch processes one raw webhook body end to end.
func (d *Dispatcher) Dispatch(ctx context.Context, body []byte, header http.Header) Result {
	eventID := uuid.NewString()
	ctx = logger.WithEventID(ctx, eventID)
	ctx, span := relayotel.StartDispatchSpan(ctx, eventID)
	defer span.End()

	start := time.Now()
	defer func() {
		if d.metrics != nil {
			d.metrics.DispatchDuration.Record(ctx, time.Since(start).Seconds())
		}
	}()

	d.count(ctx, func(m *relayotel.Metrics) { m.EventsReceived.Add(ctx, 1) })

	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err != nil {
		slog.Warn("malformed webhook body", "event_id", eventID, "error", err)
		return errorResult(http.StatusBadRequest, "invalid JSON body")
	}

	// Handshake challenges short-circuit before recognition.
	for _, desc := range d.registry.Descriptors() {
		if desc.Challenge == nil {
			continue
		}
		if resp := desc.Challenge(payload); resp != nil {
			slog.Info("handshake challenge answered", "event_id", eventID, "processor", desc.Name)
			return Result{Code: resp.Status, Body: resp.Body}
		}
	}

	for _, desc := range d.registry.Descriptors() {
		if !desc.Recognize(payload) {
			continue
		}

		if desc.CheckSignature != nil {
			if err := desc.CheckSignature(body, header); err != nil {
				slog.Warn("webhook signature rejected",
					"event_id", eventID, "processor", desc.Name, "error", err)
				return errorResult(http.StatusForbidden, "invalid webhook signature")
			}
		}

		handler, err := desc.Parse(payload)
		if err != nil {
			// A recognized payload that fails structural validation is
			// not a dispatch failure; a later processor may still match.
			slog.Debug("payload recognized but failed to parse, trying next",
				"event_id", eventID, "processor", desc.Name, "error", err)
			continue
		}

		slog.Info("processor matched", "event_id", eventID, "processor", desc.Name)
		d.count(ctx, func(m *relayotel.Metrics) { m.EventsProcessed.Add(ctx, 1) })
		return d.run(ctx, eventID, desc.Name, handler, payload)
	}

	slog.Info("no processor claimed payload", "event_id", eventID)
	d.count(ctx, func(m *relayotel.Metrics) { m.EventsUnmatched.Add(ctx, 1) })
	return errorResult(http.StatusBadRequest, "no suitable processor for payload")
}

// run executes the gate and the side-effect phase for a matched handler.
func (d *Dispatcher) run(ctx context.Context, eventID, name string, handler processor.Handler, payload map[string]any) Result {
	outcome, err := handler.Gate(ctx)
	if err != nil {
		slog.Error("gate failed", "event_id", eventID, "processor", name, "error", err)
		return errorResult(http.StatusInternalServerError, err.Error())
	}

	if !outcome.Enabled {
		slog.Info("workflow disabled by gate", "event_id", eventID, "processor", name)
		return Result{
			Code: http.StatusOK,
			Body: map[string]any{"status": "disabled", "id": eventID, "event": payload},
		}
	}

	if outcome.SMS != "" {
		smsCtx, span := relayotel.StartDeliverySpan(ctx, eventID, "sms")
		err := d.sms.Send(smsCtx, outcome.SMS)
		span.End()
		if err != nil {
			slog.Error("sms delivery failed", "event_id", eventID, "processor", name, "error", err)
			d.count(ctx, func(m *relayotel.Metrics) { m.SMSFailed.Add(ctx, 1) })
			return errorResult(http.StatusInternalServerError, "sms delivery failed: "+err.Error())
		}
		slog.Info("sms sent", "event_id", eventID, "processor", name)
		d.count(ctx, func(m *relayotel.Metrics) { m.SMSSent.Add(ctx, 1) })
	}

	workflowOutcome := ""
	if outcome.Trigger != nil {
		// The guard is consulted immediately before every dispatch,
		// never ahead of time.
		if !d.guard.ShouldTrigger(ctx, *outcome.Trigger) {
			workflowOutcome = workflowSkipped
			d.count(ctx, func(m *relayotel.Metrics) { m.CooldownSkips.Add(ctx, 1) })
		} else {
			wfCtx, span := relayotel.StartDeliverySpan(ctx, eventID, "workflow")
			err := d.actions.DispatchWorkflow(wfCtx, *outcome.Trigger)
			span.End()
			if err != nil {
				slog.Error("workflow dispatch failed",
					"event_id", eventID, "processor", name,
					"repo", outcome.Trigger.Repo, "error", err)
				return errorResult(http.StatusInternalServerError, "workflow dispatch failed: "+err.Error())
			}
			slog.Info("workflow dispatched",
				"event_id", eventID, "processor", name, "repo", outcome.Trigger.Repo)
			workflowOutcome = workflowTriggered
			d.count(ctx, func(m *relayotel.Metrics) { m.WorkflowsTriggered.Add(ctx, 1) })
		}
	}

	body := map[string]any{"status": "processed", "id": eventID, "event": payload}
	if workflowOutcome != "" {
		body["workflow"] = workflowOutcome
	}
	return Result{Code: http.StatusOK, Body: body}
}

// Verification answers a GET verification request by walking the
// registry; the first processor that claims it wins.
func (d *Dispatcher) Verification(q url.Values) Result {
	for _, desc := range d.registry.Descriptors() {
		if desc.Verify == nil {
			continue
		}
		if resp := desc.Verify(q); resp != nil {
			slog.Info("verification request answered", "processor", desc.Name)
			return Result{Code: resp.Status, Body: resp.Body}
		}
	}
	return errorResult(http.StatusBadRequest, "no processor for verification request")
}

func (d *Dispatcher) count(_ context.Context, fn func(*relayotel.Metrics)) {
	if d.metrics != nil {
		fn(d.metrics)
	}
}

func errorResult(code int, detail string) Result {
	return Result{
		Code: code,
		Body: map[string]any{"status": "error", "detail": detail},
	}
}
