package otel

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "relayd"

// Metrics holds all relay metric instruments.
type Metrics struct {
	EventsReceived     metric.Int64Counter
	EventsProcessed    metric.Int64Counter
	EventsUnmatched    metric.Int64Counter
	SMSSent            metric.Int64Counter
	SMSFailed          metric.Int64Counter
	WorkflowsTriggered metric.Int64Counter
	CooldownSkips      metric.Int64Counter
	DispatchDuration   metric.Float64Histogram
}

// NewMetrics creates all metric instruments. Uses the global meter
// provider, so it is a no-op until Setup has run.
func NewMetrics() (*Metrics, error) {
	meter := otel.Meter(meterName)
	m := &Metrics{}
	var err error

	m.EventsReceived, err = meter.Int64Counter("relayd.events.received",
		metric.WithDescription("Number of webhook payloads received"))
	if err != nil {
		return nil, err
	}

	m.EventsProcessed, err = meter.Int64Counter("relayd.events.processed",
		metric.WithDescription("Number of payloads claimed by a processor"))
	if err != nil {
		return nil, err
	}

	m.EventsUnmatched, err = meter.Int64Counter("relayd.events.unmatched",
		metric.WithDescription("Number of payloads no processor recognized"))
	if err != nil {
		return nil, err
	}

	m.SMSSent, err = meter.Int64Counter("relayd.sms.sent",
		metric.WithDescription("Number of SMS notifications delivered"))
	if err != nil {
		return nil, err
	}

	m.SMSFailed, err = meter.Int64Counter("relayd.sms.failed",
		metric.WithDescription("Number of SMS delivery failures"))
	if err != nil {
		return nil, err
	}

	m.WorkflowsTriggered, err = meter.Int64Counter("relayd.workflows.triggered",
		metric.WithDescription("Number of CI workflow dispatches fired"))
	if err != nil {
		return nil, err
	}

	m.CooldownSkips, err = meter.Int64Counter("relayd.workflows.cooldown_skips",
		metric.WithDescription("Number of CI dispatches skipped by the cooldown guard"))
	if err != nil {
		return nil, err
	}

	m.DispatchDuration, err = meter.Float64Histogram("relayd.dispatch.duration_seconds",
		metric.WithDescription("End-to-end dispatch duration in seconds"))
	if err != nil {
		return nil, err
	}

	return m, nil
}
