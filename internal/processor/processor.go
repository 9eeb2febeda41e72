// Package processor implements the webhook processor contract: a closed
// set of payload handlers, each pairing a recognizer with a parser and a
// gate, held in an ordered registry consulted in fixed priority order.
package processor

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/kemsio/relayd/internal/port/workflow"
)

// Outcome is the gate decision for one inbound event.
type Outcome struct {
	// Enabled reports whether any side effect should occur.
	Enabled bool

	// SMS is the notification text, empty when no SMS should be sent.
	SMS string

	// Trigger identifies a CI workflow to dispatch, nil when none.
	Trigger *workflow.Settings
}

// Handler is the parsed, typed view of one inbound event.
// Implementations are created per request and never shared.
type Handler interface {
	// Gate decides whether side effects should occur and composes them.
	// An error means a remote dependency failed with no safe default.
	Gate(ctx context.Context) (Outcome, error)
}

// ChallengeResponse short-circuits normal processing during a provider
// handshake; its body is returned to the caller verbatim.
type ChallengeResponse struct {
	Status int
	Body   any
}

// Descriptor identifies one registered processor variant.
// Recognize and Parse are required; the rest are optional hooks.
type Descriptor struct {
	Name string

	// Recognize reports whether this variant claims the payload.
	Recognize func(payload map[string]any) bool

	// Parse builds the typed Handler from a claimed payload.
	Parse func(payload map[string]any) (Handler, error)

	// Challenge inspects a POST payload for a one-time handshake token
	// and answers it without running the normal workflow.
	Challenge func(payload map[string]any) *ChallengeResponse

	// Verify answers a GET verification request (subscription handshakes).
	Verify func(q url.Values) *ChallengeResponse

	// CheckSignature validates the raw request body against a header
	// before the gate runs. A nil func or nil return means accepted.
	CheckSignature func(body []byte, header http.Header) error
}

// Registry is an ordered sequence of processor descriptors.
// Order equals priority: the first recognizer to claim a payload wins.
type Registry struct {
	descriptors []Descriptor
}

// NewRegistry builds a registry from descriptors in priority order.
// Duplicate names are a programming error.
func NewRegistry(descs ...Descriptor) *Registry {
	seen := make(map[string]struct{}, len(descs))
	for _, d := range descs {
		if _, ok := seen[d.Name]; ok {
			panic(fmt.Sprintf("processor: duplicate registration for %q", d.Name))
		}
		seen[d.Name] = struct{}{}
	}
	return &Registry{descriptors: descs}
}

// Descriptors returns the registered descriptors in priority order.
func (r *Registry) Descriptors() []Descriptor {
	return r.descriptors
}

// Names returns the registered processor names in priority order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.descriptors))
	for _, d := range r.descriptors {
		names = append(names, d.Name)
	}
	return names
}

// ---------------------------------------------------------------------------
// Payload navigation helpers shared by the variants.
// ---------------------------------------------------------------------------

func getString(payload map[string]any, key string) (string, bool) {
	v, ok := payload[key].(string)
	return v, ok
}

func getMap(payload map[string]any, key string) (map[string]any, bool) {
	v, ok := payload[key].(map[string]any)
	return v, ok
}

// isNumber matches the types encoding/json produces for JSON numbers.
func isNumber(v any) bool {
	switch v.(type) {
	case float64, json.Number, int, int64:
		return true
	}
	return false
}

// asInt64 converts a decoded JSON number to int64.
func asInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case float64:
		return int64(n), true
	case json.Number:
		i, err := n.Int64()
		return i, err == nil
	case int:
		return int64(n), true
	case int64:
		return n, true
	}
	return 0, false
}
