package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/kemsio/relayd/internal/port/workflow"
)

// CooldownGuard restricts how often a CI workflow may be dispatched.
// The verdict is derived on demand from the provider's most recent run
// and never cached across requests.
type CooldownGuard struct {
	actions workflow.Dispatcher
	now     func() time.Time // for testing
}

// NewCooldownGuard creates a guard backed by the given CI provider.
func NewCooldownGuard(actions workflow.Dispatcher) *CooldownGuard {
	return &CooldownGuard{actions: actions, now: time.Now}
}

// ShouldTrigger reports whether the workflow named by s may be
// dispatched now. Absence of prior runs or a failed query defaults to
// true: losing a notification silently is worse than an early trigger.
func (g *CooldownGuard) ShouldTrigger(ctx context.Context, s workflow.Settings) bool {
	if s.Cooldown <= 0 {
		return true
	}

	lastRun, err := g.actions.LatestRun(ctx, s)
	if err != nil {
		if !errors.Is(err, workflow.ErrNoRuns) {
			slog.Warn("cooldown query failed, proceeding",
				"repo", s.Repo, "workflow", s.WorkflowID, "error", err)
		}
		return true
	}

	elapsed := g.now().Sub(lastRun)
	if elapsed < s.Cooldown {
		slog.Info("workflow dispatch skipped by cooldown",
			"repo", s.Repo, "workflow", s.WorkflowID,
			"elapsed", elapsed, "cooldown", s.Cooldown)
		return false
	}
	return true
}
