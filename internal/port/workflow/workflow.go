// Package workflow defines the CI workflow trigger port and its settings.
package workflow

import (
	"context"
	"errors"
	"time"
)

// ErrNoRuns is returned by LatestRun when the workflow has never run.
var ErrNoRuns = errors.New("workflow: no previous runs")

// Settings identifies one dispatchable GitHub Actions workflow.
// One instance per webhook source, immutable after load.
type Settings struct {
	Token      string
	Repo       string // "owner/name"
	WorkflowID string // file name or numeric id
	Ref        string // defaults to "main"
	Inputs     map[string]any
	Cooldown   time.Duration
}

// Validate checks the fields required to dispatch a workflow.
func (s *Settings) Validate() error {
	if s.Token == "" {
		return errors.New("workflow: token is required")
	}
	if s.Repo == "" {
		return errors.New("workflow: repo is required")
	}
	if s.WorkflowID == "" {
		return errors.New("workflow: workflow id is required")
	}
	return nil
}

// Dispatcher is the port interface for the CI provider.
type Dispatcher interface {
	// DispatchWorkflow fires a workflow_dispatch event for s.
	DispatchWorkflow(ctx context.Context, s Settings) error

	// LatestRun returns the creation time of the most recent run of the
	// workflow named by s, or ErrNoRuns when none exists.
	LatestRun(ctx context.Context, s Settings) (time.Time, error)
}
