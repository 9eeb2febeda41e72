package processor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

const unknownWorkflowName = "Unknown Workflow"

// githubCIEvent is the parsed view of a GitHub workflow_run event.
type githubCIEvent struct {
	action     string
	conclusion string
	headBranch string
	workflow   string
	repo       string
}

// GitHubCI returns the descriptor for CI pipeline events. It observes
// workflow runs and reports failures on main; it never triggers CI.
func GitHubCI() Descriptor {
	return Descriptor{
		Name: "githubci",
		Recognize: func(payload map[string]any) bool {
			_, hasAction := getString(payload, "action")
			_, hasRun := getMap(payload, "workflow_run")
			return hasAction && hasRun
		},
		Parse: func(payload map[string]any) (Handler, error) {
			action, ok := getString(payload, "action")
			if !ok {
				return nil, errors.New("githubci: missing action")
			}
			run, ok := getMap(payload, "workflow_run")
			if !ok {
				return nil, errors.New("githubci: missing workflow_run")
			}
			headBranch, ok := getString(run, "head_branch")
			if !ok {
				return nil, errors.New("githubci: missing head_branch")
			}

			ev := &githubCIEvent{
				action:     action,
				headBranch: headBranch,
				workflow:   unknownWorkflowName,
			}
			if conclusion, ok := getString(run, "conclusion"); ok {
				ev.conclusion = conclusion
			}
			if name, ok := getString(run, "name"); ok && name != "" {
				ev.workflow = name
			}
			if repo, ok := getMap(payload, "repository"); ok {
				ev.repo, _ = getString(repo, "name")
			}

			return ev, nil
		},
	}
}

func (e *githubCIEvent) Gate(_ context.Context) (Outcome, error) {
	if e.action != "completed" || e.conclusion != "failure" || e.headBranch != "main" {
		slog.Debug("ignoring github event, not a failed run on main",
			"action", e.action, "conclusion", e.conclusion, "branch", e.headBranch)
		return Outcome{}, nil
	}

	slog.Info("github workflow failed", "workflow", e.workflow, "repo", e.repo)

	return Outcome{
		Enabled: true,
		SMS:     fmt.Sprintf("GitHub Action failed: %s - %s", e.repo, e.workflow),
	}, nil
}
