package config

import (
	"fmt"
	"time"

	"github.com/kemsio/relayd/internal/port/workflow"
)

// Trigger env variable suffixes. Each webhook source reads the same set
// under its own prefix, e.g. NOTION_GITHUB_TOKEN, GMAIL_GITHUB_COOLDOWN.
const (
	envToken      = "GITHUB_TOKEN"
	envRepo       = "GITHUB_REPO"
	envWorkflowID = "GITHUB_WORKFLOW_ID"
	envRef        = "GITHUB_REF"
	envInputs     = "GITHUB_INPUTS"
	envCooldown   = "GITHUB_COOLDOWN"
)

// LoadTrigger reads GitHub workflow trigger settings for one webhook
// source from the environment, using the given prefix (e.g. "STRAVA_").
// defaultCooldown applies when the cooldown variable is unset.
// Returns an error when the required token/repo/workflow id are missing,
// so a misconfigured source is caught at assembly time.
func LoadTrigger(prefix string, defaultCooldown time.Duration) (*workflow.Settings, error) {
	s := workflow.Settings{
		Ref:      "main",
		Cooldown: defaultCooldown,
	}

	setString(&s.Token, prefix+envToken)
	setString(&s.Repo, prefix+envRepo)
	setString(&s.WorkflowID, prefix+envWorkflowID)
	setString(&s.Ref, prefix+envRef)
	setInputs(&s.Inputs, prefix+envInputs)
	setDuration(&s.Cooldown, prefix+envCooldown)

	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("trigger %s: %w", prefix, err)
	}
	return &s, nil
}
