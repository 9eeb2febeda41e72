package processor

import (
	"context"
	"testing"
)

func ciPayload(action, conclusion, branch string) map[string]any {
	return map[string]any{
		"action": action,
		"workflow_run": map[string]any{
			"name":        "CI",
			"head_branch": branch,
			"conclusion":  conclusion,
		},
		"repository": map[string]any{"name": "relayd"},
	}
}

func TestGitHubCIRecognize(t *testing.T) {
	desc := GitHubCI()

	if !desc.Recognize(ciPayload("completed", "failure", "main")) {
		t.Fatal("expected recognition of workflow_run event")
	}
	if desc.Recognize(map[string]any{"action": "completed"}) {
		t.Fatal("expected no recognition without workflow_run")
	}
	if desc.Recognize(map[string]any{"workflow_run": map[string]any{}}) {
		t.Fatal("expected no recognition without action")
	}
}

func TestGitHubCIParseRequiresHeadBranch(t *testing.T) {
	desc := GitHubCI()

	payload := map[string]any{
		"action":       "completed",
		"workflow_run": map[string]any{"conclusion": "failure"},
	}
	if _, err := desc.Parse(payload); err == nil {
		t.Fatal("expected parse error without head_branch")
	}
}

func TestGitHubCIGateFailureOnMain(t *testing.T) {
	desc := GitHubCI()

	h, err := desc.Parse(ciPayload("completed", "failure", "main"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	outcome, err := h.Gate(context.Background())
	if err != nil {
		t.Fatalf("Gate: %v", err)
	}
	if !outcome.Enabled {
		t.Fatal("expected workflow enabled")
	}
	want := "GitHub Action failed: relayd - CI"
	if outcome.SMS != want {
		t.Fatalf("SMS = %q, want %q", outcome.SMS, want)
	}
	if outcome.Trigger != nil {
		t.Fatal("CI observer never triggers CI")
	}
}

func TestGitHubCIGateIgnoresOthers(t *testing.T) {
	desc := GitHubCI()

	cases := []struct {
		name    string
		payload map[string]any
	}{
		{"success", ciPayload("completed", "success", "main")},
		{"feature branch", ciPayload("completed", "failure", "feature/x")},
		{"in progress", ciPayload("in_progress", "", "main")},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h, err := desc.Parse(tc.payload)
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			outcome, err := h.Gate(context.Background())
			if err != nil {
				t.Fatalf("Gate: %v", err)
			}
			if outcome.Enabled || outcome.SMS != "" {
				t.Fatalf("expected no action, got %+v", outcome)
			}
		})
	}
}

func TestGitHubCIGateUnknownWorkflowName(t *testing.T) {
	desc := GitHubCI()

	payload := map[string]any{
		"action": "completed",
		"workflow_run": map[string]any{
			"head_branch": "main",
			"conclusion":  "failure",
		},
	}
	h, err := desc.Parse(payload)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	outcome, err := h.Gate(context.Background())
	if err != nil {
		t.Fatalf("Gate: %v", err)
	}
	want := "GitHub Action failed:  - Unknown Workflow"
	if outcome.SMS != want {
		t.Fatalf("SMS = %q, want %q", outcome.SMS, want)
	}
}
