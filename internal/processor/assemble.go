package processor

import (
	"github.com/kemsio/relayd/internal/port/fitness"
	"github.com/kemsio/relayd/internal/port/pages"
	"github.com/kemsio/relayd/internal/port/workflow"
)

// Triggers holds the optional per-source CI trigger settings.
// A nil entry means that source never dispatches a workflow.
type Triggers struct {
	Cal    *workflow.Settings
	Strava *workflow.Settings
	Notion *workflow.Settings
	Gmail  *workflow.Settings
}

// Deps carries everything the processor variants need.
type Deps struct {
	Fitness fitness.Client
	Pages   pages.Client

	SimpleToken       string
	NotionSecret      string
	StravaVerifyToken string

	Triggers Triggers
}

// Assemble builds the registry in its fixed priority order. This is the
// single place where ordering is decided; source order here is the
// dispatch priority.
func Assemble(d Deps) *Registry {
	return NewRegistry(
		CalCom(d.Triggers.Cal),
		Strava(d.Fitness, d.Triggers.Strava, d.StravaVerifyToken),
		Notion(d.Pages, d.Triggers.Notion, d.NotionSecret),
		Gmail(d.Triggers.Gmail),
		Simple(d.SimpleToken),
		GitHubCI(),
	)
}
