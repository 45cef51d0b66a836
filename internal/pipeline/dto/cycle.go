package dto

import (
	"time"

	"golang-forex-pulse/internal/entity"
)

// CalendarCycleResult summarises one calendar-update run.
type CalendarCycleResult struct {
	Fetched            int      `json:"fetched"`
	Candidates         int      `json:"candidates"`
	NewReleases        int      `json:"new_releases"`
	Inserted           int      `json:"inserted"`
	Duplicates         int      `json:"duplicates"`
	Failed             int      `json:"failed"`
	HighImpact         int      `json:"high_impact"`
	Currencies         []string `json:"currencies"`
	HadNewReleases     bool     `json:"had_new_releases"`
	HighImpactDetected bool     `json:"high_impact_detected"`
}

// NewsCycleResult summarises one news-update run.
type NewsCycleResult struct {
	Fetched  int   `json:"fetched"`
	Selected int   `json:"selected"`
	Inserted int   `json:"inserted"`
	Skipped  int   `json:"skipped"`
	Failed   int   `json:"failed"`
	Pruned   int64 `json:"pruned"`
	Cutoff   int64 `json:"cutoff"`
}

// RecomputeResult summarises an aggregation recompute.
type RecomputeResult struct {
	Currencies []string                `json:"currencies"`
	Scores     []*entity.CurrencyScore `json:"scores"`
	Failed     []string                `json:"failed"`
}

// CycleOutcome is what a strategy hands back to the orchestrator.
type CycleOutcome struct {
	Message    string
	Result     interface{}
	Currencies []string
	// Escalation is set when the cycle detected a novel high-impact release.
	Escalation *HighImpactDetected
}

// CycleReport is the orchestrator's result for one invocation.
type CycleReport struct {
	RunID              string           `json:"run_id"`
	CycleType          entity.CycleType `json:"job"`
	Message            string           `json:"message"`
	Result             interface{}      `json:"result"`
	HighImpactDetected *bool            `json:"high_impact_detected,omitempty"`
	Escalated          bool             `json:"escalated"`
	StartedAt          time.Time        `json:"started_at"`
	CompletedAt        time.Time        `json:"completed_at"`
}
