package dto

import "time"

// HighImpactRelease is one newly scored high-impact release.
type HighImpactRelease struct {
	EventID  string  `json:"event_id"`
	Country  string  `json:"country"`
	Currency string  `json:"currency"`
	Title    string  `json:"title"`
	Actual   *string `json:"actual"`
	Forecast *string `json:"forecast"`
	Score    float64 `json:"score"`
}

// HighImpactDetected is the escalation message emitted by the high-impact calendar cycle.
type HighImpactDetected struct {
	MessageID  string              `json:"message_id"`
	RunID      string              `json:"run_id"`
	DetectedAt time.Time           `json:"detected_at"`
	Releases   []HighImpactRelease `json:"releases"`
}
