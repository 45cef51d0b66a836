package dto

// TriggerResponse is returned by the cron trigger endpoints.
type TriggerResponse struct {
	Success            bool        `json:"success"`
	Job                string      `json:"job,omitempty"`
	RunID              string      `json:"run_id,omitempty"`
	Message            string      `json:"message,omitempty"`
	Result             interface{} `json:"result,omitempty" swaggertype:"object"`
	HighImpactDetected *bool       `json:"high_impact_detected,omitempty"`
	Error              string      `json:"error,omitempty"`
	AvailableJobs      []string    `json:"available_jobs,omitempty"`
	Timestamp          string      `json:"timestamp"`
}

// ErrorResponse represents a generic error response body.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}
