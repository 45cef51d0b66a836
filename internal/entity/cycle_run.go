package entity

import (
	"database/sql"
	"time"

	"github.com/lib/pq"
	"gorm.io/datatypes"
)

// CycleType identifies a schedulable pipeline cycle.
type CycleType string

const (
	CycleCalendarUpdate     CycleType = "calendar-update"
	CycleCalendarHighImpact CycleType = "calendar-high-impact"
	CycleNewsUpdate         CycleType = "news-update"
	CycleScoreRecompute     CycleType = "score-recompute"
)

// CycleTypes lists every cycle in trigger order.
var CycleTypes = []CycleType{
	CycleCalendarHighImpact,
	CycleCalendarUpdate,
	CycleNewsUpdate,
	CycleScoreRecompute,
}

// ParseCycleType reports whether s names a known cycle.
func ParseCycleType(s string) (CycleType, bool) {
	for _, c := range CycleTypes {
		if string(c) == s {
			return c, true
		}
	}
	return "", false
}

// RunStatus is the lifecycle state of a CycleRun.
type RunStatus string

const (
	RunStatusRunning   RunStatus = "RUNNING"
	RunStatusCompleted RunStatus = "COMPLETED"
	RunStatusFailed    RunStatus = "FAILED"
)

// RunTrigger records what started a cycle.
type RunTrigger string

const (
	TriggerCron RunTrigger = "cron"
	TriggerHTTP RunTrigger = "http"
)

// CycleRun is the execution history of one cycle invocation.
type CycleRun struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	RunID        string         `gorm:"type:uuid;uniqueIndex;not null" json:"run_id"`
	CycleType    CycleType      `gorm:"type:varchar(32);index;not null" json:"cycle_type"`
	Status       RunStatus      `gorm:"type:varchar(16);not null" json:"status"`
	Trigger      RunTrigger     `gorm:"type:varchar(16);not null" json:"trigger"`
	StartedAt    time.Time      `gorm:"not null" json:"started_at"`
	CompletedAt  sql.NullTime   `json:"completed_at" swaggertype:"string" format:"date-time"`
	Summary      datatypes.JSON `gorm:"type:jsonb" json:"summary" swaggertype:"object"`
	Currencies   pq.StringArray `gorm:"type:text[]" json:"currencies" swaggertype:"array,string"`
	ErrorMessage sql.NullString `json:"error_message" swaggertype:"string"`
}

// TableName specifies the table name for the CycleRun model.
func (CycleRun) TableName() string {
	return "cycle_runs"
}
