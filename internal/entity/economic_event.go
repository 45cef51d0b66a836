package entity

import (
	"time"
)

// EconomicEvent is a scored economic release. Rows are insert-once: EventID is unique
// and an existing row is never rescored.
type EconomicEvent struct {
	ID          uint        `gorm:"primaryKey" json:"id"`
	EventID     string      `gorm:"uniqueIndex;not null" json:"event_id"`
	Country     string      `gorm:"not null" json:"country"`
	Currency    string      `gorm:"index;not null" json:"currency"`
	Title       string      `gorm:"not null" json:"title"`
	Impact      ImpactLevel `gorm:"type:varchar(10);not null" json:"impact"`
	Actual      *string     `json:"actual"`
	Forecast    *string     `json:"forecast"`
	Previous    *string     `json:"previous"`
	EventDate   string      `gorm:"type:varchar(10)" json:"event_date"`
	EventTime   string      `gorm:"type:varchar(5)" json:"event_time"`
	Score       float64     `gorm:"not null;default:0" json:"score"`
	ProcessedAt time.Time   `gorm:"index" json:"processed_at"`
}

// TableName specifies the table name for the EconomicEvent model.
func (EconomicEvent) TableName() string {
	return "forex_events"
}
