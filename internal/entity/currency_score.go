package entity

import "time"

// CurrencyScore is the derived aggregate of all EconomicEvent scores for one currency.
// It is overwritten by a full re-summation, never patched with a delta.
type CurrencyScore struct {
	Currency    string    `gorm:"primaryKey;type:varchar(10)" json:"currency"`
	TotalScore  float64   `gorm:"not null;default:0" json:"total_score"`
	EventCount  int64     `gorm:"not null;default:0" json:"event_count"`
	LastUpdated time.Time `gorm:"not null" json:"last_updated"`
}

// TableName specifies the table name for the CurrencyScore model.
func (CurrencyScore) TableName() string {
	return "economic_scores"
}
