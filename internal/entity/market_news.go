package entity

import "time"

// MarketNews is a classified news article. (Headline, Datetime) is unique.
type MarketNews struct {
	ID          uint        `gorm:"primaryKey" json:"id"`
	Headline    string      `gorm:"uniqueIndex:idx_market_news_headline_datetime;not null" json:"headline"`
	Summary     string      `json:"summary"`
	Source      string      `json:"source"`
	Category    string      `gorm:"type:varchar(32)" json:"category"`
	Datetime    int64       `gorm:"uniqueIndex:idx_market_news_headline_datetime;index;not null" json:"datetime"`
	URL         string      `gorm:"column:url" json:"url"`
	Image       string      `json:"image"`
	Related     string      `json:"related"`
	ImpactLevel ImpactLevel `gorm:"type:varchar(10);not null" json:"impact_level"`
	CreatedAt   time.Time   `gorm:"autoCreateTime" json:"created_at"`
}

// TableName specifies the table name for the MarketNews model.
func (MarketNews) TableName() string {
	return "market_news"
}
