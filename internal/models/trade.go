package models

import (
	"time"

	"gorm.io/gorm"
)

// TradeSide represents the direction of a trade
type TradeSide string

const (
	TradeSideLong  TradeSide = "LONG"
	TradeSideShort TradeSide = "SHORT"
)

// Trade represents a completed, journaled trade
type Trade struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	ExternalID  string         `gorm:"size:50;uniqueIndex" json:"external_id"`
	AccountID   uint           `gorm:"index;not null" json:"account_id"`
	Date        time.Time      `gorm:"index;not null" json:"date"`
	Symbol      string         `gorm:"size:20;not null;index" json:"symbol"`
	Side        TradeSide      `gorm:"size:10" json:"side"`
	Quantity    float64        `gorm:"type:decimal(20,8)" json:"quantity"`
	EntryPrice  float64        `gorm:"type:decimal(20,8)" json:"entry_price"`
	ExitPrice   float64        `gorm:"type:decimal(20,8)" json:"exit_price"`
	PnL         float64        `gorm:"type:decimal(20,8);not null" json:"pnl"`
	RiskPercent float64        `gorm:"type:decimal(10,4)" json:"risk_percent"`
	Notes       string         `gorm:"type:text" json:"notes"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Account Account `gorm:"foreignKey:AccountID" json:"-"`
}

// TableName specifies the table name for Trade model
func (Trade) TableName() string {
	return "trades"
}

// Day returns the start of the trade's calendar day
func (t *Trade) Day() time.Time {
	return time.Date(t.Date.Year(), t.Date.Month(), t.Date.Day(), 0, 0, 0, 0, t.Date.Location())
}
