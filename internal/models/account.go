package models

import (
	"time"

	"gorm.io/gorm"
)

// AccountType represents the kind of trading account being journaled
type AccountType string

const (
	AccountTypeLive        AccountType = "live"
	AccountTypeEvaluation  AccountType = "evaluation"
	AccountTypeFunded      AccountType = "funded"
	AccountTypeDemo        AccountType = "demo"
	AccountTypeBacktesting AccountType = "backtesting"
)

// Account represents a journaled trading account
type Account struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	UserID          uint           `gorm:"index;not null" json:"user_id"`
	Name            string         `gorm:"size:100;not null" json:"name"`
	Type            AccountType    `gorm:"size:20;not null" json:"type"`
	Capital         float64        `gorm:"type:decimal(20,8);default:0" json:"capital"`
	ProfitTarget    float64        `gorm:"type:decimal(20,8);default:0" json:"profit_target"`
	MaxLoss         float64        `gorm:"type:decimal(20,8);default:0" json:"max_loss"`
	ConsistencyRule *float64       `gorm:"type:decimal(10,4)" json:"consistency_rule,omitempty"`
	PayoutGoal      float64        `gorm:"type:decimal(20,8);default:0" json:"payout_goal"`
	ResetDate       time.Time      `json:"reset_date"`
	IsRankedUp      bool           `gorm:"default:false" json:"is_ranked_up"`
	BreachReport    *string        `gorm:"type:text" json:"breach_report,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	User   User    `gorm:"foreignKey:UserID" json:"-"`
	Trades []Trade `gorm:"foreignKey:AccountID" json:"trades,omitempty"`
}

// TableName specifies the table name for Account model
func (Account) TableName() string {
	return "accounts"
}

// IsLossLimited returns true for account types that carry a max-loss floor
// and a profit target (evaluation and funded accounts)
func (a *Account) IsLossLimited() bool {
	return a.Type == AccountTypeEvaluation || a.Type == AccountTypeFunded
}

// StatsAnchor returns the start of the calendar day of the reset date.
// Trades dated before it are excluded from balance and PnL computation,
// which gives soft-reset semantics without deleting history.
func (a *Account) StatsAnchor() time.Time {
	d := a.ResetDate
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, d.Location())
}
