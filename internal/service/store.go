package service

import (
	"time"

	"github.com/prop-journal/internal/models"
)

// AccountStore is the account persistence contract consumed by services
type AccountStore interface {
	GetAccount(id uint) (*models.Account, error)
	UpdateAccount(account *models.Account) error
}

// TradeStore is the trade persistence contract consumed by services
type TradeStore interface {
	CreateTrade(trade *models.Trade) error
	UpdateTrade(trade *models.Trade) error
	GetTrade(id uint) (*models.Trade, error)
	GetTradesForAccount(accountID uint, since time.Time) ([]models.Trade, error)
}

// CopyGroupStore lists the copy groups a leader account drives
type CopyGroupStore interface {
	ListActiveCopyGroups(leaderAccountID uint) ([]models.CopyGroup, error)
}

// Store bundles the persistence contracts the commit pipeline needs
type Store interface {
	AccountStore
	TradeStore
	CopyGroupStore
}

// Notifier is the fire-and-forget notification sink. Implementations must
// never block the caller.
type Notifier interface {
	Success(message string)
	Error(message string)
}

// NopNotifier discards all notifications
type NopNotifier struct{}

func (NopNotifier) Success(string) {}
func (NopNotifier) Error(string)   {}
