package service

import (
	"context"
	"time"

	"github.com/prop-journal/internal/cache"
	"github.com/prop-journal/internal/models"
	"github.com/prop-journal/internal/repository"
	"github.com/prop-journal/internal/stats"
)

// AccountService handles account CRUD and stats reads
type AccountService struct {
	accountRepo *repository.AccountRepository
	tradeRepo   *repository.TradeRepository
	statsCache  *cache.StatsCache
}

// NewAccountService creates a new AccountService
func NewAccountService(
	accountRepo *repository.AccountRepository,
	tradeRepo *repository.TradeRepository,
	statsCache *cache.StatsCache,
) *AccountService {
	return &AccountService{
		accountRepo: accountRepo,
		tradeRepo:   tradeRepo,
		statsCache:  statsCache,
	}
}

// CreateAccountRequest represents the create account request
type CreateAccountRequest struct {
	Name            string             `json:"name" binding:"required,max=100"`
	Type            models.AccountType `json:"type" binding:"required,oneof=live evaluation funded demo backtesting"`
	Capital         float64            `json:"capital" binding:"required,gt=0"`
	ProfitTarget    float64            `json:"profit_target" binding:"omitempty,gte=0"`
	MaxLoss         float64            `json:"max_loss" binding:"omitempty,gte=0"`
	ConsistencyRule *float64           `json:"consistency_rule" binding:"omitempty,gt=0,lte=100"`
	PayoutGoal      float64            `json:"payout_goal" binding:"omitempty,gte=0"`
}

// CreateAccount creates a new journaled account
func (s *AccountService) CreateAccount(userID uint, req *CreateAccountRequest) (*models.Account, error) {
	account := &models.Account{
		UserID:          userID,
		Name:            req.Name,
		Type:            req.Type,
		Capital:         req.Capital,
		ProfitTarget:    req.ProfitTarget,
		MaxLoss:         req.MaxLoss,
		ConsistencyRule: req.ConsistencyRule,
		PayoutGoal:      req.PayoutGoal,
		ResetDate:       time.Now(),
	}

	if err := s.accountRepo.Create(account); err != nil {
		return nil, err
	}

	return account, nil
}

// GetAccounts retrieves all accounts for a user
func (s *AccountService) GetAccounts(userID uint) ([]models.Account, error) {
	return s.accountRepo.GetByUserID(userID)
}

// GetAccountByID retrieves an account owned by the user
func (s *AccountService) GetAccountByID(userID, accountID uint) (*models.Account, error) {
	return s.accountRepo.GetByIDAndUserID(accountID, userID)
}

// UpdateAccountRequest represents the update account request. Lifecycle
// fields (type, rank status, breach report, reset date) are mutated by event
// resolution only, not here.
type UpdateAccountRequest struct {
	Name            *string  `json:"name" binding:"omitempty,max=100"`
	Capital         *float64 `json:"capital" binding:"omitempty,gt=0"`
	ProfitTarget    *float64 `json:"profit_target" binding:"omitempty,gte=0"`
	MaxLoss         *float64 `json:"max_loss" binding:"omitempty,gte=0"`
	ConsistencyRule *float64 `json:"consistency_rule" binding:"omitempty,gt=0,lte=100"`
	PayoutGoal      *float64 `json:"payout_goal" binding:"omitempty,gte=0"`
}

// UpdateAccount updates an account's journal parameters
func (s *AccountService) UpdateAccount(userID, accountID uint, req *UpdateAccountRequest) (*models.Account, error) {
	account, err := s.accountRepo.GetByIDAndUserID(accountID, userID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		account.Name = *req.Name
	}
	if req.Capital != nil {
		account.Capital = *req.Capital
	}
	if req.ProfitTarget != nil {
		account.ProfitTarget = *req.ProfitTarget
	}
	if req.MaxLoss != nil {
		account.MaxLoss = *req.MaxLoss
	}
	if req.ConsistencyRule != nil {
		account.ConsistencyRule = req.ConsistencyRule
	}
	if req.PayoutGoal != nil {
		account.PayoutGoal = *req.PayoutGoal
	}

	if err := s.accountRepo.Update(account); err != nil {
		return nil, err
	}

	s.statsCache.Invalidate(context.Background(), account.ID)

	return account, nil
}

// ResetAccount moves the stats anchor to now without deleting trades
func (s *AccountService) ResetAccount(userID, accountID uint) (*models.Account, error) {
	account, err := s.accountRepo.GetByIDAndUserID(accountID, userID)
	if err != nil {
		return nil, err
	}

	account.ResetDate = time.Now()
	if err := s.accountRepo.Update(account); err != nil {
		return nil, err
	}

	s.statsCache.Invalidate(context.Background(), account.ID)

	return account, nil
}

// DeleteAccount deletes an account
func (s *AccountService) DeleteAccount(userID, accountID uint) error {
	if _, err := s.accountRepo.GetByIDAndUserID(accountID, userID); err != nil {
		return err
	}

	if err := s.accountRepo.Delete(accountID); err != nil {
		return err
	}

	s.statsCache.Invalidate(context.Background(), accountID)
	return nil
}

// GetAccountStats computes (or serves from cache) the account's derived stats
func (s *AccountService) GetAccountStats(ctx context.Context, userID, accountID uint) (*stats.Stats, error) {
	account, err := s.accountRepo.GetByIDAndUserID(accountID, userID)
	if err != nil {
		return nil, err
	}

	if cached, ok := s.statsCache.Get(ctx, account.ID); ok {
		return cached, nil
	}

	trades, err := s.tradeRepo.GetTradesForAccount(account.ID, account.StatsAnchor())
	if err != nil {
		return nil, err
	}

	snapshot := stats.Compute(account, trades)
	s.statsCache.Set(ctx, account.ID, &snapshot)

	return &snapshot, nil
}
