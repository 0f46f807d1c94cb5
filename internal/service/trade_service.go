package service

import (
	"context"

	"github.com/prop-journal/internal/cache"
	"github.com/prop-journal/internal/models"
	"github.com/prop-journal/internal/repository"
)

// TradeService handles trade reads and deletion. Writes go through the
// commit pipeline.
type TradeService struct {
	tradeRepo   *repository.TradeRepository
	accountRepo *repository.AccountRepository
	statsCache  *cache.StatsCache
}

// NewTradeService creates a new TradeService
func NewTradeService(
	tradeRepo *repository.TradeRepository,
	accountRepo *repository.AccountRepository,
	statsCache *cache.StatsCache,
) *TradeService {
	return &TradeService{
		tradeRepo:   tradeRepo,
		accountRepo: accountRepo,
		statsCache:  statsCache,
	}
}

// GetTradesPaginated lists an account's trades, newest first
func (s *TradeService) GetTradesPaginated(userID, accountID uint, page, pageSize int) ([]models.Trade, int64, error) {
	if _, err := s.accountRepo.GetByIDAndUserID(accountID, userID); err != nil {
		return nil, 0, err
	}
	return s.tradeRepo.GetByAccountIDPaginated(accountID, page, pageSize)
}

// DeleteTrade deletes a trade after verifying ownership
func (s *TradeService) DeleteTrade(userID, tradeID uint) error {
	trade, err := s.tradeRepo.GetByID(tradeID)
	if err != nil {
		return err
	}

	if _, err := s.accountRepo.GetByIDAndUserID(trade.AccountID, userID); err != nil {
		return err
	}

	if err := s.tradeRepo.Delete(tradeID); err != nil {
		return err
	}

	s.statsCache.Invalidate(context.Background(), trade.AccountID)
	return nil
}
