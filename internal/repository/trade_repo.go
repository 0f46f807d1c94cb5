package repository

import (
	"errors"
	"time"

	"github.com/prop-journal/internal/models"
	"gorm.io/gorm"
)

var (
	ErrTradeNotFound = errors.New("trade not found")
)

// TradeRepository handles trade data access
type TradeRepository struct {
	db *gorm.DB
}

// NewTradeRepository creates a new TradeRepository
func NewTradeRepository(db *gorm.DB) *TradeRepository {
	return &TradeRepository{db: db}
}

// Create creates a new trade
func (r *TradeRepository) Create(trade *models.Trade) error {
	return r.db.Create(trade).Error
}

// CreateTrade creates a new trade (service store contract)
func (r *TradeRepository) CreateTrade(trade *models.Trade) error {
	return r.Create(trade)
}

// Update updates an existing trade
func (r *TradeRepository) Update(trade *models.Trade) error {
	return r.db.Save(trade).Error
}

// UpdateTrade updates an existing trade (service store contract)
func (r *TradeRepository) UpdateTrade(trade *models.Trade) error {
	return r.Update(trade)
}

// GetByID retrieves a trade by ID
func (r *TradeRepository) GetByID(id uint) (*models.Trade, error) {
	var trade models.Trade
	result := r.db.First(&trade, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrTradeNotFound
		}
		return nil, result.Error
	}
	return &trade, nil
}

// GetTrade retrieves a trade by ID (service store contract)
func (r *TradeRepository) GetTrade(id uint) (*models.Trade, error) {
	return r.GetByID(id)
}

// GetTradesForAccount retrieves trades for an account dated on or after since
func (r *TradeRepository) GetTradesForAccount(accountID uint, since time.Time) ([]models.Trade, error) {
	var trades []models.Trade
	result := r.db.Where("account_id = ? AND date >= ?", accountID, since).
		Order("date ASC, id ASC").
		Find(&trades)
	return trades, result.Error
}

// GetByAccountIDPaginated retrieves trades with pagination, newest first
func (r *TradeRepository) GetByAccountIDPaginated(accountID uint, page, pageSize int) ([]models.Trade, int64, error) {
	var trades []models.Trade
	var total int64

	if err := r.db.Model(&models.Trade{}).Where("account_id = ?", accountID).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	result := r.db.Where("account_id = ?", accountID).
		Order("date DESC, id DESC").
		Offset(offset).
		Limit(pageSize).
		Find(&trades)

	return trades, total, result.Error
}

// Delete soft deletes a trade
func (r *TradeRepository) Delete(id uint) error {
	return r.db.Delete(&models.Trade{}, id).Error
}

// GetTotalPnL sums PnL for an account since the given date
func (r *TradeRepository) GetTotalPnL(accountID uint, since time.Time) (float64, error) {
	var total struct {
		Sum float64
	}
	err := r.db.Model(&models.Trade{}).
		Select("COALESCE(SUM(pnl), 0) as sum").
		Where("account_id = ? AND date >= ?", accountID, since).
		Scan(&total).Error
	return total.Sum, err
}
