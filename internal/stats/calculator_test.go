package stats_test

import (
	"testing"
	"time"

	"github.com/prop-journal/internal/models"
	"github.com/prop-journal/internal/stats"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(offset int) time.Time {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	return base.AddDate(0, 0, offset)
}

func trade(accountID uint, date time.Time, pnl float64) models.Trade {
	return models.Trade{AccountID: accountID, Date: date, Symbol: "ES", PnL: pnl}
}

func TestComputeSumsPnL(t *testing.T) {
	account := &models.Account{
		ID:        1,
		Type:      models.AccountTypeLive,
		Capital:   10000,
		ResetDate: day(0),
	}
	trades := []models.Trade{
		trade(1, day(0), 250),
		trade(1, day(1), -100),
		trade(1, day(2), 75.5),
	}

	s := stats.Compute(account, trades)

	assert.InDelta(t, 225.5, s.TotalPnL, 1e-9)
	assert.InDelta(t, 10225.5, s.Balance, 1e-9)
}

func TestComputeIgnoresTradesBeforeResetDay(t *testing.T) {
	account := &models.Account{
		ID:        1,
		Type:      models.AccountTypeLive,
		Capital:   10000,
		ResetDate: day(5),
	}
	trades := []models.Trade{
		trade(1, day(0), -4000), // before the reset, must not count
		trade(1, day(4), -500),  // day before reset day
		trade(1, day(5), 300),   // reset day itself counts
		trade(1, day(6), 200),
	}

	s := stats.Compute(account, trades)

	assert.InDelta(t, 500, s.TotalPnL, 1e-9)
	assert.InDelta(t, 10500, s.Balance, 1e-9)
}

func TestComputeResetDayBoundary(t *testing.T) {
	// The anchor is the start of the reset date's calendar day, so a trade
	// earlier the same day still counts even if the reset happened at noon.
	account := &models.Account{
		ID:        1,
		Type:      models.AccountTypeLive,
		Capital:   10000,
		ResetDate: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
	trades := []models.Trade{
		trade(1, time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC), 100),
	}

	s := stats.Compute(account, trades)

	assert.InDelta(t, 100, s.TotalPnL, 1e-9)
}

func TestComputeNoLimitsForUnlimitedTypes(t *testing.T) {
	for _, typ := range []models.AccountType{
		models.AccountTypeLive,
		models.AccountTypeDemo,
		models.AccountTypeBacktesting,
	} {
		account := &models.Account{
			ID:           1,
			Type:         typ,
			Capital:      10000,
			ProfitTarget: 1000,
			MaxLoss:      500,
			ResetDate:    day(0),
		}

		s := stats.Compute(account, []models.Trade{trade(1, day(0), 100)})

		assert.Nil(t, s.Limits, "type %s must not carry limits", typ)
		assert.Nil(t, s.Consistency, "type %s must not carry a consistency report", typ)
	}
}

func TestComputeLimitsForEvaluation(t *testing.T) {
	account := &models.Account{
		ID:           1,
		Type:         models.AccountTypeEvaluation,
		Capital:      10000,
		ProfitTarget: 1000,
		MaxLoss:      500,
		ResetDate:    day(0),
	}

	s := stats.Compute(account, []models.Trade{trade(1, day(0), 200)})

	require.NotNil(t, s.Limits)
	assert.InDelta(t, 9500, s.Limits.MaxLossLevel, 1e-9)
	assert.InDelta(t, 11000, s.Limits.Target, 1e-9)
	assert.InDelta(t, 10200-9500, s.Limits.DrawdownRemaining, 1e-9)
	assert.InDelta(t, 11000-10200, s.Limits.RemainingToTarget, 1e-9)
}

func TestComputeWithPreviewsWithoutMutating(t *testing.T) {
	account := &models.Account{
		ID:        1,
		Type:      models.AccountTypeFunded,
		Capital:   50000,
		MaxLoss:   2000,
		ResetDate: day(0),
	}
	history := []models.Trade{trade(1, day(0), 500)}

	before := stats.Compute(account, history)
	after := stats.ComputeWith(account, history, trade(1, day(1), -300))

	assert.Len(t, history, 1)
	assert.InDelta(t, 50500, before.Balance, 1e-9)
	assert.InDelta(t, 50200, after.Balance, 1e-9)
}
