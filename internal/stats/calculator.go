// Package stats derives account financial snapshots from journaled trades.
// Everything here is pure: callers pass the account and its trades and get a
// snapshot back, so the same functions can preview the effect of a trade that
// has not been persisted yet.
package stats

import (
	"github.com/prop-journal/internal/models"
)

// Limits holds the loss-limit figures that only exist for evaluation and
// funded accounts. A nil *Limits on Stats means the account type has none.
type Limits struct {
	MaxLossLevel      float64 `json:"max_loss_level"`
	Target            float64 `json:"target"`
	DrawdownRemaining float64 `json:"drawdown_remaining"`
	RemainingToTarget float64 `json:"remaining_to_target"`
}

// Stats is a derived snapshot of an account's financial state. It is never
// persisted.
type Stats struct {
	Balance     float64            `json:"balance"`
	TotalPnL    float64            `json:"total_pnl"`
	Limits      *Limits            `json:"limits,omitempty"`
	Consistency *ConsistencyReport `json:"consistency,omitempty"`
}

// Compute builds the stats snapshot for an account from its trades. Trades
// dated before the account's reset day are ignored, so a soft reset changes
// the numbers without touching history.
func Compute(account *models.Account, trades []models.Trade) Stats {
	anchor := account.StatsAnchor()

	var totalPnL float64
	counted := make([]models.Trade, 0, len(trades))
	for _, t := range trades {
		if t.Date.Before(anchor) {
			continue
		}
		counted = append(counted, t)
		totalPnL += t.PnL
	}

	s := Stats{
		TotalPnL: totalPnL,
		Balance:  account.Capital + totalPnL,
	}

	if account.IsLossLimited() {
		limits := &Limits{
			MaxLossLevel: account.Capital - account.MaxLoss,
			Target:       account.Capital + account.ProfitTarget,
		}
		limits.DrawdownRemaining = s.Balance - limits.MaxLossLevel
		limits.RemainingToTarget = limits.Target - s.Balance
		s.Limits = limits

		s.Consistency = EvaluateConsistency(account, counted)
		if s.Consistency != nil && !s.Consistency.Valid {
			s.Consistency.UpdatedRemainingToTarget = s.Consistency.UpdatedTarget - s.Balance
		}
	}

	return s
}

// ComputeWith builds the snapshot the account would have if trade were
// committed on top of the given history. Used to preview post-commit state
// without writing anything.
func ComputeWith(account *models.Account, trades []models.Trade, trade models.Trade) Stats {
	combined := make([]models.Trade, 0, len(trades)+1)
	combined = append(combined, trades...)
	combined = append(combined, trade)
	return Compute(account, combined)
}
