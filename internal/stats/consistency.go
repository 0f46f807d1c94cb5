package stats

import (
	"time"

	"github.com/prop-journal/internal/models"
)

// ConsistencySeverity grades how close the worst trading day came to the
// single-day profit cap
type ConsistencySeverity string

const (
	ConsistencyOK        ConsistencySeverity = "ok"
	ConsistencyCaution   ConsistencySeverity = "caution"
	ConsistencyViolation ConsistencySeverity = "violation"
)

const cautionRatio = 0.8

// ConsistencyReport describes whether single-day profit concentration broke
// the account's consistency rule. A nil report means no rule applies, which
// callers must treat differently from a satisfied rule.
type ConsistencyReport struct {
	Valid                    bool                `json:"valid"`
	Severity                 ConsistencySeverity `json:"severity"`
	MaxDailyProfit           float64             `json:"max_daily_profit"`
	WorstDayProfit           float64             `json:"worst_day_profit"`
	WorstDay                 time.Time           `json:"worst_day"`
	UpdatedTarget            float64             `json:"updated_target,omitempty"`
	UpdatedRemainingToTarget float64             `json:"updated_remaining_to_target,omitempty"`
}

// EvaluateConsistency checks the consistency rule against per-day profit.
// Returns nil when the rule does not apply (no rule set, no profit target,
// or the account type carries no limits).
//
// The rule is broken only when the worst day's profit reaches the daily cap
// AND lifetime profit also exceeds the cap; a profitable spike on an
// otherwise flat account is a violation, a spike that the rest of the record
// dwarfs is not retroactively forgiven either way. When broken, the target is
// corrected upward by the amount the worst day exceeded the cap, so that the
// excess no longer counts as progress.
func EvaluateConsistency(account *models.Account, trades []models.Trade) *ConsistencyReport {
	if account.ConsistencyRule == nil || account.ProfitTarget <= 0 || !account.IsLossLimited() {
		return nil
	}

	maxDaily := account.ProfitTarget * (*account.ConsistencyRule / 100)

	daily := make(map[time.Time]float64)
	var totalPnL float64
	for _, t := range trades {
		daily[t.Day()] += t.PnL
		totalPnL += t.PnL
	}

	var worstDay time.Time
	var worstProfit float64
	for day, pnl := range daily {
		if pnl > worstProfit || (pnl == worstProfit && worstDay.IsZero()) {
			worstDay = day
			worstProfit = pnl
		}
	}

	report := &ConsistencyReport{
		Valid:          true,
		Severity:       ConsistencyOK,
		MaxDailyProfit: maxDaily,
		WorstDayProfit: worstProfit,
		WorstDay:       worstDay,
	}

	switch {
	case worstProfit >= maxDaily:
		report.Severity = ConsistencyViolation
	case worstProfit >= maxDaily*cautionRatio:
		report.Severity = ConsistencyCaution
	}

	if report.Severity == ConsistencyViolation && totalPnL > maxDaily {
		report.Valid = false
		report.UpdatedTarget = account.Capital + account.ProfitTarget + (worstProfit - maxDaily)
	}

	return report
}
