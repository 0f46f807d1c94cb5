package stats_test

import (
	"testing"
	"time"

	"github.com/prop-journal/internal/models"
	"github.com/prop-journal/internal/stats"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rulePct(v float64) *float64 { return &v }

func evalAccount(rule *float64) *models.Account {
	return &models.Account{
		ID:              1,
		Type:            models.AccountTypeEvaluation,
		Capital:         10000,
		ProfitTarget:    1000,
		MaxLoss:         500,
		ConsistencyRule: rule,
		ResetDate:       day(0),
	}
}

func TestConsistencyNilWhenRuleAbsent(t *testing.T) {
	report := stats.EvaluateConsistency(evalAccount(nil), []models.Trade{trade(1, day(0), 100)})
	assert.Nil(t, report)
}

func TestConsistencyNilWithoutProfitTarget(t *testing.T) {
	account := evalAccount(rulePct(50))
	account.ProfitTarget = 0

	report := stats.EvaluateConsistency(account, []models.Trade{trade(1, day(0), 100)})
	assert.Nil(t, report)
}

func TestConsistencyNilForUnlimitedTypes(t *testing.T) {
	account := evalAccount(rulePct(50))
	account.Type = models.AccountTypeLive

	report := stats.EvaluateConsistency(account, []models.Trade{trade(1, day(0), 100)})
	assert.Nil(t, report)
}

func TestConsistencyOK(t *testing.T) {
	// Rule 50% of a 1000 target caps one day at 500.
	account := evalAccount(rulePct(50))
	trades := []models.Trade{
		trade(1, day(0), 300),
		trade(1, day(1), 250),
	}

	report := stats.EvaluateConsistency(account, trades)

	require.NotNil(t, report)
	assert.True(t, report.Valid)
	assert.Equal(t, stats.ConsistencyOK, report.Severity)
	assert.InDelta(t, 500, report.MaxDailyProfit, 1e-9)
	assert.InDelta(t, 300, report.WorstDayProfit, 1e-9)
}

func TestConsistencyCautionNearCap(t *testing.T) {
	account := evalAccount(rulePct(50))
	trades := []models.Trade{
		trade(1, day(0), 450), // 90% of the 500 cap
		trade(1, day(1), 30),
	}

	report := stats.EvaluateConsistency(account, trades)

	require.NotNil(t, report)
	assert.True(t, report.Valid)
	assert.Equal(t, stats.ConsistencyCaution, report.Severity)
}

func TestConsistencyViolationNeedsLifetimeProfit(t *testing.T) {
	// The worst day hit the cap, but losses elsewhere keep lifetime profit
	// under the cap, so the rule is flagged but not broken.
	account := evalAccount(rulePct(50))
	trades := []models.Trade{
		trade(1, day(0), 600),
		trade(1, day(1), -400),
	}

	report := stats.EvaluateConsistency(account, trades)

	require.NotNil(t, report)
	assert.Equal(t, stats.ConsistencyViolation, report.Severity)
	assert.True(t, report.Valid)
	assert.Zero(t, report.UpdatedTarget)
}

func TestConsistencyViolationCorrectsTarget(t *testing.T) {
	// Worst day 600 against a 500 cap with lifetime profit 700: the rule is
	// broken and the target moves up by the 100 excess.
	account := evalAccount(rulePct(50))
	trades := []models.Trade{
		trade(1, day(0), 600),
		trade(1, day(1), 100),
	}

	report := stats.EvaluateConsistency(account, trades)

	require.NotNil(t, report)
	assert.False(t, report.Valid)
	assert.Equal(t, stats.ConsistencyViolation, report.Severity)
	assert.InDelta(t, 600, report.WorstDayProfit, 1e-9)
	assert.InDelta(t, 11100, report.UpdatedTarget, 1e-9)
}

func TestConsistencyGroupsTradesByDay(t *testing.T) {
	// Two trades on the same calendar day count as one day's profit.
	account := evalAccount(rulePct(50))
	sameDay := day(0)
	trades := []models.Trade{
		trade(1, sameDay, 300),
		trade(1, sameDay.Add(4*time.Hour), 300),
		trade(1, day(1), 100),
	}

	report := stats.EvaluateConsistency(account, trades)

	require.NotNil(t, report)
	assert.InDelta(t, 600, report.WorstDayProfit, 1e-9)
	assert.Equal(t, stats.ConsistencyViolation, report.Severity)
	assert.False(t, report.Valid)
}

func TestComputeFillsUpdatedRemainingToTarget(t *testing.T) {
	account := evalAccount(rulePct(50))
	trades := []models.Trade{
		trade(1, day(0), 600),
		trade(1, day(1), 100),
	}

	s := stats.Compute(account, trades)

	require.NotNil(t, s.Consistency)
	require.False(t, s.Consistency.Valid)
	// Balance 10700 against the corrected 11100 target.
	assert.InDelta(t, 400, s.Consistency.UpdatedRemainingToTarget, 1e-9)
}
