package lifecycle

import (
	"github.com/prop-journal/internal/models"
	"github.com/prop-journal/internal/stats"
)

// Detector classifies at most one lifecycle event per account per commit by
// comparing stats before and after a trade. The visited set spans the whole
// commit, including copy replication, so an account reached twice (directly
// and as a follower) is analyzed only once.
type Detector struct {
	visited map[uint]struct{}
}

// NewDetector creates a detector for a single commit
func NewDetector() *Detector {
	return &Detector{visited: make(map[uint]struct{})}
}

// Visited reports whether the account was already analyzed in this commit
func (d *Detector) Visited(accountID uint) bool {
	_, ok := d.visited[accountID]
	return ok
}

// Detect compares before/after stats and returns the first matching
// transition, or nil. Match order: rank-up / target-hit, breach, payout.
func (d *Detector) Detect(account models.Account, before, after stats.Stats) *Event {
	if d.Visited(account.ID) {
		return nil
	}
	d.visited[account.ID] = struct{}{}

	if before.Limits == nil || after.Limits == nil {
		return nil
	}

	target := before.Limits.Target
	if account.ProfitTarget > 0 && before.Balance < target && after.Balance >= target {
		kind := KindTargetHit
		if account.Type == models.AccountTypeEvaluation {
			kind = KindRankUp
		}
		return &Event{Kind: kind, Account: account, Before: before, After: after}
	}

	// A breach fires only on a fresh crossing: an account already at or
	// under its floor does not breach again.
	if account.MaxLoss > 0 {
		mll := before.Limits.MaxLossLevel
		if before.Balance > mll && after.Balance <= mll {
			return &Event{Kind: KindBreach, Account: account, Before: before, After: after}
		}
	}

	if account.Type == models.AccountTypeFunded && account.PayoutGoal > 0 &&
		before.TotalPnL < account.PayoutGoal && after.TotalPnL >= account.PayoutGoal {
		return &Event{Kind: KindPayout, Account: account, Before: before, After: after}
	}

	return nil
}
