package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prop-journal/internal/cache"
	"github.com/prop-journal/internal/lifecycle"
	"github.com/prop-journal/internal/models"
)

var (
	ErrNoPendingEvent    = errors.New("no event is awaiting resolution")
	ErrEventKindMismatch = errors.New("resolution does not match the pending event kind")
	ErrEventNotApplied   = errors.New("resolution was not applied")
)

// RankUpResolution carries the replacement parameters for a rank-up or
// target-hit celebration. PayoutGoal applies to rank-ups, ProfitTarget to
// target-hits.
type RankUpResolution struct {
	Capital         float64  `json:"capital" binding:"required,gt=0"`
	MaxLoss         float64  `json:"max_loss" binding:"omitempty,gte=0"`
	ConsistencyRule *float64 `json:"consistency_rule" binding:"omitempty,gt=0,lte=100"`
	PayoutGoal      float64  `json:"payout_goal" binding:"omitempty,gte=0"`
	ProfitTarget    float64  `json:"profit_target" binding:"omitempty,gte=0"`
}

// BreachResolution carries the user's breach report
type BreachResolution struct {
	Report string `json:"report" binding:"required"`
}

// PayoutResolution adjusts the account for a new payout cycle. A nil
// StartingBalance keeps the account's current capital.
type PayoutResolution struct {
	PayoutGoal      *float64 `json:"payout_goal" binding:"omitempty,gte=0"`
	StartingBalance *float64 `json:"starting_balance" binding:"omitempty,gt=0"`
}

// Sequencer drives the resolve-one-at-a-time loop over the events one commit
// produced. Events are partitioned into fixed-priority buckets (celebrations,
// then breaches, then payouts) and within a bucket resolved in detection
// order. Progress is an explicit pointer, so resuming after a resolution is
// "advance pointer", never a callback chain.
type Sequencer struct {
	accounts   AccountStore
	notifier   Notifier
	statsCache *cache.StatsCache

	buckets [3][]lifecycle.Event
	bucket  int
	index   int
}

// NewSequencer partitions the commit's events into resolution buckets
func NewSequencer(events []lifecycle.Event, accounts AccountStore, notifier Notifier, statsCache *cache.StatsCache) *Sequencer {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	q := &Sequencer{
		accounts:   accounts,
		notifier:   notifier,
		statsCache: statsCache,
	}
	for _, ev := range events {
		b := ev.Kind.Bucket()
		q.buckets[b] = append(q.buckets[b], ev)
	}
	q.skipEmptyBuckets()
	return q
}

func (q *Sequencer) skipEmptyBuckets() {
	for q.bucket < len(q.buckets) && q.index >= len(q.buckets[q.bucket]) {
		q.bucket++
		q.index = 0
	}
}

// Done reports whether every event has been resolved or skipped
func (q *Sequencer) Done() bool {
	return q.bucket >= len(q.buckets)
}

// Current returns the event awaiting resolution, or nil when done
func (q *Sequencer) Current() *lifecycle.Event {
	if q.Done() {
		return nil
	}
	return &q.buckets[q.bucket][q.index]
}

func (q *Sequencer) advance() {
	if q.Done() {
		return
	}
	q.index++
	q.skipEmptyBuckets()
}

// Skip declines the current event and advances. The account keeps its state;
// the trade that triggered the event is already recorded.
func (q *Sequencer) Skip() error {
	if q.Done() {
		return ErrNoPendingEvent
	}
	q.advance()
	return nil
}

// AbandonAll skips every remaining event
func (q *Sequencer) AbandonAll() {
	q.bucket = len(q.buckets)
	q.index = 0
}

// ResolveRankUp applies a celebration resolution: the account becomes funded
// with the supplied parameters and its stats anchor moves to now.
func (q *Sequencer) ResolveRankUp(res *RankUpResolution) error {
	ev := q.Current()
	if ev == nil {
		return ErrNoPendingEvent
	}
	if ev.Kind != lifecycle.KindRankUp && ev.Kind != lifecycle.KindTargetHit {
		return ErrEventKindMismatch
	}

	account, err := q.accounts.GetAccount(ev.Account.ID)
	if err != nil {
		return q.notApplied(ev, err)
	}

	account.Type = models.AccountTypeFunded
	account.IsRankedUp = true
	account.Capital = res.Capital
	account.MaxLoss = res.MaxLoss
	account.ConsistencyRule = res.ConsistencyRule
	account.ResetDate = time.Now()

	if ev.Kind == lifecycle.KindRankUp {
		account.PayoutGoal = res.PayoutGoal
		account.ProfitTarget = 0
	} else {
		account.ProfitTarget = res.ProfitTarget
	}

	if err := q.accounts.UpdateAccount(account); err != nil {
		return q.notApplied(ev, err)
	}

	q.statsCache.Invalidate(context.Background(), account.ID)
	q.notifier.Success(fmt.Sprintf("account %d is now funded", account.ID))
	q.advance()
	return nil
}

// ResolveBreach stores the user's breach report on the account. The account
// type does not change; a breach is terminal but advisory.
func (q *Sequencer) ResolveBreach(res *BreachResolution) error {
	ev := q.Current()
	if ev == nil {
		return ErrNoPendingEvent
	}
	if ev.Kind != lifecycle.KindBreach {
		return ErrEventKindMismatch
	}

	account, err := q.accounts.GetAccount(ev.Account.ID)
	if err != nil {
		return q.notApplied(ev, err)
	}

	report := res.Report
	account.BreachReport = &report

	if err := q.accounts.UpdateAccount(account); err != nil {
		return q.notApplied(ev, err)
	}

	q.statsCache.Invalidate(context.Background(), account.ID)
	q.notifier.Success(fmt.Sprintf("breach report saved for account %d", account.ID))
	q.advance()
	return nil
}

// ResolvePayout starts a new payout cycle: capital resets to the supplied
// starting balance (or stays at the current capital), the payout goal may be
// adjusted, and the stats anchor moves to now.
func (q *Sequencer) ResolvePayout(res *PayoutResolution) error {
	ev := q.Current()
	if ev == nil {
		return ErrNoPendingEvent
	}
	if ev.Kind != lifecycle.KindPayout {
		return ErrEventKindMismatch
	}

	account, err := q.accounts.GetAccount(ev.Account.ID)
	if err != nil {
		return q.notApplied(ev, err)
	}

	if res.StartingBalance != nil {
		account.Capital = *res.StartingBalance
	}
	if res.PayoutGoal != nil {
		account.PayoutGoal = *res.PayoutGoal
	}
	account.ResetDate = time.Now()

	if err := q.accounts.UpdateAccount(account); err != nil {
		return q.notApplied(ev, err)
	}

	q.statsCache.Invalidate(context.Background(), account.ID)
	q.notifier.Success(fmt.Sprintf("payout recorded for account %d", account.ID))
	q.advance()
	return nil
}

// notApplied reports a failed mutation and advances anyway so the queue
// never wedges on one event. The caller gets an explicit not-applied error;
// the account keeps its pre-resolution state.
func (q *Sequencer) notApplied(ev *lifecycle.Event, err error) error {
	q.notifier.Error(fmt.Sprintf("resolution for account %d was not applied: %v", ev.Account.ID, err))
	q.advance()
	return fmt.Errorf("%w: %v", ErrEventNotApplied, err)
}
