package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prop-journal/internal/cache"
	"github.com/prop-journal/internal/lifecycle"
	"github.com/prop-journal/internal/models"
	"github.com/prop-journal/internal/stats"
)

var (
	ErrMissingAccount       = errors.New("trade is missing an account")
	ErrMissingDate          = errors.New("trade is missing a date")
	ErrMissingSymbol        = errors.New("trade is missing a symbol")
	ErrMissingPnL           = errors.New("trade is missing a pnl value")
	ErrTradeAccountMismatch = errors.New("trade does not belong to the given account")
	ErrCommitInProgress     = errors.New("another commit is in progress")
	ErrResolutionPending    = errors.New("pending events must be resolved before committing")
)

// CommitState is the pipeline's explicit state. A commit is accepted only
// while Idle; the UI double-firing a submission gets a clean rejection
// instead of a second pass through the pipeline.
type CommitState string

const (
	StateIdle        CommitState = "idle"
	StateCommitting  CommitState = "committing"
	StateReplicating CommitState = "replicating"
	StateResolving   CommitState = "resolving"
)

// CommitTradeRequest represents a trade submission. A nonzero ID means an
// edit of an existing trade.
type CommitTradeRequest struct {
	ID          uint             `json:"id"`
	AccountID   uint             `json:"account_id" binding:"required"`
	Date        time.Time        `json:"date" binding:"required"`
	Symbol      string           `json:"symbol" binding:"required"`
	Side        models.TradeSide `json:"side" binding:"omitempty,oneof=LONG SHORT"`
	Quantity    float64          `json:"quantity"`
	EntryPrice  float64          `json:"entry_price"`
	ExitPrice   float64          `json:"exit_price"`
	PnL         *float64         `json:"pnl" binding:"required"`
	RiskPercent float64          `json:"risk_percent"`
	Notes       string           `json:"notes"`
}

// Validate checks the required fields before anything is written
func (r *CommitTradeRequest) Validate() error {
	if r.AccountID == 0 {
		return ErrMissingAccount
	}
	if r.Date.IsZero() {
		return ErrMissingDate
	}
	if r.Symbol == "" {
		return ErrMissingSymbol
	}
	if r.PnL == nil {
		return ErrMissingPnL
	}
	return nil
}

// CommitResult reports everything one submission produced
type CommitResult struct {
	Trade             *models.Trade     `json:"trade"`
	FollowerTrades    []models.Trade    `json:"follower_trades,omitempty"`
	FollowerErrors    []FollowerError   `json:"follower_errors,omitempty"`
	Events            []lifecycle.Event `json:"events,omitempty"`
	PendingResolution bool              `json:"pending_resolution"`
}

// CommitService is the trade-commit pipeline: validate, persist, detect the
// owning account's transition, fan out to copy followers, and queue all
// detected events for resolution. One commit runs to completion at a time.
type CommitService struct {
	store      Store
	replicator *ReplicationService
	notifier   Notifier
	statsCache *cache.StatsCache

	mu        sync.Mutex
	state     CommitState
	sequencer *Sequencer
}

// NewCommitService creates a new CommitService
func NewCommitService(store Store, notifier Notifier, statsCache *cache.StatsCache) *CommitService {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &CommitService{
		store:      store,
		replicator: NewReplicationService(store, notifier),
		notifier:   notifier,
		statsCache: statsCache,
		state:      StateIdle,
	}
}

// State returns the pipeline's current state
func (s *CommitService) State() CommitState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *CommitService) transition(from, to CommitState) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != from {
		return false
	}
	s.state = to
	return true
}

func (s *CommitService) setState(to CommitState) {
	s.mu.Lock()
	s.state = to
	s.mu.Unlock()
}

// Commit runs one trade submission through the pipeline
func (s *CommitService) Commit(req *CommitTradeRequest) (*CommitResult, error) {
	if err := req.Validate(); err != nil {
		s.notifier.Error(err.Error())
		return nil, err
	}

	if !s.transition(StateIdle, StateCommitting) {
		if s.State() == StateResolving {
			return nil, ErrResolutionPending
		}
		return nil, ErrCommitInProgress
	}

	if req.ID != 0 {
		return s.commitEdit(req)
	}
	return s.commitCreate(req)
}

// commitEdit updates an existing trade. Edits never re-run transition
// detection or copy replication.
func (s *CommitService) commitEdit(req *CommitTradeRequest) (*CommitResult, error) {
	defer s.setState(StateIdle)

	trade, err := s.store.GetTrade(req.ID)
	if err != nil {
		s.notifier.Error(fmt.Sprintf("trade update failed: %v", err))
		return nil, err
	}

	// An edit can never move a trade to a different account; combined with
	// the caller's ownership check on req.AccountID this keeps one user's
	// trades out of another's reach.
	if trade.AccountID != req.AccountID {
		s.notifier.Error(fmt.Sprintf("trade update rejected: trade %d is not on account %d", trade.ID, req.AccountID))
		return nil, ErrTradeAccountMismatch
	}

	trade.Date = req.Date
	trade.Symbol = req.Symbol
	trade.Side = req.Side
	trade.Quantity = req.Quantity
	trade.EntryPrice = req.EntryPrice
	trade.ExitPrice = req.ExitPrice
	trade.PnL = *req.PnL
	trade.RiskPercent = req.RiskPercent
	trade.Notes = req.Notes

	if err := s.store.UpdateTrade(trade); err != nil {
		s.notifier.Error(fmt.Sprintf("trade update failed: %v", err))
		return nil, err
	}

	s.statsCache.Invalidate(context.Background(), trade.AccountID)
	s.notifier.Success("trade updated")

	return &CommitResult{Trade: trade}, nil
}

func (s *CommitService) commitCreate(req *CommitTradeRequest) (*CommitResult, error) {
	account, err := s.store.GetAccount(req.AccountID)
	if err != nil {
		s.setState(StateIdle)
		s.notifier.Error(fmt.Sprintf("trade rejected: %v", err))
		return nil, err
	}

	// History is read before the insert so the pre-commit snapshot and the
	// hypothetical post-commit snapshot come from the same consistent view.
	history, err := s.store.GetTradesForAccount(account.ID, account.StatsAnchor())
	if err != nil {
		s.setState(StateIdle)
		s.notifier.Error(fmt.Sprintf("trade rejected: %v", err))
		return nil, err
	}

	trade := &models.Trade{
		ExternalID:  uuid.New().String(),
		AccountID:   req.AccountID,
		Date:        req.Date,
		Symbol:      req.Symbol,
		Side:        req.Side,
		Quantity:    req.Quantity,
		EntryPrice:  req.EntryPrice,
		ExitPrice:   req.ExitPrice,
		PnL:         *req.PnL,
		RiskPercent: req.RiskPercent,
		Notes:       req.Notes,
	}

	if err := s.store.CreateTrade(trade); err != nil {
		s.setState(StateIdle)
		s.notifier.Error(fmt.Sprintf("failed to record trade: %v", err))
		return nil, err
	}

	before := stats.Compute(account, history)
	after := stats.ComputeWith(account, history, *trade)

	detector := lifecycle.NewDetector()

	var events []lifecycle.Event
	if ev := detector.Detect(*account, before, after); ev != nil {
		events = append(events, *ev)
	}

	s.setState(StateReplicating)

	followerTrades, followerEvents, followerErrors := s.replicator.Replicate(trade, detector)
	events = append(events, followerEvents...)

	touched := []uint{account.ID}
	for _, ft := range followerTrades {
		touched = append(touched, ft.AccountID)
	}
	s.statsCache.Invalidate(context.Background(), touched...)

	result := &CommitResult{
		Trade:          trade,
		FollowerTrades: followerTrades,
		FollowerErrors: followerErrors,
		Events:         events,
	}

	if len(events) > 0 {
		s.mu.Lock()
		s.sequencer = NewSequencer(events, s.store, s.notifier, s.statsCache)
		s.state = StateResolving
		s.mu.Unlock()
		result.PendingResolution = true
	} else {
		s.setState(StateIdle)
	}

	s.notifier.Success(fmt.Sprintf("trade recorded for account %d", account.ID))

	return result, nil
}

// currentSequencer returns the active sequencer, or nil when nothing is
// awaiting resolution
func (s *CommitService) currentSequencer() *Sequencer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sequencer
}

// finishIfDone returns the pipeline to Idle once the queue is exhausted
func (s *CommitService) finishIfDone() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sequencer != nil && s.sequencer.Done() {
		s.sequencer = nil
		s.state = StateIdle
	}
}

// PendingEvent returns the event currently awaiting resolution, or nil
func (s *CommitService) PendingEvent() *lifecycle.Event {
	seq := s.currentSequencer()
	if seq == nil {
		return nil
	}
	return seq.Current()
}

// ResolveRankUp applies a rank-up or target-hit resolution to the pending event
func (s *CommitService) ResolveRankUp(res *RankUpResolution) error {
	seq := s.currentSequencer()
	if seq == nil {
		return ErrNoPendingEvent
	}
	err := seq.ResolveRankUp(res)
	s.finishIfDone()
	return err
}

// ResolveBreach applies a breach report to the pending event
func (s *CommitService) ResolveBreach(res *BreachResolution) error {
	seq := s.currentSequencer()
	if seq == nil {
		return ErrNoPendingEvent
	}
	err := seq.ResolveBreach(res)
	s.finishIfDone()
	return err
}

// ResolvePayout applies a payout resolution to the pending event
func (s *CommitService) ResolvePayout(res *PayoutResolution) error {
	seq := s.currentSequencer()
	if seq == nil {
		return ErrNoPendingEvent
	}
	err := seq.ResolvePayout(res)
	s.finishIfDone()
	return err
}

// SkipEvent declines the pending event, leaving the account untouched
func (s *CommitService) SkipEvent() error {
	seq := s.currentSequencer()
	if seq == nil {
		return ErrNoPendingEvent
	}
	err := seq.Skip()
	s.finishIfDone()
	return err
}

// AbandonResolution skips every remaining event and returns the pipeline to
// Idle. Trade writes from the commit are kept.
func (s *CommitService) AbandonResolution() {
	seq := s.currentSequencer()
	if seq == nil {
		return
	}
	seq.AbandonAll()
	s.finishIfDone()
}
