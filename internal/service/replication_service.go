package service

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/prop-journal/internal/lifecycle"
	"github.com/prop-journal/internal/models"
	"github.com/prop-journal/internal/stats"
)

// FollowerError records one failed replication step. Failures never stop
// the remaining followers; they are collected and reported. A failure to
// enumerate the leader's groups carries LeaderAccountID and no follower.
type FollowerError struct {
	CopyGroupID       uint   `json:"copy_group_id,omitempty"`
	LeaderAccountID   uint   `json:"leader_account_id,omitempty"`
	FollowerAccountID uint   `json:"follower_account_id,omitempty"`
	Message           string `json:"message"`
}

// ReplicationService fans a committed leader trade out to the follower
// accounts of every active copy group the leader drives. Iteration follows
// group order, then member order, with no parallelism, so the resulting
// trades and events are deterministic.
type ReplicationService struct {
	store    Store
	notifier Notifier
}

// NewReplicationService creates a new ReplicationService
func NewReplicationService(store Store, notifier Notifier) *ReplicationService {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &ReplicationService{store: store, notifier: notifier}
}

// Replicate copies the leader trade to each follower, scaled by the member's
// risk multiplier, and runs transition detection on each follower through
// the commit's shared detector. A follower whose write fails is excluded
// from detection.
func (r *ReplicationService) Replicate(leaderTrade *models.Trade, detector *lifecycle.Detector) ([]models.Trade, []lifecycle.Event, []FollowerError) {
	var (
		followerTrades []models.Trade
		events         []lifecycle.Event
		failures       []FollowerError
	)

	groups, err := r.store.ListActiveCopyGroups(leaderTrade.AccountID)
	if err != nil {
		msg := fmt.Sprintf("failed to list copy groups for account %d: %v", leaderTrade.AccountID, err)
		r.notifier.Error(msg)
		return nil, nil, []FollowerError{{LeaderAccountID: leaderTrade.AccountID, Message: msg}}
	}

	for _, group := range groups {
		for _, member := range group.Members {
			follower, err := r.store.GetAccount(member.FollowerAccountID)
			if err != nil {
				failures = append(failures, r.fail(group.ID, member.FollowerAccountID, err))
				continue
			}

			history, err := r.store.GetTradesForAccount(follower.ID, follower.StatsAnchor())
			if err != nil {
				failures = append(failures, r.fail(group.ID, follower.ID, err))
				continue
			}

			copied := deriveFollowerTrade(leaderTrade, &member)
			if err := r.store.CreateTrade(&copied); err != nil {
				failures = append(failures, r.fail(group.ID, follower.ID, err))
				continue
			}

			followerTrades = append(followerTrades, copied)

			before := stats.Compute(follower, history)
			after := stats.ComputeWith(follower, history, copied)
			if ev := detector.Detect(*follower, before, after); ev != nil {
				events = append(events, *ev)
			}
		}
	}

	return followerTrades, events, failures
}

func (r *ReplicationService) fail(groupID, followerID uint, err error) FollowerError {
	msg := fmt.Sprintf("replication to account %d failed: %v", followerID, err)
	r.notifier.Error(msg)
	return FollowerError{
		CopyGroupID:       groupID,
		FollowerAccountID: followerID,
		Message:           msg,
	}
}

// deriveFollowerTrade builds the follower's copy: a fresh identity, the
// follower's account, pnl and risk scaled by the multiplier, everything else
// inherited verbatim.
func deriveFollowerTrade(leader *models.Trade, member *models.CopyMember) models.Trade {
	copied := *leader
	copied.ID = 0
	copied.ExternalID = uuid.New().String()
	copied.AccountID = member.FollowerAccountID
	copied.PnL = leader.PnL * member.RiskMultiplier
	copied.RiskPercent = leader.RiskPercent * member.RiskMultiplier
	return copied
}
