package service_test

import (
	"testing"

	"github.com/prop-journal/internal/models"
	"github.com/prop-journal/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func evaluationAccount(id uint) models.Account {
	return models.Account{
		ID:           id,
		UserID:       1,
		Type:         models.AccountTypeEvaluation,
		Capital:      10000,
		ProfitTarget: 1000,
		MaxLoss:      500,
		ResetDate:    day(0),
	}
}

func commitRequest(accountID uint, p float64) *service.CommitTradeRequest {
	return &service.CommitTradeRequest{
		AccountID: accountID,
		Date:      day(1),
		Symbol:    "ES",
		Side:      models.TradeSideLong,
		PnL:       pnl(p),
	}
}

func TestCommitRejectsInvalidRequestWithoutWriting(t *testing.T) {
	store := newFakeStore()
	store.addAccount(evaluationAccount(1))
	svc := service.NewCommitService(store, nil, nil)

	cases := []struct {
		name string
		req  *service.CommitTradeRequest
		want error
	}{
		{"missing account", &service.CommitTradeRequest{Date: day(1), Symbol: "ES", PnL: pnl(10)}, service.ErrMissingAccount},
		{"missing date", &service.CommitTradeRequest{AccountID: 1, Symbol: "ES", PnL: pnl(10)}, service.ErrMissingDate},
		{"missing symbol", &service.CommitTradeRequest{AccountID: 1, Date: day(1), PnL: pnl(10)}, service.ErrMissingSymbol},
		{"missing pnl", &service.CommitTradeRequest{AccountID: 1, Date: day(1), Symbol: "ES"}, service.ErrMissingPnL},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Commit(tc.req)
			assert.ErrorIs(t, err, tc.want)
		})
	}

	assert.Empty(t, store.tradesFor(1))
	assert.Equal(t, service.StateIdle, svc.State())
}

func TestCommitPersistsTrade(t *testing.T) {
	store := newFakeStore()
	store.addAccount(evaluationAccount(1))
	svc := service.NewCommitService(store, nil, nil)

	result, err := svc.Commit(commitRequest(1, 250))

	require.NoError(t, err)
	require.NotNil(t, result.Trade)
	assert.NotZero(t, result.Trade.ID)
	assert.NotEmpty(t, result.Trade.ExternalID)
	assert.False(t, result.PendingResolution)
	assert.Empty(t, result.Events)
	assert.Equal(t, service.StateIdle, svc.State())
	assert.Len(t, store.tradesFor(1), 1)
}

func TestCommitUnknownAccountReturnsIdle(t *testing.T) {
	store := newFakeStore()
	svc := service.NewCommitService(store, nil, nil)

	_, err := svc.Commit(commitRequest(42, 100))

	assert.ErrorIs(t, err, errNotFound)
	assert.Equal(t, service.StateIdle, svc.State())
}

func TestCommitEditSkipsDetectionAndReplication(t *testing.T) {
	store := newFakeStore()
	store.addAccount(evaluationAccount(1))
	store.addAccount(evaluationAccount(2))
	store.addGroup(models.CopyGroup{
		ID: 1, LeaderAccountID: 1, IsActive: true,
		Members: []models.CopyMember{{CopyGroupID: 1, FollowerAccountID: 2, RiskMultiplier: 1}},
	})
	svc := service.NewCommitService(store, nil, nil)

	created, err := svc.Commit(commitRequest(1, 100))
	require.NoError(t, err)
	require.Len(t, created.FollowerTrades, 1)

	// Editing the leader trade to a target-crossing profit must not detect
	// events or fan out again.
	edit := commitRequest(1, 2000)
	edit.ID = created.Trade.ID

	edited, err := svc.Commit(edit)
	require.NoError(t, err)

	assert.Empty(t, edited.Events)
	assert.Empty(t, edited.FollowerTrades)
	assert.False(t, edited.PendingResolution)
	assert.InDelta(t, 2000, edited.Trade.PnL, 1e-9)
	assert.Len(t, store.tradesFor(2), 1, "follower keeps a single copy")
	assert.Equal(t, service.StateIdle, svc.State())
}

func TestCommitEditRejectsForeignTrade(t *testing.T) {
	// Editing may never reassign a trade to a different account; a caller
	// who owns account 2 cannot overwrite a trade sitting on account 1.
	store := newFakeStore()
	store.addAccount(evaluationAccount(1))
	store.addAccount(evaluationAccount(2))
	svc := service.NewCommitService(store, nil, nil)

	created, err := svc.Commit(commitRequest(1, 100))
	require.NoError(t, err)

	edit := commitRequest(2, 999)
	edit.ID = created.Trade.ID

	_, err = svc.Commit(edit)

	assert.ErrorIs(t, err, service.ErrTradeAccountMismatch)
	assert.Equal(t, service.StateIdle, svc.State())

	stored, err := store.GetTrade(created.Trade.ID)
	require.NoError(t, err)
	assert.Equal(t, uint(1), stored.AccountID)
	assert.InDelta(t, 100, stored.PnL, 1e-9)
}

func TestCommitDetectsRankUpAndBlocksUntilResolved(t *testing.T) {
	store := newFakeStore()
	store.addAccount(evaluationAccount(1))
	svc := service.NewCommitService(store, nil, nil)

	result, err := svc.Commit(commitRequest(1, 1200))
	require.NoError(t, err)

	require.Len(t, result.Events, 1)
	assert.True(t, result.PendingResolution)
	assert.Equal(t, service.StateResolving, svc.State())

	ev := svc.PendingEvent()
	require.NotNil(t, ev)
	assert.Equal(t, uint(1), ev.Account.ID)

	// Further commits are rejected until the queue is drained.
	_, err = svc.Commit(commitRequest(1, 50))
	assert.ErrorIs(t, err, service.ErrResolutionPending)

	require.NoError(t, svc.SkipEvent())
	assert.Equal(t, service.StateIdle, svc.State())
	assert.Nil(t, svc.PendingEvent())

	_, err = svc.Commit(commitRequest(1, 50))
	assert.NoError(t, err)
}

func TestCommitRankUpRoundTrip(t *testing.T) {
	store := newFakeStore()
	store.addAccount(evaluationAccount(1))
	svc := service.NewCommitService(store, nil, nil)

	_, err := svc.Commit(commitRequest(1, 1200))
	require.NoError(t, err)
	require.Equal(t, service.StateResolving, svc.State())

	rule := 40.0
	err = svc.ResolveRankUp(&service.RankUpResolution{
		Capital:         50000,
		MaxLoss:         2000,
		ConsistencyRule: &rule,
		PayoutGoal:      3000,
	})
	require.NoError(t, err)

	account := store.account(1)
	assert.Equal(t, models.AccountTypeFunded, account.Type)
	assert.True(t, account.IsRankedUp)
	assert.InDelta(t, 50000, account.Capital, 1e-9)
	assert.InDelta(t, 2000, account.MaxLoss, 1e-9)
	assert.InDelta(t, 3000, account.PayoutGoal, 1e-9)
	assert.Zero(t, account.ProfitTarget)
	require.NotNil(t, account.ConsistencyRule)
	assert.InDelta(t, 40, *account.ConsistencyRule, 1e-9)
	assert.False(t, account.ResetDate.Before(day(0)))

	assert.Equal(t, service.StateIdle, svc.State())
}

func TestResolveWithoutPendingEvent(t *testing.T) {
	svc := service.NewCommitService(newFakeStore(), nil, nil)

	assert.ErrorIs(t, svc.SkipEvent(), service.ErrNoPendingEvent)
	assert.ErrorIs(t, svc.ResolveBreach(&service.BreachResolution{Report: "x"}), service.ErrNoPendingEvent)
	assert.Nil(t, svc.PendingEvent())
}

func TestAbandonResolutionKeepsTrades(t *testing.T) {
	store := newFakeStore()
	store.addAccount(evaluationAccount(1))
	svc := service.NewCommitService(store, nil, nil)

	_, err := svc.Commit(commitRequest(1, 1200))
	require.NoError(t, err)
	require.Equal(t, service.StateResolving, svc.State())

	svc.AbandonResolution()

	assert.Equal(t, service.StateIdle, svc.State())
	assert.Len(t, store.tradesFor(1), 1)
	account := store.account(1)
	assert.Equal(t, models.AccountTypeEvaluation, account.Type, "skipped event leaves the account untouched")
}
