package handler_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prop-journal/internal/handler"
	"github.com/prop-journal/internal/models"
	"github.com/prop-journal/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// memStore is a minimal in-memory Store for driving the pipeline over HTTP
type memStore struct {
	accounts map[uint]models.Account
	trades   map[uint]models.Trade
	nextID   uint
}

func newMemStore() *memStore {
	return &memStore{
		accounts: make(map[uint]models.Account),
		trades:   make(map[uint]models.Trade),
	}
}

func (m *memStore) GetAccount(id uint) (*models.Account, error) {
	a, ok := m.accounts[id]
	if !ok {
		return nil, fmt.Errorf("account %d: %w", id, errors.New("not found"))
	}
	return &a, nil
}

func (m *memStore) UpdateAccount(account *models.Account) error {
	m.accounts[account.ID] = *account
	return nil
}

func (m *memStore) CreateTrade(trade *models.Trade) error {
	m.nextID++
	trade.ID = m.nextID
	m.trades[trade.ID] = *trade
	return nil
}

func (m *memStore) UpdateTrade(trade *models.Trade) error {
	m.trades[trade.ID] = *trade
	return nil
}

func (m *memStore) GetTrade(id uint) (*models.Trade, error) {
	t, ok := m.trades[id]
	if !ok {
		return nil, errors.New("trade not found")
	}
	return &t, nil
}

func (m *memStore) GetTradesForAccount(accountID uint, since time.Time) ([]models.Trade, error) {
	var out []models.Trade
	for _, t := range m.trades {
		if t.AccountID == accountID && !t.Date.Before(since) {
			out = append(out, t)
		}
	}
	return out, nil
}

func (m *memStore) ListActiveCopyGroups(uint) ([]models.CopyGroup, error) {
	return nil, nil
}

func setupResolutionRouter(t *testing.T) (*gin.Engine, *service.CommitService, *memStore) {
	t.Helper()

	store := newMemStore()
	store.accounts[1] = models.Account{
		ID:           1,
		UserID:       1,
		Type:         models.AccountTypeEvaluation,
		Capital:      10000,
		ProfitTarget: 1000,
		MaxLoss:      500,
		ResetDate:    time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
	}

	commitService := service.NewCommitService(store, nil, nil)

	router := gin.New()
	v1 := router.Group("/api/v1")
	h := handler.NewResolutionHandler(commitService)
	h.RegisterRoutes(v1, func(c *gin.Context) { c.Next() })

	return router, commitService, store
}

func commitRankUpTrade(t *testing.T, commitService *service.CommitService) {
	t.Helper()
	p := 1200.0
	result, err := commitService.Commit(&service.CommitTradeRequest{
		AccountID: 1,
		Date:      time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC),
		Symbol:    "ES",
		PnL:       &p,
	})
	require.NoError(t, err)
	require.True(t, result.PendingResolution)
}

func TestGetCurrentReportsPendingEvent(t *testing.T) {
	router, commitService, _ := setupResolutionRouter(t)
	commitRankUpTrade(t, commitService)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/resolution/current", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Code int `json:"code"`
		Data struct {
			State string `json:"state"`
			Event *struct {
				Kind string `json:"kind"`
			} `json:"event"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))

	assert.Zero(t, body.Code)
	assert.Equal(t, "resolving", body.Data.State)
	require.NotNil(t, body.Data.Event)
	assert.Equal(t, "RANK_UP", body.Data.Event.Kind)
}

func TestResolveRankUpOverHTTP(t *testing.T) {
	router, commitService, store := setupResolutionRouter(t)
	commitRankUpTrade(t, commitService)

	payload, _ := json.Marshal(map[string]interface{}{
		"capital":     50000,
		"max_loss":    2000,
		"payout_goal": 3000,
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/resolution/rank-up", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	account := store.accounts[1]
	assert.Equal(t, models.AccountTypeFunded, account.Type)
	assert.True(t, account.IsRankedUp)
	assert.Equal(t, service.StateIdle, commitService.State())
}

func TestResolveMismatchedKindOverHTTP(t *testing.T) {
	router, commitService, _ := setupResolutionRouter(t)
	commitRankUpTrade(t, commitService)

	payload, _ := json.Marshal(map[string]string{"report": "wrong endpoint"})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/resolution/breach", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, service.StateResolving, commitService.State())
}

func TestSkipWithoutPendingEvent(t *testing.T) {
	router, _, _ := setupResolutionRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/resolution/skip", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
