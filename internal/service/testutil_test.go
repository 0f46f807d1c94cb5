package service_test

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/prop-journal/internal/models"
)

var errNotFound = errors.New("record not found")

// fakeStore is an in-memory Store for pipeline tests
type fakeStore struct {
	mu       sync.Mutex
	accounts map[uint]models.Account
	trades   map[uint]models.Trade
	groups   []models.CopyGroup
	nextID   uint

	failCreateFor     map[uint]bool // accountID -> CreateTrade fails
	failUpdateAccount bool
	failListGroups    bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		accounts:      make(map[uint]models.Account),
		trades:        make(map[uint]models.Trade),
		failCreateFor: make(map[uint]bool),
	}
}

func (f *fakeStore) addAccount(a models.Account) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.accounts[a.ID] = a
}

func (f *fakeStore) addGroup(g models.CopyGroup) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.groups = append(f.groups, g)
}

func (f *fakeStore) account(id uint) models.Account {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.accounts[id]
}

func (f *fakeStore) tradesFor(accountID uint) []models.Trade {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Trade
	for _, t := range f.trades {
		if t.AccountID == accountID {
			out = append(out, t)
		}
	}
	return out
}

func (f *fakeStore) GetAccount(id uint) (*models.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.accounts[id]
	if !ok {
		return nil, fmt.Errorf("account %d: %w", id, errNotFound)
	}
	return &a, nil
}

func (f *fakeStore) UpdateAccount(account *models.Account) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failUpdateAccount {
		return errors.New("update rejected")
	}
	if _, ok := f.accounts[account.ID]; !ok {
		return fmt.Errorf("account %d: %w", account.ID, errNotFound)
	}
	f.accounts[account.ID] = *account
	return nil
}

func (f *fakeStore) CreateTrade(trade *models.Trade) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failCreateFor[trade.AccountID] {
		return errors.New("insert rejected")
	}
	f.nextID++
	trade.ID = f.nextID
	f.trades[trade.ID] = *trade
	return nil
}

func (f *fakeStore) UpdateTrade(trade *models.Trade) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.trades[trade.ID]; !ok {
		return fmt.Errorf("trade %d: %w", trade.ID, errNotFound)
	}
	f.trades[trade.ID] = *trade
	return nil
}

func (f *fakeStore) GetTrade(id uint) (*models.Trade, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.trades[id]
	if !ok {
		return nil, fmt.Errorf("trade %d: %w", id, errNotFound)
	}
	return &t, nil
}

func (f *fakeStore) GetTradesForAccount(accountID uint, since time.Time) ([]models.Trade, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Trade
	for _, t := range f.trades {
		if t.AccountID == accountID && !t.Date.Before(since) {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeStore) ListActiveCopyGroups(leaderAccountID uint) ([]models.CopyGroup, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failListGroups {
		return nil, errors.New("list rejected")
	}
	var out []models.CopyGroup
	for _, g := range f.groups {
		if g.LeaderAccountID == leaderAccountID && g.IsActive {
			out = append(out, g)
		}
	}
	return out, nil
}

// recordingNotifier collects notifications for assertions
type recordingNotifier struct {
	mu        sync.Mutex
	successes []string
	errors    []string
}

func (n *recordingNotifier) Success(message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.successes = append(n.successes, message)
}

func (n *recordingNotifier) Error(message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.errors = append(n.errors, message)
}

func (n *recordingNotifier) errorCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.errors)
}

func day(offset int) time.Time {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	return base.AddDate(0, 0, offset)
}

func pnl(v float64) *float64 { return &v }
