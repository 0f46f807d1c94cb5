package worker

import (
	"context"
	"log"
	"time"

	"github.com/prop-journal/internal/cache"
	"github.com/prop-journal/internal/repository"
	"github.com/prop-journal/internal/stats"
)

// StatsWorker periodically recomputes and re-caches stats for every account
// so dashboard reads stay warm between commits
type StatsWorker struct {
	accountRepo *repository.AccountRepository
	tradeRepo   *repository.TradeRepository
	statsCache  *cache.StatsCache
	interval    time.Duration
	stopChan    chan struct{}
}

// NewStatsWorker creates a new stats refresh worker
func NewStatsWorker(
	accountRepo *repository.AccountRepository,
	tradeRepo *repository.TradeRepository,
	statsCache *cache.StatsCache,
	interval time.Duration,
) *StatsWorker {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &StatsWorker{
		accountRepo: accountRepo,
		tradeRepo:   tradeRepo,
		statsCache:  statsCache,
		interval:    interval,
		stopChan:    make(chan struct{}),
	}
}

// Start begins the refresh loop
func (w *StatsWorker) Start() {
	log.Printf("Stats worker started with interval: %v", w.interval)
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.refreshAll()
		case <-w.stopChan:
			log.Println("Stats worker stopped")
			return
		}
	}
}

// Stop stops the refresh loop
func (w *StatsWorker) Stop() {
	close(w.stopChan)
}

func (w *StatsWorker) refreshAll() {
	accounts, err := w.accountRepo.GetAll()
	if err != nil {
		log.Printf("Stats worker: failed to list accounts: %v", err)
		return
	}

	ctx := context.Background()
	for i := range accounts {
		account := &accounts[i]

		trades, err := w.tradeRepo.GetTradesForAccount(account.ID, account.StatsAnchor())
		if err != nil {
			log.Printf("Stats worker: failed to load trades for account %d: %v", account.ID, err)
			continue
		}

		snapshot := stats.Compute(account, trades)
		w.statsCache.Set(ctx, account.ID, &snapshot)
	}
}
