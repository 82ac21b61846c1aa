package scheduler

import (
	"time"

	"github.com/robfig/cron/v3"

	"github.com/kinotiBot/PerfumesPlugApp/internal/app/repository"
	"github.com/kinotiBot/PerfumesPlugApp/pkg/logger"
)

// staleCartAge is how long a cart item may sit untouched before the
// nightly prune removes it.
const staleCartAge = 30 * 24 * time.Hour

// CartScheduler prunes abandoned cart items on a nightly cron.
type CartScheduler struct {
	cron     *cron.Cron
	cartRepo repository.CartRepository
}

func NewCartScheduler(cartRepo repository.CartRepository) *CartScheduler {
	return &CartScheduler{
		cron:     cron.New(),
		cartRepo: cartRepo,
	}
}

// Start registers the nightly prune job (3:00 AM server time) and
// starts the cron loop.
func (s *CartScheduler) Start() error {
	_, err := s.cron.AddFunc("0 3 * * *", func() {
		logger.Info("Starting scheduled cart cleanup", nil)

		cutoff := time.Now().Add(-staleCartAge)
		removed, err := s.cartRepo.DeleteStale(cutoff)
		if err != nil {
			logger.Error("Failed to prune stale cart items", err)
			return
		}

		logger.Info("Cart cleanup finished", map[string]interface{}{
			"removed": removed,
		})
	})

	if err != nil {
		logger.Error("Failed to add cron job for cart cleanup", err)
		return err
	}

	s.cron.Start()
	logger.Info("Cart scheduler started successfully (daily at 3:00 AM)", nil)

	return nil
}

func (s *CartScheduler) Stop() {
	logger.Info("Stopping cart scheduler...", nil)
	s.cron.Stop()
	logger.Info("Cart scheduler stopped", nil)
}
