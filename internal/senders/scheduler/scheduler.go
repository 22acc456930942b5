package scheduler

import (
	"context"
	"sync"
	"time"

	"mailsweep-backend/internal/senders/usecase"

	"go.uber.org/zap"
)

// PurgeScheduler runs the delete-mode purge on a fixed interval
type PurgeScheduler struct {
	purger   usecase.Purger
	interval time.Duration
	timeout  time.Duration
	logger   *zap.Logger
	stopChan chan struct{}
	stopOnce sync.Once
}

// NewPurgeScheduler creates a new scheduler. An interval of zero disables it.
func NewPurgeScheduler(purger usecase.Purger, interval time.Duration, logger *zap.Logger) *PurgeScheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PurgeScheduler{
		purger:   purger,
		interval: interval,
		timeout:  5 * time.Minute,
		logger:   logger.Named("purge_scheduler"),
		stopChan: make(chan struct{}),
	}
}

// Start begins the scheduler loop
func (s *PurgeScheduler) Start() {
	if s.interval <= 0 {
		s.logger.Info("purge scheduler disabled")
		return
	}

	s.logger.Info("starting purge scheduler", zap.Duration("interval", s.interval))

	go func() {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				s.runOnce()
			case <-s.stopChan:
				s.logger.Info("purge scheduler stopped")
				return
			}
		}
	}()
}

// Stop gracefully stops the scheduler
func (s *PurgeScheduler) Stop() {
	s.stopOnce.Do(func() { close(s.stopChan) })
}

func (s *PurgeScheduler) runOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	resp, err := s.purger.PurgeMarked(ctx)
	if err != nil {
		s.logger.Error("purge pass failed", zap.Error(err))
		return
	}
	s.logger.Debug("purge pass finished",
		zap.Int("users", resp.ProcessedUsers),
		zap.Int("messages", resp.PurgedMessages),
	)
}
