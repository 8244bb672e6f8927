package storage

import (
	"context"
	"time"

	"github.com/masroufy/masroufy/internal/metrics"
	"go.uber.org/zap"
)

// Sweeper periodically deletes expired pending actions and conversation
// states. It is a correctness backstop only: every read path re-checks
// expiry itself, so the interval can stay coarse.
type Sweeper struct {
	confirmations ConfirmationStore
	conversations ConversationStore
	interval      time.Duration
	logger        *zap.Logger
}

func NewSweeper(confirmations ConfirmationStore, conversations ConversationStore, interval time.Duration, logger *zap.Logger) *Sweeper {
	return &Sweeper{
		confirmations: confirmations,
		conversations: conversations,
		interval:      interval,
		logger:        logger,
	}
}

// Run blocks until ctx is cancelled, sweeping once per interval.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) {
	if removed, err := s.confirmations.DeleteExpired(ctx); err != nil {
		s.logger.Error("Failed to sweep pending actions", zap.Error(err))
	} else if removed > 0 {
		metrics.SweptTotal.WithLabelValues("confirmations").Add(float64(removed))
		s.logger.Info("Swept expired pending actions", zap.Int("removed", removed))
	}

	if removed, err := s.conversations.DeleteExpired(ctx); err != nil {
		s.logger.Error("Failed to sweep conversation states", zap.Error(err))
	} else if removed > 0 {
		metrics.SweptTotal.WithLabelValues("conversations").Add(float64(removed))
		s.logger.Info("Swept expired conversation states", zap.Int("removed", removed))
	}
}
