package reminder

import (
	"context"
	"log/slog"
	"time"

	"github.com/mediremind/api/internal/metrics"
	"github.com/mediremind/api/internal/repository"
)

const (
	cleanInterval = time.Hour

	// Expired sessions stay visible for a while so a late verify attempt
	// gets a "code expired" answer instead of "no code found".
	expiredRetention = 24 * time.Hour
)

// Cleaner purges verification sessions that expired long enough ago that
// nobody will reference them again.
type Cleaner struct {
	sessions repository.VerificationRepository
	logger   *slog.Logger
}

func NewCleaner(sessions repository.VerificationRepository, logger *slog.Logger) *Cleaner {
	return &Cleaner{sessions: sessions, logger: logger.With("component", "session_cleaner")}
}

func (c *Cleaner) Start(ctx context.Context) {
	ticker := time.NewTicker(cleanInterval)
	defer ticker.Stop()

	c.logger.Info("session cleaner started", "interval", cleanInterval)

	for {
		select {
		case <-ctx.Done():
			c.logger.Info("session cleaner shut down")
			return
		case <-ticker.C:
			c.clean(ctx)
		}
	}
}

func (c *Cleaner) clean(ctx context.Context) {
	purged, err := c.sessions.DeleteExpired(ctx, time.Now().Add(-expiredRetention))
	if err != nil {
		c.logger.Error("purge expired sessions", "error", err)
		return
	}
	if purged > 0 {
		metrics.SessionsPurgedTotal.Add(float64(purged))
		c.logger.Info("purged expired verification sessions", "count", purged)
	}
}
