package app

import (
	"context"
	"time"

	"quizduel-service/internal/metrics"

	"go.uber.org/zap"
)

// Purger periodically deletes rooms that finished longer than the retention window ago.
type Purger struct {
	rooms     RoomRepository
	retention time.Duration
	interval  time.Duration
	log       *zap.Logger
	metrics   *metrics.Metrics
	now       func() time.Time
}

func NewPurger(rooms RoomRepository, retention, interval time.Duration, logger *zap.Logger, m *metrics.Metrics) *Purger {
	if logger == nil {
		logger = zap.NewNop()
	}
	if retention <= 0 {
		retention = time.Hour
	}
	if interval <= 0 {
		interval = time.Hour
	}
	return &Purger{
		rooms:     rooms,
		retention: retention,
		interval:  interval,
		log:       logger,
		metrics:   m,
		now:       time.Now,
	}
}

// PurgeOnce removes every room finished before now minus the retention window.
func (p *Purger) PurgeOnce(ctx context.Context) (int, error) {
	n, err := p.rooms.DeleteFinishedBefore(ctx, p.now().Add(-p.retention))
	if err != nil {
		return n, err
	}
	p.metrics.Purged(n)
	if n > 0 {
		p.log.Info("purged finished rooms", zap.Int("count", n))
	}
	return n, nil
}

// Run purges on every tick until ctx is canceled. Failures are logged and retried on the
// next tick.
func (p *Purger) Run(ctx context.Context) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if _, err := p.PurgeOnce(ctx); err != nil {
				p.log.Error("purge finished rooms", zap.Error(err))
			}
		}
	}
}
