// Package scheduler runs the hub's periodic housekeeping.
package scheduler

import (
	"context"
	"time"

	auditdomain "github.com/railzwaylabs/billinghub/internal/audit/domain"
	"github.com/railzwaylabs/billinghub/internal/clock"
	"github.com/railzwaylabs/billinghub/internal/config"
	"go.uber.org/zap"
)

type Scheduler struct {
	repo  auditdomain.Repository
	cfg   config.RetentionConfig
	clock clock.Clock
	log   *zap.Logger
}

func New(repo auditdomain.Repository, cfg config.Config, clk clock.Clock, log *zap.Logger) *Scheduler {
	return &Scheduler{
		repo:  repo,
		cfg:   cfg.Retention,
		clock: clk,
		log:   log.Named("scheduler"),
	}
}

// PruneAuditLogs deletes audit entries older than the retention window.
func (s *Scheduler) PruneAuditLogs(ctx context.Context) (int64, error) {
	retentionDays := s.cfg.AuditDays
	if retentionDays <= 0 {
		s.log.Debug("audit retention disabled", zap.Int("days", retentionDays))
		return 0, nil
	}

	cutoff := s.clock.Now(ctx).AddDate(0, 0, -retentionDays)
	deleted, err := s.repo.DeleteBefore(ctx, cutoff)
	if err != nil {
		s.log.Error("audit retention failed", zap.Time("cutoff", cutoff), zap.Error(err))
		return 0, err
	}
	s.log.Info("audit retention completed", zap.Time("cutoff", cutoff), zap.Int64("deleted", deleted))
	return deleted, nil
}

// RunForever prunes once and then on every interval until ctx is done.
func (s *Scheduler) RunForever(ctx context.Context) {
	interval := s.cfg.Interval
	if interval <= 0 {
		interval = time.Hour
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		_, _ = s.PruneAuditLogs(ctx)
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
