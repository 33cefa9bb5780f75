package compliance

import (
	"context"
	"fmt"
	"time"

	"fliptrack/metrics"
	"fliptrack/models"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const sweepLockKey = "fliptrack:compliance:sweep"

// Store is the persistence the sweep reads from and writes back to.
type Store interface {
	ListCompliance(ctx context.Context) ([]models.ComplianceStatus, error)
	SaveComplianceBatch(ctx context.Context, statuses []models.ComplianceStatus) error
}

// Locker guards a sweep so that one replica runs it per interval.
type Locker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (bool, error)
}

// RedisLocker takes the sweep lock with SET NX and lets it expire.
type RedisLocker struct {
	rdb *redis.Client
}

func NewRedisLocker(rdb *redis.Client) *RedisLocker {
	return &RedisLocker{rdb: rdb}
}

func (l *RedisLocker) TryLock(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return l.rdb.SetNX(ctx, key, 1, ttl).Result()
}

// Sweeper re-evaluates every stored compliance record and persists the
// result. Sweep can be called directly; Run repeats it on an interval.
type Sweeper struct {
	store    Store
	locker   Locker
	now      func() time.Time
	interval time.Duration
	logger   *zap.Logger
}

func NewSweeper(store Store, now func() time.Time, interval time.Duration, logger *zap.Logger) *Sweeper {
	return &Sweeper{
		store:    store,
		now:      now,
		interval: interval,
		logger:   logger,
	}
}

// WithLocker makes Run take a lock before each periodic sweep.
func (s *Sweeper) WithLocker(l Locker) *Sweeper {
	s.locker = l
	return s
}

// Sweep evaluates all records against the current time and saves them.
// Returns the evaluated records in store order.
func (s *Sweeper) Sweep(ctx context.Context) ([]models.ComplianceStatus, error) {
	start := time.Now()

	statuses, err := s.store.ListCompliance(ctx)
	if err != nil {
		metrics.IncrementComplianceSweep("failed")
		return nil, fmt.Errorf("failed to load compliance records: %w", err)
	}

	evaluated := EvaluateAll(statuses, s.now())

	if err := s.store.SaveComplianceBatch(ctx, evaluated); err != nil {
		metrics.IncrementComplianceSweep("failed")
		return nil, fmt.Errorf("failed to save compliance records: %w", err)
	}

	flagged := CountRequiringUpdate(evaluated)
	metrics.IncrementComplianceSweep("success")
	metrics.SetProjectsRequiringUpdate(flagged)

	s.logger.Info("Compliance sweep finished",
		zap.Int("records", len(evaluated)),
		zap.Int("requires_update", flagged),
		zap.Duration("duration", time.Since(start)),
	)
	return evaluated, nil
}

// Run sweeps every interval until ctx is cancelled. A zero interval
// returns immediately.
func (s *Sweeper) Run(ctx context.Context) {
	if s.interval <= 0 {
		s.logger.Info("Compliance sweep disabled")
		return
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.runOnce(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.runOnce(ctx)
		}
	}
}

func (s *Sweeper) runOnce(ctx context.Context) {
	if s.locker != nil {
		// Lock slightly shorter than the interval so the next tick can take it.
		ok, err := s.locker.TryLock(ctx, sweepLockKey, s.interval*9/10)
		if err != nil {
			// Redis unavailable: sweep anyway, a duplicate sweep is harmless.
			s.logger.Warn("Compliance sweep lock failed, sweeping anyway", zap.Error(err))
		} else if !ok {
			metrics.IncrementComplianceSweep("skipped")
			s.logger.Debug("Compliance sweep held by another instance")
			return
		}
	}

	if _, err := s.Sweep(ctx); err != nil {
		s.logger.Error("Compliance sweep failed", zap.Error(err))
	}
}

// CountRequiringUpdate counts records flagged as requiring an update.
func CountRequiringUpdate(statuses []models.ComplianceStatus) int {
	n := 0
	for _, s := range statuses {
		if s.RequiresUpdate {
			n++
		}
	}
	return n
}
