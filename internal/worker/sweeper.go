// Package worker runs background maintenance for the room store.
package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// ExpiredRoomStore is the storage the sweeper needs.
type ExpiredRoomStore interface {
	DeleteExpiredRooms(ctx context.Context, now int64) (int64, error)
}

// SweeperConfig holds sweeper configuration
type SweeperConfig struct {
	// Interval is how often expired rooms are purged.
	Interval time.Duration

	// Timeout bounds a single sweep.
	Timeout time.Duration
}

// Sweeper deletes rooms whose expiry has passed.
type Sweeper struct {
	config SweeperConfig
	store  ExpiredRoomStore
	logger *slog.Logger
	now    func() time.Time

	deleted prometheus.Counter
	failed  prometheus.Counter
}

// NewSweeper creates a sweeper. When reg is non-nil its counters are
// registered there.
func NewSweeper(store ExpiredRoomStore, config SweeperConfig, reg prometheus.Registerer, namespace string, logger *slog.Logger) *Sweeper {
	if config.Interval == 0 {
		config.Interval = time.Minute
	}
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}
	if namespace == "" {
		namespace = "splitroom"
	}

	s := &Sweeper{
		config: config,
		store:  store,
		logger: logger,
		now:    time.Now,
		deleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "expired_rooms_deleted_total",
			Help:      "Rooms deleted after their expiry passed",
		}),
		failed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "expired_room_sweeps_failed_total",
			Help:      "Sweeps that failed with a storage error",
		}),
	}
	if reg != nil {
		reg.MustRegister(s.deleted, s.failed)
	}
	return s
}

// Start sweeps once immediately and then on every tick until ctx is cancelled.
func (s *Sweeper) Start(ctx context.Context) error {
	s.logger.Info("sweeper starting", "interval", s.config.Interval)

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	s.Sweep(ctx)
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("sweeper shutting down")
			return ctx.Err()
		case <-ticker.C:
			s.Sweep(ctx)
		}
	}
}

// Sweep deletes every expired room and returns how many went.
func (s *Sweeper) Sweep(ctx context.Context) int64 {
	ctx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	n, err := s.store.DeleteExpiredRooms(ctx, s.now().Unix())
	if err != nil {
		s.failed.Inc()
		s.logger.Error("expired room sweep failed", "error", err)
		return 0
	}
	if n > 0 {
		s.deleted.Add(float64(n))
		s.logger.Info("expired rooms deleted", "count", n)
	}
	return n
}
