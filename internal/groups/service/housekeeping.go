package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/nichenest/nichenest/internal/groups/store"
	"github.com/nichenest/nichenest/pkg/slogx"
)

const (
	DefaultHousekeepingInterval  = time.Hour
	DefaultHousekeepingRetention = 30 * 24 * time.Hour
)

// HousekeepingService periodically prunes resolved requests, resolved
// invitations and read notifications older than the retention window.
// Pending rows are never touched.
type HousekeepingService struct {
	Store     store.Store
	Interval  time.Duration
	Retention time.Duration

	stop chan struct{}
	done chan struct{}
}

// Start launches the background sweep loop. It runs one sweep immediately
// and then every Interval until Stop is called.
func (s *HousekeepingService) Start(ctx context.Context) {
	if s.Interval <= 0 {
		s.Interval = DefaultHousekeepingInterval
	}
	if s.Retention <= 0 {
		s.Retention = DefaultHousekeepingRetention
	}
	s.stop = make(chan struct{})
	s.done = make(chan struct{})

	go func() {
		defer close(s.done)

		ticker := time.NewTicker(s.Interval)
		defer ticker.Stop()

		s.sweep(ctx)
		for {
			select {
			case <-ticker.C:
				s.sweep(ctx)
			case <-s.stop:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop halts the loop and waits for an in-flight sweep to finish.
func (s *HousekeepingService) Stop() {
	if s.stop == nil {
		return
	}
	close(s.stop)
	<-s.done
}

// Sweep runs one pruning pass. Exposed so an operator endpoint or test can
// trigger it on demand.
func (s *HousekeepingService) Sweep(ctx context.Context) {
	s.sweep(ctx)
}

func (s *HousekeepingService) sweep(ctx context.Context) {
	log := slogx.FromContext(ctx)
	cutoff := time.Now().UTC().Add(-s.Retention)

	if err := s.Store.MemberRequests().DeleteResolvedBefore(ctx, cutoff); err != nil {
		log.Error("housekeeping: prune resolved requests", slog.Any("error", err))
	}
	if err := s.Store.Invitations().DeleteResolvedBefore(ctx, cutoff); err != nil {
		log.Error("housekeeping: prune resolved invitations", slog.Any("error", err))
	}
	if err := s.Store.Notifications().DeleteReadBefore(ctx, cutoff); err != nil {
		log.Error("housekeeping: prune read notifications", slog.Any("error", err))
	}

	log.Debug("housekeeping sweep complete", slog.Time("cutoff", cutoff))
}
