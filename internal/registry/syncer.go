package registry

import (
	"context"

	"github.com/linnemanlabs/go-core/log"
)

// Syncer serializes refreshes on a single goroutine and coalesces triggers:
// if a refresh is in flight when a trigger arrives, at most one follow-up
// refresh is queued, however many triggers fire in the meantime.
type Syncer struct {
	refresh func(ctx context.Context) error
	logger  log.Logger
	trigger chan struct{}
	done    chan struct{}
}

// NewSyncer wraps refresh. Call Run to start processing triggers.
func NewSyncer(refresh func(ctx context.Context) error, logger log.Logger) *Syncer {
	if logger == nil {
		logger = log.Nop()
	}
	return &Syncer{
		refresh: refresh,
		logger:  logger,
		trigger: make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
}

// Trigger requests a refresh. Non-blocking; triggers arriving while a
// refresh is pending or in flight collapse into the single queued slot.
func (s *Syncer) Trigger() {
	select {
	case s.trigger <- struct{}{}:
	default:
	}
}

// Run processes triggers until ctx is cancelled. Refresh failures are
// logged and absorbed; the cache keeps its last good value.
func (s *Syncer) Run(ctx context.Context) {
	defer close(s.done)
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.trigger:
			if err := s.refresh(ctx); err != nil {
				s.logger.Error(ctx, err, "coalesced refresh failed")
			}
		}
	}
}

// Done is closed when Run has returned.
func (s *Syncer) Done() <-chan struct{} {
	return s.done
}
