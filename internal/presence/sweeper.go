package presence

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/thereayou/vbase/internal/services"
)

// Sweeper periodically reconciles meeting participant counters against
// live leases.
type Sweeper struct {
	svc      *services.Service
	interval time.Duration
	minAge   time.Duration
	onEnded  func(*services.Manifest)
}

// NewSweeper builds a sweeper. onEnded receives the sessions of meetings
// the sweep deleted; it may be nil.
func NewSweeper(svc *services.Service, interval, minAge time.Duration, onEnded func(*services.Manifest)) *Sweeper {
	return &Sweeper{svc: svc, interval: interval, minAge: minAge, onEnded: onEnded}
}

// Run sweeps until ctx is cancelled.
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
	manifest, err := s.svc.ReconcileStaleMeetings(ctx, s.minAge)
	if err != nil {
		log.Warn().Err(err).Msg("presence sweep failed")
		return
	}
	if len(manifest.SessionIDs) == 0 {
		return
	}
	log.Info().Strs("sessions", manifest.SessionIDs).Msg("presence sweep ended meetings")
	if s.onEnded != nil {
		s.onEnded(manifest)
	}
}
