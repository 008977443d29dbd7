package services

import (
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/thereayou/vbase/internal/database"
)

// Service implements the workspace, room, artifact, channel and meeting
// operations on top of the database. Every mutation runs in one
// transaction.
type Service struct {
	db       *database.Database
	now      func() time.Time
	log      zerolog.Logger
	presence LeaseCounter
}

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func WithLogger(logger zerolog.Logger) Option {
	return func(s *Service) { s.log = logger }
}

// WithPresence enables lease-based reconciliation of meeting participant
// counters.
func WithPresence(p LeaseCounter) Option {
	return func(s *Service) { s.presence = p }
}

func New(db *database.Database, opts ...Option) *Service {
	s := &Service{
		db:  db,
		now: func() time.Time { return time.Now().UTC() },
		log: log.Logger.With().Str("component", "services").Logger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}
