package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog/log"
	"github.com/thereayou/vbase/internal/config"
	"github.com/thereayou/vbase/internal/database"
	"github.com/thereayou/vbase/internal/handlers"
	"github.com/thereayou/vbase/internal/middleware"
	"github.com/thereayou/vbase/internal/presence"
	"github.com/thereayou/vbase/internal/services"
	"github.com/thereayou/vbase/internal/websocket"
	"github.com/thereayou/vbase/pkg/auth"
)

const shutdownTimeout = 10 * time.Second

type Server struct {
	Router     *gin.Engine
	DB         *database.Database
	Redis      *redis.Client
	JWTManager *auth.JWTManager
	Hub        *websocket.Hub
	Service    *services.Service

	cfg     *config.Config
	sweeper *presence.Sweeper
}

// NewServer connects the stores and builds the router. Without REDIS_URL
// tokens are revoked in memory and meeting presence leases are disabled.
func NewServer(cfg *config.Config) (*Server, error) {
	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("database connect failed: %w", err)
	}

	s := &Server{
		DB:         db,
		JWTManager: auth.NewJWTManager(cfg.JWTSecret, cfg.TokenTTL),
		Hub:        websocket.NewHub(),
		cfg:        cfg,
	}

	var (
		blacklist auth.Blacklist = auth.NewMemoryBlacklist()
		leases    handlers.Presence
		opts      []services.Option
		tracker   *presence.Tracker
	)
	if cfg.RedisURL != "" {
		redisOpts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
		}
		s.Redis = redis.NewClient(redisOpts)
		if err := s.Redis.Ping(context.Background()).Err(); err != nil {
			return nil, fmt.Errorf("redis connect failed: %w", err)
		}

		blacklist = auth.NewRedisBlacklist(s.Redis)
		tracker = presence.NewTracker(s.Redis, cfg.PresenceTTL)
		leases = tracker
		opts = append(opts, services.WithPresence(tracker))
	} else {
		log.Warn().Msg("REDIS_URL not set: token revocation is process-local and presence leases are off")
	}

	s.Service = services.New(db, opts...)
	teardown := handlers.NewTeardown(s.Hub)
	if tracker != nil {
		s.sweeper = presence.NewSweeper(s.Service, cfg.ReconcileInterval, 2*tracker.TTL(), teardown.Apply)
	}

	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestLogger())
	APIEndpoints(router, Deps{
		Service:       s.Service,
		JWTManager:    s.JWTManager,
		Blacklist:     blacklist,
		Hub:           s.Hub,
		Presence:      leases,
		Teardown:      teardown,
		WebhookSecret: cfg.WebhookSecret,
	})
	s.Router = router

	return s, nil
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	go s.Hub.Run()
	defer s.Hub.Stop()

	if s.sweeper != nil {
		go s.sweeper.Run(ctx)
	}

	srv := &http.Server{
		Addr:    ":" + s.cfg.Port,
		Handler: s.Router,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", s.cfg.Port).Msg("server starting")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	log.Info().Msg("server shutting down")
	return srv.Shutdown(shutdownCtx)
}

func (s *Server) Close() {
	if s.Redis != nil {
		s.Redis.Close()
	}
	if err := s.DB.Close(); err != nil {
		log.Warn().Err(err).Msg("close database")
	}
}
