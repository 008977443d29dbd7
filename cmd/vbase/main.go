package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"
	"github.com/thereayou/vbase/cmd/server"
	"github.com/thereayou/vbase/internal/config"
	"github.com/thereayou/vbase/internal/logging"
)

func main() {
	var (
		envFile  string
		port     string
		logLevel string
	)
	pflag.StringVar(&envFile, "env-file", "", "load environment from this file instead of .env.local/.env")
	pflag.StringVar(&port, "port", "", "listen port (overrides PORT)")
	pflag.StringVar(&logLevel, "log-level", "", "log level (overrides LOG_LEVEL)")
	pflag.Parse()

	config.LoadEnvFiles(envFile)
	cfg, err := config.FromEnv()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	if port != "" {
		cfg.Port = port
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}

	logging.Setup(cfg.LogLevel, cfg.LogFormat)
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	srv, err := server.NewServer(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("startup failed")
	}
	defer srv.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := srv.Run(ctx); err != nil {
		log.Error().Err(err).Msg("server run error")
		stop()
		srv.Close()
		os.Exit(1)
	}
}
