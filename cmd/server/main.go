package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/grafy/internal/infrastructure/config"
	"github.com/GriffinCanCode/grafy/internal/infrastructure/logging"
	"github.com/GriffinCanCode/grafy/internal/infrastructure/server"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "grafy: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// Flags override the environment
	flag.StringVar(&cfg.Server.Port, "port", cfg.Server.Port, "Server port")
	flag.StringVar(&cfg.Server.Host, "host", cfg.Server.Host, "Bind address")
	flag.StringVar(&cfg.Logging.Level, "log-level", cfg.Logging.Level, "Log level: debug, info, warn, error")
	flag.BoolVar(&cfg.Logging.Development, "dev", cfg.Logging.Development, "Development logging")
	flag.StringVar(&cfg.Presets.Dir, "presets", cfg.Presets.Dir, "Directory of preset files")
	flag.IntVar(&cfg.Analysis.MaxResolution, "max-resolution", cfg.Analysis.MaxResolution, "Largest grid resolution per axis")
	noRate := flag.Bool("no-rate-limit", !cfg.RateLimit.Enabled, "Disable per-client rate limiting")
	flag.Parse()
	cfg.RateLimit.Enabled = !*noRate

	logCfg := logging.DefaultConfig()
	if cfg.Logging.Development {
		logCfg = logging.DevelopmentConfig()
	}
	if cfg.Logging.Level != "" {
		logCfg.Level = cfg.Logging.Level
	}
	logger, err := logging.New(logCfg)
	if err != nil {
		return err
	}

	srv, err := server.NewServer(cfg, logger)
	if err != nil {
		_ = logger.Close()
		return fmt.Errorf("create server: %w", err)
	}
	defer func() { _ = srv.Close() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("grafy starting",
		zap.String("addr", srv.Addr()),
		zap.String("presets_dir", cfg.Presets.Dir),
		zap.Bool("rate_limit", cfg.RateLimit.Enabled),
	)
	if err := srv.Run(ctx); err != nil {
		logger.Error("server stopped", zap.Error(err))
		return err
	}
	logger.Info("grafy stopped")
	return nil
}
