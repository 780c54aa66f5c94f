package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apihttp "github.com/GriffinCanCode/grafy/internal/api/http"
	"github.com/GriffinCanCode/grafy/internal/api/middleware"
	"github.com/GriffinCanCode/grafy/internal/api/ws"
	"github.com/GriffinCanCode/grafy/internal/infrastructure/config"
	"github.com/GriffinCanCode/grafy/internal/infrastructure/logging"
	"github.com/GriffinCanCode/grafy/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/grafy/internal/infrastructure/tracing"
	"github.com/GriffinCanCode/grafy/internal/presets"
	"github.com/GriffinCanCode/grafy/internal/providers/calculus"
	"github.com/GriffinCanCode/grafy/internal/providers/calculus/common"
	"github.com/GriffinCanCode/grafy/internal/service"
)

// ShutdownTimeout bounds graceful shutdown in Run
const ShutdownTimeout = 10 * time.Second

// Server wraps the HTTP server and dependencies
type Server struct {
	router   *gin.Engine
	registry *service.Registry
	provider *calculus.Provider
	logger   *logging.Logger
	config   *config.Config
	metrics  *monitoring.Metrics
	tracer   *tracing.Tracer
}

// NewServer creates a new server instance. A nil logger is built from cfg.
func NewServer(cfg *config.Config, logger *logging.Logger) (*Server, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if logger == nil {
		l, err := logging.New(logging.Config{
			Level:       cfg.Logging.Level,
			Development: cfg.Logging.Development,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create logger: %w", err)
		}
		logger = l
	}

	logger.Info("Initializing Grafy server",
		zap.String("port", cfg.Server.Port),
		zap.Int("max_resolution", cfg.Analysis.MaxResolution),
		zap.Int("cache_size", cfg.Analysis.CacheSize),
	)

	metrics := monitoring.NewMetrics()
	tracer := tracing.New("grafy", logger.Component("tracing").Logger)

	// Presets: built-ins, then files; a bad file never prevents startup
	library := presets.NewLibrary(logger.Component("presets").Logger)
	if cfg.Presets.Dir != "" {
		n, err := library.LoadDir(cfg.Presets.Dir, cfg.Presets.Pattern)
		if err != nil {
			logger.Warn("Some presets failed to load", zap.String("dir", cfg.Presets.Dir), zap.Error(err))
		}
		logger.Info("Loaded preset files", zap.String("dir", cfg.Presets.Dir), zap.Int("loaded", n), zap.Int("total", library.Len()))
	}

	provider := calculus.NewProvider(calculus.Options{
		CacheSize: cfg.Analysis.CacheSize,
		Limits: common.Limits{
			MaxResolution: cfg.Analysis.MaxResolution,
			DefaultStep:   cfg.Analysis.DefaultStep,
		},
		Library: library,
	})
	cache := provider.Cache()
	metrics.RegisterCache(func() (uint64, uint64, int) {
		s := cache.Stats()
		return s.Hits, s.Misses, s.Entries
	})

	registry := service.NewRegistry()
	if err := registry.Register(provider); err != nil {
		tracer.Close()
		return nil, fmt.Errorf("failed to register calculus provider: %w", err)
	}
	logger.Info("Registered service provider",
		zap.String("service", provider.Definition().ID),
		zap.Int("tools", len(provider.Definition().Tools)),
	)

	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(tracing.HTTPMiddleware(tracer))
	router.Use(monitoring.Middleware(metrics))
	router.Use(middleware.Logger(logger.Component("http").Logger))
	router.Use(middleware.CORS(middleware.DefaultCORSConfig()))
	if cfg.RateLimit.Enabled && cfg.RateLimit.GlobalRPS > 0 {
		burst := max(cfg.RateLimit.GlobalBurst, cfg.RateLimit.GlobalRPS)
		logger.Info("Global rate limiting enabled",
			zap.Int("rps", cfg.RateLimit.GlobalRPS),
			zap.Int("burst", burst),
		)
		router.Use(middleware.GlobalRateLimit(middleware.RateLimitConfig{
			RequestsPerSecond: cfg.RateLimit.GlobalRPS,
			Burst:             burst,
		}))
	}
	if cfg.RateLimit.Enabled {
		logger.Info("Rate limiting enabled",
			zap.Int("rps", cfg.RateLimit.RequestsPerSecond),
			zap.Int("burst", cfg.RateLimit.Burst),
		)
		router.Use(middleware.RateLimit(middleware.RateLimitConfig{
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			Burst:             cfg.RateLimit.Burst,
		}))
	}
	if cfg.Compression.Enabled {
		compression := middleware.DefaultCompressionConfig()
		compression.Level = cfg.Compression.Level
		router.Use(middleware.Compress(compression))
	}

	handlerMetrics := apihttp.NewHandlerMetrics(metrics)
	handlers := apihttp.NewHandlers(registry, library, cache, handlerMetrics, tracer, logger.Component("api").Logger)
	wsHandler := ws.NewHandler(cache, library, provider.Limits(), metrics, logger.Component("ws").Logger)

	router.GET("/", handlers.Root)
	router.GET("/health", handlers.Health)

	// Service management
	router.GET("/services", handlers.ListServices)
	router.POST("/services/discover", handlers.DiscoverServices)
	router.POST("/services/execute", handlers.ExecuteService)

	// Presets
	router.GET("/presets", handlers.ListPresets)
	router.GET("/presets/:id", handlers.GetPreset)

	// WebSocket
	router.GET("/stream", wsHandler.HandleConnection)

	// Metrics
	router.GET("/metrics", handlerMetrics.Prometheus())
	router.GET("/metrics/json", handlerMetrics.Snapshot)

	logger.Info("Server initialized successfully")

	return &Server{
		router:   router,
		registry: registry,
		provider: provider,
		logger:   logger,
		config:   cfg,
		metrics:  metrics,
		tracer:   tracer,
	}, nil
}

// Handler returns the router for embedding or tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// Addr is the configured listen address
func (s *Server) Addr() string {
	return net.JoinHostPort(s.config.Server.Host, s.config.Server.Port)
}

// Run serves HTTP until ctx is cancelled, then shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.Addr(),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Starting HTTP server", zap.String("addr", srv.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}

// Close flushes spans and logs
func (s *Server) Close() error {
	s.logger.Info("Shutting down server...")
	s.tracer.Close()
	return s.logger.Close()
}
