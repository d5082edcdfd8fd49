package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/time/rate"

	"advisor/internal/adapters/ai"
	"advisor/internal/adapters/config"
	"advisor/internal/adapters/errors/noop"
	"advisor/internal/adapters/errors/sentry"
	"advisor/internal/adapters/search"
	"advisor/internal/advisor"
	"advisor/internal/api"
	"advisor/internal/api/health"
	"advisor/internal/metrics"
	"advisor/pkg/errors"
	"advisor/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// Initialize logger
	if err := logger.Init(cfg.App.LogLevel, cfg.App.Env); err != nil {
		panic("failed to init logger: " + err.Error())
	}
	defer logger.Sync()

	log := logger.Get()
	log.Infof("Starting %s in %s mode", cfg.App.Name, cfg.App.Env)

	// Initialize error tracker
	errorTracker := initErrorTracker(cfg, log)
	logger.SetErrorTracker(errorTracker)

	// Initialize metrics
	metrics.Init()

	// Initialize AI providers
	registry, err := ai.BuildRegistry(cfg.AI)
	if err != nil {
		log.Fatalf("Failed to initialize AI providers: %v", err)
	}
	log.Infof("AI providers initialized: %v", registry.List())

	provider, err := registry.Get(ai.NormalizeProviderName(cfg.AI.DefaultProvider))
	if err != nil {
		log.Fatalf("Default AI provider %q not available: %v", cfg.AI.DefaultProvider, err)
	}

	// Initialize web search
	searchClient := search.NewClient(cfg.Search.RequestTimeout, searchLimiter(cfg.Search))
	searchAdapter := advisor.NewSearchAdapter(searchClient, cfg.Search.Region, cfg.Search.MaxResults)

	// Initialize the advisory pipeline
	specialists := advisor.NewSpecialists(provider, cfg.AI.DefaultModel, searchAdapter, cfg.Advisor)
	orchestrator := advisor.NewOrchestrator(provider, cfg.AI.DefaultModel, specialists, cfg.Advisor)

	// Initialize HTTP server
	healthHandler := health.New(log, cfg.App.Name, cfg.App.Version)
	invocations := api.NewInvocationHandler(orchestrator, cfg.App.Version, cfg.Advisor.MaxPromptLength, log)

	server := api.NewServer(api.ServerConfig{
		Port:         cfg.Server.Port,
		ServiceName:  cfg.App.Name,
		Version:      cfg.App.Version,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}, healthHandler, invocations, log)

	log.Info("System initialized successfully")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		if err := server.Start(); err != nil {
			log.Fatalf("HTTP server error: %v", err)
		}
	}()

	waitForShutdown(ctx, cancel, server, errorTracker, log)
}

// initErrorTracker initializes error tracking (Sentry or no-op)
func initErrorTracker(cfg *config.Config, log *logger.Logger) errors.Tracker {
	if !cfg.ErrorTracking.Enabled || cfg.ErrorTracking.SentryDSN == "" {
		log.Info("Error tracking disabled")
		return noop.New()
	}

	tracker, err := sentry.New(cfg.ErrorTracking.SentryDSN, cfg.ErrorTracking.Environment)
	if err != nil {
		log.Warnf("Failed to initialize Sentry: %v", err)
		return noop.New()
	}

	log.Info("Error tracking initialized (Sentry)")
	return tracker
}

// searchLimiter builds the request pacer for the search provider.
func searchLimiter(cfg config.SearchConfig) *rate.Limiter {
	if cfg.ReqPerMinute <= 0 {
		return nil
	}
	burst := cfg.Burst
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(cfg.ReqPerMinute/60.0), burst)
}

// waitForShutdown waits for shutdown signal and performs graceful shutdown
func waitForShutdown(ctx context.Context, cancel context.CancelFunc, server *api.Server, errorTracker errors.Tracker, log *logger.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	<-quit
	log.Info("Shutting down...")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Warnf("HTTP server shutdown error: %v", err)
	}

	// Flush error tracker
	if errorTracker != nil {
		if err := errorTracker.Flush(shutdownCtx); err != nil {
			log.Warnf("Failed to flush error tracker: %v", err)
		}
	}

	log.Info("Shutdown complete")
}
