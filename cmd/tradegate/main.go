package main

import (
	"context"
	"net/http"
	"net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"tradegate/internal/api/rest"
	"tradegate/internal/backtest"
	"tradegate/internal/compliance"
	"tradegate/internal/config"
	"tradegate/internal/infra/health"
	"tradegate/internal/infra/http/middleware"
	"tradegate/internal/infra/log"
	"tradegate/internal/infra/metrics"
	"tradegate/internal/infra/netutil"
	"tradegate/internal/infra/runner"
	"tradegate/internal/infra/version"
	"tradegate/internal/restrictions/loader"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load()
	logger := log.NewLogger(cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid configuration")
	}

	registry := metrics.Init(logger)
	provider, err := loader.NewProvider(cfg.Restrictions, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load restrictions")
	}
	guard := compliance.NewGuard(provider, logger, cfg.Restrictions.BatchWorkers)

	// one-shot replay mode
	if cfg.Backtest.IntentsCSV != "" {
		if _, err := backtest.RunCSV(ctx, cfg.Backtest.IntentsCSV, guard, logger); err != nil {
			logger.Fatal().Err(err).Msg("backtest failed")
		}
		return
	}

	server := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           newHandler(cfg, logger, registry, guard),
		ReadHeaderTimeout: 2 * time.Second,
		ReadTimeout:       time.Duration(cfg.Server.ReadTimeoutSeconds) * time.Second,
		WriteTimeout:      time.Duration(cfg.Server.WriteTimeoutSeconds) * time.Second,
		IdleTimeout:       time.Duration(cfg.Server.IdleTimeoutSeconds) * time.Second,
	}

	g := &runner.Group{Logger: logger}
	serverErrCh := g.Go(ctx, "http", func(ctx context.Context) error {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	var watchErrCh <-chan error
	if cfg.Restrictions.Watch {
		watchErrCh = g.Go(ctx, "restrictions_watch", provider.Watch)
	}

	logger.Info().
		Str("addr", cfg.Server.Addr).
		Str("mode", cfg.Restrictions.Mode).
		Str("variant", provider.Variant()).
		Bool("watch", cfg.Restrictions.Watch).
		Msg("tradegate started")
	health.SetReady(true)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case s := <-sigCh:
		logger.Info().Str("signal", s.String()).Msg("shutdown signal received")
	case err := <-serverErrCh:
		if err != nil {
			logger.Error().Err(err).Msg("http server error")
		}
	case err := <-watchErrCh:
		if err != nil {
			logger.Error().Err(err).Msg("restrictions watcher stopped")
		}
	}

	health.SetReady(false)
	cancel()
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}
	g.Wait()
	logger.Info().Msg("shutdown complete")
}

func newHandler(cfg config.Config, logger zerolog.Logger, registry *prometheus.Registry, guard *compliance.Guard) http.Handler {
	mux := http.NewServeMux()
	// admin endpoints (metrics, pprof) behind IP allowlist gate
	adminCIDRs := netutil.ParseCIDRs(cfg.Server.AdminAllowCIDRs, logger)
	mux.Handle("/metrics", middleware.AdminGate(adminCIDRs, logger, metrics.Handler(registry)))
	mux.HandleFunc("/healthz", health.Healthz)
	mux.HandleFunc("/readyz", health.Readyz)
	mux.HandleFunc("/version", version.Handler)
	if cfg.Server.Pprof {
		mux.Handle("/debug/pprof/", middleware.AdminGate(adminCIDRs, logger, http.HandlerFunc(pprof.Index)))
		mux.Handle("/debug/pprof/cmdline", middleware.AdminGate(adminCIDRs, logger, http.HandlerFunc(pprof.Cmdline)))
		mux.Handle("/debug/pprof/profile", middleware.AdminGate(adminCIDRs, logger, http.HandlerFunc(pprof.Profile)))
		mux.Handle("/debug/pprof/symbol", middleware.AdminGate(adminCIDRs, logger, http.HandlerFunc(pprof.Symbol)))
		mux.Handle("/debug/pprof/trace", middleware.AdminGate(adminCIDRs, logger, http.HandlerFunc(pprof.Trace)))
	}
	api := rest.New(guard, logger).Handler()
	mux.Handle("/v1/", api)
	mux.Handle("/status", api)

	return middleware.RequestID(middleware.Logger(logger)(mux))
}
