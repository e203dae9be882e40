package main

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/odyssey-erp/backoffice/internal/app"
	"github.com/odyssey-erp/backoffice/internal/backoffice"
	"github.com/odyssey-erp/backoffice/internal/observability"
	"github.com/odyssey-erp/backoffice/internal/platform/cache"
	"github.com/odyssey-erp/backoffice/internal/reporting"
	"github.com/odyssey-erp/backoffice/internal/sales"
	"github.com/odyssey-erp/backoffice/internal/seed"
)

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)
	metrics := observability.NewMetrics()

	var reportCache *reporting.Cache
	if cfg.CacheEnabled() {
		client, err := cache.New(ctx, cfg.RedisAddr)
		if err != nil {
			logger.Warn("redis unavailable, reports stay uncached", slog.Any("error", err))
		} else {
			defer func() {
				if err := client.Close(); err != nil {
					logger.Error("close redis", slog.Any("error", err))
				}
			}()
			reportCache = reporting.NewCache(client, cfg.ReportCacheTTL)
		}
	}

	engine := backoffice.New(backoffice.Options{
		Logger:   logger,
		Recorder: metrics,
		Sales: sales.Options{
			DefaultPaymentMethod: cfg.DefaultPaymentMethod,
			DefaultTaxRate:       cfg.DefaultTaxRate,
		},
		Reports: reporting.Options{
			TopN:          cfg.ReportTopN,
			RecentN:       cfg.ReportRecentN,
			ExcludeVoided: cfg.ReportExcludeVoided,
		},
		Cache: reportCache,
	})

	if cfg.SeedSampleData {
		if err := seed.Load(engine, seed.Bakery()); err != nil {
			logger.Error("seed sample data", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("sample data loaded")
	}
	// Revisions restart with the process; stale cached dashboards must not match.
	if err := engine.Reports.Invalidate(ctx); err != nil {
		logger.Warn("invalidate report cache", slog.Any("error", err))
	}

	dashboard, err := engine.Dashboard(ctx)
	if err != nil {
		logger.Error("build dashboard", slog.Any("error", err))
		os.Exit(1)
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(struct {
		Headline  reporting.Headline  `json:"headline"`
		Dashboard reporting.Dashboard `json:"dashboard"`
	}{dashboard.Headline(), dashboard}); err != nil {
		logger.Error("write dashboard", slog.Any("error", err))
		os.Exit(1)
	}

	if cfg.OpsAddr == "" {
		return
	}

	server := &http.Server{
		Addr: cfg.OpsAddr,
		Handler: app.NewRouter(app.RouterParams{
			Logger:  logger,
			Config:  cfg,
			Metrics: metrics,
			Reports: engine,
		}),
		ReadTimeout:  cfg.OpsReadTimeout,
		WriteTimeout: cfg.OpsWriteTimeout,
	}

	go func() {
		logger.Info("starting ops server", slog.String("addr", cfg.OpsAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("ops server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
