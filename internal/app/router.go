package app

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/odyssey-erp/backoffice/internal/observability"
	"github.com/odyssey-erp/backoffice/internal/platform/httpx"
	"github.com/odyssey-erp/backoffice/internal/reporting"
)

// DashboardSource serves the aggregated report.
type DashboardSource interface {
	Dashboard(ctx context.Context) (reporting.Dashboard, error)
}

// RouterParams groups dependencies for building the ops router.
type RouterParams struct {
	Logger  *slog.Logger
	Config  *Config
	Metrics *observability.Metrics
	Reports DashboardSource
}

// NewRouter constructs the read-only ops router.
func NewRouter(params RouterParams) http.Handler {
	logger := params.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	r := chi.NewRouter()
	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())

	r.Route("/reports", func(r chi.Router) {
		r.Get("/dashboard", func(w http.ResponseWriter, r *http.Request) {
			if params.Reports == nil {
				httpx.Problem(w, http.StatusServiceUnavailable, "Unavailable", "reports are not configured")
				return
			}
			d, err := params.Reports.Dashboard(r.Context())
			if err != nil {
				logger.Error("build dashboard", slog.Any("error", err))
				httpx.RespondError(w, err)
				return
			}
			httpx.JSON(w, http.StatusOK, d)
		})
		r.Get("/headline", func(w http.ResponseWriter, r *http.Request) {
			if params.Reports == nil {
				httpx.Problem(w, http.StatusServiceUnavailable, "Unavailable", "reports are not configured")
				return
			}
			d, err := params.Reports.Dashboard(r.Context())
			if err != nil {
				logger.Error("build dashboard", slog.Any("error", err))
				httpx.RespondError(w, err)
				return
			}
			httpx.JSON(w, http.StatusOK, d.Headline())
		})
	})
	return r
}
