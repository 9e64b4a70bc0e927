package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	httpmiddleware "github.com/vedang2003/tax-calculator-form/internal/http/middleware"
	"github.com/vedang2003/tax-calculator-form/internal/leads"
	"github.com/vedang2003/tax-calculator-form/internal/observability/metrics"
	"github.com/vedang2003/tax-calculator-form/internal/ratelimit"
	"github.com/vedang2003/tax-calculator-form/internal/web"
	"github.com/vedang2003/tax-calculator-form/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger         *logging.Logger
	LeadsHandler   *leads.Handler
	Limiter        ratelimit.Limiter
	Metrics        *metrics.SubmissionMetrics
	MetricsHandler http.Handler
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write(web.Index())
	})
	r.Handle("/static/*", web.StaticHandler())
	r.Get("/health", cfg.LeadsHandler.Health)
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	// The rate limit applies to submissions only; static pages and health
	// checks stay unthrottled.
	r.Group(func(submit chi.Router) {
		if cfg.Limiter != nil {
			submit.Use(httpmiddleware.RateLimit(cfg.Limiter, cfg.Metrics, cfg.Logger))
		}
		submit.Post("/submit", cfg.LeadsHandler.Submit)
	})

	return r
}
