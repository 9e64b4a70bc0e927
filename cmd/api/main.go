package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/vedang2003/tax-calculator-form/internal/api/router"
	appconfig "github.com/vedang2003/tax-calculator-form/internal/config"
	"github.com/vedang2003/tax-calculator-form/internal/leads"
	"github.com/vedang2003/tax-calculator-form/internal/notify"
	"github.com/vedang2003/tax-calculator-form/internal/observability/metrics"
	"github.com/vedang2003/tax-calculator-form/internal/ratelimit"
	"github.com/vedang2003/tax-calculator-form/internal/sheets"
	"github.com/vedang2003/tax-calculator-form/pkg/logging"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := appconfig.Load()

	logger := logging.New(cfg.LogLevel)
	logger.Info("starting tax calculator form API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	// Metrics
	registry := prometheus.NewRegistry()
	submissionMetrics := metrics.NewSubmissionMetrics(registry)

	// Rate limiter: Redis-backed when a shared store is configured, otherwise
	// in-memory per instance.
	var limiter ratelimit.Limiter
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		limiter = ratelimit.NewRedisLimiter(client, cfg.RateLimitMaxRequests, cfg.RateLimitWindow)
		logger.Info("using redis rate limiter", "addr", cfg.RedisAddr)
	} else {
		limiter = ratelimit.NewMemoryLimiter(cfg.RateLimitMaxRequests, cfg.RateLimitWindow)
	}

	// Downstream collaborators
	sheetsClient := sheets.NewClient(cfg.SheetsID, cfg.SheetsCredentialsB64, logger)

	var notifier notify.Sender
	if smtpSender := notify.NewSMTPSender(notify.SMTPConfig{
		Host:           cfg.SMTPHost,
		Port:           cfg.SMTPPort,
		Address:        cfg.EmailAddress,
		Password:       cfg.EmailPassword,
		AttachmentPath: cfg.TaxCalculatorFile,
	}, logger); smtpSender != nil {
		notifier = smtpSender
	} else {
		logger.Warn("SMTP credentials not configured, using stub email sender")
		notifier = notify.NewStubSender(logger)
	}

	leadsHandler := leads.NewHandler(sheetsClient, notifier, submissionMetrics, logger)

	r := router.New(&router.Config{
		Logger:         logger,
		LeadsHandler:   leadsHandler,
		Limiter:        limiter,
		Metrics:        submissionMetrics,
		MetricsHandler: promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}
