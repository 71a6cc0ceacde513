package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/multierr"
	"golang.org/x/time/rate"

	"github.com/sunkaracharan/roifinal/api"
	"github.com/sunkaracharan/roifinal/api/controllers"
	"github.com/sunkaracharan/roifinal/api/routes"
	"github.com/sunkaracharan/roifinal/internal/admin"
	"github.com/sunkaracharan/roifinal/internal/analysis"
	"github.com/sunkaracharan/roifinal/internal/auth"
	"github.com/sunkaracharan/roifinal/internal/chatbot"
	"github.com/sunkaracharan/roifinal/internal/contact"
	"github.com/sunkaracharan/roifinal/internal/payments"
	"github.com/sunkaracharan/roifinal/internal/reports"
	"github.com/sunkaracharan/roifinal/internal/results"
	"github.com/sunkaracharan/roifinal/internal/usage"
	"github.com/sunkaracharan/roifinal/internal/users"
	"github.com/sunkaracharan/roifinal/pkg/auth/session"
	"github.com/sunkaracharan/roifinal/pkg/config"
	"github.com/sunkaracharan/roifinal/pkg/db"
	"github.com/sunkaracharan/roifinal/pkg/logger"
	"github.com/sunkaracharan/roifinal/pkg/metrics"
	"github.com/sunkaracharan/roifinal/pkg/migrate"
	"github.com/sunkaracharan/roifinal/pkg/redis"
	"github.com/sunkaracharan/roifinal/pkg/storage/objectstore"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
		Format:      cfg.App.LogFormat,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	domainMetrics := metrics.NewDomainMetrics(registry)

	usersRepo := users.NewRepository(dbClient.DB())
	usageRepo := usage.NewRepository(dbClient.DB())
	resultsRepo := results.NewRepository(dbClient.DB())

	usageService, err := usage.NewService(usage.ServiceParams{Repo: usageRepo, Users: usersRepo})
	requireService(logg, "usage", err)

	authService, err := auth.NewService(auth.ServiceParams{
		DB:             dbClient,
		UserRepo:       usersRepo,
		Usage:          usageService,
		SessionManager: sessionManager,
		JWTConfig:      cfg.JWT,
		PasswordConfig: cfg.Password,
		Logger:         logg,
	})
	requireService(logg, "auth", err)

	resultsService, err := results.NewService(results.ServiceParams{
		DB:      dbClient,
		Repo:    resultsRepo,
		Usage:   usageService,
		Logger:  logg,
		Metrics: domainMetrics,
	})
	requireService(logg, "results", err)

	paymentService, err := payments.NewService(payments.ServiceParams{
		DB:       dbClient,
		Repo:     payments.NewRepository(dbClient.DB()),
		Usage:    usageService,
		Users:    usersRepo,
		Verifier: payments.NewSignatureVerifier(cfg.Payment.GatewaySecret),
		Config:   cfg.Payment,
		BaseURL:  cfg.App.PublicBaseURL,
		Logger:   logg,
		Metrics:  domainMetrics,
	})
	requireService(logg, "payments", err)

	webhookGuard, err := payments.NewIdempotencyGuard(redisClient, cfg.Payment.WebhookIdempotency, payments.WebhookScope)
	requireService(logg, "webhook idempotency", err)

	var (
		archiver    reports.Archiver
		storagePing controllers.Pinger
		chatClose   func() error
	)
	if cfg.Storage.Enabled() && cfg.FeatureFlags.ArchiveReports {
		store, err := objectstore.NewClient(context.Background(), cfg.Storage, logg)
		if err != nil {
			logg.Error(context.Background(), "failed to bootstrap object storage", err)
			os.Exit(1)
		}
		archiver, storagePing = store, store
	}

	reportService, err := reports.NewService(reports.ServiceParams{
		Results:  resultsService,
		Users:    usersRepo,
		Archiver: archiver,
		Logger:   logg,
	})
	requireService(logg, "reports", err)

	chatParams := chatbot.ServiceParams{
		Limiter: rate.NewLimiter(rate.Limit(cfg.Gemini.RequestsPerSecond), cfg.Gemini.Burst),
		Logger:  logg,
		Metrics: domainMetrics,
	}
	generator, err := chatbot.NewGeminiGenerator(context.Background(), cfg.Gemini)
	if err != nil {
		logg.Error(context.Background(), "failed to create gemini client", err)
		os.Exit(1)
	}
	if generator != nil {
		chatParams.Generator = generator
		chatClose = generator.Close
	} else {
		logg.Warn(context.Background(), "gemini api key not configured, chatbot disabled")
	}
	chatService, err := chatbot.NewService(chatParams)
	requireService(logg, "chatbot", err)

	analysisService, err := analysis.NewService(resultsRepo, nil)
	requireService(logg, "analysis", err)

	adminService, err := admin.NewService(admin.ServiceParams{
		Users:     usersRepo,
		UsageRows: usageRepo,
		Usage:     usageService,
		Results:   resultsRepo,
		Payments:  paymentService,
		Logger:    logg,
	})
	requireService(logg, "admin", err)

	router := routes.NewRouter(cfg, logg, routes.Dependencies{
		DB:             dbClient,
		Redis:          redisClient,
		Storage:        storagePing,
		Sessions:       sessionManager,
		HTTPMetrics:    metrics.NewHTTPMetrics(registry),
		MetricsHandler: promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		Auth:           authService,
		Calculator:     resultsService,
		Results:        resultsService,
		Reports:        reportService,
		Payments:       paymentService,
		Webhooks:       paymentService,
		WebhookGuard:   webhookGuard,
		Chatbot:        chatService,
		Analysis:       analysisService,
		Admin:          adminService,
		Contact:        contact.NewService(logg, nil),
	})

	server := api.NewServer(cfg, os.Getenv("PORT"), router)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":  cfg.App.Env,
		"addr": server.Addr,
	})
	logg.Info(ctx, "starting api server")

	serveErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	exitCode := 0
	select {
	case err := <-serveErr:
		if err != nil {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			exitCode = 1
		}
	case <-ctx.Done():
		logg.Info(ctx, "shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	var closeErr error
	closeErr = multierr.Append(closeErr, server.Shutdown(shutdownCtx))
	if chatClose != nil {
		closeErr = multierr.Append(closeErr, chatClose())
	}
	closeErr = multierr.Append(closeErr, redisClient.Close())
	closeErr = multierr.Append(closeErr, dbClient.Close())
	if closeErr != nil {
		logg.Error(context.Background(), "error during shutdown", closeErr)
		exitCode = 1
	}

	logg.Info(context.Background(), "api server stopped")
	os.Exit(exitCode)
}

func requireService(logg *logger.Logger, name string, err error) {
	if err == nil {
		return
	}
	logg.Error(context.Background(), "failed to create "+name+" service", err)
	os.Exit(1)
}
