package routes

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sunkaracharan/roifinal/api/controllers"
	webhookcontrollers "github.com/sunkaracharan/roifinal/api/controllers/webhooks"
	"github.com/sunkaracharan/roifinal/api/middleware"
	"github.com/sunkaracharan/roifinal/internal/auth"
	"github.com/sunkaracharan/roifinal/internal/payments"
	"github.com/sunkaracharan/roifinal/pkg/auth/session"
	"github.com/sunkaracharan/roifinal/pkg/config"
	"github.com/sunkaracharan/roifinal/pkg/db"
	"github.com/sunkaracharan/roifinal/pkg/logger"
	"github.com/sunkaracharan/roifinal/pkg/metrics"
	"github.com/sunkaracharan/roifinal/pkg/redis"
)

// Dependencies carries everything the HTTP surface needs. Nil services
// answer with an internal error instead of panicking.
type Dependencies struct {
	DB      db.Pinger
	Redis   *redis.Client
	Storage controllers.Pinger

	Sessions       session.AccessSessionChecker
	HTTPMetrics    *metrics.HTTPMetrics
	MetricsHandler http.Handler

	Auth         auth.Service
	Calculator   controllers.CalculatorService
	Results      controllers.ResultsService
	Reports      controllers.ReportExporter
	Payments     controllers.PaymentsService
	Webhooks     webhookcontrollers.RazorpayWebhookService
	WebhookGuard *payments.IdempotencyGuard
	Chatbot      controllers.ChatbotService
	Analysis     controllers.AnalysisService
	Admin        controllers.AdminService
	Contact      controllers.ContactService
}

func NewRouter(cfg *config.Config, logg *logger.Logger, deps Dependencies) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(deps.HTTPMetrics),
		middleware.CORS(cfg.App.CORSOrigins),
	)

	rateStore, idemStore := redisStores(deps.Redis)
	idempotent := middleware.Idempotency(idemStore, logg)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, readinessChecks(deps)))
	})
	if deps.MetricsHandler != nil {
		r.Handle("/metrics", deps.MetricsHandler)
	}

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(registerPolicy, rateStore, logg)).Post("/register", controllers.AuthRegister(deps.Auth, logg))
		r.With(middleware.AuthRateLimit(loginPolicy, rateStore, logg)).Post("/login", controllers.AuthLogin(deps.Auth, logg))
		r.Post("/logout", controllers.AuthLogout(deps.Auth, logg))
		r.Post("/refresh", controllers.AuthRefresh(deps.Auth, logg))
	})

	r.Post("/api/v1/contact", controllers.ContactSubmit(deps.Contact, logg))

	r.Route("/api/v1/webhooks", func(r chi.Router) {
		r.Post("/razorpay", webhookcontrollers.RazorpayWebhook(deps.Webhooks, cfg.Payment.WebhookSecret, webhookGuard(deps.WebhookGuard), logg))
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, deps.Sessions, logg))

		r.Route("/api/v1", func(r chi.Router) {
			r.Get("/dashboard", controllers.Dashboard(deps.Results, logg))

			r.Get("/calculator/quick", controllers.CalculatorQuick(deps.Calculator, logg))
			r.Post("/calculator/full", controllers.CalculatorFull(deps.Calculator, logg))

			r.Route("/results", func(r chi.Router) {
				r.Get("/", controllers.ResultsList(deps.Results, logg))
				r.Delete("/", controllers.ResultsDeleteAll(deps.Results, logg))
				r.Post("/quick", controllers.ResultsSaveQuick(deps.Calculator, logg))
				r.Post("/full", controllers.ResultsSaveFull(deps.Calculator, logg))
				r.Get("/{resultId}", controllers.ResultDetail(deps.Results, logg))
				r.Delete("/{resultId}", controllers.ResultDelete(deps.Results, logg))
				r.Get("/{resultId}/export", controllers.ResultExport(deps.Reports, logg))
			})

			r.Route("/payments", func(r chi.Router) {
				r.Get("/", controllers.PaymentHistory(deps.Payments, logg))
				r.With(idempotent).Post("/", controllers.PaymentCreate(deps.Payments, logg))
				r.Get("/required", controllers.PaymentRequired(deps.Payments, logg))
				r.Post("/verify", controllers.PaymentVerify(deps.Payments, logg))
				r.Get("/success", controllers.PaymentSuccess(deps.Payments, logg))
			})

			r.Post("/chatbot", controllers.Chatbot(deps.Chatbot, logg))
			r.Get("/history/analysis", controllers.HistoryAnalysis(deps.Analysis, logg))
		})

		r.Route("/api/admin/v1", func(r chi.Router) {
			r.Use(middleware.RequireStaff(logg))

			r.Get("/users", controllers.AdminListUsers(deps.Admin, logg))
			r.Get("/stats", controllers.AdminStats(deps.Admin, logg))
			r.Post("/users/{userId}/unlimited", controllers.AdminGrantUnlimited(deps.Admin, logg))
			r.Post("/users/{userId}/reset", controllers.AdminResetCalculations(deps.Admin, logg))
			r.With(idempotent).Post("/users/{userId}/add-free", controllers.AdminAddFreeCalculations(deps.Admin, logg))
			r.With(idempotent).Post("/payments/{paymentId}/status", controllers.AdminSetPaymentStatus(deps.Admin, logg))
		})
	})

	return r
}

func readinessChecks(deps Dependencies) map[string]controllers.Pinger {
	checks := map[string]controllers.Pinger{}
	if deps.DB != nil {
		checks["db"] = deps.DB
	}
	if deps.Redis != nil {
		checks["redis"] = deps.Redis
	}
	if deps.Storage != nil {
		checks["storage"] = deps.Storage
	}
	return checks
}

type eventGuard interface {
	CheckAndMark(ctx context.Context, eventID string) (bool, error)
	Delete(ctx context.Context, eventID string) error
}

// redisStores hands the middleware nil interfaces when Redis is absent so
// rate limiting and idempotency switch themselves off.
func redisStores(c *redis.Client) (middleware.RateLimitStore, middleware.IdempotencyStore) {
	if c == nil {
		return nil, nil
	}
	return c, c
}

func webhookGuard(g *payments.IdempotencyGuard) eventGuard {
	if g == nil {
		return nil
	}
	return g
}
