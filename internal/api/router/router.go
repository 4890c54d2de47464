package router

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/talentseek/b2beelanding/internal/abm"
	"github.com/talentseek/b2beelanding/internal/bees"
	"github.com/talentseek/b2beelanding/internal/boatfund"
	"github.com/talentseek/b2beelanding/internal/bookings"
	"github.com/talentseek/b2beelanding/internal/http/handlers"
	httpmiddleware "github.com/talentseek/b2beelanding/internal/http/middleware"
	"github.com/talentseek/b2beelanding/internal/http/respond"
	"github.com/talentseek/b2beelanding/internal/leads"
	"github.com/talentseek/b2beelanding/internal/reminders"
	"github.com/talentseek/b2beelanding/internal/testimonials"
	"github.com/talentseek/b2beelanding/pkg/logging"
)

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Config holds router configuration. Nil handlers leave their routes unmounted.
type Config struct {
	Logger *logging.Logger

	LeadsHandler        *leads.Handler
	BeesHandler         *bees.Handler
	TestimonialsHandler *testimonials.Handler
	BookingsHandler     *bookings.Handler
	RemindersHandler    *reminders.Handler
	ABMHandler          *abm.Handler
	BoatFundHandler     *boatfund.Handler
	AdminDashboard      *handlers.AdminDashboardHandler

	// LeadLimiter throttles public lead and booking submissions per client IP.
	LeadLimiter httpmiddleware.Limiter

	AdminAuthSecret    string
	CORSAllowedOrigins []string
	MetricsHandler     http.Handler
	Health             Pinger
}

const healthTimeout = 2 * time.Second

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(httpmiddleware.RequestLogger(logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))

	throttle := func(next http.Handler) http.Handler { return next }
	if cfg.LeadLimiter != nil {
		throttle = httpmiddleware.RateLimit(cfg.LeadLimiter, "lead", logger)
	}

	r.Get("/health", healthHandler(cfg.Health, logger))
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}
	if cfg.BeesHandler != nil {
		r.Get("/sitemap.xml", cfg.BeesHandler.Sitemap)
	}

	r.Route("/api", func(api chi.Router) {
		if cfg.LeadsHandler != nil {
			api.With(throttle).Post("/lead", cfg.LeadsHandler.CreateLead)
		}
		if cfg.BeesHandler != nil {
			api.Get("/bees", cfg.BeesHandler.PublicList)
			api.Get("/bees/{slug}", cfg.BeesHandler.PublicGet)
		}
		if cfg.ABMHandler != nil {
			api.Get("/abm-pages/{identifier}", cfg.ABMHandler.PublicSales)
			api.Get("/abm-marinas/{identifier}", cfg.ABMHandler.PublicMarina)
		}
		if cfg.BoatFundHandler != nil {
			api.Get("/boat-fund", cfg.BoatFundHandler.Get)
		}
		if cfg.BookingsHandler != nil {
			api.With(throttle).Post("/booking", cfg.BookingsHandler.CreateBooking)
			api.With(throttle).Post("/manual-booking", cfg.BookingsHandler.CreateManualBooking)
			api.Post("/webhooks/cal", cfg.BookingsHandler.CalWebhook)
		}
		if cfg.RemindersHandler != nil {
			api.Get("/cron/send-reminders", cfg.RemindersHandler.Trigger)
			api.Post("/cron/send-reminders", cfg.RemindersHandler.Trigger)
		}
	})

	// Admin routes (HS256 JWT)
	r.Route("/admin", func(admin chi.Router) {
		admin.Use(httpmiddleware.AdminJWT(cfg.AdminAuthSecret, logger))

		if cfg.BeesHandler != nil {
			admin.Mount("/bees", cfg.BeesHandler.AdminRoutes())
		}
		if cfg.TestimonialsHandler != nil {
			admin.Mount("/testimonials", cfg.TestimonialsHandler.AdminRoutes())
		}
		if cfg.ABMHandler != nil {
			admin.Mount("/abm-pages", cfg.ABMHandler.SalesRoutes())
			admin.Mount("/abm-marinas", cfg.ABMHandler.MarinaRoutes())
		}
		if cfg.BoatFundHandler != nil {
			admin.Post("/boat-fund", cfg.BoatFundHandler.Create)
		}
		if cfg.LeadsHandler != nil {
			admin.Get("/leads", cfg.LeadsHandler.ListLeads)
		}
		if cfg.AdminDashboard != nil {
			admin.Get("/dashboard", cfg.AdminDashboard.GetDashboard)
		}
		if cfg.RemindersHandler != nil {
			admin.Post("/test-reminder", cfg.RemindersHandler.SendTest)
		}
	})

	return r
}

func healthHandler(p Pinger, logger *logging.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if p != nil {
			ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
			defer cancel()
			if err := p.PingContext(ctx); err != nil {
				logger.Warn("health check: database unreachable", "error", err)
				respond.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
				return
			}
		}
		respond.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
