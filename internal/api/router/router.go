package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	httpmiddleware "github.com/macspp/lead-intake/internal/http/middleware"
	"github.com/macspp/lead-intake/internal/intake"
	"github.com/macspp/lead-intake/internal/leads"
	"github.com/macspp/lead-intake/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger          *logging.Logger
	IntakeHandler   *intake.Handler
	LeadsHandler    *leads.Handler
	AdminAuthSecret string
	MetricsHandler  http.Handler

	CORSAllowedOrigins []string
	// RateLimiter guards the public write endpoints; nil disables limiting.
	RateLimiter httpmiddleware.Limiter
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	r.Get("/health", health)
	if cfg.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", cfg.MetricsHandler)
	}

	// Public lead endpoints
	if cfg.IntakeHandler != nil {
		r.Route("/api", func(api chi.Router) {
			if cfg.RateLimiter != nil {
				api.Use(httpmiddleware.RateLimit(cfg.RateLimiter, cfg.Logger))
			}
			api.Post("/leads", cfg.IntakeHandler.SubmitLead)
			api.Post("/unsubscribe", cfg.IntakeHandler.Unsubscribe)
		})
	}

	// Operator endpoints
	if cfg.LeadsHandler != nil {
		r.Route("/admin", func(admin chi.Router) {
			admin.Use(httpmiddleware.AdminJWT(cfg.AdminAuthSecret))
			admin.Get("/leads", cfg.LeadsHandler.ListLeads)
			admin.Patch("/leads/{leadID}/status", cfg.LeadsHandler.UpdateStatus)
		})
	}

	return r
}

func health(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
