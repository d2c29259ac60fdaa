package bootstrap

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/macspp/lead-intake/internal/api/router"
	appconfig "github.com/macspp/lead-intake/internal/config"
	"github.com/macspp/lead-intake/internal/intake"
	"github.com/macspp/lead-intake/internal/leads"
	"github.com/macspp/lead-intake/internal/observability/metrics"
	"github.com/macspp/lead-intake/pkg/logging"
)

// App is the assembled HTTP application shared by the server and lambda
// entrypoints.
type App struct {
	Handler http.Handler
	// DispatchBudget is the longest a submit request can spend notifying
	// channels before it responds.
	DispatchBudget time.Duration
	close          []func()
}

// Close releases pools and clients in reverse order of acquisition.
func (a *App) Close() {
	for i := len(a.close) - 1; i >= 0; i-- {
		a.close[i]()
	}
}

// BuildApp wires storage, notification channels and HTTP routes from cfg.
// A nil reg uses the Prometheus default registry.
func BuildApp(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger, reg *prometheus.Registry) (*App, error) {
	if logger == nil {
		logger = logging.Default()
	}
	app := &App{}

	repo, closeRepo, err := BuildRepository(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	app.close = append(app.close, closeRepo)

	var (
		registerer prometheus.Registerer = prometheus.DefaultRegisterer
		gatherer   prometheus.Gatherer   = prometheus.DefaultGatherer
	)
	if reg != nil {
		registerer, gatherer = reg, reg
	}
	leadMetrics := metrics.NewLeadMetrics(registerer)

	redisClient := BuildRedisClient(ctx, cfg, logger, true)
	if redisClient != nil {
		app.close = append(app.close, func() { _ = redisClient.Close() })
	}
	limiter := BuildRateLimiter(redisClient, cfg)
	if closer, ok := limiter.(interface{ Close() }); ok {
		app.close = append(app.close, closer.Close)
	}

	validator := leads.NewValidator(cfg.ExtraServedCities...)
	sender := BuildEmailSender(ctx, cfg, logger)
	fanout := BuildFanout(cfg, BuildChannels(cfg, sender), logger, leadMetrics)

	service := intake.NewService(validator, repo, fanout, logger, leadMetrics).WithRedirect(cfg.ThankYouRedirect)
	deletion := intake.NewDeletionService(validator, repo, logger)

	app.DispatchBudget = fanout.MaxDuration()
	app.Handler = router.New(&router.Config{
		Logger:             logger,
		IntakeHandler:      intake.NewHandler(service, deletion, logger),
		LeadsHandler:       leads.NewHandler(repo, logger),
		AdminAuthSecret:    cfg.AdminJWTSecret,
		MetricsHandler:     promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}),
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		RateLimiter:        limiter,
	})

	logger.Info("lead intake wired",
		"channels", fanout.Channels(),
		"email_provider", cfg.EmailProvider,
		"redis", redisClient != nil,
	)
	return app, nil
}
