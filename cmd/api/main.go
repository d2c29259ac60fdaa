package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/macspp/lead-intake/internal/app/bootstrap"
	appconfig "github.com/macspp/lead-intake/internal/config"
	"github.com/macspp/lead-intake/pkg/logging"
)

const (
	shutdownTimeout  = 30 * time.Second
	baseWriteTimeout = 15 * time.Second
)

func main() {
	if err := appconfig.LoadDotEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "load .env: %v\n", err)
		os.Exit(1)
	}

	// Load configuration
	cfg := appconfig.Load()

	// Initialize logger
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting lead intake API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger, newRegistry(), nil); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
	fmt.Println("Server exited gracefully")
}

func newRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// newServer sizes WriteTimeout so a submit that waits out every channel
// still gets its response written.
func newServer(addr string, handler http.Handler, dispatchBudget time.Duration) *http.Server {
	return &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: baseWriteTimeout + dispatchBudget,
		IdleTimeout:  60 * time.Second,
	}
}

// run serves until ctx is cancelled, then drains in-flight requests.
// A nil ln listens on cfg.Port.
func run(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger, reg *prometheus.Registry, ln net.Listener) error {
	app, err := bootstrap.BuildApp(ctx, cfg, logger, reg)
	if err != nil {
		return fmt.Errorf("build app: %w", err)
	}
	defer app.Close()

	if ln == nil {
		ln, err = net.Listen("tcp", ":"+cfg.Port)
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
	}
	srv := newServer(ln.Addr().String(), app.Handler, app.DispatchBudget)

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	logger.Info("server stopped")
	return nil
}
