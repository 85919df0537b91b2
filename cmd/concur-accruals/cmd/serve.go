package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/donaldgifford/concur-accruals/internal/engine"
	"github.com/donaldgifford/concur-accruals/internal/notify"
	"github.com/donaldgifford/concur-accruals/internal/telemetry"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the API server and token refresh scheduler",
		RunE:  runServe,
	}
}

func runServe(_ *cobra.Command, _ []string) error {
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTelemetry, err := telemetry.Setup(ctx, telemetry.Config{
		Enabled:        cfg.Tracing.Enabled,
		Endpoint:       cfg.Tracing.Endpoint,
		Insecure:       cfg.Tracing.Insecure,
		SampleRatio:    cfg.Tracing.SampleRatio,
		MetricInterval: cfg.Tracing.MetricInterval,
		ServiceVersion: Version,
	}, log)
	if err != nil {
		return fmt.Errorf("setting up telemetry: %w", err)
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := shutdownTelemetry(flushCtx); err != nil {
			log.Warn("telemetry shutdown failed", "error", err)
		}
	}()

	a, err := newApp(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer a.Close()

	if a.store != nil {
		if err := a.store.Migrate(ctx); err != nil {
			return fmt.Errorf("running migrations: %w", err)
		}
	}

	sched, err := startScheduler(ctx, a)
	if err != nil {
		return err
	}

	e, _ := newServer(a)

	addr := cfg.Server.Addr()
	log.Info("starting server", "addr", addr, "version", Version)

	errCh := make(chan error, 1)
	go func() {
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		log.Error("server error", "error", err)
	}

	log.Info("shutting down server")

	if sched != nil {
		<-sched.Stop().Done()
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down server: %w", err)
	}

	log.Info("server stopped")
	return nil
}

// startScheduler wires the refresh engine to the configured notifier and
// starts the cron loop. It returns nil when proactive refresh is disabled.
func startScheduler(ctx context.Context, a *app) (*engine.Scheduler, error) {
	sc := a.cfg.Schedule
	if !sc.TokenRefreshEnabled {
		a.log.Info("proactive token refresh disabled")
		return nil, nil
	}

	var n notify.Notifier = notify.NewNoOpNotifier(a.log)
	if d := a.cfg.Notifications.Discord; d.Enabled {
		var opts []notify.DiscordOption
		if d.Username != "" {
			opts = append(opts, notify.WithUsername(d.Username))
		}
		n = notify.NewDiscordNotifier(d.WebhookURL, opts...)
	}

	eng := engine.NewEngine(a.tokens, n,
		engine.WithLogger(a.log),
		engine.WithTokenURL(a.tokenURL),
		engine.WithFailureThreshold(sc.FailureThreshold),
	)

	var jobs engine.JobStore
	if a.store != nil {
		jobs = a.store
	}
	sched, err := engine.NewScheduler(eng, jobs, sc.TokenRefreshInterval, a.log)
	if err != nil {
		return nil, fmt.Errorf("creating scheduler: %w", err)
	}

	sched.RecoverStaleJobRuns(ctx)
	sched.Start()
	a.log.Info("token refresh scheduled", "every", sc.TokenRefreshInterval)

	if sc.RefreshOnStart {
		go func() {
			if err := sched.RunTokenRefreshNow(ctx); err != nil {
				a.log.Warn("startup token refresh failed", "error", err)
			}
		}()
	}

	return sched, nil
}
