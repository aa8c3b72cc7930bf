// Package main implements the natsconf reload daemon. It parses the broker's
// configuration file, hands it to the change controller, and re-applies it
// whenever the file changes, exposing the apply pipeline over prometheus.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/c360/natsconf/confparse"
	"github.com/c360/natsconf/controller"
	"github.com/c360/natsconf/health"
	"github.com/c360/natsconf/metric"
	"github.com/c360/natsconf/natsbroker"
	"github.com/c360/natsconf/validate"
	"github.com/c360/natsconf/version"
)

// Build information constants
const (
	Version = "0.1.0"
	appName = "natsconf"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	if err := run(); err != nil {
		slog.Error("Daemon failed", "error", err, "exit_code", 1)
		os.Exit(1)
	}
}

func run() error {
	cliCfg := parseFlags()
	if cliCfg.ShowVersion {
		fmt.Printf("%s %s\n", appName, Version)
		return nil
	}

	logger := setupLogger(cliCfg.LogLevel, cliCfg.LogFormat)
	slog.SetDefault(logger)

	settings, err := loadSettings(cliCfg.SettingsPath)
	if err != nil {
		return err
	}

	initial, err := confparse.ParseFile(cliCfg.ConfigPath)
	if err != nil {
		return err
	}

	validator := validate.NewValidator(nil, logger)
	result := validator.Validate(initial)
	for _, w := range result.Warnings() {
		logger.Warn("configuration warning", "path", w.Path, "message", w.Message)
	}
	if !result.IsValid() {
		return fmt.Errorf("configuration invalid: %s", result.Summary())
	}
	if cliCfg.Validate {
		logger.Info("Configuration is valid", "path", cliCfg.ConfigPath)
		return nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	monitor := health.NewMonitor()

	conn, err := nats.Connect(settings.NATS.URL,
		nats.Name(settings.NATS.Name),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			monitor.SetUnhealthy("nats", fmt.Sprintf("disconnected: %v", err))
		}),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			monitor.SetHealthy("nats", "reconnected")
		}),
	)
	if err != nil {
		return fmt.Errorf("connect to NATS at %s: %w", settings.NATS.URL, err)
	}
	defer conn.Close()
	monitor.SetHealthy("nats", "connected")

	broker, err := natsbroker.New(conn,
		natsbroker.WithSubjectPrefix(settings.NATS.SubjectPrefix),
		natsbroker.WithRequestTimeout(settings.NATS.RequestTimeout.Std()),
		natsbroker.WithLogger(logger),
	)
	if err != nil {
		return err
	}

	registry := metric.NewRegistry()

	ctrl, err := controller.New(initial, broker,
		controller.WithLogger(logger),
		controller.WithValidator(validator),
		controller.WithMetrics(registry.Metrics),
		controller.WithAppliedBy(settings.AppliedBy),
	)
	if err != nil {
		return err
	}
	monitor.SetHealthy("apply", "initial version committed")
	ctrl.OnChangeApplied(func(change controller.AppliedChange) {
		monitor.SetHealthy("apply", fmt.Sprintf("version %d applied", change.NewVersion.Number))
	})

	if settings.History.Mirror {
		if err := setupHistoryMirror(ctx, conn, settings, ctrl, logger); err != nil {
			// The daemon still works without durable history.
			logger.Warn("version history mirror disabled", "error", err)
		}
	}

	limiter := rate.NewLimiter(rate.Every(settings.Reload.MinInterval.Std()), 1)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		monitor.SetHealthy("watcher", "watching configuration file")
		defer monitor.SetUnhealthy("watcher", "stopped")
		return watchConfigFile(gctx, cliCfg.ConfigPath, ctrl, limiter, logger)
	})
	if settings.Metrics.Port > 0 {
		g.Go(func() error {
			return serveHTTP(gctx, settings.Metrics.Port, registry, monitor, logger)
		})
	}

	logger.Info("natsconf started",
		"config", cliCfg.ConfigPath,
		"nats_url", settings.NATS.URL,
		"metrics_port", settings.Metrics.Port)

	return g.Wait()
}

// setupHistoryMirror saves every committed version into the JetStream KV
// bucket so history survives restarts.
func setupHistoryMirror(ctx context.Context, conn *nats.Conn, settings *Settings, ctrl *controller.Controller, logger *slog.Logger) error {
	js, err := jetstream.New(conn)
	if err != nil {
		return err
	}
	kvStore, err := version.NewKVStore(ctx, js, settings.History.Bucket, logger)
	if err != nil {
		return err
	}

	if err := kvStore.Save(ctx, ctrl.CurrentVersion()); err != nil {
		logger.Warn("failed to mirror initial version", "error", err)
	}

	ctrl.OnChangeApplied(func(change controller.AppliedChange) {
		saveCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := kvStore.Save(saveCtx, change.NewVersion); err != nil {
			logger.Warn("failed to mirror version",
				"version", change.NewVersion.Number,
				"error", err)
		}
	})
	return nil
}

func serveHTTP(ctx context.Context, port int, registry *metric.Registry, monitor *health.Monitor, logger *slog.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", registry.Handler())
	mux.Handle("/healthz", monitor.Handler(appName))

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("metrics endpoint listening", "port", port)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
