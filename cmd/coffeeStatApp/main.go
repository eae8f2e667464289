package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	nethttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"coffeeStatApp/config"
	"coffeeStatApp/internal/app"
	"coffeeStatApp/internal/handlers/http"
	"coffeeStatApp/internal/lib/logger/handlers/slogpretty"
	"coffeeStatApp/internal/lib/logger/sl"
)

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

func main() {
	cfg := config.LoadConfig()
	log := setupLogger(cfg.Env)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Setup signal handling for graceful shutdown
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigs
		log.Info("shutting down...")
		cancel()
	}()

	log.Info("initializing app...", slog.String("env", cfg.Env))

	application, err := app.NewApp(ctx, log, cfg)
	if err != nil {
		log.Error("failed to initialize app", sl.Err(err))
		os.Exit(1)
	}

	log.Info("starting event processor...")
	go func() {
		if err := application.EventProcessor.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error("event processor stopped", sl.Err(err))
		}
	}()

	// Warm the default dataset so the first dashboard request is served from memory
	if _, report, err := application.Datasets.Current(ctx, cfg.DefaultRecords); err != nil {
		log.Error("failed to generate initial dataset", sl.Err(err))
	} else {
		log.Info("initial dataset ready",
			slog.String("run_id", report.RunID),
			slog.Int("records", report.KPI.TotalOrders),
		)
	}

	httpAddr := fmt.Sprintf(":%s", cfg.HTTPPort)
	httpServer := newHTTPServer(httpAddr, application)

	go func() {
		log.Info("HTTP server listening", slog.String("addr", httpAddr))
		if err := httpServer.Start(); err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
			log.Error("HTTP server error", sl.Err(err))
			cancel()
		}
	}()

	<-ctx.Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	log.Info("shutting down HTTP server...")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error", sl.Err(err))
	}

	log.Info("cleaning up app resources...")
	application.Cleanup(shutdownCtx)

	log.Info("service stopped")
}

func newHTTPServer(addr string, a *app.AppContext) *http.Server {
	return http.NewServer(addr, http.Options{
		Datasets:       a.Datasets,
		Archive:        a.Archive,
		Broadcaster:    a.Broadcaster,
		Requests:       a.ReqCh,
		Metrics:        a.Metrics.Handler(),
		Log:            a.Log,
		DefaultRecords: a.Config.DefaultRecords,
		MaxRecords:     a.Config.MaxRecords,
	})
}

func setupLogger(env string) *slog.Logger {
	var log *slog.Logger

	switch env {
	case envLocal:
		log = setupPrettySlog()
	case envDev:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	case envProd:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
		)
	default:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
		)
	}

	return log
}

func setupPrettySlog() *slog.Logger {
	opts := slogpretty.PrettyHandlerOptions{
		SlogOpts: &slog.HandlerOptions{
			Level: slog.LevelDebug,
		},
	}

	handler := opts.NewPrettyHandler(os.Stdout)

	return slog.New(handler)
}
