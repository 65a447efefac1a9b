package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	_ "agence/docs"
	"agence/internal/app"
	"agence/internal/config"
	"agence/internal/lib/logger/handlers/slogpretty"
	"agence/internal/lib/logger/sl"

	"golang.org/x/sync/errgroup"
)

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

const shutdownTimeout = 10 * time.Second

// @title           Agence API
// @version         1.0
// @description     Подбор объявлений под запросы клиентов агентства недвижимости.
// @BasePath        /
// @securityDefinitions.apikey AdminCookie
// @in cookie
// @name admin_token
func main() {
	cfg := config.MustLoad()

	log := setupLogger(cfg.Env)
	log.Info("starting agence", slog.String("env", cfg.Env), slog.String("storage", cfg.StorageBackend))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	storage, err := app.NewStorage(ctx, log, cfg)
	if err != nil {
		log.Error("failed to init storage", sl.Err(err))
		os.Exit(1)
	}
	defer storage.Close()

	application := app.New(log, cfg, storage)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(application.HTTPServer.Start)
	g.Go(application.GRPCServer.Run)
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		application.GRPCServer.Stop()
		return application.HTTPServer.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("server stopped with error", sl.Err(err))
		os.Exit(1)
	}

	log.Info("application stopped")
}

func setupLogger(env string) *slog.Logger {
	var log *slog.Logger

	switch env {
	case envLocal:
		log = setupPrettySlog()
	case envDev:
		log = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	case envProd:
		log = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	default:
		log = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}

	return log
}

func setupPrettySlog() *slog.Logger {
	opts := slogpretty.PrettyHandlerOptions{
		SlogOpts: &slog.HandlerOptions{Level: slog.LevelDebug},
	}
	return slog.New(opts.NewPrettyHandler(os.Stdout))
}
