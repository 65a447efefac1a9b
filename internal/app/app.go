package app

import (
	"log/slog"

	"agence/internal/api"
	grpcapp "agence/internal/app/grpc"
	"agence/internal/config"
	"agence/internal/lib/metrics"
	"agence/internal/services/auth"
	"agence/internal/services/demand"
	"agence/internal/services/lead"
	"agence/internal/services/listing"
	"agence/internal/services/matching"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

type App struct {
	HTTPServer   *api.Server
	GRPCServer   *grpcapp.App
	MatchMetrics *metrics.MatchMetrics
	Registry     *prometheus.Registry
}

func New(log *slog.Logger, cfg *config.Config, storage Storage) *App {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	matchMetrics := metrics.NewMatchMetrics(log, registry)

	engine := matching.NewEngine(matching.Policy{
		Tolerance:   cfg.Match.BudgetTolerance,
		DefaultTopN: cfg.Match.DefaultTop,
	})

	leadService := lead.New(log, storage.Leads)
	listingService := listing.New(log, storage.Listings)
	demandService := demand.New(log, storage.Demands)
	matchService := matching.New(log, engine, listingService, leadService, matchMetrics, cfg.Match.FetchTimeout)
	authService := auth.New(log,
		auth.Admin{Email: cfg.Admin.Email, PasswordHash: cfg.Admin.PasswordHash},
		cfg.Admin.JWTSecret,
		cfg.Admin.TokenTTL,
		cfg.Admin.LoginRate,
	)

	policy := engine.Policy()
	log.Info("matching engine configured",
		slog.Float64("budget_tolerance", policy.Tolerance),
		slog.Int("default_top", policy.DefaultTopN),
		slog.Int("http_default_top", cfg.Match.HTTPDefaultTop),
		slog.Duration("fetch_timeout", cfg.Match.FetchTimeout),
	)

	httpServer := api.NewServer(api.Config{
		Port:         cfg.HTTP.Port,
		Timeout:      cfg.HTTP.Timeout,
		ClientOrigin: cfg.HTTP.ClientOrigin,
		SecureCookie: cfg.Env != "local",
		DefaultTop:   cfg.Match.HTTPDefaultTop,
	}, api.Deps{
		Auth:     authService,
		Leads:    leadService,
		Listings: listingService,
		Demands:  demandService,
		Matching: matchService,
		Stats:    matchMetrics,
		Gatherer: registry,
	}, log)

	grpcApp := grpcapp.New(log, cfg.GRPC.Port, cfg.GRPC.Timeout)

	return &App{
		HTTPServer:   httpServer,
		GRPCServer:   grpcApp,
		MatchMetrics: matchMetrics,
		Registry:     registry,
	}
}
