package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"agence/internal/api/handlers"
	"agence/internal/api/middleware"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	httpSwagger "github.com/swaggo/http-swagger"
)

type Config struct {
	Port         int
	Timeout      time.Duration
	ClientOrigin string
	// SecureCookie — флаг Secure у admin_token (вне локальной разработки).
	SecureCookie bool
	// DefaultTop — сколько объявлений отдаёт /matches без ?top.
	DefaultTop int
}

type AuthService interface {
	handlers.Authenticator
	middleware.TokenParser
}

type MatchingService interface {
	handlers.MatchService
	handlers.NormalizedLister
}

// Deps — сервисы, которые обслуживает HTTP API.
type Deps struct {
	Auth     AuthService
	Leads    handlers.LeadService
	Listings handlers.ListingService
	Demands  handlers.DemandService
	Matching MatchingService
	Stats    handlers.StatsProvider
	// Gatherer для /metrics; nil — эндпоинт не регистрируется.
	Gatherer prometheus.Gatherer
}

type Server struct {
	config     Config
	router     chi.Router
	httpServer *http.Server
	log        *slog.Logger
}

func NewServer(cfg Config, deps Deps, log *slog.Logger) *Server {
	s := &Server{
		config: cfg,
		router: chi.NewRouter(),
		log:    log,
	}

	s.setupMiddleware()
	s.setupRoutes(deps)

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.router,
		ReadTimeout:  cfg.Timeout,
		WriteTimeout: cfg.Timeout,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(chimw.RequestID)
	s.router.Use(middleware.Logger(s.log))
	s.router.Use(chimw.Recoverer)
	s.router.Use(cors.New(cors.Options{
		AllowedOrigins:   []string{s.config.ClientOrigin},
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}).Handler)
}

func (s *Server) setupRoutes(deps Deps) {
	base := handlers.NewBase(s.log)

	s.router.Get("/health", handlers.NewHealthHandler(base).ServeHTTP)
	if deps.Gatherer != nil {
		s.router.Handle("/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	}
	s.router.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	authHandler := handlers.NewAuthHandler(base, deps.Auth, s.config.SecureCookie)
	leadsHandler := handlers.NewLeadsHandler(base, deps.Leads)
	listingsHandler := handlers.NewListingsHandler(base, deps.Listings)
	demandsHandler := handlers.NewDemandsHandler(base, deps.Demands)
	matchesHandler := handlers.NewMatchesHandler(base, deps.Matching, deps.Stats, s.config.DefaultTop)
	debugHandler := handlers.NewDebugHandler(base, deps.Matching)
	requireAdmin := middleware.RequireAdmin(deps.Auth, s.log)

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/offres", listingsHandler.PublicList)
		r.Get("/offres/{id}", listingsHandler.PublicGet)
		r.Post("/demandes", demandsHandler.Submit)

		r.Post("/admin/login", authHandler.Login)
		r.Post("/admin/logout", authHandler.Logout)

		r.Group(func(r chi.Router) {
			r.Use(requireAdmin)

			r.Get("/admin/me", authHandler.Me)

			r.Get("/admin/contacts", leadsHandler.List)
			r.Post("/admin/contacts", leadsHandler.Create)
			r.Get("/admin/contacts/{id}", leadsHandler.Get)
			r.Delete("/admin/contacts/{id}", leadsHandler.Delete)
			r.Put("/admin/contacts/{id}/status", leadsHandler.UpdateStatus)
			r.Post("/admin/contacts/{id}/schedule", leadsHandler.Schedule)
			r.Get("/admin/contacts/{id}/matches", matchesHandler.Matches)
			r.Get("/admin/contacts/{id}/matches-debug", matchesHandler.Debug)
			r.Get("/admin/match-stats", matchesHandler.Stats)

			r.Get("/admin/offres", listingsHandler.AdminList)
			r.Post("/admin/offres", listingsHandler.Create)
			r.Get("/admin/offres/{id}", listingsHandler.AdminGet)
			r.Put("/admin/offres/{id}", listingsHandler.Update)
			r.Delete("/admin/offres/{id}", listingsHandler.Delete)
			r.Put("/admin/offres/{id}/publish", listingsHandler.Publish)

			r.Get("/admin/demandes", demandsHandler.List)
			r.Delete("/admin/demandes/{id}", demandsHandler.Delete)

			r.Get("/debug/annonces-normalized", debugHandler.NormalizedListings)
			r.Get("/debug/normalize-type", debugHandler.NormalizeType)
			r.Get("/debug/parse-price", debugHandler.ParsePrice)
		})
	})
}

// Start блокируется до остановки сервера.
func (s *Server) Start() error {
	s.log.Info("starting HTTP server", slog.String("addr", s.httpServer.Addr))

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server: %w", err)
	}

	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("stopping HTTP server")
	return s.httpServer.Shutdown(ctx)
}

// Router — для тестов.
func (s *Server) Router() chi.Router {
	return s.router
}
