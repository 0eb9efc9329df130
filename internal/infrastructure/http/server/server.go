// Package server provides the HTTP server for the JSON API.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/Shunsena-Jian/kasalo-kusina/internal/application/account"
	"github.com/Shunsena-Jian/kasalo-kusina/internal/infrastructure/config"
	"github.com/Shunsena-Jian/kasalo-kusina/internal/infrastructure/http/handlers"
	"github.com/Shunsena-Jian/kasalo-kusina/internal/infrastructure/http/middleware"
	"github.com/Shunsena-Jian/kasalo-kusina/internal/ports/inbound"
)

// Server represents the HTTP server.
type Server struct {
	config   *config.Config
	logger   *zap.Logger
	router   *chi.Mux
	server   *http.Server
	accounts *account.Service
	kitchen  inbound.KitchenService
	catalog  inbound.CatalogService
	registry *prometheus.Registry
}

// NewServer creates a new HTTP server instance.
func NewServer(
	cfg *config.Config,
	logger *zap.Logger,
	accounts *account.Service,
	kitchenService inbound.KitchenService,
	catalogService inbound.CatalogService,
	registry *prometheus.Registry,
) *Server {
	s := &Server{
		config:   cfg,
		logger:   logger,
		accounts: accounts,
		kitchen:  kitchenService,
		catalog:  catalogService,
		registry: registry,
	}

	s.router = s.setupRouter()

	s.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           s.router,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	return s
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// setupRouter configures the HTTP router with middleware and routes.
func (s *Server) setupRouter() *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger(s.logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.Security())
	if s.config.Server.EnableCORS {
		r.Use(middleware.CORS(s.config.Server.AllowedOrigins))
	}
	r.Use(chimiddleware.Timeout(60 * time.Second))
	r.Use(chimiddleware.Compress(5))

	r.Get("/health", s.handleHealth)
	if s.registry != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		s.setupAPIRoutes(r)
	})

	return r
}

// setupAPIRoutes configures the REST API routes.
func (s *Server) setupAPIRoutes(r chi.Router) {
	authHandler := handlers.NewAuthAPIHandler(s.accounts, s.logger)
	kitchenHandler := handlers.NewKitchenAPIHandler(s.kitchen, s.catalog, s.config.Server.MaxImageBytes, s.logger)
	catalogHandler := handlers.NewCatalogAPIHandler(s.catalog, s.logger)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)
		r.Post("/guest", authHandler.Guest)
	})

	// Public catalog reads
	r.Route("/recipes", func(r chi.Router) {
		r.Get("/featured", catalogHandler.ListFeatured)
		r.Get("/newest", catalogHandler.ListNewest)
		r.Get("/top-rated", catalogHandler.ListTopRated)
		r.Get("/search", catalogHandler.Search)
		r.Get("/{id}", catalogHandler.GetRecipe)

		// Authenticated catalog operations
		r.Group(func(r chi.Router) {
			r.Use(middleware.AuthenticateAPI(s.accounts))
			r.Post("/", catalogHandler.CreateRecipe)
			r.Get("/mine", catalogHandler.ListMine)
		})
	})

	r.Get("/categories", catalogHandler.ListCategories)
	r.Get("/tags", catalogHandler.ListTags)

	// The kitchen requires a session token, guest or registered.
	r.Route("/kitchen", func(r chi.Router) {
		r.Use(middleware.AuthenticateAPI(s.accounts))
		r.Post("/analyze", kitchenHandler.Analyze)
		r.Post("/chat", kitchenHandler.Chat)
		r.Get("/session", kitchenHandler.Session)
		r.Post("/reset", kitchenHandler.Reset)
		r.Post("/import", kitchenHandler.ImportRecipe)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, `{"status":"healthy","service":%q,"version":%q}`, s.config.App.Name, s.config.App.Version)
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	s.logger.Info("Starting HTTP server",
		zap.String("address", s.server.Addr),
		zap.String("environment", s.config.App.Environment),
	)
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}
