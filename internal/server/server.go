// Package server sets up the HTTP server, router, and all route definitions.
//
// This package is the composition root: New opens the database, builds every
// service on top of it and hands the services to the handlers. Nothing else
// in the codebase constructs a dependency.
//
//	config.Config → sqlite.DB → services → handlers → chi routes
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sakif/trip-planner/internal/auth"
	"github.com/sakif/trip-planner/internal/config"
	"github.com/sakif/trip-planner/internal/handler"
	"github.com/sakif/trip-planner/internal/middleware"
	sqliteRepo "github.com/sakif/trip-planner/internal/repository/sqlite"
	"github.com/sakif/trip-planner/internal/service"
	"github.com/sakif/trip-planner/internal/weather"
)

const shutdownTimeout = 30 * time.Second

// Server represents the HTTP server and all its dependencies.
//
// The Server owns the database connection and closes it after the HTTP
// server has drained, so in-flight requests never see a closed pool.
type Server struct {
	router *chi.Mux
	config *config.Config
	logger *slog.Logger
	db     *sqliteRepo.DB
}

// New wires the application. provider may be nil, in which case the
// OpenWeather client is built from cfg.Weather; tests pass a fake.
func New(cfg *config.Config, logger *slog.Logger, provider weather.Provider) (*Server, error) {
	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if provider == nil {
		if cfg.Weather.APIKey == "" {
			logger.Warn("weather API key not set, weather endpoints will serve placeholders")
		}
		provider = weather.NewOpenWeather(cfg.Weather.APIKey, cfg.Weather.BaseURL, cfg.Weather.Timeout)
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		db:     db,
	}

	if err := s.setupRoutes(provider); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	return s, nil
}

// Handler exposes the router, mainly for httptest.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Close releases the database. Start calls it on shutdown; tests that never
// call Start call it directly.
func (s *Server) Close() error {
	return s.db.Close()
}

// setupRoutes configures all middleware and route handlers.
//
// MIDDLEWARE ORDER MATTERS:
//  1. RequestID: assigns a unique ID to each request (picked up by Logger)
//  2. RealIP: extracts the client IP from proxy headers
//  3. Recoverer: turns panics into 500s instead of crashing
//  4. Logger: one structured line per request
//
// Everything under /api except register, login and logout sits behind
// auth.RequireAuth.
func (s *Server) setupRoutes(provider weather.Provider) error {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))

	// === AUTH ===
	tokens, err := auth.NewTokenService(s.config.JWTSecret, s.config.SessionTTL)
	if err != nil {
		return fmt.Errorf("creating token service: %w", err)
	}
	passwords := auth.NewPasswordService()

	var github *auth.GitHubProvider
	if s.config.GitHub.Enabled() {
		github = auth.NewGitHubProvider(
			s.config.GitHub.ClientID,
			s.config.GitHub.ClientSecret,
			s.config.GitHub.CallbackURL,
		)
	} else {
		s.logger.Info("GitHub OAuth not configured, /auth/github routes disabled")
	}

	// === SERVICES ===
	// s.db implements every repository interface.
	authService := service.NewAuthService(s.db, tokens, passwords, s.logger)
	tripService := service.NewTripService(s.db, s.db, s.logger)
	sharingService := service.NewSharingService(s.db, s.db, s.db, s.logger)
	scheduleService := service.NewScheduleService(s.db, s.db, s.db, s.logger)
	packingService := service.NewPackingService(s.db, s.db, s.db, s.logger)
	tagService := service.NewTagService(s.db, s.db, s.db, s.logger)
	weatherService := service.NewWeatherService(s.db, s.db, provider, service.WeatherOptions{
		TTL:             s.config.Weather.CacheTTL,
		DefaultLocation: s.config.Weather.DefaultLocation,
	}, s.logger)

	// === HANDLERS ===
	authHandler := handler.NewAuthHandler(authService, tokens, github, s.config.SecureCookies, s.logger)
	tripHandler := handler.NewTripHandler(tripService, sharingService, s.logger)
	scheduleHandler := handler.NewScheduleHandler(scheduleService, s.logger)
	packingHandler := handler.NewPackingHandler(packingService, s.logger)
	tagHandler := handler.NewTagHandler(tagService, s.logger)
	weatherHandler := handler.NewWeatherHandler(weatherService, s.logger)
	healthHandler := handler.NewHealthHandler(s.db, s.logger)

	s.router.Get("/healthz", healthHandler.HandleHealth)

	if github != nil {
		s.router.Get("/auth/github/login", authHandler.HandleGitHubLogin)
		s.router.Get("/auth/github/callback", authHandler.HandleGitHubCallback)
	}

	s.router.Route("/api", func(r chi.Router) {
		r.Post("/register", authHandler.HandleRegister)
		r.Post("/login", authHandler.HandleLogin)
		r.Post("/logout", authHandler.HandleLogout)

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAuth(tokens))

			r.Get("/user", authHandler.HandleMe)
			r.Patch("/user", authHandler.HandleUpdateMe)

			r.Get("/trips", tripHandler.HandleList)
			r.Post("/trips", tripHandler.HandleCreate)
			r.Get("/shared-trips", tripHandler.HandleListShared)

			r.Route("/trips/{id}", func(r chi.Router) {
				r.Get("/", tripHandler.HandleGet)
				r.Patch("/", tripHandler.HandleUpdate)
				r.Delete("/", tripHandler.HandleDelete)

				r.Post("/share", tripHandler.HandleShare)
				r.Get("/members", tripHandler.HandleListMembers)
				r.Delete("/members/{userId}", tripHandler.HandleRemoveMember)

				r.Get("/schedules", scheduleHandler.HandleListByTrip)
				r.Post("/schedules", scheduleHandler.HandleCreate)
				r.Get("/packing-items", packingHandler.HandleListByTrip)
				r.Post("/packing-items", packingHandler.HandleCreate)
				r.Get("/tags", tagHandler.HandleListByTrip)
				r.Post("/tags", tagHandler.HandleCreate)
			})

			r.Get("/schedules", scheduleHandler.HandleListForUser)
			r.Patch("/schedules/{id}", scheduleHandler.HandleUpdate)
			r.Delete("/schedules/{id}", scheduleHandler.HandleDelete)

			r.Get("/packing-items", packingHandler.HandleListForUser)
			r.Patch("/packing-items/{id}", packingHandler.HandleUpdate)
			r.Delete("/packing-items/{id}", packingHandler.HandleDelete)

			r.Get("/packing-categories", packingHandler.HandleListCategories)
			r.Post("/packing-categories", packingHandler.HandleCreateCategory)
			r.Delete("/packing-categories/{id}", packingHandler.HandleDeleteCategory)

			r.Get("/trip-tags", tagHandler.HandleListForUser)
			r.Delete("/trip-tags/{id}", tagHandler.HandleDelete)

			r.Get("/weather/next-trip", weatherHandler.HandleNextTrip)
			r.Get("/weather/forecast/{location}", weatherHandler.HandleForecast)
			r.Get("/weather/{location}", weatherHandler.HandleCurrent)
		})
	})

	return nil
}

// Start runs the HTTP server until SIGINT or SIGTERM.
//
// GRACEFUL SHUTDOWN:
//  1. Stop accepting new connections
//  2. Wait up to 30s for in-flight requests
//  3. Close the database (flushes WAL, releases the file lock)
func (s *Server) Start() error {
	defer s.db.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("url", fmt.Sprintf("http://localhost:%d", s.config.Port)),
			slog.String("database", s.config.DBPath),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
