// Package server is the composition root: it wires the database, services,
// handlers and middleware together and owns the HTTP lifecycle.
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
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tahmid/trackroom/internal/auth"
	"github.com/tahmid/trackroom/internal/config"
	"github.com/tahmid/trackroom/internal/handler"
	"github.com/tahmid/trackroom/internal/metrics"
	"github.com/tahmid/trackroom/internal/middleware"
	"github.com/tahmid/trackroom/internal/payment"
	sqliteRepo "github.com/tahmid/trackroom/internal/repository/sqlite"
	"github.com/tahmid/trackroom/internal/service"
)

// Server owns the router, the database connection and the listener
// lifecycle. Everything downstream is wired in setupRoutes.
type Server struct {
	router *chi.Mux
	config *config.Config
	logger *slog.Logger
	db     *sqliteRepo.DB
}

// New assembles the dependency chain: database → services → handlers →
// routes. Each layer only sees the interface below it; handlers never touch
// the database and services never touch HTTP.
func New(cfg *config.Config, logger *slog.Logger) (*Server, error) {
	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		db:     db,
	}

	if err := s.setupRoutes(); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	return s, nil
}

func (s *Server) setupRoutes() error {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(metrics.Middleware)

	tokens, err := auth.NewTokenService(s.config.JWTSecret)
	if err != nil {
		return fmt.Errorf("creating token service: %w", err)
	}
	passwords := auth.NewPasswordService()
	github := auth.NewGitHubProvider(
		s.config.GitHubClientID,
		s.config.GitHubClientSecret,
		s.config.GitHubCallbackURL,
	)

	authService := service.NewAuthService(s.db, tokens, passwords, s.logger)
	userService := service.NewUserService(s.db, s.logger)
	projectService := service.NewProjectService(s.db, s.logger)
	trackService := service.NewTrackService(s.db, s.logger)
	commentService := service.NewCommentService(s.db, s.logger)
	libraryService := service.NewLibraryService(s.db, s.logger)
	tipService := service.NewTipService(s.db, s.db, payment.StubProvider{}, s.logger)

	authHandler := handler.NewAuthHandler(github, authService, userService, s.logger)
	userHandler := handler.NewUserHandler(userService, s.logger)
	projectHandler := handler.NewProjectHandler(projectService, trackService, s.logger)
	commentHandler := handler.NewCommentHandler(commentService, s.logger)
	libraryHandler := handler.NewLibraryHandler(libraryService, s.logger)
	tipHandler := handler.NewTipHandler(tipService, s.logger)

	requireAuth := auth.RequireAuth(tokens)
	optionalAuth := auth.OptionalAuth(tokens)

	s.router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	s.router.Handle("/metrics", promhttp.Handler())

	s.router.Route("/auth", func(r chi.Router) {
		r.Get("/github/login", authHandler.HandleGitHubLogin)
		r.Get("/github/callback", authHandler.HandleGitHubCallback)
		r.Post("/register", authHandler.HandleRegister)
		r.Post("/login", authHandler.HandleLogin)
		r.Post("/logout", authHandler.HandleLogout)
		r.With(requireAuth).Get("/me", authHandler.HandleMe)
	})

	// Share links are public but honor the sharing gate; a logged-in
	// creator still resolves their own unshared project.
	s.router.With(optionalAuth).Get("/shared/{token}", projectHandler.HandleGetShared)

	s.router.Route("/api/v1", func(r chi.Router) {
		// Public reads: identity is optional but changes what the caller
		// sees (owner bypass, capability flags).
		r.Group(func(r chi.Router) {
			r.Use(optionalAuth)
			r.Get("/projects/{id}", projectHandler.HandleGet)
			r.Get("/projects/{id}/tracks", projectHandler.HandleListTracks)
			r.Get("/comments", commentHandler.HandleList)
			r.Get("/users/{id}", userHandler.HandleGet)
			r.Post("/projects/{id}/metrics", projectHandler.HandleIncrementMetric)
			r.Post("/tips/checkout", tipHandler.HandleCreateCheckout)
			r.Post("/tips", tipHandler.HandleRecord)
		})

		// Everything below needs a logged-in caller.
		r.Group(func(r chi.Router) {
			r.Use(requireAuth)
			r.Get("/projects", projectHandler.HandleListMine)
			r.Post("/projects", projectHandler.HandleCreate)
			r.Patch("/projects/{id}", projectHandler.HandleUpdate)
			r.Post("/projects/{id}/tracks", projectHandler.HandleCreateTrack)

			r.Post("/comments", commentHandler.HandleCreate)
			r.Patch("/comments/{id}", commentHandler.HandleUpdate)
			r.Delete("/comments/{id}", commentHandler.HandleDelete)

			r.Get("/library", libraryHandler.HandleList)
			r.Post("/library", libraryHandler.HandleAdd)
			r.Patch("/library/{projectID}", libraryHandler.HandleSetPinned)
			r.Delete("/library/{projectID}", libraryHandler.HandleRemove)

			r.Get("/tips/received", tipHandler.HandleListReceived)
			r.Patch("/users/me", userHandler.HandleUpdateProfile)
		})
	})

	return nil
}

// Start runs the listener and blocks until a shutdown signal or a listener
// error. In-flight requests get 30 seconds to finish; the database closes
// last so the WAL is flushed.
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

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
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

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
