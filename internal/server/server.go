// Package server sets up the HTTP server, router, and route definitions.
//
// This is the composition root: every dependency is wired here, in one
// place — main.go just builds a Config and calls New + Start.
//
// DEPENDENCY CHAIN:
//
//	sqlite.DB → ApplicationService / AuthService → handlers → routes
//
// Each layer only receives what it needs: services get repository
// interfaces, handlers get services, nothing reaches around a layer.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sakif/jobtrack/internal/auth"
	"github.com/sakif/jobtrack/internal/handler"
	"github.com/sakif/jobtrack/internal/middleware"
	sqliteRepo "github.com/sakif/jobtrack/internal/repository/sqlite"
	"github.com/sakif/jobtrack/internal/service"
)

// Config holds server configuration.
//
// SessionSecret "" disables authentication entirely: the auth routes
// are not registered and job routes operate unscoped. With a secret
// set, every job route requires a valid session and all records are
// owner-scoped. One binary, both deployment modes.
type Config struct {
	Port          int
	TemplateDir   string
	StaticDir     string
	DBPath        string
	SessionSecret string
}

// Server owns the router and the database connection; the connection
// is closed during graceful shutdown so the WAL is flushed.
type Server struct {
	router *chi.Mux
	config Config
	logger *slog.Logger
	db     *sqliteRepo.DB
}

// New opens the database, wires the dependency graph, and registers
// all routes.
func New(cfg Config, logger *slog.Logger) (*Server, error) {
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

// setupRoutes configures middleware and handlers.
//
// ROUTE STRUCTURE:
//
//	GET  /                     → 302 to /jobs
//	GET  /healthz              → liveness probe
//	GET  /static/*             → css
//	GET  /jobs                 → list view (?status= filter)
//	POST /jobs/add             → create record
//	POST /jobs/update/{id}     → partial update
//	POST /jobs/delete/{id}     → delete record
//	GET/POST /register /login, GET /logout   (auth mode only)
//
// Middleware order matters: RequestID and RealIP enrich the request,
// Recoverer turns panics into 500s, then our slog logger times the rest.
func (s *Server) setupRoutes() error {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))

	fileServer := http.FileServer(http.Dir(s.config.StaticDir))
	s.router.Handle("/static/*", http.StripPrefix("/static/", fileServer))

	s.router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	s.router.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/jobs", http.StatusFound)
	})

	tmpls, err := handler.NewTemplates(s.config.TemplateDir)
	if err != nil {
		return fmt.Errorf("parsing templates: %w", err)
	}

	appService := service.NewApplicationService(s.db, s.logger)

	if s.config.SessionSecret == "" {
		// Anonymous mode: no accounts, no owner scoping.
		s.logger.Warn("SESSION_SECRET not set — running without authentication")

		jobs := handler.NewJobsHandler(appService, nil, tmpls.Jobs, s.logger)
		s.router.Route("/jobs", func(r chi.Router) {
			r.Get("/", jobs.HandleList)
			r.Post("/add", jobs.HandleCreate)
			r.Post("/update/{id}", jobs.HandleUpdate)
			r.Post("/delete/{id}", jobs.HandleDelete)
		})
		return nil
	}

	// Authenticated mode.
	tokens, err := auth.NewTokenService(s.config.SessionSecret)
	if err != nil {
		return fmt.Errorf("creating token service: %w", err)
	}

	authService := service.NewAuthService(sqliteRepo.NewUserDB(s.db), auth.NewPasswordService(), s.logger)
	authHandler := handler.NewAuthHandler(authService, tokens, tmpls, s.logger)

	s.router.Get("/register", authHandler.HandleRegisterForm)
	s.router.Post("/register", authHandler.HandleRegister)
	s.router.Get("/login", authHandler.HandleLoginForm)
	s.router.Post("/login", authHandler.HandleLogin)
	s.router.Get("/logout", authHandler.HandleLogout)

	jobs := handler.NewJobsHandler(appService, authService, tmpls.Jobs, s.logger)
	s.router.Route("/jobs", func(r chi.Router) {
		r.Use(auth.RequireAuth(tokens))
		r.Get("/", jobs.HandleList)
		r.Post("/add", jobs.HandleCreate)
		r.Post("/update/{id}", jobs.HandleUpdate)
		r.Post("/delete/{id}", jobs.HandleDelete)
	})

	return nil
}

// Start runs the HTTP server until SIGINT/SIGTERM, then shuts down
// gracefully: stop accepting connections, drain in-flight requests
// (30s budget), close the database.
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
			slog.Bool("auth", s.config.SessionSecret != ""),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != http.ErrServerClosed {
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
