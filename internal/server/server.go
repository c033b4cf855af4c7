// Package server sets up the HTTP server, router, and all route definitions.
//
// This is the composition root: New opens the database, builds every
// service and handler, and decides which middleware guards which route.
// main.go only loads configuration and calls New/Start.
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
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sakif/student-portal/internal/auth"
	"github.com/sakif/student-portal/internal/config"
	"github.com/sakif/student-portal/internal/handler"
	"github.com/sakif/student-portal/internal/middleware"
	sqliteRepo "github.com/sakif/student-portal/internal/repository/sqlite"
	"github.com/sakif/student-portal/internal/service"
	"github.com/sakif/student-portal/web"
)

const shutdownTimeout = 30 * time.Second

// Server represents the HTTP server and all its dependencies.
//
// The Server owns the database connection. Start closes it once the HTTP
// server has drained; callers that never Start (tests) call Close.
type Server struct {
	router *chi.Mux
	config *config.Config
	logger *slog.Logger
	db     *sqliteRepo.DB
}

// New wires the portal. provider is the identity provider behind /login;
// main passes an *auth.GoogleProvider.
//
// IMPORT ALIAS:
// repository/sqlite is imported as sqliteRepo so it is not confused with
// the modernc.org/sqlite driver.
func New(cfg *config.Config, logger *slog.Logger, provider handler.LoginProvider) (*Server, error) {
	db, err := sqliteRepo.New(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
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

// Close releases the database. Start does this itself on shutdown.
func (s *Server) Close() error {
	return s.db.Close()
}

// setupRoutes configures all middleware and route handlers.
//
// MIDDLEWARE ORDER:
//  1. RequestID, RealIP: tag the request and find the client address
//  2. Recoverer: a panic becomes a 500
//  3. Logger: access log and request metrics
//  4. LoadUser: the session cookie becomes a *model.User in the context
//
// Routes in the RequireUser group redirect anonymous visitors to /userLogin.
// /login and /login/callback are rate limited per client IP, which relies on
// RealIP having run first.
func (s *Server) setupRoutes(provider handler.LoginProvider) error {
	tokens, err := auth.NewTokenService(s.config.Session.Secret, s.config.Session.TTL)
	if err != nil {
		return fmt.Errorf("creating token service: %w", err)
	}

	render, err := handler.NewRenderer(web.Templates, s.logger)
	if err != nil {
		return fmt.Errorf("loading templates: %w", err)
	}

	users := s.db.Users()
	cookies := handler.Cookies{
		Secure:     s.config.Server.SecureCookies,
		SessionTTL: tokens.TTL(),
	}

	authService := service.NewAuthService(users, tokens, s.logger)
	checklistService := service.NewChecklistService(s.db.Modules(), s.db.Selections(), s.logger)
	todoService := service.NewTodoService(s.db.Todos(), s.logger)
	projectService := service.NewProjectService(s.db.Projects(), s.logger)
	profileService := service.NewProfileService(users, s.logger)

	authHandler := handler.NewAuthHandler(provider, authService, cookies, s.config.Server.BaseURL, s.logger)
	checklistHandler := handler.NewChecklistHandler(checklistService, render, s.logger)
	todoHandler := handler.NewTodoHandler(todoService, render, s.logger)
	projectHandler := handler.NewProjectHandler(projectService, render, s.logger)
	profileHandler := handler.NewProfileHandler(profileService, cookies, render, s.logger)
	pageHandler := handler.NewPageHandler(render)
	healthHandler := handler.NewHealthHandler(s.db, s.logger)

	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(auth.LoadUser(tokens, users, s.logger))

	// === Public ===
	s.router.Get("/", pageHandler.HandleHome)
	s.router.Get(auth.LoginPath, checklistHandler.HandleDashboard)
	s.router.Get("/healthz", healthHandler.HandleHealth)
	s.router.Handle("/metrics", promhttp.Handler())

	s.router.Group(func(r chi.Router) {
		r.Use(httprate.LimitByIP(s.config.Server.LoginRateLimit, s.config.Server.LoginRateWindow))
		r.Get("/login", authHandler.HandleLogin)
		r.Get("/login/callback", authHandler.HandleCallback)
	})

	// === Logged in ===
	s.router.Group(func(r chi.Router) {
		r.Use(auth.RequireUser)

		r.Get("/logout", authHandler.HandleLogout)

		r.Get("/saveChecklist", checklistHandler.HandleSave)
		r.Post("/saveChecklist", checklistHandler.HandleSave)
		r.Get("/myProgress", checklistHandler.HandleProgress)

		r.Get("/myTodoList", todoHandler.HandleList)
		r.Post("/myTodoList", todoHandler.HandleCreate)
		r.Post("/updateTodoListScreen", todoHandler.HandleEditScreen)
		r.Post("/updateTodoList", todoHandler.HandleUpdate)
		r.Post("/deleteTodoList", todoHandler.HandleDelete)

		r.Get("/myProjects", projectHandler.HandleList)
		r.Post("/createProject", projectHandler.HandleCreate)
		r.Post("/updateProjectScreen", projectHandler.HandleEditScreen)
		r.Post("/updateProject", projectHandler.HandleUpdate)
		r.Post("/deleteProject", projectHandler.HandleDelete)

		r.Get("/myProfile", profileHandler.HandleView)
		r.Get("/userUpdate", profileHandler.HandleEditForm)
		r.Post("/userUpdate", profileHandler.HandleUpdate)
		r.Get("/userDelete", profileHandler.HandleDelete)

		r.Get("/myPractice", pageHandler.HandlePractice)
		r.Get("/myCommunity", pageHandler.HandleCommunity)
		r.Get("/myCalendar", pageHandler.HandleCalendar)
	})

	return nil
}

// Start runs the HTTP server until SIGINT or SIGTERM, then drains in-flight
// requests for up to 30 seconds and closes the database.
func (s *Server) Start() error {
	defer s.db.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Server.Port),
		Handler:      s.router,
		ReadTimeout:  s.config.Server.ReadTimeout,
		WriteTimeout: s.config.Server.WriteTimeout,
		IdleTimeout:  s.config.Server.IdleTimeout,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Server.Port),
			slog.String("url", fmt.Sprintf("http://localhost:%d", s.config.Server.Port)),
			slog.String("database", s.config.Database.Path),
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
