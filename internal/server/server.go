// Package server is the composition root: it wires the database,
// services, handlers, middleware, and routes, and owns the HTTP server
// lifecycle including graceful shutdown.
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

	"github.com/sakif/giftwish/internal/auth"
	"github.com/sakif/giftwish/internal/config"
	"github.com/sakif/giftwish/internal/email"
	"github.com/sakif/giftwish/internal/feed"
	"github.com/sakif/giftwish/internal/handler"
	"github.com/sakif/giftwish/internal/middleware"
	sqliteRepo "github.com/sakif/giftwish/internal/repository/sqlite"
	"github.com/sakif/giftwish/internal/service"
)

// Server holds the router and the resources it owns. The database
// connection is closed during shutdown, after in-flight requests drain.
type Server struct {
	router *chi.Mux
	config *config.Config
	logger *slog.Logger
	db     *sqliteRepo.DB
}

// New opens the database and assembles the full dependency chain.
// Handlers never touch the database directly; services receive
// repository interfaces, handlers receive services.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Server, error) {
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

	if err := s.setupRoutes(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	return s, nil
}

func (s *Server) setupRoutes(ctx context.Context) error {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))

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

	mailer, err := email.NewService(ctx, s.config.FromEmail, s.config.BaseURL, s.logger)
	if err != nil {
		return fmt.Errorf("creating email service: %w", err)
	}

	authService := service.NewAuthService(s.db, tokens, passwords, s.logger)
	birthdayService := service.NewBirthdayService(s.db, s.db, s.logger)
	giftService := service.NewGiftService(s.db, s.db, s.db, s.db, s.logger)
	friendService := service.NewFriendService(s.db, s.db, mailer, s.logger)
	feedService := feed.NewService(s.db, s.logger)

	authHandler := handler.NewAuthHandler(authService, github, s.logger)
	profileHandler := handler.NewProfileHandler(authService, friendService, s.logger)
	birthdayHandler := handler.NewBirthdayHandler(birthdayService, s.logger)
	giftHandler := handler.NewGiftHandler(giftService, s.logger)
	friendHandler := handler.NewFriendHandler(friendService, s.logger)
	feedHandler := handler.NewFeedHandler(feedService, s.logger)

	// Session endpoints live outside /api because they are reachable
	// without a cookie.
	s.router.Route("/auth", func(r chi.Router) {
		r.Post("/register", authHandler.HandleRegister)
		r.Post("/login", authHandler.HandleLogin)
		r.Post("/logout", authHandler.HandleLogout)
		r.Get("/github/login", authHandler.HandleGitHubLogin)
		r.Get("/github/callback", authHandler.HandleGitHubCallback)
	})

	s.router.Route("/api", func(r chi.Router) {
		r.Use(auth.RequireAuth(tokens))

		r.Get("/me", authHandler.HandleMe)
		r.Get("/profile", profileHandler.HandleGet)
		r.Put("/profile", profileHandler.HandleUpdate)
		r.Get("/users/search", profileHandler.HandleSearch)

		// Static segments before {id} so "upcoming" never parses as an ID.
		r.Get("/birthdays/upcoming", birthdayHandler.HandleUpcoming)
		r.Get("/birthdays/today", birthdayHandler.HandleToday)
		r.Post("/birthdays/import", feedHandler.HandleImport)
		r.Get("/birthdays", birthdayHandler.HandleList)
		r.Post("/birthdays", birthdayHandler.HandleCreate)
		r.Get("/birthdays/{id}", birthdayHandler.HandleGet)
		r.Put("/birthdays/{id}", birthdayHandler.HandleUpdate)
		r.Delete("/birthdays/{id}", birthdayHandler.HandleDelete)

		r.Get("/birthdays/{id}/gifts", giftHandler.HandleList)
		r.Post("/birthdays/{id}/gifts", giftHandler.HandleCreate)
		r.Post("/gifts/{id}/claim", giftHandler.HandleClaim)
		r.Post("/gifts/{id}/unclaim", giftHandler.HandleUnclaim)
		r.Put("/gifts/{id}/purchased", giftHandler.HandleSetPurchased)
		r.Delete("/gifts/{id}", giftHandler.HandleDelete)

		r.Get("/friends", friendHandler.HandleListFriends)
		r.Get("/friends/requests", friendHandler.HandleListRequests)
		r.Post("/friends/requests", friendHandler.HandleRequest)
		r.Post("/friends/requests/{id}/accept", friendHandler.HandleAccept)
		r.Delete("/friends/requests/{id}", friendHandler.HandleRemove)
		r.Post("/friends/{userId}/block", friendHandler.HandleBlock)

		r.Get("/calendar.ics", feedHandler.HandleCalendar)
	})

	return nil
}

// Start runs the HTTP server until SIGINT/SIGTERM, then drains in-flight
// requests for up to 30 seconds and closes the database.
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
