// @title           Seat Planner API
// @version         1.0
// @description     Multi-tenant event seating planner.
// @BasePath        /api
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the token.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"seatplanner/config"
	_ "seatplanner/docs"
	"seatplanner/internal/adapters/auth"
	"seatplanner/internal/adapters/email"
	"seatplanner/internal/database"
	deliveryhttp "seatplanner/internal/delivery/http"
	"seatplanner/internal/delivery/http/controllers"
	"seatplanner/internal/delivery/http/middleware"
	"seatplanner/internal/repository/postgres"
	"seatplanner/internal/services"
)

const shutdownTimeout = 30 * time.Second

func main() {
	logger := config.NewLogger()
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.Connect(ctx, database.Config{
		URL:                cfg.DB.URL,
		MaxOpenConns:       cfg.DB.MaxOpenConns,
		MaxIdleConns:       cfg.DB.MaxIdleConns,
		ConnMaxLifetimeMin: cfg.DB.ConnMaxLifetimeMin,
		ConnMaxIdleTimeMin: cfg.DB.ConnMaxIdleTimeMin,
	}, logger)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if cfg.DB.RunMigrations {
		if err := db.RunMigrations(ctx); err != nil {
			logger.Error("failed to run migrations", "error", err)
			os.Exit(1)
		}
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := middleware.NewMetrics(registry)

	renderer, err := email.NewTemplateRenderer()
	if err != nil {
		logger.Error("failed to load email templates", "error", err)
		os.Exit(1)
	}
	mailer := email.NewMailer(email.MailerConfig{
		Provider:    cfg.Email.Provider,
		FromAddress: cfg.Email.FromAddress,
		FromName:    cfg.Email.FromName,
		SES: email.SESConfig{
			Region:             cfg.Email.AWSRegion,
			AccessKeyID:        cfg.Email.AWSAccessKeyID,
			SecretAccessKey:    cfg.Email.AWSSecretAccessKey,
			InsecureSkipVerify: cfg.Email.SESInsecureSkipVerify,
		},
	}, logger)
	emailService := services.NewEmailService(mailer, renderer, logger)

	userRepo := postgres.NewUserRepository(db.DB)
	eventRepo := postgres.NewEventRepository(db.DB)
	collaboratorRepo := postgres.NewCollaboratorRepository(db.DB)
	guestRepo := postgres.NewGuestRepository(db.DB)
	groupRepo := postgres.NewGroupRepository(db.DB)
	versionRepo := postgres.NewVersionRepository(db.DB)
	tableRepo := postgres.NewTableRepository(db.DB)
	assignmentRepo := postgres.NewAssignmentRepository(db.DB)

	jwt := auth.NewJWT(cfg.JWTSecret)
	access := services.NewAccessResolver(eventRepo, collaboratorRepo)
	timeout := cfg.RequestTimeout

	authService := services.NewAuthService(userRepo, auth.NewBcryptHasher(cfg.BcryptCost), jwt, cfg.TokenExpiry, emailService, cfg.AppBaseURL, logger, timeout)
	eventService := services.NewEventService(eventRepo, access, timeout)
	collaboratorService := services.NewCollaboratorService(collaboratorRepo, userRepo, access, emailService, cfg.AppBaseURL, logger, timeout)
	guestService := services.NewGuestService(guestRepo, groupRepo, access, timeout)
	groupService := services.NewGroupService(groupRepo, guestRepo, access, timeout)
	versionService := services.NewVersionService(versionRepo, access, timeout)
	seatingService := services.NewSeatingService(tableRepo, assignmentRepo, versionRepo, access, metrics, timeout)

	mux := deliveryhttp.NewRouter(deliveryhttp.Controllers{
		Auth:          controllers.NewAuthController(logger, authService),
		Events:        controllers.NewEventController(logger, eventService),
		Collaborators: controllers.NewCollaboratorController(logger, collaboratorService),
		Guests:        controllers.NewGuestController(logger, guestService),
		Groups:        controllers.NewGroupController(logger, groupService),
		Versions:      controllers.NewVersionController(logger, versionService),
		Tables:        controllers.NewTableController(logger, seatingService),
		Health:        controllers.NewHealthController(db),
	}, middleware.RequireAuth(jwt, logger), registry)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           deliveryhttp.NewHandler(mux, metrics, logger, cfg.AllowedOrigins),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", srv.Addr, "environment", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			logger.Error("server failed", "error", err)
			os.Exit(1)
		}
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}
	logger.Info("server stopped")
}
