package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	"techconnect/config"
	"techconnect/internal/adapters/auth"
	"techconnect/internal/adapters/blob"
	"techconnect/internal/adapters/email"
	"techconnect/internal/broadcast"
	httpdelivery "techconnect/internal/delivery/http"
	"techconnect/internal/delivery/http/controllers"
	"techconnect/internal/delivery/http/middleware"
	"techconnect/internal/delivery/http/ws"
	"techconnect/internal/repository/postgres"
	"techconnect/internal/services"
)

const serviceTimeout = 5 * time.Second

// @title TechConnect API
// @version 1.0
// @description Event listing and RSVP backend for the regional tech community.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		os.Exit(1)
	}
	logger := config.NewLogger()

	db, err := sql.Open("postgres", cfg.DBUrl)
	if err != nil {
		logger.Error("open database", "err", err)
		os.Exit(1)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		logger.Error("ping database", "err", err)
		os.Exit(1)
	}

	userRepo := postgres.NewUserRepository(db)
	inviteRepo := postgres.NewInviteRepository(db)
	eventRepo := postgres.NewEventRepository(db)
	attendeeRepo := postgres.NewAttendeeRepository(db)
	commentRepo := postgres.NewCommentRepository(db)

	hub := broadcast.NewHub(logger)

	mailer, err := email.NewMailer(email.MailerConfig{
		Provider:    cfg.Mailer.Provider,
		FromAddress: cfg.Mailer.FromAddress,
		FromName:    cfg.Mailer.FromName,
		SES: email.SESConfig{
			Region:          cfg.Mailer.SESRegion,
			AccessKeyID:     cfg.Mailer.SESAccessKeyID,
			SecretAccessKey: cfg.Mailer.SESSecretAccess,
		},
	})
	if err != nil {
		logger.Error("init mailer", "err", err)
		os.Exit(1)
	}
	emailSvc := services.NewEmailService(mailer, email.NewTemplateRenderer())

	store, err := blob.NewLocalStore(cfg.UploadDir, cfg.PublicBaseURL)
	if err != nil {
		logger.Error("init upload store", "err", err)
		os.Exit(1)
	}

	codec := auth.NewJWTCodec(cfg.JWTSecret)
	hasher := auth.NewArgon2Hasher()

	authSvc := services.NewAuthService(userRepo, inviteRepo, hasher, codec, cfg.TokenExpiry, logger)
	inviteSvc := services.NewInviteService(inviteRepo, emailSvc, logger, serviceTimeout)
	eventSvc := services.NewEventService(eventRepo, hub, serviceTimeout)
	registrationSvc := services.NewRegistrationService(eventRepo, attendeeRepo, commentRepo, hub, serviceTimeout)

	mux := httpdelivery.NewRouter(httpdelivery.RouterConfig{
		Logger:       logger,
		Verifier:     codec,
		Auth:         controllers.NewAuthController(logger, authSvc),
		Events:       controllers.NewEventController(logger, eventSvc),
		Registration: controllers.NewRegistrationController(logger, registrationSvc),
		Invites:      controllers.NewInviteController(logger, inviteSvc),
		Uploads:      controllers.NewUploadController(logger, store),
		Feed:         controllers.NewFeedController(logger, eventSvc, cfg.PublicBaseURL),
		WS:           ws.NewHandler(hub, cfg.CORSOrigins, logger),
		UploadDir:    cfg.UploadDir,
	})

	handler := middleware.LoggingMiddleware(logger, middleware.CORS(cfg.CORSOrigins, mux))

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("server listening", "port", cfg.Port, "env", cfg.Environment)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server stopped", "err", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", "err", err)
	}
}
