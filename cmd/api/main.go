/**
 * @description
 * Main entry point for the Cegnal API. Wires configuration, the database
 * pool, Redis, RabbitMQ, the Paystack client and the mail sender into the
 * application services, mounts the router and runs the HTTP server with
 * graceful shutdown.
 */
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/amjido-01/cegnal/internal/api"
	"github.com/amjido-01/cegnal/internal/app"
	"github.com/amjido-01/cegnal/internal/chat"
	"github.com/amjido-01/cegnal/internal/config"
	"github.com/amjido-01/cegnal/internal/store"
	"github.com/amjido-01/cegnal/pkg/email"
	"github.com/amjido-01/cegnal/pkg/paystackclient"
	"github.com/amjido-01/cegnal/pkg/rabbitmq"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	// Local development convenience; in production the environment is set
	// by the platform.
	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	if cfg.JWTSecret == "" {
		logger.Error("JWT_SECRET is required")
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	// Postgres.
	poolConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		logger.Error("unable to parse database URL", "error", err)
		os.Exit(1)
	}
	poolConfig.MaxConns = 50
	poolConfig.MaxConnLifetime = 30 * time.Minute
	poolConfig.MaxConnIdleTime = 5 * time.Minute

	dbpool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		logger.Error("unable to connect to database", "error", err)
		os.Exit(1)
	}
	defer dbpool.Close()
	logger.Info("database connection established")

	// Redis, for the zone directory cache and OTP state.
	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		logger.Error("unable to parse redis URL", "error", err)
		os.Exit(1)
	}
	redisClient := redis.NewClient(redisOpts)
	defer redisClient.Close()

	// RabbitMQ, with a logging fallback so a broker outage does not keep
	// the API down.
	var producer rabbitmq.Publisher
	if p, err := rabbitmq.NewEventProducer(cfg.AMQPURL); err != nil {
		logger.Warn("rabbitmq unavailable, using fallback producer", "error", err)
		producer = &rabbitmq.NoopProducer{}
	} else {
		producer = p
	}
	defer producer.Close()

	// Mail sender; fall back to logging codes when Resend is not set up.
	var mailer email.Sender
	if m, err := email.NewClient(cfg.ResendAPIKey, cfg.EmailFrom, cfg.EmailFromName); err != nil {
		logger.Warn("resend unavailable, logging mail instead", "error", err)
		mailer = email.LogSender{Logger: logger}
	} else {
		mailer = m
	}

	paystack := paystackclient.NewClient(cfg.PaystackBaseURL, cfg.PaystackSecretKey)

	// Repositories.
	zoneRepo := store.NewZoneRepository(dbpool)
	userRepo := store.NewUserRepository(dbpool)
	paymentRepo := store.NewPaymentRepository(dbpool)
	chatRepo := store.NewChatRepository(dbpool)
	onboardingRepo := store.NewOnboardingRepository(dbpool)

	// Services.
	zoneCache := app.NewRedisDirectoryCache(redisClient, time.Duration(cfg.ZoneCacheTTLMinutes)*time.Minute, logger)
	otpStore := app.NewRedisOTPStore(redisClient,
		time.Duration(cfg.OTPTTLMinutes)*time.Minute,
		time.Duration(cfg.OTPResendCooldownSec)*time.Second,
	)

	tokenTTL := time.Duration(cfg.TokenTTLHours) * time.Hour
	cooldown := time.Duration(cfg.OTPResendCooldownSec) * time.Second

	zoneService := app.NewZoneService(zoneRepo, zoneCache, producer, logger)
	authService := app.NewAuthService(userRepo, otpStore, mailer, cfg.JWTSecret, tokenTTL, cooldown, logger)
	paymentService := app.NewPaymentService(paymentRepo, zoneService, userRepo, paystack, producer, cfg.PaymentCallbackURL, logger)
	profileService := app.NewProfileService(userRepo, zoneRepo, logger)
	onboardingService := app.NewOnboardingService(onboardingRepo)
	hub := chat.NewHub(chatRepo, logger)

	// Background reconciliation of stale payment sessions.
	jobs := app.NewJobs(paymentRepo, paymentService, time.Duration(cfg.PaymentExpiryHours)*time.Hour, logger)
	scheduler := app.NewScheduler(jobs, cfg.PaymentExpirySched, logger)
	scheduler.Start()
	defer scheduler.Stop()

	secureCookie := strings.HasPrefix(cfg.PaymentCallbackURL, "https://")
	handlers := api.Handlers{
		Auth:       api.NewAuthHandler(authService, tokenTTL, secureCookie),
		Zones:      api.NewZoneHandler(zoneService),
		Payments:   api.NewPaymentHandler(paymentService),
		Profiles:   api.NewProfileHandler(profileService),
		Chat:       api.NewChatHandler(hub, zoneService, userRepo, chatRepo),
		Onboarding: api.NewOnboardingHandler(onboardingService),
	}
	router := api.NewRouter(handlers, cfg.JWTSecret)

	server := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.ServerPort),
		Handler: router,
	}

	go func() {
		logger.Info("starting server", "port", cfg.ServerPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	<-sigCh
	logger.Info("shutdown signal received, gracefully shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", "error", err)
	}

	logger.Info("server stopped")
}
