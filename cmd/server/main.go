package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"studyquest/internal/ai"
	"studyquest/internal/config"
	"studyquest/internal/handlers"
	"studyquest/internal/keylock"
	"studyquest/internal/logger"
	"studyquest/internal/repository"
	"studyquest/internal/scheduler"
	"studyquest/internal/security"
	"studyquest/internal/service"
	"studyquest/internal/store"
)

func main() {
	// Load configuration
	cfg := config.Load()

	log, err := logger.New(cfg.Environment)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if err := cfg.Validate(); err != nil {
		log.Fatal("invalid configuration", "error", err)
	}

	if err := run(cfg, log); err != nil {
		log.Fatal("server stopped", "error", err)
	}
}

func run(cfg *config.Config, log *logger.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.IsProduction() && cfg.JWTSecret == "change-me-in-production" {
		return errors.New("JWT_SECRET must be set in production")
	}

	// Record store (sql, redis or memory)
	recordStore, closeStore, err := store.Open(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeStore()

	// Initialize repositories
	userRepo := repository.NewUserRepository(recordStore)
	rewardRepo := repository.NewRewardRepository(recordStore)
	claimRepo := repository.NewClaimRepository(recordStore)
	taskRepo := repository.NewTaskRepository(recordStore)
	questionRepo := repository.NewQuestionRepository(recordStore)

	// Initialize services
	emailService, err := service.NewEmailService(ctx, cfg.AWSRegion, cfg.SESFromEmail, cfg.SESFromName, cfg.AppBaseURL, log)
	if err != nil {
		return fmt.Errorf("failed to initialize email service: %w", err)
	}

	locks := keylock.New()
	tokens := security.NewTokenIssuer(cfg.JWTSecret, cfg.SessionDuration)
	generator := ai.NewClient(ctx, cfg.OpenAIAPIKey, cfg.OpenAIURL, cfg.OpenAIModel)
	if cfg.OpenAIAPIKey == "" {
		log.Warn("OPENAI_API_KEY not set, content generation disabled")
	}

	ledgerService := service.NewLedgerService(userRepo, taskRepo, locks, cfg.Location)
	rewardService := service.NewRewardService(userRepo, rewardRepo, claimRepo, locks, emailService, log)
	authService := service.NewAuthService(userRepo, ledgerService, tokens)
	contentService := service.NewContentService(generator, questionRepo, taskRepo, ledgerService, log)

	// Daily pending-claim reminders
	if emailService.IsEnabled() {
		sched := scheduler.New(cfg.Location, cfg.ReminderTime, authService, rewardService, emailService, log)
		if err := sched.Start(); err != nil {
			return err
		}
		defer sched.Stop()
	}

	// Initialize handlers
	limiter := security.NewRateLimiter(cfg.LoginRateLimit, time.Minute)
	defer limiter.Stop()

	middleware := handlers.NewMiddleware(authService, limiter, log)
	router := handlers.NewRouter(handlers.Handlers{
		Auth:    handlers.NewAuthHandler(authService, log),
		Student: handlers.NewStudentHandler(authService, ledgerService, log),
		Ledger:  handlers.NewLedgerHandler(ledgerService, contentService, log),
		Reward:  handlers.NewRewardHandler(rewardService, authService, log),
		Content: handlers.NewContentHandler(contentService, log),
	}, middleware, log)

	// Start server
	addr := ":" + cfg.ServerPort
	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server starting", "addr", addr, "store", cfg.StoreBackend, "timezone", cfg.Location.String())
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	// Wait for interrupt signal
	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	log.Info("server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
