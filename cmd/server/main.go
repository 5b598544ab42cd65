package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"loan4farm-api/internal/config"
	"loan4farm-api/internal/crypto"
	"loan4farm-api/internal/handler"
	"loan4farm-api/internal/repository"
	"loan4farm-api/internal/scoring"
	"loan4farm-api/internal/service"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		logger.SetLevel(level)
	}

	ctx := context.Background()

	// Connect to the database and create the schema
	db, err := repository.Open(ctx, cfg.DBDriver, cfg.DSN())
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := repository.Migrate(ctx, db, cfg.DBDriver, logger); err != nil {
		logger.Fatalf("Failed to migrate database: %v", err)
	}

	// PGP key for identifiers at rest
	pgpManager, err := crypto.NewPGPManager(cfg.PGPKeyPath, []byte(cfg.HMACSecret))
	if err != nil {
		logger.Fatalf("Failed to initialise PGP: %v", err)
	}

	params, err := scoring.LoadParams(cfg.RiskParamsPath)
	if err != nil {
		logger.Fatalf("Failed to load risk parameters: %v", err)
	}

	// Generative client is optional; without a key the formula is used
	var generator service.TextGenerator
	if cfg.GeminiAPIKey != "" {
		gemini, err := service.NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, cfg.GeminiTimeout, logger)
		if err != nil {
			logger.WithError(err).Warn("Gemini client unavailable, running in simulation mode")
		} else {
			generator = gemini
		}
	} else {
		logger.Info("GEMINI_API_KEY not set, running in simulation mode")
	}

	// Services
	logger.Info("Initialising services...")
	profileRepo := repository.NewProfileRepository(db, logger)
	profileService := service.NewProfileService(profileRepo, pgpManager, logger)
	notificationService := service.NewNotificationService(profileService, cfg.WelcomeDelays, cfg.AutoPayDay, logger)
	authService := service.NewAuthService(profileService, notificationService, cfg.JWTSecret, cfg.TokenExpiry, service.OTPConfig{
		DemoCode:    cfg.OTPDemoCode,
		TTL:         cfg.OTPTTL,
		MaxAttempts: cfg.OTPMaxAttempt,
	}, logger)
	analysisService, err := service.NewAnalysisService(generator, params, cfg.FallbackDelay, logger)
	if err != nil {
		logger.Fatalf("Failed to initialise analysis service: %v", err)
	}
	workflowService := service.NewLoanWorkflowService(profileService, notificationService, service.NewEmailSender(cfg.SMTP, logger), service.LoanTerms{
		InterestRate:     cfg.KCCInterestRate,
		TermMonths:       cfg.KCCTermMonths,
		AutoPayDay:       cfg.AutoPayDay,
		InsurancePremium: cfg.InsurancePremium,
		EmergencyRelief:  cfg.EmergencyRelief,
		ScanDelay:        cfg.EmergencyScanDelay,
		SessionTTL:       cfg.WorkflowTTL,
	}, logger)

	router := handler.NewRouter(handler.Services{
		DB:            db,
		Auth:          authService,
		Profiles:      profileService,
		Notifications: notificationService,
		Analysis:      analysisService,
		Assistant:     service.NewAssistantService(generator, logger),
		Workflows:     workflowService,
		Catalog:       service.NewCatalogService(),
	}, logger)

	// Monthly AutoPay reminders
	logger.WithField("schedule", cfg.ReminderSchedule).Info("Scheduling AutoPay reminders")
	c := cron.New()
	_, err = c.AddFunc(cfg.ReminderSchedule, func() {
		if _, err := notificationService.SendReminders(context.Background()); err != nil {
			logger.WithError(err).Error("AutoPay reminder job failed")
		}
	})
	if err != nil {
		logger.Fatalf("Failed to schedule reminders: %v", err)
	}
	c.Start()

	server := &http.Server{
		Addr:              cfg.ServerAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Infof("Starting server on %s", cfg.ServerAddr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Server error: %v", err)
		}
	}()

	// Wait for a shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("Server shutdown error: %v", err)
	}
	<-c.Stop().Done()
	notificationService.Stop()
	logger.Info("Server stopped")
}
