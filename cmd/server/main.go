package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"path/filepath"
	"sync/atomic"
	"syscall"
	"time"

	"lingvocards/internal/audio"
	"lingvocards/internal/config"
	"lingvocards/internal/database"
	"lingvocards/internal/handlers"
	"lingvocards/internal/repository"
	"lingvocards/internal/security"
	"lingvocards/internal/service"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/facebook"
	"golang.org/x/oauth2/google"
)

func main() {
	// Load configuration
	cfg := config.Load()

	startup := handlers.NewStartupStatus(
		handlers.StepDatabase,
		handlers.StepMigrations,
		handlers.StepServices,
		handlers.StepSeeding,
		handlers.StepAudio,
	)

	// The API is swapped in once initialization finishes; until then every
	// request gets the startup status
	var api atomic.Value
	root := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h, ok := api.Load().(http.Handler); ok {
			h.ServeHTTP(w, r)
			return
		}
		startup.Health(w, r)
	})

	addr := ":" + cfg.ServerPort
	server := &http.Server{
		Addr:         addr,
		Handler:      root,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on http://localhost%s", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize database with config (supports sqlite, postgres, mysql)
	startup.SetCurrentStep(handlers.StepDatabase)
	db, err := database.InitializeWithConfig(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()
	startup.CompleteStep(handlers.StepDatabase)
	log.Printf("Database connection established (type: %s)", cfg.DatabaseType)

	startup.SetCurrentStep(handlers.StepMigrations)
	if err := db.RunMigrations(ctx, cfg.MigrationsPath); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	startup.CompleteStep(handlers.StepMigrations)
	log.Println("Migrations completed successfully")

	blockedWordsURL := cfg.BlockedWordsURL
	if blockedWordsURL == "" {
		blockedWordsURL = database.DefaultBlockedWordsURL
	}
	if err := db.SeedBlockedWords(ctx, blockedWordsURL); err != nil {
		log.Printf("Warning: Failed to seed blocked words filter: %v", err)
	}

	// Initialize services
	startup.SetCurrentStep(handlers.StepServices)
	userRepo := repository.NewUserRepository(db)
	settingsRepo := repository.NewSettingsRepository(db)
	progressRepo := repository.NewProgressRepository(db)
	topicRepo := repository.NewTopicRepository(db)

	csrfSecret := cfg.CSRFSecret
	if csrfSecret == "" {
		csrfSecret, err = settingsRepo.GetOrCreateSetting(ctx, repository.SettingCSRFSecret, func() (string, error) {
			return security.GenerateSecret(32)
		})
		if err != nil {
			log.Fatalf("Failed to load CSRF secret: %v", err)
		}
	}
	csrf := security.NewCSRFGenerator(csrfSecret)

	var mailer service.Mailer
	emailService, err := service.NewEmailService(ctx, cfg.AWSRegion, cfg.SESFromEmail, cfg.SESFromName, cfg.AppBaseURL, cfg.EmailDebug)
	if err != nil {
		log.Printf("Warning: Email service unavailable: %v", err)
	} else {
		mailer = emailService
	}

	var tts *audio.TTSService
	audioDir := filepath.Join(cfg.StaticFilesPath, "audio")
	if cfg.GenerateAudio {
		tts = audio.NewTTSService(audioDir)
	}

	authService := service.NewAuthService(userRepo, db, mailer, cfg.SessionDuration)
	topicService := service.NewTopicService(db, tts, db)
	practiceService := service.NewPracticeService(topicService, progressRepo, cfg.RunIdleTimeout)
	progressService := service.NewProgressService(progressRepo, topicRepo)
	backupService := service.NewBackupService(db)
	startup.CompleteStep(handlers.StepServices)

	startup.SetCurrentStep(handlers.StepSeeding)
	if cfg.SeedDefaultTopics {
		if err := topicService.SeedDefaultTopics(ctx); err != nil {
			log.Printf("Warning: Failed to seed default topics: %v", err)
		}
	}
	startup.CompleteStep(handlers.StepSeeding)

	startup.SetCurrentStep(handlers.StepAudio)
	if err := topicService.GenerateMissingAudio(ctx); err != nil {
		log.Printf("Warning: Failed to generate missing audio files: %v", err)
	}
	if err := topicService.CleanupOrphanedAudioFiles(ctx); err != nil {
		log.Printf("Warning: Failed to cleanup orphaned audio files: %v", err)
	}
	startup.CompleteStep(handlers.StepAudio)

	limiter := security.NewRateLimiter(cfg.LoginRateLimit, time.Minute)
	defer limiter.Stop()

	routes := &handlers.Routes{
		Middleware: handlers.NewMiddleware(authService, csrf, limiter, cfg.AdminEmails),
		Startup:    startup,
		Auth:       handlers.NewAuthHandler(authService, csrf, oauthProviders(cfg), cfg.OAuthRedirectBaseURL, cfg.AppBaseURL),
		Topics:     handlers.NewTopicHandler(topicService),
		Practice:   handlers.NewPracticeHandler(practiceService),
		Profile:    handlers.NewProfileHandler(progressService),
		Admin:      handlers.NewAdminHandler(topicService, practiceService, backupService),
		AudioDir:   audioDir,
	}
	api.Store(routes.Handler())
	startup.MarkReady()
	log.Println("Server ready")

	// Start background cleanup
	go runCleanup(ctx, authService, practiceService)

	<-ctx.Done()
	log.Println("Server shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Error during shutdown: %v", err)
	}
}

func oauthProviders(cfg *config.Config) map[string]handlers.OAuthProvider {
	return map[string]handlers.OAuthProvider{
		"google": {
			Name:  "google",
			Label: "Google",
			Config: &oauth2.Config{
				ClientID:     cfg.GoogleClientID,
				ClientSecret: cfg.GoogleClientSecret,
				Endpoint:     google.Endpoint,
				Scopes:       []string{"openid", "email", "profile"},
			},
			UserInfoURL: "https://www.googleapis.com/oauth2/v2/userinfo",
		},
		"facebook": {
			Name:  "facebook",
			Label: "Facebook",
			Config: &oauth2.Config{
				ClientID:     cfg.FacebookClientID,
				ClientSecret: cfg.FacebookClientSecret,
				Endpoint:     facebook.Endpoint,
				Scopes:       []string{"email", "public_profile"},
			},
			UserInfoURL: "https://graph.facebook.com/me?fields=id,name,email",
		},
		"apple": {
			Name:  "apple",
			Label: "Apple",
			Config: &oauth2.Config{
				ClientID:     cfg.AppleClientID,
				ClientSecret: cfg.AppleClientSecret,
				Endpoint: oauth2.Endpoint{
					AuthURL:  "https://appleid.apple.com/auth/authorize",
					TokenURL: "https://appleid.apple.com/auth/token",
				},
				Scopes: []string{"name", "email"},
			},
			AuthParams: map[string]string{
				"response_mode": "query",
			},
		},
	}
}

// runCleanup periodically removes expired sessions, reset tokens and idle runs
func runCleanup(ctx context.Context, authService *service.AuthService, practiceService *service.PracticeService) {
	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		if err := authService.CleanupExpiredSessions(ctx); err != nil {
			log.Printf("Error cleaning up expired sessions: %v", err)
		} else {
			log.Println("Expired sessions cleaned up")
		}

		if err := authService.CleanupExpiredPasswordResetTokens(ctx); err != nil {
			log.Printf("Error cleaning up expired reset tokens: %v", err)
		}

		if n := practiceService.CleanupIdleRuns(); n > 0 {
			log.Printf("Discarded %d idle runs", n)
		}
	}
}
