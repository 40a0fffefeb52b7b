package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/oauth2"

	"daybrief-backend/internal/calendar"
	"daybrief-backend/internal/config"
	"daybrief-backend/internal/database"
	"daybrief-backend/internal/docs"
	"daybrief-backend/internal/handlers"
	"daybrief-backend/internal/llm"
	"daybrief-backend/internal/middleware"
	"daybrief-backend/internal/models"
	"daybrief-backend/internal/repository"
	"daybrief-backend/internal/router"
	"daybrief-backend/internal/services"
	"daybrief-backend/internal/vault"
	"daybrief-backend/internal/websocket"
	"daybrief-backend/internal/worker"
	"daybrief-backend/migrations"
)

func main() {
	log.Println("🚀 Starting DayBrief Backend...")

	// ──── Step 1: Load Environment Variables ────
	cfg := config.Load()
	log.Println("✓ Environment variables loaded")

	// ──── Step 2: Initialize PostgreSQL Connection Pool ────
	pool, err := database.NewPostgresPool(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("✗ PostgreSQL connection failed: %v", err)
	}
	defer pool.Close()
	log.Println("✓ PostgreSQL connected")

	// ──── Step 3: Initialize Redis Clients ────
	redisClients, err := database.NewRedisClients(cfg.RedisURL)
	if err != nil {
		log.Fatalf("✗ Redis connection failed: %v", err)
	}
	defer redisClients.Close()
	log.Println("✓ Redis connected")

	// ──── Step 4: Run Database Migrations ────
	if err := database.RunMigrations(context.Background(), pool, migrations.FS); err != nil {
		log.Fatalf("✗ Database migration failed: %v", err)
	}
	log.Println("✓ Database migrations applied")

	// ──── Initialize Repositories ────
	sealer, err := vault.New(cfg.TokenEncryptionKey)
	if err != nil {
		log.Fatalf("✗ Token vault initialization failed: %v", err)
	}
	userRepo := repository.NewUserRepo(pool)
	accountRepo := repository.NewAccountRepo(pool, sealer)
	summaryRepo := repository.NewSummaryRepo(pool)
	jobRepo := repository.NewJobRepo(pool)

	// ──── Step 5: Initialize Calendar Providers ────
	oauthConfigs := map[models.Provider]*oauth2.Config{
		models.ProviderGoogle: calendar.GoogleOAuthConfig(
			cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.OAuthRedirectURL(string(models.ProviderGoogle))),
		models.ProviderMicrosoft: calendar.MicrosoftOAuthConfig(
			cfg.MSClientID, cfg.MSClientSecret, cfg.MSTenantID, cfg.OAuthRedirectURL(string(models.ProviderMicrosoft))),
	}
	apiClient := &http.Client{Timeout: 20 * time.Second}
	registry := calendar.NewRegistry(
		calendar.NewGoogleClient("", apiClient),
		calendar.NewMicrosoftClient(calendar.DefaultGraphURL, apiClient),
	)
	refresher := calendar.NewRefresher(oauthConfigs)
	profiles := calendar.NewProfileFetcher(apiClient, "", calendar.DefaultGraphURL)
	docFetcher := docs.NewFetcher(docs.WithHTTPClient(apiClient))
	if cfg.MSClientID == "" {
		log.Println("⚠ MS_CLIENT_ID not set, Microsoft sign-in disabled")
	}
	log.Println("✓ Calendar providers configured")

	// ──── Step 6: Initialize LLM Client ────
	var completer llm.Completer
	switch cfg.LLMProvider {
	case "gemini":
		gemini, err := llm.NewGeminiCompleter(context.Background(), cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			log.Fatalf("✗ Gemini client initialization failed: %v", err)
		}
		defer gemini.Close()
		completer = gemini
		log.Printf("✓ Gemini client initialized (%s)", cfg.GeminiModel)
	default:
		if cfg.OpenAIAPIKey == "" {
			log.Println("⚠ OPENAI_API_KEY not set, summary generation will fail")
		}
		completer = llm.NewOpenAICompleter(cfg.OpenAIAPIBase, cfg.OpenAIAPIKey, cfg.OpenAIModel, &http.Client{Timeout: 60 * time.Second})
		log.Printf("✓ OpenAI-compatible client initialized (%s)", cfg.OpenAIModel)
	}
	generator := llm.NewGenerator(completer, llm.WithMaxRetries(cfg.LLMMaxRetries))

	// ──── Initialize Services ────
	jwtAuth := middleware.NewJWTAuth(cfg.JWTSecret)
	sessions := services.NewRedisSessions(redisClients.Queue)
	publisher := websocket.NewPublisher(redisClients.Queue)
	emailService := services.NewEmailService(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPFrom, cfg.ResendAPIKey)
	slackNotifier := services.NewSlackNotifier(cfg.SlackBotToken)

	authService := services.NewAuthService(userRepo, accountRepo, sessions, jwtAuth, profiles, oauthConfigs)
	eventService := services.NewEventService(userRepo, accountRepo, registry, refresher)
	summaryService := services.NewSummaryService(userRepo, accountRepo, summaryRepo, docFetcher, generator, publisher)
	recapService := services.NewRecapService(userRepo, summaryRepo, emailService, slackNotifier, cfg.SettingsURL())
	userService := services.NewUserService(userRepo, sessions)
	jobService := services.NewJobService(jobRepo)

	// ──── Initialize Handlers ────
	authHandler := handlers.NewAuthHandler(authService, cfg.FrontendURL)
	eventHandler := handlers.NewEventHandler(eventService)
	summaryHandler := handlers.NewSummaryHandler(summaryService)
	recapHandler := handlers.NewRecapHandler(recapService)
	userHandler := handlers.NewUserHandler(userService)
	jobHandler := handlers.NewJobHandler(jobService)

	// ──── Step 7: Start Job Worker Pool ────
	workerPool := worker.NewPool(redisClients.Queue, recapService, jobRepo, publisher, cfg.WorkerCount)
	workerPool.Start()
	log.Printf("✓ Worker pool started (%d goroutines)", cfg.WorkerCount)

	var recapScheduler *services.RecapScheduler
	if cfg.RecapSchedulerEnabled {
		recapScheduler = services.NewRecapScheduler(userRepo, jobRepo, worker.NewQueue(redisClients.Queue), cfg.RecapHour)
		recapScheduler.Start()
		log.Printf("✓ Recap scheduler started (local hour %02d:00)", cfg.RecapHour)
	}

	// ──── Step 8: Start WebSocket Hub ────
	wsHub := websocket.NewHub(redisClients.PubSub, jwtAuth)
	log.Println("✓ WebSocket hub started")

	// ──── Step 9: Start HTTP Server ────
	r := router.New(
		jwtAuth,
		authHandler,
		eventHandler,
		summaryHandler,
		recapHandler,
		userHandler,
		jobHandler,
		wsHub,
		cfg.FrontendURL,
	)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 90 * time.Second, // summarize waits on the LLM with retries
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down...")
		workerPool.Stop()
		if recapScheduler != nil {
			recapScheduler.Stop()
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		server.Shutdown(ctx)
	}()

	log.Printf("✓ DayBrief Backend ready on http://localhost:%s", cfg.Port)
	log.Printf("  API: http://localhost:%s/api/v1", cfg.Port)
	log.Printf("  WS:  ws://localhost:%s/api/v1/ws", cfg.Port)

	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("Server error: %v", err)
	}
}
