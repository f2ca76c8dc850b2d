package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"nuance/backend/internal/config"
	"nuance/backend/internal/db"
	"nuance/backend/internal/handler"
	transport "nuance/backend/internal/http"
	"nuance/backend/internal/logger"
	"nuance/backend/internal/repository"
	"nuance/backend/internal/service"
	"nuance/backend/internal/service/ai"
	"nuance/backend/internal/snowflake"
	"nuance/backend/internal/worker"
)

func main() {
	cfg := config.Load()
	logger.Init(logger.ParseLevel(cfg.LogLevel))

	if err := snowflake.Init(1); err != nil {
		log.Fatalf("init snowflake: %v", err)
	}

	dbConn, err := db.Open(cfg.DBPath)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer dbConn.Close()

	provider, err := ai.NewProvider(ai.Config{
		Provider:    cfg.AIProvider,
		APIKey:      cfg.AIAPIKey,
		BaseURL:     cfg.AIBaseURL,
		Model:       cfg.AIModel,
		Temperature: cfg.AITemperature,
		MaxTokens:   cfg.AIMaxTokens,
	})
	if err != nil {
		log.Fatalf("create provider: %v", err)
	}

	translationRepo := repository.NewTranslationRepository(dbConn)
	settingsRepo := repository.NewSettingsRepository(dbConn)

	limiter := ai.NewRateLimiter(ai.DefaultRateLimit)
	service.RestoreRateLimit(context.Background(), settingsRepo, limiter)

	pool := worker.NewPool(cfg.WorkerPoolSize)

	callTimeout := time.Duration(cfg.AITimeoutSeconds) * time.Second
	pipelineService := service.NewPipelineService(provider, translationRepo, settingsRepo, limiter, pool, callTimeout)
	historyService := service.NewHistoryService(translationRepo)
	authService := service.NewAuthService(settingsRepo)
	settingsService := service.NewSettingsService(settingsRepo, provider, limiter)

	authHandler := handler.NewAuthHandler(authService)
	translateHandler := handler.NewTranslateHandler(pipelineService)
	historyHandler := handler.NewHistoryHandler(historyService)
	settingsHandler := handler.NewSettingsHandler(settingsService)

	router := transport.NewRouter(authService, authHandler, translateHandler, historyHandler, settingsHandler, cfg.StaticDir)

	// Handle graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		logger.Info("shutting down", "module", "main", "action", "stop", "resource", "server", "result", "ok")

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := router.Shutdown(ctx); err != nil {
			logger.Error("server shutdown", "module", "main", "action", "stop", "resource", "server", "result", "failed", "error", err)
		}

		// Drain in-flight detached saves before exiting.
		pool.Stop()
		os.Exit(0)
	}()

	if err := router.Start(cfg.Addr); err != nil {
		log.Fatalf("start server: %v", err)
	}
}
