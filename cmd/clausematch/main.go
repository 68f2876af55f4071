package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"clausematch/internal/api"
	"clausematch/internal/api/handlers"
	"clausematch/internal/repository"
	"clausematch/internal/service"
	"clausematch/pkg/auth"
	"clausematch/pkg/config"
	"clausematch/pkg/logger"
	"clausematch/pkg/postgres"

	"go.uber.org/zap"
)

// @title ClauseMatch API
// @version 1.0
// @description Clause-level compliance matching between control and regulation documents
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.email support@clausematch.local

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey Bearer
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize global logger
	if err := logger.Init(cfg.Logger.Level); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	appLogger := logger.Get()
	appLogger.Info("Starting ClauseMatch service")

	// Initialize database
	ctx := context.Background()
	db, err := postgres.NewPool(ctx, &cfg.Database, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	// Initialize repositories
	userRepo := repository.NewUserRepository(db, appLogger)
	sessionRepo := repository.NewSessionRepository(db, appLogger)
	docRepo := repository.NewDocumentRepository(db, appLogger)
	matchRepo := repository.NewMatchRepository(db, appLogger)
	chatRepo := repository.NewChatRepository(db, appLogger)

	// Initialize JWT manager
	jwtManager := auth.NewJWTManager(cfg.JWT.SecretKey, cfg.JWT.Expiration, cfg.JWT.RefreshExp)

	// Initialize services
	authService := service.NewAuthService(userRepo, jwtManager, appLogger)
	sessionService := service.NewSessionService(sessionRepo, appLogger)

	parserService, err := service.NewParserService(appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize parser", zap.Error(err))
	}

	llmClient := service.NewOpenAIClient(&cfg.LLM, appLogger)
	embeddingService := service.NewEmbeddingService(llmClient, cfg.LLM.EmbeddingModel, appLogger)
	analysisService := service.NewAnalysisService(llmClient, cfg.LLM.AnalysisModel, appLogger)
	matchService := service.NewMatchService(embeddingService, analysisService, cfg.Match, appLogger)
	complianceService := service.NewComplianceService(parserService, matchService, docRepo, matchRepo, appLogger)

	docService := service.NewDocumentService(docRepo, parserService, cfg.Upload.Dir, appLogger)
	chatService := service.NewChatService(llmClient, cfg.LLM.ChatModel, sessionRepo, chatRepo, matchRepo, appLogger)
	reportService := service.NewReportService(matchRepo, chatRepo, docRepo, appLogger)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService, appLogger)
	sessionHandler := handlers.NewSessionHandler(sessionService, appLogger)
	docHandler := handlers.NewDocumentHandler(docService, sessionService, appLogger)
	matchHandler := handlers.NewMatchHandler(complianceService, sessionService, appLogger)
	chatHandler := handlers.NewChatHandler(chatService, sessionService, appLogger)
	reportHandler := handlers.NewReportHandler(reportService, sessionService, appLogger)

	// Setup router
	app := api.SetupRouter(authHandler, sessionHandler, docHandler, matchHandler, chatHandler, reportHandler, jwtManager, appLogger)

	// Start server
	go func() {
		addr := ":" + cfg.Server.Port
		appLogger.Info("Server starting", zap.String("address", addr))
		if err := app.Listen(addr); err != nil {
			appLogger.Fatal("Server failed", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server")
	if err := app.Shutdown(); err != nil {
		appLogger.Error("Server shutdown error", zap.Error(err))
	}
}
