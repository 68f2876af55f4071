package api

import (
	"clausematch/docs"
	"clausematch/internal/api/handlers"
	"clausematch/pkg/auth"
	"clausematch/pkg/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/swagger"
	"go.uber.org/zap"
)

func SetupRouter(
	authHandler *handlers.AuthHandler,
	sessionHandler *handlers.SessionHandler,
	docHandler *handlers.DocumentHandler,
	matchHandler *handlers.MatchHandler,
	chatHandler *handlers.ChatHandler,
	reportHandler *handlers.ReportHandler,
	jwtManager *auth.JWTManager,
	appLogger *zap.Logger,
) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	// Middleware
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization",
	}))
	app.Use(logger.New())

	_ = docs.SwaggerInfo // ensure docs package is imported and init() is called
	app.Get("/swagger/*", swagger.HandlerDefault)

	// Auth routes (public)
	authGroup := app.Group("/user/auth")
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)
	authGroup.Post("/refresh", authHandler.RefreshToken)

	// Protected routes
	protected := app.Group("/api/v1", middleware.AuthMiddleware(jwtManager, appLogger))

	sessions := protected.Group("/sessions")
	sessions.Post("", sessionHandler.CreateSession)
	sessions.Get("", sessionHandler.ListSessions)
	sessions.Get("/:id", sessionHandler.GetSession)
	sessions.Delete("/:id", sessionHandler.DeleteSession)

	sessions.Post("/:id/documents", docHandler.UploadDocument)
	sessions.Get("/:id/documents", docHandler.ListDocuments)
	sessions.Delete("/:id/documents/:docID", docHandler.DeleteDocument)

	sessions.Post("/:id/match", matchHandler.RunMatching)
	sessions.Get("/:id/match", matchHandler.GetResults)

	sessions.Post("/:id/chat", chatHandler.SendMessage)
	sessions.Get("/:id/chat", chatHandler.GetTranscript)
	sessions.Get("/:id/chat/prompts", chatHandler.SuggestedPrompts)

	sessions.Get("/:id/report", reportHandler.DownloadReport)

	return app
}
