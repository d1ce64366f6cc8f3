package routes

import (
	"eduledger/backend/config"
	"eduledger/backend/controllers"
	"eduledger/backend/middleware"
	"eduledger/backend/services"
	"eduledger/backend/storage"

	"github.com/gofiber/fiber/v2"
)

func SetupRoutes(app *fiber.App, store storage.Backend, cfg *config.Config) {
	recorder := services.NewRecorder(store)
	aggregator := services.NewAggregator(store, cfg.TotalCourses)

	authMiddleware := middleware.AuthMiddleware(cfg)
	adminMiddleware := middleware.AdminMiddleware()

	// Auth routes
	authController := controllers.NewAuthController(store, recorder, cfg)
	app.Post("/api/auth/register", authController.Register)
	app.Post("/api/auth/login", authController.Login)
	app.Post("/api/auth/logout", authMiddleware, authController.Logout)

	// Progress routes
	progressController := controllers.NewProgressController(recorder, cfg)
	progress := app.Group("/api/progress", authMiddleware)
	progress.Post("/lessons", progressController.CompleteLesson)
	progress.Post("/exercises", progressController.CompleteExercise)
	progress.Post("/views", progressController.ViewContent)

	// Statistics routes
	statsController := controllers.NewStatsController(aggregator, cfg)
	stats := app.Group("/api/stats", authMiddleware)
	stats.Get("/me", statsController.GetMyStats)
	stats.Get("/users/:username", statsController.GetUserStats)
	stats.Get("/fleet", adminMiddleware, statsController.GetFleetStats)
}
