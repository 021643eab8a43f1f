package routes

import (
	"log"

	"certilang/backend/config"
	"certilang/backend/controllers"
	"certilang/backend/middleware"
	"certilang/backend/services"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func SetupRoutes(app *fiber.App, db *gorm.DB, cfg *config.Config, logger *log.Logger) {
	settings := services.NewSettingsService(db)
	certs := services.NewCertificationService(db)
	tracker := services.NewProgressTracker(db, settings, certs, logger)
	stats := services.NewStatsService(db)
	sessions := services.NewSessionService(db, settings, tracker, stats, logger)

	// Auth routes
	authController := controllers.NewAuthController(db, cfg)
	app.Post("/api/auth/register", authController.Register)
	app.Post("/api/auth/login", authController.Login)

	// Middleware
	authMiddleware := middleware.AuthMiddleware(cfg)
	adminMiddleware := middleware.AdminMiddleware(db, cfg)

	// User routes
	userController := controllers.NewUserController(db, cfg)
	app.Get("/api/user/profile", authMiddleware, userController.GetProfile)
	app.Put("/api/user/profile", authMiddleware, userController.UpdateProfile)

	// Session routes
	sessionController := controllers.NewSessionController(db, cfg, sessions)
	sessionGroup := app.Group("/api/sessions", authMiddleware)
	sessionGroup.Get("/questions", sessionController.GetQuestions)
	sessionGroup.Post("/validate", sessionController.ValidateAnswer)
	sessionGroup.Post("/complete", sessionController.CompleteSession)
	sessionGroup.Get("/result", sessionController.GetResult)

	// Progress routes
	progressController := controllers.NewProgressController(db, cfg, tracker)
	app.Get("/api/progress", authMiddleware, progressController.GetProgress)
	app.Get("/api/progress/overview", authMiddleware, progressController.GetProgressOverview)
	app.Get("/api/progress/:level", authMiddleware, progressController.GetLevelProgress)

	// Certification routes
	certController := controllers.NewCertificationsController(db, cfg, certs)
	app.Get("/api/certifications", authMiddleware, certController.GetCertifications)
	app.Get("/api/certifications/max-level", authMiddleware, certController.GetMaxLevel)

	// Payment routes
	paymentsController := controllers.NewPaymentsController(db, cfg)
	app.Post("/api/promo/validate", authMiddleware, paymentsController.ValidatePromo)
	app.Post("/api/payments", authMiddleware, paymentsController.CreatePayment)

	// Admin routes for the question bank
	questionsController := controllers.NewQuestionsController(db, cfg)
	adminQuestions := app.Group("/api/admin/questions", authMiddleware, adminMiddleware)
	adminQuestions.Get("/", questionsController.ListQuestions)
	adminQuestions.Post("/", questionsController.CreateQuestion)
	adminQuestions.Put("/:id", questionsController.UpdateQuestion)
	adminQuestions.Delete("/:id", questionsController.DeleteQuestion)
	adminQuestions.Post("/import", questionsController.ImportCSV)
	adminQuestions.Get("/export", questionsController.ExportCSV)

	// Admin routes for settings
	settingsController := controllers.NewSettingsController(db, cfg, settings)
	adminSettings := app.Group("/api/admin/settings", authMiddleware, adminMiddleware)
	adminSettings.Get("/", settingsController.ListSettings)
	adminSettings.Put("/", settingsController.UpsertSetting)
	adminSettings.Get("/percentage/:level", settingsController.GetLevelPercentage)

	// Admin routes for analytics and back office
	analyticsController := controllers.NewAnalyticsController(db, cfg)
	admin := app.Group("/api/admin", authMiddleware, adminMiddleware)
	admin.Get("/analytics/levels", analyticsController.GetLevelAnalytics)
	admin.Get("/analytics/questions", analyticsController.GetQuestionAnalytics)
	admin.Get("/users", analyticsController.GetUsers)
	admin.Post("/promo", paymentsController.CreatePromoCode)
	admin.Get("/payments", paymentsController.ListPayments)
}
