package routes

import (
	"log"

	"project/backend/config"
	"project/backend/controllers"
	"project/backend/middleware"
	"project/backend/store"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func SetupRoutes(app *fiber.App, db *gorm.DB, cfg *config.Config, logger *log.Logger) {
	sessions := controllers.NewSessionManager(store.NewGormStore(db), logger)

	// Auth routes
	authController := controllers.NewAuthController(db, cfg)
	app.Post("/api/auth/register", authController.Register)
	app.Post("/api/auth/login", authController.Login)

	authMiddleware := middleware.AuthMiddleware(cfg)
	adminMiddleware := middleware.AdminMiddleware(db, cfg)

	app.Get("/api/user/profile", authMiddleware, authController.GetProfile)

	// Learner routes
	subjectsController := controllers.NewSubjectsController(db, cfg, sessions)
	subjects := app.Group("/api/subjects", authMiddleware)
	subjects.Get("/", subjectsController.GetSubjects)
	subjects.Get("/:id/tree", subjectsController.GetCourseTree)
	subjects.Post("/:id/tree/refresh", subjectsController.RefreshCourseTree)
	subjects.Post("/:id/select", subjectsController.SelectItem)
	subjects.Get("/:id/lessons/:lessonId", subjectsController.GetLesson)
	subjects.Post("/:id/lessons/:lessonId/video-progress", subjectsController.ReportVideoProgress)
	subjects.Get("/:id/quizzes/:quizId", subjectsController.GetQuiz)
	subjects.Post("/:id/quizzes/:quizId/submit", subjectsController.SubmitQuiz)
	subjects.Get("/:id/quizzes/:quizId/attempts", subjectsController.GetAttempts)

	// Admin routes for course structure
	authoringController := controllers.NewAuthoringController(db, cfg)
	admin := app.Group("/api/admin/subjects", authMiddleware, adminMiddleware)
	admin.Post("/", authoringController.CreateSubject)
	admin.Post("/:id/lessons", authoringController.AddLesson)
	admin.Post("/:id/quizzes", authoringController.CreateQuiz)
	admin.Put("/:id/tests", authoringController.SetSubjectTests)
}
