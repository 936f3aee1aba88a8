package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/flashmind/flashmind-backend/internal/config"
	"github.com/flashmind/flashmind-backend/internal/handler"
	"github.com/flashmind/flashmind-backend/internal/middleware"
	"github.com/flashmind/flashmind-backend/internal/response"
	"github.com/flashmind/flashmind-backend/internal/service"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth      *handler.AuthHandler
	Quiz      *handler.QuizHandler
	Student   *handler.StudentHandler
	Professor *handler.ProfessorHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(
	authService *service.AuthService,
	handlers *Handlers,
	cfg *config.Config,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	// ─── Auth (rate limited) ───────────────────────────────────────────
	// The mail-sending and credential routes share one bucket per IP.
	authLimiter := middleware.NewRateLimiter(20, time.Minute)
	auth := router.Group("/api/auth")
	auth.Use(authLimiter.Middleware())
	{
		auth.POST("/signup", handlers.Auth.Signup)
		auth.POST("/login", handlers.Auth.Login)
		auth.GET("/verify-email", handlers.Auth.VerifyEmail)
		auth.POST("/resend-verification", handlers.Auth.ResendVerification)
		auth.GET("/check-email-verified", handlers.Auth.CheckEmailVerified)
		auth.POST("/refresh-token", handlers.Auth.RefreshToken)
		auth.POST("/forgot-password", handlers.Auth.ForgotPassword)
		auth.GET("/validate-reset-token", handlers.Auth.ValidateResetToken)
		auth.POST("/reset-password", handlers.Auth.ResetPassword)

		auth.POST("/logout", middleware.RequireJWT(authService), handlers.Auth.Logout)
	}

	// ─── Quiz catalog (public browse, authenticated submit) ────────────
	quizzes := router.Group("/api/quizzes")
	{
		quizzes.GET("/public", handlers.Quiz.ListPublic)
		quizzes.GET("/code/:code", handlers.Quiz.GetByCode)
		quizzes.GET("/:id", handlers.Quiz.GetByID)
		quizzes.GET("/:id/questions", handlers.Quiz.GetQuestions)

		quizzes.POST("/:id/submit", middleware.RequireStudentJWT(authService), handlers.Quiz.Submit)
	}

	// ─── Student portal ────────────────────────────────────────────────
	student := router.Group("/api/student")
	student.Use(middleware.RequireStudentJWT(authService))
	{
		student.GET("/profile", handlers.Student.GetProfile)
		student.PUT("/profile", handlers.Student.UpdateProfile)
		student.GET("/stats", handlers.Student.GetStats)
		student.GET("/history", handlers.Student.GetHistory)
		student.GET("/participation/:id", handlers.Student.GetParticipation)
		student.GET("/leaderboard", handlers.Student.GetLeaderboard)
		student.GET("/most-active", handlers.Student.GetMostActive)
		student.GET("/recommended-quizzes", handlers.Student.GetRecommended)
		student.GET("/quiz/:id/can-participate", handlers.Student.CanParticipate)
	}

	// ─── Professor portal ──────────────────────────────────────────────
	professor := router.Group("/api/professor")
	professor.Use(middleware.RequireProfessorJWT(authService))
	{
		professor.POST("/quizzes", handlers.Professor.CreateQuiz)
		professor.GET("/quizzes", handlers.Professor.ListQuizzes)
		professor.GET("/quizzes/:id/participations", handlers.Professor.ListParticipations)
		professor.DELETE("/quizzes/:id", handlers.Professor.DeleteQuiz)
	}

	return router
}
