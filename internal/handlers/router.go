package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/quizdash/quiz-service/internal/middleware"
	"github.com/quizdash/quiz-service/internal/models"
	"github.com/quizdash/quiz-service/internal/repositories"
	"github.com/quizdash/quiz-service/internal/utils"
)

// HandlerManager wires handlers and middleware into the gin engine.
type HandlerManager struct {
	quiz   *QuizHandler
	admin  *AdminHandler
	auth   middleware.TokenParser
	users  repositories.UserRepository
	logger utils.Logger
}

func NewHandlerManager(
	quiz *QuizHandler,
	admin *AdminHandler,
	auth middleware.TokenParser,
	users repositories.UserRepository,
	logger utils.Logger,
) *HandlerManager {
	return &HandlerManager{
		quiz:   quiz,
		admin:  admin,
		auth:   auth,
		users:  users,
		logger: logger,
	}
}

func (m *HandlerManager) SetupRoutes(router *gin.Engine) {
	router.Use(utils.LoggerMiddleware(m.logger))
	router.Use(gin.Recovery())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api/v1")
	api.Use(middleware.Auth(m.auth, m.users, m.logger))

	quiz := api.Group("/quiz")
	{
		quiz.GET("/sets", m.quiz.ListSets)
		quiz.GET("/sets/:id/questions/:index", m.quiz.FetchQuestion)
		quiz.POST("/submit", m.quiz.SubmitAnswer)
		quiz.GET("/attempts", m.quiz.AttemptHistory)
		quiz.GET("/leaderboard", m.quiz.Leaderboard)
	}

	admin := api.Group("/admin")
	admin.Use(middleware.RequireRole(models.RoleAdmin))
	{
		admin.POST("/sets", m.admin.CreateSet)
		admin.GET("/sets", m.admin.ListSets)
		admin.GET("/sets/:id", m.admin.GetSet)
		admin.PUT("/sets/:id", m.admin.UpdateSet)
		admin.DELETE("/sets/:id", m.admin.DeleteSet)

		admin.GET("/stats/activity", m.admin.Activity)
		admin.GET("/stats/users", m.admin.TotalUsers)
		admin.GET("/reports/leaderboard", m.admin.ExportLeaderboard)
	}
}
