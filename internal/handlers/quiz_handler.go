package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/quizdash/quiz-service/internal/middleware"
	"github.com/quizdash/quiz-service/internal/services"
	"github.com/quizdash/quiz-service/internal/utils"
)

// QuizHandler serves the player-facing quiz flow.
type QuizHandler struct {
	BaseHandler
	sessions    services.SessionService
	leaderboard services.LeaderboardService
}

func NewQuizHandler(sessions services.SessionService, leaderboard services.LeaderboardService, logger utils.Logger) *QuizHandler {
	return &QuizHandler{
		BaseHandler: NewBaseHandler(logger),
		sessions:    sessions,
		leaderboard: leaderboard,
	}
}

// ListSets GET /api/v1/quiz/sets
func (h *QuizHandler) ListSets(c *gin.Context) {
	userID := middleware.CurrentUserID(c)

	sets, err := h.sessions.ListSets(c.Request.Context(), userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sets": sets})
}

// FetchQuestion GET /api/v1/quiz/sets/:id/questions/:index
func (h *QuizHandler) FetchQuestion(c *gin.Context) {
	setID, ok := parseUintParam(c, "id")
	if !ok {
		h.badRequest(c, "set id must be a positive integer")
		return
	}
	index, ok := parseIntParam(c, "index")
	if !ok {
		h.badRequest(c, "question index must be an integer")
		return
	}

	userID := middleware.CurrentUserID(c)
	question, err := h.sessions.FetchQuestion(c.Request.Context(), userID, setID, index)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, question)
}

// SubmitAnswer POST /api/v1/quiz/submit
func (h *QuizHandler) SubmitAnswer(c *gin.Context) {
	var req services.SubmitAnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "invalid request body")
		return
	}

	userID := middleware.CurrentUserID(c)
	result, err := h.sessions.SubmitAnswer(c.Request.Context(), userID, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// AttemptHistory GET /api/v1/quiz/attempts
func (h *QuizHandler) AttemptHistory(c *gin.Context) {
	userID := middleware.CurrentUserID(c)

	history, err := h.sessions.AttemptHistory(c.Request.Context(), userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"attempts": history})
}

// Leaderboard GET /api/v1/quiz/leaderboard
func (h *QuizHandler) Leaderboard(c *gin.Context) {
	entries, err := h.leaderboard.Leaderboard(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"leaderboard": entries})
}
