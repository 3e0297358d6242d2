package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/quizdash/quiz-service/internal/middleware"
	"github.com/quizdash/quiz-service/internal/services"
	"github.com/quizdash/quiz-service/internal/utils"
)

// AdminHandler serves set management, statistics and report downloads.
type AdminHandler struct {
	BaseHandler
	sets     services.SetService
	activity services.ActivityService
	exports  services.ExportService
}

func NewAdminHandler(
	sets services.SetService,
	activity services.ActivityService,
	exports services.ExportService,
	logger utils.Logger,
) *AdminHandler {
	return &AdminHandler{
		BaseHandler: NewBaseHandler(logger),
		sets:        sets,
		activity:    activity,
		exports:     exports,
	}
}

// CreateSet POST /api/v1/admin/sets
func (h *AdminHandler) CreateSet(c *gin.Context) {
	var req services.CreateSetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "invalid request body")
		return
	}

	adminID := middleware.CurrentUserID(c)
	detail, err := h.sets.CreateSet(c.Request.Context(), adminID, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, detail)
}

// ListSets GET /api/v1/admin/sets?from=&to=
func (h *AdminHandler) ListSets(c *gin.Context) {
	from, ok := parseDateQuery(c, "from")
	if !ok {
		h.badRequest(c, "from must be a date in 2006-01-02 format")
		return
	}
	to, ok := parseDateQuery(c, "to")
	if !ok {
		h.badRequest(c, "to must be a date in 2006-01-02 format")
		return
	}

	sets, err := h.sets.ListSets(c.Request.Context(), from, to)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sets": sets})
}

// GetSet GET /api/v1/admin/sets/:id
func (h *AdminHandler) GetSet(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		h.badRequest(c, "set id must be a positive integer")
		return
	}

	detail, err := h.sets.GetSet(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

// UpdateSet PUT /api/v1/admin/sets/:id
func (h *AdminHandler) UpdateSet(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		h.badRequest(c, "set id must be a positive integer")
		return
	}

	var req services.UpdateSetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "invalid request body")
		return
	}

	adminID := middleware.CurrentUserID(c)
	detail, err := h.sets.UpdateSet(c.Request.Context(), adminID, id, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

// DeleteSet DELETE /api/v1/admin/sets/:id
func (h *AdminHandler) DeleteSet(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		h.badRequest(c, "set id must be a positive integer")
		return
	}

	adminID := middleware.CurrentUserID(c)
	if err := h.sets.DeleteSet(c.Request.Context(), adminID, id); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "question set deleted"})
}

// Activity GET /api/v1/admin/stats/activity?window=daily
func (h *AdminHandler) Activity(c *gin.Context) {
	window := c.DefaultQuery("window", services.WindowWeekly)

	points, err := h.activity.Activity(c.Request.Context(), window)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"window": window, "activity": points})
}

// TotalUsers GET /api/v1/admin/stats/users
func (h *AdminHandler) TotalUsers(c *gin.Context) {
	total, err := h.activity.TotalUsers(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"total_users": total})
}

// ExportLeaderboard GET /api/v1/admin/reports/leaderboard
func (h *AdminHandler) ExportLeaderboard(c *gin.Context) {
	workbook, err := h.exports.LeaderboardXLSX(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	filename := fmt.Sprintf("leaderboard-%s.xlsx", time.Now().Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		workbook)
}
