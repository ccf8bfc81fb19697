package handlers

import (
	"net/http"

	"github.com/SAP-F-2025/gradequest-service/internal/services"
	"github.com/SAP-F-2025/gradequest-service/internal/utils"
	"github.com/gin-gonic/gin"
)

type AnalyticsHandler struct {
	BaseHandler
	analyticsService services.AnalyticsService
}

func NewAnalyticsHandler(analyticsService services.AnalyticsService, logger utils.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{
		BaseHandler:      NewBaseHandler(logger),
		analyticsService: analyticsService,
	}
}

// GetSubjectAnalytics returns class statistics for one subject
// @Router /subjects/{subject}/analytics [get]
func (h *AnalyticsHandler) GetSubjectAnalytics(c *gin.Context) {
	subject, ok := ParseSubjectParam(c)
	if !ok {
		return
	}

	analytics, err := h.analyticsService.SubjectAnalytics(c.Request.Context(), subject, actorOf(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, analytics)
}

// GetDashboard returns statistics for every subject with enrolled students
// @Router /dashboard [get]
func (h *AnalyticsHandler) GetDashboard(c *gin.Context) {
	dashboard, err := h.analyticsService.Dashboard(c.Request.Context(), actorOf(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dashboard)
}
