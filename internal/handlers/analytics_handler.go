package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"quicktask/internal/services"
)

type AnalyticsHandler struct {
	service services.AnalyticsService
}

func NewAnalyticsHandler(service services.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{service: service}
}

// @Summary  Статистика продуктивности
// @Tags     Analytics
// @Produce  json
// @Security BearerAuth
// @Success  200  {object}  models.TaskStats
// @Router   /api/analytics/stats [get]
func (h *AnalyticsHandler) Stats(c *gin.Context) {
	stats, err := h.service.Stats(c.Request.Context(), getUserID(c))
	if err != nil {
		respondError(c, "[analytics][stats]", err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// @Summary  Завершённые задачи по дням
// @Tags     Analytics
// @Produce  json
// @Security BearerAuth
// @Param    days  query     int  false  "1..30, по умолчанию 7"
// @Success  200   {array}   models.TrendPoint
// @Failure  400   {object}  map[string]string
// @Router   /api/analytics/trends [get]
func (h *AnalyticsHandler) Trends(c *gin.Context) {
	days := services.DefaultTrendDays
	if v := c.Query("days"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "days must be an integer"})
			return
		}
		days = n
	}
	points, err := h.service.Trends(c.Request.Context(), getUserID(c), days)
	if err != nil {
		respondError(c, "[analytics][trends]", err)
		return
	}
	c.JSON(http.StatusOK, points)
}
