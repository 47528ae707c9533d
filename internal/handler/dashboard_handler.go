package handler

import (
	"net/http"

	"solarflow/internal/dashboard"

	"github.com/gin-gonic/gin"
)

type DashboardHandler struct {
	dashboard dashboard.Service
}

func NewDashboardHandler(dashboardService dashboard.Service) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboardService}
}

func (h *DashboardHandler) RegisterRoutes(router *gin.RouterGroup, auth gin.HandlerFunc) {
	router.GET("/dashboard/metrics", auth, h.Metrics)
	router.GET("/reports/overview", auth, h.Overview)
}

// Metrics handles GET /dashboard/metrics
// @Summary      Dashboard metrics
// @Description  Recomputed from current state on every call. Agents see figures for their own clients and tasks.
// @Tags         dashboard
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  model.DashboardMetrics
// @Failure      401  {object}  response.Response
// @Router       /api/dashboard/metrics [get]
func (h *DashboardHandler) Metrics(c *gin.Context) {
	metrics, err := h.dashboard.Metrics(c.Request.Context(), caller(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, metrics)
}

// Overview handles GET /reports/overview
// @Summary      Reports overview
// @Tags         reports
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  model.ReportOverview
// @Router       /api/reports/overview [get]
func (h *DashboardHandler) Overview(c *gin.Context) {
	overview, err := h.dashboard.Overview(c.Request.Context(), caller(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, overview)
}
