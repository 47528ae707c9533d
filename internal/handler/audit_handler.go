package handler

import (
	"net/http"

	"solarflow/internal/middleware"
	"solarflow/internal/model"
	"solarflow/internal/repository"
	"solarflow/internal/service"
	"solarflow/pkg/pagination"
	"solarflow/pkg/response"

	"github.com/gin-gonic/gin"
)

type AuditHandler struct {
	auditService service.AuditService
}

func NewAuditHandler(auditService service.AuditService) *AuditHandler {
	return &AuditHandler{auditService: auditService}
}

func (h *AuditHandler) RegisterRoutes(router *gin.RouterGroup, auth gin.HandlerFunc) {
	group := router.Group("/audit-logs", auth, middleware.RequireRole(model.RoleAdmin))
	{
		group.GET("", h.List)
	}
}

// List returns one page of the mutation history, newest first
// @Summary      Get audit logs
// @Description  Every create and update is recorded with the acting user. Admin only.
// @Tags         audit
// @Security     BearerAuth
// @Produce      json
// @Param        action    query     string  false  "Only entries with this action, e.g. CREATE_CLIENT"
// @Param        entityId  query     string  false  "Only entries about this entity"
// @Param        page      query     int     false  "Page number (default 1)"
// @Param        limit     query     int     false  "Items per page (default 20, max 100)"
// @Success      200    {object}  response.Page{data=[]service.AuditLogResponse}
// @Failure      403    {object}  response.Response
// @Router       /api/audit-logs [get]
func (h *AuditHandler) List(c *gin.Context) {
	params := pagination.Parse(c)
	filter := repository.AuditFilter{
		Action:   c.Query("action"),
		EntityID: c.Query("entityId"),
	}

	logs, total, err := h.auditService.List(c.Request.Context(), caller(c), filter, params.Page, params.Limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Paginate(logs, params.Page, params.Limit, total))
}
