package handler

import (
	"net/http"

	"solarflow/internal/service"

	"github.com/gin-gonic/gin"
)

type ApprovalHandler struct {
	approvalService service.ApprovalService
}

func NewApprovalHandler(approvalService service.ApprovalService) *ApprovalHandler {
	return &ApprovalHandler{approvalService: approvalService}
}

func (h *ApprovalHandler) RegisterRoutes(router *gin.RouterGroup, auth gin.HandlerFunc) {
	group := router.Group("/approvals", auth)
	{
		group.GET("", h.List)
		group.GET("/:id", h.Get)
		group.POST("", h.Create)
		group.PUT("/:id", h.Update)
	}
}

// List handles GET /approvals
// @Summary      List approvals
// @Tags         approvals
// @Security     BearerAuth
// @Produce      json
// @Param        clientId  query     string  false  "Only approvals of this client"
// @Success      200       {array}   model.Approval
// @Failure      400       {object}  response.Response
// @Router       /api/approvals [get]
func (h *ApprovalHandler) List(c *gin.Context) {
	clientID, ok := queryID(c, "clientId")
	if !ok {
		return
	}
	approvals, err := h.approvalService.List(c.Request.Context(), caller(c), clientID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, approvals)
}

// Get handles GET /approvals/:id
// @Summary      Get approval
// @Tags         approvals
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Approval ID"
// @Success      200  {object}  model.Approval
// @Failure      404  {object}  response.Response
// @Router       /api/approvals/{id} [get]
func (h *ApprovalHandler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	approval, err := h.approvalService.Get(c.Request.Context(), caller(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, approval)
}

// Create handles POST /approvals
// @Summary      Create approval
// @Description  Records a client's position on one pipeline step. 400 when the client does not exist.
// @Tags         approvals
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreateApprovalRequest  true  "Approval"
// @Success      201      {object}  model.Approval
// @Failure      400      {object}  response.Response
// @Router       /api/approvals [post]
func (h *ApprovalHandler) Create(c *gin.Context) {
	var req service.CreateApprovalRequest
	if !bindJSON(c, &req) {
		return
	}
	approval, err := h.approvalService.Create(c.Request.Context(), caller(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, approval)
}

// Update handles PUT /approvals/:id
// @Summary      Update approval
// @Tags         approvals
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                         true  "Approval ID"
// @Param        payload  body      service.UpdateApprovalRequest  true  "Fields to change"
// @Success      200      {object}  model.Approval
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /api/approvals/{id} [put]
func (h *ApprovalHandler) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req service.UpdateApprovalRequest
	if !bindJSON(c, &req) {
		return
	}
	approval, err := h.approvalService.Update(c.Request.Context(), caller(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, approval)
}
