package handler

import (
	"net/http"

	"solarflow/internal/service"

	"github.com/gin-gonic/gin"
)

type InventoryHandler struct {
	inventoryService    service.InventoryService
	stockRequestService service.StockRequestService
}

func NewInventoryHandler(inventoryService service.InventoryService, stockRequestService service.StockRequestService) *InventoryHandler {
	return &InventoryHandler{inventoryService: inventoryService, stockRequestService: stockRequestService}
}

func (h *InventoryHandler) RegisterRoutes(router *gin.RouterGroup, auth gin.HandlerFunc) {
	inventory := router.Group("/inventory", auth)
	{
		inventory.GET("", h.List)
		inventory.GET("/:id", h.Get)
		inventory.POST("", h.Create)
		inventory.PUT("/:id", h.Update)
	}

	requests := router.Group("/stock-requests", auth)
	{
		requests.GET("", h.ListRequests)
		requests.POST("", h.CreateRequest)
		requests.PUT("/:id", h.UpdateRequest)
	}
}

// List handles GET /inventory
// @Summary      List inventory
// @Tags         inventory
// @Security     BearerAuth
// @Produce      json
// @Success      200  {array}   model.InventoryItem
// @Router       /api/inventory [get]
func (h *InventoryHandler) List(c *gin.Context) {
	items, err := h.inventoryService.List(c.Request.Context(), caller(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

// Get handles GET /inventory/:id
// @Summary      Get inventory item
// @Tags         inventory
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Item ID"
// @Success      200  {object}  model.InventoryItem
// @Failure      404  {object}  response.Response
// @Router       /api/inventory/{id} [get]
func (h *InventoryHandler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	item, err := h.inventoryService.Get(c.Request.Context(), caller(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

// Create handles POST /inventory
// @Summary      Create inventory item
// @Description  threshold defaults to 10, quantity to 0.
// @Tags         inventory
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreateInventoryRequest  true  "Item"
// @Success      201      {object}  model.InventoryItem
// @Failure      400      {object}  response.Response
// @Router       /api/inventory [post]
func (h *InventoryHandler) Create(c *gin.Context) {
	var req service.CreateInventoryRequest
	if !bindJSON(c, &req) {
		return
	}
	item, err := h.inventoryService.Create(c.Request.Context(), caller(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

// Update handles PUT /inventory/:id
// @Summary      Update inventory item
// @Tags         inventory
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                          true  "Item ID"
// @Param        payload  body      service.UpdateInventoryRequest  true  "Fields to change"
// @Success      200      {object}  model.InventoryItem
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /api/inventory/{id} [put]
func (h *InventoryHandler) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req service.UpdateInventoryRequest
	if !bindJSON(c, &req) {
		return
	}
	item, err := h.inventoryService.Update(c.Request.Context(), caller(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

// ListRequests handles GET /stock-requests
// @Summary      List stock requests
// @Description  Requests with agent, item and approver. Agents only see their own.
// @Tags         stock-requests
// @Security     BearerAuth
// @Produce      json
// @Param        status  query     string  false  "pending, approved or denied"
// @Success      200     {array}   model.StockRequestWithDetails
// @Failure      400     {object}  response.Response
// @Router       /api/stock-requests [get]
func (h *InventoryHandler) ListRequests(c *gin.Context) {
	requests, err := h.stockRequestService.List(c.Request.Context(), caller(c), c.Query("status"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, requests)
}

// CreateRequest handles POST /stock-requests
// @Summary      Create stock request
// @Description  agentId defaults to the caller; agents cannot request on behalf of others.
// @Tags         stock-requests
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreateStockRequestRequest  true  "Request"
// @Success      201      {object}  model.StockRequest
// @Failure      400      {object}  response.Response
// @Failure      403      {object}  response.Response
// @Router       /api/stock-requests [post]
func (h *InventoryHandler) CreateRequest(c *gin.Context) {
	var req service.CreateStockRequestRequest
	if !bindJSON(c, &req) {
		return
	}
	request, err := h.stockRequestService.Create(c.Request.Context(), caller(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, request)
}

// UpdateRequest handles PUT /stock-requests/:id
// @Summary      Update stock request
// @Description  Approving or denying is admin-only and stamps approvedBy. Approval deducts the quantity from inventory (409 when stock is short).
// @Tags         stock-requests
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                             true  "Request ID"
// @Param        payload  body      service.UpdateStockRequestRequest  true  "Fields to change"
// @Success      200      {object}  model.StockRequest
// @Failure      400      {object}  response.Response
// @Failure      403      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /api/stock-requests/{id} [put]
func (h *InventoryHandler) UpdateRequest(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req service.UpdateStockRequestRequest
	if !bindJSON(c, &req) {
		return
	}
	request, err := h.stockRequestService.Update(c.Request.Context(), caller(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, request)
}
