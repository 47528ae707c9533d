package handler

import (
	"net/http"

	"solarflow/internal/service"

	"github.com/gin-gonic/gin"
)

type ClientHandler struct {
	clientService service.ClientService
}

func NewClientHandler(clientService service.ClientService) *ClientHandler {
	return &ClientHandler{clientService: clientService}
}

func (h *ClientHandler) RegisterRoutes(router *gin.RouterGroup, auth gin.HandlerFunc) {
	clients := router.Group("/clients", auth)
	{
		clients.GET("", h.List)
		clients.GET("/:id", h.Get)
		clients.POST("", h.Create)
		clients.PUT("/:id", h.Update)
	}
}

// List handles GET /clients
// @Summary      List clients
// @Description  Clients with their assigned agent, approvals and tasks. Agents only see clients assigned to them.
// @Tags         clients
// @Security     BearerAuth
// @Produce      json
// @Success      200  {array}   model.ClientWithAgent
// @Failure      401  {object}  response.Response
// @Router       /api/clients [get]
func (h *ClientHandler) List(c *gin.Context) {
	clients, err := h.clientService.List(c.Request.Context(), caller(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, clients)
}

// Get handles GET /clients/:id
// @Summary      Get client
// @Tags         clients
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Client ID"
// @Success      200  {object}  model.ClientWithAgent
// @Failure      404  {object}  response.Response
// @Router       /api/clients/{id} [get]
func (h *ClientHandler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	client, err := h.clientService.Get(c.Request.Context(), caller(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, client)
}

// Create handles POST /clients
// @Summary      Create client
// @Description  Agents creating a client without an assignee become the assignee.
// @Tags         clients
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreateClientRequest  true  "Client"
// @Success      201      {object}  model.Client
// @Failure      400      {object}  response.Response
// @Router       /api/clients [post]
func (h *ClientHandler) Create(c *gin.Context) {
	var req service.CreateClientRequest
	if !bindJSON(c, &req) {
		return
	}
	client, err := h.clientService.Create(c.Request.Context(), caller(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, client)
}

// Update handles PUT /clients/:id
// @Summary      Update client
// @Description  Partial update: only the fields present are changed.
// @Tags         clients
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                       true  "Client ID"
// @Param        payload  body      service.UpdateClientRequest  true  "Fields to change"
// @Success      200      {object}  model.Client
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /api/clients/{id} [put]
func (h *ClientHandler) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req service.UpdateClientRequest
	if !bindJSON(c, &req) {
		return
	}
	client, err := h.clientService.Update(c.Request.Context(), caller(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, client)
}
