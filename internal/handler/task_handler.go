package handler

import (
	"net/http"

	"solarflow/internal/service"

	"github.com/gin-gonic/gin"
)

type TaskHandler struct {
	taskService service.TaskService
}

func NewTaskHandler(taskService service.TaskService) *TaskHandler {
	return &TaskHandler{taskService: taskService}
}

func (h *TaskHandler) RegisterRoutes(router *gin.RouterGroup, auth gin.HandlerFunc) {
	group := router.Group("/tasks", auth)
	{
		group.GET("", h.List)
		group.GET("/:id", h.Get)
		group.POST("", h.Create)
		group.PUT("/:id", h.Update)
	}
}

// List handles GET /tasks
// @Summary      List tasks
// @Description  Tasks with their client and agent. Tasks whose client or agent is missing are left out. Agents only see their own tasks.
// @Tags         tasks
// @Security     BearerAuth
// @Produce      json
// @Param        clientId  query     string  false  "Only tasks of this client"
// @Success      200       {array}   model.TaskWithClient
// @Router       /api/tasks [get]
func (h *TaskHandler) List(c *gin.Context) {
	clientID, ok := queryID(c, "clientId")
	if !ok {
		return
	}
	tasks, err := h.taskService.List(c.Request.Context(), caller(c), clientID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tasks)
}

// Get handles GET /tasks/:id
// @Summary      Get task
// @Tags         tasks
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Task ID"
// @Success      200  {object}  model.Task
// @Failure      404  {object}  response.Response
// @Router       /api/tasks/{id} [get]
func (h *TaskHandler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	task, err := h.taskService.Get(c.Request.Context(), caller(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// Create handles POST /tasks
// @Summary      Create task
// @Description  assignedAgentId defaults to the caller.
// @Tags         tasks
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreateTaskRequest  true  "Task"
// @Success      201      {object}  model.Task
// @Failure      400      {object}  response.Response
// @Router       /api/tasks [post]
func (h *TaskHandler) Create(c *gin.Context) {
	var req service.CreateTaskRequest
	if !bindJSON(c, &req) {
		return
	}
	task, err := h.taskService.Create(c.Request.Context(), caller(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, task)
}

// Update handles PUT /tasks/:id
// @Summary      Update task
// @Tags         tasks
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                     true  "Task ID"
// @Param        payload  body      service.UpdateTaskRequest  true  "Fields to change"
// @Success      200      {object}  model.Task
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /api/tasks/{id} [put]
func (h *TaskHandler) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req service.UpdateTaskRequest
	if !bindJSON(c, &req) {
		return
	}
	task, err := h.taskService.Update(c.Request.Context(), caller(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}
