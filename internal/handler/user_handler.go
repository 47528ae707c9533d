package handler

import (
	"net/http"

	"solarflow/internal/middleware"
	"solarflow/internal/model"
	"solarflow/internal/service"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	userService service.UserService
	cookies     middleware.Cookies
}

// NewUserHandler sets up the routing dependencies for auth and User endpoints
func NewUserHandler(userService service.UserService, cookies middleware.Cookies) *UserHandler {
	return &UserHandler{userService: userService, cookies: cookies}
}

// RegisterRoutes binds the endpoints to the /api group; auth guards the protected ones
func (h *UserHandler) RegisterRoutes(router *gin.RouterGroup, auth gin.HandlerFunc) {
	router.POST("/auth/login", h.Login)
	router.POST("/auth/refresh", h.Refresh)
	router.POST("/auth/logout", auth, h.Logout)
	router.GET("/auth/me", auth, h.Me)

	users := router.Group("/users", auth, middleware.RequireRole(model.RoleAdmin))
	{
		users.GET("", h.ListAgents)
		users.POST("", h.CreateUser)
	}
}

// Login handles POST /auth/login to authenticate and return a token pair
// @Summary      Login user
// @Description  Authenticates a user by email and password. The body never contains the password hash.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.LoginRequest   true  "Login Credentials"
// @Success      200      {object}  service.LoginResponse
// @Failure      400      {object}  response.Response
// @Failure      401      {object}  response.Response
// @Router       /api/auth/login [post]
func (h *UserHandler) Login(c *gin.Context) {
	var req service.LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	res, err := h.userService.Login(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	h.cookies.Set(c, res.Token, res.RefreshToken)
	c.JSON(http.StatusOK, res)
}

// Refresh handles POST /auth/refresh, rotating the refresh token
// @Summary      Refresh tokens
// @Description  Exchanges a refresh token (body or refresh_token cookie) for a new token pair
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.RefreshRequest  false  "Refresh token"
// @Success      200      {object}  service.LoginResponse
// @Failure      401      {object}  response.Response
// @Router       /api/auth/refresh [post]
func (h *UserHandler) Refresh(c *gin.Context) {
	var req service.RefreshRequest
	_ = c.ShouldBindJSON(&req)
	if req.RefreshToken == "" {
		req.RefreshToken, _ = c.Cookie(middleware.RefreshCookie)
	}

	res, err := h.userService.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		h.cookies.Clear(c)
		respondError(c, err)
		return
	}

	h.cookies.Set(c, res.Token, res.RefreshToken)
	c.JSON(http.StatusOK, res)
}

// Logout handles POST /auth/logout
// @Summary      Logout
// @Description  Revokes the current access token and deletes the refresh token
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200      {object}  map[string]string
// @Failure      401      {object}  response.Response
// @Router       /api/auth/logout [post]
func (h *UserHandler) Logout(c *gin.Context) {
	var req service.RefreshRequest
	_ = c.ShouldBindJSON(&req)
	if req.RefreshToken == "" {
		req.RefreshToken, _ = c.Cookie(middleware.RefreshCookie)
	}

	if err := h.userService.Logout(c.Request.Context(), middleware.ClaimsFrom(c), req.RefreshToken); err != nil {
		respondError(c, err)
		return
	}

	h.cookies.Clear(c)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}

// Me handles GET /auth/me
// @Summary      Get current user
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200      {object}  model.User
// @Failure      401      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /api/auth/me [get]
func (h *UserHandler) Me(c *gin.Context) {
	user, err := h.userService.Me(c.Request.Context(), caller(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// ListAgents handles GET /users
// @Summary      List agents
// @Description  Lists users with the agent role. Admin only.
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200      {array}   service.AgentResponse
// @Failure      403      {object}  response.Response
// @Router       /api/users [get]
func (h *UserHandler) ListAgents(c *gin.Context) {
	users, err := h.userService.ListAgents(c.Request.Context(), caller(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

// CreateUser handles POST /users
// @Summary      Create a new user
// @Description  Creates an admin or agent account with a bcrypt-hashed password. Admin only.
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreateUserRequest  true  "Create User Payload"
// @Success      201      {object}  model.User
// @Failure      400      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /api/users [post]
func (h *UserHandler) CreateUser(c *gin.Context) {
	var req service.CreateUserRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.userService.CreateUser(c.Request.Context(), caller(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}
