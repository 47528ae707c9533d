// Package app assembles repositories, services and handlers into the gin engine.
package app

import (
	"log/slog"
	"net/http"
	"time"

	_ "solarflow/api/swagger" // swagger docs
	"solarflow/internal/config"
	"solarflow/internal/dashboard"
	"solarflow/internal/handler"
	"solarflow/internal/middleware"
	"solarflow/internal/observability"
	"solarflow/internal/repository"
	"solarflow/internal/resolver"
	"solarflow/internal/service"
	"solarflow/internal/session"
	"solarflow/internal/websocket"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"
)

// Deps are the process-wide singletons built once in main
type Deps struct {
	Config   *config.Config
	DB       *gorm.DB
	Sessions *session.Manager
	Hub      *websocket.Hub
	Logger   *slog.Logger
	Now      func() time.Time
}

// NewRouter wires Repository -> Service -> Handler and mounts every route
func NewRouter(d Deps) *gin.Engine {
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	if d.Hub == nil {
		d.Hub = websocket.NewHub(d.Logger)
	}
	handler.RegisterValidators()

	// Repositories
	userRepo := repository.NewUserRepository(d.DB)
	tokenRepo := repository.NewRefreshTokenRepository(d.DB)
	clientRepo := repository.NewClientRepository(d.DB)
	approvalRepo := repository.NewApprovalRepository(d.DB)
	taskRepo := repository.NewTaskRepository(d.DB)
	inventoryRepo := repository.NewInventoryRepository(d.DB)
	stockRequestRepo := repository.NewStockRequestRepository(d.DB)
	invoiceRepo := repository.NewInvoiceRepository(d.DB)
	auditRepo := repository.NewAuditRepository(d.DB)
	txManager := repository.NewTransactionManager(d.DB)

	res := resolver.New(userRepo, clientRepo, approvalRepo, taskRepo, inventoryRepo, invoiceRepo, d.Logger)

	// Services
	userService := service.NewUserService(userRepo, tokenRepo, auditRepo, txManager, d.Sessions, d.Hub)
	clientService := service.NewClientService(clientRepo, userRepo, res, auditRepo, txManager, d.Hub)
	approvalService := service.NewApprovalService(approvalRepo, clientRepo, auditRepo, txManager, d.Hub)
	taskService := service.NewTaskService(taskRepo, clientRepo, userRepo, res, auditRepo, txManager, d.Hub)
	inventoryService := service.NewInventoryService(inventoryRepo, auditRepo, txManager, d.Hub)
	stockRequestService := service.NewStockRequestService(stockRequestRepo, inventoryRepo, userRepo, res, auditRepo, txManager, d.Hub)
	invoiceService := service.NewInvoiceService(invoiceRepo, clientRepo, inventoryRepo, res, auditRepo, txManager, d.Hub)
	auditService := service.NewAuditService(auditRepo)
	dashboardService := dashboard.NewService(clientRepo, taskRepo, approvalRepo, inventoryRepo, invoiceRepo, res, d.Now)

	cookies := middleware.Cookies{
		Secure:     d.Config.IsRelease(),
		AccessTTL:  d.Sessions.AccessTTL(),
		RefreshTTL: d.Sessions.RefreshTTL(),
	}

	router := gin.New()
	if d.Config.IsRelease() {
		router.Use(middleware.RequestLogger(d.Logger))
	} else {
		router.Use(gin.Logger())
	}
	router.Use(gin.Recovery(), middleware.Metrics())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = d.Config.CORSOrigins
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	router.Use(cors.New(corsConfig))

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	router.GET("/metrics", gin.WrapH(observability.Handler()))
	router.GET("/ws", func(c *gin.Context) {
		websocket.ServeWs(d.Hub, c, d.Sessions)
	})

	api := router.Group("/api")
	api.GET("/health", health)

	auth := middleware.Authenticate(d.Sessions)
	handler.NewUserHandler(userService, cookies).RegisterRoutes(api, auth)
	handler.NewDashboardHandler(dashboardService).RegisterRoutes(api, auth)
	handler.NewClientHandler(clientService).RegisterRoutes(api, auth)
	handler.NewApprovalHandler(approvalService).RegisterRoutes(api, auth)
	handler.NewTaskHandler(taskService).RegisterRoutes(api, auth)
	handler.NewInventoryHandler(inventoryService, stockRequestService).RegisterRoutes(api, auth)
	handler.NewInvoiceHandler(invoiceService).RegisterRoutes(api, auth)
	handler.NewAuditHandler(auditService).RegisterRoutes(api, auth)

	return router
}

// health godoc
// @Summary  Health check
// @Tags     health
// @Produce  json
// @Success  200  {object}  map[string]string
// @Router   /api/health [get]
func health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
