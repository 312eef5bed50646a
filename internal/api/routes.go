package api

import (
	"net/http"
	"os"
	"path/filepath"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/mehrbod2002/ibadmin/internal/config"
	"github.com/mehrbod2002/ibadmin/internal/middleware"
	"github.com/mehrbod2002/ibadmin/internal/service"
	"github.com/mehrbod2002/ibadmin/internal/ws"
)

type Services struct {
	Admin        service.AdminService
	Log          service.LogService
	IBRequest    service.IBRequestService
	Structure    service.StructureService
	TradingGroup service.TradingGroupService
	Symbol       service.SymbolService
	Withdrawal   service.WithdrawalService
	Commission   service.CommissionService
	Dashboard    service.DashboardService
}

func SetupRoutes(r *gin.Engine, cfg *config.Config, svc Services, wsHandler *ws.WebSocketHandler, log *zap.Logger) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader},
		AllowCredentials: true,
	}))

	adminHandler := NewAdminHandler(svc.Admin, svc.Log, cfg, log)
	logHandler := NewLogHandler(svc.Log)
	ibHandler := NewIBRequestHandler(svc.IBRequest, svc.Structure)
	structureHandler := NewStructureHandler(svc.Structure)
	groupHandler := NewTradingGroupHandler(svc.TradingGroup)
	symbolHandler := NewSymbolHandler(svc.Symbol)
	withdrawalHandler := NewWithdrawalHandler(svc.Withdrawal)
	commissionHandler := NewCommissionHandler(svc.Commission)
	dashboardHandler := NewDashboardHandler(svc.Dashboard)

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	if wd, err := os.Getwd(); err == nil {
		swaggerJSONPath := filepath.Join(wd, "docs", "swagger.json")
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/docs/swagger.json")))
		r.GET("/docs/swagger.json", func(c *gin.Context) {
			c.File(swaggerJSONPath)
		})
	}

	apiGroup := r.Group("/api")
	{
		apiGroup.POST("/admin/login", adminHandler.AdminLogin)
		apiGroup.POST("/ib-requests", middleware.OptionalUserAuthMiddleware(cfg), ibHandler.Apply)

		ib := apiGroup.Group("/ib").Use(middleware.UserAuthMiddleware(cfg))
		{
			ib.POST("/withdrawals", withdrawalHandler.Request)
		}

		admin := apiGroup.Group("/admin").Use(middleware.AdminAuthMiddleware(cfg))
		{
			admin.GET("/dashboard", dashboardHandler.Get)
			admin.GET("/logs", logHandler.GetLogs)

			admin.GET("/ib-requests", ibHandler.List)
			admin.GET("/ib-requests/structure-sets", ibHandler.ListStructureSets)
			admin.POST("/ib-requests/structure-sets", ibHandler.CreateStructureSet)
			admin.GET("/ib-requests/:id", ibHandler.Get)
			admin.PUT("/ib-requests/:id/status", ibHandler.UpdateStatus)
			admin.POST("/ib-requests/:id/sync-commission", commissionHandler.SyncCommission)
			admin.POST("/ib-requests/:id/sync-trades", commissionHandler.SyncTrades)
			admin.GET("/ib-requests/:id/commission", commissionHandler.Get)

			admin.GET("/commission-structures", structureHandler.List)
			admin.POST("/commission-structures", structureHandler.Create)
			admin.GET("/commission-structures/:id", structureHandler.Get)
			admin.PUT("/commission-structures/:id", structureHandler.Update)
			admin.DELETE("/commission-structures/:id", structureHandler.Delete)

			admin.GET("/trading-groups", groupHandler.List)
			admin.POST("/trading-groups/sync", groupHandler.Sync)

			admin.GET("/symbols-with-categories", symbolHandler.ListWithCategories)
			admin.PUT("/symbols/:id/pip", symbolHandler.UpdatePip)

			admin.GET("/withdrawals", withdrawalHandler.List)
			admin.PUT("/withdrawals/:id/status", withdrawalHandler.Review)

			admin.GET("/mt5-trades/history/:accountId", commissionHandler.TradeHistory)

			admin.GET("/ws", wsHandler.HandleConnection)
		}
	}
}
