package routes

import (
	"context"
	"net/http"
	"time"

	"jobportal_backend/internal/handlers"
	"jobportal_backend/internal/logger"
	"jobportal_backend/ws"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"
)

// RegisterRoutes регистрирует все HTTP и WebSocket маршруты.
// authMW закрывает /api/v1 и /ws; gatherer == nil отключает /metrics.
func RegisterRoutes(
	ginRouter *gin.Engine,
	appHandlers *handlers.AppHandlers,
	wsHandler *ws.WebSocketHandler,
	authMW gin.HandlerFunc,
	db *gorm.DB,
	gatherer prometheus.Gatherer,
) {
	ginRouter.GET("/healthz", healthHandler(db))
	if gatherer != nil {
		ginRouter.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}

	api := ginRouter.Group("/api/v1")
	api.Use(authMW)
	{
		appHandlers.ApplicationHandler.RegisterRoutes(api)
		appHandlers.InterviewHandler.RegisterRoutes(api)
		appHandlers.ChatHandler.RegisterRoutes(api)
		appHandlers.NotificationHandler.RegisterRoutes(api)
	}

	if wsHandler != nil {
		wsGroup := ginRouter.Group("/ws")
		wsGroup.Use(authMW)
		{
			wsGroup.GET("", wsHandler.ServeWS)
		}
		logger.Info("WebSocket route /ws registered")
	}
}

func healthHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if db == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"success": false, "status": "database not configured"})
			return
		}
		sqlDB, err := db.DB()
		if err == nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			err = sqlDB.PingContext(ctx)
		}
		if err != nil {
			logger.CtxWithError(c.Request.Context(), "health check failed", err)
			c.JSON(http.StatusServiceUnavailable, gin.H{"success": false, "status": "database unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "status": "ok"})
	}
}
