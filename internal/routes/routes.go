package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"quicktask/internal/handlers"
	"quicktask/internal/middleware"
	"quicktask/internal/services"
)

type Handlers struct {
	Auth      *handlers.AuthHandler
	Tasks     *handlers.TaskHandler
	Export    *handlers.ExportHandler
	Analytics *handlers.AnalyticsHandler
}

func SetupRoutes(r *gin.Engine, authService services.AuthService, users middleware.UserLookup, h Handlers) *gin.Engine {
	// ---- public
	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "QuickTask API is running"})
	})
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := r.Group("/api")
	api.POST("/auth/register", h.Auth.Register)
	api.POST("/auth/login", h.Auth.Login)

	// ---- protected
	protected := api.Group("", middleware.AuthMiddleware(authService, users))

	protected.GET("/auth/me", h.Auth.Me)

	// TASKS; статические пути раньше /:id
	tasks := protected.Group("/tasks")
	{
		tasks.GET("/dashboard/summary", h.Tasks.Summary)
		tasks.GET("/notifications", h.Tasks.Notifications)
		tasks.GET("", h.Tasks.GetAll)
		tasks.POST("", h.Tasks.Create)
		tasks.GET("/:id", h.Tasks.GetByID)
		tasks.PUT("/:id", h.Tasks.Update)
		tasks.PATCH("/:id/status", h.Tasks.ChangeStatus)
		tasks.DELETE("/:id", h.Tasks.Delete)
	}

	export := protected.Group("/export")
	{
		export.GET("/csv", h.Export.CSV)
		export.GET("/pdf", h.Export.PDF)
	}

	analytics := protected.Group("/analytics")
	{
		analytics.GET("/stats", h.Analytics.Stats)
		analytics.GET("/trends", h.Analytics.Trends)
	}

	return r
}
