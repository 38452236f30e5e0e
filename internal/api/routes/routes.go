package routes

import (
	"repairdesk/internal/api/handlers"
	"repairdesk/internal/api/middleware"
	"repairdesk/internal/app"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes sets up the API routes by calling resource-specific registration functions
func RegisterRoutes(router *gin.Engine, app *app.Application) {
	apiV1 := router.Group("/api/v1")

	jobHandler := handlers.NewJobHandler(app.Workflow, app.Validator)
	quoteHandler := handlers.NewQuoteHandler(app.Workflow, app.Validator)
	adminHandler := handlers.NewAdminHandler(app.Workflow)

	authMiddleware := middleware.JWTAuthMiddleware(app.Config.JWT.Secret)

	RegisterJobRoutes(apiV1, jobHandler, authMiddleware)
	RegisterQuoteRoutes(apiV1, quoteHandler, authMiddleware)
	RegisterAdminRoutes(apiV1, adminHandler, authMiddleware)

	var db handlers.Pinger
	if app.DB != nil {
		db = app.DB
	}
	router.GET("/health", handlers.HealthCheck(db))
}
