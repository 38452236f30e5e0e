package routes

import (
	"repairdesk/internal/api/handlers"
	"repairdesk/internal/api/middleware"
	"repairdesk/internal/models"

	"github.com/gin-gonic/gin"
)

// RegisterAdminRoutes registers site-admin-only operational routes.
func RegisterAdminRoutes(rg *gin.RouterGroup, adminHandler handlers.AdminHandlerInterface, authMiddleware gin.HandlerFunc) {
	admin := rg.Group("/admin")
	admin.Use(authMiddleware, middleware.RequireRole(models.RoleSiteAdmin))
	{
		admin.POST("/sweeps/overdue", adminHandler.RunOverdueSweep)
	}
}
