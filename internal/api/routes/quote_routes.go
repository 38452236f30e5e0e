package routes

import (
	"repairdesk/internal/api/handlers"

	"github.com/gin-gonic/gin"
)

// RegisterQuoteRoutes registers the quote decision route behind authentication.
func RegisterQuoteRoutes(rg *gin.RouterGroup, quoteHandler handlers.QuoteHandlerInterface, authMiddleware gin.HandlerFunc) {
	quotes := rg.Group("/quotes")
	quotes.Use(authMiddleware)
	quotes.POST("/:id/actions", quoteHandler.ApplyAction)
}
