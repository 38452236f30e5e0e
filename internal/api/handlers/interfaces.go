package handlers

import "github.com/gin-gonic/gin"

// JobHandlerInterface defines the methods needed by the job routes.
type JobHandlerInterface interface {
	NextStatuses(c *gin.Context)
	ChangeStatus(c *gin.Context)
}

// QuoteHandlerInterface defines the methods needed by the quote routes.
type QuoteHandlerInterface interface {
	ApplyAction(c *gin.Context)
}

// AdminHandlerInterface defines the methods needed by the admin routes.
type AdminHandlerInterface interface {
	RunOverdueSweep(c *gin.Context)
}

// Ensure handlers implement the interfaces (compile-time check)
var (
	_ JobHandlerInterface   = (*JobHandler)(nil)
	_ QuoteHandlerInterface = (*QuoteHandler)(nil)
	_ AdminHandlerInterface = (*AdminHandler)(nil)
)
