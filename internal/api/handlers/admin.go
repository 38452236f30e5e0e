package handlers

import (
	"net/http"

	"repairdesk/internal/services"

	"github.com/gin-gonic/gin"
)

// AdminHandler exposes operational endpoints to site admins.
type AdminHandler struct {
	service services.JobWorkflowService
}

func NewAdminHandler(service services.JobWorkflowService) *AdminHandler {
	return &AdminHandler{service: service}
}

// RunOverdueSweep runs the overdue reminder sweep immediately.
//
//	POST /api/v1/admin/sweeps/overdue
func (h *AdminHandler) RunOverdueSweep(c *gin.Context) {
	if !h.service.RunOverdueSweep(c.Request.Context()) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Overdue sweep failed"})
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"status": "completed"})
}
