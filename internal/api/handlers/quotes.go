package handlers

import (
	"net/http"

	"repairdesk/internal/api/middleware"
	"repairdesk/internal/services"
	"repairdesk/internal/transport/dto"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// QuoteHandler holds dependencies for quote decisions.
type QuoteHandler struct {
	service   services.JobWorkflowService
	validator *validator.Validate
}

func NewQuoteHandler(service services.JobWorkflowService, validate *validator.Validate) *QuoteHandler {
	return &QuoteHandler{service: service, validator: validate}
}

// ApplyAction records the client's decision on a quote.
//
//	POST /api/v1/quotes/:id/actions
func (h *QuoteHandler) ApplyAction(c *gin.Context) {
	actor, err := middleware.GetActorFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	quoteID, ok := parseIDParam(c, "id", "quote")
	if !ok {
		return
	}

	var req dto.QuoteActionRequest
	if !bindAndValidate(c, h.validator, &req) {
		return
	}
	req.QuoteID = quoteID
	req.Actor = actor

	quote, err := h.service.ApplyQuoteAction(c.Request.Context(), &req)
	if err != nil {
		respondServiceError(c, err, "Quote not found")
		return
	}
	c.JSON(http.StatusOK, dto.NewQuoteResponse(quote))
}
