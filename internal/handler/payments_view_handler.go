package handler

import (
	"net/http"
	"strconv"

	"photohunt/internal/reconcile"
	"photohunt/internal/service"

	"github.com/gin-gonic/gin"
)

type PaymentsViewHandler struct {
	paymentService *service.PaymentService
}

func NewPaymentsViewHandler(paymentService *service.PaymentService) *PaymentsViewHandler {
	return &PaymentsViewHandler{paymentService: paymentService}
}

// View returns the merged payments view. Query params: event_id scopes to
// one event (0 or absent means all), filter is all|completed|pending.
func (h *PaymentsViewHandler) View(c *gin.Context) {
	var eventID uint
	if raw := c.Query("event_id"); raw != "" {
		parsed, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid event_id"})
			return
		}
		eventID = uint(parsed)
	}
	filter := reconcile.ParseFilter(c.Query("filter"))

	view, err := h.paymentService.View(eventID, filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to build payments view"})
		return
	}
	c.JSON(http.StatusOK, view)
}
