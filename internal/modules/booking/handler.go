package booking

import (
	"errors"
	"net/http"

	"petcare/internal/domain"
	"petcare/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/bookings/:id/payments", h.GetPaymentSummary)
}

// GetPaymentSummary godoc
// @Summary      Booking payment state
// @Description  Payment status of a booking with every ledger entry recorded for it
// @Tags         Bookings
// @Security     BearerAuth
// @Produce      json
// @Param        id path string true "Booking id"
// @Success      200 {object} PaymentSummary
// @Failure      403 {object} response.ErrorBody
// @Failure      404 {object} response.ErrorBody
// @Router       /bookings/{id}/payments [get]
func (h *Handler) GetPaymentSummary(c *gin.Context) {
	summary, err := h.service.GetPaymentSummary(c.Request.Context(), c.Param("id"), Viewer{
		UserID: c.GetString("user_id"),
		Role:   c.GetString("role"),
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrForbidden):
			response.Error(c, http.StatusForbidden, "FORBIDDEN", "You don't have access to this booking")
		case domain.IsNotFound(err):
			response.Error(c, http.StatusNotFound, "NOT_FOUND", err.Error())
		case domain.IsBadRequest(err):
			response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		default:
			_ = c.Error(err)
			response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load booking payments")
		}
		return
	}
	c.JSON(http.StatusOK, summary)
}
