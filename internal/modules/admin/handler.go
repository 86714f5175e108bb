package admin

import (
	"net/http"
	"strconv"

	"petcare/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(admin *gin.RouterGroup) {
	admin.GET("/webhook-events", h.GetWebhookEvents)
}

// GetWebhookEvents godoc
// @Summary      Webhook journal
// @Description  Notifications for one payment, or the newest ones that were not applied
// @Tags         Admin
// @Security     BearerAuth
// @Produce      json
// @Param        resourceId query string false "Gateway payment id"
// @Param        limit query int false "Max events when listing unsettled ones" default(100)
// @Success      200 {object} object
// @Failure      403 {object} response.ErrorBody
// @Router       /admin/webhook-events [get]
func (h *Handler) GetWebhookEvents(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	events, err := h.service.WebhookEvents(c.Request.Context(), c.Query("resourceId"), limit)
	if err != nil {
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load webhook events")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"events": events})
}
