package payment

import (
	"errors"
	"io"
	"net/http"

	"petcare/internal/domain"
	"petcare/internal/gateway"
	"petcare/internal/pkg/response"
	"petcare/internal/pkg/validator"

	"github.com/gin-gonic/gin"
)

const maxWebhookBody = 64 << 10

type Handler struct {
	service *Service
	loggerf func(format string, args ...interface{})
}

func NewHandler(service *Service, loggerf func(format string, args ...interface{})) *Handler {
	if loggerf == nil {
		loggerf = func(string, ...interface{}) {}
	}
	return &Handler{service: service, loggerf: loggerf}
}

func (h *Handler) RegisterProtectedRoutes(rg *gin.RouterGroup) {
	rg.POST("/payments/preference", h.CreatePreference)
	rg.POST("/payments/process", h.ProcessPayment)
	rg.GET("/payments/:paymentId", h.GetPayment)
}

func (h *Handler) RegisterPublicRoutes(rg *gin.RouterGroup) {
	rg.GET("/payments/public-key/:country", h.GetPublicKey)
	rg.POST("/payments/webhook", h.Webhook)
}

// CreatePreference godoc
// @Summary      Create hosted checkout preference
// @Description  Creates a gateway checkout preference for a booking and returns the checkout URL
// @Tags         Payments
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        body body CreatePreferenceRequest true "Booking to pay"
// @Success      200 {object} CreatePreferenceResponse
// @Failure      400 {object} response.ErrorBody
// @Failure      404 {object} response.ErrorBody
// @Failure      504 {object} response.ErrorBody
// @Router       /payments/preference [post]
func (h *Handler) CreatePreference(c *gin.Context) {
	var req CreatePreferenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	resp, err := h.service.CreatePreference(c.Request.Context(), req)
	if err != nil {
		h.loggerf("level=error msg=create preference failed booking_id=%s user_id=%s err=%v", req.BookingID, c.GetString("user_id"), err)
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ProcessPayment godoc
// @Summary      Process direct payment
// @Description  Charges a tokenized card through the gateway and records the ledger entry
// @Tags         Payments
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        body body ProcessPaymentRequest true "Payment payload"
// @Param        X-Idempotency-Key header string false "Reused by client retries of the same charge"
// @Success      200 {object} PaymentResponse
// @Failure      400 {object} response.ErrorBody
// @Failure      404 {object} response.ErrorBody
// @Failure      504 {object} response.ErrorBody
// @Router       /payments/process [post]
func (h *Handler) ProcessPayment(c *gin.Context) {
	var req ProcessPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	req.IdempotencyKey = c.GetHeader("X-Idempotency-Key")
	resp, err := h.service.ProcessPayment(c.Request.Context(), req)
	if err != nil {
		h.loggerf("level=error msg=process payment failed booking_id=%s user_id=%s err=%v", req.BookingID, c.GetString("user_id"), err)
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GetPayment godoc
// @Summary      Get gateway payment
// @Description  Returns the payment object exactly as the gateway reports it
// @Tags         Payments
// @Security     BearerAuth
// @Produce      json
// @Param        paymentId path string true "Gateway payment id"
// @Param        country query string false "Country code (AR, CO)"
// @Success      200 {object} object
// @Failure      400 {object} response.ErrorBody
// @Failure      404 {object} response.ErrorBody
// @Router       /payments/{paymentId} [get]
func (h *Handler) GetPayment(c *gin.Context) {
	raw, err := h.service.GetGatewayPayment(c.Request.Context(), c.Param("paymentId"), c.Query("country"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", raw)
}

// GetPublicKey godoc
// @Summary      Get gateway public key
// @Description  Returns the public key used for client-side card tokenization
// @Tags         Payments
// @Produce      json
// @Param        country path string true "Country code (AR, CO)"
// @Success      200 {object} PublicKeyResponse
// @Failure      400 {object} response.ErrorBody
// @Router       /payments/public-key/{country} [get]
func (h *Handler) GetPublicKey(c *gin.Context) {
	resp, err := h.service.PublicKey(c.Param("country"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Webhook godoc
// @Summary      Gateway notification
// @Description  Reconciles booking and ledger state. Always answers 200 so the gateway does not retry application errors
// @Tags         Payments
// @Accept       json
// @Produce      json
// @Success      200 {object} WebhookResponse
// @Router       /payments/webhook [post]
func (h *Handler) Webhook(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		h.loggerf("level=error msg=webhook body read failed err=%v", err)
		c.JSON(http.StatusOK, WebhookResponse{Status: "error", Message: "unreadable body"})
		return
	}

	outcome, err := h.service.HandleNotification(c.Request.Context(), WebhookInput{
		Body:      body,
		Query:     c.Request.URL.Query(),
		Signature: c.GetHeader("x-signature"),
		RequestID: c.GetHeader("x-request-id"),
	})
	if err != nil {
		h.loggerf("level=warn msg=webhook not applied outcome=%s err=%v", outcome, err)
		c.JSON(http.StatusOK, WebhookResponse{Status: "error", Message: err.Error()})
		return
	}
	c.JSON(http.StatusOK, WebhookResponse{Status: "ok"})
}

func (h *Handler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, gateway.ErrTimeout):
		response.Error(c, http.StatusGatewayTimeout, "GATEWAY_TIMEOUT", "payment gateway did not answer in time")
	case domain.IsNotFound(err):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", err.Error())
	case domain.IsBadRequest(err):
		response.Error(c, http.StatusBadRequest, "BAD_REQUEST", err.Error())
	default:
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "internal error")
	}
}

func bindError(c *gin.Context, err error) {
	if fields := validator.Fields(err); fields != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid request", fields)
		return
	}
	response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
}
