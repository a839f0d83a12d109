package handlers

import (
	"net/http"

	"ticketing-svc/models"
	"ticketing-svc/paystack"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

type PaymentHandler struct {
	client *paystack.Client
	logger *zap.Logger
}

func NewPaymentHandler(client *paystack.Client, logger *zap.Logger) *PaymentHandler {
	return &PaymentHandler{client: client, logger: logger}
}

// InitializePayment proxies to Paystack's transaction initialization.
// The cart and purchaser name go out as metadata so the webhook gets
// them back without this service holding any pre-payment state.
func (h *PaymentHandler) InitializePayment(c *gin.Context) {
	ctx, span := otel.Tracer("ticketing-service").Start(c.Request.Context(), "InitializePayment")
	defer span.End()

	var req models.InitializePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	span.SetAttributes(
		attribute.String("email", req.Email),
		attribute.Int64("amount", req.Amount),
		attribute.Int("cart.lines", len(req.Cart)),
	)

	resp, err := h.client.InitializeTransaction(ctx, req)
	if err != nil {
		span.RecordError(err)
		h.logger.Error("Payment initialization failed", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "Payment provider unavailable"})
		return
	}

	c.JSON(http.StatusOK, resp)
}
