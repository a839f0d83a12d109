package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"ticketing-svc/fulfillment"
	"ticketing-svc/middleware"
	"ticketing-svc/models"
	"ticketing-svc/paystack"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

const signatureHeader = "x-paystack-signature"

// Paystack events are a few KB; anything near this size is not a
// legitimate delivery.
const maxWebhookBodyBytes = 1 << 20

type WebhookHandler struct {
	secret       string
	orchestrator *fulfillment.Orchestrator
	validate     *validator.Validate
	logger       *zap.Logger
}

func NewWebhookHandler(secret string, orchestrator *fulfillment.Orchestrator, logger *zap.Logger) *WebhookHandler {
	return &WebhookHandler{
		secret:       secret,
		orchestrator: orchestrator,
		validate:     validator.New(),
		logger:       logger,
	}
}

// HandleWebhook is the Paystack delivery entrypoint. The signature is
// checked over the raw body before anything is parsed; past that gate
// and the duplicate check, the response is 200 no matter how unit
// fulfillment goes, because Paystack retries anything unacknowledged.
func (h *WebhookHandler) HandleWebhook(c *gin.Context) {
	ctx, span := otel.Tracer("ticketing-service").Start(c.Request.Context(), "HandleWebhook")
	defer span.End()

	rawBody, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxWebhookBodyBytes))
	if err != nil {
		span.RecordError(err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read body"})
		return
	}

	if !paystack.VerifySignature(rawBody, c.GetHeader(signatureHeader), h.secret) {
		middleware.RecordWebhookOutcome("rejected")
		span.SetAttributes(attribute.String("webhook.outcome", "rejected"))
		h.logger.Warn("Webhook signature verification failed",
			zap.String("trace_id", middleware.GetTraceID(c)),
			zap.String("ip", c.ClientIP()),
		)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid signature"})
		return
	}

	var event models.PaymentEvent
	if err := json.Unmarshal(rawBody, &event); err != nil {
		middleware.RecordWebhookOutcome("malformed")
		span.RecordError(err)
		h.logger.Warn("Malformed webhook payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Malformed event"})
		return
	}

	span.SetAttributes(attribute.String("event.type", event.Event))

	if event.Event != models.EventChargeSuccess {
		middleware.RecordWebhookOutcome("ignored")
		h.logger.Info("Ignoring non-success event",
			zap.String("event_type", event.Event),
		)
		c.JSON(http.StatusOK, gin.H{"status": "ignored"})
		return
	}

	if err := h.validate.Struct(event); err != nil {
		middleware.RecordWebhookOutcome("malformed")
		span.RecordError(err)
		h.logger.Warn("Webhook payload failed validation",
			zap.String("reference", event.Data.Reference),
			zap.Error(err),
		)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Malformed event"})
		return
	}

	report := h.orchestrator.Process(ctx, event)

	c.JSON(http.StatusOK, gin.H{
		"status":    string(report.Outcome),
		"reference": report.Reference,
		"emailed":   report.Emailed,
		"failed":    report.Failed,
	})
}
