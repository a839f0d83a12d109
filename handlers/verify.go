package handlers

import (
	"errors"
	"net/http"

	"ticketing-svc/cache"
	"ticketing-svc/store"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

type VerifyHandler struct {
	tickets *store.TicketStore
	rdb     *redis.Client
	logger  *zap.Logger
}

// NewVerifyHandler builds the scan-time verification handler. rdb may
// be nil; the cache is only a fast path for repeat scans.
func NewVerifyHandler(tickets *store.TicketStore, rdb *redis.Client, logger *zap.Logger) *VerifyHandler {
	return &VerifyHandler{tickets: tickets, rdb: rdb, logger: logger}
}

// RedeemTicket marks a ticket used, once. First valid scan gets 200,
// repeats get 409, unknown identifiers get 404.
func (h *VerifyHandler) RedeemTicket(c *gin.Context) {
	ctx, span := otel.Tracer("ticketing-service").Start(c.Request.Context(), "RedeemTicket")
	defer span.End()

	identifier := c.Param("identifier")
	span.SetAttributes(attribute.String("ticket.identifier", identifier))

	if h.rdb != nil {
		used, err := cache.IsTicketUsed(ctx, h.rdb, identifier)
		if err != nil {
			h.logger.Warn("Redis lookup failed, falling through to database",
				zap.String("identifier", identifier),
				zap.Error(err),
			)
		} else if used {
			c.JSON(http.StatusConflict, gin.H{"error": "Ticket already used"})
			return
		}
	}

	ticket, err := h.tickets.Redeem(ctx, identifier)
	switch {
	case errors.Is(err, store.ErrTicketNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Unknown ticket"})
		return
	case errors.Is(err, store.ErrTicketUsed):
		if h.rdb != nil {
			if cacheErr := cache.MarkTicketUsed(ctx, h.rdb, identifier); cacheErr != nil {
				h.logger.Warn("Failed to cache used ticket", zap.String("identifier", identifier), zap.Error(cacheErr))
			}
		}
		c.JSON(http.StatusConflict, gin.H{"error": "Ticket already used"})
		return
	case err != nil:
		span.RecordError(err)
		h.logger.Error("Failed to redeem ticket", zap.String("identifier", identifier), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	if h.rdb != nil {
		if cacheErr := cache.MarkTicketUsed(ctx, h.rdb, identifier); cacheErr != nil {
			h.logger.Warn("Failed to cache used ticket", zap.String("identifier", identifier), zap.Error(cacheErr))
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"identifier":  ticket.Identifier,
		"ticket_type": ticket.TicketType,
		"name":        ticket.Name,
		"status":      ticket.Status,
	})
}
