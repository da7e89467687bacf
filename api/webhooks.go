package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/doltservices/doltbook/config"
	"github.com/doltservices/doltbook/internal/gateway"
	"github.com/doltservices/doltbook/internal/service/payment"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// eventDedupTTL bounds how long a processed webhook event id is remembered.
const eventDedupTTL = 24 * time.Hour

type WebhookProcessor interface {
	HandleStripeEvent(ctx context.Context, event payment.StripeEvent) error
	HandleMercadoPagoEvent(ctx context.Context, event payment.MercadoPagoEvent) error
}

type EventDeduper interface {
	MarkEventSeen(ctx context.Context, gateway, eventID string, ttl time.Duration) (bool, error)
	ForgetEvent(ctx context.Context, gateway, eventID string) error
}

type WebhookHandler struct {
	processor WebhookProcessor
	deduper   EventDeduper
	cfg       config.GatewaysConfig
	logger    *zap.Logger
}

func NewWebhookHandler(processor WebhookProcessor, deduper EventDeduper, cfg config.GatewaysConfig, logger *zap.Logger) *WebhookHandler {
	return &WebhookHandler{processor: processor, deduper: deduper, cfg: cfg, logger: logger}
}

func (h *WebhookHandler) Register(router *gin.RouterGroup) {
	router.POST("/webhooks/stripe", h.stripe)
	router.POST("/webhooks/mercadopago", h.mercadopago)
}

func (h *WebhookHandler) stripe(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable body"})
		return
	}

	tolerance := time.Duration(h.cfg.Stripe.ToleranceSeconds) * time.Second
	if err := gateway.VerifyStripeSignature(h.cfg.Stripe.WebhookSecret, body,
		c.GetHeader("Stripe-Signature"), tolerance, time.Now()); err != nil {
		h.logger.Warn("stripe webhook signature rejected", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid signature"})
		return
	}

	var event payment.StripeEvent
	if err := json.Unmarshal(body, &event); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	if !h.firstDelivery(c, "stripe", event.ID) {
		return
	}

	if err := h.processor.HandleStripeEvent(c.Request.Context(), event); err != nil {
		h.logger.Error("stripe webhook processing failed", zap.String("type", event.Type), zap.Error(err))
		h.releaseDelivery(c, "stripe", event.ID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Webhook processing failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}

func (h *WebhookHandler) mercadopago(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable body"})
		return
	}

	var event payment.MercadoPagoEvent
	if err := json.Unmarshal(body, &event); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	if err := gateway.VerifyMercadoPagoSignature(h.cfg.MercadoPago.WebhookSecret,
		event.Data.ID, c.GetHeader("x-request-id"), c.GetHeader("x-signature")); err != nil {
		h.logger.Warn("mercadopago webhook signature rejected", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid signature"})
		return
	}

	if !h.firstDelivery(c, "mercadopago", event.Action+":"+event.Data.ID) {
		return
	}

	if err := h.processor.HandleMercadoPagoEvent(c.Request.Context(), event); err != nil {
		h.logger.Error("mercadopago webhook processing failed", zap.String("type", event.Type), zap.Error(err))
		h.releaseDelivery(c, "mercadopago", event.Action+":"+event.Data.ID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Webhook processing failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}

// firstDelivery answers repeat deliveries with 200 so the sender stops
// retrying. Dedup failures fall through to processing, which is idempotent.
func (h *WebhookHandler) firstDelivery(c *gin.Context, gatewayName, eventID string) bool {
	if h.deduper == nil || eventID == "" {
		return true
	}
	fresh, err := h.deduper.MarkEventSeen(c.Request.Context(), gatewayName, eventID, eventDedupTTL)
	if err != nil {
		h.logger.Warn("webhook dedup unavailable", zap.Error(err))
		return true
	}
	if !fresh {
		c.JSON(http.StatusOK, gin.H{"received": true})
		return false
	}
	return true
}

// releaseDelivery drops the dedup claim after a processing failure so the
// gateway's retry of the same event is not swallowed.
func (h *WebhookHandler) releaseDelivery(c *gin.Context, gatewayName, eventID string) {
	if h.deduper == nil || eventID == "" {
		return
	}
	if err := h.deduper.ForgetEvent(c.Request.Context(), gatewayName, eventID); err != nil {
		h.logger.Warn("webhook dedup release failed", zap.Error(err))
	}
}
