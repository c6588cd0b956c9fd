package handler

import (
	"io"

	"recordlabel-commerce/internal/core/ports"
	"recordlabel-commerce/pkg/apperror"
	"recordlabel-commerce/pkg/response"

	"github.com/gin-gonic/gin"
)

// WebhookHandler receives payment-provider webhook deliveries.
type WebhookHandler struct {
	webhookSvc ports.WebhookService
}

// NewWebhookHandler creates a new WebhookHandler.
func NewWebhookHandler(webhookSvc ports.WebhookService) *WebhookHandler {
	return &WebhookHandler{webhookSvc: webhookSvc}
}

// HandleStripeWebhook handles POST /api/v1/webhooks/stripe.
// The body must reach signature verification byte for byte, so it is
// read raw here and never bound through JSON middleware.
func (h *WebhookHandler) HandleStripeWebhook(c *gin.Context) {
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		response.Error(c, apperror.Validation("cannot read request body"))
		return
	}

	sig := c.GetHeader("Stripe-Signature")

	if err := h.webhookSvc.HandleEvent(c.Request.Context(), payload, sig); err != nil {
		response.Error(c, err)
		return
	}

	response.Received(c)
}
