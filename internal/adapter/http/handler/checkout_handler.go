package handler

import (
	"recordlabel-commerce/internal/adapter/http/dto"
	"recordlabel-commerce/internal/core/ports"
	"recordlabel-commerce/pkg/apperror"
	"recordlabel-commerce/pkg/response"

	"github.com/gin-gonic/gin"
)

// CheckoutHandler handles checkout session endpoints.
type CheckoutHandler struct {
	checkoutSvc ports.CheckoutService
	orderSvc    ports.OrderService
}

// NewCheckoutHandler creates a new CheckoutHandler.
func NewCheckoutHandler(checkoutSvc ports.CheckoutService, orderSvc ports.OrderService) *CheckoutHandler {
	return &CheckoutHandler{checkoutSvc: checkoutSvc, orderSvc: orderSvc}
}

// CreateSession handles POST /api/v1/checkout/sessions.
func (h *CheckoutHandler) CreateSession(c *gin.Context) {
	var req dto.CreateCheckoutSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	items := make([]ports.CheckoutLineItem, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, ports.CheckoutLineItem{
			ProductID: it.ProductID,
			PriceID:   it.PriceID,
			Quantity:  it.Quantity,
		})
	}

	result, err := h.checkoutSvc.CreateSession(c.Request.Context(), ports.CheckoutSessionInput{
		Items:         items,
		CustomerEmail: req.CustomerEmail,
		SuccessURL:    req.SuccessURL,
		CancelURL:     req.CancelURL,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.CreateCheckoutSessionResponse{
		ID:  result.SessionID,
		URL: result.URL,
	})
}

// GetSession handles GET /api/v1/checkout/sessions/:id. The success
// page polls this to render the order confirmation.
func (h *CheckoutHandler) GetSession(c *gin.Context) {
	sessionID := c.Param("id")
	if sessionID == "" {
		response.Error(c, apperror.Validation("session id is required"))
		return
	}

	summary, err := h.checkoutSvc.GetSessionSummary(c.Request.Context(), sessionID)
	if err != nil {
		response.Error(c, err)
		return
	}

	resp := dto.SessionDetailResponse{SessionSummary: summary}

	// The local order appears once the completion webhook has landed;
	// until then (or on a lookup hiccup) the summary alone renders.
	order, items, err := h.orderSvc.GetBySessionID(c.Request.Context(), sessionID)
	if err == nil {
		resp.Order = order
		resp.OrderItems = items
	}

	response.OK(c, resp)
}
