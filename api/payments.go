package api

import (
	"context"
	"net/http"

	"github.com/doltservices/doltbook/internal/auth"
	"github.com/doltservices/doltbook/internal/domain"
	"github.com/doltservices/doltbook/internal/service/payment"
	"github.com/gin-gonic/gin"
)

// BookingReader resolves the booking behind a payment so payment reads can
// enforce the same ownership rules as the booking routes.
type BookingReader interface {
	GetBooking(ctx context.Context, id string) (*domain.Booking, error)
}

type PaymentHandler struct {
	service  payment.PaymentUseCase
	bookings BookingReader
}

type createIntentRequest struct {
	BookingID string `json:"booking_id"`
	Gateway   string `json:"gateway"`
}

type confirmPaymentRequest struct {
	Gateway       string `json:"gateway"`
	TransactionID string `json:"transaction_id"`
	PaymentMethod string `json:"payment_method"`
}

type capturePayPalRequest struct {
	OrderID string `json:"order_id"`
}

type intentResponse struct {
	Payment      paymentResponse `json:"payment"`
	ClientSecret string          `json:"client_secret,omitempty"`
	ApprovalURL  string          `json:"approval_url,omitempty"`
}

func NewPaymentHandler(service payment.PaymentUseCase, bookings BookingReader) *PaymentHandler {
	return &PaymentHandler{service: service, bookings: bookings}
}

func (h *PaymentHandler) Register(router *gin.RouterGroup, authSvc *auth.Service) {
	protected := router.Group("", auth.RequireAuth(authSvc))
	protected.POST("/payments/intent", h.createIntent)
	protected.POST("/payments/confirm", h.confirm)
	protected.POST("/payments/paypal/capture", h.capturePayPal)
	protected.GET("/bookings/:id/payment", h.getByBooking)

	adminOnly := protected.Group("", auth.RequireRole(auth.RoleAdmin))
	adminOnly.POST("/payments/:id/refund", h.refund)
}

func (h *PaymentHandler) createIntent(c *gin.Context) {
	var req createIntentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.service.CreateIntent(c.Request.Context(), payment.CreateIntentInput{
		BookingID: req.BookingID,
		Gateway:   domain.PaymentGateway(req.Gateway),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, intentResponse{
		Payment:      newPaymentResponse(result.Payment),
		ClientSecret: result.ClientSecret,
		ApprovalURL:  result.ApprovalURL,
	})
}

func (h *PaymentHandler) confirm(c *gin.Context) {
	var req confirmPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.TransactionID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "transaction_id is required"})
		return
	}

	confirmed, err := h.service.ConfirmPayment(c.Request.Context(),
		domain.PaymentGateway(req.Gateway), req.TransactionID, req.PaymentMethod)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, newPaymentResponse(confirmed))
}

func (h *PaymentHandler) capturePayPal(c *gin.Context) {
	claims, _ := auth.ClaimsFromContext(c)

	var req capturePayPalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.OrderID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "order_id is required"})
		return
	}

	captured, err := h.service.CapturePayPal(c.Request.Context(), req.OrderID, claims.UserID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, newPaymentResponse(captured))
}

func (h *PaymentHandler) refund(c *gin.Context) {
	refunded, err := h.service.RefundPayment(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, newPaymentResponse(refunded))
}

func (h *PaymentHandler) getByBooking(c *gin.Context) {
	claims, _ := auth.ClaimsFromContext(c)

	booking, err := h.bookings.GetBooking(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	if !canActOn(claims, booking) {
		c.JSON(http.StatusForbidden, gin.H{"error": "access denied"})
		return
	}

	found, err := h.service.GetPaymentByBooking(c.Request.Context(), booking.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, newPaymentResponse(found))
}
