package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/doltservices/doltbook/internal/auth"
	"github.com/doltservices/doltbook/internal/domain"
	"github.com/doltservices/doltbook/internal/gateway"
	"github.com/doltservices/doltbook/internal/repository"
	"github.com/doltservices/doltbook/internal/service/payment"
	"github.com/gin-gonic/gin"
)

type bookingResponse struct {
	ID            string   `json:"id"`
	UserID        string   `json:"user_id"`
	ProviderID    string   `json:"provider_id,omitempty"`
	ServiceID     string   `json:"service_id"`
	Status        string   `json:"status"`
	ScheduledDate string   `json:"scheduled_date"`
	CompletedDate string   `json:"completed_date,omitempty"`
	Address       string   `json:"address"`
	Latitude      *float64 `json:"latitude,omitempty"`
	Longitude     *float64 `json:"longitude,omitempty"`
	Notes         string   `json:"notes,omitempty"`
	AmountCents   int64    `json:"amount_cents"`
	Currency      string   `json:"currency"`
	PaymentMethod string   `json:"payment_method,omitempty"`
	PaymentStatus string   `json:"payment_status"`
	CreatedAt     string   `json:"created_at"`
	UpdatedAt     string   `json:"updated_at"`
}

func newBookingResponse(b *domain.Booking) bookingResponse {
	resp := bookingResponse{
		ID:            b.ID,
		UserID:        b.UserID,
		ServiceID:     b.ServiceID,
		Status:        string(b.Status),
		ScheduledDate: b.ScheduledDate.Format(time.RFC3339),
		Address:       b.Address,
		Latitude:      b.Latitude,
		Longitude:     b.Longitude,
		Notes:         b.Notes,
		AmountCents:   b.AmountCents,
		Currency:      b.Currency,
		PaymentMethod: b.PaymentMethod,
		PaymentStatus: string(b.PaymentState),
		CreatedAt:     b.CreatedAt.Format(time.RFC3339),
		UpdatedAt:     b.UpdatedAt.Format(time.RFC3339),
	}
	if b.ProviderID != nil {
		resp.ProviderID = *b.ProviderID
	}
	if b.CompletedDate != nil {
		resp.CompletedDate = b.CompletedDate.Format(time.RFC3339)
	}
	return resp
}

func newBookingListResponse(bookings []domain.Booking) []bookingResponse {
	out := make([]bookingResponse, len(bookings))
	for i := range bookings {
		out[i] = newBookingResponse(&bookings[i])
	}
	return out
}

type paymentResponse struct {
	ID            string            `json:"id"`
	BookingID     string            `json:"booking_id"`
	Gateway       string            `json:"gateway"`
	TransactionID string            `json:"transaction_id"`
	AmountCents   int64             `json:"amount_cents"`
	Currency      string            `json:"currency"`
	Status        string            `json:"status"`
	PaymentMethod string            `json:"payment_method,omitempty"`
	Metadata      map[string]string `json:"metadata,omitempty"`
	CreatedAt     string            `json:"created_at"`
	UpdatedAt     string            `json:"updated_at"`
}

func newPaymentResponse(p *domain.Payment) paymentResponse {
	return paymentResponse{
		ID:            p.ID,
		BookingID:     p.BookingID,
		Gateway:       string(p.Gateway),
		TransactionID: p.TransactionID,
		AmountCents:   p.AmountCents,
		Currency:      p.Currency,
		Status:        string(p.Status),
		PaymentMethod: p.PaymentMethod,
		Metadata:      p.Metadata,
		CreatedAt:     p.CreatedAt.Format(time.RFC3339),
		UpdatedAt:     p.UpdatedAt.Format(time.RFC3339),
	}
}

func respondError(c *gin.Context, err error) {
	status := http.StatusBadRequest
	switch {
	case errors.Is(err, repository.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, repository.ErrInvalidTransition),
		errors.Is(err, repository.ErrDuplicateTransaction),
		errors.Is(err, payment.ErrBookingNotPayable),
		errors.Is(err, payment.ErrNotRefundable):
		status = http.StatusConflict
	case errors.Is(err, gateway.ErrUnsupportedGateway):
		status = http.StatusBadRequest
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

// canActOn reports whether the caller may read or mutate a booking they do
// not own outright: the owner, the assigned provider, and back office roles.
func canActOn(claims *auth.Claims, b *domain.Booking) bool {
	if claims.Role == auth.RoleAdmin || claims.Role == auth.RoleManager {
		return true
	}
	if claims.UserID == b.UserID {
		return true
	}
	if b.ProviderID != nil && claims.UserID == *b.ProviderID {
		return true
	}
	return false
}
