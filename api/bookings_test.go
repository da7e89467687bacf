package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/doltservices/doltbook/internal/auth"
	"github.com/doltservices/doltbook/internal/domain"
	"github.com/doltservices/doltbook/internal/repository"
	"github.com/doltservices/doltbook/internal/service/booking"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockBookingUseCase is a mock implementation of booking.BookingUseCase
type MockBookingUseCase struct {
	mock.Mock
}

func (m *MockBookingUseCase) CreateBooking(ctx context.Context, input booking.CreateBookingInput) (*domain.Booking, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingUseCase) GetBooking(ctx context.Context, id string) (*domain.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingUseCase) ListUserBookings(ctx context.Context, userID string) ([]domain.Booking, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]domain.Booking), args.Error(1)
}

func (m *MockBookingUseCase) ListProviderBookings(ctx context.Context, providerID string) ([]domain.Booking, error) {
	args := m.Called(ctx, providerID)
	return args.Get(0).([]domain.Booking), args.Error(1)
}

func (m *MockBookingUseCase) AcceptBooking(ctx context.Context, id, providerID string) (*domain.Booking, error) {
	args := m.Called(ctx, id, providerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingUseCase) RejectBooking(ctx context.Context, id string) (*domain.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingUseCase) CancelBooking(ctx context.Context, id string) (*domain.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingUseCase) StartBooking(ctx context.Context, id string) (*domain.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingUseCase) CompleteBooking(ctx context.Context, id string) (*domain.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingUseCase) ConfirmFromPayment(ctx context.Context, id, method string) (*domain.Booking, error) {
	args := m.Called(ctx, id, method)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingUseCase) ExpirePendingBookings(ctx context.Context) ([]domain.Booking, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Booking), args.Error(1)
}

func testClaims(userID string, role auth.Role) *auth.Claims {
	return &auth.Claims{UserID: userID, Role: role}
}

func TestBookingHandler_create(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewBookingHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	scheduled := time.Now().Add(48 * time.Hour).UTC().Truncate(time.Second)
	body, _ := json.Marshal(createBookingRequest{
		ServiceID:     "svc-1",
		ScheduledDate: scheduled.Format(time.RFC3339),
		Address:       "Buenos Aires",
	})
	c.Request = httptest.NewRequest("POST", "/bookings", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	auth.SetClaims(c, testClaims("user-1", auth.RoleUser))

	created := &domain.Booking{
		ID:           "booking-1",
		UserID:       "user-1",
		ServiceID:    "svc-1",
		Status:       domain.BookingStatusPending,
		PaymentState: domain.PaymentStateUnpaid,
		AmountCents:  2000,
		Currency:     "USD",
	}

	expectedInput := booking.CreateBookingInput{
		UserID:        "user-1",
		ServiceID:     "svc-1",
		ScheduledDate: scheduled,
		Address:       "Buenos Aires",
	}
	mockService.On("CreateBooking", c.Request.Context(), expectedInput).Return(created, nil)

	handler.create(c)

	assert.Equal(t, http.StatusCreated, w.Code)

	var response bookingResponse
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.Equal(t, "booking-1", response.ID)
	assert.Equal(t, string(domain.BookingStatusPending), response.Status)
	assert.Equal(t, string(domain.PaymentStateUnpaid), response.PaymentStatus)
	assert.Equal(t, int64(2000), response.AmountCents)

	mockService.AssertExpectations(t)
}

func TestBookingHandler_create_BadDate(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewBookingHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	body, _ := json.Marshal(createBookingRequest{
		ServiceID:     "svc-1",
		ScheduledDate: "tomorrow at noon",
		Address:       "Buenos Aires",
	})
	c.Request = httptest.NewRequest("POST", "/bookings", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	auth.SetClaims(c, testClaims("user-1", auth.RoleUser))

	handler.create(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockService.AssertNotCalled(t, "CreateBooking")
}

func TestBookingHandler_get_OwnerAllowed(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewBookingHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	c.Params = gin.Params{{Key: "id", Value: "booking-1"}}
	c.Request = httptest.NewRequest("GET", "/bookings/booking-1", nil)
	auth.SetClaims(c, testClaims("user-1", auth.RoleUser))

	found := &domain.Booking{ID: "booking-1", UserID: "user-1", Status: domain.BookingStatusPending}
	mockService.On("GetBooking", c.Request.Context(), "booking-1").Return(found, nil)

	handler.get(c)

	assert.Equal(t, http.StatusOK, w.Code)
	mockService.AssertExpectations(t)
}

func TestBookingHandler_get_StrangerForbidden(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewBookingHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	c.Params = gin.Params{{Key: "id", Value: "booking-1"}}
	c.Request = httptest.NewRequest("GET", "/bookings/booking-1", nil)
	auth.SetClaims(c, testClaims("someone-else", auth.RoleUser))

	found := &domain.Booking{ID: "booking-1", UserID: "user-1", Status: domain.BookingStatusPending}
	mockService.On("GetBooking", c.Request.Context(), "booking-1").Return(found, nil)

	handler.get(c)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestBookingHandler_get_NotFound(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewBookingHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	c.Params = gin.Params{{Key: "id", Value: "missing"}}
	c.Request = httptest.NewRequest("GET", "/bookings/missing", nil)
	auth.SetClaims(c, testClaims("user-1", auth.RoleUser))

	mockService.On("GetBooking", c.Request.Context(), "missing").Return(nil, repository.ErrNotFound)

	handler.get(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestBookingHandler_cancel(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewBookingHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	c.Params = gin.Params{{Key: "id", Value: "booking-1"}}
	c.Request = httptest.NewRequest("POST", "/bookings/booking-1/cancel", nil)
	auth.SetClaims(c, testClaims("user-1", auth.RoleUser))

	found := &domain.Booking{ID: "booking-1", UserID: "user-1", Status: domain.BookingStatusPending}
	cancelled := &domain.Booking{ID: "booking-1", UserID: "user-1", Status: domain.BookingStatusCancelled}

	mockService.On("GetBooking", c.Request.Context(), "booking-1").Return(found, nil)
	mockService.On("CancelBooking", c.Request.Context(), "booking-1").Return(cancelled, nil)

	handler.cancel(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var response bookingResponse
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.Equal(t, string(domain.BookingStatusCancelled), response.Status)

	mockService.AssertExpectations(t)
}

func TestBookingHandler_accept(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewBookingHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	c.Params = gin.Params{{Key: "id", Value: "booking-1"}}
	c.Request = httptest.NewRequest("POST", "/bookings/booking-1/accept", nil)
	auth.SetClaims(c, testClaims("provider-1", auth.RoleProvider))

	providerID := "provider-1"
	confirmed := &domain.Booking{
		ID: "booking-1", UserID: "user-1", ProviderID: &providerID,
		Status: domain.BookingStatusConfirmed,
	}
	mockService.On("AcceptBooking", c.Request.Context(), "booking-1", "provider-1").Return(confirmed, nil)

	handler.accept(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var response bookingResponse
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.Equal(t, "provider-1", response.ProviderID)
	assert.Equal(t, string(domain.BookingStatusConfirmed), response.Status)
}

func TestBookingHandler_accept_Conflict(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewBookingHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	c.Params = gin.Params{{Key: "id", Value: "booking-1"}}
	c.Request = httptest.NewRequest("POST", "/bookings/booking-1/accept", nil)
	auth.SetClaims(c, testClaims("provider-1", auth.RoleProvider))

	mockService.On("AcceptBooking", c.Request.Context(), "booking-1", "provider-1").
		Return(nil, repository.ErrInvalidTransition)

	handler.accept(c)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestBookingHandler_complete_NotAssigned(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewBookingHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	c.Params = gin.Params{{Key: "id", Value: "booking-1"}}
	c.Request = httptest.NewRequest("POST", "/bookings/booking-1/complete", nil)
	auth.SetClaims(c, testClaims("provider-2", auth.RoleProvider))

	assigned := "provider-1"
	found := &domain.Booking{ID: "booking-1", ProviderID: &assigned, Status: domain.BookingStatusInProgress}
	mockService.On("GetBooking", c.Request.Context(), "booking-1").Return(found, nil)

	handler.complete(c)

	assert.Equal(t, http.StatusForbidden, w.Code)
	mockService.AssertNotCalled(t, "CompleteBooking")
}

func TestBookingHandler_listByUser_Forbidden(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewBookingHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	c.Params = gin.Params{{Key: "id", Value: "user-1"}}
	c.Request = httptest.NewRequest("GET", "/users/user-1/bookings", nil)
	auth.SetClaims(c, testClaims("someone-else", auth.RoleUser))

	handler.listByUser(c)

	assert.Equal(t, http.StatusForbidden, w.Code)
	mockService.AssertNotCalled(t, "ListUserBookings")
}

func TestBookingHandler_listByUser_ManagerAllowed(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewBookingHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	c.Params = gin.Params{{Key: "id", Value: "user-1"}}
	c.Request = httptest.NewRequest("GET", "/users/user-1/bookings", nil)
	auth.SetClaims(c, testClaims("manager-1", auth.RoleManager))

	bookings := []domain.Booking{{ID: "booking-1", UserID: "user-1", Status: domain.BookingStatusPending}}
	mockService.On("ListUserBookings", c.Request.Context(), "user-1").Return(bookings, nil)

	handler.listByUser(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var response []bookingResponse
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.Len(t, response, 1)
}
