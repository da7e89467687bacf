package api

import (
	"net/http"
	"time"

	"github.com/doltservices/doltbook/internal/auth"
	"github.com/doltservices/doltbook/internal/service/booking"
	"github.com/gin-gonic/gin"
)

type BookingHandler struct {
	service booking.BookingUseCase
}

type createBookingRequest struct {
	ServiceID     string   `json:"service_id"`
	ScheduledDate string   `json:"scheduled_date"`
	Address       string   `json:"address"`
	Latitude      *float64 `json:"latitude"`
	Longitude     *float64 `json:"longitude"`
	Notes         string   `json:"notes"`
}

func NewBookingHandler(service booking.BookingUseCase) *BookingHandler {
	return &BookingHandler{service: service}
}

func (h *BookingHandler) Register(router *gin.RouterGroup, authSvc *auth.Service) {
	protected := router.Group("", auth.RequireAuth(authSvc))
	protected.POST("/bookings", h.create)
	protected.GET("/bookings/:id", h.get)
	protected.GET("/users/:id/bookings", h.listByUser)
	protected.GET("/providers/:id/bookings", h.listByProvider)
	protected.POST("/bookings/:id/cancel", h.cancel)

	providerOnly := protected.Group("", auth.RequireRole(auth.RoleProvider))
	providerOnly.POST("/bookings/:id/accept", h.accept)
	providerOnly.POST("/bookings/:id/reject", h.reject)
	providerOnly.POST("/bookings/:id/start", h.start)
	providerOnly.POST("/bookings/:id/complete", h.complete)
}

func (h *BookingHandler) create(c *gin.Context) {
	claims, _ := auth.ClaimsFromContext(c)

	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var scheduled time.Time
	if req.ScheduledDate != "" {
		parsed, err := time.Parse(time.RFC3339, req.ScheduledDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "scheduled_date must be RFC3339"})
			return
		}
		scheduled = parsed
	}

	created, err := h.service.CreateBooking(c.Request.Context(), booking.CreateBookingInput{
		UserID:        claims.UserID,
		ServiceID:     req.ServiceID,
		ScheduledDate: scheduled,
		Address:       req.Address,
		Latitude:      req.Latitude,
		Longitude:     req.Longitude,
		Notes:         req.Notes,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, newBookingResponse(created))
}

func (h *BookingHandler) get(c *gin.Context) {
	claims, _ := auth.ClaimsFromContext(c)

	found, err := h.service.GetBooking(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	if !canActOn(claims, found) {
		c.JSON(http.StatusForbidden, gin.H{"error": "not allowed"})
		return
	}

	c.JSON(http.StatusOK, newBookingResponse(found))
}

func (h *BookingHandler) listByUser(c *gin.Context) {
	claims, _ := auth.ClaimsFromContext(c)
	userID := c.Param("id")
	if claims.UserID != userID && claims.Role != auth.RoleAdmin && claims.Role != auth.RoleManager {
		c.JSON(http.StatusForbidden, gin.H{"error": "not allowed"})
		return
	}

	bookings, err := h.service.ListUserBookings(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, newBookingListResponse(bookings))
}

func (h *BookingHandler) listByProvider(c *gin.Context) {
	claims, _ := auth.ClaimsFromContext(c)
	providerID := c.Param("id")
	if claims.UserID != providerID && claims.Role != auth.RoleAdmin && claims.Role != auth.RoleManager {
		c.JSON(http.StatusForbidden, gin.H{"error": "not allowed"})
		return
	}

	bookings, err := h.service.ListProviderBookings(c.Request.Context(), providerID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, newBookingListResponse(bookings))
}

func (h *BookingHandler) cancel(c *gin.Context) {
	claims, _ := auth.ClaimsFromContext(c)
	id := c.Param("id")

	found, err := h.service.GetBooking(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	if !canActOn(claims, found) {
		c.JSON(http.StatusForbidden, gin.H{"error": "not allowed"})
		return
	}

	cancelled, err := h.service.CancelBooking(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, newBookingResponse(cancelled))
}

func (h *BookingHandler) accept(c *gin.Context) {
	claims, _ := auth.ClaimsFromContext(c)

	accepted, err := h.service.AcceptBooking(c.Request.Context(), c.Param("id"), claims.UserID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, newBookingResponse(accepted))
}

func (h *BookingHandler) reject(c *gin.Context) {
	rejected, err := h.service.RejectBooking(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, newBookingResponse(rejected))
}

func (h *BookingHandler) start(c *gin.Context) {
	if !h.assignedOrBackOffice(c) {
		return
	}

	started, err := h.service.StartBooking(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, newBookingResponse(started))
}

func (h *BookingHandler) complete(c *gin.Context) {
	if !h.assignedOrBackOffice(c) {
		return
	}

	completed, err := h.service.CompleteBooking(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, newBookingResponse(completed))
}

// assignedOrBackOffice rejects providers acting on bookings not assigned to
// them. Admins pass.
func (h *BookingHandler) assignedOrBackOffice(c *gin.Context) bool {
	claims, _ := auth.ClaimsFromContext(c)
	if claims.Role == auth.RoleAdmin {
		return true
	}

	found, err := h.service.GetBooking(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return false
	}
	if found.ProviderID == nil || *found.ProviderID != claims.UserID {
		c.JSON(http.StatusForbidden, gin.H{"error": "booking is not assigned to you"})
		return false
	}
	return true
}
