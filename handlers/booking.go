package handlers

import (
	"net/http"

	"trimly/middleware"
	"trimly/models"
	"trimly/services/booking"
	"trimly/utils"

	"github.com/gin-gonic/gin"
)

// BookingHandler serves the fulfilment surface of confirmed bookings.
type BookingHandler struct {
	Svc booking.LifecycleService
}

func NewBookingHandler(svc booking.LifecycleService) *BookingHandler {
	return &BookingHandler{Svc: svc}
}

// GetBookingHandler returns a booking by id, for either party.
func (h *BookingHandler) GetBookingHandler(c *gin.Context) {
	b, err := h.Svc.GetBooking(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

// ListMyBookingsHandler returns the caller's bookings, keyed off the role
// claim in the token.
func (h *BookingHandler) ListMyBookingsHandler(c *gin.Context) {
	ctx := c.Request.Context()
	actorID := c.GetString(middleware.CtxActorID)

	var (
		bookings []models.Booking
		err      error
	)
	if c.GetString(middleware.CtxRole) == models.RoleBarber {
		bookings, err = h.Svc.ListBarberBookings(ctx, actorID)
	} else {
		bookings, err = h.Svc.ListCustomerBookings(ctx, actorID)
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookings": bookings})
}

func (h *BookingHandler) progress(c *gin.Context, fn func(*gin.Context) (*models.Booking, error)) {
	b, err := fn(c)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

// MarkEnRouteHandler moves a scheduled booking to barber_en_route.
func (h *BookingHandler) MarkEnRouteHandler(c *gin.Context) {
	h.progress(c, func(c *gin.Context) (*models.Booking, error) {
		return h.Svc.MarkEnRoute(c.Request.Context(), c.Param("id"), c.GetString(middleware.CtxActorID))
	})
}

// MarkArrivedHandler moves an en-route booking to arrived.
func (h *BookingHandler) MarkArrivedHandler(c *gin.Context) {
	h.progress(c, func(c *gin.Context) (*models.Booking, error) {
		return h.Svc.MarkArrived(c.Request.Context(), c.Param("id"), c.GetString(middleware.CtxActorID))
	})
}

// MarkStartedHandler moves an arrived booking to in_progress.
func (h *BookingHandler) MarkStartedHandler(c *gin.Context) {
	h.progress(c, func(c *gin.Context) (*models.Booking, error) {
		return h.Svc.MarkStarted(c.Request.Context(), c.Param("id"), c.GetString(middleware.CtxActorID))
	})
}

// MarkCompletedHandler closes the booking after the service is rendered.
func (h *BookingHandler) MarkCompletedHandler(c *gin.Context) {
	h.progress(c, func(c *gin.Context) (*models.Booking, error) {
		return h.Svc.MarkCompleted(c.Request.Context(), c.Param("id"), c.GetString(middleware.CtxActorID))
	})
}

// CancelBookingHandler terminates an active booking with a reason.
func (h *BookingHandler) CancelBookingHandler(c *gin.Context) {
	var input struct {
		Reason string `json:"reason" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid input", err.Error())
		return
	}
	h.progress(c, func(c *gin.Context) (*models.Booking, error) {
		return h.Svc.CancelBooking(c.Request.Context(), c.Param("id"), c.GetString(middleware.CtxActorID), input.Reason)
	})
}

// RaiseDisputeHandler flags the booking for manual review.
func (h *BookingHandler) RaiseDisputeHandler(c *gin.Context) {
	var input struct {
		Reason string `json:"reason" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid input", err.Error())
		return
	}
	h.progress(c, func(c *gin.Context) (*models.Booking, error) {
		return h.Svc.RaiseDispute(c.Request.Context(), c.Param("id"), c.GetString(middleware.CtxActorID), input.Reason)
	})
}
