package handlers

import (
	"errors"
	"net/http"

	"trimly/services/acceptance"
	"trimly/services/booking"
	"trimly/services/collector"
	"trimly/services/negotiation"
	"trimly/services/request"
	"trimly/utils"

	"github.com/gin-gonic/gin"
)

// respondError maps service sentinel errors onto HTTP statuses. Conflicts
// (races, closed windows, duplicates) are 409 so clients can distinguish
// "someone beat you to it" from a malformed call.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, request.ErrValidation),
		errors.Is(err, collector.ErrValidation),
		errors.Is(err, booking.ErrValidation),
		errors.Is(err, negotiation.ErrInvalidOffer):
		utils.JSONError(c, http.StatusBadRequest, "Invalid input", err.Error())

	case errors.Is(err, request.ErrNotFound),
		errors.Is(err, collector.ErrNotFound),
		errors.Is(err, acceptance.ErrNotFound),
		errors.Is(err, negotiation.ErrNotFound),
		errors.Is(err, booking.ErrNotFound):
		utils.JSONError(c, http.StatusNotFound, "Not found", err.Error())

	case errors.Is(err, request.ErrNotRequestOwner),
		errors.Is(err, acceptance.ErrNotRequestOwner),
		errors.Is(err, negotiation.ErrNotOfferOwner),
		errors.Is(err, booking.ErrNotAllowed):
		utils.JSONError(c, http.StatusForbidden, "Not allowed", err.Error())

	case errors.Is(err, request.ErrRequestClosed),
		errors.Is(err, collector.ErrRequestClosed),
		errors.Is(err, acceptance.ErrRequestClosed),
		errors.Is(err, negotiation.ErrRequestClosed),
		errors.Is(err, collector.ErrDuplicateResponse),
		errors.Is(err, collector.ErrAlreadyResolved),
		errors.Is(err, acceptance.ErrAlreadyResolved),
		errors.Is(err, negotiation.ErrAlreadyResolved),
		errors.Is(err, negotiation.ErrExpiredOffer),
		errors.Is(err, request.ErrInvalidTransition),
		errors.Is(err, booking.ErrInvalidTransition):
		utils.JSONError(c, http.StatusConflict, "Conflict", err.Error())

	default:
		utils.JSONError(c, http.StatusInternalServerError, "Internal error", err.Error())
	}
}
