package handlers

import (
	"net/http"

	"trimly/middleware"
	"trimly/models"
	"trimly/services/negotiation"
	"trimly/utils"

	"github.com/gin-gonic/gin"
)

// NegotiationHandler serves the message log and offer decisions for both
// sides of a request.
type NegotiationHandler struct {
	Svc negotiation.NegotiationService
}

func NewNegotiationHandler(svc negotiation.NegotiationService) *NegotiationHandler {
	return &NegotiationHandler{Svc: svc}
}

// PostMessageHandler appends a message or offer to a request's log.
func (h *NegotiationHandler) PostMessageHandler(c *gin.Context) {
	var input models.PostMessageInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid input", err.Error())
		return
	}
	input.RequestID = c.Param("id")
	input.SenderID = c.GetString(middleware.CtxActorID)
	input.SenderRole = c.GetString(middleware.CtxRole)

	msg, err := h.Svc.PostMessage(c.Request.Context(), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, msg)
}

// ListMessagesHandler returns a request's log in chronological order.
func (h *NegotiationHandler) ListMessagesHandler(c *gin.Context) {
	msgs, err := h.Svc.ListMessages(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": msgs})
}

// RespondToOfferHandler applies an accept/reject decision to a pending
// offer. On accept the response body carries the freshly created booking.
func (h *NegotiationHandler) RespondToOfferHandler(c *gin.Context) {
	var input struct {
		Decision models.OfferDecision `json:"decision" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid input", err.Error())
		return
	}

	msg, booking, err := h.Svc.RespondToOffer(c.Request.Context(), c.Param("messageId"), c.GetString(middleware.CtxActorID), input.Decision)
	if err != nil {
		respondError(c, err)
		return
	}

	out := gin.H{"message": msg}
	if booking != nil {
		out["booking"] = booking
	}
	c.JSON(http.StatusOK, out)
}
