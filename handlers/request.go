package handlers

import (
	"net/http"

	"trimly/middleware"
	"trimly/models"
	"trimly/services/acceptance"
	"trimly/services/request"
	"trimly/utils"

	"github.com/gin-gonic/gin"
)

// RequestHandler serves the customer-facing request surface.
type RequestHandler struct {
	Svc      request.RequestService
	Resolver acceptance.Resolver
}

func NewRequestHandler(svc request.RequestService, resolver acceptance.Resolver) *RequestHandler {
	return &RequestHandler{Svc: svc, Resolver: resolver}
}

// CreateRequestHandler opens a new service request and fans it out to
// nearby barbers.
func (h *RequestHandler) CreateRequestHandler(c *gin.Context) {
	var input models.CreateRequestInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid input", err.Error())
		return
	}
	input.CustomerID = c.GetString(middleware.CtxActorID)

	req, err := h.Svc.CreateRequest(c.Request.Context(), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, req)
}

// CancelRequestHandler cancels an open request and cascades to its pending
// responses and offers.
func (h *RequestHandler) CancelRequestHandler(c *gin.Context) {
	var input struct {
		Reason string `json:"reason"`
	}
	// Body is optional; a bare cancel is fine.
	_ = c.ShouldBindJSON(&input)

	err := h.Svc.CancelRequest(c.Request.Context(), c.Param("id"), c.GetString(middleware.CtxActorID), input.Reason)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "cancelled"})
}

// GetRequestHandler returns the bare request document.
func (h *RequestHandler) GetRequestHandler(c *gin.Context) {
	req, err := h.Svc.GetRequest(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, req)
}

// GetRequestDetailHandler returns the request with its responses,
// negotiation log and booking, when one exists.
func (h *RequestHandler) GetRequestDetailHandler(c *gin.Context) {
	detail, err := h.Svc.GetRequestDetail(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

// ListMyRequestsHandler returns the calling customer's requests.
func (h *RequestHandler) ListMyRequestsHandler(c *gin.Context) {
	reqs, err := h.Svc.ListCustomerRequests(c.Request.Context(), c.GetString(middleware.CtxActorID))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"requests": reqs})
}

// AcceptResponseHandler accepts a barber's response directly at its proposed
// price, resolving the request into a booking.
func (h *RequestHandler) AcceptResponseHandler(c *gin.Context) {
	var input struct {
		ResponseID string `json:"responseId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid input", err.Error())
		return
	}

	booking, err := h.Resolver.Accept(c.Request.Context(), acceptance.AcceptCommand{
		RequestID:  c.Param("id"),
		ResponseID: input.ResponseID,
		CustomerID: c.GetString(middleware.CtxActorID),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, booking)
}
