package handlers

import (
	"net/http"

	"trimly/middleware"
	"trimly/models"
	"trimly/services/collector"
	"trimly/utils"

	"github.com/gin-gonic/gin"
)

// ResponseHandler serves the barber-facing bidding surface.
type ResponseHandler struct {
	Svc collector.ResponseCollector
}

func NewResponseHandler(svc collector.ResponseCollector) *ResponseHandler {
	return &ResponseHandler{Svc: svc}
}

// SubmitResponseHandler places or replaces the calling barber's bid on a
// request.
func (h *ResponseHandler) SubmitResponseHandler(c *gin.Context) {
	var input models.SubmitResponseInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid input", err.Error())
		return
	}
	input.BarberID = c.GetString(middleware.CtxActorID)

	resp, err := h.Svc.SubmitResponse(c.Request.Context(), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// RetractResponseHandler withdraws the calling barber's pending bid.
func (h *ResponseHandler) RetractResponseHandler(c *gin.Context) {
	err := h.Svc.RetractResponse(c.Request.Context(), c.Param("id"), c.GetString(middleware.CtxActorID))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "retracted"})
}
