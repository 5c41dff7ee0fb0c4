package handler

import (
	"io"

	"field-capture-gateway/internal/adapter/http/dto"
	"field-capture-gateway/internal/core/ports"
	"field-capture-gateway/pkg/apperror"
	"field-capture-gateway/pkg/response"

	"github.com/gin-gonic/gin"
)

// CaptureHandler handles the signed capture event endpoints used by
// evaluator clients.
type CaptureHandler struct {
	captureSvc ports.CaptureService
}

// NewCaptureHandler creates a new CaptureHandler.
func NewCaptureHandler(captureSvc ports.CaptureService) *CaptureHandler {
	return &CaptureHandler{captureSvc: captureSvc}
}

// Begin handles POST /api/v1/events/:domain/begin.
func (h *CaptureHandler) Begin(c *gin.Context) {
	var req dto.BeginEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	if err := h.captureSvc.BeginEvent(c.Request.Context(), c.Param("domain"), req.EventID); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"event_id": req.EventID})
}

// Results handles POST /api/v1/events/:domain/results. The body is the
// evaluator payload and is passed through untouched; the event id rides
// in the query string so the signed body stays exactly what the
// evaluator produced.
func (h *CaptureHandler) Results(c *gin.Context) {
	eventID := c.Query("event_id")
	if eventID == "" {
		response.Error(c, apperror.Validation("event_id query parameter is required"))
		return
	}

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		response.Error(c, apperror.Validation("cannot read request body"))
		return
	}

	outcome, err := h.captureSvc.ApplyResults(c.Request.Context(), c.Param("domain"), eventID, body)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.CaptureOutcomeResponse{Matched: outcome.Matched, Fired: outcome.Fired})
}

// Cancel handles POST /api/v1/events/:domain/cancel.
func (h *CaptureHandler) Cancel(c *gin.Context) {
	var req dto.EventScopeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	if err := h.captureSvc.CancelEvent(c.Request.Context(), c.Param("domain"), req.EventID); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"event_id": req.EventID})
}

// Fail handles POST /api/v1/events/:domain/error.
func (h *CaptureHandler) Fail(c *gin.Context) {
	var req dto.EventScopeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	if err := h.captureSvc.FailEvent(c.Request.Context(), c.Param("domain"), req.EventID, req.Reason); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"event_id": req.EventID})
}
