package handler

import (
	"field-capture-gateway/internal/adapter/http/dto"
	"field-capture-gateway/internal/core/domain"
	"field-capture-gateway/internal/core/ports"
	"field-capture-gateway/pkg/apperror"
	"field-capture-gateway/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// FieldHandler handles field configuration endpoints. All routes are
// scoped by the :domain path parameter.
type FieldHandler struct {
	fieldSvc ports.FieldService
}

// NewFieldHandler creates a new FieldHandler.
func NewFieldHandler(fieldSvc ports.FieldService) *FieldHandler {
	return &FieldHandler{fieldSvc: fieldSvc}
}

// List handles GET /api/v1/domains/:domain/fields.
func (h *FieldHandler) List(c *gin.Context) {
	fields, err := h.fieldSvc.ListFields(c.Request.Context(), c.Param("domain"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.FromFields(fields))
}

// Create handles POST /api/v1/domains/:domain/fields.
func (h *FieldHandler) Create(c *gin.Context) {
	var req dto.FieldCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	field, err := h.fieldSvc.AddField(c.Request.Context(), c.Param("domain"), domain.FieldSpec{
		FriendlyName:    req.FriendlyName,
		CriteriaText:    req.CriteriaText,
		WebhookEnabled:  req.WebhookEnabled,
		WebhookEndpoint: req.WebhookEndpoint,
		WebhookPayload:  req.WebhookPayload,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, dto.FromField(field))
}

// Update handles PATCH /api/v1/domains/:domain/fields/:id.
func (h *FieldHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.Validation("invalid field id"))
		return
	}

	var req dto.FieldUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	field, err := h.fieldSvc.UpdateField(c.Request.Context(), c.Param("domain"), id, domain.FieldPatch{
		FriendlyName:    req.FriendlyName,
		CriteriaText:    req.CriteriaText,
		WebhookEnabled:  req.WebhookEnabled,
		WebhookEndpoint: req.WebhookEndpoint,
		WebhookPayload:  req.WebhookPayload,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.FromField(field))
}

// Delete handles DELETE /api/v1/domains/:domain/fields/:id.
func (h *FieldHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.Validation("invalid field id"))
		return
	}

	if err := h.fieldSvc.RemoveField(c.Request.Context(), c.Param("domain"), id); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"deleted": id.String()})
}

// Validate handles GET /api/v1/domains/:domain/fields/validate.
func (h *FieldHandler) Validate(c *gin.Context) {
	problems, err := h.fieldSvc.Validate(c.Request.Context(), c.Param("domain"))
	if err != nil {
		response.Error(c, err)
		return
	}

	out := make([]dto.ProblemResponse, 0, len(problems))
	for _, p := range problems {
		out = append(out, dto.ProblemResponse{FieldIndex: p.FieldIndex, Message: p.Message})
	}
	response.OK(c, gin.H{"valid": len(out) == 0, "problems": out})
}

// DeliveryLog handles GET /api/v1/domains/:domain/fields/:id/deliveries.
func (h *FieldHandler) DeliveryLog(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.Validation("invalid field id"))
		return
	}

	entries, err := h.fieldSvc.DeliveryLog(c.Request.Context(), c.Param("domain"), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.FromDeliveryLog(entries))
}
