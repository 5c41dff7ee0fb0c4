package handler

import (
	"field-capture-gateway/internal/adapter/http/dto"
	"field-capture-gateway/internal/core/ports"
	"field-capture-gateway/pkg/apperror"
	"field-capture-gateway/pkg/response"

	"github.com/gin-gonic/gin"
)

// PresetHandler handles preset endpoints.
type PresetHandler struct {
	presetSvc ports.PresetService
}

// NewPresetHandler creates a new PresetHandler.
func NewPresetHandler(presetSvc ports.PresetService) *PresetHandler {
	return &PresetHandler{presetSvc: presetSvc}
}

// List handles GET /api/v1/presets.
func (h *PresetHandler) List(c *gin.Context) {
	presets, err := h.presetSvc.ListPresets(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	out := make([]dto.PresetResponse, 0, len(presets))
	for _, p := range presets {
		out = append(out, dto.FromPreset(p))
	}
	response.OK(c, out)
}

// Save handles POST /api/v1/presets.
func (h *PresetHandler) Save(c *gin.Context) {
	var req dto.PresetSaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	preset, err := h.presetSvc.SavePreset(c.Request.Context(), req.Name, req.Domain)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, dto.FromPreset(*preset))
}

// Load handles POST /api/v1/presets/:name/load.
func (h *PresetHandler) Load(c *gin.Context) {
	var req dto.PresetLoadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	fields, err := h.presetSvc.LoadPreset(c.Request.Context(), c.Param("name"), req.Domain)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.FromFields(fields))
}

// Delete handles DELETE /api/v1/presets/:name.
func (h *PresetHandler) Delete(c *gin.Context) {
	if err := h.presetSvc.DeletePreset(c.Request.Context(), c.Param("name")); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"deleted": c.Param("name")})
}
