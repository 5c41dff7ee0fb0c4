package handler

import (
	"strconv"

	"field-capture-gateway/internal/adapter/http/dto"
	"field-capture-gateway/internal/core/ports"
	"field-capture-gateway/pkg/apperror"
	"field-capture-gateway/pkg/response"

	"github.com/gin-gonic/gin"
)

const defaultArchiveLimit = 50

// DeliveryHandler exposes the durable delivery archive. Only mounted
// when an archive is configured.
type DeliveryHandler struct {
	archive ports.DeliveryArchive
}

// NewDeliveryHandler creates a new DeliveryHandler.
func NewDeliveryHandler(archive ports.DeliveryArchive) *DeliveryHandler {
	return &DeliveryHandler{archive: archive}
}

// ListByDomain handles GET /api/v1/domains/:domain/deliveries.
func (h *DeliveryHandler) ListByDomain(c *gin.Context) {
	limit := defaultArchiveLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 1000 {
			response.Error(c, apperror.Validation("limit must be an integer between 1 and 1000"))
			return
		}
		limit = n
	}

	records, err := h.archive.ListByDomain(c.Request.Context(), c.Param("domain"), limit)
	if err != nil {
		response.Error(c, apperror.ErrStorage(err))
		return
	}
	response.OK(c, dto.FromDeliveryRecords(records))
}
