package domain

import (
	"time"

	"github.com/google/uuid"
)

// DeliveryRecord is the durable form of one webhook delivery attempt,
// kept beyond the bounded per-field log for forensics.
type DeliveryRecord struct {
	ID             uuid.UUID `json:"id"`
	Domain         string    `json:"domain"`
	FieldID        uuid.UUID `json:"field_id"`
	FieldName      string    `json:"field_name"` // sanitized name at fire time
	Endpoint       string    `json:"endpoint"`
	Success        bool      `json:"success"`
	HTTPStatus     *int      `json:"http_status,omitempty"`
	DurationMillis int64     `json:"duration_millis"`
	Error          *string   `json:"error,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}
