package dto

import (
	"time"

	"field-capture-gateway/internal/core/domain"
)

// LoginRequest is the request body for operator login.
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse is the response body for successful login.
type LoginResponse struct {
	Token  string `json:"token"`
	Expiry int64  `json:"expiry"` // Unix timestamp
}

// FieldCreateRequest is the request body for adding a field.
type FieldCreateRequest struct {
	FriendlyName    string `json:"friendly_name" binding:"required,min=1,max=200"`
	CriteriaText    string `json:"criteria_text" binding:"required,min=1"`
	WebhookEnabled  bool   `json:"webhook_enabled"`
	WebhookEndpoint string `json:"webhook_endpoint" binding:"omitempty,safe_url"`
	WebhookPayload  string `json:"webhook_payload"`
}

// FieldUpdateRequest is the request body for a partial field update.
// Absent members leave the stored value unchanged.
type FieldUpdateRequest struct {
	FriendlyName    *string `json:"friendly_name,omitempty" binding:"omitempty,min=1,max=200"`
	CriteriaText    *string `json:"criteria_text,omitempty" binding:"omitempty,min=1"`
	WebhookEnabled  *bool   `json:"webhook_enabled,omitempty"`
	WebhookEndpoint *string `json:"webhook_endpoint,omitempty" binding:"omitempty,safe_url"`
	WebhookPayload  *string `json:"webhook_payload,omitempty"`
}

// FieldResponse is the wire form of one configured field.
type FieldResponse struct {
	ID              string   `json:"id"`
	FriendlyName    string   `json:"friendly_name"`
	SanitizedName   string   `json:"sanitized_name"`
	CriteriaText    string   `json:"criteria_text"`
	WebhookEnabled  bool     `json:"webhook_enabled"`
	WebhookEndpoint string   `json:"webhook_endpoint,omitempty"`
	WebhookPayload  string   `json:"webhook_payload,omitempty"`
	State           string   `json:"state"`
	LastResult      string   `json:"last_result"`
	LastProbability *float64 `json:"last_probability,omitempty"`
	LastEventID     string   `json:"last_event_id,omitempty"`
	LastError       *string  `json:"last_error,omitempty"`
}

// ProblemResponse is one validation finding. FieldIndex is -1 for
// store-level problems.
type ProblemResponse struct {
	FieldIndex int    `json:"field_index"`
	Message    string `json:"message"`
}

// DeliveryLogEntryResponse is one webhook delivery attempt, newest first.
type DeliveryLogEntryResponse struct {
	Timestamp      string  `json:"timestamp"`
	Success        bool    `json:"success"`
	HTTPStatus     *int    `json:"http_status,omitempty"`
	DurationMillis int64   `json:"duration_millis"`
	Error          *string `json:"error,omitempty"`
}

// PresetSaveRequest is the request body for saving a preset.
type PresetSaveRequest struct {
	Name   string `json:"name" binding:"required,min=1,max=100"`
	Domain string `json:"domain" binding:"required"`
}

// PresetLoadRequest is the request body for loading a preset into a domain.
type PresetLoadRequest struct {
	Domain string `json:"domain" binding:"required"`
}

// PresetFieldResponse is one field definition inside a preset.
type PresetFieldResponse struct {
	FriendlyName  string `json:"friendly_name"`
	SanitizedName string `json:"sanitized_name"`
	CriteriaText  string `json:"criteria_text"`
}

// PresetResponse is the wire form of one preset.
type PresetResponse struct {
	Name    string                `json:"name"`
	SavedAt string                `json:"saved_at"`
	Fields  []PresetFieldResponse `json:"fields"`
}

// BeginEventRequest starts a capture event for a domain.
type BeginEventRequest struct {
	EventID string `json:"event_id" binding:"required"`
}

// EventScopeRequest addresses an already-started capture event. The
// wildcard "*" is accepted for cancel and error.
type EventScopeRequest struct {
	EventID string `json:"event_id" binding:"required"`
	Reason  string `json:"reason,omitempty"`
}

// CaptureOutcomeResponse reports what a results payload did.
type CaptureOutcomeResponse struct {
	Matched int `json:"matched"`
	Fired   int `json:"fired"`
}

// DeliveryRecordResponse is one archived delivery attempt.
type DeliveryRecordResponse struct {
	ID             string  `json:"id"`
	FieldID        string  `json:"field_id"`
	FieldName      string  `json:"field_name"`
	Endpoint       string  `json:"endpoint"`
	Success        bool    `json:"success"`
	HTTPStatus     *int    `json:"http_status,omitempty"`
	DurationMillis int64   `json:"duration_millis"`
	Error          *string `json:"error,omitempty"`
	CreatedAt      string  `json:"created_at"`
}

// FromField converts a domain field to its wire form.
func FromField(f *domain.Field) FieldResponse {
	return FieldResponse{
		ID:              f.ID.String(),
		FriendlyName:    f.FriendlyName,
		SanitizedName:   f.SanitizedName,
		CriteriaText:    f.CriteriaText,
		WebhookEnabled:  f.WebhookEnabled,
		WebhookEndpoint: f.WebhookEndpoint,
		WebhookPayload:  f.WebhookPayload,
		State:           string(f.State),
		LastResult:      string(f.LastResult),
		LastProbability: f.LastProbability,
		LastEventID:     f.LastEventID,
		LastError:       f.LastError,
	}
}

// FromFields converts a slice of domain fields.
func FromFields(fields []*domain.Field) []FieldResponse {
	out := make([]FieldResponse, 0, len(fields))
	for _, f := range fields {
		out = append(out, FromField(f))
	}
	return out
}

// FromPreset converts a domain preset to its wire form.
func FromPreset(p domain.Preset) PresetResponse {
	resp := PresetResponse{
		Name:    p.Name,
		SavedAt: p.SavedAt.UTC().Format(time.RFC3339),
		Fields:  make([]PresetFieldResponse, 0, len(p.Fields)),
	}
	for _, f := range p.Fields {
		resp.Fields = append(resp.Fields, PresetFieldResponse{
			FriendlyName:  f.FriendlyName,
			SanitizedName: f.SanitizedName,
			CriteriaText:  f.CriteriaText,
		})
	}
	return resp
}

// FromDeliveryLog converts a field's bounded delivery log.
func FromDeliveryLog(entries []domain.DeliveryLogEntry) []DeliveryLogEntryResponse {
	out := make([]DeliveryLogEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, DeliveryLogEntryResponse{
			Timestamp:      e.Timestamp.UTC().Format(time.RFC3339Nano),
			Success:        e.Success,
			HTTPStatus:     e.HTTPStatus,
			DurationMillis: e.DurationMillis,
			Error:          e.Error,
		})
	}
	return out
}

// FromDeliveryRecords converts archived delivery records.
func FromDeliveryRecords(records []domain.DeliveryRecord) []DeliveryRecordResponse {
	out := make([]DeliveryRecordResponse, 0, len(records))
	for _, r := range records {
		out = append(out, DeliveryRecordResponse{
			ID:             r.ID.String(),
			FieldID:        r.FieldID.String(),
			FieldName:      r.FieldName,
			Endpoint:       r.Endpoint,
			Success:        r.Success,
			HTTPStatus:     r.HTTPStatus,
			DurationMillis: r.DurationMillis,
			Error:          r.Error,
			CreatedAt:      r.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	return out
}
