package domain

import (
	"time"

	"github.com/google/uuid"
)

// FieldState represents the lifecycle state of a field across capture events.
type FieldState string

const (
	FieldStateIdle      FieldState = "IDLE"
	FieldStatePending   FieldState = "PENDING"
	FieldStateSuccess   FieldState = "SUCCESS"
	FieldStateError     FieldState = "ERROR"
	FieldStateCancelled FieldState = "CANCELLED"
)

// ResultState is the tri-state outcome of a field evaluation.
type ResultState string

const (
	ResultUnknown ResultState = "UNKNOWN"
	ResultTrue    ResultState = "TRUE"
	ResultFalse   ResultState = "FALSE"
)

// EventWildcard matches every event id in scoped transitions.
const EventWildcard = "*"

// DeliveryLogCapacity bounds the per-field delivery log. Oldest entries
// are evicted when the log is full.
const DeliveryLogCapacity = 50

// Field is a named evaluation criterion tracked across capture events.
type Field struct {
	ID              uuid.UUID   `json:"id"`
	FriendlyName    string      `json:"friendly_name"`
	SanitizedName   string      `json:"sanitized_name"` // wire key, unique per store
	CriteriaText    string      `json:"criteria_text"`
	WebhookEnabled  bool        `json:"webhook_enabled"`
	WebhookEndpoint string      `json:"webhook_endpoint,omitempty"`
	WebhookPayload  string      `json:"webhook_payload,omitempty"` // opaque JSON template, sent as-is on fire
	State           FieldState  `json:"state"`
	LastResult      ResultState `json:"last_result"`
	LastProbability *float64    `json:"last_probability,omitempty"`
	LastEventID     string      `json:"last_event_id,omitempty"`
	LastError       *string     `json:"last_error,omitempty"`
	Log             []DeliveryLogEntry `json:"log,omitempty"` // newest first
}

// DeliveryLogEntry records one webhook delivery attempt for a field.
type DeliveryLogEntry struct {
	Timestamp      time.Time `json:"timestamp"`
	Success        bool      `json:"success"`
	HTTPStatus     *int      `json:"http_status,omitempty"`
	DurationMillis int64     `json:"duration_millis"`
	Error          *string   `json:"error,omitempty"`
}

// AppendLog prepends an entry to the field's delivery log, evicting the
// oldest entry once the capacity is reached.
func (f *Field) AppendLog(entry DeliveryLogEntry) {
	f.Log = append([]DeliveryLogEntry{entry}, f.Log...)
	if len(f.Log) > DeliveryLogCapacity {
		f.Log = f.Log[:DeliveryLogCapacity]
	}
}

// ResultShape tags which of the accepted wire shapes a result was decoded from.
type ResultShape int

const (
	ShapePair ResultShape = iota // [bool, probability]
	ShapeObject                  // {"value": bool, "probability": float}
	ShapeBare                    // bool
)

// FieldResult is the decoded evaluation for a single field. Probability is
// nil for the bare-boolean shape.
type FieldResult struct {
	Value       bool
	Probability *float64
	Shape       ResultShape
}
