package ports

import (
	"context"
	"time"

	"field-capture-gateway/internal/core/domain"

	"github.com/google/uuid"
)

// SignatureService computes and verifies the HMAC-SHA256 request scheme
// shared by the outbound dispatcher and the inbound authenticator: the
// signature covers the body bytes immediately followed by the decimal
// millisecond timestamp, no separator.
type SignatureService interface {
	Sign(secret string, body []byte, timestampMillis int64) string
	Verify(secret string, body []byte, timestampMillis int64, signature string) bool
}

// CredentialRegistry resolves the shared secret bound to an API key.
type CredentialRegistry interface {
	SecretFor(apiKey string) (string, bool)
}

// HashService handles operator password hashing (Argon2id).
type HashService interface {
	Hash(password string) (string, error)
	Verify(password string, hash string) (bool, error)
}

// TokenService handles admin session tokens.
type TokenService interface {
	Generate(subject string) (string, time.Time, error)
	Validate(tokenString string) (*TokenClaims, error)
}

// TokenClaims holds the parsed token claims.
type TokenClaims struct {
	Subject string
}

// AuthService authenticates the operator and issues a session token.
type AuthService interface {
	Login(ctx context.Context, username, password string) (string, time.Time, error)
}

// FieldService owns per-domain field configuration backed by the KV store.
// All mutations for one domain are serialized.
type FieldService interface {
	ListFields(ctx context.Context, domainName string) ([]*domain.Field, error)
	AddField(ctx context.Context, domainName string, spec domain.FieldSpec) (*domain.Field, error)
	UpdateField(ctx context.Context, domainName string, id uuid.UUID, patch domain.FieldPatch) (*domain.Field, error)
	RemoveField(ctx context.Context, domainName string, id uuid.UUID) error
	Validate(ctx context.Context, domainName string) ([]domain.Problem, error)
	DeliveryLog(ctx context.Context, domainName string, id uuid.UUID) ([]domain.DeliveryLogEntry, error)
}

// DeliveryLogSink receives per-field delivery log entries from the
// dispatcher and persists them.
type DeliveryLogSink interface {
	AppendDeliveryLog(ctx context.Context, domainName string, fieldID uuid.UUID, entry domain.DeliveryLogEntry) error
}

// PresetService manages named snapshots of field definitions.
type PresetService interface {
	SavePreset(ctx context.Context, name string, domainName string) (*domain.Preset, error)
	LoadPreset(ctx context.Context, name string, domainName string) ([]*domain.Field, error)
	ListPresets(ctx context.Context) ([]domain.Preset, error)
	DeletePreset(ctx context.Context, name string) error
}

// CaptureService drives the field lifecycle through one capture event.
type CaptureService interface {
	BeginEvent(ctx context.Context, domainName string, eventID string) error
	ApplyResults(ctx context.Context, domainName string, eventID string, rawPayload []byte) (*CaptureOutcome, error)
	CancelEvent(ctx context.Context, domainName string, eventID string) error
	FailEvent(ctx context.Context, domainName string, eventID string, reason string) error
}

// CaptureOutcome summarizes what one results payload did to the store.
type CaptureOutcome struct {
	Matched int // fields with a decoded result
	Fired   int // fields handed to the dispatcher
}

// DispatchBatch is one ordered unit of webhook work: the fields of a
// single capture event that just evaluated true, in store order.
type DispatchBatch struct {
	Domain  string
	EventID string
	Fields  []domain.Field // snapshots taken at fire time
}

// WebhookDispatcher delivers authenticated notifications for fields that
// just evaluated true. Batches are drained by a single worker; deliveries
// within a batch are strictly sequential.
type WebhookDispatcher interface {
	Enqueue(batch DispatchBatch)
}
