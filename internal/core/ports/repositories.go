package ports

import (
	"context"

	"field-capture-gateway/internal/core/domain"
)

// KVStore is the opaque persisted state store (string key -> bytes).
// Treated as eventually-consistent local storage, not transactional.
// Get returns (nil, nil) for an absent key.
type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// DeliveryArchive persists every webhook delivery attempt beyond the
// bounded in-memory per-field log. Optional: a nil archive disables it.
type DeliveryArchive interface {
	Record(ctx context.Context, rec *domain.DeliveryRecord) error
	ListByDomain(ctx context.Context, domainName string, limit int) ([]domain.DeliveryRecord, error)
}

// HealthChecker checks external dependency health.
type HealthChecker interface {
	// Ping verifies connectivity. Returns nil if healthy.
	Ping(ctx context.Context) error
	// Name returns the dependency name (e.g., "postgresql", "redis").
	Name() string
}
