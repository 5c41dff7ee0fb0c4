package postgres

import (
	"context"
	"fmt"
	"time"

	"field-capture-gateway/internal/core/domain"

	"github.com/google/uuid"
)

// DeliveryRepo implements ports.DeliveryArchive on PostgreSQL. The
// archive is append-only; the bounded per-field log in the KV store
// stays the operational view, this table is for forensics.
type DeliveryRepo struct {
	pool Pool
}

// NewDeliveryRepo creates a new DeliveryRepo.
func NewDeliveryRepo(pool Pool) *DeliveryRepo {
	return &DeliveryRepo{pool: pool}
}

// Record inserts one delivery attempt. ID and CreatedAt are filled if
// the dispatcher left them zero.
func (r *DeliveryRepo) Record(ctx context.Context, rec *domain.DeliveryRecord) error {
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	query := `INSERT INTO webhook_deliveries
		(id, domain, field_id, field_name, endpoint, success, http_status, duration_millis, error, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := r.pool.Exec(ctx, query,
		rec.ID, rec.Domain, rec.FieldID, rec.FieldName, rec.Endpoint,
		rec.Success, rec.HTTPStatus, rec.DurationMillis, rec.Error, rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert webhook delivery: %w", err)
	}
	return nil
}

// ListByDomain returns the newest delivery records for one domain.
func (r *DeliveryRepo) ListByDomain(ctx context.Context, domainName string, limit int) ([]domain.DeliveryRecord, error) {
	query := `SELECT id, domain, field_id, field_name, endpoint, success, http_status, duration_millis, error, created_at
		FROM webhook_deliveries
		WHERE domain = $1
		ORDER BY created_at DESC
		LIMIT $2`

	rows, err := r.pool.Query(ctx, query, domainName, limit)
	if err != nil {
		return nil, fmt.Errorf("query webhook deliveries: %w", err)
	}
	defer rows.Close()

	var records []domain.DeliveryRecord
	for rows.Next() {
		var rec domain.DeliveryRecord
		if err := rows.Scan(
			&rec.ID, &rec.Domain, &rec.FieldID, &rec.FieldName, &rec.Endpoint,
			&rec.Success, &rec.HTTPStatus, &rec.DurationMillis, &rec.Error, &rec.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan webhook delivery: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
