package postgres

import (
	"context"
	"testing"
	"time"

	"field-capture-gateway/internal/core/domain"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeliveryRepo_Record(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewDeliveryRepo(mock)
	status := 200
	rec := &domain.DeliveryRecord{
		ID:             uuid.New(),
		Domain:         "example.com",
		FieldID:        uuid.New(),
		FieldName:      "price_drop",
		Endpoint:       "https://hooks.example.com/drop",
		Success:        true,
		HTTPStatus:     &status,
		DurationMillis: 42,
		CreatedAt:      time.Now().UTC().Truncate(time.Microsecond),
	}

	mock.ExpectExec("INSERT INTO webhook_deliveries").
		WithArgs(rec.ID, rec.Domain, rec.FieldID, rec.FieldName, rec.Endpoint,
			rec.Success, rec.HTTPStatus, rec.DurationMillis, rec.Error, rec.CreatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err = repo.Record(context.Background(), rec)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeliveryRepo_RecordFillsIdentity(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewDeliveryRepo(mock)
	rec := &domain.DeliveryRecord{
		Domain:    "example.com",
		FieldID:   uuid.New(),
		FieldName: "price_drop",
		Endpoint:  "https://hooks.example.com/drop",
	}

	mock.ExpectExec("INSERT INTO webhook_deliveries").
		WithArgs(pgxmock.AnyArg(), rec.Domain, rec.FieldID, rec.FieldName, rec.Endpoint,
			rec.Success, rec.HTTPStatus, rec.DurationMillis, rec.Error, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err = repo.Record(context.Background(), rec)
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, rec.ID)
	assert.False(t, rec.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeliveryRepo_ListByDomain(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewDeliveryRepo(mock)
	now := time.Now().UTC().Truncate(time.Microsecond)
	fieldID := uuid.New()
	status := 503
	errMsg := "endpoint returned status 503"

	cols := []string{"id", "domain", "field_id", "field_name", "endpoint", "success", "http_status", "duration_millis", "error", "created_at"}
	mock.ExpectQuery("SELECT .+ FROM webhook_deliveries WHERE domain").
		WithArgs("example.com", 20).
		WillReturnRows(pgxmock.NewRows(cols).
			AddRow(uuid.New(), "example.com", fieldID, "price_drop", "https://hooks.example.com/drop", false, &status, int64(120), &errMsg, now))

	records, err := repo.ListByDomain(context.Background(), "example.com", 20)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, fieldID, records[0].FieldID)
	assert.False(t, records[0].Success)
	require.NotNil(t, records[0].HTTPStatus)
	assert.Equal(t, 503, *records[0].HTTPStatus)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeliveryRepo_ListByDomain_Empty(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewDeliveryRepo(mock)
	cols := []string{"id", "domain", "field_id", "field_name", "endpoint", "success", "http_status", "duration_millis", "error", "created_at"}
	mock.ExpectQuery("SELECT .+ FROM webhook_deliveries WHERE domain").
		WithArgs("quiet.com", 20).
		WillReturnRows(pgxmock.NewRows(cols))

	records, err := repo.ListByDomain(context.Background(), "quiet.com", 20)
	assert.NoError(t, err)
	assert.Empty(t, records)
	assert.NoError(t, mock.ExpectationsWereMet())
}
