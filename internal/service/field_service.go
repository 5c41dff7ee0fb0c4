package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"field-capture-gateway/internal/core/domain"
	"field-capture-gateway/internal/core/ports"
	"field-capture-gateway/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Storage keys. Fields are stored per watched domain; presets are global.
const (
	fieldsKeyPrefix = "fields_"
	presetsKey      = "fieldPresets"
)

// FieldService owns per-domain field configuration in the KV store. Every
// read-modify-write for one domain runs under that domain's lock, which is
// what serializes state transitions for a given store.
type FieldService struct {
	kv  ports.KVStore
	log zerolog.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewFieldService creates a KV-backed FieldService.
func NewFieldService(kv ports.KVStore, log zerolog.Logger) *FieldService {
	return &FieldService{
		kv:    kv,
		log:   log,
		locks: make(map[string]*sync.Mutex),
	}
}

// ListFields returns the configured fields for a domain in insertion order.
func (s *FieldService) ListFields(ctx context.Context, domainName string) ([]*domain.Field, error) {
	store, err := s.loadStore(ctx, domainName)
	if err != nil {
		return nil, err
	}
	return store.Fields(), nil
}

// AddField appends a new field to the domain's store.
func (s *FieldService) AddField(ctx context.Context, domainName string, spec domain.FieldSpec) (*domain.Field, error) {
	var added *domain.Field
	err := s.withStore(ctx, domainName, func(store *domain.FieldStore) error {
		f, err := store.AddField(spec)
		if err != nil {
			return apperror.ErrDuplicateFieldName(domain.SanitizeFieldName(spec.FriendlyName))
		}
		added = f
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("domain", domainName).Str("field", added.SanitizedName).Msg("field added")
	return added, nil
}

// UpdateField merges a partial update into the identified field.
func (s *FieldService) UpdateField(ctx context.Context, domainName string, id uuid.UUID, patch domain.FieldPatch) (*domain.Field, error) {
	var updated *domain.Field
	err := s.withStore(ctx, domainName, func(store *domain.FieldStore) error {
		if store.FieldByID(id) == nil {
			return apperror.ErrFieldNotFound(id.String())
		}
		f, err := store.UpdateField(id, patch)
		if err != nil {
			return apperror.ErrDuplicateFieldName(domain.SanitizeFieldName(*patch.FriendlyName))
		}
		updated = f
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// RemoveField deletes a field. Removing an unknown id is not an error.
func (s *FieldService) RemoveField(ctx context.Context, domainName string, id uuid.UUID) error {
	return s.withStore(ctx, domainName, func(store *domain.FieldStore) error {
		store.RemoveField(id)
		return nil
	})
}

// Validate reports configuration problems for a domain's store.
func (s *FieldService) Validate(ctx context.Context, domainName string) ([]domain.Problem, error) {
	store, err := s.loadStore(ctx, domainName)
	if err != nil {
		return nil, err
	}
	return store.Validate(), nil
}

// DeliveryLog returns the bounded delivery log of one field, newest first.
func (s *FieldService) DeliveryLog(ctx context.Context, domainName string, id uuid.UUID) ([]domain.DeliveryLogEntry, error) {
	store, err := s.loadStore(ctx, domainName)
	if err != nil {
		return nil, err
	}
	f := store.FieldByID(id)
	if f == nil {
		return nil, apperror.ErrFieldNotFound(id.String())
	}
	return f.Log, nil
}

// AppendDeliveryLog implements ports.DeliveryLogSink: the dispatcher calls
// it once per delivery attempt, in delivery order.
func (s *FieldService) AppendDeliveryLog(ctx context.Context, domainName string, fieldID uuid.UUID, entry domain.DeliveryLogEntry) error {
	return s.withStore(ctx, domainName, func(store *domain.FieldStore) error {
		f := store.FieldByID(fieldID)
		if f == nil {
			// Field removed between dispatch and log write. Drop the entry.
			s.log.Debug().Str("domain", domainName).Str("field_id", fieldID.String()).Msg("delivery log for removed field dropped")
			return nil
		}
		f.AppendLog(entry)
		return nil
	})
}

// ReplaceFields swaps the domain's entire store, used by preset loading.
// Old identities and result state do not survive the swap.
func (s *FieldService) ReplaceFields(ctx context.Context, domainName string, store *domain.FieldStore) error {
	lock := s.domainLock(domainName)
	lock.Lock()
	defer lock.Unlock()
	return s.saveStore(ctx, domainName, store)
}

// withStore runs fn over the domain's store under the domain lock and
// persists the store unless fn fails.
func (s *FieldService) withStore(ctx context.Context, domainName string, fn func(*domain.FieldStore) error) error {
	lock := s.domainLock(domainName)
	lock.Lock()
	defer lock.Unlock()

	store, err := s.loadStore(ctx, domainName)
	if err != nil {
		return err
	}
	if err := fn(store); err != nil {
		return err
	}
	return s.saveStore(ctx, domainName, store)
}

func (s *FieldService) domainLock(domainName string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.locks[domainName]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[domainName] = lock
	}
	return lock
}

func (s *FieldService) loadStore(ctx context.Context, domainName string) (*domain.FieldStore, error) {
	raw, err := s.kv.Get(ctx, fieldsKeyPrefix+domainName)
	if err != nil {
		return nil, apperror.ErrStorage(err)
	}
	if raw == nil {
		return domain.NewFieldStore(), nil
	}
	var fields []*domain.Field
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, apperror.ErrStorage(fmt.Errorf("decoding fields for %s: %w", domainName, err))
	}
	return domain.RestoreFieldStore(fields), nil
}

func (s *FieldService) saveStore(ctx context.Context, domainName string, store *domain.FieldStore) error {
	raw, err := json.Marshal(store.Fields())
	if err != nil {
		return apperror.ErrStorage(fmt.Errorf("encoding fields for %s: %w", domainName, err))
	}
	if err := s.kv.Set(ctx, fieldsKeyPrefix+domainName, raw); err != nil {
		return apperror.ErrStorage(err)
	}
	return nil
}
