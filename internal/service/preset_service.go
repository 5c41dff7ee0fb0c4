package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"field-capture-gateway/internal/core/domain"
	"field-capture-gateway/internal/core/ports"
	"field-capture-gateway/pkg/apperror"

	"github.com/rs/zerolog"
)

// PresetService manages named snapshots of field definitions in the KV
// store, all under the single presetsKey entry.
type PresetService struct {
	kv     ports.KVStore
	fields *FieldService
	log    zerolog.Logger
}

// NewPresetService creates a KV-backed PresetService.
func NewPresetService(kv ports.KVStore, fields *FieldService, log zerolog.Logger) *PresetService {
	return &PresetService{kv: kv, fields: fields, log: log}
}

// SavePreset snapshots the domain's current field definitions under name,
// overwriting any existing preset with that name.
func (s *PresetService) SavePreset(ctx context.Context, name string, domainName string) (*domain.Preset, error) {
	if name == "" {
		return nil, apperror.Validation("preset name must not be empty")
	}
	store, err := s.fields.loadStore(ctx, domainName)
	if err != nil {
		return nil, err
	}
	if len(store.Fields()) == 0 {
		return nil, apperror.Validation("cannot save a preset from an empty store")
	}

	presets, err := s.loadPresets(ctx)
	if err != nil {
		return nil, err
	}
	p := domain.SnapshotPreset(name, store)
	presets[name] = p
	if err := s.savePresets(ctx, presets); err != nil {
		return nil, err
	}
	s.log.Info().Str("preset", name).Int("fields", len(p.Fields)).Msg("preset saved")
	return &p, nil
}

// LoadPreset replaces the domain's fields with freshly-identified copies
// of the preset's definitions and returns the new fields.
func (s *PresetService) LoadPreset(ctx context.Context, name string, domainName string) ([]*domain.Field, error) {
	presets, err := s.loadPresets(ctx)
	if err != nil {
		return nil, err
	}
	p, ok := presets[name]
	if !ok {
		return nil, apperror.ErrPresetNotFound(name)
	}

	store, err := p.Instantiate()
	if err != nil {
		return nil, apperror.Validation(err.Error())
	}
	if err := s.fields.ReplaceFields(ctx, domainName, store); err != nil {
		return nil, err
	}
	s.log.Info().Str("preset", name).Str("domain", domainName).Msg("preset loaded")
	return store.Fields(), nil
}

// ListPresets returns all presets sorted by name.
func (s *PresetService) ListPresets(ctx context.Context) ([]domain.Preset, error) {
	presets, err := s.loadPresets(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Preset, 0, len(presets))
	for _, p := range presets {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// DeletePreset removes a preset by name.
func (s *PresetService) DeletePreset(ctx context.Context, name string) error {
	presets, err := s.loadPresets(ctx)
	if err != nil {
		return err
	}
	if _, ok := presets[name]; !ok {
		return apperror.ErrPresetNotFound(name)
	}
	delete(presets, name)
	return s.savePresets(ctx, presets)
}

func (s *PresetService) loadPresets(ctx context.Context) (map[string]domain.Preset, error) {
	raw, err := s.kv.Get(ctx, presetsKey)
	if err != nil {
		return nil, apperror.ErrStorage(err)
	}
	if raw == nil {
		return make(map[string]domain.Preset), nil
	}
	var presets map[string]domain.Preset
	if err := json.Unmarshal(raw, &presets); err != nil {
		return nil, apperror.ErrStorage(fmt.Errorf("decoding presets: %w", err))
	}
	if presets == nil {
		presets = make(map[string]domain.Preset)
	}
	return presets, nil
}

func (s *PresetService) savePresets(ctx context.Context, presets map[string]domain.Preset) error {
	raw, err := json.Marshal(presets)
	if err != nil {
		return apperror.ErrStorage(fmt.Errorf("encoding presets: %w", err))
	}
	if err := s.kv.Set(ctx, presetsKey, raw); err != nil {
		return apperror.ErrStorage(err)
	}
	return nil
}
