package domain

import "time"

// PresetField is the definition snapshot of one field. Presets never carry
// result state or webhook settings.
type PresetField struct {
	FriendlyName  string `json:"friendly_name"`
	SanitizedName string `json:"sanitized_name"`
	CriteriaText  string `json:"criteria_text"`
}

// Preset is a named, reusable snapshot of field definitions.
type Preset struct {
	Name    string        `json:"name"`
	Fields  []PresetField `json:"fields"`
	SavedAt time.Time     `json:"saved_at"`
}

// SnapshotPreset captures the current field definitions of a store.
func SnapshotPreset(name string, store *FieldStore) Preset {
	p := Preset{Name: name, SavedAt: time.Now().UTC()}
	for _, f := range store.Fields() {
		p.Fields = append(p.Fields, PresetField{
			FriendlyName:  f.FriendlyName,
			SanitizedName: f.SanitizedName,
			CriteriaText:  f.CriteriaText,
		})
	}
	return p
}

// Instantiate builds a fresh FieldStore from the preset. Every field gets
// a new identity, idle state and unknown result; prior log and result
// state does not carry over.
func (p Preset) Instantiate() (*FieldStore, error) {
	store := NewFieldStore()
	for _, pf := range p.Fields {
		if _, err := store.AddField(FieldSpec{
			FriendlyName: pf.FriendlyName,
			CriteriaText: pf.CriteriaText,
		}); err != nil {
			return nil, err
		}
	}
	return store, nil
}
