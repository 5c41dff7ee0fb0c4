package domain

import (
	"fmt"

	"github.com/google/uuid"
)

// FieldStore owns the configured fields of one watched domain and their
// lifecycle state. Pure data and transitions, no I/O; callers serialize
// access per store (one logical worker per capture event).
type FieldStore struct {
	fields []*Field
}

// NewFieldStore creates an empty store.
func NewFieldStore() *FieldStore {
	return &FieldStore{}
}

// RestoreFieldStore rebuilds a store from previously persisted fields,
// preserving their order and state.
func RestoreFieldStore(fields []*Field) *FieldStore {
	return &FieldStore{fields: fields}
}

// FieldSpec holds the caller-supplied attributes of a field.
type FieldSpec struct {
	FriendlyName    string
	CriteriaText    string
	WebhookEnabled  bool
	WebhookEndpoint string
	WebhookPayload  string
}

// FieldPatch holds a partial update; nil members are left unchanged.
type FieldPatch struct {
	FriendlyName    *string
	CriteriaText    *string
	WebhookEnabled  *bool
	WebhookEndpoint *string
	WebhookPayload  *string
}

// Problem describes one validation finding. FieldIndex is -1 for
// store-level problems.
type Problem struct {
	FieldIndex int    `json:"field_index"`
	Message    string `json:"message"`
}

// Fields returns the fields in insertion order. The returned slice is the
// store's own backing slice; callers must not reorder it.
func (s *FieldStore) Fields() []*Field {
	return s.fields
}

// FieldByID returns the field with the given id, or nil.
func (s *FieldStore) FieldByID(id uuid.UUID) *Field {
	for _, f := range s.fields {
		if f.ID == id {
			return f
		}
	}
	return nil
}

// AddField mints a new identity for spec and appends it in idle state.
// A sanitized-name collision with an existing field is rejected: the wire
// key space must stay well-defined, so collisions are never auto-resolved.
func (s *FieldStore) AddField(spec FieldSpec) (*Field, error) {
	sanitized := SanitizeFieldName(spec.FriendlyName)
	if other := s.fieldBySanitizedName(sanitized); other != nil {
		return nil, fmt.Errorf("sanitized name %q already taken by field %q", sanitized, other.FriendlyName)
	}

	f := &Field{
		ID:              uuid.New(),
		FriendlyName:    spec.FriendlyName,
		SanitizedName:   sanitized,
		CriteriaText:    spec.CriteriaText,
		WebhookEnabled:  spec.WebhookEnabled,
		WebhookEndpoint: spec.WebhookEndpoint,
		WebhookPayload:  spec.WebhookPayload,
		State:           FieldStateIdle,
		LastResult:      ResultUnknown,
	}
	s.fields = append(s.fields, f)
	return f, nil
}

// RemoveField deletes the field with the given id. No-op if absent.
func (s *FieldStore) RemoveField(id uuid.UUID) {
	for i, f := range s.fields {
		if f.ID == id {
			s.fields = append(s.fields[:i], s.fields[i+1:]...)
			return
		}
	}
}

// UpdateField merges patch into the identified field. A friendly-name
// change recomputes the sanitized name; a resulting collision is rejected
// and the field is left unmodified.
func (s *FieldStore) UpdateField(id uuid.UUID, patch FieldPatch) (*Field, error) {
	f := s.FieldByID(id)
	if f == nil {
		return nil, fmt.Errorf("field %s not found", id)
	}

	if patch.FriendlyName != nil && *patch.FriendlyName != f.FriendlyName {
		sanitized := SanitizeFieldName(*patch.FriendlyName)
		if other := s.fieldBySanitizedName(sanitized); other != nil && other.ID != f.ID {
			return nil, fmt.Errorf("sanitized name %q already taken by field %q", sanitized, other.FriendlyName)
		}
		f.FriendlyName = *patch.FriendlyName
		f.SanitizedName = sanitized
	}
	if patch.CriteriaText != nil {
		f.CriteriaText = *patch.CriteriaText
	}
	if patch.WebhookEnabled != nil {
		f.WebhookEnabled = *patch.WebhookEnabled
	}
	if patch.WebhookEndpoint != nil {
		f.WebhookEndpoint = *patch.WebhookEndpoint
	}
	if patch.WebhookPayload != nil {
		f.WebhookPayload = *patch.WebhookPayload
	}
	return f, nil
}

// MarkPending moves every field into pending at the start of a capture
// event, stamping the event id so a later error or cancellation can be
// scoped to exactly the fields that were part of this event.
func (s *FieldStore) MarkPending(eventID string) {
	for _, f := range s.fields {
		f.State = FieldStatePending
		f.LastEventID = eventID
		f.LastError = nil
	}
}

// ApplyResults transitions every field with a matching result to success
// and returns, in store order, the fields that just evaluated true.
// Fields with no matching key are left untouched: the evaluator may
// legitimately return a partial response. Results from a stale event
// (field already re-stamped by a newer MarkPending) are dropped.
func (s *FieldStore) ApplyResults(results map[string]FieldResult, eventID string) []*Field {
	var becameTrue []*Field
	for _, f := range s.fields {
		r, ok := results[f.SanitizedName]
		if !ok {
			continue
		}
		if eventID != EventWildcard && f.LastEventID != eventID {
			continue
		}

		f.State = FieldStateSuccess
		f.LastProbability = r.Probability
		f.LastError = nil
		if r.Value {
			f.LastResult = ResultTrue
			becameTrue = append(becameTrue, f)
		} else {
			f.LastResult = ResultFalse
		}
	}
	return becameTrue
}

// MarkError transitions the fields stamped with eventID (or all fields,
// for the wildcard) to error and clears their result values.
func (s *FieldStore) MarkError(reason string, eventID string) {
	for _, f := range s.fields {
		if eventID != EventWildcard && f.LastEventID != eventID {
			continue
		}
		f.State = FieldStateError
		f.LastResult = ResultUnknown
		f.LastProbability = nil
		msg := reason
		f.LastError = &msg
	}
}

// MarkCancelled moves fields that are still pending for eventID to
// cancelled. Result values are preserved: cancellation must not destroy
// the last known-good answer.
func (s *FieldStore) MarkCancelled(eventID string) {
	for _, f := range s.fields {
		if f.State != FieldStatePending {
			continue
		}
		if eventID != EventWildcard && f.LastEventID != eventID {
			continue
		}
		f.State = FieldStateCancelled
	}
}

// Validate reports configuration problems: an empty store, fields missing
// a name or criteria, and duplicate sanitized names. Each duplicate is
// reported against its offending field index; the first holder of a name
// is not flagged.
func (s *FieldStore) Validate() []Problem {
	var problems []Problem
	if len(s.fields) == 0 {
		problems = append(problems, Problem{FieldIndex: -1, Message: "store has no fields configured"})
		return problems
	}

	seen := make(map[string]int, len(s.fields))
	for i, f := range s.fields {
		if f.FriendlyName == "" {
			problems = append(problems, Problem{FieldIndex: i, Message: "field has no name"})
		}
		if f.CriteriaText == "" {
			problems = append(problems, Problem{FieldIndex: i, Message: "field has no criteria"})
		}
		if first, dup := seen[f.SanitizedName]; dup {
			problems = append(problems, Problem{
				FieldIndex: i,
				Message:    fmt.Sprintf("sanitized name %q duplicates field %d", f.SanitizedName, first),
			})
		} else {
			seen[f.SanitizedName] = i
		}
	}
	return problems
}

func (s *FieldStore) fieldBySanitizedName(name string) *Field {
	for _, f := range s.fields {
		if f.SanitizedName == name {
			return f
		}
	}
	return nil
}
