package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func floatPtr(v float64) *float64 { return &v }

func newStoreWithFields(t *testing.T, names ...string) *FieldStore {
	t.Helper()
	store := NewFieldStore()
	for _, name := range names {
		_, err := store.AddField(FieldSpec{FriendlyName: name, CriteriaText: "criteria for " + name})
		require.NoError(t, err)
	}
	return store
}

func TestAddField_InitialState(t *testing.T) {
	store := NewFieldStore()

	f, err := store.AddField(FieldSpec{FriendlyName: "Price Drop!", CriteriaText: "price is below 100"})
	require.NoError(t, err)

	assert.NotEqual(t, f.ID.String(), "00000000-0000-0000-0000-000000000000")
	assert.Equal(t, "price_drop", f.SanitizedName)
	assert.Equal(t, FieldStateIdle, f.State)
	assert.Equal(t, ResultUnknown, f.LastResult)
	assert.Nil(t, f.LastProbability)
	assert.Empty(t, f.Log)
}

func TestAddField_RejectsSanitizedNameCollision(t *testing.T) {
	store := newStoreWithFields(t, "In Stock")

	_, err := store.AddField(FieldSpec{FriendlyName: "in stock?", CriteriaText: "x"})
	assert.Error(t, err, "distinct friendly names that sanitize alike must be rejected")
	assert.Len(t, store.Fields(), 1)
}

func TestRemoveField(t *testing.T) {
	store := newStoreWithFields(t, "a", "b", "c")
	id := store.Fields()[1].ID

	store.RemoveField(id)

	require.Len(t, store.Fields(), 2)
	assert.Equal(t, "a", store.Fields()[0].FriendlyName)
	assert.Equal(t, "c", store.Fields()[1].FriendlyName)

	// No-op for unknown id.
	store.RemoveField(id)
	assert.Len(t, store.Fields(), 2)
}

func TestUpdateField_RecomputesSanitizedName(t *testing.T) {
	store := newStoreWithFields(t, "Old Name")
	f := store.Fields()[0]

	newName := "Brand New Name"
	updated, err := store.UpdateField(f.ID, FieldPatch{FriendlyName: &newName})
	require.NoError(t, err)

	assert.Equal(t, "brand_new_name", updated.SanitizedName)
}

func TestUpdateField_RejectsCollision(t *testing.T) {
	store := newStoreWithFields(t, "First Field", "Second Field")
	second := store.Fields()[1]

	colliding := "first field"
	_, err := store.UpdateField(second.ID, FieldPatch{FriendlyName: &colliding})
	assert.Error(t, err)
	assert.Equal(t, "second_field", store.Fields()[1].SanitizedName, "field must be left unmodified on rejection")
}

func TestUpdateField_PartialMerge(t *testing.T) {
	store := newStoreWithFields(t, "Watched")
	f := store.Fields()[0]

	enabled := true
	endpoint := "https://hooks.example.com/fire"
	_, err := store.UpdateField(f.ID, FieldPatch{WebhookEnabled: &enabled, WebhookEndpoint: &endpoint})
	require.NoError(t, err)

	assert.True(t, f.WebhookEnabled)
	assert.Equal(t, endpoint, f.WebhookEndpoint)
	assert.Equal(t, "Watched", f.FriendlyName, "untouched attributes survive")
}

func TestMarkPending_StampsEventAndClearsError(t *testing.T) {
	store := newStoreWithFields(t, "a", "b")
	store.MarkError("evaluator unreachable", EventWildcard)

	store.MarkPending("evt-1")

	for _, f := range store.Fields() {
		assert.Equal(t, FieldStatePending, f.State)
		assert.Equal(t, "evt-1", f.LastEventID)
		assert.Nil(t, f.LastError)
	}
}

func TestApplyResults_EmptyResultsLeavesFieldsPending(t *testing.T) {
	store := newStoreWithFields(t, "a", "b")
	store.MarkPending("evt-1")

	became := store.ApplyResults(map[string]FieldResult{}, "evt-1")

	assert.Empty(t, became)
	for _, f := range store.Fields() {
		assert.Equal(t, FieldStatePending, f.State, "no key matched, no transition")
	}
}

func TestApplyResults_PartialResponse(t *testing.T) {
	store := newStoreWithFields(t, "Matched Field", "Unmatched Field")
	store.MarkPending("evt-1")

	became := store.ApplyResults(map[string]FieldResult{
		"matched_field": {Value: true, Probability: floatPtr(0.9), Shape: ShapePair},
	}, "evt-1")

	require.Len(t, became, 1)
	assert.Equal(t, "matched_field", became[0].SanitizedName)
	assert.Equal(t, FieldStateSuccess, store.Fields()[0].State)
	assert.Equal(t, ResultTrue, store.Fields()[0].LastResult)
	assert.Equal(t, 0.9, *store.Fields()[0].LastProbability)
	assert.Equal(t, FieldStatePending, store.Fields()[1].State, "unmatched field left untouched")
}

func TestApplyResults_FalseResultNotEmitted(t *testing.T) {
	store := newStoreWithFields(t, "A", "B")
	store.MarkPending("evt-1")

	became := store.ApplyResults(map[string]FieldResult{
		"a": {Value: true, Probability: floatPtr(0.9)},
		"b": {Value: false, Probability: floatPtr(0.2)},
	}, "evt-1")

	require.Len(t, became, 1)
	assert.Equal(t, "a", became[0].SanitizedName)
	assert.Equal(t, ResultFalse, store.Fields()[1].LastResult)
	assert.Equal(t, FieldStateSuccess, store.Fields()[1].State)
}

func TestApplyResults_StoreOrderPreserved(t *testing.T) {
	store := newStoreWithFields(t, "zeta", "alpha", "mid")
	store.MarkPending("evt-1")

	became := store.ApplyResults(map[string]FieldResult{
		"mid":   {Value: true},
		"zeta":  {Value: true},
		"alpha": {Value: true},
	}, "evt-1")

	require.Len(t, became, 3)
	assert.Equal(t, "zeta", became[0].SanitizedName, "emission follows insertion order, not map order")
	assert.Equal(t, "alpha", became[1].SanitizedName)
	assert.Equal(t, "mid", became[2].SanitizedName)
}

func TestApplyResults_StaleEventDropped(t *testing.T) {
	store := newStoreWithFields(t, "a")
	store.MarkPending("evt-old")
	store.MarkPending("evt-new")

	became := store.ApplyResults(map[string]FieldResult{"a": {Value: true}}, "evt-old")

	assert.Empty(t, became, "a slow event's results must not stomp a newer pending event")
	assert.Equal(t, FieldStatePending, store.Fields()[0].State)
}

func TestMarkError_ScopedByEvent(t *testing.T) {
	store := newStoreWithFields(t, "a")
	store.MarkPending("evt-1")
	store.ApplyResults(map[string]FieldResult{"a": {Value: true, Probability: floatPtr(0.8)}}, "evt-1")

	store.MarkError("timeout", "evt-1")

	f := store.Fields()[0]
	assert.Equal(t, FieldStateError, f.State)
	assert.Equal(t, ResultUnknown, f.LastResult, "error clears the result value")
	assert.Nil(t, f.LastProbability)
	require.NotNil(t, f.LastError)
	assert.Equal(t, "timeout", *f.LastError)
}

func TestMarkError_OtherEventUntouched(t *testing.T) {
	store := newStoreWithFields(t, "a")
	store.MarkPending("evt-2")

	store.MarkError("boom", "evt-1")

	assert.Equal(t, FieldStatePending, store.Fields()[0].State)
}

func TestMarkError_Wildcard(t *testing.T) {
	store := newStoreWithFields(t, "a", "b")
	store.MarkPending("evt-9")

	store.MarkError("evaluator down", EventWildcard)

	for _, f := range store.Fields() {
		assert.Equal(t, FieldStateError, f.State)
	}
}

func TestMarkCancelled_PreservesResultValues(t *testing.T) {
	store := newStoreWithFields(t, "a")
	store.MarkPending("evt-1")
	store.ApplyResults(map[string]FieldResult{"a": {Value: true, Probability: floatPtr(0.7)}}, "evt-1")

	// Next event begins, then gets cancelled.
	store.MarkPending("evt-2")
	store.MarkCancelled("evt-2")

	f := store.Fields()[0]
	assert.Equal(t, FieldStateCancelled, f.State)
	assert.Equal(t, ResultTrue, f.LastResult, "cancellation must not destroy the last known-good answer")
	assert.Equal(t, 0.7, *f.LastProbability)
}

func TestMarkCancelled_EventScopingHolds(t *testing.T) {
	store := newStoreWithFields(t, "a")
	store.MarkPending("evt-1")

	store.MarkCancelled("evt-2")

	assert.Equal(t, FieldStatePending, store.Fields()[0].State, "mismatched event id leaves fields untouched")
}

func TestMarkCancelled_OnlyPendingFields(t *testing.T) {
	store := newStoreWithFields(t, "a")
	store.MarkPending("evt-1")
	store.ApplyResults(map[string]FieldResult{"a": {Value: false}}, "evt-1")

	store.MarkCancelled("evt-1")

	assert.Equal(t, FieldStateSuccess, store.Fields()[0].State, "resolved fields are not cancelled")
}

func TestSuccessBackToPending(t *testing.T) {
	store := newStoreWithFields(t, "a")
	store.MarkPending("evt-1")
	store.ApplyResults(map[string]FieldResult{"a": {Value: true}}, "evt-1")

	store.MarkPending("evt-2")

	f := store.Fields()[0]
	assert.Equal(t, FieldStatePending, f.State)
	assert.Equal(t, "evt-2", f.LastEventID)
	assert.Equal(t, ResultTrue, f.LastResult, "previous result held until the new event resolves")
}

func TestValidate_EmptyStore(t *testing.T) {
	store := NewFieldStore()

	problems := store.Validate()

	require.Len(t, problems, 1)
	assert.Equal(t, -1, problems[0].FieldIndex)
}

func TestValidate_MissingNameAndCriteria(t *testing.T) {
	store := RestoreFieldStore([]*Field{
		{FriendlyName: "", SanitizedName: "unnamed_field", CriteriaText: "has criteria"},
		{FriendlyName: "named", SanitizedName: "named", CriteriaText: ""},
	})

	problems := store.Validate()

	require.Len(t, problems, 2)
	assert.Equal(t, 0, problems[0].FieldIndex)
	assert.Contains(t, problems[0].Message, "no name")
	assert.Equal(t, 1, problems[1].FieldIndex)
	assert.Contains(t, problems[1].Message, "no criteria")
}

func TestValidate_DuplicateSanitizedNames(t *testing.T) {
	// Restored stores can carry collisions that AddField would have rejected.
	store := RestoreFieldStore([]*Field{
		{FriendlyName: "In Stock", SanitizedName: "in_stock", CriteriaText: "x"},
		{FriendlyName: "in stock?", SanitizedName: "in_stock", CriteriaText: "x"},
		{FriendlyName: "IN-STOCK", SanitizedName: "in_stock", CriteriaText: "x"},
	})

	problems := store.Validate()

	require.Len(t, problems, 2, "exactly one problem per extra collision")
	assert.Equal(t, 1, problems[0].FieldIndex)
	assert.Equal(t, 2, problems[1].FieldIndex)
}

func TestAppendLog_BoundedNewestFirst(t *testing.T) {
	f := &Field{}
	for i := 0; i < DeliveryLogCapacity+10; i++ {
		status := 200 + i
		f.AppendLog(DeliveryLogEntry{Success: true, HTTPStatus: &status})
	}

	require.Len(t, f.Log, DeliveryLogCapacity)
	assert.Equal(t, 200+DeliveryLogCapacity+9, *f.Log[0].HTTPStatus, "newest entry first")
	assert.Equal(t, 200+10, *f.Log[DeliveryLogCapacity-1].HTTPStatus, "oldest surviving entry last")
}
