package service

import (
	"encoding/json"
	"fmt"

	"field-capture-gateway/internal/core/domain"
)

// resultsContainerKey is the wire key holding the per-field results in an
// evaluator payload.
const resultsContainerKey = "fields"

// ResultMatcher decodes a raw evaluator payload and maps it onto the
// store's fields by sanitized name. Pure; no state.
type ResultMatcher struct{}

// NewResultMatcher creates a new ResultMatcher.
func NewResultMatcher() *ResultMatcher {
	return &ResultMatcher{}
}

// Match decodes rawPayload and returns results keyed by sanitized name for
// the fields present in both the payload and the store. A payload missing
// the expected container key is a structural error, never an empty result:
// the caller must be able to distinguish "evaluator returned nothing" from
// "evaluator returned garbage". Payload keys with no matching field are
// ignored.
func (m *ResultMatcher) Match(fields []*domain.Field, rawPayload []byte) (map[string]domain.FieldResult, error) {
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(rawPayload, &envelope); err != nil {
		return nil, fmt.Errorf("payload is not a JSON object: %w", err)
	}

	rawFields, ok := envelope[resultsContainerKey]
	if !ok {
		return nil, fmt.Errorf("payload has no %q container", resultsContainerKey)
	}

	var byName map[string]json.RawMessage
	if err := json.Unmarshal(rawFields, &byName); err != nil {
		return nil, fmt.Errorf("%q container is not an object: %w", resultsContainerKey, err)
	}

	results := make(map[string]domain.FieldResult)
	for _, f := range fields {
		raw, ok := byName[f.SanitizedName]
		if !ok {
			continue
		}
		r, err := decodeResult(raw)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", f.SanitizedName, err)
		}
		results[f.SanitizedName] = r
	}
	return results, nil
}

// decodeResult accepts the three wire shapes for one field result:
// a [bool, probability] pair, an object with boolean/probability members,
// or a bare boolean.
func decodeResult(raw json.RawMessage) (domain.FieldResult, error) {
	var bare bool
	if err := json.Unmarshal(raw, &bare); err == nil {
		return domain.FieldResult{Value: bare, Shape: domain.ShapeBare}, nil
	}

	var pair []json.RawMessage
	if err := json.Unmarshal(raw, &pair); err == nil {
		if len(pair) != 2 {
			return domain.FieldResult{}, fmt.Errorf("result pair must have 2 elements, got %d", len(pair))
		}
		var value bool
		if err := json.Unmarshal(pair[0], &value); err != nil {
			return domain.FieldResult{}, fmt.Errorf("pair element 0 is not a boolean")
		}
		var probability float64
		if err := json.Unmarshal(pair[1], &probability); err != nil {
			return domain.FieldResult{}, fmt.Errorf("pair element 1 is not a number")
		}
		if err := checkProbability(probability); err != nil {
			return domain.FieldResult{}, err
		}
		return domain.FieldResult{Value: value, Probability: &probability, Shape: domain.ShapePair}, nil
	}

	var obj struct {
		Value       *bool    `json:"value"`
		Result      *bool    `json:"result"`
		Probability *float64 `json:"probability"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil {
		value := obj.Value
		if value == nil {
			value = obj.Result
		}
		if value != nil {
			if obj.Probability != nil {
				if err := checkProbability(*obj.Probability); err != nil {
					return domain.FieldResult{}, err
				}
			}
			return domain.FieldResult{Value: *value, Probability: obj.Probability, Shape: domain.ShapeObject}, nil
		}
	}

	return domain.FieldResult{}, fmt.Errorf("unrecognized result shape %s", string(raw))
}

func checkProbability(p float64) error {
	if p < 0 || p > 1 {
		return fmt.Errorf("probability %v outside [0,1]", p)
	}
	return nil
}
