package service

import (
	"context"

	"field-capture-gateway/internal/core/domain"
	"field-capture-gateway/internal/core/ports"
	"field-capture-gateway/pkg/apperror"

	"github.com/rs/zerolog"
)

// CaptureService drives one capture event through the field lifecycle:
// begin stamps every field pending, results transitions matched fields and
// hands the newly-true subset to the dispatcher, cancel and error resolve
// an event without results. Per-domain serialization comes from the
// FieldService lock, so overlapping events for different domains never
// contend.
type CaptureService struct {
	fields     *FieldService
	matcher    *ResultMatcher
	dispatcher ports.WebhookDispatcher
	log        zerolog.Logger
}

// NewCaptureService creates a new CaptureService.
func NewCaptureService(fields *FieldService, matcher *ResultMatcher, dispatcher ports.WebhookDispatcher, log zerolog.Logger) *CaptureService {
	return &CaptureService{
		fields:     fields,
		matcher:    matcher,
		dispatcher: dispatcher,
		log:        log,
	}
}

// BeginEvent marks every field of the domain pending under eventID.
func (s *CaptureService) BeginEvent(ctx context.Context, domainName string, eventID string) error {
	if eventID == "" || eventID == domain.EventWildcard {
		return apperror.Validation("event id must be a non-wildcard identifier")
	}
	err := s.fields.withStore(ctx, domainName, func(store *domain.FieldStore) error {
		store.MarkPending(eventID)
		return nil
	})
	if err != nil {
		return err
	}
	s.log.Debug().Str("domain", domainName).Str("event_id", eventID).Msg("capture event started")
	return nil
}

// ApplyResults decodes the evaluator payload, applies it to the store and
// enqueues webhook deliveries for fields that just evaluated true. A
// structurally malformed payload marks the whole event as failed and is
// surfaced to the caller.
func (s *CaptureService) ApplyResults(ctx context.Context, domainName string, eventID string, rawPayload []byte) (*ports.CaptureOutcome, error) {
	var (
		outcome  ports.CaptureOutcome
		batch    ports.DispatchBatch
		matchErr error
	)

	err := s.fields.withStore(ctx, domainName, func(store *domain.FieldStore) error {
		results, err := s.matcher.Match(store.Fields(), rawPayload)
		if err != nil {
			matchErr = err
			store.MarkError(err.Error(), eventID)
			return nil // persist the error state
		}

		becameTrue := store.ApplyResults(results, eventID)
		outcome.Matched = len(results)

		batch = ports.DispatchBatch{Domain: domainName, EventID: eventID}
		for _, f := range becameTrue {
			if !f.WebhookEnabled || f.WebhookEndpoint == "" {
				continue
			}
			batch.Fields = append(batch.Fields, *f)
		}
		outcome.Fired = len(batch.Fields)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if matchErr != nil {
		return nil, apperror.ErrStructuralMismatch(matchErr.Error())
	}

	if len(batch.Fields) > 0 {
		s.dispatcher.Enqueue(batch)
	}
	s.log.Info().
		Str("domain", domainName).
		Str("event_id", eventID).
		Int("matched", outcome.Matched).
		Int("fired", outcome.Fired).
		Msg("capture results applied")
	return &outcome, nil
}

// CancelEvent moves the event's still-pending fields to cancelled,
// preserving their last known results. An already-dispatched webhook is
// not aborted; dispatch and lifecycle cancellation are independent.
func (s *CaptureService) CancelEvent(ctx context.Context, domainName string, eventID string) error {
	return s.fields.withStore(ctx, domainName, func(store *domain.FieldStore) error {
		store.MarkCancelled(eventID)
		return nil
	})
}

// FailEvent marks the event's fields as failed, clearing result values.
// The wildcard event id fails every field regardless of stamping.
func (s *CaptureService) FailEvent(ctx context.Context, domainName string, eventID string, reason string) error {
	if reason == "" {
		reason = "capture failed"
	}
	err := s.fields.withStore(ctx, domainName, func(store *domain.FieldStore) error {
		store.MarkError(reason, eventID)
		return nil
	})
	if err != nil {
		return err
	}
	s.log.Warn().Str("domain", domainName).Str("event_id", eventID).Str("reason", reason).Msg("capture event failed")
	return nil
}
