package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"field-capture-gateway/internal/core/domain"
	"field-capture-gateway/internal/core/ports"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// DefaultPacingDelay is the fixed pause between consecutive deliveries.
// It bounds load on downstream endpoints and keeps the per-field log's
// temporal ordering meaningful.
const DefaultPacingDelay = 100 * time.Millisecond

const invalidPayloadError = "Invalid JSON payload"

// HTTPClient interface for testability.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// WebhookService delivers authenticated notifications for fields that just
// evaluated true. A single worker drains an ordered queue; deliveries are
// strictly sequential with a fixed pacing delay, best-effort, at-most-once
// per triggering transition. No retries.
type WebhookService struct {
	sigSvc     ports.SignatureService
	credential domain.SigningCredential
	sink       ports.DeliveryLogSink
	archive    ports.DeliveryArchive // nil = archiving disabled
	httpClient HTTPClient
	pacing     time.Duration
	log        zerolog.Logger

	queue chan ports.DispatchBatch
	wg    sync.WaitGroup
	stop  sync.Once
}

// NewWebhookService creates the dispatcher. pacing <= 0 selects the
// default 100ms delay.
func NewWebhookService(
	sigSvc ports.SignatureService,
	credential domain.SigningCredential,
	sink ports.DeliveryLogSink,
	archive ports.DeliveryArchive,
	httpClient HTTPClient,
	pacing time.Duration,
	log zerolog.Logger,
) *WebhookService {
	if pacing <= 0 {
		pacing = DefaultPacingDelay
	}
	return &WebhookService{
		sigSvc:     sigSvc,
		credential: credential,
		sink:       sink,
		archive:    archive,
		httpClient: httpClient,
		pacing:     pacing,
		log:        log,
		queue:      make(chan ports.DispatchBatch, 64),
	}
}

// Start launches the single delivery worker.
func (s *WebhookService) Start() {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for batch := range s.queue {
			s.deliverBatch(batch)
		}
	}()
}

// Stop drains the queue and waits for the worker to finish.
func (s *WebhookService) Stop() {
	s.stop.Do(func() { close(s.queue) })
	s.wg.Wait()
}

// Enqueue hands one ordered batch to the worker. Blocks if the queue is
// full rather than dropping or reordering work.
func (s *WebhookService) Enqueue(batch ports.DispatchBatch) {
	s.queue <- batch
}

// deliverBatch delivers each field's notification in batch order. The Nth
// delivery never starts before the (N-1)th's log entry is recorded.
func (s *WebhookService) deliverBatch(batch ports.DispatchBatch) {
	ctx := context.Background()
	for i, f := range batch.Fields {
		if i > 0 {
			time.Sleep(s.pacing)
		}
		entry := s.deliver(&f)

		if err := s.sink.AppendDeliveryLog(ctx, batch.Domain, f.ID, entry); err != nil {
			s.log.Error().Err(err).Str("field", f.SanitizedName).Msg("webhook: failed to record delivery log")
		}
		if s.archive != nil {
			rec := &domain.DeliveryRecord{
				ID:             uuid.New(),
				Domain:         batch.Domain,
				FieldID:        f.ID,
				FieldName:      f.SanitizedName,
				Endpoint:       f.WebhookEndpoint,
				Success:        entry.Success,
				HTTPStatus:     entry.HTTPStatus,
				DurationMillis: entry.DurationMillis,
				Error:          entry.Error,
				CreatedAt:      entry.Timestamp,
			}
			if err := s.archive.Record(ctx, rec); err != nil {
				s.log.Warn().Err(err).Str("field", f.SanitizedName).Msg("webhook: delivery archive write failed")
			}
		}
	}
}

// deliver issues one POST and produces its log entry. A payload template
// that is not valid JSON is recorded and skipped, not retried.
func (s *WebhookService) deliver(f *domain.Field) domain.DeliveryLogEntry {
	start := time.Now()
	entry := domain.DeliveryLogEntry{Timestamp: start.UTC()}

	if !json.Valid([]byte(f.WebhookPayload)) {
		msg := invalidPayloadError
		entry.Error = &msg
		s.log.Warn().Str("field", f.SanitizedName).Msg("webhook: invalid payload template, delivery skipped")
		return entry
	}

	body := []byte(f.WebhookPayload)
	timestamp := start.UnixMilli()
	signature := s.sigSvc.Sign(s.credential.Secret, body, timestamp)

	req, err := http.NewRequest(http.MethodPost, f.WebhookEndpoint, bytes.NewReader(body))
	if err != nil {
		msg := fmt.Sprintf("building request: %v", err)
		entry.Error = &msg
		entry.DurationMillis = time.Since(start).Milliseconds()
		return entry
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-Key", s.credential.APIKey)
	req.Header.Set("X-Timestamp", strconv.FormatInt(timestamp, 10))
	req.Header.Set("X-Signature", signature)

	resp, err := s.httpClient.Do(req)
	entry.DurationMillis = time.Since(start).Milliseconds()
	if err != nil {
		msg := fmt.Sprintf("request failed: %v", err)
		entry.Error = &msg
		s.log.Warn().Err(err).Str("field", f.SanitizedName).Str("endpoint", f.WebhookEndpoint).Msg("webhook: delivery failed")
		return entry
	}
	resp.Body.Close()

	status := resp.StatusCode
	entry.HTTPStatus = &status
	if status >= 200 && status < 300 {
		entry.Success = true
		s.log.Info().Str("field", f.SanitizedName).Int("status", status).Msg("webhook: delivered")
	} else {
		msg := fmt.Sprintf("endpoint returned status %d", status)
		entry.Error = &msg
		s.log.Warn().Str("field", f.SanitizedName).Int("status", status).Msg("webhook: non-2xx response")
	}
	return entry
}
