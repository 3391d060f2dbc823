// Package ingest decodes search-result batches from Kafka and feeds them to
// the judging pipeline.
package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"northstar/internal/judging/models"
	"northstar/internal/platform/kafka/consumer"
	id "northstar/pkg/domain"
	dErrors "northstar/pkg/domain-errors"
)

// Processor is the slice of the judging pipeline the ingest handler needs.
type Processor interface {
	Process(ctx context.Context, sessionID id.SessionID, results []models.SearchResult) (*models.ProcessingStatistics, error)
}

// batchEnvelope is the wire format of one discovery batch.
type batchEnvelope struct {
	SessionID string       `json:"session_id"`
	Results   []wireResult `json:"results"`
}

type wireResult struct {
	URL          string    `json:"url"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	SourceEngine string    `json:"source_engine"`
	SearchQuery  string    `json:"search_query"`
	DiscoveredAt time.Time `json:"discovered_at"`
}

// Handler turns Kafka messages into Process calls.
//
// Error contract drives redelivery: malformed envelopes are acknowledged and
// dropped (redelivery cannot fix them), while processing failures propagate
// so the offset stays uncommitted. Process itself is idempotent per
// (session, domain), so redelivery is safe.
type Handler struct {
	processor Processor
	logger    *slog.Logger
}

// NewHandler creates the ingest handler.
func NewHandler(processor Processor, logger *slog.Logger) (*Handler, error) {
	if processor == nil {
		return nil, fmt.Errorf("processor is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{processor: processor, logger: logger}, nil
}

// Handle decodes one batch envelope and runs it through the pipeline.
func (h *Handler) Handle(ctx context.Context, msg *consumer.Message) error {
	var envelope batchEnvelope
	if err := json.Unmarshal(msg.Value, &envelope); err != nil {
		h.logger.Error("dropping malformed batch envelope",
			"topic", msg.Topic, "error", err)
		return nil
	}

	sessionID, err := id.ParseSessionID(envelope.SessionID)
	if err != nil {
		h.logger.Error("dropping batch with invalid session id",
			"topic", msg.Topic, "session_id", envelope.SessionID, "error", err)
		return nil
	}

	results := make([]models.SearchResult, 0, len(envelope.Results))
	for _, r := range envelope.Results {
		discoveredAt := r.DiscoveredAt
		if discoveredAt.IsZero() {
			discoveredAt = msg.Timestamp
		}
		results = append(results, models.SearchResult{
			URL:          r.URL,
			Title:        r.Title,
			Description:  r.Description,
			SourceEngine: r.SourceEngine,
			SearchQuery:  r.SearchQuery,
			DiscoveredAt: discoveredAt,
		})
	}

	stats, err := h.processor.Process(ctx, sessionID, results)
	if err != nil {
		// Bad input is not retryable; infrastructure trouble is.
		if dErrors.HasCode(err, dErrors.CodeInvalidInput) || dErrors.HasCode(err, dErrors.CodeValidation) {
			h.logger.Error("dropping unprocessable batch",
				"session_id", envelope.SessionID, "error", err)
			return nil
		}
		return err
	}

	h.logger.Info("ingested batch",
		"session_id", sessionID,
		"total", stats.TotalResults,
		"candidates", stats.CandidatesCreated,
	)
	return nil
}
