package oracle

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/relatahq/oracle/internal/database"
	"github.com/relatahq/oracle/internal/metrics"
)

// ErrEmptyQuery is returned when the caller submits an empty or
// whitespace-only query. No processing is attempted.
var ErrEmptyQuery = errors.New("query must not be empty")

// QueryResult is the envelope returned for one answered query.
type QueryResult struct {
	Query               string  `json:"query"`
	Intent              Intent  `json:"intent"`
	Answer              Answer  `json:"answer"`
	ResponseTimeSeconds float64 `json:"responseTimeSeconds"`
}

// Service is the query facade: it validates input, aggregates context,
// classifies intent, synthesizes the answer, and measures latency.
type Service struct {
	aggregator *Aggregator
	logger     *slog.Logger
}

// NewService creates the query service over the given store.
func NewService(store database.Store, logger *slog.Logger, fetchTimeout time.Duration) *Service {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	log := logger.With("component", "oracle")
	return &Service{
		aggregator: NewAggregator(store, logger, fetchTimeout),
		logger:     log,
	}
}

// Handle answers one query for the given caller. Aggregation-level partial
// failures are absorbed into a degraded snapshot and never surfaced; the
// caller receives either a well-formed answer or an explicit error.
func (s *Service) Handle(ctx context.Context, userID int64, rawQuery string) (result *QueryResult, err error) {
	if strings.TrimSpace(rawQuery) == "" {
		return nil, ErrEmptyQuery
	}
	if userID == 0 {
		return nil, fmt.Errorf("caller identity is required")
	}

	// A synthesizer bug must surface as a server error, never as a
	// silently malformed answer.
	defer func() {
		if r := recover(); r != nil {
			s.logger.ErrorContext(ctx, "Query processing panicked", "user_id", userID, "panic", r)
			result = nil
			err = fmt.Errorf("internal error while answering query")
		}
	}()

	startTime := time.Now()

	snapshot, partialFailures := s.aggregator.Aggregate(ctx, userID)
	for _, pf := range partialFailures {
		s.logger.WarnContext(ctx, "Answering from degraded snapshot",
			"user_id", userID, "entity", pf.Entity, "cause", pf.Cause)
	}

	intent := Classify(rawQuery)
	answer := Synthesize(intent, snapshot, rawQuery)

	elapsed := time.Since(startTime)
	metrics.RecordQuery(string(intent), elapsed)

	s.logger.InfoContext(ctx, "Query answered",
		"user_id", userID,
		"intent", intent,
		"confidence", answer.Confidence,
		"degraded_entities", len(partialFailures),
		"duration", elapsed)

	return &QueryResult{
		Query:               rawQuery,
		Intent:              intent,
		Answer:              answer,
		ResponseTimeSeconds: roundSeconds(elapsed),
	}, nil
}

// roundSeconds reports elapsed time in seconds with millisecond precision.
func roundSeconds(d time.Duration) float64 {
	return math.Round(d.Seconds()*1000) / 1000
}
