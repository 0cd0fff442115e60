// Package oracle implements the relationship intelligence query engine:
// context aggregation, intent classification, per-intent answer synthesis,
// and the query facade.
package oracle

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/relatahq/oracle/internal/database"
)

// Snapshot assembly windows and caps.
const (
	interactionWindowDays = 30
	interactionCap        = 50
	meetingWindowDays     = 7
	analyticsWindowDays   = 30
)

// ContextSnapshot is the point-in-time, read-only aggregation of one
// caller's relationship data used to answer a single query. It is built
// once per query and never mutated afterwards. Any field may be empty when
// its fetch failed; a partial snapshot is still a valid snapshot.
type ContextSnapshot struct {
	// GeneratedAt anchors all relative-time computations (days since
	// contact, days until expiry) so synthesis over the same snapshot is
	// reproducible.
	GeneratedAt time.Time

	Contacts           []database.Contact
	RecentInteractions []database.Interaction
	UpcomingMeetings   []database.CalendarEvent
	OpenOpportunities  []database.Opportunity
	Analytics          []database.AnalyticsSnapshot
}

// PartialFailure records one context fetch that failed and was degraded to
// an empty field instead of aborting the aggregation.
type PartialFailure struct {
	Entity string
	Cause  error
}

// Aggregator assembles ContextSnapshots by issuing the five entity fetches
// concurrently, each bounded by its own timeout.
type Aggregator struct {
	store        database.Store
	logger       *slog.Logger
	fetchTimeout time.Duration
}

// NewAggregator creates an Aggregator over the given store. fetchTimeout
// bounds each individual fetch.
func NewAggregator(store database.Store, logger *slog.Logger, fetchTimeout time.Duration) *Aggregator {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if fetchTimeout <= 0 {
		fetchTimeout = 3 * time.Second
	}
	return &Aggregator{
		store:        store,
		logger:       logger.With("component", "aggregator"),
		fetchTimeout: fetchTimeout,
	}
}

// Aggregate fetches the caller's contacts, recent interactions, upcoming
// meetings, open opportunities, and recent analytics snapshots concurrently
// and assembles them into a ContextSnapshot. A failed or timed-out fetch
// degrades its field to an empty list and is reported as a PartialFailure;
// it never aborts the aggregation. The caller always receives a snapshot.
func (a *Aggregator) Aggregate(ctx context.Context, userID int64) (*ContextSnapshot, []PartialFailure) {
	now := time.Now().UTC()
	snapshot := &ContextSnapshot{GeneratedAt: now}

	var (
		mu       sync.Mutex
		failures []PartialFailure
	)
	record := func(entity string, err error) {
		mu.Lock()
		failures = append(failures, PartialFailure{Entity: entity, Cause: err})
		mu.Unlock()
		a.logger.WarnContext(ctx, "Context fetch degraded to empty",
			"entity", entity, "user_id", userID, "error", err)
	}

	// Plain errgroup, not WithContext: one failed fetch must never cancel
	// its siblings, so every goroutine returns nil and records failures
	// as values instead.
	var g errgroup.Group

	g.Go(func() error {
		fctx, cancel := context.WithTimeout(ctx, a.fetchTimeout)
		defer cancel()
		contacts, err := a.store.GetContactsByStrength(fctx, userID)
		if err != nil {
			record("contacts", err)
			return nil
		}
		snapshot.Contacts = contacts
		return nil
	})

	g.Go(func() error {
		fctx, cancel := context.WithTimeout(ctx, a.fetchTimeout)
		defer cancel()
		since := now.AddDate(0, 0, -interactionWindowDays)
		interactions, err := a.store.GetRecentInteractions(fctx, userID, since, interactionCap)
		if err != nil {
			record("interactions", err)
			return nil
		}
		snapshot.RecentInteractions = interactions
		return nil
	})

	g.Go(func() error {
		fctx, cancel := context.WithTimeout(ctx, a.fetchTimeout)
		defer cancel()
		until := now.AddDate(0, 0, meetingWindowDays)
		events, err := a.store.GetEventsBetween(fctx, userID, now, until)
		if err != nil {
			record("calendar_events", err)
			return nil
		}
		snapshot.UpcomingMeetings = events
		return nil
	})

	g.Go(func() error {
		fctx, cancel := context.WithTimeout(ctx, a.fetchTimeout)
		defer cancel()
		opportunities, err := a.store.GetOpenOpportunities(fctx, userID)
		if err != nil {
			record("opportunities", err)
			return nil
		}
		snapshot.OpenOpportunities = opportunities
		return nil
	})

	g.Go(func() error {
		fctx, cancel := context.WithTimeout(ctx, a.fetchTimeout)
		defer cancel()
		since := now.AddDate(0, 0, -analyticsWindowDays)
		analytics, err := a.store.GetRecentAnalytics(fctx, userID, since)
		if err != nil {
			record("analytics", err)
			return nil
		}
		snapshot.Analytics = analytics
		return nil
	})

	_ = g.Wait() // goroutines never return errors

	a.logger.DebugContext(ctx, "Context snapshot assembled",
		"user_id", userID,
		"contacts", len(snapshot.Contacts),
		"interactions", len(snapshot.RecentInteractions),
		"meetings", len(snapshot.UpcomingMeetings),
		"opportunities", len(snapshot.OpenOpportunities),
		"analytics", len(snapshot.Analytics),
		"partial_failures", len(failures))

	return snapshot, failures
}
