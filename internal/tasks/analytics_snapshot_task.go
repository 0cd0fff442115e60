package tasks

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/relatahq/oracle/internal/database"
)

// newAnalyticsSnapshotTask creates the scheduled task that rolls up each
// user's network statistics into a new analytics_snapshots row. The Analytics
// intent reads these rows to report trends over time.
func newAnalyticsSnapshotTask(deps TaskDeps) ScheduledTaskFunc {
	log := deps.Logger.With("task", "analytics_snapshot")

	return func(ctx context.Context) error {
		log.InfoContext(ctx, "Starting analytics snapshot task")
		startTime := time.Now()

		userIDs, err := deps.Store.GetAllUserIDs(ctx)
		if err != nil {
			return fmt.Errorf("failed to list users for snapshot: %w", err)
		}

		var failures int
		for _, userID := range userIDs {
			if err := snapshotUser(ctx, deps.Store, userID, startTime); err != nil {
				// One user's failure must not block the rest.
				log.ErrorContext(ctx, "Snapshot failed for user", "user_id", userID, "error", err)
				failures++
			}
		}

		duration := time.Since(startTime)
		log.InfoContext(ctx, "Analytics snapshot task completed",
			"users", len(userIDs), "failures", failures, "duration", duration)

		if failures == len(userIDs) && len(userIDs) > 0 {
			return fmt.Errorf("snapshot failed for all %d users", len(userIDs))
		}
		return nil
	}
}

func snapshotUser(ctx context.Context, store database.Store, userID int64, now time.Time) error {
	contacts, err := store.GetContactsByStrength(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to load contacts: %w", err)
	}

	var (
		strong        int
		strengthSum   int
		contactedWeek int
	)
	weekAgo := now.AddDate(0, 0, -7)
	for _, c := range contacts {
		strengthSum += c.RelationshipStrength
		if c.RelationshipStrength >= 7 {
			strong++
		}
		if c.LastContactDate.Valid && c.LastContactDate.Time.After(weekAgo) {
			contactedWeek++
		}
	}

	var avgStrength float64
	if len(contacts) > 0 {
		avgStrength = float64(strengthSum) / float64(len(contacts))
	}

	interactions, err := store.CountInteractionsSince(ctx, userID, now.AddDate(0, 0, -30))
	if err != nil {
		return fmt.Errorf("failed to count interactions: %w", err)
	}

	meetings, err := store.CountEventsBetween(ctx, userID, now.AddDate(0, 0, -30), now)
	if err != nil {
		return fmt.Errorf("failed to count meetings: %w", err)
	}

	opportunities, err := store.CountOpenOpportunities(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to count opportunities: %w", err)
	}

	snapshot := &database.AnalyticsSnapshot{
		UserID:             userID,
		TotalContacts:      len(contacts),
		StrongContacts:     strong,
		AvgStrength:        avgStrength,
		ContactedLast7Days: contactedWeek,
		InteractionCount:   interactions,
		MeetingCount:       meetings,
		OpportunityCount:   opportunities,
		NetworkHealthScore: int(math.Round(avgStrength / 10 * 100)),
		SnapshotDate:       now,
	}

	if err := store.SaveAnalyticsSnapshot(ctx, snapshot); err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	return nil
}
