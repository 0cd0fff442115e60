package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
)

// Store defines the read-mostly data access interface the engine depends on.
// All queries are scoped to a single user ID so one caller can never see
// another caller's relationship data. Methods accept context.Context for
// cancellation and timeouts.
type Store interface {
	// Ping checks the database connection.
	Ping(ctx context.Context) error

	// GetContactsByStrength retrieves all contacts for a user ordered by
	// descending relationship strength.
	GetContactsByStrength(ctx context.Context, userID int64) ([]Contact, error)

	// GetRecentInteractions retrieves interactions newer than 'since',
	// newest first, capped at 'limit'.
	GetRecentInteractions(ctx context.Context, userID int64, since time.Time, limit int) ([]Interaction, error)

	// GetEventsBetween retrieves calendar events starting in [from, until),
	// ascending by start time, with attendee emails populated.
	GetEventsBetween(ctx context.Context, userID int64, from, until time.Time) ([]CalendarEvent, error)

	// GetEventByID retrieves a single calendar event with attendees
	// populated. Returns nil, nil when the event does not exist or belongs
	// to a different user.
	GetEventByID(ctx context.Context, userID, eventID int64) (*CalendarEvent, error)

	// GetOpenOpportunities retrieves open opportunities ordered by
	// descending confidence.
	GetOpenOpportunities(ctx context.Context, userID int64) ([]Opportunity, error)

	// GetRecentAnalytics retrieves analytics snapshots newer than 'since',
	// newest first.
	GetRecentAnalytics(ctx context.Context, userID int64, since time.Time) ([]AnalyticsSnapshot, error)

	// GetContactByEmail looks up a contact by exact email (case-insensitive).
	// Returns nil, nil when no contact matches.
	GetContactByEmail(ctx context.Context, userID int64, email string) (*Contact, error)

	// GetInteractionsForContact retrieves a contact's most recent
	// interactions, newest first, capped at 'limit'.
	GetInteractionsForContact(ctx context.Context, userID, contactID int64, limit int) ([]Interaction, error)

	// GetActivitiesForContact retrieves a contact's most recent activities,
	// newest first, capped at 'limit'.
	GetActivitiesForContact(ctx context.Context, userID, contactID int64, limit int) ([]Activity, error)

	// GetContactsByCompany retrieves up to 'limit' contacts at the given
	// company, excluding the contact identified by excludeID.
	GetContactsByCompany(ctx context.Context, userID int64, company string, excludeID int64, limit int) ([]Contact, error)

	// GetAllUserIDs returns the distinct user IDs present in the contacts
	// table. Used by the scheduled analytics snapshot task.
	GetAllUserIDs(ctx context.Context) ([]int64, error)

	// CountInteractionsSince counts a user's interactions newer than 'since'.
	CountInteractionsSince(ctx context.Context, userID int64, since time.Time) (int, error)

	// CountEventsBetween counts a user's calendar events starting in [from, until).
	CountEventsBetween(ctx context.Context, userID int64, from, until time.Time) (int, error)

	// CountOpenOpportunities counts a user's open opportunities.
	CountOpenOpportunities(ctx context.Context, userID int64) (int, error)

	// SaveAnalyticsSnapshot inserts a new analytics snapshot row.
	SaveAnalyticsSnapshot(ctx context.Context, snapshot *AnalyticsSnapshot) error
}

// sqlxStore provides an implementation of the Store interface using sqlx.
type sqlxStore struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewStore creates a new Store implementation backed by sqlx.
// It requires a connected sqlx.DB instance and a logger.
func NewStore(db *sqlx.DB, logger *slog.Logger) Store {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &sqlxStore{
		db:     db,
		logger: logger.With("component", "store"),
	}
}

// Ping checks the database connection.
func (s *sqlxStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *sqlxStore) GetContactsByStrength(ctx context.Context, userID int64) ([]Contact, error) {
	if userID == 0 {
		return nil, fmt.Errorf("user_id cannot be zero")
	}

	var contacts []Contact
	query := `
        SELECT id, created_at, updated_at, user_id, name, email, company, title,
               relationship_strength, last_contact_date
        FROM contacts
        WHERE user_id = ?
        ORDER BY relationship_strength DESC;
    `
	if err := s.db.SelectContext(ctx, &contacts, query, userID); err != nil {
		s.logger.ErrorContext(ctx, "Error fetching contacts", "user_id", userID, "error", err)
		return nil, fmt.Errorf("failed to fetch contacts for user %d: %w", userID, err)
	}
	return contacts, nil
}

func (s *sqlxStore) GetRecentInteractions(ctx context.Context, userID int64, since time.Time, limit int) ([]Interaction, error) {
	if userID == 0 {
		return nil, fmt.Errorf("user_id cannot be zero")
	}
	if limit <= 0 {
		limit = 50
	}

	var interactions []Interaction
	query := `
        SELECT id, created_at, user_id, contact_id, subject, summary, sentiment, timestamp
        FROM interactions
        WHERE user_id = ? AND timestamp >= ?
        ORDER BY timestamp DESC
        LIMIT ?;
    `
	if err := s.db.SelectContext(ctx, &interactions, query, userID, since, limit); err != nil {
		s.logger.ErrorContext(ctx, "Error fetching interactions", "user_id", userID, "error", err)
		return nil, fmt.Errorf("failed to fetch interactions for user %d: %w", userID, err)
	}
	return interactions, nil
}

func (s *sqlxStore) GetEventsBetween(ctx context.Context, userID int64, from, until time.Time) ([]CalendarEvent, error) {
	if userID == 0 {
		return nil, fmt.Errorf("user_id cannot be zero")
	}

	var events []CalendarEvent
	query := `
        SELECT id, created_at, user_id, title, description, start_time, end_time
        FROM calendar_events
        WHERE user_id = ? AND start_time >= ? AND start_time < ?
        ORDER BY start_time ASC;
    `
	if err := s.db.SelectContext(ctx, &events, query, userID, from, until); err != nil {
		s.logger.ErrorContext(ctx, "Error fetching calendar events", "user_id", userID, "error", err)
		return nil, fmt.Errorf("failed to fetch calendar events for user %d: %w", userID, err)
	}

	for i := range events {
		attendees, err := s.getEventAttendees(ctx, events[i].ID)
		if err != nil {
			// A missing attendee list degrades the event, not the query.
			s.logger.WarnContext(ctx, "Error fetching event attendees", "event_id", events[i].ID, "error", err)
			continue
		}
		events[i].Attendees = attendees
	}
	return events, nil
}

func (s *sqlxStore) getEventAttendees(ctx context.Context, eventID int64) ([]string, error) {
	var emails []string
	query := `SELECT email FROM event_attendees WHERE event_id = ? ORDER BY email;`
	if err := s.db.SelectContext(ctx, &emails, query, eventID); err != nil {
		return nil, fmt.Errorf("failed to fetch attendees for event %d: %w", eventID, err)
	}
	return emails, nil
}

func (s *sqlxStore) GetEventByID(ctx context.Context, userID, eventID int64) (*CalendarEvent, error) {
	if userID == 0 || eventID == 0 {
		return nil, fmt.Errorf("user_id and event_id cannot be zero")
	}

	var event CalendarEvent
	query := `
        SELECT id, created_at, user_id, title, description, start_time, end_time
        FROM calendar_events
        WHERE user_id = ? AND id = ?
        LIMIT 1;
    `
	err := s.db.GetContext(ctx, &event, query, userID, eventID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		s.logger.ErrorContext(ctx, "Error fetching calendar event", "event_id", eventID, "error", err)
		return nil, fmt.Errorf("failed to fetch calendar event %d: %w", eventID, err)
	}

	attendees, err := s.getEventAttendees(ctx, event.ID)
	if err != nil {
		s.logger.WarnContext(ctx, "Error fetching event attendees", "event_id", event.ID, "error", err)
	} else {
		event.Attendees = attendees
	}
	return &event, nil
}

func (s *sqlxStore) GetOpenOpportunities(ctx context.Context, userID int64) ([]Opportunity, error) {
	if userID == 0 {
		return nil, fmt.Errorf("user_id cannot be zero")
	}

	var opportunities []Opportunity
	query := `
        SELECT id, created_at, updated_at, user_id, title, description, type,
               confidence, status, expires_at
        FROM opportunities
        WHERE user_id = ? AND status = ?
        ORDER BY confidence DESC;
    `
	if err := s.db.SelectContext(ctx, &opportunities, query, userID, OpportunityStatusOpen); err != nil {
		s.logger.ErrorContext(ctx, "Error fetching opportunities", "user_id", userID, "error", err)
		return nil, fmt.Errorf("failed to fetch opportunities for user %d: %w", userID, err)
	}
	return opportunities, nil
}

func (s *sqlxStore) GetRecentAnalytics(ctx context.Context, userID int64, since time.Time) ([]AnalyticsSnapshot, error) {
	if userID == 0 {
		return nil, fmt.Errorf("user_id cannot be zero")
	}

	var snapshots []AnalyticsSnapshot
	query := `
        SELECT id, created_at, user_id, total_contacts, strong_contacts, avg_strength,
               contacted_last_7_days, interaction_count, meeting_count,
               opportunity_count, network_health_score, snapshot_date
        FROM analytics_snapshots
        WHERE user_id = ? AND snapshot_date >= ?
        ORDER BY snapshot_date DESC;
    `
	if err := s.db.SelectContext(ctx, &snapshots, query, userID, since); err != nil {
		s.logger.ErrorContext(ctx, "Error fetching analytics snapshots", "user_id", userID, "error", err)
		return nil, fmt.Errorf("failed to fetch analytics snapshots for user %d: %w", userID, err)
	}
	return snapshots, nil
}

func (s *sqlxStore) GetContactByEmail(ctx context.Context, userID int64, email string) (*Contact, error) {
	if userID == 0 {
		return nil, fmt.Errorf("user_id cannot be zero")
	}
	if email == "" {
		return nil, fmt.Errorf("email cannot be empty")
	}

	var contact Contact
	query := `
        SELECT id, created_at, updated_at, user_id, name, email, company, title,
               relationship_strength, last_contact_date
        FROM contacts
        WHERE user_id = ? AND LOWER(email) = LOWER(?)
        LIMIT 1;
    `
	err := s.db.GetContext(ctx, &contact, query, userID, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		s.logger.ErrorContext(ctx, "Error fetching contact by email", "user_id", userID, "error", err)
		return nil, fmt.Errorf("failed to fetch contact by email for user %d: %w", userID, err)
	}
	return &contact, nil
}

func (s *sqlxStore) GetInteractionsForContact(ctx context.Context, userID, contactID int64, limit int) ([]Interaction, error) {
	if userID == 0 || contactID == 0 {
		return nil, fmt.Errorf("user_id and contact_id cannot be zero")
	}
	if limit <= 0 {
		limit = 10
	}

	var interactions []Interaction
	query := `
        SELECT id, created_at, user_id, contact_id, subject, summary, sentiment, timestamp
        FROM interactions
        WHERE user_id = ? AND contact_id = ?
        ORDER BY timestamp DESC
        LIMIT ?;
    `
	if err := s.db.SelectContext(ctx, &interactions, query, userID, contactID, limit); err != nil {
		s.logger.ErrorContext(ctx, "Error fetching contact interactions",
			"user_id", userID, "contact_id", contactID, "error", err)
		return nil, fmt.Errorf("failed to fetch interactions for contact %d: %w", contactID, err)
	}
	return interactions, nil
}

func (s *sqlxStore) GetActivitiesForContact(ctx context.Context, userID, contactID int64, limit int) ([]Activity, error) {
	if userID == 0 || contactID == 0 {
		return nil, fmt.Errorf("user_id and contact_id cannot be zero")
	}
	if limit <= 0 {
		limit = 5
	}

	var activities []Activity
	query := `
        SELECT id, created_at, user_id, contact_id, type, detail, occurred_at
        FROM activities
        WHERE user_id = ? AND contact_id = ?
        ORDER BY occurred_at DESC
        LIMIT ?;
    `
	if err := s.db.SelectContext(ctx, &activities, query, userID, contactID, limit); err != nil {
		s.logger.ErrorContext(ctx, "Error fetching contact activities",
			"user_id", userID, "contact_id", contactID, "error", err)
		return nil, fmt.Errorf("failed to fetch activities for contact %d: %w", contactID, err)
	}
	return activities, nil
}

func (s *sqlxStore) GetContactsByCompany(ctx context.Context, userID int64, company string, excludeID int64, limit int) ([]Contact, error) {
	if userID == 0 {
		return nil, fmt.Errorf("user_id cannot be zero")
	}
	if company == "" {
		return []Contact{}, nil
	}
	if limit <= 0 {
		limit = 3
	}

	var contacts []Contact
	query := `
        SELECT id, created_at, updated_at, user_id, name, email, company, title,
               relationship_strength, last_contact_date
        FROM contacts
        WHERE user_id = ? AND LOWER(company) = LOWER(?) AND id != ?
        ORDER BY relationship_strength DESC
        LIMIT ?;
    `
	if err := s.db.SelectContext(ctx, &contacts, query, userID, company, excludeID, limit); err != nil {
		s.logger.ErrorContext(ctx, "Error fetching contacts by company",
			"user_id", userID, "company", company, "error", err)
		return nil, fmt.Errorf("failed to fetch contacts by company for user %d: %w", userID, err)
	}
	return contacts, nil
}

func (s *sqlxStore) GetAllUserIDs(ctx context.Context) ([]int64, error) {
	var ids []int64
	query := `SELECT DISTINCT user_id FROM contacts ORDER BY user_id;`
	if err := s.db.SelectContext(ctx, &ids, query); err != nil {
		s.logger.ErrorContext(ctx, "Error fetching user IDs", "error", err)
		return nil, fmt.Errorf("failed to fetch user IDs: %w", err)
	}
	return ids, nil
}

func (s *sqlxStore) CountInteractionsSince(ctx context.Context, userID int64, since time.Time) (int, error) {
	if userID == 0 {
		return 0, fmt.Errorf("user_id cannot be zero")
	}

	var count int
	query := `SELECT COUNT(*) FROM interactions WHERE user_id = ? AND timestamp >= ?;`
	if err := s.db.GetContext(ctx, &count, query, userID, since); err != nil {
		return 0, fmt.Errorf("failed to count interactions for user %d: %w", userID, err)
	}
	return count, nil
}

func (s *sqlxStore) CountEventsBetween(ctx context.Context, userID int64, from, until time.Time) (int, error) {
	if userID == 0 {
		return 0, fmt.Errorf("user_id cannot be zero")
	}

	var count int
	query := `SELECT COUNT(*) FROM calendar_events WHERE user_id = ? AND start_time >= ? AND start_time < ?;`
	if err := s.db.GetContext(ctx, &count, query, userID, from, until); err != nil {
		return 0, fmt.Errorf("failed to count calendar events for user %d: %w", userID, err)
	}
	return count, nil
}

func (s *sqlxStore) CountOpenOpportunities(ctx context.Context, userID int64) (int, error) {
	if userID == 0 {
		return 0, fmt.Errorf("user_id cannot be zero")
	}

	var count int
	query := `SELECT COUNT(*) FROM opportunities WHERE user_id = ? AND status = ?;`
	if err := s.db.GetContext(ctx, &count, query, userID, OpportunityStatusOpen); err != nil {
		return 0, fmt.Errorf("failed to count opportunities for user %d: %w", userID, err)
	}
	return count, nil
}

func (s *sqlxStore) SaveAnalyticsSnapshot(ctx context.Context, snapshot *AnalyticsSnapshot) error {
	if snapshot == nil {
		return fmt.Errorf("cannot save nil snapshot")
	}
	if snapshot.UserID == 0 {
		return fmt.Errorf("snapshot must have a non-zero user_id")
	}
	if snapshot.SnapshotDate.IsZero() {
		return fmt.Errorf("snapshot must have a non-zero snapshot_date")
	}

	snapshot.CreatedAt = time.Now().UTC()

	query := `
        INSERT INTO analytics_snapshots (created_at, user_id, total_contacts, strong_contacts,
            avg_strength, contacted_last_7_days, interaction_count, meeting_count,
            opportunity_count, network_health_score, snapshot_date)
        VALUES (:created_at, :user_id, :total_contacts, :strong_contacts,
            :avg_strength, :contacted_last_7_days, :interaction_count, :meeting_count,
            :opportunity_count, :network_health_score, :snapshot_date);
    `
	result, err := s.db.NamedExecContext(ctx, query, snapshot)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error saving analytics snapshot", "user_id", snapshot.UserID, "error", err)
		return fmt.Errorf("failed to save analytics snapshot for user %d: %w", snapshot.UserID, err)
	}

	if id, err := result.LastInsertId(); err == nil {
		snapshot.ID = id
	} else {
		s.logger.WarnContext(ctx, "Could not retrieve last insert ID after saving snapshot",
			"user_id", snapshot.UserID, "error", err)
	}

	s.logger.DebugContext(ctx, "Analytics snapshot saved",
		"user_id", snapshot.UserID, "snapshot_id", snapshot.ID)
	return nil
}
