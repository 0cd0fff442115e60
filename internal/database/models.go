package database

import (
	"database/sql"
	"time"
)

// Contact represents a person in the caller's relationship network.
// RelationshipStrength is always kept in [0,10]; a NULL LastContactDate
// means the contact has never been contacted.
type Contact struct {
	ID        int64     `db:"id"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`

	UserID               int64        `db:"user_id"`
	Name                 string       `db:"name"`
	Email                string       `db:"email"`
	Company              string       `db:"company"`
	Title                string       `db:"title"`
	RelationshipStrength int          `db:"relationship_strength"`
	LastContactDate      sql.NullTime `db:"last_contact_date"`
}

// Interaction records a single email or call exchanged with a contact.
// Sentiment is a signed score roughly in [-1,1].
type Interaction struct {
	ID        int64     `db:"id"`
	CreatedAt time.Time `db:"created_at"`

	UserID    int64     `db:"user_id"`
	ContactID int64     `db:"contact_id"`
	Subject   string    `db:"subject"`
	Summary   string    `db:"summary"`
	Sentiment float64   `db:"sentiment"`
	Timestamp time.Time `db:"timestamp"`
}

// CalendarEvent is an upcoming or past meeting on the caller's calendar.
type CalendarEvent struct {
	ID        int64     `db:"id"`
	CreatedAt time.Time `db:"created_at"`

	UserID      int64     `db:"user_id"`
	Title       string    `db:"title"`
	Description string    `db:"description"`
	StartTime   time.Time `db:"start_time"`
	EndTime     time.Time `db:"end_time"`

	// Attendees is populated from the event_attendees table, not a column.
	Attendees []string `db:"-"`
}

// Opportunity is an open or closed opportunity attached to the caller's
// network. Confidence is in [0,10]; ExpiresAt is optional.
type Opportunity struct {
	ID        int64     `db:"id"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`

	UserID      int64        `db:"user_id"`
	Title       string       `db:"title"`
	Description string       `db:"description"`
	Type        string       `db:"type"`
	Confidence  int          `db:"confidence"`
	Status      string       `db:"status"`
	ExpiresAt   sql.NullTime `db:"expires_at"`
}

// AnalyticsSnapshot is a periodic roll-up of the caller's network
// statistics, produced by the scheduled snapshot task and read by the
// Analytics intent.
type AnalyticsSnapshot struct {
	ID        int64     `db:"id"`
	CreatedAt time.Time `db:"created_at"`

	UserID             int64     `db:"user_id"`
	TotalContacts      int       `db:"total_contacts"`
	StrongContacts     int       `db:"strong_contacts"`
	AvgStrength        float64   `db:"avg_strength"`
	ContactedLast7Days int       `db:"contacted_last_7_days"`
	InteractionCount   int       `db:"interaction_count"`
	MeetingCount       int       `db:"meeting_count"`
	OpportunityCount   int       `db:"opportunity_count"`
	NetworkHealthScore int       `db:"network_health_score"`
	SnapshotDate       time.Time `db:"snapshot_date"`
}

// Activity is a timeline entry for a contact (note added, deal moved,
// profile viewed). Used when building attendee profiles.
type Activity struct {
	ID        int64     `db:"id"`
	CreatedAt time.Time `db:"created_at"`

	UserID     int64     `db:"user_id"`
	ContactID  int64     `db:"contact_id"`
	Type       string    `db:"type"`
	Detail     string    `db:"detail"`
	OccurredAt time.Time `db:"occurred_at"`
}

// Opportunity status values.
const (
	OpportunityStatusOpen   = "open"
	OpportunityStatusClosed = "closed"
)
