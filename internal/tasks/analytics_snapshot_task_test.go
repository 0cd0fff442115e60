package tasks

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/relatahq/oracle/internal/database"
)

// fakeStore implements database.Store for the snapshot task, recording
// saved snapshots per user.
type fakeStore struct {
	userIDs          []int64
	contactsByUser   map[int64][]database.Contact
	contactsErrs     map[int64]error
	interactionCount int
	meetingCount     int
	opportunityCount int

	saved []*database.AnalyticsSnapshot
}

func (f *fakeStore) Ping(context.Context) error { return nil }

func (f *fakeStore) GetContactsByStrength(_ context.Context, userID int64) ([]database.Contact, error) {
	if err := f.contactsErrs[userID]; err != nil {
		return nil, err
	}
	return f.contactsByUser[userID], nil
}

func (f *fakeStore) GetRecentInteractions(context.Context, int64, time.Time, int) ([]database.Interaction, error) {
	return nil, nil
}

func (f *fakeStore) GetEventsBetween(context.Context, int64, time.Time, time.Time) ([]database.CalendarEvent, error) {
	return nil, nil
}

func (f *fakeStore) GetEventByID(context.Context, int64, int64) (*database.CalendarEvent, error) {
	return nil, nil
}

func (f *fakeStore) GetOpenOpportunities(context.Context, int64) ([]database.Opportunity, error) {
	return nil, nil
}

func (f *fakeStore) GetRecentAnalytics(context.Context, int64, time.Time) ([]database.AnalyticsSnapshot, error) {
	return nil, nil
}

func (f *fakeStore) GetContactByEmail(context.Context, int64, string) (*database.Contact, error) {
	return nil, nil
}

func (f *fakeStore) GetInteractionsForContact(context.Context, int64, int64, int) ([]database.Interaction, error) {
	return nil, nil
}

func (f *fakeStore) GetActivitiesForContact(context.Context, int64, int64, int) ([]database.Activity, error) {
	return nil, nil
}

func (f *fakeStore) GetContactsByCompany(context.Context, int64, string, int64, int) ([]database.Contact, error) {
	return nil, nil
}

func (f *fakeStore) GetAllUserIDs(context.Context) ([]int64, error) { return f.userIDs, nil }

func (f *fakeStore) CountInteractionsSince(context.Context, int64, time.Time) (int, error) {
	return f.interactionCount, nil
}

func (f *fakeStore) CountEventsBetween(context.Context, int64, time.Time, time.Time) (int, error) {
	return f.meetingCount, nil
}

func (f *fakeStore) CountOpenOpportunities(context.Context, int64) (int, error) {
	return f.opportunityCount, nil
}

func (f *fakeStore) SaveAnalyticsSnapshot(_ context.Context, snapshot *database.AnalyticsSnapshot) error {
	f.saved = append(f.saved, snapshot)
	return nil
}

func testDeps(store database.Store) TaskDeps {
	return TaskDeps{
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		Store:  store,
	}
}

func TestAnalyticsSnapshotTask(t *testing.T) {
	t.Parallel()

	now := time.Now().UTC()
	store := &fakeStore{
		userIDs: []int64{1},
		contactsByUser: map[int64][]database.Contact{
			1: {
				{ID: 1, RelationshipStrength: 8, LastContactDate: sql.NullTime{Time: now.AddDate(0, 0, -2), Valid: true}},
				{ID: 2, RelationshipStrength: 7},
				{ID: 3, RelationshipStrength: 3, LastContactDate: sql.NullTime{Time: now.AddDate(0, 0, -40), Valid: true}},
			},
		},
		interactionCount: 12,
		meetingCount:     4,
		opportunityCount: 2,
	}

	task := newAnalyticsSnapshotTask(testDeps(store))
	if err := task(context.Background()); err != nil {
		t.Fatalf("task returned error: %v", err)
	}

	if len(store.saved) != 1 {
		t.Fatalf("expected 1 saved snapshot, got %d", len(store.saved))
	}
	snap := store.saved[0]
	if snap.UserID != 1 {
		t.Errorf("user ID = %d, want 1", snap.UserID)
	}
	if snap.TotalContacts != 3 {
		t.Errorf("total contacts = %d, want 3", snap.TotalContacts)
	}
	if snap.StrongContacts != 2 {
		t.Errorf("strong contacts = %d, want 2", snap.StrongContacts)
	}
	if want := (8.0 + 7.0 + 3.0) / 3; snap.AvgStrength != want {
		t.Errorf("avg strength = %f, want %f", snap.AvgStrength, want)
	}
	if snap.ContactedLast7Days != 1 {
		t.Errorf("contacted last 7 days = %d, want 1", snap.ContactedLast7Days)
	}
	if snap.InteractionCount != 12 || snap.MeetingCount != 4 || snap.OpportunityCount != 2 {
		t.Errorf("counters wrong: %+v", snap)
	}
	// Mean 6.0 maps to a health score of 60.
	if snap.NetworkHealthScore != 60 {
		t.Errorf("health score = %d, want 60", snap.NetworkHealthScore)
	}
}

// One user's failure must not block snapshots for the rest.
func TestAnalyticsSnapshotTaskPartialFailure(t *testing.T) {
	t.Parallel()

	store := &fakeStore{
		userIDs: []int64{1, 2},
		contactsByUser: map[int64][]database.Contact{
			2: {{ID: 10, RelationshipStrength: 5}},
		},
		contactsErrs: map[int64]error{
			1: errors.New("database locked"),
		},
	}

	task := newAnalyticsSnapshotTask(testDeps(store))
	if err := task(context.Background()); err != nil {
		t.Fatalf("partial failure must not fail the task: %v", err)
	}

	if len(store.saved) != 1 || store.saved[0].UserID != 2 {
		t.Errorf("expected snapshot for user 2 only, got %+v", store.saved)
	}
}

func TestAnalyticsSnapshotTaskAllFailed(t *testing.T) {
	t.Parallel()

	store := &fakeStore{
		userIDs: []int64{1, 2},
		contactsErrs: map[int64]error{
			1: errors.New("database locked"),
			2: errors.New("database locked"),
		},
	}

	task := newAnalyticsSnapshotTask(testDeps(store))
	if err := task(context.Background()); err == nil {
		t.Error("expected an error when every user fails")
	}
}
