// Package api_test exercises the HTTP surface end to end against an
// in-memory store.
package api_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/relatahq/oracle/internal/api"
	"github.com/relatahq/oracle/internal/database"
	"github.com/relatahq/oracle/internal/meetingprep"
	"github.com/relatahq/oracle/internal/oracle"
)

// fakeStore implements database.Store over fixtures shared by all handlers.
type fakeStore struct {
	contacts []database.Contact
	pingErr  error
}

func (f *fakeStore) Ping(context.Context) error { return f.pingErr }

func (f *fakeStore) GetContactsByStrength(context.Context, int64) ([]database.Contact, error) {
	return f.contacts, nil
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

func (f *fakeStore) GetContactByEmail(_ context.Context, _ int64, email string) (*database.Contact, error) {
	for i := range f.contacts {
		if strings.EqualFold(f.contacts[i].Email, email) {
			return &f.contacts[i], nil
		}
	}
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

func (f *fakeStore) GetAllUserIDs(context.Context) ([]int64, error) { return nil, nil }

func (f *fakeStore) CountInteractionsSince(context.Context, int64, time.Time) (int, error) {
	return 0, nil
}

func (f *fakeStore) CountEventsBetween(context.Context, int64, time.Time, time.Time) (int, error) {
	return 0, nil
}

func (f *fakeStore) CountOpenOpportunities(context.Context, int64) (int, error) { return 0, nil }

func (f *fakeStore) SaveAnalyticsSnapshot(context.Context, *database.AnalyticsSnapshot) error {
	return nil
}

func newTestHandler(store *fakeStore) http.Handler {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	oracleSvc := oracle.NewService(store, log, time.Second)
	prepSvc := meetingprep.NewService(store, nil, log)
	auth := api.NewAuthenticator(map[string]int64{"valid-token": 1}, log)
	return api.NewServer(oracleSvc, prepSvc, store, auth, log).Handler()
}

func doRequest(t *testing.T, handler http.Handler, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	t.Parallel()

	handler := newTestHandler(&fakeStore{})
	rec := doRequest(t, handler, http.MethodGet, "/healthz", "", "")

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}

func TestAuthRequired(t *testing.T) {
	t.Parallel()

	handler := newTestHandler(&fakeStore{})

	tests := []struct {
		name  string
		token string
	}{
		{name: "No token", token: ""},
		{name: "Unknown token", token: "wrong-token"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			rec := doRequest(t, handler, http.MethodPost, "/api/query", tc.token, `{"query":"analytics"}`)
			if rec.Code != http.StatusUnauthorized {
				t.Errorf("status = %d, want 401", rec.Code)
			}
		})
	}
}

func TestQueryEndpoint(t *testing.T) {
	t.Parallel()

	store := &fakeStore{
		contacts: []database.Contact{
			{ID: 1, Name: "Jane Smith", Email: "jane@acme.com", RelationshipStrength: 9},
		},
	}
	handler := newTestHandler(store)

	rec := doRequest(t, handler, http.MethodPost, "/api/query", "valid-token",
		`{"query":"Who should I prioritize?"}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Success  bool   `json:"success"`
		Query    string `json:"query"`
		Response struct {
			Answer     string `json:"answer"`
			Confidence int    `json:"confidence"`
			Sources    []struct {
				Type string `json:"type"`
			} `json:"sources"`
		} `json:"response"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response JSON: %v", err)
	}
	if !resp.Success {
		t.Error("expected success=true")
	}
	if resp.Query != "Who should I prioritize?" {
		t.Errorf("query echoed incorrectly: %q", resp.Query)
	}
	if resp.Response.Confidence != 92 {
		t.Errorf("confidence = %d, want 92", resp.Response.Confidence)
	}
	if !strings.Contains(resp.Response.Answer, "Jane Smith") {
		t.Errorf("expected contact in answer: %q", resp.Response.Answer)
	}
	if len(resp.Response.Sources) == 0 {
		t.Error("expected source attributions")
	}
}

func TestQueryEndpointBadRequests(t *testing.T) {
	t.Parallel()

	handler := newTestHandler(&fakeStore{})

	tests := []struct {
		name string
		body string
	}{
		{name: "Empty query", body: `{"query":""}`},
		{name: "Whitespace query", body: `{"query":"   "}`},
		{name: "Malformed JSON", body: `{"query":`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			rec := doRequest(t, handler, http.MethodPost, "/api/query", "valid-token", tc.body)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400, body: %s", rec.Code, rec.Body.String())
			}
		})
	}
}

func TestMeetingPrepEndpoint(t *testing.T) {
	t.Parallel()

	store := &fakeStore{
		contacts: []database.Contact{
			{ID: 1, Name: "Jane Smith", Email: "jane@acme.com", RelationshipStrength: 8},
		},
	}
	handler := newTestHandler(store)

	rec := doRequest(t, handler, http.MethodPost, "/api/meeting-prep", "valid-token",
		`{"attendeeEmails":["jane@acme.com","stranger@other.com"],"meetingTitle":"Quarterly review"}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Success     bool `json:"success"`
		MeetingPrep struct {
			Summary          string                        `json:"summary"`
			AttendeeProfiles []meetingprep.AttendeeProfile `json:"attendeeProfiles"`
			ConfidenceScore  int                           `json:"confidenceScore"`
		} `json:"meetingPrep"`
		AttendeeCount int `json:"attendeeCount"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response JSON: %v", err)
	}
	if !resp.Success {
		t.Error("expected success=true")
	}
	// Only one attendee resolved to a contact.
	if resp.AttendeeCount != 1 {
		t.Errorf("attendeeCount = %d, want 1", resp.AttendeeCount)
	}
	// No generator configured, so the deterministic path answers.
	if resp.MeetingPrep.ConfidenceScore != 75 {
		t.Errorf("confidenceScore = %d, want 75", resp.MeetingPrep.ConfidenceScore)
	}
	if !strings.Contains(resp.MeetingPrep.Summary, "Quarterly review") {
		t.Errorf("summary should name the meeting: %q", resp.MeetingPrep.Summary)
	}
}

func TestMeetingPrepEndpointBadRequests(t *testing.T) {
	t.Parallel()

	handler := newTestHandler(&fakeStore{})

	tests := []struct {
		name string
		body string
	}{
		{name: "Neither meetingId nor attendees", body: `{"meetingTitle":"X"}`},
		{name: "Non-numeric meetingId", body: `{"meetingId":"abc"}`},
		{name: "Malformed JSON", body: `{`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			rec := doRequest(t, handler, http.MethodPost, "/api/meeting-prep", "valid-token", tc.body)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400, body: %s", rec.Code, rec.Body.String())
			}
		})
	}
}
