package oracle_test

import (
	"strings"
	"testing"
	"time"

	"github.com/relatahq/oracle/internal/database"
	"github.com/relatahq/oracle/internal/oracle"
)

func conversationSnapshot(now time.Time) *oracle.ContextSnapshot {
	return &oracle.ContextSnapshot{
		GeneratedAt: now,
		Contacts: []database.Contact{
			{ID: 1, Name: "Jane Smith", Company: "Acme", Title: "VP Sales", RelationshipStrength: 8},
			{ID: 2, Name: "Bob Martin", Company: "Acme", RelationshipStrength: 6},
		},
		RecentInteractions: []database.Interaction{
			{ID: 10, ContactID: 1, Subject: "Q3 renewal pricing", Timestamp: now.AddDate(0, 0, -2)},
			{ID: 11, ContactID: 1, Subject: "Conference follow-up", Timestamp: now.AddDate(0, 0, -9)},
		},
	}
}

func TestSynthesizeConversationPrepNamedContact(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 8, 31, 9, 0, 0, 0, time.UTC)
	snap := conversationSnapshot(now)

	answer := oracle.Synthesize(oracle.IntentConversationPrep, snap, "Give me talking points for Jane")

	if answer.Confidence != 85 {
		t.Errorf("confidence = %d, want 85", answer.Confidence)
	}
	if !strings.Contains(answer.Text, "Talking points for Jane Smith") {
		t.Errorf("expected contact-specific answer:\n%s", answer.Text)
	}
	if !strings.Contains(answer.Text, "VP Sales at Acme") {
		t.Errorf("expected role line:\n%s", answer.Text)
	}
	if !strings.Contains(answer.Text, "Q3 renewal pricing") {
		t.Errorf("expected recent subject as talking point:\n%s", answer.Text)
	}

	var peers bool
	for _, in := range answer.Insights {
		if strings.Contains(in, "1 other contacts work at Acme") {
			peers = true
		}
	}
	if !peers {
		t.Errorf("expected company-peer insight, got %v", answer.Insights)
	}
}

// Trailing clauses after the name ("for Jane about the renewal") must not
// break contact matching.
func TestSynthesizeConversationPrepTrailingClause(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 8, 31, 9, 0, 0, 0, time.UTC)
	snap := conversationSnapshot(now)

	answer := oracle.Synthesize(oracle.IntentConversationPrep, snap, "talking points for Jane about the renewal?")

	if !strings.Contains(answer.Text, "Talking points for Jane Smith") {
		t.Errorf("expected contact-specific answer:\n%s", answer.Text)
	}
}

func TestSynthesizeConversationPrepUnknownName(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 8, 31, 9, 0, 0, 0, time.UTC)
	snap := conversationSnapshot(now)

	answer := oracle.Synthesize(oracle.IntentConversationPrep, snap, "talking points for Zelda")

	if !strings.Contains(answer.Text, "Conversation starters for your top contacts") {
		t.Errorf("expected generic answer for unknown name:\n%s", answer.Text)
	}
	if !strings.Contains(answer.Text, "Jane Smith") || !strings.Contains(answer.Text, "Bob Martin") {
		t.Errorf("expected top contacts listed:\n%s", answer.Text)
	}
}

// Lowercasing can grow a string byte-wise (U+023A lowers to the wider
// U+2C65), so name extraction must never index the raw query with positions
// computed on the lowered one.
func TestSynthesizeConversationPrepLengthChangingRunes(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 8, 31, 9, 0, 0, 0, time.UTC)
	snap := conversationSnapshot(now)

	tests := []struct {
		name        string
		query       string
		wantContact bool
	}{
		{
			name:        "Widening rune before the name",
			query:       "conversation ȺȺ for Jane",
			wantContact: true,
		},
		{
			name:        "Widening rune as the name",
			query:       "conversation ȺȺ for x",
			wantContact: false,
		},
		{
			name:        "Widening rune in trailing clause",
			query:       "talking points for Jane about ȺȺ",
			wantContact: true,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			answer := oracle.Synthesize(oracle.IntentConversationPrep, snap, tc.query)

			if answer.Text == "" {
				t.Fatal("expected a well-formed answer")
			}
			gotContact := strings.Contains(answer.Text, "Talking points for Jane Smith")
			if gotContact != tc.wantContact {
				t.Errorf("contact-specific = %v, want %v:\n%s", gotContact, tc.wantContact, answer.Text)
			}
		})
	}
}

func TestSynthesizeConversationPrepNoContacts(t *testing.T) {
	t.Parallel()

	snap := &oracle.ContextSnapshot{GeneratedAt: time.Now().UTC()}
	answer := oracle.Synthesize(oracle.IntentConversationPrep, snap, "conversation starters")

	if !strings.Contains(answer.Text, "No contacts found") {
		t.Errorf("expected empty-network text, got:\n%s", answer.Text)
	}
}
