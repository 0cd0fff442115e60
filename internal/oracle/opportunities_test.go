package oracle_test

import (
	"database/sql"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/relatahq/oracle/internal/database"
	"github.com/relatahq/oracle/internal/oracle"
)

func TestSynthesizeOpportunities(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 8, 31, 9, 0, 0, 0, time.UTC)
	snap := &oracle.ContextSnapshot{
		GeneratedAt: now,
		OpenOpportunities: []database.Opportunity{
			{ID: 1, Title: "Small intro", Type: "introduction", Confidence: 5},
			{ID: 2, Title: "Big renewal", Type: "deal", Confidence: 9,
				ExpiresAt: sql.NullTime{Time: now.AddDate(0, 0, 5), Valid: true}},
			{ID: 3, Title: "Partner referral", Type: "introduction", Confidence: 7},
		},
	}

	answer := oracle.Synthesize(oracle.IntentOpportunities, snap, "show me opportunities")

	if answer.Confidence != 94 {
		t.Errorf("confidence = %d, want 94", answer.Confidence)
	}

	// Highest confidence first regardless of input order.
	bigIdx := strings.Index(answer.Text, "Big renewal")
	refIdx := strings.Index(answer.Text, "Partner referral")
	smallIdx := strings.Index(answer.Text, "Small intro")
	if bigIdx == -1 || refIdx == -1 || smallIdx == -1 {
		t.Fatalf("expected all opportunities listed, got:\n%s", answer.Text)
	}
	if !(bigIdx < refIdx && refIdx < smallIdx) {
		t.Errorf("expected confidence-descending order:\n%s", answer.Text)
	}

	// Grouped under capitalized type headings.
	if !strings.Contains(answer.Text, "Deal:") || !strings.Contains(answer.Text, "Introduction:") {
		t.Errorf("expected type group headings:\n%s", answer.Text)
	}
	if !strings.Contains(answer.Text, "expires in 5 days") {
		t.Errorf("expected expiry countdown:\n%s", answer.Text)
	}

	var expiringInsight bool
	for _, in := range answer.Insights {
		if strings.Contains(in, "expire within a week") {
			expiringInsight = true
		}
	}
	if !expiringInsight {
		t.Errorf("expected expiring-soon insight, got %v", answer.Insights)
	}
}

func TestSynthesizeOpportunitiesCapsAtSix(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 8, 31, 9, 0, 0, 0, time.UTC)
	snap := &oracle.ContextSnapshot{GeneratedAt: now}
	for i := 0; i < 9; i++ {
		snap.OpenOpportunities = append(snap.OpenOpportunities, database.Opportunity{
			ID: int64(i + 1), Title: "Opportunity", Type: "deal", Confidence: i + 1,
		})
	}

	answer := oracle.Synthesize(oracle.IntentOpportunities, snap, "opportunities")

	if listed := strings.Count(answer.Text, "- Opportunity"); listed != 6 {
		t.Errorf("expected 6 listed opportunities, got %d:\n%s", listed, answer.Text)
	}
}

// A type tag starting with a multibyte rune must produce a valid UTF-8
// heading.
func TestSynthesizeOpportunitiesMultibyteType(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 8, 31, 9, 0, 0, 0, time.UTC)
	snap := &oracle.ContextSnapshot{
		GeneratedAt: now,
		OpenOpportunities: []database.Opportunity{
			{ID: 1, Title: "Paris intro", Type: "événement", Confidence: 6},
		},
	}

	answer := oracle.Synthesize(oracle.IntentOpportunities, snap, "opportunities")

	if !utf8.ValidString(answer.Text) {
		t.Fatalf("answer text is not valid UTF-8:\n%q", answer.Text)
	}
	if !strings.Contains(answer.Text, "Événement:") {
		t.Errorf("expected upper-cased multibyte heading:\n%s", answer.Text)
	}
}

func TestSynthesizeOpportunitiesEmpty(t *testing.T) {
	t.Parallel()

	snap := &oracle.ContextSnapshot{GeneratedAt: time.Now().UTC()}
	answer := oracle.Synthesize(oracle.IntentOpportunities, snap, "opportunities")

	if !strings.Contains(answer.Text, "no open opportunities") {
		t.Errorf("expected empty text, got:\n%s", answer.Text)
	}
}
