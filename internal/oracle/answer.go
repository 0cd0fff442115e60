package oracle

import (
	"fmt"
	"math"
	"time"

	"github.com/relatahq/oracle/internal/database"
)

// SourceAttribution names a logical data category that informed an answer,
// with a fixed relevance weight per intent.
type SourceAttribution struct {
	Type      string `json:"type"`
	Name      string `json:"name"`
	Relevance int    `json:"relevance"`
}

// Answer is the structured result of one synthesis. Confidence is in
// [0,100]; Insights are short generalizations drawn from aggregate snapshot
// statistics, distinct from the main text.
type Answer struct {
	Text       string              `json:"text"`
	Confidence int                 `json:"confidence"`
	Sources    []SourceAttribution `json:"sources"`
	Insights   []string            `json:"insights"`
}

// Source attribution category identifiers.
const (
	sourceContacts      = "contacts"
	sourceInteractions  = "interactions"
	sourceCalendar      = "calendar"
	sourceOpportunities = "opportunities"
	sourceAnalytics     = "analytics"
)

// Per-intent confidence base values. These are design constants reflecting
// how directly each intent's answer derives from structured data; they are
// deliberately not computed from data quality, so a degraded snapshot is
// indistinguishable from a full one in the response.
var intentConfidence = map[Intent]int{
	IntentPrioritize:       92,
	IntentMeetingContext:   88,
	IntentAttentionNeeded:  90,
	IntentOpportunities:    94,
	IntentAnalytics:        98,
	IntentConversationPrep: 85,
	IntentGeneral:          82,
}

func contactSource(relevance int) SourceAttribution {
	return SourceAttribution{Type: sourceContacts, Name: "Contact Data", Relevance: relevance}
}

func interactionSource(relevance int) SourceAttribution {
	return SourceAttribution{Type: sourceInteractions, Name: "Interaction Data", Relevance: relevance}
}

func calendarSource(relevance int) SourceAttribution {
	return SourceAttribution{Type: sourceCalendar, Name: "Calendar Data", Relevance: relevance}
}

func opportunitySource(relevance int) SourceAttribution {
	return SourceAttribution{Type: sourceOpportunities, Name: "Opportunity Data", Relevance: relevance}
}

func analyticsSource(relevance int) SourceAttribution {
	return SourceAttribution{Type: sourceAnalytics, Name: "Analytics Data", Relevance: relevance}
}

// neverContacted is the days-since value used for contacts with no last
// contact date; "never" sorts as oldest.
const neverContacted = math.MaxInt32

// daysSinceContact returns whole days between the contact's last contact
// date and now, or neverContacted when the contact has no last contact date.
func daysSinceContact(c database.Contact, now time.Time) int {
	if !c.LastContactDate.Valid {
		return neverContacted
	}
	days := int(now.Sub(c.LastContactDate.Time).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}

// formatDaysSince renders a days-since value for display.
func formatDaysSince(days int) string {
	switch {
	case days == neverContacted:
		return "never contacted"
	case days == 0:
		return "contacted today"
	case days == 1:
		return "1 day since last contact"
	default:
		return fmt.Sprintf("%d days since last contact", days)
	}
}

// meanStrength returns the mean relationship strength across contacts,
// or 0 for an empty list.
func meanStrength(contacts []database.Contact) float64 {
	if len(contacts) == 0 {
		return 0
	}
	total := 0
	for _, c := range contacts {
		total += c.RelationshipStrength
	}
	return float64(total) / float64(len(contacts))
}

// networkHealthScore derives the 0-100 health score from mean strength.
func networkHealthScore(contacts []database.Contact) int {
	return int(math.Round(meanStrength(contacts) / 10 * 100))
}

// latestSubjectForContact finds the most recent interaction subject for a
// contact within the snapshot's interaction window. Interactions are newest
// first, so the first match wins.
func latestSubjectForContact(snap *ContextSnapshot, contactID int64) string {
	for _, in := range snap.RecentInteractions {
		if in.ContactID == contactID && in.Subject != "" {
			return in.Subject
		}
	}
	return ""
}
