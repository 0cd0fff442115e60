package oracle

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/relatahq/oracle/internal/database"
)

const (
	prioritizeMinStrength = 7
	prioritizeMaxContacts = 5
	prioritizeMaxOpps     = 3

	// An opportunity is high priority when its confidence clears this bar
	// or it expires within highPriorityExpiryDays.
	highPriorityConfidence = 8
	highPriorityExpiryDays = 7
)

// synthesizePrioritize ranks strong relationships by how long they have
// gone without contact and surfaces high-priority opportunities alongside.
func synthesizePrioritize(snap *ContextSnapshot, _ string) Answer {
	now := snap.GeneratedAt

	var strong []database.Contact
	for _, c := range snap.Contacts {
		if c.RelationshipStrength >= prioritizeMinStrength {
			strong = append(strong, c)
		}
	}

	// Longest-neglected first; never-contacted counts as oldest.
	sort.SliceStable(strong, func(i, j int) bool {
		return daysSinceContact(strong[i], now) > daysSinceContact(strong[j], now)
	})
	if len(strong) > prioritizeMaxContacts {
		strong = strong[:prioritizeMaxContacts]
	}

	urgent := highPriorityOpportunities(snap.OpenOpportunities, now)
	if len(urgent) > prioritizeMaxOpps {
		urgent = urgent[:prioritizeMaxOpps]
	}

	var b strings.Builder
	if len(strong) == 0 {
		b.WriteString("No strong relationships need prioritization right now.")
	} else {
		b.WriteString("Here are the relationships to prioritize this week:\n")
		for i, c := range strong {
			days := daysSinceContact(c, now)
			b.WriteString(fmt.Sprintf("%d. %s", i+1, c.Name))
			if c.Company != "" {
				b.WriteString(fmt.Sprintf(" (%s)", c.Company))
			}
			b.WriteString(fmt.Sprintf(" — strength %d/10, %s\n", c.RelationshipStrength, formatDaysSince(days)))
		}
	}

	if len(urgent) > 0 {
		b.WriteString("\nHigh-priority opportunities:\n")
		for _, o := range urgent {
			b.WriteString(fmt.Sprintf("- %s (confidence %d/10", o.Title, o.Confidence))
			if o.ExpiresAt.Valid {
				daysLeft := daysUntil(o.ExpiresAt.Time, now)
				b.WriteString(fmt.Sprintf(", expires in %d days", daysLeft))
			}
			b.WriteString(")\n")
		}
	}

	insights := prioritizeInsights(snap, strong, urgent, now)

	return Answer{
		Text:       strings.TrimRight(b.String(), "\n"),
		Confidence: intentConfidence[IntentPrioritize],
		Sources: []SourceAttribution{
			contactSource(95),
			opportunitySource(80),
		},
		Insights: insights,
	}
}

func highPriorityOpportunities(opps []database.Opportunity, now time.Time) []database.Opportunity {
	var urgent []database.Opportunity
	for _, o := range opps {
		expiringSoon := o.ExpiresAt.Valid && daysUntil(o.ExpiresAt.Time, now) <= highPriorityExpiryDays
		if o.Confidence >= highPriorityConfidence || expiringSoon {
			urgent = append(urgent, o)
		}
	}
	return urgent
}

func daysUntil(t, now time.Time) int {
	days := int(t.Sub(now).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}

func prioritizeInsights(snap *ContextSnapshot, strong []database.Contact, urgent []database.Opportunity, now time.Time) []string {
	insights := make([]string, 0, 3)

	never := 0
	for _, c := range strong {
		if daysSinceContact(c, now) == neverContacted {
			never++
		}
	}
	if never > 0 {
		insights = append(insights, fmt.Sprintf("%d of your strongest relationships have never been contacted.", never))
	}

	totalStrong := 0
	for _, c := range snap.Contacts {
		if c.RelationshipStrength >= prioritizeMinStrength {
			totalStrong++
		}
	}
	insights = append(insights, fmt.Sprintf("You have %d strong relationships (strength 7+) in your network.", totalStrong))

	if len(urgent) > 0 {
		insights = append(insights, fmt.Sprintf("%d open opportunities are high priority right now.", len(urgent)))
	}

	return insights
}
