package oracle

import (
	"fmt"
	"strings"
)

const strongStrengthThreshold = 7

// synthesizeAnalytics computes aggregate network statistics from the
// snapshot: totals, strength distribution, recency, and the derived
// network health score.
func synthesizeAnalytics(snap *ContextSnapshot, _ string) Answer {
	now := snap.GeneratedAt

	total := len(snap.Contacts)
	strong := 0
	contactedLast7 := 0
	for _, c := range snap.Contacts {
		if c.RelationshipStrength >= strongStrengthThreshold {
			strong++
		}
		if d := daysSinceContact(c, now); d <= 7 && d != neverContacted {
			contactedLast7++
		}
	}

	strongPct := 0.0
	if total > 0 {
		strongPct = float64(strong) / float64(total) * 100
	}
	avg := meanStrength(snap.Contacts)
	health := networkHealthScore(snap.Contacts)

	var b strings.Builder
	b.WriteString("Relationship analytics:\n")
	b.WriteString(fmt.Sprintf("- Total contacts: %d\n", total))
	b.WriteString(fmt.Sprintf("- Strong relationships (7+): %d (%.0f%%)\n", strong, strongPct))
	b.WriteString(fmt.Sprintf("- Average relationship strength: %.1f/10\n", avg))
	b.WriteString(fmt.Sprintf("- Contacted in the last 7 days: %d\n", contactedLast7))
	b.WriteString(fmt.Sprintf("- Interactions (last %d days): %d\n", interactionWindowDays, len(snap.RecentInteractions)))
	b.WriteString(fmt.Sprintf("- Upcoming meetings (next %d days): %d\n", meetingWindowDays, len(snap.UpcomingMeetings)))
	b.WriteString(fmt.Sprintf("- Open opportunities: %d\n", len(snap.OpenOpportunities)))
	b.WriteString(fmt.Sprintf("- Network health score: %d/100", health))

	insights := make([]string, 0, 3)
	switch {
	case health >= 70:
		insights = append(insights, fmt.Sprintf("Your network health score of %d indicates strong overall relationships.", health))
	case health >= 40:
		insights = append(insights, fmt.Sprintf("Your network health score of %d leaves room for deepening relationships.", health))
	default:
		insights = append(insights, fmt.Sprintf("Your network health score of %d suggests most relationships need investment.", health))
	}
	if total > 0 {
		insights = append(insights, fmt.Sprintf("%.0f%% of your network are strong relationships.", strongPct))
	}
	if len(snap.Analytics) > 1 {
		latest := snap.Analytics[0]
		oldest := snap.Analytics[len(snap.Analytics)-1]
		delta := latest.NetworkHealthScore - oldest.NetworkHealthScore
		switch {
		case delta > 0:
			insights = append(insights, fmt.Sprintf("Network health improved by %d points over the last %d days.", delta, analyticsWindowDays))
		case delta < 0:
			insights = append(insights, fmt.Sprintf("Network health declined by %d points over the last %d days.", -delta, analyticsWindowDays))
		}
	}

	return Answer{
		Text:       b.String(),
		Confidence: intentConfidence[IntentAnalytics],
		Sources: []SourceAttribution{
			analyticsSource(98),
			contactSource(90),
		},
		Insights: insights,
	}
}
