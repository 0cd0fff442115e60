package oracle

import (
	"fmt"
	"strings"
)

// synthesizeGeneral is the default strategy for queries matching no intent
// rule: a summary of the network plus fixed recommendations.
func synthesizeGeneral(snap *ContextSnapshot, _ string) Answer {
	avg := meanStrength(snap.Contacts)

	var b strings.Builder
	b.WriteString("Here's an overview of your relationship network:\n")
	b.WriteString(fmt.Sprintf("- %d contacts with an average strength of %.1f/10\n", len(snap.Contacts), avg))
	b.WriteString(fmt.Sprintf("- %d open opportunities\n", len(snap.OpenOpportunities)))
	b.WriteString(fmt.Sprintf("- %d meetings in the next %d days\n", len(snap.UpcomingMeetings), meetingWindowDays))
	b.WriteString("\nTry asking who to prioritize, which relationships need attention, or for talking points before a meeting.")

	insights := []string{
		fmt.Sprintf("Your network has %d contacts.", len(snap.Contacts)),
		fmt.Sprintf("%d interactions were logged in the last %d days.", len(snap.RecentInteractions), interactionWindowDays),
	}

	return Answer{
		Text:       b.String(),
		Confidence: intentConfidence[IntentGeneral],
		Sources: []SourceAttribution{
			contactSource(75),
			opportunitySource(70),
			calendarSource(65),
		},
		Insights: insights,
	}
}
