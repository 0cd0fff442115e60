package oracle

import (
	"fmt"
	"sort"
	"strings"

	"github.com/relatahq/oracle/internal/database"
)

const (
	attentionMinStrength = 6
	attentionMinDays     = 14
	attentionMaxContacts = 8
)

// suggestedAction maps days since contact to a follow-up action using a
// fixed threshold ladder.
func suggestedAction(days int) string {
	switch {
	case days > 30 || days == neverContacted:
		return "schedule a call or meeting"
	case days > 21:
		return "send a check-in email"
	case days > 14:
		return "share a relevant article or insight"
	default:
		return "send a quick follow-up"
	}
}

// synthesizeAttentionNeeded surfaces valuable relationships that have gone
// quiet: strength >= 6 and more than two weeks without contact.
func synthesizeAttentionNeeded(snap *ContextSnapshot, _ string) Answer {
	now := snap.GeneratedAt

	var neglected []database.Contact
	for _, c := range snap.Contacts {
		days := daysSinceContact(c, now)
		if c.RelationshipStrength >= attentionMinStrength && days > attentionMinDays {
			neglected = append(neglected, c)
		}
	}

	sort.SliceStable(neglected, func(i, j int) bool {
		return neglected[i].RelationshipStrength > neglected[j].RelationshipStrength
	})
	if len(neglected) > attentionMaxContacts {
		neglected = neglected[:attentionMaxContacts]
	}

	var b strings.Builder
	if len(neglected) == 0 {
		b.WriteString("All of your valuable relationships have been contacted recently. Nothing needs attention.")
	} else {
		b.WriteString("These relationships need attention:\n")
		for _, c := range neglected {
			days := daysSinceContact(c, now)
			b.WriteString(fmt.Sprintf("- %s (strength %d/10, %s) — %s\n",
				c.Name, c.RelationshipStrength, formatDaysSince(days), suggestedAction(days)))
		}
	}

	insights := make([]string, 0, 3)
	insights = append(insights, fmt.Sprintf("%d valuable relationships have gone more than %d days without contact.",
		len(neglected), attentionMinDays))
	over30 := 0
	for _, c := range neglected {
		if d := daysSinceContact(c, now); d > 30 {
			over30++
		}
	}
	if over30 > 0 {
		insights = append(insights, fmt.Sprintf("%d of them have been quiet for over a month.", over30))
	}
	if len(snap.RecentInteractions) > 0 {
		insights = append(insights, fmt.Sprintf("You logged %d interactions in the last %d days.",
			len(snap.RecentInteractions), interactionWindowDays))
	}

	return Answer{
		Text:       strings.TrimRight(b.String(), "\n"),
		Confidence: intentConfidence[IntentAttentionNeeded],
		Sources: []SourceAttribution{
			contactSource(95),
			interactionSource(75),
		},
		Insights: insights,
	}
}
