package oracle

import (
	"fmt"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/relatahq/oracle/internal/database"
)

const opportunitiesMaxListed = 6

// titleType renders an opportunity type tag as a section heading. The first
// rune may be multibyte, so it is decoded rather than sliced.
func titleType(typ string) string {
	if typ == "" {
		return "General"
	}
	r, size := utf8.DecodeRuneInString(typ)
	return string(unicode.ToUpper(r)) + typ[size:]
}

// synthesizeOpportunities presents the most promising open opportunities,
// grouped by type, with expiry countdowns where known.
func synthesizeOpportunities(snap *ContextSnapshot, _ string) Answer {
	now := snap.GeneratedAt

	top := make([]database.Opportunity, len(snap.OpenOpportunities))
	copy(top, snap.OpenOpportunities)
	sort.SliceStable(top, func(i, j int) bool {
		return top[i].Confidence > top[j].Confidence
	})
	if len(top) > opportunitiesMaxListed {
		top = top[:opportunitiesMaxListed]
	}

	byType := make(map[string][]database.Opportunity)
	var typeOrder []string
	for _, o := range top {
		if _, seen := byType[o.Type]; !seen {
			typeOrder = append(typeOrder, o.Type)
		}
		byType[o.Type] = append(byType[o.Type], o)
	}

	var b strings.Builder
	if len(top) == 0 {
		b.WriteString("There are no open opportunities in your network right now.")
	} else {
		b.WriteString("Your top open opportunities:\n")
		for _, typ := range typeOrder {
			b.WriteString(fmt.Sprintf("\n%s:\n", titleType(typ)))
			for _, o := range byType[typ] {
				b.WriteString(fmt.Sprintf("- %s (confidence %d/10", o.Title, o.Confidence))
				if o.ExpiresAt.Valid {
					b.WriteString(fmt.Sprintf(", expires in %d days", daysUntil(o.ExpiresAt.Time, now)))
				}
				b.WriteString(")\n")
			}
		}
	}

	insights := make([]string, 0, 3)
	insights = append(insights, fmt.Sprintf("%d open opportunities in total.", len(snap.OpenOpportunities)))
	expiring := 0
	for _, o := range snap.OpenOpportunities {
		if o.ExpiresAt.Valid && daysUntil(o.ExpiresAt.Time, now) <= highPriorityExpiryDays {
			expiring++
		}
	}
	if expiring > 0 {
		insights = append(insights, fmt.Sprintf("%d opportunities expire within a week.", expiring))
	}
	if len(typeOrder) > 1 {
		insights = append(insights, fmt.Sprintf("Opportunities span %d different types.", len(typeOrder)))
	}

	return Answer{
		Text:       strings.TrimRight(b.String(), "\n"),
		Confidence: intentConfidence[IntentOpportunities],
		Sources: []SourceAttribution{
			opportunitySource(95),
			contactSource(70),
		},
		Insights: insights,
	}
}
