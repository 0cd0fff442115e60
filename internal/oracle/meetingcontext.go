package oracle

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/relatahq/oracle/internal/database"
)

var hourTokenRe = regexp.MustCompile(`\b(\d{1,2})\s*(am|pm)\b`)

// synthesizeMeetingContext answers questions about upcoming meetings. When
// the query names a specific time ("3pm", "tomorrow"), it tries to locate
// that meeting and cross-references its attendees against contacts;
// otherwise it lists today's and tomorrow's meetings chronologically.
func synthesizeMeetingContext(snap *ContextSnapshot, rawQuery string) Answer {
	now := snap.GeneratedAt
	q := strings.ToLower(rawQuery)

	hour, hasHour := parseHourToken(q)
	dayOffset := 0
	if strings.Contains(q, "tomorrow") {
		dayOffset = 1
	}

	if hasHour {
		if event := findEventAt(snap.UpcomingMeetings, now, dayOffset, hour); event != nil {
			return specificMeetingAnswer(snap, event)
		}
		// No meeting at that time; fall through to the generic listing.
	}

	return todayTomorrowAnswer(snap, now)
}

// parseHourToken extracts a 24h hour from tokens like "3pm" or "11 am".
func parseHourToken(q string) (int, bool) {
	m := hourTokenRe.FindStringSubmatch(q)
	if m == nil {
		return 0, false
	}
	hour, err := strconv.Atoi(m[1])
	if err != nil || hour < 1 || hour > 12 {
		return 0, false
	}
	if m[2] == "pm" && hour != 12 {
		hour += 12
	}
	if m[2] == "am" && hour == 12 {
		hour = 0
	}
	return hour, true
}

func findEventAt(events []database.CalendarEvent, now time.Time, dayOffset, hour int) *database.CalendarEvent {
	target := now.AddDate(0, 0, dayOffset)
	for i := range events {
		start := events[i].StartTime.In(now.Location())
		sameDay := start.Year() == target.Year() && start.YearDay() == target.YearDay()
		if sameDay && start.Hour() == hour {
			return &events[i]
		}
	}
	return nil
}

func specificMeetingAnswer(snap *ContextSnapshot, event *database.CalendarEvent) Answer {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Context for %q at %s:\n", event.Title, event.StartTime.Format("Mon Jan 2, 3:04 PM")))
	if event.Description != "" {
		b.WriteString(event.Description + "\n")
	}

	matched := 0
	for _, email := range event.Attendees {
		contact := matchContactByEmail(snap.Contacts, email)
		if contact == nil {
			continue
		}
		matched++
		b.WriteString(fmt.Sprintf("\n%s", contact.Name))
		if contact.Title != "" || contact.Company != "" {
			b.WriteString(fmt.Sprintf(" — %s", strings.TrimSpace(contact.Title+" at "+contact.Company)))
		}
		b.WriteString(fmt.Sprintf(" (relationship strength %d/10)", contact.RelationshipStrength))
		if subject := latestSubjectForContact(snap, contact.ID); subject != "" {
			b.WriteString(fmt.Sprintf("\nLast discussed: %s", subject))
		}
		b.WriteString("\n")
	}

	if matched == 0 {
		b.WriteString("\nNo attendees matched contacts in your network.\n")
	}

	insights := []string{
		fmt.Sprintf("%d of %d attendees are in your contact network.", matched, len(event.Attendees)),
		fmt.Sprintf("You have %d meetings coming up in the next %d days.", len(snap.UpcomingMeetings), meetingWindowDays),
	}

	return Answer{
		Text:       strings.TrimRight(b.String(), "\n"),
		Confidence: intentConfidence[IntentMeetingContext],
		Sources: []SourceAttribution{
			calendarSource(95),
			contactSource(85),
		},
		Insights: insights,
	}
}

// matchContactByEmail tolerates partial matches by checking substring
// containment in both directions, case-insensitively.
func matchContactByEmail(contacts []database.Contact, email string) *database.Contact {
	needle := strings.ToLower(strings.TrimSpace(email))
	if needle == "" {
		return nil
	}
	for i := range contacts {
		candidate := strings.ToLower(contacts[i].Email)
		if candidate == "" {
			continue
		}
		if strings.Contains(needle, candidate) || strings.Contains(candidate, needle) {
			return &contacts[i]
		}
	}
	return nil
}

func todayTomorrowAnswer(snap *ContextSnapshot, now time.Time) Answer {
	dayAfterTomorrow := now.AddDate(0, 0, 2)

	var b strings.Builder
	b.WriteString("Your meetings for today and tomorrow:\n")
	listed := 0
	for _, e := range snap.UpcomingMeetings {
		if !e.StartTime.Before(dayAfterTomorrow) {
			continue
		}
		day := "Today"
		if e.StartTime.In(now.Location()).YearDay() != now.YearDay() {
			day = "Tomorrow"
		}
		b.WriteString(fmt.Sprintf("- %s %s: %s (%d attendees)\n",
			day, e.StartTime.Format("3:04 PM"), e.Title, len(e.Attendees)))
		listed++
	}
	if listed == 0 {
		b.Reset()
		b.WriteString("You have no meetings scheduled for today or tomorrow.")
	}

	insights := []string{
		fmt.Sprintf("%d meetings scheduled in the next %d days.", len(snap.UpcomingMeetings), meetingWindowDays),
	}
	if listed > 0 {
		insights = append(insights, fmt.Sprintf("%d of them happen within the next two days.", listed))
	}

	return Answer{
		Text:       strings.TrimRight(b.String(), "\n"),
		Confidence: intentConfidence[IntentMeetingContext],
		Sources: []SourceAttribution{
			calendarSource(95),
			contactSource(85),
		},
		Insights: insights,
	}
}
