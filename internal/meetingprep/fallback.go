package meetingprep

import (
	"fmt"
	"strings"
)

// fallbackConfidence is the fixed confidence score of the deterministic
// synthesis path.
const fallbackConfidence = 75

// FallbackPrep deterministically synthesizes a MeetingPrep from attendee
// profiles without any external dependency. This is the correctness
// baseline: it must always produce a well-formed brief, including for an
// empty profile list.
func FallbackPrep(req PrepRequest, profiles []AttendeeProfile) *MeetingPrep {
	title := req.MeetingTitle
	if title == "" {
		title = "your meeting"
	}

	summary := fmt.Sprintf("Preparation brief for %s", title)
	if req.MeetingDate != "" {
		summary += fmt.Sprintf(" on %s", req.MeetingDate)
	}
	switch len(profiles) {
	case 0:
		summary += ". No attendees matched contacts in your network, so this brief is generic."
	case 1:
		summary += fmt.Sprintf(" with %s.", profiles[0].Name)
	default:
		summary += fmt.Sprintf(" with %d known attendees.", len(profiles))
	}

	prep := &MeetingPrep{
		Summary:          summary,
		AttendeeProfiles: profiles,
		TalkingPoints: []string{
			"Review progress since your last conversation",
			"Ask about their current priorities and blockers",
			"Share a relevant update from your side",
		},
		Challenges: []string{
			"Limited insight into attendees' current agenda",
			"Time may run short if introductions take long",
		},
		Opportunities: []string{
			"Strengthen the relationship through focused follow-up",
			"Identify concrete next steps before the meeting ends",
		},
		ConversationStarters: fallbackStarters(profiles),
		FollowUpActions: []string{
			"Send a recap email within 24 hours",
			"Log key takeaways against each attendee",
			"Schedule the next touchpoint before closing",
		},
		ConfidenceScore: fallbackConfidence,
	}
	return prep
}

// fallbackStarters derives one conversation starter per attendee from their
// first name and most recent topic.
func fallbackStarters(profiles []AttendeeProfile) []string {
	if len(profiles) == 0 {
		return []string{"Ask each attendee what outcome would make this meeting worthwhile for them"}
	}
	starters := make([]string, 0, len(profiles))
	for _, p := range profiles {
		first := firstName(p.Name)
		if len(p.RecentTopics) > 0 {
			starters = append(starters, fmt.Sprintf("Ask %s how things progressed on %q", first, p.RecentTopics[0]))
		} else {
			starters = append(starters, fmt.Sprintf("Ask %s what they are focused on at the moment", first))
		}
	}
	return starters
}

func firstName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "them"
	}
	if idx := strings.IndexByte(name, ' '); idx > 0 {
		return name[:idx]
	}
	return name
}
