package gemini

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/relatahq/oracle/internal/meetingprep"
)

// MeetingPrepSystemInstruction frames the model's role for meeting
// preparation synthesis.
const MeetingPrepSystemInstruction = `You are a relationship intelligence assistant that prepares concise, actionable meeting briefs.
You are given structured profiles of the meeting attendees drawn from the user's CRM: role, company,
relationship strength (0-10), sentiment trend (-1 to 1), recent discussion topics, recent activity,
and mutual connections.

Ground every talking point, challenge, opportunity, and conversation starter in the supplied profiles.
Produce exactly one conversation starter per attendee, addressed by first name. Be specific; avoid
platitudes. Respond only with JSON matching the requested schema.`

// BuildMeetingPrepPrompt renders the meeting metadata and attendee profiles
// into the user prompt.
func BuildMeetingPrepPrompt(req meetingprep.PrepRequest, profiles []meetingprep.AttendeeProfile) (string, error) {
	var sb strings.Builder

	title := req.MeetingTitle
	if title == "" {
		title = "(untitled meeting)"
	}
	sb.WriteString(fmt.Sprintf("Meeting: %s\n", title))
	if req.MeetingDate != "" {
		sb.WriteString(fmt.Sprintf("Date: %s\n", req.MeetingDate))
	}
	if req.UserContext != "" {
		sb.WriteString(fmt.Sprintf("Additional context from the user: %s\n", req.UserContext))
	}

	sb.WriteString("\nAttendee profiles:\n")
	if len(profiles) == 0 {
		sb.WriteString("(no attendees matched known contacts)\n")
	} else {
		profilesJSON, err := json.MarshalIndent(profiles, "", "  ")
		if err != nil {
			return "", fmt.Errorf("failed to marshal attendee profiles: %w", err)
		}
		sb.Write(profilesJSON)
		sb.WriteString("\n")
	}

	sb.WriteString("\nPrepare the meeting brief.")
	return sb.String(), nil
}
