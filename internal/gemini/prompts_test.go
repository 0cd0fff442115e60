package gemini_test

import (
	"strings"
	"testing"

	"github.com/relatahq/oracle/internal/gemini"
	"github.com/relatahq/oracle/internal/meetingprep"
)

func TestBuildMeetingPrepPrompt(t *testing.T) {
	t.Parallel()

	req := meetingprep.PrepRequest{
		MeetingTitle: "Acme quarterly review",
		MeetingDate:  "2026-09-01 10:00",
		UserContext:  "Close the renewal",
	}
	profiles := []meetingprep.AttendeeProfile{
		{ContactID: 1, Name: "Jane Smith", Company: "Acme", RelationshipStrength: 8,
			RecentTopics: []string{"Q3 renewal"}},
	}

	prompt, err := gemini.BuildMeetingPrepPrompt(req, profiles)
	if err != nil {
		t.Fatalf("BuildMeetingPrepPrompt returned error: %v", err)
	}

	for _, want := range []string{
		"Acme quarterly review",
		"2026-09-01 10:00",
		"Close the renewal",
		`"name": "Jane Smith"`,
		`"Q3 renewal"`,
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q:\n%s", want, prompt)
		}
	}
}

func TestBuildMeetingPrepPromptNoProfiles(t *testing.T) {
	t.Parallel()

	prompt, err := gemini.BuildMeetingPrepPrompt(meetingprep.PrepRequest{}, nil)
	if err != nil {
		t.Fatalf("BuildMeetingPrepPrompt returned error: %v", err)
	}
	if !strings.Contains(prompt, "no attendees matched known contacts") {
		t.Errorf("expected empty-profile marker:\n%s", prompt)
	}
	if !strings.Contains(prompt, "(untitled meeting)") {
		t.Errorf("expected untitled fallback:\n%s", prompt)
	}
}
