// Package meetingprep implements meeting preparation synthesis: attendee
// profile building, the deterministic fallback synthesizer, and the service
// that prefers a generative model when one is configured.
package meetingprep

import (
	"context"
	"time"
)

// AttendeeProfile is a derived, per-meeting view of one contact's
// relationship data.
type AttendeeProfile struct {
	ContactID            int64      `json:"contactId"`
	Name                 string     `json:"name"`
	Email                string     `json:"email"`
	Company              string     `json:"company"`
	Title                string     `json:"title"`
	RelationshipStrength int        `json:"relationshipStrength"`
	LastInteraction      *time.Time `json:"lastInteraction,omitempty"`

	// RecentTopics holds up to 3 most recent interaction subjects.
	RecentTopics []string `json:"recentTopics"`

	// SentimentTrend is the mean of available recent sentiment scores,
	// 0 when there are none.
	SentimentTrend float64 `json:"sentimentTrend"`

	// RecentActivity holds up to 5 most recent activity descriptions.
	RecentActivity []string `json:"recentActivity"`

	// MutualConnections names up to 3 other contacts at the same company.
	MutualConnections []string `json:"mutualConnections"`
}

// MeetingPrep is the structured preparation brief for one meeting.
// ConfidenceScore is in [0,100].
type MeetingPrep struct {
	Summary              string            `json:"summary"`
	AttendeeProfiles     []AttendeeProfile `json:"attendeeProfiles"`
	TalkingPoints        []string          `json:"talkingPoints"`
	Challenges           []string          `json:"challenges"`
	Opportunities        []string          `json:"opportunities"`
	ConversationStarters []string          `json:"conversationStarters"`
	FollowUpActions      []string          `json:"followUpActions"`
	ConfidenceScore      int               `json:"confidenceScore"`
}

// PrepRequest carries the meeting metadata for one preparation request.
type PrepRequest struct {
	MeetingTitle string
	MeetingDate  string
	UserContext  string
}

// Generator produces a MeetingPrep from attendee profiles using an external
// generative model. Implementations must be time-bounded; any error makes
// the service fall back to deterministic synthesis.
type Generator interface {
	GenerateMeetingPrep(ctx context.Context, req PrepRequest, profiles []AttendeeProfile) (*MeetingPrep, error)
}
