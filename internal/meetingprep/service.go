package meetingprep

import (
	"context"
	"io"
	"log/slog"
	"strings"

	"github.com/relatahq/oracle/internal/database"
	"github.com/relatahq/oracle/internal/metrics"
)

// Request identifies the meeting to prepare for. At least one of MeetingID
// or AttendeeEmails must be set; callers validate that before reaching the
// service.
type Request struct {
	MeetingID      int64
	AttendeeEmails []string
	MeetingTitle   string
	MeetingDate    string
	UserContext    string
}

// Service orchestrates meeting preparation: resolve the meeting, build
// attendee profiles concurrently, then synthesize a brief. The generative
// path is used when a Generator is configured; otherwise, and on any
// generator failure, the deterministic fallback answers.
type Service struct {
	store     database.Store
	profiles  *ProfileBuilder
	generator Generator // nil when no generative model is configured
	logger    *slog.Logger
}

// NewService creates a meeting prep service. generator may be nil, in which
// case every request is served by the deterministic fallback.
func NewService(store database.Store, generator Generator, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Service{
		store:     store,
		profiles:  NewProfileBuilder(store, logger),
		generator: generator,
		logger:    logger.With("component", "meetingprep"),
	}
}

// Prepare builds the preparation brief for one meeting. The result is
// always a well-formed MeetingPrep; generative failures degrade silently to
// the fallback path.
func (s *Service) Prepare(ctx context.Context, userID int64, req Request) (*MeetingPrep, error) {
	prepReq := PrepRequest{
		MeetingTitle: req.MeetingTitle,
		MeetingDate:  req.MeetingDate,
		UserContext:  req.UserContext,
	}
	emails := req.AttendeeEmails

	if req.MeetingID != 0 {
		event, err := s.store.GetEventByID(ctx, userID, req.MeetingID)
		if err != nil {
			// Treat a failed lookup like an unknown meeting; the caller
			// still gets a brief from whatever emails were supplied.
			s.logger.WarnContext(ctx, "Meeting lookup failed, continuing with supplied attendees",
				"user_id", userID, "meeting_id", req.MeetingID, "error", err)
		} else if event != nil {
			if prepReq.MeetingTitle == "" {
				prepReq.MeetingTitle = event.Title
			}
			if prepReq.MeetingDate == "" {
				prepReq.MeetingDate = event.StartTime.Format("2006-01-02 15:04")
			}
			emails = mergeEmails(event.Attendees, emails)
		}
	}

	profiles := s.profiles.BuildProfiles(ctx, userID, emails)

	if s.generator != nil {
		prep, err := s.generator.GenerateMeetingPrep(ctx, prepReq, profiles)
		if err == nil {
			metrics.RecordMeetingPrep(true)
			s.logger.InfoContext(ctx, "Meeting prep generated",
				"user_id", userID, "attendees", len(profiles), "confidence", prep.ConfidenceScore)
			return prep, nil
		}
		s.logger.WarnContext(ctx, "Generative meeting prep failed, using fallback",
			"user_id", userID, "error", err)
	}

	metrics.RecordMeetingPrep(false)
	prep := FallbackPrep(prepReq, profiles)
	s.logger.InfoContext(ctx, "Meeting prep synthesized deterministically",
		"user_id", userID, "attendees", len(profiles))
	return prep, nil
}

// mergeEmails deduplicates case-insensitively to match the store's
// email lookup semantics.
func mergeEmails(primary, extra []string) []string {
	seen := make(map[string]bool, len(primary)+len(extra))
	merged := make([]string, 0, len(primary)+len(extra))
	for _, e := range append(append([]string{}, primary...), extra...) {
		key := strings.ToLower(e)
		if e == "" || seen[key] {
			continue
		}
		seen[key] = true
		merged = append(merged, e)
	}
	return merged
}
