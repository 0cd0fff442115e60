package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/relatahq/oracle/internal/meetingprep"
)

type meetingPrepRequest struct {
	MeetingID      string   `json:"meetingId,omitempty"`
	AttendeeEmails []string `json:"attendeeEmails,omitempty"`
	MeetingTitle   string   `json:"meetingTitle,omitempty"`
	MeetingDate    string   `json:"meetingDate,omitempty"`
	UserContext    string   `json:"userContext,omitempty"`
}

func (m meetingPrepRequest) validate() error {
	if strings.TrimSpace(m.MeetingID) == "" && len(m.AttendeeEmails) == 0 {
		return errors.New("either meetingId or attendeeEmails is required")
	}
	return nil
}

type meetingPrepResponse struct {
	Success       bool                     `json:"success"`
	MeetingPrep   *meetingprep.MeetingPrep `json:"meetingPrep"`
	AttendeeCount int                      `json:"attendeeCount"`
}

func (s *Server) handleMeetingPrep(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserIDFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "caller identity missing")
		return
	}

	var req meetingPrepRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var meetingID int64
	if strings.TrimSpace(req.MeetingID) != "" {
		id, err := strconv.ParseInt(req.MeetingID, 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "meetingId must be numeric")
			return
		}
		meetingID = id
	}

	prep, err := s.prepService.Prepare(r.Context(), userID, meetingprep.Request{
		MeetingID:      meetingID,
		AttendeeEmails: req.AttendeeEmails,
		MeetingTitle:   req.MeetingTitle,
		MeetingDate:    req.MeetingDate,
		UserContext:    req.UserContext,
	})
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Meeting prep failed", "user_id", userID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to prepare meeting brief")
		return
	}

	writeJSON(w, http.StatusOK, meetingPrepResponse{
		Success:       true,
		MeetingPrep:   prep,
		AttendeeCount: len(prep.AttendeeProfiles),
	})
}
