package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/relatahq/oracle/internal/oracle"
)

type queryRequest struct {
	Query string `json:"query"`
}

func (q queryRequest) validate() error {
	if strings.TrimSpace(q.Query) == "" {
		return errors.New("query is required")
	}
	return nil
}

type queryResponseBody struct {
	Answer       string                     `json:"answer"`
	Confidence   int                        `json:"confidence"`
	ResponseTime float64                    `json:"responseTime"`
	Sources      []oracle.SourceAttribution `json:"sources"`
	Insights     []string                   `json:"insights"`
}

type queryResponse struct {
	Success  bool              `json:"success"`
	Query    string            `json:"query"`
	Response queryResponseBody `json:"response"`
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserIDFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "caller identity missing")
		return
	}

	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := s.oracleService.Handle(r.Context(), userID, req.Query)
	if err != nil {
		if errors.Is(err, oracle.ErrEmptyQuery) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.logger.ErrorContext(r.Context(), "Query handling failed", "user_id", userID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to process query")
		return
	}

	writeJSON(w, http.StatusOK, queryResponse{
		Success: true,
		Query:   result.Query,
		Response: queryResponseBody{
			Answer:       result.Answer.Text,
			Confidence:   result.Answer.Confidence,
			ResponseTime: result.ResponseTimeSeconds,
			Sources:      result.Answer.Sources,
			Insights:     result.Answer.Insights,
		},
	})
}
