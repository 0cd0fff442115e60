// Package api exposes the query and meeting-prep operations over HTTP and
// declares their request/response envelopes.
package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/relatahq/oracle/internal/database"
	"github.com/relatahq/oracle/internal/logger"
	"github.com/relatahq/oracle/internal/meetingprep"
	"github.com/relatahq/oracle/internal/metrics"
	"github.com/relatahq/oracle/internal/oracle"
)

// Server wires HTTP routes for the Oracle API.
type Server struct {
	oracleService *oracle.Service
	prepService   *meetingprep.Service
	store         database.Store
	auth          *Authenticator
	logger        *slog.Logger
}

// NewServer creates the API server over the given services.
func NewServer(oracleService *oracle.Service, prepService *meetingprep.Service, store database.Store, auth *Authenticator, log *slog.Logger) *Server {
	return &Server{
		oracleService: oracleService,
		prepService:   prepService,
		store:         store,
		auth:          auth,
		logger:        log.With("component", "api"),
	}
}

// Handler builds the full HTTP handler: routes wrapped with metrics, auth
// on the API operations, and request logging outermost.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", MetricsMiddleware(s.handleHealth, "healthz"))
	mux.Handle("GET /metrics", metrics.Handler())
	mux.HandleFunc("POST /api/query", MetricsMiddleware(s.auth.Require(s.handleQuery), "query"))
	mux.HandleFunc("POST /api/meeting-prep", MetricsMiddleware(s.auth.Require(s.handleMeetingPrep), "meeting_prep"))

	return logger.Middleware(s.logger)(mux)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Ping(r.Context()); err != nil {
		s.logger.ErrorContext(r.Context(), "Health check failed", "error", err)
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	if message == "" {
		message = http.StatusText(status)
	}
	writeJSON(w, status, errorResponse{Success: false, Error: message})
}

// userIDKey carries the authenticated caller identity in the request
// context.
type contextKey string

const userIDKey contextKey = "user_id"

// UserIDFrom extracts the authenticated caller identity set by the auth
// middleware.
func UserIDFrom(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(userIDKey).(int64)
	return id, ok
}
