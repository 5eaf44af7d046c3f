package web

// errors.go provides unified error response handling for the API.
//
// The error flow:
//  1. Handler encounters an error
//  2. Calls s.respondError(w, r, err)
//  3. The error is mapped to an HTTP status from its pipeline kind
//  4. Technical error + context is logged with the request ID
//  5. A user-friendly JSON body with a support code is returned

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/JonMunkholm/DataPrep/internal/ingest"
	"github.com/go-chi/chi/v5/middleware"
)

// errBadRequest marks handler-level input errors (missing form file, bad
// query params) so they map to 400 instead of 500.
var errBadRequest = errors.New("bad request")

// ErrorResponse is the JSON structure for API error responses. It carries
// both machine-readable (Code) and human-readable (Message, Action) fields.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
}

// respondError logs the technical error server-side and writes a sanitized
// JSON response with a status derived from the error.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusForError(err)
	userMsg := ingest.MapError(err)

	slog.Error("request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
		"error", err.Error(),
		"code", userMsg.Code,
		"request_id", middleware.GetReqID(r.Context()),
	)

	respondErrorJSON(w, userMsg, status)
}

// statusForError maps pipeline and service errors to HTTP status codes.
func statusForError(err error) int {
	switch {
	case errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, ingest.ErrDatasetNotFound):
		return http.StatusNotFound
	case errors.Is(err, ingest.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, ingest.ErrTooManyIngests):
		return http.StatusTooManyRequests
	}

	if kind, ok := ingest.KindOf(err); ok {
		switch kind {
		case ingest.KindUnsupportedFormat:
			return http.StatusUnsupportedMediaType
		case ingest.KindParse:
			return http.StatusUnprocessableEntity
		case ingest.KindWrite:
			return http.StatusInternalServerError
		}
	}

	return http.StatusInternalServerError
}

// respondErrorJSON writes a JSON error response.
func respondErrorJSON(w http.ResponseWriter, msg ingest.UserMessage, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(ErrorResponse{
		Error:   msg.Message,
		Message: msg.Message,
		Action:  msg.Action,
		Code:    msg.Code,
	})
}
