package apierr

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mcoot/eventgames/internal/model"
	"github.com/mcoot/eventgames/internal/services/admin"
)

// APIError represents an API error response
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse wraps an APIError
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// Common error codes
const (
	CodeInvalidRequest      = "INVALID_REQUEST"
	CodeInvalidScore        = "INVALID_SCORE"
	CodeUnknownGameKind     = "UNKNOWN_GAME_KIND"
	CodeInvalidParticipant  = "INVALID_PARTICIPANT"
	CodeInvalidTeam         = "INVALID_TEAM"
	CodeUnauthorized        = "UNAUTHORIZED"
	CodeParticipantNotFound = "PARTICIPANT_NOT_FOUND"
	CodeTeamNotFound        = "TEAM_NOT_FOUND"
	CodeParticipantExists   = "PARTICIPANT_EXISTS"
	CodeTeamExists          = "TEAM_EXISTS"
	CodeStoreUnavailable    = "STORE_UNAVAILABLE"
	CodeInternalError       = "INTERNAL_ERROR"
)

// httpError combines an HTTP status code with an APIError
type httpError struct {
	status   int
	apiError APIError
}

// Error implements error interface
func (e *httpError) Error() string {
	return e.apiError.Message
}

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	he := toHTTPError(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(he.status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: he.apiError})
}

// toHTTPError converts an error to an httpError. Validation errors carry
// their wrapped message since it names the offending field.
func toHTTPError(err error) *httpError {
	var he *httpError
	if errors.As(err, &he) {
		return he
	}

	switch {
	case errors.Is(err, model.ErrInvalidScore):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidScore, err.Error()}}
	case errors.Is(err, model.ErrUnknownGameKind):
		return &httpError{http.StatusBadRequest, APIError{CodeUnknownGameKind, err.Error()}}
	case errors.Is(err, model.ErrInvalidParticipant):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidParticipant, err.Error()}}
	case errors.Is(err, model.ErrInvalidTeam):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidTeam, err.Error()}}
	case errors.Is(err, model.ErrParticipantNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeParticipantNotFound, "Participant not found"}}
	case errors.Is(err, model.ErrTeamNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeTeamNotFound, "Team not found"}}
	case errors.Is(err, model.ErrParticipantExists):
		return &httpError{http.StatusConflict, APIError{CodeParticipantExists, "Participant already exists"}}
	case errors.Is(err, model.ErrTeamExists):
		return &httpError{http.StatusConflict, APIError{CodeTeamExists, "Team already exists"}}
	case errors.Is(err, model.ErrStoreUnavailable):
		return &httpError{http.StatusServiceUnavailable, APIError{CodeStoreUnavailable, "Result store unavailable, please retry"}}

	case errors.Is(err, admin.ErrInvalidSecret):
		return &httpError{http.StatusUnauthorized, APIError{CodeUnauthorized, "Invalid admin secret"}}

	default:
		return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
	}
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, message}}
}

// NewUnauthorizedError creates an unauthorized error
func NewUnauthorizedError() error {
	return &httpError{http.StatusUnauthorized, APIError{CodeUnauthorized, "Authentication required"}}
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
}
