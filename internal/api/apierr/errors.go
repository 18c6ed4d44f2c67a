package apierr

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mcoot/blackjack-go/internal/model"
	"github.com/mcoot/blackjack-go/internal/services/auth"
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
	CodeInvalidOptions      = "INVALID_OPTIONS"
	CodeUnknownAction       = "UNKNOWN_ACTION"
	CodeUnauthorized        = "UNAUTHORIZED"
	CodeNotYourTurn         = "NOT_YOUR_TURN"
	CodeNotSeated           = "NOT_SEATED"
	CodeWrongPhase          = "WRONG_PHASE"
	CodeInsufficientChips   = "INSUFFICIENT_CHIPS"
	CodeIllegalSplit        = "ILLEGAL_SPLIT"
	CodeIllegalDouble       = "ILLEGAL_DOUBLE"
	CodeSurrenderNotAllowed = "SURRENDER_NOT_ALLOWED"
	CodeHandSettled         = "HAND_SETTLED"
	CodeAlreadyBet          = "ALREADY_BET"
	CodeTableFull           = "TABLE_FULL"
	CodeCodeTaken           = "CODE_TAKEN"
	CodePlayerNotFound      = "PLAYER_NOT_FOUND"
	CodeTableNotFound       = "TABLE_NOT_FOUND"
	CodeCodeNotFound        = "CODE_NOT_FOUND"
	CodeTableBusy           = "TABLE_BUSY"
	CodeUsernameExists      = "USERNAME_EXISTS"
	CodeInvalidCredentials  = "INVALID_CREDENTIALS"
	CodeInvalidUsername     = "INVALID_USERNAME"
	CodeInvalidDisplayName  = "INVALID_DISPLAY_NAME"
	CodeWeakPassword        = "WEAK_PASSWORD"
	CodeInternalError       = "INTERNAL_ERROR"
)

// RetryAfterSeconds is sent with TABLE_BUSY responses
const RetryAfterSeconds = "1"

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
	if he.status == http.StatusServiceUnavailable {
		w.Header().Set("Retry-After", RetryAfterSeconds)
	}
	w.WriteHeader(he.status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: he.apiError})
}

// Status returns the HTTP status err maps to
func Status(err error) int {
	return toHTTPError(err).status
}

// toHTTPError converts an error to an httpError
func toHTTPError(err error) *httpError {
	// Check for specific error types
	var he *httpError
	if errors.As(err, &he) {
		return he
	}

	switch {
	// Not found
	case errors.Is(err, model.ErrPlayerNotFound):
		return &httpError{http.StatusNotFound, APIError{CodePlayerNotFound, "Player not found"}}
	case errors.Is(err, model.ErrTableNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeTableNotFound, "Table not found"}}
	case errors.Is(err, model.ErrCodeNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeCodeNotFound, "No table with that code"}}

	// Intent rejected: the player may not act
	case errors.Is(err, model.ErrNotYourTurn):
		return &httpError{http.StatusForbidden, APIError{CodeNotYourTurn, "Not your turn"}}
	case errors.Is(err, model.ErrNotSeated):
		return &httpError{http.StatusForbidden, APIError{CodeNotSeated, "You are not seated at this table"}}

	// Intent rejected: conflicts with table state
	case errors.Is(err, model.ErrWrongPhase):
		return &httpError{http.StatusConflict, APIError{CodeWrongPhase, "Action not allowed in the current phase"}}
	case errors.Is(err, model.ErrInsufficientChips):
		return &httpError{http.StatusConflict, APIError{CodeInsufficientChips, "Not enough chips"}}
	case errors.Is(err, model.ErrIllegalSplit):
		return &httpError{http.StatusConflict, APIError{CodeIllegalSplit, "Hand cannot be split"}}
	case errors.Is(err, model.ErrIllegalDouble):
		return &httpError{http.StatusConflict, APIError{CodeIllegalDouble, "Hand cannot be doubled"}}
	case errors.Is(err, model.ErrSurrenderNotAllowed):
		return &httpError{http.StatusConflict, APIError{CodeSurrenderNotAllowed, "Surrender not allowed"}}
	case errors.Is(err, model.ErrHandSettled):
		return &httpError{http.StatusConflict, APIError{CodeHandSettled, "Hand is already settled"}}
	case errors.Is(err, model.ErrAlreadyBet):
		return &httpError{http.StatusConflict, APIError{CodeAlreadyBet, "Bet already placed this round"}}
	case errors.Is(err, model.ErrTableFull):
		return &httpError{http.StatusConflict, APIError{CodeTableFull, "Table is full"}}
	case errors.Is(err, model.ErrCodeTaken):
		return &httpError{http.StatusConflict, APIError{CodeCodeTaken, "Table code is already in use"}}

	// Malformed requests
	case errors.Is(err, model.ErrUnknownAction):
		return &httpError{http.StatusBadRequest, APIError{CodeUnknownAction, "Unknown action"}}
	case errors.Is(err, model.ErrInvalidOptions):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidOptions, err.Error()}}

	case errors.Is(err, model.ErrLockTimeout):
		return &httpError{http.StatusServiceUnavailable, APIError{CodeTableBusy, "Table is busy, retry shortly"}}

	// Map auth errors
	case errors.Is(err, auth.ErrInvalidCredentials):
		return &httpError{http.StatusUnauthorized, APIError{CodeInvalidCredentials, "Invalid username or password"}}
	case errors.Is(err, auth.ErrInvalidSession):
		return &httpError{http.StatusUnauthorized, APIError{CodeUnauthorized, "Invalid or expired session"}}
	case errors.Is(err, auth.ErrUsernameExists):
		return &httpError{http.StatusConflict, APIError{CodeUsernameExists, "Username already exists"}}
	case errors.Is(err, auth.ErrInvalidUsername):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidUsername, err.Error()}}
	case errors.Is(err, auth.ErrInvalidDisplayName):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidDisplayName, err.Error()}}
	case errors.Is(err, auth.ErrWeakPassword):
		return &httpError{http.StatusBadRequest, APIError{CodeWeakPassword, err.Error()}}

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
