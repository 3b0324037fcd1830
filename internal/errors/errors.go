package errors

import (
	"errors"
	"net/http"
)

var (
	// ErrUsernameTaken is returned when the requested username already exists.
	ErrUsernameTaken = errors.New("user with this username already exists")
	// ErrEmailTaken is returned when the requested email already exists.
	ErrEmailTaken = errors.New("user with this email already exists")
	// ErrPhoneTaken is returned when the requested phone number already exists.
	ErrPhoneTaken = errors.New("user with this phone number already exists")
	// ErrDuplicateUser is returned when the database rejects an insert or
	// update on a unique constraint and the offending field is unknown.
	ErrDuplicateUser = errors.New("user with these credentials already exists")
	// ErrInvalidCredentials is returned for bad username/password pairs. The
	// same error covers unknown usernames to prevent enumeration.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidToken is returned when a token is expired, malformed,
	// blacklisted, or refers to a user that no longer exists.
	ErrInvalidToken = errors.New("invalid or expired token")
	// ErrInsufficientPrivilege is returned when no permission check passed.
	ErrInsufficientPrivilege = errors.New("insufficient privilege")
	// ErrUserNotFound is returned when a user lookup finds nothing.
	ErrUserNotFound = errors.New("user not found")
	// ErrGroupNotFound is returned when a group lookup finds nothing.
	ErrGroupNotFound = errors.New("group not found")
	// ErrGroupNotEmpty is returned when deleting a group that still has members.
	ErrGroupNotEmpty = errors.New("group still has members")
	// ErrInvalidSortField is returned for sort parameters that are not
	// whitelisted user columns.
	ErrInvalidSortField = errors.New("invalid sort field")
	// ErrUpstream is returned when an external collaborator (S3, SES, Redis)
	// fails; provider detail is logged at the boundary, never surfaced.
	ErrUpstream = errors.New("upstream service error")
)

// ErrorResponse represents a standardized error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
	Code       string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message, code string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
		Code:       code,
	}
}

// ToErrorResponse converts an HTTPError to ErrorResponse.
func (e *HTTPError) ToErrorResponse() ErrorResponse {
	return ErrorResponse{
		Error: e.Message,
		Code:  e.Code,
	}
}

// MapErrorToHTTP maps domain errors to HTTP errors.
func MapErrorToHTTP(err error) *HTTPError {
	switch {
	case errors.Is(err, ErrUsernameTaken):
		return NewHTTPError(http.StatusConflict, err.Error(), "USERNAME_TAKEN")
	case errors.Is(err, ErrEmailTaken):
		return NewHTTPError(http.StatusConflict, err.Error(), "EMAIL_TAKEN")
	case errors.Is(err, ErrPhoneTaken):
		return NewHTTPError(http.StatusConflict, err.Error(), "PHONE_TAKEN")
	case errors.Is(err, ErrDuplicateUser):
		return NewHTTPError(http.StatusConflict, err.Error(), "USER_EXISTS")
	case errors.Is(err, ErrGroupNotEmpty):
		return NewHTTPError(http.StatusConflict, err.Error(), "GROUP_NOT_EMPTY")
	case errors.Is(err, ErrInvalidCredentials):
		return NewHTTPError(http.StatusUnauthorized, err.Error(), "INVALID_CREDENTIALS")
	case errors.Is(err, ErrInvalidToken):
		return NewHTTPError(http.StatusUnauthorized, err.Error(), "INVALID_TOKEN")
	case errors.Is(err, ErrInsufficientPrivilege):
		return NewHTTPError(http.StatusForbidden, err.Error(), "FORBIDDEN")
	case errors.Is(err, ErrUserNotFound):
		return NewHTTPError(http.StatusNotFound, err.Error(), "USER_NOT_FOUND")
	case errors.Is(err, ErrGroupNotFound):
		return NewHTTPError(http.StatusNotFound, err.Error(), "GROUP_NOT_FOUND")
	case errors.Is(err, ErrInvalidSortField):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "INVALID_QUERY")
	case errors.Is(err, ErrUpstream):
		return NewHTTPError(http.StatusInternalServerError, err.Error(), "UPSTREAM_ERROR")
	default:
		return NewHTTPError(http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
	}
}
