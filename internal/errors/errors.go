package errors

import (
	"errors"
	"net/http"
)

var (
	// ErrUsernameTaken is returned when registering with an existing username.
	ErrUsernameTaken = errors.New("username already exists")
	// ErrEmailTaken is returned when registering with an existing email.
	ErrEmailTaken = errors.New("email already exists")
	// ErrUserExists is returned when a unique constraint on the users table
	// rejects an insert that passed the username/email pre-checks, i.e. a
	// concurrent registration won the race.
	ErrUserExists = errors.New("user already exists")
	// ErrInvalidCredentials is returned for unknown username or wrong password.
	// Both cases share this error so login never leaks which factor failed.
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrMissingCredential is returned when the Authorization header is absent
	// or not a Bearer scheme.
	ErrMissingCredential = errors.New("missing or malformed authorization header")
	// ErrInvalidToken is returned for malformed or tampered tokens.
	ErrInvalidToken = errors.New("invalid token")
	// ErrExpiredToken is returned for well-signed tokens past their expiry.
	ErrExpiredToken = errors.New("token has expired")
	// ErrAppointmentNotFound is returned when no appointment has the given id.
	ErrAppointmentNotFound = errors.New("appointment not found")
	// ErrForbidden is returned when an appointment belongs to another user.
	ErrForbidden = errors.New("you can only access your own appointments")
	// ErrSlotTaken is returned when the doctor is already booked at that time.
	ErrSlotTaken = errors.New("doctor is already booked at this time")
	// ErrPastAppointment is returned when the appointment time is not in the future.
	ErrPastAppointment = errors.New("appointment time must be in the future")
	// ErrUserNotFound is returned when no user has the given id.
	ErrUserNotFound = errors.New("user not found")
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

// MapErrorToHTTP maps domain errors to HTTP errors. This is the single place
// where business failures are translated to transport status codes. Unknown
// errors collapse to a generic 500 so internal detail never reaches callers.
func MapErrorToHTTP(err error) *HTTPError {
	switch {
	case errors.Is(err, ErrPastAppointment):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "APPOINTMENT_IN_PAST")
	case errors.Is(err, ErrInvalidCredentials):
		return NewHTTPError(http.StatusUnauthorized, err.Error(), "INVALID_CREDENTIALS")
	case errors.Is(err, ErrMissingCredential):
		return NewHTTPError(http.StatusUnauthorized, err.Error(), "MISSING_CREDENTIAL")
	case errors.Is(err, ErrInvalidToken):
		return NewHTTPError(http.StatusUnauthorized, err.Error(), "INVALID_TOKEN")
	case errors.Is(err, ErrExpiredToken):
		return NewHTTPError(http.StatusUnauthorized, err.Error(), "TOKEN_EXPIRED")
	case errors.Is(err, ErrForbidden):
		return NewHTTPError(http.StatusForbidden, err.Error(), "FORBIDDEN")
	case errors.Is(err, ErrAppointmentNotFound):
		return NewHTTPError(http.StatusNotFound, err.Error(), "APPOINTMENT_NOT_FOUND")
	case errors.Is(err, ErrUserNotFound):
		return NewHTTPError(http.StatusNotFound, err.Error(), "USER_NOT_FOUND")
	case errors.Is(err, ErrSlotTaken):
		return NewHTTPError(http.StatusConflict, err.Error(), "SLOT_TAKEN")
	case errors.Is(err, ErrUsernameTaken):
		return NewHTTPError(http.StatusConflict, err.Error(), "USERNAME_TAKEN")
	case errors.Is(err, ErrEmailTaken):
		return NewHTTPError(http.StatusConflict, err.Error(), "EMAIL_TAKEN")
	case errors.Is(err, ErrUserExists):
		return NewHTTPError(http.StatusConflict, err.Error(), "USER_EXISTS")
	default:
		return NewHTTPError(http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
	}
}
