package catalog

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	// ErrUnexpectedStatus matches any non-2xx response.
	ErrUnexpectedStatus = errors.New("unexpected status")

	// ErrProductNotFound is returned when the API has no product for an id.
	ErrProductNotFound = errors.New("product not found")

	// ErrEmptyBody is returned when a success response carries no payload.
	ErrEmptyBody = errors.New("empty response body")

	// ErrNoToken is returned when login succeeds without issuing a token.
	ErrNoToken = errors.New("no token issued")

	// ErrInvalidInput matches any ProductInput validation failure.
	ErrInvalidInput = errors.New("invalid product input")
)

// StatusError reports a non-success HTTP status for one operation.
type StatusError struct {
	Op         string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	msg := fmt.Sprintf("%s: %d %s", e.Op, e.StatusCode, http.StatusText(e.StatusCode))
	if e.Body != "" {
		msg += ": " + e.Body
	}
	return msg
}

func (e *StatusError) Unwrap() error {
	return ErrUnexpectedStatus
}

// IsStatus reports whether err is a StatusError with the given code.
func IsStatus(err error, code int) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode == code
}

// ValidationError lists the form fields that failed validation.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "missing or invalid fields: " + strings.Join(e.Fields, ", ")
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}
