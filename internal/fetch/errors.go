package fetch

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// ErrHTTPStatus indicates the source answered with a non-success status.
type ErrHTTPStatus struct {
	Code int
	Err  error
	// Body is the response body as read, up to maxBody bytes. Err only
	// carries a trimmed snippet of it.
	Body []byte
}

func (e ErrHTTPStatus) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("http status %d", e.Code)
	}
	return fmt.Errorf("http status %d: %w", e.Code, e.Err).Error()
}

func (e ErrHTTPStatus) Unwrap() error {
	return e.Err
}

// ErrMalformedResponse indicates a body that is not JSON or lacks required fields.
type ErrMalformedResponse struct {
	Err error
}

func (e ErrMalformedResponse) Error() string {
	return fmt.Errorf("malformed response: %w", e.Err).Error()
}

func (e ErrMalformedResponse) Unwrap() error {
	return e.Err
}

// ErrUnreachable indicates a network failure: timeout, DNS, refused connection.
type ErrUnreachable struct {
	Err error
}

func (e ErrUnreachable) Error() string {
	return fmt.Errorf("unreachable: %w", e.Err).Error()
}

func (e ErrUnreachable) Unwrap() error {
	return e.Err
}

// ErrLocationNotFound is the weather source's way of rejecting a location.
// It wraps the ErrHTTPStatus that carried the rejection.
type ErrLocationNotFound struct {
	Location string
	Err      error
}

func (e ErrLocationNotFound) Error() string {
	return fmt.Errorf("location %q not found: %w", e.Location, e.Err).Error()
}

func (e ErrLocationNotFound) Unwrap() error {
	return e.Err
}

// Malformed builds an ErrMalformedResponse from a format string.
func Malformed(format string, args ...any) error {
	return ErrMalformedResponse{Err: fmt.Errorf(format, args...)}
}

// Kind returns a stable label for err, used in logs and metrics.
func Kind(err error) string {
	if err == nil {
		return "ok"
	}
	if errors.Is(err, context.Canceled) {
		return "canceled"
	}
	var notFound ErrLocationNotFound
	if errors.As(err, &notFound) {
		return "location_not_found"
	}
	var status ErrHTTPStatus
	if errors.As(err, &status) {
		return "http_status"
	}
	var malformed ErrMalformedResponse
	if errors.As(err, &malformed) {
		return "malformed_response"
	}
	var unreachable ErrUnreachable
	if errors.As(err, &unreachable) {
		return "unreachable"
	}
	return "other"
}

// Message renders err for display in an error panel.
func Message(err error) string {
	var notFound ErrLocationNotFound
	var status ErrHTTPStatus
	switch {
	case err == nil:
		return ""
	case errors.As(err, &notFound):
		return "Location not found"
	case errors.As(err, &status):
		return fmt.Sprintf("API request failed with status %d", status.Code)
	}
	switch Kind(err) {
	case "malformed_response":
		return "Unexpected response format"
	case "unreachable":
		return "Could not reach the data source"
	case "canceled":
		return "Request canceled"
	}
	return err.Error()
}

// StatusFor maps err to the HTTP status the proxy answers with.
func StatusFor(err error) int {
	switch Kind(err) {
	case "location_not_found":
		return http.StatusNotFound
	case "http_status", "malformed_response":
		return http.StatusBadGateway
	case "unreachable":
		return http.StatusGatewayTimeout
	case "canceled":
		return 499
	}
	return http.StatusInternalServerError
}
