package sheets

import (
	"context"
	"errors"
	"fmt"
	"net"

	"google.golang.org/api/googleapi"
)

// ValidationKind classifies local input validation failures.
type ValidationKind string

const (
	ValidationMalformedRange ValidationKind = "malformed_range"
	ValidationEmptyFormat    ValidationKind = "empty_format"
	ValidationInvalidEnum    ValidationKind = "invalid_enum"
	ValidationArityMismatch  ValidationKind = "arity_mismatch"
	ValidationBadColor       ValidationKind = "bad_color"
	ValidationBadName        ValidationKind = "bad_name"
	ValidationBadValue       ValidationKind = "bad_value"
)

// ValidationError reports a locally detected input problem. No remote call
// was made; the request must be corrected before resubmission.
type ValidationError struct {
	Kind    ValidationKind
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
	}
	return e.Message
}

// Is allows errors.Is comparisons against a ValidationError of the same kind.
func (e *ValidationError) Is(target error) bool {
	t, ok := target.(*ValidationError)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

func validationErrorf(kind ValidationKind, field, format string, args ...interface{}) *ValidationError {
	return &ValidationError{Kind: kind, Field: field, Message: fmt.Sprintf(format, args...)}
}

// RateLimitError is returned when the API kept answering with quota errors
// after the configured number of retry attempts.
type RateLimitError struct {
	Attempts int
	Err      error
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limited after %d attempts: %v", e.Attempts, e.Err)
}

func (e *RateLimitError) Unwrap() error {
	return e.Err
}

// NetworkError is returned when a transport failure or timeout persisted
// through all retry attempts.
type NetworkError struct {
	Attempts int
	Err      error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network failure after %d attempts: %v", e.Attempts, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// APIError is a non-transient remote rejection. RequestIndex identifies the
// failing sub-request inside a batch; -1 means the call was not a batch.
type APIError struct {
	Status       int
	Message      string
	RequestIndex int
	Err          error
}

func (e *APIError) Error() string {
	if e.RequestIndex >= 0 {
		return fmt.Sprintf("api error %d on sub-request %d: %s", e.Status, e.RequestIndex, e.Message)
	}
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// isRateLimited reports whether an error is a quota rejection (HTTP 429 or
// the Sheets API's 403 rateLimitExceeded reason).
func isRateLimited(err error) bool {
	var apiErr *googleapi.Error
	if !errors.As(err, &apiErr) {
		return false
	}
	if apiErr.Code == 429 {
		return true
	}
	if apiErr.Code == 403 {
		for _, item := range apiErr.Errors {
			if item.Reason == "rateLimitExceeded" || item.Reason == "userRateLimitExceeded" {
				return true
			}
		}
	}
	return false
}

// isTransient reports whether an error is worth retrying: rate limits,
// server-side 5xx, timeouts, and transport failures.
func isTransient(err error) bool {
	if err == nil {
		return false
	}
	if isRateLimited(err) {
		return true
	}
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return apiErr.Code >= 500 && apiErr.Code < 600
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	return false
}

// classifyCallError converts an exhausted-or-permanent call failure into the
// typed taxonomy. attempts is how many tries were made; requestIndex tags the
// failing batch sub-request, or -1 for non-batch calls.
func classifyCallError(err error, attempts, requestIndex int) error {
	if err == nil {
		return nil
	}
	if isRateLimited(err) {
		return &RateLimitError{Attempts: attempts, Err: err}
	}
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		if apiErr.Code >= 500 {
			return &NetworkError{Attempts: attempts, Err: err}
		}
		return &APIError{
			Status:       apiErr.Code,
			Message:      apiErr.Message,
			RequestIndex: requestIndex,
			Err:          err,
		}
	}
	if isTransient(err) {
		return &NetworkError{Attempts: attempts, Err: err}
	}
	return err
}
