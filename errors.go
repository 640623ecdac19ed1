package lens

import (
	"errors"
	"fmt"
)

// Common errors returned by the Lens client.
var (
	// ErrEmptyQuestion is returned when Send is called with a blank question.
	ErrEmptyQuestion = errors.New("question cannot be empty")

	// ErrExchangePending is returned when Send is called while a previous
	// exchange has not resolved yet. Input is rejected, never interleaved.
	ErrExchangePending = errors.New("assistant exchange already pending")

	// ErrMalformedPayload is returned when a response body fails boundary
	// validation.
	ErrMalformedPayload = errors.New("malformed response payload")

	// ErrEmptyPayload is returned when a response validates but carries no
	// usable data. Resources treat it exactly like a transport failure.
	ErrEmptyPayload = errors.New("empty response payload")

	// ErrMissingContext is returned when an explain context lacks one of its
	// identifying fields.
	ErrMissingContext = errors.New("explain context requires sku_id, store_id and forecast_date")

	// ErrOffline is returned when a console operation is attempted without a
	// configured ConsoleURL. Resources translate it into their fallback.
	ErrOffline = errors.New("operation unavailable without a console URL")

	// ErrStaleEpoch is returned internally when a response arrives for a
	// superseded filter epoch and is discarded.
	ErrStaleEpoch = errors.New("response belongs to a superseded filter epoch")

	// ErrRefreshInFlight is returned when a refresh is requested while the
	// same resource already has one in flight for the current epoch.
	ErrRefreshInFlight = errors.New("refresh already in flight for this epoch")
)

// ValidationError is returned when configuration validation fails.
// Extractable via errors.As().
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config: %s: %s", e.Field, e.Message)
}

// RequestError is returned when a console request fails with details.
// Extractable via errors.As(). Supports Unwrap().
type RequestError struct {
	Operation  string
	StatusCode int
	Err        error
}

func (e *RequestError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("console: %s failed (status %d): %v", e.Operation, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("console: %s failed: %v", e.Operation, e.Err)
}

func (e *RequestError) Unwrap() error { return e.Err }
