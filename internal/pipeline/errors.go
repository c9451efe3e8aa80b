package pipeline

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMissingCredential is returned before any network call when no API key
// is configured.
var ErrMissingCredential = errors.New("missing Gemini API key")

// maxRawSample bounds how much raw model output is carried in parse errors.
const maxRawSample = 500

// RateLimitError is surfaced when the extraction retry budget is exhausted.
type RateLimitError struct {
	Attempts int
	Last     error
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("API rate limit error after %d retries: %v", e.Attempts, e.Last)
}

func (e *RateLimitError) Unwrap() error { return e.Last }

// UnexpectedAPIError wraps any extraction failure that is not a retryable
// rate-limit condition.
type UnexpectedAPIError struct {
	Err error
}

func (e *UnexpectedAPIError) Error() string {
	return fmt.Sprintf("unexpected error during API call: %v", e.Err)
}

func (e *UnexpectedAPIError) Unwrap() error { return e.Err }

// MalformedResponseError indicates the model output could not be parsed as a
// valid cheque record. Raw carries up to maxRawSample characters of the
// original response for diagnostics.
type MalformedResponseError struct {
	Err error
	Raw string
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("parsing model response: %v. Response was: %s", e.Err, e.Raw)
}

func (e *MalformedResponseError) Unwrap() error { return e.Err }

// IncompleteResponseError lists every required field absent from an otherwise
// well-formed model response.
type IncompleteResponseError struct {
	Missing []string
}

func (e *IncompleteResponseError) Error() string {
	return "missing required fields in API response: " + strings.Join(e.Missing, ", ")
}

func truncateRaw(raw string) string {
	if len(raw) > maxRawSample {
		return raw[:maxRawSample]
	}
	return raw
}
