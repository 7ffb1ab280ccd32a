package dispatch

import (
	"fmt"
	"time"

	"github.com/halsteadcap/fundscribe/pkg/models"
)

// TimeoutError is a soft failure: the tier's timeout elapsed before the
// backend responded. The in-flight call is not force-cancelled; its late
// result is discarded.
type TimeoutError struct {
	Tier    models.Tier
	Timeout time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("tier %s timed out after %s", e.Tier, e.Timeout)
}

// BackendError is a soft failure: the backend rejected the call. All
// rejection reasons are treated uniformly.
type BackendError struct {
	Err error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("backend call failed: %v", e.Err)
}

func (e *BackendError) Unwrap() error { return e.Err }

// InvalidOverrideError reports a caller override that failed validation
// before being merged into a descriptor copy.
type InvalidOverrideError struct {
	Field string
	Value string
}

func (e *InvalidOverrideError) Error() string {
	return fmt.Sprintf("invalid override %s: %s", e.Field, e.Value)
}

// ExhaustedError is the hard failure surfaced when every fallback strategy,
// including the last-resort quick path, has failed. Callers must treat it
// as fatal for the request, never as a reason to retry.
type ExhaustedError struct {
	RequestID string
	Attempts  []string
	LastErr   error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("all %d fallback strategies exhausted for request %s: %v", len(e.Attempts), e.RequestID, e.LastErr)
}

func (e *ExhaustedError) Unwrap() error { return e.LastErr }
