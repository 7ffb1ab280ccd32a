package models

import "time"

// DispatchStatus is the terminal status of a dispatched request.
type DispatchStatus string

const (
	// StatusSuccess means a backend call (primary or fallback) produced text.
	StatusSuccess DispatchStatus = "success"
	// StatusExhausted means every fallback strategy failed.
	StatusExhausted DispatchStatus = "exhausted"
)

// Outcome is the result of one classified request. It is created by the
// dispatcher or fallback cascade and returned to the caller; this subsystem
// does not persist it.
type Outcome struct {
	// RequestID is the trace identifier of the originating request.
	RequestID string
	// Text is the backend's response text. Empty when Status is exhausted.
	Text string
	// Elapsed is the total wall time spent on the request, fallbacks included.
	Elapsed time.Duration
	// TierUsed is the tier that ultimately produced the response.
	TierUsed Tier
	// ComplexityScore is the score that drove the initial tier selection.
	ComplexityScore int
	// Justification explains the classification decision.
	Justification string
	// UsedFallback is true when the response came from a fallback strategy.
	UsedFallback bool
	// FallbackStrategy names the fallback strategy that produced the
	// response, empty when UsedFallback is false.
	FallbackStrategy string
	// Status is success or exhausted.
	Status DispatchStatus
}
