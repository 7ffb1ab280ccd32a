package models

// Request is an immutable value describing one inbound natural-language
// request after classification. It is constructed once by the classifier
// and discarded when dispatch completes.
type Request struct {
	// ID is a unique trace identifier for this request.
	ID string
	// Text is the raw request text as received.
	Text string
	// WordCount is the whitespace-split word count of Text.
	WordCount int
	// ComplexityScore is the heuristic complexity estimate (practically 0-8).
	ComplexityScore int
	// HasSpeedIntent is true when a speed/greeting keyword matched.
	HasSpeedIntent bool
	// HasDocumentIntent is true when document-creation patterns matched.
	// Once set it is sticky for tier selection.
	HasDocumentIntent bool
	// HasDomainIntent is true when fund/lending vocabulary matched.
	HasDomainIntent bool
}

// Overrides replace individual descriptor fields after classification.
// Nil fields leave the classified value untouched. Overrides are applied
// to a copy of the descriptor at the dispatcher boundary; the recorded
// justification and score are never altered by them.
type Overrides struct {
	// ForceTier routes the request to the named tier's descriptor.
	ForceTier Tier
	// Reasoning replaces the reasoning effort.
	Reasoning *ReasoningEffort
	// Verbosity replaces the verbosity.
	Verbosity *Verbosity
	// MaxTokens replaces the output token budget. Must be positive.
	MaxTokens *int
}

// Empty returns true if no override field is set.
func (o *Overrides) Empty() bool {
	if o == nil {
		return true
	}
	return o.ForceTier == "" && o.Reasoning == nil && o.Verbosity == nil && o.MaxTokens == nil
}
