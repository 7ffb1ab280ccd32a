package models

// Tier represents the execution tier for a dispatched request.
type Tier string

const (
	// TierFast is for short or trivial requests that need a quick answer.
	TierFast Tier = "fast"
	// TierBalanced is for standard analysis and drafting work.
	TierBalanced Tier = "balanced"
	// TierCapable is for the most demanding multi-part analysis.
	TierCapable Tier = "capable"
	// TierDocument is the balanced tier with an enlarged output budget for
	// document-creation requests.
	TierDocument Tier = "document"
	// TierDocumentLarge further extends the document budget for long or
	// high-complexity document requests.
	TierDocumentLarge Tier = "document_large"
)

// Valid returns true if the tier is a known value.
func (t Tier) Valid() bool {
	switch t {
	case TierFast, TierBalanced, TierCapable, TierDocument, TierDocumentLarge:
		return true
	default:
		return false
	}
}

// ReasoningEffort controls how much internal deliberation the backend
// performs before responding.
type ReasoningEffort string

const (
	ReasoningMinimal ReasoningEffort = "minimal"
	ReasoningLow     ReasoningEffort = "low"
	ReasoningMedium  ReasoningEffort = "medium"
	ReasoningHigh    ReasoningEffort = "high"
)

// Valid returns true if the reasoning effort is a known value.
func (r ReasoningEffort) Valid() bool {
	switch r {
	case ReasoningMinimal, ReasoningLow, ReasoningMedium, ReasoningHigh:
		return true
	default:
		return false
	}
}

// Verbosity controls response length and detail.
type Verbosity string

const (
	VerbosityLow    Verbosity = "low"
	VerbosityMedium Verbosity = "medium"
	VerbosityHigh   Verbosity = "high"
)

// Valid returns true if the verbosity is a known value.
func (v Verbosity) Valid() bool {
	switch v {
	case VerbosityLow, VerbosityMedium, VerbosityHigh:
		return true
	default:
		return false
	}
}
