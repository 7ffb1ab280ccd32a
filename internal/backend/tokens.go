package backend

import "sync"

// ModelPricing contains pricing per 1M tokens for a model.
type ModelPricing struct {
	InputPerMillion  float64
	OutputPerMillion float64
}

// DefaultModelPricing contains pricing for the models in the default tier
// table.
var DefaultModelPricing = map[string]ModelPricing{
	"claude-opus-4-5-20251101":  {InputPerMillion: 15.00, OutputPerMillion: 75.00},
	"claude-sonnet-4-20250514":  {InputPerMillion: 3.00, OutputPerMillion: 15.00},
	"claude-3-5-haiku-20241022": {InputPerMillion: 0.80, OutputPerMillion: 4.00},
}

// TokenUsage is the aggregated token usage of a backend.
type TokenUsage struct {
	InputTokens  int64
	OutputTokens int64
	Calls        int
}

// TokenTracker accumulates API-reported token usage across calls.
type TokenTracker struct {
	mu        sync.Mutex
	inputTok  int64
	outputTok int64
	calls     int
}

// NewTokenTracker creates a zeroed tracker.
func NewTokenTracker() *TokenTracker {
	return &TokenTracker{}
}

// Add records token usage from one API call.
func (t *TokenTracker) Add(input, output int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.inputTok += input
	t.outputTok += output
	t.calls++
}

// Usage returns the accumulated totals.
func (t *TokenTracker) Usage() TokenUsage {
	t.mu.Lock()
	defer t.mu.Unlock()
	return TokenUsage{
		InputTokens:  t.inputTok,
		OutputTokens: t.outputTok,
		Calls:        t.calls,
	}
}

// EstimateCost returns the dollar cost of the accumulated usage under the
// given model's pricing; zero when the model is unknown.
func (t *TokenTracker) EstimateCost(model string) float64 {
	pricing, ok := DefaultModelPricing[model]
	if !ok {
		return 0
	}
	usage := t.Usage()
	return float64(usage.InputTokens)/1e6*pricing.InputPerMillion +
		float64(usage.OutputTokens)/1e6*pricing.OutputPerMillion
}
