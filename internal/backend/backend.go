// Package backend provides the completion backend used by the dispatcher.
// The dispatcher depends only on the Completer contract; latency is
// unbounded from its point of view.
package backend

import (
	"context"

	"github.com/halsteadcap/fundscribe/pkg/models"
)

// CallConfig carries the per-call execution settings resolved from a tier
// descriptor.
type CallConfig struct {
	Model     string
	Reasoning models.ReasoningEffort
	Verbosity models.Verbosity
	MaxTokens int
}

// Completer is the external completion backend contract.
type Completer interface {
	// Complete turns a prompt and call configuration into response text.
	Complete(ctx context.Context, prompt string, cfg CallConfig) (string, error)

	// QuickComplete is the simplest available entry point: fixed minimal
	// configuration, no tier plumbing. Used only by the last-resort
	// fallback strategy.
	QuickComplete(ctx context.Context, prompt string) (string, error)
}
