package dispatch

import (
	"context"
	"log"
	"time"

	"github.com/halsteadcap/fundscribe/pkg/models"
)

// Fallback strategy names, in their fixed declared order. The order is
// explicit policy, not derived from cost, and must be preserved.
const (
	strategyDocumentFallback = "document-fallback"
	strategyFastMinimal      = "fast-minimal"
	strategyBalancedMinimal  = "balanced-minimal"
	strategyQuickPath        = "quick-path"
)

// minFallbackTokens is the floor applied when halving a token budget for a
// degraded retry.
const minFallbackTokens = 256

// fallbackStrategy is one degraded retry step in the cascade.
type fallbackStrategy struct {
	name string
	// descriptor is zero-valued for the quick path, which bypasses tier
	// configuration entirely.
	descriptor TierDescriptor
	quickPath  bool
}

// strategies returns the cascade steps for a request, in order. Document
// requests get one bespoke step inserted ahead of the generic cascade: a
// balanced-tier retry with reduced reasoning, verbosity, and budget.
func (d *Dispatcher) strategies(docIntent bool) []fallbackStrategy {
	var out []fallbackStrategy

	if docIntent {
		doc := d.reg.Document(false)
		doc.Reasoning = models.ReasoningLow
		doc.Verbosity = models.VerbosityLow
		doc.MaxTokens = reducedBudget(doc.MaxTokens)
		out = append(out, fallbackStrategy{name: strategyDocumentFallback, descriptor: doc})
	}

	fast := d.reg.Fast()
	fast.Reasoning = models.ReasoningMinimal
	fast.Verbosity = models.VerbosityLow
	fast.MaxTokens = reducedBudget(fast.MaxTokens)
	out = append(out, fallbackStrategy{name: strategyFastMinimal, descriptor: fast})

	balanced := d.reg.Balanced()
	balanced.Reasoning = models.ReasoningMinimal
	balanced.Verbosity = models.VerbosityLow
	balanced.MaxTokens = reducedBudget(balanced.MaxTokens)
	out = append(out, fallbackStrategy{name: strategyBalancedMinimal, descriptor: balanced})

	out = append(out, fallbackStrategy{name: strategyQuickPath, quickPath: true})
	return out
}

func reducedBudget(maxTokens int) int {
	reduced := maxTokens / 2
	if reduced < minFallbackTokens {
		reduced = minFallbackTokens
	}
	return reduced
}

// runCascade walks the degraded retry strategies strictly in order, stopping
// at the first success. Each attempt is bounded by its own tier timeout; no
// two attempts run concurrently, and there is no backoff between steps.
// When every strategy fails the outcome is StatusExhausted together with an
// *ExhaustedError.
func (d *Dispatcher) runCascade(ctx context.Context, req models.Request, decision Decision, start time.Time) (*models.Outcome, error) {
	var attempted []string
	var lastErr error

	for _, strat := range d.strategies(req.HasDocumentIntent) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		attempted = append(attempted, strat.name)
		log.Printf("[cascade] request %s: trying strategy %s", req.ID, strat.name)
		d.debug.Log("request %s: cascade strategy %s", req.ID, strat.name)

		var text string
		var err error
		var tierUsed models.Tier
		if strat.quickPath {
			text, err = d.quickCall(ctx, req.Text)
			tierUsed = d.reg.Fast().Name
		} else {
			text, err = d.call(ctx, req.Text, strat.descriptor)
			tierUsed = strat.descriptor.Name
		}
		if err != nil {
			log.Printf("[cascade] request %s: strategy %s failed: %v", req.ID, strat.name, err)
			lastErr = err
			continue
		}

		return &models.Outcome{
			RequestID:        req.ID,
			Text:             text,
			Elapsed:          time.Since(start),
			TierUsed:         tierUsed,
			ComplexityScore:  req.ComplexityScore,
			Justification:    decision.Justification,
			UsedFallback:     true,
			FallbackStrategy: strat.name,
			Status:           models.StatusSuccess,
		}, nil
	}

	err := &ExhaustedError{RequestID: req.ID, Attempts: attempted, LastErr: lastErr}
	log.Printf("[cascade] request %s: %v", req.ID, err)

	return &models.Outcome{
		RequestID:       req.ID,
		Elapsed:         time.Since(start),
		TierUsed:        "",
		ComplexityScore: req.ComplexityScore,
		Justification:   decision.Justification,
		UsedFallback:    true,
		Status:          models.StatusExhausted,
	}, err
}

// quickCall runs the last-resort quick path under the fast tier's timeout.
func (d *Dispatcher) quickCall(ctx context.Context, prompt string) (string, error) {
	type result struct {
		text string
		err  error
	}

	callCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	ch := make(chan result, 1)
	go func() {
		text, err := d.backend.QuickComplete(callCtx, prompt)
		ch <- result{text: text, err: err}
	}()

	timeout := d.reg.Fast().Timeout
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case res := <-ch:
		if res.err != nil {
			return "", &BackendError{Err: res.err}
		}
		return res.text, nil
	case <-timer.C:
		return "", &TimeoutError{Tier: d.reg.Fast().Name, Timeout: timeout}
	case <-ctx.Done():
		return "", &BackendError{Err: ctx.Err()}
	}
}
