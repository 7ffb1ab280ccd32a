package dispatch

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/halsteadcap/fundscribe/internal/backend"
	"github.com/halsteadcap/fundscribe/pkg/models"
)

// Dispatcher orchestrates one classified request end to end: it issues the
// backend call under the selected tier's timeout and, on a soft failure,
// hands off to the fallback cascade. A Dispatcher owns no per-request state;
// independent requests may run concurrently and share only the read-only
// registry.
type Dispatcher struct {
	reg        *Registry
	classifier *Classifier
	backend    backend.Completer
	noFallback bool
	debug      *DebugLogger
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithFallbackDisabled turns off the fallback cascade: soft failures are
// returned to the caller directly. Used by callers whose request is itself
// already a degraded retry.
func WithFallbackDisabled() Option {
	return func(d *Dispatcher) { d.noFallback = true }
}

// WithDebugLogger attaches a file-backed trace logger. Every classification,
// call attempt, and cascade step is recorded there in addition to the
// standard log output.
func WithDebugLogger(l *DebugLogger) Option {
	return func(d *Dispatcher) { d.debug = l }
}

// NewDispatcher creates a Dispatcher over the given registry and backend.
func NewDispatcher(reg *Registry, completer backend.Completer, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		reg:        reg,
		classifier: NewClassifier(reg),
		backend:    completer,
		debug:      NopLogger(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Classify exposes the dispatcher's classifier for dry-run inspection.
func (d *Dispatcher) Classify(text string) Decision {
	return d.classifier.Classify(text)
}

// Dispatch classifies the text, applies any caller overrides to a copy of
// the selected descriptor, and executes the request. On success the outcome
// carries the response text; when every fallback strategy fails it carries
// StatusExhausted together with an *ExhaustedError. Soft failures surface
// directly only when fallback is disabled.
func (d *Dispatcher) Dispatch(ctx context.Context, text string, opts *models.Overrides) (*models.Outcome, error) {
	decision := d.classifier.Classify(text)
	req := decision.Request
	req.ID = uuid.NewString()

	desc, err := d.applyOverrides(decision.Descriptor, opts)
	if err != nil {
		return nil, err
	}

	log.Printf("[dispatch] request %s: %s (model %s, timeout %s)", req.ID, decision.Justification, desc.Model, desc.Timeout)
	d.debug.Log("request %s: %q -> %s (score %d, model %s, timeout %s)", req.ID, text, desc.Name, req.ComplexityScore, desc.Model, desc.Timeout)

	start := time.Now()
	responseText, err := d.call(ctx, req.Text, desc)
	if err == nil {
		return &models.Outcome{
			RequestID:       req.ID,
			Text:            responseText,
			Elapsed:         time.Since(start),
			TierUsed:        desc.Name,
			ComplexityScore: req.ComplexityScore,
			Justification:   decision.Justification,
			Status:          models.StatusSuccess,
		}, nil
	}
	if ctx.Err() != nil {
		// Caller cancellation is not a soft failure; propagate it.
		return nil, ctx.Err()
	}

	log.Printf("[dispatch] request %s: primary call failed: %v", req.ID, err)
	d.debug.Log("request %s: primary call failed: %v", req.ID, err)

	if d.noFallback {
		return nil, err
	}

	return d.runCascade(ctx, req, decision, start)
}

// call issues exactly one backend call and races it against the tier's
// timeout. A late backend result is discarded: the result channel is
// buffered so the losing goroutine never blocks, and cancellation of the
// in-flight call is best effort only.
func (d *Dispatcher) call(ctx context.Context, prompt string, desc TierDescriptor) (string, error) {
	type result struct {
		text string
		err  error
	}

	callCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	ch := make(chan result, 1)
	go func() {
		text, err := d.backend.Complete(callCtx, prompt, backend.CallConfig{
			Model:     desc.Model,
			Reasoning: desc.Reasoning,
			Verbosity: desc.Verbosity,
			MaxTokens: desc.MaxTokens,
		})
		ch <- result{text: text, err: err}
	}()

	timer := time.NewTimer(desc.Timeout)
	defer timer.Stop()

	select {
	case res := <-ch:
		if res.err != nil {
			return "", &BackendError{Err: res.err}
		}
		return res.text, nil
	case <-timer.C:
		return "", &TimeoutError{Tier: desc.Name, Timeout: desc.Timeout}
	case <-ctx.Done():
		return "", &BackendError{Err: ctx.Err()}
	}
}

// applyOverrides merges typed caller overrides onto a copy of the
// classified descriptor. The recorded justification and score are never
// altered by overrides.
func (d *Dispatcher) applyOverrides(desc TierDescriptor, opts *models.Overrides) (TierDescriptor, error) {
	if opts.Empty() {
		return desc, nil
	}
	if opts.ForceTier != "" {
		forced, err := d.reg.Descriptor(opts.ForceTier)
		if err != nil {
			return TierDescriptor{}, err
		}
		desc = forced
	}
	if opts.Reasoning != nil {
		if !opts.Reasoning.Valid() {
			return TierDescriptor{}, &InvalidOverrideError{Field: "reasoning", Value: string(*opts.Reasoning)}
		}
		desc.Reasoning = *opts.Reasoning
	}
	if opts.Verbosity != nil {
		if !opts.Verbosity.Valid() {
			return TierDescriptor{}, &InvalidOverrideError{Field: "verbosity", Value: string(*opts.Verbosity)}
		}
		desc.Verbosity = *opts.Verbosity
	}
	if opts.MaxTokens != nil {
		if *opts.MaxTokens <= 0 {
			return TierDescriptor{}, &InvalidOverrideError{Field: "max_tokens", Value: "non-positive"}
		}
		desc.MaxTokens = *opts.MaxTokens
	}
	return desc, nil
}
