package dispatch

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/halsteadcap/fundscribe/internal/backend"
	"github.com/halsteadcap/fundscribe/pkg/models"
)

// stubCompleter is a scripted backend for dispatcher tests. It records
// every call configuration in order.
type stubCompleter struct {
	mu         sync.Mutex
	calls      []backend.CallConfig
	quickCalls int

	completeFn func(ctx context.Context, prompt string, cfg backend.CallConfig) (string, error)
	quickFn    func(ctx context.Context, prompt string) (string, error)
}

func (s *stubCompleter) Complete(ctx context.Context, prompt string, cfg backend.CallConfig) (string, error) {
	s.mu.Lock()
	s.calls = append(s.calls, cfg)
	s.mu.Unlock()
	if s.completeFn == nil {
		return "ok", nil
	}
	return s.completeFn(ctx, prompt, cfg)
}

func (s *stubCompleter) QuickComplete(ctx context.Context, prompt string) (string, error) {
	s.mu.Lock()
	s.quickCalls++
	s.mu.Unlock()
	if s.quickFn == nil {
		return "quick ok", nil
	}
	return s.quickFn(ctx, prompt)
}

func (s *stubCompleter) recordedCalls() []backend.CallConfig {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]backend.CallConfig, len(s.calls))
	copy(out, s.calls)
	return out
}

// hang blocks until the call context is cancelled.
func hang(ctx context.Context, _ string, _ backend.CallConfig) (string, error) {
	<-ctx.Done()
	return "", ctx.Err()
}

// testRegistry returns the default table with millisecond timeouts so
// timeout races resolve quickly in tests.
func testRegistry(t *testing.T) *Registry {
	t.Helper()
	fast, balanced, capable := defaultTiers()
	fast.Timeout = 20 * time.Millisecond
	balanced.Timeout = 30 * time.Millisecond
	capable.Timeout = 40 * time.Millisecond

	reg, err := NewRegistry(RegistryConfig{Fast: &fast, Balanced: &balanced, Capable: &capable})
	if err != nil {
		t.Fatalf("test registry: %v", err)
	}
	return reg
}

func TestDispatchSuccess(t *testing.T) {
	stub := &stubCompleter{
		completeFn: func(_ context.Context, _ string, _ backend.CallConfig) (string, error) {
			return "the answer", nil
		},
	}
	d := NewDispatcher(testRegistry(t), stub)

	outcome, err := d.Dispatch(context.Background(), "What is my current balance", nil)
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if outcome.Text != "the answer" {
		t.Errorf("text = %q, want %q", outcome.Text, "the answer")
	}
	if outcome.Status != models.StatusSuccess {
		t.Errorf("status = %s, want %s", outcome.Status, models.StatusSuccess)
	}
	if outcome.TierUsed != models.TierFast {
		t.Errorf("tier used = %s, want %s", outcome.TierUsed, models.TierFast)
	}
	if outcome.UsedFallback {
		t.Error("UsedFallback = true on a clean primary call")
	}
	if outcome.RequestID == "" {
		t.Error("request ID not assigned")
	}
	if outcome.Elapsed <= 0 {
		t.Error("elapsed not recorded")
	}
	if stub.quickCalls != 0 {
		t.Errorf("quick path called %d times, want 0", stub.quickCalls)
	}
}

func TestDispatchTimeoutFallsBackToQuickPath(t *testing.T) {
	stub := &stubCompleter{
		completeFn: hang,
		quickFn: func(_ context.Context, _ string) (string, error) {
			return "quick answer", nil
		},
	}
	d := NewDispatcher(testRegistry(t), stub)

	outcome, err := d.Dispatch(context.Background(), "What is my current balance", nil)
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if !outcome.UsedFallback {
		t.Fatal("UsedFallback = false after a primary timeout")
	}
	if outcome.FallbackStrategy != strategyQuickPath {
		t.Errorf("fallback strategy = %s, want %s", outcome.FallbackStrategy, strategyQuickPath)
	}
	if outcome.Text != "quick answer" {
		t.Errorf("text = %q, want the quick path answer", outcome.Text)
	}
	// Primary + two tier-based fallback strategies, then the quick path.
	if calls := stub.recordedCalls(); len(calls) != 3 {
		t.Errorf("Complete called %d times, want 3", len(calls))
	}
	if stub.quickCalls != 1 {
		t.Errorf("quick path called %d times, want 1", stub.quickCalls)
	}
}

func TestDispatchLateResultIsDiscarded(t *testing.T) {
	// The primary call answers after its timeout; the outcome must come
	// from the fallback, never the late value.
	stub := &stubCompleter{
		completeFn: func(ctx context.Context, _ string, cfg backend.CallConfig) (string, error) {
			select {
			case <-time.After(200 * time.Millisecond):
				return "late value", nil
			case <-ctx.Done():
				return "", ctx.Err()
			}
		},
		quickFn: func(_ context.Context, _ string) (string, error) {
			return "fallback value", nil
		},
	}
	d := NewDispatcher(testRegistry(t), stub)

	outcome, err := d.Dispatch(context.Background(), "What is my current balance", nil)
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if outcome.Text != "fallback value" {
		t.Errorf("text = %q, the late backend value must be discarded", outcome.Text)
	}
	if !outcome.UsedFallback {
		t.Error("UsedFallback = false, want true")
	}
}

func TestDispatchBackendErrorTriggersCascadeInOrder(t *testing.T) {
	stub := &stubCompleter{
		completeFn: func(_ context.Context, _ string, _ backend.CallConfig) (string, error) {
			return "", errors.New("boom")
		},
		quickFn: func(_ context.Context, _ string) (string, error) {
			return "", errors.New("boom")
		},
	}
	d := NewDispatcher(testRegistry(t), stub)

	outcome, err := d.Dispatch(context.Background(), "What is my current balance", nil)
	if err == nil {
		t.Fatal("Dispatch succeeded with an always-failing backend")
	}

	var exhausted *ExhaustedError
	if !errors.As(err, &exhausted) {
		t.Fatalf("error %T, want *ExhaustedError", err)
	}
	wantAttempts := []string{strategyFastMinimal, strategyBalancedMinimal, strategyQuickPath}
	if len(exhausted.Attempts) != len(wantAttempts) {
		t.Fatalf("attempts = %v, want %v", exhausted.Attempts, wantAttempts)
	}
	for i, want := range wantAttempts {
		if exhausted.Attempts[i] != want {
			t.Errorf("attempt[%d] = %s, want %s", i, exhausted.Attempts[i], want)
		}
	}

	if outcome == nil || outcome.Status != models.StatusExhausted {
		t.Errorf("outcome status = %v, want %s", outcome, models.StatusExhausted)
	}

	// Fallback call configurations are degraded: minimal reasoning, low
	// verbosity, reduced budget.
	calls := stub.recordedCalls()
	if len(calls) != 3 {
		t.Fatalf("Complete called %d times, want 3 (primary + 2 strategies)", len(calls))
	}
	for _, cfg := range calls[1:] {
		if cfg.Reasoning != models.ReasoningMinimal {
			t.Errorf("fallback reasoning = %s, want %s", cfg.Reasoning, models.ReasoningMinimal)
		}
		if cfg.Verbosity != models.VerbosityLow {
			t.Errorf("fallback verbosity = %s, want %s", cfg.Verbosity, models.VerbosityLow)
		}
	}
	if calls[1].MaxTokens >= calls[0].MaxTokens {
		t.Errorf("fallback budget %d not reduced from primary %d", calls[1].MaxTokens, calls[0].MaxTokens)
	}
}

func TestDispatchCascadeIsDeterministic(t *testing.T) {
	run := func() []string {
		stub := &stubCompleter{
			completeFn: func(_ context.Context, _ string, _ backend.CallConfig) (string, error) {
				return "", errors.New("down")
			},
			quickFn: func(_ context.Context, _ string) (string, error) {
				return "", errors.New("down")
			},
		}
		d := NewDispatcher(testRegistry(t), stub)
		_, err := d.Dispatch(context.Background(), "What is my current balance", nil)
		var exhausted *ExhaustedError
		if !errors.As(err, &exhausted) {
			t.Fatalf("error %T, want *ExhaustedError", err)
		}
		return exhausted.Attempts
	}

	first := run()
	second := run()
	if len(first) != len(second) {
		t.Fatalf("attempt counts differ: %v vs %v", first, second)
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("attempt[%d] differs: %s vs %s", i, first[i], second[i])
		}
	}
}

func TestDispatchDocumentFallbackInsertedFirst(t *testing.T) {
	stub := &stubCompleter{
		completeFn: func(_ context.Context, _ string, _ backend.CallConfig) (string, error) {
			return "", errors.New("down")
		},
		quickFn: func(_ context.Context, _ string) (string, error) {
			return "", errors.New("down")
		},
	}
	d := NewDispatcher(testRegistry(t), stub)

	_, err := d.Dispatch(context.Background(), "Draft a concise investment memo for the fund", nil)
	var exhausted *ExhaustedError
	if !errors.As(err, &exhausted) {
		t.Fatalf("error %T, want *ExhaustedError", err)
	}

	want := []string{strategyDocumentFallback, strategyFastMinimal, strategyBalancedMinimal, strategyQuickPath}
	if len(exhausted.Attempts) != len(want) {
		t.Fatalf("attempts = %v, want %v", exhausted.Attempts, want)
	}
	for i := range want {
		if exhausted.Attempts[i] != want[i] {
			t.Errorf("attempt[%d] = %s, want %s", i, exhausted.Attempts[i], want[i])
		}
	}
}

func TestDispatchAllStrategiesHangExhausts(t *testing.T) {
	stub := &stubCompleter{
		completeFn: hang,
		quickFn: func(ctx context.Context, _ string) (string, error) {
			<-ctx.Done()
			return "", ctx.Err()
		},
	}
	d := NewDispatcher(testRegistry(t), stub)

	outcome, err := d.Dispatch(context.Background(), "What is my current balance", nil)
	var exhausted *ExhaustedError
	if !errors.As(err, &exhausted) {
		t.Fatalf("error %T, want *ExhaustedError", err)
	}
	if outcome.Status != models.StatusExhausted {
		t.Errorf("status = %s, want %s", outcome.Status, models.StatusExhausted)
	}
	var timeout *TimeoutError
	if !errors.As(exhausted.LastErr, &timeout) {
		t.Errorf("last error %T, want *TimeoutError from the hanging quick path", exhausted.LastErr)
	}
}

func TestDispatchFallbackDisabled(t *testing.T) {
	stub := &stubCompleter{
		completeFn: func(_ context.Context, _ string, _ backend.CallConfig) (string, error) {
			return "", errors.New("boom")
		},
	}
	d := NewDispatcher(testRegistry(t), stub, WithFallbackDisabled())

	_, err := d.Dispatch(context.Background(), "What is my current balance", nil)
	var backendErr *BackendError
	if !errors.As(err, &backendErr) {
		t.Fatalf("error %T, want *BackendError surfaced directly", err)
	}
	if stub.quickCalls != 0 {
		t.Error("quick path invoked with fallback disabled")
	}
	if got := len(stub.recordedCalls()); got != 1 {
		t.Errorf("Complete called %d times, want 1", got)
	}
}

func TestDispatchOverrides(t *testing.T) {
	reg := testRegistry(t)

	t.Run("force tier and budget", func(t *testing.T) {
		stub := &stubCompleter{}
		d := NewDispatcher(reg, stub)
		tokens := 2222
		effort := models.ReasoningLow
		opts := &models.Overrides{
			ForceTier: models.TierCapable,
			Reasoning: &effort,
			MaxTokens: &tokens,
		}

		outcome, err := d.Dispatch(context.Background(), "What is my current balance", opts)
		if err != nil {
			t.Fatalf("Dispatch: %v", err)
		}
		calls := stub.recordedCalls()
		if len(calls) != 1 {
			t.Fatalf("Complete called %d times, want 1", len(calls))
		}
		if calls[0].Model != ModelOpus {
			t.Errorf("model = %s, want %s", calls[0].Model, ModelOpus)
		}
		if calls[0].MaxTokens != tokens {
			t.Errorf("max tokens = %d, want %d", calls[0].MaxTokens, tokens)
		}
		if calls[0].Reasoning != models.ReasoningLow {
			t.Errorf("reasoning = %s, want %s", calls[0].Reasoning, models.ReasoningLow)
		}
		// Overrides change the call, not the recorded classification.
		if outcome.ComplexityScore != 0 {
			t.Errorf("complexity score = %d, want the classified 0", outcome.ComplexityScore)
		}
	})

	t.Run("force document tier", func(t *testing.T) {
		stub := &stubCompleter{}
		d := NewDispatcher(reg, stub)

		outcome, err := d.Dispatch(context.Background(), "hello", &models.Overrides{ForceTier: models.TierDocument})
		if err != nil {
			t.Fatalf("Dispatch: %v", err)
		}
		if outcome.TierUsed != models.TierDocument {
			t.Errorf("tier used = %s, want %s", outcome.TierUsed, models.TierDocument)
		}
		calls := stub.recordedCalls()
		if len(calls) != 1 {
			t.Fatalf("Complete called %d times, want 1", len(calls))
		}
		if want := reg.Document(false).MaxTokens; calls[0].MaxTokens != want {
			t.Errorf("max tokens = %d, want the document budget %d", calls[0].MaxTokens, want)
		}
	})

	t.Run("invalid overrides rejected", func(t *testing.T) {
		d := NewDispatcher(reg, &stubCompleter{})
		badTokens := -5
		_, err := d.Dispatch(context.Background(), "hello", &models.Overrides{MaxTokens: &badTokens})
		var invalid *InvalidOverrideError
		if !errors.As(err, &invalid) {
			t.Fatalf("error %T, want *InvalidOverrideError", err)
		}

		_, err = d.Dispatch(context.Background(), "hello", &models.Overrides{ForceTier: "turbo"})
		if err == nil {
			t.Error("unknown forced tier accepted")
		}
	})
}

func TestDispatchContextCancellation(t *testing.T) {
	stub := &stubCompleter{completeFn: hang}
	d := NewDispatcher(testRegistry(t), stub)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := d.Dispatch(ctx, "What is my current balance", nil)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}
