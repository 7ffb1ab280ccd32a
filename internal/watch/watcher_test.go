package watch

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/halsteadcap/fundscribe/internal/dispatch"
	"github.com/halsteadcap/fundscribe/pkg/models"
)

type stubDispatcher struct {
	mu      sync.Mutex
	prompts []string
}

func (s *stubDispatcher) Dispatch(ctx context.Context, text string, opts *models.Overrides) (*models.Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prompts = append(s.prompts, text)
	return &models.Outcome{Text: "answer: " + text, Status: models.StatusSuccess}, nil
}

func (s *stubDispatcher) recorded() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.prompts))
	copy(out, s.prompts)
	return out
}

func waitForFile(t *testing.T, path string) string {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if data, err := os.ReadFile(path); err == nil {
			return string(data)
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", path)
	return ""
}

func TestAnswersExistingPromptFiles(t *testing.T) {
	dir := t.TempDir()
	promptPath := filepath.Join(dir, "question.txt")
	if err := os.WriteFile(promptPath, []byte("What is the NAV?\n"), 0644); err != nil {
		t.Fatal(err)
	}

	d := &stubDispatcher{}
	w, err := New(dir, d)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	answer := waitForFile(t, filepath.Join(dir, "question.answer.md"))
	if answer != "answer: What is the NAV?\n" {
		t.Errorf("unexpected answer %q", answer)
	}
}

func TestAnswersDroppedPromptFiles(t *testing.T) {
	dir := t.TempDir()
	d := &stubDispatcher{}
	w, err := New(dir, d)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	if err := os.WriteFile(filepath.Join(dir, "memo.txt"), []byte("Draft a memo"), 0644); err != nil {
		t.Fatal(err)
	}

	waitForFile(t, filepath.Join(dir, "memo.answer.md"))
	prompts := d.recorded()
	if len(prompts) != 1 || prompts[0] != "Draft a memo" {
		t.Errorf("unexpected prompts %v", prompts)
	}
}

func TestAnswersPromptWrittenAfterCreate(t *testing.T) {
	dir := t.TempDir()
	d := &stubDispatcher{}
	w, err := New(dir, d)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	// An editor or slow copy creates the file empty and fills it in
	// afterwards. The empty read must not block the later write event.
	promptPath := filepath.Join(dir, "memo.txt")
	f, err := os.OpenFile(promptPath, os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		t.Fatal(err)
	}
	time.Sleep(200 * time.Millisecond)
	if _, err := f.WriteString("Draft a memo"); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}

	answer := waitForFile(t, filepath.Join(dir, "memo.answer.md"))
	if answer != "answer: Draft a memo\n" {
		t.Errorf("unexpected answer %q", answer)
	}
}

type exhaustedDispatcher struct{}

func (exhaustedDispatcher) Dispatch(ctx context.Context, text string, opts *models.Overrides) (*models.Outcome, error) {
	return &models.Outcome{Status: models.StatusExhausted},
		&dispatch.ExhaustedError{RequestID: "r1", Attempts: []string{"fast-minimal", "balanced-minimal", "quick-path"}}
}

func TestExhaustedDispatchWritesStub(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "question.txt"), []byte("Anything"), 0644); err != nil {
		t.Fatal(err)
	}

	w, err := New(dir, exhaustedDispatcher{})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	answer := waitForFile(t, filepath.Join(dir, "question.answer.md"))
	if !strings.Contains(answer, "Analysis unavailable") {
		t.Errorf("expected unavailable stub, got %q", answer)
	}
}

func TestSkipsAnsweredAndNonPromptFiles(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "done.txt"), []byte("already handled"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "done.answer.md"), []byte("old answer\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.md"), []byte("not a prompt"), 0644); err != nil {
		t.Fatal(err)
	}

	d := &stubDispatcher{}
	w, err := New(dir, d)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	time.Sleep(100 * time.Millisecond)
	if got := d.recorded(); len(got) != 0 {
		t.Errorf("dispatched %v, want nothing", got)
	}

	data, err := os.ReadFile(filepath.Join(dir, "done.answer.md"))
	if err != nil || string(data) != "old answer\n" {
		t.Errorf("existing answer was overwritten: %q, %v", data, err)
	}
}
