// Package watch runs the drop-directory mode: prompt files placed in a
// watched directory are dispatched and answered in place.
package watch

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/halsteadcap/fundscribe/pkg/models"
)

const (
	promptSuffix = ".txt"
	answerSuffix = ".answer.md"
)

// Dispatcher is the slice of the dispatch API the watcher needs.
type Dispatcher interface {
	Dispatch(ctx context.Context, text string, opts *models.Overrides) (*models.Outcome, error)
}

// Watcher answers prompt files dropped into a directory. Each *.txt file is
// dispatched once and its response written next to it as *.answer.md.
type Watcher struct {
	dir        string
	dispatcher Dispatcher

	mu   sync.Mutex
	seen map[string]bool

	watcher *fsnotify.Watcher
	done    chan struct{}
}

// New creates a Watcher over the given directory, creating it if needed.
func New(dir string, d Dispatcher) (*Watcher, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(dir); err != nil {
		fsw.Close()
		return nil, err
	}

	return &Watcher{
		dir:        dir,
		dispatcher: d,
		seen:       make(map[string]bool),
		watcher:    fsw,
		done:       make(chan struct{}),
	}, nil
}

// Run processes existing prompt files, then blocks answering new ones until
// the context is cancelled or Close is called.
func (w *Watcher) Run(ctx context.Context) error {
	if err := w.scanExisting(ctx); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-w.done:
			return nil
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&fsnotify.Create != 0 || event.Op&fsnotify.Write != 0 {
				w.maybeAnswer(ctx, event.Name)
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			log.Printf("[watch] watcher error: %v", err)
		}
	}
}

// Close stops a running watcher.
func (w *Watcher) Close() {
	close(w.done)
	w.watcher.Close()
}

// scanExisting answers prompt files already present at startup.
func (w *Watcher) scanExisting(ctx context.Context) error {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		w.maybeAnswer(ctx, filepath.Join(w.dir, entry.Name()))
	}
	return nil
}

// maybeAnswer dispatches one prompt file if it has not been handled yet.
// A prompt is also skipped when its answer file already exists, so restarts
// do not re-spend tokens on answered prompts.
func (w *Watcher) maybeAnswer(ctx context.Context, path string) {
	if !strings.HasSuffix(path, promptSuffix) {
		return
	}

	w.mu.Lock()
	if w.seen[path] {
		w.mu.Unlock()
		return
	}
	w.seen[path] = true
	w.mu.Unlock()

	answerPath := strings.TrimSuffix(path, promptSuffix) + answerSuffix
	if _, err := os.Stat(answerPath); err == nil {
		return
	}

	text, err := os.ReadFile(path)
	if err != nil {
		log.Printf("[watch] read %s: %v", path, err)
		w.forget(path)
		return
	}
	prompt := strings.TrimSpace(string(text))
	if prompt == "" {
		// Created but not written yet; the Write event that follows retries.
		w.forget(path)
		return
	}

	log.Printf("[watch] answering %s", filepath.Base(path))
	outcome, err := w.dispatcher.Dispatch(ctx, prompt, &models.Overrides{})
	answer := ""
	switch {
	case err == nil:
		answer = outcome.Text
	case outcome != nil && outcome.Status == models.StatusExhausted:
		// Every execution path failed; leave a stub so the prompt is not
		// silently dropped.
		answer = "Analysis unavailable: " + err.Error()
	default:
		log.Printf("[watch] dispatch %s: %v", filepath.Base(path), err)
		return
	}

	if err := os.WriteFile(answerPath, []byte(answer+"\n"), 0644); err != nil {
		log.Printf("[watch] write %s: %v", answerPath, err)
	}
}

// forget unmarks a prompt so a later event can pick it up again.
func (w *Watcher) forget(path string) {
	w.mu.Lock()
	delete(w.seen, path)
	w.mu.Unlock()
}
