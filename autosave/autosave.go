// Package autosave debounces page-text persistence: every edit arms a
// timer for a fixed quiet period, and any action that needs the
// authoritative current text force-flushes first so no edit is lost to
// the debounce window.
package autosave

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Persister receives the flushed text. A persist failure is non-fatal:
// the in-memory edit stays authoritative.
type Persister interface {
	SavePageText(ctx context.Context, docID string, pageNum int, text string) error
}

// PersisterFunc adapts a function to the Persister interface.
type PersisterFunc func(ctx context.Context, docID string, pageNum int, text string) error

// SavePageText calls fn.
func (fn PersisterFunc) SavePageText(ctx context.Context, docID string, pageNum int, text string) error {
	return fn(ctx, docID, pageNum, text)
}

// Multi fans a save out to several persisters. All of them are attempted;
// the first error is returned.
func Multi(ps ...Persister) Persister {
	return PersisterFunc(func(ctx context.Context, docID string, pageNum int, text string) error {
		var first error
		for _, p := range ps {
			if err := p.SavePageText(ctx, docID, pageNum, text); err != nil && first == nil {
				first = err
			}
		}
		return first
	})
}

// Scheduler owns the debounce timer for the active page's edits.
type Scheduler struct {
	persist Persister
	delay   time.Duration
	timeout time.Duration
	onFail  func(docID string, pageNum int, err error)

	mu      sync.Mutex
	timer   *time.Timer
	dirty   bool
	docID   string
	pageNum int
	text    string
}

// New creates a scheduler. onFail may be nil; failures are then only
// logged.
func New(p Persister, delay time.Duration, onFail func(docID string, pageNum int, err error)) *Scheduler {
	if delay <= 0 {
		delay = 800 * time.Millisecond
	}
	return &Scheduler{
		persist: p,
		delay:   delay,
		timeout: 10 * time.Second,
		onFail:  onFail,
	}
}

// Touch records an edit and (re)arms the debounce timer. A subsequent
// edit before the quiet period elapses cancels and reschedules.
func (s *Scheduler) Touch(docID string, pageNum int, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.dirty = true
	s.docID = docID
	s.pageNum = pageNum
	s.text = text

	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.delay, s.fire)
}

func (s *Scheduler) fire() {
	s.mu.Lock()
	if !s.dirty {
		s.mu.Unlock()
		return
	}
	docID, pageNum, text := s.docID, s.pageNum, s.text
	s.dirty = false
	s.timer = nil
	s.mu.Unlock()

	s.save(context.Background(), docID, pageNum, text)
}

// Flush cancels any pending timer and persists immediately if there are
// unflushed edits. Callers that read or switch away from the current
// text must call this first.
func (s *Scheduler) Flush(ctx context.Context) {
	s.mu.Lock()
	if !s.dirty {
		s.mu.Unlock()
		return
	}
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	docID, pageNum, text := s.docID, s.pageNum, s.text
	s.dirty = false
	s.mu.Unlock()

	s.save(ctx, docID, pageNum, text)
}

// Stop drops any pending save without persisting. Used on shutdown after
// a final Flush, and on document deletion.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.dirty = false
}

func (s *Scheduler) save(ctx context.Context, docID string, pageNum int, text string) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.persist.SavePageText(ctx, docID, pageNum, text); err != nil {
		slog.Warn("autosave failed", "doc_id", docID, "page", pageNum, "error", err)
		if s.onFail != nil {
			s.onFail(docID, pageNum, err)
		}
	}
}
