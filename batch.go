package folio

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/vorojar/Folio-OCR/backend"
	"github.com/vorojar/Folio-OCR/session"
)

// batchRun is the live state of one batch sweep.
type batchRun struct {
	cancel    context.CancelFunc
	cancelled bool
	completed int
	total     int
	elapsed   time.Duration
}

// RequestBatch runs a sequential OCR sweep over all pending pages of
// the active document, one page at a time to bound backend load. Pages
// that already have text are skipped. Progress updates carry a ratio
// and an estimated time remaining recomputed after each completion.
//
// Timeout and backend failures count the page as processed so the batch
// terminates; cancellation stops the loop outright and restores the
// interrupted page to pending.
func (c *Controller) RequestBatch(ctx context.Context) error {
	c.mu.Lock()
	if c.batch != nil {
		c.mu.Unlock()
		return ErrBatchRunning
	}
	doc := c.state.ActiveDocument()
	if doc == nil {
		c.mu.Unlock()
		return ErrNoActiveDocument
	}
	docID := doc.ID
	var todo []int
	for _, p := range doc.Pages {
		if !p.Recognized() {
			todo = append(todo, p.Num)
		}
	}
	if len(todo) == 0 {
		c.mu.Unlock()
		return nil
	}

	bctx, cancel := context.WithCancel(ctx)
	b := &batchRun{cancel: cancel, total: len(todo)}
	c.batch = b
	c.state.BatchActive = true
	c.state.CancelRequested = false
	gen := c.generation
	c.mu.Unlock()

	defer func() {
		cancel()
		c.mu.Lock()
		c.batch = nil
		c.state.BatchActive = false
		c.mu.Unlock()
	}()

	if err := c.ensureModel(bctx); err != nil {
		if errors.Is(err, backend.ErrCancelled) {
			return nil
		}
		return err
	}

	slog.Info("batch started", "doc_id", docID, "pages", len(todo))
	for _, num := range todo {
		c.mu.Lock()
		stopped := b.cancelled
		// A page recognized since the sweep was planned (manual request,
		// prefetch) is skipped, not re-submitted.
		already := false
		if d := c.state.Document(docID); d != nil {
			if p := d.Page(num); p != nil && p.Recognized() {
				already = true
			}
		}
		c.mu.Unlock()
		if stopped {
			slog.Info("batch cancelled", "doc_id", docID, "completed", b.completed, "total", b.total)
			return nil
		}

		if !already {
			start := time.Now()
			err := c.recognize(bctx, docID, num, gen, false)
			if errors.Is(err, backend.ErrCancelled) || bctx.Err() != nil {
				// The interrupted page was already restored to pending by the
				// completion handler; stop scheduling further pages.
				slog.Info("batch cancelled", "doc_id", docID, "completed", b.completed, "total", b.total)
				return nil
			}
			c.mu.Lock()
			b.elapsed += time.Since(start)
			c.mu.Unlock()
		}

		// Success, timeout, backend failure, and skipped pages all advance
		// the counters so the sweep terminates.
		c.mu.Lock()
		b.completed++
		prog := BatchProgress{
			Completed: b.completed,
			Total:     b.total,
			PageNum:   num,
			Ratio:     float64(b.completed) / float64(b.total),
			ETA:       batchETA(b.elapsed, b.completed, b.total),
		}
		c.mu.Unlock()
		c.events.batchProgress(prog)
	}
	slog.Info("batch complete", "doc_id", docID, "pages", len(todo))
	return nil
}

// batchETA estimates remaining time as the mean per-page elapsed times
// the number of pages left.
func batchETA(elapsed time.Duration, completed, total int) time.Duration {
	if completed <= 0 {
		return 0
	}
	per := elapsed / time.Duration(completed)
	return per * time.Duration(total-completed)
}

// CancelBatch stops a running batch: it flips the cancellation flag,
// aborts the in-flight call, and stops scheduling further pages.
// Already-completed pages are untouched. Idempotent; calling it with no
// batch running is a no-op.
func (c *Controller) CancelBatch() {
	c.mu.Lock()
	b := c.batch
	if b != nil {
		b.cancelled = true
		c.state.CancelRequested = true
	}
	c.mu.Unlock()

	if b != nil {
		b.cancel()
	}
}

// BatchActive reports whether a batch run is in progress.
func (c *Controller) BatchActive() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.batch != nil
}

// PageStatuses returns the status of every page of the active document
// in order, for list indicators.
func (c *Controller) PageStatuses() map[int]session.Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	doc := c.state.ActiveDocument()
	if doc == nil {
		return nil
	}
	out := make(map[int]session.Status, len(doc.Pages))
	for _, p := range doc.Pages {
		out[p.Num] = p.Status
	}
	return out
}
