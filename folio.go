// Package folio is the session controller of the Folio OCR workbench.
// It tracks uploaded documents and their pages, drives recognition
// requests against the backend, and keeps recognized text, edits,
// layout regions, and search state mutually consistent across network
// latency, partial failure, and user cancellation.
package folio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/vorojar/Folio-OCR/autosave"
	"github.com/vorojar/Folio-OCR/backend"
	"github.com/vorojar/Folio-OCR/export"
	"github.com/vorojar/Folio-OCR/ingest"
	"github.com/vorojar/Folio-OCR/reflow"
	"github.com/vorojar/Folio-OCR/regions"
	"github.com/vorojar/Folio-OCR/render"
	"github.com/vorojar/Folio-OCR/search"
	"github.com/vorojar/Folio-OCR/session"
	"github.com/vorojar/Folio-OCR/store"
)

// Backend is the slice of the recognition backend the controller drives.
// *backend.Client satisfies it; tests substitute fakes.
type Backend interface {
	RecognizePage(ctx context.Context, docID string, pageNum int) (*backend.OCRResult, error)
	Status(ctx context.Context) (*backend.StatusInfo, error)
	LoadModel(ctx context.Context) error
	SavePageText(ctx context.Context, docID string, pageNum int, text string) error
	DeleteDocument(ctx context.Context, docID string) error
}

// Controller owns the session store and is the sole mutator of its
// OCR-derived fields. All state mutation happens under one lock; every
// network call and timer is a suspension point, so completion handlers
// re-validate their captured (docID, pageNum, generation) before
// touching presentation state. The underlying page entity is updated
// regardless — a stored-but-not-displayed result is harmless.
type Controller struct {
	cfg    Config
	be     Backend
	events Events
	saver  *autosave.Scheduler
	mirror *store.Store

	// flight deduplicates in-flight work: one key per (docID, pageNum)
	// recognition call, plus the coalesced model load.
	flight singleflight.Group

	mu          sync.Mutex
	state       *session.Store
	searchIdx   *search.Index
	mapper      *regions.Mapper
	generation  uint64
	prefetching bool
	modelReady  bool
	batch       *batchRun
}

// Option configures a Controller.
type Option func(*controllerOptions)

type controllerOptions struct {
	extraPersisters []autosave.Persister
	mirror          *store.Store
}

// WithPersister adds an extra autosave target alongside the backend
// text-save call.
func WithPersister(p autosave.Persister) Option {
	return func(o *controllerOptions) { o.extraPersisters = append(o.extraPersisters, p) }
}

// WithMirror attaches an already-open sqlite mirror. The mirror joins
// the autosave fan-out and tracks document/page lifecycle.
func WithMirror(m *store.Store) Option {
	return func(o *controllerOptions) { o.mirror = m }
}

// New creates a controller over an existing backend client.
func New(cfg Config, be Backend, events Events, opts ...Option) (*Controller, error) {
	var o controllerOptions
	for _, fn := range opts {
		fn(&o)
	}
	if o.mirror == nil && cfg.MirrorPath != "" {
		m, err := store.Open(cfg.MirrorPath)
		if err != nil {
			return nil, fmt.Errorf("opening mirror: %w", err)
		}
		o.mirror = m
	}

	c := &Controller{
		cfg:       cfg,
		be:        be,
		events:    events,
		mirror:    o.mirror,
		state:     session.NewStore(),
		searchIdx: search.New(),
		mapper:    regions.NewMapper(),
	}

	persisters := []autosave.Persister{autosave.PersisterFunc(be.SavePageText)}
	if o.mirror != nil {
		persisters = append(persisters, o.mirror)
	}
	persisters = append(persisters, o.extraPersisters...)
	c.saver = autosave.New(autosave.Multi(persisters...), cfg.autosaveDelay(),
		func(docID string, pageNum int, err error) {
			c.events.saveFailed(pageNum, err)
		})
	return c, nil
}

// Connect builds the production controller: HTTP backend client plus
// optional sqlite mirror per config.
func Connect(cfg Config, events Events, opts ...Option) (*Controller, error) {
	return New(cfg, backend.New(cfg.backendConfig()), events, opts...)
}

// Close flushes pending edits and releases resources. A running batch
// is cancelled first, like any other explicit stop action.
func (c *Controller) Close() error {
	c.CancelBatch()
	c.saver.Flush(context.Background())
	c.saver.Stop()
	if c.mirror != nil {
		return c.mirror.Close()
	}
	return nil
}

// ---------------------------------------------------------------------------
// Upload / ingest
// ---------------------------------------------------------------------------

// Open consumes a framed upload stream. On init every document-scoped
// session state is reset before any page event is processed; pages are
// appended in receipt order and the first received page is
// auto-selected. Starting a new upload cancels any running batch before
// anything else.
func (c *Controller) Open(ctx context.Context, stream io.Reader) error {
	c.CancelBatch()
	c.saver.Flush(ctx)

	p := ingest.NewParser(stream)
	sawInit := false
	for {
		ev, err := p.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("reading upload stream: %w", err)
		}

		switch ev.Type {
		case ingest.EventInit:
			sawInit = true
			c.mu.Lock()
			c.generation++
			c.state.ResetDocument(ev.DocID, ev.Filename)
			c.mapper.Reset()
			c.searchIdx.Clear()
			c.mu.Unlock()
			if c.mirror != nil {
				if err := c.mirror.UpsertDocument(ctx, ev.DocID, ev.Filename); err != nil {
					slog.Warn("mirror: document upsert failed", "doc_id", ev.DocID, "error", err)
				}
			}
			c.events.documentInitialized(ev.DocID, ev.Filename)

		case ingest.EventPage:
			if !sawInit {
				continue // page frame before init: nothing to attach it to
			}
			c.addPage(ctx, ev.Page)

		case ingest.EventDone:
			slog.Info("upload stream complete", "pages", ev.PageCount, "skipped_frames", p.Skipped())
		}
	}

	if c.cfg.AutoRecognize {
		c.mu.Lock()
		num := c.state.ActivePage
		c.mu.Unlock()
		if num > 0 {
			if err := c.RequestPage(ctx, num); err != nil {
				slog.Warn("initial recognition failed", "page", num, "error", err)
			}
		}
	}
	return nil
}

func (c *Controller) addPage(ctx context.Context, pd ingest.PageData) {
	c.mu.Lock()
	doc := c.state.ActiveDocument()
	if doc == nil {
		c.mu.Unlock()
		return
	}
	page := &session.Page{
		Num:      pd.Num,
		ImageRef: pd.ImageURL,
		Status:   session.StatusPending,
	}
	// The backend replays already-recognized pages when re-opening a
	// stored document.
	if pd.Text != nil {
		var d time.Duration
		if pd.TimeSec != nil {
			d = time.Duration(*pd.TimeSec * float64(time.Second))
		}
		page.SetResult(*pd.Text, nil, d)
	}
	doc.AppendPage(page)
	if len(doc.Pages) == 1 {
		c.state.ActivePage = page.Num
	}
	docID := doc.ID
	mp := mirrorPage(docID, page)
	c.mu.Unlock()

	if c.mirror != nil {
		if err := c.mirror.UpsertPage(ctx, mp); err != nil {
			slog.Warn("mirror: page upsert failed", "doc_id", docID, "page", page.Num, "error", err)
		}
	}
	c.events.pageAdded(page.Num)
}

// ---------------------------------------------------------------------------
// Single-page recognition
// ---------------------------------------------------------------------------

// RequestPage recognizes one page of the active document. A page that
// already carries recognized text returns immediately without a network
// call. On success the immediate next pending page is prefetched in the
// background, provided no batch is running.
func (c *Controller) RequestPage(ctx context.Context, pageNum int) error {
	c.mu.Lock()
	doc := c.state.ActiveDocument()
	if doc == nil {
		c.mu.Unlock()
		return ErrNoActiveDocument
	}
	page := doc.Page(pageNum)
	if page == nil {
		c.mu.Unlock()
		return ErrPageNotFound
	}
	if page.Recognized() {
		c.mu.Unlock()
		return nil // cache hit
	}
	docID := doc.ID
	gen := c.generation
	c.mu.Unlock()

	if err := c.recognize(ctx, docID, pageNum, gen, false); err != nil {
		return err
	}
	c.maybePrefetch(docID, pageNum)
	return nil
}

// recognize runs one recognition call and applies the completion. The
// call is deduplicated per (docID, pageNum): a prefetch superseded by a
// direct selection is awaited rather than duplicated, and the first
// result to arrive wins. speculative failures revert the page to
// pending instead of error, keeping an unobstructed retry path.
func (c *Controller) recognize(ctx context.Context, docID string, pageNum int, gen uint64, speculative bool) error {
	if err := c.ensureModel(ctx); err != nil {
		return err
	}

	c.setStatus(docID, pageNum, session.StatusRunning)

	key := docID + "/" + strconv.Itoa(pageNum)
	start := time.Now()
	v, err, shared := c.flight.Do(key, func() (any, error) {
		return c.be.RecognizePage(ctx, docID, pageNum)
	})
	if shared {
		slog.Debug("recognition call shared", "doc_id", docID, "page", pageNum)
	}

	c.mu.Lock()
	doc := c.state.Document(docID)
	if doc == nil {
		// Document deleted while the call was in flight.
		c.mu.Unlock()
		return nil
	}
	page := doc.Page(pageNum)
	if page == nil {
		c.mu.Unlock()
		return nil
	}
	// Stale completion: the session moved on since the call was issued.
	// The page entity is still updated below; only presentation state is
	// left alone.
	current := gen == c.generation &&
		c.state.ActiveDocID == docID &&
		c.state.ActivePage == pageNum

	var status session.Status
	switch {
	case err == nil:
		res := v.(*backend.OCRResult)
		d := time.Duration(res.TimeSec * float64(time.Second))
		if d <= 0 {
			d = time.Since(start)
		}
		page.SetResult(stripFences(res.Text), convertRegions(res.Regions), d)
		status = session.StatusDone
		if current {
			c.mapper.Reset()
		}
	case errors.Is(err, backend.ErrCancelled):
		// Silent: no definitive result was obtained, so the page goes
		// back to pending and stays retryable.
		page.Status = session.StatusPending
		status = session.StatusPending
	case speculative:
		// Prefetch failure is not user-attributable; pending, not error.
		page.Status = session.StatusPending
		status = session.StatusPending
	case errors.Is(err, backend.ErrTimeout):
		page.Status = session.StatusTimeout
		status = session.StatusTimeout
	default:
		page.Status = session.StatusError
		status = session.StatusError
	}
	var mp store.Page
	if status == session.StatusDone {
		mp = mirrorPage(docID, page)
	}
	c.mu.Unlock()

	if c.mirror != nil && status == session.StatusDone {
		mctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if merr := c.mirror.UpsertPage(mctx, mp); merr != nil {
			slog.Warn("mirror: page upsert failed", "doc_id", docID, "page", pageNum, "error", merr)
		}
		cancel()
	}

	c.events.pageStatusChanged(pageNum, status)
	if current && status == session.StatusDone {
		c.refreshSearch()
	}

	switch {
	case err == nil:
		return nil
	case errors.Is(err, backend.ErrCancelled):
		return err
	default:
		slog.Warn("recognition failed", "doc_id", docID, "page", pageNum, "error", err)
		return err
	}
}

func (c *Controller) setStatus(docID string, pageNum int, s session.Status) {
	c.mu.Lock()
	doc := c.state.Document(docID)
	if doc == nil {
		c.mu.Unlock()
		return
	}
	page := doc.Page(pageNum)
	if page == nil || page.Status == s {
		c.mu.Unlock()
		return
	}
	page.Status = s
	c.mu.Unlock()
	c.events.pageStatusChanged(pageNum, s)
}

// maybePrefetch issues one background recognition for the page after
// justDone. At most one speculative call is in flight session-wide and
// never concurrently with a batch run.
func (c *Controller) maybePrefetch(docID string, justDone int) {
	if !c.cfg.Prefetch {
		return
	}
	c.mu.Lock()
	doc := c.state.Document(docID)
	if doc == nil || c.batch != nil || c.prefetching {
		c.mu.Unlock()
		return
	}
	next := doc.NextPending(justDone)
	if next == nil {
		c.mu.Unlock()
		return
	}
	c.prefetching = true
	num := next.Num
	gen := c.generation
	c.mu.Unlock()

	go func() {
		defer func() {
			c.mu.Lock()
			c.prefetching = false
			c.mu.Unlock()
		}()
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		if err := c.recognize(ctx, docID, num, gen, true); err != nil {
			slog.Debug("prefetch failed", "doc_id", docID, "page", num, "error", err)
		}
	}()
}

// ensureModel brings the recognition model up before any OCR call.
// Concurrent callers coalesce onto one load; while loading, an
// elapsed-time tick feeds the presentation layer.
func (c *Controller) ensureModel(ctx context.Context) error {
	c.mu.Lock()
	ready := c.modelReady
	c.mu.Unlock()
	if ready {
		return nil
	}

	_, err, _ := c.flight.Do("model-load", func() (any, error) {
		st, err := c.be.Status(ctx)
		if err == nil && st.ModelLoaded {
			c.mu.Lock()
			c.modelReady = true
			c.mu.Unlock()
			return nil, nil
		}

		start := time.Now()
		done := make(chan struct{})
		go func() {
			t := time.NewTicker(time.Second)
			defer t.Stop()
			for {
				select {
				case <-done:
					return
				case <-t.C:
					c.events.modelLoading(time.Since(start))
				}
			}
		}()
		defer close(done)

		if err := c.be.LoadModel(ctx); err != nil {
			if errors.Is(err, backend.ErrCancelled) || errors.Is(err, backend.ErrTimeout) {
				return nil, err
			}
			return nil, fmt.Errorf("%w: %v", ErrModelNotReady, err)
		}
		slog.Info("recognition model loaded", "elapsed", time.Since(start).Round(time.Millisecond))
		c.mu.Lock()
		c.modelReady = true
		c.mu.Unlock()
		return nil, nil
	})
	return err
}

// ---------------------------------------------------------------------------
// Navigation and editing
// ---------------------------------------------------------------------------

// SelectPage makes pageNum the active page. The current editor content
// is flushed first so no edit is lost to the debounce window. When auto
// recognition is on and the page has no text yet, recognition is issued
// (sharing any in-flight prefetch call for the same page).
func (c *Controller) SelectPage(ctx context.Context, pageNum int) error {
	c.saver.Flush(ctx)

	c.mu.Lock()
	doc := c.state.ActiveDocument()
	if doc == nil {
		c.mu.Unlock()
		return ErrNoActiveDocument
	}
	page := doc.Page(pageNum)
	if page == nil {
		c.mu.Unlock()
		return ErrPageNotFound
	}
	c.state.ActivePage = pageNum
	c.mapper.Reset()
	needOCR := c.cfg.AutoRecognize && !page.Recognized()
	c.mu.Unlock()

	if needOCR {
		return c.RequestPage(ctx, pageNum)
	}
	return nil
}

// UpdateActiveText applies an editor change to the active page and
// schedules the debounced save. The session entity is written through
// immediately; only persistence is deferred.
func (c *Controller) UpdateActiveText(text string) error {
	c.mu.Lock()
	page := c.state.ActivePageEntity()
	if page == nil {
		c.mu.Unlock()
		return ErrNoActiveDocument
	}
	if !page.Recognized() {
		c.mu.Unlock()
		return ErrNotRecognized
	}
	page.SetText(text)
	docID := c.state.ActiveDocID
	num := page.Num
	c.mu.Unlock()

	c.saver.Touch(docID, num, text)
	return nil
}

// ActiveText returns the authoritative current text of the active page,
// flushing pending edits first.
func (c *Controller) ActiveText(ctx context.Context) (string, error) {
	c.saver.Flush(ctx)
	c.mu.Lock()
	defer c.mu.Unlock()
	page := c.state.ActivePageEntity()
	if page == nil {
		return "", ErrNoActiveDocument
	}
	if !page.Recognized() {
		return "", ErrNotRecognized
	}
	return *page.Text, nil
}

// ReflowActive reflows the active page's text in place and schedules a
// save for the result.
func (c *Controller) ReflowActive(ctx context.Context) (string, error) {
	text, err := c.ActiveText(ctx)
	if err != nil {
		return "", err
	}
	flowed := reflow.Reflow(text)

	c.mu.Lock()
	page := c.state.ActivePageEntity()
	if page == nil {
		c.mu.Unlock()
		return "", ErrNoActiveDocument
	}
	page.SetText(flowed)
	docID := c.state.ActiveDocID
	num := page.Num
	c.mu.Unlock()

	if flowed != text {
		c.saver.Touch(docID, num, flowed)
	}
	return flowed, nil
}

// RenderActive renders the active page's text to display markup, with
// search hits highlighted when a query is active.
func (c *Controller) RenderActive(ctx context.Context) (string, error) {
	text, err := c.ActiveText(ctx)
	if err != nil {
		return "", err
	}
	markup, err := render.Markdown(text)
	if err != nil {
		return "", fmt.Errorf("rendering page: %w", err)
	}
	c.mu.Lock()
	query := c.searchIdx.Query()
	c.mu.Unlock()
	if query != "" {
		markup = search.Highlight(markup, query)
	}
	return markup, nil
}

// SetViewMode switches between the edit and preview panels.
func (c *Controller) SetViewMode(mode session.ViewMode) {
	c.mu.Lock()
	c.state.ViewMode = mode
	c.mu.Unlock()
}

// SetOverlay toggles the layout-overlay flag.
func (c *Controller) SetOverlay(enabled bool) {
	c.mu.Lock()
	c.state.OverlayEnabled = enabled
	c.mu.Unlock()
}

// ---------------------------------------------------------------------------
// Search
// ---------------------------------------------------------------------------

// Search rebuilds the match set for query over the active document's
// recognized pages. Pending edits are flushed first so the scan sees
// the current text. A fresh non-empty query jumps to the first matching
// page unless the active page already matches.
func (c *Controller) Search(ctx context.Context, query string) search.Update {
	c.saver.Flush(ctx)

	c.mu.Lock()
	doc := c.state.ActiveDocument()
	var pages []search.PageText
	if doc != nil {
		for _, p := range doc.Pages {
			if p.Recognized() {
				pages = append(pages, search.PageText{Num: p.Num, Text: *p.Text})
			}
		}
	}
	up := c.searchIdx.Rebuild(query, pages, c.state.ActivePage)
	if up.JumpTo != 0 {
		c.state.ActivePage = up.JumpTo
		c.mapper.Reset()
	}
	c.mu.Unlock()

	c.events.searchUpdated(up)
	return up
}

// NavigateSearch advances through the match list cyclically and moves
// the session to the corresponding page.
func (c *Controller) NavigateSearch(ctx context.Context, dir int) (int, bool) {
	c.mu.Lock()
	num, ok := c.searchIdx.Navigate(dir)
	c.mu.Unlock()
	if !ok {
		return 0, false
	}
	if err := c.SelectPage(ctx, num); err != nil {
		// Keep cursor and session in step: undo the advance.
		step := 1
		if dir < 0 {
			step = -1
		}
		c.mu.Lock()
		c.searchIdx.Navigate(-step)
		c.mu.Unlock()
		return 0, false
	}
	return num, true
}

// ClearSearch drops the query and removes all highlight markup and
// per-page indicators. Whether the query input stays open is the
// caller's choice, passed through the update.
func (c *Controller) ClearSearch(opts ...search.ClearOption) {
	c.mu.Lock()
	up := c.searchIdx.Clear(opts...)
	c.mu.Unlock()
	c.events.searchUpdated(up)
}

// refreshSearch re-runs the active query after recognized text changed.
func (c *Controller) refreshSearch() {
	c.mu.Lock()
	query := c.searchIdx.Query()
	c.mu.Unlock()
	if query == "" {
		return
	}
	c.Search(context.Background(), query)
}

// ---------------------------------------------------------------------------
// Regions
// ---------------------------------------------------------------------------

// ProjectRegions maps the active page's regions into display space for
// the given natural and rendered image dimensions. Must be re-run when
// the rendered dimensions change.
func (c *Controller) ProjectRegions(naturalW, naturalH, renderedW, renderedH float64) []regions.DisplayBox {
	c.mu.Lock()
	defer c.mu.Unlock()
	page := c.state.ActivePageEntity()
	if page == nil {
		return nil
	}
	return c.mapper.Project(page.Regions, naturalW, naturalH, renderedW, renderedH)
}

// ActivateRegion activates the bbox/text-block highlight pair for idx
// on the active page. Unknown indices are a no-op. When the text panel
// is hidden the view mode switches to reveal it, preserving the
// activation.
func (c *Controller) ActivateRegion(idx int) bool {
	c.mu.Lock()
	page := c.state.ActivePageEntity()
	act, ok := c.mapper.Activate(page, idx, c.state.ViewMode)
	if ok && act.SwitchMode != "" {
		c.state.ViewMode = act.SwitchMode
	}
	c.mu.Unlock()

	if ok {
		c.events.regionActivated(act)
	}
	return ok
}

// ---------------------------------------------------------------------------
// Documents
// ---------------------------------------------------------------------------

// Documents returns the session's documents in creation order.
func (c *Controller) Documents() []*session.Document {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Documents()
}

// ActiveDocument returns the active document, or nil.
func (c *Controller) ActiveDocument() *session.Document {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.ActiveDocument()
}

// ActivePage returns the active page number, 0 when none.
func (c *Controller) ActivePage() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.ActivePage
}

// DeleteDocument removes a document from the backend and the session.
// Deleting the active document cancels a running batch and drops any
// pending edits first.
func (c *Controller) DeleteDocument(ctx context.Context, docID string) error {
	c.mu.Lock()
	if c.state.Document(docID) == nil {
		c.mu.Unlock()
		return ErrDocumentNotFound
	}
	isActive := c.state.ActiveDocID == docID
	c.mu.Unlock()

	if isActive {
		c.CancelBatch()
		c.saver.Stop()
	}

	if err := c.be.DeleteDocument(ctx, docID); err != nil {
		return fmt.Errorf("deleting document: %w", err)
	}

	c.mu.Lock()
	c.state.Delete(docID)
	if isActive {
		c.generation++
		c.mapper.Reset()
		c.searchIdx.Clear()
	}
	c.mu.Unlock()

	if c.mirror != nil {
		if err := c.mirror.DeleteDocument(ctx, docID); err != nil {
			slog.Warn("mirror: delete failed", "doc_id", docID, "error", err)
		}
	}
	return nil
}

// ---------------------------------------------------------------------------
// Export
// ---------------------------------------------------------------------------

// ExportMarkdown returns the active document as a markdown bundle.
// Pending edits are flushed before reading.
func (c *Controller) ExportMarkdown(ctx context.Context, opts ...export.Option) ([]byte, error) {
	doc, err := c.exportTarget(ctx)
	if err != nil {
		return nil, err
	}
	return export.Markdown(doc, opts...), nil
}

// ExportWorkbook writes the active document as an xlsx workbook.
func (c *Controller) ExportWorkbook(ctx context.Context, path string, opts ...export.Option) error {
	doc, err := c.exportTarget(ctx)
	if err != nil {
		return err
	}
	return export.Workbook(doc, path, opts...)
}

func (c *Controller) exportTarget(ctx context.Context) (*session.Document, error) {
	c.saver.Flush(ctx)
	c.mu.Lock()
	doc := c.state.ActiveDocument()
	c.mu.Unlock()
	if doc == nil {
		return nil, ErrNoActiveDocument
	}
	return doc, nil
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

// The recognition model wraps output in ```markdown fences; strip them
// before storing the text.
var (
	fenceOpenRe  = regexp.MustCompile("^```[A-Za-z0-9]*\n?")
	fenceCloseRe = regexp.MustCompile("\n?```$")
)

func stripFences(s string) string {
	s = strings.TrimSpace(s)
	s = fenceOpenRe.ReplaceAllString(s, "")
	s = strings.TrimSpace(s)
	s = fenceCloseRe.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

func convertRegions(in []backend.RegionData) []session.Region {
	if len(in) == 0 {
		return nil
	}
	out := make([]session.Region, len(in))
	for i, r := range in {
		out[i] = session.Region{
			Index: r.Index,
			BBox: session.BBox{
				Left:   r.BBox[0],
				Top:    r.BBox[1],
				Right:  r.BBox[2],
				Bottom: r.BBox[3],
			},
			Text:  r.Text,
			Label: r.Label,
		}
	}
	return out
}

func mirrorPage(docID string, p *session.Page) store.Page {
	mp := store.Page{
		DocID:      docID,
		Num:        p.Num,
		ImageRef:   p.ImageRef,
		DurationMS: p.Duration.Milliseconds(),
		Status:     string(p.Status),
	}
	if p.Text != nil {
		t := *p.Text
		mp.Text = &t
	}
	return mp
}
