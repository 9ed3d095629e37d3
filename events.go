package folio

import (
	"time"

	"github.com/vorojar/Folio-OCR/regions"
	"github.com/vorojar/Folio-OCR/search"
	"github.com/vorojar/Folio-OCR/session"
)

// BatchProgress is one progress update of a batch run.
type BatchProgress struct {
	Completed int
	Total     int
	PageNum   int
	Ratio     float64
	ETA       time.Duration
}

// Events are the callbacks exposed to the presentation layer. Any field
// may be nil; nil callbacks are skipped. Callbacks are invoked outside
// the controller's lock and must not call back into the controller
// synchronously from OnBatchProgress.
type Events struct {
	OnDocumentInitialized func(docID, filename string)
	OnPageAdded           func(pageNum int)
	OnPageStatusChanged   func(pageNum int, status session.Status)
	OnBatchProgress       func(p BatchProgress)
	OnSearchUpdated       func(u search.Update)
	OnRegionActivated     func(a regions.Activation)
	OnSaveFailed          func(pageNum int, err error)
	// OnModelLoading ticks with elapsed time while a model load is in
	// progress, for user feedback during the long first warm-up.
	OnModelLoading func(elapsed time.Duration)
}

func (e *Events) documentInitialized(docID, filename string) {
	if e.OnDocumentInitialized != nil {
		e.OnDocumentInitialized(docID, filename)
	}
}

func (e *Events) pageAdded(pageNum int) {
	if e.OnPageAdded != nil {
		e.OnPageAdded(pageNum)
	}
}

func (e *Events) pageStatusChanged(pageNum int, status session.Status) {
	if e.OnPageStatusChanged != nil {
		e.OnPageStatusChanged(pageNum, status)
	}
}

func (e *Events) batchProgress(p BatchProgress) {
	if e.OnBatchProgress != nil {
		e.OnBatchProgress(p)
	}
}

func (e *Events) searchUpdated(u search.Update) {
	if e.OnSearchUpdated != nil {
		e.OnSearchUpdated(u)
	}
}

func (e *Events) regionActivated(a regions.Activation) {
	if e.OnRegionActivated != nil {
		e.OnRegionActivated(a)
	}
}

func (e *Events) saveFailed(pageNum int, err error) {
	if e.OnSaveFailed != nil {
		e.OnSaveFailed(pageNum, err)
	}
}

func (e *Events) modelLoading(elapsed time.Duration) {
	if e.OnModelLoading != nil {
		e.OnModelLoading(elapsed)
	}
}
