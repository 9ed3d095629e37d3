// Package session holds the in-memory state of one workbench session:
// the uploaded documents with their pages and layout regions, plus the
// session pointers (active document, active page, view mode).
//
// The store is a plain container with no internal locking. The controller
// in the root package is its sole synchronized owner; every mutation
// happens inside one of the controller's handler turns.
package session

import "time"

// Status is the OCR lifecycle state of a single page.
type Status string

const (
	StatusPending Status = "pending"
	StatusRunning Status = "running"
	StatusDone    Status = "done"
	StatusError   Status = "error"
	StatusTimeout Status = "timeout"
)

// ViewMode selects which panel of the workbench is visible.
type ViewMode string

const (
	ModeEdit    ViewMode = "edit"
	ModePreview ViewMode = "preview"
)

// BBox is a rectangle in the source image's native pixel space.
type BBox struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
}

// Width returns the horizontal extent of the box.
func (b BBox) Width() float64 { return b.Right - b.Left }

// Height returns the vertical extent of the box.
func (b BBox) Height() float64 { return b.Bottom - b.Top }

// Region is one spatially-bounded text block discovered by layout
// analysis within a page. Index is unique within its page and stable
// across re-renders.
type Region struct {
	Index int    `json:"idx"`
	BBox  BBox   `json:"bbox"`
	Text  string `json:"text"`
	Label string `json:"label,omitempty"`
}

// Page is one recognizable unit within a document. Text is nil until
// the first successful OCR; an empty non-nil string is a valid result
// for a blank page.
type Page struct {
	Num      int
	ImageRef string
	Text     *string
	Regions  []Region
	Duration time.Duration
	Status   Status
}

// SetResult stores a successful OCR result and moves the page to done.
func (p *Page) SetResult(text string, regions []Region, d time.Duration) {
	p.Text = &text
	p.Regions = regions
	p.Duration = d
	p.Status = StatusDone
}

// SetText replaces the recognized text in place, keeping the page done.
// Used by the edit path; has no effect on a page that was never recognized.
func (p *Page) SetText(text string) {
	if p.Text == nil {
		return
	}
	p.Text = &text
}

// Recognized reports whether the page carries recognized text.
func (p *Page) Recognized() bool { return p.Text != nil }

// Region returns the region with the given index, or nil.
func (p *Page) Region(idx int) *Region {
	for i := range p.Regions {
		if p.Regions[i].Index == idx {
			return &p.Regions[i]
		}
	}
	return nil
}

// Document is one uploaded unit of work containing an ordered set of
// pages. Page numbers are 1-based and match discovery order.
type Document struct {
	ID        string
	Filename  string
	Pages     []*Page
	CreatedAt time.Time
}

// Page returns the page with the given number, or nil.
func (d *Document) Page(num int) *Page {
	for _, p := range d.Pages {
		if p.Num == num {
			return p
		}
	}
	return nil
}

// AppendPage adds a page in receipt order.
func (d *Document) AppendPage(p *Page) {
	if p.Status == "" {
		p.Status = StatusPending
	}
	d.Pages = append(d.Pages, p)
}

// NextPending returns the first page after num that has not been
// recognized yet, or nil. Only the immediately following page is
// considered; prefetch never skips ahead.
func (d *Document) NextPending(num int) *Page {
	p := d.Page(num + 1)
	if p != nil && p.Status == StatusPending {
		return p
	}
	return nil
}

// SearchMatch is one page's hit count for the active search query.
type SearchMatch struct {
	PageNum int `json:"page_num"`
	Count   int `json:"count"`
}

// Store is the session store: all documents plus the session pointers.
type Store struct {
	docs  map[string]*Document
	order []string

	ActiveDocID     string
	ActivePage      int
	ViewMode        ViewMode
	OverlayEnabled  bool
	BatchActive     bool
	CancelRequested bool
}

// NewStore returns an empty store in edit mode.
func NewStore() *Store {
	return &Store{
		docs:     make(map[string]*Document),
		ViewMode: ModeEdit,
	}
}

// ResetDocument creates a fresh document and makes it active, clearing
// every document-scoped session pointer. Called on a stream init event
// before any page event is processed.
func (s *Store) ResetDocument(docID, filename string) *Document {
	doc := &Document{
		ID:        docID,
		Filename:  filename,
		CreatedAt: time.Now(),
	}
	if _, exists := s.docs[docID]; !exists {
		s.order = append(s.order, docID)
	}
	s.docs[docID] = doc
	s.ActiveDocID = docID
	s.ActivePage = 0
	s.CancelRequested = false
	s.BatchActive = false
	return doc
}

// Document returns the document with the given id, or nil.
func (s *Store) Document(id string) *Document {
	return s.docs[id]
}

// ActiveDocument returns the currently active document, or nil.
func (s *Store) ActiveDocument() *Document {
	if s.ActiveDocID == "" {
		return nil
	}
	return s.docs[s.ActiveDocID]
}

// ActivePageEntity returns the active page of the active document, or nil.
func (s *Store) ActivePageEntity() *Page {
	doc := s.ActiveDocument()
	if doc == nil || s.ActivePage == 0 {
		return nil
	}
	return doc.Page(s.ActivePage)
}

// Documents returns all documents in creation order.
func (s *Store) Documents() []*Document {
	out := make([]*Document, 0, len(s.order))
	for _, id := range s.order {
		if d, ok := s.docs[id]; ok {
			out = append(out, d)
		}
	}
	return out
}

// Delete removes a document. Pages are never deleted individually,
// only as part of their document. If the deleted document was active,
// the session pointers are cleared.
func (s *Store) Delete(id string) bool {
	if _, ok := s.docs[id]; !ok {
		return false
	}
	delete(s.docs, id)
	for i, d := range s.order {
		if d == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	if s.ActiveDocID == id {
		s.ActiveDocID = ""
		s.ActivePage = 0
	}
	return true
}
