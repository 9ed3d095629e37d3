// Package regions projects stored layout-region geometry onto the
// rendered page image and manages the spatial/textual highlight pair.
// The mapper never mutates stored data; it produces derived presentation
// geometry only.
package regions

import "github.com/vorojar/Folio-OCR/session"

// DisplayBox is one region's bounding box in display coordinates.
type DisplayBox struct {
	Index  int     `json:"idx"`
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Label  string  `json:"label,omitempty"`
	Active bool    `json:"active,omitempty"`
}

// Activation tells the presentation layer what to do after a region
// highlight changed.
type Activation struct {
	Index     int
	PrevIndex int // -1 when nothing was active before
	// ScrollTo is the region index whose text block should be scrolled
	// into view.
	ScrollTo int
	// SwitchMode is non-empty when the view mode must change to reveal
	// the text panel while preserving the activation.
	SwitchMode session.ViewMode
}

// Mapper tracks the currently active bbox/text-block highlight pair.
type Mapper struct {
	active int
}

// NewMapper returns a mapper with no active region.
func NewMapper() *Mapper {
	return &Mapper{active: -1}
}

// Active returns the active region index, or -1.
func (m *Mapper) Active() int { return m.active }

// Reset clears the activation, e.g. when the active page changes.
func (m *Mapper) Reset() { m.active = -1 }

// Project maps a page's regions from source-image pixel space into
// display space using independent horizontal and vertical scale factors.
// It must be re-run whenever the rendered dimensions change, since
// natural and rendered sizes differ. Zero regions is a valid state and
// yields an empty slice.
func (m *Mapper) Project(regs []session.Region, naturalW, naturalH, renderedW, renderedH float64) []DisplayBox {
	if len(regs) == 0 || naturalW <= 0 || naturalH <= 0 {
		return nil
	}
	sx := renderedW / naturalW
	sy := renderedH / naturalH

	out := make([]DisplayBox, 0, len(regs))
	for _, r := range regs {
		out = append(out, DisplayBox{
			Index:  r.Index,
			Left:   r.BBox.Left * sx,
			Top:    r.BBox.Top * sy,
			Width:  r.BBox.Width() * sx,
			Height: r.BBox.Height() * sy,
			Label:  r.Label,
			Active: r.Index == m.active,
		})
	}
	return out
}

// Activate clears the previously active pair and marks idx active.
// Activation on an index the page does not have is a no-op. When the
// current view mode hides the text panel, the returned directive asks
// for a switch to edit mode with the activation preserved.
func (m *Mapper) Activate(page *session.Page, idx int, mode session.ViewMode) (Activation, bool) {
	if page == nil || page.Region(idx) == nil {
		return Activation{}, false
	}
	act := Activation{
		Index:     idx,
		PrevIndex: m.active,
		ScrollTo:  idx,
	}
	m.active = idx
	if mode == session.ModePreview {
		act.SwitchMode = session.ModeEdit
	}
	return act, true
}
