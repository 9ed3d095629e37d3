// Package search implements the workbench's full-text search: a result
// set rebuilt from scratch on every query by case-insensitive substring
// scanning of every page's current recognized text, plus markup-safe
// highlight injection into already-rendered display markup.
package search

import (
	"strings"

	"github.com/vorojar/Folio-OCR/session"
)

// PageText is one page's scannable content.
type PageText struct {
	Num  int
	Text string
}

// Update describes the outcome of a query rebuild for the presentation
// layer.
type Update struct {
	Query   string
	Matches []session.SearchMatch
	Total   int
	// JumpTo is the page the session should navigate to, or 0 when the
	// active page already matches (highlighting refreshes in place).
	JumpTo int
	// Cleared is set when the query was emptied and all highlight markup
	// and per-page indicators must be removed.
	Cleared bool
	// KeepOpen mirrors the caller-supplied option on Clear: whether the
	// query input stays focused. Not an index-intrinsic behavior.
	KeepOpen bool
}

// ClearOption configures Clear behavior.
type ClearOption func(*clearOptions)

type clearOptions struct {
	keepOpen bool
}

// WithKeepOpen keeps the query input focused/open after clearing.
func WithKeepOpen() ClearOption {
	return func(o *clearOptions) { o.keepOpen = true }
}

// Index holds the match set for the active query. There is no
// incremental maintenance: Rebuild rescans everything.
type Index struct {
	query   string
	matches []session.SearchMatch
	total   int
	pos     int
}

// New returns an empty index.
func New() *Index {
	return &Index{pos: -1}
}

// Query returns the active query, empty when cleared.
func (ix *Index) Query() string { return ix.query }

// Matches returns the current ordered result set.
func (ix *Index) Matches() []session.SearchMatch { return ix.matches }

// Total returns the total hit count across all pages.
func (ix *Index) Total() int { return ix.total }

// Rebuild scans pages in document order and replaces the result set.
// activePage decides whether the session stays put or jumps to the
// first match.
func (ix *Index) Rebuild(query string, pages []PageText, activePage int) Update {
	if query == "" {
		return ix.Clear()
	}

	ix.query = query
	// Fresh slice each rebuild: the previous one was handed out in an
	// Update and a listener may still hold it.
	ix.matches = nil
	ix.total = 0
	ix.pos = -1

	for _, pg := range pages {
		n := Count(pg.Text, query)
		if n == 0 {
			continue
		}
		ix.matches = append(ix.matches, session.SearchMatch{PageNum: pg.Num, Count: n})
		ix.total += n
	}

	up := Update{Query: query, Matches: ix.matches, Total: ix.total}
	if len(ix.matches) == 0 {
		return up
	}

	for i, m := range ix.matches {
		if m.PageNum == activePage {
			ix.pos = i
			return up // active page matches: refresh in place
		}
	}
	ix.pos = 0
	up.JumpTo = ix.matches[0].PageNum
	return up
}

// Navigate cyclically advances through the match list, wrapping past
// both ends. dir > 0 moves forward, dir < 0 backward. Returns the page
// to show and false when there are no matches.
func (ix *Index) Navigate(dir int) (int, bool) {
	if len(ix.matches) == 0 {
		return 0, false
	}
	step := 1
	if dir < 0 {
		step = -1
	}
	ix.pos = (ix.pos + step + len(ix.matches)) % len(ix.matches)
	return ix.matches[ix.pos].PageNum, true
}

// Clear drops the query and result set.
func (ix *Index) Clear(opts ...ClearOption) Update {
	var o clearOptions
	for _, fn := range opts {
		fn(&o)
	}
	ix.query = ""
	ix.matches = nil
	ix.total = 0
	ix.pos = -1
	return Update{Cleared: true, KeepOpen: o.keepOpen}
}

// Count returns the case-insensitive non-overlapping occurrence count
// of query in text.
func Count(text, query string) int {
	if query == "" {
		return 0
	}
	lt := strings.ToLower(text)
	lq := strings.ToLower(query)
	n := 0
	for {
		i := strings.Index(lt, lq)
		if i < 0 {
			return n
		}
		n++
		lt = lt[i+len(lq):]
	}
}
