// Package ingest turns the backend's framed upload stream into discrete
// typed events. Frames arrive SSE-style: a "data: {json}" payload line
// terminated by a blank line, with a "type" field discriminating the
// event. Chunk boundaries from the network do not align with frame
// boundaries, so the parser keeps a carry-over buffer between reads.
package ingest

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
)

// EventType discriminates the closed set of stream events.
type EventType int

const (
	// EventInit announces a new document. All document-scoped session
	// state must be reset before any page event is processed.
	EventInit EventType = iota
	// EventPage announces one discovered page, in receipt order.
	EventPage
	// EventDone terminates the stream.
	EventDone
	// eventMalformed marks a frame that could not be decoded. Malformed
	// frames are skipped without aborting the stream and never surface
	// through Next.
	eventMalformed
)

// PageData is the payload of a page event.
type PageData struct {
	Num      int      `json:"num"`
	Filename string   `json:"filename"`
	ImageURL string   `json:"image_url"`
	Text     *string  `json:"ocr_text"`
	TimeSec  *float64 `json:"ocr_time"`
}

// Event is one decoded stream event.
type Event struct {
	Type EventType

	// Init fields.
	DocID    string
	Filename string

	// Page field.
	Page PageData

	// Done field.
	PageCount int
}

type framePayload struct {
	Type      string   `json:"type"`
	DocID     string   `json:"doc_id"`
	Filename  string   `json:"filename"`
	Page      PageData `json:"page"`
	PageCount int      `json:"page_count"`
}

var (
	frameSep    = []byte("\n\n")
	dataPrefix  = []byte("data:")
	crlfReplace = []byte("\r\n")
)

// Parser consumes an open response body and yields events lazily.
// It is finite and not restartable: after the underlying stream ends,
// Next returns io.EOF forever. Any partial frame left in the buffer at
// stream end is discarded.
type Parser struct {
	r       io.Reader
	buf     []byte
	chunk   []byte
	eof     bool
	skipped int
}

// NewParser wraps an open stream body.
func NewParser(r io.Reader) *Parser {
	return &Parser{
		r:     r,
		chunk: make([]byte, 4096),
	}
}

// Skipped returns the number of malformed frames dropped so far.
func (p *Parser) Skipped() int { return p.skipped }

// Next returns the next event in arrival order, or io.EOF when the
// stream is exhausted. Transport errors other than EOF are returned
// as-is; the events already delivered remain valid.
func (p *Parser) Next() (Event, error) {
	for {
		if frame, ok := p.takeFrame(); ok {
			ev, ok := decodeFrame(frame)
			if !ok {
				p.skipped++
				continue
			}
			return ev, nil
		}

		if p.eof {
			// Leftover partial frame is discarded at stream end.
			p.buf = nil
			return Event{}, io.EOF
		}

		n, err := p.r.Read(p.chunk)
		if n > 0 {
			p.buf = append(p.buf, p.chunk[:n]...)
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				p.eof = true
				continue
			}
			return Event{}, err
		}
	}
}

// takeFrame splits one complete frame off the carry-over buffer.
func (p *Parser) takeFrame() ([]byte, bool) {
	// Normalize CRLF so the blank-line delimiter matches either framing.
	if bytes.Contains(p.buf, crlfReplace) {
		p.buf = bytes.ReplaceAll(p.buf, crlfReplace, []byte("\n"))
	}
	i := bytes.Index(p.buf, frameSep)
	if i < 0 {
		return nil, false
	}
	frame := p.buf[:i]
	rest := p.buf[i+len(frameSep):]
	p.buf = append(p.buf[:0:0], rest...)
	if len(bytes.TrimSpace(frame)) == 0 {
		// Empty frame between delimiters, nothing to decode.
		return p.takeFrame()
	}
	return frame, true
}

// decodeFrame extracts the payload line of a frame and decodes it.
// A frame lacking a payload line, or carrying invalid JSON, or naming
// an unknown event type, decodes to the malformed case.
func decodeFrame(frame []byte) (Event, bool) {
	var payload []byte
	for _, line := range bytes.Split(frame, []byte("\n")) {
		if bytes.HasPrefix(line, dataPrefix) {
			payload = bytes.TrimSpace(line[len(dataPrefix):])
			break
		}
	}
	if payload == nil {
		return Event{Type: eventMalformed}, false
	}

	var f framePayload
	if err := json.Unmarshal(payload, &f); err != nil {
		return Event{Type: eventMalformed}, false
	}

	switch f.Type {
	case "init":
		return Event{Type: EventInit, DocID: f.DocID, Filename: f.Filename}, true
	case "page":
		return Event{Type: EventPage, Page: f.Page}, true
	case "done":
		return Event{Type: EventDone, PageCount: f.PageCount}, true
	default:
		return Event{Type: eventMalformed}, false
	}
}
