package ingest

import (
	"errors"
	"io"
	"strings"
	"testing"
)

// chunkedReader yields the input in fixed-size fragments so frame
// boundaries never align with read boundaries.
type chunkedReader struct {
	data []byte
	size int
	pos  int
}

func (r *chunkedReader) Read(p []byte) (int, error) {
	if r.pos >= len(r.data) {
		return 0, io.EOF
	}
	end := r.pos + r.size
	if end > len(r.data) {
		end = len(r.data)
	}
	n := copy(p, r.data[r.pos:end])
	r.pos += n
	return n, nil
}

func frame(payload string) string {
	return "data: " + payload + "\n\n"
}

func collect(t *testing.T, p *Parser) []Event {
	t.Helper()
	var events []Event
	for {
		ev, err := p.Next()
		if errors.Is(err, io.EOF) {
			return events
		}
		if err != nil {
			t.Fatalf("Next() error: %v", err)
		}
		events = append(events, ev)
	}
}

func TestParseDiscoverySequence(t *testing.T) {
	stream := frame(`{"type":"init","doc_id":"doc1","filename":"a.pdf"}`) +
		frame(`{"type":"page","page":{"num":1,"filename":"page_001.png","image_url":"/api/images/doc1/page_001.png"}}`) +
		frame(`{"type":"page","page":{"num":2,"filename":"page_002.png"}}`) +
		frame(`{"type":"page","page":{"num":3,"filename":"page_003.png"}}`) +
		frame(`{"type":"done","page_count":3}`)

	// Chunk sizes chosen to split frames mid-payload.
	for _, size := range []int{1, 7, 64, len(stream)} {
		p := NewParser(&chunkedReader{data: []byte(stream), size: size})
		events := collect(t, p)

		if len(events) != 5 {
			t.Fatalf("chunk size %d: got %d events, want 5", size, len(events))
		}
		if events[0].Type != EventInit || events[0].DocID != "doc1" || events[0].Filename != "a.pdf" {
			t.Errorf("chunk size %d: init = %+v", size, events[0])
		}
		for i := 1; i <= 3; i++ {
			if events[i].Type != EventPage {
				t.Fatalf("chunk size %d: event %d type = %v, want page", size, i, events[i].Type)
			}
			if events[i].Page.Num != i {
				t.Errorf("chunk size %d: page order: got %d at position %d", size, events[i].Page.Num, i)
			}
		}
		if events[4].Type != EventDone || events[4].PageCount != 3 {
			t.Errorf("chunk size %d: done = %+v", size, events[4])
		}
	}
}

func TestMalformedFramesSkipped(t *testing.T) {
	stream := frame(`{"type":"init","doc_id":"d","filename":"f"}`) +
		"no payload line here\n\n" +
		frame(`{not json`) +
		frame(`{"type":"mystery"}`) +
		frame(`{"type":"page","page":{"num":1}}`) +
		frame(`{"type":"done","page_count":1}`)

	p := NewParser(strings.NewReader(stream))
	events := collect(t, p)

	if len(events) != 3 {
		t.Fatalf("got %d events, want 3 (malformed skipped)", len(events))
	}
	if p.Skipped() != 3 {
		t.Errorf("Skipped() = %d, want 3", p.Skipped())
	}
	if events[1].Type != EventPage || events[1].Page.Num != 1 {
		t.Errorf("page event after skips = %+v", events[1])
	}
}

func TestTrailingPartialFrameDiscarded(t *testing.T) {
	stream := frame(`{"type":"init","doc_id":"d","filename":"f"}`) +
		`data: {"type":"page","page":{"num":1` // truncated, no delimiter

	p := NewParser(strings.NewReader(stream))
	events := collect(t, p)

	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}

	// Finite and not restartable: EOF stays terminal.
	if _, err := p.Next(); !errors.Is(err, io.EOF) {
		t.Errorf("Next() after EOF = %v, want io.EOF", err)
	}
}

func TestCRLFFraming(t *testing.T) {
	stream := "data: {\"type\":\"init\",\"doc_id\":\"d\",\"filename\":\"f\"}\r\n\r\n" +
		"data: {\"type\":\"done\",\"page_count\":0}\r\n\r\n"

	p := NewParser(strings.NewReader(stream))
	events := collect(t, p)
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}
	if events[0].Type != EventInit || events[1].Type != EventDone {
		t.Errorf("events = %+v", events)
	}
}

func TestPageReplayCarriesText(t *testing.T) {
	stream := frame(`{"type":"init","doc_id":"d","filename":"f"}`) +
		frame(`{"type":"page","page":{"num":1,"ocr_text":"hello","ocr_time":1.5}}`)

	p := NewParser(strings.NewReader(stream))
	events := collect(t, p)
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}
	pg := events[1].Page
	if pg.Text == nil || *pg.Text != "hello" {
		t.Errorf("Text = %v, want hello", pg.Text)
	}
	if pg.TimeSec == nil || *pg.TimeSec != 1.5 {
		t.Errorf("TimeSec = %v, want 1.5", pg.TimeSec)
	}
}
