package export

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/vorojar/Folio-OCR/session"
)

func testDoc() *session.Document {
	doc := &session.Document{ID: "doc1", Filename: "scan.pdf"}
	p1 := &session.Page{Num: 1}
	p1.SetResult("First line\nwraps here.", nil, 1500*time.Millisecond)
	doc.AppendPage(p1)
	doc.AppendPage(&session.Page{Num: 2, Status: session.StatusError})
	p3 := &session.Page{Num: 3}
	p3.SetResult("Third page.", nil, 700*time.Millisecond)
	doc.AppendPage(p3)
	return doc
}

func TestMarkdownBundle(t *testing.T) {
	got := string(Markdown(testDoc()))

	if !strings.HasPrefix(got, "# scan.pdf\n") {
		t.Errorf("missing document heading: %q", got)
	}
	for _, want := range []string{"## Page 1", "## Page 2", "## Page 3", "First line\nwraps here.", "Third page."} {
		if !strings.Contains(got, want) {
			t.Errorf("bundle missing %q:\n%s", want, got)
		}
	}
	if !strings.Contains(got, "_not recognized (error)_") {
		t.Errorf("unrecognized page not noted:\n%s", got)
	}
}

func TestMarkdownWithReflow(t *testing.T) {
	got := string(Markdown(testDoc(), WithReflow()))
	if !strings.Contains(got, "First line wraps here.") {
		t.Errorf("wrapped lines not merged:\n%s", got)
	}
}

func TestWorkbook(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.xlsx")
	if err := Workbook(testDoc(), path); err != nil {
		t.Fatalf("Workbook: %v", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("opening workbook: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(sheetName)
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	if len(rows) != 4 {
		t.Fatalf("got %d rows, want header + 3 pages", len(rows))
	}
	if rows[0][0] != "Page" || rows[0][3] != "Text" {
		t.Errorf("header = %v", rows[0])
	}
	if rows[1][1] != "done" || rows[2][1] != "error" {
		t.Errorf("status column = %q/%q", rows[1][1], rows[2][1])
	}
	if !strings.Contains(rows[1][3], "wraps here.") {
		t.Errorf("page 1 text = %q", rows[1][3])
	}
	if len(rows[2]) > 3 && rows[2][3] != "" {
		t.Errorf("unrecognized page text = %q, want empty", rows[2][3])
	}
}
