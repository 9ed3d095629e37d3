// Package export writes a document's recognized text out of the session:
// a plain markdown bundle or an xlsx workbook with one row per page.
// Callers must force-flush pending edits before exporting; the exporters
// read whatever the session store holds.
package export

import (
	"fmt"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/vorojar/Folio-OCR/reflow"
	"github.com/vorojar/Folio-OCR/session"
)

// Option configures an export.
type Option func(*options)

type options struct {
	reflow bool
}

// WithReflow reflows each page's text before writing it out.
func WithReflow() Option {
	return func(o *options) { o.reflow = true }
}

// Markdown renders the whole document as one markdown bundle with a
// page-number heading above each recognized page. Unrecognized pages
// are noted and skipped.
func Markdown(doc *session.Document, opts ...Option) []byte {
	var o options
	for _, fn := range opts {
		fn(&o)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n", doc.Filename)
	for _, p := range doc.Pages {
		fmt.Fprintf(&b, "\n## Page %d\n\n", p.Num)
		if !p.Recognized() {
			fmt.Fprintf(&b, "_not recognized (%s)_\n", p.Status)
			continue
		}
		text := *p.Text
		if o.reflow {
			text = reflow.Reflow(text)
		}
		b.WriteString(text)
		if !strings.HasSuffix(text, "\n") {
			b.WriteByte('\n')
		}
	}
	return []byte(b.String())
}

const sheetName = "Pages"

// Workbook writes the document as an xlsx workbook at path: one row per
// page with number, status, OCR duration, and text.
func Workbook(doc *session.Document, path string, opts ...Option) error {
	var o options
	for _, fn := range opts {
		fn(&o)
	}

	f := excelize.NewFile()
	defer f.Close()

	idx, err := f.NewSheet(sheetName)
	if err != nil {
		return fmt.Errorf("creating sheet: %w", err)
	}
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	header := []any{"Page", "Status", "OCR seconds", "Text"}
	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, p := range doc.Pages {
		text := ""
		if p.Recognized() {
			text = *p.Text
			if o.reflow {
				text = reflow.Reflow(text)
			}
		}
		row := []any{
			p.Num,
			string(p.Status),
			p.Duration.Round(10 * time.Millisecond).Seconds(),
			text,
		}
		cell := fmt.Sprintf("A%d", i+2)
		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			return fmt.Errorf("writing page %d: %w", p.Num, err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("saving workbook: %w", err)
	}
	return nil
}
