package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
)

// allowedSuffixes mirrors the backend's accepted upload types.
var allowedSuffixes = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true,
	".gif": true, ".bmp": true, ".pdf": true,
}

// preflight rejects unsupported files before any bytes hit the wire and
// sanity-checks PDFs locally, reporting the page count that the backend
// will discover.
func preflight(path string) error {
	ext := strings.ToLower(filepath.Ext(path))
	if !allowedSuffixes[ext] {
		return fmt.Errorf("unsupported file type: %s", path)
	}
	if ext != ".pdf" {
		return nil
	}

	f, r, err := pdf.Open(path)
	if err != nil {
		return fmt.Errorf("unreadable pdf %s: %w", path, err)
	}
	defer f.Close()

	n := r.NumPage()
	if n == 0 {
		return fmt.Errorf("pdf %s has no pages", path)
	}
	fmt.Printf("%s: %d page(s)\n", path, n)
	return nil
}
