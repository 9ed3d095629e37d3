// Package render turns recognized markdown text into display markup.
// The rendered output is the surface the search highlighter injects
// into, so it must be well-formed HTML with structural tags intact.
package render

import (
	"bytes"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

// md is shared and safe for concurrent use.
var md = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithRendererOptions(html.WithHardWraps()),
)

// Markdown renders recognized page text to display markup. The
// recognition model emits GFM-flavored markdown (tables included), so
// the GFM extension set is always on.
func Markdown(text string) (string, error) {
	var buf bytes.Buffer
	if err := md.Convert([]byte(text), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}
