package search

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/net/html"
)

// markOpen/markClose wrap each hit in rendered markup. The class is what
// the presentation layer styles and scrolls to.
const (
	markOpen  = `<mark class="search-hit">`
	markClose = `</mark>`
)

// Highlight injects hit markers for query into already-rendered display
// markup. The markup is tokenized so wrappers only ever land inside text
// segments, never inside structural tags. Script and style contents are
// left untouched. An empty query returns the input unchanged.
func Highlight(markup, query string) string {
	if query == "" || markup == "" {
		return markup
	}

	z := html.NewTokenizer(strings.NewReader(markup))
	var out strings.Builder
	out.Grow(len(markup) + 64)
	rawTextDepth := 0

	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			// Tokenizer signals end of input via an error token.
			return out.String()
		case html.TextToken:
			raw := string(z.Raw())
			if rawTextDepth > 0 {
				out.WriteString(raw)
			} else {
				out.WriteString(wrapHits(raw, query))
			}
		case html.StartTagToken:
			name, _ := z.TagName()
			if isRawTextTag(string(name)) {
				rawTextDepth++
			}
			out.Write(z.Raw())
		case html.EndTagToken:
			name, _ := z.TagName()
			if isRawTextTag(string(name)) && rawTextDepth > 0 {
				rawTextDepth--
			}
			out.Write(z.Raw())
		default:
			out.Write(z.Raw())
		}
	}
}

func isRawTextTag(name string) bool {
	return name == "script" || name == "style"
}

// wrapHits wraps each case-insensitive non-overlapping occurrence of
// query in a text segment. Matching walks the original text rune by
// rune: case folding can change a rune's UTF-8 length, so byte offsets
// computed on a lowered copy would not line up with the original.
func wrapHits(text, query string) string {
	if query == "" {
		return text
	}
	var out strings.Builder
	i := 0
	for i < len(text) {
		if n, ok := foldPrefixLen(text[i:], query); ok {
			out.WriteString(markOpen)
			out.WriteString(text[i : i+n])
			out.WriteString(markClose)
			i += n
			continue
		}
		_, size := utf8.DecodeRuneInString(text[i:])
		out.WriteString(text[i : i+size])
		i += size
	}
	return out.String()
}

// foldPrefixLen reports whether query case-insensitively matches a
// prefix of s, and the byte length of that prefix in s.
func foldPrefixLen(s, query string) (int, bool) {
	n := 0
	for _, qr := range query {
		r, size := utf8.DecodeRuneInString(s[n:])
		if size == 0 {
			return 0, false
		}
		if unicode.ToLower(r) != unicode.ToLower(qr) {
			return 0, false
		}
		n += size
	}
	return n, true
}

// StripHighlights removes previously injected hit markers so a cleared
// query leaves the rendered markup pristine.
func StripHighlights(markup string) string {
	markup = strings.ReplaceAll(markup, markOpen, "")
	return strings.ReplaceAll(markup, markClose, "")
}
