// Package reflow merges line-wrapped sentence fragments back into
// paragraphs. The transformation is pure, line-oriented, and idempotent:
// running it over its own output returns the same text unchanged.
package reflow

import (
	"strings"
	"unicode"
)

// ---------------------------------------------------------------------------
// Block-line classification
// ---------------------------------------------------------------------------

// blockPredicate names one rule of the block-start classifier. A line
// matching any predicate is emitted verbatim and never merged with its
// neighbors.
type blockPredicate struct {
	name  string
	match func(line string) bool
}

// blockPredicates is the enumerable classifier table. Keeping the rules
// in one list makes the classification auditable: every verbatim line
// can be attributed to exactly one named rule.
var blockPredicates = []blockPredicate{
	{"heading", isHeading},
	{"list-item", isListItem},
	{"table-row", isTableRow},
	{"code-fence", isCodeFence},
	{"blockquote", isBlockquote},
	{"horizontal-rule", isHorizontalRule},
	{"image-or-html", isImageOrHTML},
}

func isHeading(line string) bool {
	trimmed := strings.TrimLeft(line, " ")
	if !strings.HasPrefix(trimmed, "#") {
		return false
	}
	n := 0
	for n < len(trimmed) && trimmed[n] == '#' {
		n++
	}
	return n <= 6 && n < len(trimmed) && trimmed[n] == ' '
}

func isListItem(line string) bool {
	trimmed := strings.TrimLeft(line, " \t")
	for _, marker := range []string{"- ", "* ", "+ "} {
		if strings.HasPrefix(trimmed, marker) {
			return true
		}
	}
	// Ordered items: "1. ", "12) ".
	i := 0
	for i < len(trimmed) && trimmed[i] >= '0' && trimmed[i] <= '9' {
		i++
	}
	if i == 0 || i >= len(trimmed) {
		return false
	}
	if trimmed[i] != '.' && trimmed[i] != ')' {
		return false
	}
	return i+1 < len(trimmed) && trimmed[i+1] == ' '
}

func isTableRow(line string) bool {
	trimmed := strings.TrimSpace(line)
	return strings.HasPrefix(trimmed, "|") && strings.Count(trimmed, "|") >= 2
}

func isCodeFence(line string) bool {
	trimmed := strings.TrimLeft(line, " ")
	return strings.HasPrefix(trimmed, "```") || strings.HasPrefix(trimmed, "~~~")
}

func isBlockquote(line string) bool {
	return strings.HasPrefix(strings.TrimLeft(line, " "), "> ")
}

func isHorizontalRule(line string) bool {
	trimmed := strings.TrimSpace(line)
	if len(trimmed) < 3 {
		return false
	}
	for _, set := range []string{"-", "*", "_"} {
		if strings.Trim(trimmed, set+" ") == "" && strings.Count(trimmed, set) >= 3 {
			return true
		}
	}
	return false
}

func isImageOrHTML(line string) bool {
	trimmed := strings.TrimSpace(line)
	return strings.HasPrefix(trimmed, "![") || strings.HasPrefix(trimmed, "<")
}

// IsBlockLine reports whether a line belongs to the fixed block-line set.
func IsBlockLine(line string) bool {
	for _, p := range blockPredicates {
		if p.match(line) {
			return true
		}
	}
	return false
}

// ---------------------------------------------------------------------------
// Sentence-boundary and CJK helpers
// ---------------------------------------------------------------------------

// terminalRunes is the enumerated set of sentence-final characters that
// stop paragraph accumulation: Latin and CJK sentence-final marks plus
// closing brackets and quotes.
const terminalRunes = ".!?。！？…；;：:」』）)]》〉”’\"'"

func endsTerminal(s string) bool {
	runes := []rune(s)
	if len(runes) == 0 {
		return false
	}
	return strings.ContainsRune(terminalRunes, runes[len(runes)-1])
}

// isCJK reports whether a rune belongs to a CJK character class:
// ideographs, CJK punctuation, or fullwidth forms. Two lines joined at
// a CJK boundary take no separating space.
func isCJK(r rune) bool {
	switch {
	case unicode.Is(unicode.Han, r):
		return true
	case unicode.Is(unicode.Hiragana, r), unicode.Is(unicode.Katakana, r):
		return true
	case unicode.Is(unicode.Hangul, r):
		return true
	case r >= 0x3000 && r <= 0x303F: // CJK symbols and punctuation
		return true
	case r >= 0xFF00 && r <= 0xFFEF: // fullwidth and halfwidth forms
		return true
	}
	return false
}

// joiner returns the string used to join two adjacent wrapped lines.
func joiner(left, right string) string {
	lr := []rune(left)
	rr := []rune(right)
	if len(lr) == 0 || len(rr) == 0 {
		return ""
	}
	if isCJK(lr[len(lr)-1]) || isCJK(rr[0]) {
		return ""
	}
	return " "
}

// ---------------------------------------------------------------------------
// Reflow
// ---------------------------------------------------------------------------

// Reflow merges wrapped non-block lines into paragraphs. Blank lines and
// block lines keep their original relative position; overall line order
// is stable.
func Reflow(text string) string {
	if text == "" {
		return text
	}

	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))
	var para string
	inPara := false
	inFence := false

	flush := func() {
		if inPara {
			out = append(out, para)
			para = ""
			inPara = false
		}
	}

	for _, line := range lines {
		if isCodeFence(line) {
			flush()
			out = append(out, line)
			inFence = !inFence
			continue
		}
		if inFence {
			// Everything inside a fence is verbatim.
			flush()
			out = append(out, line)
			continue
		}

		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			flush()
			out = append(out, line)
			continue
		}
		if IsBlockLine(line) {
			flush()
			out = append(out, line)
			continue
		}

		if !inPara {
			para = trimmed
			inPara = true
			continue
		}
		if endsTerminal(para) {
			// The accumulated paragraph already reads as a complete
			// sentence; the next fragment starts a new one.
			flush()
			para = trimmed
			inPara = true
			continue
		}
		para = para + joiner(para, trimmed) + trimmed
	}
	flush()

	return strings.Join(out, "\n")
}
