package reflow

import (
	"strings"
	"testing"
)

func TestMergesWrappedSentences(t *testing.T) {
	in := "The quick brown fox\njumps over the\nlazy dog.\n\nNext paragraph here\ncontinues on."
	want := "The quick brown fox jumps over the lazy dog.\n\nNext paragraph here continues on."
	if got := Reflow(in); got != want {
		t.Errorf("Reflow() = %q, want %q", got, want)
	}
}

func TestTerminalPunctuationStopsAccumulation(t *testing.T) {
	in := "First sentence ends here.\nSecond starts fresh\nand wraps."
	got := Reflow(in)
	lines := strings.Split(got, "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2: %q", len(lines), got)
	}
	if lines[0] != "First sentence ends here." {
		t.Errorf("line 0 = %q", lines[0])
	}
	if lines[1] != "Second starts fresh and wraps." {
		t.Errorf("line 1 = %q", lines[1])
	}
}

func TestBlockLinesVerbatim(t *testing.T) {
	in := strings.Join([]string{
		"# Title",
		"wrapped text",
		"continues",
		"- item one",
		"- item two",
		"| a | b |",
		"| 1 | 2 |",
		"> quoted",
	}, "\n")
	got := Reflow(in)
	for _, block := range []string{"# Title", "- item one", "- item two", "| a | b |", "| 1 | 2 |", "> quoted"} {
		if !strings.Contains(got, block+"\n") && !strings.HasSuffix(got, block) {
			t.Errorf("block line %q not preserved verbatim in %q", block, got)
		}
	}
	if !strings.Contains(got, "wrapped text continues") {
		t.Errorf("non-block lines not merged: %q", got)
	}
}

func TestCodeFenceContentsUntouched(t *testing.T) {
	in := "```go\nfunc main() {\n}\n```"
	if got := Reflow(in); got != in {
		t.Errorf("Reflow() = %q, want input unchanged", got)
	}
}

func TestCJKJoinsWithoutSpace(t *testing.T) {
	in := "这是第一行的内容\n这是第二行的内容。"
	want := "这是第一行的内容这是第二行的内容。"
	if got := Reflow(in); got != want {
		t.Errorf("Reflow() = %q, want %q", got, want)
	}
}

func TestMixedScriptJoin(t *testing.T) {
	// Latin-to-Latin boundary takes a space even in mixed text.
	in := "mixed line with\nlatin boundary"
	if got := Reflow(in); got != "mixed line with latin boundary" {
		t.Errorf("Reflow() = %q", got)
	}
	// CJK on either side of the boundary suppresses the space.
	in = "结尾是中文\nthen latin"
	if got := Reflow(in); got != "结尾是中文then latin" {
		t.Errorf("Reflow() = %q", got)
	}
}

func TestBlankLinesPreserved(t *testing.T) {
	in := "para one line\n\n\npara two line"
	want := "para one line\n\n\npara two line"
	if got := Reflow(in); got != want {
		t.Errorf("Reflow() = %q, want %q", got, want)
	}
}

func TestIdempotent(t *testing.T) {
	samples := []string{
		"",
		"single line",
		"The quick brown fox\njumps over the\nlazy dog.",
		"# Heading\n\ntext that\nwraps around\n\n- list item\n- another",
		"这是一段被拆开的\n中文文本，需要\n合并成段落。",
		"Sentence one.\nSentence two.\nSentence three.",
		"| a | b |\n| 1 | 2 |",
		"```\nraw\ncode\n```\nafter the\nfence.",
		"trailing fragment without terminal",
	}
	for _, s := range samples {
		once := Reflow(s)
		twice := Reflow(once)
		if once != twice {
			t.Errorf("not idempotent:\n input: %q\n once:  %q\n twice: %q", s, once, twice)
		}
	}
}

func TestIsBlockLine(t *testing.T) {
	cases := []struct {
		line string
		want bool
	}{
		{"# Heading", true},
		{"###### Deep", true},
		{"####### too deep", false},
		{"- item", true},
		{"* item", true},
		{"12. ordered", true},
		{"3) ordered", true},
		{"| cell | cell |", true},
		{"```python", true},
		{"> quote", true},
		{"---", true},
		{"![alt](img.png)", true},
		{"<div>", true},
		{"plain prose line", false},
		{"1 is not a list", false},
	}
	for _, c := range cases {
		if got := IsBlockLine(c.line); got != c.want {
			t.Errorf("IsBlockLine(%q) = %v, want %v", c.line, got, c.want)
		}
	}
}
