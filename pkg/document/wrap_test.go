package document

import (
	"strings"
	"testing"

	"github.com/mattn/go-runewidth"
)

func TestWrapKeepsLinesWithinWidth(t *testing.T) {
	text := strings.Repeat("The caller said my parcel was stuck at customs and asked for a fee. ", 20)

	lines := Wrap(text, NarrativeWidth)
	if len(lines) < 2 {
		t.Fatalf("expected several lines, got %d", len(lines))
	}
	for i, line := range lines {
		if w := runewidth.StringWidth(line); w > NarrativeWidth {
			t.Fatalf("line %d is %d columns wide: %q", i, w, line)
		}
	}
	if got := strings.Join(lines, " "); got != strings.TrimSpace(text) {
		t.Fatalf("wrapping changed the words")
	}
}

func TestWrapSplitsOverlongWords(t *testing.T) {
	word := strings.Repeat("x", 25)

	lines := Wrap("short "+word, 10)
	want := []string{"short", "xxxxxxxxxx", "xxxxxxxxxx", "xxxxx"}
	if len(lines) != len(want) {
		t.Fatalf("expected %v, got %v", want, lines)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Fatalf("line %d: expected %q, got %q", i, want[i], lines[i])
		}
	}
}

func TestWrapKeepsParagraphBreaks(t *testing.T) {
	lines := Wrap("first paragraph\n\nsecond paragraph\n", 40)
	want := []string{"first paragraph", "", "second paragraph"}
	if len(lines) != len(want) {
		t.Fatalf("expected %q, got %q", want, lines)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Fatalf("line %d: expected %q, got %q", i, want[i], lines[i])
		}
	}
}

func TestWrapEmpty(t *testing.T) {
	if lines := Wrap("   ", 90); len(lines) != 0 {
		t.Fatalf("expected no lines, got %q", lines)
	}
}
