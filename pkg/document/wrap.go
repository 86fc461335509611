package document

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// NarrativeWidth is the column width complaint narratives are wrapped to.
const NarrativeWidth = 90

// Wrap breaks text into lines no wider than width display columns. Paragraph
// breaks in the input are kept as empty lines and words wider than a whole
// line are split.
func Wrap(text string, width int) []string {
	if width <= 0 {
		width = NarrativeWidth
	}

	text = strings.ReplaceAll(text, "\r\n", "\n")

	var lines []string
	for _, paragraph := range strings.Split(text, "\n") {
		words := strings.Fields(paragraph)
		if len(words) == 0 {
			lines = append(lines, "")
			continue
		}

		var current strings.Builder
		currentWidth := 0

		flush := func() {
			lines = append(lines, current.String())
			current.Reset()
			currentWidth = 0
		}

		for _, word := range words {
			for runewidth.StringWidth(word) > width {
				if currentWidth > 0 {
					flush()
				}
				head := runewidth.Truncate(word, width, "")
				if head == "" {
					break
				}
				lines = append(lines, head)
				word = word[len(head):]
			}
			if word == "" {
				continue
			}

			w := runewidth.StringWidth(word)
			switch {
			case currentWidth == 0:
				current.WriteString(word)
				currentWidth = w
			case currentWidth+1+w <= width:
				current.WriteByte(' ')
				current.WriteString(word)
				currentWidth += 1 + w
			default:
				flush()
				current.WriteString(word)
				currentWidth = w
			}
		}
		if currentWidth > 0 {
			flush()
		}
	}

	for len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}

	return lines
}
