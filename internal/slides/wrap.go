package slides

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Wrap breaks text into lines of at most width runes. Explicit newlines start
// a new paragraph; words are packed greedily and a word longer than width is
// split across lines. Text is NFC-normalized first so decomposed Hangul
// counts one rune per syllable.
func Wrap(text string, width int) []string {
	text = norm.NFC.String(text)
	if width <= 0 {
		width = 1
	}

	var lines []string
	for _, paragraph := range strings.Split(text, "\n") {
		lines = append(lines, wrapParagraph(paragraph, width)...)
	}
	return lines
}

func wrapParagraph(paragraph string, width int) []string {
	var (
		lines   []string
		current []rune
	)
	flush := func() {
		if len(current) > 0 {
			lines = append(lines, string(current))
			current = current[:0]
		}
	}

	for _, word := range strings.Fields(paragraph) {
		w := []rune(word)
		switch {
		case len(current) == 0:
		case len(current)+1+len(w) <= width:
			current = append(current, ' ')
		default:
			flush()
		}

		for len(current)+len(w) > width {
			room := width - len(current)
			current = append(current, w[:room]...)
			w = w[room:]
			flush()
		}
		current = append(current, w...)
	}
	flush()
	return lines
}
