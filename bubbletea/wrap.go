package bubbletea

import (
	"strings"

	rw "github.com/mattn/go-runewidth"
	"github.com/rivo/uniseg"
)

// wrapText performs word wrapping to fit within the given display width.
// Existing newlines are preserved; words wider than a full line are broken
// at rune boundaries. Widths are measured in terminal cells, so wide runes
// and combining sequences wrap correctly.
func wrapText(s string, width int) string {
	if width <= 0 || s == "" {
		return s
	}

	var out []string
	for _, line := range strings.Split(s, "\n") {
		out = append(out, wrapLine(line, width)...)
	}
	return strings.Join(out, "\n")
}

func wrapLine(line string, width int) []string {
	if uniseg.StringWidth(line) <= width {
		return []string{line}
	}

	var (
		lines   []string
		current strings.Builder
	)
	flush := func() {
		lines = append(lines, strings.TrimRight(current.String(), " "))
		current.Reset()
	}

	for _, word := range strings.Split(line, " ") {
		wordWidth := uniseg.StringWidth(word)
		lineWidth := uniseg.StringWidth(current.String())

		switch {
		case lineWidth == 0 && wordWidth <= width:
			current.WriteString(word)
		case lineWidth+1+wordWidth <= width:
			current.WriteString(" ")
			current.WriteString(word)
		case wordWidth > width:
			if lineWidth > 0 {
				flush()
			}
			parts := breakWord(word, width)
			lines = append(lines, parts[:len(parts)-1]...)
			current.WriteString(parts[len(parts)-1])
		default:
			flush()
			current.WriteString(word)
		}
	}
	if current.Len() > 0 {
		flush()
	}
	return lines
}

// breakWord splits a word wider than the line into width-sized pieces. The
// final piece may be narrower and is returned last.
func breakWord(word string, width int) []string {
	var (
		parts   []string
		current strings.Builder
		w       int
	)
	for _, r := range word {
		cw := rw.RuneWidth(r)
		if w+cw > width {
			parts = append(parts, current.String())
			current.Reset()
			w = 0
		}
		current.WriteRune(r)
		w += cw
	}
	if current.Len() > 0 {
		parts = append(parts, current.String())
	}
	return parts
}
