package diagram

import (
	"strings"
	"unicode/utf8"
)

// DefaultLabelWidth is the wrap width, in characters, of node labels.
const DefaultLabelWidth = 28

var labelEscaper = strings.NewReplacer(
	"#", "#35;",
	`"`, "#quot;",
	"&", "#amp;",
	"<", "#lt;",
	">", "#gt;",
	"(", "#40;",
	")", "#41;",
	"[", "#91;",
	"]", "#93;",
	"{", "#123;",
	"}", "#125;",
	`\`, "#92;",
	"|", "#124;",
)

// EscapeLabel replaces characters that are syntax in a flowchart definition
// with their entity codes.
func EscapeLabel(s string) string {
	return labelEscaper.Replace(s)
}

// WrapLabel breaks s into lines of at most width characters at word
// boundaries. A single word longer than width is hard-broken.
func WrapLabel(s string, width int) []string {
	if width <= 0 {
		width = DefaultLabelWidth
	}
	var lines []string
	var current strings.Builder
	currentLen := 0
	flush := func() {
		if currentLen > 0 {
			lines = append(lines, current.String())
			current.Reset()
			currentLen = 0
		}
	}
	for _, word := range strings.Fields(s) {
		for utf8.RuneCountInString(word) > width {
			flush()
			runes := []rune(word)
			lines = append(lines, string(runes[:width]))
			word = string(runes[width:])
		}
		n := utf8.RuneCountInString(word)
		if currentLen > 0 && currentLen+1+n > width {
			flush()
		}
		if currentLen > 0 {
			current.WriteByte(' ')
			currentLen++
		}
		current.WriteString(word)
		currentLen += n
	}
	flush()
	return lines
}

// formatLabel wraps then escapes s, joining lines with explicit breaks.
func formatLabel(s string, width int) string {
	lines := WrapLabel(s, width)
	for i, line := range lines {
		lines[i] = EscapeLabel(line)
	}
	return strings.Join(lines, "<br/>")
}
