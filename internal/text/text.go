// Package text holds width-aware helpers for terminal output.
package text

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Width is the number of terminal cells s occupies. ANSI escapes count as
// zero and East Asian wide runes as two.
func Width(s string) int {
	return lipgloss.Width(s)
}

// Truncate shortens s to at most n cells with an ellipsis.
// If n < 4, uses n = 4 to ensure room for "...".
func Truncate(s string, n int) string {
	if n < 4 {
		n = 4
	}
	if Width(s) <= n {
		return s
	}

	var sb strings.Builder
	w := 0
	for _, r := range s {
		rw := Width(string(r))
		if w+rw > n-3 {
			break
		}
		sb.WriteRune(r)
		w += rw
	}
	return sb.String() + "..."
}

// Pad right-pads s with spaces to n cells. Wider strings are returned as-is.
func Pad(s string, n int) string {
	if w := Width(s); w < n {
		return s + strings.Repeat(" ", n-w)
	}
	return s
}

// Indent prefixes every non-empty line of s.
func Indent(s, prefix string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		if line != "" {
			lines[i] = prefix + line
		}
	}
	return strings.Join(lines, "\n")
}

// WordWrap wraps text to a maximum width, breaking on word boundaries.
// Preserves existing newlines and measures in terminal cells.
func WordWrap(s string, width int) string {
	if width <= 0 {
		return s
	}

	var result strings.Builder
	for i, line := range strings.Split(s, "\n") {
		if i > 0 {
			result.WriteString("\n")
		}
		if Width(line) <= width {
			result.WriteString(line)
			continue
		}
		result.WriteString(wrapLine(line, width))
	}
	return result.String()
}

// wrapLine wraps a single over-long line. Words wider than width get a line of their own.
func wrapLine(line string, width int) string {
	var lines []string
	var current strings.Builder
	currentLen := 0

	for _, word := range strings.Fields(line) {
		wordLen := Width(word)
		if currentLen > 0 && currentLen+1+wordLen > width {
			lines = append(lines, current.String())
			current.Reset()
			currentLen = 0
		}
		if currentLen > 0 {
			current.WriteString(" ")
			currentLen++
		}
		current.WriteString(word)
		currentLen += wordLen
	}
	if currentLen > 0 {
		lines = append(lines, current.String())
	}
	return strings.Join(lines, "\n")
}
