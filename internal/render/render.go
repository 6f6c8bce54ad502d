// Package render provides output formatting for CLI commands.
// Commands build strings with Renderer and print them with Writer.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
)

// Writer wraps an io.Writer with formatting utilities.
type Writer struct {
	out io.Writer
}

// NewWriter creates a Writer that writes to the given io.Writer.
func NewWriter(w io.Writer) *Writer {
	return &Writer{out: w}
}

// Stdout returns a Writer that writes to os.Stdout.
func Stdout() *Writer {
	return NewWriter(os.Stdout)
}

// Stderr returns a Writer that writes to os.Stderr.
func Stderr() *Writer {
	return NewWriter(os.Stderr)
}

// Print writes s as-is.
func (w *Writer) Print(s string) {
	fmt.Fprint(w.out, s)
}

// Println writes formatted text with newline.
func (w *Writer) Println(format string, args ...any) {
	fmt.Fprintf(w.out, format+"\n", args...)
}

// Success writes a green check line.
func (w *Writer) Success(format string, args ...any) {
	fmt.Fprintf(w.out, "%s %s\n", color.GreenString("✓"), fmt.Sprintf(format, args...))
}

// Warn writes a yellow warning line.
func (w *Writer) Warn(format string, args ...any) {
	fmt.Fprintf(w.out, "%s %s\n", color.YellowString("!"), fmt.Sprintf(format, args...))
}

// JSON writes v as indented JSON.
func (w *Writer) JSON(v any) error {
	enc := json.NewEncoder(w.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// Price formats an amount the way the cart screen does.
func Price(v float64) string {
	return fmt.Sprintf("$%.2f", v)
}
