package emit

import (
	"fmt"
	"strings"
)

// writer accumulates emitted lines with indentation tracking.  All three
// emitters build on it.
type writer struct {
	b      strings.Builder
	indent int
}

// linef writes one indented line.
func (w *writer) linef(format string, args ...interface{}) {
	w.b.WriteString(strings.Repeat("    ", w.indent))
	fmt.Fprintf(&w.b, format, args...)
	w.b.WriteByte('\n')
}

// blank writes an empty line.
func (w *writer) blank() {
	w.b.WriteByte('\n')
}

// raw writes text with no indentation or newline handling.
func (w *writer) raw(s string) {
	w.b.WriteString(s)
}

func (w *writer) result() string {
	return w.b.String()
}
