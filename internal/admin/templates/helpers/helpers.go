package helpers

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

// BadgeClass maps semantic tones to badge classes.
func BadgeClass(tone string) string {
	switch tone {
	case "success":
		return "badge badge-success"
	case "warning":
		return "badge badge-warning"
	case "danger":
		return "badge badge-danger"
	case "info":
		return "badge badge-info"
	default:
		return "badge badge-muted"
	}
}

// Writer accumulates markup and keeps the first write error.
type Writer struct {
	w   io.Writer
	err error
}

// NewWriter wraps w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// Raw writes trusted markup.
func (hw *Writer) Raw(parts ...string) {
	for _, p := range parts {
		if hw.err != nil {
			return
		}
		_, hw.err = io.WriteString(hw.w, p)
	}
}

// Text writes escaped text. The escaping is also safe inside quoted attributes.
func (hw *Writer) Text(v string) {
	hw.Raw(templ.EscapeString(v))
}

// Attr writes ` name="value"` with value escaped.
func (hw *Writer) Attr(name, value string) {
	hw.Raw(" ", name, `="`, templ.EscapeString(value), `"`)
}

// Component renders c into the underlying writer.
func (hw *Writer) Component(ctx context.Context, c templ.Component) {
	if hw.err != nil || c == nil {
		return
	}
	hw.err = c.Render(ctx, hw.w)
}

// Err returns the first error encountered.
func (hw *Writer) Err() error {
	return hw.err
}
