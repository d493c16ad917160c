package css

import (
	"fmt"
	"io"
	"strings"
)

// Block returns minified "prelude{body}" text.
func Block(prelude, body string) string {
	return prelude + "{" + body + "}"
}

// Nest wraps inner text into blocks, wrappers are listed outermost first.
func Nest(wrappers []string, inner string) string {
	var sb strings.Builder
	for _, w := range wrappers {
		sb.WriteString(w)
		sb.WriteByte('{')
	}
	sb.WriteString(inner)
	for range wrappers {
		sb.WriteByte('}')
	}
	return sb.String()
}

// Stylesheet accumulates output text in order, optionally grouping pieces
// into named cascade layers.
type Stylesheet struct {
	Header string
	Items  []StylesheetItem
}

// StylesheetItem is a single top-level piece of text. Items with the same
// non-empty Layer which follow each other are emitted inside one @layer block.
type StylesheetItem struct {
	Layer string
	Text  string
}

// Layers returns distinct layer names in the order of first appearance.
func (s *Stylesheet) Layers() []string {
	var (
		names []string
		seen  = make(map[string]bool)
	)
	for _, item := range s.Items {
		if item.Layer != "" && !seen[item.Layer] {
			seen[item.Layer] = true
			names = append(names, item.Layer)
		}
	}
	return names
}

// WriteTo writes the stylesheet to w, implementing io.WriterTo. Layer order is
// declared upfront so that cascade does not depend on block order.
func (s *Stylesheet) WriteTo(w io.Writer) (int64, error) {
	var total int64
	write := func(format string, args ...any) error {
		n, err := fmt.Fprintf(w, format, args...)
		total += int64(n)
		return err
	}

	if s.Header != "" {
		if err := write("%s\n", s.Header); err != nil {
			return total, err
		}
	}
	if layers := s.Layers(); len(layers) > 0 {
		if err := write("@layer %s;\n", strings.Join(layers, ", ")); err != nil {
			return total, err
		}
	}

	current := ""
	for _, item := range s.Items {
		if item.Layer != current {
			if current != "" {
				if err := write("}\n"); err != nil {
					return total, err
				}
			}
			if item.Layer != "" {
				if err := write("@layer %s{\n", item.Layer); err != nil {
					return total, err
				}
			}
			current = item.Layer
		}
		if err := write("%s\n", item.Text); err != nil {
			return total, err
		}
	}
	if current != "" {
		if err := write("}\n"); err != nil {
			return total, err
		}
	}
	return total, nil
}

// String returns the CSS text of the stylesheet.
func (s *Stylesheet) String() string {
	var sb strings.Builder
	s.WriteTo(&sb) //nolint:errcheck
	return sb.String()
}
