// Package atrule turns finalized conditions into selector suffix and at-rule
// wrappers, and bounds overlapping media ranges.
package atrule

import (
	"slices"
	"strings"

	"acss/condition"
	"acss/css"
)

// Wrapped is the textual shape of a condition.
type Wrapped struct {
	// Wrappers are at-rule preludes, outermost first.
	Wrappers []string
	// Suffix is appended to the class selector: pseudo-classes sorted
	// alphabetically followed by pseudo-element.
	Suffix string
}

// Compose computes wrappers and selector suffix. At-rules are sorted
// alphabetically by their text and nested in reverse: the alphabetically last
// at-rule becomes the outermost wrapper. Any number of at-rules is nested this
// way.
func Compose(c condition.Condition) Wrapped {
	w := Wrapped{
		Wrappers: c.AtRules(),
		Suffix:   strings.Join(c.Pseudos(), "") + c.PseudoElement(),
	}
	slices.Reverse(w.Wrappers)
	return w
}

// Rule returns minified rule text for selector and declarations body.
func (w Wrapped) Rule(selector, body string) string {
	return css.Nest(w.Wrappers, css.Block(selector+w.Suffix, body))
}

// Group returns at-rule chain text, outermost first, empty for unwrapped
// rules.
func (w Wrapped) Group() string {
	return strings.Join(w.Wrappers, " ")
}

// IsWrapped reports whether there is at least one at-rule wrapper.
func (w Wrapped) IsWrapped() bool {
	return len(w.Wrappers) > 0
}
