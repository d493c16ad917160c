// Package condition models the selector and at-rule context an atomic rule is
// scoped to.
package condition

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// Kind of a condition part or whole condition.
type Kind int

const (
	Default Kind = iota
	Pseudo
	PseudoElement
	AtRule
	Composite
)

func (k Kind) String() string {
	switch k {
	case Default:
		return "default"
	case Pseudo:
		return "pseudo-class"
	case PseudoElement:
		return "pseudo-element"
	case AtRule:
		return "at-rule"
	case Composite:
		return "composite"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// DefaultKey is the author-time key naming unconditioned value.
const DefaultKey = "default"

// ErrTwoPseudoElements is returned when condition would carry more than one
// pseudo-element.
var ErrTwoPseudoElements = errors.New("condition cannot have more than one pseudo-element")

// Part is a single pseudo-class, pseudo-element or at-rule.
type Part struct {
	Kind Kind
	Text string
}

// Condition is a value type. Zero value is the default (unconditioned) one.
// Parts are kept in insertion order until condition is finalized, after that
// they are in canonical order: at-rules (alphabetically), pseudo-classes
// (alphabetically), pseudo-element.
type Condition struct {
	parts []Part
	final bool
}

// New builds condition from parts in the given order.
func New(parts ...Part) (Condition, error) {
	var c Condition
	for _, p := range parts {
		var err error
		if c, err = c.With(p); err != nil {
			return Condition{}, err
		}
	}
	return c, nil
}

// With returns new condition with part appended. Combining parts of a
// finalized condition produces a non-finalized one.
func (c Condition) With(p Part) (Condition, error) {
	if p.Kind == Default || p.Text == "" {
		return c, nil
	}
	if p.Kind == PseudoElement && c.PseudoElement() != "" {
		return Condition{}, fmt.Errorf("%w: %q and %q", ErrTwoPseudoElements, c.PseudoElement(), p.Text)
	}
	parts := make([]Part, 0, len(c.parts)+1)
	parts = append(parts, c.parts...)
	for _, existing := range parts {
		if existing == p {
			// same part twice does not change anything
			return Condition{parts: parts}, nil
		}
	}
	return Condition{parts: append(parts, p)}, nil
}

// Merge combines two conditions, parts of other follow parts of c.
func (c Condition) Merge(other Condition) (Condition, error) {
	var err error
	for _, p := range other.parts {
		if c, err = c.With(p); err != nil {
			return Condition{}, err
		}
	}
	return c, nil
}

// Finalize returns condition with parts in canonical order.
func (c Condition) Finalize() Condition {
	if c.final {
		return c
	}
	parts := slices.Clone(c.parts)
	slices.SortStableFunc(parts, func(a, b Part) int {
		if ra, rb := rank(a.Kind), rank(b.Kind); ra != rb {
			return ra - rb
		}
		return strings.Compare(a.Text, b.Text)
	})
	return Condition{parts: parts, final: true}
}

func rank(k Kind) int {
	switch k {
	case AtRule:
		return 0
	case Pseudo:
		return 1
	default:
		return 2
	}
}

// Finalized reports whether parts are in canonical order.
func (c Condition) Finalized() bool {
	return c.final || len(c.parts) == 0
}

// Kind returns Default for empty condition, Composite when there is more than
// one part, and part kind otherwise.
func (c Condition) Kind() Kind {
	switch len(c.parts) {
	case 0:
		return Default
	case 1:
		return c.parts[0].Kind
	default:
		return Composite
	}
}

// IsDefault reports whether condition is unconditioned.
func (c Condition) IsDefault() bool {
	return len(c.parts) == 0
}

// Parts returns copy of condition parts in their current order.
func (c Condition) Parts() []Part {
	return slices.Clone(c.parts)
}

// Pseudos returns pseudo-class selectors sorted alphabetically.
func (c Condition) Pseudos() []string {
	return c.texts(Pseudo)
}

// AtRules returns at-rule texts sorted alphabetically.
func (c Condition) AtRules() []string {
	return c.texts(AtRule)
}

// PseudoElement returns pseudo-element selector or empty string.
func (c Condition) PseudoElement() string {
	for _, p := range c.parts {
		if p.Kind == PseudoElement {
			return p.Text
		}
	}
	return ""
}

func (c Condition) texts(k Kind) []string {
	var out []string
	for _, p := range c.parts {
		if p.Kind == k {
			out = append(out, p.Text)
		}
	}
	slices.Sort(out)
	return out
}

// HasAtRule reports whether condition has at least one at-rule part.
func (c Condition) HasAtRule() bool {
	return slices.ContainsFunc(c.parts, func(p Part) bool { return p.Kind == AtRule })
}

// ReplaceAtRule returns condition with at-rule text replaced, position is
// preserved.
func (c Condition) ReplaceAtRule(from, to string) Condition {
	parts := slices.Clone(c.parts)
	for i, p := range parts {
		if p.Kind == AtRule && p.Text == from {
			parts[i].Text = to
		}
	}
	return Condition{parts: parts, final: c.final}
}

// Without returns condition with the given part removed.
func (c Condition) Without(p Part) Condition {
	parts := slices.DeleteFunc(slices.Clone(c.parts), func(x Part) bool { return x == p })
	return Condition{parts: parts, final: c.final}
}

// Text returns concatenation of parts in their current order. For non
// finalized conditions this is author (parse) order, which is what lookups
// use.
func (c Condition) Text() string {
	var sb strings.Builder
	for _, p := range c.parts {
		sb.WriteString(p.Text)
	}
	return sb.String()
}

// String returns canonical text: concatenation of parts in canonical order,
// "default" for empty condition.
func (c Condition) String() string {
	if c.IsDefault() {
		return DefaultKey
	}
	return c.Finalize().Text()
}

// Equal compares conditions semantically (ignoring part order).
func (c Condition) Equal(other Condition) bool {
	return c.String() == other.String()
}
