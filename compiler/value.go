package compiler

import (
	"strconv"
	"strings"
)

type valueKind int

const (
	kindString valueKind = iota
	kindNumber
	kindBool
	kindList
	kindFallback
	kindRef
	kindParam
)

// Value is raw author-time property value before compilation.
type Value struct {
	kind  valueKind
	str   string
	num   float64
	b     bool
	items []Value
	ref   Ref
}

// String creates string value. merge.Unset is accepted and compiles to a
// tombstone.
func String(s string) Value { return Value{kind: kindString, str: s} }

// Number creates numeric value, non-zero numbers of properties which are not
// unitless get "px".
func Number(f float64) Value { return Value{kind: kindNumber, num: f} }

// Bool creates boolean value. It never compiles, it exists so that input
// adapters can hand it over for proper validation error.
func Bool(b bool) Value { return Value{kind: kindBool, b: b} }

// List creates plain fallback array, author order is preserved.
func List(items ...Value) Value { return Value{kind: kindList, items: items} }

// FirstThatWorks creates explicit fallback list, first value is the most
// preferred one.
func FirstThatWorks(items ...Value) Value { return Value{kind: kindFallback, items: items} }

// RefTo creates reference to named artifact.
func RefTo(r Ref) Value { return Value{kind: kindRef, ref: r} }

// ParamOf creates reference to runtime parameter of dynamic rule set.
func ParamOf(name string) Value { return Value{kind: kindParam, str: name} }

func (v Value) String() string {
	switch v.kind {
	case kindString:
		return strconv.Quote(v.str)
	case kindNumber:
		return strconv.FormatFloat(v.num, 'g', -1, 64)
	case kindBool:
		return strconv.FormatBool(v.b)
	case kindList, kindFallback:
		parts := make([]string, 0, len(v.items))
		for _, it := range v.items {
			parts = append(parts, it.String())
		}
		prefix := ""
		if v.kind == kindFallback {
			prefix = "first_that_works"
		}
		return prefix + "[" + strings.Join(parts, ", ") + "]"
	case kindRef:
		return "ref(" + v.ref.String() + ")"
	case kindParam:
		return "param(" + v.str + ")"
	}
	return "?"
}
