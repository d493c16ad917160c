package css

import (
	"math"
	"strconv"
	"strings"

	parse "github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
)

// Tokenize splits CSS text into tokens. Token data is verbatim so joining all
// token data reproduces the input.
func Tokenize(s string) []Token {
	l := css.NewLexer(parse.NewInputString(s))
	var tokens []Token
	for {
		tt, data := l.Next()
		if tt == css.ErrorToken {
			// io.EOF or malformed tail, either way we are done
			return tokens
		}
		tokens = append(tokens, Token{Type: tt, Data: string(data)})
	}
}

// Normalize minifies value text: whitespace runs collapse to a single space,
// spaces around commas and inside parentheses are dropped, comments removed.
// String tokens are kept verbatim.
func Normalize(value string) string {
	tokens := Tokenize(strings.TrimSpace(value))

	var sb strings.Builder
	pendingSpace := false
	var prev Token
	for _, t := range tokens {
		if t.IsSpace() {
			pendingSpace = sb.Len() > 0
			continue
		}
		if pendingSpace && !prev.Opens() && prev.Type != css.CommaToken &&
			!t.Closes() && t.Type != css.CommaToken {
			sb.WriteByte(' ')
		}
		pendingSpace = false
		sb.WriteString(t.Data)
		prev = t
	}
	return sb.String()
}

// SplitTopLevel splits text on delimiter tokens found outside of any
// parentheses, brackets or functions. Parts are returned trimmed.
func SplitTopLevel(s string, delim css.TokenType) []string {
	var (
		parts []string
		sb    strings.Builder
		depth int
	)
	for _, t := range Tokenize(s) {
		switch {
		case t.Opens():
			depth++
		case t.Closes():
			depth--
		case t.Type == delim && depth == 0:
			parts = append(parts, strings.TrimSpace(sb.String()))
			sb.Reset()
			continue
		}
		sb.WriteString(t.Data)
	}
	return append(parts, strings.TrimSpace(sb.String()))
}

// ParseVar checks if value is a single var() reference. It returns the custom
// property name and fallback (if any).
func ParseVar(value string) (name, fallback string, ok bool) {
	value = strings.TrimSpace(value)
	tokens := Tokenize(value)
	if len(tokens) < 2 || tokens[0].Type != css.FunctionToken || !strings.EqualFold(tokens[0].Data, "var(") {
		return "", "", false
	}
	// the function must span the whole value
	depth := 0
	for i, t := range tokens {
		switch {
		case t.Opens():
			depth++
		case t.Closes():
			depth--
			if depth == 0 && i != len(tokens)-1 {
				return "", "", false
			}
		}
	}
	if depth != 0 {
		return "", "", false
	}
	inner := value[len("var(") : len(value)-1]
	args := SplitTopLevel(inner, css.CommaToken)
	name = args[0]
	if !strings.HasPrefix(name, "--") {
		return "", "", false
	}
	if len(args) > 1 {
		fallback = strings.TrimSpace(inner[strings.Index(inner, ",")+1:])
	}
	return name, fallback, true
}

// IsVar returns true if value is a single var() reference.
func IsVar(value string) bool {
	_, _, ok := ParseVar(value)
	return ok
}

// WithFallback nests fallback as the last argument of var() reference. If
// reference already has fallback, nesting continues into it.
func WithFallback(ref, fallback string) string {
	name, inner, ok := ParseVar(ref)
	if !ok {
		return ref
	}
	if inner == "" {
		return "var(" + name + "," + fallback + ")"
	}
	if IsVar(inner) {
		return "var(" + name + "," + WithFallback(inner, fallback) + ")"
	}
	return "var(" + name + "," + inner + ")"
}

// ParseDimension parses "640px", "40em", "12" into number and unit.
func ParseDimension(s string) (Dimension, bool) {
	s = strings.TrimSpace(s)
	tokens := Tokenize(s)
	if len(tokens) != 1 {
		return Dimension{}, false
	}
	switch tokens[0].Type {
	case css.DimensionToken, css.NumberToken, css.PercentageToken:
	default:
		return Dimension{}, false
	}
	n := parse.Number([]byte(s))
	if n == 0 {
		return Dimension{}, false
	}
	return Dimension{Number: s[:n], Unit: s[n:]}, true
}

// FormatNumber formats number the shortest way CSS accepts.
func FormatNumber(f float64) string {
	if f == math.Trunc(f) && math.Abs(f) < 1e15 {
		return strconv.FormatInt(int64(f), 10)
	}
	s := strconv.FormatFloat(f, 'f', -1, 64)
	switch {
	case strings.HasPrefix(s, "0."):
		s = s[1:]
	case strings.HasPrefix(s, "-0."):
		s = "-" + s[2:]
	}
	return s
}

// unitless lists properties which accept bare numbers, everything else gets
// "px" appended to numeric values.
var unitless = map[string]bool{
	"animation-iteration-count": true,
	"aspect-ratio":              true,
	"border-image-outset":       true,
	"border-image-slice":        true,
	"border-image-width":        true,
	"column-count":              true,
	"columns":                   true,
	"fill-opacity":              true,
	"flex":                      true,
	"flex-grow":                 true,
	"flex-shrink":               true,
	"flood-opacity":             true,
	"font-size-adjust":          true,
	"font-weight":               true,
	"grid-area":                 true,
	"grid-column":               true,
	"grid-column-end":           true,
	"grid-column-start":         true,
	"grid-row":                  true,
	"grid-row-end":              true,
	"grid-row-start":            true,
	"initial-letter":            true,
	"line-clamp":                true,
	"line-height":               true,
	"math-depth":                true,
	"opacity":                   true,
	"order":                     true,
	"orphans":                   true,
	"scale":                     true,
	"shape-image-threshold":     true,
	"stop-opacity":              true,
	"stroke-dashoffset":         true,
	"stroke-miterlimit":         true,
	"stroke-opacity":            true,
	"stroke-width":              true,
	"tab-size":                  true,
	"widows":                    true,
	"z-index":                   true,
	"zoom":                      true,
}

// NumberValue converts numeric value into CSS text for the property.
func NumberValue(property string, f float64) string {
	s := FormatNumber(f)
	if f == 0 || unitless[property] || strings.HasPrefix(property, "--") {
		return s
	}
	return s + "px"
}
