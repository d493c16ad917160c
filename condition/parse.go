package condition

import (
	"fmt"
	"strings"

	tcss "github.com/tdewolff/parse/v2/css"

	"acss/css"
)

// Parse parses condition text. Text may be "default", a single part (":hover",
// "::before", "@media (min-width: 800px)") or concatenation of parts as
// produced by Text or String ("@media (min-width: 800px):hover").
func Parse(text string) (Condition, error) {
	text = strings.TrimSpace(text)
	if text == "" || text == DefaultKey {
		return Condition{}, nil
	}
	parts, err := split(text)
	if err != nil {
		return Condition{}, err
	}
	return New(parts...)
}

// MustParse is like Parse but panics on error, for tables and tests.
func MustParse(text string) Condition {
	c, err := Parse(text)
	if err != nil {
		panic(err)
	}
	return c
}

// ParsePart parses text which must be a single condition part.
func ParsePart(text string) (Part, error) {
	parts, err := split(strings.TrimSpace(text))
	if err != nil {
		return Part{}, err
	}
	if len(parts) != 1 {
		return Part{}, fmt.Errorf("condition %q: expected single part, got %d", text, len(parts))
	}
	return parts[0], nil
}

// split breaks text into parts on top-level "@", ":" and "::" boundaries.
// Boundaries inside parentheses or functions (":where(.m:hover *)") are not
// considered.
func split(text string) ([]Part, error) {
	tokens := css.Tokenize(text)

	var (
		parts []Part
		cur   strings.Builder
		kind  Kind
		depth int
	)
	flush := func() {
		if s := strings.TrimSpace(cur.String()); s != "" {
			parts = append(parts, Part{Kind: kind, Text: s})
		}
		cur.Reset()
	}

	for i := 0; i < len(tokens); i++ {
		t := tokens[i]
		if depth == 0 {
			switch t.Type {
			case tcss.AtKeywordToken:
				flush()
				kind = AtRule
			case tcss.ColonToken:
				// pseudo-class inside at-rule prelude is not possible at top level,
				// so colon always starts a new part
				flush()
				kind = Pseudo
				if i+1 < len(tokens) && tokens[i+1].Type == tcss.ColonToken {
					kind = PseudoElement
					cur.WriteString(t.Data)
					i++
					t = tokens[i]
				}
			}
		}
		switch {
		case t.Opens():
			depth++
		case t.Closes():
			depth--
			if depth < 0 {
				return nil, fmt.Errorf("condition %q: unbalanced parentheses", text)
			}
		}
		if cur.Len() == 0 && t.Type != tcss.AtKeywordToken && t.Type != tcss.ColonToken && !t.IsSpace() {
			return nil, fmt.Errorf("condition %q: must start with ':', '::' or '@'", text)
		}
		cur.WriteString(t.Data)
	}
	if depth != 0 {
		return nil, fmt.Errorf("condition %q: unbalanced parentheses", text)
	}
	flush()
	if len(parts) == 0 {
		return nil, fmt.Errorf("condition %q: nothing to parse", text)
	}
	for _, p := range parts {
		if p.Text == ":" || p.Text == "::" || p.Text == "@" {
			return nil, fmt.Errorf("condition %q: empty selector", text)
		}
	}
	return parts, nil
}
