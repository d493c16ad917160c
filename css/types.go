package css

import (
	"strings"

	"github.com/tdewolff/parse/v2/css"
)

// Token is a single lexical CSS token with its verbatim text.
type Token struct {
	Type css.TokenType
	Data string
}

// IsSpace returns true for whitespace and comment tokens.
func (t Token) IsSpace() bool {
	return t.Type == css.WhitespaceToken || t.Type == css.CommentToken
}

// Opens returns true when token increases nesting depth.
func (t Token) Opens() bool {
	return t.Type == css.FunctionToken || t.Type == css.LeftParenthesisToken || t.Type == css.LeftBracketToken
}

// Closes returns true when token decreases nesting depth.
func (t Token) Closes() bool {
	return t.Type == css.RightParenthesisToken || t.Type == css.RightBracketToken
}

// Decl is a single "property:value" declaration.
type Decl struct {
	Property string
	Value    string
}

// String returns minified declaration text.
func (d Decl) String() string {
	return d.Property + ":" + d.Value
}

// Decls is an ordered declaration list.
type Decls []Decl

// String returns minified declaration list, semicolon separated, no trailing
// semicolon.
func (ds Decls) String() string {
	var sb strings.Builder
	for i, d := range ds {
		if i > 0 {
			sb.WriteByte(';')
		}
		sb.WriteString(d.Property)
		sb.WriteByte(':')
		sb.WriteString(d.Value)
	}
	return sb.String()
}

// Dimension represents numeric value with optional unit (e.g. "640px").
type Dimension struct {
	Number string
	Unit   string
}

// String returns dimension text.
func (d Dimension) String() string {
	return d.Number + d.Unit
}
