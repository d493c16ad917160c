package compiler

import (
	"fmt"
	"strings"

	tcss "github.com/tdewolff/parse/v2/css"

	"acss/css"
)

// Relation of element to marked element for contextual selectors.
type Relation int

const (
	Ancestor Relation = iota
	Descendant
	SiblingBefore
	SiblingAfter
	AnySibling
)

var relationNames = map[string]Relation{
	"ancestor":      Ancestor,
	"descendant":    Descendant,
	"siblingbefore": SiblingBefore,
	"siblingafter":  SiblingAfter,
	"anysibling":    AnySibling,
}

// When describes contextual condition: element is styled depending on the
// state (Pseudo) of another element carrying Marker class.
type When struct {
	Relation Relation
	Pseudo   string
	// Marker is marker reference ("card" or "module:card"), empty for the
	// default marker.
	Marker string
}

// ParseWhen recognizes "relation(:pseudo[, marker])" condition keys. It
// returns false when key is not a contextual condition at all.
func ParseWhen(key string) (When, bool, error) {
	key = strings.TrimSpace(key)
	open := strings.IndexByte(key, '(')
	if open <= 0 || !strings.HasSuffix(key, ")") {
		return When{}, false, nil
	}
	rel, ok := relationNames[strings.ToLower(strings.ReplaceAll(key[:open], "-", ""))]
	if !ok {
		return When{}, false, nil
	}
	args := css.SplitTopLevel(key[open+1:len(key)-1], tcss.CommaToken)
	if len(args) > 2 || args[0] == "" {
		return When{}, true, fmt.Errorf("contextual selector %q expects pseudo-class and optional marker", key)
	}
	w := When{Relation: rel, Pseudo: args[0]}
	if len(args) == 2 {
		w.Marker = args[1]
	}
	if err := w.validate(); err != nil {
		return When{}, true, err
	}
	return w, true, nil
}

func (w When) validate() error {
	switch {
	case !strings.HasPrefix(w.Pseudo, ":"):
		return fmt.Errorf("contextual selector pseudo-class %q must start with ':'", w.Pseudo)
	case strings.Contains(w.Pseudo, "::"):
		return fmt.Errorf("contextual selector %q cannot use pseudo-elements", w.Pseudo)
	}
	return nil
}

// Selector returns pseudo-class condition text for marker class.
func (w When) Selector(marker string) (string, error) {
	if err := w.validate(); err != nil {
		return "", err
	}
	m := "." + marker + w.Pseudo
	switch w.Relation {
	case Ancestor:
		return ":where(" + m + " *)", nil
	case Descendant:
		return ":where(:has(" + m + "))", nil
	case SiblingBefore:
		return ":where(" + m + " ~ *)", nil
	case SiblingAfter:
		return ":where(:has(~ " + m + "))", nil
	case AnySibling:
		return ":where(" + m + " ~ *, :has(~ " + m + "))", nil
	}
	return "", fmt.Errorf("unknown relation %d", w.Relation)
}
