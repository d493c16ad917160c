// Package priority assigns every atomic rule a numeric rank which defines its
// position in the final stylesheet. Higher rank goes later and wins.
package priority

import (
	"strings"

	"acss/condition"
)

// Of returns rank of atomic rule for property under condition. Function is
// pure and total: unknown properties get longhand rank, unknown pseudo-classes
// get default offset.
func Of(property string, c condition.Condition) int {
	p := PropertyRank(property)
	for _, part := range c.Parts() {
		switch part.Kind {
		case condition.PseudoElement:
			p += PseudoElementOffset
		case condition.Pseudo:
			p += PseudoClassOffset(part.Text)
		case condition.AtRule:
			p += AtRuleOffset(part.Text)
		}
	}
	return p
}

// PropertyRank returns base rank by property category.
func PropertyRank(property string) int {
	property = strings.ToLower(strings.TrimSpace(property))
	switch {
	case shorthandsOfShorthands[property]:
		return ShorthandOfShorthands
	case shorthandsOfLonghands[property]:
		return ShorthandOfLonghands
	case physicalLonghands[property]:
		return PhysicalLonghand
	default:
		return Longhand
	}
}

// PseudoClassOffset returns offset for pseudo-class selector. Functional forms
// are looked up by their name (":nth-child(2n)" -> ":nth-child"). Chained
// selectors (":hover:focus") sum offsets of every pseudo-class.
func PseudoClassOffset(selector string) int {
	total := 0
	for _, name := range pseudoNames(selector) {
		if off, ok := pseudoOffsets[name]; ok {
			total += off
		} else {
			total += DefaultPseudoOffset
		}
	}
	return total
}

// AtRuleOffset returns offset for at-rule by its keyword, unknown at-rules add
// nothing.
func AtRuleOffset(text string) int {
	keyword := strings.ToLower(strings.TrimSpace(text))
	if i := strings.IndexAny(keyword, " (\t\n"); i > 0 {
		keyword = keyword[:i]
	}
	return atRuleOffsets[keyword]
}

// pseudoNames extracts top-level pseudo-class names from selector text.
func pseudoNames(selector string) []string {
	var (
		names []string
		depth int
		start = -1
	)
	end := func(i int) {
		if start >= 0 {
			names = append(names, strings.ToLower(selector[start:i]))
			start = -1
		}
	}
	for i := 0; i < len(selector); i++ {
		switch ch := selector[i]; ch {
		case '(':
			if depth == 0 {
				end(i)
			}
			depth++
		case ')':
			depth--
		case ':':
			if depth == 0 {
				end(i)
				start = i
			}
		default:
			if depth == 0 && start >= 0 && !isNameChar(ch) {
				end(i)
			}
		}
	}
	end(len(selector))
	return names
}

func isNameChar(ch byte) bool {
	return ch == '-' || ch == '_' || ch == ':' ||
		(ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || (ch >= '0' && ch <= '9')
}
