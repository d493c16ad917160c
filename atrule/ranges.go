package atrule

import (
	"slices"
	"strings"

	"github.com/shopspring/decimal"
	tcss "github.com/tdewolff/parse/v2/css"

	"acss/condition"
	"acss/css"
)

var step = decimal.RequireFromString("0.01")

type breakpoint struct {
	index int
	text  string
	value decimal.Decimal
	dim   css.Dimension
}

// BoundRanges takes ordered conditions of declarations of the same property
// and turns open-ended "@media (min-width: X)" queries into half-open ranges:
// every breakpoint but the largest gets "and (max-width: next - 0.01)" in the
// unit of the breakpoint. Breakpoints are compared only with ones having the
// same unit and the same remaining condition parts. Returned slice is
// parallel to the input.
func BoundRanges(conds []condition.Condition) []condition.Condition {
	out := slices.Clone(conds)

	groups := make(map[string][]breakpoint)
	var order []string
	for i, c := range conds {
		for _, at := range c.AtRules() {
			dim, ok := ParseMinWidth(at)
			if !ok {
				continue
			}
			value, err := decimal.NewFromString(dim.Number)
			if err != nil {
				continue
			}
			key := c.Without(condition.Part{Kind: condition.AtRule, Text: at}).String() + "|" + strings.ToLower(dim.Unit)
			if _, ok := groups[key]; !ok {
				order = append(order, key)
			}
			groups[key] = append(groups[key], breakpoint{index: i, text: at, value: value, dim: dim})
		}
	}

	for _, key := range order {
		bps := groups[key]
		if len(bps) < 2 {
			continue
		}
		values := make([]decimal.Decimal, 0, len(bps))
		for _, bp := range bps {
			values = append(values, bp.value)
		}
		slices.SortFunc(values, func(a, b decimal.Decimal) int { return a.Cmp(b) })
		values = slices.CompactFunc(values, func(a, b decimal.Decimal) bool { return a.Equal(b) })

		for _, bp := range bps {
			pos, _ := slices.BinarySearchFunc(values, bp.value, func(a, b decimal.Decimal) int { return a.Cmp(b) })
			if pos >= len(values)-1 {
				// largest breakpoint stays unbounded
				continue
			}
			upper := values[pos+1].Sub(step).String() + bp.dim.Unit
			out[bp.index] = out[bp.index].ReplaceAtRule(bp.text, bp.text+" and (max-width: "+upper+")")
		}
	}
	return out
}

// ParseMinWidth recognizes at-rule of exactly "@media (min-width: <dimension>)"
// shape and returns the dimension.
func ParseMinWidth(text string) (css.Dimension, bool) {
	var tokens []css.Token
	for _, t := range css.Tokenize(text) {
		if !t.IsSpace() {
			tokens = append(tokens, t)
		}
	}
	if len(tokens) != 6 {
		return css.Dimension{}, false
	}
	if tokens[0].Type != tcss.AtKeywordToken || !strings.EqualFold(tokens[0].Data, "@media") ||
		tokens[1].Type != tcss.LeftParenthesisToken ||
		tokens[2].Type != tcss.IdentToken || !strings.EqualFold(tokens[2].Data, "min-width") ||
		tokens[3].Type != tcss.ColonToken ||
		tokens[5].Type != tcss.RightParenthesisToken {
		return css.Dimension{}, false
	}
	return css.ParseDimension(tokens[4].Data)
}
