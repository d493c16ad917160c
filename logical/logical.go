// Package logical rewrites logical properties and values into physical ones
// where the browser cannot be trusted to do it, producing separate right to
// left text when the outcome depends on direction.
package logical

import "strings"

// Result of transformation of a single declaration.
type Result struct {
	Property string
	Value    string
	// RTLValue is value for right to left documents, meaningful only when
	// HasRTL is set.
	RTLValue string
	HasRTL   bool
	// Physical is set when logical property name was rewritten.
	Physical bool
}

// blockLonghands are block-axis logical longhands compiled into physical
// equivalents. Inline-axis properties and block shorthands are left alone.
var blockLonghands = map[string]string{
	"margin-block-start":         "margin-top",
	"margin-block-end":           "margin-bottom",
	"padding-block-start":        "padding-top",
	"padding-block-end":          "padding-bottom",
	"inset-block-start":          "top",
	"inset-block-end":            "bottom",
	"border-block-start-color":   "border-top-color",
	"border-block-end-color":     "border-bottom-color",
	"border-block-start-style":   "border-top-style",
	"border-block-end-style":     "border-bottom-style",
	"border-block-start-width":   "border-top-width",
	"border-block-end-width":     "border-bottom-width",
	"scroll-margin-block-start":  "scroll-margin-top",
	"scroll-margin-block-end":    "scroll-margin-bottom",
	"scroll-padding-block-start": "scroll-padding-top",
	"scroll-padding-block-end":   "scroll-padding-bottom",
}

// directionalValues maps logical keyword values of properties to LTR and RTL
// physical keywords.
var directionalValues = map[string]map[string][2]string{
	"float": {
		"inline-start": {"left", "right"},
		"inline-end":   {"right", "left"},
	},
	"clear": {
		"inline-start": {"left", "right"},
		"inline-end":   {"right", "left"},
	},
}

// Transform applies the policy table to a single declaration.
func Transform(property, value string) Result {
	r := Result{Property: property, Value: value}

	// inline axis is left to the browser
	if IsInlineLogical(property) {
		return r
	}
	if physical, ok := blockLonghands[property]; ok {
		r.Property = physical
		r.Physical = true
		return r
	}
	if values, ok := directionalValues[property]; ok {
		if pair, ok := values[strings.ToLower(strings.TrimSpace(value))]; ok {
			r.Value = pair[0]
			r.RTLValue = pair[1]
			r.HasRTL = true
		}
	}
	return r
}

// IsInlineLogical reports whether property is an inline-axis logical property
// which is passed through unchanged.
func IsInlineLogical(property string) bool {
	return strings.Contains(property, "-inline") ||
		strings.HasPrefix(property, "border-start-") ||
		strings.HasPrefix(property, "border-end-")
}
