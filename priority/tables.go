package priority

// Property ranks.
const (
	ShorthandOfShorthands = 1000
	ShorthandOfLonghands  = 2000
	Longhand              = 3000
	PhysicalLonghand      = 4000

	PseudoElementOffset = 5000
	// Pseudo-classes missing from the table.
	DefaultPseudoOffset = 40
)

// atRuleOffsets by at-rule keyword.
var atRuleOffsets = map[string]int{
	"@supports":  30,
	"@media":     200,
	"@container": 300,
}

// pseudoOffsets is published cascade data, values must not change.
var pseudoOffsets = map[string]int{
	":first-child":        10,
	":is":                 40,
	":where":              40,
	":not":                40,
	":has":                45,
	":dir":                50,
	":lang":               51,
	":first-of-type":      53,
	":last-child":         54,
	":last-of-type":       55,
	":only-child":         56,
	":only-of-type":       57,
	":nth-child":          60,
	":nth-last-child":     61,
	":nth-of-type":        62,
	":nth-last-of-type":   63,
	":empty":              70,
	":link":               80,
	":any-link":           81,
	":local-link":         82,
	":target-within":      83,
	":target":             84,
	":visited":            85,
	":enabled":            91,
	":disabled":           92,
	":required":           93,
	":optional":           94,
	":read-only":          95,
	":read-write":         96,
	":placeholder-shown":  97,
	":in-range":           98,
	":out-of-range":       99,
	":default":            100,
	":checked":            101,
	":indeterminate":      101,
	":blank":              102,
	":valid":              103,
	":invalid":            104,
	":user-invalid":       105,
	":autofill":           110,
	":picture-in-picture": 120,
	":modal":              121,
	":fullscreen":         122,
	":paused":             123,
	":playing":            124,
	":current":            125,
	":past":               126,
	":future":             127,
	":hover":              130,
	":focus-within":       140,
	":focus":              150,
	":focus-visible":      160,
	":active":             170,
}

// shorthandsOfShorthands expand into other shorthands.
var shorthandsOfShorthands = set(
	"all",
	"background",
	"border",
	"border-block",
	"border-color",
	"border-inline",
	"border-style",
	"border-width",
	"font",
	"grid",
	"grid-area",
	"inset",
	"margin",
	"mask",
	"padding",
	"scroll-margin",
	"scroll-padding",
)

// shorthandsOfLonghands expand into longhands only. Modern logical shorthands
// belong here as well.
var shorthandsOfLonghands = set(
	"animation",
	"animation-range",
	"background-position",
	"border-block-color",
	"border-block-end",
	"border-block-start",
	"border-block-style",
	"border-block-width",
	"border-bottom",
	"border-image",
	"border-inline-color",
	"border-inline-end",
	"border-inline-start",
	"border-inline-style",
	"border-inline-width",
	"border-left",
	"border-radius",
	"border-right",
	"border-top",
	"column-rule",
	"columns",
	"contain-intrinsic-size",
	"container",
	"flex",
	"flex-flow",
	"font-variant",
	"gap",
	"grid-column",
	"grid-row",
	"grid-template",
	"inset-block",
	"inset-inline",
	"list-style",
	"margin-block",
	"margin-inline",
	"mask-border",
	"offset",
	"outline",
	"overflow",
	"overscroll-behavior",
	"padding-block",
	"padding-inline",
	"place-content",
	"place-items",
	"place-self",
	"position-try",
	"scroll-margin-block",
	"scroll-margin-inline",
	"scroll-padding-block",
	"scroll-padding-inline",
	"scroll-timeline",
	"text-decoration",
	"text-emphasis",
	"text-wrap",
	"transition",
	"view-timeline",
	"white-space",
)

// physicalLonghands are direction-bound longhands, block logical longhands are
// compiled into these.
var physicalLonghands = set(
	"border-bottom-color",
	"border-bottom-left-radius",
	"border-bottom-right-radius",
	"border-bottom-style",
	"border-bottom-width",
	"border-left-color",
	"border-left-style",
	"border-left-width",
	"border-right-color",
	"border-right-style",
	"border-right-width",
	"border-top-color",
	"border-top-left-radius",
	"border-top-right-radius",
	"border-top-style",
	"border-top-width",
	"bottom",
	"left",
	"margin-bottom",
	"margin-left",
	"margin-right",
	"margin-top",
	"overflow-x",
	"overflow-y",
	"overscroll-behavior-x",
	"overscroll-behavior-y",
	"padding-bottom",
	"padding-left",
	"padding-right",
	"padding-top",
	"right",
	"scroll-margin-bottom",
	"scroll-margin-left",
	"scroll-margin-right",
	"scroll-margin-top",
	"scroll-padding-bottom",
	"scroll-padding-left",
	"scroll-padding-right",
	"scroll-padding-top",
	"top",
)

func set(names ...string) map[string]bool {
	m := make(map[string]bool, len(names))
	for _, n := range names {
		m[n] = true
	}
	return m
}
