package priority

import (
	"testing"

	"acss/condition"
)

func TestPropertyRank(t *testing.T) {
	tests := map[string]int{
		"margin":        ShorthandOfShorthands,
		"border":        ShorthandOfShorthands,
		"gap":           ShorthandOfLonghands,
		"color":         Longhand,
		"--custom-prop": Longhand,
		"unknown-thing": Longhand,
		"margin-top":    PhysicalLonghand,
		" Padding-Top ": PhysicalLonghand,
	}
	for property, want := range tests {
		if got := PropertyRank(property); got != want {
			t.Errorf("PropertyRank(%q) = %d, want %d", property, got, want)
		}
	}
}

func TestPseudoClassOffset(t *testing.T) {
	tests := map[string]int{
		":hover":             130,
		":first-child":       10,
		":nth-child(2n + 1)": 60,
		":not(:hover)":       40,
		":hover:focus":       280,
		":made-up":           DefaultPseudoOffset,
		":ACTIVE":            170,
	}
	for selector, want := range tests {
		if got := PseudoClassOffset(selector); got != want {
			t.Errorf("PseudoClassOffset(%q) = %d, want %d", selector, got, want)
		}
	}
}

func TestAtRuleOffset(t *testing.T) {
	tests := map[string]int{
		"@media (min-width: 800px)": 200,
		"@supports (gap: 1px)":      30,
		"@container card (w > 1px)": 300,
		"@MEDIA print":              200,
		"@layer x":                  0,
	}
	for text, want := range tests {
		if got := AtRuleOffset(text); got != want {
			t.Errorf("AtRuleOffset(%q) = %d, want %d", text, got, want)
		}
	}
}

func TestOf(t *testing.T) {
	tests := []struct {
		property, cond string
		want           int
	}{
		{"color", "default", 3000},
		{"color", ":hover", 3130},
		{"margin", "::before", 6000},
		{"margin-top", "@media print:hover", 4330},
		{"gap", "@supports (gap: 1px)@media print:focus::after", 2000 + 30 + 200 + 150 + 5000},
	}
	for _, tt := range tests {
		t.Run(tt.property+tt.cond, func(t *testing.T) {
			if got := Of(tt.property, condition.MustParse(tt.cond)); got != tt.want {
				t.Errorf("Of() = %d, want %d", got, tt.want)
			}
		})
	}
}

// More specific conditions must never sort before less specific ones of the
// same property.
func TestOf_Monotonic(t *testing.T) {
	ladder := []string{"default", ":hover", ":hover:focus", "@media print:hover:focus", "@media print:hover:focus::before"}
	for _, property := range []string{"margin", "gap", "color", "margin-top"} {
		prev := -1
		for _, c := range ladder {
			got := Of(property, condition.MustParse(c))
			if got <= prev {
				t.Errorf("Of(%q, %q) = %d is not above %d", property, c, got, prev)
			}
			prev = got
		}
	}
	// any longhand outranks any shorthand under the same condition
	if Of("margin", condition.MustParse(":active")) >= Of("margin-top", condition.MustParse(":active")) {
		t.Error("shorthand outranks longhand")
	}
}

func TestOf_AtRuleOrder(t *testing.T) {
	for _, property := range []string{"color", "margin", "margin-top", "--custom"} {
		supports := Of(property, condition.MustParse("@supports (x)"))
		media := Of(property, condition.MustParse("@media (x)"))
		container := Of(property, condition.MustParse("@container (x)"))
		if !(supports < media && media < container) {
			t.Errorf("%s: @supports %d, @media %d, @container %d are out of order", property, supports, media, container)
		}
	}
}
