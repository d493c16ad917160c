package compiler

import (
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap/zaptest"

	"acss/common"
	"acss/condition"
	"acss/merge"
	"acss/model"
)

func compileOne(t *testing.T, opts Options, property string, node Node) []*model.AtomicRule {
	t.Helper()

	c := New(opts, nil, zaptest.NewLogger(t))
	entries, err := c.Flatten(node)
	if err != nil {
		t.Fatalf("Flatten() error = %v", err)
	}
	rules, err := c.CompileProperty(property, entries)
	if err != nil {
		t.Fatalf("CompileProperty() error = %v", err)
	}
	return rules
}

func ltr(r *model.AtomicRule, text string) string {
	return strings.ReplaceAll(text, "X", r.ClassName)
}

func TestCompileProperty_Conditions(t *testing.T) {
	tests := []struct {
		name     string
		node     Node
		want     string
		key      string
		priority int
	}{
		{
			name:     "default",
			node:     Leaf(String("red")),
			want:     ".X{color:red}",
			key:      "color",
			priority: 3000,
		},
		{
			name:     "pseudo-class",
			node:     Conditional(Branch{Key: ":hover", Node: Leaf(String("blue"))}),
			want:     ".X:hover{color:blue}",
			key:      "color:::hover",
			priority: 3130,
		},
		{
			name:     "pseudo-element doubles selector",
			node:     Conditional(Branch{Key: "::before", Node: Leaf(String("blue"))}),
			want:     ".X.X::before{color:blue}",
			key:      "color::::before",
			priority: 8000,
		},
		{
			name: "nested at-rules and pseudo-class",
			node: Conditional(Branch{Key: "@media (min-width:800px)", Node: Conditional(
				Branch{Key: "@supports (color: oklch(0 0 0))", Node: Conditional(
					Branch{Key: ":hover", Node: Leaf(String("blue"))},
				)},
			)}),
			want:     "@supports (color: oklch(0 0 0)){@media (min-width:800px){.X.X:hover{color:blue}}}",
			key:      "color::@media (min-width:800px)@supports (color: oklch(0 0 0)):hover",
			priority: 3360,
		},
		{
			name: "pseudo-classes sorted",
			node: Conditional(Branch{Key: ":hover", Node: Conditional(
				Branch{Key: ":active", Node: Leaf(String("blue"))},
			)}),
			want:     ".X:active:hover{color:blue}",
			key:      "color:::active:hover",
			priority: 3300,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rules := compileOne(t, Options{}, "color", tt.node)
			if len(rules) != 1 {
				t.Fatalf("got %d rules, want 1", len(rules))
			}
			r := rules[0]
			if want := ltr(r, tt.want); r.LTR != want {
				t.Errorf("LTR = %q, want %q", r.LTR, want)
			}
			if r.Key != tt.key {
				t.Errorf("Key = %q, want %q", r.Key, tt.key)
			}
			if r.Priority != tt.priority {
				t.Errorf("Priority = %d, want %d", r.Priority, tt.priority)
			}
			if r.HasRTL() {
				t.Errorf("unexpected RTL text %q", r.RTL)
			}
		})
	}
}

func TestCompileProperty_DistinctConditions(t *testing.T) {
	rules := compileOne(t, Options{}, "color", Conditional(
		Branch{Key: "default", Node: Leaf(String("red"))},
		Branch{Key: ":hover", Node: Leaf(String("blue"))},
		Branch{Key: "default", Node: Leaf(String("green"))},
	))
	if len(rules) != 2 {
		t.Fatalf("got %d rules, want 2", len(rules))
	}
	if want := ltr(rules[0], ".X{color:green}"); rules[0].LTR != want {
		t.Errorf("later default must replace earlier one: %q", rules[0].LTR)
	}
	if rules[1].Condition != ":hover" {
		t.Errorf("second rule condition = %q", rules[1].Condition)
	}
}

func TestCompileProperty_RangeBounding(t *testing.T) {
	var branches []Branch
	for _, w := range []string{"640px", "768px", "1024px", "1280px"} {
		branches = append(branches, Branch{Key: "@media (min-width: " + w + ")", Node: Leaf(String("1px"))})
	}
	rules := compileOne(t, Options{}, "padding", Conditional(branches...))

	want := []string{
		"@media (min-width: 640px) and (max-width: 767.99px)",
		"@media (min-width: 768px) and (max-width: 1023.99px)",
		"@media (min-width: 1024px) and (max-width: 1279.99px)",
		"@media (min-width: 1280px)",
	}
	if len(rules) != len(want) {
		t.Fatalf("got %d rules, want %d", len(rules), len(want))
	}
	for i, r := range rules {
		if r.Condition != want[i] {
			t.Errorf("rule %d condition = %q, want %q", i, r.Condition, want[i])
		}
		if !strings.HasPrefix(r.LTR, want[i]+"{") {
			t.Errorf("rule %d text = %q", i, r.LTR)
		}
	}
}

func TestCompileProperty_Logical(t *testing.T) {
	t.Run("float inline-start", func(t *testing.T) {
		r := compileOne(t, Options{}, "float", Leaf(String("inline-start")))[0]
		if want := ltr(r, ".X{float:left}"); r.LTR != want {
			t.Errorf("LTR = %q, want %q", r.LTR, want)
		}
		if want := ltr(r, `[dir="rtl"] .X{float:right}`); r.RTL != want {
			t.Errorf("RTL = %q, want %q", r.RTL, want)
		}
	})

	t.Run("custom rtl selector", func(t *testing.T) {
		r := compileOne(t, Options{RTLSelector: "html[dir=rtl]"}, "clear", Leaf(String("inline-end")))[0]
		if want := ltr(r, "html[dir=rtl] .X{clear:left}"); r.RTL != want {
			t.Errorf("RTL = %q, want %q", r.RTL, want)
		}
	})

	t.Run("text-align start", func(t *testing.T) {
		r := compileOne(t, Options{}, "text-align", Leaf(String("start")))[0]
		if want := ltr(r, ".X{text-align:start}"); r.LTR != want {
			t.Errorf("LTR = %q, want %q", r.LTR, want)
		}
		if r.HasRTL() {
			t.Errorf("unexpected RTL %q", r.RTL)
		}
	})

	t.Run("block longhand", func(t *testing.T) {
		r := compileOne(t, Options{}, "margin-block-start", Leaf(Number(10)))[0]
		if want := ltr(r, ".X{margin-top:10px}"); r.LTR != want {
			t.Errorf("LTR = %q, want %q", r.LTR, want)
		}
		if r.Priority != 4000 {
			t.Errorf("Priority = %d, want 4000", r.Priority)
		}
	})

	t.Run("block shorthand passes through", func(t *testing.T) {
		r := compileOne(t, Options{}, "border-block-start", Leaf(String("1px solid")))[0]
		if want := ltr(r, ".X{border-block-start:1px solid}"); r.LTR != want {
			t.Errorf("LTR = %q, want %q", r.LTR, want)
		}
		if r.Property != "border-block-start" || r.Priority != 2000 {
			t.Errorf("Property = %q, Priority = %d", r.Property, r.Priority)
		}
	})

	t.Run("inline passes through", func(t *testing.T) {
		r := compileOne(t, Options{}, "margin-inline-start", Leaf(Number(4)))[0]
		if want := ltr(r, ".X{margin-inline-start:4px}"); r.LTR != want {
			t.Errorf("LTR = %q, want %q", r.LTR, want)
		}
	})
}

func TestCompileProperty_Values(t *testing.T) {
	tests := []struct {
		name     string
		property string
		value    Value
		want     string
	}{
		{"number gets px", "width", Number(10), "width:10px"},
		{"unitless number", "opacity", Number(0.5), "opacity:.5"},
		{"zero", "margin", Number(0), "margin:0"},
		{"whitespace minified", "margin", String("  1px   2px\n"), "margin:1px 2px"},
		{"var chain", "color", List(String("var(--a)"), String("var(--b)"), String("red")), "color:var(--a,var(--b,red))"},
		{"plain before var", "color", List(String("red"), String("var(--a)")), "color:red;color:var(--a)"},
		{"var then plain then plain", "color", List(String("var(--a)"), String("red"), String("blue")), "color:var(--a,red);color:blue"},
		{"plain only", "display", List(String("flex"), String("grid")), "display:flex;display:grid"},
		{"explicit fallback reversed", "font-family", FirstThatWorks(String("Inter"), String("system-ui")), "font-family:system-ui;font-family:Inter"},
		{"explicit fallback nests", "color", FirstThatWorks(String("red"), String("var(--a)")), "color:var(--a,red)"},
		{"array of numbers", "width", List(Number(10), String("fit-content")), "width:10px;width:fit-content"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := compileOne(t, Options{}, tt.property, Leaf(tt.value))[0]
			if want := ltr(r, ".X{"+tt.want+"}"); r.LTR != want {
				t.Errorf("LTR = %q, want %q", r.LTR, want)
			}
		})
	}
}

func TestCompileProperty_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		value Value
	}{
		{"boolean", Bool(true)},
		{"boolean in array", List(String("red"), Bool(false))},
		{"nested array", List(List(String("red")))},
		{"empty", String("  ")},
		{"unknown param", ParamOf("w")},
	}

	c := New(Options{}, nil, zaptest.NewLogger(t))
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.CompileProperty("color", []Entry{{Value: tt.value}})
			var ve *ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("error = %v, want ValidationError", err)
			}
			if ve.Property != "color" {
				t.Errorf("Property = %q, want color", ve.Property)
			}
		})
	}
}

func TestCompileProperty_Unset(t *testing.T) {
	rules := compileOne(t, Options{}, "color", Conditional(
		Branch{Key: "default", Node: Leaf(String(merge.Unset))},
		Branch{Key: ":hover", Node: Leaf(String("blue"))},
	))
	if !rules[0].Unset || rules[0].ClassName != merge.Unset || rules[0].LTR != "" {
		t.Fatalf("unset must compile to tombstone, got %+v", rules[0])
	}
	if rules[0].Key != "color" {
		t.Errorf("Key = %q", rules[0].Key)
	}
	if rules[1].Unset {
		t.Errorf("hover rule marked unset")
	}
}

func TestCompileProperty_Specificity(t *testing.T) {
	media := Conditional(Branch{Key: "@media (x)", Node: Leaf(String("red"))})
	hover := Conditional(Branch{Key: ":hover", Node: Leaf(String("red"))})

	tests := []struct {
		mode common.Specificity
		node Node
		want string
	}{
		{common.SpecificityDouble, media, "@media (x){.X.X{color:red}}"},
		{common.SpecificityDouble, hover, ".X:hover{color:red}"},
		{common.SpecificityLayers, media, "@media (x){.X{color:red}}"},
		{common.SpecificityLayers, hover, ".X:hover{color:red}"},
		{common.SpecificityNotId, media, `@media (x){.X:not(#\#){color:red}}`},
		{common.SpecificityNotId, hover, `.X:not(#\#):hover{color:red}`},
		{common.SpecificityNotId, Leaf(String("red")), ".X{color:red}"},
	}
	for _, tt := range tests {
		t.Run(tt.mode.String()+" "+tt.want, func(t *testing.T) {
			r := compileOne(t, Options{Specificity: tt.mode}, "color", tt.node)[0]
			if want := ltr(r, tt.want); r.LTR != want {
				t.Errorf("LTR = %q, want %q", r.LTR, want)
			}
		})
	}
}

func TestCompileProperty_Deterministic(t *testing.T) {
	node := Conditional(
		Branch{Key: "default", Node: Leaf(String("red"))},
		Branch{Key: "@media (min-width: 10px)", Node: Conditional(Branch{Key: ":focus", Node: Leaf(String("blue"))})},
	)
	first := compileOne(t, Options{}, "color", node)
	second := compileOne(t, Options{Specificity: common.SpecificityLayers}, "color", node)

	for i := range first {
		if first[i].ClassName != second[i].ClassName {
			t.Errorf("rule %d: class %q != %q", i, first[i].ClassName, second[i].ClassName)
		}
	}

	// same semantic condition written in different order
	reordered := compileOne(t, Options{}, "color", Conditional(
		Branch{Key: ":focus", Node: Conditional(Branch{Key: "@media (min-width: 10px)", Node: Leaf(String("blue"))})},
	))
	if reordered[0].ClassName != first[1].ClassName {
		t.Errorf("class depends on nesting order: %q != %q", reordered[0].ClassName, first[1].ClassName)
	}
}

func TestFlatten(t *testing.T) {
	c := New(Options{}, nil, zaptest.NewLogger(t))
	entries, err := c.Flatten(Conditional(
		Branch{Key: "default", Node: Leaf(String("a"))},
		Branch{Key: "@media (x)", Node: Conditional(
			Branch{Key: "default", Node: Leaf(String("b"))},
			Branch{Key: ":hover", Node: Conditional(
				Branch{Key: "::after", Node: Leaf(String("c"))},
			)},
		)},
	))
	if err != nil {
		t.Fatalf("Flatten() error = %v", err)
	}

	want := []string{"", "@media (x)", "@media (x):hover::after"}
	if len(entries) != len(want) {
		t.Fatalf("got %d entries, want %d", len(entries), len(want))
	}
	for i, e := range entries {
		if got := e.Condition.Text(); got != want[i] {
			t.Errorf("entry %d condition = %q, want %q", i, got, want[i])
		}
	}
	if entries[2].Condition.Kind() != condition.Composite {
		t.Errorf("nested condition kind = %v", entries[2].Condition.Kind())
	}

	_, err = c.Flatten(Conditional(Branch{Key: "::before", Node: Conditional(
		Branch{Key: "::after", Node: Leaf(String("x"))},
	)}))
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Errorf("two pseudo-elements: error = %v, want ValidationError", err)
	}
}
