package naming

import (
	"regexp"
	"testing"
)

var ident = regexp.MustCompile(`^[a-z][0-9a-z]{7}$`)

func TestHash(t *testing.T) {
	a := Hash(KindClass, "color", "red", "", "")
	if a != Hash(KindClass, "color", "red", "", "") {
		t.Error("Hash() is not deterministic")
	}
	if !ident.MatchString(a) || a[0] != KindClass {
		t.Errorf("Hash() = %q is not a prefixed fixed width ident", a)
	}
	if Hash(KindClass, "a", "bc") == Hash(KindClass, "ab", "c") {
		t.Error("parts boundaries are not hashed")
	}
	if Hash(KindClass, "x") == Hash(KindClass, "y") {
		t.Error("different input produced the same hash")
	}
	if Hash(KindClass, "x")[1:] == Hash(KindKeyframes, "x")[1:] {
		t.Error("kind is not part of hashed input")
	}
	// composed and decomposed forms of the same text are the same name
	if Hash(KindVar, "caf\u00e9") != Hash(KindVar, "cafe\u0301") {
		t.Error("input is not NFC normalized")
	}
}

func TestClass(t *testing.T) {
	base := Class("color", "red", "", nil)
	for name, other := range map[string]string{
		"value":    Class("color", "blue", "", nil),
		"property": Class("background", "red", "", nil),
		"suffix":   Class("color", "red", ":hover", nil),
		"at-rule":  Class("color", "red", "", []string{"@media print"}),
	} {
		if other == base {
			t.Errorf("%s does not affect class name", name)
		}
	}
	if Class("color", "red", ":hover", []string{"@media a", "@media b"}) !=
		Class("color", "red", ":hover", []string{"@media a", "@media b"}) {
		t.Error("Class() is not deterministic")
	}
}

func TestIdentifiers(t *testing.T) {
	tests := []struct {
		name   string
		got    string
		prefix string
	}{
		{"var", Var("app", "colors", "fg"), "--v"},
		{"param", Param("app", "sized", "w"), "--v"},
		{"keyframes", Keyframes("app", "fade"), "k"},
		{"position-try", PositionTry("app", "below"), "--p"},
		{"view-transition", ViewTransition("app", "slide"), "t"},
		{"marker", Marker("app", "card"), "m"},
		{"theme", Theme("app", "dark"), "h"},
	}
	for _, tt := range tests {
		if len(tt.got) < len(tt.prefix) || tt.got[:len(tt.prefix)] != tt.prefix {
			t.Errorf("%s = %q, want prefix %q", tt.name, tt.got, tt.prefix)
		}
	}
	if Var("app", "sized", "w") == Param("app", "sized", "w") {
		t.Error("parameter collides with variable")
	}
	if Marker("a", "card") == Marker("b", "card") {
		t.Error("marker is not module scoped")
	}
	if Qualified("app/button", "root") != "app/button.root" {
		t.Errorf("Qualified() = %q", Qualified("app/button", "root"))
	}
}

func TestFingerprint(t *testing.T) {
	a := Fingerprint([]string{"one", "two", "three"})
	if a != Fingerprint([]string{"three", "one", "two"}) {
		t.Error("Fingerprint() depends on order")
	}
	if a == Fingerprint([]string{"one", "two"}) {
		t.Error("Fingerprint() ignores contributions")
	}
	if len(a) != 64 {
		t.Errorf("Fingerprint() = %q, want hex sha256", a)
	}
}
