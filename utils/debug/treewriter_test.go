package debug

import (
	"testing"
)

func TestTreeWriter(t *testing.T) {
	tw := NewTreeWriter()
	tw.Line(0, "Modules: %d", 2)
	tw.Line(1, "Module %q", "app/button")
	tw.Field(2, "ltr", ".x{color:red}")
	tw.Field(2, "rtl", "")
	tw.Field(2, "text", "a\nb")

	want := "Modules: 2\n" +
		"  Module \"app/button\"\n" +
		"    ltr: \".x{color:red}\"\n" +
		"    text: \"a\\nb\"\n"
	if got := tw.String(); got != want {
		t.Errorf("String() =\n%s\nwant\n%s", got, want)
	}
}

func TestTreeWriter_Empty(t *testing.T) {
	if got := NewTreeWriter().String(); got != "" {
		t.Errorf("String() = %q, want empty", got)
	}
}
