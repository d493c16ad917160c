package build

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"acss/compiler"
	"acss/config"
	"acss/manifest"
	"acss/naming"
	"acss/state"
)

const (
	baseModule = `
module: theme/base
vars:
  colors:
    fg: black
    bg: white
keyframes:
  fade:
    from: {opacity: 0}
    to: {opacity: 1}
`
	buttonModule = `
module: app/button
classes:
  root:
    color: {ref: "theme/base:vars.colors.fg"}
    animation-name: {ref: "theme/base:keyframes.fade"}
  plain:
    margin: 0
`
	brokenModule = `
module: app/broken
classes:
  root:
    color: {ref: "theme/base:vars.colors.missing"}
`
)

// setupTestEnv creates environment with stores in temporary directory.
func setupTestEnv(t *testing.T) (context.Context, *state.LocalEnv) {
	t.Helper()
	cfg, err := config.LoadConfiguration("")
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	dir := t.TempDir()
	cfg.Store.Manifest = filepath.Join(dir, "store", "manifest.ion")
	cfg.Store.Usage = filepath.Join(dir, "store", "usage.ion")
	cfg.Output.HeaderTemplate = ""

	ctx := state.ContextWithEnv(context.Background())
	env := state.EnvFromContext(ctx)
	env.Log = zaptest.NewLogger(t, zaptest.WrapOptions(zap.AddCaller()))
	env.Cfg = cfg
	if err := env.OpenStores(); err != nil {
		t.Fatalf("open stores: %v", err)
	}
	t.Cleanup(func() {
		if err := env.CloseStores(); err != nil {
			t.Errorf("close stores: %v", err)
		}
	})
	return ctx, env
}

func writeFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
}

func writeZip(t *testing.T, path string, files map[string]string) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	w := zip.NewWriter(f)
	for name, content := range files {
		fw, err := w.Create(name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := fw.Write([]byte(content)); err != nil {
			t.Fatal(err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
}

func origins(units []unit) []string {
	out := make([]string, 0, len(units))
	for _, u := range units {
		out = append(out, u.origin)
	}
	return out
}

func TestDiscover(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"src/mod10.yaml":    "module: m10",
		"src/mod2.yml":      "module: m2",
		"src/notes.txt":     "not a module",
		"src/nested/a.YAML": "module: a",
	})
	// archive with misleading name is still found by content
	writeZip(t, filepath.Join(dir, "src", "packed.bin"), map[string]string{
		"inner/x.yaml": "module: x",
		"readme.md":    "skip",
	})
	writeZip(t, filepath.Join(dir, "bundle.zip"), map[string]string{
		"app/one.yaml":     "module: one",
		"app/two.yaml":     "module: two",
		"other/three.yaml": "module: three",
	})

	log := zaptest.NewLogger(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		inputs []string
		want   []string
	}{
		{
			name:   "directory",
			inputs: []string{filepath.Join(dir, "src")},
			want: []string{
				filepath.Join(dir, "src", "mod2.yml"),
				filepath.Join(dir, "src", "mod10.yaml"),
				filepath.Join(dir, "src", "nested", "a.YAML"),
				filepath.Join(dir, "src", "packed.bin") + "/inner/x.yaml",
			},
		},
		{
			name:   "single file",
			inputs: []string{filepath.Join(dir, "src", "mod2.yml")},
			want:   []string{filepath.Join(dir, "src", "mod2.yml")},
		},
		{
			name:   "archive",
			inputs: []string{filepath.Join(dir, "bundle.zip")},
			want: []string{
				filepath.Join(dir, "bundle.zip") + "/app/one.yaml",
				filepath.Join(dir, "bundle.zip") + "/app/two.yaml",
				filepath.Join(dir, "bundle.zip") + "/other/three.yaml",
			},
		},
		{
			name:   "path inside archive",
			inputs: []string{filepath.Join(dir, "bundle.zip", "app")},
			want: []string{
				filepath.Join(dir, "bundle.zip") + "/app/one.yaml",
				filepath.Join(dir, "bundle.zip") + "/app/two.yaml",
			},
		},
		{
			name:   "duplicates",
			inputs: []string{filepath.Join(dir, "src", "mod2.yml"), filepath.Join(dir, "src", "mod2.yml")},
			want:   []string{filepath.Join(dir, "src", "mod2.yml")},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			units, err := discover(ctx, tt.inputs, log)
			if err != nil {
				t.Fatalf("discover() error = %v", err)
			}
			if got := origins(units); !slices.Equal(got, tt.want) {
				t.Errorf("discover() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDiscover_Errors(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"notes.txt": "text", "mod.yaml": "module: m"})
	log := zaptest.NewLogger(t)

	tests := []struct {
		name  string
		input string
	}{
		{"absent", filepath.Join(dir, "absent", "mod.yaml")},
		{"not a module", filepath.Join(dir, "notes.txt")},
		{"tail after module", filepath.Join(dir, "mod.yaml", "inner")},
		{"tail after directory", filepath.Join(dir, "missing.yaml")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := discover(context.Background(), []string{tt.input}, log); err == nil {
				t.Error("expected error")
			}
		})
	}

	t.Run("cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		if _, err := discover(ctx, []string{dir}, log); !errors.Is(err, context.Canceled) {
			t.Errorf("discover() error = %v, want context.Canceled", err)
		}
	})
}

func TestCompileUnits(t *testing.T) {
	ctx, env := setupTestEnv(t)
	log := zaptest.NewLogger(t)

	// app/button comes first and depends on theme/base
	units := []unit{
		{origin: "button.yaml", data: []byte(buttonModule)},
		{origin: "base.yaml", data: []byte(baseModule)},
	}
	results, err := compileUnits(ctx, env, units, log)
	if err != nil {
		t.Fatalf("compileUnits() error = %v", err)
	}
	if len(results) != 2 || results[0].Module != "theme/base" || results[1].Module != "app/button" {
		t.Fatalf("compileUnits() = %+v", results)
	}
	for _, r := range results {
		if r.State != manifest.Compiled {
			t.Errorf("%s state = %s, want compiled", r.Module, r.State)
		}
	}

	// same sources again change nothing
	results, err = compileUnits(ctx, env, units, log)
	if err != nil {
		t.Fatalf("second compileUnits() error = %v", err)
	}
	for _, r := range results {
		if r.State != manifest.Unchanged {
			t.Errorf("%s state = %s, want unchanged", r.Module, r.State)
		}
	}

	m, err := env.Manifest.Read()
	if err != nil {
		t.Fatal(err)
	}
	rs, ok := m.RuleSet("app/button", "root")
	if !ok {
		t.Fatal("app/button root was not stored")
	}
	fg := naming.Var("theme/base", "colors", "fg")
	found := false
	for _, r := range rs.Rules {
		if strings.Contains(r.LTR, "var("+fg+")") {
			found = true
		}
	}
	if !found {
		t.Errorf("cross module reference not resolved: %+v", rs.Rules)
	}
}

func TestCompileUnits_Failures(t *testing.T) {
	ctx, env := setupTestEnv(t)
	log := zaptest.NewLogger(t)

	units := []unit{
		{origin: "base.yaml", data: []byte(baseModule)},
		{origin: "broken.yaml", data: []byte(brokenModule)},
		{origin: "garbage.yaml", data: []byte("module: [")},
		{origin: "button.yaml", data: []byte(buttonModule)},
	}
	results, err := compileUnits(ctx, env, units, log)
	if err == nil {
		t.Fatal("expected error")
	}
	if len(results) != 2 {
		t.Errorf("compileUnits() stored %d modules, want 2", len(results))
	}
	errs := err.Error()
	if !strings.Contains(errs, "broken.yaml") || !strings.Contains(errs, "garbage.yaml") {
		t.Errorf("error does not name failed sources: %v", err)
	}
	var re *compiler.ReferenceError
	if !errors.As(err, &re) {
		t.Errorf("reference error is lost: %v", err)
	}
}

func TestRecordAndCollect(t *testing.T) {
	ctx, env := setupTestEnv(t)
	log := zaptest.NewLogger(t)

	units := []unit{
		{origin: "base.yaml", data: []byte(baseModule)},
		{origin: "button.yaml", data: []byte(buttonModule)},
	}
	if _, err := compileUnits(ctx, env, units, log); err != nil {
		t.Fatalf("compileUnits() error = %v", err)
	}

	var empty bytes.Buffer
	if _, err := writeStylesheet(env, &empty); err != nil {
		t.Fatalf("writeStylesheet() error = %v", err)
	}
	if empty.Len() != 0 {
		t.Errorf("nothing used, stylesheet must be empty: %q", empty.String())
	}

	if err := record(env, "app/button", "missing"); err == nil {
		t.Error("expected error for unknown artifact")
	}
	if err := record(env, "app/button", "root"); err != nil {
		t.Fatalf("record() error = %v", err)
	}

	var buf bytes.Buffer
	n, err := writeStylesheet(env, &buf)
	if err != nil {
		t.Fatalf("writeStylesheet() error = %v", err)
	}
	css := buf.String()
	// used rule set plus its dependencies, unused class is shaken off
	if n != 4 {
		t.Errorf("writeStylesheet() wrote %d items, want 4:\n%s", n, css)
	}
	for _, want := range []string{":root{", "@keyframes", "color:var("} {
		if !strings.Contains(css, want) {
			t.Errorf("stylesheet does not contain %q:\n%s", want, css)
		}
	}
	if strings.Contains(css, "margin:0") {
		t.Errorf("unused rule set is in stylesheet:\n%s", css)
	}

	var list bytes.Buffer
	if err := listModules(env, &list); err != nil {
		t.Fatalf("listModules() error = %v", err)
	}
	lines := strings.Split(strings.TrimSpace(list.String()), "\n")
	if len(lines) != 3 || !strings.HasPrefix(lines[1], "app/button") || !strings.HasPrefix(lines[2], "theme/base") {
		t.Errorf("listModules() =\n%s", list.String())
	}
	if f := strings.Fields(lines[1]); f[len(f)-1] != "1" {
		t.Errorf("app/button used count = %s, want 1", f[len(f)-1])
	}

	if err := reset(env, false); err != nil {
		t.Fatalf("reset() error = %v", err)
	}
	if u, _ := env.Usage.Read(); u.Len() != 1 {
		t.Errorf("usage was reset without asking")
	}
	if err := reset(env, true); err != nil {
		t.Fatalf("reset() error = %v", err)
	}
	m, _ := env.Manifest.Read()
	u, _ := env.Usage.Read()
	if !m.IsEmpty() || u.Len() != 0 {
		t.Errorf("reset() left data: %d modules, %d usage records", len(m.Modules), u.Len())
	}
}

func TestCommands(t *testing.T) {
	ctx, env := setupTestEnv(t)
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"base.yaml": baseModule, "button.yaml": buttonModule})

	var out bytes.Buffer
	app := &cli.Command{
		Name:   "acss",
		Writer: &out,
		Commands: []*cli.Command{
			{Name: "compile", Action: Compile},
			{Name: "use", Action: Use},
			{Name: "collect", Action: Collect},
			{Name: "list", Action: List},
			{Name: "reset", Action: Reset, Flags: []cli.Flag{&cli.BoolFlag{Name: "usage"}}},
		},
	}
	run := func(args ...string) error {
		return app.Run(ctx, append([]string{"acss"}, args...))
	}

	if err := run("compile"); err == nil {
		t.Error("compile without sources must fail")
	}
	if err := run("compile", dir); err != nil {
		t.Fatalf("compile error = %v", err)
	}
	if err := run("use", "app/button"); err == nil {
		t.Error("use without names must fail")
	}
	if err := run("use", "app/button", "plain"); err != nil {
		t.Fatalf("use error = %v", err)
	}

	dst := filepath.Join(dir, "out", "styles.css")
	if err := run("collect", dst); err != nil {
		t.Fatalf("collect error = %v", err)
	}
	data, err := os.ReadFile(dst)
	if err != nil {
		t.Fatalf("stylesheet was not written: %v", err)
	}
	if !strings.Contains(string(data), "margin:0") {
		t.Errorf("collected stylesheet = %q", data)
	}

	out.Reset()
	if err := run("collect"); err != nil {
		t.Fatalf("collect to stdout error = %v", err)
	}
	if out.String() != string(data) {
		t.Errorf("stdout stylesheet = %q, want %q", out.String(), data)
	}

	out.Reset()
	if err := run("list"); err != nil {
		t.Fatalf("list error = %v", err)
	}
	if !strings.Contains(out.String(), "theme/base") {
		t.Errorf("list output = %q", out.String())
	}

	if err := run("reset", "--usage"); err != nil {
		t.Fatalf("reset error = %v", err)
	}
	if u, _ := env.Usage.Read(); u.Len() != 0 {
		t.Error("usage was not reset")
	}
}
