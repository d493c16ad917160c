package state

import (
	"context"
	"log"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"

	"acss/common"
	"acss/config"
	"acss/manifest"
	"acss/resolve"
	"acss/source"
)

func testEnv(t *testing.T, backend common.UsageBackend) *LocalEnv {
	t.Helper()
	cfg, err := config.LoadConfiguration("")
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}
	dir := t.TempDir()
	cfg.Store.Manifest = filepath.Join(dir, "manifest.ion")
	cfg.Store.Usage = filepath.Join(dir, "usage")
	cfg.Store.UsageBackend = backend
	cfg.Output.HeaderTemplate = ""

	env := EnvFromContext(ContextWithEnv(context.Background()))
	env.Cfg = cfg
	env.Log = zaptest.NewLogger(t)
	return env
}

func TestEnvFromContext(t *testing.T) {
	t.Run("valid context", func(t *testing.T) {
		env := EnvFromContext(ContextWithEnv(context.Background()))
		if env == nil {
			t.Fatal("Expected non-nil environment")
		}
		if env.start.IsZero() {
			t.Error("Environment start time not set")
		}
	})

	t.Run("panic on missing env", func(t *testing.T) {
		defer func() {
			if r := recover(); r == nil {
				t.Error("Expected panic when env not in context")
			}
		}()
		EnvFromContext(context.Background())
	})
}

func TestLocalEnv_Uptime(t *testing.T) {
	env := EnvFromContext(ContextWithEnv(context.Background()))
	time.Sleep(10 * time.Millisecond)
	if uptime := env.Uptime(); uptime < 10*time.Millisecond {
		t.Errorf("Uptime() = %v, expected at least 10ms", uptime)
	}
}

func TestLocalEnv_RedirectStdLog(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	env := &LocalEnv{Log: zap.New(core)}

	env.RedirectStdLog()
	log.Print("through zap")
	env.RestoreStdLog()
	log.Print("not through zap")

	if logs.Len() != 1 || logs.All()[0].Message != "through zap" {
		t.Errorf("unexpected redirected entries: %v", logs.All())
	}

	// nothing to redirect or restore
	empty := &LocalEnv{}
	empty.RedirectStdLog()
	empty.RestoreStdLog()
}

func TestLocalEnv_Stores(t *testing.T) {
	for _, backend := range common.UsageBackendValues() {
		t.Run(backend.String(), func(t *testing.T) {
			env := testEnv(t, backend)
			if err := env.OpenStores(); err != nil {
				t.Fatalf("OpenStores() error = %v", err)
			}
			m := env.Manifest
			if err := env.OpenStores(); err != nil {
				t.Fatalf("second OpenStores() error = %v", err)
			}
			if env.Manifest != m {
				t.Error("OpenStores() reopened manifest")
			}

			src, err := source.Parse([]byte(`
module: app/env
classes:
  box:
    color: red
    padding: 4px
`))
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			snapshot, err := env.Manifest.Read()
			if err != nil {
				t.Fatalf("Read() error = %v", err)
			}
			mod, err := env.Compiler(&snapshot).Compile(src)
			if err != nil {
				t.Fatalf("Compile() error = %v", err)
			}
			if _, err := env.Manifest.Update(func(m *manifest.Manifest) error {
				if m.Apply(mod) == manifest.Unchanged {
					return manifest.ErrNoChange
				}
				return nil
			}); err != nil {
				t.Fatalf("Update() error = %v", err)
			}

			got, err := env.Resolver().GetCSS(resolve.Static("app/env", "box"))
			if err != nil {
				t.Fatalf("GetCSS() error = %v", err)
			}
			if len(strings.Fields(got.Class)) != 2 {
				t.Errorf("GetCSS() class = %q, want two atomic classes", got.Class)
			}

			mf, err := env.Manifest.Read()
			if err != nil {
				t.Fatal(err)
			}
			usage, err := env.Usage.Read()
			if err != nil {
				t.Fatal(err)
			}
			sheet, err := env.Collector().Stylesheet(&mf, &usage)
			if err != nil {
				t.Fatalf("Stylesheet() error = %v", err)
			}
			if text := sheet.String(); !strings.Contains(text, "color:red") || !strings.Contains(text, "padding:4px") {
				t.Errorf("Stylesheet() = %q", text)
			}

			if err := env.CloseStores(); err != nil {
				t.Fatalf("CloseStores() error = %v", err)
			}
			if env.Manifest != nil || env.Usage != nil {
				t.Error("CloseStores() kept stores")
			}
			if err := env.CloseStores(); err != nil {
				t.Errorf("second CloseStores() error = %v", err)
			}
		})
	}
}
