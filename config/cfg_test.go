package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"acss/common"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "acss.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}
	return path
}

func TestLoadConfiguration_NoFile(t *testing.T) {
	cfg, err := LoadConfiguration("")
	if err != nil {
		t.Fatalf("LoadConfiguration() with empty path error = %v", err)
	}
	if cfg.Version != 1 {
		t.Errorf("Default config version = %d, want 1", cfg.Version)
	}
	if cfg.Compiler.Specificity != common.SpecificityDouble {
		t.Errorf("Specificity = %s, want double", cfg.Compiler.Specificity)
	}
	if cfg.Compiler.RTLSelector != `[dir="rtl"]` {
		t.Errorf("RTLSelector = %q", cfg.Compiler.RTLSelector)
	}
	if cfg.Store.UsageBackend != common.UsageBackendFile {
		t.Errorf("UsageBackend = %s, want file", cfg.Store.UsageBackend)
	}
	if !strings.Contains(cfg.Output.HeaderTemplate, "{{ .Rules }}") {
		t.Errorf("header template was expanded at load time: %q", cfg.Output.HeaderTemplate)
	}
}

func TestLoadConfiguration_WithFile(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, `version: 1
compiler:
  specificity: layers
  debug_class_names: true
store:
  manifest: `+filepath.Join(dir, "m", "..", "manifest.ion")+`
  usage_backend: sqlite
logging:
  console:
    level: none
`)

	cfg, err := LoadConfiguration(path)
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}
	if cfg.Compiler.Specificity != common.SpecificityLayers {
		t.Errorf("Specificity = %s, want layers", cfg.Compiler.Specificity)
	}
	if !cfg.Compiler.DebugClassNames {
		t.Error("Expected DebugClassNames to be true")
	}
	// values absent from the file come from the template
	if cfg.Compiler.RTLSelector != `[dir="rtl"]` {
		t.Errorf("RTLSelector = %q, want default", cfg.Compiler.RTLSelector)
	}
	if want := filepath.Join(dir, "manifest.ion"); cfg.Store.Manifest != want {
		t.Errorf("Manifest = %q, want cleaned %q", cfg.Store.Manifest, want)
	}
	if cfg.Store.UsageBackend != common.UsageBackendSqlite {
		t.Errorf("UsageBackend = %s, want sqlite", cfg.Store.UsageBackend)
	}

	opts := cfg.Compiler.CompilerOptions()
	if opts.Specificity != common.SpecificityLayers || !opts.DebugClassNames || opts.RTLSelector != cfg.Compiler.RTLSelector {
		t.Errorf("CompilerOptions() = %+v", opts)
	}
	if co := cfg.CollectOptions(); co.Header != cfg.Output.HeaderTemplate || !co.Specificity.UsesLayers() {
		t.Errorf("CollectOptions() = %+v", co)
	}
}

func TestLoadConfiguration_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"invalid yaml", "version: 1\ncompiler:\n  specificity: double\n invalid indent\n"},
		{"unknown field", "version: 1\nunknown_field: value\n"},
		{"unknown nested field", "version: 1\ncompiler:\n  strategy: double\n"},
		{"bad version", "version: 2\n"},
		{"bad specificity", "version: 1\ncompiler:\n  specificity: triple\n"},
		{"bad backend", "version: 1\nstore:\n  usage_backend: redis\n"},
		{"empty rtl selector", "version: 1\ncompiler:\n  rtl_selector: ''\n"},
		{"bad log level", "version: 1\nlogging:\n  console:\n    level: loud\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := LoadConfiguration(writeConfig(t, tt.content)); err == nil {
				t.Error("Expected error")
			}
		})
	}

	t.Run("nonexistent file", func(t *testing.T) {
		if _, err := LoadConfiguration(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
			t.Error("Expected error for nonexistent file")
		}
	})
}

func TestPrepare(t *testing.T) {
	data, err := Prepare()
	if err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}
	if len(data) == 0 {
		t.Fatal("Prepare() returned empty data")
	}
	if _, err := unmarshalConfig(data, &Config{}, true); err != nil {
		t.Errorf("Prepared config is not valid: %v", err)
	}
}

func TestDump(t *testing.T) {
	cfg, err := LoadConfiguration("")
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}
	cfg.Compiler.Specificity = common.SpecificityNotId

	data, err := Dump(cfg)
	if err != nil {
		t.Fatalf("Dump() error = %v", err)
	}
	if !strings.Contains(string(data), "specificity: not-id") {
		t.Errorf("Dump() does not use enum names:\n%s", data)
	}

	back, err := unmarshalConfig(data, &Config{}, true)
	if err != nil {
		t.Fatalf("Dumped config cannot be loaded: %v", err)
	}
	if back.Compiler != cfg.Compiler || back.Store != cfg.Store || back.Output != cfg.Output {
		t.Errorf("Dump/load mismatch:\n got %+v\nwant %+v", back, cfg)
	}
}

func TestOpenUsage(t *testing.T) {
	for _, backend := range common.UsageBackendValues() {
		t.Run(backend.String(), func(t *testing.T) {
			conf := StoreConfig{Usage: filepath.Join(t.TempDir(), "usage"), UsageBackend: backend}
			s, err := conf.OpenUsage(nil)
			if err != nil {
				t.Fatalf("OpenUsage() error = %v", err)
			}
			if err := s.Close(); err != nil {
				t.Errorf("Close() error = %v", err)
			}
		})
	}
}
