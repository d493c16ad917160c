package manifest

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"go.uber.org/zap/zaptest"
)

func openManifest(t *testing.T, path string) *FileStore[Manifest] {
	t.Helper()
	s, err := OpenFile[Manifest](path, SchemaVersion, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("OpenFile() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestFileStore_ReadAbsent(t *testing.T) {
	s := openManifest(t, filepath.Join(t.TempDir(), "nested", "manifest.ion"))

	m, err := s.Read()
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if !m.IsEmpty() {
		t.Errorf("Read() of absent store = %+v, want empty", m)
	}
}

func TestFileStore_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "manifest.ion")
	s := openManifest(t, path)

	mod := testModule("app/button", "f1", "root", "label")
	got, err := s.Update(func(m *Manifest) error {
		m.Apply(mod)
		return nil
	})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if len(got.RuleSets) != 2 {
		t.Fatalf("Update() returned %d rule sets", len(got.RuleSets))
	}

	// fresh handle reads persisted data
	other := openManifest(t, path)
	m, err := other.Read()
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	rs, ok := m.RuleSet("app/button", "label")
	if !ok {
		t.Fatalf("rule set not persisted: %+v", m)
	}
	if rs.Rules[0].LTR != ".x{color:f1}" || rs.Seq != 2 {
		t.Errorf("persisted rule set = %+v", rs)
	}
	if fp, _ := m.Fingerprint("app/button"); fp != "f1" {
		t.Errorf("Fingerprint() = %q", fp)
	}
	if m.Seq != 3 {
		t.Errorf("Seq = %d, want 3", m.Seq)
	}
}

func TestFileStore_CorruptDataResets(t *testing.T) {
	tests := []struct {
		name  string
		setup func(t *testing.T, path string)
	}{
		{"garbage", func(t *testing.T, path string) {
			if err := os.WriteFile(path, []byte("definitely not ion \x00\xff"), 0644); err != nil {
				t.Fatal(err)
			}
		}},
		{"version mismatch", func(t *testing.T, path string) {
			old, err := OpenFile[Manifest](path, SchemaVersion+1, zaptest.NewLogger(t))
			if err != nil {
				t.Fatal(err)
			}
			defer old.Close()
			if err := old.Write(Manifest{Seq: 42, Modules: []ModuleEntry{{ID: "x"}}}); err != nil {
				t.Fatal(err)
			}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "manifest.ion")
			tt.setup(t, path)

			s := openManifest(t, path)
			m, err := s.Read()
			if err != nil {
				t.Fatalf("Read() error = %v, corrupt data must not fail", err)
			}
			if !m.IsEmpty() || m.Seq != 0 {
				t.Errorf("Read() = %+v, want empty", m)
			}

			// update starts from scratch as well
			m, err = s.Update(func(m *Manifest) error {
				m.Apply(testModule("a", "f", "root"))
				return nil
			})
			if err != nil {
				t.Fatalf("Update() error = %v", err)
			}
			if len(m.Modules) != 1 {
				t.Errorf("Update() = %+v", m)
			}
		})
	}
}

func TestFileStore_UpdateError(t *testing.T) {
	s := openManifest(t, filepath.Join(t.TempDir(), "manifest.ion"))
	boom := errors.New("boom")

	if _, err := s.Update(func(m *Manifest) error {
		m.Apply(testModule("a", "f", "root"))
		return boom
	}); !errors.Is(err, boom) {
		t.Fatalf("Update() error = %v, want %v", err, boom)
	}
	m, _ := s.Read()
	if !m.IsEmpty() {
		t.Error("failed update was persisted")
	}
}

func TestFileStore_ConcurrentUpdates(t *testing.T) {
	const writers = 20

	t.Run("separate handles", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "manifest.ion")

		var wg sync.WaitGroup
		errs := make(chan error, writers)
		for i := range writers {
			wg.Add(1)
			go func() {
				defer wg.Done()
				s, err := OpenFile[Manifest](path, SchemaVersion, nil)
				if err != nil {
					errs <- err
					return
				}
				defer s.Close()
				_, err = s.Update(func(m *Manifest) error {
					m.Apply(testModule(fmt.Sprintf("module-%d", i), "f", "root"))
					return nil
				})
				errs <- err
			}()
		}
		wg.Wait()
		close(errs)
		for err := range errs {
			if err != nil {
				t.Fatalf("Update() error = %v", err)
			}
		}

		m, err := openManifest(t, path).Read()
		if err != nil {
			t.Fatalf("Read() error = %v", err)
		}
		assertModules(t, m, writers)
	})

	t.Run("shared handle", func(t *testing.T) {
		s := openManifest(t, filepath.Join(t.TempDir(), "manifest.ion"))

		var wg sync.WaitGroup
		for i := range writers {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if _, err := s.Update(func(m *Manifest) error {
					m.Apply(testModule(fmt.Sprintf("module-%d", i), "f", "root"))
					return nil
				}); err != nil {
					t.Errorf("Update() error = %v", err)
				}
			}()
		}
		wg.Wait()

		m, err := s.Read()
		if err != nil {
			t.Fatalf("Read() error = %v", err)
		}
		assertModules(t, m, writers)
	})
}

func assertModules(t *testing.T, m Manifest, n int) {
	t.Helper()
	seen := make(map[string]bool)
	for _, e := range m.Modules {
		seen[e.ID] = true
	}
	if len(seen) != n {
		t.Fatalf("got %d distinct modules, want %d", len(seen), n)
	}
	for i := range n {
		if !seen[fmt.Sprintf("module-%d", i)] {
			t.Errorf("module-%d lost", i)
		}
	}
}

func TestFileStore_ResetAndClose(t *testing.T) {
	path := filepath.Join(t.TempDir(), "manifest.ion")
	s := openManifest(t, path)

	if err := s.Write(Manifest{Seq: 1, Modules: []ModuleEntry{{ID: "a", Fingerprint: "f"}}}); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if err := s.Reset(); err != nil {
		t.Fatalf("Reset() error = %v", err)
	}
	if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("data file exists after reset: %v", err)
	}
	if err := s.Reset(); err != nil {
		t.Errorf("Reset() of absent store error = %v", err)
	}

	if err := s.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if _, err := s.Read(); !errors.Is(err, ErrClosed) {
		t.Errorf("Read() after close error = %v, want ErrClosed", err)
	}
	if _, err := s.Update(func(*Manifest) error { return nil }); !errors.Is(err, ErrClosed) {
		t.Errorf("Update() after close error = %v, want ErrClosed", err)
	}
}
