package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

type testConfig struct {
	Name  string   `toml:"name"`
	Limit int      `toml:"limit"`
	Tags  []string `toml:"tags"`
}

func (c *testConfig) Validate() error {
	if c.Limit < 0 {
		return errors.New("limit must not be negative")
	}
	return nil
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
}

func TestLoadTOML_MissingFileReturnsDefaults(t *testing.T) {
	defaults := &testConfig{Name: "default", Limit: 3}
	got, err := LoadTOML(filepath.Join(t.TempDir(), "absent.toml"), defaults)
	if err != nil {
		t.Fatalf("LoadTOML: %v", err)
	}
	if got != defaults {
		t.Errorf("LoadTOML(missing) = %+v, want defaults", got)
	}
}

func TestLoadTOML_OverlaysDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "c.toml")
	writeFile(t, path, "limit = 7\n")

	defaults := &testConfig{Name: "default", Limit: 3}
	got, err := LoadTOML(path, defaults)
	if err != nil {
		t.Fatalf("LoadTOML: %v", err)
	}
	if got.Name != "default" || got.Limit != 7 {
		t.Errorf("LoadTOML = %+v, want Name=default Limit=7", got)
	}
	if defaults.Limit != 3 {
		t.Errorf("defaults mutated: Limit = %d", defaults.Limit)
	}
}

func TestDecodeTOML_Errors(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		wantErr error
	}{
		{"syntax", "limit = ", nil},
		{"unknown key", "limt = 1\n", ErrUnknownKeys},
		{"validation", "limit = -1\n", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeTOML(tt.data, &testConfig{})
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestDecodeTOML_NilDefaults(t *testing.T) {
	got, err := DecodeTOML[testConfig]("name = \"x\"\ntags = [\"a\", \"b\"]\n", nil)
	if err != nil {
		t.Fatalf("DecodeTOML: %v", err)
	}
	if got.Name != "x" || len(got.Tags) != 2 {
		t.Errorf("DecodeTOML = %+v", got)
	}
}

func TestStore_SwapNotifiesInOrder(t *testing.T) {
	s := NewStore(&testConfig{Limit: 1})

	var (
		calls []string
		seen  [][2]int
	)
	s.OnChange(func(old, new_ *testConfig) {
		calls = append(calls, "first")
		seen = append(seen, [2]int{old.Limit, new_.Limit})
	})
	remove := s.OnChange(func(_, _ *testConfig) { calls = append(calls, "second") })

	next := &testConfig{Limit: 2}
	if old := s.Swap(next); old.Limit != 1 {
		t.Errorf("Swap returned Limit=%d, want 1", old.Limit)
	}
	if s.Get() != next {
		t.Error("Get did not return swapped value")
	}
	if len(calls) != 2 || calls[0] != "first" || calls[1] != "second" {
		t.Errorf("calls = %v, want [first second]", calls)
	}
	if len(seen) != 1 || seen[0] != [2]int{1, 2} {
		t.Errorf("listener saw %v, want [[1 2]]", seen)
	}

	calls = nil
	s.Swap(next)
	if len(calls) != 0 {
		t.Errorf("swapping the same pointer notified %v", calls)
	}

	remove()
	remove()
	calls = nil
	s.Swap(&testConfig{Limit: 3})
	if len(calls) != 1 || calls[0] != "first" {
		t.Errorf("calls after remove = %v, want [first]", calls)
	}
	if len(seen) != 2 || seen[1] != [2]int{2, 3} {
		t.Errorf("listener saw %v, want second swap 2 -> 3", seen)
	}
}

func TestFileBridge_HandleChange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "c.toml")
	defaults := &testConfig{Name: "default"}
	s := NewStore(defaults)
	b := NewFileBridge(s, path, defaults)

	if b.Path() != path {
		t.Errorf("Path() = %q, want %q", b.Path(), path)
	}

	writeFile(t, path, "name = \"loaded\"\n")
	if err := b.HandleChange(); err != nil {
		t.Fatalf("HandleChange: %v", err)
	}
	if got := s.Get().Name; got != "loaded" {
		t.Errorf("Name = %q, want loaded", got)
	}

	writeFile(t, path, "bogus = 1\n")
	if err := b.HandleChange(); !errors.Is(err, ErrUnknownKeys) {
		t.Errorf("HandleChange error = %v, want ErrUnknownKeys", err)
	}
	if got := s.Get().Name; got != "loaded" {
		t.Errorf("Name after failed reload = %q, want loaded", got)
	}
}

func TestWatcher_ReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "c.toml")

	reloaded := make(chan struct{}, 8)
	w, err := NewWatcher(path, func() { reloaded <- struct{}{} }, WithDebounce(10*time.Millisecond))
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	defer w.Close()

	writeFile(t, filepath.Join(dir, "other.toml"), "x = 1\n")
	writeFile(t, path, "limit = 1\n")

	select {
	case <-reloaded:
	case <-time.After(2 * time.Second):
		t.Fatal("no reload after writing the watched file")
	}
}
