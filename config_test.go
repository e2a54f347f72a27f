package pegls_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/rlch/pegls"
)

func TestLoadConfig(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	nested := filepath.Join(root, "grammars", "json")

	if err := os.MkdirAll(nested, 0o750); err != nil {
		t.Fatal(err)
	}

	config := "markInfo: false\ndebounceMS: 50\n"
	if err := os.WriteFile(filepath.Join(root, ".pegls.yaml"), []byte(config), 0o600); err != nil {
		t.Fatal(err)
	}

	path, err := pegls.FindConfig(nested)
	if err != nil {
		t.Fatalf("FindConfig() error: %v", err)
	}

	if filepath.Base(path) != ".pegls.yaml" {
		t.Errorf("FindConfig() = %q", path)
	}

	got, err := pegls.LoadConfig(nested)
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}

	want := pegls.Settings{ConsoleInfo: false, MarkInfo: false, DebounceMS: 50}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("LoadConfig() mismatch (-want +got):\n%s", diff)
	}

	if got.Debounce() != 50*time.Millisecond {
		t.Errorf("Debounce() = %v", got.Debounce())
	}
}

func TestLoadConfig_NotFound(t *testing.T) {
	t.Parallel()

	got, err := pegls.LoadConfig(t.TempDir())
	if !errors.Is(err, pegls.ErrConfigNotFound) {
		// A config file in a parent of the temp dir would be found instead.
		t.Skipf("LoadConfig() error = %v", err)
	}

	if diff := cmp.Diff(pegls.DefaultSettings(), got); diff != "" {
		t.Errorf("settings mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadConfigFile_Invalid(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), ".pegls.yaml")
	if err := os.WriteFile(path, []byte("debounceMS: [oops"), 0o600); err != nil {
		t.Fatal(err)
	}

	_, err := pegls.LoadConfigFile(path)
	if err == nil {
		t.Fatal("LoadConfigFile() succeeded on invalid YAML")
	}
}

func TestSettings_Debounce(t *testing.T) {
	t.Parallel()

	if got := (pegls.Settings{DebounceMS: -5}).Debounce(); got != 0 {
		t.Errorf("negative debounce = %v, want 0", got)
	}

	if got := pegls.DefaultSettings().Debounce(); got != 200*time.Millisecond {
		t.Errorf("default debounce = %v", got)
	}
}
