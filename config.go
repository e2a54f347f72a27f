package pegls

import (
	"errors"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// ErrConfigNotFound is returned when no config file exists in a directory or
// any of its parents.
var ErrConfigNotFound = errors.New("config file not found")

// Default setting values.
const (
	DefaultConsoleInfo = false
	DefaultMarkInfo    = true
	DefaultDebounceMS  = 200
)

// Settings controls how diagnostics are reported. It is read from a
// .pegls.yaml file and from the editor's peggyLanguageServer section.
type Settings struct {
	// ConsoleInfo echoes informational messages without a location to the
	// client's log.
	ConsoleInfo bool `json:"consoleInfo" yaml:"consoleInfo"`

	// MarkInfo publishes informational messages that have a location as
	// diagnostics.
	MarkInfo bool `json:"markInfo" yaml:"markInfo"`

	// DebounceMS is how long to wait after the last edit before validating.
	DebounceMS int `json:"debounceMS" yaml:"debounceMS"`
}

// DefaultSettings returns the built-in settings.
func DefaultSettings() Settings {
	return Settings{
		ConsoleInfo: DefaultConsoleInfo,
		MarkInfo:    DefaultMarkInfo,
		DebounceMS:  DefaultDebounceMS,
	}
}

// Debounce returns DebounceMS as a duration. Negative values count as zero.
func (s Settings) Debounce() time.Duration {
	if s.DebounceMS < 0 {
		return 0
	}

	return time.Duration(s.DebounceMS) * time.Millisecond
}

// DefaultConfigNames are the filenames we search for.
var DefaultConfigNames = []string{".pegls.yaml", ".pegls.yml", "pegls.yaml", "pegls.yml"}

// LoadConfig finds and loads the nearest config file walking up from dir.
func LoadConfig(dir string) (Settings, error) {
	path, err := FindConfig(dir)
	if err != nil {
		return DefaultSettings(), err
	}

	return LoadConfigFile(path)
}

// FindConfig searches for a config file starting from dir and walking up.
func FindConfig(dir string) (string, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}

	for dir := absDir; ; {
		for _, name := range DefaultConfigNames {
			path := filepath.Join(dir, name)

			_, err := os.Stat(path)
			if err == nil {
				return path, nil
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", ErrConfigNotFound
		}

		dir = parent
	}
}

// LoadConfigFile loads settings from a specific path. Keys missing from the
// file keep their default values.
func LoadConfigFile(path string) (Settings, error) {
	cfg := DefaultSettings()

	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return cfg, err
	}

	err = yaml.Unmarshal(data, &cfg)
	if err != nil {
		return DefaultSettings(), err
	}

	return cfg, nil
}
