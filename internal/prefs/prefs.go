// Package prefs persists simulator preferences in
// ~/.config/inkframe/prefs.toml.
package prefs

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/five82/inkframe/internal/fsutil"
)

// Prefs holds what the simulator remembers between runs.
type Prefs struct {
	Theme string `toml:"theme"`
	// ShowLog toggles the device log pane under the preview.
	ShowLog bool `toml:"show_log"`
	// LogLines is the height of the log pane.
	LogLines int `toml:"log_lines"`
}

const (
	defaultPrefsPath = "~/.config/inkframe/prefs.toml"
	defaultTheme     = "Nightfox"
	defaultLogLines  = 8
	maxLogLines      = 200
)

// Default returns the preferences used when none are stored.
func Default() Prefs {
	return Prefs{Theme: defaultTheme, ShowLog: true, LogLines: defaultLogLines}
}

// DefaultPath returns the default preferences file path.
func DefaultPath() string {
	return defaultPrefsPath
}

// Load reads preferences from the given path. Missing or unreadable files
// fall back to defaults; preferences are never worth failing over.
func Load(path string) (Prefs, error) {
	prefs := Default()
	resolved, err := resolvePath(path)
	if err != nil {
		return prefs, nil
	}

	bytes, err := os.ReadFile(resolved)
	if err != nil {
		return prefs, nil
	}
	if err := toml.Unmarshal(bytes, &prefs); err != nil {
		return Default(), nil
	}
	return prefs.normalized(), nil
}

func (p Prefs) normalized() Prefs {
	p.Theme = strings.TrimSpace(p.Theme)
	if p.Theme == "" {
		p.Theme = defaultTheme
	}
	if p.LogLines <= 0 {
		p.LogLines = defaultLogLines
	}
	if p.LogLines > maxLogLines {
		p.LogLines = maxLogLines
	}
	return p
}

// Save writes preferences to the given path, creating directories as needed.
func Save(path string, p Prefs) error {
	resolved, err := resolvePath(path)
	if err != nil {
		return fmt.Errorf("resolve path: %w", err)
	}

	bytes, err := toml.Marshal(p.normalized())
	if err != nil {
		return fmt.Errorf("marshal prefs: %w", err)
	}
	if err := fsutil.WriteFileAtomic(resolved, bytes, 0o644); err != nil {
		return fmt.Errorf("write prefs: %w", err)
	}
	return nil
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultPrefsPath)
	}
	return expandPath(path)
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
