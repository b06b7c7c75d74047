package promptsort

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/viper"
)

// settingsLevels is how many cascade levels the settings file carries.
const settingsLevels = 5

// LevelSetting is one cascade level as stored on disk. Prompt holds the
// raw "cat|dog|tree" keyword field.
type LevelSetting struct {
	Enabled bool   `mapstructure:"enabled" json:"enabled"`
	Prompt  string `mapstructure:"prompt" json:"prompt"`
}

// TrackingSetting configures the full-tree tracking mode.
type TrackingSetting struct {
	Enabled bool   `mapstructure:"enabled" json:"enabled"`
	Prompt  string `mapstructure:"prompt" json:"prompt"`
}

// DestinationSetting configures the single custom destination folder.
type DestinationSetting struct {
	Enabled bool   `mapstructure:"enabled" json:"enabled"`
	Path    string `mapstructure:"path" json:"path"`
}

// Settings is the persisted classification setup.
type Settings struct {
	SourceDirectory string             `mapstructure:"source_directory" json:"source_directory"`
	RenameImages    bool               `mapstructure:"rename_images" json:"rename_images"`
	PromptLevels    []LevelSetting     `mapstructure:"prompt_levels" json:"prompt_levels"`
	FullTracking    TrackingSetting    `mapstructure:"full_tracking" json:"full_tracking"`
	CustomDest      DestinationSetting `mapstructure:"custom_destination" json:"custom_destination"`
}

// DefaultSettings returns the initial setup: five empty levels with only
// the first one enabled.
func DefaultSettings() Settings {
	s := Settings{
		PromptLevels: make([]LevelSetting, settingsLevels),
	}
	s.PromptLevels[0].Enabled = true
	return s
}

// normalize pads or trims PromptLevels to the fixed level count.
func (s *Settings) normalize() {
	for len(s.PromptLevels) < settingsLevels {
		s.PromptLevels = append(s.PromptLevels, LevelSetting{})
	}
	s.PromptLevels = s.PromptLevels[:settingsLevels]
}

// Plan converts the stored settings into a runnable classification plan.
func (s *Settings) Plan() Plan {
	p := Plan{
		SourceDir:    s.SourceDirectory,
		RenameImages: s.RenameImages,
	}
	for _, lv := range s.PromptLevels {
		p.Levels = append(p.Levels, Level{Enabled: lv.Enabled, Keywords: ParseKeywords(lv.Prompt)})
	}
	if s.FullTracking.Enabled {
		p.FullTracking = true
		p.TrackingKeywords = ParseKeywords(s.FullTracking.Prompt)
	}
	if s.CustomDest.Enabled {
		p.CustomDest = s.CustomDest.Path
	}
	return p
}

// Store reads and writes settings and named presets under one directory:
// settings.json at the root, presets as presets/<name>.json.
type Store struct {
	dir string
}

// NewStore returns a store rooted at dir. The directory is created lazily
// on first write.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

func (st *Store) settingsPath() string { return filepath.Join(st.dir, "settings.json") }

func (st *Store) presetsDir() string { return filepath.Join(st.dir, "presets") }

// Load reads the stored settings. A missing or unreadable file yields the
// defaults, so first runs work without setup.
func (st *Store) Load() Settings {
	return st.readFile(st.settingsPath())
}

// Save validates and writes the settings file.
func (st *Store) Save(s Settings) error {
	if err := os.MkdirAll(st.dir, 0o755); err != nil {
		return err
	}
	s.normalize()
	return writeSettingsFile(st.settingsPath(), s)
}

// ListPresets returns the saved preset names, sorted.
func (st *Store) ListPresets() []string {
	entries, err := os.ReadDir(st.presetsDir())
	if err != nil {
		return nil
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), ".json"))
	}
	sort.Strings(names)
	return names
}

// SavePreset stores s under name.
func (st *Store) SavePreset(name string, s Settings) error {
	path, err := st.presetPath(name)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(st.presetsDir(), 0o755); err != nil {
		return err
	}
	s.normalize()
	return writeSettingsFile(path, s)
}

// LoadPreset reads the preset stored under name.
func (st *Store) LoadPreset(name string) (Settings, error) {
	path, err := st.presetPath(name)
	if err != nil {
		return DefaultSettings(), err
	}
	if _, err := os.Stat(path); err != nil {
		return DefaultSettings(), fmt.Errorf("preset %q not found", name)
	}
	return st.readFile(path), nil
}

// DeletePreset removes the preset stored under name.
func (st *Store) DeletePreset(name string) error {
	path, err := st.presetPath(name)
	if err != nil {
		return err
	}
	return os.Remove(path)
}

func (st *Store) presetPath(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" || strings.ContainsAny(name, `/\`) {
		return "", fmt.Errorf("invalid preset name %q", name)
	}
	return filepath.Join(st.presetsDir(), name+".json"), nil
}

// readFile loads one settings file on top of the defaults, so fields a
// stale or hand-edited file lacks keep their default values.
func (st *Store) readFile(path string) Settings {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("json")

	if err := v.ReadInConfig(); err != nil {
		slog.Debug("promptsort: settings not read, using defaults", "path", path, "error", err.Error())
		return DefaultSettings()
	}

	s := DefaultSettings()
	if err := v.Unmarshal(&s); err != nil {
		slog.Warn("promptsort: settings malformed, using defaults", "path", path, "error", err.Error())
		return DefaultSettings()
	}
	s.normalize()
	return s
}

// writeSettingsFile persists s through viper. The nested structs carry
// json tags matching their mapstructure names, so the written file reads
// back into the same shape.
func writeSettingsFile(path string, s Settings) error {
	v := viper.New()
	v.Set("source_directory", s.SourceDirectory)
	v.Set("rename_images", s.RenameImages)
	v.Set("prompt_levels", s.PromptLevels)
	v.Set("full_tracking", s.FullTracking)
	v.Set("custom_destination", s.CustomDest)
	return v.WriteConfigAs(path)
}
