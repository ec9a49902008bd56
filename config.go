package texlet

import (
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the .texlet.yaml configuration file.
type Config struct {
	// Default math renderer for previews ("html" or "unicode")
	Renderer string `yaml:"renderer,omitempty"`

	// Delay in milliseconds between the last edit and the re-render
	DebounceMS int `yaml:"debounce_ms,omitempty"`

	// Terminal preview theme ("color" or "plain")
	Theme string `yaml:"theme,omitempty"`

	// Serve config for the preview server
	Serve ServeConfig `yaml:"serve,omitempty"`

	// Per-pattern renderer overrides (glob pattern -> renderer name)
	// e.g., "notes/*.tex": "unicode"
	Files map[string]string `yaml:"files,omitempty"`

	// dir is the directory the config file was loaded from. Relative
	// patterns in Files match against paths relative to it.
	dir string
}

// ServeConfig holds settings for the serve command.
type ServeConfig struct {
	// Listen address (e.g., ":6060")
	Addr string `yaml:"addr,omitempty"`
}

// Defaults applied when the corresponding config field is unset.
const (
	DefaultRenderer   = "html"
	DefaultDebounceMS = 400
	DefaultAddr       = ":6060"
	DefaultTheme      = "color"
)

// DefaultConfigNames are the filenames we search for.
var DefaultConfigNames = []string{".texlet.yaml", ".texlet.yml", "texlet.yaml", "texlet.yml"}

// ErrConfigNotFound is returned when no config file exists between the
// starting directory and the filesystem root.
var ErrConfigNotFound = errors.New("config file not found")

// LoadConfig finds and loads the nearest .texlet.yaml walking up from dir.
func LoadConfig(dir string) (*Config, error) {
	path, err := FindConfig(dir)
	if err != nil {
		return nil, err
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

// LoadConfigFile loads a config from a specific path.
func LoadConfigFile(path string) (*Config, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, err
	}

	var cfg Config

	err = yaml.Unmarshal(data, &cfg)
	if err != nil {
		return nil, err
	}

	if abs, err := filepath.Abs(path); err == nil {
		cfg.dir = filepath.Dir(abs)
	}

	return &cfg, nil
}

// RendererFor returns the renderer name for a given file path. Patterns
// match the path as given, the path relative to the config file, and the
// bare file name, so "notes/*.tex" applies to absolute paths under the
// config directory and "*.tex" applies everywhere. Overlapping patterns
// resolve in lexical order.
func (c *Config) RendererFor(filePath string) string {
	candidates := []string{filePath, filepath.Base(filePath)}

	if c.dir != "" {
		if rel, err := filepath.Rel(c.dir, filePath); err == nil && !strings.HasPrefix(rel, "..") {
			candidates = append(candidates, rel)
		}
	}

	patterns := make([]string, 0, len(c.Files))
	for pattern := range c.Files {
		patterns = append(patterns, pattern)
	}

	sort.Strings(patterns)

	for _, pattern := range patterns {
		for _, candidate := range candidates {
			if matched, _ := filepath.Match(pattern, candidate); matched {
				return c.Files[pattern]
			}
		}
	}

	if c.Renderer != "" {
		return c.Renderer
	}

	return DefaultRenderer
}

// PreviewTheme returns the terminal preview theme name.
func (c *Config) PreviewTheme() string {
	if c.Theme != "" {
		return c.Theme
	}

	return DefaultTheme
}

// Debounce returns the edit-to-render delay.
func (c *Config) Debounce() time.Duration {
	ms := c.DebounceMS
	if ms <= 0 {
		ms = DefaultDebounceMS
	}

	return time.Duration(ms) * time.Millisecond
}

// ListenAddr returns the preview server's listen address.
func (c *Config) ListenAddr() string {
	if c.Serve.Addr != "" {
		return c.Serve.Addr
	}

	return DefaultAddr
}
