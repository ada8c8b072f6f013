// Package config handles loading, validating, and resolving VaultKey
// configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// envPrefix namespaces every environment override.
const envPrefix = "VAULTKEY_"

// defaultMaxFileSize caps a single import file.
const defaultMaxFileSize = 10 * 1024 * 1024

// Config is the top-level VaultKey configuration loaded from config.yaml.
// Environment variables (VAULTKEY_*) override file values.
type Config struct {
	Store     StoreConfig     `yaml:"store" envPrefix:"STORE_"`
	Import    ImportConfig    `yaml:"import" envPrefix:"IMPORT_"`
	Rendering RenderingConfig `yaml:"rendering"`
	Apps      AppsConfig      `yaml:"apps"`
	Export    ExportConfig    `yaml:"export" envPrefix:"EXPORT_"`
	Debug     bool            `yaml:"debug,omitempty" env:"DEBUG"`
}

// StoreConfig selects the persistence backend.
type StoreConfig struct {
	Backend string `yaml:"backend" env:"BACKEND"`     // yaml | sqlite
	Path    string `yaml:"path,omitempty" env:"PATH"` // empty means the default under the data dir
}

// ImportConfig bounds import files.
type ImportConfig struct {
	MaxFileSize int64 `yaml:"max_file_size" env:"MAX_FILE_SIZE"` // bytes
}

// RenderingConfig defines terminal rendering behavior.
type RenderingConfig struct {
	Images        string `yaml:"images,omitempty" env:"IMAGES"` // auto | inline | text
	Style         string `yaml:"style,omitempty" env:"STYLE"`   // auto | dark | light | notty
	MaskSensitive bool   `yaml:"mask_sensitive" env:"MASK_SENSITIVE"`
}

// AppsConfig defines system app handoff targets.
type AppsConfig struct {
	Email   string `yaml:"email,omitempty" env:"EMAIL"`
	Browser string `yaml:"browser,omitempty" env:"BROWSER"`
	Editor  string `yaml:"editor,omitempty" env:"EDITOR"`
}

// ExportConfig defines where exports are written.
type ExportConfig struct {
	Dir string `yaml:"dir,omitempty" env:"DIR"` // empty means the current directory
}

// Default returns the configuration used when no config.yaml exists.
func Default() *Config {
	return &Config{
		Store:     StoreConfig{Backend: "yaml"},
		Import:    ImportConfig{MaxFileSize: defaultMaxFileSize},
		Rendering: RenderingConfig{Images: "auto", Style: "auto", MaskSensitive: true},
	}
}

// Dir returns the path to the VaultKey data directory (~/.vaultkey/),
// creating it if it doesn't exist. Override with VAULTKEY_DIR env var.
func Dir() (string, error) {
	dir := os.Getenv("VAULTKEY_DIR")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("determining home directory: %w", err)
		}
		dir = filepath.Join(home, ".vaultkey")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("creating vaultkey directory: %w", err)
	}
	return dir, nil
}

// Path returns the config.yaml location inside dataDir.
func Path(dataDir string) string {
	return filepath.Join(dataDir, "config.yaml")
}

// Load reads config.yaml from the data directory on top of the defaults,
// then applies environment overrides.
func Load(dataDir string) (*Config, error) {
	data, err := os.ReadFile(Path(dataDir))
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := ApplyEnv(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadOrDefault is Load, except a missing config.yaml yields the defaults
// with environment overrides applied.
func LoadOrDefault(dataDir string) (*Config, error) {
	cfg, err := Load(dataDir)
	if err == nil {
		return cfg, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}
	cfg = Default()
	if err := ApplyEnv(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overlays VAULTKEY_* environment variables onto cfg. Unset
// variables leave the existing values alone.
func ApplyEnv(cfg *Config) error {
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: envPrefix}); err != nil {
		return fmt.Errorf("parsing environment: %w", err)
	}
	return nil
}

// Save marshals the config to YAML and writes it to config.yaml in the data
// directory. Creates the directory if it doesn't exist.
func Save(dataDir string, cfg *Config) error {
	if err := os.MkdirAll(dataDir, 0o700); err != nil {
		return fmt.Errorf("creating vaultkey directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	header := "# VaultKey configuration\n# Edit this file directly or regenerate with: vk config --init\n\n"
	return os.WriteFile(Path(dataDir), []byte(header+string(data)), 0o600)
}

// Validate checks internal consistency of the config.
func Validate(cfg *Config) error {
	switch strings.ToLower(cfg.Store.Backend) {
	case "yaml", "sqlite", "":
		// valid
	default:
		return fmt.Errorf("invalid store.backend value %q (want yaml or sqlite)", cfg.Store.Backend)
	}

	if cfg.Import.MaxFileSize < 0 {
		return fmt.Errorf("import.max_file_size must not be negative, got %d", cfg.Import.MaxFileSize)
	}

	if cfg.Rendering.Images != "" {
		switch strings.ToLower(cfg.Rendering.Images) {
		case "auto", "inline", "text":
			// valid
		default:
			return fmt.Errorf("invalid rendering.images value %q", cfg.Rendering.Images)
		}
	}

	if cfg.Rendering.Style != "" {
		switch strings.ToLower(cfg.Rendering.Style) {
		case "auto", "dark", "light", "notty":
			// valid
		default:
			return fmt.Errorf("invalid rendering.style value %q", cfg.Rendering.Style)
		}
	}

	return nil
}
