package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const testConfig = `
store:
  backend: sqlite
  path: /tmp/vk-test/contacts.db

import:
  max_file_size: 2048

rendering:
  images: text
  style: dark
  mask_sensitive: false

apps:
  email: default
  browser: firefox
  editor: vim

export:
  dir: ~/exports
`

func writeTestConfig(t *testing.T, dir, content string) {
	t.Helper()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	writeTestConfig(t, dir, testConfig)

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	checks := []struct{ field, got, want string }{
		{"Store.Backend", cfg.Store.Backend, "sqlite"},
		{"Store.Path", cfg.Store.Path, "/tmp/vk-test/contacts.db"},
		{"Rendering.Images", cfg.Rendering.Images, "text"},
		{"Rendering.Style", cfg.Rendering.Style, "dark"},
		{"Apps.Browser", cfg.Apps.Browser, "firefox"},
		{"Apps.Editor", cfg.Apps.Editor, "vim"},
		{"Export.Dir", cfg.Export.Dir, "~/exports"},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s: got %q, want %q", c.field, c.got, c.want)
		}
	}
	if cfg.Import.MaxFileSize != 2048 {
		t.Errorf("Import.MaxFileSize: got %d, want 2048", cfg.Import.MaxFileSize)
	}
	if cfg.Rendering.MaskSensitive {
		t.Error("Rendering.MaskSensitive: expected false from file")
	}
}

func TestLoadKeepsDefaultsForMissingKeys(t *testing.T) {
	dir := t.TempDir()
	writeTestConfig(t, dir, "apps:\n  editor: nano\n")

	cfg, err := Load(dir)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Store.Backend != "yaml" {
		t.Errorf("Store.Backend: got %q, want yaml", cfg.Store.Backend)
	}
	if cfg.Import.MaxFileSize != defaultMaxFileSize {
		t.Errorf("Import.MaxFileSize: got %d", cfg.Import.MaxFileSize)
	}
	if !cfg.Rendering.MaskSensitive {
		t.Error("Rendering.MaskSensitive should default to true")
	}
}

func TestLoadMissing(t *testing.T) {
	_, err := Load(t.TempDir())
	if err == nil {
		t.Error("expected error for missing config")
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	dir := t.TempDir()
	writeTestConfig(t, dir, "store: [unclosed")
	if _, err := Load(dir); err == nil || !strings.Contains(err.Error(), "parsing config") {
		t.Errorf("expected parse error, got %v", err)
	}
	if _, err := LoadOrDefault(dir); err == nil {
		t.Error("LoadOrDefault should not hide parse errors")
	}
}

func TestLoadOrDefault(t *testing.T) {
	cfg, err := LoadOrDefault(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Store.Backend != "yaml" || cfg.Rendering.Images != "auto" {
		t.Errorf("expected defaults, got %+v", cfg)
	}
}

func TestEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	writeTestConfig(t, dir, testConfig)

	t.Setenv("VAULTKEY_STORE_BACKEND", "yaml")
	t.Setenv("VAULTKEY_IMAGES", "inline")
	t.Setenv("VAULTKEY_DEBUG", "true")
	t.Setenv("VAULTKEY_IMPORT_MAX_FILE_SIZE", "99")
	t.Setenv("VAULTKEY_EDITOR", "code --wait")

	cfg, err := Load(dir)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Store.Backend != "yaml" {
		t.Errorf("Store.Backend: got %q, want yaml", cfg.Store.Backend)
	}
	if cfg.Store.Path != "/tmp/vk-test/contacts.db" {
		t.Errorf("Store.Path should keep the file value, got %q", cfg.Store.Path)
	}
	if cfg.Rendering.Images != "inline" {
		t.Errorf("Rendering.Images: got %q, want inline", cfg.Rendering.Images)
	}
	if !cfg.Debug {
		t.Error("Debug: expected true")
	}
	if cfg.Import.MaxFileSize != 99 {
		t.Errorf("Import.MaxFileSize: got %d, want 99", cfg.Import.MaxFileSize)
	}
	if cfg.Apps.Editor != "code --wait" {
		t.Errorf("Apps.Editor: got %q", cfg.Apps.Editor)
	}
}

func TestEnvOverrideBadValue(t *testing.T) {
	t.Setenv("VAULTKEY_IMPORT_MAX_FILE_SIZE", "lots")
	if _, err := LoadOrDefault(t.TempDir()); err == nil {
		t.Error("expected error for non-numeric size")
	}
}

func TestValidate(t *testing.T) {
	if err := Validate(Default()); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad backend", func(c *Config) { c.Store.Backend = "postgres" }},
		{"negative size", func(c *Config) { c.Import.MaxFileSize = -1 }},
		{"bad images", func(c *Config) { c.Rendering.Images = "sixel" }},
		{"bad style", func(c *Config) { c.Rendering.Style = "neon" }},
	}
	for _, tt := range tests {
		cfg := Default()
		tt.mutate(cfg)
		if err := Validate(cfg); err == nil {
			t.Errorf("%s: expected validation error", tt.name)
		}
	}
}

func TestValidateCaseInsensitive(t *testing.T) {
	cfg := Default()
	cfg.Store.Backend = "SQLite"
	cfg.Rendering.Images = "TEXT"
	if err := Validate(cfg); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "vaultkey")
	cfg := Default()
	cfg.Store.Backend = "sqlite"
	cfg.Apps.Browser = "lynx"
	cfg.Rendering.MaskSensitive = false

	if err := Save(dir, cfg); err != nil {
		t.Fatalf("Save: %v", err)
	}

	data, err := os.ReadFile(Path(dir))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), "# VaultKey configuration") {
		t.Errorf("missing header:\n%s", data)
	}

	got, err := Load(dir)
	if err != nil {
		t.Fatal(err)
	}
	if got.Store.Backend != "sqlite" || got.Apps.Browser != "lynx" || got.Rendering.MaskSensitive {
		t.Errorf("round trip: got %+v", got)
	}
}

func TestDir(t *testing.T) {
	want := filepath.Join(t.TempDir(), "data")
	t.Setenv("VAULTKEY_DIR", want)

	got, err := Dir()
	if err != nil {
		t.Fatal(err)
	}
	if got != want {
		t.Errorf("Dir: got %q, want %q", got, want)
	}
	if info, err := os.Stat(got); err != nil || !info.IsDir() {
		t.Errorf("expected directory to be created: %v", err)
	}
}
