package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("DEPOTSCAN_CONFIG", "")
	t.Setenv("DEPOTSCAN_ENDPOINT_URL", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Endpoint.URL != "http://localhost:5000/upload" {
		t.Fatalf("unexpected endpoint: %q", cfg.Endpoint.URL)
	}
	if cfg.Endpoint.FieldName != "image" {
		t.Fatalf("unexpected field name: %q", cfg.Endpoint.FieldName)
	}
	if cfg.Camera.Width != 1280 || cfg.Camera.Height != 720 {
		t.Fatalf("unexpected camera size: %dx%d", cfg.Camera.Width, cfg.Camera.Height)
	}
	if cfg.Shop.FallbackURL != "https://www.shopbiolinkdepot.org" {
		t.Fatalf("unexpected shop url: %q", cfg.Shop.FallbackURL)
	}
	if cfg.Results.RedirectDelayMS != 2000 {
		t.Fatalf("unexpected redirect delay: %d", cfg.Results.RedirectDelayMS)
	}
}

func TestLoadReadsConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	contents := `
[endpoint]
url = "https://depot.example/upload"

[camera]
device = "/dev/video2"
width = 640
height = 480

[results]
redirect_delay_ms = 500
`
	if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	t.Setenv("HOME", dir)
	t.Setenv("DEPOTSCAN_CONFIG", path)
	t.Setenv("DEPOTSCAN_ENDPOINT_URL", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Endpoint.URL != "https://depot.example/upload" {
		t.Fatalf("unexpected endpoint: %q", cfg.Endpoint.URL)
	}
	if cfg.Camera.Device != "/dev/video2" || cfg.Camera.Width != 640 {
		t.Fatalf("unexpected camera config: %+v", cfg.Camera)
	}
	if cfg.Results.RedirectDelayMS != 500 {
		t.Fatalf("unexpected redirect delay: %d", cfg.Results.RedirectDelayMS)
	}
	// Untouched sections keep their defaults.
	if cfg.Shop.FallbackURL != "https://www.shopbiolinkdepot.org" {
		t.Fatalf("unexpected shop url: %q", cfg.Shop.FallbackURL)
	}
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte("[endpoint]\nurl = \"https://file.example/upload\"\n"), 0o600); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	t.Setenv("HOME", dir)
	t.Setenv("DEPOTSCAN_CONFIG", path)
	t.Setenv("DEPOTSCAN_ENDPOINT_URL", "https://env.example/upload")
	t.Setenv("DEPOTSCAN_CAMERA_FRAMERATE", "30")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Endpoint.URL != "https://env.example/upload" {
		t.Fatalf("env should override the file, got %q", cfg.Endpoint.URL)
	}
	if cfg.Camera.FrameRate != 30 {
		t.Fatalf("unexpected framerate: %d", cfg.Camera.FrameRate)
	}
}

func TestLoadRejectsInvalidConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte("not valid toml ["), 0o600); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	t.Setenv("HOME", dir)
	t.Setenv("DEPOTSCAN_CONFIG", path)

	if _, err := Load(); err == nil {
		t.Fatalf("expected error for invalid config file")
	}
}

func TestLoadMissingConfigFileIsFine(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("DEPOTSCAN_CONFIG", filepath.Join(dir, "missing.toml"))
	t.Setenv("DEPOTSCAN_ENDPOINT_URL", "")

	if _, err := Load(); err != nil {
		t.Fatalf("missing config file should fall back to defaults: %v", err)
	}
}

func TestEnvOrDefaultHelpers(t *testing.T) {
	t.Setenv("DEPOTSCAN_TEST_STR", "  value  ")
	if got := envOrDefault("DEPOTSCAN_TEST_STR", "fallback"); got != "value" {
		t.Fatalf("unexpected value: %q", got)
	}
	if got := envOrDefault("DEPOTSCAN_TEST_UNSET", "fallback"); got != "fallback" {
		t.Fatalf("unexpected fallback: %q", got)
	}

	t.Setenv("DEPOTSCAN_TEST_INT", "17")
	if got := envOrDefaultInt("DEPOTSCAN_TEST_INT", 3); got != 17 {
		t.Fatalf("unexpected int: %d", got)
	}
	t.Setenv("DEPOTSCAN_TEST_INT", "garbage")
	if got := envOrDefaultInt("DEPOTSCAN_TEST_INT", 3); got != 3 {
		t.Fatalf("unexpected int fallback: %d", got)
	}
}
