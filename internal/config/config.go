package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

// Config stores runtime configuration for the client.
type Config struct {
	Endpoint EndpointConfig `toml:"endpoint"`
	Camera   CameraConfig   `toml:"camera"`
	Shop     ShopConfig     `toml:"shop"`
	Results  ResultsConfig  `toml:"results"`
}

type EndpointConfig struct {
	URL       string `toml:"url"`
	FieldName string `toml:"field_name"`
}

type CameraConfig struct {
	Command     string `toml:"command"`
	Device      string `toml:"device"`
	InputFormat string `toml:"input_format"`
	Width       int    `toml:"width"`
	Height      int    `toml:"height"`
	FrameRate   int    `toml:"framerate"`
}

type ShopConfig struct {
	FallbackURL string `toml:"fallback_url"`
}

type ResultsConfig struct {
	RedirectDelayMS int `toml:"redirect_delay_ms"`
}

// RedirectDelay returns the configured redirect delay.
func (r ResultsConfig) RedirectDelay() time.Duration {
	return time.Duration(r.RedirectDelayMS) * time.Millisecond
}

func defaults() Config {
	return Config{
		Endpoint: EndpointConfig{
			URL:       "http://localhost:5000/upload",
			FieldName: "image",
		},
		Camera: CameraConfig{
			Command:     "ffmpeg",
			Device:      "/dev/video0",
			InputFormat: "v4l2",
			Width:       1280,
			Height:      720,
			FrameRate:   15,
		},
		Shop: ShopConfig{
			FallbackURL: "https://www.shopbiolinkdepot.org",
		},
		Results: ResultsConfig{
			RedirectDelayMS: 2000,
		},
	}
}

// Load resolves configuration from an optional TOML file, a .env file, and
// environment variables, in increasing order of precedence.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := defaults()

	path, err := configPath()
	if err != nil {
		return Config{}, err
	}
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := toml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("invalid config file %s: %w", path, err)
			}
		case errors.Is(err, fs.ErrNotExist):
		default:
			return Config{}, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	cfg.Endpoint.URL = envOrDefault("DEPOTSCAN_ENDPOINT_URL", cfg.Endpoint.URL)
	cfg.Endpoint.FieldName = envOrDefault("DEPOTSCAN_UPLOAD_FIELD", cfg.Endpoint.FieldName)
	cfg.Camera.Command = envOrDefault("DEPOTSCAN_FFMPEG_COMMAND", cfg.Camera.Command)
	cfg.Camera.Device = envOrDefault("DEPOTSCAN_CAMERA_DEVICE", cfg.Camera.Device)
	cfg.Camera.InputFormat = envOrDefault("DEPOTSCAN_CAMERA_INPUT_FORMAT", cfg.Camera.InputFormat)
	cfg.Camera.Width = envOrDefaultInt("DEPOTSCAN_CAMERA_WIDTH", cfg.Camera.Width)
	cfg.Camera.Height = envOrDefaultInt("DEPOTSCAN_CAMERA_HEIGHT", cfg.Camera.Height)
	cfg.Camera.FrameRate = envOrDefaultInt("DEPOTSCAN_CAMERA_FRAMERATE", cfg.Camera.FrameRate)
	cfg.Shop.FallbackURL = envOrDefault("DEPOTSCAN_SHOP_URL", cfg.Shop.FallbackURL)
	cfg.Results.RedirectDelayMS = envOrDefaultInt("DEPOTSCAN_REDIRECT_DELAY_MS", cfg.Results.RedirectDelayMS)

	if strings.TrimSpace(cfg.Endpoint.URL) == "" {
		return Config{}, errors.New("identification endpoint URL is not configured")
	}
	if cfg.Camera.Width <= 0 || cfg.Camera.Height <= 0 {
		cfg.Camera.Width, cfg.Camera.Height = 1280, 720
	}
	if cfg.Camera.FrameRate <= 0 {
		cfg.Camera.FrameRate = 15
	}
	if cfg.Results.RedirectDelayMS < 0 {
		cfg.Results.RedirectDelayMS = 2000
	}

	return cfg, nil
}

func configPath() (string, error) {
	if path := strings.TrimSpace(os.Getenv("DEPOTSCAN_CONFIG")); path != "" {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.New("could not determine home directory")
	}
	return filepath.Join(home, ".config", "depotscan", "config.toml"), nil
}

func envOrDefault(key string, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}

func envOrDefaultInt(key string, fallback int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}
