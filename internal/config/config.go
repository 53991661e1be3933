package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/joho/godotenv"
)

// DefaultTileURL is the OpenStreetMap raster tile template
const DefaultTileURL = "https://{s}.tile.openstreetmap.org/{z}/{x}/{y}.png"

// Config holds environment-driven settings for the dashboard server.
type Config struct {
	APIBaseURL     string        `yaml:"api_base_url"`
	DatabaseURL    string        `yaml:"database_url"`
	Port           string        `yaml:"port"`
	Env            string        `yaml:"env"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	BackendRPS     float64       `yaml:"backend_rps"`
	BackendBurst   int           `yaml:"backend_burst"`
	SessionTTL     time.Duration `yaml:"session_ttl"`
	TileURL        string        `yaml:"tile_url"`
}

// Default returns the built-in configuration
func Default() Config {
	return Config{
		APIBaseURL:     "http://127.0.0.1:5000",
		Port:           "8080",
		Env:            "development",
		RequestTimeout: 10 * time.Second,
		BackendRPS:     5,
		BackendBurst:   10,
		SessionTTL:     30 * time.Minute,
		TileURL:        DefaultTileURL,
	}
}

// Load reads configuration from .env, an optional YAML file named by
// SPDASH_CONFIG, and finally environment variables.
func Load() (Config, error) {
	_ = godotenv.Load() // ignore missing file

	cfg := Default()

	if path := os.Getenv("SPDASH_CONFIG"); path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return cfg, err
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: failed to read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("config: failed to parse %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) error {
	cfg.APIBaseURL = getEnv("API_BASE_URL", cfg.APIBaseURL)
	cfg.DatabaseURL = getEnv("DATABASE_URL", cfg.DatabaseURL)
	cfg.Port = getEnv("PORT", cfg.Port)
	cfg.Env = getEnv("GO_ENV", cfg.Env)
	cfg.TileURL = getEnv("TILE_URL", cfg.TileURL)

	if v := os.Getenv("REQUEST_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return fmt.Errorf("invalid REQUEST_TIMEOUT: %s", v)
		}
		cfg.RequestTimeout = d
	}

	if v := os.Getenv("SESSION_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return fmt.Errorf("invalid SESSION_TTL: %s", v)
		}
		cfg.SessionTTL = d
	}

	if v := os.Getenv("BACKEND_RPS"); v != "" {
		rps, err := strconv.ParseFloat(v, 64)
		if err != nil || rps <= 0 {
			return fmt.Errorf("invalid BACKEND_RPS: %s", v)
		}
		cfg.BackendRPS = rps
	}

	if v := os.Getenv("BACKEND_BURST"); v != "" {
		burst, err := strconv.Atoi(v)
		if err != nil || burst <= 0 {
			return fmt.Errorf("invalid BACKEND_BURST: %s", v)
		}
		cfg.BackendBurst = burst
	}

	if _, err := strconv.Atoi(cfg.Port); err != nil {
		return fmt.Errorf("invalid PORT: %s", cfg.Port)
	}
	return nil
}

// ListenAddr returns the host:port string for the HTTP server.
func (c Config) ListenAddr() string {
	return ":" + c.Port
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
