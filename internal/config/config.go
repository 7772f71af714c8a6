package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"task_manager/internal/logger"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	AppPort     string `yaml:"app_port"`
	DatabaseURL string `yaml:"database_url"`
	GinMode     string `yaml:"gin_mode"`

	LogLevel string `yaml:"log_level"`
	LogJSON  bool   `yaml:"log_json"`

	// Optional bearer auth on write routes; empty disables it
	JWTSecret string `yaml:"jwt_secret"`

	RedisAddr     string `yaml:"redis_addr"`
	RedisPassword string `yaml:"redis_password"`
	RedisDB       int    `yaml:"redis_db"`

	// Rate limits, 0 disables. Windows are in seconds.
	APIRateLimit    int `yaml:"api_rate_limit"`
	APIRateWindow   int `yaml:"api_rate_window_seconds"`
	WriteRateLimit  int `yaml:"write_rate_limit"`
	WriteRateWindow int `yaml:"write_rate_window_seconds"`
}

var ErrMissingDatabaseURL = errors.New("DATABASE_URL is not set")

// Defaults returns the configuration used when nothing overrides a value.
func Defaults() Config {
	return Config{
		AppPort:         "8080",
		GinMode:         "release",
		LogLevel:        "info",
		APIRateLimit:    120,
		APIRateWindow:   60,
		WriteRateLimit:  30,
		WriteRateWindow: 60,
	}
}

// Load reads .env, the optional TASKS_CONFIG_FILE yaml and the environment.
// A missing DATABASE_URL is fatal.
func Load() *Config {
	_ = godotenv.Load()

	cfg, err := Parse(os.Getenv)
	if err != nil {
		logger.Fatal("failed to load config", "error", err)
	}
	return cfg
}

// Parse builds a Config from defaults, then the yaml file named by
// TASKS_CONFIG_FILE, then individual environment variables.
func Parse(getenv func(string) string) (*Config, error) {
	cfg := Defaults()

	if path := getenv("TASKS_CONFIG_FILE"); path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return nil, err
		}
	}

	setString(getenv, "APP_PORT", &cfg.AppPort)
	setString(getenv, "DATABASE_URL", &cfg.DatabaseURL)
	setString(getenv, "GIN_MODE", &cfg.GinMode)
	setString(getenv, "LOG_LEVEL", &cfg.LogLevel)
	setBool(getenv, "LOG_JSON", &cfg.LogJSON)
	setString(getenv, "JWT_SECRET", &cfg.JWTSecret)
	setString(getenv, "REDIS_ADDR", &cfg.RedisAddr)
	setString(getenv, "REDIS_PASSWORD", &cfg.RedisPassword)
	setInt(getenv, "REDIS_DB", &cfg.RedisDB)
	setInt(getenv, "API_RATE_LIMIT", &cfg.APIRateLimit)
	setInt(getenv, "API_RATE_WINDOW_SECONDS", &cfg.APIRateWindow)
	setInt(getenv, "WRITE_RATE_LIMIT", &cfg.WriteRateLimit)
	setInt(getenv, "WRITE_RATE_WINDOW_SECONDS", &cfg.WriteRateWindow)

	if cfg.DatabaseURL == "" {
		return nil, ErrMissingDatabaseURL
	}
	if cfg.APIRateWindow <= 0 {
		cfg.APIRateWindow = 60
	}
	if cfg.WriteRateWindow <= 0 {
		cfg.WriteRateWindow = 60
	}
	return &cfg, nil
}

// AuthEnabled reports whether write routes require a bearer token.
func (c *Config) AuthEnabled() bool {
	return c.JWTSecret != ""
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func setString(getenv func(string) string, key string, dst *string) {
	if v := strings.TrimSpace(getenv(key)); v != "" {
		*dst = v
	}
}

// invalid numbers are ignored and the previous value kept
func setInt(getenv func(string) string, key string, dst *int) {
	if v := getenv(key); v != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && n >= 0 {
			*dst = n
		}
	}
}

func setBool(getenv func(string) string, key string, dst *bool) {
	if v := getenv(key); v != "" {
		if b, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
			*dst = b
		}
	}
}
