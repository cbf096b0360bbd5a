// Package config provides application configuration.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/joho/godotenv"
)

const (
	StoreMemory = "memory"
	StoreRedis  = "redis"

	DefaultCompletionBaseURL = "https://api.cometapi.com/v1"
	DefaultCompletionModel   = "kimi-k2-thinking"
)

type Config struct {
	Port string

	PDFCoAPIKey  string
	PDFCoBaseURL string

	Completion CompletionConfig

	SessionStore  string
	Redis         RedisConfig
	SessionTTL    time.Duration
	LogLevel      slog.Level
	MaxUploadSize int64
}

type CompletionConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// fileConfig is the optional JSON config file. Environment variables win
// over it.
type fileConfig struct {
	APIKey  string `json:"api_key"`
	BaseURL string `json:"base_url"`
	Model   string `json:"model"`
}

// Load reads the optional JSON file at path, then .env, then the
// environment. A missing file or .env is not an error.
func Load(path string) (*Config, error) {
	var file fileConfig
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			slog.Debug("config file not found, using environment", "path", path)
		case err != nil:
			return nil, fmt.Errorf("read config file: %w", err)
		default:
			if err := sonic.Unmarshal(data, &file); err != nil {
				return nil, fmt.Errorf("decode config file %s: %w", path, err)
			}
		}
	}

	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file found, using environment variables")
	}

	cfg := &Config{
		Port:         getEnv("PORT", "3000"),
		PDFCoAPIKey:  getEnv("PDF_CO_API_KEY", ""),
		PDFCoBaseURL: getEnv("PDF_CO_BASE_URL", ""),
		Completion: CompletionConfig{
			APIKey:  getEnv("COMETAPI_KEY", file.APIKey),
			BaseURL: getEnv("COMPLETION_BASE_URL", orDefault(file.BaseURL, DefaultCompletionBaseURL)),
			Model:   getEnv("COMPLETION_MODEL", orDefault(file.Model, DefaultCompletionModel)),
			Timeout: getEnvDuration("COMPLETION_TIMEOUT", 15*time.Second),
		},
		SessionStore: strings.ToLower(getEnv("SESSION_STORE", StoreMemory)),
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		SessionTTL:    getEnvDuration("SESSION_TTL", 0),
		LogLevel:      getEnvLevel("LOG_LEVEL", slog.LevelInfo),
		MaxUploadSize: 25 << 20,
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks that all required configuration fields are set.
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT cannot be empty")
	}
	switch c.SessionStore {
	case StoreMemory:
	case StoreRedis:
		if c.Redis.Addr == "" {
			return fmt.Errorf("REDIS_ADDR cannot be empty when SESSION_STORE=redis")
		}
	default:
		return fmt.Errorf("SESSION_STORE must be %q or %q, got %q", StoreMemory, StoreRedis, c.SessionStore)
	}
	if c.Completion.Timeout <= 0 {
		return fmt.Errorf("COMPLETION_TIMEOUT must be > 0")
	}
	if c.SessionTTL < 0 {
		return fmt.Errorf("SESSION_TTL must be >= 0")
	}
	return nil
}

// DemoDocuments reports whether the document service runs on canned data.
func (c *Config) DemoDocuments() bool {
	return isDemoKey(c.PDFCoAPIKey)
}

// CompletionEnabled reports whether a text-generation key is configured.
func (c *Config) CompletionEnabled() bool {
	return !isDemoKey(c.Completion.APIKey)
}

func isDemoKey(key string) bool {
	return strings.TrimSpace(key) == "" || strings.Contains(key, "DEMO")
}

func orDefault(value, fallback string) string {
	if value != "" {
		return value
	}
	return fallback
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return n
}

// getEnvDuration accepts Go durations ("15s") and plain seconds ("15").
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	value = strings.TrimSpace(value)
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if n, err := strconv.Atoi(value); err == nil {
		return time.Duration(n) * time.Second
	}
	return fallback
}

func getEnvLevel(key string, fallback slog.Level) slog.Level {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(value))); err != nil {
		return fallback
	}
	return level
}
