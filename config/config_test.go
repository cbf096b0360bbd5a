package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"
)

var envKeys = []string{
	"PORT", "PDF_CO_API_KEY", "PDF_CO_BASE_URL", "COMETAPI_KEY", "COMPLETION_BASE_URL",
	"COMPLETION_MODEL", "COMPLETION_TIMEOUT", "SESSION_STORE", "REDIS_ADDR", "REDIS_PASSWORD",
	"REDIS_DB", "SESSION_TTL", "LOG_LEVEL",
}

// clearEnv unsets every config variable for the duration of the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
	dir := t.TempDir()
	cwd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(cwd) })
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Port != "3000" || cfg.SessionStore != StoreMemory || cfg.SessionTTL != 0 {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
	if cfg.Completion.BaseURL != DefaultCompletionBaseURL || cfg.Completion.Model != DefaultCompletionModel {
		t.Errorf("unexpected completion defaults: %+v", cfg.Completion)
	}
	if cfg.Completion.Timeout != 15*time.Second || cfg.MaxUploadSize != 25<<20 {
		t.Errorf("unexpected limits: %+v", cfg)
	}
	if !cfg.DemoDocuments() || cfg.CompletionEnabled() {
		t.Error("empty keys must select demo documents and disable completion")
	}
}

func TestLoadFileAndEnv(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{"api_key":"file-key","base_url":"https://llm.example/v1","model":"file-model"}`), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("COMPLETION_MODEL", "env-model")
	t.Setenv("COMPLETION_TIMEOUT", "5")
	t.Setenv("SESSION_TTL", "30m")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("PDF_CO_API_KEY", "DEMO_KEY_REPLACE_WITH_REAL")

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Completion.APIKey != "file-key" || cfg.Completion.BaseURL != "https://llm.example/v1" || cfg.Completion.Model != "env-model" {
		t.Errorf("unexpected completion config: %+v", cfg.Completion)
	}
	if cfg.Completion.Timeout != 5*time.Second || cfg.SessionTTL != 30*time.Minute || cfg.LogLevel != slog.LevelDebug {
		t.Errorf("unexpected parsed values: %+v", cfg)
	}
	if !cfg.DemoDocuments() || !cfg.CompletionEnabled() {
		t.Error("unexpected collaborator modes")
	}
}

func TestLoadDotEnv(t *testing.T) {
	clearEnv(t)
	if err := os.WriteFile(".env", []byte("PORT=4000\nSESSION_STORE=redis\nREDIS_ADDR=cache:6379\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		os.Unsetenv("PORT")
		os.Unsetenv("SESSION_STORE")
		os.Unsetenv("REDIS_ADDR")
	})
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Port != "4000" || cfg.SessionStore != StoreRedis || cfg.Redis.Addr != "cache:6379" {
		t.Errorf("unexpected config from .env: %+v", cfg)
	}
}

func TestValidate(t *testing.T) {
	clearEnv(t)
	t.Setenv("SESSION_STORE", "sqlite")
	if _, err := Load(""); err == nil {
		t.Error("expected error for unknown session store")
	}
	t.Setenv("SESSION_STORE", "memory")
	t.Setenv("SESSION_TTL", "-1s")
	if _, err := Load(""); err == nil {
		t.Error("expected error for negative ttl")
	}
}
