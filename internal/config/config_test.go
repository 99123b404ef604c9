package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("PORT", "")
	t.Setenv("STORAGE_ENGINE", "")
	t.Setenv("PLANT_NAME", "")
	t.Setenv("AI_PROVIDER", "")
	t.Setenv("AI_TIMEOUT_SECONDS", "")
	t.Setenv("CORS_ORIGINS", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	if cfg.ListenAddr != ":8080" {
		t.Fatalf("expected default listen addr :8080, got %s", cfg.ListenAddr)
	}
	if cfg.StorageEngine != "sqlite" || cfg.DatabaseDriver() != "sqlite" || cfg.DatabaseDSN() != defaultDatabasePath {
		t.Fatalf("unexpected storage defaults: %#v", cfg)
	}
	if cfg.PlantName != "Little Sprout" {
		t.Fatalf("unexpected plant name %q", cfg.PlantName)
	}
	if cfg.AIProvider != "local" || cfg.LocalLLMModel != "gpt-oss-20b" || cfg.GeminiModel != "gemini-1.5-flash" {
		t.Fatalf("unexpected ai defaults: %#v", cfg)
	}
	if cfg.AITimeout != 30*time.Second {
		t.Fatalf("unexpected timeout %v", cfg.AITimeout)
	}
	if len(cfg.CORSOrigins) != 2 {
		t.Fatalf("expected 2 default cors origins, got %v", cfg.CORSOrigins)
	}
}

func TestLoadFileFillsUnsetEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plantpal.yml")
	content := "port: 9090\nstorage_engine: MySQL\nmysql_dsn: user:pass@tcp(db:3306)/plant\nplant_name: Basil\nai_timeout_seconds: 5\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv("CONFIG_FILE", path)
	t.Setenv("PORT", "")
	t.Setenv("STORAGE_ENGINE", "")
	t.Setenv("MYSQL_DSN", "")
	t.Setenv("AI_TIMEOUT_SECONDS", "")
	t.Setenv("PLANT_NAME", "Fern")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	if cfg.Port != "9090" || cfg.ListenAddr != ":9090" {
		t.Fatalf("expected port from file, got %s / %s", cfg.Port, cfg.ListenAddr)
	}
	if cfg.DatabaseDriver() != "mysql" || cfg.DatabaseDSN() != "user:pass@tcp(db:3306)/plant" {
		t.Fatalf("unexpected database settings: %s %s", cfg.DatabaseDriver(), cfg.DatabaseDSN())
	}
	if cfg.PlantName != "Fern" {
		t.Fatalf("env should win over file, got %q", cfg.PlantName)
	}
	if cfg.AITimeout != 5*time.Second {
		t.Fatalf("unexpected timeout %v", cfg.AITimeout)
	}
}

func TestLoadRejectsInvalidTimeout(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("AI_TIMEOUT_SECONDS", "soon")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error for invalid timeout")
	}
}

func TestLoadMissingConfigFile(t *testing.T) {
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "missing.yml"))

	if _, err := Load(); err == nil {
		t.Fatalf("expected error for missing config file")
	}
}
