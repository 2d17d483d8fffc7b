package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	// Clean up environment before tests
	cleanupEnv := func() {
		os.Unsetenv("GROCER_SERVER_PORT")
		os.Unsetenv("GROCER_SERVER_ENVIRONMENT")
		os.Unsetenv("GROCER_ANTHROPIC_API_KEY")
		os.Unsetenv("GROCER_ANTHROPIC_MODEL")
		os.Unsetenv("GROCER_CATALOG_PATH")
		os.Unsetenv("GROCER_CATALOG_SEED_PATH")
		os.Unsetenv("GROCER_MATCHING_FUZZY_THRESHOLD")
		os.Unsetenv("GROCER_MATCHING_AI_FLOOR")
		os.Unsetenv("GROCER_COMPARISON_UNMATCHED_TOLERANCE")
		os.Unsetenv("GROCER_CACHE_TTL")
	}

	t.Run("loads with defaults when no env vars set", func(t *testing.T) {
		cleanupEnv()
		defer cleanupEnv()

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error = %v, want nil", err)
		}

		if cfg.Server.Port != "8080" {
			t.Errorf("Server.Port = %s, want 8080", cfg.Server.Port)
		}
		if cfg.Server.Environment != "development" {
			t.Errorf("Server.Environment = %s, want development", cfg.Server.Environment)
		}
		if cfg.Catalog.Path != "grocer.db" {
			t.Errorf("Catalog.Path = %s, want grocer.db", cfg.Catalog.Path)
		}
		if cfg.Matching.FuzzyThreshold != 0.6 {
			t.Errorf("Matching.FuzzyThreshold = %v, want 0.6", cfg.Matching.FuzzyThreshold)
		}
		if cfg.Matching.AIFloor != 0.35 {
			t.Errorf("Matching.AIFloor = %v, want 0.35", cfg.Matching.AIFloor)
		}
		if cfg.Matching.AIDefaultConfidence != 0.75 {
			t.Errorf("Matching.AIDefaultConfidence = %v, want 0.75", cfg.Matching.AIDefaultConfidence)
		}
		if cfg.Comparison.UnmatchedTolerance != 0.2 {
			t.Errorf("Comparison.UnmatchedTolerance = %v, want 0.2", cfg.Comparison.UnmatchedTolerance)
		}
		if cfg.Cache.TTL != 15*time.Minute {
			t.Errorf("Cache.TTL = %v, want 15m", cfg.Cache.TTL)
		}
		if cfg.Anthropic.Timeout != 20*time.Second {
			t.Errorf("Anthropic.Timeout = %v, want 20s", cfg.Anthropic.Timeout)
		}
	})

	t.Run("loads custom values from environment variables", func(t *testing.T) {
		cleanupEnv()
		os.Setenv("GROCER_SERVER_PORT", "9090")
		os.Setenv("GROCER_SERVER_ENVIRONMENT", "production")
		os.Setenv("GROCER_ANTHROPIC_API_KEY", "test-key")
		os.Setenv("GROCER_CATALOG_PATH", "/var/lib/grocer/catalog.db")
		os.Setenv("GROCER_MATCHING_FUZZY_THRESHOLD", "0.7")
		os.Setenv("GROCER_CACHE_TTL", "1h")
		defer cleanupEnv()

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error = %v, want nil", err)
		}

		if cfg.Server.Port != "9090" {
			t.Errorf("Server.Port = %s, want 9090", cfg.Server.Port)
		}
		if cfg.Server.Environment != "production" {
			t.Errorf("Server.Environment = %s, want production", cfg.Server.Environment)
		}
		if cfg.Anthropic.APIKey != "test-key" {
			t.Errorf("Anthropic.APIKey = %s, want test-key", cfg.Anthropic.APIKey)
		}
		if cfg.Catalog.Path != "/var/lib/grocer/catalog.db" {
			t.Errorf("Catalog.Path = %s, want /var/lib/grocer/catalog.db", cfg.Catalog.Path)
		}
		if cfg.Matching.FuzzyThreshold != 0.7 {
			t.Errorf("Matching.FuzzyThreshold = %v, want 0.7", cfg.Matching.FuzzyThreshold)
		}
		if cfg.Cache.TTL != time.Hour {
			t.Errorf("Cache.TTL = %v, want 1h", cfg.Cache.TTL)
		}
	})

	t.Run("rejects fuzzy threshold outside (0, 1]", func(t *testing.T) {
		cleanupEnv()
		os.Setenv("GROCER_MATCHING_FUZZY_THRESHOLD", "1.5")
		defer cleanupEnv()

		if _, err := Load(); err == nil {
			t.Error("Load() error = nil, want validation error")
		}
	})

	t.Run("rejects ai floor at or above fuzzy threshold", func(t *testing.T) {
		cleanupEnv()
		os.Setenv("GROCER_MATCHING_AI_FLOOR", "0.6")
		defer cleanupEnv()

		if _, err := Load(); err == nil {
			t.Error("Load() error = nil, want validation error")
		}
	})

	t.Run("rejects out of range unmatched tolerance", func(t *testing.T) {
		cleanupEnv()
		os.Setenv("GROCER_COMPARISON_UNMATCHED_TOLERANCE", "1.2")
		defer cleanupEnv()

		if _, err := Load(); err == nil {
			t.Error("Load() error = nil, want validation error")
		}
	})
}

func TestInitLogger(t *testing.T) {
	t.Run("builds console logger", func(t *testing.T) {
		if err := InitLogger(LogConfig{Level: "debug", Format: "console"}); err != nil {
			t.Fatalf("InitLogger() error = %v, want nil", err)
		}
	})

	t.Run("builds json logger", func(t *testing.T) {
		if err := InitLogger(LogConfig{Level: "info", Format: "json"}); err != nil {
			t.Fatalf("InitLogger() error = %v, want nil", err)
		}
	})

	t.Run("rejects unknown level", func(t *testing.T) {
		if err := InitLogger(LogConfig{Level: "shouty", Format: "console"}); err == nil {
			t.Error("InitLogger() error = nil, want parse error")
		}
	})
}
