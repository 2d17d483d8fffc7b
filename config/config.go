package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds all configuration for the application
type Config struct {
	Server     ServerConfig
	Anthropic  AnthropicConfig
	Catalog    CatalogConfig
	Matching   MatchingConfig
	Comparison ComparisonConfig
	Cache      CacheConfig
	Log        LogConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// AnthropicConfig holds AI service configuration
type AnthropicConfig struct {
	APIKey            string        `mapstructure:"api_key"`
	Model             string        `mapstructure:"model"`
	Timeout           time.Duration `mapstructure:"timeout"`
	RequestsPerMinute int           `mapstructure:"requests_per_minute"`
}

// CatalogConfig holds catalog store configuration
type CatalogConfig struct {
	Path     string `mapstructure:"path"`
	SeedPath string `mapstructure:"seed_path"`
}

// MatchingConfig holds the matcher's policy knobs. Thresholds are
// configurable policy, not fixed requirements.
type MatchingConfig struct {
	FuzzyThreshold      float64 `mapstructure:"fuzzy_threshold"`
	AIFloor             float64 `mapstructure:"ai_floor"`
	AIDefaultConfidence float64 `mapstructure:"ai_default_confidence"`
	MaxCandidates       int     `mapstructure:"max_candidates"`
}

// ComparisonConfig holds aggregation policy.
type ComparisonConfig struct {
	// UnmatchedTolerance is the fraction of requested items a store may
	// be missing while still counting as viable.
	UnmatchedTolerance float64 `mapstructure:"unmatched_tolerance"`
}

// CacheConfig holds match cache configuration
type CacheConfig struct {
	TTL time.Duration `mapstructure:"ttl"`
}

// LogConfig holds logger configuration
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/goosegrocer/")

	v.SetEnvPrefix("GROCER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// Config file is optional; env vars and defaults cover everything.
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"*"})

	v.SetDefault("anthropic.api_key", "")
	v.SetDefault("anthropic.model", "claude-haiku-4-5-20251001")
	v.SetDefault("anthropic.timeout", "20s")
	v.SetDefault("anthropic.requests_per_minute", 50)

	v.SetDefault("catalog.path", "grocer.db")
	v.SetDefault("catalog.seed_path", "data/seed_prices.csv")

	v.SetDefault("matching.fuzzy_threshold", 0.6)
	v.SetDefault("matching.ai_floor", 0.35)
	v.SetDefault("matching.ai_default_confidence", 0.75)
	v.SetDefault("matching.max_candidates", 5)

	v.SetDefault("comparison.unmatched_tolerance", 0.2)

	v.SetDefault("cache.ttl", "15m")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
}

// validate validates the configuration
func validate(config *Config) error {
	if config.Catalog.Path == "" {
		return fmt.Errorf("catalog path is required (set GROCER_CATALOG_PATH)")
	}

	if config.Matching.FuzzyThreshold <= 0 || config.Matching.FuzzyThreshold > 1 {
		return fmt.Errorf("matching fuzzy_threshold must be in (0, 1], got: %v", config.Matching.FuzzyThreshold)
	}

	if config.Matching.AIFloor < 0 || config.Matching.AIFloor >= config.Matching.FuzzyThreshold {
		return fmt.Errorf("matching ai_floor must be in [0, fuzzy_threshold), got: %v", config.Matching.AIFloor)
	}

	if config.Comparison.UnmatchedTolerance < 0 || config.Comparison.UnmatchedTolerance > 1 {
		return fmt.Errorf("comparison unmatched_tolerance must be in [0, 1], got: %v", config.Comparison.UnmatchedTolerance)
	}

	return nil
}

// InitLogger initializes the global zap logger from LogConfig.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return fmt.Errorf("parse log level: %w", err)
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	zap.ReplaceGlobals(logger)

	return nil
}
