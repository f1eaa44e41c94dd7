// Package config provides unified configuration loading for the travel engine.
// Supports YAML files, environment variables, and programmatic overrides.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the travel engine.
type Config struct {
	Server        ServerConfig        `yaml:"server"`
	Database      DatabaseConfig      `yaml:"database"`
	Vector        VectorConfig        `yaml:"vector"`
	Cache         CacheConfig         `yaml:"cache"`
	Embedding     EmbeddingConfig     `yaml:"embedding"`
	Intent        IntentConfig        `yaml:"intent"`
	Search        SearchConfig        `yaml:"search"`
	Ranking       RankingConfig       `yaml:"ranking"`
	Context       ContextConfig       `yaml:"context"`
	Preferences   PreferencesConfig   `yaml:"preferences"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// ServerConfig holds HTTP server settings for the API surface.
type ServerConfig struct {
	Host             string        `yaml:"host"`
	Port             int           `yaml:"port"`
	ReadTimeout      time.Duration `yaml:"read_timeout"`
	WriteTimeout     time.Duration `yaml:"write_timeout"`
	IdleTimeout      time.Duration `yaml:"idle_timeout"`
	GracefulShutdown time.Duration `yaml:"graceful_shutdown"`
}

// DatabaseConfig holds Postgres connection settings.
type DatabaseConfig struct {
	DSN             string        `yaml:"dsn"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
}

// VectorConfig holds vector store settings.
type VectorConfig struct {
	Store     string `yaml:"store"` // memory or pgvector
	Dimension int    `yaml:"dimension"`
}

// CacheConfig holds cache settings.
type CacheConfig struct {
	Driver string        `yaml:"driver"` // memory or redis
	TTL    time.Duration `yaml:"ttl"`
	Redis  RedisConfig   `yaml:"redis"`
}

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"pool_size"`
	Prefix   string `yaml:"prefix"`
}

// EmbeddingConfig holds embedding provider settings.
type EmbeddingConfig struct {
	APIKey    string        `yaml:"api_key"`
	BaseURL   string        `yaml:"base_url"`
	Model     string        `yaml:"model"`
	Dimension int           `yaml:"dimension"`
	Timeout   time.Duration `yaml:"timeout"`
	CacheTTL  time.Duration `yaml:"cache_ttl"`
}

// IntentConfig holds intent extraction provider settings.
type IntentConfig struct {
	APIKey  string        `yaml:"api_key"`
	BaseURL string        `yaml:"base_url"`
	Model   string        `yaml:"model"`
	Timeout time.Duration `yaml:"timeout"`
}

// SearchConfig holds similarity search settings.
type SearchConfig struct {
	Limit               int           `yaml:"limit"`
	SimilarityThreshold float64       `yaml:"similarity_threshold"`
	SimilarThreshold    float64       `yaml:"similar_threshold"` // entity-to-entity variant
	Timeout             time.Duration `yaml:"timeout"`
}

// RankingConfig holds composite scoring weights. Weights are re-normalized to
// sum to 1.0 at ranker construction, so partial overrides stay valid.
type RankingConfig struct {
	SimilarityWeight   float64 `yaml:"similarity_weight"`
	PreferenceWeight   float64 `yaml:"preference_weight"`
	PopularityWeight   float64 `yaml:"popularity_weight"`
	BudgetWeight       float64 `yaml:"budget_weight"`
	TemporalWeight     float64 `yaml:"temporal_weight"`
	AvailabilityWeight float64 `yaml:"availability_weight"`
}

// ContextConfig holds context assembly limits.
type ContextConfig struct {
	MaxChars                    int `yaml:"max_chars"`
	MaxFieldChars               int `yaml:"max_field_chars"`
	MaxDestinations             int `yaml:"max_destinations"`
	MaxPropertiesPerDestination int `yaml:"max_properties_per_destination"`
}

// PreferencesConfig holds preference tracking settings.
type PreferencesConfig struct {
	ConfidenceThreshold float64       `yaml:"confidence_threshold"`
	BudgetHistorySize   int           `yaml:"budget_history_size"`
	ProfileCacheTTL     time.Duration `yaml:"profile_cache_ttl"`
}

// ObservabilityConfig holds logging settings.
type ObservabilityConfig struct {
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
}

// Load reads configuration from a YAML file and applies environment overrides.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}

		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

// DefaultConfig returns a configuration with sensible defaults for development.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:             "0.0.0.0",
			Port:             8086,
			ReadTimeout:      30 * time.Second,
			WriteTimeout:     30 * time.Second,
			IdleTimeout:      120 * time.Second,
			GracefulShutdown: 10 * time.Second,
		},
		Database: DatabaseConfig{
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: 5 * time.Minute,
		},
		Vector: VectorConfig{
			Store:     "memory",
			Dimension: 1024,
		},
		Cache: CacheConfig{
			Driver: "memory",
			TTL:    5 * time.Minute,
			Redis: RedisConfig{
				Addr:     "localhost:6379",
				DB:       0,
				PoolSize: 10,
				Prefix:   "travel",
			},
		},
		Embedding: EmbeddingConfig{
			BaseURL:   "https://openrouter.ai/api/v1",
			Model:     "qwen/qwen3-embedding-8b",
			Dimension: 1024,
			Timeout:   30 * time.Second,
			CacheTTL:  24 * time.Hour,
		},
		Intent: IntentConfig{
			BaseURL: "https://openrouter.ai/api/v1",
			Model:   "google/gemini-2.0-flash-001",
			Timeout: 30 * time.Second,
		},
		Search: SearchConfig{
			Limit:               10,
			SimilarityThreshold: 0.3,
			SimilarThreshold:    0.6,
			Timeout:             10 * time.Second,
		},
		Ranking: RankingConfig{
			SimilarityWeight:   0.40,
			PreferenceWeight:   0.25,
			PopularityWeight:   0.15,
			BudgetWeight:       0.10,
			TemporalWeight:     0.05,
			AvailabilityWeight: 0.05,
		},
		Context: ContextConfig{
			MaxChars:                    8000,
			MaxFieldChars:               280,
			MaxDestinations:             8,
			MaxPropertiesPerDestination: 4,
		},
		Preferences: PreferencesConfig{
			ConfidenceThreshold: 0.3,
			BudgetHistorySize:   20,
			ProfileCacheTTL:     time.Minute,
		},
		Observability: ObservabilityConfig{
			LogLevel:  "debug",
			LogFormat: "json",
		},
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Vector.Store != "memory" && c.Vector.Store != "pgvector" {
		return fmt.Errorf("invalid vector store: %s", c.Vector.Store)
	}

	if c.Vector.Store == "pgvector" && c.Database.DSN == "" {
		return fmt.Errorf("pgvector store requires database.dsn")
	}

	if c.Vector.Dimension < 1 {
		return fmt.Errorf("vector dimension must be positive, got %d", c.Vector.Dimension)
	}

	if c.Cache.Driver != "memory" && c.Cache.Driver != "redis" {
		return fmt.Errorf("invalid cache driver: %s", c.Cache.Driver)
	}

	if c.Search.SimilarityThreshold < 0 || c.Search.SimilarityThreshold > 1 {
		return fmt.Errorf("similarity_threshold must be in [0, 1]")
	}

	if c.Context.MaxChars < 500 {
		return fmt.Errorf("context max_chars must be at least 500")
	}

	if c.Preferences.ConfidenceThreshold < 0 || c.Preferences.ConfidenceThreshold >= 1 {
		return fmt.Errorf("confidence_threshold must be in [0, 1)")
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides to config.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}

	if v := os.Getenv("SERVER_PORT"); v != "" {
		var port int
		if _, err := fmt.Sscanf(v, "%d", &port); err == nil {
			cfg.Server.Port = port
		}
	}

	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Database.DSN = v
	}

	if v := os.Getenv("REDIS_URL"); v != "" {
		cfg.Cache.Driver = "redis"
		cfg.Cache.Redis.Addr = strings.TrimPrefix(v, "redis://")
	}

	if v := os.Getenv("VECTOR_STORE"); v != "" {
		cfg.Vector.Store = v
	}

	if v := os.Getenv("OPENROUTER_API_KEY"); v != "" {
		if cfg.Embedding.APIKey == "" {
			cfg.Embedding.APIKey = v
		}
		if cfg.Intent.APIKey == "" {
			cfg.Intent.APIKey = v
		}
	}

	if v := os.Getenv("EMBEDDING_API_KEY"); v != "" {
		cfg.Embedding.APIKey = v
	}

	if v := os.Getenv("EMBEDDING_MODEL"); v != "" {
		cfg.Embedding.Model = v
	}

	if v := os.Getenv("INTENT_API_KEY"); v != "" {
		cfg.Intent.APIKey = v
	}

	if v := os.Getenv("INTENT_MODEL"); v != "" {
		cfg.Intent.Model = v
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Observability.LogLevel = v
	}

	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Observability.LogFormat = v
	}
}
