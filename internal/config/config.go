// Package config loads service configuration from a YAML file with
// environment variable overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	defaultServerAddress   = ":8000"
	defaultReadTimeout     = 10 * time.Second
	defaultWriteTimeout    = 30 * time.Second
	defaultIdleTimeout     = 60 * time.Second
	defaultShutdownTimeout = 30 * time.Second

	defaultGenerationTimeout = 3 * time.Minute
	defaultPublishTimeout    = 30 * time.Second
	defaultStaleClaimAge     = 15 * time.Minute

	defaultMaxKeywordsPerUpload = 10000
	defaultMaxBlogsPerBatch     = 50
	defaultMaxUploadBytes       = 10 * 1024 * 1024

	defaultRateLimitRequests = 100
	defaultRateLimitWindow   = time.Hour

	defaultAnthropicModel     = "claude-sonnet-4-20250514"
	defaultAnthropicMaxTokens = 8000
)

// Config is the root service configuration.
type Config struct {
	Debug     bool            `yaml:"debug"`
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	Auth      AuthConfig      `yaml:"auth"`
	Anthropic AnthropicConfig `yaml:"anthropic"`
	ImageAPI  ImageAPIConfig  `yaml:"image_api"`
	Generator GeneratorConfig `yaml:"generator"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Limits    LimitsConfig    `yaml:"limits"`
}

type ServerConfig struct {
	Address         string        `yaml:"address"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	CORSOrigins     []string      `yaml:"cors_origins"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`
}

type RedisConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type AuthConfig struct {
	JWTSecret string `yaml:"jwt_secret"`
}

// AnthropicConfig configures the content-generation API.
type AnthropicConfig struct {
	APIKey      string  `yaml:"api_key"`
	Model       string  `yaml:"model"`
	MaxTokens   int     `yaml:"max_tokens"`
	Temperature float64 `yaml:"temperature"`
}

// ImageAPIConfig configures the optional image-generation API.
type ImageAPIConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Endpoint string `yaml:"endpoint"`
	APIKey   string `yaml:"api_key"`
	Model    string `yaml:"model"`
}

// GeneratorConfig bounds the background generation units of work.
type GeneratorConfig struct {
	GenerationTimeout time.Duration `yaml:"generation_timeout"`
	PublishTimeout    time.Duration `yaml:"publish_timeout"`
	StaleClaimAge     time.Duration `yaml:"stale_claim_age"`
}

type RateLimitConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Requests int           `yaml:"requests"`
	Window   time.Duration `yaml:"window"`
}

type LimitsConfig struct {
	MaxKeywordsPerUpload int   `yaml:"max_keywords_per_upload"`
	MaxBlogsPerBatch     int   `yaml:"max_blogs_per_batch"`
	MaxUploadBytes       int64 `yaml:"max_upload_bytes"`
}

// Load reads configuration from path (optional) and applies environment
// overrides. A missing file is not an error; env vars alone can configure
// the service.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if unmarshalErr := yaml.Unmarshal(data, cfg); unmarshalErr != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, unmarshalErr)
			}
		case os.IsNotExist(err):
			// fall through to env-only configuration
		default:
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	applyEnvOverrides(cfg)
	setDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	setString(&cfg.Server.Address, "SERVER_ADDRESS")
	setString(&cfg.Database.Host, "POSTGRES_HOST")
	setString(&cfg.Database.Port, "POSTGRES_PORT")
	setString(&cfg.Database.User, "POSTGRES_USER")
	setString(&cfg.Database.Password, "POSTGRES_PASSWORD")
	setString(&cfg.Database.DBName, "POSTGRES_DB")
	setString(&cfg.Database.SSLMode, "POSTGRES_SSLMODE")
	setString(&cfg.Redis.Address, "REDIS_ADDRESS")
	setString(&cfg.Redis.Password, "REDIS_PASSWORD")
	setString(&cfg.Auth.JWTSecret, "JWT_SECRET")
	setString(&cfg.Anthropic.APIKey, "ANTHROPIC_API_KEY")
	setString(&cfg.Anthropic.Model, "ANTHROPIC_MODEL")
	setString(&cfg.ImageAPI.Endpoint, "IMAGE_API_ENDPOINT")
	setString(&cfg.ImageAPI.APIKey, "IMAGE_API_KEY")

	if v := os.Getenv("DEBUG"); v != "" {
		if parsed, err := strconv.ParseBool(v); err == nil {
			cfg.Debug = parsed
		}
	}
	if v := os.Getenv("IMAGE_API_ENABLED"); v != "" {
		if parsed, err := strconv.ParseBool(v); err == nil {
			cfg.ImageAPI.Enabled = parsed
		}
	}
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setDefaults(cfg *Config) {
	if cfg.Server.Address == "" {
		cfg.Server.Address = defaultServerAddress
	}
	if cfg.Server.ReadTimeout <= 0 {
		cfg.Server.ReadTimeout = defaultReadTimeout
	}
	if cfg.Server.WriteTimeout <= 0 {
		cfg.Server.WriteTimeout = defaultWriteTimeout
	}
	if cfg.Server.IdleTimeout <= 0 {
		cfg.Server.IdleTimeout = defaultIdleTimeout
	}
	if cfg.Server.ShutdownTimeout <= 0 {
		cfg.Server.ShutdownTimeout = defaultShutdownTimeout
	}
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == "" {
		cfg.Database.Port = "5432"
	}
	if cfg.Database.User == "" {
		cfg.Database.User = "postgres"
	}
	if cfg.Database.DBName == "" {
		cfg.Database.DBName = "seoblog"
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Anthropic.Model == "" {
		cfg.Anthropic.Model = defaultAnthropicModel
	}
	if cfg.Anthropic.MaxTokens <= 0 {
		cfg.Anthropic.MaxTokens = defaultAnthropicMaxTokens
	}
	if cfg.Anthropic.Temperature <= 0 {
		cfg.Anthropic.Temperature = 0.7
	}
	if cfg.Generator.GenerationTimeout <= 0 {
		cfg.Generator.GenerationTimeout = defaultGenerationTimeout
	}
	if cfg.Generator.PublishTimeout <= 0 {
		cfg.Generator.PublishTimeout = defaultPublishTimeout
	}
	if cfg.Generator.StaleClaimAge <= 0 {
		cfg.Generator.StaleClaimAge = defaultStaleClaimAge
	}
	if cfg.RateLimit.Requests <= 0 {
		cfg.RateLimit.Requests = defaultRateLimitRequests
	}
	if cfg.RateLimit.Window <= 0 {
		cfg.RateLimit.Window = defaultRateLimitWindow
	}
	if cfg.Limits.MaxKeywordsPerUpload <= 0 {
		cfg.Limits.MaxKeywordsPerUpload = defaultMaxKeywordsPerUpload
	}
	if cfg.Limits.MaxBlogsPerBatch <= 0 {
		cfg.Limits.MaxBlogsPerBatch = defaultMaxBlogsPerBatch
	}
	if cfg.Limits.MaxUploadBytes <= 0 {
		cfg.Limits.MaxUploadBytes = defaultMaxUploadBytes
	}
}

// Validate checks the configuration after defaults are applied.
func (c *Config) Validate() error {
	if c.Auth.JWTSecret == "" {
		return errors.New("auth.jwt_secret is required")
	}
	if c.ImageAPI.Enabled && c.ImageAPI.Endpoint == "" {
		return errors.New("image_api.endpoint is required when image_api.enabled is true")
	}
	if c.RateLimit.Enabled && c.Redis.Address == "" {
		return errors.New("redis.address is required when rate_limit.enabled is true")
	}
	return nil
}
