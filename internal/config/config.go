package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	defaultDBPath = "./dev.db"
	defaultPort   = "8080"
)

// Config holds application configuration. Values come from an optional
// config.yaml, then the environment (including a local .env file).
type Config struct {
	Env      string         `mapstructure:"env"`
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Pricing  PricingConfig  `mapstructure:"pricing"`
	Log      LogConfig      `mapstructure:"log"`
}

type ServerConfig struct {
	Port            string        `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// RedisConfig enables the shared pricing snapshot tier when Addr is set.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type PricingConfig struct {
	CacheTTL        time.Duration `mapstructure:"cache_ttl"`
	MaxParallelRows int           `mapstructure:"max_parallel_rows"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// IsDev reports whether the server runs in local development, where it
// migrates and seeds its own database on boot.
func (c *Config) IsDev() bool {
	switch strings.ToLower(c.Env) {
	case "dev", "development", "local":
		return true
	}
	return false
}

func (c *Config) RedisEnabled() bool {
	return c.Redis.Addr != ""
}

// Load reads configuration from ./configs/config.yaml or ./config.yaml when
// present, with environment overrides.
func Load() (*Config, error) {
	// Best-effort: load local dev environment variables.
	// We don't fail if the file is missing; production should use real env injection.
	if err := loadDotEnv(".env"); err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath(".")

	setDefaults(v)
	bindEnvVariables(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("env", "dev")
	v.SetDefault("server.port", defaultPort)
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("database.path", defaultDBPath)
	v.SetDefault("redis.db", 0)
	v.SetDefault("pricing.cache_ttl", 30*time.Minute)
	v.SetDefault("pricing.max_parallel_rows", 8)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
}

func bindEnvVariables(v *viper.Viper) {
	v.BindEnv("env", "APP_ENV")
	v.BindEnv("server.port", "PORT")
	v.BindEnv("database.path", "DB_PATH")
	v.BindEnv("redis.addr", "REDIS_ADDR")
	v.BindEnv("redis.password", "REDIS_PASSWORD")
	v.BindEnv("redis.db", "REDIS_DB")
	v.BindEnv("pricing.cache_ttl", "PRICING_CACHE_TTL")
	v.BindEnv("pricing.max_parallel_rows", "PRICING_MAX_PARALLEL_ROWS")
	v.BindEnv("log.level", "LOG_LEVEL")
	v.BindEnv("log.format", "LOG_FORMAT")
}

func (c *Config) validate() error {
	if c.Pricing.CacheTTL <= 0 {
		return fmt.Errorf("pricing.cache_ttl must be positive, got %s", c.Pricing.CacheTTL)
	}
	if c.Pricing.MaxParallelRows <= 0 {
		return fmt.Errorf("pricing.max_parallel_rows must be positive, got %d", c.Pricing.MaxParallelRows)
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("log.format must be json or console, got %q", c.Log.Format)
	}
	return nil
}
