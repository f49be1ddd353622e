// pkg/config/config.go
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config - главная структура конфигурации
type Config struct {
	App       AppConfig       `koanf:"app"`
	Log       LogConfig       `koanf:"log"`
	Metrics   MetricsConfig   `koanf:"metrics"`
	Tracing   TracingConfig   `koanf:"tracing"`
	Loader    LoaderConfig    `koanf:"loader"`
	Resolver  ResolverConfig  `koanf:"resolver"`
	LiveCheck LiveCheckConfig `koanf:"live_check"`
	Policy    PolicyConfig    `koanf:"policy"`
	Cache     CacheConfig     `koanf:"cache"`
	Audit     AuditConfig     `koanf:"audit"`
	Retry     RetryConfig     `koanf:"retry"`
}

// AppConfig - общие настройки приложения
type AppConfig struct {
	Name        string `koanf:"name"`
	Version     string `koanf:"version"`
	Environment string `koanf:"environment"` // development, staging, production
	Debug       bool   `koanf:"debug"`
}

// LogConfig - настройки логирования
type LogConfig struct {
	Level      string `koanf:"level"`       // debug, info, warn, error
	Format     string `koanf:"format"`      // json, text
	Output     string `koanf:"output"`      // stdout, stderr, file
	FilePath   string `koanf:"file_path"`   // путь к файлу логов
	MaxSize    int    `koanf:"max_size"`    // MB
	MaxBackups int    `koanf:"max_backups"` // количество бэкапов
	MaxAge     int    `koanf:"max_age"`     // дней
	Compress   bool   `koanf:"compress"`
}

// MetricsConfig - настройки Prometheus метрик
type MetricsConfig struct {
	Enabled   bool   `koanf:"enabled"`
	Port      int    `koanf:"port"`
	Path      string `koanf:"path"`
	Namespace string `koanf:"namespace"`
	Subsystem string `koanf:"subsystem"`
}

// TracingConfig - настройки OpenTelemetry
type TracingConfig struct {
	Enabled     bool    `koanf:"enabled"`
	Endpoint    string  `koanf:"endpoint"`
	ServiceName string  `koanf:"service_name"`
	SampleRate  float64 `koanf:"sample_rate"`
}

// LoaderConfig configures the registry loader (C2): default source path,
// dependency acquisition cache and concurrency.
type LoaderConfig struct {
	DefaultRegistryPath string        `koanf:"default_registry_path"`
	DependencyCacheDir  string        `koanf:"dependency_cache_dir"`
	MaxConcurrentFetch  int           `koanf:"max_concurrent_fetch"`
	FetchTimeout        time.Duration `koanf:"fetch_timeout"`
	CacheTTL            time.Duration `koanf:"cache_ttl"`
}

// ResolverConfig configures the resolver (C4): recursion limits and
// strictness.
type ResolverConfig struct {
	MaxExtendsDepth  int  `koanf:"max_extends_depth"`
	MaxIncludeDepth  int  `koanf:"max_include_depth"`
	WarningsAsErrors bool `koanf:"warnings_as_errors"`
}

// LiveCheckConfig configures the live-check pipeline (C7).
type LiveCheckConfig struct {
	InactivityTimeout  time.Duration `koanf:"inactivity_timeout"`
	PolicyDir          string        `koanf:"policy_dir"`
	StatsFlushInterval time.Duration `koanf:"stats_flush_interval"`
	StrictEnumVariant  bool          `koanf:"strict_enum_variant"`
}

// PolicyConfig configures the policy engine interface (C6).
type PolicyConfig struct {
	Enabled           bool   `koanf:"enabled"`
	DefaultPolicyPath string `koanf:"default_policy_path"`
	EnableJQTransform bool   `koanf:"enable_jq_transform"`
}

// CacheConfig - настройки кэширования (used by the loader's dependency
// cache; backed by pkg/cache's in-memory implementation).
type CacheConfig struct {
	Enabled    bool          `koanf:"enabled"`
	DefaultTTL time.Duration `koanf:"default_ttl"`
	MaxEntries int           `koanf:"max_entries"`
}

// AuditConfig конфигурация аудит лога
type AuditConfig struct {
	Enabled     bool          `koanf:"enabled"`
	Backend     string        `koanf:"backend"`
	FilePath    string        `koanf:"file_path"`
	BufferSize  int           `koanf:"buffer_size"`
	FlushPeriod time.Duration `koanf:"flush_period"`
}

// RetryConfig конфигурация retry. It is loaded with the rest of the config;
// the loader does not read it and does not retry dependency fetches.
type RetryConfig struct {
	MaxAttempts       int           `koanf:"max_attempts"`
	InitialBackoff    time.Duration `koanf:"initial_backoff"`
	MaxBackoff        time.Duration `koanf:"max_backoff"`
	BackoffMultiplier float64       `koanf:"backoff_multiplier"`
}

// Validate проверяет конфигурацию
func (c *Config) Validate() error {
	var errs []string

	if c.App.Name == "" {
		errs = append(errs, "app.name is required")
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Log.Level)] {
		errs = append(errs, fmt.Sprintf("log.level must be one of: debug, info, warn, error, got %s", c.Log.Level))
	}

	if c.Resolver.MaxExtendsDepth <= 0 {
		errs = append(errs, "resolver.max_extends_depth must be positive")
	}
	if c.Resolver.MaxIncludeDepth <= 0 {
		errs = append(errs, "resolver.max_include_depth must be positive")
	}

	if c.LiveCheck.InactivityTimeout <= 0 {
		errs = append(errs, "live_check.inactivity_timeout must be positive")
	}

	if c.Loader.MaxConcurrentFetch <= 0 {
		errs = append(errs, "loader.max_concurrent_fetch must be positive")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}

	return nil
}

// IsDevelopment проверяет режим разработки
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development" || c.App.Environment == "dev"
}

// IsProduction проверяет продакшн режим
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production" || c.App.Environment == "prod"
}
