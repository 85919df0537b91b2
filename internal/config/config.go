// Package config handles loading and validating the application configuration
// from YAML files with environment variable substitution.
package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/donaldgifford/concur-accruals/internal/concur"
)

// Config is the top-level application configuration. Concur credentials are
// not part of it; they come from the secrets chain.
type Config struct {
	Server        ServerConfig        `yaml:"server"`
	Concur        ConcurConfig        `yaml:"concur"`
	Secrets       SecretsConfig       `yaml:"secrets"`
	Database      DatabaseConfig      `yaml:"database"`
	Schedule      ScheduleConfig      `yaml:"schedule"`
	Notifications NotificationsConfig `yaml:"notifications"`
	CORS          CORSConfig          `yaml:"cors"`
	Tracing       TracingConfig       `yaml:"tracing"`
	Logging       LoggingConfig       `yaml:"logging"`
}

// ServerConfig defines the Echo HTTP server settings.
type ServerConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// Addr returns the listen address.
func (s *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// ConcurConfig tunes the Concur access layer.
type ConcurConfig struct {
	// BaseURL overrides the base URL resolved from the secrets chain.
	BaseURL          string          `yaml:"base_url"`
	RequestTimeout   time.Duration   `yaml:"request_timeout"`
	TokenTimeout     time.Duration   `yaml:"token_timeout"`
	ExpirySkew       time.Duration   `yaml:"expiry_skew"`
	AuthStyle        string          `yaml:"auth_style"` // params, header
	UsersPageSize    int             `yaml:"users_page_size"`
	UsersMaxPages    int             `yaml:"users_max_pages"`
	ReportPageSize   int             `yaml:"report_page_size"`
	MaxAttributeFix  int             `yaml:"max_attribute_fixes"`
	UserAttributes   []string        `yaml:"user_attributes"`
	DetailAttributes []string        `yaml:"detail_attributes"`
	SafeAttributes   []string        `yaml:"safe_attributes"`
	RejectionMarkers []string        `yaml:"rejection_markers"`
	OrgConcurrency   int             `yaml:"org_search_concurrency"`
	RateLimit        RateLimitConfig `yaml:"rate_limit"`
}

// RateLimitConfig defines Concur API call pacing.
type RateLimitConfig struct {
	PerSecond  float64 `yaml:"per_second"`
	Burst      int     `yaml:"burst"`
	DailyLimit int64   `yaml:"daily_limit"` // 0 disables the daily budget
}

// SecretsConfig selects the secret stores consulted before the environment.
type SecretsConfig struct {
	// KeyVaultURL or KeyVaultName enables the Azure Key Vault store.
	KeyVaultURL  string        `yaml:"keyvault_url"`
	KeyVaultName string        `yaml:"keyvault_name"`
	FilePath     string        `yaml:"file_path"`
	CacheTTL     time.Duration `yaml:"cache_ttl"`
}

// DatabaseConfig defines PostgreSQL connection settings. The database is
// optional; an empty host disables it.
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"sslmode"`
	PoolSize int    `yaml:"pool_size"`
}

// Enabled reports whether a database is configured.
func (d *DatabaseConfig) Enabled() bool {
	return d.Host != ""
}

// DSN returns a PostgreSQL connection string.
func (d *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d dbname=%s user=%s password=%s sslmode=%s pool_max_conns=%d",
		d.Host, d.Port, d.Name, d.User, d.Password, d.SSLMode, d.PoolSize,
	)
}

// ScheduleConfig defines background job intervals.
type ScheduleConfig struct {
	TokenRefreshEnabled  bool          `yaml:"token_refresh_enabled"`
	TokenRefreshInterval time.Duration `yaml:"token_refresh_interval"`
	RefreshOnStart       bool          `yaml:"refresh_on_start"`
	FailureThreshold     int           `yaml:"failure_threshold"`
}

// NotificationsConfig defines notification targets.
type NotificationsConfig struct {
	Discord DiscordConfig `yaml:"discord"`
}

// DiscordConfig defines Discord webhook settings.
type DiscordConfig struct {
	Enabled    bool   `yaml:"enabled"`
	WebhookURL string `yaml:"webhook_url"`
	Username   string `yaml:"username"`
}

// CORSConfig lists browser origins allowed to call the API. Empty disables
// CORS handling.
type CORSConfig struct {
	AllowOrigins []string `yaml:"allow_origins"`
}

// TracingConfig defines OpenTelemetry export settings.
type TracingConfig struct {
	Enabled        bool          `yaml:"enabled"`
	Endpoint       string        `yaml:"endpoint"`
	Insecure       bool          `yaml:"insecure"`
	SampleRatio    float64       `yaml:"sample_ratio"`
	MetricInterval time.Duration `yaml:"metric_interval"`
}

// LoggingConfig defines logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text, json
}

// Load reads and parses a YAML config file, performing environment variable
// substitution and validation. An empty path yields Default().
func Load(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path) //nolint:gosec // config path from trusted CLI flag
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	return Parse(data)
}

// Parse decodes YAML config, expanding environment variables first.
func Parse(data []byte) (*Config, error) {
	expanded := os.ExpandEnv(string(data))

	cfg := &Config{Schedule: ScheduleConfig{TokenRefreshEnabled: true}}
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("parsing config YAML: %w", err)
	}

	applyDefaults(cfg)

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	cfg := &Config{Schedule: ScheduleConfig{TokenRefreshEnabled: true}}
	applyDefaults(cfg)
	return cfg
}

func applyDefaults(cfg *Config) {
	applyServerDefaults(&cfg.Server)
	applyConcurDefaults(&cfg.Concur)
	applySecretsDefaults(&cfg.Secrets)
	applyDatabaseDefaults(&cfg.Database)
	applyScheduleDefaults(&cfg.Schedule)
	applyTracingDefaults(&cfg.Tracing)
	applyLoggingDefaults(&cfg.Logging)
}

func applyServerDefaults(s *ServerConfig) {
	if s.Host == "" {
		s.Host = "0.0.0.0"
	}
	if s.Port == 0 {
		s.Port = 8080
	}
	if s.ReadTimeout == 0 {
		s.ReadTimeout = 30 * time.Second
	}
	if s.WriteTimeout == 0 {
		// Org searches fan out across the whole directory.
		s.WriteTimeout = 5 * time.Minute
	}
	if s.ShutdownTimeout == 0 {
		s.ShutdownTimeout = 10 * time.Second
	}
}

func applyConcurDefaults(c *ConcurConfig) {
	if c.RequestTimeout == 0 {
		c.RequestTimeout = 30 * time.Second
	}
	if c.TokenTimeout == 0 {
		c.TokenTimeout = 30 * time.Second
	}
	if c.ExpirySkew == 0 {
		c.ExpirySkew = 60 * time.Second
	}
	if c.AuthStyle == "" {
		c.AuthStyle = "params"
	}
	if c.UsersPageSize == 0 {
		c.UsersPageSize = 100
	}
	if c.UsersMaxPages == 0 {
		c.UsersMaxPages = 200
	}
	if c.ReportPageSize == 0 {
		c.ReportPageSize = 100
	}
	if c.MaxAttributeFix == 0 {
		c.MaxAttributeFix = 6
	}
	if c.OrgConcurrency == 0 {
		c.OrgConcurrency = 4
	}
	if len(c.SafeAttributes) == 0 {
		c.SafeAttributes = slices.Clone(concur.DefaultSafeUserAttributes)
	}
	applyRateLimitDefaults(&c.RateLimit)
}

func applyRateLimitDefaults(r *RateLimitConfig) {
	if r.PerSecond == 0 {
		r.PerSecond = 5.0
	}
	if r.Burst == 0 {
		r.Burst = 10
	}
}

func applySecretsDefaults(s *SecretsConfig) {
	if s.CacheTTL == 0 {
		s.CacheTTL = 300 * time.Second
	}
}

func applyDatabaseDefaults(d *DatabaseConfig) {
	if d.Port == 0 {
		d.Port = 5432
	}
	if d.SSLMode == "" {
		d.SSLMode = "disable"
	}
	if d.PoolSize == 0 {
		d.PoolSize = 4
	}
}

func applyScheduleDefaults(s *ScheduleConfig) {
	if s.TokenRefreshInterval == 0 {
		s.TokenRefreshInterval = 20 * time.Minute
	}
	if s.FailureThreshold == 0 {
		s.FailureThreshold = 3
	}
}

func applyTracingDefaults(t *TracingConfig) {
	if t.SampleRatio == 0 {
		t.SampleRatio = 1
	}
	if t.MetricInterval == 0 {
		t.MetricInterval = 30 * time.Second
	}
}

func applyLoggingDefaults(l *LoggingConfig) {
	if l.Level == "" {
		l.Level = "info"
	}
	if l.Format == "" {
		l.Format = "text"
	}
}

func validate(cfg *Config) error {
	var errs []error

	if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port must be 1..65535 (got %d)", cfg.Server.Port))
	}

	errs = append(errs, validateConcur(&cfg.Concur)...)

	if cfg.Secrets.KeyVaultURL != "" && cfg.Secrets.KeyVaultName != "" {
		errs = append(errs, errors.New("secrets: set keyvault_url or keyvault_name, not both"))
	}
	if cfg.Secrets.CacheTTL < 0 {
		errs = append(errs, errors.New("secrets.cache_ttl must not be negative"))
	}

	if cfg.Database.Enabled() {
		if cfg.Database.Name == "" {
			errs = append(errs, errors.New("database.name is required when database.host is set"))
		}
		if cfg.Database.User == "" {
			errs = append(errs, errors.New("database.user is required when database.host is set"))
		}
	}

	if cfg.Schedule.TokenRefreshEnabled && cfg.Schedule.TokenRefreshInterval < time.Minute {
		errs = append(errs, fmt.Errorf(
			"schedule.token_refresh_interval must be at least 1m (got %s)",
			cfg.Schedule.TokenRefreshInterval,
		))
	}

	if cfg.Notifications.Discord.Enabled && cfg.Notifications.Discord.WebhookURL == "" {
		errs = append(errs, errors.New("notifications.discord.webhook_url is required when discord is enabled"))
	}

	if cfg.Tracing.Enabled && cfg.Tracing.Endpoint == "" {
		errs = append(errs, errors.New("tracing.endpoint is required when tracing is enabled"))
	}
	if cfg.Tracing.SampleRatio < 0 || cfg.Tracing.SampleRatio > 1 {
		errs = append(errs, fmt.Errorf("tracing.sample_ratio must be within 0..1 (got %g)", cfg.Tracing.SampleRatio))
	}

	switch strings.ToLower(cfg.Logging.Format) {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("logging.format must be text or json (got %q)", cfg.Logging.Format))
	}

	return errors.Join(errs...)
}

func validateConcur(c *ConcurConfig) []error {
	var errs []error

	switch c.AuthStyle {
	case "params", "header":
	default:
		errs = append(errs, fmt.Errorf("concur.auth_style must be params or header (got %q)", c.AuthStyle))
	}
	if c.UsersPageSize < 1 || c.UsersPageSize > 500 {
		errs = append(errs, fmt.Errorf("concur.users_page_size must be 1..500 (got %d)", c.UsersPageSize))
	}
	if c.UsersMaxPages < 1 {
		errs = append(errs, fmt.Errorf("concur.users_max_pages must be positive (got %d)", c.UsersMaxPages))
	}
	if c.ReportPageSize < 1 || c.ReportPageSize > 100 {
		errs = append(errs, fmt.Errorf("concur.report_page_size must be 1..100 (got %d)", c.ReportPageSize))
	}
	if c.MaxAttributeFix < 0 {
		errs = append(errs, errors.New("concur.max_attribute_fixes must not be negative"))
	}
	if c.OrgConcurrency < 1 || c.OrgConcurrency > 32 {
		errs = append(errs, fmt.Errorf("concur.org_search_concurrency must be 1..32 (got %d)", c.OrgConcurrency))
	}
	if c.RateLimit.PerSecond <= 0 {
		errs = append(errs, errors.New("concur.rate_limit.per_second must be positive"))
	}
	if c.RateLimit.Burst < 1 {
		errs = append(errs, errors.New("concur.rate_limit.burst must be positive"))
	}
	if c.RateLimit.DailyLimit < 0 {
		errs = append(errs, errors.New("concur.rate_limit.daily_limit must not be negative"))
	}

	return errs
}
