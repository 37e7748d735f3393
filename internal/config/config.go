package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Environment string `toml:"-"`

	Host string `toml:"host"`
	Port int    `toml:"port"`

	// logging
	LogLevel      string `toml:"log_level"`
	LogsPath      string `toml:"logs_path"`
	LogToStdout   bool   `toml:"log_to_stdout"`
	LogFormatJSON bool   `toml:"log_format_json"`
	SentryEnabled bool   `toml:"sentry_enabled"`

	// postgres
	PostgresHost   string `toml:"postgres_host"`
	PostgresPort   string `toml:"postgres_port"`
	PostgresDBName string `toml:"postgres_db_name"`
	PostgresUser   string `toml:"postgres_user"`

	// redis
	RedisHost string `toml:"redis_host"`
	RedisPort string `toml:"redis_port"`

	// metrics
	PrometheusMetricsHost string `toml:"prometheus_metrics_host"`
	PrometheusMetricsPort string `toml:"prometheus_metrics_port"`

	LoginRateLimitAllowedPerMin int      `toml:"login_rate_limit_allowed_per_min"`
	AllowedOrigins              []string `toml:"allowed_origins"`

	JWTTTLRaw               string        `toml:"jwt_ttl"`
	JWTTTL                  time.Duration `toml:"-"`
	AnalyticsCacheTTLRaw    string        `toml:"analytics_cache_ttl"`
	AnalyticsCacheTTL       time.Duration `toml:"-"`
	AnalyticsCacheSizeMB    int           `toml:"analytics_cache_size_mb"`
	RevokedTokensScanPeriod time.Duration `toml:"-"`

	// dir of the unix socket the backup cmd reports its metrics to, empty disables the listener
	BackupSocketDir string `toml:"backup_socket_dir"`
}

type Toml struct {
	Development *Config
	Production  *Config
	Ddev        *Config
}

func (t *Toml) Get(env string) (*Config, error) {
	var cfg *Config
	switch strings.ToLower(env) {
	case "dev", "development":
		cfg, env = t.Development, "development"
	case "prod", "production":
		cfg, env = t.Production, "production"
	case "ddev":
		cfg, env = t.Ddev, "ddev"
	default:
		return nil, fmt.Errorf("unknown env: %s", env)
	}
	if cfg == nil {
		return nil, fmt.Errorf("no config section for env: %s", env)
	}
	cfg.Environment = env
	return cfg, nil
}

// Load reads the toml file at path and returns the section for env,
// with defaults applied and durations parsed.
func Load(env, path string) (*Config, error) {
	var t Toml
	if _, err := toml.DecodeFile(path, &t); err != nil {
		return nil, fmt.Errorf("decode config file %s: %w", path, err)
	}

	cfg, err := t.Get(env)
	if err != nil {
		return nil, err
	}

	if err := cfg.applyDefaults(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) applyDefaults() error {
	if c.Host == "" {
		c.Host = "localhost"
	}
	if c.LogLevel == "" {
		c.LogLevel = "trace"
	}
	if c.LoginRateLimitAllowedPerMin == 0 {
		c.LoginRateLimitAllowedPerMin = 15
	}
	if c.AnalyticsCacheSizeMB == 0 {
		c.AnalyticsCacheSizeMB = 20
	}
	if c.PostgresUser == "" {
		c.PostgresUser = "postgres"
	}

	var err error
	if c.JWTTTL, err = parseDuration("jwt_ttl", c.JWTTTLRaw, 7*24*time.Hour); err != nil {
		return err
	}
	if c.AnalyticsCacheTTL, err = parseDuration("analytics_cache_ttl", c.AnalyticsCacheTTLRaw, time.Minute); err != nil {
		return err
	}
	c.RevokedTokensScanPeriod = time.Hour

	return nil
}

func parseDuration(key, raw string, def time.Duration) (time.Duration, error) {
	if raw == "" {
		return def, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s [%s]: %w", key, raw, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("invalid %s [%s]: must be positive", key, raw)
	}
	return d, nil
}

func (c *Config) Validate() error {
	var errs []error
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("port out of range: %d", c.Port))
	}
	if c.PostgresHost == "" || c.PostgresDBName == "" {
		errs = append(errs, errors.New("postgres host and db name must be set"))
	}
	if c.RedisHost == "" {
		errs = append(errs, errors.New("redis host must be set"))
	}
	if c.LoginRateLimitAllowedPerMin < 0 {
		errs = append(errs, errors.New("login rate limit must not be negative"))
	}
	return errors.Join(errs...)
}
