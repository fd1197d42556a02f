package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	NATS      NATSConfig      `mapstructure:"nats"`
	Valkey    ValkeyConfig    `mapstructure:"valkey"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
	Log       LogConfig       `mapstructure:"log"`
	Places    PlacesConfig    `mapstructure:"places"`
	Narrative NarrativeConfig `mapstructure:"narrative"`
	Archive   ArchiveConfig   `mapstructure:"archive"`
	Temporal  TemporalConfig  `mapstructure:"temporal"`
	Quota     QuotaConfig     `mapstructure:"quota"`
}

type ServerConfig struct {
	Port              int    `mapstructure:"port"`
	ReadTimeout       int    `mapstructure:"read_timeout"`
	WriteTimeout      int    `mapstructure:"write_timeout"`
	AnalysisTimeout   int    `mapstructure:"analysis_timeout"` // seconds
	RequestsPerMinute int    `mapstructure:"requests_per_minute"`
	AllowOrigins      string `mapstructure:"allow_origins"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
	MaxConns int32  `mapstructure:"max_conns"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

type NATSConfig struct {
	URL string `mapstructure:"url"`
}

type ValkeyConfig struct {
	Addr        string `mapstructure:"addr"`
	Prefix      string `mapstructure:"prefix"`
	SnapshotTTL int    `mapstructure:"snapshot_ttl"` // seconds
}

type TelemetryConfig struct {
	ServiceName string `mapstructure:"service_name"`
	TempoAddr   string `mapstructure:"tempo_addr"`
	Enabled     bool   `mapstructure:"enabled"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// PlacesConfig selects and tunes the places provider.
type PlacesConfig struct {
	Provider          string   `mapstructure:"provider"` // google | overpass
	APIKey            string   `mapstructure:"api_key"`
	BaseURL           string   `mapstructure:"base_url"`
	OverpassEndpoint  string   `mapstructure:"overpass_endpoint"`
	Terms             []string `mapstructure:"terms"`
	PerCategoryCap    int      `mapstructure:"per_category_cap"`
	ThrottleMS        int      `mapstructure:"throttle_ms"`
	RequestTimeout    int      `mapstructure:"request_timeout"` // seconds
	DetailConcurrency int      `mapstructure:"detail_concurrency"`
	Retries           int      `mapstructure:"retries"`
}

// Throttle is the pause between category queries.
func (p PlacesConfig) Throttle() time.Duration {
	return time.Duration(p.ThrottleMS) * time.Millisecond
}

// Timeout is the per-call provider timeout.
func (p PlacesConfig) Timeout() time.Duration {
	return time.Duration(p.RequestTimeout) * time.Second
}

type NarrativeConfig struct {
	APIKey       string `mapstructure:"api_key"`
	Model        string `mapstructure:"model"`
	PremiumModel string `mapstructure:"premium_model"`
	Timeout      int    `mapstructure:"timeout"` // seconds
}

type ArchiveConfig struct {
	Bucket string `mapstructure:"bucket"`
	Region string `mapstructure:"region"`
	Prefix string `mapstructure:"prefix"`
}

// Enabled reports whether premium reports are archived to S3.
func (a ArchiveConfig) Enabled() bool { return a.Bucket != "" }

type TemporalConfig struct {
	HostPort  string `mapstructure:"host_port"`
	Namespace string `mapstructure:"namespace"`
	TaskQueue string `mapstructure:"task_queue"`
	Enabled   bool   `mapstructure:"enabled"`
}

type QuotaConfig struct {
	FreeDailyLimit int    `mapstructure:"free_daily_limit"`
	Timezone       string `mapstructure:"timezone"`
}

// Location returns the quota's calendar timezone, falling back to UTC.
func (q QuotaConfig) Location() *time.Location {
	if q.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(q.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Load reads configuration from file and environment variables.
func Load(service string) (*Config, error) {
	v := viper.New()
	setDefaults(v, service)

	// Config file (optional)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	_ = v.ReadInConfig() // OK if missing

	// Environment variables: AREAINSIGHT_DATABASE_HOST → database.host
	v.SetEnvPrefix("AREAINSIGHT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper, service string) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 10)
	v.SetDefault("server.write_timeout", 150)
	v.SetDefault("server.analysis_timeout", 120)
	v.SetDefault("server.requests_per_minute", 120)
	v.SetDefault("server.allow_origins", "*")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "areainsight")
	v.SetDefault("database.password", "")
	v.SetDefault("database.dbname", "areainsight")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 10)
	v.SetDefault("nats.url", "nats://localhost:4222")
	v.SetDefault("valkey.addr", "localhost:6379")
	v.SetDefault("valkey.prefix", "areainsight:")
	v.SetDefault("valkey.snapshot_ttl", 900)
	v.SetDefault("telemetry.service_name", service)
	v.SetDefault("telemetry.tempo_addr", "tempo:4317")
	v.SetDefault("telemetry.enabled", true)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("places.provider", "google")
	v.SetDefault("places.api_key", "")
	v.SetDefault("places.base_url", "https://maps.googleapis.com/maps/api/place")
	v.SetDefault("places.overpass_endpoint", "https://overpass-api.de/api/interpreter")
	v.SetDefault("places.terms", []string{})
	v.SetDefault("places.per_category_cap", 20)
	v.SetDefault("places.throttle_ms", 100)
	v.SetDefault("places.request_timeout", 10)
	v.SetDefault("places.detail_concurrency", 4)
	v.SetDefault("places.retries", 0)
	v.SetDefault("narrative.api_key", "")
	v.SetDefault("narrative.model", "gemini-2.0-flash")
	v.SetDefault("narrative.premium_model", "gemini-2.5-pro")
	v.SetDefault("narrative.timeout", 60)
	v.SetDefault("archive.bucket", "")
	v.SetDefault("archive.region", "eu-west-1")
	v.SetDefault("archive.prefix", "reports")
	v.SetDefault("temporal.host_port", "localhost:7233")
	v.SetDefault("temporal.namespace", "default")
	v.SetDefault("temporal.task_queue", "premium-reports")
	v.SetDefault("temporal.enabled", true)
	v.SetDefault("quota.free_daily_limit", 1)
	v.SetDefault("quota.timezone", "UTC")
}

// Validate checks that required configuration fields are present and sane.
func (c *Config) Validate() error {
	var errs []string

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server.port must be 1-65535, got %d", c.Server.Port))
	}
	if c.Server.ReadTimeout <= 0 {
		errs = append(errs, "server.read_timeout must be positive")
	}
	if c.Server.WriteTimeout <= 0 {
		errs = append(errs, "server.write_timeout must be positive")
	}
	if c.Server.AnalysisTimeout <= 0 {
		errs = append(errs, "server.analysis_timeout must be positive")
	}
	if c.Database.Host == "" {
		errs = append(errs, "database.host is required")
	}
	if c.Database.Port <= 0 || c.Database.Port > 65535 {
		errs = append(errs, fmt.Sprintf("database.port must be 1-65535, got %d", c.Database.Port))
	}
	if c.Database.User == "" {
		errs = append(errs, "database.user is required")
	}
	if c.Database.DBName == "" {
		errs = append(errs, "database.dbname is required")
	}
	if c.NATS.URL == "" {
		errs = append(errs, "nats.url is required")
	}
	if c.Valkey.Addr == "" {
		errs = append(errs, "valkey.addr is required")
	}
	switch c.Places.Provider {
	case "google":
		if c.Places.APIKey == "" {
			errs = append(errs, "places.api_key is required for the google provider")
		}
	case "overpass":
		if c.Places.OverpassEndpoint == "" {
			errs = append(errs, "places.overpass_endpoint is required for the overpass provider")
		}
	default:
		errs = append(errs, fmt.Sprintf("places.provider must be google or overpass, got %q", c.Places.Provider))
	}
	if c.Places.PerCategoryCap <= 0 {
		errs = append(errs, "places.per_category_cap must be positive")
	}
	if c.Places.ThrottleMS < 0 {
		errs = append(errs, "places.throttle_ms must not be negative")
	}
	if c.Places.RequestTimeout <= 0 {
		errs = append(errs, "places.request_timeout must be positive")
	}
	if c.Places.DetailConcurrency <= 0 {
		errs = append(errs, "places.detail_concurrency must be positive")
	}
	if c.Places.Retries < 0 {
		errs = append(errs, "places.retries must not be negative")
	}
	if c.Narrative.Model == "" {
		errs = append(errs, "narrative.model is required")
	}
	if c.Narrative.Timeout <= 0 {
		errs = append(errs, "narrative.timeout must be positive")
	}
	if c.Temporal.Enabled && c.Temporal.TaskQueue == "" {
		errs = append(errs, "temporal.task_queue is required when temporal is enabled")
	}
	if c.Quota.FreeDailyLimit < 0 {
		errs = append(errs, "quota.free_daily_limit must not be negative")
	}
	if c.Quota.Timezone != "" {
		if _, err := time.LoadLocation(c.Quota.Timezone); err != nil {
			errs = append(errs, fmt.Sprintf("quota.timezone %q is not a known location", c.Quota.Timezone))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
