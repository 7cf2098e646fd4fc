package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/samirrijal/driverdash/internal/core/reconcile"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig     `mapstructure:"server"`
	Database  DatabaseConfig   `mapstructure:"database"`
	NATS      NATSConfig       `mapstructure:"nats"`
	Valkey    ValkeyConfig     `mapstructure:"valkey"`
	Cache     CacheConfig      `mapstructure:"cache"`
	Telemetry TelemetryConfig  `mapstructure:"telemetry"`
	Temporal  TemporalConfig   `mapstructure:"temporal"`
	Backend   BackendConfig    `mapstructure:"backend"`
	Reconcile reconcile.Config `mapstructure:"reconcile"`
	Services  ServicesConfig   `mapstructure:"services"`
	Log       LogConfig        `mapstructure:"log"`
}

type ServerConfig struct {
	Port         int    `mapstructure:"port"`
	ReadTimeout  int    `mapstructure:"read_timeout"`
	WriteTimeout int    `mapstructure:"write_timeout"`
	CORSOrigins  string `mapstructure:"cors_origins"`
}

type DatabaseConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
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
	Enabled bool   `mapstructure:"enabled"`
	URL     string `mapstructure:"url"`
}

type ValkeyConfig struct {
	Addr string `mapstructure:"addr"`
}

// CacheConfig selects the cache backend: "valkey" or "memory".
type CacheConfig struct {
	Driver     string `mapstructure:"driver"`
	MemorySize int    `mapstructure:"memory_size"`
}

type TelemetryConfig struct {
	ServiceName string `mapstructure:"service_name"`
	TempoAddr   string `mapstructure:"tempo_addr"`
	Enabled     bool   `mapstructure:"enabled"`
}

type TemporalConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	HostPort  string `mapstructure:"host_port"`
	Namespace string `mapstructure:"namespace"`
	TaskQueue string `mapstructure:"task_queue"`
}

// BackendConfig points at the routing service that owns trips, services and
// the road graph.
type BackendConfig struct {
	BaseURL        string `mapstructure:"base_url"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
	Algorithm      string `mapstructure:"algorithm"`
}

type ServicesConfig struct {
	OnRouteRadiusKm float64 `mapstructure:"on_route_radius_km"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Algorithms the routing backend understands.
var Algorithms = []string{"astar", "ucs", "bfs", "dfs"}

// Load reads configuration from file and environment variables.
func Load(service string) (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 10)
	v.SetDefault("server.write_timeout", 10)
	v.SetDefault("server.cors_origins", "*")
	v.SetDefault("database.enabled", true)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "driverdash")
	v.SetDefault("database.password", "")
	v.SetDefault("database.dbname", "driverdash")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 10)
	v.SetDefault("nats.enabled", true)
	v.SetDefault("nats.url", "nats://localhost:4222")
	v.SetDefault("valkey.addr", "localhost:6379")
	v.SetDefault("cache.driver", "valkey")
	v.SetDefault("cache.memory_size", 1024)
	v.SetDefault("telemetry.service_name", service)
	v.SetDefault("telemetry.tempo_addr", "tempo:4317")
	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("temporal.enabled", false)
	v.SetDefault("temporal.host_port", "localhost:7233")
	v.SetDefault("temporal.namespace", "default")
	v.SetDefault("temporal.task_queue", "route-planning")
	v.SetDefault("backend.base_url", "http://127.0.0.1:8000")
	v.SetDefault("backend.timeout_seconds", 10)
	v.SetDefault("backend.algorithm", "astar")
	defaults := reconcile.DefaultConfig()
	v.SetDefault("reconcile.orientation_threshold_km", defaults.OrientationThresholdKm)
	v.SetDefault("reconcile.snap_tolerance_km", defaults.SnapToleranceKm)
	v.SetDefault("reconcile.auto_select_score_km", defaults.AutoSelectScoreKm)
	v.SetDefault("reconcile.auto_select_margin_km", defaults.AutoSelectMarginKm)
	v.SetDefault("services.on_route_radius_km", 1.0)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Config file (optional)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	_ = v.ReadInConfig() // OK if missing

	// Environment variables: DRIVERDASH_DATABASE_HOST → database.host
	v.SetEnvPrefix("DRIVERDASH")
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
	if c.Database.Enabled {
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
	}
	if c.NATS.Enabled && c.NATS.URL == "" {
		errs = append(errs, "nats.url is required")
	}
	switch c.Cache.Driver {
	case "valkey":
		if c.Valkey.Addr == "" {
			errs = append(errs, "valkey.addr is required")
		}
	case "memory":
		if c.Cache.MemorySize <= 0 {
			errs = append(errs, "cache.memory_size must be positive")
		}
	default:
		errs = append(errs, fmt.Sprintf("cache.driver must be valkey or memory, got %q", c.Cache.Driver))
	}
	if c.Temporal.Enabled && (c.Temporal.HostPort == "" || c.Temporal.TaskQueue == "") {
		errs = append(errs, "temporal.host_port and temporal.task_queue are required")
	}
	if c.Backend.BaseURL == "" {
		errs = append(errs, "backend.base_url is required")
	}
	if c.Backend.TimeoutSeconds <= 0 {
		errs = append(errs, "backend.timeout_seconds must be positive")
	}
	if !ValidAlgorithm(c.Backend.Algorithm) {
		errs = append(errs, fmt.Sprintf("backend.algorithm must be one of %s, got %q",
			strings.Join(Algorithms, ", "), c.Backend.Algorithm))
	}
	r := c.Reconcile
	if r.OrientationThresholdKm < 0 || r.SnapToleranceKm < 0 || r.AutoSelectScoreKm < 0 || r.AutoSelectMarginKm < 0 {
		errs = append(errs, "reconcile thresholds must not be negative")
	}
	if c.Services.OnRouteRadiusKm <= 0 {
		errs = append(errs, "services.on_route_radius_km must be positive")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

// ValidAlgorithm reports whether name is a known routing algorithm.
func ValidAlgorithm(name string) bool {
	for _, a := range Algorithms {
		if a == name {
			return true
		}
	}
	return false
}
