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
	Log       LogConfig       `mapstructure:"log"`
	Database  DatabaseConfig  `mapstructure:"database"`
	NATS      NATSConfig      `mapstructure:"nats"`
	Valkey    ValkeyConfig    `mapstructure:"valkey"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
	Temporal  TemporalConfig  `mapstructure:"temporal"`
	POI       POIConfig       `mapstructure:"poi"`
	Geocoder  GeocoderConfig  `mapstructure:"geocoder"`
	Routing   RoutingConfig   `mapstructure:"routing"`
	Ranking   RankingConfig   `mapstructure:"ranking"`
	Session   SessionConfig   `mapstructure:"session"`
	Map       MapConfig       `mapstructure:"map"`
}

type ServerConfig struct {
	Port           int      `mapstructure:"port"`
	ReadTimeout    int      `mapstructure:"read_timeout"`
	WriteTimeout   int      `mapstructure:"write_timeout"`
	RequestTimeout int      `mapstructure:"request_timeout"`
	RateLimit      int      `mapstructure:"rate_limit"`
	AllowOrigins   []string `mapstructure:"allow_origins"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
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
	URL string `mapstructure:"url"`
}

type ValkeyConfig struct {
	Addr   string `mapstructure:"addr"`
	Prefix string `mapstructure:"prefix"`
}

type TelemetryConfig struct {
	ServiceName string `mapstructure:"service_name"`
	TempoAddr   string `mapstructure:"tempo_addr"`
	Enabled     bool   `mapstructure:"enabled"`
}

type TemporalConfig struct {
	HostPort  string `mapstructure:"host_port"`
	Namespace string `mapstructure:"namespace"`
	TaskQueue string `mapstructure:"task_queue"`
}

// POIConfig selects where the POI dataset comes from.
type POIConfig struct {
	Source          string   `mapstructure:"source"` // "geojson" or "postgres"
	Path            string   `mapstructure:"path"`   // file path or http(s) URL
	NameKeys        []string `mapstructure:"name_keys"`
	DescriptionKeys []string `mapstructure:"description_keys"`
}

type GeocoderConfig struct {
	BaseURL      string  `mapstructure:"base_url"`
	UserAgent    string  `mapstructure:"user_agent"`
	RatePerSec   float64 `mapstructure:"rate_per_sec"`
	Limit        int     `mapstructure:"limit"`
	CountryCodes string  `mapstructure:"country_codes"`
	Timeout      int     `mapstructure:"timeout"`
	CacheTTL     int     `mapstructure:"cache_ttl"`
}

type RoutingConfig struct {
	BaseURL    string  `mapstructure:"base_url"`
	Profile    string  `mapstructure:"profile"`
	RatePerSec float64 `mapstructure:"rate_per_sec"`
	Timeout    int     `mapstructure:"timeout"`
}

type RankingConfig struct {
	CandidateLimit   int     `mapstructure:"candidate_limit"`
	TopN             int     `mapstructure:"top_n"`
	ToleranceDegrees float64 `mapstructure:"tolerance_degrees"`
}

type SessionConfig struct {
	TTL time.Duration `mapstructure:"ttl"`
}

type MapConfig struct {
	CenterLat float64 `mapstructure:"center_lat"`
	CenterLon float64 `mapstructure:"center_lon"`
	Zoom      int     `mapstructure:"zoom"`
}

// Load reads configuration from file and environment variables.
func Load(service string) (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 10)
	v.SetDefault("server.write_timeout", 30)
	v.SetDefault("server.request_timeout", 25)
	v.SetDefault("server.rate_limit", 120)
	v.SetDefault("server.allow_origins", []string{"http://localhost:3000", "http://localhost:5173"})
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("database.enabled", false)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "jelajah")
	v.SetDefault("database.password", "")
	v.SetDefault("database.dbname", "jelajah")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 10)
	v.SetDefault("nats.url", "nats://localhost:4222")
	v.SetDefault("valkey.addr", "localhost:6379")
	v.SetDefault("valkey.prefix", "jelajah:")
	v.SetDefault("telemetry.service_name", service)
	v.SetDefault("telemetry.tempo_addr", "tempo:4317")
	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("temporal.host_port", "localhost:7233")
	v.SetDefault("temporal.namespace", "default")
	v.SetDefault("temporal.task_queue", "poi-import")
	v.SetDefault("poi.source", "geojson")
	v.SetDefault("poi.path", "data/wisata_diy.geojson")
	v.SetDefault("poi.name_keys", []string{"name", "nama_objek", "nama"})
	v.SetDefault("poi.description_keys", []string{"description", "deskripsi"})
	v.SetDefault("geocoder.base_url", "https://nominatim.openstreetmap.org")
	v.SetDefault("geocoder.user_agent", "jelajah/1.0 (+https://github.com/samirrijal/jelajah)")
	v.SetDefault("geocoder.rate_per_sec", 1.0)
	v.SetDefault("geocoder.limit", 1)
	v.SetDefault("geocoder.country_codes", "")
	v.SetDefault("geocoder.timeout", 10)
	v.SetDefault("geocoder.cache_ttl", 86400)
	v.SetDefault("routing.base_url", "https://router.project-osrm.org")
	v.SetDefault("routing.profile", "driving")
	v.SetDefault("routing.rate_per_sec", 0)
	v.SetDefault("routing.timeout", 10)
	v.SetDefault("ranking.candidate_limit", 20)
	v.SetDefault("ranking.top_n", 5)
	v.SetDefault("ranking.tolerance_degrees", 30.0)
	v.SetDefault("session.ttl", "2h")
	v.SetDefault("map.center_lat", -7.7956)
	v.SetDefault("map.center_lon", 110.3695)
	v.SetDefault("map.zoom", 11)

	// Config file (optional)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	_ = v.ReadInConfig() // OK if missing

	// Environment variables: JELAJAH_ROUTING_BASE_URL → routing.base_url
	v.SetEnvPrefix("JELAJAH")
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
	if c.Server.RequestTimeout <= 0 {
		errs = append(errs, "server.request_timeout must be positive")
	}

	switch c.POI.Source {
	case "geojson":
		if c.POI.Path == "" {
			errs = append(errs, "poi.path is required when poi.source is geojson")
		}
	case "postgres":
		if !c.Database.Enabled {
			errs = append(errs, "database.enabled must be true when poi.source is postgres")
		}
	default:
		errs = append(errs, fmt.Sprintf("poi.source must be geojson or postgres, got %q", c.POI.Source))
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

	if c.Geocoder.BaseURL == "" {
		errs = append(errs, "geocoder.base_url is required")
	}
	if c.Geocoder.UserAgent == "" {
		errs = append(errs, "geocoder.user_agent is required")
	}
	if c.Geocoder.RatePerSec < 0 {
		errs = append(errs, "geocoder.rate_per_sec must not be negative")
	}
	if c.Routing.BaseURL == "" {
		errs = append(errs, "routing.base_url is required")
	}
	switch c.Routing.Profile {
	case "driving", "walking", "cycling":
	default:
		errs = append(errs, fmt.Sprintf("routing.profile must be driving, walking or cycling, got %q", c.Routing.Profile))
	}
	if c.Routing.RatePerSec < 0 {
		errs = append(errs, "routing.rate_per_sec must not be negative")
	}

	if c.Ranking.CandidateLimit <= 0 {
		errs = append(errs, "ranking.candidate_limit must be positive")
	}
	if c.Ranking.TopN <= 0 {
		errs = append(errs, "ranking.top_n must be positive")
	}
	if c.Ranking.TopN > c.Ranking.CandidateLimit {
		errs = append(errs, "ranking.top_n must not exceed ranking.candidate_limit")
	}
	if c.Ranking.ToleranceDegrees <= 0 || c.Ranking.ToleranceDegrees > 180 {
		errs = append(errs, fmt.Sprintf("ranking.tolerance_degrees must be in (0, 180], got %v", c.Ranking.ToleranceDegrees))
	}
	if c.Session.TTL <= 0 {
		errs = append(errs, "session.ttl must be positive")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
