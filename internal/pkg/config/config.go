package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Geocoder  GeocoderConfig  `mapstructure:"geocoder"`
	Router    RouterConfig    `mapstructure:"router"`
	Search    SearchConfig    `mapstructure:"search"`
	Location  LocationConfig  `mapstructure:"location"`
	NATS      NATSConfig      `mapstructure:"nats"`
	Valkey    ValkeyConfig    `mapstructure:"valkey"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
	Log       LogConfig       `mapstructure:"log"`
}

type ServerConfig struct {
	Port         int      `mapstructure:"port"`
	ReadTimeout  int      `mapstructure:"read_timeout"`
	WriteTimeout int      `mapstructure:"write_timeout"`
	AllowOrigins []string `mapstructure:"allow_origins"`
}

// GeocoderConfig points at a Nominatim-compatible search API.
type GeocoderConfig struct {
	BaseURL   string        `mapstructure:"base_url"`
	UserAgent string        `mapstructure:"user_agent"`
	Limit     int           `mapstructure:"limit"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

// RouterConfig points at an OSRM-compatible routing API.
type RouterConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type SearchConfig struct {
	Debounce       time.Duration `mapstructure:"debounce"`
	MinQueryLength int           `mapstructure:"min_query_length"`
}

// LocationConfig controls how screens obtain a device position.
type LocationConfig struct {
	Timeout    time.Duration `mapstructure:"timeout"`
	DefaultLat float64       `mapstructure:"default_lat"`
	DefaultLon float64       `mapstructure:"default_lon"`
	// FixedLat/FixedLon feed the terminal driver's static locator.
	FixedLat float64 `mapstructure:"fixed_lat"`
	FixedLon float64 `mapstructure:"fixed_lon"`
	Granted  bool    `mapstructure:"granted"`
}

type NATSConfig struct {
	URL     string `mapstructure:"url"`
	Enabled bool   `mapstructure:"enabled"`
}

type ValkeyConfig struct {
	Addr    string `mapstructure:"addr"`
	Enabled bool   `mapstructure:"enabled"`
}

type RateLimitConfig struct {
	Max    int           `mapstructure:"max"`
	Window time.Duration `mapstructure:"window"`
}

type TelemetryConfig struct {
	ServiceName   string `mapstructure:"service_name"`
	CollectorAddr string `mapstructure:"collector_addr"`
	Enabled       bool   `mapstructure:"enabled"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
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
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	// Environment variables: WAYFINDER_GEOCODER_BASE_URL → geocoder.base_url
	v.SetEnvPrefix("WAYFINDER")
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
	v.SetDefault("server.write_timeout", 10)
	v.SetDefault("server.allow_origins", []string{"http://localhost:8081", "http://localhost:19006"})
	v.SetDefault("geocoder.base_url", "https://nominatim.openstreetmap.org")
	v.SetDefault("geocoder.user_agent", "wayfinder/1.0")
	v.SetDefault("geocoder.limit", 5)
	v.SetDefault("geocoder.timeout", 10*time.Second)
	v.SetDefault("router.base_url", "https://router.project-osrm.org")
	v.SetDefault("router.timeout", 15*time.Second)
	v.SetDefault("search.debounce", 400*time.Millisecond)
	v.SetDefault("search.min_query_length", 3)
	v.SetDefault("location.timeout", 15*time.Second)
	v.SetDefault("location.default_lat", -34.6075682)
	v.SetDefault("location.default_lon", -58.4370894)
	v.SetDefault("location.fixed_lat", -34.6037)
	v.SetDefault("location.fixed_lon", -58.3816)
	v.SetDefault("location.granted", true)
	v.SetDefault("nats.url", "nats://localhost:4222")
	v.SetDefault("nats.enabled", true)
	v.SetDefault("valkey.addr", "localhost:6379")
	v.SetDefault("valkey.enabled", true)
	v.SetDefault("ratelimit.max", 120)
	v.SetDefault("ratelimit.window", time.Minute)
	v.SetDefault("telemetry.service_name", service)
	v.SetDefault("telemetry.collector_addr", "localhost:4317")
	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
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
	if err := checkURL(c.Geocoder.BaseURL); err != nil {
		errs = append(errs, "geocoder.base_url "+err.Error())
	}
	if c.Geocoder.UserAgent == "" {
		errs = append(errs, "geocoder.user_agent is required")
	}
	if c.Geocoder.Limit <= 0 || c.Geocoder.Limit > 50 {
		errs = append(errs, fmt.Sprintf("geocoder.limit must be 1-50, got %d", c.Geocoder.Limit))
	}
	if err := checkURL(c.Router.BaseURL); err != nil {
		errs = append(errs, "router.base_url "+err.Error())
	}
	if c.Search.Debounce < 0 {
		errs = append(errs, "search.debounce must not be negative")
	}
	if c.Search.MinQueryLength < 1 {
		errs = append(errs, "search.min_query_length must be at least 1")
	}
	if c.Location.Timeout <= 0 {
		errs = append(errs, "location.timeout must be positive")
	}
	if c.NATS.Enabled && c.NATS.URL == "" {
		errs = append(errs, "nats.url is required when nats is enabled")
	}
	if c.Valkey.Enabled && c.Valkey.Addr == "" {
		errs = append(errs, "valkey.addr is required when valkey is enabled")
	}
	if c.RateLimit.Max <= 0 {
		errs = append(errs, "ratelimit.max must be positive")
	}
	if c.RateLimit.Window <= 0 {
		errs = append(errs, "ratelimit.window must be positive")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

func checkURL(raw string) error {
	if raw == "" {
		return fmt.Errorf("is required")
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("must be an absolute URL, got %q", raw)
	}
	return nil
}
