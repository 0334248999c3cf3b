package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server" mapstructure:"server"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
	Provider ProviderConfig `yaml:"provider" mapstructure:"provider"`
	Google   GoogleConfig   `yaml:"google" mapstructure:"google"`
	Overpass OverpassConfig `yaml:"overpass" mapstructure:"overpass"`
	Search   SearchConfig   `yaml:"search" mapstructure:"search"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// ProviderConfig selects the place-data backend.
type ProviderConfig struct {
	// Name is "overpass" (default, keyless) or "google".
	Name string `yaml:"name" mapstructure:"name"`
}

// GoogleConfig holds Google Places API settings.
type GoogleConfig struct {
	Key           string  `yaml:"key" mapstructure:"key"`
	BaseURL       string  `yaml:"base_url" mapstructure:"base_url"`
	RadiusMiles   float64 `yaml:"radius_miles" mapstructure:"radius_miles"`
	MaxRadiusM    int     `yaml:"max_radius_m" mapstructure:"max_radius_m"`
	TimeoutSecs   int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	PhotoMaxWidth int     `yaml:"photo_max_width" mapstructure:"photo_max_width"`
}

// OverpassConfig holds open map-data query service settings.
type OverpassConfig struct {
	Mirrors     []string `yaml:"mirrors" mapstructure:"mirrors"`
	TimeoutSecs int      `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	RadiusMiles float64  `yaml:"radius_miles" mapstructure:"radius_miles"`

	// Race dispatches mirrors concurrently with a stagger delay, first
	// success wins. Off by default; the sequential cascade is the
	// reference behavior.
	Race          bool `yaml:"race" mapstructure:"race"`
	RaceStaggerMS int  `yaml:"race_stagger_ms" mapstructure:"race_stagger_ms"`
	RatePerSec    int  `yaml:"rate_per_sec" mapstructure:"rate_per_sec"`
	RateBurst     int  `yaml:"rate_burst" mapstructure:"rate_burst"`
}

// SearchConfig bounds the result pipeline.
type SearchConfig struct {
	MaxResults    int `yaml:"max_results" mapstructure:"max_results"`
	FallbackLimit int `yaml:"fallback_limit" mapstructure:"fallback_limit"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("DEALS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("server.port", 8080)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("provider.name", "overpass")
	// Empty default so the DEALS_GOOGLE_KEY env binding is picked up by
	// Unmarshal.
	v.SetDefault("google.key", "")
	v.SetDefault("google.base_url", "https://maps.googleapis.com/maps/api/place")
	v.SetDefault("google.radius_miles", 10)
	v.SetDefault("google.max_radius_m", 50000)
	v.SetDefault("google.timeout_secs", 25)
	v.SetDefault("google.photo_max_width", 800)
	v.SetDefault("overpass.mirrors", []string{
		"https://overpass-api.de/api/interpreter",
		"https://overpass.kumi.systems/api/interpreter",
		"https://maps.mail.ru/osm/tools/overpass/api/interpreter",
	})
	v.SetDefault("overpass.timeout_secs", 25)
	v.SetDefault("overpass.radius_miles", 20)
	v.SetDefault("overpass.race", false)
	v.SetDefault("overpass.race_stagger_ms", 500)
	v.SetDefault("overpass.rate_per_sec", 2)
	v.SetDefault("overpass.rate_burst", 2)
	v.SetDefault("search.max_results", 50)
	v.SetDefault("search.fallback_limit", 20)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
