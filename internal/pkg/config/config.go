package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Log       LogConfig       `mapstructure:"log"`
	Dataset   DatasetConfig   `mapstructure:"dataset"`
	Search    SearchConfig    `mapstructure:"search"`
	NATS      NATSConfig      `mapstructure:"nats"`
	Valkey    ValkeyConfig    `mapstructure:"valkey"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

type ServerConfig struct {
	Port         int    `mapstructure:"port"`
	ReadTimeout  int    `mapstructure:"read_timeout"`
	WriteTimeout int    `mapstructure:"write_timeout"`
	CORSOrigins  string `mapstructure:"cors_origins"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type DatasetConfig struct {
	URL          string `mapstructure:"url"`
	CachePath    string `mapstructure:"cache_path"`
	FetchTimeout int    `mapstructure:"fetch_timeout"` // seconds
}

type SearchConfig struct {
	BaseURL           string `mapstructure:"base_url"`
	MaxMunicipalities int    `mapstructure:"max_municipalities"`
	RegionPolicy      string `mapstructure:"region_policy"`
	CacheTTL          int    `mapstructure:"cache_ttl"` // seconds, 0 disables
}

type NATSConfig struct {
	URL string `mapstructure:"url"` // empty disables event publishing
}

type ValkeyConfig struct {
	Addr string `mapstructure:"addr"` // empty disables the result cache
}

type TelemetryConfig struct {
	ServiceName string `mapstructure:"service_name"`
	TempoAddr   string `mapstructure:"tempo_addr"`
	Enabled     bool   `mapstructure:"enabled"`
}

// Load reads configuration from .env, an optional config file and
// environment variables, in increasing order of precedence.
func Load(service string) (*Config, error) {
	_ = godotenv.Load(".env") // OK if missing

	v := viper.New()

	// Defaults
	v.SetDefault("server.port", 5000)
	v.SetDefault("server.read_timeout", 10)
	v.SetDefault("server.write_timeout", 10)
	v.SetDefault("server.cors_origins", "https://jobbmapper.netlify.app")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("dataset.url", "https://raw.githubusercontent.com/kelvins/Municipios-Brasileiros/main/csv/municipios.csv")
	v.SetDefault("dataset.cache_path", "cidades_brasil.csv")
	v.SetDefault("dataset.fetch_timeout", 30)
	v.SetDefault("search.base_url", "https://portal.gupy.io/job-search/")
	v.SetDefault("search.max_municipalities", 80)
	v.SetDefault("search.region_policy", "first")
	v.SetDefault("search.cache_ttl", 300)
	v.SetDefault("nats.url", "")
	v.SetDefault("valkey.addr", "")
	v.SetDefault("telemetry.service_name", service)
	v.SetDefault("telemetry.tempo_addr", "tempo:4317")
	v.SetDefault("telemetry.enabled", false)

	// Config file (optional)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	_ = v.ReadInConfig() // OK if missing

	// Environment variables: JOBBMAPPER_DATASET_URL → dataset.url
	v.SetEnvPrefix("JOBBMAPPER")
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
	if c.Dataset.URL == "" {
		errs = append(errs, "dataset.url is required")
	}
	if c.Dataset.CachePath == "" {
		errs = append(errs, "dataset.cache_path is required")
	}
	if c.Dataset.FetchTimeout <= 0 {
		errs = append(errs, "dataset.fetch_timeout must be positive")
	}
	if c.Search.BaseURL == "" {
		errs = append(errs, "search.base_url is required")
	}
	if c.Search.MaxMunicipalities <= 0 {
		errs = append(errs, fmt.Sprintf("search.max_municipalities must be positive, got %d", c.Search.MaxMunicipalities))
	}
	switch strings.ToLower(c.Search.RegionPolicy) {
	case "first", "majority":
	default:
		errs = append(errs, fmt.Sprintf("search.region_policy must be first or majority, got %q", c.Search.RegionPolicy))
	}
	if c.Search.CacheTTL < 0 {
		errs = append(errs, "search.cache_ttl must not be negative")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
