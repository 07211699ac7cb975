package config

import (
	"fmt"
	"strings"

	"fleetops/fleet-ledger/internal/logging"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"golang.org/x/net/html/charset"
)

// Extraction providers.
const (
	ProviderHTTP   = "http"
	ProviderGemini = "gemini"
)

// Config represents the complete application configuration
type Config struct {
	Log struct {
		Level  string `mapstructure:"level" yaml:"level"`
		Format string `mapstructure:"format" yaml:"format"`
	} `mapstructure:"log" yaml:"log"`

	Storage struct {
		Path string `mapstructure:"path" yaml:"path"`
	} `mapstructure:"storage" yaml:"storage"`

	Ingest struct {
		BatchSize      int    `mapstructure:"batch_size" yaml:"batch_size"`
		HeaderScanRows int    `mapstructure:"header_scan_rows" yaml:"header_scan_rows"`
		CSVCharset     string `mapstructure:"csv_charset" yaml:"csv_charset"`
	} `mapstructure:"ingest" yaml:"ingest"`

	Extraction struct {
		Provider       string `mapstructure:"provider" yaml:"provider"`
		Endpoint       string `mapstructure:"endpoint" yaml:"endpoint"`
		TimeoutSeconds int    `mapstructure:"timeout_seconds" yaml:"timeout_seconds"`
		Model          string `mapstructure:"model" yaml:"model"`
		APIKey         string `mapstructure:"api_key" yaml:"-"` // Never serialize API key
	} `mapstructure:"extraction" yaml:"extraction"`

	Schedule struct {
		DefaultDay int `mapstructure:"default_day" yaml:"default_day"`
	} `mapstructure:"schedule" yaml:"schedule"`

	Rules struct {
		DefaultsFile string `mapstructure:"defaults_file" yaml:"defaults_file"`
	} `mapstructure:"rules" yaml:"rules"`
}

// InitializeConfig initializes Viper configuration with hierarchical loading
func InitializeConfig() (*Config, error) {
	v := viper.New()

	// 1. Set defaults
	setDefaults(v)

	// 2. Config file locations
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("$HOME/.fleet-ledger")
	v.AddConfigPath(".fleet-ledger")
	v.AddConfigPath(".")

	// 3. Environment variables
	v.SetEnvPrefix("FLEET")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// 4. Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file %s: %w", v.ConfigFileUsed(), err)
		}
	}

	// 5. The API key also comes from the unprefixed variable
	if err := v.BindEnv("extraction.api_key", "FLEET_EXTRACTION_API_KEY", "GEMINI_API_KEY"); err != nil {
		return nil, fmt.Errorf("failed to bind GEMINI_API_KEY: %w", err)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// 6. Validate configuration
	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("storage.path", "fleet-ledger.db")

	v.SetDefault("ingest.batch_size", 30)
	v.SetDefault("ingest.header_scan_rows", 20)
	v.SetDefault("ingest.csv_charset", "utf-8")

	v.SetDefault("extraction.provider", ProviderHTTP)
	v.SetDefault("extraction.endpoint", "http://localhost:8080/extract")
	v.SetDefault("extraction.timeout_seconds", 120)
	v.SetDefault("extraction.model", "gemini-2.0-flash")
	v.SetDefault("extraction.api_key", "")

	v.SetDefault("schedule.default_day", 10)

	v.SetDefault("rules.defaults_file", "")
}

// validateConfig validates the configuration values
func validateConfig(config *Config) error {
	if _, err := logrus.ParseLevel(config.Log.Level); err != nil {
		return fmt.Errorf("invalid log level: %s", config.Log.Level)
	}

	if config.Log.Format != "text" && config.Log.Format != "json" {
		return fmt.Errorf("invalid log format: %s (must be 'text' or 'json')", config.Log.Format)
	}

	if strings.TrimSpace(config.Storage.Path) == "" {
		return fmt.Errorf("storage.path must not be empty")
	}

	if config.Ingest.BatchSize < 1 || config.Ingest.BatchSize > 1000 {
		return fmt.Errorf("ingest.batch_size must be between 1 and 1000, got: %d", config.Ingest.BatchSize)
	}

	if config.Ingest.HeaderScanRows < 1 {
		return fmt.Errorf("ingest.header_scan_rows must be positive, got: %d", config.Ingest.HeaderScanRows)
	}

	if enc, _ := charset.Lookup(config.Ingest.CSVCharset); enc == nil {
		return fmt.Errorf("unknown ingest.csv_charset: %s", config.Ingest.CSVCharset)
	}

	switch config.Extraction.Provider {
	case ProviderHTTP:
		if config.Extraction.Endpoint == "" {
			return fmt.Errorf("extraction.endpoint required for the http provider")
		}
	case ProviderGemini:
		if config.Extraction.APIKey == "" {
			return fmt.Errorf("GEMINI_API_KEY required for the gemini provider")
		}
	default:
		return fmt.Errorf("invalid extraction.provider: %s (must be 'http' or 'gemini')", config.Extraction.Provider)
	}

	if config.Extraction.TimeoutSeconds < 1 || config.Extraction.TimeoutSeconds > 600 {
		return fmt.Errorf("extraction.timeout_seconds must be between 1 and 600, got: %d", config.Extraction.TimeoutSeconds)
	}

	if config.Schedule.DefaultDay < 1 || config.Schedule.DefaultDay > 31 {
		return fmt.Errorf("schedule.default_day must be between 1 and 31, got: %d", config.Schedule.DefaultDay)
	}

	return nil
}

// NewLoggerFromConfig builds the application logger from the log section.
func NewLoggerFromConfig(config *Config) logging.Logger {
	return logging.NewLogrusAdapter(config.Log.Level, config.Log.Format)
}
