package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	Server     ServerConfig     `koanf:"server"`
	Upload     UploadConfig     `koanf:"upload"`
	Extraction ExtractionConfig `koanf:"extraction"`
	Structured StructuredConfig `koanf:"structured"`
	Publishing PublishingConfig `koanf:"publishing"`
	Logging    LoggingConfig    `koanf:"logging"`
}

type ServerConfig struct {
	Host    string `koanf:"host"`
	Port    int    `koanf:"port"`
	BaseURL string `koanf:"base_url"`
}

type UploadConfig struct {
	Dir     string `koanf:"dir"`
	MaxSize int64  `koanf:"max_size"`
}

type ExtractionConfig struct {
	Pdftotext string `koanf:"pdftotext"`
	Timeout   string `koanf:"timeout"`
}

type StructuredConfig struct {
	Mode        string  `koanf:"mode"`
	APIKey      string  `koanf:"api_key"`
	BaseURL     string  `koanf:"base_url"`
	Model       string  `koanf:"model"`
	Temperature float32 `koanf:"temperature"`
	Timeout     string  `koanf:"timeout"`
}

type PublishingConfig struct {
	Mode         string `koanf:"mode"`
	BaseURL      string `koanf:"base_url"`
	Token        string `koanf:"token"`
	DefaultSpace string `koanf:"default_space"`
	Timeout      string `koanf:"timeout"`
}

type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// Load reads config from TOML file (if provided) then overlays env vars.
func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	// 1. Load defaults
	if err := loadDefaults(k); err != nil {
		return nil, err
	}

	// 2. Load TOML config file if provided
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), toml.Parser()); err != nil {
			return nil, err
		}
	}

	// 3. Load env vars: CP_SERVER_PORT -> server.port. The first underscore
	// separates section from key; later underscores belong to the key
	// (CP_UPLOAD_MAX_SIZE -> upload.max_size). Empty values are skipped so
	// they never override TOML config.
	if err := k.Load(env.ProviderWithValue("CP_", ".", func(key, value string) (string, interface{}) {
		if value == "" {
			return "", nil
		}
		parts := strings.SplitN(
			strings.ToLower(strings.TrimPrefix(key, "CP_")),
			"_", 2,
		)
		return strings.Join(parts, "."), value
	}), nil); err != nil {
		return nil, err
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, err
	}

	if cfg.Server.BaseURL == "" {
		cfg.Server.BaseURL = fmt.Sprintf("http://%s:%d", cfg.Server.Host, cfg.Server.Port)
	}

	return &cfg, nil
}

// ParseTimeout parses a duration string, falling back when unset or invalid.
func ParseTimeout(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
