// Package config loads server and CLI defaults from YAML with environment overrides.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Environment variables consulted by Load.
const (
	EnvPort         = "PORT"
	EnvConfigPath   = "AUDIOCRYPTOR_CONFIG"
	EnvLogLevel     = "AUDIOCRYPTOR_LOG_LEVEL"
	EnvAllowOrigins = "AUDIOCRYPTOR_ALLOW_ORIGINS"
)

var ErrInvalidConfig = errors.New("invalid configuration")

// ConfigError names the field that failed validation.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s: %s %s", ErrInvalidConfig.Error(), e.Field, e.Reason)
}

func (e *ConfigError) Unwrap() error {
	return ErrInvalidConfig
}

type Config struct {
	Port           string   `yaml:"port"`
	AllowOrigins   []string `yaml:"allow_origins"`
	MaxUploadMB    int64    `yaml:"max_upload_mb"`
	DefaultLSBBits int      `yaml:"default_lsb_bits"`
	DefaultScatter bool     `yaml:"default_scatter"`
	// PSNRThreshold is the quality floor below which an encode is logged as degraded.
	PSNRThreshold float64 `yaml:"psnr_threshold"`
	LogLevel      string  `yaml:"log_level"`
}

func Default() *Config {
	return &Config{
		Port:           "8080",
		AllowOrigins:   []string{"http://localhost:3000"},
		MaxUploadMB:    100,
		DefaultLSBBits: 1,
		DefaultScatter: true,
		PSNRThreshold:  40,
		LogLevel:       "info",
	}
}

// Load reads path (or $AUDIOCRYPTOR_CONFIG when path is empty) over the
// defaults, applies environment overrides and validates the result. A missing
// file is only an error when a path was given explicitly.
func Load(path string) (*Config, error) {
	conf := Default()

	explicit := path != ""
	if !explicit {
		path = os.Getenv(EnvConfigPath)
	}
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, conf); err != nil {
				return nil, fmt.Errorf("failed to parse %s: %w", path, err)
			}
		case explicit || !errors.Is(err, os.ErrNotExist):
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
	}

	conf.applyEnv()
	if err := conf.Validate(); err != nil {
		return nil, err
	}
	return conf, nil
}

func (c *Config) applyEnv() {
	if port := os.Getenv(EnvPort); port != "" {
		c.Port = port
	}
	if level := os.Getenv(EnvLogLevel); level != "" {
		c.LogLevel = level
	}
	if origins := os.Getenv(EnvAllowOrigins); origins != "" {
		c.AllowOrigins = nil
		for _, o := range strings.Split(origins, ",") {
			if o = strings.TrimSpace(o); o != "" {
				c.AllowOrigins = append(c.AllowOrigins, o)
			}
		}
	}
}

func (c *Config) Validate() error {
	if _, err := strconv.ParseUint(c.Port, 10, 16); err != nil {
		return &ConfigError{Field: "port", Reason: fmt.Sprintf("%q is not a TCP port", c.Port)}
	}
	if len(c.AllowOrigins) == 0 {
		return &ConfigError{Field: "allow_origins", Reason: "must list at least one origin or \"*\""}
	}
	if c.MaxUploadMB <= 0 {
		return &ConfigError{Field: "max_upload_mb", Reason: "must be positive"}
	}
	if c.DefaultLSBBits < 1 || c.DefaultLSBBits > 2 {
		return &ConfigError{Field: "default_lsb_bits", Reason: "must be 1 or 2"}
	}
	if c.PSNRThreshold < 0 {
		return &ConfigError{Field: "psnr_threshold", Reason: "must not be negative"}
	}
	if _, err := c.SlogLevel(); err != nil {
		return &ConfigError{Field: "log_level", Reason: err.Error()}
	}
	return nil
}

// SlogLevel parses LogLevel ("debug", "info", "warn", "error").
func (c *Config) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo, fmt.Errorf("unknown level %q", c.LogLevel)
	}
	return level, nil
}

// AllowsAllOrigins reports whether CORS is open to every origin.
func (c *Config) AllowsAllOrigins() bool {
	return slices.Contains(c.AllowOrigins, "*")
}

// MaxUploadBytes is the multipart memory limit handed to gin.
func (c *Config) MaxUploadBytes() int64 {
	return c.MaxUploadMB << 20
}
