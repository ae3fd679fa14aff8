package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Matching holds the tunables of the scoring engine
type Matching struct {
	// OverlapCapHours is the total overlap treated as a perfect schedule match
	OverlapCapHours float64 `yaml:"overlapCapHours,omitempty" validate:"omitempty,gt=0"`
	// DefaultPreset names the weight preset used when a request carries no weights
	DefaultPreset string `yaml:"defaultPreset,omitempty" validate:"omitempty,oneof=interest-first schedule-first personality-first balanced"`
}

// Calendar holds calendar-fetch settings
type Calendar struct {
	// HorizonDays is how far ahead availability is materialized
	HorizonDays int `yaml:"horizonDays,omitempty" validate:"omitempty,min=1,max=60"`
	// MaxConcurrentFetches bounds the per-candidate calendar fan-out
	MaxConcurrentFetches int `yaml:"maxConcurrentFetches,omitempty" validate:"omitempty,min=1"`
}

// Config represents the application configuration
type Config struct {
	DatabaseURL string   `yaml:"databaseURL" validate:"required"`
	Matching    Matching `yaml:"matching,omitempty"`
	Calendar    Calendar `yaml:"calendar,omitempty"`
	MetricsAddr string   `yaml:"metricsAddr,omitempty" validate:"omitempty,hostname_port"`
}

// Defaults applied after load for any zero-valued optional field
const (
	DefaultHorizonDays          = 14
	DefaultOverlapCapHours      = 20.0
	DefaultMaxConcurrentFetches = 8
)

var validate *validator.Validate

func init() {
	validate = validator.New()
}

// Load loads and validates the configuration from friendzone_config.yaml
// It looks for the config file in the current directory first, then in the user's home directory
func Load() (*Config, error) {
	return LoadWithEnv("")
}

// LoadWithEnv loads the configuration with an environment suffix
// For example, env="test" will look for "friendzone_config.test.yaml"
func LoadWithEnv(env string) (*Config, error) {
	configPath, err := findConfigFile(env)
	if err != nil {
		return nil, fmt.Errorf("failed to find config file: %w", err)
	}

	return LoadFromPath(configPath)
}

// LoadFromPath loads and validates the configuration from a specific path
func LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	applyDefaults(&cfg)

	return &cfg, nil
}

// Validate validates the configuration struct
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}

func applyDefaults(cfg *Config) {
	if cfg.Calendar.HorizonDays == 0 {
		cfg.Calendar.HorizonDays = DefaultHorizonDays
	}
	if cfg.Calendar.MaxConcurrentFetches == 0 {
		cfg.Calendar.MaxConcurrentFetches = DefaultMaxConcurrentFetches
	}
	if cfg.Matching.OverlapCapHours == 0 {
		cfg.Matching.OverlapCapHours = DefaultOverlapCapHours
	}
}

// findConfigFile searches for friendzone_config.yaml in current directory and home directory
// If env is provided, it adds it as an extension (e.g., "friendzone_config.test.yaml")
func findConfigFile(env string) (string, error) {
	configFileName := "friendzone_config.yaml"
	if env != "" {
		configFileName = "friendzone_config." + env + ".yaml"
	}

	// Check current directory
	if _, err := os.Stat(configFileName); err == nil {
		return configFileName, nil
	}

	// Check home directory
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	homeConfigPath := filepath.Join(homeDir, configFileName)
	if _, err := os.Stat(homeConfigPath); err == nil {
		return homeConfigPath, nil
	}

	return "", fmt.Errorf("config file %s not found in current directory or home directory", configFileName)
}
