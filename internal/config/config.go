package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/teambition/rrule-go"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	DatabaseURL string `yaml:"databaseURL" validate:"required"`

	// RecurrenceRule describes the primary recurring day for calendar
	// generation, e.g. "FREQ=WEEKLY;BYDAY=SU"
	RecurrenceRule string `yaml:"recurrenceRule" validate:"required"`

	// MorningTime and EveningTime are the two daily slots for recurring
	// events, in "HH:MM" form
	MorningTime string `yaml:"morningTime" validate:"required"`
	EveningTime string `yaml:"eveningTime" validate:"required"`

	// DefaultMonthlyLimit caps assignments per person per month unless the
	// person carries an override
	DefaultMonthlyLimit int `yaml:"defaultMonthlyLimit" validate:"required,min=1"`

	// DefaultRequiredCount is the number of operator slots per event
	DefaultRequiredCount int `yaml:"defaultRequiredCount" validate:"required,min=1"`

	// QuotaCountsAdhoc controls whether ad-hoc assignments count toward the
	// monthly limit and the rotation mark
	QuotaCountsAdhoc bool `yaml:"quotaCountsAdhoc"`

	// AdhocOptInRequired restricts ad-hoc eligibility to opted-in people
	AdhocOptInRequired bool `yaml:"adhocOptInRequired"`

	ListenAddr string `yaml:"listenAddr,omitempty"`
}

var validate *validator.Validate

func init() {
	validate = validator.New()
}

// Load loads and validates the configuration from rotaplan_config.yaml
// It looks for the config file in the current directory first, then in the user's home directory
func Load() (*Config, error) {
	configPath, err := findConfigFile("")
	if err != nil {
		return nil, fmt.Errorf("failed to find config file: %w", err)
	}

	return LoadFromPath(configPath)
}

// LoadWithEnv loads the configuration for a specific environment,
// e.g. rotaplan_config.test.yaml for env "test"
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

	return &cfg, nil
}

// Validate validates the configuration struct, the recurrence rule syntax and
// the slot times
func Validate(cfg *Config) error {
	// Run struct validation
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	if _, err := rrule.StrToRRule(cfg.RecurrenceRule); err != nil {
		return fmt.Errorf("invalid recurrenceRule: %w", err)
	}

	morning, err := time.Parse("15:04", cfg.MorningTime)
	if err != nil {
		return fmt.Errorf("invalid morningTime: %w", err)
	}
	evening, err := time.Parse("15:04", cfg.EveningTime)
	if err != nil {
		return fmt.Errorf("invalid eveningTime: %w", err)
	}

	// The morning/evening split at noon drives slot derivation, so the
	// configured times must sit on the right sides of it
	if morning.Hour() >= 12 {
		return fmt.Errorf("morningTime %q must be before 12:00", cfg.MorningTime)
	}
	if evening.Hour() < 12 {
		return fmt.Errorf("eveningTime %q must be at or after 12:00", cfg.EveningTime)
	}

	return nil
}

// findConfigFile searches for the config file in current directory and home directory
func findConfigFile(env string) (string, error) {
	configFileName := "rotaplan_config.yaml"
	if env != "" {
		configFileName = fmt.Sprintf("rotaplan_config.%s.yaml", env)
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

	return "", fmt.Errorf("config file not found in current directory or home directory")
}
