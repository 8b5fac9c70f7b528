// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"doc-sentry/internal/category"
)

// Config represents the application configuration
type Config struct {
	// Default settings
	Defaults struct {
		Format     string `yaml:"format"`
		Categories string `yaml:"categories"`
		Alert      bool   `yaml:"alert"`
		Visibility string `yaml:"visibility"`
		Verbose    bool   `yaml:"verbose"`
		Debug      bool   `yaml:"debug"`
		NoColor    bool   `yaml:"no_color"`
	} `yaml:"defaults"`

	// Document store connection settings
	Store struct {
		BaseURL           string  `yaml:"base_url"`
		TokenEnv          string  `yaml:"token_env"`
		TimeoutSeconds    int     `yaml:"timeout_seconds"`
		RequestsPerSecond float64 `yaml:"requests_per_second"`
		Burst             int     `yaml:"burst"`
	} `yaml:"store"`

	// Profiles for different scanning scenarios
	Profiles map[string]Profile `yaml:"profiles"`
}

// Profile represents a scanning profile with specific settings
type Profile struct {
	Format      string `yaml:"format"`
	Categories  string `yaml:"categories"`
	Alert       bool   `yaml:"alert"`
	Visibility  string `yaml:"visibility"`
	Verbose     bool   `yaml:"verbose"`
	Debug       bool   `yaml:"debug"`
	NoColor     bool   `yaml:"no_color"`
	Description string `yaml:"description"`
}

// LoadConfig loads configuration from the specified file path
func LoadConfig(configPath string) (*Config, error) {
	config := &Config{
		Profiles: make(map[string]Profile),
	}

	// Set default values
	config.Defaults.Format = "text"
	config.Defaults.Categories = "all"
	config.Defaults.Visibility = "private"
	config.Store.TokenEnv = "DOCSTORE_TOKEN"
	config.Store.TimeoutSeconds = 30
	config.Store.RequestsPerSecond = 10
	config.Store.Burst = 5

	// Default profile for quick sensitive-number sweeps
	config.Profiles["numbers"] = Profile{
		Format:      "text",
		Categories:  "SSN,CREDIT_CARD,IBAN",
		Alert:       true,
		Visibility:  "private",
		Description: "Sensitive account and identity numbers only, with alerting",
	}

	// If no config file specified, return default config
	if configPath == "" {
		return config, nil
	}

	cleanPath := filepath.Clean(configPath)
	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	if err := ValidateConfig(config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// LoadConfigOrDefault loads the given config file, falling back to defaults
// if the path is empty or unreadable.
func LoadConfigOrDefault(configFile string) *Config {
	config, err := LoadConfig(configFile)
	if err != nil {
		config, _ = LoadConfig("")
	}
	return config
}

// ValidateConfig checks the semantic constraints a YAML parse cannot.
func ValidateConfig(config *Config) error {
	if config.Store.TimeoutSeconds < 0 {
		return fmt.Errorf("store.timeout_seconds must not be negative")
	}
	if config.Store.RequestsPerSecond < 0 {
		return fmt.Errorf("store.requests_per_second must not be negative")
	}
	if err := validateCategories(config.Defaults.Categories); err != nil {
		return err
	}
	for name, profile := range config.Profiles {
		if err := validateCategories(profile.Categories); err != nil {
			return fmt.Errorf("profile %q: %w", name, err)
		}
	}
	return nil
}

func validateCategories(spec string) error {
	if spec == "" || spec == "all" {
		return nil
	}
	for _, name := range strings.Split(spec, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if _, ok := categoryNames[name]; !ok {
			return fmt.Errorf("unknown category %q", name)
		}
	}
	return nil
}

// FindConfigFile looks for a configuration file in standard locations
func FindConfigFile() string {
	// Check current directory first
	candidates := []string{
		"doc-sentry.yaml",
		"doc-sentry.yml",
		".doc-sentry.yaml",
		".doc-sentry.yml",
	}
	for _, name := range candidates {
		if fileExists(name) {
			return name
		}
	}

	// Check home directory
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	for _, name := range []string{"config.yaml", "config.yml"} {
		path := filepath.Join(home, ".doc-sentry", name)
		if fileExists(path) {
			return path
		}
	}
	return ""
}

func fileExists(filename string) bool {
	info, err := os.Stat(filename)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// ListProfiles returns the names of available profiles
func (c *Config) ListProfiles() []string {
	profiles := make([]string, 0, len(c.Profiles))
	for name := range c.Profiles {
		profiles = append(profiles, name)
	}
	return profiles
}

// GetProfile returns a profile by name, or nil if it doesn't exist
func (c *Config) GetProfile(name string) *Profile {
	if profile, exists := c.Profiles[name]; exists {
		return &profile
	}
	return nil
}

// StoreTimeout returns the configured store request timeout.
func (c *Config) StoreTimeout() time.Duration {
	return time.Duration(c.Store.TimeoutSeconds) * time.Second
}

// ResolveToken reads the store API token from the configured environment
// variable, loading a .env file first if one is present.
func (c *Config) ResolveToken() string {
	_ = godotenv.Load()
	tokenEnv := c.Store.TokenEnv
	if tokenEnv == "" {
		tokenEnv = "DOCSTORE_TOKEN"
	}
	return os.Getenv(tokenEnv)
}

// categoryNames maps configuration names to the categories they enable.
// "SSN" covers both value matching and field-label detection; "DOB" is
// field-label only, there is no reliable value pattern for dates of birth.
var categoryNames = map[string][]category.Category{
	"ADDRESS":     {category.Address},
	"CREDIT_CARD": {category.CreditCard},
	"DOB":         {category.DOBField},
	"EMAIL":       {category.Email},
	"IBAN":        {category.IBAN},
	"PHONE":       {category.Phone},
	"SSN":         {category.SSN, category.SSNField},
	"ZIP":         {category.ZipCode},
}

// CategoryNames returns the recognized configuration names in sorted order.
func CategoryNames() []string {
	return []string{"ADDRESS", "CREDIT_CARD", "DOB", "EMAIL", "IBAN", "PHONE", "SSN", "ZIP"}
}

// ParseCategories resolves a comma-separated category list ("all" or empty
// enables everything) into the category set for a run. Unknown names are
// ignored here; validation rejects them when they come from a config file.
func ParseCategories(spec string) category.Enabled {
	enabled := make(category.Enabled)

	spec = strings.TrimSpace(spec)
	if spec == "" || spec == "all" {
		for _, cats := range categoryNames {
			for _, cat := range cats {
				enabled[cat] = true
			}
		}
		return enabled
	}

	for _, name := range strings.Split(spec, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		for _, cat := range categoryNames[strings.ToUpper(name)] {
			enabled[cat] = true
		}
	}
	return enabled
}
