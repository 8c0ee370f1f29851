// Package config provides configuration loading and validation for the front end.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Defaults used when neither the config file, the environment nor flags set a value.
const (
	DefaultBackendURL       = "http://localhost:8080"
	DefaultPort             = 3000
	DefaultMaxUploadMB      = 10
	DefaultUploadsPerMinute = 6
	DefaultUploadBurst      = 3
)

// Config represents the front-end configuration that can be loaded from a JSON file.
// All fields are optional; missing values use defaults or must be provided via CLI flags.
type Config struct {
	// Backend
	BackendURL string `json:"backend_url,omitempty" validate:"omitempty,url,startswith=http"` // Extraction backend base address

	// Listener
	Port int `json:"port,omitempty" validate:"gte=0,lte=65535"` // Port to listen on

	// Intake
	MaxUploadMB int `json:"max_upload_mb,omitempty" validate:"gte=0"` // Size shown as guidance next to the picker

	// Throttling
	UploadsPerMinute float64 `json:"uploads_per_minute,omitempty" validate:"gte=0"` // Sustained uploads per client
	UploadBurst      int     `json:"upload_burst,omitempty" validate:"gte=0"`       // Uploads allowed back to back
	DisableThrottle  bool    `json:"disable_throttle,omitempty"`                    // Turn upload throttling off
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		BackendURL:       DefaultBackendURL,
		Port:             DefaultPort,
		MaxUploadMB:      DefaultMaxUploadMB,
		UploadsPerMinute: DefaultUploadsPerMinute,
		UploadBurst:      DefaultUploadBurst,
	}
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// Validate checks that the configuration has valid values.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			msgs := make([]string, 0, len(fieldErrs))
			for _, fe := range fieldErrs {
				msgs = append(msgs, fmt.Sprintf("'%s' failed '%s'", jsonName(fe.Field()), fe.Tag()))
			}
			return fmt.Errorf("config error: %s", strings.Join(msgs, ", "))
		}
		return fmt.Errorf("config error: %w", err)
	}
	return nil
}

// MergeWithDefaults returns a new Config with zero fields filled from defaults.
// This is used to apply config file values as defaults for CLI flags.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	if result.BackendURL == "" {
		result.BackendURL = defaults.BackendURL
	}
	if result.Port == 0 {
		result.Port = defaults.Port
	}
	if result.MaxUploadMB == 0 {
		result.MaxUploadMB = defaults.MaxUploadMB
	}
	if result.UploadsPerMinute == 0 {
		result.UploadsPerMinute = defaults.UploadsPerMinute
	}
	if result.UploadBurst == 0 {
		result.UploadBurst = defaults.UploadBurst
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge

	return result
}

// jsonName maps a struct field to its config file key for error messages.
func jsonName(field string) string {
	switch field {
	case "BackendURL":
		return "backend_url"
	case "Port":
		return "port"
	case "MaxUploadMB":
		return "max_upload_mb"
	case "UploadsPerMinute":
		return "uploads_per_minute"
	case "UploadBurst":
		return "upload_burst"
	default:
		return field
	}
}
