package config

import (
	"fmt"
	"strconv"
)

// Environment variables read by FromEnv.
const (
	EnvBackendURL = "BACKEND_URL"
	EnvPort       = "PORT"
)

// FromEnv returns the values set in the environment, read through getenv
// (usually os.Getenv after godotenv has loaded a .env file).
func FromEnv(getenv func(string) string) (Config, error) {
	var cfg Config

	cfg.BackendURL = getenv(EnvBackendURL)

	if portStr := getenv(EnvPort); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return Config{}, fmt.Errorf("invalid %s: %v", EnvPort, err)
		}
		cfg.Port = port
	}

	return cfg, nil
}
