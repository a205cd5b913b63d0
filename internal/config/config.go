// Package config loads runtime settings from the environment and an optional
// .env file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DBPath    string
	LogLevel  string
	LogFormat string
	Server    ServerConfig
	NATS      NATSConfig
	Defaults  GenerateDefaults
}

type ServerConfig struct {
	Addr    string
	Timeout time.Duration // per-request generation deadline
}

type NATSConfig struct {
	URL string
}

// GenerateDefaults fill request fields the caller leaves out and bound what
// a request may ask for.
type GenerateDefaults struct {
	Duration     float64
	SamplingRate int
	MaxSamples   int // per channel
}

// Load reads .env (if present) and the BIOSYNTH_* variables.
func Load() (*Config, error) {
	_ = godotenv.Load()

	home, _ := os.UserHomeDir()
	cfg := &Config{
		DBPath:    getEnv("BIOSYNTH_DB", filepath.Join(home, ".biosynth", "sessions.db")),
		LogLevel:  getEnv("BIOSYNTH_LOG_LEVEL", "info"),
		LogFormat: getEnv("BIOSYNTH_LOG_FORMAT", "json"),
		Server: ServerConfig{
			Addr: getEnv("BIOSYNTH_ADDR", ":5000"),
		},
		NATS: NATSConfig{
			URL: getEnv("BIOSYNTH_NATS_URL", "nats://127.0.0.1:4222"),
		},
	}

	var err error
	if cfg.Defaults.Duration, err = strconv.ParseFloat(getEnv("BIOSYNTH_DURATION", "30"), 64); err != nil {
		return nil, fmt.Errorf("BIOSYNTH_DURATION: %w", err)
	}
	if cfg.Defaults.SamplingRate, err = strconv.Atoi(getEnv("BIOSYNTH_SAMPLING_RATE", "256")); err != nil {
		return nil, fmt.Errorf("BIOSYNTH_SAMPLING_RATE: %w", err)
	}
	if cfg.Defaults.MaxSamples, err = strconv.Atoi(getEnv("BIOSYNTH_MAX_SAMPLES", "1000000")); err != nil {
		return nil, fmt.Errorf("BIOSYNTH_MAX_SAMPLES: %w", err)
	}
	if cfg.Defaults.MaxSamples <= 0 {
		return nil, fmt.Errorf("BIOSYNTH_MAX_SAMPLES: must be positive, got %d", cfg.Defaults.MaxSamples)
	}
	if cfg.Server.Timeout, err = time.ParseDuration(getEnv("BIOSYNTH_TIMEOUT", "30s")); err != nil {
		return nil, fmt.Errorf("BIOSYNTH_TIMEOUT: %w", err)
	}
	if cfg.Server.Timeout <= 0 {
		return nil, fmt.Errorf("BIOSYNTH_TIMEOUT: must be positive, got %s", cfg.Server.Timeout)
	}
	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
