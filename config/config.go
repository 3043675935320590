package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	// Load .env files automatically so local development matches production
	// environment-variable configuration.
	_ "github.com/joho/godotenv/autoload"
)

// ErrMissing is wrapped by Expect when a required key has no value.
var ErrMissing = fmt.Errorf("required configuration missing")

// Get returns the value of the environment variable key, or fallback when it
// is unset or empty.
func Get(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// Expect returns the value of the environment variable key, or an error
// wrapping [ErrMissing] when it is unset or empty. Adapters call this before
// any network I/O so that missing credentials fail fast.
func Expect(key string) (string, error) {
	v := os.Getenv(key)
	if v == "" {
		return "", fmt.Errorf("%w: %s", ErrMissing, key)
	}
	return v, nil
}

// GetInt returns the integer value of the environment variable key, or
// fallback when it is unset or not a valid integer.
func GetInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

// GetDuration returns the duration value of the environment variable key
// (e.g. "90s", "2m"), or fallback when it is unset or malformed.
func GetDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
