// Package config provides centralized configuration management.
// All STOREFRONT_* lookups go through Env so commands never call os.Getenv directly.
package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/joho/godotenv"
)

// DefaultAPIURL is the public demo catalog the client talks to.
const DefaultAPIURL = "https://fakestoreapi.com"

// StoreEnv holds all storefront environment variables.
type StoreEnv struct {
	// APIURL is the catalog API base URL (STOREFRONT_API_URL)
	APIURL string

	// Home overrides the state directory (STOREFRONT_HOME)
	Home string

	// HTTPTimeout bounds each catalog request; zero means no timeout (STOREFRONT_HTTP_TIMEOUT)
	HTTPTimeout time.Duration

	// LogLevel is the minimum level written to stderr (STOREFRONT_LOG_LEVEL)
	LogLevel string

	// NoColor disables ANSI colors (NO_COLOR)
	NoColor bool
}

var (
	env     *StoreEnv
	envOnce sync.Once
)

// Env returns the singleton environment configuration.
// Thread-safe, loads once on first call.
func Env() *StoreEnv {
	envOnce.Do(func() {
		env = &StoreEnv{
			APIURL:      getEnvDefault("STOREFRONT_API_URL", DefaultAPIURL),
			Home:        os.Getenv("STOREFRONT_HOME"),
			HTTPTimeout: getEnvDuration("STOREFRONT_HTTP_TIMEOUT", 0),
			LogLevel:    getEnvDefault("STOREFRONT_LOG_LEVEL", "warn"),
			NoColor:     os.Getenv("NO_COLOR") != "",
		}
	})
	return env
}

// ResetEnv resets the cached environment (for testing).
func ResetEnv() {
	envOnce = sync.Once{}
	env = nil
}

func getEnvDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// getEnvDuration parses a Go duration, falling back on absent or bad values.
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d < 0 {
		return fallback
	}
	return d
}

// Paths holds standard storefront directory paths.
type Paths struct {
	// Home is the state directory (~/.storefront)
	Home string

	// Data is the data directory (~/.storefront/data)
	Data string

	// DB is the key-value database file (~/.storefront/data/storefront.db)
	DB string

	// EnvFile is the .env file path (~/.storefront/.env)
	EnvFile string
}

var (
	paths     *Paths
	pathsOnce sync.Once
)

// GetPaths returns the singleton paths configuration.
// STOREFRONT_HOME is read directly so paths can resolve before LoadDotEnv.
func GetPaths() *Paths {
	pathsOnce.Do(func() {
		home := os.Getenv("STOREFRONT_HOME")
		if home == "" {
			userHome, err := os.UserHomeDir()
			if err != nil {
				userHome = "."
			}
			home = filepath.Join(userHome, ".storefront")
		}

		data := filepath.Join(home, "data")
		paths = &Paths{
			Home:    home,
			Data:    data,
			DB:      filepath.Join(data, "storefront.db"),
			EnvFile: filepath.Join(home, ".env"),
		}
	})
	return paths
}

// ResetPaths resets the cached paths (for testing).
func ResetPaths() {
	pathsOnce = sync.Once{}
	paths = nil
}

// EnsureDir creates a directory if it doesn't exist.
func EnsureDir(path string) error {
	return os.MkdirAll(path, 0755)
}

// LoadDotEnv loads ~/.storefront/.env into the process environment.
// Variables already set take precedence. A missing file is not an error.
// Call before the first Env() so the values are picked up.
func LoadDotEnv() error {
	err := godotenv.Load(GetPaths().EnvFile)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}
