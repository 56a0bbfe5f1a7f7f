package config

import (
	"os"
	"path/filepath"
	"strconv"
	"sync"
)

// Config holds all application configuration
type Config struct {
	// Server settings
	Port int
	Host string
	Env  string // "development" or "production"

	// Data directory
	DataDir string

	// Database
	DatabasePath string

	// Default items per page for /api/todos
	PageSize int

	// Auth settings. AuthMode is "none" or "demo"; in demo mode the API
	// requires a session obtained by posting DemoPassword to /api/auth/login.
	AuthMode     string
	DemoPassword string
}

var (
	cfg  *Config
	once sync.Once
)

// Get returns the global configuration (singleton)
func Get() *Config {
	once.Do(func() {
		cfg = load()
	})
	return cfg
}

// load reads configuration from environment variables
func load() *Config {
	dataDir := getEnv("TASKLEAF_DATA_DIR", "./data")

	return &Config{
		Port: getEnvInt("PORT", 4000),
		Host: getEnv("HOST", "0.0.0.0"),
		Env:  getEnv("ENV", "development"),

		DataDir:      dataDir,
		DatabasePath: filepath.Join(dataDir, "taskleaf.sqlite"),

		PageSize: getEnvInt("PAGE_SIZE", 5),

		AuthMode:     getEnv("TASKLEAF_AUTH_MODE", "none"),
		DemoPassword: getEnv("TASKLEAF_DEMO_PASSWORD", ""),
	}
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Env != "production"
}

// IsDemoAuth returns true if the demo login gate is enabled
func (c *Config) IsDemoAuth() bool {
	return c.AuthMode == "demo" && c.DemoPassword != ""
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}
