package config

import (
	"os"
	"path/filepath"
	"time"
)

// DefaultBaseURL is the API endpoint used when neither the config file nor
// the CLOUDTASK_URL environment variable names one.
const DefaultBaseURL = "https://api.cloudtask.example.com"

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() *Config {
	homeDir := DefaultHomeDir()

	baseURL := os.Getenv("CLOUDTASK_URL")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	return &Config{
		Core: CoreConfig{
			HomeDir:       homeDir,
			ParallelLimit: 8,
			Timeout:       5 * time.Minute,
		},
		API: APIConfig{
			BaseURL:           baseURL,
			Timeout:           30 * time.Second,
			MaxRetries:        3,
			InitialDelay:      250 * time.Millisecond,
			BackoffMultiplier: 1.5,
		},
		Database: DBConfig{
			Path:        filepath.Join(homeDir, "cloudtask.db"),
			BusyTimeout: 5 * time.Second,
		},
		Cache: CacheConfig{
			Enabled: true,
			Dir:     filepath.Join(homeDir, "cache"),
			TTL:     15 * time.Minute,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// DefaultHomeDir returns the default CloudTask home directory, ~/.cloudtask,
// falling back to a temporary directory if the user home cannot be
// determined.
func DefaultHomeDir() string {
	userHome, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".cloudtask")
	}
	return filepath.Join(userHome, ".cloudtask")
}

// DefaultConfigPath returns the default config file path for a given home
// directory.
func DefaultConfigPath(homeDir string) string {
	return filepath.Join(homeDir, "config.yaml")
}

// APIKeyPath returns the path of the saved API key file for a given home
// directory.
func APIKeyPath(homeDir string) string {
	return filepath.Join(homeDir, "api_key")
}
