// Package config collects the environment-driven settings shared by the
// sync server and the device agent.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
)

const appName = "fastboard"

// Config holds runtime settings for both roles of the binary.
type Config struct {
	// Port the sync server listens on.
	Port string

	// DataFile is the JSON file backing the file storage backend.
	DataFile string

	// CredentialsFile is the Firebase service account key. When set, the
	// sync server stores the envelope in Firestore instead of a file.
	CredentialsFile string

	// DBPath is the agent's local SQLite database.
	DBPath string

	// ServerURL is the sync server base URL the agent talks to.
	ServerURL string

	// PollInterval is how often the agent checks the server for updates.
	PollInterval time.Duration

	// HTTPTimeout bounds every network call. There is no retry or backoff.
	HTTPTimeout time.Duration
}

// Load reads configuration from the environment, loading a .env file first
// if one is present.
func Load() *Config {
	// A missing .env file is the normal case outside development.
	_ = godotenv.Load()

	cfg := &Config{
		Port:            envOr("PORT", "3003"),
		DataFile:        envOr("FASTBOARD_DATA_FILE", "sync-data.json"),
		CredentialsFile: os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"),
		DBPath:          os.Getenv("FASTBOARD_DB_PATH"),
		ServerURL:       envOr("FASTBOARD_SERVER_URL", "http://localhost:3003"),
		PollInterval:    envDurationOr("FASTBOARD_POLL_INTERVAL", 3*time.Second),
		HTTPTimeout:     envDurationOr("FASTBOARD_HTTP_TIMEOUT", 10*time.Second),
	}

	if cfg.DBPath == "" {
		cfg.DBPath = defaultDBPath()
	}
	return cfg
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid %s=%q, using %s\n", key, v, fallback)
		return fallback
	}
	return d
}

// defaultDBPath follows XDG, falling back to ~/.local/share/fastboard.
func defaultDBPath() string {
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return appName + ".db"
		}
		dataDir = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataDir, appName, appName+".db")
}
