package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	DataDir        string
	DBPath         string
	InboxDir       string
	ArchiveDir     string
	ListenAddr     string
	ImportSchedule string
	ParseWorkers   int
	MaxUploadBytes int64
	MaxElements    int
}

// Load reads the configuration from the environment, after loading any
// .env files given (or ./.env when none are).
func Load(envFiles ...string) (*Config, error) {
	if err := godotenv.Load(envFiles...); err != nil {
		log.Println("No .env file found, using system environment variables")
	}
	return FromEnv()
}

// FromEnv reads the configuration from the process environment only.
func FromEnv() (*Config, error) {
	dataDir := getEnv("DATA_DIR", "./data")

	cfg := &Config{
		DataDir:        dataDir,
		DBPath:         getEnv("DB_PATH", filepath.Join(dataDir, "waddle.db")),
		InboxDir:       getEnv("INBOX_DIR", filepath.Join(dataDir, "inbox")),
		ArchiveDir:     getEnv("ARCHIVE_DIR", filepath.Join(dataDir, "archive")),
		ListenAddr:     getEnv("LISTEN_ADDR", ":8888"),
		ImportSchedule: getEnv("IMPORT_SCHEDULE", "@hourly"),
	}

	var err error
	if cfg.ParseWorkers, err = getInt("PARSE_WORKERS", 1); err != nil {
		return nil, err
	}
	if cfg.MaxElements, err = getInt("MAX_ELEMENTS", 2000000); err != nil {
		return nil, err
	}
	maxUpload, err := getInt("MAX_UPLOAD_BYTES", 32<<20)
	if err != nil {
		return nil, err
	}
	cfg.MaxUploadBytes = int64(maxUpload)

	return cfg, nil
}

// EnsureDirs creates the data, inbox and archive directories.
func (c *Config) EnsureDirs() error {
	for _, dir := range []string{c.DataDir, filepath.Dir(c.DBPath), c.InboxDir, c.ArchiveDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	if n < 0 {
		return 0, fmt.Errorf("invalid %s %q: must not be negative", key, v)
	}
	return n, nil
}
