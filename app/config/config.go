package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Supported values of BLOG_STORE.
const (
	StoreBadger = "badger"
	StoreSQLite = "sqlite"
)

type Config struct {
	Addr            string
	Store           string
	DataDir         string
	SQLitePath      string
	InMemory        bool
	BackupDir       string
	BaseURL         string
	FeedTitle       string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// Load reads the configuration from the environment. Values from a .env
// file in the working directory are used when the variable is not already
// set.
func Load() *Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: Error loading .env file: %v", err)
	}
	return FromEnv()
}

// FromEnv builds a Config from the current environment only.
func FromEnv() *Config {
	addr := getEnv("BLOG_ADDR", ":8080")
	return &Config{
		Addr:            addr,
		Store:           strings.ToLower(getEnv("BLOG_STORE", StoreBadger)),
		DataDir:         getEnv("BLOG_DATA_DIR", "data/badger"),
		SQLitePath:      getEnv("BLOG_SQLITE_PATH", "data/blog.db"),
		InMemory:        getEnvAsBool("BLOG_IN_MEMORY", false),
		BackupDir:       getEnv("BLOG_BACKUP_DIR", "data/backups"),
		BaseURL:         strings.TrimRight(getEnv("BLOG_BASE_URL", baseURLFromAddr(addr)), "/"),
		FeedTitle:       getEnv("BLOG_FEED_TITLE", "Blog posts"),
		ReadTimeout:     getEnvAsSeconds("BLOG_READ_TIMEOUT_SECONDS", 15),
		WriteTimeout:    getEnvAsSeconds("BLOG_WRITE_TIMEOUT_SECONDS", 15),
		ShutdownTimeout: getEnvAsSeconds("BLOG_SHUTDOWN_TIMEOUT_SECONDS", 10),
	}
}

// Validate rejects configurations the server cannot start with.
func (c *Config) Validate() error {
	switch c.Store {
	case StoreBadger, StoreSQLite:
	default:
		return fmt.Errorf("unknown store %q (want %q or %q)", c.Store, StoreBadger, StoreSQLite)
	}
	if c.Addr == "" {
		return fmt.Errorf("listen address must not be empty")
	}
	return nil
}

func baseURLFromAddr(addr string) string {
	if strings.HasPrefix(addr, ":") {
		return "http://localhost" + addr
	}
	return "http://" + addr
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, defaultValue int) int {
	valStr := os.Getenv(key)
	if valStr == "" {
		return defaultValue
	}
	val, err := strconv.Atoi(valStr)
	if err != nil || val < 0 {
		log.Printf("Warning: Invalid value for %s: %s, using default %d", key, valStr, defaultValue)
		return defaultValue
	}
	return val
}

func getEnvAsSeconds(key string, defaultSeconds int) time.Duration {
	return time.Duration(getEnvAsInt(key, defaultSeconds)) * time.Second
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valStr := os.Getenv(key)
	if valStr == "" {
		return defaultValue
	}
	val, err := strconv.ParseBool(valStr)
	if err != nil {
		log.Printf("Warning: Invalid value for %s: %s, using default %t", key, valStr, defaultValue)
		return defaultValue
	}
	return val
}
