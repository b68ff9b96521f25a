package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for the mediashelf server.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Storage  StorageConfig
	Bridge   BridgeConfig
	Jobs     JobsConfig
}

type ServerConfig struct {
	Port               int
	Env                string
	MaxUploadBytes     int64
	RateLimitPerMinute int
}

type DatabaseConfig struct {
	URL             string
	MaxOpenConns    int
	MinConns        int
	ApplicationName string
	ConnMaxLifetime time.Duration
}

type RedisConfig struct {
	URL string
}

// StorageConfig configures the default S3-compatible object store.
type StorageConfig struct {
	Endpoint     string
	Bucket       string
	AccessKey    string
	SecretKey    string
	UseSSL       bool
	SignedURLTTL time.Duration
}

// BridgeConfig configures the external file-hosting bridge. An empty URL disables it:
// every bridge call then reports failure without touching the network.
type BridgeConfig struct {
	URL           string
	Timeout       time.Duration
	Scheme        string
	ViewerURL     string
	FailurePolicy string
	ContentTypes  []string
	RootFolderID  string
}

type JobsConfig struct {
	CleanupSchedule string
	Retention       time.Duration
}

// Bridge failure policies.
const (
	PolicyDegrade = "degrade"
	PolicyFail    = "fail"
)

var validContentTypes = map[string]bool{
	"book":  true,
	"audio": true,
	"video": true,
}

// Load reads configuration from environment variables and returns a validated Config.
// Returns an error with a descriptive message if any required value is missing or invalid.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:               envInt("MEDIASHELF_PORT", 8080),
			Env:                envString("MEDIASHELF_ENV", "development"),
			MaxUploadBytes:     int64(envInt("UPLOAD_MAX_BYTES", 512<<20)),
			RateLimitPerMinute: envInt("RATE_LIMIT_PER_MINUTE", 60),
		},
		Database: DatabaseConfig{
			URL:             os.Getenv("DATABASE_URL"),
			MaxOpenConns:    envInt("DATABASE_MAX_OPEN_CONNS", 25),
			MinConns:        envInt("DATABASE_MIN_CONNS", 2),
			ApplicationName: envString("DATABASE_APPLICATION_NAME", "mediashelf"),
			ConnMaxLifetime: envDuration("DATABASE_CONN_MAX_LIFETIME", 5*time.Minute),
		},
		Redis: RedisConfig{
			URL: os.Getenv("REDIS_URL"),
		},
		Storage: StorageConfig{
			Endpoint:     os.Getenv("STORAGE_ENDPOINT"),
			Bucket:       os.Getenv("STORAGE_BUCKET"),
			AccessKey:    os.Getenv("STORAGE_ACCESS_KEY"),
			SecretKey:    os.Getenv("STORAGE_SECRET_KEY"),
			UseSSL:       envBool("STORAGE_USE_SSL", false),
			SignedURLTTL: envDuration("STORAGE_SIGNED_URL_TTL", 15*time.Minute),
		},
		Bridge: BridgeConfig{
			URL:           os.Getenv("BRIDGE_URL"),
			Timeout:       envDuration("BRIDGE_TIMEOUT", 0),
			Scheme:        envString("BRIDGE_SCHEME", "gdrive"),
			ViewerURL:     envString("BRIDGE_VIEWER_URL", "https://drive.google.com/file/d/%s/view"),
			FailurePolicy: envString("BRIDGE_FAILURE_POLICY", PolicyDegrade),
			ContentTypes:  envList("BRIDGE_CONTENT_TYPES", []string{"audio", "video"}),
			RootFolderID:  os.Getenv("BRIDGE_ROOT_FOLDER_ID"),
		},
		Jobs: JobsConfig{
			CleanupSchedule: envString("JOBS_CLEANUP_SCHEDULE", "@hourly"),
			Retention:       envDuration("JOBS_RETENTION", 24*time.Hour),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.Database.MaxOpenConns < 1 {
		return fmt.Errorf("DATABASE_MAX_OPEN_CONNS must be at least 1, got %d", c.Database.MaxOpenConns)
	}
	if c.Database.MinConns < 0 || c.Database.MinConns > c.Database.MaxOpenConns {
		return fmt.Errorf("DATABASE_MIN_CONNS must be between 0 and DATABASE_MAX_OPEN_CONNS, got %d", c.Database.MinConns)
	}

	if c.Redis.URL == "" {
		return fmt.Errorf("REDIS_URL is required")
	}

	if c.Storage.Endpoint == "" {
		return fmt.Errorf("STORAGE_ENDPOINT is required")
	}
	if c.Storage.Bucket == "" {
		return fmt.Errorf("STORAGE_BUCKET is required")
	}

	if c.Bridge.URL != "" && !strings.HasPrefix(c.Bridge.URL, "http://") && !strings.HasPrefix(c.Bridge.URL, "https://") {
		return fmt.Errorf("BRIDGE_URL must start with http:// or https://, got %q", c.Bridge.URL)
	}
	if c.Bridge.Scheme == "" || strings.Contains(c.Bridge.Scheme, "/") {
		return fmt.Errorf("BRIDGE_SCHEME must be a non-empty scheme name, got %q", c.Bridge.Scheme)
	}
	if c.Bridge.FailurePolicy != PolicyDegrade && c.Bridge.FailurePolicy != PolicyFail {
		return fmt.Errorf("BRIDGE_FAILURE_POLICY must be one of degrade, fail; got %q", c.Bridge.FailurePolicy)
	}
	for _, ct := range c.Bridge.ContentTypes {
		if !validContentTypes[ct] {
			return fmt.Errorf("BRIDGE_CONTENT_TYPES must only contain book, audio, video; got %q", ct)
		}
	}

	if c.Server.MaxUploadBytes <= 0 {
		return fmt.Errorf("UPLOAD_MAX_BYTES must be positive")
	}
	if c.Jobs.Retention <= 0 {
		return fmt.Errorf("JOBS_RETENTION must be positive")
	}

	return nil
}

// UsesBridge reports whether files of the given content type are routed through the bridge.
func (b BridgeConfig) UsesBridge(contentType string) bool {
	for _, ct := range b.ContentTypes {
		if ct == contentType {
			return true
		}
	}
	return false
}

func envString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func envBool(key string, defaultVal bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return defaultVal
	}
	return b
}

func envDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}

// envList reads a comma-separated list. An explicitly empty value is not distinguishable
// from an unset one, so "none" disables the list.
func envList(key string, defaultVal []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	if v == "none" {
		return []string{}
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
