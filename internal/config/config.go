package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration so YAML values like "24h" decode.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// Config holds everything the server needs at startup. It is built once
// in main and passed down explicitly; nothing reads the environment at
// request time.
type Config struct {
	ListenAddr   string `yaml:"listen_addr"`
	DatabasePath string `yaml:"database_path"`

	JWT struct {
		Secret   string   `yaml:"secret"`
		Issuer   string   `yaml:"issuer"`
		Audience string   `yaml:"audience"`
		TTL      Duration `yaml:"ttl"`
	} `yaml:"jwt"`

	// RequireAuth gates the protected route group. Disabled only in
	// local development setups.
	RequireAuth bool     `yaml:"require_auth"`
	CORSOrigins []string `yaml:"cors_origins"`

	UploadDir     string `yaml:"upload_dir"`
	MaxUploadSize int64  `yaml:"max_upload_size"`

	LogLevel string `yaml:"log_level"`
}

// Default returns the development configuration.
func Default() *Config {
	cfg := &Config{
		ListenAddr:    ":8008",
		DatabasePath:  "project-management.db",
		RequireAuth:   true,
		CORSOrigins:   []string{"*"},
		UploadDir:     "uploads",
		MaxUploadSize: 10 << 20,
		LogLevel:      "info",
	}
	cfg.JWT.Secret = "development-insecure-secret-change-me"
	cfg.JWT.Issuer = "project-management-api"
	cfg.JWT.Audience = "project-management-clients"
	cfg.JWT.TTL = Duration(24 * time.Hour)
	return cfg
}

// Load reads the YAML config file at path (if non-empty) on top of the
// defaults, then applies environment overrides.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config YAML: %w", err)
		}
	}

	cfg.applyEnv()

	if cfg.JWT.TTL <= 0 {
		return nil, fmt.Errorf("jwt ttl must be positive, got %s", time.Duration(cfg.JWT.TTL))
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.ListenAddr = getEnv("LISTEN_ADDR", c.ListenAddr)
	c.DatabasePath = getEnv("DATABASE_PATH", c.DatabasePath)
	c.JWT.Secret = getEnv("JWT_SECRET", c.JWT.Secret)
	c.JWT.Issuer = getEnv("JWT_ISSUER", c.JWT.Issuer)
	c.JWT.Audience = getEnv("JWT_AUDIENCE", c.JWT.Audience)
	c.UploadDir = getEnv("UPLOAD_DIR", c.UploadDir)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)

	if v := os.Getenv("REQUIRE_AUTH"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.RequireAuth = b
		}
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
