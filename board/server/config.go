// ABOUTME: Server configuration: defaults, an optional YAML file, a .env file, then GRIDHQ_* environment variables.
// ABOUTME: Enforces security constraint: remote access requires a token or an email allowlist.
package server

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/2389-research/gridhq/board/core"
	"github.com/2389-research/gridhq/board/store"
	"gopkg.in/yaml.v3"
)

var (
	ErrRemoteWithoutAuth = errors.New(
		"GRIDHQ_ALLOW_REMOTE is true but neither GRIDHQ_API_TOKEN nor GRIDHQ_ALLOWED_EMAILS is set; refusing to start without authentication",
	)
	ErrNonLoopbackBind = errors.New(
		"GRIDHQ_BIND is a non-loopback address but GRIDHQ_ALLOW_REMOTE is not true; set GRIDHQ_ALLOW_REMOTE=true and configure authentication to allow remote access",
	)
)

// DefaultEmailHeader is the identity header injected by Cloudflare Access.
const DefaultEmailHeader = "Cf-Access-Authenticated-User-Email"

// Config holds everything the board service needs to start.
type Config struct {
	Home               string   `yaml:"home"`                 // Data directory (GRIDHQ_HOME, default: ~/.gridhq)
	Bind               string   `yaml:"bind"`                 // Listen address (GRIDHQ_BIND, default: 127.0.0.1:8787)
	AllowRemote        bool     `yaml:"allow_remote"`         // Allow non-loopback binds (GRIDHQ_ALLOW_REMOTE)
	APIToken           string   `yaml:"api_token"`            // Bearer token for automation (GRIDHQ_API_TOKEN)
	AllowedEmails      []string `yaml:"allowed_emails"`       // Email allowlist (GRIDHQ_ALLOWED_EMAILS, comma separated)
	EmailHeader        string   `yaml:"email_header"`         // Header carrying the caller's email (GRIDHQ_EMAIL_HEADER)
	DBDriver           string   `yaml:"db_driver"`            // sqlite3 (cgo) or sqlite (pure Go) (GRIDHQ_DB_DRIVER)
	DBPath             string   `yaml:"db_path"`              // Database file (GRIDHQ_DB_PATH, default: <home>/gridhq.db)
	Attachments        bool     `yaml:"attachments"`          // Enable image attachments (GRIDHQ_ATTACHMENTS)
	AttachmentsDir     string   `yaml:"attachments_dir"`      // Blob root (GRIDHQ_ATTACHMENTS_DIR, default: <home>/attachments)
	MaxAttachmentBytes int64    `yaml:"max_attachment_bytes"` // Upload cap (GRIDHQ_MAX_ATTACHMENT_BYTES)
	LogLevel           string   `yaml:"log_level"`            // debug, info, warn, error (GRIDHQ_LOG_LEVEL)
	Version            string   `yaml:"version"`              // Reported by /api/health (GRIDHQ_VERSION)
}

// DefaultConfig returns the configuration used when nothing is set.
func DefaultConfig() *Config {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = os.TempDir()
	}
	return &Config{
		Home:               filepath.Join(homeDir, ".gridhq"),
		Bind:               "127.0.0.1:8787",
		EmailHeader:        DefaultEmailHeader,
		DBDriver:           store.DriverCGO,
		MaxAttachmentBytes: core.DefaultMaxAttachmentBytes,
		LogLevel:           "info",
		Version:            "dev",
	}
}

// Load builds the configuration from configPath (YAML, optional) and
// dotenvPath (optional), then applies GRIDHQ_* overrides. An empty
// configPath falls back to GRIDHQ_CONFIG. Variables already present in the
// environment win over the .env file.
func Load(configPath, dotenvPath string) (*Config, error) {
	cfg := DefaultConfig()

	if configPath == "" {
		configPath = os.Getenv("GRIDHQ_CONFIG")
	}
	if configPath != "" {
		if err := cfg.mergeYAML(configPath); err != nil {
			return nil, err
		}
	}
	if dotenvPath != "" {
		if err := LoadDotEnv(dotenvPath); err != nil {
			return nil, fmt.Errorf("load %s: %w", dotenvPath, err)
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.fillDerived()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ConfigFromEnv loads configuration from GRIDHQ_* environment variables only.
func ConfigFromEnv() (*Config, error) {
	return Load("", "")
}

func (c *Config) mergeYAML(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	c.Home = envOrDefault("GRIDHQ_HOME", c.Home)
	c.Bind = envOrDefault("GRIDHQ_BIND", c.Bind)
	c.APIToken = envOrDefault("GRIDHQ_API_TOKEN", c.APIToken)
	c.EmailHeader = envOrDefault("GRIDHQ_EMAIL_HEADER", c.EmailHeader)
	c.DBDriver = envOrDefault("GRIDHQ_DB_DRIVER", c.DBDriver)
	c.DBPath = envOrDefault("GRIDHQ_DB_PATH", c.DBPath)
	c.AttachmentsDir = envOrDefault("GRIDHQ_ATTACHMENTS_DIR", c.AttachmentsDir)
	c.LogLevel = envOrDefault("GRIDHQ_LOG_LEVEL", c.LogLevel)
	c.Version = envOrDefault("GRIDHQ_VERSION", c.Version)

	if v, ok := os.LookupEnv("GRIDHQ_ALLOWED_EMAILS"); ok {
		c.AllowedEmails = splitList(v)
	}
	if v, ok := os.LookupEnv("GRIDHQ_ALLOW_REMOTE"); ok {
		c.AllowRemote = truthy(v)
	}
	if v, ok := os.LookupEnv("GRIDHQ_ATTACHMENTS"); ok {
		c.Attachments = truthy(v)
	}
	if v := os.Getenv("GRIDHQ_MAX_ATTACHMENT_BYTES"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n <= 0 {
			return fmt.Errorf("GRIDHQ_MAX_ATTACHMENT_BYTES=%q: must be a positive integer", v)
		}
		c.MaxAttachmentBytes = n
	}
	return nil
}

func (c *Config) fillDerived() {
	if c.DBPath == "" {
		c.DBPath = filepath.Join(c.Home, "gridhq.db")
	}
	if c.AttachmentsDir == "" {
		c.AttachmentsDir = filepath.Join(c.Home, "attachments")
	}
	if c.EmailHeader == "" {
		c.EmailHeader = DefaultEmailHeader
	}
	c.AllowedEmails = splitList(strings.Join(c.AllowedEmails, ","))
}

// Rehome moves the data directory to home. Paths that were derived from the
// previous home follow it; explicitly configured paths stay put.
func (c *Config) Rehome(home string) {
	if home == "" || home == c.Home {
		return
	}
	if c.DBPath == filepath.Join(c.Home, "gridhq.db") {
		c.DBPath = ""
	}
	if c.AttachmentsDir == filepath.Join(c.Home, "attachments") {
		c.AttachmentsDir = ""
	}
	c.Home = home
	c.fillDerived()
}

// Validate applies the remote-access safety rules.
func (c *Config) Validate() error {
	if c.DBDriver != store.DriverCGO && c.DBDriver != store.DriverPure {
		return fmt.Errorf("GRIDHQ_DB_DRIVER=%q: want %q or %q", c.DBDriver, store.DriverCGO, store.DriverPure)
	}

	if c.AllowRemote && c.APIToken == "" && len(c.AllowedEmails) == 0 {
		return ErrRemoteWithoutAuth
	}

	// Only 127.0.0.0/8, ::1, and "localhost" count as loopback.
	if !c.AllowRemote {
		if host, _, err := net.SplitHostPort(c.Bind); err == nil {
			ip := net.ParseIP(host)
			switch {
			case host == "":
				// ":8787" listens on every interface.
				return fmt.Errorf("%w: GRIDHQ_BIND=%s", ErrNonLoopbackBind, c.Bind)
			case ip != nil && ip.IsLoopback():
			case ip != nil:
				return fmt.Errorf("%w: GRIDHQ_BIND=%s", ErrNonLoopbackBind, c.Bind)
			case host == "localhost":
			default:
				return fmt.Errorf("%w: GRIDHQ_BIND=%s", ErrNonLoopbackBind, c.Bind)
			}
		}
	}
	return nil
}

func envOrDefault(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func truthy(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "true", "1", "yes", "on":
		return true
	}
	return false
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
