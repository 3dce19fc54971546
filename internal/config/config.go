package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config represents the main configuration for appdird.
type Config struct {
	Listen string      `toml:"listen"` // address the HTTP server binds to
	LogDir string      `toml:"log_dir"`
	Auth   AuthConfig  `toml:"auth"`
	Users  CacheConfig `toml:"users"`
	Apps   CacheConfig `toml:"apps"`
	Store  StoreConfig `toml:"store"`
}

// AuthConfig holds the token signing key and lifetime. The signing key is
// process-wide; rotating it invalidates all outstanding tokens.
type AuthConfig struct {
	SigningKey    string `toml:"signing_key"`
	TokenTTLHours int    `toml:"token_ttl_hours"` // defaults to 24 when unset
}

// CacheConfig configures one record cache: the local record directory and
// the remote key prefix used when the object store is enabled.
type CacheConfig struct {
	Dir    string `toml:"dir"`
	Prefix string `toml:"prefix,omitempty"`
}

// StoreConfig represents configuration for the remote object store.
// This uses a tagged union pattern - the Type field determines which other
// fields are relevant.
type StoreConfig struct {
	Type string `toml:"type"` // "none" (default), "s3", or "memory"

	// S3-specific fields (only used when Type == "s3")
	Bucket          string `toml:"bucket,omitempty"`
	Region          string `toml:"region,omitempty"`
	AccessKeyID     string `toml:"access_key_id,omitempty"`
	SecretAccessKey string `toml:"secret_access_key,omitempty"`

	// Durability selects the remote write failure policy:
	// "best-effort" (default, failures logged and absorbed) or
	// "required" (a failed remote write fails the whole upsert).
	Durability string `toml:"durability,omitempty"`
}

// NewConfig creates a new Config with the provided base directory and defaults.
func NewConfig(baseDir string) *Config {
	return &Config{
		Listen: ":8067",
		LogDir: filepath.Join(baseDir, "log"),
		Auth: AuthConfig{
			TokenTTLHours: 24,
		},
		Users: CacheConfig{
			Dir:    filepath.Join(baseDir, "json", "users"),
			Prefix: "json/users",
		},
		Apps: CacheConfig{
			Dir:    filepath.Join(baseDir, "json", "apps"),
			Prefix: "json/apps",
		},
		Store: StoreConfig{
			Type:       "none",
			Durability: "best-effort",
		},
	}
}

// Validate checks the parts of the configuration that must be present
// before the service can serve requests.
func (c *Config) Validate() error {
	if c.Listen == "" {
		return fmt.Errorf("listen address is required")
	}
	if c.Auth.SigningKey == "" {
		return fmt.Errorf("auth.signing_key is required")
	}
	if c.Users.Dir == "" || c.Apps.Dir == "" {
		return fmt.Errorf("users.dir and apps.dir are required")
	}
	if c.Store.Type == "s3" && c.Store.Bucket == "" {
		return fmt.Errorf("store.bucket is required for store.type=s3")
	}
	switch c.Store.Durability {
	case "", "best-effort", "required":
	default:
		return fmt.Errorf("store.durability must be best-effort or required, got %q", c.Store.Durability)
	}
	return nil
}

// Manager handles reading and writing configuration.
type Manager struct{}

// Read decodes a Config from the provided reader.
func (m *Manager) Read(r io.Reader) (*Config, error) {
	var cfg Config
	if _, err := toml.NewDecoder(r).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return &cfg, nil
}

// Write encodes a Config to the provided writer.
func (m *Manager) Write(w io.Writer, cfg *Config) error {
	if err := toml.NewEncoder(w).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// ReadFromFile reads a Config from the specified file path.
func ReadFromFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	cfg, err := m.Read(f)
	if err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}
	return cfg, nil
}

// writeToFile writes a Config to the specified file path.
// This is an internal helper and should not be exported.
func writeToFile(path string, cfg *Config) error {
	// Ensure the directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	if err := m.Write(f, cfg); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// Init initializes a new config file at the specified path with the provided Config.
func Init(path string, cfg *Config) error {
	// Check if config already exists
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := writeToFile(path, cfg); err != nil {
		return fmt.Errorf("initializing config: %w", err)
	}
	return nil
}
