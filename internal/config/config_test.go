package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func TestManager_ReadWrite_RoundTrip(t *testing.T) {
	original := &Config{
		Listen: ":9090",
		LogDir: "/var/lib/appdird/log",
		Auth: AuthConfig{
			SigningKey:    "round-trip-key",
			TokenTTLHours: 12,
		},
		Users: CacheConfig{Dir: "/var/lib/appdird/json/users", Prefix: "json/users"},
		Apps:  CacheConfig{Dir: "/var/lib/appdird/json/apps", Prefix: "json/apps"},
		Store: StoreConfig{
			Type:       "s3",
			Bucket:     "appd-records",
			Region:     "eu-west-1",
			Durability: "required",
		},
	}

	var buf bytes.Buffer
	m := &Manager{}

	if err := m.Write(&buf, original); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	got, err := m.Read(&buf)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}

	if got.Listen != original.Listen {
		t.Errorf("Listen = %q, want %q", got.Listen, original.Listen)
	}
	if got.LogDir != original.LogDir {
		t.Errorf("LogDir = %q, want %q", got.LogDir, original.LogDir)
	}
	if got.Auth.SigningKey != "round-trip-key" {
		t.Errorf("Auth.SigningKey = %q, want %q", got.Auth.SigningKey, "round-trip-key")
	}
	if got.Auth.TokenTTLHours != 12 {
		t.Errorf("Auth.TokenTTLHours = %d, want %d", got.Auth.TokenTTLHours, 12)
	}
	if got.Users.Dir != original.Users.Dir {
		t.Errorf("Users.Dir = %q, want %q", got.Users.Dir, original.Users.Dir)
	}
	if got.Apps.Prefix != "json/apps" {
		t.Errorf("Apps.Prefix = %q, want %q", got.Apps.Prefix, "json/apps")
	}
	if got.Store.Type != "s3" {
		t.Errorf("Store.Type = %q, want %q", got.Store.Type, "s3")
	}
	if got.Store.Bucket != "appd-records" {
		t.Errorf("Store.Bucket = %q, want %q", got.Store.Bucket, "appd-records")
	}
	if got.Store.Durability != "required" {
		t.Errorf("Store.Durability = %q, want %q", got.Store.Durability, "required")
	}
}

func TestNewConfig(t *testing.T) {
	cfg := NewConfig("/data/appdird")

	if cfg.Listen != ":8067" {
		t.Errorf("Listen = %q, want %q", cfg.Listen, ":8067")
	}
	if cfg.LogDir != "/data/appdird/log" {
		t.Errorf("LogDir = %q, want %q", cfg.LogDir, "/data/appdird/log")
	}
	if cfg.Auth.TokenTTLHours != 24 {
		t.Errorf("Auth.TokenTTLHours = %d, want %d", cfg.Auth.TokenTTLHours, 24)
	}
	if cfg.Users.Dir != filepath.Join("/data/appdird", "json", "users") {
		t.Errorf("Users.Dir = %q", cfg.Users.Dir)
	}
	if cfg.Apps.Prefix != "json/apps" {
		t.Errorf("Apps.Prefix = %q, want %q", cfg.Apps.Prefix, "json/apps")
	}
	if cfg.Store.Type != "none" {
		t.Errorf("Store.Type = %q, want %q", cfg.Store.Type, "none")
	}
	if cfg.Store.Durability != "best-effort" {
		t.Errorf("Store.Durability = %q, want %q", cfg.Store.Durability, "best-effort")
	}
}

func TestConfig_Validate(t *testing.T) {
	valid := func() *Config {
		cfg := NewConfig("/data/appdird")
		cfg.Auth.SigningKey = "k"
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults with signing key", func(c *Config) {}, false},
		{"missing listen", func(c *Config) { c.Listen = "" }, true},
		{"missing signing key", func(c *Config) { c.Auth.SigningKey = "" }, true},
		{"missing users dir", func(c *Config) { c.Users.Dir = "" }, true},
		{"missing apps dir", func(c *Config) { c.Apps.Dir = "" }, true},
		{"s3 without bucket", func(c *Config) { c.Store.Type = "s3" }, true},
		{"s3 with bucket", func(c *Config) { c.Store.Type = "s3"; c.Store.Bucket = "b" }, false},
		{"unknown durability", func(c *Config) { c.Store.Durability = "eventually" }, true},
		{"empty durability allowed", func(c *Config) { c.Store.Durability = "" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)

			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestInit(t *testing.T) {
	t.Run("creates config file", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "appdird.toml")
		cfg := NewConfig(dir)

		if err := Init(path, cfg); err != nil {
			t.Fatalf("Init() error = %v", err)
		}

		if _, err := os.Stat(path); err != nil {
			t.Fatalf("config file not created: %v", err)
		}
	})

	t.Run("fails if file already exists", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "appdird.toml")
		cfg := NewConfig(dir)

		if err := Init(path, cfg); err != nil {
			t.Fatalf("first Init() error = %v", err)
		}

		err := Init(path, cfg)
		if err == nil {
			t.Fatal("second Init() expected error")
		}
	})
}

func TestReadFromFile(t *testing.T) {
	t.Run("reads valid config", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "appdird.toml")
		cfg := NewConfig(dir)
		cfg.Listen = ":7070"

		if err := Init(path, cfg); err != nil {
			t.Fatalf("Init() error = %v", err)
		}

		got, err := ReadFromFile(path)
		if err != nil {
			t.Fatalf("ReadFromFile() error = %v", err)
		}
		if got.Listen != ":7070" {
			t.Errorf("Listen = %q, want %q", got.Listen, ":7070")
		}
	})

	t.Run("returns error for missing file", func(t *testing.T) {
		_, err := ReadFromFile("/nonexistent/path/appdird.toml")
		if err == nil {
			t.Fatal("ReadFromFile() expected error for missing file")
		}
	})
}
