package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	cfg := Default()
	cfg.Token = "token123"
	cfg.Prefix = "!"
	cfg.OwnerIDs = []string{"163454407999094786"}
	cfg.DataDir = dir
	if err := cfg.Write(path); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got.Token != "token123" {
		t.Errorf("Token = %v, want token123", got.Token)
	}
	if got.Prefix != "!" {
		t.Errorf("Prefix = %v, want !", got.Prefix)
	}
	if got.DatabasePath != filepath.Join(dir, "grief.db") {
		t.Errorf("DatabasePath = %v, want %v", got.DatabasePath, filepath.Join(dir, "grief.db"))
	}
}

func TestLoadEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	cfg := Default()
	cfg.Token = "filetoken"
	cfg.DataDir = dir
	if err := cfg.Write(path); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	os.Setenv("GRIEF_TOKEN", "envtoken")
	defer os.Unsetenv("GRIEF_TOKEN")

	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got.Token != "envtoken" {
		t.Errorf("Token = %v, want envtoken", got.Token)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:    "valid",
			mutate:  func(c *Config) {},
			wantErr: false,
		},
		{
			name:    "missing token",
			mutate:  func(c *Config) { c.Token = "" },
			wantErr: true,
		},
		{
			name:    "empty prefix",
			mutate:  func(c *Config) { c.Prefix = "" },
			wantErr: true,
		},
		{
			name:    "negative shards",
			mutate:  func(c *Config) { c.Shards = -1 },
			wantErr: true,
		},
		{
			name:    "lavalink enabled without address",
			mutate:  func(c *Config) { c.Lavalink = Lavalink{Enabled: true} },
			wantErr: true,
		},
		{
			name:    "bad log level",
			mutate:  func(c *Config) { c.LogLevel = "loud" },
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.Token = "token"
			tt.mutate(cfg)
			if err := cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestIsOwner(t *testing.T) {
	cfg := Default()
	cfg.OwnerIDs = []string{"1234", "5678"}
	if !cfg.IsOwner("1234") {
		t.Errorf("IsOwner(1234) = false, want true")
	}
	if cfg.IsOwner("9999") {
		t.Errorf("IsOwner(9999) = true, want false")
	}
}
