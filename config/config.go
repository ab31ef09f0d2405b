package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/pelletier/go-toml/v2"
)

// Config holds everything the bot process needs to run. Values come from
// the TOML file written by grief-setup, with GRIEF_* environment variables
// taking precedence.
type Config struct {
	Token    string   `toml:"token" env:"GRIEF_TOKEN"`
	Prefix   string   `toml:"prefix" env:"GRIEF_PREFIX"`
	OwnerIDs []string `toml:"owner_ids" env:"GRIEF_OWNER_IDS"`
	Shards   int      `toml:"shards" env:"GRIEF_SHARDS"`

	DataDir      string `toml:"data_dir" env:"GRIEF_DATA_DIR"`
	DatabasePath string `toml:"database_path" env:"GRIEF_DATABASE_PATH"`

	Lavalink Lavalink `toml:"lavalink"`

	LogLevel string `toml:"log_level" env:"GRIEF_LOG_LEVEL"`
}

// Lavalink describes the audio node the bot connects to for music playback.
type Lavalink struct {
	Enabled  bool   `toml:"enabled" env:"GRIEF_LAVALINK_ENABLED"`
	Address  string `toml:"address" env:"GRIEF_LAVALINK_ADDRESS"`
	Password string `toml:"password" env:"GRIEF_LAVALINK_PASSWORD"`
}

// Default returns a config with sensible defaults for everything except
// the token, which must come from setup or the environment.
func Default() *Config {
	return &Config{
		Prefix:   ";",
		Shards:   0,
		DataDir:  defaultDataDir(),
		LogLevel: "info",
		Lavalink: Lavalink{
			Address: "localhost:2333",
		},
	}
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".grief"
	}
	return filepath.Join(home, ".grief")
}

// DefaultPath returns where grief-setup writes the config file.
func DefaultPath() string {
	return filepath.Join(defaultDataDir(), "config.toml")
}

// Load reads the config file at path, applies environment overrides and
// validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Write saves the config to path, creating parent directories as needed.
func (c *Config) Write(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return os.WriteFile(path, data, 0o600)
}

// Validate checks required fields and normalizes derived ones.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Token) == "" {
		return errors.New("config: token is required")
	}
	if c.Prefix == "" {
		return errors.New("config: prefix must not be empty")
	}
	if c.Shards < 0 {
		return fmt.Errorf("config: shards must be >= 0, got %d", c.Shards)
	}
	if c.DataDir == "" {
		c.DataDir = defaultDataDir()
	}
	if c.DatabasePath == "" {
		c.DatabasePath = filepath.Join(c.DataDir, "grief.db")
	}
	if c.Lavalink.Enabled && c.Lavalink.Address == "" {
		return errors.New("config: lavalink.address is required when lavalink is enabled")
	}
	switch c.LogLevel {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: unknown log_level %q", c.LogLevel)
	}
	return nil
}

// EnsureDirectories creates the data directory tree the stores live in.
func (c *Config) EnsureDirectories() error {
	dirs := []string{
		c.DataDir,
		filepath.Join(c.DataDir, "kvstore"),
		filepath.Dir(c.DatabasePath),
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	return nil
}

// KVStoreDir returns the badger directory under the data dir.
func (c *Config) KVStoreDir() string {
	return filepath.Join(c.DataDir, "kvstore")
}

// IsOwner reports whether the given user ID is a configured bot owner.
func (c *Config) IsOwner(userID string) bool {
	for _, id := range c.OwnerIDs {
		if id == userID {
			return true
		}
	}
	return false
}
