package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config holds CLI defaults loaded from ~/.config/fsmkit/config.toml.
// Flags override config values; config values override built-ins.
//
// Example config:
//
//	format = "svg"
//	minimize = true
//
//	[redis]
//	addr = "localhost:6379"
type Config struct {
	// Format is the default artifact format for render-producing commands.
	Format string `toml:"format"`

	// Minimize makes `convert` also emit the minimal DFA by default.
	Minimize bool `toml:"minimize"`

	// NoCache disables result caching entirely.
	NoCache bool `toml:"no_cache"`

	// Redis selects the shared cache backend when Addr is non-empty.
	Redis RedisConfig `toml:"redis"`
}

// RedisConfig configures the optional Redis cache backend.
type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() Config {
	return Config{
		Format: "svg",
	}
}

// LoadConfig reads the user's config file, returning defaults when no file
// exists. A malformed file is an error so typos do not silently disable
// settings.
func LoadConfig() (Config, error) {
	cfg := DefaultConfig()

	dir, err := configDir()
	if err != nil {
		return cfg, nil
	}
	path := filepath.Join(dir, "config.toml")

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return DefaultConfig(), fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}
