package main

import (
	"os"

	"github.com/BurntSushi/toml"
)

// Config holds server settings, loadable from a TOML file. Flags
// override whatever the file says; everything has a usable default.
type Config struct {
	Server ServerConfig `toml:"server"`
	World  WorldConfig  `toml:"world"`
}

type ServerConfig struct {
	Addr      string `toml:"addr"`
	DBPath    string `toml:"db_path"`
	PublicURL string `toml:"public_url"` // base URL encoded into session QR codes
}

type WorldConfig struct {
	Width        float64 `toml:"width"`
	Height       float64 `toml:"height"`
	GridCellSize float64 `toml:"grid_cell_size"` // broad-phase cell size, ~2x largest entity radius
}

// DefaultConfig returns the built-in settings
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:      ":8080",
			DBPath:    "arena.db",
			PublicURL: "http://localhost:8080",
		},
		World: WorldConfig{
			Width:        4000,
			Height:       4000,
			GridCellSize: 80,
		},
	}
}

// LoadConfig reads a TOML config file over the defaults. A missing
// file is fine; a malformed one is not.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
