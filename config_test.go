package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("missing config file should fall back to defaults: %v", err)
	}
	if cfg.Server.Addr != ":8080" {
		t.Errorf("expected default addr :8080, got %s", cfg.Server.Addr)
	}
	if cfg.World.GridCellSize <= 0 {
		t.Error("default grid cell size must be positive")
	}
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "arena.toml")
	data := `
[server]
addr = ":9999"

[world]
width = 6000.0
height = 3000.0
grid_cell_size = 120.0
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Addr != ":9999" {
		t.Errorf("expected addr :9999, got %s", cfg.Server.Addr)
	}
	if cfg.World.Width != 6000 || cfg.World.Height != 3000 {
		t.Errorf("world size mismatch: %f x %f", cfg.World.Width, cfg.World.Height)
	}
	if cfg.World.GridCellSize != 120 {
		t.Errorf("expected cell size 120, got %f", cfg.World.GridCellSize)
	}
}
