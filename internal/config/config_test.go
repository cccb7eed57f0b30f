package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte("bbs:\n  name: \"Test Board\"\nserver:\n  port: 9999\n")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.BBS.Name != "Test Board" {
		t.Errorf("name = %q, want override", cfg.BBS.Name)
	}
	if cfg.Server.Port != 9999 {
		t.Errorf("port = %d, want override", cfg.Server.Port)
	}
	// Keys absent from the file keep their defaults.
	if cfg.Server.HTTPPort != 8080 {
		t.Errorf("http port = %d, want default 8080", cfg.Server.HTTPPort)
	}
	if cfg.Paths.Database != "./data/bbs.db" {
		t.Errorf("database = %q, want default", cfg.Paths.Database)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error for missing config file")
	}
}
