package internal

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// firstBootConfig points every path at locations that do not exist yet,
// the way a fresh deployment starts.
func firstBootConfig(t *testing.T) *Config {
	t.Helper()
	root := t.TempDir()
	cfg := NewDefaultConfig()
	cfg.App.HTTP.Port = 0 // ephemeral port
	cfg.SQLite.Path = filepath.Join(root, "dagaz.db")
	cfg.Media.Path = filepath.Join(root, "media")
	return cfg
}

func TestRunFirstBootCreatesMediaDir(t *testing.T) {
	cfg := firstBootConfig(t)

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	if err := Run(ctx, WithConfig(cfg)); err != nil {
		t.Fatalf("Run on fresh paths: %v", err)
	}

	info, err := os.Stat(cfg.Media.Path)
	if err != nil {
		t.Fatalf("media dir not created: %v", err)
	}
	if !info.IsDir() {
		t.Fatalf("media path is not a directory")
	}
}

func TestRunRequiresConfig(t *testing.T) {
	if err := Run(context.Background()); err == nil {
		t.Fatal("expected error when no config is provided")
	}
}
