package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Loop.TickRate != 16*time.Millisecond {
		t.Errorf("Expected 16ms tick, got %s", cfg.Loop.TickRate)
	}
	if cfg.Database.Enabled {
		t.Error("Expected database disabled by default")
	}
	if since := time.Since(time.Unix(cfg.Engine.StartTime, 0)); since < 0 || since > time.Minute {
		t.Errorf("Expected StartTime stamped at load, got %d", cfg.Engine.StartTime)
	}
}

func TestLoadFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "engine.toml")
	body := `
[engine]
name = "test"

[loop]
tick_rate = "50ms"
ticks = 3

[logging]
level = "debug"
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("JADE_LOG_LEVEL", "warn")
	t.Setenv("JADE_SCENE", "other.yaml")

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Engine.Name != "test" || cfg.Loop.Ticks != 3 || cfg.Loop.TickRate != 50*time.Millisecond {
		t.Errorf("File values not applied: %+v %+v", cfg.Engine, cfg.Loop)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("Expected env to override file level, got %q", cfg.Logging.Level)
	}
	if cfg.Scene.Path != "other.yaml" {
		t.Errorf("Expected env scene path, got %q", cfg.Scene.Path)
	}
	if cfg.Logging.Format != "console" {
		t.Errorf("Expected default format to survive, got %q", cfg.Logging.Format)
	}
}

func TestLoadSnapshotKeep(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Database.SnapshotKeep != 10 {
		t.Errorf("Expected default keep 10, got %d", cfg.Database.SnapshotKeep)
	}

	t.Setenv("JADE_SNAPSHOT_KEEP", "3")
	if cfg, err = Load(""); err != nil {
		t.Fatal(err)
	}
	if cfg.Database.SnapshotKeep != 3 {
		t.Errorf("Expected env keep 3, got %d", cfg.Database.SnapshotKeep)
	}

	t.Setenv("JADE_SNAPSHOT_KEEP", "-1")
	if _, err := Load(""); err == nil {
		t.Error("Expected negative keep to be rejected")
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Setenv("JADE_TICKS", "-1")
	if _, err := Load(""); err == nil {
		t.Error("Expected negative ticks to be rejected")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Error("Expected error for missing file")
	}
}
