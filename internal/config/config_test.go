package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadYAML(t *testing.T) {
	path := writeConfig(t, "config.yml", `
log_level: debug
repositories:
  - owner1/repo1
  - owner2/repo2
api:
  enabled: true
  addr: ":9090"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.LogLevel != "debug" {
		t.Fatalf("log level = %q", cfg.LogLevel)
	}
	if len(cfg.Repositories) != 2 || cfg.Repositories[0] != "owner1/repo1" {
		t.Fatalf("repositories = %v", cfg.Repositories)
	}
	if cfg.API.Addr != ":9090" {
		t.Fatalf("api addr = %q", cfg.API.Addr)
	}
	// Unset fields fall back to defaults.
	if cfg.Poll.Interval != 60*time.Second {
		t.Fatalf("poll interval = %v", cfg.Poll.Interval)
	}
	if cfg.Window.MaxEvents != 500 || cfg.Window.MaxDays != 7 {
		t.Fatalf("window = %+v", cfg.Window)
	}
	if cfg.Feed.Timeout != 15*time.Second {
		t.Fatalf("feed timeout = %v", cfg.Feed.Timeout)
	}
}

func TestLoadJSON(t *testing.T) {
	path := writeConfig(t, "config.json", `{"repositories":["o/r"],"storage":{"driver":"postgres","dsn":"postgres://x"}}`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Storage.Driver != "postgres" {
		t.Fatalf("driver = %q", cfg.Storage.Driver)
	}
}

func TestRepositoryCap(t *testing.T) {
	path := writeConfig(t, "config.yml", `
repositories: [r/1, r/2, r/3, r/4, r/5, r/6, r/7]
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(cfg.Repositories) != 5 {
		t.Fatalf("got %d repositories, want 5", len(cfg.Repositories))
	}
	for i, want := range []string{"r/1", "r/2", "r/3", "r/4", "r/5"} {
		if cfg.Repositories[i] != want {
			t.Fatalf("repositories = %v, want first five in original order", cfg.Repositories)
		}
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestLoadUnparseable(t *testing.T) {
	path := writeConfig(t, "config.json", `{"repositories": [`)
	if _, err := Load(path); err == nil {
		t.Fatalf("expected error for unparseable config")
	}
}

func TestValidateKafka(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Ingest.Kafka.Enabled = true
	if err := Validate(cfg); err == nil {
		t.Fatalf("kafka without brokers must fail validation")
	}
	cfg.Ingest.Kafka.Brokers = []string{"localhost:9092"}
	cfg.Ingest.Kafka.Topic = "events"
	cfg.Ingest.Kafka.GroupID = "tracker"
	if err := Validate(cfg); err != nil {
		t.Fatalf("validate: %v", err)
	}
}
