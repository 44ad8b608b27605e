package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadMissingFileYieldsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Redis.Addr != "" || cfg.Session.TimeLimit != 0 {
		t.Fatalf("expected zero config, got %+v", cfg)
	}
}

func TestLoadParsesSections(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte(`
server:
  port: "9090"
session:
  time_limit: 45
  tick: 500ms
generator:
  base_url: http://localhost:11434/v1
  model: llama3
  temperature: 0.2
log:
  level: debug
  file: /tmp/quiz.log
`)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != "9090" || cfg.Session.TimeLimit != 45 {
		t.Fatalf("unexpected config %+v", cfg)
	}
	if cfg.Generator.Model != "llama3" || cfg.Generator.Temperature != 0.2 {
		t.Fatalf("unexpected generator config %+v", cfg.Generator)
	}
	if cfg.Log.Level != "debug" || cfg.Log.File != "/tmp/quiz.log" {
		t.Fatalf("unexpected log config %+v", cfg.Log)
	}
	if d := TTLDuration(cfg.Session.Tick, time.Second); d != 500*time.Millisecond {
		t.Fatalf("expected 500ms tick, got %v", d)
	}
}

func TestLoadRejectsBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("server: [unclosed"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("expected yaml error")
	}
}

func TestTTLDuration(t *testing.T) {
	if d := TTLDuration("", time.Minute); d != time.Minute {
		t.Fatalf("expected fallback, got %v", d)
	}
	if d := TTLDuration("nonsense", time.Minute); d != time.Minute {
		t.Fatalf("expected fallback for bad input, got %v", d)
	}
	if d := TTLDuration("90s", time.Minute); d != 90*time.Second {
		t.Fatalf("expected 90s, got %v", d)
	}
}
