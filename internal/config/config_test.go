package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != "8080" || cfg.Game.QuestionsPerGame != 5 || cfg.Game.TimePerQuestion != 15 {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte("server:\n  port: \"9090\"\ngame:\n  time_per_question: 20\nredis:\n  addr: localhost:6379\n")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != "9090" {
		t.Fatalf("expected port 9090, got %s", cfg.Server.Port)
	}
	if cfg.Game.TimePerQuestion != 20 {
		t.Fatalf("expected time per question 20, got %d", cfg.Game.TimePerQuestion)
	}
	if cfg.Game.QuestionsPerGame != 5 {
		t.Fatalf("expected default questions per game kept, got %d", cfg.Game.QuestionsPerGame)
	}
	if cfg.Redis.Addr != "localhost:6379" {
		t.Fatalf("unexpected redis addr %q", cfg.Redis.Addr)
	}
}

func TestLoadRejectsInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("server: [unterminated"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestTTLDuration(t *testing.T) {
	if d := TTLDuration("", time.Minute); d != time.Minute {
		t.Fatalf("expected fallback for empty, got %v", d)
	}
	if d := TTLDuration("garbage", time.Minute); d != time.Minute {
		t.Fatalf("expected fallback for garbage, got %v", d)
	}
	if d := TTLDuration("90s", time.Minute); d != 90*time.Second {
		t.Fatalf("expected 90s, got %v", d)
	}
}
