package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaults(t *testing.T) {
	cfg := Default()

	if cfg.PausePadding != 1.5 {
		t.Errorf("expected pause padding 1.5, got %.2f", cfg.PausePadding)
	}
	if cfg.GapTolerance != 2.0 {
		t.Errorf("expected gap tolerance 2.0, got %.2f", cfg.GapTolerance)
	}
	if warnings, err := cfg.Validate(); err != nil || len(warnings) != 0 {
		t.Errorf("defaults should validate cleanly, got %v / %v", warnings, err)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("missing file should not error: %v", err)
	}
	if cfg.Voice != Default().Voice {
		t.Errorf("expected default voice, got %s", cfg.Voice)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := []byte("voice: echo\nworkers: 4\ntts:\n  model: tts-1-hd\n")
	if err := os.WriteFile(path, content, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Voice != "echo" || cfg.Workers != 4 {
		t.Errorf("overrides not applied: %+v", cfg)
	}
	if cfg.TTS.Model != "tts-1-hd" {
		t.Errorf("nested override not applied: %+v", cfg.TTS)
	}
	// Untouched fields keep their defaults.
	if cfg.PausePadding != 1.5 {
		t.Errorf("expected default pause padding, got %.2f", cfg.PausePadding)
	}
}

func TestValidateErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero speed", func(c *Config) { c.Speed = 0 }},
		{"negative padding", func(c *Config) { c.PausePadding = -1 }},
		{"negative workers", func(c *Config) { c.Workers = -2 }},
		{"empty voice", func(c *Config) { c.Voice = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			if _, err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestValidateWarnings(t *testing.T) {
	cfg := Default()
	cfg.GapTolerance = 1.0 // below the pause padding

	warnings, err := cfg.Validate()
	if err != nil {
		t.Fatalf("expected warning, not error: %v", err)
	}
	if len(warnings) != 1 {
		t.Errorf("expected one warning, got %v", warnings)
	}
}
