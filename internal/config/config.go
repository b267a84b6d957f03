package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds the pipeline settings loaded from YAML, overridable by flags.
type Config struct {
	Voice        string  `yaml:"voice"`
	Speed        float64 `yaml:"speed"`
	PausePadding float64 `yaml:"pause_padding"`
	GapTolerance float64 `yaml:"gap_tolerance"`
	Workers      int     `yaml:"workers"`

	TTS Service `yaml:"tts"`
	LLM Service `yaml:"llm"`

	SpecDir   string `yaml:"spec_dir"`
	OutputDir string `yaml:"output_dir"`
	AudioDir  string `yaml:"audio_dir"`
	ShowStats bool   `yaml:"show_stats"`
}

// Service is the endpoint configuration for one external collaborator.
// API keys come from the environment, never from the config file.
type Service struct {
	Endpoint string  `yaml:"endpoint"`
	Model    string  `yaml:"model"`
	Timeout  float64 `yaml:"timeout"` // seconds per request
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		Voice:        "alloy",
		Speed:        1.0,
		PausePadding: 1.5,
		GapTolerance: 2.0,
		Workers:      0, // 0 lets the system probe decide
		TTS: Service{
			Endpoint: "https://api.openai.com/v1/audio/speech",
			Model:    "tts-1",
			Timeout:  60,
		},
		LLM: Service{
			Endpoint: "https://api.openai.com/v1/chat/completions",
			Model:    "gpt-4o-mini",
			Timeout:  120,
		},
		SpecDir:   "specs",
		OutputDir: "output",
		AudioDir:  "output/audio",
	}
}

// Load reads a YAML config file over the defaults. A missing file is not an
// error; the defaults apply.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the configuration, returning non-fatal warnings alongside
// any hard error.
func (c *Config) Validate() (warnings []string, err error) {
	if c.Speed <= 0 {
		return warnings, fmt.Errorf("speed must be positive, got %.2f", c.Speed)
	}
	if c.PausePadding < 0 {
		return warnings, fmt.Errorf("pause_padding must not be negative, got %.2f", c.PausePadding)
	}
	if c.GapTolerance < c.PausePadding {
		warnings = append(warnings, fmt.Sprintf(
			"gap_tolerance %.2fs is below pause_padding %.2fs; every pause will be flagged",
			c.GapTolerance, c.PausePadding))
	}
	if c.Workers < 0 {
		return warnings, fmt.Errorf("workers must not be negative, got %d", c.Workers)
	}
	if c.Voice == "" {
		return warnings, fmt.Errorf("voice must be set")
	}
	if c.Speed < 0.5 || c.Speed > 2.0 {
		warnings = append(warnings, fmt.Sprintf("speed %.2f is outside the usual 0.5-2.0 range", c.Speed))
	}
	return warnings, nil
}
