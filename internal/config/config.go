// Package config manages the user configuration (~/.config/gapfill/config.toml).
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/gapfill/gapfill/internal/scheduler"
	"github.com/gapfill/gapfill/internal/scoring"
)

// Config holds user-wide settings.
type Config struct {
	Data       DataConfig        `toml:"data"`
	LLM        LLMConfig         `toml:"llm"`
	Enrichment EnrichmentConfig  `toml:"enrichment"`
	Scoring    ScoringConfig     `toml:"scoring"`
	Scheduler  scheduler.Options `toml:"scheduler"`
	Log        LogConfig         `toml:"log"`
}

// DataConfig locates the task database and the default day file.
type DataConfig struct {
	Dir     string `toml:"dir"`
	DayFile string `toml:"day_file"`
}

// LLMConfig selects the enrichment provider.
type LLMConfig struct {
	Provider string       `toml:"provider"` // none, claude, openai, ollama
	Model    string       `toml:"model"`
	Keys     KeysConfig   `toml:"keys"`
	Ollama   OllamaConfig `toml:"ollama"`
}

type KeysConfig struct {
	Anthropic string `toml:"anthropic"`
	OpenAI    string `toml:"openai"`
}

type OllamaConfig struct {
	Host  string `toml:"host"`
	Model string `toml:"model"`
}

// EnrichmentConfig controls filling in missing memo fields.
type EnrichmentConfig struct {
	Enabled        bool   `toml:"enabled"`
	Timeout        string `toml:"timeout"`
	CacheTTL       string `toml:"cache_ttl"`
	TokenizePrompt bool   `toml:"tokenize_prompt"`
}

// ScoringConfig tunes the need and duration models.
type ScoringConfig struct {
	DefaultSessionMinutes int     `toml:"default_session_minutes"`
	MaxGrowthFactor       float64 `toml:"max_growth_factor"`
	SmoothingAlpha        float64 `toml:"smoothing_alpha"`
	DuplicateFactor       float64 `toml:"duplicate_factor"`
}

type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// Default returns sensible defaults.
func Default() Config {
	sc := scoring.DefaultOptions()
	return Config{
		Data: DataConfig{DayFile: "today.toml"},
		LLM: LLMConfig{
			Provider: "none",
			Ollama: OllamaConfig{
				Host:  "http://localhost:11434",
				Model: "llama3.2",
			},
		},
		Enrichment: EnrichmentConfig{
			Enabled:  true,
			Timeout:  "10s",
			CacheTTL: "24h",
		},
		Scoring: ScoringConfig{
			DefaultSessionMinutes: sc.DefaultSessionMinutes,
			MaxGrowthFactor:       sc.MaxGrowthFactor,
			SmoothingAlpha:        sc.SmoothingAlpha,
			DuplicateFactor:       0.5,
		},
		Scheduler: scheduler.DefaultOptions(),
		Log: LogConfig{
			Level:  "info",
			Format: "auto",
		},
	}
}

// Path returns the path to the config file. GAPFILL_CONFIG overrides it.
func Path() (string, error) {
	if p := os.Getenv("GAPFILL_CONFIG"); p != "" {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "gapfill", "config.toml"), nil
}

// DataDir returns the directory holding the task database.
func (c Config) DataDir() (string, error) {
	if c.Data.Dir != "" {
		return c.Data.Dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("config: data dir: %w", err)
	}
	return filepath.Join(home, ".local", "share", "gapfill"), nil
}

// DBPath returns the path to the SQLite task database.
func (c Config) DBPath() (string, error) {
	dir, err := c.DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "gapfill.db"), nil
}

// Load loads the config, applying defaults for any missing values.
func Load() (Config, error) {
	path, err := Path()
	if err != nil {
		return withEnv(Default()), nil // Return defaults if we can't determine home dir.
	}
	return LoadFile(path)
}

// LoadFile loads the config at path. A missing file yields the defaults.
func LoadFile(path string) (Config, error) {
	cfg := Default()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return withEnv(cfg), nil
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return withEnv(Default()), fmt.Errorf("config: load %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return withEnv(Default()), err
	}
	return withEnv(cfg), nil
}

// withEnv lets env vars override config file API keys.
func withEnv(cfg Config) Config {
	if v := os.Getenv("ANTHROPIC_API_KEY"); v != "" {
		cfg.LLM.Keys.Anthropic = v
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		cfg.LLM.Keys.OpenAI = v
	}
	return cfg
}

// Validate checks values that would otherwise fail late.
func (c Config) Validate() error {
	switch c.LLM.Provider {
	case "", "none", "claude", "openai", "ollama":
	default:
		return fmt.Errorf("config: llm.provider %q (valid: none, claude, openai, ollama)", c.LLM.Provider)
	}
	if _, err := c.EnrichmentTimeout(); err != nil {
		return err
	}
	if _, err := c.EnrichmentCacheTTL(); err != nil {
		return err
	}
	if f := c.Scoring.DuplicateFactor; f < 0 || f > 1 {
		return fmt.Errorf("config: scoring.duplicate_factor %v must be within [0, 1]", f)
	}
	return nil
}

// EnrichmentTimeout parses enrichment.timeout; empty means no timeout.
func (c Config) EnrichmentTimeout() (time.Duration, error) {
	return parseDuration("enrichment.timeout", c.Enrichment.Timeout)
}

// EnrichmentCacheTTL parses enrichment.cache_ttl; empty means no expiry.
func (c Config) EnrichmentCacheTTL() (time.Duration, error) {
	return parseDuration("enrichment.cache_ttl", c.Enrichment.CacheTTL)
}

func parseDuration(key, s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("config: %s: %w", key, err)
	}
	return d, nil
}

// ScoringOptions converts the scoring section for the scorer.
func (c Config) ScoringOptions() scoring.Options {
	return scoring.Options{
		DefaultSessionMinutes: c.Scoring.DefaultSessionMinutes,
		MaxGrowthFactor:       c.Scoring.MaxGrowthFactor,
		SmoothingAlpha:        c.Scoring.SmoothingAlpha,
		SnapMinutes:           c.Scheduler.SnapMinutes,
	}
}

// Save writes the config to path, creating parent directories.
func Save(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("config: mkdir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("config: create config: %w", err)
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(cfg)
}
