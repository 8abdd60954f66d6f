// Package config holds the typed configuration for Groundswell.
// Everything the scorer, detector, and pacing gate tune on lives here,
// with documented defaults. Missing or nonsense values fall back to those
// defaults rather than silently behaving as empty.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// Config is the persistent application configuration
type Config struct {
	// Keywords drive the free (no-LLM) relevance scoring
	Keywords KeywordConfig `json:"keywords"`

	// Thresholds gate scoring, dedup, and pacing
	Thresholds ThresholdConfig `json:"thresholds"`

	// Aspects is the marketing-aspect checklist used to suggest
	// unclaimed angles, each with its own keyword set
	Aspects map[string][]string `json:"aspects"`

	// Subreddits to search by default
	Subreddits []string `json:"subreddits"`

	// Triggers are the default phrases a sniper comment watches for
	Triggers []string `json:"triggers"`

	// LogLevel sets the file-log verbosity: debug, info, warn, or error
	LogLevel string `json:"log_level"`
}

// KeywordConfig holds the keyword lists used by the relevance scorer
type KeywordConfig struct {
	Primary     []string `json:"primary"`
	PainPoints  []string `json:"pain_points"`
	Competitors []string `json:"competitor_mentions"`
}

// ThresholdConfig holds every numeric knob with its documented default
type ThresholdConfig struct {
	MinPostScore        int     `json:"min_post_score"`        // default 2
	MaxPostAgeHours     float64 `json:"max_post_age_hours"`    // default 72
	RelevanceThreshold  int     `json:"relevance_threshold"`   // default 30
	MaxForGeneration    int     `json:"max_for_generation"`    // default 10
	SimilarityThreshold float64 `json:"similarity_threshold"`  // default 0.6
	DailyCap            int     `json:"max_daily_per_channel"` // default 5
	MinDelayMinutes     int     `json:"min_delay_minutes"`     // default 10
	MaxDelayMinutes     int     `json:"max_delay_minutes"`     // default 30
	CooldownMinutes     int     `json:"cooldown_minutes"`      // default 60
	ConsecutiveLimit    int     `json:"consecutive_limit"`     // default 3
}

// DefaultConfig returns the configuration used when no file exists.
// The keyword lists ship empty on purpose: they are product-specific
// and belong to the operator, not the code.
func DefaultConfig() *Config {
	return &Config{
		Thresholds: ThresholdConfig{
			MinPostScore:        2,
			MaxPostAgeHours:     72,
			RelevanceThreshold:  30,
			MaxForGeneration:    10,
			SimilarityThreshold: 0.6,
			DailyCap:            5,
			MinDelayMinutes:     10,
			MaxDelayMinutes:     30,
			CooldownMinutes:     60,
			ConsecutiveLimit:    3,
		},
		Aspects: map[string][]string{
			"speed/performance":  {"fast", "speed", "quick", "slow", "performance"},
			"cost/pricing":       {"price", "cost", "expensive", "cheap", "free", "subscription"},
			"privacy/security":   {"privacy", "secure", "cloud", "local", "offline"},
			"ease of use":        {"easy", "simple", "intuitive", "complicated"},
			"offline capability": {"offline", "local", "internet", "cloud"},
			"customization":      {"custom", "configure", "settings", "options"},
			"support/community":  {"support", "community", "help", "documentation"},
		},
		Triggers: []string{
			"what app",
			"which app",
			"what tool",
			"which tool",
			"link?",
			"what do you use",
			"what are you using",
			"can you share",
			"tell me more",
			"how did you",
			"dm me",
		},
		LogLevel: "info",
	}
}

// ConfigPath returns the path to the config file
func ConfigPath() string {
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".groundswell", "config.json")
}

// Load reads the config file, merging it over defaults. A missing file is
// not an error: you get the defaults. A file that half-specifies the
// thresholds gets the defaults for whatever it left out or broke.
func Load() (*Config, error) {
	return LoadPath(ConfigPath())
}

// LoadPath reads a config file from an explicit path.
func LoadPath(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	cfg.Normalize()
	return cfg, nil
}

// Save writes the config file
func (c *Config) Save() error {
	return c.SavePath(ConfigPath())
}

// SavePath writes the config to an explicit path.
func (c *Config) SavePath(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Normalize clamps out-of-range values back to their defaults.
// Zero and negative thresholds would disable gates entirely, which is
// never what a half-written config file meant.
func (c *Config) Normalize() {
	def := DefaultConfig().Thresholds
	t := &c.Thresholds

	if t.MinPostScore < 0 {
		t.MinPostScore = def.MinPostScore
	}
	if t.MaxPostAgeHours <= 0 {
		t.MaxPostAgeHours = def.MaxPostAgeHours
	}
	if t.RelevanceThreshold <= 0 || t.RelevanceThreshold > 100 {
		t.RelevanceThreshold = def.RelevanceThreshold
	}
	if t.MaxForGeneration <= 0 {
		t.MaxForGeneration = def.MaxForGeneration
	}
	if t.SimilarityThreshold <= 0 || t.SimilarityThreshold >= 1 {
		t.SimilarityThreshold = def.SimilarityThreshold
	}
	if t.DailyCap <= 0 {
		t.DailyCap = def.DailyCap
	}
	if t.MinDelayMinutes <= 0 {
		t.MinDelayMinutes = def.MinDelayMinutes
	}
	if t.MaxDelayMinutes < t.MinDelayMinutes {
		t.MaxDelayMinutes = t.MinDelayMinutes
	}
	if t.CooldownMinutes < t.MinDelayMinutes {
		t.CooldownMinutes = def.CooldownMinutes
	}
	if t.ConsecutiveLimit <= 0 {
		t.ConsecutiveLimit = def.ConsecutiveLimit
	}

	if len(c.Aspects) == 0 {
		c.Aspects = DefaultConfig().Aspects
	}
	if len(c.Triggers) == 0 {
		c.Triggers = DefaultConfig().Triggers
	}

	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		c.LogLevel = DefaultConfig().LogLevel
	}
}
