package config

import (
	"fmt"
	"math"
	"os"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	// Database
	DatabasePath string

	// Logging
	LogLevel string

	// Optional YAML tuning override file
	TuningPath string

	// Batch analysis concurrency
	BatchWorkers int

	// Pipeline tuning
	Tuning Tuning
}

// FactorWeights are the emotion scorer's factor weights. They must sum
// to 1.
type FactorWeights struct {
	DialogueIntensity      float64 `yaml:"dialogue_intensity" validate:"gte=0,lte=1"`
	ActionUrgency          float64 `yaml:"action_urgency" validate:"gte=0,lte=1"`
	SensoryRichness        float64 `yaml:"sensory_richness" validate:"gte=0,lte=1"`
	ConflictLevel          float64 `yaml:"conflict_level" validate:"gte=0,lte=1"`
	CharacterVulnerability float64 `yaml:"character_vulnerability" validate:"gte=0,lte=1"`
}

// Tuning holds every numeric threshold of the pipeline. Defaults mirror
// the documented constants; a YAML file can override any of them.
type Tuning struct {
	// Emotion scoring
	Weights             FactorWeights `yaml:"factor_weights"`
	StoryBeatMultiplier float64       `yaml:"story_beat_multiplier" validate:"gte=1"`
	TensionMultiplier   float64       `yaml:"tension_multiplier" validate:"gte=1"`

	// Effect selection
	MinimumEmotionalScore float64 `yaml:"minimum_emotional_score" validate:"gte=0,lte=1"`
	RecentEffectWindow    int     `yaml:"recent_effect_window" validate:"min=1"`
	RecentEffectLimit     int     `yaml:"recent_effect_limit" validate:"min=0"`
	SelectionAcceptRate   float64 `yaml:"selection_accept_rate" validate:"gt=0,lte=1"`
	SoundEffectThreshold  float64 `yaml:"sound_effect_threshold" validate:"gte=0,lte=1"`

	// Quality control
	MaxEffectsPerSegment          int     `yaml:"maximum_effects_per_segment" validate:"min=1,max=3"`
	CharacterConsistencyThreshold float64 `yaml:"character_consistency_threshold" validate:"gte=0,lte=1"`

	// Sparsity control
	GlobalEffectDensity   float64 `yaml:"global_effect_density" validate:"gt=0,lte=1"`
	ChapterEffectLimit    float64 `yaml:"chapter_effect_limit" validate:"gt=0,lte=1"`
	MinimumEffectSpacing  int     `yaml:"minimum_effect_spacing" validate:"min=1"`
	MaxConsecutiveEffects int     `yaml:"maximum_consecutive_effects" validate:"min=1"`

	// Tension point detection
	TensionThreshold float64 `yaml:"tension_threshold" validate:"gte=0,lte=1"`
}

// DefaultTuning returns the documented pipeline constants.
func DefaultTuning() Tuning {
	return Tuning{
		Weights: FactorWeights{
			DialogueIntensity:      0.30,
			ActionUrgency:          0.25,
			SensoryRichness:        0.20,
			ConflictLevel:          0.15,
			CharacterVulnerability: 0.10,
		},
		StoryBeatMultiplier:   1.5,
		TensionMultiplier:     1.3,
		MinimumEmotionalScore: 0.5,
		RecentEffectWindow:    10,
		RecentEffectLimit:     2,
		SelectionAcceptRate:   0.3,
		SoundEffectThreshold:  0.8,

		MaxEffectsPerSegment:          3,
		CharacterConsistencyThreshold: 0.7,

		GlobalEffectDensity:   0.02,
		ChapterEffectLimit:    0.05,
		MinimumEffectSpacing:  8,
		MaxConsecutiveEffects: 2,

		TensionThreshold: 0.6,
	}
}

// Load reads configuration from environment variables and the optional
// tuning file. It automatically loads .env if present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		DatabasePath: getEnv("DATABASE_PATH", "data/cinemark.db"),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		TuningPath:   getEnv("TUNING_PATH", ""),
		Tuning:       DefaultTuning(),
	}

	workers, err := strconv.Atoi(getEnv("BATCH_WORKERS", "4"))
	if err != nil {
		return nil, fmt.Errorf("invalid BATCH_WORKERS: %w", err)
	}
	cfg.BatchWorkers = workers

	if cfg.TuningPath != "" {
		if err := cfg.Tuning.loadFile(cfg.TuningPath); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration bounds.
func (c *Config) Validate() error {
	if c.BatchWorkers < 1 {
		return fmt.Errorf("BATCH_WORKERS must be at least 1")
	}
	return c.Tuning.Validate()
}

// Validate checks the tuning bounds and that the factor weights sum to 1.
func (t *Tuning) Validate() error {
	v := validator.New()
	if err := v.Struct(t); err != nil {
		return fmt.Errorf("validate tuning: %w", err)
	}

	w := t.Weights
	sum := w.DialogueIntensity + w.ActionUrgency + w.SensoryRichness +
		w.ConflictLevel + w.CharacterVulnerability
	if math.Abs(sum-1.0) > 1e-9 {
		return fmt.Errorf("validate tuning: factor weights sum to %.3f, want 1.0", sum)
	}
	return nil
}

// loadFile overlays values from a YAML tuning file.
func (t *Tuning) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read tuning file: %w", err)
	}
	if err := yaml.Unmarshal(data, t); err != nil {
		return fmt.Errorf("parse tuning file: %w", err)
	}
	return nil
}

// getEnv returns the environment variable value or a default.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
