package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultTuning(t *testing.T) {
	tuning := DefaultTuning()

	assert.InDelta(t, 0.30, tuning.Weights.DialogueIntensity, 1e-9)
	assert.InDelta(t, 0.25, tuning.Weights.ActionUrgency, 1e-9)
	assert.InDelta(t, 0.20, tuning.Weights.SensoryRichness, 1e-9)
	assert.InDelta(t, 0.15, tuning.Weights.ConflictLevel, 1e-9)
	assert.InDelta(t, 0.10, tuning.Weights.CharacterVulnerability, 1e-9)

	assert.Equal(t, 1.5, tuning.StoryBeatMultiplier)
	assert.Equal(t, 1.3, tuning.TensionMultiplier)
	assert.Equal(t, 0.5, tuning.MinimumEmotionalScore)
	assert.Equal(t, 10, tuning.RecentEffectWindow)
	assert.Equal(t, 2, tuning.RecentEffectLimit)
	assert.Equal(t, 0.3, tuning.SelectionAcceptRate)
	assert.Equal(t, 0.8, tuning.SoundEffectThreshold)
	assert.Equal(t, 3, tuning.MaxEffectsPerSegment)
	assert.Equal(t, 0.7, tuning.CharacterConsistencyThreshold)
	assert.Equal(t, 0.02, tuning.GlobalEffectDensity)
	assert.Equal(t, 0.05, tuning.ChapterEffectLimit)
	assert.Equal(t, 8, tuning.MinimumEffectSpacing)
	assert.Equal(t, 2, tuning.MaxConsecutiveEffects)
	assert.Equal(t, 0.6, tuning.TensionThreshold)
}

func TestTuningValidate(t *testing.T) {
	t.Run("defaults are valid", func(t *testing.T) {
		tuning := DefaultTuning()
		assert.NoError(t, tuning.Validate())
	})

	t.Run("weights must sum to one", func(t *testing.T) {
		tuning := DefaultTuning()
		tuning.Weights.DialogueIntensity = 0.5

		err := tuning.Validate()
		assert.ErrorContains(t, err, "factor weights")
	})

	t.Run("out of range threshold", func(t *testing.T) {
		tuning := DefaultTuning()
		tuning.MinimumEmotionalScore = 1.5

		assert.Error(t, tuning.Validate())
	})

	t.Run("zero spacing", func(t *testing.T) {
		tuning := DefaultTuning()
		tuning.MinimumEffectSpacing = 0

		assert.Error(t, tuning.Validate())
	})
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DATABASE_PATH", "")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("TUNING_PATH", "")
	t.Setenv("BATCH_WORKERS", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "data/cinemark.db", cfg.DatabasePath)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 4, cfg.BatchWorkers)
	assert.Equal(t, DefaultTuning(), cfg.Tuning)
}

func TestLoad_InvalidWorkers(t *testing.T) {
	t.Setenv("BATCH_WORKERS", "lots")

	_, err := Load()
	assert.ErrorContains(t, err, "BATCH_WORKERS")
}

func TestLoad_TuningFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tuning.yaml")
	data := `
minimum_emotional_score: 0.6
recent_effect_window: 20
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	t.Setenv("DATABASE_PATH", "")
	t.Setenv("BATCH_WORKERS", "")
	t.Setenv("TUNING_PATH", path)

	cfg, err := Load()
	require.NoError(t, err)

	// Overridden values.
	assert.Equal(t, 0.6, cfg.Tuning.MinimumEmotionalScore)
	assert.Equal(t, 20, cfg.Tuning.RecentEffectWindow)
	// Untouched values keep their defaults.
	assert.Equal(t, 0.8, cfg.Tuning.SoundEffectThreshold)
	assert.InDelta(t, 0.30, cfg.Tuning.Weights.DialogueIntensity, 1e-9)
}

func TestLoad_TuningFileInvalid(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tuning.yaml")
	require.NoError(t, os.WriteFile(path, []byte("minimum_emotional_score: 2.0"), 0644))

	t.Setenv("BATCH_WORKERS", "")
	t.Setenv("TUNING_PATH", path)

	_, err := Load()
	assert.Error(t, err)
}
