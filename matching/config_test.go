package matching

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())
	assert.InDelta(t, 1.0, DefaultConfig().Weights.Sum(), 1e-9)
}

func TestConfigValidation(t *testing.T) {
	t.Run("weights must sum to one", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Weights.Rating = 0.5
		err := cfg.Validate()
		assert.ErrorIs(t, err, ErrWeightsNotNormalized)
	})

	t.Run("thresholds stay within the unit interval", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.MinSinglesScore = 1.5
		assert.ErrorIs(t, cfg.Validate(), ErrInvalidThreshold)

		cfg = DefaultConfig()
		cfg.MinDoublesScore = -0.1
		assert.ErrorIs(t, cfg.Validate(), ErrInvalidThreshold)
	})

	t.Run("durations must be positive", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.MatchDuration = 0
		assert.ErrorIs(t, cfg.Validate(), ErrInvalidDuration)

		cfg = DefaultConfig()
		cfg.CancelRecency = -time.Hour
		assert.ErrorIs(t, cfg.Validate(), ErrInvalidDuration)

		cfg = DefaultConfig()
		cfg.WarmupBuffer = -time.Minute
		assert.ErrorIs(t, cfg.Validate(), ErrInvalidDuration)
	})

	t.Run("zero warmup is allowed", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.WarmupBuffer = 0
		assert.NoError(t, cfg.Validate())
	})

	t.Run("doubles pool needs room for a foursome", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.MaxDoublesPool = 2
		assert.Error(t, cfg.Validate())

		cfg = DefaultConfig()
		cfg.MaxDoublesPerCluster = 0
		assert.Error(t, cfg.Validate())
	})

	t.Run("engagement ceiling must be positive", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.EngagementCeiling = 0
		assert.Error(t, cfg.Validate())
	})
}
