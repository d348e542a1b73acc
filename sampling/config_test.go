package sampling_test

import (
	"testing"

	"github.com/lmfoundry/locallm/sampling"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigValidate(t *testing.T) {
	t.Parallel()

	cfg := sampling.DefaultConfig()
	require.NoError(t, cfg.Validate())

	cfg = sampling.DefaultConfig()
	cfg.TopP = 0
	err := cfg.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, sampling.ErrInvalidConfig)

	cfg = sampling.DefaultConfig()
	cfg.TopP = 1.5
	assert.ErrorIs(t, cfg.Validate(), sampling.ErrInvalidConfig)

	cfg = sampling.DefaultConfig()
	cfg.Temperature = -0.1
	assert.ErrorIs(t, cfg.Validate(), sampling.ErrInvalidConfig)

	cfg = sampling.DefaultConfig()
	cfg.TopK = -1
	assert.ErrorIs(t, cfg.Validate(), sampling.ErrInvalidConfig)

	cfg = sampling.DefaultConfig()
	cfg.RepetitionPenalty = -1
	assert.ErrorIs(t, cfg.Validate(), sampling.ErrInvalidConfig)

	cfg = sampling.DefaultConfig()
	cfg.MaxNewTokens = 0
	assert.ErrorIs(t, cfg.Validate(), sampling.ErrInvalidConfig)
}

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := sampling.DefaultConfig()
	assert.Equal(t, 0.7, cfg.Temperature)
	assert.Equal(t, 0.9, cfg.TopP)
	assert.Equal(t, 0, cfg.TopK)
	assert.Equal(t, 1.0, cfg.RepetitionPenalty)
	assert.Equal(t, 512, cfg.MaxNewTokens)
	assert.Nil(t, cfg.Seed)
}
