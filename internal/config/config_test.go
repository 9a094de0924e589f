package config

import (
	"testing"

	"causalnotes/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"SEED", "SAMPLE_SIZE", "MAX_PARALLEL", "ALPHA", "DATABASE_URL", "PORT", "OUTPUT_DIR"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, int64(42), cfg.Simulation.Seed)
	assert.Equal(t, 500, cfg.Simulation.SampleSize)
	assert.Equal(t, 0.05, cfg.Simulation.Alpha)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "./out", cfg.Paths.OutputDir)
	assert.False(t, cfg.Database.Enabled())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("SEED", "7")
	t.Setenv("SAMPLE_SIZE", "2000")
	t.Setenv("DATABASE_URL", "postgres://localhost/notes")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, int64(7), cfg.Simulation.Seed)
	assert.Equal(t, 2000, cfg.Simulation.SampleSize)
	assert.True(t, cfg.Database.Enabled())
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := map[string]string{
		"SAMPLE_SIZE":  "1",
		"MAX_PARALLEL": "0",
		"ALPHA":        "1.5",
		"SEED":         "forty-two",
	}
	for key, value := range tests {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, value)
			_, err := Load()
			require.Error(t, err)
			assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))
		})
	}
}
