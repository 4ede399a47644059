package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "lattice-pricer/internal/errors"
	"lattice-pricer/internal/lattice"
)

func clearEnv(t *testing.T) {
	t.Helper()
	t.Setenv("PRICER_INSTABILITY_POLICY", "")
	t.Setenv("PRICER_BOUNDARY", "")
	t.Setenv("PRICER_LOG_LEVEL", "")
}

func writeConfig(t *testing.T, dir, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(body), 0644))
}

func TestLoad_CreatesTemplateAndUsesDefaults(t *testing.T) {
	clearEnv(t)
	dir := filepath.Join(t.TempDir(), "pricer")

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Empty(t, cfg.Path)
	assert.Equal(t, "fail", cfg.Engine.InstabilityPolicy)
	assert.Equal(t, "linear", cfg.Engine.Boundary)
	assert.Equal(t, 200, cfg.Engine.Steps)
	assert.Equal(t, 1000, cfg.MonteCarlo.Paths)
	assert.Equal(t, uint64(42), cfg.MonteCarlo.Seed)
	assert.Equal(t, 4, cfg.Output.Precision)

	data, err := os.ReadFile(ConfigPath(dir))
	require.NoError(t, err)
	assert.Equal(t, Template(), string(data))

	// The template itself must load cleanly.
	again, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, ConfigPath(dir), again.Path)
	assert.Equal(t, cfg.Engine, again.Engine)
	assert.Equal(t, cfg.MonteCarlo, again.MonteCarlo)
}

func TestLoad_ReadsFile(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	writeConfig(t, dir, `
[engine]
instability_policy = "warn"
boundary = "neumann"
steps = 50
half_width = 30

[montecarlo]
paths = 200
seed = 7

[output]
precision = 6
color_enabled = false
`)

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.Engine.InstabilityPolicy)
	assert.Equal(t, "neumann", cfg.Engine.Boundary)
	assert.Equal(t, 50, cfg.Engine.Steps)
	assert.Equal(t, 30, cfg.Engine.HalfWidth)
	assert.Equal(t, 200, cfg.MonteCarlo.Paths)
	assert.Equal(t, 10, cfg.MonteCarlo.Steps, "unset keys keep defaults")
	assert.Equal(t, uint64(7), cfg.MonteCarlo.Seed)
	assert.Equal(t, 6, cfg.Output.Precision)
	assert.True(t, cfg.LogConfig().NoColor)
}

func TestLoad_EnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PRICER_INSTABILITY_POLICY", "warn")
	t.Setenv("PRICER_BOUNDARY", "neumann")
	t.Setenv("PRICER_LOG_LEVEL", "debug")

	cfg, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.Engine.InstabilityPolicy)
	assert.Equal(t, "neumann", cfg.Engine.Boundary)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"policy", "[engine]\ninstability_policy = \"ignore\"\n"},
		{"boundary", "[engine]\nboundary = \"dirichlet\"\n"},
		{"steps", "[engine]\nsteps = 0\n"},
		{"half width", "[engine]\nhalf_width = -1\n"},
		{"bump", "[engine]\nbump = 1.5\n"},
		{"paths", "[montecarlo]\npaths = 1\n"},
		{"precision", "[output]\nprecision = 20\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			dir := t.TempDir()
			writeConfig(t, dir, tt.body)

			_, err := Load(dir)
			require.Error(t, err)
			assert.ErrorIs(t, err, apperrors.ErrConfigInvalid)
		})
	}
}

func TestLoad_MalformedFile(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	writeConfig(t, dir, "[engine\nsteps = ")

	_, err := Load(dir)
	require.Error(t, err)
	assert.NotErrorIs(t, err, apperrors.ErrConfigInvalid)
}

func TestLatticeOptions(t *testing.T) {
	cfg := Default()
	cfg.Engine.InstabilityPolicy = "warn"
	cfg.Engine.Boundary = "neumann"

	opts, err := cfg.LatticeOptions()
	require.NoError(t, err)

	o := lattice.Options{}
	for _, opt := range opts {
		opt(&o)
	}
	assert.Equal(t, lattice.WarnOnInstability, o.Policy)
	assert.Equal(t, lattice.Neumann, o.Boundary)

	cfg.Engine.Boundary = "periodic"
	_, err = cfg.LatticeOptions()
	assert.ErrorIs(t, err, apperrors.ErrConfigInvalid)
}

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	lc := cfg.LogConfig()
	assert.Equal(t, "warn", lc.Level)
	assert.True(t, lc.Console)
	assert.False(t, lc.NoColor)
}
