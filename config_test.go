package cp3d

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	cfg, err := LoadConfig(strings.NewReader(`
timestep = 0.02
iterations = 12
gravity = [0.0, -1.62, 0.0]
narrowphase_workers = 4
`))
	require.NoError(t, err)

	assert.Equal(t, 0.02, cfg.Timestep)
	assert.Equal(t, 12, cfg.Iterations)
	assert.Equal(t, Vector{0, -1.62, 0}, cfg.GravityVector())
	assert.Equal(t, 4, cfg.NarrowPhaseWorkers)

	// untouched keys keep their defaults
	def := DefaultConfig()
	assert.Equal(t, def.MaxSubsteps, cfg.MaxSubsteps)
	assert.Equal(t, def.Baumgarte, cfg.Baumgarte)
}

func TestLoadConfig_UnknownKey(t *testing.T) {
	_, err := LoadConfig(strings.NewReader("iterashuns = 3\n"))
	assert.Error(t, err)
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := map[string]string{
		"timestep":       "timestep = 0.0",
		"iterations":     "iterations = 0",
		"baumgarte":      "baumgarte = 1.5",
		"collision_slop": "collision_slop = -0.1",
		"max_bodies":     "max_bodies = 0",
		"persistence":    "collision_persistence = 0",
		"syntax":         "timestep = = 1",
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := LoadConfig(strings.NewReader(doc))
			assert.Error(t, err)
		})
	}
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "space.toml")
	require.NoError(t, os.WriteFile(path, []byte("max_substeps = 2\n"), 0o644))

	cfg, err := LoadConfigFile(path)
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.MaxSubsteps)

	_, err = LoadConfigFile(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}

func TestDefaultConfig_Valid(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())
	assert.NotNil(t, NewSpace())
}

func TestError_Format(t *testing.T) {
	err := &Error{Kind: NumericInstability, Body: BodyID(makeHandle(2, 1)), Msg: "reset"}
	assert.Equal(t, "cp3d: numeric instability (body 2.1): reset", err.Error())
	assert.ErrorIs(t, err, ErrNumericInstability)
	assert.NotErrorIs(t, err, ErrCapacityExhausted)
	assert.Equal(t, "ErrorKind(42)", ErrorKind(42).String())
}
