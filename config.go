package cp3d

import (
	"io"
	"os"

	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"
)

// Config holds the tunables of a space. The zero value is not usable, start
// from DefaultConfig.
type Config struct {
	// Fixed simulation step in seconds.
	Timestep float64 `toml:"timestep"`
	// Most fixed steps a single Step call may run. Time beyond that is dropped.
	MaxSubsteps int `toml:"max_substeps"`

	// Velocity passes over contacts and joints per step.
	Iterations int `toml:"iterations"`
	// Position correction passes per step.
	PositionIterations int `toml:"position_iterations"`

	Gravity [3]float32 `toml:"gravity"`

	// Fraction of positional error corrected per step.
	Baumgarte float32 `toml:"baumgarte"`
	// Penetration allowed before correction kicks in.
	CollisionSlop float32 `toml:"collision_slop"`
	// Closing speeds below this do not bounce.
	RestitutionThreshold float32 `toml:"restitution_threshold"`
	// Steps a separated contact pair keeps its cached impulses.
	CollisionPersistence uint `toml:"collision_persistence"`

	BroadPhaseMargin float32 `toml:"broadphase_margin"`
	// Below this many bodies the broad phase tests every pair.
	BruteForceThreshold int `toml:"brute_force_threshold"`

	// Narrow phase goroutines. 0 or 1 runs serially.
	NarrowPhaseWorkers int `toml:"narrowphase_workers"`
	// Pairs needed before the narrow phase goes parallel.
	ParallelThreshold int `toml:"parallel_threshold"`

	MaxBodies      int `toml:"max_bodies"`
	MaxConstraints int `toml:"max_constraints"`
}

func DefaultConfig() Config {
	return Config{
		Timestep:             1.0 / 60.0,
		MaxSubsteps:          8,
		Iterations:           10,
		PositionIterations:   4,
		Gravity:              [3]float32{0, -9.8, 0},
		Baumgarte:            0.2,
		CollisionSlop:        0.005,
		RestitutionThreshold: 0.5,
		CollisionPersistence: 3,
		BroadPhaseMargin:     0.02,
		BruteForceThreshold:  8,
		NarrowPhaseWorkers:   0,
		ParallelThreshold:    64,
		MaxBodies:            4096,
		MaxConstraints:       1024,
	}
}

func (c Config) GravityVector() Vector {
	return Vector(c.Gravity)
}

func (c Config) Validate() error {
	switch {
	case !(c.Timestep > 0):
		return errors.Errorf("cp3d: timestep must be positive, got %v", c.Timestep)
	case c.MaxSubsteps < 1:
		return errors.Errorf("cp3d: max_substeps must be at least 1, got %d", c.MaxSubsteps)
	case c.Iterations < 1:
		return errors.Errorf("cp3d: iterations must be at least 1, got %d", c.Iterations)
	case c.PositionIterations < 0:
		return errors.Errorf("cp3d: position_iterations must not be negative, got %d", c.PositionIterations)
	case c.Baumgarte < 0 || c.Baumgarte > 1:
		return errors.Errorf("cp3d: baumgarte must be within [0, 1], got %v", c.Baumgarte)
	case c.CollisionSlop < 0:
		return errors.Errorf("cp3d: collision_slop must not be negative, got %v", c.CollisionSlop)
	case c.RestitutionThreshold < 0:
		return errors.Errorf("cp3d: restitution_threshold must not be negative, got %v", c.RestitutionThreshold)
	case c.CollisionPersistence < 1:
		return errors.Errorf("cp3d: collision_persistence must be at least 1, got %d", c.CollisionPersistence)
	case c.BroadPhaseMargin < 0:
		return errors.Errorf("cp3d: broadphase_margin must not be negative, got %v", c.BroadPhaseMargin)
	case c.NarrowPhaseWorkers < 0:
		return errors.Errorf("cp3d: narrowphase_workers must not be negative, got %d", c.NarrowPhaseWorkers)
	case c.MaxBodies < 1:
		return errors.Errorf("cp3d: max_bodies must be at least 1, got %d", c.MaxBodies)
	case c.MaxConstraints < 0:
		return errors.Errorf("cp3d: max_constraints must not be negative, got %d", c.MaxConstraints)
	}
	for _, g := range c.Gravity {
		if !IsFinite(g) {
			return errors.Errorf("cp3d: gravity must be finite, got %v", c.Gravity)
		}
	}
	return nil
}

// LoadConfig reads TOML on top of DefaultConfig. Unknown keys are an error.
func LoadConfig(r io.Reader) (Config, error) {
	cfg := DefaultConfig()
	if err := toml.NewDecoder(r).DisallowUnknownFields().Decode(&cfg); err != nil {
		return Config{}, errors.Wrap(err, "cp3d: decoding config")
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func LoadConfigFile(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, errors.Wrap(err, "cp3d: opening config")
	}
	defer f.Close()
	return LoadConfig(f)
}
