package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, 1.0, cfg.Simulation.TimeStep)
	assert.Equal(t, "astar", cfg.Path.PathMethod)
	assert.Equal(t, 3, cfg.Path.KShortest.K)
	assert.Equal(t, 0.1, cfg.Kinematics.ObstacleEpsilon)
	assert.Equal(t, 5.0, cfg.Kinematics.RunBehindMargin)
	assert.Equal(t, 10.0, cfg.Kinematics.ArrivalBand)
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfig(t *testing.T) {
	t.Cleanup(func() { SetConfig(nil) })
	dir := t.TempDir()

	t.Run("json keeps explicit values and fills the rest", func(t *testing.T) {
		file := filepath.Join(dir, "sim.json")
		body := `{"simulation": {"timeStep": 0.5, "maxTicks": 40}, "path": {"pathMethod": "shortest"}}`
		require.NoError(t, os.WriteFile(file, []byte(body), 0o644))

		require.NoError(t, LoadConfig(file))
		cfg := GetConfig()
		assert.Equal(t, 0.5, cfg.Simulation.TimeStep)
		assert.Equal(t, 40, cfg.Simulation.MaxTicks)
		assert.Equal(t, "shortest", cfg.Path.PathMethod)
		assert.Equal(t, 0.1, cfg.Kinematics.EarlyStopFactor)
	})

	t.Run("yaml", func(t *testing.T) {
		file := filepath.Join(dir, "sim.yaml")
		body := "simulation:\n  timeStep: 0.25\nkinematics:\n  runBehindMargin: 3\n"
		require.NoError(t, os.WriteFile(file, []byte(body), 0o644))

		require.NoError(t, LoadConfig(file))
		cfg := GetConfig()
		assert.Equal(t, 0.25, cfg.Simulation.TimeStep)
		assert.Equal(t, 3.0, cfg.Kinematics.RunBehindMargin)
	})

	t.Run("unknown path method", func(t *testing.T) {
		file := filepath.Join(dir, "bad.json")
		require.NoError(t, os.WriteFile(file, []byte(`{"path": {"pathMethod": "teleport"}}`), 0o644))

		assert.Error(t, LoadConfig(file))
	})

	t.Run("malformed", func(t *testing.T) {
		file := filepath.Join(dir, "broken.json")
		require.NoError(t, os.WriteFile(file, []byte(`{"simulation": `), 0o644))

		assert.Error(t, LoadConfig(file))
	})
}
