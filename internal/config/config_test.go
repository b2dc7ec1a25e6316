package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/KaramelBytes/clusterflow-cli/internal/cluster"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	c, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 2, c.KMin)
	assert.Equal(t, 11, c.KMax)
	assert.Equal(t, int64(42), c.Seed)
	assert.Equal(t, "median", c.FillMethod)
	assert.Equal(t, "standard", c.Scaler)
	assert.Equal(t, 3.0, c.OutlierThreshold)
	assert.True(t, c.RemoveOutliers)
	assert.Equal(t, 0.9, c.CorrelationThreshold)
	assert.Equal(t, "warn", c.LogLevel)
	assert.NotEmpty(t, c.ProjectsDir)
	assert.NoError(t, c.Validate())

	assert.Equal(t, cluster.SweepKMeans(), c.SweepOptions())
	assert.Equal(t, cluster.FinalKMeans(), c.FinalOptions())
}

func TestSaveLoadRoundTripAndEnv(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "config.yaml")
	c, err := Load(path)
	require.NoError(t, err)
	c.KMax = 7
	c.Scaler = "robust"
	require.NoError(t, Save(c, path))
	_, err = os.Stat(path)
	require.NoError(t, err)

	t.Setenv("CLUSTERFLOW_FILL_METHOD", "zero")
	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 7, got.KMax)
	assert.Equal(t, "robust", got.Scaler)
	assert.Equal(t, "zero", got.FillMethod)
}

func TestValidate(t *testing.T) {
	c := &Global{KMin: 3, KMax: 3, FillMethod: "median", Scaler: "standard"}
	assert.ErrorIs(t, c.Validate(), cluster.ErrInvalidRange)
	c.KMax = 5
	c.Scaler = "log"
	assert.Error(t, c.Validate())
}

func TestDefaultsSkipFiles(t *testing.T) {
	c := Defaults()
	assert.Equal(t, 2, c.KMin)
	assert.Equal(t, 11, c.KMax)
	assert.Empty(t, c.ProjectsDir)
	assert.NoError(t, c.Validate())
}
