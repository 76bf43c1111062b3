package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	c, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 30, c.GridResolution)
	assert.Equal(t, "YlGnBu", c.Colorscale)
	assert.Equal(t, "RdYlGn", c.MarkerColorscale)
	assert.True(t, c.ShowPins)
	assert.True(t, c.ShowContours)
	assert.Equal(t, 16.0, c.ChartWidthCm)
	assert.Equal(t, 12.0, c.ChartHeightCm)
	assert.Equal(t, "png", c.ImageFormat)
	assert.Equal(t, "info", c.LogLevel)
	assert.Equal(t, filepath.Join(home, ".surfloom", "dashboards"), c.DashboardsDir)
}

func TestSaveLoadAndEnvOverride(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "config.yaml")

	c, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, c.Set("grid_resolution", "12"))
	require.NoError(t, c.Set("show_pins", "false"))
	require.NoError(t, c.Set("colorscale", "Spectral"))
	require.NoError(t, Save(c, path))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), "grid_resolution: 12")

	again, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 12, again.GridResolution)
	assert.False(t, again.ShowPins)
	assert.Equal(t, "Spectral", again.Colorscale)

	t.Setenv("SURFLOOM_COLORSCALE", "heat")
	env, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "heat", env.Colorscale)
}

func TestSetRejectsBadValues(t *testing.T) {
	c := &Global{}
	for key, val := range map[string]string{
		"grid_resolution": "1",
		"show_contours":   "maybe",
		"chart_width_cm":  "-3",
		"image_format":    "gif",
		"log_level":       "loud",
		"nope":            "x",
	} {
		assert.Error(t, c.Set(key, val), key)
	}
}

func TestGetCoversEveryKey(t *testing.T) {
	c := &Global{GridResolution: 30, ChartWidthCm: 16.5, ShowPins: true}
	for _, k := range Keys {
		_, err := c.Get(k)
		require.NoError(t, err, k)
	}
	v, _ := c.Get("chart_width_cm")
	assert.Equal(t, "16.5", v)
	v, _ = c.Get("show_pins")
	assert.Equal(t, "true", v)
	_, err := c.Get("api_key")
	assert.Error(t, err)
}
