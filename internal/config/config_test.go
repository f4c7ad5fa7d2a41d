package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Eirikalv1/cc-websockets/internal/logging"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scanview.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadEmptyPathUsesDefaults(t *testing.T) {
	t.Setenv(EnvRadius, "")
	t.Setenv(EnvListen, "")
	t.Setenv(EnvLogLevel, "")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Defaults(), *cfg)
}

func TestLoadFileOverridesAndFills(t *testing.T) {
	t.Setenv(EnvRadius, "")
	path := writeConfig(t, `
scan:
  radius: 3
link:
  listen: "127.0.0.1:9000"
mesh:
  max_indices: 360
window:
  texture: assets/block.png
log:
  level: debug
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Scan.Radius)
	assert.Equal(t, "127.0.0.1:9000", cfg.Link.Listen)
	assert.Equal(t, "/", cfg.Link.Path)
	assert.Equal(t, 9800, cfg.Mesh.MaxVertices)
	assert.Equal(t, 360, cfg.Mesh.MaxIndices)
	assert.Equal(t, float32(0.01), cfg.Pick.SurfaceThreshold)
	assert.Equal(t, "assets/block.png", cfg.Window.Texture)
	assert.Equal(t, logging.DEBUG, cfg.LogLevel())
}

func TestEnvFallback(t *testing.T) {
	t.Setenv(EnvRadius, "5")
	t.Setenv(EnvListen, ":4321")
	t.Setenv(EnvLogLevel, "warn")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.Scan.Radius)
	assert.Equal(t, ":4321", cfg.Link.Listen)
	assert.Equal(t, logging.WARN, cfg.LogLevel())

	// The file wins over the environment.
	cfg, err = Load(writeConfig(t, "scan:\n  radius: 2\n"))
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.Scan.Radius)
}

func TestValidateRejects(t *testing.T) {
	t.Setenv(EnvRadius, "")
	t.Setenv(EnvLogLevel, "")
	tests := map[string]string{
		"radius too large": "scan:\n  radius: 17\n",
		"negative radius":  "scan:\n  radius: -1\n",
		"tiny batch":       "mesh:\n  max_vertices: 12\n",
		"huge batch":       "mesh:\n  max_vertices: 70000\n",
		"negative pick":    "pick:\n  max_distance: -3\n",
		"bad level":        "log:\n  level: chatty\n",
		"negative fps":     "window:\n  fps_limit: -5\n",
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, body))
			assert.ErrorIs(t, err, ErrInvalid)
		})
	}
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "scan: [not, a, map"))
	assert.Error(t, err)
}

func TestRenderSettings(t *testing.T) {
	defer SetFPSLimit(GetFPSLimit())

	SetFPSLimit(-10)
	assert.Equal(t, 0, GetFPSLimit())
	SetFPSLimit(5000)
	assert.Equal(t, 1000, GetFPSLimit())

	before := GetPickOutline()
	assert.Equal(t, !before, TogglePickOutline())
	TogglePickOutline()

	assert.Equal(t, 4, AdjustBatchSpan(-1, 5))
	assert.Equal(t, 1, AdjustBatchSpan(-10, 5))
	assert.Equal(t, 2, AdjustBatchSpan(1, 5))
	assert.Equal(t, 0, AdjustBatchSpan(10, 5))
	assert.Equal(t, 0, GetBatchSpan())
}
