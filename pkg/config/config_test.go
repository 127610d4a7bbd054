package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Fepozopo/normalmap/pkg/normal"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

func TestDefaultConverts(t *testing.T) {
	cfg := Default()
	o, centered, err := cfg.Estimator()
	require.NoError(t, err)
	require.False(t, centered)
	require.Equal(t, normal.DefaultOptions(), o)

	r, err := cfg.Renormalizer()
	require.NoError(t, err)
	require.Equal(t, normal.DefaultRenormalizeOptions(), r)

	th, err := cfg.MaskThreshold()
	require.NoError(t, err)
	require.Equal(t, uint8(normal.DefaultThreshold), th)
}

func TestLoadFile(t *testing.T) {
	p := writeFile(t, "n.toml", `
[selection]
edge_width = 12.5
step_size = 0.5
from_center = true
center_x = 40
center_y = 30
linear_falloff = true

[renormalize]
scalar = 2
degenerate = "passthrough"

[runtime]
workers = 3
`)
	cfg, err := Load(p)
	require.NoError(t, err)

	o, centered, err := cfg.Estimator()
	require.NoError(t, err)
	require.True(t, centered)
	require.Equal(t, 12.5, o.EdgeWidth)
	require.Equal(t, 0.5, o.StepSize)
	require.True(t, o.FromCenter)
	require.Equal(t, normal.Point{X: 40, Y: 30}, o.Center)
	require.Equal(t, normal.Linear, o.Falloff)
	require.Equal(t, 3, o.Workers)

	r, err := cfg.Renormalizer()
	require.NoError(t, err)
	require.Equal(t, 2.0, r.Scalar)
	require.Equal(t, normal.DegeneratePassThrough, r.Degenerate)
	require.Equal(t, 3, r.Workers)
}

func TestLoadKeepsDefaultsForMissingKeys(t *testing.T) {
	p := writeFile(t, "n.toml", "[renormalize]\nfull_image = true\n")
	cfg, err := Load(p)
	require.NoError(t, err)
	require.True(t, cfg.Renormalize.FullImage)
	require.Equal(t, 8.0, cfg.Selection.EdgeWidth)
	require.Equal(t, 1.0, cfg.Renormalize.Scalar)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	require.Error(t, err)

	_, err = Load(writeFile(t, "bad.toml", "[selection\nedge_width = 1"))
	require.Error(t, err)

	_, err = Load(writeFile(t, "unknown.toml", "[selection]\nedge_widht = 3\n"))
	require.ErrorContains(t, err, "selection.edge_widht")
}

func TestLoadDefaultFileOptional(t *testing.T) {
	t.Chdir(t.TempDir())
	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, Default(), cfg)

	require.NoError(t, os.WriteFile(DefaultFile, []byte("[runtime]\nworkers = 2\n"), 0o644))
	cfg, err = Load("")
	require.NoError(t, err)
	require.Equal(t, 2, cfg.Runtime.Workers)
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"NORMALMAP_EDGE_WIDTH": "4",
		"NORMALMAP_INVERT":     "true",
		"NORMALMAP_CENTER_X":   "1.5",
		"NORMALMAP_CENTER_Y":   "2.5",
		"NORMALMAP_THRESHOLD":  "200",
		"NORMALMAP_DEGENERATE": "passthrough",
		"NORMALMAP_SCALAR":     "",
		"UNRELATED_EDGE_WIDTH": "9",
	}
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}
	cfg := Default()
	require.NoError(t, cfg.ApplyEnv(lookup))
	require.Equal(t, 4.0, cfg.Selection.EdgeWidth)
	require.True(t, cfg.Selection.Invert)
	require.Equal(t, 200, cfg.Selection.Threshold)
	require.Equal(t, "passthrough", cfg.Renormalize.Degenerate)
	require.Equal(t, 1.0, cfg.Renormalize.Scalar)

	o, centered, err := cfg.Estimator()
	require.NoError(t, err)
	require.True(t, centered)
	require.Equal(t, normal.Point{X: 1.5, Y: 2.5}, o.Center)

	env = map[string]string{"NORMALMAP_WORKERS": "many"}
	require.Error(t, cfg.ApplyEnv(lookup))
}

func TestLoadEnvFile(t *testing.T) {
	p := writeFile(t, "test.env", "NORMALMAP_TEST_LOADENV=7\n")
	t.Setenv("NORMALMAP_TEST_LOADENV", "")
	os.Unsetenv("NORMALMAP_TEST_LOADENV")

	require.NoError(t, LoadEnv(p, filepath.Join(t.TempDir(), "absent.env")))
	require.Equal(t, "7", os.Getenv("NORMALMAP_TEST_LOADENV"))
}

func TestInvalidSettings(t *testing.T) {
	cfg := Default()
	cfg.Selection.EdgeWidth = 0
	_, _, err := cfg.Estimator()
	require.ErrorIs(t, err, normal.ErrInvalidConfiguration)

	cfg = Default()
	x := 3.0
	cfg.Selection.CenterX = &x
	_, _, err = cfg.Estimator()
	require.ErrorIs(t, err, normal.ErrInvalidConfiguration)

	cfg = Default()
	cfg.Renormalize.Scalar = 0
	_, err = cfg.Renormalizer()
	require.ErrorIs(t, err, normal.ErrInvalidConfiguration)

	cfg = Default()
	cfg.Renormalize.Degenerate = "sideways"
	_, err = cfg.Renormalizer()
	require.ErrorIs(t, err, normal.ErrInvalidConfiguration)

	cfg = Default()
	cfg.Selection.Threshold = 0
	_, err = cfg.MaskThreshold()
	require.ErrorIs(t, err, normal.ErrInvalidConfiguration)
}
