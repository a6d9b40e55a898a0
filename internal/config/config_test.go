package config

import (
	"bytes"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/pullback/internal/parallel"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pullback.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestDefault_IsValid(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestLoad_ExplicitMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestLoad_ImplicitPath(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	require.NoError(t, os.WriteFile(DefaultPath, []byte("log:\n  level: debug\n"), 0o600))
	cfg, err = Load("")
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_File(t *testing.T) {
	path := writeFile(t, `
gradcheck:
  step: 0.0001
  tolerance: 0.01
log:
  level: debug
  format: json
parallel:
  enabled: false
  workers: 2
scenarios: [square, index_alias]
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 0.0001, cfg.GradCheck.Step)
	assert.Equal(t, 0.01, cfg.GradCheck.Tolerance)
	assert.Equal(t, Default().GradCheck.ScenarioTolerance, cfg.GradCheck.ScenarioTolerance)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, []string{"square", "index_alias"}, cfg.Scenarios)

	assert.Equal(t, parallel.Config{Enabled: false, Workers: 2}, cfg.ParallelConfig())

	s := cfg.Settings()
	assert.Equal(t, 0.0001, s.Step)
	assert.Equal(t, 0.01, s.Tolerance)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeFile(t, "log:\n  level: debug\n")
	t.Setenv("PULLBACK_LOG_LEVEL", "WARN")
	t.Setenv("PULLBACK_GRADCHECK_TOLERANCE", "0.5")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, 0.5, cfg.GradCheck.Tolerance)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"negative step", "gradcheck:\n  step: -1\n"},
		{"huge step", "gradcheck:\n  step: 1\n"},
		{"zero tolerance", "gradcheck:\n  tolerance: 0\n"},
		{"unknown level", "log:\n  level: verbose\n"},
		{"unknown format", "log:\n  format: xml\n"},
		{"empty scenario name", "scenarios: ['']\n"},
		{"zero workers", "parallel:\n  workers: 0\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeFile(t, tt.content))
			assert.ErrorIs(t, err, ErrInvalid)
		})
	}
}

func TestLoad_Malformed(t *testing.T) {
	_, err := Load(writeFile(t, "gradcheck: [unclosed\n"))
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalid)
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer

	cfg := Default()
	cfg.Log.Format = "json"
	logger := cfg.NewLogger(&buf)
	logger.Debug("hidden")
	logger.Info("shown", "k", 1)
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"msg":"shown"`)

	buf.Reset()
	cfg.Log.Level = "debug"
	cfg.Log.Format = "text"
	cfg.NewLogger(&buf).Debug("visible")
	assert.Contains(t, buf.String(), "msg=visible")
}
