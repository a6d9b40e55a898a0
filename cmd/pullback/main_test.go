package main

import (
	"bytes"
	"context"
	"io/fs"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	checkConfigPath, checkScenarios = "", nil

	var out, errOut bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "pullback "+version+"\n", out)
}

func TestCheck_AllScenarios(t *testing.T) {
	out, err := execute(t, "check")
	require.NoError(t, err)
	assert.Contains(t, out, "PASS  square")
	assert.Contains(t, out, "PASS  index_distinct")
	assert.Contains(t, out, "5/5 scenarios passed")
	assert.NotContains(t, out, "FAIL")
}

func TestCheck_SelectedScenarios(t *testing.T) {
	out, err := execute(t, "check", "--scenario", "square", "-s", "sin_square_plus_x")
	require.NoError(t, err)
	assert.Contains(t, out, "value=9.00000 grad=[6.00000]")
	assert.Contains(t, out, "2/2 scenarios passed")
}

func TestCheck_UnknownScenario(t *testing.T) {
	_, err := execute(t, "check", "--scenario", "cube")
	assert.ErrorContains(t, err, `unknown scenario "cube"`)
}

func TestCheck_MissingConfigFile(t *testing.T) {
	_, err := execute(t, "check", "--config", filepath.Join(t.TempDir(), "typo.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, fs.ErrNotExist)
}
