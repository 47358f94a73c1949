package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"sweepq/internal/data/notebook"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testPlan = `
[[entries]]
id = "gate"
name = "gate sweep"
type = "sweep1d"
persist = true

[entries.params]
set_param = "gate"
start = 0
stop = 1
step = 0.1

[[entries]]
id = "park"
type = "sweepto"

[entries.params]
set_param = "gate"
setpoint = 0
step = 0.05
`

type cliEnv struct {
	dir        string
	configPath string
	planPath   string
}

func setupCLITestEnv(t *testing.T) cliEnv {
	t.Helper()
	dir := t.TempDir()
	env := cliEnv{
		dir:        dir,
		configPath: filepath.Join(dir, "sweepq.toml"),
		planPath:   filepath.Join(dir, "queue.toml"),
	}
	config := `
[paths]
state_dir = "state"

[database]
path = "run.db"
experiment = "cooldown"
sample = "chip7"
`
	require.NoError(t, os.WriteFile(env.configPath, []byte(config), 0o644))
	require.NoError(t, os.WriteFile(env.planPath, []byte(testPlan), 0o644))
	return env
}

func runCLI(t *testing.T, env cliEnv, args ...string) (string, string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append([]string{"--config", env.configPath}, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestVersionAndTypes(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, env, "version")
	require.NoError(t, err)
	assert.Equal(t, "sweepq v"+versionString+"\n", out)

	out, _, err = runCLI(t, env, "types")
	require.NoError(t, err)
	assert.Contains(t, out, "gateleakage")
	assert.Contains(t, out, "SweepTo")
}

func TestExportToStdout(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, env, "export", env.planPath)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "from measureit.tools.sweep_queue import SweepQueue, DatabaseEntry\n"), out)
	assert.Contains(t, out, "# 1. gate sweep\n")
	assert.Contains(t, out, `sq += (DatabaseEntry("run.db", "cooldown", "chip7"), sweep_0_sweep1d)`)
	assert.Contains(t, out, "sq += sweep_1_sweepto\n")
	assert.True(t, strings.HasSuffix(out, "sq.start()\n"))
}

func TestExportToFile(t *testing.T) {
	env := setupCLITestEnv(t)
	target := filepath.Join(env.dir, "out", "queue.py")

	out, _, err := runCLI(t, env, "export", env.planPath, "-o", target)
	require.NoError(t, err)
	assert.Equal(t, "Exported 2 sweeps to "+target+"\n", out)

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(string(data), "sq.start()\n"))
}

func TestEntry(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, env, "entry", env.planPath, "park")
	require.NoError(t, err)
	assert.NotContains(t, out, ".start()")

	out, _, err = runCLI(t, env, "entry", env.planPath, "gate", "--start")
	require.NoError(t, err)
	assert.Contains(t, out, `init_database("run.db", "cooldown", "chip7", sweep_0_sweep1d)`)
	assert.True(t, strings.HasSuffix(out, "sweep_0_sweep1d.start()\n"))

	_, _, err = runCLI(t, env, "entry", env.planPath, "missing")
	assert.Error(t, err)
}

func TestInsert(t *testing.T) {
	env := setupCLITestEnv(t)

	out, stderr, err := runCLI(t, env, "insert", env.planPath)
	require.NoError(t, err, "a missing notebook is reported, not an error")
	assert.Empty(t, out)
	assert.Contains(t, stderr, notebook.NoActiveNotebook)

	nbPath := filepath.Join(env.dir, "run.ipynb")
	require.NoError(t, os.WriteFile(nbPath, []byte(`{"cells": [], "metadata": {}, "nbformat": 4, "nbformat_minor": 5}`), 0o644))

	out, _, err = runCLI(t, env, "insert", env.planPath, "--notebook", nbPath)
	require.NoError(t, err)
	assert.Equal(t, "Inserted into "+nbPath+"\n", out)

	_, _, err = runCLI(t, env, "insert", env.planPath, "--notebook", nbPath, "--entry", "park", "--after", "0")
	require.NoError(t, err)

	nb, err := notebook.Load(nbPath)
	require.NoError(t, err)
	require.Len(t, nb.Cells, 2)
	assert.True(t, strings.HasPrefix(nb.Cells[0].Source, "from measureit.tools.sweep_queue"))
	assert.True(t, strings.HasPrefix(nb.Cells[1].Source, "sweep_0_sweepto = Sweep1D("))
}

func TestScan(t *testing.T) {
	env := setupCLITestEnv(t)
	nbDir := filepath.Join(env.dir, "notebooks")
	require.NoError(t, os.MkdirAll(nbDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(nbDir, "run.ipynb"), []byte(`{
 "cells": [{"cell_type": "code", "metadata": {}, "outputs": [], "execution_count": null,
  "source": "s_0D = Sweep0D(max_time=30)\nsq += s_0D"}],
 "metadata": {}, "nbformat": 4, "nbformat_minor": 4
}`), 0o644))

	out, _, err := runCLI(t, env, "scan", nbDir)
	require.NoError(t, err)
	assert.Contains(t, out, "Sweep0D s_0D: max_time 30")
	assert.Contains(t, out, "queued")

	empty := filepath.Join(env.dir, "empty")
	require.NoError(t, os.MkdirAll(empty, 0o755))
	out, _, err = runCLI(t, env, "scan", empty)
	require.NoError(t, err)
	assert.Equal(t, "No sweeps found\n", out)
}

func TestDefaultsCommands(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, env, "defaults", "list")
	require.NoError(t, err)
	assert.Equal(t, "No defaults stored\n", out)

	out, _, err = runCLI(t, env, "defaults", "import", env.planPath)
	require.NoError(t, err)
	assert.Equal(t, "Stored defaults from 2 entries\n", out)

	out, _, err = runCLI(t, env, "defaults", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "sweep1d")
	assert.Contains(t, out, "sweepto")

	out, _, err = runCLI(t, env, "defaults", "show", "sweep1d")
	require.NoError(t, err)
	assert.Contains(t, out, `"set_param": "gate"`)

	out, _, err = runCLI(t, env, "defaults", "reset", "sweep1d")
	require.NoError(t, err)
	assert.Equal(t, "Reset defaults for 1 sweep types\n", out)

	out, _, err = runCLI(t, env, "defaults", "show", "sweep1d")
	require.NoError(t, err)
	assert.Equal(t, "No defaults stored for Sweep1D\n", out)

	_, _, err = runCLI(t, env, "defaults", "show", "sweep9d")
	assert.Error(t, err)
}

func TestResolveLogPath(t *testing.T) {
	t.Setenv("XDG_STATE_HOME", "/tmp/xdg")
	assert.Equal(t, filepath.Join("/tmp/xdg", "sweepq", "sweepq.log"), resolveLogPath())
}
