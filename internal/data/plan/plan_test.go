package plan

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"sweepq/internal/core/config"
	"sweepq/internal/core/errors"
	"sweepq/internal/sweep"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const samplePlan = `
[[entries]]
id = "gate"
type = "sweep1d"
persist = true

[entries.params]
set_param = "gate"
start = 0
stop = 1
step = 0.01
bidirectional = true
follow_params = ["lockin.X", "lockin.Y"]

[[entries]]
name = "park gate"
type = "ramp-to"

[entries.params]
set_param = "gate"
setpoint = "0"
step = 0.05

[[entries]]
type = "simulsweep"

[entries.database]
database = "D:/runs/cool.db"
experiment = "simul"
sample = "chip3"

[[entries.params.params]]
param = "g1"
start = 0
stop = 1
step = 0.1

[[entries.params.params]]
param = "g2"
start = 1
stop = 0
step = -0.1
`

var defaultDB = config.Database{Path: "C:/data/run.db", Experiment: "cooldown", Sample: "chip7"}

func TestParse(t *testing.T) {
	entries, err := Parse([]byte(samplePlan), defaultDB)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	gate := entries[0]
	assert.Equal(t, "gate", gate.ID)
	assert.Equal(t, sweep.TypeSweep1D, gate.SweepType)
	require.NotNil(t, gate.Database)
	assert.Equal(t, sweep.Database{Database: "C:/data/run.db", Experiment: "cooldown", Sample: "chip7"}, *gate.Database)
	p := gate.Params.(*sweep.Sweep1DParams)
	assert.Equal(t, "0", p.Start)
	assert.Equal(t, "1", p.Stop)
	assert.Equal(t, "0.01", p.Step)
	assert.True(t, p.Bidirectional)
	assert.True(t, p.SaveData, "unset flags keep their defaults")
	assert.Equal(t, []string{"lockin.X", "lockin.Y"}, p.FollowParams)
	assert.Contains(t, gate.Code.Setup, "Sweep1D(gate, 0, 1, 0.01")
	assert.Contains(t, gate.Code.Setup, "s_1D.follow_param(lockin.X, lockin.Y)")
	assert.Equal(t, "s_1D.start()", gate.Code.Start)

	park := entries[1]
	assert.Equal(t, "park gate", park.Name)
	assert.Equal(t, sweep.TypeSweepTo, park.SweepType)
	assert.Nil(t, park.Database)
	assert.Equal(t, "entry-2", park.ID)

	simul := entries[2]
	require.NotNil(t, simul.Database)
	assert.Equal(t, "chip3", simul.Database.Sample)
	sp := simul.Params.(*sweep.SimulSweepParams)
	require.Len(t, sp.Params, 2)
	assert.Equal(t, sweep.SimulParam{Param: "g2", Start: "1", Stop: "0", Step: "-0.1"}, sp.Params[1])
}

func TestParseGivesStableIDsToUnnamedEntries(t *testing.T) {
	first, err := Parse([]byte(samplePlan), config.Database{Path: "run.db"})
	require.NoError(t, err)
	second, err := Parse([]byte(samplePlan), config.Database{Path: "run.db"})
	require.NoError(t, err)

	require.Len(t, second, len(first))
	for i := range first {
		assert.Equal(t, first[i].ID, second[i].ID)
	}

	// An explicit id may not collide with a positional one.
	_, err = Parse([]byte("[[entries]]\ntype = \"sweep0d\"\n[[entries]]\nid = \"entry-1\"\ntype = \"sweep0d\""), config.Database{})
	assert.True(t, errors.IsCode(err, errors.CodeValidationError))
}

func TestParseCodeOverride(t *testing.T) {
	entries, err := Parse([]byte(`
[[entries]]
type = "sweep0d"

[entries.code]
setup = "s_0D = build_custom()"
`), config.Database{})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "s_0D = build_custom()", entries[0].Code.Setup)
	assert.Equal(t, "s_0D.start()", entries[0].Code.Start)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		code errors.ErrorCode
	}{
		{"unknown type", "[[entries]]\ntype = \"sweep9d\"", errors.CodeValidationError},
		{"duplicate id", "[[entries]]\nid = \"a\"\ntype = \"sweep0d\"\n[[entries]]\nid = \"a\"\ntype = \"sweep0d\"", errors.CodeValidationError},
		{"persist without db", "[[entries]]\ntype = \"sweep0d\"\npersist = true", errors.CodeValidationError},
		{"malformed", "[[entries]\n", errors.CodeValidationError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc), config.Database{})
			require.Error(t, err)
			assert.True(t, errors.IsCode(err, tt.code), "got %v", err)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"), defaultDB)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeNotFound))
}

func TestSaveRoundTrip(t *testing.T) {
	entries, err := Parse([]byte(samplePlan), defaultDB)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "queue.toml")
	require.NoError(t, Save(path, entries))

	reloaded, err := Load(path, config.Database{})
	require.NoError(t, err)
	require.Len(t, reloaded, len(entries))
	for i := range entries {
		assert.Equal(t, entries[i].ID, reloaded[i].ID)
		assert.Equal(t, entries[i].Name, reloaded[i].Name)
		assert.Equal(t, entries[i].Params, reloaded[i].Params)
		assert.Equal(t, entries[i].Database, reloaded[i].Database)
		assert.Equal(t, entries[i].Code, reloaded[i].Code)
	}

	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))
}

func TestWriteKeepsCodeForParamlessEntries(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, []sweep.Entry{{
		ID:        "raw",
		Name:      "scanned",
		SweepType: sweep.TypeSweep0D,
		Code:      sweep.Code{Setup: "s = Sweep0D()", Start: "s.start()"},
	}}))
	assert.Contains(t, buf.String(), "[entries.code]")
	assert.Contains(t, buf.String(), `setup = "s = Sweep0D()"`)
}

func TestTypesSorted(t *testing.T) {
	assert.IsIncreasing(t, Types())
	assert.Len(t, Types(), len(sweep.Types()))
}
