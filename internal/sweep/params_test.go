package sweep

import (
	"testing"

	"sweepq/internal/core/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseType(t *testing.T) {
	cases := map[string]Type{
		"sweep1d":          TypeSweep1D,
		" Sweep2D ":        TypeSweep2D,
		"ramp-to":          TypeSweepTo,
		"gate-leakage":     TypeGateLeakage,
		"zero-dimensional": TypeSweep0D,
		"simultaneous":     TypeSimulSweep,
	}
	for in, want := range cases {
		got, err := ParseType(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseType("sweep3d")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeValidationError))
}

func TestNewParamsCoversEveryType(t *testing.T) {
	for _, typ := range Types() {
		p, err := NewParams(typ)
		require.NoError(t, err, typ)
		assert.Equal(t, typ, p.SweepType())
	}
	_, err := NewParams("bogus")
	assert.Error(t, err)
}

func TestDecodeParamsJSONRehydratesVariant(t *testing.T) {
	p, err := DecodeParamsJSON(TypeSimulSweep, []byte(`{"params":[{"param":"dac.ch1","start":"0","stop":"1","step":"0.1"}],"continual":true}`))
	require.NoError(t, err)

	simul, ok := p.(*SimulSweepParams)
	require.True(t, ok, "expected *SimulSweepParams, got %T", p)
	require.Len(t, simul.Params, 1)
	assert.Equal(t, "dac.ch1", simul.Params[0].Param)
	assert.True(t, simul.Continual)
	assert.True(t, simul.SaveData, "defaults survive fields absent from the document")

	_, err = DecodeParamsJSON(TypeSweep1D, []byte(`{"start":`))
	assert.True(t, errors.IsCode(err, errors.CodeValidationError))
}

func TestEntryCloneIsDeep(t *testing.T) {
	orig := Entry{
		ID:        "a",
		SweepType: TypeSweep1D,
		Params:    &Sweep1DParams{Common: Common{FollowParams: []string{"dmm.v"}}},
		Database:  &Database{Database: "db", Experiment: "exp", Sample: "s"},
	}
	cp := orig.Clone()
	cp.Database.Sample = "changed"
	cp.Params.(*Sweep1DParams).FollowParams[0] = "changed"

	assert.Equal(t, "s", orig.Database.Sample)
	assert.Equal(t, "dmm.v", orig.Params.(*Sweep1DParams).FollowParams[0])
}
