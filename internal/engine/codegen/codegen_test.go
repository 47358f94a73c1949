package codegen

import (
	"strings"
	"testing"

	"sweepq/internal/sweep"
)

func TestGenerateSweep1D(t *testing.T) {
	p := &sweep.Sweep1DParams{
		Common:        sweep.Common{SaveData: true, PlotData: true, FollowParams: []string{"dmm.v", " ", "lockin.x"}},
		SetParam:      "station.dac.ch1",
		Start:         "0",
		Stop:          "1",
		Step:          "0.01",
		Bidirectional: true,
	}
	code := Generate(p)

	wantSetup := "s_1D = Sweep1D(station.dac.ch1, 0, 1, 0.01, inter_delay=0.1, bidirectional=True, continual=False, " +
		"x_axis_time=0, save_data=True, plot_data=True, plot_bin=1, back_multiplier=1)\n" +
		"s_1D.follow_param(dmm.v, lockin.x)"
	if code.Setup != wantSetup {
		t.Fatalf("unexpected setup:\n%s\nwant:\n%s", code.Setup, wantSetup)
	}
	if code.Start != "s_1D.start()" {
		t.Fatalf("unexpected start %q", code.Start)
	}
}

func TestGenerateEmitsPlaceholdersForMissingFields(t *testing.T) {
	code := Generate(&sweep.Sweep1DParams{Start: "0"})
	for _, token := range []string{"<set_param>", "<stop>", "<step>"} {
		if !strings.Contains(code.Setup, token) {
			t.Errorf("expected placeholder %s in %q", token, code.Setup)
		}
	}
	if strings.Contains(code.Setup, "<start>") {
		t.Errorf("start was provided, got %q", code.Setup)
	}
}

func TestGenerateEveryType(t *testing.T) {
	cases := []struct {
		params sweep.Params
		want   []string
	}{
		{&sweep.Sweep0DParams{MaxTime: "60"}, []string{"s_0D = Sweep0D(max_time=60, inter_delay=0.1"}},
		{&sweep.Sweep0DParams{}, []string{"max_time=None"}},
		{
			&sweep.Sweep2DParams{InParam: "g1", InStart: "0", InStop: "1", InStep: "0.1", OutParam: "g2"},
			[]string{"s_2D = Sweep2D([g1, 0, 1, 0.1], [g2, <out_start>, <out_stop>, <out_step>]", "outer_delay=1"},
		},
		{
			&sweep.SimulSweepParams{Params: []sweep.SimulParam{{Param: "a", Start: "0", Stop: "1", Step: "0.1"}}},
			[]string{"simul_params = {\n    a: {\"start\": 0, \"stop\": 1, \"step\": 0.1},\n}", "s_simul = SimulSweep(simul_params,"},
		},
		{&sweep.SimulSweepParams{}, []string{"<param>: {\"start\": <start>"}},
		{
			&sweep.SweepToParams{SetParam: "dac.ch1", Setpoint: "2", Step: "0.05"},
			[]string{"s_to = Sweep1D(dac.ch1, dac.ch1.get(), 2, 0.05, inter_delay=0.1, save_data=False, plot_data=False"},
		},
		{
			&sweep.GateLeakageParams{SetParam: "gate", TrackParam: "leak", MaxCurrent: "1e-9", Step: "0.01"},
			[]string{"s_gl = GateLeakage(gate, leak, max_I=1e-9, step=0.01, limit=<limit>"},
		},
	}
	for _, tc := range cases {
		code := Generate(tc.params)
		for _, want := range tc.want {
			if !strings.Contains(code.Setup, want) {
				t.Errorf("%s: expected %q in:\n%s", tc.params.SweepType(), want, code.Setup)
			}
		}
		if !strings.HasSuffix(code.Start, ".start()") {
			t.Errorf("%s: unexpected start %q", tc.params.SweepType(), code.Start)
		}
	}
}

func TestGenerateNilParamsNeverPanics(t *testing.T) {
	code := Generate(nil)
	if !strings.Contains(code.Setup, Placeholder("sweep_parameters")) {
		t.Fatalf("expected placeholder, got %q", code.Setup)
	}
}

func TestBuildEntry(t *testing.T) {
	db := &sweep.Database{Database: "run.db", Experiment: "cooldown", Sample: "dev1"}
	params := &sweep.SweepToParams{SetParam: "dac.ch1", Setpoint: "1"}
	e := BuildEntry("", "", params, db)

	if !strings.HasPrefix(e.ID, "sweep-") {
		t.Errorf("expected generated id, got %q", e.ID)
	}
	if e.Name != "SweepTo dac.ch1 → 1" {
		t.Errorf("unexpected default name %q", e.Name)
	}
	if e.SweepType != sweep.TypeSweepTo {
		t.Errorf("unexpected type %s", e.SweepType)
	}
	db.Sample = "changed"
	params.Setpoint = "5"
	if e.Database.Sample != "dev1" || e.Params.(*sweep.SweepToParams).Setpoint != "1" {
		t.Error("entry must not alias caller inputs")
	}
}

func TestDefaultName(t *testing.T) {
	cases := map[string]sweep.Params{
		"Sweep0D 30s":          &sweep.Sweep0DParams{MaxTime: "30"},
		"Sweep1D ? 0 → 1":      &sweep.Sweep1DParams{Start: "0", Stop: "1"},
		"Sweep2D a × b":        &sweep.Sweep2DParams{InParam: "a", OutParam: "b"},
		"SimulSweep x, y":      &sweep.SimulSweepParams{Params: []sweep.SimulParam{{Param: "x"}, {Param: "y"}}},
		"GateLeakage dac.gate": &sweep.GateLeakageParams{SetParam: "dac.gate"},
	}
	for want, p := range cases {
		if got := DefaultName(p); got != want {
			t.Errorf("DefaultName(%T) = %q, want %q", p, got, want)
		}
	}
}
