// Package codegen renders MeasureIt sweep construction code from typed
// parameter records. Generation never fails: a blank required field becomes
// a visible placeholder the user has to fix before the script runs.
package codegen

import (
	"fmt"
	"strings"

	"sweepq/internal/sweep"
)

// Local identifiers used by the generated code, one per sweep type.
const (
	VarSweep0D     = "s_0D"
	VarSweep1D     = "s_1D"
	VarSweep2D     = "s_2D"
	VarSimulSweep  = "s_simul"
	VarSweepTo     = "s_to"
	VarGateLeakage = "s_gl"
)

const (
	defaultInterDelay = "0.1"
	defaultPlotBin    = "1"
)

// Placeholder is the token emitted for a required field left blank.
func Placeholder(field string) string {
	return "<" + field + ">"
}

// Generate dispatches to the generator for p's sweep type.
func Generate(p sweep.Params) sweep.Code {
	switch v := p.(type) {
	case *sweep.Sweep0DParams:
		return generateSweep0D(v)
	case *sweep.Sweep1DParams:
		return generateSweep1D(v)
	case *sweep.Sweep2DParams:
		return generateSweep2D(v)
	case *sweep.SimulSweepParams:
		return generateSimulSweep(v)
	case *sweep.SweepToParams:
		return generateSweepTo(v)
	case *sweep.GateLeakageParams:
		return generateGateLeakage(v)
	default:
		return sweep.Code{Setup: "# " + Placeholder("sweep_parameters")}
	}
}

// BuildEntry generates code for params and wraps it in a queue entry. An
// empty id gets a fresh one and an empty name gets DefaultName.
func BuildEntry(id, name string, params sweep.Params, db *sweep.Database) sweep.Entry {
	if strings.TrimSpace(id) == "" {
		id = sweep.NewID()
	}
	if strings.TrimSpace(name) == "" {
		name = DefaultName(params)
	}
	var t sweep.Type
	if params != nil {
		t = params.SweepType()
	}
	e := sweep.Entry{
		ID:        id,
		Name:      name,
		SweepType: t,
		Code:      Generate(params),
		Params:    sweep.CloneParams(params),
	}
	if db != nil {
		copied := *db
		e.Database = &copied
	}
	return e
}

func generateSweep0D(p *sweep.Sweep0DParams) sweep.Code {
	args := newArgs()
	args.keyword("max_time", optional(p.MaxTime, "None"))
	args.common(p.Common, defaultInterDelay)
	return finish(VarSweep0D, "Sweep0D", args, p.FollowParams)
}

func generateSweep1D(p *sweep.Sweep1DParams) sweep.Code {
	args := newArgs()
	args.positional(
		required(p.SetParam, "set_param"),
		required(p.Start, "start"),
		required(p.Stop, "stop"),
		required(p.Step, "step"),
	)
	args.keyword("inter_delay", optional(p.InterDelay, defaultInterDelay))
	args.keyword("bidirectional", pyBool(p.Bidirectional))
	args.keyword("continual", pyBool(p.Continual))
	args.keyword("x_axis_time", pyIntBool(p.XAxisTime))
	args.keyword("save_data", pyBool(p.SaveData))
	args.keyword("plot_data", pyBool(p.PlotData))
	args.keyword("plot_bin", optional(p.PlotBin, defaultPlotBin))
	args.keyword("back_multiplier", optional(p.BackMultiplier, "1"))
	return finish(VarSweep1D, "Sweep1D", args, p.FollowParams)
}

func generateSweep2D(p *sweep.Sweep2DParams) sweep.Code {
	inner := fmt.Sprintf("[%s, %s, %s, %s]",
		required(p.InParam, "in_param"),
		required(p.InStart, "in_start"),
		required(p.InStop, "in_stop"),
		required(p.InStep, "in_step"),
	)
	outer := fmt.Sprintf("[%s, %s, %s, %s]",
		required(p.OutParam, "out_param"),
		required(p.OutStart, "out_start"),
		required(p.OutStop, "out_stop"),
		required(p.OutStep, "out_step"),
	)
	args := newArgs()
	args.positional(inner, outer)
	args.keyword("inter_delay", optional(p.InterDelay, defaultInterDelay))
	args.keyword("outer_delay", optional(p.OuterDelay, "1"))
	args.keyword("save_data", pyBool(p.SaveData))
	args.keyword("plot_data", pyBool(p.PlotData))
	args.keyword("plot_bin", optional(p.PlotBin, defaultPlotBin))
	args.keyword("back_multiplier", optional(p.BackMultiplier, "1"))
	args.keyword("out_ministeps", optional(p.OutMinisteps, "1"))
	return finish(VarSweep2D, "Sweep2D", args, p.FollowParams)
}

func generateSimulSweep(p *sweep.SimulSweepParams) sweep.Code {
	var b strings.Builder
	b.WriteString("simul_params = {\n")
	rows := p.Params
	if len(rows) == 0 {
		rows = []sweep.SimulParam{{}}
	}
	for _, row := range rows {
		fmt.Fprintf(&b, "    %s: {\"start\": %s, \"stop\": %s, \"step\": %s},\n",
			required(row.Param, "param"),
			required(row.Start, "start"),
			required(row.Stop, "stop"),
			required(row.Step, "step"),
		)
	}
	b.WriteString("}")

	args := newArgs()
	args.positional("simul_params")
	args.keyword("inter_delay", optional(p.InterDelay, defaultInterDelay))
	args.keyword("bidirectional", pyBool(p.Bidirectional))
	args.keyword("continual", pyBool(p.Continual))
	args.keyword("save_data", pyBool(p.SaveData))
	args.keyword("plot_data", pyBool(p.PlotData))
	args.keyword("plot_bin", optional(p.PlotBin, defaultPlotBin))

	code := finish(VarSimulSweep, "SimulSweep", args, p.FollowParams)
	code.Setup = b.String() + "\n" + code.Setup
	return code
}

func generateSweepTo(p *sweep.SweepToParams) sweep.Code {
	param := required(p.SetParam, "set_param")
	args := newArgs()
	args.positional(
		param,
		param+".get()",
		required(p.Setpoint, "setpoint"),
		required(p.Step, "step"),
	)
	args.common(p.Common, defaultInterDelay)
	return finish(VarSweepTo, "Sweep1D", args, p.FollowParams)
}

func generateGateLeakage(p *sweep.GateLeakageParams) sweep.Code {
	args := newArgs()
	args.positional(
		required(p.SetParam, "set_param"),
		required(p.TrackParam, "track_param"),
	)
	args.keyword("max_I", required(p.MaxCurrent, "max_current"))
	args.keyword("step", required(p.Step, "step"))
	args.keyword("limit", required(p.Limit, "limit"))
	args.common(p.Common, defaultInterDelay)
	return finish(VarGateLeakage, "GateLeakage", args, p.FollowParams)
}

func finish(varName, ctor string, args *argList, follow []string) sweep.Code {
	lines := []string{fmt.Sprintf("%s = %s(%s)", varName, ctor, args.String())}
	if followed := cleanList(follow); len(followed) > 0 {
		lines = append(lines, fmt.Sprintf("%s.follow_param(%s)", varName, strings.Join(followed, ", ")))
	}
	return sweep.Code{
		Setup: strings.Join(lines, "\n"),
		Start: varName + ".start()",
	}
}
