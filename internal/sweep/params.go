package sweep

import (
	"encoding/json"
	"fmt"

	"sweepq/internal/core/errors"
)

// Params is the structured input a sweep's code was generated from. It is
// retained verbatim so an entry can be re-opened for editing.
//
// Value fields hold Python expressions exactly as typed by the user; an empty
// string means "not filled in".
type Params interface {
	SweepType() Type
	clone() Params
}

// Common holds the options every MeasureIt sweep constructor accepts.
type Common struct {
	InterDelay   string   `json:"inter_delay,omitempty" toml:"inter_delay"`
	SaveData     bool     `json:"save_data" toml:"save_data"`
	PlotData     bool     `json:"plot_data" toml:"plot_data"`
	PlotBin      string   `json:"plot_bin,omitempty" toml:"plot_bin"`
	FollowParams []string `json:"follow_params,omitempty" toml:"follow_params"`
}

func (c Common) cloneCommon() Common {
	if c.FollowParams != nil {
		c.FollowParams = append([]string(nil), c.FollowParams...)
	}
	return c
}

type Sweep0DParams struct {
	Common
	MaxTime string `json:"max_time,omitempty" toml:"max_time"`
}

type Sweep1DParams struct {
	Common
	SetParam       string `json:"set_param,omitempty" toml:"set_param"`
	Start          string `json:"start,omitempty" toml:"start"`
	Stop           string `json:"stop,omitempty" toml:"stop"`
	Step           string `json:"step,omitempty" toml:"step"`
	Bidirectional  bool   `json:"bidirectional" toml:"bidirectional"`
	Continual      bool   `json:"continual" toml:"continual"`
	XAxisTime      bool   `json:"x_axis_time" toml:"x_axis_time"`
	BackMultiplier string `json:"back_multiplier,omitempty" toml:"back_multiplier"`
}

// Sweep2DParams describes an inner sweep nested in an outer one.
type Sweep2DParams struct {
	Common
	InParam        string `json:"in_param,omitempty" toml:"in_param"`
	InStart        string `json:"in_start,omitempty" toml:"in_start"`
	InStop         string `json:"in_stop,omitempty" toml:"in_stop"`
	InStep         string `json:"in_step,omitempty" toml:"in_step"`
	OutParam       string `json:"out_param,omitempty" toml:"out_param"`
	OutStart       string `json:"out_start,omitempty" toml:"out_start"`
	OutStop        string `json:"out_stop,omitempty" toml:"out_stop"`
	OutStep        string `json:"out_step,omitempty" toml:"out_step"`
	OuterDelay     string `json:"outer_delay,omitempty" toml:"outer_delay"`
	BackMultiplier string `json:"back_multiplier,omitempty" toml:"back_multiplier"`
	OutMinisteps   string `json:"out_ministeps,omitempty" toml:"out_ministeps"`
}

type SimulParam struct {
	Param string `json:"param" toml:"param"`
	Start string `json:"start" toml:"start"`
	Stop  string `json:"stop" toml:"stop"`
	Step  string `json:"step" toml:"step"`
}

// SimulSweepParams sweeps several parameters in lockstep.
type SimulSweepParams struct {
	Common
	Params        []SimulParam `json:"params,omitempty" toml:"params"`
	Bidirectional bool         `json:"bidirectional" toml:"bidirectional"`
	Continual     bool         `json:"continual" toml:"continual"`
}

// SweepToParams ramps a parameter from its present value to a setpoint.
type SweepToParams struct {
	Common
	SetParam string `json:"set_param,omitempty" toml:"set_param"`
	Setpoint string `json:"setpoint,omitempty" toml:"setpoint"`
	Step     string `json:"step,omitempty" toml:"step"`
}

type GateLeakageParams struct {
	Common
	SetParam   string `json:"set_param,omitempty" toml:"set_param"`
	TrackParam string `json:"track_param,omitempty" toml:"track_param"`
	MaxCurrent string `json:"max_current,omitempty" toml:"max_current"`
	Limit      string `json:"limit,omitempty" toml:"limit"`
	Step       string `json:"step,omitempty" toml:"step"`
}

func (*Sweep0DParams) SweepType() Type     { return TypeSweep0D }
func (*Sweep1DParams) SweepType() Type     { return TypeSweep1D }
func (*Sweep2DParams) SweepType() Type     { return TypeSweep2D }
func (*SimulSweepParams) SweepType() Type  { return TypeSimulSweep }
func (*SweepToParams) SweepType() Type     { return TypeSweepTo }
func (*GateLeakageParams) SweepType() Type { return TypeGateLeakage }

func (p *Sweep0DParams) clone() Params {
	c := *p
	c.Common = p.cloneCommon()
	return &c
}

func (p *Sweep1DParams) clone() Params {
	c := *p
	c.Common = p.cloneCommon()
	return &c
}

func (p *Sweep2DParams) clone() Params {
	c := *p
	c.Common = p.cloneCommon()
	return &c
}

func (p *SimulSweepParams) clone() Params {
	c := *p
	c.Common = p.cloneCommon()
	if p.Params != nil {
		c.Params = append([]SimulParam(nil), p.Params...)
	}
	return &c
}

func (p *SweepToParams) clone() Params {
	c := *p
	c.Common = p.cloneCommon()
	return &c
}

func (p *GateLeakageParams) clone() Params {
	c := *p
	c.Common = p.cloneCommon()
	return &c
}

// NewParams returns the zero-value parameter record for t, with data saving
// and plotting switched on as MeasureIt does by default.
func NewParams(t Type) (Params, error) {
	common := Common{SaveData: true, PlotData: true}
	switch t {
	case TypeSweep0D:
		return &Sweep0DParams{Common: common}, nil
	case TypeSweep1D:
		return &Sweep1DParams{Common: common}, nil
	case TypeSweep2D:
		return &Sweep2DParams{Common: common}, nil
	case TypeSimulSweep:
		return &SimulSweepParams{Common: common}, nil
	case TypeSweepTo:
		return &SweepToParams{Common: Common{PlotData: true}}, nil
	case TypeGateLeakage:
		return &GateLeakageParams{Common: common}, nil
	default:
		return nil, errors.New(errors.CodeValidationError, fmt.Sprintf("unknown sweep type %q", t))
	}
}

// CloneParams deep-copies p; nil stays nil.
func CloneParams(p Params) Params {
	if p == nil {
		return nil
	}
	return p.clone()
}

// DecodeParamsJSON re-hydrates the variant for t from its JSON encoding.
func DecodeParamsJSON(t Type, data []byte) (Params, error) {
	p, err := NewParams(t)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return p, nil
	}
	if err := json.Unmarshal(data, p); err != nil {
		return nil, errors.Wrap(err, errors.CodeValidationError, fmt.Sprintf("decode %s params", t))
	}
	return p, nil
}
