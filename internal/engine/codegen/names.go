package codegen

import (
	"fmt"
	"strings"

	"sweepq/internal/sweep"
)

// DefaultName derives a display label from the parameters.
func DefaultName(p sweep.Params) string {
	switch v := p.(type) {
	case *sweep.Sweep0DParams:
		if t := strings.TrimSpace(v.MaxTime); t != "" {
			return fmt.Sprintf("Sweep0D %ss", t)
		}
		return "Sweep0D"
	case *sweep.Sweep1DParams:
		return fmt.Sprintf("Sweep1D %s %s → %s", orUnknown(v.SetParam), orUnknown(v.Start), orUnknown(v.Stop))
	case *sweep.Sweep2DParams:
		return fmt.Sprintf("Sweep2D %s × %s", orUnknown(v.InParam), orUnknown(v.OutParam))
	case *sweep.SimulSweepParams:
		names := make([]string, 0, len(v.Params))
		for _, row := range v.Params {
			names = append(names, orUnknown(row.Param))
		}
		if len(names) == 0 {
			names = append(names, "?")
		}
		return "SimulSweep " + strings.Join(names, ", ")
	case *sweep.SweepToParams:
		return fmt.Sprintf("SweepTo %s → %s", orUnknown(v.SetParam), orUnknown(v.Setpoint))
	case *sweep.GateLeakageParams:
		return "GateLeakage " + orUnknown(v.SetParam)
	default:
		return "Sweep"
	}
}

func orUnknown(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return "?"
	}
	return value
}
