// Package sweep holds the queue data model: sweep types, typed parameter
// records, generated code fragments and queue entries.
package sweep

import (
	"fmt"
	"strings"

	"sweepq/internal/core/errors"
)

// Type tags the kind of measurement a sweep performs.
type Type string

const (
	TypeSweep0D     Type = "sweep0d"
	TypeSweep1D     Type = "sweep1d"
	TypeSweep2D     Type = "sweep2d"
	TypeSimulSweep  Type = "simulsweep"
	TypeSweepTo     Type = "sweepto"
	TypeGateLeakage Type = "gateleakage"
)

var allTypes = []Type{
	TypeSweep0D,
	TypeSweep1D,
	TypeSweep2D,
	TypeSimulSweep,
	TypeSweepTo,
	TypeGateLeakage,
}

var typeAliases = map[string]Type{
	"zero-dimensional": TypeSweep0D,
	"one-dimensional":  TypeSweep1D,
	"two-dimensional":  TypeSweep2D,
	"simultaneous":     TypeSimulSweep,
	"ramp-to":          TypeSweepTo,
	"gate-leakage":     TypeGateLeakage,
}

var typeLabels = map[Type]string{
	TypeSweep0D:     "Sweep0D",
	TypeSweep1D:     "Sweep1D",
	TypeSweep2D:     "Sweep2D",
	TypeSimulSweep:  "SimulSweep",
	TypeSweepTo:     "SweepTo",
	TypeGateLeakage: "GateLeakage",
}

// Types returns every sweep type in canonical order.
func Types() []Type {
	out := make([]Type, len(allTypes))
	copy(out, allTypes)
	return out
}

// ParseType accepts canonical values and the long descriptive names.
func ParseType(value string) (Type, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	for _, t := range allTypes {
		if string(t) == normalized {
			return t, nil
		}
	}
	if t, ok := typeAliases[normalized]; ok {
		return t, nil
	}
	return "", errors.New(errors.CodeValidationError, fmt.Sprintf("unknown sweep type %q", value))
}

func (t Type) Valid() bool {
	_, ok := typeLabels[t]
	return ok
}

// Label is the human facing name used in headings and the TUI.
func (t Type) Label() string {
	if label, ok := typeLabels[t]; ok {
		return label
	}
	return string(t)
}

func (t Type) String() string { return string(t) }
