package parser

import (
	"fmt"
	"strings"

	"sweepq/internal/sweep"
)

// Heading renders a one-line table of contents label for the marker.
func (m Marker) Heading() string {
	var b strings.Builder
	b.WriteString(m.SweepType.Label())
	b.WriteString(" ")
	b.WriteString(m.Variable)

	if detail := m.detail(); detail != "" {
		b.WriteString(": ")
		b.WriteString(detail)
	}
	if m.Database != nil && m.Database.Sample != "" {
		fmt.Fprintf(&b, " [%s]", m.Database.Sample)
	}
	if m.Queued {
		b.WriteString(" (queued)")
	}
	return b.String()
}

func (m Marker) detail() string {
	switch m.SweepType {
	case sweep.TypeSweep0D:
		if t := m.Keyword("max_time"); t != "" && t != "None" {
			return "max_time " + t
		}
		return ""
	case sweep.TypeSweep1D:
		out := fmt.Sprintf("%s %s → %s", m.Positional(0), m.Positional(1), m.Positional(2))
		if step := m.Positional(3); step != "" {
			out += " (step " + step + ")"
		}
		return out
	case sweep.TypeSweepTo:
		if m.Class == "Sweep1D" {
			return fmt.Sprintf("%s → %s", m.Positional(0), m.Positional(2))
		}
		return fmt.Sprintf("%s → %s", m.Positional(0), m.Positional(1))
	case sweep.TypeSweep2D:
		return fmt.Sprintf("%s × %s", listHead(m.Positional(0)), listHead(m.Positional(1)))
	case sweep.TypeGateLeakage:
		return m.Positional(0)
	}
	return ""
}

func listHead(value string) string {
	value = strings.TrimSpace(value)
	value = strings.TrimPrefix(value, "[")
	value = strings.TrimSuffix(value, "]")
	if idx := strings.Index(value, ","); idx >= 0 {
		value = value[:idx]
	}
	return strings.TrimSpace(value)
}
