package parser

import (
	"sweepq/internal/sweep"
)

// Argument is one constructor argument as written in the source. Name is
// empty for positional arguments.
type Argument struct {
	Name  string
	Value string
}

// Marker describes one sweep constructed in a cell.
type Marker struct {
	Variable  string
	Class     string
	SweepType sweep.Type
	Line      int
	Args      []Argument
	Follows   []string
	Started   bool
	Queued    bool
	Database  *sweep.Database
}

// Positional returns the i-th positional argument, or "".
func (m Marker) Positional(i int) string {
	n := 0
	for _, a := range m.Args {
		if a.Name != "" {
			continue
		}
		if n == i {
			return a.Value
		}
		n++
	}
	return ""
}

// Keyword returns the value of the named argument, or "".
func (m Marker) Keyword(name string) string {
	for _, a := range m.Args {
		if a.Name == name {
			return a.Value
		}
	}
	return ""
}

func (m Marker) clone() Marker {
	out := m
	out.Args = append([]Argument(nil), m.Args...)
	out.Follows = append([]string(nil), m.Follows...)
	if m.Database != nil {
		db := *m.Database
		out.Database = &db
	}
	return out
}

// Cell is a unit of source to scan, usually a notebook code cell.
type Cell struct {
	Index  int
	Source string
}

// CellMarkers groups the sweeps found in one cell.
type CellMarkers struct {
	Index   int
	Markers []Marker
}

func cloneMarkers(in []Marker) []Marker {
	out := make([]Marker, len(in))
	for i, m := range in {
		out[i] = m.clone()
	}
	return out
}
