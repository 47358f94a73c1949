// Package export renders queue entries into one runnable MeasureIt script.
// Everything here is a pure function of its input: the same entries in the
// same order always produce byte-identical text.
package export

import (
	"fmt"
	"strings"

	"sweepq/internal/sweep"
)

const (
	QueueVar    = "sq"
	queueImport = "from measureit.tools.sweep_queue import SweepQueue, DatabaseEntry"
	dbImport    = "from measureit.tools.util import init_database"
)

var sweepImports = map[sweep.Type]string{
	sweep.TypeSweep0D:     "from measureit import Sweep0D",
	sweep.TypeSweep1D:     "from measureit import Sweep1D",
	sweep.TypeSweep2D:     "from measureit import Sweep2D",
	sweep.TypeSimulSweep:  "from measureit import SimulSweep",
	sweep.TypeSweepTo:     "from measureit import Sweep1D",
	sweep.TypeGateLeakage: "from measureit import GateLeakage",
}

// ExportSweepQueue renders entries, in order, as a script that builds a
// SweepQueue, appends every sweep and starts the queue.
func ExportSweepQueue(entries []sweep.Entry) string {
	lines := []string{queueImport}
	lines = append(lines, importsFor(entries)...)
	lines = append(lines, QueueVar+" = SweepQueue()", "")

	for i, e := range entries {
		r := renameEntry(i, e)

		lines = append(lines, "# "+fmt.Sprint(i+1)+". "+singleLine(e.Name))
		lines = appendBlock(lines, r.setup)
		if e.Database == nil {
			lines = appendBlock(lines, r.start)
			lines = append(lines, fmt.Sprintf("%s += %s", QueueVar, r.name))
		} else {
			lines = append(lines, fmt.Sprintf("%s += (%s, %s)", QueueVar, databaseEntry(e.Database), r.name))
			// Start code is held back until the database entry is attached.
			lines = appendBlock(lines, r.start)
		}
		lines = append(lines, "")
	}

	lines = append(lines, QueueVar+".start()")
	return strings.Join(lines, "\n")
}

// ExportSingleEntry renders one entry outside the queue workflow. When
// includeDatabaseAndStart is false neither the database block nor the start
// code is emitted.
func ExportSingleEntry(e sweep.Entry, includeDatabaseAndStart bool) string {
	r := renameEntry(0, e)
	lines := appendBlock(nil, r.setup)
	if includeDatabaseAndStart {
		if e.Database != nil {
			lines = append(lines, "", dbImport, fmt.Sprintf("init_database(%s, %s, %s, %s)",
				pyString(e.Database.Database),
				pyString(e.Database.Experiment),
				pyString(e.Database.Sample),
				r.name,
			))
		}
		lines = appendBlock(lines, r.start)
	}
	return strings.Join(lines, "\n")
}

// SweepName is the identifier the sweep at index gets in exported code.
func SweepName(index int, t sweep.Type) string {
	return fmt.Sprintf("sweep_%d_%s", index, identSafe(string(t)))
}

func importsFor(entries []sweep.Entry) []string {
	present := make(map[sweep.Type]bool, len(entries))
	for _, e := range entries {
		present[e.SweepType] = true
	}
	seen := make(map[string]bool)
	var out []string
	for _, t := range sweep.Types() {
		if !present[t] {
			continue
		}
		line := sweepImports[t]
		if seen[line] {
			continue
		}
		seen[line] = true
		out = append(out, line)
	}
	return out
}

func databaseEntry(db *sweep.Database) string {
	return fmt.Sprintf("DatabaseEntry(%s, %s, %s)",
		pyString(db.Database),
		pyString(db.Experiment),
		pyString(db.Sample),
	)
}

func appendBlock(lines []string, block string) []string {
	block = strings.TrimRight(block, " \t\r\n")
	if block == "" {
		return lines
	}
	return append(lines, strings.Split(block, "\n")...)
}

func singleLine(value string) string {
	value = strings.Join(strings.Fields(value), " ")
	if value == "" {
		return "(unnamed)"
	}
	return value
}

func identSafe(value string) string {
	if value == "" {
		return "custom"
	}
	b := []byte(value)
	for i, c := range b {
		if !isIdentChar(c) {
			b[i] = '_'
		}
	}
	return string(b)
}

// pyString quotes value as a Python string literal. Values with backslashes
// are emitted as raw strings when possible so Windows paths stay verbatim.
func pyString(value string) string {
	hasBackslash := strings.Contains(value, `\`)
	rawSafe := !strings.ContainsAny(value, "\"\n\r") && !strings.HasSuffix(value, `\`)
	if hasBackslash && rawSafe {
		return `r"` + value + `"`
	}
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`, "\r", `\r`)
	return `"` + r.Replace(value) + `"`
}
