package codegen

import (
	"strings"

	"sweepq/internal/sweep"
)

type argList struct {
	parts []string
}

func newArgs() *argList {
	return &argList{}
}

func (a *argList) positional(values ...string) {
	a.parts = append(a.parts, values...)
}

func (a *argList) keyword(name, value string) {
	a.parts = append(a.parts, name+"="+value)
}

func (a *argList) common(c sweep.Common, interDelay string) {
	a.keyword("inter_delay", optional(c.InterDelay, interDelay))
	a.keyword("save_data", pyBool(c.SaveData))
	a.keyword("plot_data", pyBool(c.PlotData))
	a.keyword("plot_bin", optional(c.PlotBin, defaultPlotBin))
}

func (a *argList) String() string {
	return strings.Join(a.parts, ", ")
}

func required(value, field string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return Placeholder(field)
	}
	return value
}

func optional(value, fallback string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return fallback
	}
	return value
}

func pyBool(v bool) string {
	if v {
		return "True"
	}
	return "False"
}

func pyIntBool(v bool) string {
	if v {
		return "1"
	}
	return "0"
}

func cleanList(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}
