package export

import (
	"strings"
	"testing"

	"sweepq/internal/engine/codegen"
	"sweepq/internal/sweep"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExportSweepQueueEmpty(t *testing.T) {
	want := strings.Join([]string{
		"from measureit.tools.sweep_queue import SweepQueue, DatabaseEntry",
		"sq = SweepQueue()",
		"",
		"sq.start()",
	}, "\n")
	assert.Equal(t, want, ExportSweepQueue(nil))
	assert.Equal(t, want, ExportSweepQueue([]sweep.Entry{}))
}

func TestExportSweepQueueFormat(t *testing.T) {
	entries := []sweep.Entry{
		{
			ID:        "a",
			Name:      "gate sweep",
			SweepType: sweep.TypeSweep1D,
			Code:      sweep.Code{Setup: "s_1D = Sweep1D(g, 0, 1, 0.1)\ns_1D.follow_param(v)", Start: "s_1D.start()"},
		},
		{
			ID:        "b",
			Name:      "wait",
			SweepType: sweep.TypeSweep0D,
			Code:      sweep.Code{Setup: "s_0D = Sweep0D(max_time=10)", Start: "s_0D.start()"},
			Database:  &sweep.Database{Database: "data.db", Experiment: "cooldown", Sample: "dev \"A\""},
		},
	}

	want := strings.Join([]string{
		"from measureit.tools.sweep_queue import SweepQueue, DatabaseEntry",
		"from measureit import Sweep0D",
		"from measureit import Sweep1D",
		"sq = SweepQueue()",
		"",
		"# 1. gate sweep",
		"sweep_0_sweep1d = Sweep1D(g, 0, 1, 0.1)",
		"sweep_0_sweep1d.follow_param(v)",
		"sweep_0_sweep1d.start()",
		"sq += sweep_0_sweep1d",
		"",
		"# 2. wait",
		"sweep_1_sweep0d = Sweep0D(max_time=10)",
		`sq += (DatabaseEntry("data.db", "cooldown", "dev \"A\""), sweep_1_sweep0d)`,
		"sweep_1_sweep0d.start()",
		"",
		"sq.start()",
	}, "\n")
	assert.Equal(t, want, ExportSweepQueue(entries))
}

func TestExportSweepQueueSameTypeGetsDistinctNames(t *testing.T) {
	a := codegen.BuildEntry("a", "first", &sweep.Sweep1DParams{SetParam: "g1", Start: "0", Stop: "1", Step: "0.1"}, nil)
	b := codegen.BuildEntry("b", "second", &sweep.Sweep1DParams{SetParam: "g2", Start: "0", Stop: "2", Step: "0.1"}, nil)
	out := ExportSweepQueue([]sweep.Entry{a, b})

	assert.Contains(t, out, "sweep_0_sweep1d = Sweep1D(g1,")
	assert.Contains(t, out, "sweep_1_sweep1d = Sweep1D(g2,")
	assert.NotContains(t, out, "s_1D")
	assert.Equal(t, 1, strings.Count(out, "from measureit import Sweep1D"))

	first := strings.Index(out, "sq += sweep_0_sweep1d")
	second := strings.Index(out, "sq += sweep_1_sweep1d")
	require.True(t, first >= 0 && second >= 0)
	assert.Less(t, first, second)
}

func TestExportSweepQueueRenamesHandWrittenCode(t *testing.T) {
	entries := []sweep.Entry{
		{
			ID:        "a",
			Name:      "annotated",
			SweepType: sweep.TypeSweep1D,
			Code:      sweep.Code{Setup: "s: Sweep1D = Sweep1D(p, 0, 1, 0.1)", Start: "s.start()"},
		},
		{
			ID:        "b",
			Name:      "logged",
			SweepType: sweep.TypeSweep1D,
			Code:      sweep.Code{Setup: "s = Sweep1D(p, 1, 0, 0.1)\nprint(f\"{s.setpoint}\")", Start: "s.start()"},
		},
	}
	out := ExportSweepQueue(entries)

	assert.Contains(t, out, "sweep_0_sweep1d: Sweep1D = Sweep1D(p, 0, 1, 0.1)\nsweep_0_sweep1d.start()\nsq += sweep_0_sweep1d")
	assert.Contains(t, out, `print(f"{sweep_1_sweep1d.setpoint}")`)
	assert.NotContains(t, out, "s.start()")
	assert.NotContains(t, out, "{s.")
}

func TestExportSweepQueueDeferredStartFollowsDatabase(t *testing.T) {
	db := &sweep.Database{Database: "d.db", Experiment: "e", Sample: "s"}
	withDB := codegen.BuildEntry("a", "", &sweep.Sweep0DParams{}, db)
	withoutDB := codegen.BuildEntry("b", "", &sweep.Sweep0DParams{}, nil)
	out := ExportSweepQueue([]sweep.Entry{withDB, withoutDB})

	addA := strings.Index(out, `sq += (DatabaseEntry("d.db", "e", "s"), sweep_0_sweep0d)`)
	startA := strings.Index(out, "sweep_0_sweep0d.start()")
	require.GreaterOrEqual(t, addA, 0)
	assert.Greater(t, startA, addA, "start must follow the database entry")

	setupB := strings.Index(out, "sweep_1_sweep0d = Sweep0D(")
	startB := strings.Index(out, "sweep_1_sweep0d.start()")
	addB := strings.Index(out, "sq += sweep_1_sweep0d")
	assert.Less(t, setupB, startB)
	assert.Less(t, startB, addB)
}

func TestExportSweepQueueDeterministic(t *testing.T) {
	entries := []sweep.Entry{
		codegen.BuildEntry("a", "", &sweep.Sweep2DParams{InParam: "x", OutParam: "y"}, nil),
		codegen.BuildEntry("b", "", &sweep.GateLeakageParams{SetParam: "g"}, &sweep.Database{Database: "x"}),
	}
	assert.Equal(t, ExportSweepQueue(entries), ExportSweepQueue(entries))
}

func TestExportSingleEntryScenario(t *testing.T) {
	e := sweep.Entry{
		ID:        "sweep-1",
		SweepType: sweep.TypeSweep1D,
		Code:      sweep.Code{Setup: "s=Sweep1D(p,0,10,1)", Start: "s.start()"},
	}
	out := ExportSingleEntry(e, false)
	assert.Equal(t, "sweep_0_sweep1d=Sweep1D(p,0,10,1)", out)
	assert.NotContains(t, out, "start()")
}

func TestExportSingleEntryDatabaseAndStart(t *testing.T) {
	e := codegen.BuildEntry("x", "", &sweep.Sweep1DParams{SetParam: "g", Start: "0", Stop: "1", Step: "0.1"},
		&sweep.Database{Database: `C:\data\run.db`, Experiment: "exp", Sample: "chip"})

	without := ExportSingleEntry(e, false)
	assert.NotContains(t, without, "init_database")
	assert.NotContains(t, without, "run.db")
	assert.NotContains(t, without, ".start()")

	with := ExportSingleEntry(e, true)
	assert.Contains(t, with, "from measureit.tools.util import init_database")
	assert.Contains(t, with, `init_database(r"C:\data\run.db", "exp", "chip", sweep_0_sweep1d)`)
	assert.True(t, strings.HasSuffix(with, "sweep_0_sweep1d.start()"))
	assert.Less(t, strings.Index(with, "init_database("), strings.Index(with, ".start()"))
}

func TestRenameIdentifier(t *testing.T) {
	cases := []struct {
		name, src, want string
	}{
		{"plain", "s = Sweep1D(p)\ns.start()", "n = Sweep1D(p)\nn.start()"},
		{"attribute untouched", "s = x.s\ns.s = 1", "n = x.s\nn.s = 1"},
		{"keyword untouched", "f(s=s, t=s == 1)", "f(s=n, t=n == 1)"},
		{"strings untouched", `print("s", 's', s)`, `print("s", 's', n)`},
		{"triple quoted", `"""s""" + s`, `"""s""" + n`},
		{"comments untouched", "s.start()  # start s", "n.start()  # start s"},
		{"longer names untouched", "s_1 = s1 + s", "s_1 = s1 + n"},
		{"numbers untouched", "x = 1e5s + s", "x = 1e5s + n"},
		{"escaped quote", `x = "a\"s" + s`, `x = "a\"s" + n`},
		{"annotated target", "s: Sweep1D = Sweep1D(p)\ns.start()", "n: Sweep1D = Sweep1D(p)\nn.start()"},
		{"f-string field", `print(f"{s.setpoint} s")`, `print(f"{n.setpoint} s")`},
		{"rf-string field", `x = rf'{s}\d'`, `x = rf'{n}\d'`},
		{"f-string format spec", `f"{s:>{w}} {{s}}"`, `f"{n:>{w}} {{s}}"`},
		{"raw string untouched", `r"{s}" + s`, `r"{s}" + n`},
		{"byte string untouched", `b's' + s`, `b's' + n`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, renameIdentifier(tc.src, "s", "n"))
		})
	}
}

func TestSweepIdentifier(t *testing.T) {
	assert.Equal(t, "s", sweepIdentifier("s=Sweep1D(p,0,10,1)"))
	assert.Equal(t, "sw", sweepIdentifier("params = {}\nsw = measureit.SimulSweep(params)"))
	assert.Equal(t, "params", sweepIdentifier("params = {}\nrun(params)"))
	assert.Equal(t, "", sweepIdentifier("    indented = 1\nprint(x)"))
	assert.Equal(t, "s", sweepIdentifier("s: Sweep1D = Sweep1D(p, 0, 1, 0.1)"))
	assert.Equal(t, "sw", sweepIdentifier("n: int = 3\nsw: \"SimulSweep\" = SimulSweep(params)"))
	assert.Equal(t, "n", sweepIdentifier("n: int = 3\nprint(n)"))
	assert.Equal(t, "", sweepIdentifier("s == 1"))
}

func TestPyString(t *testing.T) {
	assert.Equal(t, `"plain"`, pyString("plain"))
	assert.Equal(t, `r"C:\db\a.db"`, pyString(`C:\db\a.db`))
	assert.Equal(t, `"dir\\"`, pyString(`dir\`))
	assert.Equal(t, `"say \"hi\""`, pyString(`say "hi"`))
}
