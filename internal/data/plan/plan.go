// Package plan reads and writes queue plans: TOML files listing sweeps in
// the order they should run.
//
//	[[entries]]
//	name = "gate sweep"
//	type = "sweep1d"
//	persist = true
//
//	[entries.params]
//	set_param = "gate"
//	start = 0
//	stop = 1
//	step = 0.01
package plan

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strconv"
	"strings"

	"sweepq/internal/core/config"
	"sweepq/internal/core/errors"
	"sweepq/internal/engine/codegen"
	"sweepq/internal/shared/util"
	"sweepq/internal/sweep"

	"github.com/BurntSushi/toml"
)

type fileEntry struct {
	ID       string          `toml:"id"`
	Name     string          `toml:"name"`
	Type     string          `toml:"type"`
	Persist  bool            `toml:"persist"`
	Params   map[string]any  `toml:"params"`
	Database *sweep.Database `toml:"database"`
	Code     *sweep.Code     `toml:"code"`
}

type file struct {
	Entries []fileEntry `toml:"entries"`
}

// Load parses the plan at path. Entries with persist = true and no database
// table of their own are stored in defaultDB.
func Load(path string, defaultDB config.Database) ([]sweep.Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.AddContext(errors.Wrap(err, errors.CodeNotFound, "plan file not found"), errors.CtxPath, path)
		}
		return nil, errors.Wrap(err, errors.CodeInternal, "read plan file")
	}
	entries, err := Parse(data, defaultDB)
	if err != nil {
		return nil, errors.AddContext(err, errors.CtxPath, path)
	}
	return entries, nil
}

// Parse decodes a plan document.
func Parse(data []byte, defaultDB config.Database) ([]sweep.Entry, error) {
	var f file
	md, err := toml.Decode(string(data), &f)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeValidationError, "parse plan")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		slog.Warn("plan contains unknown keys", "keys", strings.Join(keys, ", "))
	}

	seen := make(map[string]int, len(f.Entries))
	entries := make([]sweep.Entry, 0, len(f.Entries))
	for i, fe := range f.Entries {
		if strings.TrimSpace(fe.ID) == "" {
			fe.ID = PositionalID(i)
		}
		e, err := buildEntry(fe, defaultDB)
		if err != nil {
			return nil, errors.AddContext(err, "entry", i+1)
		}
		if prev, dup := seen[e.ID]; dup {
			return nil, errors.New(errors.CodeValidationError,
				fmt.Sprintf("entries %d and %d share id %q", prev+1, i+1, e.ID))
		}
		seen[e.ID] = i
		entries = append(entries, e)
	}
	return entries, nil
}

// PositionalID is the id given to the i-th (0-based) plan entry when it has
// none. It is stable across reloads only while the entry keeps its position.
func PositionalID(i int) string {
	return fmt.Sprintf("entry-%d", i+1)
}

func buildEntry(fe fileEntry, defaultDB config.Database) (sweep.Entry, error) {
	t, err := sweep.ParseType(fe.Type)
	if err != nil {
		return sweep.Entry{}, err
	}

	raw, err := json.Marshal(normalize(fe.Params))
	if err != nil {
		return sweep.Entry{}, errors.Wrap(err, errors.CodeValidationError, "encode params")
	}
	if fe.Params == nil {
		raw = nil
	}
	params, err := sweep.DecodeParamsJSON(t, raw)
	if err != nil {
		return sweep.Entry{}, errors.AddContext(err, errors.CtxSweepType, t.String())
	}

	db := fe.Database
	if db == nil && fe.Persist {
		if strings.TrimSpace(defaultDB.Path) == "" {
			return sweep.Entry{}, errors.New(errors.CodeValidationError,
				"persist = true needs a [entries.database] table or a configured [database] path")
		}
		db = &sweep.Database{
			Database:   defaultDB.Path,
			Experiment: defaultDB.Experiment,
			Sample:     defaultDB.Sample,
		}
	}

	e := codegen.BuildEntry(fe.ID, fe.Name, params, db)
	if fe.Code != nil {
		if s := strings.TrimSpace(fe.Code.Setup); s != "" {
			e.Code.Setup = s
		}
		if s := strings.TrimSpace(fe.Code.Start); s != "" {
			e.Code.Start = s
		}
	}
	return e, nil
}

// normalize turns TOML numbers into the Python literal text the params
// carry, so `start = 0.5` and `start = "0.5"` mean the same thing.
func normalize(v any) any {
	switch x := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, val := range x {
			out[k] = normalize(val)
		}
		return out
	case []map[string]any:
		out := make([]any, len(x))
		for i, val := range x {
			out[i] = normalize(val)
		}
		return out
	case []any:
		out := make([]any, len(x))
		for i, val := range x {
			out[i] = normalize(val)
		}
		return out
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	default:
		return v
	}
}

type writeEntry struct {
	ID       string          `toml:"id"`
	Name     string          `toml:"name"`
	Type     string          `toml:"type"`
	Params   sweep.Params    `toml:"params"`
	Database *sweep.Database `toml:"database,omitempty"`
	Code     *sweep.Code     `toml:"code,omitempty"`
}

// Write encodes entries as a plan. Entries without params keep their
// code verbatim.
func Write(w io.Writer, entries []sweep.Entry) error {
	out := struct {
		Entries []writeEntry `toml:"entries"`
	}{Entries: make([]writeEntry, 0, len(entries))}

	for _, e := range entries {
		we := writeEntry{
			ID:       e.ID,
			Name:     e.Name,
			Type:     e.SweepType.String(),
			Params:   e.Params,
			Database: e.Database,
		}
		if e.Params == nil {
			code := e.Code
			we.Code = &code
		}
		out.Entries = append(out.Entries, we)
	}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(out); err != nil {
		return errors.Wrap(err, errors.CodeInternal, "encode plan")
	}
	_, err := w.Write(buf.Bytes())
	return err
}

// Save writes entries to path, replacing any existing file.
func Save(path string, entries []sweep.Entry) error {
	var buf bytes.Buffer
	if err := Write(&buf, entries); err != nil {
		return err
	}
	if err := util.WriteFileAtomic(path, buf.Bytes(), 0o644); err != nil {
		return errors.AddContext(errors.Wrap(err, errors.CodeInternal, "write plan"), errors.CtxPath, path)
	}
	return nil
}

// Types lists the sweep type names a plan accepts, sorted.
func Types() []string {
	names := make([]string, 0, len(sweep.Types()))
	for _, t := range sweep.Types() {
		names = append(names, t.String())
	}
	sort.Strings(names)
	return names
}
