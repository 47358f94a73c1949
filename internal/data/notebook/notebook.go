// Package notebook reads and edits Jupyter .ipynb files, the host documents
// generated queue code is inserted into.
package notebook

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"sweepq/internal/core/errors"
	"sweepq/internal/shared/util"

	"github.com/google/uuid"
)

const (
	CellCode     = "code"
	CellMarkdown = "markdown"
)

// Cell is one notebook cell. Keys other than cell_type and source are kept
// as raw JSON and written back untouched.
type Cell struct {
	Type   string
	Source string
	extra  map[string]json.RawMessage
}

// Notebook is a decoded .ipynb document.
type Notebook struct {
	Cells []Cell
	extra map[string]json.RawMessage
}

// CodeCell pairs a code cell with its index among all cells.
type CodeCell struct {
	Index  int
	Source string
}

func Load(path string) (*Notebook, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.AddContext(errors.Wrap(err, errors.CodeNotFound, "notebook not found"), errors.CtxPath, path)
		}
		return nil, errors.Wrap(err, errors.CodeInternal, "read notebook")
	}
	nb, err := Parse(data)
	if err != nil {
		return nil, errors.AddContext(err, errors.CtxPath, path)
	}
	return nb, nil
}

func Parse(data []byte) (*Notebook, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil {
		return nil, errors.Wrap(err, errors.CodeValidationError, "parse notebook")
	}

	var rawCells []map[string]json.RawMessage
	if raw, ok := top["cells"]; ok {
		if err := json.Unmarshal(raw, &rawCells); err != nil {
			return nil, errors.Wrap(err, errors.CodeValidationError, "parse notebook cells")
		}
		delete(top, "cells")
	}

	nb := &Notebook{Cells: make([]Cell, 0, len(rawCells)), extra: top}
	for i, rc := range rawCells {
		cell := Cell{extra: rc}
		if raw, ok := rc["cell_type"]; ok {
			if err := json.Unmarshal(raw, &cell.Type); err != nil {
				return nil, errors.Wrap(err, errors.CodeValidationError, fmt.Sprintf("cell %d type", i))
			}
			delete(rc, "cell_type")
		}
		if raw, ok := rc["source"]; ok {
			src, err := decodeSource(raw)
			if err != nil {
				return nil, errors.Wrap(err, errors.CodeValidationError, fmt.Sprintf("cell %d source", i))
			}
			cell.Source = src
			delete(rc, "source")
		}
		nb.Cells = append(nb.Cells, cell)
	}
	return nb, nil
}

// Source is either one string or a list of lines.
func decodeSource(raw json.RawMessage) (string, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, nil
	}
	var lines []string
	if err := json.Unmarshal(raw, &lines); err != nil {
		return "", err
	}
	return strings.Join(lines, ""), nil
}

// splitSource renders source the way Jupyter stores it: one string per
// line, every line but the last keeping its newline.
func splitSource(src string) []string {
	if src == "" {
		return []string{}
	}
	lines := strings.SplitAfter(src, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// CodeCells returns the code cells in document order.
func (nb *Notebook) CodeCells() []CodeCell {
	out := make([]CodeCell, 0, len(nb.Cells))
	for i, c := range nb.Cells {
		if c.Type == CellCode {
			out = append(out, CodeCell{Index: i, Source: c.Source})
		}
	}
	return out
}

// InsertCode adds a new code cell after cell index after. after < 0 or
// past the end appends. It returns the new cell's index.
func (nb *Notebook) InsertCode(after int, source string) int {
	cell := Cell{
		Type:   CellCode,
		Source: source,
		extra: map[string]json.RawMessage{
			"execution_count": json.RawMessage("null"),
			"metadata":        json.RawMessage("{}"),
			"outputs":         json.RawMessage("[]"),
		},
	}
	if nb.hasCellIDs() {
		id, _ := json.Marshal(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
		cell.extra["id"] = id
	}

	at := after + 1
	if after < 0 || at > len(nb.Cells) {
		at = len(nb.Cells)
	}
	nb.Cells = append(nb.Cells, Cell{})
	copy(nb.Cells[at+1:], nb.Cells[at:])
	nb.Cells[at] = cell
	return at
}

// Cell ids are required from nbformat 4.5 on.
func (nb *Notebook) hasCellIDs() bool {
	var major, minor int
	if raw, ok := nb.extra["nbformat"]; ok {
		_ = json.Unmarshal(raw, &major)
	}
	if raw, ok := nb.extra["nbformat_minor"]; ok {
		_ = json.Unmarshal(raw, &minor)
	}
	return major > 4 || (major == 4 && minor >= 5)
}

// Marshal encodes the notebook with Jupyter's one-space indent.
func (nb *Notebook) Marshal() ([]byte, error) {
	top := make(map[string]any, len(nb.extra)+1)
	for k, v := range nb.extra {
		top[k] = v
	}
	cells := make([]map[string]any, 0, len(nb.Cells))
	for _, c := range nb.Cells {
		m := make(map[string]any, len(c.extra)+2)
		for k, v := range c.extra {
			m[k] = v
		}
		m["cell_type"] = c.Type
		m["source"] = splitSource(c.Source)
		cells = append(cells, m)
	}
	top["cells"] = cells
	if _, ok := top["metadata"]; !ok {
		top["metadata"] = map[string]any{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", " ")
	if err := enc.Encode(top); err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "encode notebook")
	}
	return buf.Bytes(), nil
}

// Save writes the notebook to path through a temporary file.
func (nb *Notebook) Save(path string) error {
	data, err := nb.Marshal()
	if err != nil {
		return err
	}
	mode := os.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}
	if err := util.WriteFileAtomic(path, data, mode); err != nil {
		return errors.Wrap(err, errors.CodeInternal, "write notebook")
	}
	return nil
}
