package notebook

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"sweepq/internal/core/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fixture = `{
 "cells": [
  {
   "cell_type": "markdown",
   "metadata": {"tags": ["intro"]},
   "source": ["# Cooldown <run>\n", "notes"]
  },
  {
   "cell_type": "code",
   "execution_count": 3,
   "id": "abc12345",
   "metadata": {},
   "outputs": [],
   "source": "import qcodes as qc\nstation = qc.Station()"
  }
 ],
 "metadata": {"kernelspec": {"name": "python3"}},
 "nbformat": 4,
 "nbformat_minor": 5
}`

func writeNotebook(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "run.ipynb")
	require.NoError(t, os.WriteFile(path, []byte(fixture), 0o644))
	return path
}

func TestParseAndCodeCells(t *testing.T) {
	nb, err := Parse([]byte(fixture))
	require.NoError(t, err)
	require.Len(t, nb.Cells, 2)

	assert.Equal(t, "# Cooldown <run>\nnotes", nb.Cells[0].Source)
	assert.Equal(t, []CodeCell{{Index: 1, Source: "import qcodes as qc\nstation = qc.Station()"}}, nb.CodeCells())
}

func TestMarshalPreservesUnknownKeys(t *testing.T) {
	nb, err := Parse([]byte(fixture))
	require.NoError(t, err)

	data, err := nb.Marshal()
	require.NoError(t, err)

	text := string(data)
	assert.True(t, strings.HasPrefix(text, "{\n \"cells\": ["), "one-space indent")
	assert.Contains(t, text, "<run>", "no HTML escaping")
	assert.True(t, strings.HasSuffix(text, "}\n"))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, float64(5), decoded["nbformat_minor"])
	cells := decoded["cells"].([]any)
	first := cells[0].(map[string]any)
	assert.Equal(t, map[string]any{"tags": []any{"intro"}}, first["metadata"])
	assert.Equal(t, []any{"# Cooldown <run>\n", "notes"}, first["source"])
	second := cells[1].(map[string]any)
	assert.Equal(t, float64(3), second["execution_count"])
	assert.Equal(t, "abc12345", second["id"])
}

func TestInsertCode(t *testing.T) {
	nb, err := Parse([]byte(fixture))
	require.NoError(t, err)

	at := nb.InsertCode(0, "sq = SweepQueue()\nsq.start()")
	assert.Equal(t, 1, at)
	require.Len(t, nb.Cells, 3)
	assert.Equal(t, CellCode, nb.Cells[1].Type)
	assert.Contains(t, nb.Cells[1].extra, "id")
	assert.Equal(t, "station = qc.Station()", strings.SplitN(nb.Cells[2].Source, "\n", 2)[1])

	at = nb.InsertCode(-1, "x = 1")
	assert.Equal(t, 3, at)
	at = nb.InsertCode(99, "y = 2")
	assert.Equal(t, 4, at)
}

func TestInsertCodeWithoutCellIDs(t *testing.T) {
	nb, err := Parse([]byte(`{"cells": [], "nbformat": 4, "nbformat_minor": 2}`))
	require.NoError(t, err)
	nb.InsertCode(-1, "x = 1")
	assert.NotContains(t, nb.Cells[0].extra, "id")
}

func TestSplitSource(t *testing.T) {
	assert.Equal(t, []string{}, splitSource(""))
	assert.Equal(t, []string{"a\n", "b"}, splitSource("a\nb"))
	assert.Equal(t, []string{"a\n"}, splitSource("a\n"))
}

func TestFileHost(t *testing.T) {
	path := writeNotebook(t)
	var host Inserter = FileHost{Path: path, After: -1}
	require.NoError(t, host.InsertCode(context.Background(), "sq.start()"))

	nb, err := Load(path)
	require.NoError(t, err)
	require.Len(t, nb.Cells, 3)
	assert.Equal(t, "sq.start()", nb.Cells[2].Source)

	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))
}

func TestFileHostWithoutNotebook(t *testing.T) {
	for _, path := range []string{"", filepath.Join(t.TempDir(), "missing.ipynb")} {
		err := FileHost{Path: path}.InsertCode(context.Background(), "x")
		require.Error(t, err)
		assert.True(t, errors.IsCode(err, errors.CodeUnavailable))
		assert.Equal(t, NoActiveNotebook, errors.Message(err))
	}
}

func TestParseRejectsGarbage(t *testing.T) {
	_, err := Parse([]byte("not json"))
	assert.True(t, errors.IsCode(err, errors.CodeValidationError))

	_, err = Parse([]byte(`{"cells": [{"cell_type": "code", "source": 7}]}`))
	assert.True(t, errors.IsCode(err, errors.CodeValidationError))
}

func TestDiscover(t *testing.T) {
	root := t.TempDir()
	for _, rel := range []string{
		"a.ipynb",
		"sub/b.IPYNB",
		"sub/notes.txt",
		".ipynb_checkpoints/a-checkpoint.ipynb",
		"sub/scratch.ipynb",
	} {
		path := filepath.Join(root, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte("{}"), 0o644))
	}

	found, err := Discover(root, []string{".ipynb_checkpoints"}, []string{"scratch*"})
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(root, "a.ipynb"),
		filepath.Join(root, "sub", "b.IPYNB"),
	}, found)
}
