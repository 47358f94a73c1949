package notebook

import (
	"context"
	"os"
	"strings"

	"sweepq/internal/core/errors"
)

// NoActiveNotebook is the message reported when there is nowhere to insert.
const NoActiveNotebook = "No active notebook found"

// Inserter places generated code into the document the user is working in.
type Inserter interface {
	InsertCode(ctx context.Context, code string) error
}

var _ Inserter = FileHost{}

// FileHost inserts code cells into an .ipynb file on disk.
type FileHost struct {
	Path  string
	After int // cell index to insert after; -1 appends
}

func (h FileHost) InsertCode(ctx context.Context, code string) error {
	path := strings.TrimSpace(h.Path)
	if path == "" {
		return errors.New(errors.CodeUnavailable, NoActiveNotebook)
	}
	if _, err := os.Stat(path); err != nil {
		return errors.AddContext(errors.Wrap(err, errors.CodeUnavailable, NoActiveNotebook), errors.CtxPath, path)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	nb, err := Load(path)
	if err != nil {
		return err
	}
	nb.InsertCode(h.After, code)
	return nb.Save(path)
}
