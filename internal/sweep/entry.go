package sweep

import (
	"time"

	"github.com/google/uuid"
)

// Code is a generated fragment pair. Start is kept apart from Setup so it can
// be emitted after database configuration is attached.
type Code struct {
	Setup string `json:"setup" toml:"setup"`
	Start string `json:"start" toml:"start"`
}

// Database identifies where a sweep's data is stored. A nil *Database on an
// entry means the sweep runs without persistence.
type Database struct {
	Database   string `json:"database" toml:"database"`
	Experiment string `json:"experiment" toml:"experiment"`
	Sample     string `json:"sample" toml:"sample"`
}

// Entry is one queued sweep.
type Entry struct {
	ID         string
	Name       string
	SweepType  Type
	Code       Code
	Params     Params
	Database   *Database
	CreatedAt  int64 // epoch milliseconds
	ModifiedAt int64 // epoch milliseconds
}

func NewID() string {
	return "sweep-" + uuid.NewString()
}

// Clone returns a copy sharing no mutable state with e.
func (e Entry) Clone() Entry {
	out := e
	out.Params = CloneParams(e.Params)
	if e.Database != nil {
		db := *e.Database
		out.Database = &db
	}
	return out
}

// Millis converts t to epoch milliseconds.
func Millis(t time.Time) int64 {
	return t.UnixMilli()
}
