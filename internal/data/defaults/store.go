// Package defaults persists the last-used form values per sweep type so a
// new sweep of that type starts from them. It is independent of the queue.
package defaults

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"sweepq/internal/core/errors"
	"sweepq/internal/sweep"

	_ "modernc.org/sqlite"
)

const (
	driverName  = "sqlite"
	maxAttempts = 5
)

// Record is one stored set of defaults.
type Record struct {
	SweepType sweep.Type
	Params    sweep.Params
	UpdatedAt time.Time
}

type Store struct {
	path string
	db   *sql.DB
	mu   sync.Mutex
	now  func() time.Time
}

func Open(path string, busyTimeout time.Duration) (*Store, error) {
	cleanPath := strings.TrimSpace(path)
	if cleanPath == "" {
		return nil, errors.New(errors.CodeValidationError, "defaults path must not be empty")
	}
	if info, err := os.Stat(cleanPath); err == nil && info.IsDir() {
		return nil, errors.New(errors.CodeValidationError, fmt.Sprintf("defaults path %q is a directory, expected file", cleanPath))
	}

	dir := filepath.Dir(cleanPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create defaults directory %q: %w", dir, err)
		}
	}

	if busyTimeout <= 0 {
		busyTimeout = 2 * time.Second
	}
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(%d)&_pragma=journal_mode(WAL)", cleanPath, busyTimeout.Milliseconds())
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite defaults %q: %w", cleanPath, err)
	}
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite defaults %q: %w", cleanPath, err)
	}
	if err := EnsureSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize sqlite schema %q: %w", cleanPath, err)
	}

	return &Store{path: cleanPath, db: db, now: time.Now}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}

// Save replaces the defaults for params' sweep type.
func (s *Store) Save(ctx context.Context, params sweep.Params) error {
	if params == nil {
		return errors.New(errors.CodeValidationError, "no params to save")
	}
	raw, err := json.Marshal(params)
	if err != nil {
		return errors.Wrap(err, errors.CodeInternal, "encode defaults")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.withRetry("save defaults", func() error {
		_, err := s.db.ExecContext(ctx, `
INSERT INTO form_defaults (sweep_type, params_json, updated_at_utc) VALUES (?, ?, ?)
ON CONFLICT(sweep_type) DO UPDATE SET
  params_json=excluded.params_json,
  updated_at_utc=excluded.updated_at_utc
`, params.SweepType().String(), string(raw), s.now().UTC().Format(time.RFC3339Nano))
		return err
	})
}

// Load returns the stored defaults for t. ok is false when none are stored.
func (s *Store) Load(ctx context.Context, t sweep.Type) (sweep.Params, bool, error) {
	if !t.Valid() {
		return nil, false, errors.New(errors.CodeValidationError, fmt.Sprintf("unknown sweep type %q", t))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var raw string
	err := s.withRetry("load defaults", func() error {
		return s.db.QueryRowContext(ctx,
			`SELECT params_json FROM form_defaults WHERE sweep_type = ?`, t.String()).Scan(&raw)
	})
	if err != nil {
		if isNoRows(err) {
			return nil, false, nil
		}
		return nil, false, err
	}

	params, err := sweep.DecodeParamsJSON(t, []byte(raw))
	if err != nil {
		return nil, false, err
	}
	return params, true, nil
}

// Delete drops the stored defaults for t. Deleting absent defaults is not an error.
func (s *Store) Delete(ctx context.Context, t sweep.Type) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.withRetry("delete defaults", func() error {
		_, err := s.db.ExecContext(ctx, `DELETE FROM form_defaults WHERE sweep_type = ?`, t.String())
		return err
	})
}

// List returns every stored record ordered by sweep type.
func (s *Store) List(ctx context.Context) ([]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var rows *sql.Rows
	err := s.withRetry("list defaults", func() error {
		var qErr error
		rows, qErr = s.db.QueryContext(ctx,
			`SELECT sweep_type, params_json, updated_at_utc FROM form_defaults ORDER BY sweep_type ASC`)
		return qErr
	})
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make([]Record, 0)
	for rows.Next() {
		var typeRaw, paramsRaw, tsRaw string
		if err := rows.Scan(&typeRaw, &paramsRaw, &tsRaw); err != nil {
			return nil, fmt.Errorf("scan defaults row: %w", err)
		}
		t, err := sweep.ParseType(typeRaw)
		if err != nil {
			// Rows written by a newer build with more sweep types.
			continue
		}
		params, err := sweep.DecodeParamsJSON(t, []byte(paramsRaw))
		if err != nil {
			return nil, err
		}
		ts, err := time.Parse(time.RFC3339Nano, tsRaw)
		if err != nil {
			return nil, fmt.Errorf("parse defaults timestamp %q: %w", tsRaw, err)
		}
		records = append(records, Record{SweepType: t, Params: params, UpdatedAt: ts.UTC()})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate defaults rows: %w", err)
	}
	return records, nil
}

func (s *Store) withRetry(op string, fn func() error) error {
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err
		if !isLockError(err) || attempt == maxAttempts {
			break
		}
		time.Sleep(time.Duration(attempt*25) * time.Millisecond)
	}
	if isNoRows(lastErr) {
		return lastErr
	}
	return errors.Wrap(lastErr, errors.CodeUnavailable, op)
}

func isNoRows(err error) bool {
	return err == sql.ErrNoRows
}

func isLockError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "database is locked") || strings.Contains(msg, "busy")
}
