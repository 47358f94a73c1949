// Package parser scans notebook cell source with tree-sitter-python and
// reports the MeasureIt sweeps each cell constructs. It is an optional
// enhancement: when the grammar cannot be initialised every scan reports
// CodeUnavailable and callers carry on without it.
package parser

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"sweepq/internal/core/errors"
	"sweepq/internal/shared/observability"

	lru "github.com/hashicorp/golang-lru/v2"
	sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_python "github.com/tree-sitter/tree-sitter-python/bindings/go"
)

const DefaultCacheSize = 256

// LanguageLoader produces the grammar the scanner parses with.
type LanguageLoader func() (*sitter.Language, error)

type Option func(*Scanner)

// WithLanguageLoader replaces the bundled tree-sitter-python grammar.
func WithLanguageLoader(loader LanguageLoader) Option {
	return func(s *Scanner) {
		if loader != nil {
			s.loadLanguage = loader
		}
	}
}

type Scanner struct {
	loadLanguage LanguageLoader
	cacheSize    int

	initOnce  sync.Once
	initErr   error
	extractor *sweepExtractor
	cache     *lru.Cache[string, []Marker]

	// Parsers bound to the Python grammar, recycled across cells.
	parsers sync.Pool
	busy    atomic.Int32
}

func NewScanner(cacheSize int, opts ...Option) *Scanner {
	if cacheSize <= 0 {
		cacheSize = DefaultCacheSize
	}
	s := &Scanner{
		loadLanguage: pythonLanguage,
		cacheSize:    cacheSize,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func pythonLanguage() (*sitter.Language, error) {
	lang := sitter.NewLanguage(tree_sitter_python.Language())
	if lang == nil {
		return nil, fmt.Errorf("tree-sitter-python grammar unavailable")
	}
	return lang, nil
}

// init runs at most once; a failure is remembered and never retried.
func (s *Scanner) init() error {
	s.initOnce.Do(func() {
		lang, err := s.loadLanguage()
		var first *sitter.Parser
		if err == nil {
			first = sitter.NewParser()
			if err = first.SetLanguage(lang); err != nil {
				first.Close()
			}
		}
		if err != nil {
			observability.ParserInitFailuresTotal.Inc()
			slog.Warn("sweep scanner disabled", "error", err)
			s.initErr = errors.Wrap(err, errors.CodeUnavailable, "sweep scanner unavailable")
			return
		}
		cache, err := lru.New[string, []Marker](s.cacheSize)
		if err != nil {
			first.Close()
			s.initErr = errors.Wrap(err, errors.CodeInternal, "create scan cache")
			return
		}
		s.parsers.New = func() any {
			sp := sitter.NewParser()
			_ = sp.SetLanguage(lang)
			return sp
		}
		s.parsers.Put(first)
		s.extractor = newSweepExtractor()
		s.cache = cache
	})
	return s.initErr
}

// Available reports whether the scanner can parse.
func (s *Scanner) Available() bool {
	return s.init() == nil
}

// ScanSource reports the sweeps constructed in src, in source order.
func (s *Scanner) ScanSource(src string) ([]Marker, error) {
	if err := s.init(); err != nil {
		return nil, err
	}

	key := contentKey(src)
	if cached, ok := s.cache.Get(key); ok {
		observability.ScanCacheHitsTotal.Inc()
		return cloneMarkers(cached), nil
	}

	started := time.Now()
	sp := s.acquire()
	defer s.release(sp)

	source := []byte(src)
	tree := sp.Parse(source, nil)
	if tree == nil {
		return nil, errors.New(errors.CodeInternal, "parse failed")
	}
	defer tree.Close()

	markers := s.extractor.Extract(tree.RootNode(), source)
	observability.ScanDuration.Observe(time.Since(started).Seconds())

	s.cache.Add(key, cloneMarkers(markers))
	return markers, nil
}

func (s *Scanner) acquire() *sitter.Parser {
	s.busy.Add(1)
	return s.parsers.Get().(*sitter.Parser)
}

func (s *Scanner) release(sp *sitter.Parser) {
	sp.Reset()
	s.parsers.Put(sp)
	s.busy.Add(-1)
}

// Busy reports how many cells are being parsed right now.
func (s *Scanner) Busy() int {
	return int(s.busy.Load())
}

// ScanCells scans every cell and keeps those with at least one sweep. Cells
// that fail to scan are skipped.
func (s *Scanner) ScanCells(cells []Cell) []CellMarkers {
	var out []CellMarkers
	for _, cell := range cells {
		markers, err := s.ScanSource(cell.Source)
		if err != nil {
			slog.Debug("skipping cell", "cell", cell.Index, "error", err)
			continue
		}
		if len(markers) == 0 {
			continue
		}
		out = append(out, CellMarkers{Index: cell.Index, Markers: markers})
	}
	return out
}

func contentKey(src string) string {
	sum := sha256.Sum256([]byte(src))
	return hex.EncodeToString(sum[:])
}
