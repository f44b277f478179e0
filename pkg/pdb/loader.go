package pdb

import (
	"bufio"
	"errors"
	"fmt"
	"io"

	"github.com/dd0wney/cluso-pdbgraph/pkg/logging"
	"github.com/dd0wney/cluso-pdbgraph/pkg/radii"
)

// maxLineBytes bounds a single input line.
const maxLineBytes = 1 << 20

// HydrogenElement is the symbol dropped by WithoutHydrogens.
const HydrogenElement = "H"

// LoadStats counts what happened to each input line.
type LoadStats struct {
	Lines     int // total lines read
	Atoms     int // atoms kept, equal to len of the returned slice
	Ignored   int // non-ATOM lines
	Malformed int // ATOM lines skipped in lenient mode
	Filtered  int // valid ATOM lines removed by chain or hydrogen filters
}

// LoadOption configures Load.
type LoadOption func(*loadConfig)

type loadConfig struct {
	lenient     bool
	logger      logging.Logger
	chain       string
	noHydrogens bool
	radii       *radii.Table
}

// WithLenient skips malformed ATOM lines instead of failing the load. Each
// skipped line is logged at WARN. Unknown elements are never skipped.
func WithLenient(logger logging.Logger) LoadOption {
	return func(c *loadConfig) {
		c.lenient = true
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithLogger sets the logger for load diagnostics without enabling lenient
// mode.
func WithLogger(logger logging.Logger) LoadOption {
	return func(c *loadConfig) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithChain keeps only atoms whose chain identifier equals id. Load fails
// with ErrChainNotFound when no ATOM record carries that chain.
func WithChain(id string) LoadOption {
	return func(c *loadConfig) {
		c.chain = id
	}
}

// WithoutHydrogens drops atoms with element H before numbering.
func WithoutHydrogens() LoadOption {
	return func(c *loadConfig) {
		c.noHydrogens = true
	}
}

// WithRadii checks every kept atom's element against table while loading,
// so an unknown element fails before graph construction starts.
func WithRadii(table *radii.Table) LoadOption {
	return func(c *loadConfig) {
		c.radii = table
	}
}

// Load reads r line by line and returns the ATOM records in input order.
// Any error aborts the load; no partial structure is returned.
func Load(r io.Reader, opts ...LoadOption) ([]Atom, *LoadStats, error) {
	cfg := loadConfig{logger: logging.NewNopLogger()}
	for _, opt := range opts {
		opt(&cfg)
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	stats := &LoadStats{}
	atoms := make([]Atom, 0, 1024)
	chainAtoms := 0

	for scanner.Scan() {
		stats.Lines++
		line := scanner.Text()

		if !IsAtomRecord(line) {
			stats.Ignored++
			continue
		}

		atom, err := ParseRecord(line)
		if err != nil {
			var recErr *RecordError
			if errors.As(err, &recErr) {
				recErr.Line = stats.Lines
			}
			if cfg.lenient && errors.Is(err, ErrMalformedRecord) {
				stats.Malformed++
				cfg.logger.Warn("skipping malformed atom record", logging.Line(stats.Lines), logging.Error(err))
				continue
			}
			return nil, stats, err
		}

		if cfg.chain != "" {
			if atom.Chain != cfg.chain {
				stats.Filtered++
				continue
			}
			chainAtoms++
		}
		if cfg.noHydrogens && atom.Element == HydrogenElement {
			stats.Filtered++
			continue
		}
		if cfg.radii != nil && !cfg.radii.Has(atom.Element) {
			cfg.logger.Error("unknown element", logging.Line(stats.Lines), logging.Element(atom.Element))
			return nil, stats, &RecordError{
				Line:  stats.Lines,
				Field: FieldElement,
				Err:   fmt.Errorf("%w: %q", radii.ErrUnknownElement, atom.Element),
			}
		}

		atoms = append(atoms, atom)
	}
	if err := scanner.Err(); err != nil {
		return nil, stats, fmt.Errorf("failed to read structure: %w", err)
	}
	if cfg.chain != "" && chainAtoms == 0 {
		return nil, stats, fmt.Errorf("%w: %q", ErrChainNotFound, cfg.chain)
	}

	stats.Atoms = len(atoms)
	return atoms, stats, nil
}
