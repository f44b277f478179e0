// Package convert runs the load, build and write stages for one structure.
package convert

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/dd0wney/cluso-pdbgraph/pkg/contact"
	"github.com/dd0wney/cluso-pdbgraph/pkg/edgelist"
	"github.com/dd0wney/cluso-pdbgraph/pkg/logging"
	"github.com/dd0wney/cluso-pdbgraph/pkg/metrics"
	"github.com/dd0wney/cluso-pdbgraph/pkg/parallel"
	"github.com/dd0wney/cluso-pdbgraph/pkg/pdb"
	"github.com/dd0wney/cluso-pdbgraph/pkg/radii"
)

// Hydrogen status labels
const (
	HydrogensExcluded = "noH"
	HydrogensIncluded = "Hatoms"
)

// Options configures a Converter. The zero value writes an atomic list at
// contact.DefaultScale with the default radius table, sequentially.
type Options struct {
	Type             contact.Type
	Scale            float32
	Lenient          bool
	Chain            string
	ExcludeHydrogens bool
	Compress         bool

	Table   *radii.Table
	Pool    *parallel.WorkerPool
	Logger  logging.Logger
	Metrics *metrics.Registry
}

// Result describes one finished conversion.
type Result struct {
	RunID    string
	Load     pdb.LoadStats
	Graph    contact.Stats
	Edges    []contact.Edge
	Duration time.Duration
}

// Converter turns PDB text into an edge list. It is safe for concurrent use
// when the configured pool and registry are.
type Converter struct {
	opts    Options
	builder *contact.Builder
	logger  logging.Logger
}

// New validates opts and returns a Converter.
func New(opts Options) (*Converter, error) {
	if opts.Scale == 0 {
		opts.Scale = contact.DefaultScale
	}
	if err := contact.ValidateScale(opts.Scale); err != nil {
		return nil, err
	}
	if opts.Type == "" {
		opts.Type = contact.Atomic
	}
	t, err := contact.ParseType(string(opts.Type))
	if err != nil {
		return nil, err
	}
	opts.Type = t
	if opts.Table == nil {
		opts.Table = radii.Default()
	}
	if opts.Logger == nil {
		opts.Logger = logging.NewNopLogger()
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.DefaultRegistry()
	}

	return &Converter{
		opts:    opts,
		builder: contact.NewBuilder(opts.Pool, opts.Table, opts.Logger),
		logger:  opts.Logger.With(logging.Component("convert")),
	}, nil
}

// Scale returns the scale factor in use.
func (c *Converter) Scale() float32 {
	return c.opts.Scale
}

// Type returns the edge list type produced.
func (c *Converter) Type() contact.Type {
	return c.opts.Type
}

// Compressed reports whether output is snappy framed.
func (c *Converter) Compressed() bool {
	return c.opts.Compress
}

// Graph loads in and builds its contact graph without writing anything.
func (c *Converter) Graph(ctx context.Context, in io.Reader) (*Result, error) {
	res := &Result{RunID: uuid.NewString()}
	logger := c.logger.With(logging.String("run_id", res.RunID))

	timer := logging.StartTimer(logger, "load structure")
	atoms, stats, err := pdb.Load(in, c.loadOptions(logger)...)
	elapsed := timer.EndError(err)
	if err != nil {
		return nil, fmt.Errorf("load structure: %w", err)
	}
	res.Load = *stats
	c.opts.Metrics.RecordLoad(stats.Atoms, stats.Ignored, stats.Malformed, stats.Filtered, elapsed)

	timer = logging.StartTimer(logger, "build contact graph",
		logging.String("type", string(c.opts.Type)),
		logging.Atoms(len(atoms)),
		logging.Scaling(c.opts.Scale),
	)
	built, err := c.builder.BuildType(ctx, atoms, c.opts.Scale, c.opts.Type)
	elapsed = timer.EndError(err)
	if err != nil {
		return nil, fmt.Errorf("build contact graph: %w", err)
	}
	res.Graph = built.Stats
	res.Edges = built.Edges
	c.opts.Metrics.RecordBuild(built.Stats.Pairs, elapsed)

	return res, nil
}

// Convert reads PDB text from in and writes the edge list to out. Nothing is
// written unless loading and building both succeed.
func (c *Converter) Convert(ctx context.Context, in io.Reader, out io.Writer) (res *Result, err error) {
	start := time.Now()
	defer func() { c.opts.Metrics.RecordConversion(err) }()

	res, err = c.Graph(ctx, in)
	if err != nil {
		return nil, err
	}

	if err = c.write(res, out); err != nil {
		return nil, err
	}

	res.Duration = time.Since(start)
	c.logger.Info("conversion complete",
		logging.String("run_id", res.RunID),
		logging.Atoms(res.Graph.Atoms),
		logging.Edges(res.Graph.Edges),
		logging.Scaling(c.opts.Scale),
		logging.Bool("compressed", c.opts.Compress),
		logging.Latency(res.Duration),
	)
	return res, nil
}

func (c *Converter) write(res *Result, out io.Writer) error {
	var w *edgelist.Writer
	if c.opts.Compress {
		w = edgelist.NewSnappyWriter(out)
	} else {
		w = edgelist.NewWriter(out)
	}

	start := time.Now()
	if err := w.Write(res.Edges); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	c.opts.Metrics.RecordWrite(w.Written(), time.Since(start))
	return nil
}

func (c *Converter) loadOptions(logger logging.Logger) []pdb.LoadOption {
	opts := []pdb.LoadOption{pdb.WithRadii(c.opts.Table), pdb.WithLogger(logger)}
	if c.opts.Lenient {
		opts = append(opts, pdb.WithLenient(logger))
	}
	if c.opts.Chain != "" {
		opts = append(opts, pdb.WithChain(c.opts.Chain))
	}
	if c.opts.ExcludeHydrogens {
		opts = append(opts, pdb.WithoutHydrogens())
	}
	return opts
}

// HydrogenStatus labels the hydrogen treatment in the edge list database.
func (c *Converter) HydrogenStatus() string {
	if c.opts.ExcludeHydrogens {
		return HydrogensExcluded
	}
	return HydrogensIncluded
}
