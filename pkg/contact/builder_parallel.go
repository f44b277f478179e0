package contact

import (
	"context"
	"math"

	"github.com/dd0wney/cluso-pdbgraph/pkg/logging"
	"github.com/dd0wney/cluso-pdbgraph/pkg/parallel"
	"github.com/dd0wney/cluso-pdbgraph/pkg/pdb"
	"github.com/dd0wney/cluso-pdbgraph/pkg/radii"
)

// chunksPerWorker oversubscribes the pool so uneven rows still balance out.
const chunksPerWorker = 4

// minParallelAtoms is the structure size below which a build stays on the
// calling goroutine.
const minParallelAtoms = 256

// Result is the output of a Builder run.
type Result struct {
	Edges []Edge
	Stats Stats
}

// Builder runs Build across a worker pool. Output is identical to Build:
// rows are split into contiguous ranges and the per-range edge slices are
// joined in range order.
type Builder struct {
	pool   *parallel.WorkerPool
	table  *radii.Table
	logger logging.Logger
}

// NewBuilder returns a builder. A nil pool builds sequentially; a nil table
// uses radii.Default().
func NewBuilder(pool *parallel.WorkerPool, table *radii.Table, logger logging.Logger) *Builder {
	if table == nil {
		table = radii.Default()
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Builder{
		pool:   pool,
		table:  table,
		logger: logger.With(logging.Component("contact")),
	}
}

// Build constructs the contact graph of atoms at the given scale.
func (b *Builder) Build(ctx context.Context, atoms []pdb.Atom, scale float32) (*Result, error) {
	r, err := resolve(atoms, b.table, scale)
	if err != nil {
		return nil, err
	}

	stats := Stats{Atoms: len(atoms), Pairs: PairCount(len(atoms))}

	if b.pool == nil || len(atoms) < minParallelAtoms {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		edges := rows(atoms, r, scale, 1, len(atoms), nil)
		stats.Edges = len(edges)
		return &Result{Edges: edges, Stats: stats}, nil
	}

	bounds := partition(len(atoms), b.pool.Workers()*chunksPerWorker)
	parts := make([][]Edge, len(bounds)-1)

	err = b.pool.Run(ctx, len(parts), func(k int) error {
		parts[k] = rows(atoms, r, scale, bounds[k], bounds[k+1], nil)
		return ctx.Err()
	})
	if err != nil {
		return nil, err
	}

	total := 0
	for _, p := range parts {
		total += len(p)
	}
	edges := make([]Edge, 0, total)
	for _, p := range parts {
		edges = append(edges, p...)
	}

	b.logger.Debug("parallel build complete",
		logging.Int("chunks", len(parts)),
		logging.Int("workers", b.pool.Workers()),
		logging.Edges(len(edges)),
	)

	stats.Edges = len(edges)
	return &Result{Edges: edges, Stats: stats}, nil
}

// partition splits outer rows [1, n) into at most k contiguous ranges of
// roughly equal pair count. Row i holds i pairs, so the m-th boundary sits
// near n*sqrt(m/k). The result starts at 1, ends at n and strictly increases.
func partition(n, k int) []int {
	if n < 2 {
		return []int{1, 1}
	}
	if k < 1 {
		k = 1
	}
	if k > n-1 {
		k = n - 1
	}

	bounds := make([]int, 0, k+1)
	bounds = append(bounds, 1)
	for m := 1; m < k; m++ {
		at := int(float64(n) * math.Sqrt(float64(m)/float64(k)))
		if at > bounds[len(bounds)-1] && at < n {
			bounds = append(bounds, at)
		}
	}
	return append(bounds, n)
}
