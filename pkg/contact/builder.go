// Package contact builds the weighted proximity graph of a structure: two
// atoms are joined when their centres are closer than the scaled sum of their
// covalent radii.
package contact

import (
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/dd0wney/cluso-pdbgraph/pkg/pdb"
	"github.com/dd0wney/cluso-pdbgraph/pkg/radii"
)

// DefaultScale multiplies the summed radii to give the pairwise cutoff.
const DefaultScale float32 = 2.5

// ErrInvalidScale is returned for a non-positive or non-finite scale.
var ErrInvalidScale = errors.New("scale must be positive and finite")

// Edge joins atom From to atom To (0-based, From > To). Weight is 1 for
// coincident atoms and falls linearly to 0 at the cutoff.
type Edge struct {
	From   int
	To     int
	Weight float32
}

// Stats counts the work done by a build.
type Stats struct {
	Atoms int
	Pairs int64
	Edges int
}

// Build compares every pair (i, j) with j < i and returns the edges in
// row-major order: i ascending, then j ascending.
func Build(atoms []pdb.Atom, table *radii.Table, scale float32) ([]Edge, error) {
	r, err := resolve(atoms, table, scale)
	if err != nil {
		return nil, err
	}
	return rows(atoms, r, scale, 1, len(atoms), nil), nil
}

// ValidateScale checks that scale can produce a meaningful cutoff.
func ValidateScale(scale float32) error {
	if !(scale > 0) || math.IsInf(float64(scale), 0) {
		return fmt.Errorf("%w: %v", ErrInvalidScale, scale)
	}
	return nil
}

// FormatScale renders scale as the shortest decimal that reads back to the
// same float32, without an exponent: 2.5, 4, 0.75.
func FormatScale(scale float32) string {
	return strconv.FormatFloat(float64(scale), 'f', -1, 32)
}

// PairCount is the number of unordered pairs among n atoms.
func PairCount(n int) int64 {
	if n < 2 {
		return 0
	}
	return int64(n) * int64(n-1) / 2
}

// resolve validates scale and looks up every atom's radius once. An unknown
// element fails the whole build, even in a structure of one atom.
func resolve(atoms []pdb.Atom, table *radii.Table, scale float32) ([]float32, error) {
	if err := ValidateScale(scale); err != nil {
		return nil, err
	}
	if table == nil {
		table = radii.Default()
	}

	r := make([]float32, len(atoms))
	for i, atom := range atoms {
		radius, err := table.Lookup(atom.Element)
		if err != nil {
			return nil, fmt.Errorf("atom %d: %w", i+1, err)
		}
		r[i] = radius
	}
	return r, nil
}

// rows evaluates outer indices [lo, hi) and appends hits to dst.
func rows(atoms []pdb.Atom, r []float32, scale float32, lo, hi int, dst []Edge) []Edge {
	if lo < 1 {
		lo = 1
	}
	for i := lo; i < hi; i++ {
		pi, ri := atoms[i].Position, r[i]
		for j := 0; j < i; j++ {
			cutoff := (ri + r[j]) * scale
			if w, ok := Weight(pi, atoms[j].Position, cutoff); ok {
				dst = append(dst, Edge{From: i, To: j, Weight: w})
			}
		}
	}
	return dst
}

// Weight returns (cutoff - d) / cutoff for the distance d between a and b,
// and false when d is not strictly below cutoff. Every product is converted
// to float32 explicitly so no platform fuses it into a multiply-add.
func Weight(a, b [3]float32, cutoff float32) (float32, bool) {
	dx := a[0] - b[0]
	dy := a[1] - b[1]
	dz := a[2] - b[2]
	d2 := float32(dx*dx) + float32(dy*dy) + float32(dz*dz)
	if !(d2 < float32(cutoff*cutoff)) {
		return 0, false
	}
	d := float32(math.Sqrt(float64(d2)))
	return (cutoff - d) / cutoff, true
}
