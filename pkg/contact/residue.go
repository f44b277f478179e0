package contact

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/dd0wney/cluso-pdbgraph/pkg/pdb"
	"github.com/dd0wney/cluso-pdbgraph/pkg/radii"
)

// Type selects the node set of an edge list.
type Type string

const (
	// Atomic lists use one node per atom, weighted by proximity.
	Atomic Type = "atomic"
	// Residue lists use one node per residue, weighted by the number of
	// atom contacts between the two residues.
	Residue Type = "residue"
)

// ErrUnknownType is returned by ParseType for anything but atomic or residue.
var ErrUnknownType = errors.New("edge list type must be atomic or residue")

// ParseType converts a type name, case-insensitively.
func ParseType(s string) (Type, error) {
	switch t := Type(strings.ToLower(strings.TrimSpace(s))); t {
	case Atomic, Residue:
		return t, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownType, s)
	}
}

// ResidueIndex numbers residues in input order: a new residue starts at the
// first atom and wherever ResidueSeq differs from the previous atom's.
func ResidueIndex(atoms []pdb.Atom) []int {
	idx := make([]int, len(atoms))
	n := -1
	for i, a := range atoms {
		if i == 0 || a.ResidueSeq != atoms[i-1].ResidueSeq {
			n++
		}
		idx[i] = n
	}
	return idx
}

// ResidueEdges folds atomic contacts into residue contacts. Pairs inside one
// residue are dropped; the weight is the number of atom pairs in contact.
// The result is sorted by From, then To.
func ResidueEdges(atoms []pdb.Atom, atomic []Edge) []Edge {
	res := ResidueIndex(atoms)

	counts := make(map[[2]int]int)
	for _, e := range atomic {
		a, b := res[e.From], res[e.To]
		if a == b {
			continue
		}
		counts[[2]int{a, b}]++
	}

	edges := make([]Edge, 0, len(counts))
	for k, n := range counts {
		edges = append(edges, Edge{From: k[0], To: k[1], Weight: float32(n)})
	}
	slices.SortFunc(edges, func(x, y Edge) int {
		if x.From != y.From {
			return x.From - y.From
		}
		return x.To - y.To
	})
	return edges
}

// BuildResidues is Build followed by ResidueEdges.
func BuildResidues(atoms []pdb.Atom, table *radii.Table, scale float32) ([]Edge, error) {
	atomic, err := Build(atoms, table, scale)
	if err != nil {
		return nil, err
	}
	return ResidueEdges(atoms, atomic), nil
}

// BuildType runs the atomic build on the pool and, for residue lists, folds
// the result. Stats.Edges counts the returned edges.
func (b *Builder) BuildType(ctx context.Context, atoms []pdb.Atom, scale float32, t Type) (*Result, error) {
	if t != Atomic && t != Residue {
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, t)
	}
	res, err := b.Build(ctx, atoms, scale)
	if err != nil {
		return nil, err
	}
	if t == Residue {
		res.Edges = ResidueEdges(atoms, res.Edges)
		res.Stats.Edges = len(res.Edges)
	}
	return res, nil
}
