package contact

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/dd0wney/cluso-pdbgraph/pkg/parallel"
	"github.com/dd0wney/cluso-pdbgraph/pkg/pdb"
)

func residueAtom(seq int, element string, x float32) pdb.Atom {
	a := atom(element, x, 0, 0)
	a.ResidueSeq = seq
	return a
}

func TestParseType(t *testing.T) {
	for in, want := range map[string]Type{"atomic": Atomic, " Residue ": Residue, "ATOMIC": Atomic} {
		got, err := ParseType(in)
		if err != nil || got != want {
			t.Errorf("ParseType(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
	if _, err := ParseType("chain"); !errors.Is(err, ErrUnknownType) {
		t.Errorf("ParseType(chain) error = %v, want ErrUnknownType", err)
	}
}

func TestResidueIndex(t *testing.T) {
	atoms := []pdb.Atom{
		residueAtom(5, "C", 0), residueAtom(5, "C", 0),
		residueAtom(6, "C", 0),
		residueAtom(0, "C", 0),
		residueAtom(6, "C", 0), residueAtom(6, "C", 0),
	}
	want := []int{0, 0, 1, 2, 3, 3}
	if got := ResidueIndex(atoms); !reflect.DeepEqual(got, want) {
		t.Errorf("ResidueIndex() = %v, want %v", got, want)
	}
}

func TestBuildResidues(t *testing.T) {
	// Residue 1 holds atoms 0 and 1, residue 2 atom 2, residue 3 atom 3.
	atoms := []pdb.Atom{
		residueAtom(1, "C", 0),
		residueAtom(1, "C", 1),
		residueAtom(2, "C", 2),
		residueAtom(3, "C", 20),
	}

	edges, err := BuildResidues(atoms, nil, DefaultScale)
	if err != nil {
		t.Fatalf("BuildResidues() error: %v", err)
	}

	// atoms 0,1 and 2 are all within 3.8 Å; pair (0,1) is intra-residue
	want := []Edge{{From: 1, To: 0, Weight: 2}}
	if !reflect.DeepEqual(edges, want) {
		t.Errorf("BuildResidues() = %+v, want %+v", edges, want)
	}
}

func TestResidueEdgesSorted(t *testing.T) {
	atoms := []pdb.Atom{
		residueAtom(1, "C", 0),
		residueAtom(2, "C", 1),
		residueAtom(3, "C", 2),
		residueAtom(4, "C", 3),
	}
	atomic := []Edge{
		{From: 3, To: 2, Weight: 0.5},
		{From: 3, To: 0, Weight: 0.1},
		{From: 1, To: 0, Weight: 0.5},
		{From: 2, To: 1, Weight: 0.5},
		{From: 3, To: 0, Weight: 0.2},
	}
	want := []Edge{
		{From: 1, To: 0, Weight: 1},
		{From: 2, To: 1, Weight: 1},
		{From: 3, To: 0, Weight: 2},
		{From: 3, To: 2, Weight: 1},
	}
	if got := ResidueEdges(atoms, atomic); !reflect.DeepEqual(got, want) {
		t.Errorf("ResidueEdges() = %+v, want %+v", got, want)
	}
}

func TestBuilderBuildType(t *testing.T) {
	pool, err := parallel.NewWorkerPool(4, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer pool.Close()

	atoms := randomAtoms(400, 12, 7)
	for i := range atoms {
		atoms[i].ResidueSeq = i / 8
	}

	b := NewBuilder(pool, nil, nil)
	got, err := b.BuildType(context.Background(), atoms, DefaultScale, Residue)
	if err != nil {
		t.Fatalf("BuildType() error: %v", err)
	}
	want, err := BuildResidues(atoms, nil, DefaultScale)
	if err != nil {
		t.Fatalf("BuildResidues() error: %v", err)
	}
	if !reflect.DeepEqual(got.Edges, want) || got.Stats.Edges != len(want) {
		t.Errorf("parallel residue build differs: %d edges vs %d", len(got.Edges), len(want))
	}

	if _, err := b.BuildType(context.Background(), atoms, DefaultScale, "bond"); !errors.Is(err, ErrUnknownType) {
		t.Errorf("BuildType(bond) error = %v, want ErrUnknownType", err)
	}
}
