// Package radii holds the covalent radius table used to derive pairwise contact cutoffs.
package radii

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"
)

var (
	// ErrUnknownElement is returned when an element symbol has no radius entry.
	ErrUnknownElement = errors.New("unknown element")
	// ErrInvalidRadius is returned when a custom table carries a non-positive radius.
	ErrInvalidRadius = errors.New("radius must be positive and finite")
)

// covalent radii in Ångström, keyed by the exact capitalised element symbol.
var covalent = map[string]float32{
	"Ac": 2.15, "Ag": 1.45, "Al": 1.21, "Am": 1.8, "Ar": 1.06, "As": 1.19,
	"At": 1.50, "Au": 1.36, "B": 0.84, "Ba": 2.15, "Be": 0.96, "Bh": 1.0,
	"Bi": 1.48, "Bk": 1.0, "Br": 1.2, "C": 0.76, "Ca": 1.76, "Cd": 1.44,
	"Ce": 2.04, "Cf": 1.0, "Cl": 1.02, "Cm": 1.69, "Co": 1.26, "Cn": 1.0,
	"Cr": 1.39, "Cs": 2.44, "Cu": 1.32, "Db": 1.0, "Ds": 1.0, "Er": 1.89,
	"Es": 1.0, "Eu": 1.98, "F": 0.57, "Fe": 1.32, "Fm": 1.0, "Fr": 2.6,
	"Ga": 1.22, "Gd": 1.96, "Ge": 1.20, "H": 0.31, "He": 0.28, "Hf": 1.75,
	"Hg": 1.32, "Ho": 1.92, "Hs": 1.0, "I": 1.39, "In": 1.42, "Ir": 1.41,
	"K": 2.03, "Kr": 1.16, "La": 2.07, "Li": 1.28, "Lr": 1.0, "Lu": 1.87,
	"Md": 1.0, "Mg": 1.41, "Mn": 1.39, "Mo": 1.54, "Mt": 1.0, "N": 0.71,
	"Na": 1.66, "Nb": 1.64, "Nd": 2.01, "Ne": 0.58, "Ni": 1.24, "No": 1.0,
	"Np": 1.9, "O": 0.66, "Os": 1.44, "P": 1.07, "Pa": 2.0, "Pb": 1.46,
	"Pd": 1.39, "Pm": 1.99, "Po": 1.40, "Pr": 2.03, "Pt": 1.36, "Pu": 1.87,
	"Ra": 2.21, "Rb": 2.2, "Re": 1.51, "Rf": 1.0, "Rg": 1.0, "Rh": 1.42,
	"Rn": 1.0, "Ru": 1.46, "S": 1.05, "Sb": 1.39, "Sc": 1.7, "Se": 1.2,
	"Sg": 1.0, "Si": 1.11, "Sm": 1.98, "Sn": 1.39, "Sr": 1.95, "Ta": 1.7,
	"Tb": 1.94, "Tc": 1.47, "Te": 1.38, "Th": 2.06, "Ti": 1.6, "Tl": 1.45,
	"Tm": 1.90, "U": 1.96, "V": 1.53, "W": 1.62, "Xe": 1.40, "Y": 1.9,
	"Yb": 1.87, "Zn": 1.22, "Zr": 1.75,
}

// Table is an immutable element -> radius mapping. It is safe for concurrent use.
type Table struct {
	radii map[string]float32
}

var (
	defaultTable *Table
	once         sync.Once
)

// Default returns the process-wide covalent radius table.
func Default() *Table {
	once.Do(func() {
		defaultTable = &Table{radii: covalent}
	})
	return defaultTable
}

// New builds a table from a custom mapping. The map is copied.
func New(entries map[string]float32) (*Table, error) {
	radii := make(map[string]float32, len(entries))
	for element, r := range entries {
		if !(r > 0) || math.IsInf(float64(r), 0) {
			return nil, fmt.Errorf("%w: %s = %v", ErrInvalidRadius, element, r)
		}
		radii[element] = r
	}
	return &Table{radii: radii}, nil
}

// Lookup returns the radius for element. Surrounding whitespace is ignored;
// case is not, so "CL" does not match "Cl".
func (t *Table) Lookup(element string) (float32, error) {
	symbol := strings.TrimSpace(element)
	r, ok := t.radii[symbol]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownElement, symbol)
	}
	return r, nil
}

// Has reports whether element has an entry.
func (t *Table) Has(element string) bool {
	_, ok := t.radii[strings.TrimSpace(element)]
	return ok
}

// Len returns the number of entries.
func (t *Table) Len() int {
	return len(t.radii)
}

// Elements returns the known symbols in sorted order.
func (t *Table) Elements() []string {
	out := make([]string, 0, len(t.radii))
	for element := range t.radii {
		out = append(out, element)
	}
	sort.Strings(out)
	return out
}
