package pdb

import (
	"fmt"
	"strconv"
	"strings"
)

// Atom is one parsed ATOM record. Position and Element drive graph
// construction; the remaining fields are carried for filtering and reporting.
type Atom struct {
	Position [3]float32
	Element  string

	Serial     int
	Name       string
	Residue    string
	Chain      string
	ResidueSeq int
}

// IsAtomRecord reports whether line is tagged ATOM.
func IsAtomRecord(line string) bool {
	return strings.HasPrefix(line, AtomTag)
}

// ParseRecord extracts coordinates and element from an ATOM line. The element
// is trimmed but not validated against any radius table.
func ParseRecord(line string) (Atom, error) {
	if !IsAtomRecord(line) {
		return Atom{}, &RecordError{Err: ErrNotAnAtomRecord}
	}
	if len(line) < MinRecordLength {
		return Atom{}, &RecordError{
			Err: fmt.Errorf("%w: %d columns, need %d", ErrMalformedRecord, len(line), MinRecordLength),
		}
	}

	var atom Atom
	for axis, f := range coordinateFields {
		raw, _ := slice(line, f)
		v, err := parseCoordinate(raw)
		if err != nil {
			return Atom{}, &RecordError{
				Field: f,
				Err:   fmt.Errorf("%w: %q is not a number", ErrMalformedRecord, raw),
			}
		}
		atom.Position[axis] = float32(v)
	}

	element, _ := slice(line, FieldElement)
	atom.Element = strings.TrimSpace(element)

	// Descriptive columns never fail a record.
	atom.Serial, _ = strconv.Atoi(strings.TrimSpace(sliceLoose(line, FieldSerial)))
	atom.Name = strings.TrimSpace(sliceLoose(line, FieldName))
	atom.Residue = strings.TrimSpace(sliceLoose(line, FieldResidue))
	atom.Chain = strings.TrimSpace(sliceLoose(line, FieldChain))
	atom.ResidueSeq, _ = strconv.Atoi(strings.TrimSpace(sliceLoose(line, FieldResidueSeq)))

	return atom, nil
}

// parseCoordinate accepts plain decimal notation only. ParseFloat would also
// take hex floats and underscore separators, which are not valid columns.
func parseCoordinate(raw string) (float64, error) {
	s := strings.TrimSpace(raw)
	if strings.ContainsAny(s, "xX_") {
		return 0, strconv.ErrSyntax
	}
	return strconv.ParseFloat(s, 32)
}
