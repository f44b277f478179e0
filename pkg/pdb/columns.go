// Package pdb reads ATOM records from fixed-column PDB text.
package pdb

// Span is a half-open byte range [Start, End) within a record line.
type Span struct {
	Start int
	End   int
}

// Field names a logical column of an ATOM record.
type Field string

const (
	FieldRecord     Field = "record"
	FieldSerial     Field = "serial"
	FieldName       Field = "name"
	FieldResidue    Field = "residue"
	FieldChain      Field = "chain"
	FieldResidueSeq Field = "residue_seq"
	FieldX          Field = "x"
	FieldY          Field = "y"
	FieldZ          Field = "z"
	FieldElement    Field = "element"
)

// Columns maps each field to its byte range. PDB documents columns 1-based
// inclusive; X is columns 31-38, which is Span{30, 38} here.
var Columns = map[Field]Span{
	FieldRecord:     {0, 4},
	FieldSerial:     {6, 11},
	FieldName:       {12, 16},
	FieldResidue:    {17, 20},
	FieldChain:      {21, 22},
	FieldResidueSeq: {22, 26},
	FieldX:          {30, 38},
	FieldY:          {38, 46},
	FieldZ:          {46, 54},
	FieldElement:    {76, 78},
}

// AtomTag is the record tag that marks an atom line.
const AtomTag = "ATOM"

// MinRecordLength is the shortest ATOM line that still carries every required
// field. It ends at the element column.
var MinRecordLength = Columns[FieldElement].End

// coordinateFields in axis order.
var coordinateFields = [3]Field{FieldX, FieldY, FieldZ}

// slice returns the raw text of f in line, or false when line is too short.
func slice(line string, f Field) (string, bool) {
	span := Columns[f]
	if len(line) < span.End {
		return "", false
	}
	return line[span.Start:span.End], true
}

// sliceLoose returns whatever part of f's span is present in line.
func sliceLoose(line string, f Field) string {
	span := Columns[f]
	if len(line) <= span.Start {
		return ""
	}
	end := span.End
	if len(line) < end {
		end = len(line)
	}
	return line[span.Start:end]
}
