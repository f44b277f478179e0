package pdb

import (
	"errors"
	"fmt"
)

var (
	// ErrNotAnAtomRecord is returned by ParseRecord for lines not tagged ATOM.
	ErrNotAnAtomRecord = errors.New("not an ATOM record")
	// ErrMalformedRecord covers short ATOM lines and unparsable coordinates.
	ErrMalformedRecord = errors.New("malformed ATOM record")
	// ErrChainNotFound is returned by Load when a chain filter matches no atom.
	ErrChainNotFound = errors.New("chain not found in structure")
)

// RecordError describes why a single input line could not be used.
type RecordError struct {
	Line  int   // 1-based input line, 0 when unknown
	Field Field // offending column, empty when the whole line is at fault
	Err   error
}

func (e *RecordError) Error() string {
	switch {
	case e.Line > 0 && e.Field != "":
		return fmt.Sprintf("line %d: %s: %v", e.Line, e.Field, e.Err)
	case e.Line > 0:
		return fmt.Sprintf("line %d: %v", e.Line, e.Err)
	case e.Field != "":
		return fmt.Sprintf("%s: %v", e.Field, e.Err)
	default:
		return e.Err.Error()
	}
}

func (e *RecordError) Unwrap() error {
	return e.Err
}
