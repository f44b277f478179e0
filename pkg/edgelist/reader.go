package edgelist

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/golang/snappy"

	"github.com/dd0wney/cluso-pdbgraph/pkg/contact"
)

// ErrMalformedEdge is returned for a line that is not "<from> <to> <weight>".
var ErrMalformedEdge = errors.New("malformed edge line")

// Read parses a plain-text edge list back into 0-based edges.
func Read(r io.Reader) ([]contact.Edge, error) {
	scanner := bufio.NewScanner(r)
	var edges []contact.Edge

	line := 0
	for scanner.Scan() {
		line++
		e, err := ParseEdge(scanner.Text())
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		edges = append(edges, e)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read edge list: %w", err)
	}
	return edges, nil
}

// ReadSnappy parses an edge list written by NewSnappyWriter.
func ReadSnappy(r io.Reader) ([]contact.Edge, error) {
	return Read(snappy.NewReader(r))
}

// ParseEdge parses a single edge line.
func ParseEdge(s string) (contact.Edge, error) {
	fields := strings.Fields(s)
	if len(fields) != 3 {
		return contact.Edge{}, fmt.Errorf("%w: %q", ErrMalformedEdge, s)
	}

	from, err := strconv.Atoi(fields[0])
	if err != nil || from < 1 {
		return contact.Edge{}, fmt.Errorf("%w: bad from node %q", ErrMalformedEdge, fields[0])
	}
	to, err := strconv.Atoi(fields[1])
	if err != nil || to < 1 {
		return contact.Edge{}, fmt.Errorf("%w: bad to node %q", ErrMalformedEdge, fields[1])
	}
	w, err := strconv.ParseFloat(fields[2], 32)
	if err != nil {
		return contact.Edge{}, fmt.Errorf("%w: bad weight %q", ErrMalformedEdge, fields[2])
	}

	return contact.Edge{From: from - 1, To: to - 1, Weight: float32(w)}, nil
}
