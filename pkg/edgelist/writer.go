// Package edgelist reads and writes the plain-text weighted edge list:
// one "<from> <to> <weight>" line per edge, 1-based node numbers.
package edgelist

import (
	"bufio"
	"fmt"
	"io"
	"strconv"

	"github.com/golang/snappy"

	"github.com/dd0wney/cluso-pdbgraph/pkg/contact"
)

// Writer serialises edges. It buffers; call Flush (or Close for snappy
// output) when done.
type Writer struct {
	buf     *bufio.Writer
	closer  io.Closer
	line    []byte
	written int
}

// NewWriter writes plain text to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{
		buf:  bufio.NewWriterSize(w, 64*1024),
		line: make([]byte, 0, 48),
	}
}

// NewSnappyWriter writes the same text through a snappy framed stream.
func NewSnappyWriter(w io.Writer) *Writer {
	sw := snappy.NewBufferedWriter(w)
	out := NewWriter(sw)
	out.closer = sw
	return out
}

// AppendEdge appends the text form of e, newline included, to dst.
func AppendEdge(dst []byte, e contact.Edge) []byte {
	dst = strconv.AppendInt(dst, int64(e.From)+1, 10)
	dst = append(dst, ' ')
	dst = strconv.AppendInt(dst, int64(e.To)+1, 10)
	dst = append(dst, ' ')
	dst = strconv.AppendFloat(dst, float64(e.Weight), 'f', -1, 32)
	return append(dst, '\n')
}

// FormatWeight renders a weight the way the writer does: the shortest
// decimal that reads back to the same float32, never in exponent form.
func FormatWeight(w float32) string {
	return strconv.FormatFloat(float64(w), 'f', -1, 32)
}

// WriteEdge writes one edge.
func (w *Writer) WriteEdge(e contact.Edge) error {
	w.line = AppendEdge(w.line[:0], e)
	if _, err := w.buf.Write(w.line); err != nil {
		return fmt.Errorf("failed to write edge %d: %w", w.written+1, err)
	}
	w.written++
	return nil
}

// Write writes edges in order.
func (w *Writer) Write(edges []contact.Edge) error {
	for _, e := range edges {
		if err := w.WriteEdge(e); err != nil {
			return err
		}
	}
	return nil
}

// Written returns the number of edges written so far.
func (w *Writer) Written() int {
	return w.written
}

// Flush pushes buffered text to the underlying writer.
func (w *Writer) Flush() error {
	if err := w.buf.Flush(); err != nil {
		return fmt.Errorf("failed to flush edge list: %w", err)
	}
	if f, ok := w.closer.(interface{ Flush() error }); ok {
		if err := f.Flush(); err != nil {
			return fmt.Errorf("failed to flush compressed edge list: %w", err)
		}
	}
	return nil
}

// Close flushes and, for snappy output, terminates the compressed stream.
// It does not close the writer passed to the constructor.
func (w *Writer) Close() error {
	if err := w.buf.Flush(); err != nil {
		return fmt.Errorf("failed to flush edge list: %w", err)
	}
	if w.closer != nil {
		if err := w.closer.Close(); err != nil {
			return fmt.Errorf("failed to close compressed edge list: %w", err)
		}
	}
	return nil
}
