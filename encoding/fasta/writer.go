package fasta

import (
	"bufio"
	"io"
)

// DefaultLineWidth is the number of bases per line written by Writer.
const DefaultLineWidth = 80

// Writer writes FASTA records, wrapping sequences at a fixed line width.
type Writer struct {
	w         *bufio.Writer
	lineWidth int
	err       error
}

// NewWriter creates a Writer on w.  lineWidth <= 0 selects DefaultLineWidth.
// Flush must be called after the last record.
func NewWriter(w io.Writer, lineWidth int) *Writer {
	if lineWidth <= 0 {
		lineWidth = DefaultLineWidth
	}
	return &Writer{w: bufio.NewWriter(w), lineWidth: lineWidth}
}

// Write writes one record.  header is the full header line without the
// trailing newline, including the leading '>'; it is written verbatim since
// some downstream tools parse it positionally.
func (w *Writer) Write(header string, seq []byte) error {
	if w.err != nil {
		return w.err
	}
	w.writeLine([]byte(header))
	for start := 0; start < len(seq); start += w.lineWidth {
		end := start + w.lineWidth
		if end > len(seq) {
			end = len(seq)
		}
		w.writeLine(seq[start:end])
	}
	return w.err
}

// Flush writes buffered data to the underlying writer.
func (w *Writer) Flush() error {
	if w.err != nil {
		return w.err
	}
	w.err = w.w.Flush()
	return w.err
}

func (w *Writer) writeLine(line []byte) {
	if w.err != nil {
		return
	}
	if _, w.err = w.w.Write(line); w.err == nil {
		w.err = w.w.WriteByte('\n')
	}
}
