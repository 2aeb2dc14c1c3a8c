// Package fragment cuts a reference sequence into fixed-size consecutive
// pieces, writes them as individual FASTA files, and maps reference
// positions back to the piece that holds them.
package fragment

import (
	"fmt"

	"github.com/grailbio/base/errors"
)

// DefaultSize is the fragment length used by the synthesis workflow.
const DefaultSize = 2000

// Fragment is one consecutive piece of a reference.
type Fragment struct {
	// Index is 1-based.
	Index int
	// Start and End are a 0-based half-open interval on the reference.
	Start, End int
	// Seq aliases the reference sequence.
	Seq []byte
}

// Len returns End-Start.
func (f *Fragment) Len() int { return f.End - f.Start }

// Split cuts seq into ceil(len(seq)/size) fragments of length size; the last
// one holds the remainder.  Fragments are verbatim slices of seq, with no
// overlap or padding.  An empty seq yields no fragments.
func Split(seq []byte, size int) ([]Fragment, error) {
	if size <= 0 {
		return nil, errors.E(errors.Invalid, fmt.Sprintf("fragment.Split: size must be positive, got %d", size))
	}
	n := (len(seq) + size - 1) / size
	frags := make([]Fragment, n)
	for i := range frags {
		start := i * size
		end := start + size
		if end > len(seq) {
			end = len(seq)
		}
		frags[i] = Fragment{Index: i + 1, Start: start, End: end, Seq: seq[start:end:end]}
	}
	return frags, nil
}

// Header returns the FASTA header line for the fragment with the given
// 1-based index.  The format is fixed; synthesis order sheets key on it.
func Header(index int) string {
	return fmt.Sprintf("> %d.0", index)
}

// Prefix returns the file-name prefix for a contig's fragments: the sample
// name alone when the reference has a single contig, else sample_contig.
func Prefix(sample, contig string, nContigs int) string {
	if nContigs <= 1 {
		return sample
	}
	return sample + "_" + contig
}

// DirName returns the directory that holds a sample's fragment files for
// the given fragment size, e.g. "s1_2k_fragmented".
func DirName(sample string, size int) string {
	if size%1000 == 0 {
		return fmt.Sprintf("%s_%dk_fragmented", sample, size/1000)
	}
	return fmt.Sprintf("%s_%d_fragmented", sample, size)
}

// FileName returns the name of the FASTA file holding fragment index.
func FileName(prefix string, index int) string {
	return fmt.Sprintf("%s_part%d.fasta", prefix, index)
}
