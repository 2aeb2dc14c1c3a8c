// Package fasta contains code for reading and writing FASTA files.  FASTA
// files consist of a number of named sequences that may be interrupted by
// newlines.  For example:
//
// >contig_1
// ACGTAC
// GAGGAC
// GCG
// >contig_2 circular plasmid
// ACGT
//
// Sequence names are the stretch of characters excluding spaces immediately
// after '>'.  Any text after a space is ignored, so '>contig_2 circular
// plasmid' becomes 'contig_2'.
package fasta

import (
	"bufio"
	"io"
	"strings"

	"github.com/grailbio/plasmidqc/biosimd"
	"github.com/pkg/errors"
)

const (
	bufferInitSize = 1024 * 1024 * 300 // 300 MB
)

// Encoding selects how sequence bytes are stored.
type Encoding int

const (
	// Raw keeps sequence bytes exactly as they appear in the file.
	Raw Encoding = iota
	// Clean capitalizes a/c/g/t and replaces every other byte with 'N'.
	Clean
)

type opts struct {
	enc Encoding
}

// Opt is an option to New.
type Opt func(*opts)

// OptEncoding sets the sequence encoding.  The default is Raw.
func OptEncoding(enc Encoding) Opt {
	return func(o *opts) { o.enc = enc }
}

// Fasta represents FASTA-formatted data, consisting of a set of named
// sequences.
type Fasta interface {
	// Get returns a substring of the given sequence name at the given
	// coordinates, which are treated as a 0-based half-open interval
	// [start, end). Get is thread-safe.
	Get(seqName string, start, end uint64) (string, error)

	// Len returns the length of the given sequence.
	Len(seqName string) (uint64, error)

	// SeqNames returns the names of all sequences, in the order of appearance in
	// the FASTA file.
	SeqNames() []string

	// Skipped returns the number of records that were dropped because they
	// carried no sequence.
	Skipped() int
}

type fasta struct {
	seqs     map[string]string
	seqNames []string
	skipped  int
}

// New creates a new Fasta that holds all the FASTA data from the given reader
// in memory.  Records with an empty sequence are dropped and counted (see
// Skipped); a repeated sequence name is an error.
func New(r io.Reader, optList ...Opt) (Fasta, error) {
	var o opts
	for _, opt := range optList {
		opt(&o)
	}
	f := &fasta{seqs: make(map[string]string)}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(nil, bufferInitSize)
	var (
		seqName string
		inRec   bool
		seq     []byte
	)
	flush := func() error {
		if !inRec {
			return nil
		}
		if len(seq) == 0 {
			f.skipped++
			return nil
		}
		if _, ok := f.seqs[seqName]; ok {
			return errors.Errorf("duplicate FASTA sequence name: %s", seqName)
		}
		if o.enc == Clean {
			biosimd.CleanASCIISeqInplace(seq)
		}
		f.seqs[seqName] = string(seq)
		f.seqNames = append(f.seqNames, seqName)
		seq = seq[:0]
		return nil
	}
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r \t")
		if len(line) == 0 {
			continue
		}
		if line[0] == '>' { // Start a new sequence.
			if err := flush(); err != nil {
				return nil, err
			}
			fields := strings.Fields(line[1:])
			if len(fields) == 0 {
				return nil, errors.Errorf("malformed FASTA header: %q", line)
			}
			seqName = fields[0]
			inRec = true
			continue
		}
		if !inRec {
			return nil, errors.Errorf("malformed FASTA file: sequence data before first header")
		}
		seq = append(seq, line...)
	}
	if scanner.Err() != nil {
		return nil, errors.Wrap(scanner.Err(), "couldn't read FASTA data")
	}
	if err := flush(); err != nil {
		return nil, err
	}
	return f, nil
}

// Get implements Fasta.Get().
func (f *fasta) Get(seqName string, start, end uint64) (string, error) {
	s, ok := f.seqs[seqName]
	if !ok {
		return "", errors.Errorf("sequence not found: %s", seqName)
	}
	if end <= start {
		return "", errors.Errorf("start must be less than end")
	}
	if end > uint64(len(s)) {
		return "", errors.Errorf("invalid query range %d - %d for sequence %s with length %d",
			start, end, seqName, len(s))
	}
	return s[start:end], nil
}

// Len implements Fasta.Len().
func (f *fasta) Len(seq string) (uint64, error) {
	s, ok := f.seqs[seq]
	if !ok {
		return 0, errors.Errorf("sequence not found: %s", seq)
	}
	return uint64(len(s)), nil
}

// SeqNames implements Fasta.SeqNames().
func (f *fasta) SeqNames() []string {
	return f.seqNames
}

// Skipped implements Fasta.Skipped().
func (f *fasta) Skipped() int {
	return f.skipped
}
