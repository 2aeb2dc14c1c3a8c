// Package fastq reads and writes FASTQ files.
package fastq

import (
	"bufio"
	"errors"
	"io"
)

var (
	// ErrShort is returned when a truncated FASTQ file is encountered.
	ErrShort = errors.New("short FASTQ file")
	// ErrInvalid is returned when an invalid FASTQ file is encountered.
	ErrInvalid = errors.New("invalid FASTQ file")
	// ErrEmptySeq marks a record with no sequence.
	ErrEmptySeq = errors.New("FASTQ record with empty sequence")
	// ErrQualLength marks a record whose quality string is not the same length
	// as its sequence.
	ErrQualLength = errors.New("FASTQ record with mismatched sequence and quality lengths")
)

const maxLineLen = 64 << 20

// A Read is a FASTQ read, comprising an ID, sequence, line 3
// ("unknown"), and a quality string.
type Read struct {
	ID, Seq, Unk, Qual string
}

// Trim cuts the read and quality lengths to at most n.
func (r *Read) Trim(n int) {
	if len(r.Seq) > n {
		r.Seq = r.Seq[:n]
	}
	if len(r.Qual) > n {
		r.Qual = r.Qual[:n]
	}
}

// Name returns the read ID without the leading '@' and without anything
// after the first space.
func (r *Read) Name() string {
	id := r.ID
	if len(id) > 0 && id[0] == '@' {
		id = id[1:]
	}
	for i := 0; i < len(id); i++ {
		if id[i] == ' ' || id[i] == '\t' {
			return id[:i]
		}
	}
	return id
}

// Validate checks the record contents.  An empty quality string is allowed
// (quality is optional); otherwise it must match the sequence length.
func (r *Read) Validate() error {
	if len(r.Seq) == 0 {
		return ErrEmptySeq
	}
	if len(r.Qual) != 0 && len(r.Qual) != len(r.Seq) {
		return ErrQualLength
	}
	return nil
}

var errEOF = errors.New("eof")

// Scanner provides a convenient interface for reading FASTQ read
// data. The Scan method returns the next read, returning a boolean
// indicating whether the read succeeded. Scanners are not
// threadsafe.
//
// Structural problems (an ID line not starting with "@", a line 3 not
// starting with "+", a truncated record) stop the scan with an error, since
// the stream cannot be resynchronized.  When both Seq and Qual are requested,
// records that fail Read.Validate are skipped and counted instead.
type Scanner struct {
	b       *bufio.Scanner
	err     error
	fields  Field
	skipped int
}

// Field enumerates FASTQ fields. It is used to specify fields to read in
// NewScanner.
type Field uint

const (
	// ID causes the Read.ID field to be filled
	ID Field = 1 << iota
	// Seq causes the Read.Seq field to be filled
	Seq
	// Unk causes the Read.Unk field to be filled
	Unk
	// Qual causes the Read.Qual field to be filled
	Qual
	// All equals ID|Seq|Unk|Qual.
	All = ID | Seq | Unk | Qual
)

// NewScanner constructs a new Scanner that reads raw FASTQ data from the
// provided reader. Fields is a bitset of the fields to read. A typical value
// would be All or ID|Seq|Qual.
func NewScanner(r io.Reader, fields Field) *Scanner {
	b := bufio.NewScanner(r)
	// Long reads easily exceed bufio's default 64KB line limit.
	b.Buffer(nil, maxLineLen)
	return &Scanner{b: b, fields: fields}
}

// Scan the next well-formed read into the provided read. Scan returns a
// boolean indicating whether the scan succeeded. Once Scan returns false, it
// never returns true again. Upon completion, the user should check the Err
// method to determine whether scanning stopped because of an error or because
// the end of the stream was reached.
func (f *Scanner) Scan(read *Read) bool {
	for {
		if !f.scanRecord(read) {
			return false
		}
		if f.fields&(Seq|Qual) != Seq|Qual || read.Validate() == nil {
			return true
		}
		f.skipped++
	}
}

func (f *Scanner) scanRecord(read *Read) bool {
	if f.err != nil {
		return false
	}
	if !f.b.Scan() {
		if f.err = f.b.Err(); f.err == nil {
			f.err = errEOF
		}
		return false
	}
	id := f.b.Bytes()
	if len(id) == 0 || id[0] != '@' {
		f.err = ErrInvalid
		return false
	}
	if f.fields&ID != 0 {
		read.ID = string(id)
	}
	if !f.scan() {
		return false
	}
	if f.fields&Seq != 0 {
		read.Seq = f.b.Text()
	}
	if !f.scan() {
		return false
	}
	unk := f.b.Bytes()
	if len(unk) == 0 || unk[0] != '+' {
		f.err = ErrInvalid
		return false
	}
	if f.fields&Unk != 0 {
		read.Unk = string(unk)
	}
	if !f.scan() {
		return false
	}
	if f.fields&Qual != 0 {
		read.Qual = f.b.Text()
	}
	return true
}

func (f *Scanner) scan() bool {
	ok := f.b.Scan()
	if !ok {
		if f.err = f.b.Err(); f.err == nil {
			f.err = ErrShort
		}
	}
	return ok
}

// Skipped returns the number of records dropped so far because they failed
// Read.Validate.
func (f *Scanner) Skipped() int {
	return f.skipped
}

// Err returns the scanning error, if any.
func (f *Scanner) Err() error {
	if f.err == errEOF {
		return nil
	}
	return f.err
}
