// Copyright 2020 Grail Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package pileup accumulates per-position read evidence over a reference
// contig and turns it into per-base consensus statistics.
package pileup

import (
	"context"

	"github.com/grailbio/base/compress"
	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/plasmidqc/encoding/fasta"
)

// These constants index the per-position tally buckets.  The A/C/G/T order
// is also the consensus tie-break order.
const (
	// BaseA represents an A base.
	BaseA byte = iota
	// BaseC represents an C base.
	BaseC
	// BaseG represents an G base.
	BaseG
	// BaseT represents an T base.
	BaseT
	// BaseX is a catch-all for N and anything else outside ACGT.
	BaseX
)

const (
	// NBase is the number of regular base types.
	NBase = 4
	// NBaseEnum counts BaseX as well as the regular base types.
	NBaseEnum = 5
)

// EnumToASCIITable is the A/C/G/T/X -> ASCII mapping, with X rendered as 'N'.
var EnumToASCIITable = [...]byte{'A', 'C', 'G', 'T', 'N'}

// ASCIIToEnumTable is the ASCII -> A/C/G/T/X mapping.  Lower-case acgt map to
// their base; everything else maps to BaseX.
var ASCIIToEnumTable = func() (t [256]byte) {
	for i := range t {
		t[i] = BaseX
	}
	for e, c := range EnumToASCIITable[:NBase] {
		t[c] = byte(e)
		t[c+'a'-'A'] = byte(e)
	}
	return
}()

// Reference is one named contig.  Seq is upper-case ACGTN.
type Reference struct {
	Name string
	Seq  []byte
}

// Len returns the contig length.
func (r *Reference) Len() int { return len(r.Seq) }

// LoadReferences reads every contig of a (possibly compressed) FASTA file.
// Bases are capitalized and anything outside ACGT becomes N.  skipped counts
// records that had a header but no sequence.
func LoadReferences(ctx context.Context, fapath string) (refs []Reference, skipped int, err error) {
	var infile file.File
	if infile, err = file.Open(ctx, fapath); err != nil {
		return nil, 0, errors.E(err, "open reference", fapath)
	}
	defer file.CloseAndReport(ctx, infile, &err)
	reader, _ := compress.NewReader(infile.Reader(ctx))
	defer func() {
		if e := reader.Close(); e != nil && err == nil {
			err = e
		}
	}()
	fa, err := fasta.New(reader, fasta.OptEncoding(fasta.Clean))
	if err != nil {
		return nil, 0, errors.E(err, "read reference", fapath)
	}
	for _, name := range fa.SeqNames() {
		n, e := fa.Len(name)
		if e != nil {
			return nil, 0, e
		}
		seq, e := fa.Get(name, 0, n)
		if e != nil {
			return nil, 0, e
		}
		refs = append(refs, Reference{Name: name, Seq: []byte(seq)})
	}
	if len(refs) == 0 {
		return nil, fa.Skipped(), errors.E(errors.Invalid, "no sequences in reference", fapath)
	}
	return refs, fa.Skipped(), nil
}
