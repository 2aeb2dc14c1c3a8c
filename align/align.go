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

// Package align places reads on a reference sequence with an ungapped,
// both-strand scan.  It is meant for checking an assembled plasmid against
// its own reads, not as a general-purpose aligner: there are no gaps, no
// clipping heuristics, and no wrap-around at the origin of circular
// references.
package align

import (
	"fmt"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/plasmidqc/biosimd"
	"github.com/grailbio/plasmidqc/util"
)

// Strand is the orientation in which a read matched the reference.
type Strand int

const (
	// Forward means the read matched as-is.
	Forward Strand = iota
	// ReverseComplement means the read's reverse complement matched.
	ReverseComplement
)

// StrandToASCIITable is the Strand -> ASCII mapping.
var StrandToASCIITable = [...]byte{'+', '-'}

func (s Strand) String() string {
	return string(StrandToASCIITable[s])
}

// Opts controls alignment.
type Opts struct {
	// MinIdentity is the lowest matches/overlap fraction that counts as
	// mapped.
	MinIdentity float64
	// MinOverlap is the smallest number of aligned reference positions that
	// counts as mapped.
	MinOverlap int
	// SeedLen enables k-mer seeding when positive: only offsets sharing an
	// exact SeedLen-mer with the read are scored.  0 scores every offset.
	SeedLen int
}

// DefaultOpts is the default alignment configuration.
var DefaultOpts = Opts{
	MinIdentity: 0.70,
	MinOverlap:  20,
	SeedLen:     0,
}

// Validate checks that the option values are in range.
func (o *Opts) Validate() error {
	if !(o.MinIdentity > 0 && o.MinIdentity <= 1) {
		return errors.E(errors.Invalid, fmt.Sprintf("align: MinIdentity must be in (0, 1], got %v", o.MinIdentity))
	}
	if o.MinOverlap < 1 {
		return errors.E(errors.Invalid, fmt.Sprintf("align: MinOverlap must be positive, got %d", o.MinOverlap))
	}
	if o.SeedLen < 0 || o.SeedLen > maxSeedLen {
		return errors.E(errors.Invalid, fmt.Sprintf("align: SeedLen must be in [0, %d], got %d", maxSeedLen, o.SeedLen))
	}
	return nil
}

// Result describes the best placement of a read.  When Mapped is false,
// Offset/Strand/Identity still describe the best candidate that was found,
// which is useful for diagnostics; Span is 0 if there was no candidate at
// all (empty read or reference, or no shared seed).
type Result struct {
	Mapped bool
	// Offset is the 0-based reference position aligned to the first base of
	// the read (or of its reverse complement).
	Offset int
	Strand Strand
	// Span is the number of aligned positions: min(readLen, refLen-Offset).
	Span int
	// Matches is the number of aligned positions where the bases agree.  'N'
	// never matches.
	Matches int
	// Identity is Matches/Span, or 0 if Span is 0.
	Identity float64
}

// End returns the exclusive end of the aligned reference interval.
func (r Result) End() int { return r.Offset + r.Span }

// Aligner aligns reads against one reference.  An Aligner keeps scratch
// buffers and is not thread-safe; use one per goroutine.
type Aligner struct {
	opts  Opts
	ref   []byte
	seeds *seedIndex
	fwd   []byte
	rc    []byte
	cands []int
}

// New creates an Aligner for ref.  ref should already be cleaned (upper-case
// ACGTN).  It is retained, not copied.
func New(ref []byte, opts Opts) (*Aligner, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	a := &Aligner{opts: opts, ref: ref}
	if opts.SeedLen > 0 {
		a.seeds = newSeedIndex(ref, opts.SeedLen)
	}
	return a, nil
}

// Opts returns the options the Aligner was created with.
func (a *Aligner) Opts() Opts { return a.opts }

// Align places read on the reference.  Both orientations are tried; within
// an orientation the offset with the most matches wins and ties go to the
// lowest offset; across orientations a tie goes to Forward.  read may be in
// either case; it is not modified.
func (a *Aligner) Align(read []byte) Result {
	if len(read) == 0 || len(a.ref) == 0 {
		return Result{}
	}
	a.fwd = resize(a.fwd, len(read))
	a.rc = resize(a.rc, len(read))
	biosimd.CleanASCIISeq(a.fwd, read)
	biosimd.ReverseComp8(a.rc, read)

	best := Result{}
	bestMatches := -1
	if off, m, ok := a.scan(a.fwd, bestMatches); ok {
		best = Result{Offset: off, Strand: Forward, Matches: m}
		bestMatches = m
	}
	// Reverse complement must strictly beat forward.
	if off, m, ok := a.scan(a.rc, bestMatches); ok {
		best = Result{Offset: off, Strand: ReverseComplement, Matches: m}
		bestMatches = m
	}
	if bestMatches < 0 {
		return Result{}
	}
	best.Span = overlap(len(read), len(a.ref))
	best.Identity = float64(best.Matches) / float64(best.Span)
	best.Mapped = best.Identity >= a.opts.MinIdentity && best.Span >= a.opts.MinOverlap
	return best
}

// overlap is the aligned length for a read at any legal offset: offsets run
// 0..refLen-readLen, so the whole read fits unless it is longer than the
// reference, in which case only offset 0 exists and the read is truncated.
func overlap(readLen, refLen int) int {
	if readLen < refLen {
		return readLen
	}
	return refLen
}

// scan finds the lowest offset whose match count strictly exceeds floor and
// is maximal among offsets of seq.  ok is false if no offset beats floor.
func (a *Aligner) scan(seq []byte, floor int) (bestOff, bestMatches int, ok bool) {
	n := overlap(len(seq), len(a.ref))
	seq = seq[:n]
	maxOff := len(a.ref) - n
	bestMatches = floor
	try := func(off int) {
		limit := n - bestMatches - 1
		if limit < 0 {
			return
		}
		if mm := util.Mismatches(seq, a.ref[off:off+n], limit); mm <= limit {
			bestOff, bestMatches, ok = off, n-mm, true
		}
	}
	if a.seeds == nil || n < a.opts.SeedLen {
		for off := 0; off <= maxOff && bestMatches < n; off++ {
			try(off)
		}
		return
	}
	a.cands = a.seeds.candidates(seq, maxOff, a.cands[:0])
	for _, off := range a.cands {
		if bestMatches >= n {
			break
		}
		try(off)
	}
	return
}

// Align aligns read against ref with DefaultOpts.
func Align(read, ref []byte) Result {
	a, err := New(ref, DefaultOpts)
	if err != nil {
		panic(err)
	}
	return a.Align(read)
}

func resize(buf []byte, n int) []byte {
	if cap(buf) < n {
		return make([]byte, n)
	}
	return buf[:n]
}
