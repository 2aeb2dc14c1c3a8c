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

package pileup

import (
	"bytes"
	"context"
	"fmt"
	"runtime"

	farm "github.com/dgryski/go-farm"
	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/traverse"
	gunsafe "github.com/grailbio/base/unsafe"
	"github.com/grailbio/plasmidqc/align"
	"github.com/grailbio/plasmidqc/biosimd"
	"github.com/grailbio/plasmidqc/encoding/fastq"
)

// Accumulator holds per-position evidence for one reference contig.  All
// per-position slices have length Ref.Len().
type Accumulator struct {
	Ref *Reference
	// Depth is the number of mapped reads covering each position.
	Depth []uint32
	// Counts tallies the observed base at each position, indexed by
	// BaseA..BaseX.
	Counts [][NBaseEnum]uint32
	// QualSum and QualN accumulate Phred scores of observations that carried
	// a quality string.
	QualSum []uint64
	QualN   []uint32
	// Mapped and Total count reads.
	Mapped, Total int
	// Truncated is set when accumulation stopped before every read was seen.
	Truncated bool
}

// NewAccumulator returns an empty Accumulator for ref.
func NewAccumulator(ref *Reference) *Accumulator {
	n := ref.Len()
	return &Accumulator{
		Ref:     ref,
		Depth:   make([]uint32, n),
		Counts:  make([][NBaseEnum]uint32, n),
		QualSum: make([]uint64, n),
		QualN:   make([]uint32, n),
	}
}

// AddMapped records a read already placed at offset, with seq (and qual, if
// non-empty) given in reference orientation.  Bases past the end of the
// reference are ignored.  It does not touch the read counters.
func (a *Accumulator) AddMapped(seq, qual []byte, offset int) {
	n := len(seq)
	if rem := a.Ref.Len() - offset; n > rem {
		n = rem
	}
	if offset < 0 || n <= 0 {
		return
	}
	depth := a.Depth[offset : offset+n]
	counts := a.Counts[offset : offset+n]
	for i := range depth {
		depth[i]++
		counts[i][ASCIIToEnumTable[seq[i]]]++
	}
	if len(qual) < n {
		return
	}
	qsum := a.QualSum[offset : offset+n]
	qn := a.QualN[offset : offset+n]
	for i := range qsum {
		if q := qual[i]; q > '!' {
			qsum[i] += uint64(q - '!')
		}
		qn[i]++
	}
}

// Merge adds the evidence in b to a.  Both must describe the same reference.
func (a *Accumulator) Merge(b *Accumulator) error {
	if a.Ref.Name != b.Ref.Name || a.Ref.Len() != b.Ref.Len() {
		return errors.E(errors.Invalid, fmt.Sprintf("pileup.Merge: reference mismatch (%s/%d vs %s/%d)",
			a.Ref.Name, a.Ref.Len(), b.Ref.Name, b.Ref.Len()))
	}
	for i := range a.Depth {
		a.Depth[i] += b.Depth[i]
		for e := range a.Counts[i] {
			a.Counts[i][e] += b.Counts[i][e]
		}
		a.QualSum[i] += b.QualSum[i]
		a.QualN[i] += b.QualN[i]
	}
	a.Mapped += b.Mapped
	a.Total += b.Total
	a.Truncated = a.Truncated || b.Truncated
	return nil
}

// Alignment is a mapped read kept for export.
type Alignment struct {
	// ReadIdx indexes the reads slice passed to Accumulate.
	ReadIdx int
	align.Result
}

// Opts controls Accumulate.
type Opts struct {
	// Align configures the aligner.
	Align align.Opts
	// Parallelism is the number of worker goroutines; 0 means
	// runtime.NumCPU().
	Parallelism int
	// KeepAlignments makes Accumulate return the mapped reads' placements.
	KeepAlignments bool
}

// DefaultOpts is the default Accumulate configuration.
var DefaultOpts = Opts{
	Align: align.DefaultOpts,
}

// checkInterval is how many reads a worker processes between context checks.
const checkInterval = 256

// worker accumulates one contiguous slice of reads.
type worker struct {
	acc     *Accumulator
	aligner *align.Aligner
	// memo caches results for identical read sequences.
	memo    map[uint64][]memoEntry
	rcBuf   []byte
	qualBuf []byte
	kept    []Alignment
}

type memoEntry struct {
	seq string
	res align.Result
}

func newWorker(ref *Reference, opts align.Opts) (*worker, error) {
	aligner, err := align.New(ref.Seq, opts)
	if err != nil {
		return nil, err
	}
	return &worker{
		acc:     NewAccumulator(ref),
		aligner: aligner,
		memo:    make(map[uint64][]memoEntry),
	}, nil
}

func (w *worker) align(seq string) align.Result {
	key := farm.Fingerprint64(gunsafe.StringToBytes(seq))
	for _, e := range w.memo[key] {
		if e.seq == seq {
			return e.res
		}
	}
	res := w.aligner.Align(gunsafe.StringToBytes(seq))
	w.memo[key] = append(w.memo[key], memoEntry{seq: seq, res: res})
	return res
}

// add aligns one read and records it.
func (w *worker) add(read *fastq.Read) align.Result {
	w.acc.Total++
	res := w.align(read.Seq)
	if !res.Mapped {
		return res
	}
	w.acc.Mapped++
	seq := gunsafe.StringToBytes(read.Seq)
	qual := gunsafe.StringToBytes(read.Qual)
	if res.Strand == align.ReverseComplement {
		w.rcBuf = resize(w.rcBuf, len(seq))
		biosimd.ReverseComp8(w.rcBuf, seq)
		seq = w.rcBuf
		if len(qual) > 0 {
			w.qualBuf = resize(w.qualBuf, len(qual))
			biosimd.Reverse8(w.qualBuf, qual)
			qual = w.qualBuf
		}
	}
	w.acc.AddMapped(seq, qual, res.Offset)
	return res
}

func resize(buf []byte, n int) []byte {
	if cap(buf) < n {
		return make([]byte, n)
	}
	return buf[:n]
}

// Add aligns read against a.Ref and records it.  It is a convenience for
// single reads; Accumulate is the bulk path.
func (a *Accumulator) Add(read *fastq.Read, opts align.Opts) (align.Result, error) {
	w, err := newWorker(a.Ref, opts)
	if err != nil {
		return align.Result{}, err
	}
	res := w.add(read)
	return res, a.Merge(w.acc)
}

// Accumulate aligns reads against ref and returns the merged evidence, plus
// the placements of mapped reads when opts.KeepAlignments is set (sorted by
// read index).
//
// Reads are split into opts.Parallelism contiguous chunks, each processed by
// its own goroutine and Accumulator; the partial results are summed.  If ctx
// is done before all reads are processed, the remaining reads are abandoned
// and the returned Accumulator has Truncated set.  This is not an error:
// depths only ever grow, so partial results stay consistent.
func Accumulate(ctx context.Context, ref *Reference, reads []fastq.Read, opts Opts) (*Accumulator, []Alignment, error) {
	if err := opts.Align.Validate(); err != nil {
		return nil, nil, err
	}
	parallelism := opts.Parallelism
	if parallelism < 0 {
		return nil, nil, errors.E(errors.Invalid, fmt.Sprintf("pileup.Accumulate: negative parallelism %d", parallelism))
	}
	if parallelism == 0 {
		parallelism = runtime.NumCPU()
	}
	if parallelism > len(reads) {
		parallelism = len(reads)
	}
	if parallelism == 0 {
		return NewAccumulator(ref), nil, nil
	}
	workers := make([]*worker, parallelism)
	err := traverse.Each(parallelism, func(jobIdx int) error {
		startIdx := (jobIdx * len(reads)) / parallelism
		endIdx := ((jobIdx + 1) * len(reads)) / parallelism
		w, err := newWorker(ref, opts.Align)
		if err != nil {
			return err
		}
		workers[jobIdx] = w
		for i := startIdx; i < endIdx; i++ {
			if (i-startIdx)%checkInterval == 0 && ctx.Err() != nil {
				w.acc.Truncated = true
				return nil
			}
			res := w.add(&reads[i])
			if res.Mapped && opts.KeepAlignments {
				w.kept = append(w.kept, Alignment{ReadIdx: i, Result: res})
			}
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	acc := workers[0].acc
	kept := workers[0].kept
	for _, w := range workers[1:] {
		if err := acc.Merge(w.acc); err != nil {
			return nil, nil, err
		}
		kept = append(kept, w.kept...)
	}
	return acc, kept, nil
}

// Equal reports whether two accumulators hold the same evidence.
func (a *Accumulator) Equal(b *Accumulator) bool {
	if a.Ref.Name != b.Ref.Name || !bytes.Equal(a.Ref.Seq, b.Ref.Seq) ||
		a.Mapped != b.Mapped || a.Total != b.Total || a.Truncated != b.Truncated {
		return false
	}
	for i := range a.Depth {
		if a.Depth[i] != b.Depth[i] || a.Counts[i] != b.Counts[i] ||
			a.QualSum[i] != b.QualSum[i] || a.QualN[i] != b.QualN[i] {
			return false
		}
	}
	return true
}
