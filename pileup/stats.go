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

// Positions with depth below MinConfidentDepth, or with VAF below
// MinConfidentVAF, are flagged low-confidence.  Downstream reports depend on
// these exact values.
const (
	MinConfidentDepth = 3
	MinConfidentVAF   = 0.8
)

// Record is the per-base view of one reference position.
type Record struct {
	// Pos is 0-based.
	Pos int
	// Ref is the reference base.
	Ref byte
	// Consensus is the most-observed base (see Derive for tie-breaks).
	Consensus byte
	Depth     uint32
	Counts    [NBaseEnum]uint32
	// VAF is Counts[Consensus]/Depth, or exactly 0 when Depth is 0.
	VAF float64
	// MeanQual is the mean Phred score of observations carrying quality, or 0.
	MeanQual float64
	// Low marks a low-confidence position.
	Low bool
}

// Match returns the number of observations agreeing with the reference base.
func (r *Record) Match() uint32 {
	return r.Counts[ASCIIToEnumTable[r.Ref]]
}

// IsLowConfidence is the low-confidence rule.
func IsLowConfidence(depth uint32, vaf float64) bool {
	return depth < MinConfidentDepth || vaf < MinConfidentVAF
}

// consensus picks the winning bucket at one position.  ACGT buckets are
// compared first: the reference base wins a tie for the maximum, otherwise
// the lowest of A<C<G<T does.  BaseX wins only if no ACGT base was observed.
func consensus(counts *[NBaseEnum]uint32, refEnum byte) byte {
	best := BaseX
	var bestCount uint32
	for e := BaseA; e <= BaseT; e++ {
		c := counts[e]
		if c == 0 {
			continue
		}
		if c > bestCount || (c == bestCount && e == refEnum) {
			best, bestCount = e, c
		}
	}
	return best
}

// Derive converts accumulated evidence into one Record per reference
// position, in position order.  It does not modify acc.
func Derive(acc *Accumulator) []Record {
	ref := acc.Ref.Seq
	records := make([]Record, len(ref))
	for i := range records {
		r := &records[i]
		r.Pos = i
		r.Ref = ref[i]
		r.Depth = acc.Depth[i]
		r.Counts = acc.Counts[i]
		if r.Depth == 0 {
			r.Consensus = r.Ref
			r.VAF = 0
		} else {
			e := consensus(&r.Counts, ASCIIToEnumTable[r.Ref])
			r.Consensus = EnumToASCIITable[e]
			r.VAF = float64(r.Counts[e]) / float64(r.Depth)
		}
		if acc.QualN[i] > 0 {
			r.MeanQual = float64(acc.QualSum[i]) / float64(acc.QualN[i])
		}
		r.Low = IsLowConfidence(r.Depth, r.VAF)
	}
	return records
}
