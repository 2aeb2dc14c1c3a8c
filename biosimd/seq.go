// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package biosimd

import (
	"github.com/grailbio/base/simd"
)

var (
	// cleanTable maps A/C/G/T (either case) to the capital letter, and
	// everything else to 'N'.
	cleanTable [256]byte
	// revCompTable maps A/C/G/T (either case) to the capitalized complement,
	// and everything else to 'N'.
	revCompTable [256]byte
)

func init() {
	for i := range cleanTable {
		cleanTable[i] = 'N'
		revCompTable[i] = 'N'
	}
	const fwd, rev = "ACGT", "TGCA"
	for i := 0; i < 4; i++ {
		cleanTable[fwd[i]] = fwd[i]
		cleanTable[fwd[i]+'a'-'A'] = fwd[i]
		revCompTable[fwd[i]] = rev[i]
		revCompTable[fwd[i]+'a'-'A'] = rev[i]
	}
}

// CleanASCIISeqInplace capitalizes 'a'/'c'/'g'/'t', and replaces everything
// non-ACGT with 'N'.
func CleanASCIISeqInplace(ascii8 []byte) {
	for pos, c := range ascii8 {
		ascii8[pos] = cleanTable[c]
	}
}

// CleanASCIISeq writes the cleaned form of src[] to dst[], with the same
// mapping as CleanASCIISeqInplace.
//
// It panics if len(dst) != len(src).
func CleanASCIISeq(dst, src []byte) {
	if len(dst) != len(src) {
		panic("CleanASCIISeq requires len(dst) == len(src).")
	}
	for pos, c := range src {
		dst[pos] = cleanTable[c]
	}
}

// ReverseComp8 writes the reverse complement of src[] to dst[].  'A'/'a'
// maps to 'T', 'C'/'c' to 'G', 'G'/'g' to 'C', 'T'/'t' to 'A', and everything
// else to 'N'.
//
// It panics if len(dst) != len(src).
func ReverseComp8(dst, src []byte) {
	n := len(src)
	if len(dst) != n {
		panic("ReverseComp8 requires len(dst) == len(src).")
	}
	for i, c := range src {
		dst[n-1-i] = revCompTable[c]
	}
}

// ReverseComp8Inplace reverse-complements ascii8[] using the same mapping as
// ReverseComp8.
func ReverseComp8Inplace(ascii8 []byte) {
	n := len(ascii8)
	half := n >> 1
	for idx, invIdx := 0, n-1; idx != half; idx, invIdx = idx+1, invIdx-1 {
		ascii8[idx], ascii8[invIdx] = revCompTable[ascii8[invIdx]], revCompTable[ascii8[idx]]
	}
	if n&1 == 1 {
		ascii8[half] = revCompTable[ascii8[half]]
	}
}

// Reverse8 writes src[] in reverse order to dst[].  Used to flip quality
// strings along with their reverse-complemented sequence.
func Reverse8(dst, src []byte) {
	n := len(src)
	if len(dst) != n {
		panic("Reverse8 requires len(dst) == len(src).")
	}
	for i, c := range src {
		dst[n-1-i] = c
	}
}

// PhredSum returns the sum of Phred scores in an ASCII-33 quality string.
// Bytes at or below '!' contribute nothing.
func PhredSum(qual []byte) int {
	if len(qual) == 0 {
		return 0
	}
	if simd.FirstLeq8(qual, '!'-1, 0) == len(qual) {
		// '!' itself is Q0, so no byte needs masking.
		return simd.Accumulate8(qual) - len(qual)*int('!')
	}
	sum := 0
	for _, q := range qual {
		if q > '!' {
			sum += int(q - '!')
		}
	}
	return sum
}
