// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package biosimd_test

import (
	"bytes"
	"math/rand"
	"testing"

	"github.com/grailbio/plasmidqc/biosimd"
	"github.com/grailbio/testutil/expect"
)

var revCompRandTable = [...]byte{
	'A', 'C', 'G', 'T', 'N', 'a', 'c', 'g', 't', 'n', '0', 0}

func reverseComp8Slow(src []byte) []byte {
	comp := map[byte]byte{'A': 'T', 'C': 'G', 'G': 'C', 'T': 'A', 'a': 'T', 'c': 'G', 'g': 'C', 't': 'A'}
	dst := make([]byte, len(src))
	for i, c := range src {
		d, ok := comp[c]
		if !ok {
			d = 'N'
		}
		dst[len(src)-1-i] = d
	}
	return dst
}

func TestReverseComp8(t *testing.T) {
	for iter := 0; iter < 200; iter++ {
		n := rand.Intn(300)
		src := make([]byte, n)
		for i := range src {
			src[i] = revCompRandTable[rand.Intn(len(revCompRandTable))]
		}
		want := reverseComp8Slow(src)
		dst := make([]byte, n)
		biosimd.ReverseComp8(dst, src)
		if !bytes.Equal(dst, want) {
			t.Fatalf("ReverseComp8(%q): got %q, want %q", src, dst, want)
		}
		biosimd.ReverseComp8Inplace(src)
		if !bytes.Equal(src, want) {
			t.Fatalf("ReverseComp8Inplace: got %q, want %q", src, want)
		}
	}
}

func TestCleanAndReverse(t *testing.T) {
	seq := []byte("acgTRyN-")
	biosimd.CleanASCIISeqInplace(seq)
	expect.EQ(t, string(seq), "ACGTNNNN")

	qual := []byte("!#+5")
	rev := make([]byte, len(qual))
	biosimd.Reverse8(rev, qual)
	expect.EQ(t, string(rev), "5+#!")
}

func TestPhredSum(t *testing.T) {
	expect.EQ(t, biosimd.PhredSum(nil), 0)
	expect.EQ(t, biosimd.PhredSum([]byte("!!!")), 0)
	// '#' = 2, '+' = 10, '5' = 20, 'I' = 40.
	expect.EQ(t, biosimd.PhredSum([]byte("#+5I")), 72)
	// Bytes below '!' are not Phred scores.
	expect.EQ(t, biosimd.PhredSum([]byte("# I")), 42)
	expect.EQ(t, biosimd.PhredSum([]byte("\x00+")), 10)
	long := bytes.Repeat([]byte("5"), 1000)
	expect.EQ(t, biosimd.PhredSum(long), 20000)
}

func TestCleanASCIISeq(t *testing.T) {
	src := []byte("acgtACGTnR-")
	dst := make([]byte, len(src))
	biosimd.CleanASCIISeq(dst, src)
	expect.EQ(t, string(dst), "ACGTACGTNNN")
	expect.EQ(t, string(src), "acgtACGTnR-")
}
