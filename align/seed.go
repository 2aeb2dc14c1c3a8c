package align

import "sort"

// maxSeedLen is the longest k-mer that fits in a uint64 at 2 bits per base.
const maxSeedLen = 32

var baseTo2bit = func() (t [256]int8) {
	for i := range t {
		t[i] = -1
	}
	t['A'], t['C'], t['G'], t['T'] = 0, 1, 2, 3
	return
}()

// seedIndex maps every N-free k-mer of the reference to the positions where
// it starts.
type seedIndex struct {
	k    int
	mask uint64
	pos  map[uint64][]int
}

func newSeedIndex(ref []byte, k int) *seedIndex {
	idx := &seedIndex{k: k, pos: make(map[uint64][]int)}
	if k < 32 {
		idx.mask = 1<<(2*uint(k)) - 1
	} else {
		idx.mask = ^uint64(0)
	}
	idx.each(ref, func(kmer uint64, i int) {
		idx.pos[kmer] = append(idx.pos[kmer], i)
	})
	return idx
}

// each calls fn for every N-free k-mer of seq with its start position.
func (idx *seedIndex) each(seq []byte, fn func(kmer uint64, start int)) {
	var (
		kmer  uint64
		valid int
	)
	for i, c := range seq {
		b := baseTo2bit[c]
		if b < 0 {
			valid = 0
			kmer = 0
			continue
		}
		kmer = (kmer<<2 | uint64(b)) & idx.mask
		valid++
		if valid >= idx.k {
			fn(kmer, i-idx.k+1)
		}
	}
}

// candidates appends to dst, in ascending order and without duplicates, the
// offsets in [0, maxOff] implied by exact k-mer hits between seq and the
// reference.
func (idx *seedIndex) candidates(seq []byte, maxOff int, dst []int) []int {
	idx.each(seq, func(kmer uint64, j int) {
		for _, p := range idx.pos[kmer] {
			if off := p - j; off >= 0 && off <= maxOff {
				dst = append(dst, off)
			}
		}
	})
	if len(dst) < 2 {
		return dst
	}
	sort.Ints(dst)
	n := 1
	for _, off := range dst[1:] {
		if off != dst[n-1] {
			dst[n] = off
			n++
		}
	}
	return dst[:n]
}
