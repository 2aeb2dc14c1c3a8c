package util

// isACGT marks the bytes that can take part in a match. Everything else,
// including 'N', mismatches against every base.
var isACGT = [256]bool{'A': true, 'C': true, 'G': true, 'T': true}

// Mismatches counts positions i in [0, len(a)) where a[i] != b[i], or where
// a[i] is not one of A, C, G, T.  b must be at least as long as a.
//
// The scan gives up as soon as the count exceeds limit, in which case limit+1
// is returned.  Pass len(a) to get an exact count.
func Mismatches(a, b []byte, limit int) int {
	if len(b) < len(a) {
		panic("util.Mismatches: b shorter than a")
	}
	b = b[:len(a)]
	n := 0
	for i, c := range a {
		if c != b[i] || !isACGT[c] {
			n++
			if n > limit {
				return n
			}
		}
	}
	return n
}

// Matches returns len(a) - Mismatches(a, b, len(a)).
func Matches(a, b []byte) int {
	return len(a) - Mismatches(a, b, len(a))
}
