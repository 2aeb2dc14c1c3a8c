package fragment

import (
	"github.com/biogo/store/llrb"
)

type key struct {
	start int
	frag  *Fragment
}

// Compare implements llrb.Comparable.
func (k key) Compare(c llrb.Comparable) int {
	return k.start - c.(key).start
}

// Index maps reference positions to fragments.
type Index struct {
	byStart llrb.Tree
	end     int
}

// NewIndex builds an Index over frags, which must not overlap.  The
// fragments are referenced, not copied.
func NewIndex(frags []Fragment) *Index {
	idx := &Index{}
	for i := range frags {
		f := &frags[i]
		idx.byStart.Insert(key{start: f.Start, frag: f})
		if f.End > idx.end {
			idx.end = f.End
		}
	}
	return idx
}

// Lookup returns the fragment containing the 0-based position pos, or nil
// if no fragment does.
func (idx *Index) Lookup(pos int) *Fragment {
	if pos < 0 || pos >= idx.end {
		return nil
	}
	c := idx.byStart.Floor(key{start: pos})
	if c == nil {
		return nil
	}
	f := c.(key).frag
	if pos >= f.End {
		return nil
	}
	return f
}

// Len returns the number of indexed fragments.
func (idx *Index) Len() int { return idx.byStart.Len() }
