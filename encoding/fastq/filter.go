package fastq

import (
	"io"
	"math/rand"

	"github.com/pkg/errors"
)

// FilterStats counts the reads seen by Filter.
type FilterStats struct {
	// Total is the number of well-formed reads read.
	Total int
	// Kept is the number of reads written.
	Kept int
	// Skipped is the number of malformed records dropped.
	Skipped int
}

// Filter copies the reads of in for which keep returns true to out.
func Filter(in io.Reader, out io.Writer, keep func(r *Read) bool) (stats FilterStats, err error) {
	var (
		sc = NewScanner(in, All)
		w  = NewWriter(out)
		r  Read
	)
	for sc.Scan(&r) {
		stats.Total++
		if !keep(&r) {
			continue
		}
		if err = w.Write(&r); err != nil {
			return stats, errors.Wrap(err, "error writing FASTQ output")
		}
		stats.Kept++
	}
	stats.Skipped = sc.Skipped()
	if err = sc.Err(); err != nil {
		return stats, errors.Wrap(err, "error reading FASTQ input")
	}
	if err = w.Flush(); err != nil {
		return stats, errors.Wrap(err, "error writing FASTQ output")
	}
	return stats, nil
}

// MinLength returns a Filter predicate that keeps reads at least n bases long.
func MinLength(n int) func(r *Read) bool {
	return func(r *Read) bool { return len(r.Seq) >= n }
}

// Downsample writes reads from in to out. Reads are randomly selected for
// inclusion in the output at the given sampling rate, using a generator
// seeded with seed so that runs are reproducible.
func Downsample(rate float64, seed int64, in io.Reader, out io.Writer) (FilterStats, error) {
	keep, err := Sample(rate, seed)
	if err != nil {
		return FilterStats{}, err
	}
	return Filter(in, out, keep)
}

// Sample returns a Filter predicate that keeps each read with probability
// rate.  The predicate is stateful and not thread-safe.
func Sample(rate float64, seed int64) (func(r *Read) bool, error) {
	if rate < 0.0 || rate > 1.0 {
		return nil, errors.New("rate must be between 0 and 1 (inclusive)")
	}
	random := rand.New(rand.NewSource(seed))
	return func(*Read) bool {
		return random.Float64() < rate
	}, nil
}

// And combines Filter predicates; a read is kept only if every predicate
// keeps it.  Predicates after the first rejecting one are not called.
func And(preds ...func(r *Read) bool) func(r *Read) bool {
	return func(r *Read) bool {
		for _, p := range preds {
			if !p(r) {
				return false
			}
		}
		return true
	}
}
