package readqc

import (
	"math"
	"sort"

	gunsafe "github.com/grailbio/base/unsafe"
	"github.com/grailbio/plasmidqc/biosimd"
	"github.com/grailbio/plasmidqc/encoding/fastq"
)

// LengthCount is one row of the read length histogram.
type LengthCount struct {
	Length, Count int
}

// Stats summarizes a read set.  Mean, Median and StdDev are over read
// lengths; StdDev is the population standard deviation.
type Stats struct {
	Count      int
	TotalBases int64
	Min, Max   int
	Mean       float64
	Median     float64
	StdDev     float64
	// N50 is the largest length L such that reads of length >= L hold at
	// least half the bases.
	N50 int
	// MeanQual is the mean Phred score over all bases that carry a quality.
	MeanQual float64
}

// Collector accumulates read lengths and qualities.  The zero value is ready
// to use.
type Collector struct {
	counts   map[int]int
	n        int
	bases    int64
	qualSum  int64
	qualBase int64
}

// Add records one read.
func (c *Collector) Add(r *fastq.Read) {
	if c.counts == nil {
		c.counts = make(map[int]int)
	}
	c.counts[len(r.Seq)]++
	c.n++
	c.bases += int64(len(r.Seq))
	if len(r.Qual) > 0 {
		c.qualSum += int64(biosimd.PhredSum(gunsafe.StringToBytes(r.Qual)))
		c.qualBase += int64(len(r.Qual))
	}
}

// Histogram returns the length histogram in ascending length order.
func (c *Collector) Histogram() []LengthCount {
	hist := make([]LengthCount, 0, len(c.counts))
	for l, n := range c.counts {
		hist = append(hist, LengthCount{l, n})
	}
	sort.Slice(hist, func(i, j int) bool { return hist[i].Length < hist[j].Length })
	return hist
}

// Stats computes the summary statistics.  All fields are zero if no read was
// added.
func (c *Collector) Stats() Stats {
	var s Stats
	if c.n == 0 {
		return s
	}
	hist := c.Histogram()
	s.Count = c.n
	s.TotalBases = c.bases
	s.Min = hist[0].Length
	s.Max = hist[len(hist)-1].Length
	s.Mean = float64(c.bases) / float64(c.n)

	var sq float64
	for _, h := range hist {
		d := float64(h.Length) - s.Mean
		sq += d * d * float64(h.Count)
	}
	s.StdDev = math.Sqrt(sq / float64(c.n))

	s.Median = (float64(nth(hist, (c.n-1)/2)) + float64(nth(hist, c.n/2))) / 2

	var cum int64
	for i := len(hist) - 1; i >= 0; i-- {
		cum += int64(hist[i].Length) * int64(hist[i].Count)
		if 2*cum >= c.bases {
			s.N50 = hist[i].Length
			break
		}
	}
	if c.qualBase > 0 {
		s.MeanQual = float64(c.qualSum) / float64(c.qualBase)
	}
	return s
}

// nth returns the i'th smallest length (0-based).
func nth(hist []LengthCount, i int) int {
	for _, h := range hist {
		if i < h.Count {
			return h.Length
		}
		i -= h.Count
	}
	panic("readqc: index out of range")
}
