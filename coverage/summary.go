// Package coverage reduces per-base records to contig-level summaries and
// plot series, and writes the summary, low-confidence and plot tables.
package coverage

import (
	"fmt"

	"github.com/grailbio/plasmidqc/pileup"
)

// Status is the outcome of one (sample, contig) run.
type Status string

const (
	// StatusSuccess means every read was processed and at least one mapped.
	StatusSuccess Status = "SUCCESS"
	// StatusNoReadsMapped means no read mapped; every depth is zero.
	StatusNoReadsMapped Status = "NO_READS_MAPPED"
	// StatusTruncated means the deadline expired before all reads were
	// processed.
	StatusTruncated Status = "TRUNCATED"
)

// Summary describes coverage over one contig.
type Summary struct {
	Contig       string
	Length       int
	AverageDepth float64
	MaxDepth     uint32
	MappedReads  int
	TotalReads   int
	// MappedBases is the sum of depths over all positions.
	MappedBases int64
	// LowConfidence lists 0-based low-confidence positions in ascending order.
	LowConfidence []int
	Circular      bool
	Truncated     bool
	Status        Status
}

// Summarize computes a Summary from records, which must be in position
// order.  Contig and Circular are left for the caller to fill in.
func Summarize(records []pileup.Record, mapped, total int) Summary {
	s := Summary{
		Length:      len(records),
		MappedReads: mapped,
		TotalReads:  total,
	}
	for i := range records {
		r := &records[i]
		s.MappedBases += int64(r.Depth)
		if r.Depth > s.MaxDepth {
			s.MaxDepth = r.Depth
		}
		if r.Low {
			s.LowConfidence = append(s.LowConfidence, r.Pos)
		}
	}
	if len(records) > 0 {
		s.AverageDepth = float64(s.MappedBases) / float64(len(records))
	}
	s.Status = s.status()
	return s
}

// SetTruncated records that accumulation stopped early.
func (s *Summary) SetTruncated(truncated bool) {
	s.Truncated = truncated
	s.Status = s.status()
}

func (s *Summary) status() Status {
	switch {
	case s.Truncated:
		return StatusTruncated
	case s.MappedReads == 0:
		return StatusNoReadsMapped
	default:
		return StatusSuccess
	}
}

// CoverageString renders the average depth the way synthesis reports do,
// truncated to an integer, e.g. "37x".
func (s *Summary) CoverageString() string {
	return fmt.Sprintf("%dx", int(s.AverageDepth))
}
