package coverage

import (
	"context"
	"strconv"

	"github.com/grailbio/plasmidqc/encoding/tsvfile"
	"github.com/grailbio/plasmidqc/fragment"
	"github.com/grailbio/plasmidqc/pileup"
)

// MaxLowConfidenceRows caps the low-confidence table.
const MaxLowConfidenceRows = 100

// Sample holds the per-sample columns of the summary table.
type Sample struct {
	Name       string
	TotalReads int
	TotalBases int64
	// ReadsDigest identifies the read set independently of read order.
	ReadsDigest string
	RunID       string
}

// SummaryHeader is the header line of the summary table.
const SummaryHeader = "#SAMPLE\tTOTAL_READS\tTOTAL_BASES\tCONTIG\tLENGTH\tMAPPED_READS\tMAPPED_BASES\tCOVERAGE\tMAX_DEPTH\tLOW_CONFIDENCE\tCIRCULAR\tSTATUS\tREADS_DIGEST\tRUN_ID"

// WriteSummaries writes one summary row per contig.
func WriteSummaries(ctx context.Context, path string, sample Sample, summaries []Summary) (err error) {
	out, err := tsvfile.Create(ctx, path, 1)
	if err != nil {
		return err
	}
	defer tsvfile.CloseAndReport(ctx, out, &err)
	out.WriteString(SummaryHeader)
	if err = out.EndLine(); err != nil {
		return
	}
	for i := range summaries {
		s := &summaries[i]
		out.WriteString(sample.Name)
		out.WriteInt64(int64(sample.TotalReads))
		out.WriteInt64(sample.TotalBases)
		out.WriteString(s.Contig)
		out.WriteInt64(int64(s.Length))
		out.WriteInt64(int64(s.MappedReads))
		out.WriteInt64(s.MappedBases)
		out.WriteString(s.CoverageString())
		out.WriteUint32(s.MaxDepth)
		out.WriteInt64(int64(len(s.LowConfidence)))
		out.WriteString(strconv.FormatBool(s.Circular))
		out.WriteString(string(s.Status))
		out.WriteString(sample.ReadsDigest)
		out.WriteString(sample.RunID)
		if err = out.EndLine(); err != nil {
			return
		}
	}
	return nil
}

// LowConfidenceHeader is the header line of the low-confidence table.
const LowConfidenceHeader = "#CONTIG\tPOS\tREF\tBASE\tDEPTH\tVAF\tFRAGMENT"

// WriteLowConfidence writes up to maxRows rows for the positions listed in
// s.LowConfidence.  records must be the records s was computed from.  If idx
// is non-nil the FRAGMENT column holds the index of the fragment containing
// each position, else ".".  maxRows <= 0 means MaxLowConfidenceRows.
func WriteLowConfidence(ctx context.Context, path string, s *Summary, records []pileup.Record, idx *fragment.Index, maxRows int) (err error) {
	if maxRows <= 0 {
		maxRows = MaxLowConfidenceRows
	}
	out, err := tsvfile.Create(ctx, path, 1)
	if err != nil {
		return err
	}
	defer tsvfile.CloseAndReport(ctx, out, &err)
	out.WriteString(LowConfidenceHeader)
	if err = out.EndLine(); err != nil {
		return
	}
	positions := s.LowConfidence
	if len(positions) > maxRows {
		positions = positions[:maxRows]
	}
	for _, pos := range positions {
		r := &records[pos]
		out.WriteString(s.Contig)
		out.WriteInt64(int64(pos + 1))
		out.WriteByte(r.Ref)
		out.WriteByte(r.Consensus)
		out.WriteUint32(r.Depth)
		out.WriteString(pileup.FormatVAF(r.VAF))
		var f *fragment.Fragment
		if idx != nil {
			f = idx.Lookup(pos)
		}
		if f == nil {
			out.WriteByte('.')
		} else {
			out.WriteInt64(int64(f.Index))
		}
		if err = out.EndLine(); err != nil {
			return
		}
	}
	return nil
}

// PlotHeader is the header line of the plot table.  Bin rows carry a
// 1-based inclusive interval; low rows carry one position with its depth
// repeated in the three depth columns.
const PlotHeader = "#TYPE\tSTART\tEND\tMEAN\tMIN\tMAX"

// WritePlot writes p as a table.
func WritePlot(ctx context.Context, path string, p Plot) (err error) {
	out, err := tsvfile.Create(ctx, path, 1)
	if err != nil {
		return err
	}
	defer tsvfile.CloseAndReport(ctx, out, &err)
	out.WriteString(PlotHeader)
	if err = out.EndLine(); err != nil {
		return
	}
	for _, b := range p.Bins {
		out.WriteString("bin")
		out.WriteInt64(int64(b.Start + 1))
		out.WriteInt64(int64(b.End))
		out.WriteString(strconv.FormatFloat(b.Mean, 'f', 2, 64))
		out.WriteUint32(b.Min)
		out.WriteUint32(b.Max)
		if err = out.EndLine(); err != nil {
			return
		}
	}
	for _, m := range p.Markers {
		out.WriteString("low")
		out.WriteInt64(int64(m.Pos + 1))
		out.WriteInt64(int64(m.Pos + 1))
		out.WriteString(strconv.FormatFloat(float64(m.Depth), 'f', 2, 64))
		out.WriteUint32(m.Depth)
		out.WriteUint32(m.Depth)
		if err = out.EndLine(); err != nil {
			return
		}
	}
	return nil
}
