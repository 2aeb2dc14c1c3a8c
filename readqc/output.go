package readqc

import (
	"context"
	"strconv"

	"github.com/grailbio/plasmidqc/encoding/tsvfile"
)

// LengthDistHeader is the header line of the length distribution table.
const LengthDistHeader = "Length\tCount"

// StatsHeader is the header line of the read statistics table.
const StatsHeader = "#SAMPLE\tREADS\tBASES\tMIN\tMAX\tMEAN\tMEDIAN\tSTDDEV\tN50\tMEAN_QUAL"

// WriteLengthDist writes the histogram as a Length/Count table.
func WriteLengthDist(ctx context.Context, path string, hist []LengthCount) (err error) {
	out, err := tsvfile.Create(ctx, path, 1)
	if err != nil {
		return err
	}
	defer tsvfile.CloseAndReport(ctx, out, &err)
	out.WriteString(LengthDistHeader)
	if err = out.EndLine(); err != nil {
		return
	}
	for _, h := range hist {
		out.WriteInt64(int64(h.Length))
		out.WriteInt64(int64(h.Count))
		if err = out.EndLine(); err != nil {
			return
		}
	}
	return nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// WriteStats writes a one-row statistics table for sample.
func WriteStats(ctx context.Context, path, sample string, s Stats) (err error) {
	out, err := tsvfile.Create(ctx, path, 1)
	if err != nil {
		return err
	}
	defer tsvfile.CloseAndReport(ctx, out, &err)
	out.WriteString(StatsHeader)
	if err = out.EndLine(); err != nil {
		return
	}
	out.WriteString(sample)
	out.WriteInt64(int64(s.Count))
	out.WriteInt64(s.TotalBases)
	out.WriteInt64(int64(s.Min))
	out.WriteInt64(int64(s.Max))
	out.WriteString(formatFloat(s.Mean))
	out.WriteString(formatFloat(s.Median))
	out.WriteString(formatFloat(s.StdDev))
	out.WriteInt64(int64(s.N50))
	out.WriteString(formatFloat(s.MeanQual))
	return out.EndLine()
}
