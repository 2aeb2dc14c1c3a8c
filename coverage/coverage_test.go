package coverage_test

import (
	"io/ioutil"
	"path/filepath"
	"strings"
	"testing"

	"github.com/grailbio/base/vcontext"
	"github.com/grailbio/plasmidqc/coverage"
	"github.com/grailbio/plasmidqc/fragment"
	"github.com/grailbio/plasmidqc/pileup"
	"github.com/grailbio/testutil"
	"github.com/grailbio/testutil/assert"
	"github.com/grailbio/testutil/expect"
)

// recordsWithDepth builds derived records over an all-A reference where
// every observation agrees with the reference.
func recordsWithDepth(depths ...uint32) []pileup.Record {
	ref := &pileup.Reference{Name: "c1", Seq: []byte(strings.Repeat("A", len(depths)))}
	acc := pileup.NewAccumulator(ref)
	for i, d := range depths {
		for j := uint32(0); j < d; j++ {
			acc.AddMapped([]byte("A"), nil, i)
		}
	}
	return pileup.Derive(acc)
}

func TestSummarize(t *testing.T) {
	records := recordsWithDepth(0, 1, 3, 5, 5, 2)
	s := coverage.Summarize(records, 4, 7)
	expect.EQ(t, s.Length, 6)
	expect.EQ(t, s.MappedBases, int64(16))
	expect.EQ(t, s.AverageDepth, 16.0/6)
	expect.EQ(t, s.MaxDepth, uint32(5))
	expect.EQ(t, s.LowConfidence, []int{0, 1, 5})
	expect.EQ(t, s.Status, coverage.StatusSuccess)
	expect.EQ(t, s.CoverageString(), "2x")

	s.SetTruncated(true)
	expect.EQ(t, s.Status, coverage.StatusTruncated)
	s.SetTruncated(false)
	expect.EQ(t, s.Status, coverage.StatusSuccess)
}

func TestSummarizeEmpty(t *testing.T) {
	s := coverage.Summarize(nil, 0, 0)
	expect.EQ(t, s.AverageDepth, 0.0)
	expect.EQ(t, s.MaxDepth, uint32(0))
	expect.EQ(t, len(s.LowConfidence), 0)
	expect.EQ(t, s.Status, coverage.StatusNoReadsMapped)

	// Reads that all failed to map: every position is low confidence.
	s = coverage.Summarize(recordsWithDepth(0, 0, 0), 0, 12)
	expect.EQ(t, s.LowConfidence, []int{0, 1, 2})
	expect.EQ(t, s.Status, coverage.StatusNoReadsMapped)
	expect.EQ(t, s.CoverageString(), "0x")
}

func TestPlotData(t *testing.T) {
	records := recordsWithDepth(4, 4, 6, 8, 0, 3, 9)
	p := coverage.PlotData(records, 3)
	expect.EQ(t, p.Bins, []coverage.Bin{
		{Start: 0, End: 3, Mean: 14.0 / 3, Min: 4, Max: 6},
		{Start: 3, End: 6, Mean: 11.0 / 3, Min: 0, Max: 8},
		{Start: 6, End: 7, Mean: 9, Min: 9, Max: 9},
	})
	expect.EQ(t, p.Markers, []coverage.Marker{{Pos: 4, Depth: 0}})

	p = coverage.PlotData(records, 0)
	expect.EQ(t, len(p.Bins), 7)
	p = coverage.PlotData(records, 100)
	expect.EQ(t, len(p.Bins), 7)
	expect.EQ(t, p.Bins[3], coverage.Bin{Start: 3, End: 4, Mean: 8, Min: 8, Max: 8})

	expect.EQ(t, coverage.PlotData(nil, 10), coverage.Plot{})
}

func readLines(t *testing.T, path string) []string {
	data, err := ioutil.ReadFile(path)
	assert.NoError(t, err)
	return strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
}

func TestWriters(t *testing.T) {
	tmpdir, cleanup := testutil.TempDir(t, "", "")
	defer testutil.NoCleanupOnError(t, cleanup, tmpdir)
	ctx := vcontext.Background()

	records := recordsWithDepth(0, 3, 3, 1, 4)
	s := coverage.Summarize(records, 3, 5)
	s.Contig = "c1"
	s.Circular = true

	path := filepath.Join(tmpdir, "summary.tsv")
	sample := coverage.Sample{Name: "s1", TotalReads: 5, TotalBases: 500, ReadsDigest: "abcd", RunID: "run"}
	assert.NoError(t, coverage.WriteSummaries(ctx, path, sample, []coverage.Summary{s}))
	expect.EQ(t, readLines(t, path), []string{
		coverage.SummaryHeader,
		"s1\t5\t500\tc1\t5\t3\t11\t2x\t4\t2\ttrue\tSUCCESS\tabcd\trun",
	})

	frags, err := fragment.Split(make([]byte, 5), 2)
	assert.NoError(t, err)
	path = filepath.Join(tmpdir, "low.tsv")
	assert.NoError(t, coverage.WriteLowConfidence(ctx, path, &s, records, fragment.NewIndex(frags), 0))
	expect.EQ(t, readLines(t, path), []string{
		coverage.LowConfidenceHeader,
		"c1\t1\tA\tA\t0\t0.0000\t1",
		"c1\t4\tA\tA\t1\t1.0000\t2",
	})
	assert.NoError(t, coverage.WriteLowConfidence(ctx, path, &s, records, nil, 1))
	expect.EQ(t, readLines(t, path), []string{
		coverage.LowConfidenceHeader,
		"c1\t1\tA\tA\t0\t0.0000\t.",
	})

	path = filepath.Join(tmpdir, "plot.tsv")
	assert.NoError(t, coverage.WritePlot(ctx, path, coverage.PlotData(records, 2)))
	expect.EQ(t, readLines(t, path), []string{
		coverage.PlotHeader,
		"bin\t1\t3\t2.00\t0\t3",
		"bin\t4\t5\t2.50\t1\t4",
		"low\t1\t1\t0.00\t0\t0",
		"low\t4\t4\t1.00\t1\t1",
	})
}
