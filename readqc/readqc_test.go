package readqc_test

import (
	"bytes"
	"compress/gzip"
	"io/ioutil"
	"math"
	"path/filepath"
	"strings"
	"testing"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/vcontext"
	"github.com/grailbio/plasmidqc/encoding/fastq"
	"github.com/grailbio/plasmidqc/readqc"
	"github.com/grailbio/testutil"
	"github.com/grailbio/testutil/assert"
	"github.com/grailbio/testutil/expect"
)

func read(seq, qual string) *fastq.Read {
	return &fastq.Read{ID: "@r", Seq: seq, Unk: "+", Qual: qual}
}

func TestStats(t *testing.T) {
	var c readqc.Collector
	expect.EQ(t, c.Stats(), readqc.Stats{})
	expect.EQ(t, len(c.Histogram()), 0)

	c.Add(read("AAAAAAAAAA", ""))
	c.Add(read("CCCCC", "+++++"))
	c.Add(read("GGG", "III"))
	c.Add(read("TTTTT", ""))
	expect.EQ(t, c.Histogram(), []readqc.LengthCount{{3, 1}, {5, 2}, {10, 1}})
	s := c.Stats()
	expect.EQ(t, s.Count, 4)
	expect.EQ(t, s.TotalBases, int64(23))
	expect.EQ(t, s.Min, 3)
	expect.EQ(t, s.Max, 10)
	expect.EQ(t, s.Mean, 5.75)
	expect.EQ(t, s.Median, 5.0)
	expect.EQ(t, s.StdDev, math.Sqrt(26.75/4))
	expect.EQ(t, s.N50, 5)
	expect.EQ(t, s.MeanQual, 170.0/8)
}

func TestMedianOdd(t *testing.T) {
	var c readqc.Collector
	for _, seq := range []string{"A", "AAAAAAA", "AAA"} {
		c.Add(read(seq, ""))
	}
	s := c.Stats()
	expect.EQ(t, s.Median, 3.0)
	expect.EQ(t, s.N50, 7)
	expect.EQ(t, s.MeanQual, 0.0)
}

func TestLongReadPath(t *testing.T) {
	for _, test := range []struct{ in, want string }{
		{"/data/s1.fastq.gz", "out/s1_long.fastq.gz"},
		{"s1.fq.gz", "out/s1_long.fastq.gz"},
		{"s1.fastq", "out/s1_long.fastq.gz"},
		{"s1.reads", "out/s1.reads_long.fastq.gz"},
	} {
		expect.EQ(t, readqc.LongReadPath(test.in, "out"), test.want)
	}
}

const testFASTQ = `@short
ACGT
+
IIII
@long
ACGTACGTAC
+
IIIIIIIIII
@mismatched
ACGTACGTAC
+
III
@exact
ACGTAC
+

`

func TestFilterLongAndLoad(t *testing.T) {
	tmpdir, cleanup := testutil.TempDir(t, "", "")
	defer testutil.NoCleanupOnError(t, cleanup, tmpdir)
	ctx := vcontext.Background()

	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	_, err := gz.Write([]byte(testFASTQ))
	assert.NoError(t, err)
	assert.NoError(t, gz.Close())
	in := filepath.Join(tmpdir, "s1.fastq.gz")
	assert.NoError(t, ioutil.WriteFile(in, buf.Bytes(), 0600))

	reads, skipped, err := readqc.LoadReads(ctx, in)
	assert.NoError(t, err)
	expect.EQ(t, skipped, 1)
	expect.EQ(t, len(reads), 3)
	expect.EQ(t, reads[2].Name(), "exact")

	out := readqc.LongReadPath(in, tmpdir)
	stats, err := readqc.FilterLong(ctx, in, out, 6)
	assert.NoError(t, err)
	expect.EQ(t, stats, fastq.FilterStats{Total: 3, Kept: 2, Skipped: 1})

	data, err := ioutil.ReadFile(out)
	assert.NoError(t, err)
	zr, err := gzip.NewReader(bytes.NewReader(data))
	assert.NoError(t, err)
	plain, err := ioutil.ReadAll(zr)
	assert.NoError(t, err)
	expect.EQ(t, string(plain), "@long\nACGTACGTAC\n+\nIIIIIIIIII\n@exact\nACGTAC\n+\n\n")

	_, err = readqc.FilterLong(ctx, in, out, -1)
	expect.True(t, errors.Is(errors.Invalid, err))
	_, _, err = readqc.LoadReads(ctx, filepath.Join(tmpdir, "missing.fastq"))
	expect.True(t, err != nil)
}

func TestWriters(t *testing.T) {
	tmpdir, cleanup := testutil.TempDir(t, "", "")
	defer testutil.NoCleanupOnError(t, cleanup, tmpdir)
	ctx := vcontext.Background()

	var c readqc.Collector
	c.Add(read("ACG", "III"))
	c.Add(read("ACGT", "IIII"))
	c.Add(read("ACGT", "IIII"))

	path := filepath.Join(tmpdir, "s1_length_dist.tsv")
	assert.NoError(t, readqc.WriteLengthDist(ctx, path, c.Histogram()))
	data, err := ioutil.ReadFile(path)
	assert.NoError(t, err)
	expect.EQ(t, string(data), "Length\tCount\n3\t1\n4\t2\n")

	path = filepath.Join(tmpdir, "s1_read_stats.tsv")
	assert.NoError(t, readqc.WriteStats(ctx, path, "s1", c.Stats()))
	data, err = ioutil.ReadFile(path)
	assert.NoError(t, err)
	lines := strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
	expect.EQ(t, lines[0], readqc.StatsHeader)
	expect.True(t, strings.HasPrefix(lines[1], "s1\t3\t11\t3\t4\t3.67\t4.00\t0.47\t4\t40.00"), lines[1])
}

func TestSampleName(t *testing.T) {
	expect.EQ(t, readqc.SampleName("/data/run1/barcode07.fastq.gz"), "barcode07")
	expect.EQ(t, readqc.SampleName("s3://bucket/s2.fq"), "s2")
	expect.EQ(t, readqc.SampleName("s3.txt"), "s3.txt")
}
