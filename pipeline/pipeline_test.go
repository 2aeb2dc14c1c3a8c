package pipeline_test

import (
	"fmt"
	"io"
	"io/ioutil"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/vcontext"
	"github.com/grailbio/hts/bam"
	"github.com/grailbio/hts/sam"
	"github.com/grailbio/plasmidqc/biosimd"
	"github.com/grailbio/plasmidqc/coverage"
	"github.com/grailbio/plasmidqc/pipeline"
	"github.com/grailbio/testutil"
	"github.com/grailbio/testutil/assert"
	"github.com/grailbio/testutil/expect"
)

func randomSeq(r *rand.Rand, n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = "ACGT"[r.Intn(4)]
	}
	return string(b)
}

type fixture struct {
	dir, ref, reads, genbank string
	refSeq                   string
}

// newFixture writes a 3000-base reference, a GenBank header calling it
// circular, and 60 error-free 500-base reads, every third one reverse
// complemented.
func newFixture(t *testing.T, dir string) fixture {
	r := rand.New(rand.NewSource(1))
	f := fixture{
		dir:     dir,
		ref:     filepath.Join(dir, "ref.fasta"),
		reads:   filepath.Join(dir, "reads.fastq"),
		genbank: filepath.Join(dir, "ref.gb"),
		refSeq:  randomSeq(r, 3000),
	}
	assert.NoError(t, ioutil.WriteFile(f.ref, []byte(">pTest\n"+f.refSeq+"\n"), 0600))
	assert.NoError(t, ioutil.WriteFile(f.genbank,
		[]byte("LOCUS       pTest_export        3000 bp    DNA     circular SYN 01-JAN-2020\n//\n"), 0600))
	var buf strings.Builder
	for i := 0; i < 60; i++ {
		start := (i * 50) % 2500
		seq := []byte(f.refSeq[start : start+500])
		if i%3 == 0 {
			biosimd.ReverseComp8Inplace(seq)
		}
		fmt.Fprintf(&buf, "@read%d\n%s\n+\n%s\n", i, seq, strings.Repeat("I", len(seq)))
	}
	fmt.Fprintf(&buf, "@empty\n\n+\n\n")
	assert.NoError(t, ioutil.WriteFile(f.reads, []byte(buf.String()), 0600))
	return f
}

func (f fixture) opts() pipeline.Opts {
	opts := pipeline.DefaultOpts
	opts.Sample = "s1"
	opts.RefPath = f.ref
	opts.ReadsPath = f.reads
	opts.GenbankPath = f.genbank
	opts.OutDir = filepath.Join(f.dir, "out")
	opts.Pileup.Parallelism = 3
	return opts
}

func TestRun(t *testing.T) {
	tmpdir, cleanup := testutil.TempDir(t, "", "")
	defer testutil.NoCleanupOnError(t, cleanup, tmpdir)
	ctx := vcontext.Background()
	f := newFixture(t, tmpdir)

	opts := f.opts()
	opts.BAM = true
	opts.Bgzip = true
	res, err := pipeline.Run(ctx, opts)
	assert.NoError(t, err)
	expect.EQ(t, res.SkippedReads, 1)
	expect.EQ(t, res.Sample.TotalReads, 60)
	expect.EQ(t, res.Sample.TotalBases, int64(30000))
	assert.EQ(t, len(res.Contigs), 1)

	c := res.Contigs[0]
	s := c.Summary
	expect.EQ(t, s.Contig, "pTest")
	expect.EQ(t, s.Length, 3000)
	expect.EQ(t, s.MappedReads, 60)
	expect.EQ(t, s.TotalReads, 60)
	expect.EQ(t, s.MappedBases, int64(30000))
	expect.EQ(t, s.Status, coverage.StatusSuccess)
	expect.True(t, s.Circular)
	for _, rec := range c.Records {
		expect.EQ(t, rec.Consensus, rec.Ref)
	}
	// Positions covered by fewer than three reads are the only low ones.
	for _, pos := range s.LowConfidence {
		expect.True(t, c.Records[pos].Depth < 3, "pos %d", pos)
	}
	expect.EQ(t, len(c.Manifest), 2)

	dir := filepath.Join(opts.OutDir, "s1")
	for _, name := range []string{
		"s1_summary.tsv",
		"s1_pTest_per_base.tsv.gz",
		"s1_pTest_low_confidence.tsv",
		"s1_pTest_plot.tsv",
		"s1_pTest.bam",
		"s1_length_dist.tsv",
		"s1_read_stats.tsv",
	} {
		_, err := os.Stat(filepath.Join(dir, name))
		expect.NoError(t, err, name)
	}
	for _, name := range []string{"s1_part1.fasta", "s1_part2.fasta", "s1_fragments.tsv"} {
		_, err := os.Stat(filepath.Join(opts.OutDir, "s1_2k_fragmented", name))
		expect.NoError(t, err, name)
	}

	data, err := ioutil.ReadFile(filepath.Join(dir, "s1_summary.tsv"))
	assert.NoError(t, err)
	lines := strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
	assert.EQ(t, len(lines), 2)
	expect.True(t, strings.HasPrefix(lines[1], "s1\t60\t30000\tpTest\t3000\t60\t30000\t10x\t"), lines[1])
	expect.True(t, strings.Contains(lines[1], "\ttrue\tSUCCESS\t"+res.Sample.ReadsDigest+"\t"+res.Sample.RunID), lines[1])

	in, err := os.Open(filepath.Join(dir, "s1_pTest.bam"))
	assert.NoError(t, err)
	defer in.Close() // nolint: errcheck
	br, err := bam.NewReader(in, 1)
	assert.NoError(t, err)
	var (
		n, nReverse int
		lastPos     = -1
	)
	for {
		rec, err := br.Read()
		if err == io.EOF {
			break
		}
		assert.NoError(t, err)
		expect.True(t, rec.Pos >= lastPos)
		lastPos = rec.Pos
		expect.EQ(t, string(rec.Seq.Expand()), f.refSeq[rec.Pos:rec.Pos+rec.Len()])
		if rec.Flags&sam.Reverse != 0 {
			nReverse++
		}
		n++
	}
	expect.EQ(t, n, 60)
	expect.EQ(t, nReverse, 20)
}

func TestRunNoReadsMapped(t *testing.T) {
	tmpdir, cleanup := testutil.TempDir(t, "", "")
	defer testutil.NoCleanupOnError(t, cleanup, tmpdir)
	ctx := vcontext.Background()
	f := newFixture(t, tmpdir)

	r := rand.New(rand.NewSource(99))
	var buf strings.Builder
	for i := 0; i < 5; i++ {
		fmt.Fprintf(&buf, "@junk%d\n%s\n+\n\n", i, randomSeq(r, 200))
	}
	assert.NoError(t, ioutil.WriteFile(f.reads, []byte(buf.String()), 0600))

	opts := f.opts()
	opts.GenbankPath = ""
	opts.WriteFragments = false
	opts.ReadQC = false
	res, err := pipeline.Run(ctx, opts)
	assert.NoError(t, err)
	s := res.Contigs[0].Summary
	expect.EQ(t, s.Status, coverage.StatusNoReadsMapped)
	expect.EQ(t, s.MappedReads, 0)
	expect.EQ(t, s.TotalReads, 5)
	expect.EQ(t, len(s.LowConfidence), 3000)
	expect.False(t, s.Circular)

	data, err := ioutil.ReadFile(filepath.Join(opts.OutDir, "s1", "s1_pTest_low_confidence.tsv"))
	assert.NoError(t, err)
	expect.EQ(t, strings.Count(string(data), "\n"), 1+coverage.MaxLowConfidenceRows)
	_, err = os.Stat(filepath.Join(opts.OutDir, "s1_2k_fragmented"))
	expect.True(t, os.IsNotExist(err))
}

func TestRunInvalidOpts(t *testing.T) {
	ctx := vcontext.Background()
	opts := pipeline.DefaultOpts
	_, err := pipeline.Run(ctx, opts)
	expect.True(t, errors.Is(errors.Invalid, err))

	opts.Sample, opts.RefPath, opts.ReadsPath, opts.OutDir = "s", "r.fa", "r.fq", "out"
	opts.FragmentSize = 0
	_, err = pipeline.Run(ctx, opts)
	expect.True(t, errors.Is(errors.Invalid, err))

	opts.FragmentSize = 2000
	opts.Pileup.Align.MinIdentity = 1.5
	_, err = pipeline.Run(ctx, opts)
	expect.True(t, errors.Is(errors.Invalid, err))
}
