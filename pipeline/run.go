// Package pipeline runs the full per-sample analysis: it aligns a sample's
// reads against each reference contig, derives per-base statistics and
// coverage summaries, cuts synthesis fragments, and writes every output
// table.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/traverse"
	"github.com/grailbio/plasmidqc/coverage"
	"github.com/grailbio/plasmidqc/encoding/fastq"
	"github.com/grailbio/plasmidqc/encoding/genbank"
	"github.com/grailbio/plasmidqc/fragment"
	"github.com/grailbio/plasmidqc/pileup"
	"github.com/grailbio/plasmidqc/readqc"
)

// ContigResult holds the outputs for one contig.
type ContigResult struct {
	Summary  coverage.Summary
	Records  []pileup.Record
	Manifest fragment.Manifest
	// Mapped holds the placements of mapped reads when Opts.BAM is set.
	Mapped []pileup.Alignment
}

// Result holds the outputs for one sample.
type Result struct {
	Sample  coverage.Sample
	Contigs []ContigResult
	// SkippedReads counts malformed FASTQ records that were dropped.
	SkippedReads int
	// SkippedContigs counts FASTA records without sequence.
	SkippedContigs int
	ReadStats      readqc.Stats
	// Dir is the sample output directory.
	Dir string
}

// progressInterval is the number of reads between debug progress messages.
const progressInterval = 10000

// Run analyzes one sample as configured by opts.  Outputs go to
// {OutDir}/{Sample}/, fragments to {OutDir}/{Sample}_2k_fragmented/ (the
// directory name follows the fragment size).
func Run(ctx context.Context, opts Opts) (*Result, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	refs, skippedRefs, err := pileup.LoadReferences(ctx, opts.RefPath)
	if err != nil {
		return nil, err
	}
	log.Printf("pipeline: %s: loaded %d contig(s) from %s", opts.Sample, len(refs), opts.RefPath)
	if skippedRefs > 0 {
		log.Error.Printf("pipeline: %s: skipped %d empty reference record(s)", opts.Sample, skippedRefs)
	}
	reads, skippedReads, err := readqc.LoadReads(ctx, opts.ReadsPath)
	if err != nil {
		return nil, err
	}
	if skippedReads > 0 {
		log.Error.Printf("pipeline: %s: skipped %d malformed read(s)", opts.Sample, skippedReads)
	}
	topologies, err := loadTopologies(ctx, opts.GenbankPath)
	if err != nil {
		return nil, err
	}

	res := &Result{
		SkippedReads:   skippedReads,
		SkippedContigs: skippedRefs,
		Dir:            filepath.Join(opts.OutDir, opts.Sample),
		Contigs:        make([]ContigResult, len(refs)),
	}
	if err = MkdirAll(res.Dir); err != nil {
		return nil, err
	}
	var qc readqc.Collector
	for i := range reads {
		qc.Add(&reads[i])
		if (i+1)%progressInterval == 0 {
			log.Debug.Printf("pipeline: %s: scanned %d reads", opts.Sample, i+1)
		}
	}
	res.ReadStats = qc.Stats()
	res.Sample = coverage.Sample{
		Name:        opts.Sample,
		TotalReads:  res.ReadStats.Count,
		TotalBases:  res.ReadStats.TotalBases,
		ReadsDigest: readsDigest(reads),
		RunID:       uuid.New().String(),
	}
	log.Printf("pipeline: %s: %d reads, %d bases, run %s", opts.Sample,
		res.Sample.TotalReads, res.Sample.TotalBases, res.Sample.RunID)
	if opts.ReadQC {
		if err = writeReadQC(ctx, res.Dir, opts.Sample, &qc); err != nil {
			return nil, err
		}
	}

	// Outputs are written with ctx even after runCtx expires, so a timed-out
	// run still produces complete (truncated) tables.
	runCtx := ctx
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}
	parallelism := opts.ContigParallelism
	if parallelism == 0 {
		parallelism = len(refs)
	}
	err = traverse.Limit(parallelism).Each(len(refs), func(i int) error {
		c := contigRun{
			opts:     &opts,
			ref:      &refs[i],
			nContigs: len(refs),
			circular: contigTopology(topologies, refs[i].Name, len(refs)) == genbank.Circular,
			reads:    reads,
			dir:      res.Dir,
		}
		return c.run(ctx, runCtx, &res.Contigs[i])
	})
	if err != nil {
		return nil, err
	}

	summaries := make([]coverage.Summary, len(res.Contigs))
	for i := range res.Contigs {
		summaries[i] = res.Contigs[i].Summary
	}
	summaryPath := filepath.Join(res.Dir, opts.Sample+"_summary.tsv")
	if err = coverage.WriteSummaries(ctx, summaryPath, res.Sample, summaries); err != nil {
		return nil, err
	}
	log.Printf("pipeline: %s: done, summary in %s", opts.Sample, summaryPath)
	return res, nil
}

type contigRun struct {
	opts     *Opts
	ref      *pileup.Reference
	nContigs int
	circular bool
	reads    []fastq.Read
	dir      string
}

func (c *contigRun) path(suffix string) string {
	return filepath.Join(c.dir, fmt.Sprintf("%s_%s%s", c.opts.Sample, c.ref.Name, suffix))
}

// run processes one contig.  runCtx bounds accumulation only.
func (c *contigRun) run(ctx, runCtx context.Context, out *ContigResult) error {
	opts := c.opts
	popts := opts.Pileup
	popts.KeepAlignments = opts.BAM
	acc, kept, err := pileup.Accumulate(runCtx, c.ref, c.reads, popts)
	if err != nil {
		return errors.E(err, "contig", c.ref.Name)
	}
	if acc.Truncated {
		log.Error.Printf("pipeline: %s: %s: timed out after %d of %d reads",
			opts.Sample, c.ref.Name, acc.Total, len(c.reads))
	}
	out.Records = pileup.Derive(acc)
	out.Mapped = kept
	s := coverage.Summarize(out.Records, acc.Mapped, acc.Total)
	s.Contig = c.ref.Name
	s.Circular = c.circular
	s.SetTruncated(acc.Truncated)
	out.Summary = s

	frags, err := fragment.Split(c.ref.Seq, opts.FragmentSize)
	if err != nil {
		return err
	}
	if opts.WriteFragments {
		dir := filepath.Join(opts.OutDir, fragment.DirName(opts.Sample, opts.FragmentSize))
		if err = MkdirAll(dir); err != nil {
			return err
		}
		prefix := fragment.Prefix(opts.Sample, c.ref.Name, c.nContigs)
		fopts := fragment.DefaultOpts
		if out.Manifest, err = fragment.Write(ctx, dir, prefix, frags, fopts); err != nil {
			return err
		}
	}

	perBase := c.path("_per_base.tsv")
	if opts.Bgzip {
		perBase += ".gz"
	}
	if err = pileup.WriteRecords(ctx, perBase, c.ref.Name, out.Records, opts.Pileup.Parallelism); err != nil {
		return err
	}
	if err = coverage.WriteLowConfidence(ctx, c.path("_low_confidence.tsv"), &out.Summary, out.Records,
		fragment.NewIndex(frags), opts.MaxLowConfidenceRows); err != nil {
		return err
	}
	if err = coverage.WritePlot(ctx, c.path("_plot.tsv"), coverage.PlotData(out.Records, opts.PlotPoints)); err != nil {
		return err
	}
	if opts.BAM {
		if err = writeBAM(ctx, c.path(".bam"), c.ref, c.reads, kept); err != nil {
			return err
		}
	}
	log.Printf("pipeline: %s: %s: %d/%d reads mapped, coverage %s, %d low-confidence position(s), %s",
		opts.Sample, c.ref.Name, s.MappedReads, s.TotalReads, s.CoverageString(), len(s.LowConfidence), s.Status)
	return nil
}

func writeReadQC(ctx context.Context, dir, sample string, qc *readqc.Collector) error {
	if err := readqc.WriteLengthDist(ctx, filepath.Join(dir, sample+"_length_dist.tsv"), qc.Histogram()); err != nil {
		return err
	}
	return readqc.WriteStats(ctx, filepath.Join(dir, sample+"_read_stats.tsv"), sample, qc.Stats())
}

func loadTopologies(ctx context.Context, path string) (topo map[string]genbank.Topology, err error) {
	if path == "" {
		return nil, nil
	}
	in, err := file.Open(ctx, path)
	if err != nil {
		return nil, errors.E(err, "open genbank", path)
	}
	defer file.CloseAndReport(ctx, in, &err)
	if topo, err = genbank.Topologies(in.Reader(ctx)); err != nil {
		return nil, errors.E(err, "read genbank", path)
	}
	return topo, nil
}

// contigTopology looks up a contig's topology by name.  A single-contig
// reference takes the topology of a single-locus GenBank file regardless of
// names, since the two are usually exported under different identifiers.
func contigTopology(topo map[string]genbank.Topology, name string, nContigs int) genbank.Topology {
	if t, ok := topo[name]; ok {
		return t
	}
	if nContigs == 1 && len(topo) == 1 {
		for _, t := range topo {
			return t
		}
	}
	return genbank.Unknown
}

// MkdirAll creates a local output directory.  Other file systems have no
// directories to create.
func MkdirAll(dir string) error {
	scheme, _, err := file.ParsePath(dir)
	if err != nil {
		return errors.E(err, "parse path", dir)
	}
	if scheme != "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.E(err, "mkdir", dir)
	}
	return nil
}
