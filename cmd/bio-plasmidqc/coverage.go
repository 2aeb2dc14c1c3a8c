package main

import (
	"context"
	"fmt"
	"os"

	"github.com/grailbio/base/log"
	"github.com/grailbio/plasmidqc/pipeline"
	"github.com/grailbio/plasmidqc/readqc"
	"v.io/x/lib/cmdline"
)

func newCmdCoverage() *cmdline.Command {
	cmd := &cmdline.Command{
		Name:     "coverage",
		Short:    "Align reads to a plasmid reference and report per-base consensus and coverage",
		ArgsName: "reference reads",
	}
	d := pipeline.DefaultOpts
	var (
		sample            = cmd.Flags.String("sample", "", "Sample name. Defaults to the reads file name without its FASTQ suffix")
		outDir            = cmd.Flags.String("out", ".", "Output directory")
		genbank           = cmd.Flags.String("genbank", "", "GenBank file of the reference; its LOCUS lines mark contigs circular or linear")
		minIdentity       = cmd.Flags.Float64("min-identity", d.Pileup.Align.MinIdentity, "Minimum fraction of matching bases for a read to map")
		minOverlap        = cmd.Flags.Int("min-overlap", d.Pileup.Align.MinOverlap, "Minimum number of aligned bases for a read to map")
		seedLen           = cmd.Flags.Int("seed-len", d.Pileup.Align.SeedLen, "If positive, only score offsets sharing an exact k-mer of this length with the read (at most 32)")
		parallelism       = cmd.Flags.Int("parallelism", d.Pileup.Parallelism, "Alignment workers per contig; 0 = runtime.NumCPU()")
		contigParallelism = cmd.Flags.Int("contig-parallelism", d.ContigParallelism, "Contigs processed at once; 0 = all")
		timeout           = cmd.Flags.Duration("timeout", d.Timeout, "If positive, stop aligning after this long and report partial results as TRUNCATED")
		bgzip             = cmd.Flags.Bool("bgzip", d.Bgzip, "bgzip the per-base tables")
		bam               = cmd.Flags.Bool("bam", d.BAM, "Write the mapped reads of each contig as BAM")
		fragmentSize      = cmd.Flags.Int("fragment-size", d.FragmentSize, "Synthesis fragment length")
		fragments         = cmd.Flags.Bool("fragments", d.WriteFragments, "Write synthesis fragment FASTA files")
		maxLowRows        = cmd.Flags.Int("max-low-rows", d.MaxLowConfidenceRows, "Maximum rows in the low-confidence table")
		plotPoints        = cmd.Flags.Int("plot-points", d.PlotPoints, "Maximum number of coverage plot bins; 0 = one per base")
		readQC            = cmd.Flags.Bool("readqc", d.ReadQC, "Write read length distribution and read statistics")
	)
	cmd.Runner = runner(func(ctx context.Context, argv []string) error {
		if len(argv) != 2 {
			return fmt.Errorf("coverage takes reference and reads paths, but got %v", argv)
		}
		opts := d
		opts.RefPath, opts.ReadsPath = argv[0], argv[1]
		opts.Sample = *sample
		if opts.Sample == "" {
			opts.Sample = readqc.SampleName(opts.ReadsPath)
		}
		opts.OutDir = *outDir
		opts.GenbankPath = *genbank
		opts.Pileup.Align.MinIdentity = *minIdentity
		opts.Pileup.Align.MinOverlap = *minOverlap
		opts.Pileup.Align.SeedLen = *seedLen
		opts.Pileup.Parallelism = *parallelism
		opts.ContigParallelism = *contigParallelism
		opts.Timeout = *timeout
		opts.Bgzip = *bgzip
		opts.BAM = *bam
		opts.FragmentSize = *fragmentSize
		opts.WriteFragments = *fragments
		opts.MaxLowConfidenceRows = *maxLowRows
		opts.PlotPoints = *plotPoints
		opts.ReadQC = *readQC
		res, err := pipeline.Run(ctx, opts)
		if err != nil {
			return err
		}
		for _, c := range res.Contigs {
			s := &c.Summary
			fmt.Fprintf(os.Stdout, "%s\t%s\t%d/%d\t%s\t%d\t%s\n", opts.Sample, s.Contig,
				s.MappedReads, s.TotalReads, s.CoverageString(), len(s.LowConfidence), s.Status)
		}
		log.Printf("outputs in %s", res.Dir)
		return nil
	})
	return cmd
}
