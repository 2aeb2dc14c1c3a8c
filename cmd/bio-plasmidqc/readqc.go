package main

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/grailbio/base/log"
	"github.com/grailbio/base/traverse"
	"github.com/grailbio/plasmidqc/encoding/fastq"
	"github.com/grailbio/plasmidqc/pipeline"
	"github.com/grailbio/plasmidqc/readqc"
	"v.io/x/lib/cmdline"
)

var referenceSuffixes = []string{".gz", ".fasta", ".fa", ".fna"}

// trimExt strips reference FASTA suffixes from a file name.
func trimExt(name string) string {
	for _, suffix := range referenceSuffixes {
		name = strings.TrimSuffix(name, suffix)
	}
	return name
}

func newCmdReadQC() *cmdline.Command {
	cmd := &cmdline.Command{
		Name:     "readqc",
		Short:    "Write the read length distribution and read statistics of FASTQ files",
		ArgsName: "reads...",
	}
	var (
		outDir      = cmd.Flags.String("out", ".", "Output directory")
		parallelism = cmd.Flags.Int("parallelism", 4, "Files processed at once")
	)
	cmd.Runner = runner(func(ctx context.Context, argv []string) error {
		if len(argv) == 0 {
			return fmt.Errorf("readqc takes at least one FASTQ path")
		}
		if err := pipeline.MkdirAll(*outDir); err != nil {
			return err
		}
		return traverse.Limit(*parallelism).Each(len(argv), func(i int) error {
			reads, skipped, err := readqc.LoadReads(ctx, argv[i])
			if err != nil {
				return err
			}
			var c readqc.Collector
			for j := range reads {
				c.Add(&reads[j])
			}
			name := readqc.SampleName(argv[i])
			if err = readqc.WriteLengthDist(ctx, filepath.Join(*outDir, name+"_length_dist.tsv"), c.Histogram()); err != nil {
				return err
			}
			s := c.Stats()
			if err = readqc.WriteStats(ctx, filepath.Join(*outDir, name+"_read_stats.tsv"), name, s); err != nil {
				return err
			}
			log.Printf("%s: %d reads (%d malformed), %d bases, median length %.0f, N50 %d",
				argv[i], s.Count, skipped, s.TotalBases, s.Median, s.N50)
			return nil
		})
	})
	return cmd
}

func newCmdFilter() *cmdline.Command {
	cmd := &cmdline.Command{
		Name:     "filter",
		Short:    "Keep long reads of FASTQ files, optionally downsampled",
		ArgsName: "reads...",
	}
	var (
		outDir   = cmd.Flags.String("out", "", "Output directory. Defaults to the directory of each input")
		minLen   = cmd.Flags.Int("min-length", readqc.DefaultMinLongRead, "Minimum read length to keep")
		fraction = cmd.Flags.Float64("fraction", 1, "Fraction of the long reads to keep, chosen at random")
		seed     = cmd.Flags.Int64("seed", 0, "Random seed for -fraction")
	)
	cmd.Runner = runner(func(ctx context.Context, argv []string) error {
		if len(argv) == 0 {
			return fmt.Errorf("filter takes at least one FASTQ path")
		}
		for _, in := range argv {
			dir := *outDir
			if dir == "" {
				dir = filepath.Dir(in)
			}
			if err := pipeline.MkdirAll(dir); err != nil {
				return err
			}
			out := readqc.LongReadPath(in, dir)
			if *fraction == 1 {
				if _, err := readqc.FilterLong(ctx, in, out, *minLen); err != nil {
					return err
				}
				continue
			}
			sample, err := fastq.Sample(*fraction, *seed)
			if err != nil {
				return err
			}
			stats, err := readqc.FilterFile(ctx, in, out, fastq.And(fastq.MinLength(*minLen), sample))
			if err != nil {
				return err
			}
			log.Printf("%s: kept %d of %d reads (%d malformed) in %s", in, stats.Kept, stats.Total, stats.Skipped, out)
		}
		return nil
	})
	return cmd
}
