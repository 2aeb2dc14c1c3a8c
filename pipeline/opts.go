package pipeline

import (
	"fmt"
	"time"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/plasmidqc/coverage"
	"github.com/grailbio/plasmidqc/fragment"
	"github.com/grailbio/plasmidqc/pileup"
)

// Opts configures one sample's run.
type Opts struct {
	// Sample names the outputs.  Required.
	Sample string
	// RefPath is the reference FASTA (optionally compressed).  Required.
	RefPath string
	// ReadsPath is the reads FASTQ; .gz/.zst/.bz2 suffixes are decompressed.
	// Required.
	ReadsPath string
	// GenbankPath, if set, supplies contig topology.
	GenbankPath string
	// OutDir receives a {Sample} subdirectory with the tables, and the
	// fragment directory.  Required.
	OutDir string

	// Pileup configures alignment and per-contig read parallelism.
	Pileup pileup.Opts
	// ContigParallelism bounds the number of contigs processed at once.
	ContigParallelism int
	// Timeout bounds read processing.  Contigs whose reads were not all
	// processed in time are reported with status TRUNCATED.  0 means no
	// limit.
	Timeout time.Duration

	// Bgzip compresses the per-base tables.
	Bgzip bool
	// BAM writes the mapped reads of each contig as a BAM file.
	BAM bool
	// FragmentSize is the length of synthesis fragments.
	FragmentSize int
	// WriteFragments writes the fragment FASTA files and manifest.
	WriteFragments bool
	// MaxLowConfidenceRows caps the low-confidence table.
	MaxLowConfidenceRows int
	// PlotPoints is the maximum number of bins in the plot table.
	PlotPoints int
	// ReadQC writes the read length distribution and read statistics.
	ReadQC bool
}

// DefaultOpts is the default configuration, minus the required paths.
var DefaultOpts = Opts{
	Pileup:               pileup.DefaultOpts,
	ContigParallelism:    4,
	FragmentSize:         fragment.DefaultSize,
	WriteFragments:       true,
	MaxLowConfidenceRows: coverage.MaxLowConfidenceRows,
	PlotPoints:           1000,
	ReadQC:               true,
}

func (o *Opts) validate() error {
	for _, req := range []struct{ name, val string }{
		{"sample", o.Sample},
		{"reference", o.RefPath},
		{"reads", o.ReadsPath},
		{"output directory", o.OutDir},
	} {
		if req.val == "" {
			return errors.E(errors.Invalid, fmt.Sprintf("pipeline: %s not set", req.name))
		}
	}
	if err := o.Pileup.Align.Validate(); err != nil {
		return err
	}
	if o.Pileup.Parallelism < 0 || o.ContigParallelism < 0 {
		return errors.E(errors.Invalid, "pipeline: negative parallelism")
	}
	if o.FragmentSize <= 0 {
		return errors.E(errors.Invalid, fmt.Sprintf("pipeline: fragment size must be positive, got %d", o.FragmentSize))
	}
	if o.Timeout < 0 {
		return errors.E(errors.Invalid, "pipeline: negative timeout")
	}
	return nil
}
