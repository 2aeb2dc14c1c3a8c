package readqc

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/log"
	"github.com/grailbio/plasmidqc/encoding/fastq"
	"github.com/klauspost/compress/gzip"
)

// DefaultMinLongRead is the default length threshold of FilterLong.
const DefaultMinLongRead = 2000

var fastqSuffixes = []string{".fastq.gz", ".fq.gz", ".fastq", ".fq"}

// SampleName returns the base name of a FASTQ path without its FASTQ
// suffix: /data/s1.fastq.gz becomes s1.
func SampleName(path string) string {
	name := filepath.Base(path)
	for _, suffix := range fastqSuffixes {
		if strings.HasSuffix(name, suffix) {
			return strings.TrimSuffix(name, suffix)
		}
	}
	return name
}

// LongReadPath returns the output path of FilterLong for input path in,
// placed under dir: reads.fastq.gz becomes dir/reads_long.fastq.gz.
func LongReadPath(in, dir string) string {
	return filepath.Join(dir, SampleName(in)+"_long.fastq.gz")
}

// FilterLong copies the reads of the FASTQ file in that are at least minLen
// bases long to a gzip-compressed FASTQ file out.
func FilterLong(ctx context.Context, in, out string, minLen int) (fastq.FilterStats, error) {
	if minLen < 0 {
		return fastq.FilterStats{}, errors.E(errors.Invalid, "readqc.FilterLong: negative minimum length")
	}
	stats, err := FilterFile(ctx, in, out, fastq.MinLength(minLen))
	if err == nil {
		log.Printf("readqc: %s: kept %d of %d reads >= %d bases (%d malformed) in %s",
			in, stats.Kept, stats.Total, minLen, stats.Skipped, out)
	}
	return stats, err
}

// FilterFile copies the reads of the FASTQ file in accepted by keep to a
// gzip-compressed FASTQ file out.
func FilterFile(ctx context.Context, in, out string, keep func(*fastq.Read) bool) (stats fastq.FilterStats, err error) {
	src, err := Open(ctx, in)
	if err != nil {
		return stats, err
	}
	defer func() {
		if e := src.Close(ctx); e != nil && err == nil {
			err = errors.E(e, "close", in)
		}
	}()
	dst, err := file.Create(ctx, out)
	if err != nil {
		return stats, errors.E(err, "create", out)
	}
	defer file.CloseAndReport(ctx, dst, &err)
	gz := gzip.NewWriter(dst.Writer(ctx))
	if stats, err = fastq.Filter(src, gz, keep); err != nil {
		gz.Close() // nolint: errcheck
		return stats, errors.E(err, "filter", in)
	}
	if err = gz.Close(); err != nil {
		return stats, errors.E(err, "write", out)
	}
	return stats, nil
}
