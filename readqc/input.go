// Package readqc computes read-level quality control: the read length
// distribution, length and quality statistics, and long-read filtering.
package readqc

import (
	"context"
	"io"
	"io/ioutil"

	"github.com/grailbio/base/compress"
	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/plasmidqc/encoding/fastq"
)

// Input is an open FASTQ file, decompressed according to its path suffix
// (.gz, .zst, .bz2).
type Input struct {
	io.Reader
	f  file.File
	rc io.ReadCloser
}

// Open opens the FASTQ file at path.
func Open(ctx context.Context, path string) (*Input, error) {
	f, err := file.Open(ctx, path)
	if err != nil {
		return nil, errors.E(err, "open reads", path)
	}
	in := &Input{f: f}
	rc, _ := compress.NewReaderPath(f.Reader(ctx), path)
	if rc == nil {
		rc = ioutil.NopCloser(f.Reader(ctx))
	}
	in.rc = rc
	in.Reader = rc
	return in, nil
}

// Close closes the decompressor and the file.
func (in *Input) Close(ctx context.Context) error {
	var once errors.Once
	once.Set(in.rc.Close())
	once.Set(in.f.Close(ctx))
	return once.Err()
}

// LoadReads reads every well-formed record of the FASTQ file at path.
// skipped counts records dropped for an empty sequence or a quality string
// of the wrong length.
func LoadReads(ctx context.Context, path string) (reads []fastq.Read, skipped int, err error) {
	in, err := Open(ctx, path)
	if err != nil {
		return nil, 0, err
	}
	defer func() {
		if e := in.Close(ctx); e != nil && err == nil {
			err = errors.E(e, "close reads", path)
		}
	}()
	sc := fastq.NewScanner(in, fastq.All)
	var r fastq.Read
	for sc.Scan(&r) {
		reads = append(reads, r)
	}
	if err = sc.Err(); err != nil {
		return nil, sc.Skipped(), errors.E(err, "read reads", path)
	}
	return reads, sc.Skipped(), nil
}
