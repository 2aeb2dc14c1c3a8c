// Package tsvfile creates TSV output files, block-gzipped when the path ends
// in ".gz".
package tsvfile

import (
	"context"
	"strings"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/tsv"
	"github.com/grailbio/hts/bgzf"
)

// File is a TSV file open for writing.
type File struct {
	*tsv.Writer
	path string
	dst  file.File
	bgzf *bgzf.Writer
}

// Create opens path for writing.  If path ends in ".gz" the content is
// bgzf-compressed with the given number of compression goroutines (0 means
// one).
func Create(ctx context.Context, path string, parallelism int) (*File, error) {
	dst, err := file.Create(ctx, path)
	if err != nil {
		return nil, errors.E(err, "create", path)
	}
	f := &File{path: path, dst: dst}
	if strings.HasSuffix(path, ".gz") {
		if parallelism <= 0 {
			parallelism = 1
		}
		f.bgzf = bgzf.NewWriter(dst.Writer(ctx), parallelism)
		f.Writer = tsv.NewWriter(f.bgzf)
	} else {
		f.Writer = tsv.NewWriter(dst.Writer(ctx))
	}
	return f, nil
}

// Path returns the path passed to Create.
func (f *File) Path() string { return f.path }

// Close flushes and closes the file.  It must be called exactly once, even
// after a write error.
func (f *File) Close(ctx context.Context) error {
	var once errors.Once
	once.Set(f.Writer.Flush())
	if f.bgzf != nil {
		once.Set(f.bgzf.Close())
	}
	once.Set(f.dst.Close(ctx))
	if err := once.Err(); err != nil {
		return errors.E(err, "write", f.path)
	}
	return nil
}

// CloseAndReport closes f and stores the error in *err if *err is nil.  It is
// meant for deferred use, like file.CloseAndReport.
func CloseAndReport(ctx context.Context, f *File, err *error) {
	if e := f.Close(ctx); e != nil && *err == nil {
		*err = e
	}
}
