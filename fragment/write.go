package fragment

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"

	"blainsmith.com/go/seahash"
	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/traverse"
	"github.com/grailbio/plasmidqc/encoding/fasta"
	"github.com/grailbio/plasmidqc/encoding/tsvfile"
)

// Opts controls Write.
type Opts struct {
	// LineWidth is the FASTA line width.
	LineWidth int
	// Parallelism bounds the number of files written concurrently.
	Parallelism int
	// Manifest, if set, writes {prefix}_fragments.tsv next to the fragments.
	Manifest bool
}

// DefaultOpts is the default Write configuration.
var DefaultOpts = Opts{
	LineWidth:   fasta.DefaultLineWidth,
	Parallelism: 8,
	Manifest:    true,
}

// ManifestEntry describes one written fragment file.
type ManifestEntry struct {
	Index      int
	Start, End int
	Path       string
	// Checksum is the seahash of the fragment sequence.
	Checksum uint64
}

// Manifest lists the files written for one prefix, in fragment order.
type Manifest []ManifestEntry

// ManifestHeader is the header line of the manifest table.
const ManifestHeader = "#INDEX\tSTART\tEND\tLENGTH\tPATH\tSEAHASH"

// ManifestPath returns the manifest location for prefix under dir.
func ManifestPath(dir, prefix string) string {
	return filepath.Join(dir, prefix+"_fragments.tsv")
}

// Write writes each fragment to dir/{prefix}_part{index}.fasta, one record
// per file, with the header from Header.
func Write(ctx context.Context, dir, prefix string, frags []Fragment, opts Opts) (Manifest, error) {
	if opts.LineWidth < 0 {
		return nil, errors.E(errors.Invalid, fmt.Sprintf("fragment.Write: negative line width %d", opts.LineWidth))
	}
	parallelism := opts.Parallelism
	if parallelism <= 0 {
		parallelism = 1
	}
	manifest := make(Manifest, len(frags))
	err := traverse.Limit(parallelism).Each(len(frags), func(i int) error {
		f := &frags[i]
		path := filepath.Join(dir, FileName(prefix, f.Index))
		if err := writeOne(ctx, path, f, opts.LineWidth); err != nil {
			return err
		}
		manifest[i] = ManifestEntry{
			Index:    f.Index,
			Start:    f.Start,
			End:      f.End,
			Path:     path,
			Checksum: seahash.Sum64(f.Seq),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if opts.Manifest {
		if err := manifest.Write(ctx, ManifestPath(dir, prefix)); err != nil {
			return nil, err
		}
	}
	return manifest, nil
}

func writeOne(ctx context.Context, path string, f *Fragment, lineWidth int) (err error) {
	out, err := file.Create(ctx, path)
	if err != nil {
		return errors.E(err, "create fragment", path)
	}
	defer file.CloseAndReport(ctx, out, &err)
	w := fasta.NewWriter(out.Writer(ctx), lineWidth)
	if err = w.Write(Header(f.Index), f.Seq); err != nil {
		return errors.E(err, "write fragment", path)
	}
	if err = w.Flush(); err != nil {
		return errors.E(err, "write fragment", path)
	}
	return nil
}

// Write writes the manifest as a TSV table.
func (m Manifest) Write(ctx context.Context, path string) (err error) {
	out, err := tsvfile.Create(ctx, path, 1)
	if err != nil {
		return err
	}
	defer tsvfile.CloseAndReport(ctx, out, &err)
	out.WriteString(ManifestHeader)
	if err = out.EndLine(); err != nil {
		return
	}
	for _, e := range m {
		out.WriteInt64(int64(e.Index))
		out.WriteInt64(int64(e.Start))
		out.WriteInt64(int64(e.End))
		out.WriteInt64(int64(e.End - e.Start))
		out.WriteString(filepath.Base(e.Path))
		out.WriteString(strconv.FormatUint(e.Checksum, 16))
		if err = out.EndLine(); err != nil {
			return
		}
	}
	return nil
}
