package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/log"
	"github.com/grailbio/plasmidqc/fragment"
	"github.com/grailbio/plasmidqc/pileup"
	"github.com/grailbio/plasmidqc/pipeline"
	"v.io/x/lib/cmdline"
)

func newCmdSplit() *cmdline.Command {
	cmd := &cmdline.Command{
		Name:     "split",
		Short:    "Cut a reference into fixed-size synthesis fragments",
		ArgsName: "reference",
	}
	var (
		sample    = cmd.Flags.String("sample", "", "Sample name, used as the file-name prefix. Defaults to the reference file name")
		outDir    = cmd.Flags.String("out", ".", "Output directory; fragments go to {out}/{sample}_2k_fragmented (named after -size)")
		size      = cmd.Flags.Int("size", fragment.DefaultSize, "Fragment length")
		lineWidth = cmd.Flags.Int("line-width", fragment.DefaultOpts.LineWidth, "FASTA line width")
	)
	cmd.Runner = runner(func(ctx context.Context, argv []string) error {
		if len(argv) != 1 {
			return fmt.Errorf("split takes one reference path, but got %v", argv)
		}
		name := *sample
		if name == "" {
			name = trimExt(filepath.Base(argv[0]))
		}
		return split(ctx, argv[0], *outDir, name, *size, *lineWidth)
	})
	return cmd
}

// split writes the fragments of every contig in refPath under
// {outDir}/{DirName(name, size)}.
func split(ctx context.Context, refPath, outDir, name string, size, lineWidth int) error {
	if size <= 0 {
		return errors.E(errors.Invalid, fmt.Sprintf("split: fragment size must be positive, got %d", size))
	}
	refs, _, err := pileup.LoadReferences(ctx, refPath)
	if err != nil {
		return err
	}
	dir := filepath.Join(outDir, fragment.DirName(name, size))
	if err = pipeline.MkdirAll(dir); err != nil {
		return err
	}
	opts := fragment.DefaultOpts
	opts.LineWidth = lineWidth
	for i := range refs {
		frags, err := fragment.Split(refs[i].Seq, size)
		if err != nil {
			return err
		}
		prefix := fragment.Prefix(name, refs[i].Name, len(refs))
		if _, err = fragment.Write(ctx, dir, prefix, frags, opts); err != nil {
			return err
		}
		log.Printf("%s: %d bases in %d fragment(s) under %s", refs[i].Name, refs[i].Len(), len(frags), dir)
	}
	return nil
}
