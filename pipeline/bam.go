package pipeline

import (
	"context"
	"sort"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/hts/bam"
	"github.com/grailbio/hts/sam"
	"github.com/grailbio/plasmidqc/align"
	"github.com/grailbio/plasmidqc/biosimd"
	"github.com/grailbio/plasmidqc/encoding/fastq"
	"github.com/grailbio/plasmidqc/pileup"
)

// unknownMapQ is the SAM value for "mapping quality not available".
const unknownMapQ = 255

var nmTag = sam.NewTag("NM")

// newRecord converts one placed read to a SAM record against samRef.  The
// sequence and qualities are stored in reference orientation, and any part
// of the read beyond the reference end is soft-clipped.
func newRecord(r *fastq.Read, samRef *sam.Reference, a *pileup.Alignment) (*sam.Record, error) {
	seq := []byte(r.Seq)
	var qual []byte
	if len(r.Qual) > 0 {
		qual = []byte(r.Qual)
		for i := range qual {
			if qual[i] > '!' {
				qual[i] -= '!'
			} else {
				qual[i] = 0
			}
		}
	}
	var flags sam.Flags
	if a.Strand == align.ReverseComplement {
		biosimd.ReverseComp8Inplace(seq)
		if qual != nil {
			tmp := make([]byte, len(qual))
			biosimd.Reverse8(tmp, qual)
			qual = tmp
		}
		flags |= sam.Reverse
	}
	cigar := []sam.CigarOp{sam.NewCigarOp(sam.CigarMatch, a.Span)}
	if clip := len(seq) - a.Span; clip > 0 {
		cigar = append(cigar, sam.NewCigarOp(sam.CigarSoftClipped, clip))
	}
	nm, err := sam.NewAux(nmTag, int32(a.Span-a.Matches))
	if err != nil {
		return nil, err
	}
	rec, err := sam.NewRecord(r.Name(), samRef, nil, a.Offset, -1, 0, unknownMapQ, cigar, seq, qual, []sam.Aux{nm})
	if err != nil {
		return nil, errors.E(err, "read", r.Name())
	}
	rec.Flags = flags
	return rec, nil
}

// writeBAM writes the reads of kept to a coordinate-sorted BAM file with a
// single reference.
func writeBAM(ctx context.Context, path string, ref *pileup.Reference, reads []fastq.Read, kept []pileup.Alignment) (err error) {
	samRef, err := sam.NewReference(ref.Name, "", "", ref.Len(), nil, nil)
	if err != nil {
		return errors.E(err, "bam reference", ref.Name)
	}
	header, err := sam.NewHeader(nil, []*sam.Reference{samRef})
	if err != nil {
		return errors.E(err, "bam header", path)
	}
	header.SortOrder = sam.Coordinate

	sorted := append([]pileup.Alignment(nil), kept...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Offset < sorted[j].Offset })

	out, err := file.Create(ctx, path)
	if err != nil {
		return errors.E(err, "create", path)
	}
	defer file.CloseAndReport(ctx, out, &err)
	w, err := bam.NewWriter(out.Writer(ctx), header, 1)
	if err != nil {
		return errors.E(err, "bam writer", path)
	}
	for i := range sorted {
		rec, e := newRecord(&reads[sorted[i].ReadIdx], samRef, &sorted[i])
		if e != nil {
			w.Close() // nolint: errcheck
			return e
		}
		if e = w.Write(rec); e != nil {
			w.Close() // nolint: errcheck
			return errors.E(e, "write", path)
		}
	}
	if err = w.Close(); err != nil {
		return errors.E(err, "write", path)
	}
	return nil
}
