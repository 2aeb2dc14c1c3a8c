package pipeline

import (
	"fmt"

	"github.com/grailbio/plasmidqc/encoding/fastq"
	"github.com/minio/highwayhash"
)

var digestKey [32]byte

// readsDigest fingerprints a read set.  The per-read hashes are summed, so
// the result does not depend on read order.
func readsDigest(reads []fastq.Read) string {
	var (
		sum uint64
		buf []byte
	)
	for i := range reads {
		r := &reads[i]
		buf = append(buf[:0], r.ID...)
		buf = append(buf, '\n')
		buf = append(buf, r.Seq...)
		buf = append(buf, '\n')
		buf = append(buf, r.Qual...)
		sum += highwayhash.Sum64(buf, digestKey[:])
	}
	return fmt.Sprintf("%016x", sum)
}
