// Copyright 2020 Grail Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package pileup

import (
	"context"
	"strconv"

	"github.com/grailbio/base/tsv"
	"github.com/grailbio/plasmidqc/encoding/tsvfile"
)

// RecordHeader is the header line of the per-base table.
const RecordHeader = "#CONTIG\tPOS\tBASE\tREF\tDEPTH\tMATCH\tVAF\tA\tC\tG\tT\tN\tQUAL\tCONFIDENCE"

// ConfidenceString renders the confidence column.
func ConfidenceString(low bool) string {
	if low {
		return "low"
	}
	return "normal"
}

// FormatVAF renders a VAF with fixed precision.
func FormatVAF(vaf float64) string {
	return strconv.FormatFloat(vaf, 'f', 4, 64)
}

// WriteRecordRow appends one per-base row.  It converts Pos from 0-based to
// 1-based, matching the text-output convention.
func WriteRecordRow(w *tsv.Writer, contig string, r *Record) {
	w.WriteString(contig)
	w.WriteUint32(uint32(r.Pos + 1))
	w.WriteByte(r.Consensus)
	w.WriteByte(r.Ref)
	w.WriteUint32(r.Depth)
	w.WriteUint32(r.Match())
	w.WriteString(FormatVAF(r.VAF))
	for e := BaseA; e <= BaseX; e++ {
		w.WriteUint32(r.Counts[e])
	}
	w.WriteString(strconv.FormatFloat(r.MeanQual, 'f', 1, 64))
	w.WriteString(ConfidenceString(r.Low))
}

// WriteRecords writes the per-base table for one contig to path.  A ".gz"
// suffix selects bgzf compression.
func WriteRecords(ctx context.Context, path, contig string, records []Record, parallelism int) (err error) {
	out, err := tsvfile.Create(ctx, path, parallelism)
	if err != nil {
		return err
	}
	defer tsvfile.CloseAndReport(ctx, out, &err)
	out.WriteString(RecordHeader)
	if err = out.EndLine(); err != nil {
		return
	}
	for i := range records {
		WriteRecordRow(out.Writer, contig, &records[i])
		if err = out.EndLine(); err != nil {
			return
		}
	}
	return nil
}
