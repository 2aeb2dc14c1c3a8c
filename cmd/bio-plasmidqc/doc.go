/*
bio-plasmidqc checks a sequenced plasmid against its reference.

	bio-plasmidqc coverage [flags] reference.fasta reads.fastq.gz

aligns the reads to every reference contig and writes, under
-out/{sample}/, a per-base consensus table, a low-confidence position table,
binned coverage plot data, a per-contig summary and read QC tables. The
reference is also cut into synthesis fragments under
-out/{sample}_2k_fragmented/.

	bio-plasmidqc split [flags] reference.fasta

only writes the synthesis fragments.

	bio-plasmidqc readqc [flags] reads.fastq.gz...

writes the read length distribution and read statistics of each file.

	bio-plasmidqc filter [flags] reads.fastq.gz...

writes the reads of each file that are at least -min-length bases long to
{name}_long.fastq.gz, optionally downsampled.

Paths may be local or s3://.
*/
package main
