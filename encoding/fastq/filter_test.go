package fastq_test

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/grailbio/plasmidqc/encoding/fastq"
	"github.com/grailbio/testutil/assert"
	"github.com/grailbio/testutil/expect"
)

func makeFASTQ(lengths ...int) string {
	var b strings.Builder
	for i, n := range lengths {
		fmt.Fprintf(&b, "@read%d\n%s\n+\n%s\n", i, strings.Repeat("A", n), strings.Repeat("I", n))
	}
	return b.String()
}

func TestFilterMinLength(t *testing.T) {
	in := makeFASTQ(10, 2500, 1999, 2000) + "@bad\nACGT\n+\nI\n"
	var out bytes.Buffer
	stats, err := fastq.Filter(strings.NewReader(in), &out, fastq.MinLength(2000))
	assert.NoError(t, err)
	expect.EQ(t, stats, fastq.FilterStats{Total: 4, Kept: 2, Skipped: 1})

	sc := fastq.NewScanner(&out, fastq.All)
	var (
		r     fastq.Read
		names []string
	)
	for sc.Scan(&r) {
		names = append(names, r.Name())
	}
	assert.NoError(t, sc.Err())
	expect.EQ(t, names, []string{"read1", "read3"})
}

func TestFilterAnd(t *testing.T) {
	in := makeFASTQ(5, 50, 500)
	var out bytes.Buffer
	maxLen := func(r *fastq.Read) bool { return len(r.Seq) <= 100 }
	stats, err := fastq.Filter(strings.NewReader(in), &out, fastq.And(fastq.MinLength(10), maxLen))
	assert.NoError(t, err)
	expect.EQ(t, stats.Kept, 1)
}

func TestFilterBadInput(t *testing.T) {
	var out bytes.Buffer
	_, err := fastq.Filter(strings.NewReader("not fastq\n"), &out, fastq.MinLength(0))
	expect.True(t, err != nil)
}

func TestDownsample(t *testing.T) {
	in := makeFASTQ(1, 2, 3, 4, 5, 6, 7, 8, 9, 10)
	tests := []struct {
		rate float64
		kept int
		err  bool
	}{
		{1.0, 10, false},
		{0.0, 0, false},
		{1.2, 0, true},
		{-0.1, 0, true},
	}
	for _, test := range tests {
		var out bytes.Buffer
		stats, err := fastq.Downsample(test.rate, 0, strings.NewReader(in), &out)
		if test.err {
			expect.True(t, err != nil)
			continue
		}
		assert.NoError(t, err)
		expect.EQ(t, stats.Kept, test.kept)
		expect.EQ(t, stats.Total, 10)
	}

	// Same seed, same selection.
	var out1, out2 bytes.Buffer
	_, err := fastq.Downsample(0.5, 42, strings.NewReader(in), &out1)
	assert.NoError(t, err)
	_, err = fastq.Downsample(0.5, 42, strings.NewReader(in), &out2)
	assert.NoError(t, err)
	expect.EQ(t, out1.String(), out2.String())
}
