package fasta_test

import (
	"strings"
	"testing"

	"github.com/grailbio/bamrec/encoding/fasta"
	"github.com/grailbio/testutil/assert"
	"github.com/grailbio/testutil/expect"
)

const fastaData = ">seq1\nACGTA\nCGTAC\nGT\n>seq2 A viral sequence\nacgt\r\nAxGT\n"

func TestGet(t *testing.T) {
	tests := []struct {
		seq        string
		start, end uint64
		want       string
		wantErr    bool
	}{
		{"seq1", 1, 2, "C", false},
		{"seq1", 1, 6, "CGTAC", false},
		{"seq1", 0, 12, "ACGTACGTACGT", false},
		{"seq1", 10, 12, "GT", false},
		{"seq2", 0, 8, "acgtAxGT", false},
		{"seq0", 0, 1, "", true},
		{"seq1", 10, 13, "", true},
		{"seq1", 4, 3, "", true},
	}
	fa, err := fasta.New(strings.NewReader(fastaData), fasta.Opts{})
	assert.NoError(t, err)
	for _, tt := range tests {
		got, err := fa.Get(tt.seq, tt.start, tt.end)
		expect.EQ(t, err != nil, tt.wantErr, "%+v: %v", tt, err)
		expect.EQ(t, got, tt.want, "%+v", tt)
	}
}

func TestClean(t *testing.T) {
	fa, err := fasta.New(strings.NewReader(fastaData), fasta.Opts{Enc: fasta.CleanASCII})
	assert.NoError(t, err)
	got, err := fa.Get("seq2", 0, 8)
	assert.NoError(t, err)
	expect.EQ(t, got, "ACGTANGT")
}

func TestLenAndNames(t *testing.T) {
	fa, err := fasta.New(strings.NewReader(fastaData), fasta.Opts{})
	assert.NoError(t, err)
	expect.EQ(t, fa.SeqNames(), []string{"seq1", "seq2"})
	n, err := fa.Len("seq1")
	assert.NoError(t, err)
	expect.EQ(t, n, uint64(12))
	_, err = fa.Len("seq3")
	expect.NotNil(t, err)
}

func TestMalformed(t *testing.T) {
	for _, data := range []string{
		"ACGT\n>seq1\nACGT\n",
		">\nACGT\n",
		">a\nAC\n>a\nGT\n",
	} {
		_, err := fasta.New(strings.NewReader(data), fasta.Opts{})
		expect.NotNil(t, err, "data %q", data)
	}
}
