// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package biosimd_test

import (
	"bytes"
	"math/rand"
	"testing"

	"github.com/grailbio/bamrec/biosimd"
	"github.com/grailbio/testutil/expect"
)

func packASCIISeqSlow(src []byte) []byte {
	dst := make([]byte, (len(src)+1)>>1)
	for pos, c := range src {
		code := byte(biosimd.CodeN)
		switch c {
		case 'A':
			code = biosimd.CodeA
		case 'C':
			code = biosimd.CodeC
		case 'G':
			code = biosimd.CodeG
		case 'T':
			code = biosimd.CodeT
		}
		if pos&1 == 0 {
			dst[pos>>1] |= code << 4
		} else {
			dst[pos>>1] |= code
		}
	}
	return dst
}

func TestPackUnpackASCIISeq(t *testing.T) {
	const alphabet = "ACGTN"
	maxSize := 500
	nIter := 200
	for iter := 0; iter < nIter; iter++ {
		src := make([]byte, rand.Intn(maxSize))
		for i := range src {
			src[i] = alphabet[rand.Intn(len(alphabet))]
		}
		packed := make([]byte, (len(src)+1)>>1)
		biosimd.PackASCIISeq(packed, src)
		if !bytes.Equal(packed, packASCIISeqSlow(src)) {
			t.Fatal("Mismatched PackASCIISeq result.")
		}
		unpacked := make([]byte, len(src))
		biosimd.UnpackAndReplaceSeq(unpacked, packed, &biosimd.SeqASCIITable)
		if !bytes.Equal(unpacked, src) {
			t.Fatal("Mismatched UnpackAndReplaceSeq result.")
		}
	}
}

func TestPackASCIISeq(t *testing.T) {
	tests := []struct {
		ascii  string
		packed []byte
	}{
		{"", []byte{}},
		{"A", []byte{0x10}},
		{"AC", []byte{0x12}},
		{"ACGT", []byte{0x12, 0x48}},
		{"ACGTN", []byte{0x12, 0x48, 0xf0}},
		{"acgtX", []byte{0xff, 0xff, 0xf0}},
	}
	for _, test := range tests {
		dst := make([]byte, (len(test.ascii)+1)>>1)
		biosimd.PackASCIISeq(dst, []byte(test.ascii))
		expect.EQ(t, dst, test.packed, "ascii=%q", test.ascii)
	}
}

func TestUnpackAndReplaceSeq(t *testing.T) {
	src := []byte("ACGTNNAGT")
	packed := make([]byte, (len(src)+1)>>1)
	biosimd.PackASCIISeq(packed, src)
	dst := make([]byte, len(src))
	biosimd.UnpackAndReplaceSeq(dst, packed, &biosimd.SeqASCIITable)
	expect.EQ(t, string(dst), "ACGTNNAGT")
}

func TestCleanASCIISeqInplace(t *testing.T) {
	seq := []byte("acgtACGTnRx-")
	biosimd.CleanASCIISeqInplace(seq)
	expect.EQ(t, string(seq), "ACGTACGTNNNN")
}

func TestPackPanicsOnBadLength(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic")
		}
	}()
	biosimd.PackASCIISeq(make([]byte, 1), []byte("ACG"))
}
