// Copyright 2018 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package bam

import (
	"fmt"
)

// FieldType names one variable-length region of a Record's buffer. Regions
// are laid out back to back in FieldType order.
type FieldType uint8

const (
	// FieldName is the NUL-terminated read name.
	FieldName FieldType = iota
	// FieldCigar holds 4 bytes per cigar.Field, little endian.
	FieldCigar
	// FieldSeq holds (seqLen+1)/2 bytes of packed base codes.
	FieldSeq
	// FieldQual holds seqLen quality bytes; all 0xff when absent.
	FieldQual
	// FieldAux holds the tag entries.
	FieldAux

	// FieldInvalid is a sentinel
	FieldInvalid
	MinField  = FieldName
	NumFields = int(FieldInvalid)
)

var fieldNames = []string{
	"name",
	"cigar",
	"seq",
	"qual",
	"aux",
}

func (f FieldType) String() string {
	if int(f) < len(fieldNames) {
		return fieldNames[f]
	}
	return fmt.Sprintf("Field%d", f)
}

// layout holds the start offset of every field plus, at index NumFields, the
// end of the buffer.
type layout [NumFields + 1]int

func (l layout) start(f FieldType) int { return l[f] }
func (l layout) end(f FieldType) int   { return l[f+1] }
func (l layout) size(f FieldType) int  { return l[f+1] - l[f] }

// layout recomputes the field offsets from the record counters. It panics if
// the buffer is shorter than the counters require.
func (r *Record) layout() (l layout) {
	l[FieldCigar] = r.lName
	l[FieldSeq] = l[FieldCigar] + r.nCigar*CigarOpSize
	l[FieldQual] = l[FieldSeq] + (r.lSeq+1)>>1
	l[FieldAux] = l[FieldQual] + r.lSeq
	l[NumFields] = len(r.data)
	if l[FieldAux] > len(r.data) {
		panic(fmt.Sprintf("bam: corrupt record buffer: %d bytes, need at least %d (lname=%d ncigar=%d lseq=%d)",
			len(r.data), l[FieldAux], r.lName, r.nCigar, r.lSeq))
	}
	return l
}

// Field returns the raw bytes of field f. The result aliases the record
// buffer and is invalidated by the next mutation.
func (r *Record) Field(f FieldType) []byte {
	l := r.layout()
	return r.data[l.start(f):l.end(f)]
}

// FieldSpan returns the [start, end) byte offsets of field f in the buffer.
func (r *Record) FieldSpan(f FieldType) (start, end int) {
	l := r.layout()
	return l.start(f), l.end(f)
}
