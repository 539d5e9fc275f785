// Copyright 2018 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package bam

import (
	"github.com/grailbio/bamrec/biosimd"
	"github.com/grailbio/bamrec/cigar"
	"github.com/grailbio/hts/sam"
)

// Paired reports whether sam.Paired is set.
func (r *Record) Paired() bool { return r.Flags&sam.Paired != 0 }

// ProperPair reports whether sam.ProperPair is set.
func (r *Record) ProperPair() bool { return r.Flags&sam.ProperPair != 0 }

// Read1 reports whether sam.Read1 is set.
func (r *Record) Read1() bool { return r.Flags&sam.Read1 != 0 }

// Read2 reports whether sam.Read2 is set.
func (r *Record) Read2() bool { return r.Flags&sam.Read2 != 0 }

// QCFail reports whether sam.QCFail is set.
func (r *Record) QCFail() bool { return r.Flags&sam.QCFail != 0 }

// Duplicate reports whether sam.Duplicate is set.
func (r *Record) Duplicate() bool { return r.Flags&sam.Duplicate != 0 }

// Supplementary reports whether sam.Supplementary is set.
func (r *Record) Supplementary() bool { return r.Flags&sam.Supplementary != 0 }

// Primary reports whether the record is neither secondary nor
// supplementary.
func (r *Record) Primary() bool { return r.Flags&(sam.Secondary|sam.Supplementary) == 0 }

// HasNoMappedMate returns true if the record is unpaired or has an unmapped
// mate.
func (r *Record) HasNoMappedMate() bool {
	return r.Flags&sam.Paired == 0 || r.Flags&sam.MateUnmapped != 0
}

func isClip(op cigar.Op) bool { return op == cigar.SoftClip || op == cigar.HardClip }

// LeftClipDistance is the total length of the soft and hard clips at the
// start of the cigar.
func (r *Record) LeftClipDistance() int {
	n := 0
	for _, f := range r.Cigar() {
		if !isClip(f.Op) {
			break
		}
		n += int(f.Len)
	}
	return n
}

// RightClipDistance is the total length of the soft and hard clips at the
// end of the cigar.
func (r *Record) RightClipDistance() int {
	c := r.Cigar()
	n := 0
	for i := len(c) - 1; i >= 0 && isClip(c[i].Op); i-- {
		n += int(c[i].Len)
	}
	return n
}

// FivePrimeClipDistance is the clip length at the 5' end of the read.
func (r *Record) FivePrimeClipDistance() int {
	if r.Reverse() {
		return r.RightClipDistance()
	}
	return r.LeftClipDistance()
}

// UnclippedStart is the reference position the first base would have if
// the leading clips were aligned.
func (r *Record) UnclippedStart() int {
	return r.Pos - r.LeftClipDistance()
}

// UnclippedEnd is the inclusive reference position the last base would have
// if the trailing clips were aligned.
func (r *Record) UnclippedEnd() int {
	return r.End() - 1 + r.RightClipDistance()
}

// UnclippedFivePrimePosition is UnclippedStart for forward reads and
// UnclippedEnd for reverse reads.
func (r *Record) UnclippedFivePrimePosition() int {
	if r.Reverse() {
		return r.UnclippedEnd()
	}
	return r.UnclippedStart()
}

// baseAt decodes base i of the packed sequence.
func (r *Record) baseAt(i int) byte {
	b := r.Field(FieldSeq)[i>>1]
	if i&1 == 0 {
		b >>= 4
	}
	return biosimd.SeqASCIITable.Get(b & 0xf)
}

// BaseAtPos returns the read base aligned to reference position refPos.
// found is false when refPos is outside the aligned part of the read. A
// position inside a deletion or skip is found but has no base, and 0 is
// returned.
func (r *Record) BaseAtPos(refPos int) (base byte, found bool) {
	if refPos < r.Pos {
		return 0, false
	}
	ref, query := r.Pos, 0
	for _, f := range r.Cigar() {
		n := int(f.Len)
		switch f.Op {
		case cigar.Match, cigar.SeqMatch, cigar.SeqMismatch:
			if refPos < ref+n {
				return r.baseAt(query + refPos - ref), true
			}
			ref += n
			query += n
		case cigar.Insertion, cigar.SoftClip:
			query += n
		case cigar.Deletion, cigar.RefSkip:
			if refPos < ref+n {
				return 0, true
			}
			ref += n
		}
	}
	return 0, false
}
