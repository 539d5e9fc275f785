// Copyright 2018 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package bam

import (
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"

	"github.com/grailbio/bamrec/biosimd"
	"github.com/grailbio/bamrec/cigar"
	"github.com/grailbio/base/errors"
	gunsafe "github.com/grailbio/base/unsafe"
	"github.com/grailbio/hts/sam"
)

// CigarOpSize is the size of one packed cigar field, in bytes.
const CigarOpSize = 4

// Record is an alignment record. The fixed-size fields are exported; the
// variable-length fields live in a private buffer and are accessed through
// methods.
type Record struct {
	// RefID is the reference sequence index, or -1 if unplaced.
	RefID int
	// Pos is the 0-based leftmost reference position, or -1.
	Pos  int
	MapQ byte
	// Flags uses the SAM flag bits (sam.Unmapped, sam.Reverse, ...).
	Flags     sam.Flags
	MateRefID int
	MatePos   int
	TempLen   int

	lName  int // name length including the NUL terminator; 0 if unset
	nCigar int
	lSeq   int
	data   []byte
}

// NewRecord returns a record with no name, cigar, sequence or tags, to be
// filled in field by field.
func NewRecord() *Record {
	return &Record{RefID: -1, Pos: -1, MateRefID: -1, MatePos: -1}
}

// DefaultMapQ is the mapping quality assigned to records created from an
// alignment when the caller has no better estimate.
const DefaultMapQ = 60

// NewOpts describes a record to be built by New.
type NewOpts struct {
	Name string
	// Seq is the read sequence. Bases other than A, C, G and T are stored as N.
	Seq string
	// Qual holds one phred score per base. Nil means no qualities are
	// available.
	Qual  []byte
	Cigar cigar.Cigar
	RefID int
	Pos   int
	// Reverse sets sam.Reverse in the record flags.
	Reverse bool
	MapQ    byte
	// RegionWidth, if positive, is the width of the reference region the
	// alignment must span; New fails unless Cigar consumes exactly that many
	// reference bases.
	RegionWidth int
}

// New packs a fresh record buffer from opts. The mate is set to unplaced.
func New(opts NewOpts) (*Record, error) {
	if opts.Name == "" {
		return nil, errors.E(errors.Invalid, "bam: record name must not be empty")
	}
	if n := opts.Cigar.QueryConsumed(); n != len(opts.Seq) {
		return nil, errors.E(errors.Invalid,
			fmt.Sprintf("bam: cigar %v consumes %d query bases, sequence has %d", opts.Cigar, n, len(opts.Seq)))
	}
	if opts.RegionWidth > 0 {
		if n := opts.Cigar.ReferenceConsumed(); n != opts.RegionWidth {
			return nil, errors.E(errors.Invalid,
				fmt.Sprintf("bam: cigar %v consumes %d reference bases, region is %d wide", opts.Cigar, n, opts.RegionWidth))
		}
	}
	if opts.Qual != nil && len(opts.Qual) != len(opts.Seq) {
		return nil, errors.E(errors.Invalid,
			fmt.Sprintf("bam: %d qualities for %d bases", len(opts.Qual), len(opts.Seq)))
	}
	r := &Record{
		RefID:     opts.RefID,
		Pos:       opts.Pos,
		MapQ:      opts.MapQ,
		MateRefID: -1,
		MatePos:   -1,
		lName:     len(opts.Name) + 1,
		nCigar:    len(opts.Cigar),
		lSeq:      len(opts.Seq),
	}
	if opts.Reverse {
		r.Flags |= sam.Reverse
	}
	r.data = make([]byte, r.lName+r.nCigar*CigarOpSize+(r.lSeq+1)>>1+r.lSeq)
	l := r.layout()
	copy(r.data, opts.Name) // NUL is already in place.
	putCigar(r.data[l.start(FieldCigar):l.end(FieldCigar)], opts.Cigar)
	biosimd.PackASCIISeq(r.data[l.start(FieldSeq):l.end(FieldSeq)], gunsafe.StringToBytes(opts.Seq))
	putQual(r.data[l.start(FieldQual):l.end(FieldQual)], opts.Qual)
	return r, nil
}

// IsArgumentError reports whether err was caused by arguments inconsistent
// with the record, such as a cigar that does not match the sequence.
func IsArgumentError(err error) bool {
	return errors.Is(errors.Invalid, err)
}

// IsFormatError reports whether err was caused by a malformed payload, such
// as non-numeric text read back as a number.
func IsFormatError(err error) bool {
	return errors.Is(errors.Integrity, err)
}

func putCigar(dst []byte, c cigar.Cigar) {
	for i, f := range c {
		binary.LittleEndian.PutUint32(dst[i*CigarOpSize:], f.Raw())
	}
}

// putQual writes q to dst, or the absent marker if q is nil.
func putQual(dst, q []byte) {
	if q == nil {
		for i := range dst {
			dst[i] = absentQual
		}
		return
	}
	copy(dst, q)
}

// Clone returns a deep copy of r that shares no memory with it.
func (r *Record) Clone() *Record {
	c := *r
	c.data = append([]byte(nil), r.data...)
	return &c
}

// Name returns the read name, or "" if unset.
func (r *Record) Name() string {
	if r.lName == 0 {
		return ""
	}
	return string(r.data[:r.lName-1])
}

// NCigar is the number of cigar fields.
func (r *Record) NCigar() int { return r.nCigar }

// Cigar decodes the cigar field.
func (r *Record) Cigar() cigar.Cigar {
	if r.nCigar == 0 {
		return nil
	}
	b := r.Field(FieldCigar)
	c := make(cigar.Cigar, r.nCigar)
	for i := range c {
		c[i] = cigar.FromRaw(binary.LittleEndian.Uint32(b[i*CigarOpSize:]))
	}
	return c
}

// SeqLen is the number of bases.
func (r *Record) SeqLen() int { return r.lSeq }

// Sequence decodes the bases as text. Code 15 decodes as 'N'.
func (r *Record) Sequence() string {
	if r.lSeq == 0 {
		return ""
	}
	dst := make([]byte, r.lSeq)
	biosimd.UnpackAndReplaceSeq(dst, r.Field(FieldSeq), &biosimd.SeqASCIITable)
	return gunsafe.BytesToString(dst)
}

// CountAmbiguousBases counts bases stored with the N code.
func (r *Record) CountAmbiguousBases() int {
	return biosimd.PackedSeqCount(r.Field(FieldSeq), &biosimd.AmbiguousTable, 0, r.lSeq)
}

// Len returns the size of the variable-length buffer in bytes.
func (r *Record) Len() int { return len(r.data) }

// Mapped reports whether sam.Unmapped is clear.
func (r *Record) Mapped() bool { return r.Flags&sam.Unmapped == 0 }

// Reverse reports whether the read is on the reverse strand.
func (r *Record) Reverse() bool { return r.Flags&sam.Reverse != 0 }

// MateMapped reports whether sam.MateUnmapped is clear.
func (r *Record) MateMapped() bool { return r.Flags&sam.MateUnmapped == 0 }

// MateReverse reports whether the mate is on the reverse strand.
func (r *Record) MateReverse() bool { return r.Flags&sam.MateReverse != 0 }

// Secondary reports whether this is a secondary alignment.
func (r *Record) Secondary() bool { return r.Flags&sam.Secondary != 0 }

// End returns the 0-based exclusive end of the alignment on the reference.
func (r *Record) End() int {
	return r.Pos + r.Cigar().ReferenceConsumed()
}

// GenomicRange is a stranded [Start, End) range on reference RefID. Strand is
// '+', '-' or '*' when unknown.
type GenomicRange struct {
	RefID      int
	Start, End int
	Strand     byte
}

func (g GenomicRange) String() string {
	return fmt.Sprintf("%d:%d-%d(%c)", g.RefID, g.Start, g.End, g.Strand)
}

// Range returns the reference span of the alignment.
func (r *Record) Range() GenomicRange {
	s := byte('*')
	if r.Mapped() {
		s = '+'
		if r.Reverse() {
			s = '-'
		}
	}
	return GenomicRange{RefID: r.RefID, Start: r.Pos, End: r.End(), Strand: s}
}

// MateRange approximates the mate's span using this read's length.
func (r *Record) MateRange() GenomicRange {
	s := byte('*')
	if r.MateMapped() {
		s = '+'
		if r.MateReverse() {
			s = '-'
		}
	}
	return GenomicRange{RefID: r.MateRefID, Start: r.MatePos, End: r.MatePos + r.lSeq, Strand: s}
}

// maxPrintableQual is the largest phred score with a printable
// phred+33 character ('~').
const maxPrintableQual = '~' - 33

// String formats r as a SAM-like tab-separated line. Reference ids are
// printed instead of names since a Record does not know its header.
// Qualities above 93 print as '~'.
func (r *Record) String() string {
	var b strings.Builder
	name := r.Name()
	if name == "" {
		name = "*"
	}
	c := r.Cigar().String()
	if c == "" {
		c = "*"
	}
	seq := r.Sequence()
	if seq == "" {
		seq = "*"
	}
	qual := "*"
	if q := r.Qualities(); q != nil {
		qb := make([]byte, len(q))
		for i, v := range q {
			if v > maxPrintableQual {
				v = maxPrintableQual
			}
			qb[i] = v + 33
		}
		qual = string(qb)
	}
	fields := []string{
		name,
		strconv.Itoa(int(r.Flags)),
		strconv.Itoa(r.RefID),
		strconv.Itoa(r.Pos),
		strconv.Itoa(int(r.MapQ)),
		c,
		strconv.Itoa(r.MateRefID),
		strconv.Itoa(r.MatePos),
		strconv.Itoa(r.TempLen),
		seq,
		qual,
	}
	b.WriteString(strings.Join(fields, "\t"))
	r.forEachTag(func(e tagEntry) bool {
		b.WriteByte('\t')
		b.WriteString(e.String())
		return true
	})
	return b.String()
}
