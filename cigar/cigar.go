// Copyright 2018 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package cigar

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/hts/sam"
)

// Op is a CIGAR operation kind. The numeric values are the BAM op codes.
type Op uint8

const (
	// Match is an alignment match, which may be a sequence match or mismatch.
	Match Op = iota
	// Insertion is an insertion to the reference.
	Insertion
	// Deletion is a deletion from the reference.
	Deletion
	// RefSkip is a skipped region of the reference.
	RefSkip
	// SoftClip marks clipped bases that are still present in the sequence.
	SoftClip
	// HardClip marks clipped bases that are absent from the sequence.
	HardClip
	// Pad is a silent deletion from the padded reference.
	Pad
	// SeqMatch is a sequence match.
	SeqMatch
	// SeqMismatch is a sequence mismatch.
	SeqMismatch

	numOps
)

const opLetters = "MIDNSHP=X"

// opIndex maps an op letter to its Op, or to numOps for non-op bytes.
var opIndex = func() (t [256]Op) {
	for i := range t {
		t[i] = numOps
	}
	for op := Match; op < numOps; op++ {
		t[opLetters[op]] = op
	}
	return t
}()

// consumes[op] is {query, reference}.
var consumes = [numOps][2]uint32{
	Match:       {1, 1},
	Insertion:   {1, 0},
	Deletion:    {0, 1},
	RefSkip:     {0, 1},
	SoftClip:    {1, 0},
	HardClip:    {0, 0},
	Pad:         {0, 0},
	SeqMatch:    {1, 1},
	SeqMismatch: {1, 1},
}

// Letter returns the SAM text letter for op.
func (op Op) Letter() byte {
	if op >= numOps {
		return '?'
	}
	return opLetters[op]
}

func (op Op) String() string { return string(op.Letter()) }

// ConsumesQuery reports whether op advances along the query sequence.
func (op Op) ConsumesQuery() bool { return op < numOps && consumes[op][0] == 1 }

// ConsumesReference reports whether op advances along the reference.
func (op Op) ConsumesReference() bool { return op < numOps && consumes[op][1] == 1 }

// MaxLen is the largest length representable in the packed 28-bit field.
const MaxLen = 1<<28 - 1

// Field is one run of a CIGAR: an operation repeated Len times.
type Field struct {
	Op  Op
	Len uint32
}

// Raw returns the packed BAM encoding of f: Len<<4 | Op.
func (f Field) Raw() uint32 {
	return f.Len<<4 | uint32(f.Op)
}

// FromRaw decodes a packed BAM cigar word.
func FromRaw(v uint32) Field {
	return Field{Op: Op(v & 0xf), Len: v >> 4}
}

func (f Field) String() string {
	return strconv.FormatUint(uint64(f.Len), 10) + f.Op.String()
}

// Cigar is an ordered list of fields. The order is significant.
type Cigar []Field

// Parse converts SAM CIGAR text such as "8M2I4M" into a Cigar.  The empty
// string and "*" both denote the empty Cigar.
func Parse(text string) (Cigar, error) {
	if text == "" || text == "*" {
		return nil, nil
	}
	var (
		c       Cigar
		nDigits int // number of digit runs
		nOps    int // number of op letters
		n       uint64
		inRun   bool
	)
	for i := 0; i < len(text); i++ {
		ch := text[i]
		if ch >= '0' && ch <= '9' {
			if !inRun {
				nDigits++
				inRun = true
				n = 0
			}
			n = n*10 + uint64(ch-'0')
			if n > MaxLen {
				return nil, errors.E(errors.Integrity, fmt.Sprintf("cigar: length overflow in %q", text))
			}
			continue
		}
		op := opIndex[ch]
		if op == numOps {
			return nil, errors.E(errors.Integrity, fmt.Sprintf("cigar: invalid operation %q in %q", ch, text))
		}
		nOps++
		if !inRun {
			// Letter without a preceding length; counts will disagree.
			continue
		}
		inRun = false
		c = append(c, Field{Op: op, Len: uint32(n)})
	}
	if nDigits != nOps || len(c) != nOps {
		return nil, errors.E(errors.Integrity,
			fmt.Sprintf("cigar: %q has %d lengths but %d operations", text, nDigits, nOps))
	}
	return c, nil
}

// MustParse is like Parse but panics on malformed input.
func MustParse(text string) Cigar {
	c, err := Parse(text)
	if err != nil {
		panic(err)
	}
	return c
}

// IsFormatError reports whether err was caused by malformed CIGAR text.
func IsFormatError(err error) bool {
	return errors.Is(errors.Integrity, err)
}

// String formats c as SAM CIGAR text. The empty Cigar formats as "".
func (c Cigar) String() string {
	var b strings.Builder
	for _, f := range c {
		b.WriteString(strconv.FormatUint(uint64(f.Len), 10))
		b.WriteByte(f.Op.Letter())
	}
	return b.String()
}

// Equal reports whether a and b have the same fields in the same order.
// Two empty Cigars are equal.
func Equal(a, b Cigar) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// QueryConsumed is the number of query bases covered by c.
func (c Cigar) QueryConsumed() int {
	n := 0
	for _, f := range c {
		if f.Op.ConsumesQuery() {
			n += int(f.Len)
		}
	}
	return n
}

// ReferenceConsumed is the number of reference bases covered by c.
func (c Cigar) ReferenceConsumed() int {
	n := 0
	for _, f := range c {
		if f.Op.ConsumesReference() {
			n += int(f.Len)
		}
	}
	return n
}

// ToSAM converts c to the hts representation.
func (c Cigar) ToSAM() sam.Cigar {
	if len(c) == 0 {
		return nil
	}
	out := make(sam.Cigar, len(c))
	for i, f := range c {
		out[i] = sam.CigarOp(f.Raw())
	}
	return out
}

// FromSAM converts an hts cigar. Both share the Len<<4|Op packing.
func FromSAM(sc sam.Cigar) Cigar {
	if len(sc) == 0 {
		return nil
	}
	out := make(Cigar, len(sc))
	for i, co := range sc {
		out[i] = FromRaw(uint32(co))
	}
	return out
}
