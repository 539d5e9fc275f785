// Copyright 2018 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package bam

import (
	"fmt"

	"github.com/grailbio/bamrec/biosimd"
	"github.com/grailbio/bamrec/cigar"
	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/log"
	gunsafe "github.com/grailbio/base/unsafe"
)

// splice replaces r.data[start:end] with n bytes and returns the new buffer
// along with the n-byte window to fill in. Bytes before start are copied
// unchanged; bytes from end onward are relocated verbatim. The caller must
// fill the window and then install the buffer with r.data = buf.
func (r *Record) splice(start, end, n int) (buf, window []byte) {
	buf = make([]byte, len(r.data)-(end-start)+n)
	copy(buf, r.data[:start])
	copy(buf[start+n:], r.data[end:])
	if log.At(log.Debug) {
		log.Debug.Printf("bam: relayout %q: [%d,%d) -> %d bytes, buffer %d -> %d",
			r.Name(), start, end, n, len(r.data), len(buf))
	}
	return buf, buf[start : start+n]
}

// SetCigar replaces the cigar. When c has as many fields as the current cigar
// the buffer is overwritten in place; otherwise the seq, qual and aux bytes
// are moved, unchanged, behind the new cigar.
func (r *Record) SetCigar(c cigar.Cigar) {
	l := r.layout()
	if len(c) == r.nCigar {
		putCigar(r.data[l.start(FieldCigar):l.end(FieldCigar)], c)
		return
	}
	buf, window := r.splice(l.start(FieldCigar), l.end(FieldCigar), len(c)*CigarOpSize)
	putCigar(window, c)
	r.data = buf
	r.nCigar = len(c)
}

// SetSequence replaces the bases. The qualities are reset to absent whatever
// the old and new lengths are; tags are kept.
func (r *Record) SetSequence(seq string) {
	l := r.layout()
	seqBytes := (len(seq) + 1) >> 1
	buf, window := r.splice(l.start(FieldSeq), l.end(FieldQual), seqBytes+len(seq))
	biosimd.PackASCIISeq(window[:seqBytes], gunsafe.StringToBytes(seq))
	putQual(window[seqBytes:], nil)
	r.data = buf
	r.lSeq = len(seq)
}

// SetQualities replaces the phred scores in place. q must have one entry per
// base; nil marks the qualities absent.
func (r *Record) SetQualities(q []byte) error {
	if q != nil && len(q) != r.lSeq {
		return errors.E(errors.Invalid, fmt.Sprintf("bam: %d qualities for %d bases", len(q), r.lSeq))
	}
	putQual(r.Field(FieldQual), q)
	return nil
}

// SetName replaces the read name. Later fields shift by the size difference.
func (r *Record) SetName(name string) error {
	if name == "" {
		return errors.E(errors.Invalid, "bam: record name must not be empty")
	}
	buf, window := r.splice(0, r.lName, len(name)+1)
	copy(window, name)
	window[len(name)] = 0
	r.data = buf
	r.lName = len(name) + 1
	return nil
}

// ClearSequenceQualityAndTags truncates the buffer to the name and cigar.
// Position and cigar are kept; the sequence length becomes zero.
func (r *Record) ClearSequenceQualityAndTags() {
	l := r.layout()
	buf, _ := r.splice(l.start(FieldSeq), len(r.data), 0)
	r.data = buf
	r.lSeq = 0
}
