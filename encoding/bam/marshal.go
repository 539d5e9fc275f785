// Copyright 2018 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package bam

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/hts/sam"
)

// bamFixedBytes is the size of the fixed part of a serialized record, not
// counting the leading block size.
const bamFixedBytes = 32

// maxNameLen is the longest name that fits the 8-bit l_read_name field along
// with its NUL.
const maxNameLen = 254

type binaryWriter struct {
	w   *bytes.Buffer
	buf [4]byte
}

func (w *binaryWriter) writeUint8(v uint8) {
	w.buf[0] = v
	w.w.Write(w.buf[:1])
}

func (w *binaryWriter) writeUint16(v uint16) {
	binary.LittleEndian.PutUint16(w.buf[:2], v)
	w.w.Write(w.buf[:2])
}

func (w *binaryWriter) writeInt32(v int32) {
	binary.LittleEndian.PutUint32(w.buf[:4], uint32(v))
	w.w.Write(w.buf[:4])
}

// reg2bin returns the UCSC bin of the 0-based half-open range [beg, end).
func reg2bin(beg, end int) int {
	end--
	switch {
	case beg>>14 == end>>14:
		return ((1<<15)-1)/7 + (beg >> 14)
	case beg>>17 == end>>17:
		return ((1<<12)-1)/7 + (beg >> 17)
	case beg>>20 == end>>20:
		return ((1<<9)-1)/7 + (beg >> 20)
	case beg>>23 == end>>23:
		return ((1<<6)-1)/7 + (beg >> 23)
	case beg>>26 == end>>26:
		return ((1<<3)-1)/7 + (beg >> 26)
	}
	return 0
}

// Bin is the index bin of the record's alignment span. Unplaced records and
// zero-length spans are binned at their position alone.
func (r *Record) Bin() int {
	if r.Pos < 0 {
		return 4680 // reg2bin(-1, 0)
	}
	end := r.End()
	if end <= r.Pos {
		end = r.Pos + 1
	}
	return reg2bin(r.Pos, end)
}

// Marshal appends the BAM encoding of r to buf: the block size, the fixed
// fields, then the record buffer verbatim. Tags of type 'd' are written as
// they are; BAM readers that predate that type will reject them.
func Marshal(r *Record, buf *bytes.Buffer) error {
	if r.lName <= 1 || r.lName-1 > maxNameLen {
		return errors.E(errors.Invalid, fmt.Sprintf("bam: name absent or longer than %d bytes: %q", maxNameLen, r.Name()))
	}
	if r.nCigar > 0xffff {
		return errors.E(errors.Invalid, fmt.Sprintf("bam: %d cigar fields do not fit in a record", r.nCigar))
	}
	r.layout() // validates the buffer
	bin := binaryWriter{w: buf}
	bin.writeInt32(int32(bamFixedBytes + len(r.data)))
	bin.writeInt32(int32(r.RefID))
	bin.writeInt32(int32(r.Pos))
	bin.writeUint8(byte(r.lName))
	bin.writeUint8(r.MapQ)
	bin.writeUint16(uint16(r.Bin()))
	bin.writeUint16(uint16(r.nCigar))
	bin.writeUint16(uint16(r.Flags))
	bin.writeInt32(int32(r.lSeq))
	bin.writeInt32(int32(r.MateRefID))
	bin.writeInt32(int32(r.MatePos))
	bin.writeInt32(int32(r.TempLen))
	buf.Write(r.data)
	return nil
}

// MarshalHeader encodes header in BAM binary format.
func MarshalHeader(header *sam.Header) ([]byte, error) {
	bb := bytes.Buffer{}
	if err := header.EncodeBinary(&bb); err != nil {
		return nil, err
	}
	return bb.Bytes(), nil
}
