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

var errRecordTooShort = errors.E(errors.Integrity, "bam: record too short")

// Unmarshal decodes a serialized record that does not include the leading
// block size, as produced by Marshal after its first four bytes. The result
// does not alias b. The quality region must hold seqLen bytes, all 0xff when
// qualities are absent; the single-byte 0xff form is rejected as corrupt.
func Unmarshal(b []byte) (*Record, error) {
	if len(b) < bamFixedBytes {
		return nil, errRecordTooShort
	}
	// int(int32(uint32)) keeps the sign of -1.
	r := &Record{
		RefID:     int(int32(binary.LittleEndian.Uint32(b))),
		Pos:       int(int32(binary.LittleEndian.Uint32(b[4:]))),
		lName:     int(b[8]),
		MapQ:      b[9],
		nCigar:    int(binary.LittleEndian.Uint16(b[12:])),
		Flags:     sam.Flags(binary.LittleEndian.Uint16(b[14:])),
		lSeq:      int(int32(binary.LittleEndian.Uint32(b[16:]))),
		MateRefID: int(int32(binary.LittleEndian.Uint32(b[20:]))),
		MatePos:   int(int32(binary.LittleEndian.Uint32(b[24:]))),
		TempLen:   int(int32(binary.LittleEndian.Uint32(b[28:]))),
	}
	if r.RefID < -1 || r.MateRefID < -1 {
		return nil, errors.E(errors.Integrity, fmt.Sprintf("bam: reference ids %d, %d out of range", r.RefID, r.MateRefID))
	}
	if r.lSeq < 0 {
		return nil, errors.E(errors.Integrity, fmt.Sprintf("bam: negative sequence length %d", r.lSeq))
	}
	variable := b[bamFixedBytes:]
	auxOffset := r.lName + r.nCigar*CigarOpSize + (r.lSeq+1)>>1 + r.lSeq
	if len(variable) < auxOffset {
		return nil, errors.E(errors.Integrity,
			fmt.Sprintf("bam: corrupt record: %d variable bytes, aux offset %d", len(variable), auxOffset))
	}
	if r.lName > 0 && variable[r.lName-1] != 0 {
		return nil, errors.E(errors.Integrity, "bam: read name is not NUL-terminated")
	}
	if _, err := validateAux(variable[auxOffset:]); err != nil {
		return nil, err
	}
	r.data = append([]byte(nil), variable...)
	return r, nil
}

// UnmarshalHeader parses a sam.Header encoded in BAM binary format.
func UnmarshalHeader(buf []byte) (*sam.Header, error) {
	header, err := sam.NewHeader(nil, nil)
	if err != nil {
		return nil, err
	}
	hr := bytes.NewReader(buf)
	if err := header.DecodeBinary(hr); err != nil {
		return nil, errors.E(errors.Integrity, "bam: decode header", err)
	}
	if hr.Len() > 0 {
		return nil, errors.E(errors.Integrity, fmt.Sprintf("bam: %d byte junk at the end of SAM header", hr.Len()))
	}
	return header, nil
}
