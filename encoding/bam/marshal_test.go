// Copyright 2018 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package bam_test

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/grailbio/bamrec/encoding/bam"
	"github.com/grailbio/hts/sam"
	"github.com/grailbio/testutil/expect"
	"github.com/stretchr/testify/require"
)

func newHeader(t *testing.T) *sam.Header {
	chr1, err := sam.NewReference("chr1", "", "", 1000, nil, nil)
	require.NoError(t, err)
	chr2, err := sam.NewReference("chr2", "", "", 2000, nil, nil)
	require.NoError(t, err)
	header, err := sam.NewHeader(nil, []*sam.Reference{chr1, chr2})
	require.NoError(t, err)
	return header
}

func TestMarshal(t *testing.T) {
	r := newRecord(t, "read1", "1S3M", "ACGT", []byte{30, 31, 32, 33})
	r.Flags = sam.Paired | sam.Read1
	r.MateRefID, r.MatePos, r.TempLen = 1, 200, -50
	require.NoError(t, r.AddIntTag("AS", 12))
	require.NoError(t, r.AddFloatTag("XF", 0.25))
	require.NoError(t, r.AddTextTag("RG", "g1"))

	buf := bytes.NewBuffer(nil)
	require.NoError(t, bam.Marshal(r, buf))
	serialized := buf.Bytes()
	serializedLen := int(binary.LittleEndian.Uint32(serialized[:4]))
	require.Equal(t, serializedLen, len(serialized)-4)
	require.Equal(t, 32+r.Len(), serializedLen)
	require.Equal(t, uint16(4681), binary.LittleEndian.Uint16(serialized[14:]))

	r2, err := bam.Unmarshal(serialized[4:])
	require.NoError(t, err)
	require.Equal(t, r.String(), r2.String())
	require.Equal(t, r.Checksum(), r2.Checksum())
	require.Equal(t, r.Flags, r2.Flags)
	require.Equal(t, r.TempLen, r2.TempLen)
	require.Equal(t, r.MapQ, r2.MapQ)

	// The decoded record does not alias the input.
	serialized[4+32] = 'X'
	require.Equal(t, "read1", r2.Name())
}

func TestMarshalErrors(t *testing.T) {
	buf := bytes.NewBuffer(nil)
	err := bam.Marshal(bam.NewRecord(), buf)
	expect.True(t, bam.IsArgumentError(err), "%v", err)
	long := make([]byte, 255)
	for i := range long {
		long[i] = 'a'
	}
	r := newRecord(t, string(long), "1M", "A", nil)
	expect.True(t, bam.IsArgumentError(bam.Marshal(r, buf)))
	expect.EQ(t, buf.Len(), 0)
}

func TestUnmarshalErrors(t *testing.T) {
	_, err := bam.Unmarshal(make([]byte, 10))
	expect.True(t, bam.IsFormatError(err), "%v", err)

	r := newRecord(t, "r", "2M", "AC", nil)
	require.NoError(t, r.AddIntTag("NM", 1))
	buf := bytes.NewBuffer(nil)
	require.NoError(t, bam.Marshal(r, buf))
	good := buf.Bytes()[4:]

	truncated := good[:len(good)-2]
	_, err = bam.Unmarshal(truncated)
	expect.True(t, bam.IsFormatError(err), "%v", err)

	badType := append([]byte(nil), good...)
	badType[len(badType)-5] = 'q'
	_, err = bam.Unmarshal(badType)
	expect.True(t, bam.IsFormatError(err), "%v", err)

	short := append([]byte(nil), good[:32]...)
	_, err = bam.Unmarshal(short)
	expect.True(t, bam.IsFormatError(err), "%v", err)
}

// A record whose absent qualities are stored as a single 0xff byte is not
// accepted; only the seqLen-byte fill is.
func TestUnmarshalShortQualityMarker(t *testing.T) {
	r := newRecord(t, "r", "4M", "ACGT", nil)
	require.NoError(t, r.AddIntTag("AS", 7))
	buf := bytes.NewBuffer(nil)
	require.NoError(t, bam.Marshal(r, buf))
	good := buf.Bytes()[4:]
	_, err := bam.Unmarshal(good)
	require.NoError(t, err)

	// Drop three of the four 0xff quality bytes.
	qualEnd := len(good) - 7
	short := append(append([]byte(nil), good[:qualEnd-3]...), good[qualEnd:]...)
	_, err = bam.Unmarshal(short)
	expect.True(t, bam.IsFormatError(err), "%v", err)
}

func TestUnmarshalHeaderErrors(t *testing.T) {
	b, err := bam.MarshalHeader(newHeader(t))
	require.NoError(t, err)
	_, err = bam.UnmarshalHeader(append(b, 0, 0))
	expect.True(t, bam.IsFormatError(err), "%v", err)
	_, err = bam.UnmarshalHeader(b[:len(b)-3])
	expect.True(t, bam.IsFormatError(err), "%v", err)
}

func TestHeaderRoundTrip(t *testing.T) {
	header := newHeader(t)
	b, err := bam.MarshalHeader(header)
	require.NoError(t, err)
	h2, err := bam.UnmarshalHeader(b)
	require.NoError(t, err)
	require.Equal(t, len(header.Refs()), len(h2.Refs()))
	for i, ref := range h2.Refs() {
		require.Equal(t, header.Refs()[i].Name(), ref.Name())
		require.Equal(t, header.Refs()[i].Len(), ref.Len())
	}
}

func TestSAMInterop(t *testing.T) {
	header := newHeader(t)
	refs := header.Refs()
	nm, err := sam.NewAux(sam.NewTag("NM"), 3)
	require.NoError(t, err)
	xa, err := sam.NewAux(sam.NewTag("XA"), "chr2,+10,4M,1;")
	require.NoError(t, err)
	ch, err := sam.NewAux(sam.NewTag("XC"), sam.ASCII('q'))
	require.NoError(t, err)
	s, err := sam.NewRecord("samread", refs[1], refs[0], 100, 300, 250, 42,
		[]sam.CigarOp{
			sam.NewCigarOp(sam.CigarSoftClipped, 1),
			sam.NewCigarOp(sam.CigarMatch, 4),
		},
		[]byte("ACGTN"), []byte{20, 21, 22, 23, 24}, []sam.Aux{nm, xa, ch})
	require.NoError(t, err)
	s.Flags = sam.Paired | sam.Reverse

	r, err := bam.FromSAM(s)
	require.NoError(t, err)
	require.Equal(t, "samread", r.Name())
	require.Equal(t, 1, r.RefID)
	require.Equal(t, 0, r.MateRefID)
	require.Equal(t, 100, r.Pos)
	require.Equal(t, "1S4M", r.Cigar().String())
	require.Equal(t, "ACGTN", r.Sequence())
	require.Equal(t, []byte{20, 21, 22, 23, 24}, r.Qualities())
	require.True(t, r.Reverse())
	v, ok := r.IntTag("NM")
	require.True(t, ok)
	require.Equal(t, 3, v)
	require.Equal(t, 1, r.CountSecondaryAlignments())
	c, ok := r.TextTag("XC")
	require.True(t, ok)
	require.Equal(t, "q", c)

	require.NoError(t, r.AddFloatTag("XF", 0.5))
	back, err := r.ToSAM(refs)
	require.NoError(t, err)
	require.Equal(t, s.Name, back.Name)
	require.Equal(t, s.Ref, back.Ref)
	require.Equal(t, s.MateRef, back.MateRef)
	require.Equal(t, s.Pos, back.Pos)
	require.Equal(t, s.MatePos, back.MatePos)
	require.Equal(t, s.TempLen, back.TempLen)
	require.Equal(t, s.MapQ, back.MapQ)
	require.Equal(t, s.Flags, back.Flags)
	require.Equal(t, s.Cigar, back.Cigar)
	require.Equal(t, s.Seq.Expand(), back.Seq.Expand())
	require.Equal(t, s.Qual, back.Qual)
	require.Equal(t, 4, len(back.AuxFields))
	for i, a := range s.AuxFields {
		require.Equal(t, []byte(a), []byte(back.AuxFields[i]))
	}
	require.Equal(t, byte('f'), back.AuxFields[3].Type())
	require.Equal(t, float32(0.5), back.AuxFields[3].Value())

	_, err = r.ToSAM(refs[:1])
	require.True(t, bam.IsArgumentError(err))
}

func TestChecksum(t *testing.T) {
	r := newRecord(t, "r", "4M", "ACGT", []byte{1, 2, 3, 4})
	c := r.Clone()
	require.Equal(t, r.Checksum(), c.Checksum())
	nameSum := r.Checksum(bam.FieldName)
	require.NoError(t, r.AddIntTag("NM", 0))
	require.NotEqual(t, r.Checksum(), c.Checksum())
	require.NotEqual(t, r.Checksum(bam.FieldAux), c.Checksum(bam.FieldAux))
	require.Equal(t, nameSum, r.Checksum(bam.FieldName))
	require.Equal(t, r.Checksum(bam.FieldSeq, bam.FieldQual), c.Checksum(bam.FieldSeq, bam.FieldQual))
	require.NotEqual(t, r.Checksum(bam.FieldSeq), r.Checksum(bam.FieldQual))
}
