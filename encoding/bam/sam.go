// Copyright 2018 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package bam

import (
	"fmt"

	"github.com/grailbio/bamrec/cigar"
	"github.com/grailbio/base/errors"
	"github.com/grailbio/hts/sam"
)

func refByID(refs []*sam.Reference, id int) (*sam.Reference, error) {
	if id == -1 {
		return nil, nil
	}
	if id < -1 || id >= len(refs) {
		return nil, errors.E(errors.Invalid, fmt.Sprintf("bam: reference id %d out of range [0,%d)", id, len(refs)))
	}
	return refs[id], nil
}

// ToSAM converts r to a sam.Record, resolving reference ids against refs
// (typically header.Refs()). The result shares no memory with r. Tags of
// type 'd' become 'f' since SAM has no double type.
func (r *Record) ToSAM(refs []*sam.Reference) (*sam.Record, error) {
	ref, err := refByID(refs, r.RefID)
	if err != nil {
		return nil, err
	}
	mateRef, err := refByID(refs, r.MateRefID)
	if err != nil {
		return nil, err
	}
	seq := r.Field(FieldSeq)
	doublets := make([]sam.Doublet, len(seq))
	for i, b := range seq {
		doublets[i] = sam.Doublet(b)
	}
	out := &sam.Record{
		Name:    r.Name(),
		Ref:     ref,
		Pos:     r.Pos,
		MapQ:    r.MapQ,
		Cigar:   r.Cigar().ToSAM(),
		Flags:   r.Flags,
		MateRef: mateRef,
		MatePos: r.MatePos,
		TempLen: r.TempLen,
		Seq:     sam.Seq{Length: r.lSeq, Seq: doublets},
		Qual:    append([]byte(nil), r.Field(FieldQual)...),
	}
	r.forEachTag(func(e tagEntry) bool {
		switch e.typ() {
		case 'd':
			v, _ := e.value()
			var aux sam.Aux
			aux, err = sam.NewAux(sam.NewTag(e.name()), float32(v.Float))
			if err != nil {
				return false
			}
			out.AuxFields = append(out.AuxFields, aux)
		case 'Z', 'H':
			out.AuxFields = append(out.AuxFields, sam.Aux(append([]byte(nil), e.raw[:len(e.raw)-1]...)))
		default:
			out.AuxFields = append(out.AuxFields, sam.Aux(append([]byte(nil), e.raw...)))
		}
		return true
	})
	if err != nil {
		return nil, errors.E(errors.Invalid, fmt.Sprintf("bam: record %q", r.Name()), err)
	}
	return out, nil
}

// FromSAM builds a record from s. The fields of s are copied.
func FromSAM(s *sam.Record) (*Record, error) {
	if s.Qual != nil && len(s.Qual) != s.Seq.Length {
		return nil, errors.E(errors.Invalid,
			fmt.Sprintf("bam: %s: %d qualities for %d bases", s.Name, len(s.Qual), s.Seq.Length))
	}
	if len(s.Seq.Seq) != (s.Seq.Length+1)>>1 {
		return nil, errors.E(errors.Invalid,
			fmt.Sprintf("bam: %s: %d packed bytes for %d bases", s.Name, len(s.Seq.Seq), s.Seq.Length))
	}
	c := cigar.FromSAM(s.Cigar)
	r := &Record{
		RefID:     s.Ref.ID(),
		Pos:       s.Pos,
		MapQ:      s.MapQ,
		Flags:     s.Flags,
		MateRefID: s.MateRef.ID(),
		MatePos:   s.MatePos,
		TempLen:   s.TempLen,
		nCigar:    len(c),
		lSeq:      s.Seq.Length,
	}
	if s.Name != "" {
		r.lName = len(s.Name) + 1
	}
	r.data = make([]byte, r.lName+r.nCigar*CigarOpSize+len(s.Seq.Seq)+r.lSeq)
	l := r.layout()
	copy(r.data, s.Name)
	putCigar(r.data[l.start(FieldCigar):l.end(FieldCigar)], c)
	seq := r.data[l.start(FieldSeq):l.end(FieldSeq)]
	for i, d := range s.Seq.Seq {
		seq[i] = byte(d)
	}
	putQual(r.data[l.start(FieldQual):l.end(FieldQual)], s.Qual)
	for _, a := range s.AuxFields {
		r.data = append(r.data, a...)
		switch a.Type() {
		case 'Z', 'H':
			r.data = append(r.data, 0)
		}
	}
	if _, err := validateAux(r.data[l.start(FieldAux):]); err != nil {
		return nil, errors.E(err, fmt.Sprintf("bam: %s", s.Name))
	}
	return r, nil
}
