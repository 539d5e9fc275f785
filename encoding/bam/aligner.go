// Copyright 2018 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package bam

import (
	"fmt"

	"github.com/grailbio/bamrec/cigar"
	"github.com/grailbio/bamrec/encoding/fasta"
	"github.com/grailbio/base/errors"
)

// AlignerMapQ is the mapping quality given to records built from an
// Aligner result.
const AlignerMapQ = DefaultMapQ

// AlignmentScoreTag holds the aligner score of records built by
// NewFromAligner.
const AlignmentScoreTag = "AS"

// Alignment is the result of aligning a query against a reference window.
type Alignment struct {
	// RefOffset is the 0-based offset of the first aligned reference base
	// within the window.
	RefOffset int
	Cigar     cigar.Cigar
	Score     int
}

// Aligner aligns a query sequence against a reference window. The algorithm
// is up to the implementation; the returned cigar must consume the whole
// query.
type Aligner interface {
	Align(query, reference string) (Alignment, error)
}

// NewFromAligner aligns seq against reference, a window of reference
// sequence refID starting at regionStart, and packs the result into a new
// record. The record has no qualities, mapping quality AlignerMapQ and the
// alignment score in an integer "AS" tag.
func NewFromAligner(aligner Aligner, name, seq, reference string, refID, regionStart int) (*Record, error) {
	a, err := aligner.Align(seq, reference)
	if err != nil {
		return nil, errors.E(err, fmt.Sprintf("bam: align %s", name))
	}
	if a.RefOffset < 0 || a.RefOffset > len(reference) {
		return nil, errors.E(errors.Invalid,
			fmt.Sprintf("bam: align %s: reference offset %d outside window of %d bases", name, a.RefOffset, len(reference)))
	}
	r, err := New(NewOpts{
		Name:  name,
		Seq:   seq,
		Cigar: a.Cigar,
		RefID: refID,
		Pos:   regionStart + a.RefOffset,
		MapQ:  AlignerMapQ,
	})
	if err != nil {
		return nil, err
	}
	if err := r.AddIntTag(AlignmentScoreTag, a.Score); err != nil {
		return nil, err
	}
	return r, nil
}

// AlignToReference fetches bases [start, end) of refName from fa and aligns
// seq against them with NewFromAligner.
func AlignToReference(aligner Aligner, fa fasta.Fasta, name, seq, refName string, refID, start, end int) (*Record, error) {
	if start < 0 || end <= start {
		return nil, errors.E(errors.Invalid, fmt.Sprintf("bam: invalid reference window %s:%d-%d", refName, start, end))
	}
	window, err := fa.Get(refName, uint64(start), uint64(end))
	if err != nil {
		return nil, errors.E(errors.NotExist, fmt.Sprintf("bam: reference window %s:%d-%d", refName, start, end), err)
	}
	return NewFromAligner(aligner, name, seq, window, refID, start)
}
