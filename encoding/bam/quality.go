// Copyright 2018 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package bam

// absentQual fills the quality field of a record without qualities.
const absentQual = 0xff

// NoMeanQuality is returned by MeanQuality when there are no qualities to
// average.
const NoMeanQuality = -1.0

// HasQualities reports whether per-base qualities are recorded.
func (r *Record) HasQualities() bool {
	if r.lSeq == 0 {
		return false
	}
	l := r.layout()
	return r.data[l.start(FieldQual)] != absentQual
}

// Qualities returns a copy of the phred scores, or nil if absent.
func (r *Record) Qualities() []byte {
	if !r.HasQualities() {
		return nil
	}
	return append([]byte(nil), r.Field(FieldQual)...)
}

// MeanQuality is the arithmetic mean of the phred scores. It returns
// NoMeanQuality for an empty sequence, and also when qualities are absent:
// averaging the 0xff fill would yield 255, which is not a phred score.
func (r *Record) MeanQuality() float64 {
	if !r.HasQualities() {
		return NoMeanQuality
	}
	sum := 0
	for _, q := range r.Field(FieldQual) {
		sum += int(q)
	}
	return float64(sum) / float64(r.lSeq)
}

// QualityTrimRange finds the bases to keep when trimming low-quality ends.
// start is the index of the first base with quality >= threshold and end is
// one past the last such base. When no base qualifies, including when
// qualities are absent, start is 0 and end is -1: no trim was computed, which
// is different from an empty range.
func (r *Record) QualityTrimRange(threshold int) (start, end int) {
	start, end = 0, -1
	if !r.HasQualities() {
		return
	}
	qual := r.Field(FieldQual)
	for i, q := range qual {
		if int(q) >= threshold {
			start = i
			break
		}
	}
	for i := len(qual) - 1; i >= 0; i-- {
		if int(qual[i]) >= threshold {
			end = i + 1
			break
		}
	}
	return
}

// QualitySequence returns the "GV" text tag if present and the decoded
// sequence otherwise.
func (r *Record) QualitySequence() string {
	if v, ok := r.TextTag("GV"); ok && v != "" {
		return v
	}
	return r.Sequence()
}
