// Copyright 2018 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package bam

import (
	"github.com/grailbio/bamrec/interval"
)

// SpanIndex answers overlap queries over the reference spans of a set of
// records.
type SpanIndex = interval.RefIndex[int, *Record]

// NewSpanIndex indexes the aligned span [Pos, End) of every placed record.
// Unmapped records, records without a position, and records whose cigar
// consumes no reference bases are left out. Query coordinates are inclusive:
// FindOverlapping(refID, start, end-1) finds records overlapping [start,
// end).
func NewSpanIndex(records []*Record, opts interval.BuildOpts) *SpanIndex {
	items := make([]interval.RefInterval[int, *Record], 0, len(records))
	for _, r := range records {
		if !r.Mapped() || r.RefID < 0 || r.Pos < 0 {
			continue
		}
		end := r.End()
		if end <= r.Pos {
			continue
		}
		items = append(items, interval.RefInterval[int, *Record]{
			RefID:    r.RefID,
			Interval: interval.Interval[int, *Record]{Start: r.Pos, Stop: end - 1, Value: r},
		})
	}
	return interval.NewRefIndex(items, opts)
}
