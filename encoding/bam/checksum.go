// Copyright 2018 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package bam

import (
	"blainsmith.com/go/seahash"
)

// Checksum hashes the given buffer fields, or all of them if none are given.
// Each field is prefixed by its type and length so that moving bytes between
// fields changes the result.
func (r *Record) Checksum(fields ...FieldType) uint64 {
	if len(fields) == 0 {
		for f := MinField; f < FieldInvalid; f++ {
			fields = append(fields, f)
		}
	}
	l := r.layout()
	h := seahash.New()
	var hdr [5]byte
	for _, f := range fields {
		n := l.size(f)
		hdr[0] = byte(f)
		hdr[1], hdr[2], hdr[3], hdr[4] = byte(n), byte(n>>8), byte(n>>16), byte(n>>24)
		h.Write(hdr[:])
		h.Write(r.data[l.start(f):l.end(f)])
	}
	return h.Sum64()
}
