// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package biosimd

// PackedSeqCount counts the bases in [startPos, endPos) of the packed
// sequence seq4 whose code x has table[x] == 1. Every table entry must be 0
// or 1. Positions are not validated: out-of-range positions panic.
func PackedSeqCount(seq4 []byte, table *NibbleLookupTable, startPos, endPos int) int {
	cnt := 0
	pos := startPos
	if pos < endPos && pos&1 == 1 {
		cnt += int(table.Get(seq4[pos>>1] & 15))
		pos++
	}
	// pos is even here, so whole bytes can be counted two bases at a time.
	for ; pos+1 < endPos; pos += 2 {
		b := seq4[pos>>1]
		cnt += int(table.Get(b>>4) + table.Get(b&15))
	}
	if pos < endPos {
		cnt += int(table.Get(seq4[pos>>1] >> 4))
	}
	return cnt
}
