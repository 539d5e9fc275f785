// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package biosimd provides the packed-nucleotide codecs used by alignment
// records: converting between ASCII bases and 4-bit .bam base codes, packing
// two codes per byte (first base in the high nibble), and counting codes in
// packed form.
//
// Lookup tables are built with base/simd's NibbleLookupTable so callers can
// pass them to base/simd functions directly.
package biosimd
