// Copyright 2018 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

// Package bam implements a compact alignment record that keeps its
// variable-length fields in one contiguous buffer laid out as in a BAM
// record: [name][cigar][seq][qual][aux].
//
// Every mutation of a variable-length field builds a new buffer, copying the
// fields before the mutated one unchanged and relocating the fields after it
// verbatim. Handles that share a *Record observe each other's mutations; use
// Clone for an independent copy.
package bam
