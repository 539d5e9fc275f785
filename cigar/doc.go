// Copyright 2018 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

// Package cigar implements the run-length alignment edit list (CIGAR) that
// describes how a query sequence aligns to a reference. A Cigar is a plain
// value: it owns no record buffer, and converting it to or from the packed
// 32-bit BAM representation is explicit.
package cigar
