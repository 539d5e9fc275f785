// Copyright 2018 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

/*Package interval implements a static centered interval tree for overlap and
  containment queries over closed intervals [Start, Stop].

  A Tree is built once from a batch of intervals and never modified
  afterwards, so any number of goroutines may query it concurrently. Large
  trees are built in parallel.

  RefIndex keeps one Tree per reference sequence, for genomic intervals keyed
  by reference id.
*/
package interval
