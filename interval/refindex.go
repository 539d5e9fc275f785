// Copyright 2018 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package interval

import (
	"github.com/exascience/pargo/parallel"
)

// RefInterval is an interval on reference sequence RefID.
type RefInterval[K Key, T any] struct {
	RefID int
	Interval[K, T]
}

// RefIndex holds one Tree per reference id.
type RefIndex[K Key, T any] struct {
	trees []*Tree[K, T]
	n     int
}

// NewRefIndex builds the per-reference trees of items concurrently. Items
// with a negative RefID are dropped.
func NewRefIndex[K Key, T any](items []RefInterval[K, T], opts BuildOpts) *RefIndex[K, T] {
	nRefs := 0
	for _, it := range items {
		nRefs = max(nRefs, it.RefID+1)
	}
	byRef := make([][]Interval[K, T], nRefs)
	x := &RefIndex[K, T]{trees: make([]*Tree[K, T], nRefs)}
	for _, it := range items {
		if it.RefID < 0 {
			continue
		}
		byRef[it.RefID] = append(byRef[it.RefID], it.Interval)
		x.n++
	}
	if nRefs == 0 {
		return x
	}
	parallel.Range(0, nRefs, 0, func(low, high int) {
		for refID := low; refID < high; refID++ {
			if len(byRef[refID]) > 0 {
				x.trees[refID] = Build(byRef[refID], opts)
			}
		}
	})
	return x
}

// Tree returns the tree of refID, or nil if no interval lies on it.
func (x *RefIndex[K, T]) Tree(refID int) *Tree[K, T] {
	if refID < 0 || refID >= len(x.trees) {
		return nil
	}
	return x.trees[refID]
}

// Len is the number of indexed intervals.
func (x *RefIndex[K, T]) Len() int { return x.n }

// FindOverlapping returns the intervals on refID that share at least one
// point with [start, stop].
func (x *RefIndex[K, T]) FindOverlapping(refID int, start, stop K) []Interval[K, T] {
	t := x.Tree(refID)
	if t == nil {
		return nil
	}
	return t.FindOverlapping(start, stop)
}

// FindContained returns the intervals on refID that lie within [start,
// stop].
func (x *RefIndex[K, T]) FindContained(refID int, start, stop K) []Interval[K, T] {
	t := x.Tree(refID)
	if t == nil {
		return nil
	}
	return t.FindContained(start, stop)
}
