// Copyright 2018 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package interval

import (
	"cmp"
	"fmt"
	"sort"

	"github.com/exascience/pargo/parallel"
	psort "github.com/exascience/pargo/sort"
	"github.com/grailbio/base/log"
)

// Key is the coordinate type of an interval.
type Key interface {
	cmp.Ordered
}

// Interval is the closed range [Start, Stop] carrying Value.
type Interval[K Key, T any] struct {
	Start, Stop K
	Value       T
}

func (i Interval[K, T]) String() string {
	return fmt.Sprintf("Interval(%v, %v): %v", i.Start, i.Stop, i.Value)
}

// Overlaps reports whether i shares at least one point with [start, stop].
func (i Interval[K, T]) Overlaps(start, stop K) bool {
	return i.Stop >= start && i.Start <= stop
}

// ContainedIn reports whether i lies within [start, stop].
func (i Interval[K, T]) ContainedIn(start, stop K) bool {
	return i.Start >= start && i.Stop <= stop
}

// BuildOpts controls the shape of a Tree.
type BuildOpts struct {
	// MaxDepth bounds the recursion. Each level halves the remaining depth and
	// a node whose depth reaches zero keeps all of its intervals.
	MaxDepth int
	// A node keeps all of its intervals without splitting when it has fewer
	// than both MinBucket and MaxBucket of them.
	MinBucket int
	MaxBucket int
}

// DefaultBuildOpts are the options used by Build when opts is the zero
// value.
var DefaultBuildOpts = BuildOpts{MaxDepth: 16, MinBucket: 64, MaxBucket: 512}

// parallelBuildGrainSize is the smallest subtree input that is built on its
// own goroutine, and the smallest input sorted with a parallel sort.
const parallelBuildGrainSize = 0x1000

type node[K Key, T any] struct {
	center K
	// bucket holds the intervals that contain center, sorted by Start.
	bucket []Interval[K, T]
	// leftExtent and rightExtent bound the coordinates this node was built
	// for. They are informational only.
	leftExtent, rightExtent K
	left, right             *node[K, T]
}

// Tree is an immutable interval tree. The zero Tree is empty.
type Tree[K Key, T any] struct {
	root *node[K, T]
	n    int
}

type intervalSorter[K Key, T any] []Interval[K, T]

func sortByStart[K Key, T any](intervals []Interval[K, T]) {
	sort.SliceStable(intervals, func(i, j int) bool {
		return intervals[i].Start < intervals[j].Start
	})
}

func (s intervalSorter[K, T]) SequentialSort(i, j int) {
	sortByStart(s[i:j])
}

func (s intervalSorter[K, T]) NewTemp() psort.StableSorter {
	return intervalSorter[K, T](make([]Interval[K, T], len(s)))
}

func (s intervalSorter[K, T]) Len() int {
	return len(s)
}

func (s intervalSorter[K, T]) Less(i, j int) bool {
	return s[i].Start < s[j].Start
}

func (s intervalSorter[K, T]) Assign(source psort.StableSorter) func(i, j, len int) {
	dst, src := s, source.(intervalSorter[K, T])
	return func(i, j, len int) {
		copy(dst[i:i+len], src[j:j+len])
	}
}

// Build constructs a tree over a copy of intervals. Intervals with Stop <
// Start are kept but never match a query. Build returns only once the whole
// tree, including subtrees built in parallel, is complete.
func Build[K Key, T any](intervals []Interval[K, T], opts BuildOpts) *Tree[K, T] {
	if opts == (BuildOpts{}) {
		opts = DefaultBuildOpts
	}
	t := &Tree[K, T]{n: len(intervals)}
	if len(intervals) == 0 {
		return t
	}
	sorted := append([]Interval[K, T](nil), intervals...)
	if len(sorted) >= parallelBuildGrainSize {
		psort.StableSort(intervalSorter[K, T](sorted))
	} else {
		sortByStart(sorted)
	}
	leftExtent, rightExtent := sorted[0].Start, sorted[0].Stop
	for _, iv := range sorted {
		rightExtent = max(rightExtent, iv.Stop)
	}
	if log.At(log.Debug) {
		log.Debug.Printf("interval: building tree of %d intervals over [%v, %v], opts %+v",
			len(sorted), leftExtent, rightExtent, opts)
	}
	t.root = build(sorted, opts.MaxDepth, opts, leftExtent, rightExtent)
	return t
}

// build constructs the subtree for sorted, which is ordered by Start and
// owned by the callee.
func build[K Key, T any](sorted []Interval[K, T], depth int, opts BuildOpts, leftExtent, rightExtent K) *node[K, T] {
	n := &node[K, T]{leftExtent: leftExtent, rightExtent: rightExtent}
	if depth <= 0 || (len(sorted) < opts.MinBucket && len(sorted) < opts.MaxBucket) {
		n.center = sorted[len(sorted)/2].Start
		n.bucket = sorted
		return n
	}
	n.center = sorted[len(sorted)/2].Start
	var lefts, rights []Interval[K, T]
	for _, iv := range sorted {
		switch {
		case iv.Stop < n.center:
			lefts = append(lefts, iv)
		case iv.Start > n.center:
			rights = append(rights, iv)
		default:
			n.bucket = append(n.bucket, iv)
		}
	}
	depth /= 2
	buildLeft := func() {
		if len(lefts) > 0 {
			n.left = build(lefts, depth, opts, leftExtent, n.center)
		}
	}
	buildRight := func() {
		if len(rights) > 0 {
			n.right = build(rights, depth, opts, n.center, rightExtent)
		}
	}
	if len(lefts) >= parallelBuildGrainSize && len(rights) >= parallelBuildGrainSize {
		parallel.Do(buildLeft, buildRight)
	} else {
		buildLeft()
		buildRight()
	}
	return n
}

// Len is the number of intervals in the tree.
func (t *Tree[K, T]) Len() int { return t.n }

// FindOverlapping returns the intervals that share at least one point with
// [start, stop].
func (t *Tree[K, T]) FindOverlapping(start, stop K) []Interval[K, T] {
	var out []Interval[K, T]
	t.root.visit(start, stop, func(iv Interval[K, T]) {
		if iv.Overlaps(start, stop) {
			out = append(out, iv)
		}
	})
	return out
}

// FindContained returns the intervals that lie within [start, stop].
func (t *Tree[K, T]) FindContained(start, stop K) []Interval[K, T] {
	var out []Interval[K, T]
	t.root.visit(start, stop, func(iv Interval[K, T]) {
		if iv.ContainedIn(start, stop) {
			out = append(out, iv)
		}
	})
	return out
}

// visit calls fn on every bucket entry of the nodes a query for [start, stop]
// must inspect.
func (n *node[K, T]) visit(start, stop K, fn func(Interval[K, T])) {
	for ; n != nil; n = n.right {
		if len(n.bucket) > 0 && !(stop < n.bucket[0].Start) {
			for _, iv := range n.bucket {
				fn(iv)
			}
		}
		if start <= n.center {
			n.left.visit(start, stop, fn)
		}
		if stop < n.center {
			return
		}
	}
}

// Clone returns a deep copy of t. Values are copied shallowly.
func (t *Tree[K, T]) Clone() *Tree[K, T] {
	return &Tree[K, T]{root: t.root.clone(), n: t.n}
}

func (n *node[K, T]) clone() *node[K, T] {
	if n == nil {
		return nil
	}
	c := *n
	c.bucket = append([]Interval[K, T](nil), n.bucket...)
	c.left = n.left.clone()
	c.right = n.right.clone()
	return &c
}

// Depth returns the number of levels in the tree.
func (t *Tree[K, T]) Depth() int { return t.root.depth() }

func (n *node[K, T]) depth() int {
	if n == nil {
		return 0
	}
	return 1 + max(n.left.depth(), n.right.depth())
}

func (t *Tree[K, T]) String() string {
	return fmt.Sprintf("Tree(%d intervals, depth %d)", t.n, t.Depth())
}
