// Copyright 2018 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package interval_test

import (
	"math/rand"
	"sort"
	"testing"

	"github.com/grailbio/bamrec/interval"
	"github.com/grailbio/testutil/expect"
)

type iv = interval.Interval[int, string]

func values(ivs []iv) []string {
	out := make([]string, len(ivs))
	for i, v := range ivs {
		out[i] = v.Value
	}
	sort.Strings(out)
	return out
}

func TestSmallTree(t *testing.T) {
	input := []iv{{1, 5, "a"}, {3, 8, "b"}, {10, 12, "c"}}
	for _, opts := range []interval.BuildOpts{
		{},
		interval.DefaultBuildOpts,
		{MaxDepth: 16, MinBucket: 1, MaxBucket: 1},
		{MaxDepth: 1, MinBucket: 1, MaxBucket: 1},
		{MaxDepth: 0, MinBucket: 1, MaxBucket: 1},
	} {
		tree := interval.Build(input, opts)
		expect.EQ(t, tree.Len(), 3)
		expect.EQ(t, values(tree.FindOverlapping(4, 4)), []string{"a", "b"}, "opts %+v", opts)
		expect.EQ(t, len(tree.FindOverlapping(9, 9)), 0, "opts %+v", opts)
		expect.EQ(t, values(tree.FindContained(1, 8)), []string{"a", "b"}, "opts %+v", opts)
		expect.EQ(t, values(tree.FindOverlapping(0, 100)), []string{"a", "b", "c"}, "opts %+v", opts)
		expect.EQ(t, values(tree.FindOverlapping(12, 12)), []string{"c"}, "opts %+v", opts)
		expect.EQ(t, values(tree.FindOverlapping(5, 5)), []string{"a", "b"}, "opts %+v", opts)
		expect.EQ(t, len(tree.FindContained(2, 11)), 1, "opts %+v", opts)
	}
	// The input is not reordered.
	expect.EQ(t, input[0].Value, "a")
}

func TestEmptyTree(t *testing.T) {
	tree := interval.Build[int, string](nil, interval.BuildOpts{})
	expect.EQ(t, tree.Len(), 0)
	expect.EQ(t, len(tree.FindOverlapping(0, 10)), 0)
	expect.EQ(t, len(tree.FindContained(0, 10)), 0)
	expect.EQ(t, tree.Depth(), 0)
	var zero interval.Tree[int, string]
	expect.EQ(t, len(zero.FindOverlapping(0, 10)), 0)
}

func TestSplitting(t *testing.T) {
	var input []iv
	for i := 0; i < 1000; i++ {
		input = append(input, iv{i * 10, i*10 + 5, ""})
	}
	leaf := interval.Build(input, interval.BuildOpts{MaxDepth: 16, MinBucket: 2000, MaxBucket: 2000})
	expect.EQ(t, leaf.Depth(), 1)
	split := interval.Build(input, interval.BuildOpts{MaxDepth: 16, MinBucket: 1, MaxBucket: 1})
	// Depths 16, 8, 4, 2, 1 split; the next level is a leaf.
	expect.EQ(t, split.Depth(), 6)
	expect.EQ(t, len(split.FindOverlapping(0, 10000)), 1000)
}

func bruteForce(input []iv, start, stop int, contained bool) []string {
	var out []iv
	for _, v := range input {
		if contained && v.ContainedIn(start, stop) || !contained && v.Overlaps(start, stop) {
			out = append(out, v)
		}
	}
	return values(out)
}

func randomIntervals(rnd *rand.Rand, n int, overlapping bool) []iv {
	var out []iv
	pos := 0
	for i := 0; i < n; i++ {
		if overlapping {
			start := rnd.Intn(10 * n)
			out = append(out, iv{start, start + rnd.Intn(50), string(rune('a'+i%26)) + string(rune('0'+i/26%10)) + string(rune('0'+i/260))})
			continue
		}
		pos += 1 + rnd.Intn(20)
		start := pos
		pos += rnd.Intn(20)
		out = append(out, iv{start, pos, string(rune('a'+i%26)) + string(rune('0'+i/26%10)) + string(rune('0'+i/260))})
	}
	rnd.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out
}

func TestRandomAgainstBruteForce(t *testing.T) {
	rnd := rand.New(rand.NewSource(0))
	optsList := []interval.BuildOpts{
		interval.DefaultBuildOpts,
		{MaxDepth: 16, MinBucket: 1, MaxBucket: 1},
		{MaxDepth: 4, MinBucket: 8, MaxBucket: 16},
	}
	for trial := 0; trial < 1000; trial++ {
		n := 1 + rnd.Intn(200)
		input := randomIntervals(rnd, n, trial%2 == 1)
		opts := optsList[trial%len(optsList)]
		tree := interval.Build(input, opts)
		for q := 0; q < 10; q++ {
			start := rnd.Intn(20*n+50) - 10
			stop := start + rnd.Intn(100)
			expect.EQ(t, values(tree.FindOverlapping(start, stop)), bruteForce(input, start, stop, false),
				"trial %d overlap [%d,%d]", trial, start, stop)
			expect.EQ(t, values(tree.FindContained(start, stop)), bruteForce(input, start, stop, true),
				"trial %d contained [%d,%d]", trial, start, stop)
		}
	}
}

func TestLargeParallelBuild(t *testing.T) {
	rnd := rand.New(rand.NewSource(1))
	input := randomIntervals(rnd, 50000, true)
	tree := interval.Build(input, interval.BuildOpts{MaxDepth: 32, MinBucket: 4, MaxBucket: 8})
	expect.EQ(t, tree.Len(), len(input))
	for q := 0; q < 100; q++ {
		start := rnd.Intn(500000)
		stop := start + rnd.Intn(1000)
		expect.EQ(t, values(tree.FindOverlapping(start, stop)), bruteForce(input, start, stop, false))
	}
}

func TestClone(t *testing.T) {
	input := []iv{{1, 5, "a"}, {3, 8, "b"}, {10, 12, "c"}}
	tree := interval.Build(input, interval.BuildOpts{MaxDepth: 16, MinBucket: 1, MaxBucket: 1})
	c := tree.Clone()
	expect.EQ(t, c.Len(), tree.Len())
	expect.EQ(t, c.Depth(), tree.Depth())
	expect.EQ(t, values(c.FindOverlapping(0, 20)), []string{"a", "b", "c"})
	// Results are copies; editing one does not affect the trees.
	res := tree.FindOverlapping(10, 10)
	res[0].Value = "changed"
	expect.EQ(t, values(c.FindOverlapping(10, 10)), []string{"c"})
	expect.EQ(t, values(tree.FindOverlapping(10, 10)), []string{"c"})
	expect.EQ(t, tree.String(), "Tree(3 intervals, depth 2)")
}

func TestFloatKeys(t *testing.T) {
	tree := interval.Build([]interval.Interval[float64, int]{{0.5, 1.5, 1}, {1.25, 2, 2}}, interval.BuildOpts{})
	expect.EQ(t, len(tree.FindOverlapping(1.4, 1.4)), 2)
	expect.EQ(t, len(tree.FindContained(1, 2)), 1)
	expect.EQ(t, interval.Interval[float64, int]{0.5, 1.5, 1}.String(), "Interval(0.5, 1.5): 1")
}

func TestRefIndex(t *testing.T) {
	items := []interval.RefInterval[int, string]{
		{RefID: 0, Interval: iv{1, 5, "a"}},
		{RefID: 2, Interval: iv{1, 5, "b"}},
		{RefID: 2, Interval: iv{4, 9, "c"}},
		{RefID: -1, Interval: iv{1, 5, "unplaced"}},
	}
	x := interval.NewRefIndex(items, interval.BuildOpts{})
	expect.EQ(t, x.Len(), 3)
	expect.EQ(t, values(x.FindOverlapping(0, 0, 10)), []string{"a"})
	expect.EQ(t, len(x.FindOverlapping(1, 0, 10)), 0)
	expect.EQ(t, values(x.FindOverlapping(2, 5, 5)), []string{"b", "c"})
	expect.EQ(t, values(x.FindContained(2, 3, 10)), []string{"c"})
	expect.EQ(t, len(x.FindOverlapping(7, 0, 10)), 0)
	expect.True(t, x.Tree(1) == nil)

	empty := interval.NewRefIndex[int, string](nil, interval.BuildOpts{})
	expect.EQ(t, empty.Len(), 0)
	expect.EQ(t, len(empty.FindOverlapping(0, 0, 1)), 0)
}
