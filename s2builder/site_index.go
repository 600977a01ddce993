// Copyright 2023 Google Inc. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS-IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package s2builder

import (
	"math"
	"sort"

	"github.com/golang/geo/r3"
	"github.com/golang/geo/s1"
	"github.com/golang/geo/s2"
)

// siteIndex stores sites ordered by the leaf cell containing them, so that
// all sites inside a cell form a contiguous run. It supports incremental
// insertion and conservative radius queries around points and edges: every
// site within the radius is returned, possibly together with a few sites
// slightly beyond it, and callers make the final decision with the exact
// predicates.
type siteIndex struct {
	entries []siteEntry
	// Coordinates of the sites in entry order (SoA layout) for the batch
	// kernels.
	xs, ys, zs []float64

	coverer *s2.RegionCoverer
	scratch []float64
	dots    []float64
}

type siteEntry struct {
	id   s2.CellID
	site VertexID
}

func newSiteIndex() *siteIndex {
	return &siteIndex{
		coverer: &s2.RegionCoverer{MinLevel: 0, MaxLevel: maxCellLevel, LevelMod: 1, MaxCells: 8},
	}
}

// add inserts a site. Sites with the same leaf cell keep their insertion
// order.
func (x *siteIndex) add(p s2.Point, site VertexID) {
	id := s2.CellFromPoint(p).ID()
	pos := sort.Search(len(x.entries), func(i int) bool { return x.entries[i].id > id })

	x.entries = append(x.entries, siteEntry{})
	copy(x.entries[pos+1:], x.entries[pos:])
	x.entries[pos] = siteEntry{id: id, site: site}
	x.xs = insertFloat(x.xs, pos, p.X)
	x.ys = insertFloat(x.ys, pos, p.Y)
	x.zs = insertFloat(x.zs, pos, p.Z)
}

func insertFloat(s []float64, pos int, v float64) []float64 {
	s = append(s, 0)
	copy(s[pos+1:], s[pos:])
	s[pos] = v
	return s
}

// numSites returns the number of sites in the index.
func (x *siteIndex) numSites() int {
	return len(x.entries)
}

func (x *siteIndex) iterator() *siteIndexIterator {
	return &siteIndexIterator{index: x}
}

// siteIndexIterator walks the sites in cell order.
type siteIndexIterator struct {
	index *siteIndex
	pos   int
}

func (it *siteIndexIterator) next() { it.pos++ }

func (it *siteIndexIterator) done() bool { return it.pos >= len(it.index.entries) }

func (it *siteIndexIterator) cellID() s2.CellID {
	if it.done() {
		return s2.SentinelCellID
	}
	return it.index.entries[it.pos].id
}

func (it *siteIndexIterator) site() VertexID { return it.index.entries[it.pos].site }

// seek positions the iterator at the first site with a cell id >= id.
func (it *siteIndexIterator) seek(id s2.CellID) {
	it.pos = sort.Search(len(it.index.entries), func(i int) bool {
		return it.index.entries[i].id >= id
	})
}

// seekPast positions the iterator at the first site with a cell id > id.
func (it *siteIndexIterator) seekPast(id s2.CellID) {
	it.pos = sort.Search(len(it.index.entries), func(i int) bool {
		return it.index.entries[i].id > id
	})
}

// candidateRuns calls fn with every run [lo, hi) of entry positions whose
// cells intersect the given cap.
func (x *siteIndex) candidateRuns(c s2.Cap, fn func(lo, hi int)) {
	if len(x.entries) == 0 {
		return
	}
	if c.IsFull() || c.Radius() >= s1.Angle(math.Pi/2) {
		fn(0, len(x.entries))
		return
	}
	it := x.iterator()
	for _, cell := range x.coverer.Covering(c) {
		it.seek(cell.RangeMin())
		lo := it.pos
		it.seekPast(cell.RangeMax())
		if it.pos > lo {
			fn(lo, it.pos)
		}
	}
}

func (x *siteIndex) growScratch(n int) {
	if cap(x.scratch) < n {
		x.scratch = make([]float64, n)
		x.dots = make([]float64, n)
	}
	x.scratch = x.scratch[:n]
	x.dots = x.dots[:n]
}

// queryPoint returns the sites within distance r of target, in cell order.
func (x *siteIndex) queryPoint(target s2.Point, r s1.ChordAngle) []VertexID {
	var result []VertexID
	limit := float64(r) + r.MaxPointError() + 16*dblEpsilon
	c := s2.CapFromCenterAngle(target, r.Angle()+s1.Angle(16*dblEpsilon))
	x.candidateRuns(c, func(lo, hi int) {
		x.growScratch(hi - lo)
		BaseSquaredDistanceBatch(target.X, target.Y, target.Z,
			x.xs[lo:hi], x.ys[lo:hi], x.zs[lo:hi], x.scratch)
		for i, d2 := range x.scratch {
			if d2 <= limit {
				result = append(result, x.entries[lo+i].site)
			}
		}
	})
	return result
}

// queryEdge returns the sites within distance r of the edge ab, in cell
// order.
func (x *siteIndex) queryEdge(a, b s2.Point, r s1.ChordAngle) []VertexID {
	var result []VertexID
	center, radius := edgeCap(a, b)
	c := s2.CapFromCenterAngle(center, radius+r.Angle()+s1.Angle(16*dblEpsilon))
	capLimit := float64(s1.ChordAngleFromAngle(c.Radius())) + 1e-14

	// A site further than r from the great circle through ab is further
	// than r from the edge.
	usePlane := a != b && r < s1.RightChordAngle
	n := a.PointCross(b).Normalize()
	sinLimit := math.Sin(r.Angle().Radians()) + 1e-14
	maxDist := r.Expanded(updateMinDistanceMaxError(r))

	x.candidateRuns(c, func(lo, hi int) {
		x.growScratch(hi - lo)
		BaseSquaredDistanceBatch(center.X, center.Y, center.Z,
			x.xs[lo:hi], x.ys[lo:hi], x.zs[lo:hi], x.scratch)
		if usePlane {
			BaseDotProductConstBatch(n.X, n.Y, n.Z,
				x.xs[lo:hi], x.ys[lo:hi], x.zs[lo:hi], x.dots)
		}
		for i, d2 := range x.scratch {
			if d2 > capLimit || (usePlane && math.Abs(x.dots[i]) > sinLimit) {
				continue
			}
			pos := lo + i
			p := s2.Point{Vector: r3.Vector{X: x.xs[pos], Y: x.ys[pos], Z: x.zs[pos]}}
			if edgeDistance(p, a, b) <= maxDist {
				result = append(result, x.entries[pos].site)
			}
		}
	})
	return result
}

// edgeCap returns a cap that contains the edge ab.
func edgeCap(a, b s2.Point) (s2.Point, s1.Angle) {
	sum := a.Add(b.Vector)
	if sum.Norm2() < 1e-6 {
		// Nearly antipodal endpoints: any center works with a large radius.
		return a, s1.Angle(math.Pi)
	}
	center := s2.Point{Vector: sum.Normalize()}
	radius := center.Distance(a)
	if d := center.Distance(b); d > radius {
		radius = d
	}
	return center, radius
}
