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
	"sort"

	"github.com/golang/geo/s1"
	"github.com/golang/geo/s2"
)

// edgeIndex buckets the input edges by the cells of a small covering of
// each edge. Two edges can only interact if one of their cells contains the
// other, so candidates are found by scanning the descendants of a query cell
// and looking up its ancestors.
type edgeIndex struct {
	// Endpoints of every edge, indexed by InputEdgeID.
	a, b    []s2.Point
	entries []edgeEntry
	coverer *s2.RegionCoverer

	// seen[e] == stamp when e was already reported by the current query.
	seen  []int
	stamp int
}

type edgeEntry struct {
	id   s2.CellID
	edge InputEdgeID
}

func newEdgeIndex() *edgeIndex {
	return &edgeIndex{
		coverer: &s2.RegionCoverer{MinLevel: 0, MaxLevel: maxCellLevel, LevelMod: 1, MaxCells: 4},
	}
}

// add appends the edge ab. Edges must be added in InputEdgeID order and
// before any query is made.
func (x *edgeIndex) add(a, b s2.Point) {
	e := InputEdgeID(len(x.a))
	x.a = append(x.a, a)
	x.b = append(x.b, b)
	x.seen = append(x.seen, 0)
	for _, id := range x.edgeCovering(a, b) {
		x.entries = append(x.entries, edgeEntry{id: id, edge: e})
	}
}

// build sorts the index. It must be called once after all edges are added.
func (x *edgeIndex) build() {
	sort.Slice(x.entries, func(i, j int) bool {
		if x.entries[i].id != x.entries[j].id {
			return x.entries[i].id < x.entries[j].id
		}
		return x.entries[i].edge < x.entries[j].edge
	})
}

func (x *edgeIndex) numEdges() int { return len(x.a) }

func (x *edgeIndex) edgeCovering(a, b s2.Point) s2.CellUnion {
	center, radius := edgeCap(a, b)
	return x.coverer.Covering(s2.CapFromCenterAngle(center, radius+s1.Angle(16*dblEpsilon)))
}

// visitCandidates calls fn once for every edge that may intersect one of the
// given cells.
func (x *edgeIndex) visitCandidates(cells s2.CellUnion, fn func(e InputEdgeID)) {
	x.stamp++
	report := func(e InputEdgeID) {
		if x.seen[e] != x.stamp {
			x.seen[e] = x.stamp
			fn(e)
		}
	}
	for _, cell := range cells {
		// Edges bucketed in descendants of the cell (or the cell itself).
		lo := sort.Search(len(x.entries), func(i int) bool { return x.entries[i].id >= cell.RangeMin() })
		for i := lo; i < len(x.entries) && x.entries[i].id <= cell.RangeMax(); i++ {
			report(x.entries[i].edge)
		}
		// Edges bucketed in proper ancestors of the cell.
		for level := cell.Level() - 1; level >= 0; level-- {
			parent := cell.Parent(level)
			i := sort.Search(len(x.entries), func(i int) bool { return x.entries[i].id >= parent })
			for ; i < len(x.entries) && x.entries[i].id == parent; i++ {
				report(x.entries[i].edge)
			}
		}
	}
}

// crossingPairs returns every pair of edges (e, f) with e < f whose
// interiors cross, ordered by (e, f).
func (x *edgeIndex) crossingPairs() [][2]InputEdgeID {
	var pairs [][2]InputEdgeID
	var candidates []InputEdgeID
	for e := InputEdgeID(0); int(e) < len(x.a); e++ {
		a, b := x.a[e], x.b[e]
		if a == b {
			continue
		}
		candidates = candidates[:0]
		x.visitCandidates(x.edgeCovering(a, b), func(f InputEdgeID) {
			if f > e {
				candidates = append(candidates, f)
			}
		})
		sort.Slice(candidates, func(i, j int) bool { return candidates[i] < candidates[j] })
		crosser := s2.NewEdgeCrosser(a, b)
		for _, f := range candidates {
			if crosser.CrossingSign(x.a[f], x.b[f]) == s2.Cross {
				pairs = append(pairs, [2]InputEdgeID{e, f})
			}
		}
	}
	return pairs
}

// edgesNearPoint returns, in increasing order, the edges within distance r
// of p. A few edges slightly beyond r may also be returned.
func (x *edgeIndex) edgesNearPoint(p s2.Point, r s1.ChordAngle) []InputEdgeID {
	var result []InputEdgeID
	limit := r.Expanded(updateMinDistanceMaxError(r))
	cells := x.coverer.Covering(s2.CapFromCenterAngle(p, r.Angle()+s1.Angle(16*dblEpsilon)))
	x.visitCandidates(cells, func(e InputEdgeID) {
		if edgeDistance(p, x.a[e], x.b[e]) <= limit {
			result = append(result, e)
		}
	})
	sort.Slice(result, func(i, j int) bool { return result[i] < result[j] })
	return result
}
