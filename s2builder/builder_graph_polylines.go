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

// GetPolylines returns the edges of the graph as polylines, ordered by input
// edge id. Each polyline starts with the edge of smallest input edge id when
// it is a closed loop.
//
// With PolylineTypePath, polylines only pass through vertices with one edge
// in and one edge out (two edges for undirected graphs). With
// PolylineTypeWalk the graph is covered with as few polylines as possible,
// following the input edge order wherever there is a choice, so input
// polylines are reconstructed even when they touch or cross themselves.
//
// Undirected graphs yield one polyline per sibling pair. Sibling pairs
// required or created by the graph options are not supported.
func (g *Graph) GetPolylines(polylineType PolylineType) ([]EdgePolyline, error) {
	switch g.opts.SiblingPairs {
	case SiblingPairsKeep, SiblingPairsDiscard, SiblingPairsDiscardExcess:
	default:
		return nil, errorf(CodeBuilderInvalidOptions, "polylines cannot be built with sibling pairs required or created")
	}
	b, err := newPolylineBuilder(g)
	if err != nil {
		return nil, err
	}
	if polylineType == PolylineTypePath {
		return b.buildPaths(), nil
	}
	return b.buildWalks(), nil
}

type polylineBuilder struct {
	g           *Graph
	in          *VertexInMap
	out         *VertexOutMap
	siblingMap  []EdgeID
	minInputIDs []InputEdgeID
	directed    bool
	edgesLeft   int
	used        []bool
	// excessUsed counts the walks that started or ended at each vertex.
	excessUsed map[VertexID]int
}

func newPolylineBuilder(g *Graph) (*polylineBuilder, error) {
	b := &polylineBuilder{
		g:           g,
		in:          NewVertexInMap(g),
		out:         NewVertexOutMap(g),
		minInputIDs: g.GetMinInputEdgeIDs(),
		directed:    g.opts.EdgeType == EdgeTypeDirected,
		used:        make([]bool, g.NumEdges()),
		excessUsed:  make(map[VertexID]int),
	}
	b.edgesLeft = g.NumEdges()
	if !b.directed {
		b.edgesLeft /= 2
		b.siblingMap = append([]EdgeID(nil), b.in.InEdgeIDs()...)
		if err := g.makeSiblingMap(b.siblingMap); err != nil {
			return nil, err
		}
	}
	return b, nil
}

func (b *polylineBuilder) isInterior(v VertexID) bool {
	if b.directed {
		return b.in.Degree(v) == 1 && b.out.Degree(v) == 1
	}
	return b.out.Degree(v) == 2
}

// excessDegree is positive where more polylines must start than end.
func (b *polylineBuilder) excessDegree(v VertexID) int {
	if b.directed {
		return b.out.Degree(v) - b.in.Degree(v)
	}
	return b.out.Degree(v) % 2
}

func (b *polylineBuilder) markUsed(e EdgeID) {
	b.used[e] = true
	if !b.directed {
		b.used[b.siblingMap[e]] = true
	}
	b.edgesLeft--
}

func (b *polylineBuilder) buildPaths() []EdgePolyline {
	var polylines []EdgePolyline
	edges := b.g.GetInputEdgeOrder(b.minInputIDs)

	// Paths start at the vertices that cannot be interior to a path.
	for i := 0; i < len(edges) && b.edgesLeft > 0; i++ {
		e := edges[i]
		if !b.used[e] && !b.isInterior(b.g.Edge(e).V0) {
			polylines = append(polylines, b.buildPath(e))
		}
	}
	// The remaining edges form disjoint loops.
	for i := 0; i < len(edges) && b.edgesLeft > 0; i++ {
		e := edges[i]
		if b.used[e] {
			continue
		}
		p := b.buildPath(e)
		canonicalizeLoopOrder(b.minInputIDs, p)
		polylines = append(polylines, p)
	}
	canonicalizeVectorOrder(b.minInputIDs, polylines)
	return polylines
}

// buildPath follows edges from e until it reaches a vertex that is not
// interior or returns to its start.
func (b *polylineBuilder) buildPath(e EdgeID) EdgePolyline {
	var polyline EdgePolyline
	start := b.g.Edge(e).V0
	for {
		polyline = append(polyline, e)
		b.markUsed(e)
		v := b.g.Edge(e).V1
		if !b.isInterior(v) || v == start {
			return polyline
		}
		begin, end := b.out.EdgeIDs(v)
		if b.directed {
			e = begin
			continue
		}
		for e2 := begin; e2 < end; e2++ {
			if !b.used[e2] {
				e = e2
			}
		}
	}
}

func (b *polylineBuilder) buildWalks() []EdgePolyline {
	var polylines []EdgePolyline
	edges := b.g.GetInputEdgeOrder(b.minInputIDs)

	// Walks start at vertices with excess outgoing degree, in input order.
	for i := 0; i < len(edges) && b.edgesLeft > 0; i++ {
		e := edges[i]
		if b.used[e] {
			continue
		}
		v := b.g.Edge(e).V0
		excess := b.excessDegree(v)
		if excess <= 0 {
			continue
		}
		excess -= b.excessUsed[v]
		if b.directed && excess <= 0 || !b.directed && excess%2 == 0 {
			continue
		}
		b.excessUsed[v]++
		walk := b.buildWalk(v)
		polylines = append(polylines, walk)
		b.excessUsed[b.g.Edge(walk[len(walk)-1]).V1]--
	}
	// The remaining edges form closed walks.
	for i := 0; i < len(edges) && b.edgesLeft > 0; i++ {
		e := edges[i]
		if b.used[e] {
			continue
		}
		walk := b.buildWalk(b.g.Edge(e).V0)
		canonicalizeLoopOrder(b.minInputIDs, walk)
		polylines = append(polylines, walk)
	}
	canonicalizeVectorOrder(b.minInputIDs, polylines)
	return polylines
}

// buildWalk follows the unused edge with the smallest input edge id from v
// until it gets stuck.
func (b *polylineBuilder) buildWalk(v VertexID) EdgePolyline {
	var polyline EdgePolyline
	for {
		best := EdgeID(-1)
		bestID := noInputEdgeID
		begin, end := b.out.EdgeIDs(v)
		for e := begin; e < end; e++ {
			if b.used[e] || b.minInputIDs[e] >= bestID {
				continue
			}
			bestID = b.minInputIDs[e]
			best = e
		}
		if best < 0 {
			// Edges without input ids are taken last.
			for e := begin; e < end; e++ {
				if !b.used[e] {
					best = e
					break
				}
			}
		}
		if best < 0 {
			return polyline
		}
		polyline = append(polyline, best)
		b.markUsed(best)
		v = b.g.Edge(best).V1
	}
}
