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

	"github.com/golang/geo/s2"
)

// simplifyEdgeChains replaces the snapped edges of all layers by simplified
// chains. The chains are found in a single graph built from the edges of
// every layer, so that layers sharing a chain simplify it the same way.
func (b *Builder) simplifyEdgeChains(siteVertices [][]int32, layerEdges [][]Edge,
	layerInputEdgeIDs [][]InputEdgeIDSetID, lexicon *IDSetLexicon) {
	if len(b.layers) == 0 {
		return
	}
	edges, inputIDs, edgeLayers := mergeLayerEdges(layerEdges, layerInputEdgeIDs)
	for i := range layerEdges {
		layerEdges[i] = nil
		layerInputEdgeIDs[i] = nil
	}

	g := newGraph(DefaultGraphOptions(), b.sites, edges, inputIDs, lexicon, nil, nil, nil)
	s := newEdgeChainSimplifier(b, g, edgeLayers, siteVertices)
	s.run()

	for e, edge := range s.newEdges {
		layer := s.newEdgeLayers[e]
		layerEdges[layer] = append(layerEdges[layer], edge)
		layerInputEdgeIDs[layer] = append(layerInputEdgeIDs[layer], s.newInputIDs[e])
	}
	b.log.Debug("simplified edge chains", "edges", len(edges), "simplified", len(s.newEdges))
}

// mergeLayerEdges merges the edges of all layers into one sorted list. Equal
// edges stay in layer order and, within a layer, in input order.
func mergeLayerEdges(layerEdges [][]Edge, layerInputEdgeIDs [][]InputEdgeIDSetID) ([]Edge, []InputEdgeIDSetID, []int) {
	type layerEdgeID struct{ layer, edge int }
	var order []layerEdgeID
	for i := range layerEdges {
		for e := range layerEdges[i] {
			order = append(order, layerEdgeID{i, e})
		}
	}
	sort.SliceStable(order, func(i, j int) bool {
		return edgeLess(layerEdges[order[i].layer][order[i].edge], layerEdges[order[j].layer][order[j].edge])
	})
	edges := make([]Edge, len(order))
	inputIDs := make([]InputEdgeIDSetID, len(order))
	edgeLayers := make([]int, len(order))
	for i, id := range order {
		edges[i] = layerEdges[id.layer][id.edge]
		inputIDs[i] = layerInputEdgeIDs[id.layer][id.edge]
		edgeLayers[i] = id.layer
	}
	return edges, inputIDs, edgeLayers
}

// edgeChainSimplifier replaces chains of edges through interior vertices by
// single edges, as long as the result stays close to every input vertex that
// snapped to the chain and keeps its distance from every other site.
type edgeChainSimplifier struct {
	b          *Builder
	g          *Graph
	in         *VertexInMap
	out        *VertexOutMap
	edgeLayers []int
	// siteVertices[v] lists the input vertices that snapped to vertex v.
	siteVertices [][]int32

	// isInterior[v] is set when v can be an interior vertex of a chain.
	isInterior []bool
	used       []bool

	newEdges      []Edge
	newInputIDs   []InputEdgeIDSetID
	newEdgeLayers []int

	tmpEdges []EdgeID
}

func newEdgeChainSimplifier(b *Builder, g *Graph, edgeLayers []int, siteVertices [][]int32) *edgeChainSimplifier {
	return &edgeChainSimplifier{
		b:             b,
		g:             g,
		in:            NewVertexInMap(g),
		out:           NewVertexOutMap(g),
		edgeLayers:    edgeLayers,
		siteVertices:  siteVertices,
		isInterior:    make([]bool, g.NumVertices()),
		used:          make([]bool, g.NumEdges()),
		newEdges:      make([]Edge, 0, g.NumEdges()),
		newInputIDs:   make([]InputEdgeIDSetID, 0, g.NumEdges()),
		newEdgeLayers: make([]int, 0, g.NumEdges()),
	}
}

func (s *edgeChainSimplifier) run() {
	for v := range s.isInterior {
		s.isInterior[v] = s.interior(VertexID(v))
	}
	// Chains that start at a non-interior vertex.
	for e := 0; e < s.g.NumEdges(); e++ {
		if s.used[e] {
			continue
		}
		edge := s.g.Edge(EdgeID(e))
		if s.isInterior[edge.V0] {
			continue
		}
		if !s.isInterior[edge.V1] {
			s.outputEdge(EdgeID(e))
		} else {
			s.simplifyChain(edge.V0, edge.V1)
		}
	}
	// The remaining edges form loops of interior vertices. Degenerate edges
	// can be output as they come since their vertex starts a chain too.
	for e := 0; e < s.g.NumEdges(); e++ {
		if s.used[e] {
			continue
		}
		edge := s.g.Edge(EdgeID(e))
		if edge.V0 == edge.V1 {
			s.outputEdge(EdgeID(e))
		} else {
			s.simplifyChain(edge.V0, edge.V1)
		}
	}
}

func (s *edgeChainSimplifier) outputEdge(e EdgeID) {
	s.newEdges = append(s.newEdges, s.g.Edge(e))
	s.newInputIDs = append(s.newInputIDs, s.g.InputEdgeIDSetID(e))
	s.newEdgeLayers = append(s.newEdgeLayers, s.edgeLayers[e])
	s.used[e] = true
}

// inputEdgeLayer returns the layer of an input edge.
func (s *edgeChainSimplifier) inputEdgeLayer(id InputEdgeID) int {
	begins := s.b.layerBegins
	return sort.Search(len(begins), func(i int) bool { return begins[i] > id }) - 1
}

// interiorVertexMatcher decides whether v0 can be interior to a chain. The
// vertex must be adjacent to exactly two other vertices over all layers, and
// in each layer it must have as many edges to one neighbor as to the other,
// and as many edges in as out. Degenerate edges at v0 are only allowed in
// layers that also have a non-degenerate edge there, since otherwise nothing
// could replace them.
type interiorVertexMatcher struct {
	v0, v1, v2       VertexID
	n0, n1, n2       int
	excessOut        int
	tooManyEndpoints bool
}

func newInteriorVertexMatcher(v0 VertexID) *interiorVertexMatcher {
	return &interiorVertexMatcher{v0: v0, v1: -1, v2: -1}
}

func (m *interiorVertexMatcher) startLayer() {
	m.excessOut, m.n0, m.n1, m.n2 = 0, 0, 0, 0
}

// tally counts one edge between v0 and v. Degenerate edges are counted twice.
func (m *interiorVertexMatcher) tally(v VertexID, outgoing bool) {
	if outgoing {
		m.excessOut++
	} else {
		m.excessOut--
	}
	if v == m.v0 {
		m.n0++
		return
	}
	if m.v1 < 0 {
		m.v1 = v
	}
	if m.v1 == v {
		m.n1++
		return
	}
	if m.v2 < 0 {
		m.v2 = v
	}
	if m.v2 == v {
		m.n2++
	} else {
		m.tooManyEndpoints = true
	}
}

func (m *interiorVertexMatcher) matches() bool {
	return !m.tooManyEndpoints && m.excessOut == 0 && m.n1 == m.n2 && (m.n0 == 0 || m.n1 > 0)
}

func (s *edgeChainSimplifier) interior(v VertexID) bool {
	if s.out.Degree(v) == 0 || s.out.Degree(v) != s.in.Degree(v) {
		return false
	}
	// Forced vertices are kept.
	if int(v) < s.b.numForcedSites {
		return false
	}

	edges := s.tmpEdges[:0]
	begin, end := s.out.EdgeIDs(v)
	for e := begin; e < end; e++ {
		edges = append(edges, e)
	}
	edges = append(edges, s.in.EdgeIDs(v)...)
	sort.SliceStable(edges, func(i, j int) bool {
		return s.edgeLayers[edges[i]] < s.edgeLayers[edges[j]]
	})
	s.tmpEdges = edges

	m := newInteriorVertexMatcher(v)
	for i := 0; i < len(edges); {
		layer := s.edgeLayers[edges[i]]
		m.startLayer()
		for ; i < len(edges) && s.edgeLayers[edges[i]] == layer; i++ {
			edge := s.g.Edge(edges[i])
			if edge.V0 == v {
				m.tally(edge.V1, true)
			}
			if edge.V1 == v {
				m.tally(edge.V0, false)
			}
		}
		if !m.matches() {
			return false
		}
	}
	return true
}

// simplifyChain follows the chain starting with (v0, v1) until it reaches a
// non-interior vertex or returns to v0, simplifying the longest possible
// subchain at each step.
func (s *edgeChainSimplifier) simplifyChain(v0, v1 VertexID) {
	var chain []VertexID
	simplifier := NewPolylineSimplifier(s.g.Vertex(v0))
	vstart := v0
	done := false
	for !done {
		simplifier.Init(s.g.Vertex(v0))
		s.avoidSites(v0, v0, v1, simplifier)
		chain = append(chain, v0)
		for {
			chain = append(chain, v1)
			done = !s.isInterior[v1] || v1 == vstart
			if done {
				break
			}
			vprev := v0
			v0 = v1
			v1 = s.followChain(vprev, v0)
			if !s.targetInputVertices(v0, simplifier) ||
				!s.avoidSites(chain[0], v0, v1, simplifier) ||
				!simplifier.Extend(s.g.Vertex(v1)) {
				break
			}
		}
		if len(chain) == 2 {
			s.outputAllEdges(chain[0], chain[1])
		} else {
			s.mergeChain(chain)
		}
		chain = chain[:0]
	}
}

// followChain returns the vertex after v1 in the chain that arrives at v1
// from v0.
func (s *edgeChainSimplifier) followChain(v0, v1 VertexID) VertexID {
	begin, end := s.out.EdgeIDs(v1)
	for e := begin; e < end; e++ {
		if v := s.g.Edge(e).V1; v != v0 && v != v1 {
			return v
		}
	}
	// Interior vertices always have a second neighbor.
	panic("s2builder: edge chain has no next vertex")
}

// outputAllEdges copies the edges between v0 and v1, in both directions.
func (s *edgeChainSimplifier) outputAllEdges(v0, v1 VertexID) {
	begin, end := s.out.EdgeIDsBetween(v0, v1)
	for e := begin; e < end; e++ {
		s.outputEdge(e)
	}
	begin, end = s.out.EdgeIDsBetween(v1, v0)
	for e := begin; e < end; e++ {
		s.outputEdge(e)
	}
}

// targetInputVertices keeps the simplified edge within the edge snap radius
// of the input vertices that snapped to v.
func (s *edgeChainSimplifier) targetInputVertices(v VertexID, simplifier *PolylineSimplifier) bool {
	for _, i := range s.siteVertices[v] {
		if !simplifier.TargetDisc(s.b.inputVertices[i], s.b.radii.edgeSnapCA) {
			return false
		}
	}
	return true
}

// avoidSites restricts the directions of the simplified edge starting at v0
// so that it keeps the minimum edge-site separation from the sites near the
// last chain edge (v1, v2).
func (s *edgeChainSimplifier) avoidSites(v0, v1, v2 VertexID, simplifier *PolylineSimplifier) bool {
	p0, p1, p2 := s.g.Vertex(v0), s.g.Vertex(v1), s.g.Vertex(v2)
	r1 := s2.ChordAngleBetweenPoints(p0, p1)
	r2 := s2.ChordAngleBetweenPoints(p0, p2)

	// Chains that backtrack are not simplified: the deviation is bounded
	// parametrically, not geometrically.
	if r2 < r1 {
		return false
	}
	// Longer edges could deviate too far from the input edges.
	if r2 >= s.b.radii.minEdgeLengthToSplitCA {
		return false
	}

	// The sites near any input edge that snapped to (v1, v2) include all
	// sites close to the simplified edge. Use the shortest list.
	best := InputEdgeID(-1)
	pick := func(a, b VertexID) {
		begin, end := s.out.EdgeIDsBetween(a, b)
		for e := begin; e < end; e++ {
			for _, id := range s.g.InputEdgeIDs(e) {
				if best < 0 || len(s.b.edgeSites[id]) < len(s.b.edgeSites[best]) {
					best = id
				}
			}
		}
	}
	pick(v1, v2)
	pick(v2, v1)
	if best < 0 {
		return false
	}

	for _, v := range s.b.edgeSites[best] {
		if v == v0 || v == v1 || v == v2 {
			continue
		}
		// Sites nearer than r1 were handled already and those beyond r2 are
		// not relevant yet.
		p := s.g.Vertex(v)
		if r := s2.ChordAngleBetweenPoints(p0, p); r <= r1 || r >= r2 {
			continue
		}
		var discOnLeft bool
		if v1 == v0 {
			discOnLeft = s2.RobustSign(p1, p2, p) == s2.CounterClockwise
		} else {
			discOnLeft = s2.OrderedCCW(p0, p2, p, p1)
		}
		if !simplifier.AvoidDisc(p, s.b.radii.minEdgeSiteSeparationCA, discOnLeft) {
			return false
		}
	}
	return true
}

// mergeChain outputs the simplified edges for a chain of vertices. The chain
// may appear in several layers, in both directions and several times within
// a layer; edges in the same relative position along the chain are merged.
func (s *edgeChainSimplifier) mergeChain(vertices []VertexID) {
	var mergedInputIDs [][]InputEdgeID
	var degenerateIDs []InputEdgeID
	for i := 1; i < len(vertices); i++ {
		v0, v1 := vertices[i-1], vertices[i]
		outBegin, outEnd := s.out.EdgeIDsBetween(v0, v1)
		inBegin, inEnd := s.out.EdgeIDsBetween(v1, v0)
		if i == 1 {
			mergedInputIDs = make([][]InputEdgeID, int(outEnd-outBegin)+int(inEnd-inBegin))
		} else {
			// Degenerate edges at interior vertices are assigned to one of
			// the output edges below.
			begin, end := s.out.EdgeIDsBetween(v0, v0)
			for e := begin; e < end; e++ {
				degenerateIDs = append(degenerateIDs, s.g.InputEdgeIDs(e)...)
				s.used[e] = true
			}
		}
		// Edges were created in layer order and every sort is stable, so
		// edges in the same position belong together.
		j := 0
		for e := outBegin; e < outEnd; e++ {
			mergedInputIDs[j] = append(mergedInputIDs[j], s.g.InputEdgeIDs(e)...)
			s.used[e] = true
			j++
		}
		for e := inBegin; e < inEnd; e++ {
			mergedInputIDs[j] = append(mergedInputIDs[j], s.g.InputEdgeIDs(e)...)
			s.used[e] = true
			j++
		}
	}
	if len(degenerateIDs) > 0 {
		sort.Slice(degenerateIDs, func(i, j int) bool { return degenerateIDs[i] < degenerateIDs[j] })
		s.assignDegenerateEdges(degenerateIDs, mergedInputIDs)
	}

	v0, v1, vb := vertices[0], vertices[1], vertices[len(vertices)-1]
	begin, end := s.out.EdgeIDsBetween(v0, v1)
	for e := begin; e < end; e++ {
		s.newEdges = append(s.newEdges, Edge{v0, vb})
		s.newEdgeLayers = append(s.newEdgeLayers, s.edgeLayers[e])
	}
	begin, end = s.out.EdgeIDsBetween(v1, v0)
	for e := begin; e < end; e++ {
		s.newEdges = append(s.newEdges, Edge{vb, v0})
		s.newEdgeLayers = append(s.newEdgeLayers, s.edgeLayers[e])
	}
	for _, ids := range mergedInputIDs {
		s.newInputIDs = append(s.newInputIDs, s.g.InputEdgeIDSetLexicon().Add(ids))
	}
}

// assignDegenerateEdges assigns each degenerate input edge in the interior of
// a chain to an output edge of its layer. When the candidates have disjoint
// ranges of input edge ids, a degenerate edge goes to the edge whose range
// it continues, so chains of consecutive input edges stay together.
func (s *edgeChainSimplifier) assignDegenerateEdges(degenerateIDs []InputEdgeID, mergedIDs [][]InputEdgeID) {
	for _, ids := range mergedIDs {
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	}
	// Edges without input ids are siblings of undirected input edges and are
	// never candidates.
	var order []int
	for i, ids := range mergedIDs {
		if len(ids) > 0 {
			order = append(order, i)
		}
	}
	sort.Slice(order, func(i, j int) bool { return mergedIDs[order[i]][0] < mergedIDs[order[j]][0] })

	for _, id := range degenerateIDs {
		layer := s.inputEdgeLayer(id)
		// The first candidate starting after id, or the one before it when
		// that is in the right layer.
		it := sort.Search(len(order), func(i int) bool { return id < mergedIDs[order[i]][0] })
		if it > 0 && mergedIDs[order[it-1]][0] >= s.b.layerBegins[layer] {
			it--
		}
		if it == len(order) {
			it--
		}
		mergedIDs[order[it]] = append(mergedIDs[order[it]], id)
	}
}
