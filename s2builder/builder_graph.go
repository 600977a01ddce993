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

	"github.com/golang/geo/s2"
)

// VertexID identifies a vertex of a Graph.
type VertexID int32

// EdgeID identifies an edge of a Graph.
type EdgeID int32

// noInputEdgeID is the minimum input edge id of an edge without input edges.
const noInputEdgeID = InputEdgeID(math.MaxInt32)

// Edge is a graph edge from V0 to V1. Edges are ordered lexicographically.
type Edge struct {
	V0, V1 VertexID
}

// Reversed returns the edge in the opposite direction.
func (e Edge) Reversed() Edge { return Edge{e.V1, e.V0} }

func edgeLess(a, b Edge) bool {
	return a.V0 < b.V0 || (a.V0 == b.V0 && a.V1 < b.V1)
}

func minEdge(a, b Edge) Edge {
	if edgeLess(b, a) {
		return b
	}
	return a
}

// stableEdgeLess orders edges, breaking ties by their ids.
func stableEdgeLess(a, b Edge, ai, bi EdgeID) bool {
	if a != b {
		return edgeLess(a, b)
	}
	return ai < bi
}

// EdgeLoop is a sequence of edges forming a loop.
type EdgeLoop = []EdgeID

// EdgePolyline is a sequence of edges forming a polyline.
type EdgePolyline = []EdgeID

// UndirectedComponent is a connected component of an undirected graph, as two
// complementary sets of loops. Reversing every loop of one complement gives
// the other.
type UndirectedComponent [2][]EdgeLoop

// DegenerateEdges controls what happens to edges whose two endpoints are the
// same vertex.
type DegenerateEdges int

const (
	// DegenerateEdgesKeep keeps all degenerate edges.
	DegenerateEdgesKeep DegenerateEdges = iota
	// DegenerateEdgesDiscard discards all degenerate edges.
	DegenerateEdgesDiscard
	// DegenerateEdgesDiscardExcess discards degenerate edges that touch a
	// non-degenerate edge and merges the remaining duplicates.
	DegenerateEdgesDiscardExcess
)

// DuplicateEdges controls what happens to edges with the same endpoints.
type DuplicateEdges int

const (
	// DuplicateEdgesKeep keeps every copy.
	DuplicateEdgesKeep DuplicateEdges = iota
	// DuplicateEdgesMerge replaces the copies by one edge whose input ids
	// are the union of theirs.
	DuplicateEdgesMerge
)

// SiblingPairs controls what happens to pairs of edges AB and BA.
type SiblingPairs int

const (
	// SiblingPairsKeep keeps sibling pairs.
	SiblingPairsKeep SiblingPairs = iota
	// SiblingPairsDiscard discards all sibling pairs.
	SiblingPairsDiscard
	// SiblingPairsDiscardExcess discards sibling pairs but keeps one pair
	// where an edge would otherwise vanish entirely.
	SiblingPairsDiscardExcess
	// SiblingPairsRequire reports an error unless every edge has a sibling.
	// For undirected edges the edge type becomes directed and half of the
	// edges are discarded.
	SiblingPairsRequire
	// SiblingPairsCreate adds the missing siblings, with the same edge type
	// change as SiblingPairsRequire.
	SiblingPairsCreate
)

// GraphOptions are the properties of the graph a Layer needs.
type GraphOptions struct {
	EdgeType        EdgeType
	DegenerateEdges DegenerateEdges
	DuplicateEdges  DuplicateEdges
	SiblingPairs    SiblingPairs
	// AllowVertexFiltering removes the vertices no edge uses. Otherwise the
	// graph holds every site of the build.
	AllowVertexFiltering bool
}

// DefaultGraphOptions keeps every edge and filters unused vertices.
func DefaultGraphOptions() GraphOptions {
	return GraphOptions{
		EdgeType:             EdgeTypeDirected,
		DegenerateEdges:      DegenerateEdgesKeep,
		DuplicateEdges:       DuplicateEdgesKeep,
		SiblingPairs:         SiblingPairsKeep,
		AllowVertexFiltering: true,
	}
}

// LoopType selects how loops are split at repeated vertices.
type LoopType int

const (
	// LoopTypeSimple splits loops so that no vertex repeats.
	LoopTypeSimple LoopType = iota
	// LoopTypeCircuit keeps loops whole; only edges may not repeat.
	LoopTypeCircuit
)

// PolylineType selects how polylines are assembled.
type PolylineType int

const (
	// PolylineTypePath stops polylines at vertices of degree other than 2.
	PolylineTypePath PolylineType = iota
	// PolylineTypeWalk builds the fewest polylines that cover all edges.
	PolylineTypeWalk
)

// Graph is the snapped output of one layer. Its edges are sorted, and each
// edge carries the set of input edges that snapped to it. A Graph is not
// modified after it is passed to a Layer.
type Graph struct {
	opts     GraphOptions
	vertices []s2.Point
	edges    []Edge

	inputEdgeIDSetIDs     []InputEdgeIDSetID
	inputEdgeIDSetLexicon *IDSetLexicon
	labelSetIDs           []LabelSetID
	labelSetLexicon       *IDSetLexicon
	isFullPolygon         IsFullPolygonPredicate
}

func newGraph(opts GraphOptions, vertices []s2.Point, edges []Edge, inputIDs []InputEdgeIDSetID,
	inputLexicon *IDSetLexicon, labelSetIDs []LabelSetID, labelLexicon *IDSetLexicon,
	isFull IsFullPolygonPredicate) *Graph {
	return &Graph{
		opts:                  opts,
		vertices:              vertices,
		edges:                 edges,
		inputEdgeIDSetIDs:     inputIDs,
		inputEdgeIDSetLexicon: inputLexicon,
		labelSetIDs:           labelSetIDs,
		labelSetLexicon:       labelLexicon,
		isFullPolygon:         isFull,
	}
}

// Options returns the options of the graph. They can differ from the options
// of the layer: SiblingPairsRequire and SiblingPairsCreate make the edges
// directed.
func (g *Graph) Options() GraphOptions { return g.opts }

// NumVertices returns the number of vertices.
func (g *Graph) NumVertices() int { return len(g.vertices) }

// Vertex returns the vertex with the given id.
func (g *Graph) Vertex(v VertexID) s2.Point { return g.vertices[v] }

// Vertices returns all the vertices. The slice must not be modified.
func (g *Graph) Vertices() []s2.Point { return g.vertices }

// NumEdges returns the number of edges.
func (g *Graph) NumEdges() int { return len(g.edges) }

// Edge returns the edge with the given id.
func (g *Graph) Edge(e EdgeID) Edge { return g.edges[e] }

// Edges returns all the edges, sorted. The slice must not be modified.
func (g *Graph) Edges() []Edge { return g.edges }

// InputEdgeIDs returns the input edges that snapped to edge e, sorted.
func (g *Graph) InputEdgeIDs(e EdgeID) []InputEdgeID {
	return g.inputEdgeIDSetLexicon.IDSet(g.inputEdgeIDSetIDs[e])
}

// InputEdgeIDSetID returns the id of the input edge set of edge e.
func (g *Graph) InputEdgeIDSetID(e EdgeID) InputEdgeIDSetID { return g.inputEdgeIDSetIDs[e] }

// InputEdgeIDSetLexicon returns the lexicon holding the input edge sets.
func (g *Graph) InputEdgeIDSetLexicon() *IDSetLexicon { return g.inputEdgeIDSetLexicon }

// Labels returns the labels attached to an input edge.
func (g *Graph) Labels(e InputEdgeID) []Label {
	if len(g.labelSetIDs) == 0 {
		return nil
	}
	return g.labelSetLexicon.IDSet(g.labelSetIDs[e])
}

// LabelSetID returns the label set of an input edge.
func (g *Graph) LabelSetID(e InputEdgeID) LabelSetID {
	if len(g.labelSetIDs) == 0 {
		return EmptySetID
	}
	return g.labelSetIDs[e]
}

// LabelSetLexicon returns the lexicon holding the label sets.
func (g *Graph) LabelSetLexicon() *IDSetLexicon { return g.labelSetLexicon }

// MinInputEdgeID returns the smallest input edge id of edge e, or
// math.MaxInt32 when it has none.
func (g *Graph) MinInputEdgeID(e EdgeID) InputEdgeID {
	ids := g.InputEdgeIDs(e)
	if len(ids) == 0 {
		return noInputEdgeID
	}
	return ids[0]
}

// GetMinInputEdgeIDs returns MinInputEdgeID for every edge.
func (g *Graph) GetMinInputEdgeIDs() []InputEdgeID {
	ids := make([]InputEdgeID, len(g.edges))
	for e := range g.edges {
		ids[e] = g.MinInputEdgeID(EdgeID(e))
	}
	return ids
}

// GetInputEdgeOrder returns the edge ids sorted by minimum input edge id,
// which is the order the edges were added in.
func (g *Graph) GetInputEdgeOrder(minInputIDs []InputEdgeID) []EdgeID {
	order := make([]EdgeID, len(g.edges))
	for i := range order {
		order[i] = EdgeID(i)
	}
	sort.Slice(order, func(i, j int) bool {
		a, b := order[i], order[j]
		if minInputIDs[a] != minInputIDs[b] {
			return minInputIDs[a] < minInputIDs[b]
		}
		return a < b
	})
	return order
}

// GetInEdgeIDs returns the edge ids sorted by reversed edge, so that the
// incoming edges of each vertex are contiguous.
func (g *Graph) GetInEdgeIDs() []EdgeID {
	ids := make([]EdgeID, len(g.edges))
	for i := range ids {
		ids[i] = EdgeID(i)
	}
	sort.Slice(ids, func(i, j int) bool {
		a, b := ids[i], ids[j]
		return stableEdgeLess(g.edges[a].Reversed(), g.edges[b].Reversed(), a, b)
	})
	return ids
}

// GetSiblingMap returns a map from each edge to its sibling. The graph must
// have undirected edges, or sibling pairs required or created.
func (g *Graph) GetSiblingMap() ([]EdgeID, error) {
	in := g.GetInEdgeIDs()
	if err := g.makeSiblingMap(in); err != nil {
		return nil, err
	}
	return in, nil
}

// makeSiblingMap converts the result of GetInEdgeIDs into a sibling map.
// Degenerate undirected edges come in pairs that are siblings of each other.
func (g *Graph) makeSiblingMap(in []EdgeID) error {
	if g.opts.EdgeType != EdgeTypeUndirected &&
		g.opts.SiblingPairs != SiblingPairsRequire && g.opts.SiblingPairs != SiblingPairsCreate {
		return errorf(CodeBuilderInvalidOptions, "sibling map requires undirected edges or sibling pairs")
	}
	for e := range g.edges {
		if g.edges[e] != g.edges[in[e]].Reversed() {
			return errorf(CodeBuilderMissingExpectedSiblingEdges,
				"edge %d has no sibling", e)
		}
	}
	if g.opts.EdgeType == EdgeTypeDirected || g.opts.DegenerateEdges == DegenerateEdgesDiscard {
		return nil
	}
	for e := 0; e < len(g.edges); e++ {
		if v := g.edges[e].V0; g.edges[e].V1 == v {
			if e+1 >= len(g.edges) || g.edges[e+1] != g.edges[e] {
				return errorf(CodeBuilderMissingExpectedSiblingEdges,
					"degenerate edge %d has no sibling", e)
			}
			in[e], in[e+1] = EdgeID(e+1), EdgeID(e)
			e++
		}
	}
	return nil
}

// vertexEdge is an edge incident to a vertex, used to sort the edges around
// it.
type vertexEdge struct {
	incoming bool
	edge     EdgeID
	endpoint VertexID
	rank     int
}

// GetLeftTurnMap returns a map from each edge e to the outgoing edge of its
// destination that follows it in clockwise order (the sharpest left turn).
// Degenerate edges map to themselves. inEdgeIDs is the result of
// GetInEdgeIDs. Every vertex must have equal indegree and outdegree.
func (g *Graph) GetLeftTurnMap(inEdgeIDs []EdgeID) ([]EdgeID, error) {
	leftTurn := make([]EdgeID, len(g.edges))
	for i := range leftTurn {
		leftTurn[i] = -1
	}
	n := len(g.edges)
	if n == 0 {
		return leftTurn, nil
	}

	var err error
	var v0Edges []vertexEdge
	var e0Edges, e1Edges []EdgeID

	// Merge the outgoing and incoming edges to visit the edges around each
	// vertex in turn.
	sentinel := Edge{VertexID(len(g.vertices)), VertexID(len(g.vertices))}
	out, in := 0, 0
	outEdge := g.edges[0]
	inEdge := g.edges[inEdgeIDs[0]]
	next := minEdge(outEdge, inEdge.Reversed())
	for next != sentinel {
		v0 := next.V0
		for ; next.V0 == v0; next = minEdge(outEdge, inEdge.Reversed()) {
			v1 := next.V1
			outBegin, inBegin := out, in
			for outEdge == next {
				out++
				if out == n {
					outEdge = sentinel
				} else {
					outEdge = g.edges[out]
				}
			}
			for inEdge.Reversed() == next {
				in++
				if in == n {
					inEdge = sentinel
				} else {
					inEdge = g.edges[inEdgeIDs[in]]
				}
			}
			if v1 == v0 {
				// Each degenerate edge is a loop by itself.
				for i := outBegin; i < out; i++ {
					leftTurn[i] = EdgeID(i)
				}
				continue
			}
			// Outgoing edges come before incoming ones with the same
			// endpoint, so an incoming edge is matched with its sibling
			// only when nothing else is left.
			for i := outBegin; i < out; i++ {
				v0Edges = append(v0Edges, vertexEdge{false, EdgeID(i), v1, len(v0Edges)})
			}
			for i := inBegin; i < in; i++ {
				v0Edges = append(v0Edges, vertexEdge{true, inEdgeIDs[i], v1, len(v0Edges)})
			}
		}
		if len(v0Edges) == 0 {
			continue
		}

		// Sort the edges clockwise around v0, starting with the edges to the
		// smallest endpoint.
		minEndpoint := v0Edges[0].endpoint
		o := g.vertices[v0]
		m := g.vertices[minEndpoint]
		rest := v0Edges[1:]
		sort.Slice(rest, func(i, j int) bool {
			a, b := rest[i], rest[j]
			if a.endpoint == b.endpoint {
				return a.rank < b.rank
			}
			if a.endpoint == minEndpoint {
				return true
			}
			if b.endpoint == minEndpoint {
				return false
			}
			return !s2.OrderedCCW(g.vertices[a.endpoint], g.vertices[b.endpoint], m, o)
		})

		// Match each incoming edge with the next outgoing edge. Outgoing
		// edges seen before any incoming edge wrap around to the end.
		for _, e := range v0Edges {
			switch {
			case e.incoming:
				e0Edges = append(e0Edges, e.edge)
			case len(e0Edges) > 0:
				leftTurn[e0Edges[len(e0Edges)-1]] = e.edge
				e0Edges = e0Edges[:len(e0Edges)-1]
			default:
				e1Edges = append(e1Edges, e.edge)
			}
		}
		for i := len(e1Edges) - 1; i >= 0 && len(e0Edges) > 0; i-- {
			leftTurn[e0Edges[len(e0Edges)-1]] = e1Edges[i]
			e0Edges = e0Edges[:len(e0Edges)-1]
		}
		if len(e0Edges) > 0 && err == nil {
			err = errorf(CodeBuilderEdgesDoNotFormLoops,
				"Given edges do not form loops (indegree != outdegree)")
		}
		v0Edges = v0Edges[:0]
		e0Edges = e0Edges[:0]
		e1Edges = e1Edges[:0]
	}
	if err != nil {
		return nil, err
	}
	return leftTurn, nil
}

// canonicalizeLoopOrder rotates a loop so that the edge with the largest
// input edge id comes last. When an input edge was split into a run of
// edges, the last edge of the run is used, so that the original loop order
// survives added vertices. Putting the largest id last rather than the
// smallest first keeps the order stable under loop inversion, which
// reverses every edge except the last.
func canonicalizeLoopOrder(minInputIDs []InputEdgeID, loop []EdgeID) {
	if len(loop) == 0 {
		return
	}
	pos := 0
	sawGap := false
	for i := 1; i < len(loop); i++ {
		cmp := minInputIDs[loop[i]] - minInputIDs[loop[pos]]
		if cmp < 0 {
			sawGap = true
		} else if cmp > 0 || !sawGap {
			pos = i
			sawGap = false
		}
	}
	if pos++; pos == len(loop) {
		return
	}
	rotated := append(append(make([]EdgeID, 0, len(loop)), loop[pos:]...), loop[:pos]...)
	copy(loop, rotated)
}

// canonicalizeVectorOrder sorts loops or polylines by the input edge id of
// their first edge, then by the edge id itself.
func canonicalizeVectorOrder(minInputIDs []InputEdgeID, chains [][]EdgeID) {
	sort.Slice(chains, func(i, j int) bool {
		a, b := chains[i][0], chains[j][0]
		if minInputIDs[a] != minInputIDs[b] {
			return minInputIDs[a] < minInputIDs[b]
		}
		return a < b
	})
}

func (g *Graph) checkLoopOptions(edgeType EdgeType) error {
	if g.opts.EdgeType != edgeType {
		return errorf(CodeBuilderInvalidOptions, "loops require %v edges, graph has %v edges",
			edgeType, g.opts.EdgeType)
	}
	if g.opts.DegenerateEdges != DegenerateEdgesDiscard && g.opts.DegenerateEdges != DegenerateEdgesDiscardExcess {
		return errorf(CodeBuilderInvalidOptions, "loops require degenerate edges to be discarded")
	}
	return nil
}

// GetDirectedLoops returns the edges of a directed graph as loops, each
// keeping the interior on its left. With LoopTypeSimple a loop is split
// wherever it revisits a vertex. Loops are ordered by input edge id.
func (g *Graph) GetDirectedLoops(loopType LoopType) ([]EdgeLoop, error) {
	if err := g.checkLoopOptions(EdgeTypeDirected); err != nil {
		return nil, err
	}
	leftTurn, err := g.GetLeftTurnMap(g.GetInEdgeIDs())
	if err != nil {
		return nil, err
	}
	minInputIDs := g.GetMinInputEdgeIDs()

	// pathIndex maps a vertex to its position in path.
	var pathIndex []int
	if loopType == LoopTypeSimple {
		pathIndex = make([]int, len(g.vertices))
		for i := range pathIndex {
			pathIndex[i] = -1
		}
	}

	var loops []EdgeLoop
	var path []EdgeID
	for start := range g.edges {
		if leftTurn[start] < 0 {
			continue
		}
		// Make left turns until returning to start. Visited edges are marked
		// with -1.
		for e := EdgeID(start); leftTurn[e] >= 0; {
			path = append(path, e)
			next := leftTurn[e]
			leftTurn[e] = -1
			if loopType == LoopTypeSimple {
				pathIndex[g.edges[e].V0] = len(path) - 1
				if loopStart := pathIndex[g.edges[e].V1]; loopStart >= 0 {
					loop := append(EdgeLoop(nil), path[loopStart:]...)
					path = path[:loopStart]
					for _, e2 := range loop {
						pathIndex[g.edges[e2].V0] = -1
					}
					canonicalizeLoopOrder(minInputIDs, loop)
					loops = append(loops, loop)
				}
			}
			e = next
		}
		if loopType == LoopTypeCircuit {
			loop := append(EdgeLoop(nil), path...)
			canonicalizeLoopOrder(minInputIDs, loop)
			loops = append(loops, loop)
		}
		path = path[:0]
	}
	canonicalizeVectorOrder(minInputIDs, loops)
	return loops, nil
}

// GetUndirectedComponents returns the connected components of an undirected
// graph. Complement 0 of each component holds the loops that contain the
// edges in their input direction when possible.
func (g *Graph) GetUndirectedComponents(loopType LoopType) ([]UndirectedComponent, error) {
	if err := g.checkLoopOptions(EdgeTypeUndirected); err != nil {
		return nil, err
	}
	siblings := g.GetInEdgeIDs()
	leftTurn, err := g.GetLeftTurnMap(siblings)
	if err != nil {
		return nil, err
	}
	if err := g.makeSiblingMap(siblings); err != nil {
		return nil, err
	}
	minInputIDs := g.GetMinInputEdgeIDs()

	var pathIndex []int
	if loopType == LoopTypeSimple {
		pathIndex = make([]int, len(g.vertices))
		for i := range pathIndex {
			pathIndex[i] = -1
		}
	}

	type frontierEdge struct {
		edge EdgeID
		slot int
	}
	var components []UndirectedComponent
	var frontier []frontierEdge
	var path []EdgeID
	for minStart := range g.edges {
		if leftTurn[minStart] < 0 {
			continue
		}
		// The siblings of the edges used so far form the other complement
		// and are explored later.
		var component UndirectedComponent
		frontier = append(frontier, frontierEdge{EdgeID(minStart), 0})
		for len(frontier) > 0 {
			f := frontier[len(frontier)-1]
			frontier = frontier[:len(frontier)-1]
			if leftTurn[f.edge] < 0 {
				continue
			}
			for e := f.edge; leftTurn[e] >= 0; {
				path = append(path, e)
				next := leftTurn[e]
				leftTurn[e] = -1
				if sib := siblings[e]; leftTurn[sib] >= 0 {
					frontier = append(frontier, frontierEdge{sib, 1 - f.slot})
				}
				if loopType == LoopTypeSimple {
					pathIndex[g.edges[e].V0] = len(path) - 1
					if loopStart := pathIndex[g.edges[e].V1]; loopStart >= 0 {
						loop := append(EdgeLoop(nil), path[loopStart:]...)
						path = path[:loopStart]
						for _, e2 := range loop {
							pathIndex[g.edges[e2].V0] = -1
						}
						canonicalizeLoopOrder(minInputIDs, loop)
						component[f.slot] = append(component[f.slot], loop)
					}
				}
				e = next
			}
			if loopType == LoopTypeCircuit {
				loop := append(EdgeLoop(nil), path...)
				canonicalizeLoopOrder(minInputIDs, loop)
				component[f.slot] = append(component[f.slot], loop)
			}
			path = path[:0]
		}
		for i := range component {
			canonicalizeVectorOrder(minInputIDs, component[i])
		}
		if len(component[0]) > 0 && len(component[1]) > 0 &&
			minInputIDs[component[1][0][0]] < minInputIDs[component[0][0][0]] {
			component[0], component[1] = component[1], component[0]
		}
		components = append(components, component)
	}
	sort.SliceStable(components, func(i, j int) bool {
		return componentMinInputID(minInputIDs, components[i]) < componentMinInputID(minInputIDs, components[j])
	})
	return components, nil
}

func componentMinInputID(minInputIDs []InputEdgeID, c UndirectedComponent) InputEdgeID {
	if len(c[0]) == 0 {
		return noInputEdgeID
	}
	return minInputIDs[c[0][0][0]]
}

// IsFullPolygon reports whether a graph with no edges is a full polygon,
// using the predicate of the layer.
func (g *Graph) IsFullPolygon() (bool, error) {
	if g.isFullPolygon == nil {
		return IsFullPolygonUnspecified(g)
	}
	return g.isFullPolygon(g)
}

// Clone returns a deep copy of the graph that does not share storage with
// the Builder.
func (g *Graph) Clone() *Graph {
	c := &Graph{
		opts:                  g.opts,
		vertices:              append([]s2.Point(nil), g.vertices...),
		edges:                 append([]Edge(nil), g.edges...),
		inputEdgeIDSetIDs:     append([]InputEdgeIDSetID(nil), g.inputEdgeIDSetIDs...),
		inputEdgeIDSetLexicon: g.inputEdgeIDSetLexicon.Clone(),
		labelSetIDs:           append([]LabelSetID(nil), g.labelSetIDs...),
		labelSetLexicon:       g.labelSetLexicon.Clone(),
		isFullPolygon:         g.isFullPolygon,
	}
	return c
}

// VertexOutMap gives the outgoing edges of each vertex.
type VertexOutMap struct {
	edges      []Edge
	edgeBegins []EdgeID
}

// NewVertexOutMap returns the out map of g.
func NewVertexOutMap(g *Graph) *VertexOutMap {
	m := &VertexOutMap{
		edges:      g.edges,
		edgeBegins: make([]EdgeID, 0, len(g.vertices)+1),
	}
	e := 0
	for v := 0; v <= len(g.vertices); v++ {
		for e < len(g.edges) && int(g.edges[e].V0) < v {
			e++
		}
		m.edgeBegins = append(m.edgeBegins, EdgeID(e))
	}
	return m
}

// Degree returns the number of edges leaving v.
func (m *VertexOutMap) Degree(v VertexID) int {
	return int(m.edgeBegins[v+1] - m.edgeBegins[v])
}

// EdgeIDs returns the range [begin, end) of edge ids leaving v.
func (m *VertexOutMap) EdgeIDs(v VertexID) (begin, end EdgeID) {
	return m.edgeBegins[v], m.edgeBegins[v+1]
}

// EdgeIDsBetween returns the range [begin, end) of edge ids from v0 to v1.
func (m *VertexOutMap) EdgeIDsBetween(v0, v1 VertexID) (begin, end EdgeID) {
	lo, hi := int(m.edgeBegins[v0]), int(m.edgeBegins[v0+1])
	b := lo + sort.Search(hi-lo, func(i int) bool { return m.edges[lo+i].V1 >= v1 })
	e := lo + sort.Search(hi-lo, func(i int) bool { return m.edges[lo+i].V1 > v1 })
	return EdgeID(b), EdgeID(e)
}

// VertexInMap gives the incoming edges of each vertex.
type VertexInMap struct {
	inEdgeIDs  []EdgeID
	edgeBegins []int
}

// NewVertexInMap returns the in map of g.
func NewVertexInMap(g *Graph) *VertexInMap {
	m := &VertexInMap{
		inEdgeIDs:  g.GetInEdgeIDs(),
		edgeBegins: make([]int, 0, len(g.vertices)+1),
	}
	i := 0
	for v := 0; v <= len(g.vertices); v++ {
		for i < len(m.inEdgeIDs) && int(g.edges[m.inEdgeIDs[i]].V1) < v {
			i++
		}
		m.edgeBegins = append(m.edgeBegins, i)
	}
	return m
}

// Degree returns the number of edges entering v.
func (m *VertexInMap) Degree(v VertexID) int {
	return m.edgeBegins[v+1] - m.edgeBegins[v]
}

// EdgeIDs returns the ids of the edges entering v. The slice must not be
// modified.
func (m *VertexInMap) EdgeIDs(v VertexID) []EdgeID {
	return m.inEdgeIDs[m.edgeBegins[v]:m.edgeBegins[v+1]]
}

// InEdgeIDs returns all edge ids sorted by destination.
func (m *VertexInMap) InEdgeIDs() []EdgeID { return m.inEdgeIDs }

// LabelFetcher gathers the labels of graph edges. For undirected graphs the
// labels of an edge include those of its sibling, since only one edge of
// each pair carries input edge ids.
type LabelFetcher struct {
	g          *Graph
	edgeType   EdgeType
	siblingMap []EdgeID
}

// NewLabelFetcher returns a fetcher for g. edgeType is the edge type of the
// input edges, which can differ from the graph's after
// SiblingPairsRequire/Create.
func NewLabelFetcher(g *Graph, edgeType EdgeType) (*LabelFetcher, error) {
	f := &LabelFetcher{g: g, edgeType: edgeType}
	if edgeType == EdgeTypeUndirected {
		var err error
		if f.siblingMap, err = g.GetSiblingMap(); err != nil {
			return nil, err
		}
	}
	return f, nil
}

// Fetch returns the sorted distinct labels of edge e, appended to dst[:0].
func (f *LabelFetcher) Fetch(e EdgeID, dst []Label) []Label {
	dst = dst[:0]
	for _, id := range f.g.InputEdgeIDs(e) {
		dst = append(dst, f.g.Labels(id)...)
	}
	if f.edgeType == EdgeTypeUndirected {
		for _, id := range f.g.InputEdgeIDs(f.siblingMap[e]) {
			dst = append(dst, f.g.Labels(id)...)
		}
	}
	if len(dst) <= 1 {
		return dst
	}
	sort.Slice(dst, func(i, j int) bool { return dst[i] < dst[j] })
	n := 1
	for i := 1; i < len(dst); i++ {
		if dst[i] != dst[n-1] {
			dst[n] = dst[i]
			n++
		}
	}
	return dst[:n]
}

// filterVertices returns the sites used by the edges, in site order, and
// renumbers the edges to refer to the result.
func filterVertices(sites []s2.Point, edges []Edge) []s2.Point {
	used := make([]VertexID, 0, 2*len(edges))
	for _, e := range edges {
		used = append(used, e.V0, e.V1)
	}
	sort.Slice(used, func(i, j int) bool { return used[i] < used[j] })
	n := 0
	for i, v := range used {
		if i == 0 || v != used[n-1] {
			used[n] = v
			n++
		}
	}
	used = used[:n]

	vmap := make(map[VertexID]VertexID, len(used))
	vertices := make([]s2.Point, len(used))
	for i, v := range used {
		vertices[i] = sites[v]
		vmap[v] = VertexID(i)
	}
	for i, e := range edges {
		edges[i] = Edge{vmap[e.V0], vmap[e.V1]}
	}
	return vertices
}

// ProcessEdges applies the degenerate edge, duplicate edge and sibling pair
// policies of opts to edges and returns the sorted result. For
// SiblingPairsRequire and SiblingPairsCreate the edge type in opts is changed
// to directed. inputIDs[i] holds the input edge ids of edges[i]; merged edges
// get the union of their ids. The result is still returned along with a
// CodeBuilderMissingExpectedSiblingEdges error.
func ProcessEdges(opts *GraphOptions, edges []Edge, inputIDs []InputEdgeIDSetID,
	lexicon *IDSetLexicon) ([]Edge, []InputEdgeIDSetID, error) {
	p := newEdgeProcessor(*opts, edges, inputIDs, lexicon)
	err := p.run()
	if opts.SiblingPairs == SiblingPairsRequire || opts.SiblingPairs == SiblingPairsCreate {
		opts.EdgeType = EdgeTypeDirected
	}
	return p.newEdges, p.newInputIDs, err
}

type edgeProcessor struct {
	opts     GraphOptions
	edges    []Edge
	inputIDs []InputEdgeIDSetID
	lexicon  *IDSetLexicon
	outEdges []EdgeID
	inEdges  []EdgeID

	newEdges    []Edge
	newInputIDs []InputEdgeIDSetID
	tmp         []int32
}

func newEdgeProcessor(opts GraphOptions, edges []Edge, inputIDs []InputEdgeIDSetID,
	lexicon *IDSetLexicon) *edgeProcessor {
	p := &edgeProcessor{
		opts:        opts,
		edges:       edges,
		inputIDs:    inputIDs,
		lexicon:     lexicon,
		outEdges:    make([]EdgeID, len(edges)),
		inEdges:     make([]EdgeID, len(edges)),
		newEdges:    make([]Edge, 0, len(edges)),
		newInputIDs: make([]InputEdgeIDSetID, 0, len(edges)),
	}
	// Stable order makes each undirected edge a sibling pair even when there
	// are several identical input edges.
	for i := range edges {
		p.outEdges[i] = EdgeID(i)
		p.inEdges[i] = EdgeID(i)
	}
	sort.Slice(p.outEdges, func(i, j int) bool {
		a, b := p.outEdges[i], p.outEdges[j]
		return stableEdgeLess(edges[a], edges[b], a, b)
	})
	sort.Slice(p.inEdges, func(i, j int) bool {
		a, b := p.inEdges[i], p.inEdges[j]
		return stableEdgeLess(edges[a].Reversed(), edges[b].Reversed(), a, b)
	})
	return p
}

func (p *edgeProcessor) run() error {
	n := len(p.edges)
	if n == 0 {
		return nil
	}
	var err error
	o := p.opts

	// Merge the sorted outgoing and incoming edges, gathering all copies of
	// each edge in both directions.
	sentinel := Edge{math.MaxInt32, math.MaxInt32}
	out, in := 0, 0
	outEdge := p.edges[p.outEdges[0]]
	inEdge := p.edges[p.inEdges[0]]
	for {
		edge := minEdge(outEdge, inEdge.Reversed())
		if edge == sentinel {
			break
		}
		outBegin, inBegin := out, in
		for outEdge == edge {
			out++
			if out == n {
				outEdge = sentinel
			} else {
				outEdge = p.edges[p.outEdges[out]]
			}
		}
		for inEdge.Reversed() == edge {
			in++
			if in == n {
				inEdge = sentinel
			} else {
				inEdge = p.edges[p.inEdges[in]]
			}
		}
		nOut, nIn := out-outBegin, in-inBegin

		if edge.V0 == edge.V1 {
			if o.DegenerateEdges == DegenerateEdgesDiscard {
				continue
			}
			if o.DegenerateEdges == DegenerateEdgesDiscardExcess &&
				((outBegin > 0 && p.edges[p.outEdges[outBegin-1]].V0 == edge.V0) ||
					(out < n && p.edges[p.outEdges[out]].V0 == edge.V0) ||
					(inBegin > 0 && p.edges[p.inEdges[inBegin-1]].V1 == edge.V0) ||
					(in < n && p.edges[p.inEdges[in]].V1 == edge.V0)) {
				// The vertex has non-degenerate edges.
				continue
			}
			merge := o.DuplicateEdges == DuplicateEdgesMerge || o.DegenerateEdges == DegenerateEdgesDiscardExcess
			switch {
			case o.EdgeType == EdgeTypeUndirected &&
				(o.SiblingPairs == SiblingPairsRequire || o.SiblingPairs == SiblingPairsCreate):
				// Sibling pairs become single directed edges.
				count := nOut / 2
				if merge {
					count = 1
				}
				p.addEdges(count, edge, p.mergeInputIDs(outBegin, out))
			case merge:
				count := 1
				if o.EdgeType == EdgeTypeUndirected {
					count = 2
				}
				p.addEdges(count, edge, p.mergeInputIDs(outBegin, out))
			case o.SiblingPairs == SiblingPairsDiscard || o.SiblingPairs == SiblingPairsDiscardExcess:
				// Discarding options merge the ids of duplicates.
				p.addEdges(nOut, edge, p.mergeInputIDs(outBegin, out))
			default:
				p.copyEdges(outBegin, out)
			}
			continue
		}

		switch o.SiblingPairs {
		case SiblingPairsKeep:
			if nOut > 1 && o.DuplicateEdges == DuplicateEdgesMerge {
				p.addEdge(edge, p.mergeInputIDs(outBegin, out))
			} else {
				p.copyEdges(outBegin, out)
			}
		case SiblingPairsDiscard:
			if o.EdgeType == EdgeTypeDirected {
				// nOut < nIn: AB, BA, BA. nOut > nIn: AB, AB, BA.
				if nOut <= nIn {
					continue
				}
				count := nOut - nIn
				if o.DuplicateEdges == DuplicateEdgesMerge {
					count = 1
				}
				p.addEdges(count, edge, p.mergeInputIDs(outBegin, out))
			} else {
				if nOut&1 == 0 {
					continue
				}
				p.addEdge(edge, p.mergeInputIDs(outBegin, out))
			}
		case SiblingPairsDiscardExcess:
			if o.EdgeType == EdgeTypeDirected {
				// Balanced sibling pairs keep one pair.
				if nOut < nIn {
					continue
				}
				count := max(1, nOut-nIn)
				if o.DuplicateEdges == DuplicateEdgesMerge {
					count = 1
				}
				p.addEdges(count, edge, p.mergeInputIDs(outBegin, out))
			} else {
				count := 2
				if nOut&1 == 1 {
					count = 1
				}
				p.addEdges(count, edge, p.mergeInputIDs(outBegin, out))
			}
		default:
			missing := nOut != nIn
			if o.EdgeType == EdgeTypeUndirected {
				missing = nOut&1 != 0
			}
			if err == nil && o.SiblingPairs == SiblingPairsRequire && missing {
				err = errorf(CodeBuilderMissingExpectedSiblingEdges,
					"Expected all input edges to have siblings, but some were missing")
			}
			switch {
			case o.DuplicateEdges == DuplicateEdgesMerge:
				p.addEdge(edge, p.mergeInputIDs(outBegin, out))
			case o.EdgeType == EdgeTypeUndirected:
				// Each sibling pair becomes one directed edge.
				p.addEdges((nOut+1)/2, edge, p.mergeInputIDs(outBegin, out))
			default:
				p.copyEdges(outBegin, out)
				if nIn > nOut {
					// Created siblings have no input edges.
					p.addEdges(nIn-nOut, edge, EmptySetID)
				}
			}
		}
	}
	return err
}

func (p *edgeProcessor) addEdge(e Edge, id InputEdgeIDSetID) {
	p.newEdges = append(p.newEdges, e)
	p.newInputIDs = append(p.newInputIDs, id)
}

func (p *edgeProcessor) addEdges(n int, e Edge, id InputEdgeIDSetID) {
	for range n {
		p.addEdge(e, id)
	}
}

func (p *edgeProcessor) copyEdges(begin, end int) {
	for i := begin; i < end; i++ {
		p.addEdge(p.edges[p.outEdges[i]], p.inputIDs[p.outEdges[i]])
	}
}

func (p *edgeProcessor) mergeInputIDs(begin, end int) InputEdgeIDSetID {
	if end-begin == 1 {
		return p.inputIDs[p.outEdges[begin]]
	}
	p.tmp = p.tmp[:0]
	for i := begin; i < end; i++ {
		p.tmp = append(p.tmp, p.lexicon.IDSet(p.inputIDs[p.outEdges[i]])...)
	}
	return p.lexicon.Add(p.tmp)
}
