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
	"github.com/golang/geo/s2"
)

// Layer turns the snapped graph of one layer into output geometry.
type Layer interface {
	// GraphOptions returns the graph properties the layer needs.
	GraphOptions() GraphOptions
	// Build assembles the output from g. g must not be retained after Build
	// returns; use Graph.Clone to keep it.
	Build(g *Graph) error
}

// labelOutput collects the label set of every output edge.
type labelOutput struct {
	ids     *[][]LabelSetID
	lexicon *IDSetLexicon
}

func (o labelOutput) enabled() bool { return o.ids != nil && o.lexicon != nil }

func (o labelOutput) reset() {
	if o.enabled() {
		*o.ids = nil
		o.lexicon.Clear()
	}
}

func (o labelOutput) edgeLabels(f *LabelFetcher, edges []EdgeID) []LabelSetID {
	return edgeLabels(f, o.lexicon, edges)
}

// edgeLabels returns the label set ids of the given edges.
func edgeLabels(f *LabelFetcher, lexicon *IDSetLexicon, edges []EdgeID) []LabelSetID {
	var labels []Label
	ids := make([]LabelSetID, len(edges))
	for i, e := range edges {
		labels = f.Fetch(e, labels)
		ids[i] = lexicon.Add(labels)
	}
	return ids
}

// PolygonLayer assembles a graph into an s2.Polygon.
type PolygonLayer struct {
	polygon  *s2.Polygon
	edgeType EdgeType
	labels   labelOutput
}

// NewPolygonLayer returns a layer that builds p from directed edges. Loops
// must be oriented with the interior on their left.
func NewPolygonLayer(p *s2.Polygon) *PolygonLayer {
	return &PolygonLayer{polygon: p, edgeType: EdgeTypeDirected}
}

// NewUndirectedPolygonLayer returns a layer that builds p from undirected
// edges. Every loop is normalized to enclose at most half the sphere.
func NewUndirectedPolygonLayer(p *s2.Polygon) *PolygonLayer {
	return &PolygonLayer{polygon: p, edgeType: EdgeTypeUndirected}
}

// WithLabels makes the layer report, for each loop of the polygon and each
// edge of the loop, the set of labels of the input edges that snapped to it.
func (l *PolygonLayer) WithLabels(ids *[][]LabelSetID, lexicon *IDSetLexicon) *PolygonLayer {
	l.labels = labelOutput{ids: ids, lexicon: lexicon}
	return l
}

// GraphOptions implements Layer.
func (l *PolygonLayer) GraphOptions() GraphOptions {
	return GraphOptions{
		EdgeType:             l.edgeType,
		DegenerateEdges:      DegenerateEdgesDiscard,
		DuplicateEdges:       DuplicateEdgesKeep,
		SiblingPairs:         SiblingPairsDiscard,
		AllowVertexFiltering: true,
	}
}

// Build implements Layer.
func (l *PolygonLayer) Build(g *Graph) error {
	l.labels.reset()
	if g.NumEdges() == 0 {
		full, err := g.IsFullPolygon()
		if err != nil {
			return err
		}
		if full {
			*l.polygon = *s2.FullPolygon()
		} else {
			*l.polygon = *s2.PolygonFromLoops(nil)
		}
		return nil
	}

	var edgeLoops []EdgeLoop
	if l.edgeType == EdgeTypeDirected {
		var err error
		if edgeLoops, err = g.GetDirectedLoops(LoopTypeSimple); err != nil {
			return err
		}
	} else {
		components, err := g.GetUndirectedComponents(LoopTypeSimple)
		if err != nil {
			return err
		}
		// Either complement works since the loops are normalized; complement
		// 0 matches the input loops when they share vertices.
		for _, c := range components {
			edgeLoops = append(edgeLoops, c[0]...)
		}
	}

	var fetcher *LabelFetcher
	if l.labels.enabled() {
		var err error
		if fetcher, err = NewLabelFetcher(g, l.edgeType); err != nil {
			return err
		}
	}

	loops := make([]*s2.Loop, len(edgeLoops))
	loopIndex := make(map[*s2.Loop]int, len(edgeLoops))
	for i, el := range edgeLoops {
		vertices := make([]s2.Point, len(el))
		for j, e := range el {
			vertices[j] = g.Vertex(g.Edge(e).V0)
		}
		loops[i] = s2.LoopFromPoints(vertices)
		loopIndex[loops[i]] = i
	}
	firstVertices := make([]s2.Point, len(loops))
	for i, loop := range loops {
		firstVertices[i] = loop.Vertex(0)
	}

	var p *s2.Polygon
	if l.edgeType == EdgeTypeDirected {
		p = s2.PolygonFromOrientedLoops(loops)
	} else {
		for _, loop := range loops {
			loop.Normalize()
		}
		p = s2.PolygonFromLoops(loops)
	}

	if fetcher != nil {
		// Loops may be reordered and inverted by the polygon.
		for i := 0; i < p.NumLoops(); i++ {
			loop := p.Loop(i)
			j, ok := loopIndex[loop]
			if !ok {
				continue
			}
			ids := l.labels.edgeLabels(fetcher, edgeLoops[j])
			if loop.NumVertices() > 1 && loop.Vertex(0) != firstVertices[j] {
				ids = reversedLoopLabels(ids)
			}
			*l.labels.ids = append(*l.labels.ids, ids)
		}
	}
	*l.polygon = *p
	return nil
}

// reversedLoopLabels returns the edge labels of a loop after its vertex
// order was reversed: edge j of the result is the reverse of edge n-2-j.
func reversedLoopLabels(ids []LabelSetID) []LabelSetID {
	n := len(ids)
	out := make([]LabelSetID, n)
	for j := range out {
		out[j] = ids[((n-2-j)%n+n)%n]
	}
	return out
}

// PolylineLayer assembles a graph into a single s2.Polyline.
type PolylineLayer struct {
	polyline     *s2.Polyline
	edgeType     EdgeType
	labelSetIDs  *[]LabelSetID
	labelLexicon *IDSetLexicon
}

// NewPolylineLayer returns a layer that builds p from directed edges.
func NewPolylineLayer(p *s2.Polyline) *PolylineLayer {
	return &PolylineLayer{polyline: p, edgeType: EdgeTypeDirected}
}

// NewUndirectedPolylineLayer returns a layer that builds p from undirected
// edges.
func NewUndirectedPolylineLayer(p *s2.Polyline) *PolylineLayer {
	return &PolylineLayer{polyline: p, edgeType: EdgeTypeUndirected}
}

// WithLabels makes the layer report the label set of each polyline edge.
func (l *PolylineLayer) WithLabels(ids *[]LabelSetID, lexicon *IDSetLexicon) *PolylineLayer {
	l.labelSetIDs = ids
	l.labelLexicon = lexicon
	return l
}

// GraphOptions implements Layer.
func (l *PolylineLayer) GraphOptions() GraphOptions {
	return GraphOptions{
		EdgeType:             l.edgeType,
		DegenerateEdges:      DegenerateEdgesDiscard,
		DuplicateEdges:       DuplicateEdgesKeep,
		SiblingPairs:         SiblingPairsKeep,
		AllowVertexFiltering: true,
	}
}

// Build implements Layer.
func (l *PolylineLayer) Build(g *Graph) error {
	withLabels := l.labelSetIDs != nil && l.labelLexicon != nil
	if withLabels {
		*l.labelSetIDs = nil
		l.labelLexicon.Clear()
	}
	if g.NumEdges() == 0 {
		*l.polyline = s2.Polyline{}
		return nil
	}
	polylines, err := g.GetPolylines(PolylineTypeWalk)
	if err != nil {
		return err
	}
	if len(polylines) != 1 {
		return errorf(CodeBuilderEdgesDoNotFormPolyline, "Input edges cannot be assembled into polyline")
	}
	edges := polylines[0]
	if withLabels {
		fetcher, err := NewLabelFetcher(g, l.edgeType)
		if err != nil {
			return err
		}
		*l.labelSetIDs = edgeLabels(fetcher, l.labelLexicon, edges)
	}
	*l.polyline = polylineFromEdges(g, edges)
	return nil
}

func polylineFromEdges(g *Graph, edges EdgePolyline) s2.Polyline {
	vertices := make(s2.Polyline, 0, len(edges)+1)
	vertices = append(vertices, g.Vertex(g.Edge(edges[0]).V0))
	for _, e := range edges {
		vertices = append(vertices, g.Vertex(g.Edge(e).V1))
	}
	return vertices
}

// PolylineVectorOptions controls a PolylineVectorLayer.
type PolylineVectorOptions struct {
	EdgeType       EdgeType
	PolylineType   PolylineType
	DuplicateEdges DuplicateEdges
	SiblingPairs   SiblingPairs
}

// DefaultPolylineVectorOptions builds paths from directed edges, keeping
// duplicates and sibling pairs.
func DefaultPolylineVectorOptions() PolylineVectorOptions {
	return PolylineVectorOptions{
		EdgeType:       EdgeTypeDirected,
		PolylineType:   PolylineTypePath,
		DuplicateEdges: DuplicateEdgesKeep,
		SiblingPairs:   SiblingPairsKeep,
	}
}

// PolylineVectorLayer assembles a graph into a set of polylines.
type PolylineVectorLayer struct {
	polylines *[]*s2.Polyline
	opts      PolylineVectorOptions
	labels    labelOutput
}

// NewPolylineVectorLayer returns a layer that stores its polylines in p.
func NewPolylineVectorLayer(p *[]*s2.Polyline, opts PolylineVectorOptions) *PolylineVectorLayer {
	return &PolylineVectorLayer{polylines: p, opts: opts}
}

// WithLabels makes the layer report the label set of every edge of every
// polyline.
func (l *PolylineVectorLayer) WithLabels(ids *[][]LabelSetID, lexicon *IDSetLexicon) *PolylineVectorLayer {
	l.labels = labelOutput{ids: ids, lexicon: lexicon}
	return l
}

// GraphOptions implements Layer.
func (l *PolylineVectorLayer) GraphOptions() GraphOptions {
	return GraphOptions{
		EdgeType:             l.opts.EdgeType,
		DegenerateEdges:      DegenerateEdgesDiscard,
		DuplicateEdges:       l.opts.DuplicateEdges,
		SiblingPairs:         l.opts.SiblingPairs,
		AllowVertexFiltering: true,
	}
}

// Build implements Layer.
func (l *PolylineVectorLayer) Build(g *Graph) error {
	l.labels.reset()
	edgePolylines, err := g.GetPolylines(l.opts.PolylineType)
	if err != nil {
		return err
	}
	var fetcher *LabelFetcher
	if l.labels.enabled() {
		if fetcher, err = NewLabelFetcher(g, l.opts.EdgeType); err != nil {
			return err
		}
	}
	out := make([]*s2.Polyline, 0, len(edgePolylines))
	for _, ep := range edgePolylines {
		p := polylineFromEdges(g, ep)
		out = append(out, &p)
		if fetcher != nil {
			*l.labels.ids = append(*l.labels.ids, l.labels.edgeLabels(fetcher, ep))
		}
	}
	*l.polylines = out
	return nil
}

// GraphCloneLayer keeps a copy of the graph of its layer.
type GraphCloneLayer struct {
	opts  GraphOptions
	graph *Graph
}

// NewGraphCloneLayer returns a layer requesting the given graph options.
func NewGraphCloneLayer(opts GraphOptions) *GraphCloneLayer {
	return &GraphCloneLayer{opts: opts}
}

// GraphOptions implements Layer.
func (l *GraphCloneLayer) GraphOptions() GraphOptions { return l.opts }

// Build implements Layer.
func (l *GraphCloneLayer) Build(g *Graph) error {
	l.graph = g.Clone()
	return nil
}

// Graph returns the graph of the last build, or nil.
func (l *GraphCloneLayer) Graph() *Graph { return l.graph }
