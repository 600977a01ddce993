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

// Package s2builder assembles polygonal geometry from edges on the sphere.
//
// A Builder snaps the input vertices to a set of sites chosen by a
// SnapFunction, optionally splits crossing edges and simplifies edge chains,
// and hands the resulting graph of each layer to a Layer that turns it into
// polygons or polylines. The output satisfies the following guarantees:
//
//   - Every input vertex moves by at most the snap radius.
//   - Output vertices are separated by at least MinVertexSeparation.
//   - Output edges are separated from non-incident vertices by at least
//     MinEdgeVertexSeparation.
//   - Every snapped edge stays within the maximum edge deviation of its
//     input edge, and the topology of the input is preserved.
//   - With Idempotent set, input that already satisfies these guarantees is
//     returned unchanged.
package s2builder

import (
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/golang/geo/s2"
)

// InputEdgeID identifies an input edge, in the order the edges were added.
type InputEdgeID = int32

// Label is a non-negative value attached to input edges.
type Label = int32

// InputEdgeIDSetID identifies a set of input edge ids in an IDSetLexicon.
type InputEdgeIDSetID = IDSetID

// LabelSetID identifies a set of labels in an IDSetLexicon.
type LabelSetID = IDSetID

// IsFullPolygonPredicate decides whether a polygon layer whose graph has no
// edges is empty or full.
type IsFullPolygonPredicate func(g *Graph) (bool, error)

// IsFullPolygon returns a predicate that always reports isFull.
func IsFullPolygon(isFull bool) IsFullPolygonPredicate {
	return func(*Graph) (bool, error) { return isFull, nil }
}

// IsFullPolygonUnspecified is a predicate that reports an error: a degenerate
// polygon was found but the caller never said how to interpret it.
func IsFullPolygonUnspecified(*Graph) (bool, error) {
	return false, errorf(CodeBuilderIsFullPredicateNotSpecified,
		"A degenerate polygon was found, but no predicate was specified to "+
			"determine whether the polygon is empty or full. Call "+
			"Builder.AddIsFullPolygonPredicate to fix this problem.")
}

// inputEdge holds indices into Builder.inputVertices.
type inputEdge struct {
	v0, v1 int32
}

// Builder assembles polygonal geometry from edges. Edges are added to one or
// more layers; Build snaps them all consistently and passes one Graph per
// layer to that layer's Build method. A Builder can be reused after Build.
//
// A Builder is not safe for concurrent use.
type Builder struct {
	opts  Options
	log   *slog.Logger
	radii snapRadii
	// optionsErr reports an invalid configuration at Build time.
	optionsErr error

	inputVertices []s2.Point
	inputEdges    []inputEdge

	layers                       []Layer
	layerOptions                 []GraphOptions
	layerBegins                  []InputEdgeID
	layerIsFullPolygonPredicates []IsFullPolygonPredicate

	// labelSetIDs is empty until a label is set, which means that every
	// input edge has the empty label set.
	labelSetIDs      []LabelSetID
	labelSetLexicon  *IDSetLexicon
	labelSet         []Label
	labelSetModified bool
	labelSetID       LabelSetID

	// Sites are the output vertex locations. Forced sites come first.
	sites          []s2.Point
	numForcedSites int
	// edgeSites[e] lists the sites near input edge e sorted by distance
	// from its first vertex.
	edgeSites [][]VertexID

	// snappingNeeded is set once the input is known to violate the output
	// guarantees.
	snappingNeeded bool
	// intersectionAdded is set by AddIntersection.
	intersectionAdded bool
}

// NewBuilder returns a Builder using the given options.
func NewBuilder(opts Options) *Builder {
	b := &Builder{}
	b.Init(opts)
	return b
}

// Init resets the Builder and replaces its options.
func (b *Builder) Init(opts Options) {
	if opts.SnapFunction == nil {
		opts.SnapFunction = NewIdentitySnapFunction(0)
	} else {
		opts.SnapFunction = opts.SnapFunction.Clone()
	}
	b.opts = opts
	b.log = opts.Logger
	if b.log == nil {
		b.log = slog.New(slog.DiscardHandler)
	}
	b.optionsErr = b.opts.validate()
	if b.optionsErr == nil {
		b.radii = newSnapRadii(&b.opts)
	}
	b.Reset()
}

// Options returns the options of the Builder.
func (b *Builder) Options() Options {
	opts := b.opts
	opts.SnapFunction = opts.SnapFunction.Clone()
	return opts
}

// StartLayer starts a new output layer. Edges added afterwards belong to it.
// Labels are cleared and the layer's is-full predicate defaults to
// IsFullPolygon(false).
func (b *Builder) StartLayer(layer Layer) {
	b.layerOptions = append(b.layerOptions, layer.GraphOptions())
	b.layerBegins = append(b.layerBegins, InputEdgeID(len(b.inputEdges)))
	b.layerIsFullPolygonPredicates = append(b.layerIsFullPolygonPredicates, IsFullPolygon(false))
	b.layers = append(b.layers, layer)
}

// addVertex appends v unless it repeats the last vertex, which removes the
// duplicates of chained edges AB, BC, CD.
func (b *Builder) addVertex(v s2.Point) int32 {
	if n := len(b.inputVertices); n == 0 || b.inputVertices[n-1] != v {
		b.inputVertices = append(b.inputVertices, v)
	}
	return int32(len(b.inputVertices) - 1)
}

// AddEdge adds an edge to the current layer. StartLayer must have been
// called first. Degenerate edges are dropped when the layer discards them.
func (b *Builder) AddEdge(v0, v1 s2.Point) {
	if len(b.layers) == 0 {
		// Keep going so that Build reports the problem.
		b.StartLayer(nilLayer{})
	}
	if v0 == v1 && b.layerOptions[len(b.layerOptions)-1].DegenerateEdges == DegenerateEdgesDiscard {
		return
	}
	j0 := b.addVertex(v0)
	j1 := b.addVertex(v1)
	b.inputEdges = append(b.inputEdges, inputEdge{j0, j1})

	if b.labelSetModified {
		if len(b.labelSetIDs) == 0 {
			// Earlier edges have the previous (empty) label set.
			for range len(b.inputEdges) - 1 {
				b.labelSetIDs = append(b.labelSetIDs, b.labelSetID)
			}
		}
		b.labelSetID = b.labelSetLexicon.Add(b.labelSet)
		b.labelSetIDs = append(b.labelSetIDs, b.labelSetID)
		b.labelSetModified = false
	} else if len(b.labelSetIDs) > 0 {
		b.labelSetIDs = append(b.labelSetIDs, b.labelSetID)
	}
}

// AddPoint adds a degenerate edge that represents a point.
func (b *Builder) AddPoint(p s2.Point) {
	b.AddEdge(p, p)
}

// AddPolyline adds the edges of a polyline.
func (b *Builder) AddPolyline(p *s2.Polyline) {
	vs := *p
	for i := 1; i < len(vs); i++ {
		b.AddEdge(vs[i-1], vs[i])
	}
}

// AddLoop adds the edges of a loop. Holes are added in reverse order so
// that the assembled loops keep the original vertex order once normalized.
// Empty and full loops have no edges.
func (b *Builder) AddLoop(l *s2.Loop) {
	if l.IsEmpty() || l.IsFull() {
		return
	}
	n := l.NumVertices()
	for i := 0; i < n; i++ {
		b.AddEdge(l.OrientedVertex(i), l.OrientedVertex(i+1))
	}
}

// AddPolygon adds the edges of every loop of a polygon.
func (b *Builder) AddPolygon(p *s2.Polygon) {
	for i := 0; i < p.NumLoops(); i++ {
		b.AddLoop(p.Loop(i))
	}
}

// AddShape adds all the edges of a shape.
func (b *Builder) AddShape(shape s2.Shape) {
	for e, n := 0, shape.NumEdges(); e < n; e++ {
		edge := shape.Edge(e)
		b.AddEdge(edge.V0, edge.V1)
	}
}

// ForceVertex adds a site that is kept in the output whether or not any edge
// snaps to it. Forced vertices are never moved or merged, and are not
// subject to the separation guarantees among themselves; edges are still
// snapped so that they pass on the correct side of them.
func (b *Builder) ForceVertex(p s2.Point) {
	b.sites = append(b.sites, p)
}

// AddIntersection adds the intersection point of two input edges, computed
// within IntersectionTolerance of the true intersection. Snapping is then
// performed even if the Builder is idempotent. Build fails unless
// IntersectionTolerance is positive.
func (b *Builder) AddIntersection(p s2.Point) {
	b.snappingNeeded = true
	b.intersectionAdded = true
	b.addVertex(p)
}

// AddIsFullPolygonPredicate sets the predicate used by the current layer to
// tell empty from full polygons.
func (b *Builder) AddIsFullPolygonPredicate(pred IsFullPolygonPredicate) {
	if n := len(b.layerIsFullPolygonPredicates); n > 0 {
		b.layerIsFullPolygonPredicates[n-1] = pred
	}
}

// ClearLabels clears the labels attached to subsequent edges.
func (b *Builder) ClearLabels() {
	b.labelSet = b.labelSet[:0]
	b.labelSetModified = true
}

// PushLabel adds a label to subsequent edges. The label must be non-negative.
func (b *Builder) PushLabel(l Label) {
	b.labelSet = append(b.labelSet, l)
	b.labelSetModified = true
}

// PopLabel removes the most recently pushed label.
func (b *Builder) PopLabel() {
	if len(b.labelSet) > 0 {
		b.labelSet = b.labelSet[:len(b.labelSet)-1]
	}
	b.labelSetModified = true
}

// SetLabel replaces the labels of subsequent edges with l.
func (b *Builder) SetLabel(l Label) {
	b.labelSet = append(b.labelSet[:0], l)
	b.labelSetModified = true
}

// Build snaps all the input edges and builds every layer. The Builder is
// reset afterwards, whether or not an error occurred. When a layer fails the
// other layers are still built; the returned error joins the error of every
// failing layer, wrapped with its index.
func (b *Builder) Build() error {
	defer b.Reset()
	if err := b.validateInput(); err != nil {
		return err
	}

	b.layerBegins = append(b.layerBegins, InputEdgeID(len(b.inputEdges)))
	// Simplification always snaps, even input that is already valid output.
	if b.radii.snappingRequested && (!b.opts.Idempotent || b.opts.SimplifyEdgeChains) {
		b.snappingNeeded = true
	}
	if err := b.chooseSites(); err != nil {
		return err
	}
	return b.buildLayers()
}

func (b *Builder) validateInput() error {
	if b.optionsErr != nil {
		return b.optionsErr
	}
	for _, l := range b.layers {
		if _, ok := l.(nilLayer); ok {
			return errorf(CodeBuilderInvalidOptions, "AddEdge called before StartLayer")
		}
	}
	if b.intersectionAdded && b.opts.intersectionTolerance() <= 0 {
		return errorf(CodeBuilderInvalidOptions, "AddIntersection requires a positive intersection tolerance")
	}
	for _, v := range b.inputVertices {
		if !isFinitePoint(v) {
			return errorf(CodeBuilderInvalidInput, "input vertex (%g, %g, %g) is not finite", v.X, v.Y, v.Z)
		}
	}
	for _, v := range b.sites {
		if !isFinitePoint(v) {
			return errorf(CodeBuilderInvalidInput, "forced vertex (%g, %g, %g) is not finite", v.X, v.Y, v.Z)
		}
	}
	return nil
}

func isFinitePoint(p s2.Point) bool {
	return !math.IsNaN(p.X) && !math.IsNaN(p.Y) && !math.IsNaN(p.Z) &&
		!math.IsInf(p.X, 0) && !math.IsInf(p.Y, 0) && !math.IsInf(p.Z, 0)
}

// Reset discards all input and layers. Storage is reallocated rather than
// truncated because graphs handed to layers may still refer to it.
func (b *Builder) Reset() {
	b.inputVertices = nil
	b.inputEdges = nil
	b.layers = nil
	b.layerOptions = nil
	b.layerBegins = nil
	b.layerIsFullPolygonPredicates = nil
	b.labelSetIDs = nil
	b.labelSetLexicon = NewIDSetLexicon()
	b.labelSet = nil
	b.labelSetModified = false
	b.labelSetID = EmptySetID
	b.sites = nil
	b.numForcedSites = 0
	b.edgeSites = nil
	b.snappingNeeded = false
	b.intersectionAdded = false
}

// buildLayers snaps the edges of every layer and builds the layers.
func (b *Builder) buildLayers() error {
	layerEdges, layerInputEdgeIDs, lexicon, processErrs := b.buildLayerEdges()

	var errs []error
	for i, layer := range b.layers {
		vertices := b.sites
		edges := layerEdges[i]
		if b.layerOptions[i].AllowVertexFiltering {
			vertices = filterVertices(b.sites, edges)
		}
		g := newGraph(b.layerOptions[i], vertices, edges, layerInputEdgeIDs[i], lexicon,
			b.labelSetIDs, b.labelSetLexicon, b.layerIsFullPolygonPredicates[i])
		err := processErrs[i]
		if lerr := layer.Build(g); lerr != nil {
			err = errors.Join(err, lerr)
		}
		if err != nil {
			b.log.Debug("layer build failed", "layer", i, "error", err)
			errs = append(errs, fmt.Errorf("layer %d: %w", i, err))
		}
	}
	return errors.Join(errs...)
}

// buildLayerEdges snaps and possibly simplifies the edges of each layer and
// applies each layer's GraphOptions. Errors from edge processing are
// returned per layer.
func (b *Builder) buildLayerEdges() ([][]Edge, [][]InputEdgeIDSetID, *IDSetLexicon, []error) {
	lexicon := NewIDSetLexicon()

	// siteVertices[s] lists the input vertices that snapped to site s. It is
	// only needed to simplify edge chains.
	var siteVertices [][]int32
	simplify := b.snappingNeeded && b.opts.SimplifyEdgeChains
	if simplify {
		siteVertices = make([][]int32, len(b.sites))
	}

	layerEdges := make([][]Edge, len(b.layers))
	layerInputEdgeIDs := make([][]InputEdgeIDSetID, len(b.layers))
	for i := range b.layers {
		layerEdges[i], layerInputEdgeIDs[i] = b.addSnappedEdges(
			b.layerBegins[i], b.layerBegins[i+1], b.layerOptions[i], lexicon, siteVertices)
	}
	if simplify {
		b.simplifyEdgeChains(siteVertices, layerEdges, layerInputEdgeIDs, lexicon)
	}

	// Simplification can create duplicate edges and sibling pairs, so the
	// per-layer options are applied afterwards.
	errs := make([]error, len(b.layers))
	for i := range b.layers {
		layerEdges[i], layerInputEdgeIDs[i], errs[i] = ProcessEdges(
			&b.layerOptions[i], layerEdges[i], layerInputEdgeIDs[i], lexicon)
	}
	return layerEdges, layerInputEdgeIDs, lexicon, errs
}

// addSnappedEdges snaps the input edges [begin, end) of one layer. When
// siteVertices is non-nil it records which input vertices snapped to each
// site.
func (b *Builder) addSnappedEdges(begin, end InputEdgeID, opts GraphOptions, lexicon *IDSetLexicon,
	siteVertices [][]int32) ([]Edge, []InputEdgeIDSetID) {
	discardDegenerate := opts.DegenerateEdges == DegenerateEdgesDiscard
	var edges []Edge
	var inputIDs []InputEdgeIDSetID
	var chain []VertexID
	for e := begin; e < end; e++ {
		id := lexicon.AddSingleton(e)
		chain = b.snapEdge(e, chain[:0])
		maybeAddInputVertex(b.inputEdges[e].v0, chain[0], siteVertices)
		if len(chain) == 1 {
			if discardDegenerate {
				continue
			}
			edges, inputIDs = addSnappedEdge(chain[0], chain[0], id, opts.EdgeType, edges, inputIDs)
			continue
		}
		maybeAddInputVertex(b.inputEdges[e].v1, chain[len(chain)-1], siteVertices)
		for i := 1; i < len(chain); i++ {
			edges, inputIDs = addSnappedEdge(chain[i-1], chain[i], id, opts.EdgeType, edges, inputIDs)
		}
	}
	return edges, inputIDs
}

func maybeAddInputVertex(v int32, site VertexID, siteVertices [][]int32) {
	if siteVertices == nil {
		return
	}
	// Input edges usually form chains, so the same vertex is often seen
	// twice in a row.
	vs := siteVertices[site]
	if len(vs) == 0 || vs[len(vs)-1] != v {
		siteVertices[site] = append(vs, v)
	}
}

// addSnappedEdge appends an edge, and its sibling when edges are undirected.
// Only the edge in the input direction carries input edge ids.
func addSnappedEdge(src, dst VertexID, id InputEdgeIDSetID, edgeType EdgeType,
	edges []Edge, inputIDs []InputEdgeIDSetID) ([]Edge, []InputEdgeIDSetID) {
	edges = append(edges, Edge{src, dst})
	inputIDs = append(inputIDs, id)
	if edgeType == EdgeTypeUndirected {
		edges = append(edges, Edge{dst, src})
		inputIDs = append(inputIDs, EmptySetID)
	}
	return edges, inputIDs
}

// nilLayer stands in for the missing layer when edges are added before
// StartLayer.
type nilLayer struct{}

func (nilLayer) GraphOptions() GraphOptions { return DefaultGraphOptions() }
func (nilLayer) Build(*Graph) error         { return nil }
