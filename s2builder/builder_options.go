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
	"log/slog"
	"math"

	"github.com/golang/geo/s1"
)

// maxEdgeDeviationRatio bounds how far a snapped edge may deviate from its
// input edge, relative to the edge snap radius. With the largest snap radius
// edges up to about 30 degrees long are never split; with small radii the
// limit is about 49 degrees.
const maxEdgeDeviationRatio = 1.1

// defaultMaxSnapIterations is the default bound on the number of times a
// single input edge is resnapped while extra sites are added.
const defaultMaxSnapIterations = 1000

// EdgeType indicates whether the output edges of a layer are directed or
// undirected.
type EdgeType int

const (
	// EdgeTypeDirected keeps every edge in the direction it was added.
	EdgeTypeDirected EdgeType = iota
	// EdgeTypeUndirected represents every edge by a pair of siblings (the
	// edge and its reverse). Only the edge in the input direction carries
	// input edge ids.
	EdgeTypeUndirected
)

func (t EdgeType) String() string {
	if t == EdgeTypeUndirected {
		return "UNDIRECTED"
	}
	return "DIRECTED"
}

// Options controls the behavior of the Builder.
type Options struct {
	// SnapFunction restricts the locations of output vertices and defines
	// the snap radius. Nil means an IdentitySnapFunction with a zero radius.
	SnapFunction SnapFunction

	// SplitCrossingEdges adds a vertex at every point where two input edges
	// cross. Crossing edges then snap to a common vertex.
	SplitCrossingEdges bool

	// IntersectionTolerance is the maximum distance between an intersection
	// point added with AddIntersection and the true intersection of the
	// edges. When SplitCrossingEdges is set it is at least the error of
	// s2.Intersection. Edges are snapped with a radius of
	// SnapRadius + IntersectionTolerance.
	IntersectionTolerance s1.Angle

	// SimplifyEdgeChains replaces chains of snapped edges by fewer edges
	// when every input vertex stays within the snap radius of the result
	// and no topology changes. It implies snapping, so Idempotent has no
	// effect when it is set.
	SimplifyEdgeChains bool

	// Idempotent leaves the input unchanged when it already satisfies the
	// output guarantees (every vertex is a snapped location and all
	// separation constraints hold).
	Idempotent bool

	// MaxEdgeDeviation is the maximum distance between an input edge and
	// its snapped chain. Zero means 1.1 times the edge snap radius. An
	// explicit value must be at least the edge snap radius.
	MaxEdgeDeviation s1.Angle

	// MaxSnapIterations bounds the number of times one input edge is
	// resnapped while separation sites are added. Zero means 1000.
	MaxSnapIterations int

	// Logger receives debug records about site selection and layer
	// failures. Nil disables logging.
	Logger *slog.Logger
}

// DefaultOptions returns the options used by the Builder when nothing else is
// specified: no snapping, no edge splitting and idempotent output.
func DefaultOptions() Options {
	return Options{
		SnapFunction:      NewIdentitySnapFunction(0),
		Idempotent:        true,
		MaxSnapIterations: defaultMaxSnapIterations,
	}
}

// intersectionTolerance returns the effective intersection tolerance.
func (o *Options) intersectionTolerance() s1.Angle {
	if !o.SplitCrossingEdges {
		return o.IntersectionTolerance
	}
	return maxAngle(o.IntersectionTolerance, intersectionError)
}

// edgeSnapRadius returns the maximum distance an edge may move when snapped.
func (o *Options) edgeSnapRadius() s1.Angle {
	return o.SnapFunction.SnapRadius() + o.intersectionTolerance()
}

// maxEdgeDeviation returns the effective maximum edge deviation.
func (o *Options) maxEdgeDeviation() s1.Angle {
	if o.MaxEdgeDeviation > 0 {
		return o.MaxEdgeDeviation
	}
	return maxEdgeDeviationRatio * o.edgeSnapRadius()
}

func (o *Options) maxSnapIterations() int {
	if o.MaxSnapIterations > 0 {
		return o.MaxSnapIterations
	}
	return defaultMaxSnapIterations
}

// validate reports an inconsistent option set.
func (o *Options) validate() error {
	if v, ok := o.SnapFunction.(snapFunctionValidator); ok {
		if err := v.validate(); err != nil {
			return err
		}
	}
	r := o.SnapFunction.SnapRadius()
	if r < 0 || r > MaxSnapRadius || math.IsNaN(r.Radians()) {
		return errorf(CodeBuilderInvalidOptions, "snap radius %v is outside [0, %v]", r, MaxSnapRadius)
	}
	if o.IntersectionTolerance < 0 {
		return errorf(CodeBuilderInvalidOptions, "intersection tolerance %v is negative", o.IntersectionTolerance)
	}
	if o.MaxEdgeDeviation < 0 {
		return errorf(CodeBuilderInvalidOptions, "max edge deviation %v is negative", o.MaxEdgeDeviation)
	}
	if o.MaxEdgeDeviation > 0 && o.MaxEdgeDeviation < o.edgeSnapRadius() {
		return errorf(CodeBuilderInvalidOptions, "max edge deviation %v is less than the edge snap radius %v",
			o.MaxEdgeDeviation, o.edgeSnapRadius())
	}
	if o.maxEdgeDeviation() >= 90*s1.Degree {
		return errorf(CodeBuilderInvalidOptions, "max edge deviation %v must be less than 90 degrees", o.maxEdgeDeviation())
	}
	return nil
}

// snapRadii holds the radii derived from the options, converted to chord
// angles and rounded so that the exact predicates give conservative results.
type snapRadii struct {
	// siteSnapCA is the snap radius used for choosing sites.
	siteSnapCA s1.ChordAngle
	// edgeSnapCA is the snap radius used for snapping edges. It exceeds
	// siteSnapCA by the intersection tolerance.
	edgeSnapCA        s1.ChordAngle
	snappingRequested bool

	maxEdgeDeviation s1.Angle
	// edgeSiteQueryCA is the largest distance from an edge at which a site
	// can still affect how the edge is snapped.
	edgeSiteQueryCA s1.ChordAngle
	// Edges shorter than this cannot deviate by more than maxEdgeDeviation
	// whatever their endpoints snap to.
	minEdgeLengthToSplitCA s1.ChordAngle
	// checkAllSiteCrossings is set when an edge can pass on the wrong side of
	// a site without coming closer than the minimum edge-site separation.
	checkAllSiteCrossings bool

	minSiteSeparation       s1.Angle
	minSiteSeparationCA     s1.ChordAngle
	minEdgeSiteSeparationCA s1.ChordAngle
	// minEdgeSiteSeparationCALimit bounds the computed distance of a site
	// whose true distance may be less than minEdgeSiteSeparationCA.
	minEdgeSiteSeparationCALimit s1.ChordAngle
	// maxAdjacentSiteSeparationCA is the largest distance between two sites
	// whose Voronoi regions can both touch an edge.
	maxAdjacentSiteSeparationCA s1.ChordAngle
	// edgeSnapRadiusSin2 is sin^2(edge snap radius) plus its maximum error.
	edgeSnapRadiusSin2 float64
}

func newSnapRadii(o *Options) snapRadii {
	f := o.SnapFunction
	snapRadius := f.SnapRadius()
	edgeSnapRadius := o.edgeSnapRadius()

	var r snapRadii
	r.siteSnapCA = s1.ChordAngleFromAngle(snapRadius)
	if edgeSnapRadius == snapRadius {
		r.edgeSnapCA = r.siteSnapCA
	} else {
		r.edgeSnapCA = roundUpAngle(edgeSnapRadius)
	}
	r.snappingRequested = edgeSnapRadius > 0

	r.maxEdgeDeviation = o.maxEdgeDeviation()
	r.edgeSiteQueryCA = s1.ChordAngleFromAngle(r.maxEdgeDeviation + f.MinEdgeVertexSeparation())

	if !r.snappingRequested {
		r.minEdgeLengthToSplitCA = s1.InfChordAngle()
	} else {
		r.minEdgeLengthToSplitCA = s1.ChordAngleFromAngle(s1.Angle(
			2 * math.Acos(math.Min(1, math.Sin(edgeSnapRadius.Radians())/math.Sin(r.maxEdgeDeviation.Radians())))))
	}

	r.checkAllSiteCrossings = r.maxEdgeDeviation > edgeSnapRadius+f.MinEdgeVertexSeparation()

	r.minSiteSeparation = f.MinVertexSeparation()
	r.minSiteSeparationCA = s1.ChordAngleFromAngle(r.minSiteSeparation)
	r.minEdgeSiteSeparationCA = s1.ChordAngleFromAngle(f.MinEdgeVertexSeparation())
	r.minEdgeSiteSeparationCALimit = addPointToEdgeError(r.minEdgeSiteSeparationCA)
	r.maxAdjacentSiteSeparationCA = addPointToPointError(roundUpAngle(2 * edgeSnapRadius))

	d := math.Sin(edgeSnapRadius.Radians())
	r.edgeSnapRadiusSin2 = d*d + ((9.5*d+2.5+2*sqrt3)*d+9*dblEpsilon)*dblEpsilon
	return r
}
