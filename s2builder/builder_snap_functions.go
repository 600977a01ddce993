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

	"github.com/golang/geo/s1"
	"github.com/golang/geo/s2"
)

// MaxSnapRadius is the largest snap radius supported by the builder.
const MaxSnapRadius = 70 * s1.Degree

// SnapFunction restricts the locations of the output vertices. Given an input
// vertex it proposes a candidate site within SnapRadius. Implementations also
// report the separation guarantees that hold between the resulting vertices
// and edges.
type SnapFunction interface {
	// SnapRadius is the maximum distance that a vertex can move when
	// snapped. It must be at most MaxSnapRadius.
	SnapRadius() s1.Angle

	// MinVertexSeparation returns the guaranteed minimum distance between
	// output vertices.
	MinVertexSeparation() s1.Angle

	// MinEdgeVertexSeparation returns the guaranteed minimum spacing between
	// edges and non-incident vertices.
	MinEdgeVertexSeparation() s1.Angle

	// SnapPoint returns a candidate snap site for the given point.
	SnapPoint(point s2.Point) s2.Point

	// Clone returns a deep copy of this SnapFunction.
	Clone() SnapFunction
}

// snapFunctionValidator is implemented by snap functions whose configuration
// can be inconsistent.
type snapFunctionValidator interface {
	validate() error
}

// IdentitySnapFunction snaps every vertex to itself. Vertices closer together
// than the snap radius are merged.
type IdentitySnapFunction struct {
	snapRadius s1.Angle
}

// NewIdentitySnapFunction creates a snap function that preserves vertices exactly
// unless they are closer than the given radius.
func NewIdentitySnapFunction(snapRadius s1.Angle) *IdentitySnapFunction {
	return &IdentitySnapFunction{snapRadius: snapRadius}
}

func (f *IdentitySnapFunction) SnapRadius() s1.Angle {
	return f.snapRadius
}

// SetSnapRadius changes the snap radius.
func (f *IdentitySnapFunction) SetSnapRadius(r s1.Angle) {
	f.snapRadius = r
}

func (f *IdentitySnapFunction) MinVertexSeparation() s1.Angle {
	// Since SnapFunction does not move the input point, output vertices are
	// separated by the full snap radius.
	return f.snapRadius
}

func (f *IdentitySnapFunction) MinEdgeVertexSeparation() s1.Angle {
	// In the worst case configuration, the edge separation is half of the
	// vertex separation.
	return 0.5 * f.snapRadius
}

func (f *IdentitySnapFunction) SnapPoint(p s2.Point) s2.Point {
	return p
}

func (f *IdentitySnapFunction) Clone() SnapFunction {
	return &IdentitySnapFunction{snapRadius: f.snapRadius}
}

func (f *IdentitySnapFunction) validate() error {
	if f.snapRadius < 0 || f.snapRadius > MaxSnapRadius {
		return errorf(CodeBuilderInvalidOptions, "snap radius %v is outside [0, %v]", f.snapRadius, MaxSnapRadius)
	}
	return nil
}

// CellIDSnapFunction snaps vertices to the centers of the cells at a given
// level. The snap radius defaults to the smallest radius that guarantees all
// vertices can move to a cell center, but it may be increased to obtain
// better separation guarantees.
type CellIDSnapFunction struct {
	level      int
	snapRadius s1.Angle
}

// NewCellIDSnapFunction returns a snap function for the given cell level
// using the minimum snap radius for that level.
func NewCellIDSnapFunction(level int) *CellIDSnapFunction {
	return &CellIDSnapFunction{level: level, snapRadius: MinSnapRadiusForLevel(level)}
}

// Level returns the cell level that vertices are snapped to.
func (f *CellIDSnapFunction) Level() int { return f.level }

// SetLevel changes the level and resets the snap radius to its minimum.
func (f *CellIDSnapFunction) SetLevel(level int) {
	f.level = level
	f.snapRadius = MinSnapRadiusForLevel(level)
}

// SetSnapRadius sets a snap radius larger than the minimum for the level.
func (f *CellIDSnapFunction) SetSnapRadius(r s1.Angle) {
	f.snapRadius = r
}

func (f *CellIDSnapFunction) SnapRadius() s1.Angle { return f.snapRadius }

// MinSnapRadiusForLevel returns the smallest snap radius at which every point
// can be snapped to the center of its cell at the given level.
func MinSnapRadiusForLevel(level int) s1.Angle {
	// The conversions between points and cell centers add slightly less than
	// 4 * dblEpsilon of error.
	return s1.Angle(0.5*s2.MaxDiagMetric.Value(level) + 4*dblEpsilon)
}

// LevelForMaxSnapRadius returns the smallest cell level whose minimum snap
// radius does not exceed snapRadius.
func LevelForMaxSnapRadius(snapRadius s1.Angle) int {
	return s2.MaxDiagMetric.MinLevel(2 * (snapRadius.Radians() - 4*dblEpsilon))
}

func (f *CellIDSnapFunction) MinVertexSeparation() s1.Angle {
	// The maximum of a constant bound (the minimum cell edge), a bound
	// proportional to the snap radius (2/sqrt(13) in the plane, slightly less
	// on the sphere) and the asymptotic bound for large radii.
	minEdge := s1.Angle(s2.MinEdgeMetric.Value(f.level))
	maxDiag := s1.Angle(s2.MaxDiagMetric.Value(f.level))
	return maxAngle(minEdge, maxAngle(0.548*f.snapRadius, f.snapRadius-0.5*maxDiag))
}

func (f *CellIDSnapFunction) MinEdgeVertexSeparation() s1.Angle {
	minDiag := s1.Angle(s2.MinDiagMetric.Value(f.level))
	if f.snapRadius == MinSnapRadiusForLevel(f.level) {
		// Only holds at the minimum snap radius for the level.
		return 0.565 * minDiag
	}
	vertexSep := f.MinVertexSeparation()
	return maxAngle(0.397*minDiag,
		maxAngle(0.219*f.snapRadius, 0.5*(vertexSep/f.snapRadius)*vertexSep))
}

func (f *CellIDSnapFunction) SnapPoint(p s2.Point) s2.Point {
	return s2.CellFromPoint(p).ID().Parent(f.level).Point()
}

func (f *CellIDSnapFunction) Clone() SnapFunction {
	c := *f
	return &c
}

func (f *CellIDSnapFunction) validate() error {
	if f.level < 0 || f.level > maxCellLevel {
		return errorf(CodeBuilderInvalidOptions, "cell level %d is outside [0, %d]", f.level, maxCellLevel)
	}
	if f.snapRadius > MaxSnapRadius {
		return errorf(CodeBuilderInvalidOptions, "snap radius %v exceeds %v", f.snapRadius, MaxSnapRadius)
	}
	if minRadius := MinSnapRadiusForLevel(f.level); f.snapRadius < minRadius {
		return errorf(CodeBuilderSnapRadiusTooSmall, "snap radius %v is below the minimum %v for level %d", f.snapRadius, minRadius, f.level)
	}
	return nil
}

const (
	maxCellLevel = 30

	// MinIntLatLngExponent and MaxIntLatLngExponent bound the exponents
	// accepted by IntLatLngSnapFunction.
	MinIntLatLngExponent = 0
	MaxIntLatLngExponent = 10
)

// IntLatLngSnapFunction snaps vertices to latitudes and longitudes that are
// integer multiples of 10**-exponent degrees, for example E7 coordinates when
// the exponent is 7.
type IntLatLngSnapFunction struct {
	exponent    int
	snapRadius  s1.Angle
	fromDegrees float64
	toDegrees   float64
}

// NewIntLatLngSnapFunction returns a snap function for the given exponent
// using the minimum snap radius for that exponent.
func NewIntLatLngSnapFunction(exponent int) *IntLatLngSnapFunction {
	f := &IntLatLngSnapFunction{}
	f.SetExponent(exponent)
	return f
}

// Exponent returns the decimal exponent of the coordinate grid.
func (f *IntLatLngSnapFunction) Exponent() int { return f.exponent }

// SetExponent changes the exponent and resets the snap radius to its minimum.
func (f *IntLatLngSnapFunction) SetExponent(exponent int) {
	f.exponent = exponent
	f.snapRadius = MinSnapRadiusForExponent(exponent)

	// Computed by repeated multiplication so that the grid matches
	// s2.LatLngFromDegrees exactly.
	power := 1.0
	for i := 0; i < exponent; i++ {
		power *= 10
	}
	f.fromDegrees = power
	f.toDegrees = 1 / power
}

// SetSnapRadius sets a snap radius larger than the minimum for the exponent.
func (f *IntLatLngSnapFunction) SetSnapRadius(r s1.Angle) {
	f.snapRadius = r
}

func (f *IntLatLngSnapFunction) SnapRadius() s1.Angle { return f.snapRadius }

// MinSnapRadiusForExponent returns the smallest snap radius at which every
// point can be snapped to the grid with the given exponent.
func MinSnapRadiusForExponent(exponent int) s1.Angle {
	// Rounding moves a point by up to sqrt(2) * 0.5 * 10**-exponent degrees,
	// and the conversions add at most (9 * sqrt(2) + 1.5) * dblEpsilon.
	power := 1.0
	for i := 0; i < exponent; i++ {
		power *= 10
	}
	return s1.Angle(math.Sqrt2/2/power)*s1.Degree + s1.Angle((9*math.Sqrt2+1.5)*dblEpsilon)
}

// ExponentForMaxSnapRadius returns the smallest exponent whose minimum snap
// radius does not exceed snapRadius.
func ExponentForMaxSnapRadius(snapRadius s1.Angle) int {
	snapRadius -= s1.Angle((9*math.Sqrt2 + 1.5) * dblEpsilon)
	snapRadius = maxAngle(snapRadius, 1e-30)
	exponent := math.Log10(math.Sqrt2 / 2 / snapRadius.Degrees())

	// Subtract a small tolerance so this inverts MinSnapRadiusForExponent.
	e := int(math.Ceil(exponent - 2*dblEpsilon))
	if e < MinIntLatLngExponent {
		return MinIntLatLngExponent
	}
	if e > MaxIntLatLngExponent {
		return MaxIntLatLngExponent
	}
	return e
}

func (f *IntLatLngSnapFunction) MinVertexSeparation() s1.Angle {
	// A bound proportional to the snap radius (sqrt(2)/3 in the plane) and
	// the asymptotic bound for large radii.
	return maxAngle(0.471*f.snapRadius, f.snapRadius-s1.Angle(math.Sqrt2/2*f.toDegrees)*s1.Degree)
}

func (f *IntLatLngSnapFunction) MinEdgeVertexSeparation() s1.Angle {
	vertexSep := f.MinVertexSeparation()
	return maxAngle(0.277*s1.Angle(f.toDegrees)*s1.Degree,
		maxAngle(0.222*f.snapRadius, 0.5*(vertexSep/f.snapRadius)*vertexSep))
}

func (f *IntLatLngSnapFunction) SnapPoint(p s2.Point) s2.Point {
	ll := s2.LatLngFromPoint(p)
	lat := math.Round(ll.Lat.Degrees() * f.fromDegrees)
	lng := math.Round(ll.Lng.Degrees() * f.fromDegrees)
	return s2.PointFromLatLng(s2.LatLngFromDegrees(lat*f.toDegrees, lng*f.toDegrees))
}

func (f *IntLatLngSnapFunction) Clone() SnapFunction {
	c := *f
	return &c
}

func (f *IntLatLngSnapFunction) validate() error {
	if f.exponent < MinIntLatLngExponent || f.exponent > MaxIntLatLngExponent {
		return errorf(CodeBuilderInvalidOptions, "exponent %d is outside [%d, %d]", f.exponent, MinIntLatLngExponent, MaxIntLatLngExponent)
	}
	if f.snapRadius > MaxSnapRadius {
		return errorf(CodeBuilderInvalidOptions, "snap radius %v exceeds %v", f.snapRadius, MaxSnapRadius)
	}
	if minRadius := MinSnapRadiusForExponent(f.exponent); f.snapRadius < minRadius {
		return errorf(CodeBuilderSnapRadiusTooSmall, "snap radius %v is below the minimum %v for exponent %d", f.snapRadius, minRadius, f.exponent)
	}
	return nil
}

func maxAngle(a, b s1.Angle) s1.Angle {
	if a > b {
		return a
	}
	return b
}
