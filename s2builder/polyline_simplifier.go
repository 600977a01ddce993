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

	"github.com/golang/geo/r3"
	"github.com/golang/geo/s1"
	"github.com/golang/geo/s2"
)

// PolylineSimplifier computes a maximal edge that starts at a fixed source
// vertex, intersects a sequence of target discs and avoids a sequence of
// discs on a given side. The results are conservative: the edge is
// guaranteed to intersect or avoid each disc under exact arithmetic.
//
// The edge chain simplifier uses it to replace a chain of snapped edges by a
// single edge that stays close to every input vertex and keeps every nearby
// site on the same side.
type PolylineSimplifier struct {
	src s2.Point
	// Orthonormal frame (up to scale) for mapping directions to angles.
	xDir, yDir r3.Vector
	// Allowable range of angles for the output edge.
	window s1.Interval

	// Discs to avoid are deferred until the first disc has been targeted,
	// because until then the window is full and splitting it is ambiguous.
	rangesToAvoid []rangeToAvoid
}

type rangeToAvoid struct {
	interval s1.Interval
	onLeft   bool
}

// NewPolylineSimplifier returns a simplifier whose output edge starts at src.
func NewPolylineSimplifier(src s2.Point) *PolylineSimplifier {
	s := &PolylineSimplifier{}
	s.Init(src)
	return s
}

// Init starts a new simplified edge at src.
func (s *PolylineSimplifier) Init(src s2.Point) {
	s.src = src
	s.window = s1.FullInterval()
	s.rangesToAvoid = s.rangesToAvoid[:0]

	// The tangent frame is built around the axis along which src has the
	// smallest component, which keeps the frame well conditioned. The frame
	// vectors are not normalized since only their ratio matters.
	c := [3]float64{src.X, src.Y, src.Z}
	i := smallestAbsComponent(c)
	j, k := (i+1)%3, (i+2)%3

	var y, x [3]float64
	y[j] = c[k]
	y[k] = -c[j]
	x[i] = c[j]*c[j] + c[k]*c[k]
	x[j] = -c[j] * c[i]
	x[k] = -c[k] * c[i]
	s.yDir = r3.Vector{X: y[0], Y: y[1], Z: y[2]}
	s.xDir = r3.Vector{X: x[0], Y: x[1], Z: x[2]}
}

// smallestAbsComponent returns the index of the component with the
// smallest absolute value.
func smallestAbsComponent(c [3]float64) int {
	ax, ay, az := math.Abs(c[0]), math.Abs(c[1]), math.Abs(c[2])
	if ax < ay {
		if ax < az {
			return 0
		}
		return 2
	}
	if ay < az {
		return 1
	}
	return 2
}

// Src returns the source vertex of the output edge.
func (s *PolylineSimplifier) Src() s2.Point {
	return s.src
}

// Extend reports whether the edge (src, dst) satisfies all the targeting and
// avoidance requirements so far. Edges longer than 90 degrees are never
// accepted.
func (s *PolylineSimplifier) Extend(dst s2.Point) bool {
	// The error bounds grow without limit as the edge approaches 180 degrees.
	if s2.ChordAngleBetweenPoints(s.src, dst) > s1.RightChordAngle {
		return false
	}

	dir := s.direction(dst)
	if !s.window.Contains(dir) {
		return false
	}
	for _, r := range s.rangesToAvoid {
		if r.interval.Contains(dir) {
			return false
		}
	}
	return true
}

// TargetDisc requires the output edge to pass through the disc of radius r
// centered at p. It reports whether that is still possible given the
// previous constraints.
func (s *PolylineSimplifier) TargetDisc(p s2.Point, r s1.ChordAngle) bool {
	semiwidth := s.semiwidth(p, r, -1)
	if semiwidth >= math.Pi {
		// The disc contains src.
		return true
	}
	if semiwidth < 0 {
		s.window = s1.EmptyInterval()
		return false
	}

	center := s.direction(p)
	target := s1.IntervalFromPointPair(center, center).Expanded(semiwidth)
	s.window = s.window.Intersection(target)

	for _, r := range s.rangesToAvoid {
		s.avoidRange(r.interval, r.onLeft)
	}
	s.rangesToAvoid = s.rangesToAvoid[:0]
	return !s.window.IsEmpty()
}

// AvoidDisc requires the output edge to avoid the disc of radius r centered
// at p, passing it on the given side. It reports whether that is still
// possible given the previous constraints.
func (s *PolylineSimplifier) AvoidDisc(p s2.Point, r s1.ChordAngle, discOnLeft bool) bool {
	semiwidth := s.semiwidth(p, r, 1)
	if semiwidth >= math.Pi {
		// The disc contains src, so it cannot be avoided.
		s.window = s1.EmptyInterval()
		return false
	}

	center := s.direction(p)
	dLeft, dRight := semiwidth, math.Pi/2
	if discOnLeft {
		dLeft, dRight = math.Pi/2, semiwidth
	}
	avoid := s1.IntervalFromEndpoints(
		math.Remainder(center-dRight, 2*math.Pi),
		math.Remainder(center+dLeft, 2*math.Pi))

	if s.window.IsFull() {
		s.rangesToAvoid = append(s.rangesToAvoid, rangeToAvoid{interval: avoid, onLeft: discOnLeft})
		return true
	}
	s.avoidRange(avoid, discOnLeft)
	return !s.window.IsEmpty()
}

func (s *PolylineSimplifier) avoidRange(avoid s1.Interval, discOnLeft bool) {
	// When avoid is strictly inside the window the remainder is two
	// intervals. The one pointing away from the disc would need an edge
	// longer than 90 degrees, so only the other one is kept.
	if s.window.ContainsInterval(avoid) {
		if discOnLeft {
			s.window = s1.IntervalFromEndpoints(s.window.Lo, avoid.Lo)
		} else {
			s.window = s1.IntervalFromEndpoints(avoid.Hi, s.window.Hi)
		}
		return
	}
	s.window = s.window.Intersection(avoid.Complement())
}

func (s *PolylineSimplifier) direction(p s2.Point) float64 {
	return math.Atan2(p.Dot(s.yDir), p.Dot(s.xDir))
}

// semiwidth returns half the angle subtended from src by the disc of radius
// r centered at p, rounded up (roundDirection 1) or down (-1) by the maximum
// error of the computation. It returns Pi if the disc contains src.
func (s *PolylineSimplifier) semiwidth(p s2.Point, r s1.ChordAngle, roundDirection float64) float64 {
	r2 := float64(r)
	a2 := float64(s2.ChordAngleBetweenPoints(s.src, p))
	a2 -= 64 * dblError * dblError * roundDirection
	if a2 <= r2 {
		return math.Pi
	}

	sin2R := r2 * (1 - 0.25*r2)
	sin2A := a2 * (1 - 0.25*a2)
	semiwidth := math.Asin(math.Sqrt(sin2R / sin2A))

	maxErr := (2*10+4)*dblError + 17*dblError*semiwidth
	return semiwidth + roundDirection*maxErr
}
