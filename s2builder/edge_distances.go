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

// intersectionError is the maximum angular error of s2.Intersection.
const intersectionError = s1.Angle(8 * dblError)

// roundUpAngle converts an angle to a chord angle that is never smaller than
// the exact conversion.
func roundUpAngle(a s1.Angle) s1.ChordAngle {
	ca := s1.ChordAngleFromAngle(a)
	return ca.Expanded(ca.MaxAngleError())
}

// addPointToPointError expands ca by the maximum error of computing a chord
// angle between two points.
func addPointToPointError(ca s1.ChordAngle) s1.ChordAngle {
	return ca.Expanded(ca.MaxPointError())
}

// addPointToEdgeError expands ca by the maximum error of computing the
// distance from a point to an edge.
func addPointToEdgeError(ca s1.ChordAngle) s1.ChordAngle {
	return ca.Expanded(updateMinDistanceMaxError(ca))
}

// updateMinDistanceMaxError returns the maximum error of the distance
// computed by s2.UpdateMinDistance for a result of the given size.
func updateMinDistanceMaxError(dist s1.ChordAngle) float64 {
	return math.Max(updateMinInteriorDistanceMaxError(dist), dist.MaxPointError())
}

func updateMinInteriorDistanceMaxError(dist s1.ChordAngle) float64 {
	// Points further than 90 degrees from an edge are closest to an endpoint.
	if dist >= s1.RightChordAngle {
		return 0
	}
	b := math.Min(1.0, 0.5*float64(dist))
	a := math.Sqrt(b * (2 - b))
	return ((2.5+2*sqrt3+8.5*a)*a +
		(2+2*sqrt3/3+6.5*(1-b))*b +
		(23+16/sqrt3)*dblEpsilon) * dblEpsilon
}

// edgeDistance returns the distance from x to the edge ab.
func edgeDistance(x, a, b s2.Point) s1.ChordAngle {
	d, _ := s2.UpdateMinDistance(x, a, b, s1.InfChordAngle())
	return d
}

// isEdgeBNearEdgeA reports whether every point of edge b lies within
// tolerance of edge a and b follows the same direction as a. The endpoints
// of b must be within tolerance of a, and the tolerance must be below 90
// degrees.
func isEdgeBNearEdgeA(a0, a1, b0, b1 s2.Point, tolerance s1.Angle) bool {
	aOrtho := s2.Point{Vector: a0.PointCross(a1).Normalize()}
	aNearestB0 := s2.Project(b0, a0, a1)
	aNearestB1 := s2.Project(b1, a0, a1)
	// The nearest points to b0 and b1 must be in order along a.
	if s2.RobustSign(aOrtho, aNearestB0, aNearestB1) == s2.Clockwise {
		aOrtho = s2.Point{Vector: aOrtho.Mul(-1)}
	}

	b0Distance := b0.Distance(aNearestB0)
	b1Distance := b1.Distance(aNearestB1)
	if b0Distance > tolerance || b1Distance > tolerance {
		return false
	}

	bOrtho := s2.Point{Vector: b0.PointCross(b1).Normalize()}
	planarAngle := aOrtho.Angle(bOrtho.Vector)
	if planarAngle <= tolerance {
		return true
	}

	// Nearly antiparallel edges: b lies near a only if both endpoints of b
	// are nearest to the same endpoint of a.
	if planarAngle >= math.Pi-0.01 {
		return (b0.Distance(a0) < b0.Distance(a1)) == (b1.Distance(a0) < b1.Distance(a1))
	}

	// The point of b's great circle furthest from a's great circle lies in
	// the plane of both normals. The edge deviates too far exactly when that
	// point (or its antipode) lies inside b.
	furthest := s2.Point{Vector: aOrtho.Sub(bOrtho.Mul(aOrtho.Dot(bOrtho.Vector))).Normalize()}
	furthestInv := s2.Point{Vector: furthest.Mul(-1)}
	return !((s2.Sign(bOrtho, b0, furthest) && s2.Sign(furthest, b1, bOrtho)) ||
		(s2.Sign(bOrtho, b0, furthestInv) && s2.Sign(furthestInv, b1, bOrtho)))
}
