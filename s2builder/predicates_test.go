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
	"testing"

	"github.com/golang/geo/s1"
)

func TestPredicatesCompareEdgeDistance(t *testing.T) {
	a0, a1 := parsePoint(t, "0:0"), parsePoint(t, "0:10")
	tests := []struct {
		x    string
		r    s1.Angle
		want int
	}{
		// Closest point in the edge interior.
		{"1:5", 0.5 * s1.Degree, 1},
		{"1:5", 2 * s1.Degree, -1},
		{"-1:5", 2 * s1.Degree, -1},
		// Closest point is an endpoint.
		{"0:-3", 2 * s1.Degree, 1},
		{"0:-3", 4 * s1.Degree, -1},
		{"0:12", 1 * s1.Degree, 1},
		// On the edge.
		{"0:5", 1e-9 * s1.Degree, -1},
	}
	for _, test := range tests {
		x := parsePoint(t, test.x)
		if got := compareEdgeDistance(x, a0, a1, s1.ChordAngleFromAngle(test.r)); got != test.want {
			t.Errorf("compareEdgeDistance(%s, 0:0, 0:10, %v) = %d, want %d", test.x, test.r, got, test.want)
		}
	}
}

func TestPredicatesCompareEdgeDirections(t *testing.T) {
	tests := []struct {
		a0, a1, b0, b1 string
		want           int
	}{
		{"0:0", "0:1", "1:0", "1:1", 1},
		{"0:0", "0:1", "1:1", "1:0", -1},
		{"0:0", "0:1", "-20:40", "-19:45", 1},
		{"0:0", "0:1", "5:5", "5:5", 0},
		{"0:0", "0:0", "0:0", "0:1", 0},
	}
	for _, test := range tests {
		got := compareEdgeDirections(parsePoint(t, test.a0), parsePoint(t, test.a1),
			parsePoint(t, test.b0), parsePoint(t, test.b1))
		if got != test.want {
			t.Errorf("compareEdgeDirections(%s, %s, %s, %s) = %d, want %d",
				test.a0, test.a1, test.b0, test.b1, got, test.want)
		}
	}
}

func TestPredicatesEdgeCircumcenterSign(t *testing.T) {
	x0, x1 := parsePoint(t, "0:0"), parsePoint(t, "0:10")
	north := []string{"5:4", "6:5", "5:6"}
	south := []string{"-5:4", "-6:5", "-5:6"}
	tests := []struct {
		tri      []string
		reversed bool
		want     int
	}{
		{north, false, 1},
		{north, true, -1},
		{south, false, -1},
		{south, true, 1},
		// The orientation of the triangle does not matter.
		{[]string{"5:6", "6:5", "5:4"}, false, 1},
	}
	for _, test := range tests {
		a, b, c := parsePoint(t, test.tri[0]), parsePoint(t, test.tri[1]), parsePoint(t, test.tri[2])
		e0, e1 := x0, x1
		if test.reversed {
			e0, e1 = x1, x0
		}
		if got := edgeCircumcenterSign(e0, e1, a, b, c); got != test.want {
			t.Errorf("edgeCircumcenterSign(reversed=%v, %v) = %d, want %d", test.reversed, test.tri, got, test.want)
		}
	}
}

func TestPredicatesVoronoiSiteExclusion(t *testing.T) {
	x0, x1 := parsePoint(t, "0:0"), parsePoint(t, "0:10")
	r := s1.ChordAngleFromAngle(s1.Degree)
	tests := []struct {
		a, b string
		want excluded
	}{
		// Both Voronoi regions cross the edge.
		{"0.1:1", "0.1:2", excludedNeither},
		{"0.5:3", "-0.5:6", excludedNeither},
		// a is closer than b to both endpoints.
		{"0:5", "0.5:5.01", excludedSecond},
		// The part of the edge within r of a is closer to b.
		{"0.9:4.9", "0:5.1", excludedFirst},
	}
	for _, test := range tests {
		got := voronoiSiteExclusion(parsePoint(t, test.a), parsePoint(t, test.b), x0, x1, r)
		if got != test.want {
			t.Errorf("voronoiSiteExclusion(%s, %s) = %v, want %v", test.a, test.b, got, test.want)
		}
	}
}
