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
	"math/rand"
	"testing"

	"github.com/golang/geo/s1"
	"github.com/golang/geo/s2"
	"github.com/google/go-cmp/cmp"
)

func TestEdgeIndexCrossingPairsMatchBruteForce(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	center := s2.LatLngFromDegrees(20, 30)
	var as, bs []s2.Point
	x := newEdgeIndex()
	for range 150 {
		a := randomPointNear(r, center, 5)
		b := randomPointNear(r, center, 5)
		as, bs = append(as, a), append(bs, b)
		x.add(a, b)
	}
	// A few long edges and a degenerate one.
	for _, e := range [][2]string{{"0:0", "40:60"}, {"40:0", "0:60"}, {"20:30", "20:30"}} {
		a, b := parsePoint(t, e[0]), parsePoint(t, e[1])
		as, bs = append(as, a), append(bs, b)
		x.add(a, b)
	}
	x.build()
	if x.numEdges() != len(as) {
		t.Fatalf("numEdges() = %d, want %d", x.numEdges(), len(as))
	}

	var want [][2]InputEdgeID
	for e := range as {
		crosser := s2.NewEdgeCrosser(as[e], bs[e])
		for f := e + 1; f < len(as); f++ {
			if crosser.CrossingSign(as[f], bs[f]) == s2.Cross {
				want = append(want, [2]InputEdgeID{InputEdgeID(e), InputEdgeID(f)})
			}
		}
	}
	if len(want) == 0 {
		t.Fatal("test input has no crossings")
	}
	if diff := cmp.Diff(want, x.crossingPairs()); diff != "" {
		t.Errorf("crossingPairs() mismatch (-want +got):\n%s", diff)
	}
}

func TestEdgeIndexEdgesNearPointMatchBruteForce(t *testing.T) {
	r := rand.New(rand.NewSource(8))
	center := s2.LatLngFromDegrees(-45, 170)
	var as, bs []s2.Point
	x := newEdgeIndex()
	for range 200 {
		a := randomPointNear(r, center, 4)
		b := randomPointNear(r, center, 4)
		as, bs = append(as, a), append(bs, b)
		x.add(a, b)
	}
	x.build()

	for range 50 {
		p := randomPointNear(r, center, 4)
		radius := s1.ChordAngleFromAngle(s1.Angle(r.Float64()) * 0.5 * s1.Degree)
		got := x.edgesNearPoint(p, radius)

		found := make(map[InputEdgeID]bool)
		for i, e := range got {
			if i > 0 && got[i-1] >= e {
				t.Fatalf("edgesNearPoint not strictly increasing: %v", got)
			}
			found[e] = true
		}
		for e := range as {
			if edgeDistance(p, as[e], bs[e]) <= radius && !found[InputEdgeID(e)] {
				t.Errorf("edge %d within %v of %v was not found", e, radius.Angle(), p)
			}
		}
	}
}

func TestEdgeIndexSharedEndpointsDoNotCross(t *testing.T) {
	x := newEdgeIndex()
	pts := parsePoints(t, "0:0, 0:10, 10:10")
	x.add(pts[0], pts[1])
	x.add(pts[1], pts[2])
	x.add(pts[2], pts[0])
	x.build()
	if got := x.crossingPairs(); len(got) != 0 {
		t.Errorf("crossingPairs() = %v, want none", got)
	}
}
