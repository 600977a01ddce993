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
	"sort"
	"testing"

	"github.com/golang/geo/s1"
	"github.com/golang/geo/s2"
	"github.com/google/go-cmp/cmp"
)

// randomPointNear returns a point within roughly spread degrees of center.
func randomPointNear(r *rand.Rand, center s2.LatLng, spread float64) s2.Point {
	return s2.PointFromLatLng(s2.LatLngFromDegrees(
		center.Lat.Degrees()+spread*(2*r.Float64()-1),
		center.Lng.Degrees()+spread*(2*r.Float64()-1)))
}

func sortedSites(ids []VertexID) []VertexID {
	out := append([]VertexID(nil), ids...)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func TestSiteIndexIteratorOrder(t *testing.T) {
	r := rand.New(rand.NewSource(3))
	x := newSiteIndex()
	for i := range 200 {
		x.add(randomPoint(r), VertexID(i))
	}
	if x.numSites() != 200 {
		t.Fatalf("numSites() = %d, want 200", x.numSites())
	}
	var prev s2.CellID
	n := 0
	for it := x.iterator(); !it.done(); it.next() {
		if it.cellID() < prev {
			t.Fatalf("iterator out of order at %d: %v after %v", n, it.cellID(), prev)
		}
		prev = it.cellID()
		n++
	}
	if n != 200 {
		t.Errorf("iterator visited %d sites, want 200", n)
	}
}

func TestSiteIndexQueryPointMatchesBruteForce(t *testing.T) {
	r := rand.New(rand.NewSource(4))
	center := s2.LatLngFromDegrees(40, -70)
	var sites []s2.Point
	x := newSiteIndex()
	for i := range 500 {
		p := randomPointNear(r, center, 2)
		sites = append(sites, p)
		x.add(p, VertexID(i))
	}

	for range 50 {
		target := randomPointNear(r, center, 2)
		radius := s1.ChordAngleFromAngle(s1.Angle(r.Float64()) * 0.5 * s1.Degree)
		got := x.queryPoint(target, radius)

		found := make(map[VertexID]bool)
		for _, id := range got {
			if found[id] {
				t.Fatalf("site %d reported twice", id)
			}
			found[id] = true
			if d := s2.ChordAngleBetweenPoints(target, sites[id]); d > radius.Expanded(1e-14) {
				t.Errorf("site %d at distance %v is outside %v", id, d.Angle(), radius.Angle())
			}
		}
		for id, p := range sites {
			if s2.ChordAngleBetweenPoints(target, p) <= radius && !found[VertexID(id)] {
				t.Errorf("site %d within %v of the target was not found", id, radius.Angle())
			}
		}
	}
}

func TestSiteIndexQueryEdgeMatchesBruteForce(t *testing.T) {
	r := rand.New(rand.NewSource(5))
	center := s2.LatLngFromDegrees(-10, 120)
	var sites []s2.Point
	x := newSiteIndex()
	for i := range 500 {
		p := randomPointNear(r, center, 3)
		sites = append(sites, p)
		x.add(p, VertexID(i))
	}

	for range 50 {
		a := randomPointNear(r, center, 3)
		b := randomPointNear(r, center, 3)
		radius := s1.ChordAngleFromAngle(s1.Angle(r.Float64()) * 0.3 * s1.Degree)
		got := x.queryEdge(a, b, radius)

		found := make(map[VertexID]bool)
		for _, id := range got {
			found[id] = true
			if d := edgeDistance(sites[id], a, b); d > radius.Expanded(1e-14) {
				t.Errorf("site %d at distance %v is outside %v", id, d.Angle(), radius.Angle())
			}
		}
		for id, p := range sites {
			if edgeDistance(p, a, b) <= radius && !found[VertexID(id)] {
				t.Errorf("site %d within %v of the edge was not found", id, radius.Angle())
			}
		}
	}
}

func TestSiteIndexQueryDegenerateEdge(t *testing.T) {
	x := newSiteIndex()
	pts := parsePoints(t, "0:0, 0:0.5, 0:2, 3:3")
	for i, p := range pts {
		x.add(p, VertexID(i))
	}
	a := parsePoint(t, "0:0")
	radius := s1.ChordAngleFromAngle(s1.Degree)
	want := []VertexID{0, 1}
	if diff := cmp.Diff(want, sortedSites(x.queryEdge(a, a, radius))); diff != "" {
		t.Errorf("queryEdge(a, a) mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(want, sortedSites(x.queryPoint(a, radius))); diff != "" {
		t.Errorf("queryPoint(a) mismatch (-want +got):\n%s", diff)
	}
}

func TestSquaredDistanceBatch(t *testing.T) {
	r := rand.New(rand.NewSource(6))
	const n = 37
	xs, ys, zs := make([]float64, n), make([]float64, n), make([]float64, n)
	var pts []s2.Point
	for i := range n {
		p := randomPoint(r)
		pts = append(pts, p)
		xs[i], ys[i], zs[i] = p.X, p.Y, p.Z
	}
	target := randomPoint(r)
	out := make([]float64, n)
	BaseSquaredDistanceBatch(target.X, target.Y, target.Z, xs, ys, zs, out)
	dots := make([]float64, n)
	BaseDotProductConstBatch(target.X, target.Y, target.Z, xs, ys, zs, dots)
	for i, p := range pts {
		if want := target.Sub(p.Vector).Norm2(); !float64Near(out[i], want, 1e-14) {
			t.Errorf("squared distance %d = %v, want %v", i, out[i], want)
		}
		if want := target.Dot(p.Vector); !float64Near(dots[i], want, 1e-14) {
			t.Errorf("dot product %d = %v, want %v", i, dots[i], want)
		}
	}
}

func float64Near(x, y, eps float64) bool {
	return x-y <= eps && y-x <= eps
}
