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
	"github.com/golang/geo/s2"
)

func simplifyOptions(snapRadius s1.Angle) Options {
	opts := snapOptions(NewIdentitySnapFunction(snapRadius))
	opts.SimplifyEdgeChains = true
	return opts
}

func TestEdgeChainSimplifierSimplifyOneEdge(t *testing.T) {
	for _, undirected := range []bool{false, true} {
		b := NewBuilder(simplifyOptions(s1.Degree))
		var output s2.Polyline
		if undirected {
			b.StartLayer(NewUndirectedPolylineLayer(&output))
		} else {
			b.StartLayer(NewPolylineLayer(&output))
		}
		b.AddPolyline(makePolyline(t, "0:0, 1:0.5, 2:-0.5, 3:0.5, 4:-0.5, 5:0"))
		if err := b.Build(); err != nil {
			t.Fatalf("undirected=%v: Build failed: %v", undirected, err)
		}
		got := polylineString(&output)
		if got != "0:0, 5:0" && !(undirected && got == "5:0, 0:0") {
			t.Errorf("undirected=%v: got %q, want %q", undirected, got, "0:0, 5:0")
		}
	}
}

func TestEdgeChainSimplifierKeepsForcedVertices(t *testing.T) {
	b := NewBuilder(simplifyOptions(1e-15))
	var output s2.Polyline
	b.StartLayer(NewPolylineLayer(&output))
	b.AddPolyline(makePolyline(t, "0:0, 0:1, 0:2, 0:3"))
	b.ForceVertex(parsePoint(t, "0:1"))
	if err := b.Build(); err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if got, want := polylineString(&output), "0:0, 0:1, 0:3"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestEdgeChainSimplifierWithoutSimplification(t *testing.T) {
	// Without the option every input vertex is kept.
	b := NewBuilder(snapOptions(NewIdentitySnapFunction(1e-15)))
	var output s2.Polyline
	b.StartLayer(NewPolylineLayer(&output))
	b.AddPolyline(makePolyline(t, "0:0, 0:1, 0:2, 0:3"))
	if err := b.Build(); err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if got, want := polylineString(&output), "0:0, 0:1, 0:2, 0:3"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestEdgeChainSimplifierPolygonKeepsCorners(t *testing.T) {
	b := NewBuilder(simplifyOptions(0.5 * s1.Degree))
	var output s2.Polygon
	b.StartLayer(NewPolygonLayer(&output))
	b.AddPolygon(makePolygon(t, "0:0, 0:1, 0:2, 2:2, 2:0"))
	b.ForceVertex(parsePoint(t, "2:2"))
	if err := b.Build(); err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	expectPolygonLoops(t, "0:0, 0:2, 2:2, 2:0", &output)
}

func TestEdgeChainSimplifierStopsAtLayerBoundaries(t *testing.T) {
	// The shared vertex is interior to neither layer's chain since each
	// layer ends there.
	b := NewBuilder(simplifyOptions(s1.Degree))
	var first, second s2.Polyline
	b.StartLayer(NewPolylineLayer(&first))
	b.AddPolyline(makePolyline(t, "0:0, 0:5"))
	b.StartLayer(NewPolylineLayer(&second))
	b.AddPolyline(makePolyline(t, "0:5, 0:10"))
	if err := b.Build(); err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if got, want := polylineString(&first), "0:0, 0:5"; got != want {
		t.Errorf("first layer = %q, want %q", got, want)
	}
	if got, want := polylineString(&second), "0:5, 0:10"; got != want {
		t.Errorf("second layer = %q, want %q", got, want)
	}
}
