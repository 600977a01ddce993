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
	"bytes"
	"log/slog"
	"math"
	"strings"
	"testing"

	"github.com/golang/geo/s1"
	"github.com/golang/geo/s2"
)

// fixedSnapFunction snaps every point to the same location.
type fixedSnapFunction struct {
	p          s2.Point
	snapRadius s1.Angle
}

func (f *fixedSnapFunction) SnapRadius() s1.Angle              { return f.snapRadius }
func (f *fixedSnapFunction) MinVertexSeparation() s1.Angle     { return 0 }
func (f *fixedSnapFunction) MinEdgeVertexSeparation() s1.Angle { return 0 }
func (f *fixedSnapFunction) SnapPoint(s2.Point) s2.Point       { return f.p }

func (f *fixedSnapFunction) Clone() SnapFunction {
	c := *f
	return &c
}

func TestAddSeparationSiteSnappedOntoEndpoint(t *testing.T) {
	v0, v1 := parsePoint(t, "0:0"), parsePoint(t, "0:1")
	var buf bytes.Buffer
	opts := snapOptions(&fixedSnapFunction{p: v0, snapRadius: 20 * s1.Degree})
	opts.Idempotent = false
	opts.Logger = slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	b := NewBuilder(opts)
	b.StartLayer(nilLayer{})
	b.AddEdge(v0, v1)

	// Shrink the coverage of the endpoints so that the gap between them
	// contains the target.
	sin := math.Sin((0.1 * s1.Degree).Radians())
	b.radii.edgeSnapRadiusSin2 = sin * sin

	queue := []InputEdgeID{0}
	got, err := b.addSeparationSite(parsePoint(t, "0:0.5"), v0, v1, 0, 0, nil, queue)
	if err != nil {
		t.Fatalf("addSeparationSite failed: %v", err)
	}
	if len(got) != 1 || got[0] != 0 {
		t.Errorf("queue = %v, want [0]", got)
	}
	if len(b.sites) != 0 {
		t.Errorf("got %d sites, want none added", len(b.sites))
	}
	if !strings.Contains(buf.String(), "separation site snapped onto an edge endpoint") {
		t.Errorf("missing debug record, got log:\n%s", buf.String())
	}
}

func TestAddSeparationSiteSnapRadiusTooSmall(t *testing.T) {
	v0, v1 := parsePoint(t, "0:0"), parsePoint(t, "0:10")
	// The snap moves the gap site by about 5 degrees.
	opts := snapOptions(&fixedSnapFunction{p: v0, snapRadius: s1.Degree})
	opts.Idempotent = false
	b := NewBuilder(opts)
	b.StartLayer(nilLayer{})
	b.AddEdge(v0, v1)

	_, err := b.addSeparationSite(parsePoint(t, "0:5"), v0, v1, 0, 0, nil, nil)
	if code := CodeOf(err); code != CodeBuilderSnapRadiusTooSmall {
		t.Errorf("addSeparationSite error code = %v, want CodeBuilderSnapRadiusTooSmall (err %v)", code, err)
	}
}
