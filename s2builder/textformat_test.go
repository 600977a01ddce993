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
	"sort"
	"strconv"
	"strings"
	"testing"

	"github.com/golang/geo/s2"
)

// Geometry in tests is written as "lat:lng, lat:lng, ..." in degrees. Loops
// of a polygon are separated by ";".

func parsePoint(t *testing.T, s string) s2.Point {
	t.Helper()
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 {
		t.Fatalf("invalid point %q", s)
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		t.Fatalf("invalid latitude in %q: %v", s, err)
	}
	lng, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		t.Fatalf("invalid longitude in %q: %v", s, err)
	}
	return s2.PointFromLatLng(s2.LatLngFromDegrees(lat, lng))
}

func parsePoints(t *testing.T, s string) []s2.Point {
	t.Helper()
	if strings.TrimSpace(s) == "" {
		return nil
	}
	var pts []s2.Point
	for _, p := range strings.Split(s, ",") {
		pts = append(pts, parsePoint(t, p))
	}
	return pts
}

func makePolyline(t *testing.T, s string) *s2.Polyline {
	t.Helper()
	p := s2.Polyline(parsePoints(t, s))
	return &p
}

func makeLoop(t *testing.T, s string) *s2.Loop {
	t.Helper()
	return s2.LoopFromPoints(parsePoints(t, s))
}

// makePolygon builds a polygon from loops that are each normalized, so the
// loop orientation in the text does not matter.
func makePolygon(t *testing.T, s string) *s2.Polygon {
	t.Helper()
	var loops []*s2.Loop
	for _, l := range strings.Split(s, ";") {
		if strings.TrimSpace(l) == "" {
			continue
		}
		loop := makeLoop(t, l)
		loop.Normalize()
		loops = append(loops, loop)
	}
	return s2.PolygonFromLoops(loops)
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', 15, 64)
}

func pointString(p s2.Point) string {
	ll := s2.LatLngFromPoint(p)
	return formatFloat(ll.Lat.Degrees()) + ":" + formatFloat(ll.Lng.Degrees())
}

func pointsString(pts []s2.Point) string {
	strs := make([]string, len(pts))
	for i, p := range pts {
		strs[i] = pointString(p)
	}
	return strings.Join(strs, ", ")
}

func polylineString(p *s2.Polyline) string {
	return pointsString(*p)
}

func loopString(l *s2.Loop) string {
	return pointsString(l.Vertices())
}

// polygonLoopStrings returns one string per loop, each rotated to start at
// its smallest vertex string, sorted. It identifies a polygon up to the
// choice of first vertex and the order of loops.
func polygonLoopStrings(p *s2.Polygon) []string {
	var out []string
	for i := 0; i < p.NumLoops(); i++ {
		vs := p.Loop(i).Vertices()
		strs := make([]string, len(vs))
		for j, v := range vs {
			strs[j] = pointString(v)
		}
		start := 0
		for j := range strs {
			if strs[j] < strs[start] {
				start = j
			}
		}
		out = append(out, strings.Join(append(strs[start:len(strs):len(strs)], strs[:start]...), ", "))
	}
	sort.Strings(out)
	return out
}

func TestTextFormatRoundTrip(t *testing.T) {
	for _, s := range []string{"0:0", "1:2, 3:4", "-10.5:179.25, 45:-90"} {
		if got := pointsString(parsePoints(t, s)); got != s {
			t.Errorf("round trip of %q = %q", s, got)
		}
	}
	p := makePolygon(t, "0:0, 0:1, 1:0; 10:10, 10:11, 11:10")
	want := []string{"0:0, 0:1, 1:0", "10:10, 10:11, 11:10"}
	got := polygonLoopStrings(p)
	if strings.Join(got, "; ") != strings.Join(want, "; ") {
		t.Errorf("polygonLoopStrings = %q, want %q", got, want)
	}
}
