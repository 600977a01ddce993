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
)

func TestCellIDSnapFunctionLevelToFromSnapRadius(t *testing.T) {
	for level := 0; level <= maxCellLevel; level++ {
		radius := MinSnapRadiusForLevel(level)
		if got := LevelForMaxSnapRadius(radius); got != level {
			t.Errorf("LevelForMaxSnapRadius(%v) = %d, want %d", radius, got, level)
		}
		want := min(level+1, maxCellLevel)
		if got := LevelForMaxSnapRadius(0.999 * radius); got != want {
			t.Errorf("LevelForMaxSnapRadius(0.999 * %v) = %d, want %d", radius, got, want)
		}
	}
	if got := LevelForMaxSnapRadius(5); got != 0 {
		t.Errorf("LevelForMaxSnapRadius(5) = %d, want 0", got)
	}
	if got := LevelForMaxSnapRadius(1e-30); got != maxCellLevel {
		t.Errorf("LevelForMaxSnapRadius(1e-30) = %d, want %d", got, maxCellLevel)
	}
}

func TestCellIDSnapFunctionSnapPoint(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	for _, level := range []int{0, 5, 12, 20, 30} {
		f := NewCellIDSnapFunction(level)
		for range 100 {
			p := randomPoint(r)
			got := f.SnapPoint(p)
			want := s2.CellFromPoint(p).ID().Parent(level).Point()
			if got != want {
				t.Fatalf("level %d: SnapPoint(%v) = %v, want %v", level, p, got, want)
			}
			if d := p.Distance(got); d > f.SnapRadius() {
				t.Errorf("level %d: snapped point moved %v, more than %v", level, d, f.SnapRadius())
			}
		}
	}
}

func TestCellIDSnapFunctionSeparation(t *testing.T) {
	for level := 0; level <= maxCellLevel; level++ {
		f := NewCellIDSnapFunction(level)
		if f.MinVertexSeparation() <= 0 || f.MinVertexSeparation() > f.SnapRadius() {
			t.Errorf("level %d: MinVertexSeparation = %v, snap radius %v", level, f.MinVertexSeparation(), f.SnapRadius())
		}
		if f.MinEdgeVertexSeparation() <= 0 || f.MinEdgeVertexSeparation() > f.MinVertexSeparation() {
			t.Errorf("level %d: MinEdgeVertexSeparation = %v, MinVertexSeparation %v", level, f.MinEdgeVertexSeparation(), f.MinVertexSeparation())
		}

		// A larger snap radius never decreases the separation.
		g := NewCellIDSnapFunction(level)
		g.SetSnapRadius(2 * f.SnapRadius())
		if g.MinVertexSeparation() < f.MinVertexSeparation() {
			t.Errorf("level %d: separation decreased with a larger radius", level)
		}
	}
}

func TestIntLatLngSnapFunctionExponentToFromSnapRadius(t *testing.T) {
	for exponent := MinIntLatLngExponent; exponent <= MaxIntLatLngExponent; exponent++ {
		radius := MinSnapRadiusForExponent(exponent)
		if got := ExponentForMaxSnapRadius(radius); got != exponent {
			t.Errorf("ExponentForMaxSnapRadius(%v) = %d, want %d", radius, got, exponent)
		}
		want := min(exponent+1, MaxIntLatLngExponent)
		if got := ExponentForMaxSnapRadius(0.999 * radius); got != want {
			t.Errorf("ExponentForMaxSnapRadius(0.999 * %v) = %d, want %d", radius, got, want)
		}
	}
	if got := ExponentForMaxSnapRadius(5); got != MinIntLatLngExponent {
		t.Errorf("ExponentForMaxSnapRadius(5) = %d", got)
	}
	if got := ExponentForMaxSnapRadius(1e-30); got != MaxIntLatLngExponent {
		t.Errorf("ExponentForMaxSnapRadius(1e-30) = %d", got)
	}
}

func TestIntLatLngSnapFunctionSnapPoint(t *testing.T) {
	f := NewIntLatLngSnapFunction(2)
	got := f.SnapPoint(s2.PointFromLatLng(s2.LatLngFromDegrees(12.3456789, -45.6789)))
	want := s2.PointFromLatLng(s2.LatLngFromDegrees(12.35, -45.68))
	if d := got.Distance(want); d > 1e-14 {
		t.Errorf("SnapPoint = %v, want %v (distance %v)", got, want, d)
	}

	r := rand.New(rand.NewSource(2))
	for exponent := MinIntLatLngExponent; exponent <= MaxIntLatLngExponent; exponent++ {
		f := NewIntLatLngSnapFunction(exponent)
		for range 100 {
			p := randomPoint(r)
			if d := p.Distance(f.SnapPoint(p)); d > f.SnapRadius() {
				t.Errorf("exponent %d: snapped point moved %v, more than %v", exponent, d, f.SnapRadius())
			}
		}
	}
}

func TestSnapFunctionValidate(t *testing.T) {
	tooSmallCell := NewCellIDSnapFunction(10)
	tooSmallCell.SetSnapRadius(MinSnapRadiusForLevel(10) / 2)
	tooLargeCell := NewCellIDSnapFunction(10)
	tooLargeCell.SetSnapRadius(MaxSnapRadius + s1.Degree)
	tooSmallLatLng := NewIntLatLngSnapFunction(3)
	tooSmallLatLng.SetSnapRadius(MinSnapRadiusForExponent(3) / 2)

	tests := []struct {
		name string
		f    snapFunctionValidator
		want ErrorCode
	}{
		{"identity", NewIdentitySnapFunction(s1.Degree), CodeOK},
		{"identity zero", NewIdentitySnapFunction(0), CodeOK},
		{"identity negative", NewIdentitySnapFunction(-s1.Degree), CodeBuilderInvalidOptions},
		{"identity too large", NewIdentitySnapFunction(MaxSnapRadius + s1.Degree), CodeBuilderInvalidOptions},
		{"cell level 0", NewCellIDSnapFunction(0), CodeOK},
		{"cell level 30", NewCellIDSnapFunction(30), CodeOK},
		{"cell level 31", NewCellIDSnapFunction(31), CodeBuilderInvalidOptions},
		{"cell level -1", NewCellIDSnapFunction(-1), CodeBuilderInvalidOptions},
		{"cell radius too small", tooSmallCell, CodeBuilderSnapRadiusTooSmall},
		{"cell radius too large", tooLargeCell, CodeBuilderInvalidOptions},
		{"latlng exponent 7", NewIntLatLngSnapFunction(7), CodeOK},
		{"latlng exponent 11", NewIntLatLngSnapFunction(11), CodeBuilderInvalidOptions},
		{"latlng radius too small", tooSmallLatLng, CodeBuilderSnapRadiusTooSmall},
	}
	for _, test := range tests {
		if got := CodeOf(test.f.validate()); got != test.want {
			t.Errorf("%s: validate() code = %v, want %v", test.name, got, test.want)
		}
	}
}

func TestSnapFunctionClone(t *testing.T) {
	f := NewCellIDSnapFunction(12)
	c := f.Clone().(*CellIDSnapFunction)
	f.SetLevel(3)
	if c.Level() != 12 || c.SnapRadius() != MinSnapRadiusForLevel(12) {
		t.Errorf("clone changed with the original: level %d radius %v", c.Level(), c.SnapRadius())
	}

	g := NewIntLatLngSnapFunction(4)
	d := g.Clone().(*IntLatLngSnapFunction)
	g.SetExponent(1)
	if d.Exponent() != 4 {
		t.Errorf("clone exponent = %d, want 4", d.Exponent())
	}

	h := NewIdentitySnapFunction(s1.Degree)
	e := h.Clone()
	h.SetSnapRadius(0)
	if e.SnapRadius() != s1.Degree {
		t.Errorf("clone snap radius = %v, want %v", e.SnapRadius(), s1.Degree)
	}
}
