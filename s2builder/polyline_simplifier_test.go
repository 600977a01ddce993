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

func TestPolylineSimplifierStraightLine(t *testing.T) {
	src := parsePoint(t, "0:0")
	simplifier := NewPolylineSimplifier(src)

	// About 10 meters on the Earth's surface.
	tolerance := s1.ChordAngleFromAngle(s1.Angle(10.0 / 6371000.0))

	for i := 1; i <= 10; i++ {
		p := s2.PointFromLatLng(s2.LatLngFromDegrees(0, float64(i)))
		if !simplifier.Extend(p) {
			t.Errorf("Extend failed for point %d on straight line", i)
		}
		if !simplifier.TargetDisc(p, tolerance) {
			t.Errorf("TargetDisc failed for point %d", i)
		}
	}
	if simplifier.Src() != src {
		t.Errorf("Src() = %v, want %v", simplifier.Src(), src)
	}
}

func TestPolylineSimplifierPerturbedLine(t *testing.T) {
	simplifier := NewPolylineSimplifier(parsePoint(t, "0:0"))
	tolerance := s1.ChordAngleFromAngle(0.1 * s1.Degree)

	// All within 0.05 degrees of the equator.
	for i, p := range parsePoints(t, "0:1, 0.05:2, 0:3, -0.05:4, 0:5") {
		if !simplifier.Extend(p) {
			t.Errorf("Extend failed for perturbed point %d", i)
		}
		if !simplifier.TargetDisc(p, tolerance) {
			t.Errorf("TargetDisc failed for perturbed point %d", i)
		}
	}
}

func TestPolylineSimplifierAvoidDisc(t *testing.T) {
	src := parsePoint(t, "0:0")
	dst := parsePoint(t, "0:10")
	obstacle := parsePoint(t, "0.1:5")
	obstacleRadius := s1.ChordAngleFromAngle(0.01 * s1.Degree)

	// North is on the left when heading east.
	simplifier := NewPolylineSimplifier(src)
	simplifier.TargetDisc(parsePoint(t, "0:1"), s1.ChordAngleFromAngle(s1.Degree))
	if !simplifier.AvoidDisc(obstacle, obstacleRadius, true) {
		t.Error("AvoidDisc failed for an obstacle on the left")
	}
	if !simplifier.Extend(dst) {
		t.Error("Extend to dst failed after avoiding obstacle")
	}

	// A tight target at dst leaves no room to pass north of the obstacle.
	simplifier = NewPolylineSimplifier(src)
	simplifier.TargetDisc(dst, s1.ChordAngleFromAngle(0.001*s1.Degree))
	if simplifier.AvoidDisc(obstacle, obstacleRadius, false) {
		t.Error("AvoidDisc succeeded for an obstacle that must be passed on the wrong side")
	}
}

func TestPolylineSimplifierAvoidDiscBeforeTarget(t *testing.T) {
	// Discs to avoid are remembered until the first target.
	simplifier := NewPolylineSimplifier(parsePoint(t, "0:0"))
	if !simplifier.AvoidDisc(parsePoint(t, "0.1:5"), s1.ChordAngleFromAngle(0.01*s1.Degree), true) {
		t.Fatal("AvoidDisc failed with a full window")
	}
	if !simplifier.TargetDisc(parsePoint(t, "0:10"), s1.ChordAngleFromAngle(0.5*s1.Degree)) {
		t.Fatal("TargetDisc failed")
	}
	if !simplifier.Extend(parsePoint(t, "0:10")) {
		t.Error("Extend failed for a point south of the avoided disc")
	}
	if simplifier.Extend(parsePoint(t, "0.2:10")) {
		t.Error("Extend succeeded for a point on the wrong side of the avoided disc")
	}
}

func TestPolylineSimplifierLargeDeviation(t *testing.T) {
	simplifier := NewPolylineSimplifier(parsePoint(t, "0:0"))
	simplifier.TargetDisc(parsePoint(t, "0:1"), s1.ChordAngleFromAngle(0.01*s1.Degree))

	// The window points east within a fraction of a degree.
	if simplifier.Extend(parsePoint(t, "10:2")) {
		t.Error("Extend should fail for point with large deviation")
	}
}

func TestPolylineSimplifierMaxEdgeLength(t *testing.T) {
	simplifier := NewPolylineSimplifier(parsePoint(t, "0:0"))
	if simplifier.Extend(parsePoint(t, "0:91")) {
		t.Error("Extend should fail for edge > 90 degrees")
	}
	if !simplifier.Extend(parsePoint(t, "0:89")) {
		t.Error("Extend should succeed for an unconstrained edge < 90 degrees")
	}
}

func TestPolylineSimplifierUnreachableTarget(t *testing.T) {
	simplifier := NewPolylineSimplifier(parsePoint(t, "0:0"))
	tolerance := s1.ChordAngleFromAngle(0.1 * s1.Degree)
	if !simplifier.TargetDisc(parsePoint(t, "0:5"), tolerance) {
		t.Fatal("TargetDisc failed for the first disc")
	}
	if simplifier.TargetDisc(parsePoint(t, "5:5"), tolerance) {
		t.Error("TargetDisc succeeded for a disc outside the window")
	}
	if simplifier.Extend(parsePoint(t, "0:10")) {
		t.Error("Extend succeeded with an empty window")
	}
}

func TestPolylineSimplifierSemiwidthCase(t *testing.T) {
	src := parsePoint(t, "0:0")
	simplifier := NewPolylineSimplifier(src)
	r := s1.ChordAngleFromAngle(s1.Degree)

	// A disc containing src puts no constraint on the edge.
	if !simplifier.TargetDisc(src, r) {
		t.Error("TargetDisc should succeed when disc contains src")
	}
	if !simplifier.window.IsFull() {
		t.Error("Window should remain full when disc contains src")
	}
	if simplifier.AvoidDisc(src, r, true) {
		t.Error("AvoidDisc should fail when disc contains src")
	}
}

func TestPolylineSimplifierInitResets(t *testing.T) {
	simplifier := NewPolylineSimplifier(parsePoint(t, "0:0"))
	simplifier.TargetDisc(parsePoint(t, "0:5"), s1.ChordAngleFromAngle(0.1*s1.Degree))
	simplifier.Init(parsePoint(t, "10:10"))
	if !simplifier.window.IsFull() || len(simplifier.rangesToAvoid) != 0 {
		t.Error("Init did not reset the constraints")
	}
	if !simplifier.Extend(parsePoint(t, "20:10")) {
		t.Error("Extend failed after Init")
	}
}
