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

	"github.com/golang/geo/s2"
)

// snapEdge appends to chain the sites that input edge e snaps to, in order,
// and returns the result. The chain contains the sites whose Voronoi regions
// (clipped to the edge snap radius) the edge passes through.
func (b *Builder) snapEdge(e InputEdgeID, chain []VertexID) []VertexID {
	edge := b.inputEdges[e]
	if !b.snappingNeeded {
		return append(chain, VertexID(edge.v0), VertexID(edge.v1))
	}

	x, y := b.inputVertices[edge.v0], b.inputVertices[edge.v1]
	for _, id := range b.edgeSites[e] {
		c := b.sites[id]
		// Sites to avoid are also listed, and some sites are close to the
		// line through the edge but not to the edge itself.
		if compareEdgeDistance(c, x, y, b.radii.edgeSnapCA) > 0 {
			continue
		}

		// Check whether C excludes the previous site B, and if so repeat with
		// the site before it.
		addC := true
		for ; len(chain) > 0; chain = chain[:len(chain)-1] {
			bp := b.sites[chain[len(chain)-1]]

			// Sites this far apart cannot have adjacent clipped Voronoi
			// regions.
			if s2.ChordAngleBetweenPoints(bp, c) >= b.radii.maxAdjacentSiteSeparationCA {
				break
			}

			// If the coverage interval of one site on XY contains that of
			// the other, the contained one is excluded.
			excl := voronoiSiteExclusion(bp, c, x, y, b.radii.edgeSnapCA)
			if excl == excludedFirst {
				continue
			}
			if excl == excludedSecond {
				addC = false
				break
			}

			// Otherwise the previous site A may clip the region of B
			// together with C.
			if len(chain) < 2 {
				break
			}
			a := b.sites[chain[len(chain)-2]]
			if s2.ChordAngleBetweenPoints(a, c) >= b.radii.maxAdjacentSiteSeparationCA {
				break
			}

			// If ABC and XYB have the same orientation, the circumcenter of
			// ABC is on the same side of XY as B but further away.
			xyb := s2.RobustSign(x, y, bp)
			if s2.RobustSign(a, bp, c) == xyb {
				break
			}
			// B is excluded by A and C combined exactly when the circumcenter
			// of ABC is on the same side of XY as B.
			if edgeCircumcenterSign(x, y, a, bp, c) != int(xyb) {
				break
			}
		}
		if addC {
			chain = append(chain, id)
		}
	}
	return chain
}

// separationSite returns a new site on input edge e, as close as possible to
// target but inside the gap between the coverage intervals of the chain
// sites v0 and v1.
//
// The coverage interval of a site on XY is the part of XY within the edge
// snap radius of it. A snapped edge can only pass closer than the minimum
// separation to a site when the coverage of XY has a gap near that site, and
// a new site in the gap fills it. Snapping the new site moves it by at most
// the snap radius, so its coverage still meets the gap.
func (b *Builder) separationSite(target, v0, v1 s2.Point, e InputEdgeID) (s2.Point, error) {
	edge := b.inputEdges[e]
	x, y := b.inputVertices[edge.v0], b.inputVertices[edge.v1]
	xyDir := y.Sub(x.Vector)
	n := x.PointCross(y)
	site := s2.Project(target, x, y)
	gapMin := b.coverageEndpoint(v0, n)
	gapMax := b.coverageEndpoint(v1, s2.Point{Vector: n.Mul(-1)})
	if site.Sub(gapMin.Vector).Dot(xyDir) < 0 {
		site = gapMin
	} else if gapMax.Sub(site.Vector).Dot(xyDir) < 0 {
		site = gapMax
	}
	return b.snapSite(site)
}

// coverageEndpoint intersects the great circle with normal n with the disc of
// radius edgeSnapRadius around p, and returns the intersection point that is
// further along the circle in the direction n x p.
//
// The plane that cuts the disc off the sphere meets the plane of the circle
// in a line whose closest point to p is M. The result is OM + MR, where OM is
// along (n x p) x n and MR is along n x p. Both are scaled by |n|^2.
func (b *Builder) coverageEndpoint(p, n s2.Point) s2.Point {
	sin2 := b.radii.edgeSnapRadiusSin2
	n2 := n.Norm2()
	nDp := n.Dot(p.Vector)
	nXp := n.Cross(p.Vector)
	nXpXn := p.Mul(n2).Sub(n.Mul(nDp))
	om := nXpXn.Mul(math.Sqrt(1 - sin2))
	mr2 := sin2*n2 - nDp*nDp
	mr := nXp.Mul(math.Sqrt(math.Max(0, mr2)))
	return s2.Point{Vector: om.Add(mr).Normalize()}
}
