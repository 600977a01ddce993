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

	"github.com/golang/geo/s2"
)

// Site selection.
//
// Every input vertex is snapped to a site, and sites are chosen so that no
// two of them are closer than the minimum vertex separation. Each input edge
// is then snapped to the chain of sites whose Voronoi regions it crosses.
// When a snapped edge deviates too far from its input edge, or passes too
// close to a site that it does not snap to, an extra site is added on the
// input edge and the nearby edges are snapped again.

// chooseSites selects the sites and, when snapping is needed, the sites near
// every input edge.
func (b *Builder) chooseSites() error {
	if len(b.inputVertices) == 0 {
		b.sortForcedSites()
		return nil
	}

	index := newEdgeIndex()
	for _, e := range b.inputEdges {
		index.add(b.inputVertices[e.v0], b.inputVertices[e.v1])
	}
	index.build()

	if b.opts.SplitCrossingEdges {
		b.addEdgeCrossings(index)
	}
	if b.radii.snappingRequested {
		sites := newSiteIndex()
		b.addForcedSites(sites)
		if err := b.chooseInitialSites(sites); err != nil {
			return err
		}
		b.collectSiteEdges(sites)
		b.log.Debug("chose initial sites",
			"sites", len(b.sites), "forced", b.numForcedSites, "snappingNeeded", b.snappingNeeded)
	}
	if b.snappingNeeded {
		return b.addExtraSites(index)
	}
	b.copyInputEdges()
	return nil
}

// pointLess orders points lexicographically.
func pointLess(a, b s2.Point) bool {
	if a.X != b.X {
		return a.X < b.X
	}
	if a.Y != b.Y {
		return a.Y < b.Y
	}
	return a.Z < b.Z
}

// sortForcedSites sorts the forced sites and removes duplicates. It must run
// before any other site is added.
func (b *Builder) sortForcedSites() {
	forced := b.sites
	sort.Slice(forced, func(i, j int) bool { return pointLess(forced[i], forced[j]) })
	n := 0
	for i, p := range forced {
		if i == 0 || p != forced[n-1] {
			forced[n] = p
			n++
		}
	}
	b.sites = forced[:n]
	b.numForcedSites = n
}

// sortInputVertices returns the input vertex indices in the order in which
// they are considered as sites: by leaf cell, then by point. Any order gives
// correct output, but a fixed spatial order makes the result independent of
// the order of the input edges.
func (b *Builder) sortInputVertices() []int32 {
	type key struct {
		id s2.CellID
		v  int32
	}
	keys := make([]key, len(b.inputVertices))
	for i, p := range b.inputVertices {
		keys[i] = key{s2.CellFromPoint(p).ID(), int32(i)}
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].id != keys[j].id {
			return keys[i].id < keys[j].id
		}
		return pointLess(b.inputVertices[keys[i].v], b.inputVertices[keys[j].v])
	})
	order := make([]int32, len(keys))
	for i, k := range keys {
		order[i] = k.v
	}
	return order
}

// copyInputEdges makes every distinct input vertex a site, for input that
// does not need snapping. Input vertices equal to a forced vertex map to it.
func (b *Builder) copyInputEdges() {
	if b.radii.snappingRequested {
		// The forced sites were sorted by addForcedSites.
		b.sites = b.sites[:b.numForcedSites]
	} else {
		b.sortForcedSites()
	}
	forced := b.sites

	order := b.sortInputVertices()
	vmap := make([]int32, len(b.inputVertices))
	sites := make([]s2.Point, len(forced), len(forced)+len(b.inputVertices))
	copy(sites, forced)
	for in := 0; in < len(order); {
		site := b.inputVertices[order[in]]
		id := int32(len(sites))
		if f := sort.Search(len(forced), func(i int) bool { return !pointLess(forced[i], site) }); f < len(forced) && forced[f] == site {
			id = int32(f)
		} else {
			sites = append(sites, site)
		}
		for ; in < len(order) && b.inputVertices[order[in]] == site; in++ {
			vmap[order[in]] = id
		}
	}
	b.sites = sites
	b.inputVertices = sites
	for i, e := range b.inputEdges {
		b.inputEdges[i] = inputEdge{vmap[e.v0], vmap[e.v1]}
	}
	b.edgeSites = nil
}

// addEdgeCrossings adds the intersection point of every pair of crossing
// input edges as an input vertex. The points are merged with the other
// vertices during site selection.
func (b *Builder) addEdgeCrossings(index *edgeIndex) {
	pairs := index.crossingPairs()
	if len(pairs) == 0 {
		return
	}
	b.snappingNeeded = true
	for _, p := range pairs {
		e, f := p[0], p[1]
		b.addVertex(s2.Intersection(index.a[e], index.b[e], index.a[f], index.b[f]))
	}
	b.log.Debug("added edge crossings", "crossings", len(pairs))
}

// addForcedSites sorts the forced sites and adds them to the site index.
func (b *Builder) addForcedSites(sites *siteIndex) {
	b.sortForcedSites()
	for id, p := range b.sites {
		sites.add(p, VertexID(id))
	}
}

// chooseInitialSites snaps every input vertex and adds the result as a site
// unless an existing site is within the minimum vertex separation.
//
// The snapped location is tested rather than the input vertex itself. With
// the integer lat/lng snap function at exponent 0 the polyline "0:0, 0:0.7"
// then becomes "0:0, 0:1" rather than collapsing to a point.
func (b *Builder) chooseInitialSites(sites *siteIndex) error {
	for _, v := range b.sortInputVertices() {
		vertex := b.inputVertices[v]
		site, err := b.snapSite(vertex)
		if err != nil {
			return err
		}
		// A vertex that moves rules out idempotent output.
		b.snappingNeeded = b.snappingNeeded || site != vertex

		addSite := true
		for _, id := range sites.queryPoint(site, b.radii.minSiteSeparationCA) {
			other := b.sites[id]
			if s2.CompareDistance(site, other, b.radii.minSiteSeparationCA) <= 0 {
				addSite = false
				// Distinct sites this close rule out idempotent output.
				b.snappingNeeded = b.snappingNeeded || site != other
			}
		}
		if addSite {
			sites.add(site, VertexID(len(b.sites)))
			b.sites = append(b.sites, site)
		}
	}
	return nil
}

// snapSite applies the snap function, and checks that the point did not move
// further than the snap radius.
func (b *Builder) snapSite(p s2.Point) (s2.Point, error) {
	if !b.radii.snappingRequested {
		return p, nil
	}
	site := b.opts.SnapFunction.SnapPoint(p)
	moved := s2.ChordAngleBetweenPoints(site, p)
	if moved > b.radii.siteSnapCA {
		return site, errorf(CodeBuilderSnapRadiusTooSmall,
			"Snap function moved vertex (%.15g, %.15g, %.15g) by %.15g, which is more than the specified snap radius of %.15g",
			p.X, p.Y, p.Z, moved.Angle().Radians(), b.radii.siteSnapCA.Angle().Radians())
	}
	return site, nil
}

// collectSiteEdges finds the sites near every input edge. It also checks
// whether an input edge passes too close to a site, which rules out
// idempotent output.
func (b *Builder) collectSiteEdges(sites *siteIndex) {
	b.edgeSites = make([][]VertexID, len(b.inputEdges))
	for e, edge := range b.inputEdges {
		v0, v1 := b.inputVertices[edge.v0], b.inputVertices[edge.v1]
		near := sites.queryEdge(v0, v1, b.radii.edgeSiteQueryCA)
		if !b.snappingNeeded {
			for _, id := range near {
				p := b.sites[id]
				if p != v0 && p != v1 &&
					edgeDistance(p, v0, v1) < b.radii.minEdgeSiteSeparationCALimit &&
					compareEdgeDistance(p, v0, v1, b.radii.minEdgeSiteSeparationCA) < 0 {
					b.snappingNeeded = true
					break
				}
			}
		}
		b.sortSitesByDistance(v0, near)
		b.edgeSites[e] = near
	}
}

// sortSitesByDistance sorts sites by increasing distance from x, using exact
// predicates.
func (b *Builder) sortSitesByDistance(x s2.Point, sites []VertexID) {
	sort.SliceStable(sites, func(i, j int) bool {
		c := s2.CompareDistances(x, b.sites[sites[i]], b.sites[sites[j]])
		return c < 0 || (c == 0 && sites[i] < sites[j])
	})
}

// addExtraSites snaps every input edge, adding sites wherever a snapped edge
// deviates too far from its input edge or passes too close to another site.
// Edges near each new site are snapped again.
func (b *Builder) addExtraSites(index *edgeIndex) error {
	// With a zero site snap radius (only crossing edges are split) neither
	// condition can occur.
	if b.radii.siteSnapCA == 0 {
		return nil
	}
	numSites := len(b.sites)
	maxIterations := b.opts.maxSnapIterations()
	snapCount := make([]int, len(b.inputEdges))

	var chain []VertexID
	var queue []InputEdgeID
	for maxE := InputEdgeID(0); int(maxE) < len(b.inputEdges); maxE++ {
		queue = append(queue, maxE)
		for len(queue) > 0 {
			e := queue[len(queue)-1]
			queue = queue[:len(queue)-1]
			snapCount[e]++
			if snapCount[e] > maxIterations {
				return errorf(CodeBuilderSnapIterationLimit,
					"input edge %d was snapped more than %d times", e, maxIterations)
			}
			chain = b.snapEdge(e, chain[:0])
			var err error
			if queue, err = b.maybeAddExtraSites(e, maxE, chain, index, queue); err != nil {
				return err
			}
		}
	}
	if added := len(b.sites) - numSites; added > 0 {
		b.log.Debug("added extra sites", "sites", added)
	}
	return nil
}

// maybeAddExtraSites checks the snapped chain of edge e and adds at most one
// extra site. The chain is always a subsequence of the sites near the edge,
// so both are walked in parallel; the only snapped edge that can be too
// close to a site that was skipped is the current one.
func (b *Builder) maybeAddExtraSites(e, maxE InputEdgeID, chain []VertexID, index *edgeIndex,
	queue []InputEdgeID) ([]InputEdgeID, error) {
	edge := b.inputEdges[e]
	a0, a1 := b.inputVertices[edge.v0], b.inputVertices[edge.v1]

	i := 0
	for _, id := range b.edgeSites[e] {
		if id == chain[i] {
			i++
			if i == len(chain) {
				break
			}
			v0, v1 := b.sites[chain[i-1]], b.sites[chain[i]]
			if s2.ChordAngleBetweenPoints(v0, v1) < b.radii.minEdgeLengthToSplitCA {
				continue
			}
			if !isEdgeBNearEdgeA(a0, a1, v0, v1, b.radii.maxEdgeDeviation) {
				// Split the snapped edge into two roughly equal pieces.
				// Projecting both endpoints handles snapped edges that wrap
				// around the sphere the wrong way.
				mid := s2.Point{Vector: s2.Project(v0, a0, a1).Add(s2.Project(v1, a0, a1).Vector).Normalize()}
				return b.addSeparationSite(mid, v0, v1, e, maxE, index, queue)
			}
			continue
		}
		if i == 0 {
			continue
		}

		siteToAvoid := b.sites[id]
		v0, v1 := b.sites[chain[i-1]], b.sites[chain[i]]
		forced := int(id) < b.numForcedSites
		// No separation is guaranteed from forced sites, but snapped edges
		// must not cross them.
		tooClose := !forced && b.radii.minEdgeSiteSeparationCA > 0 &&
			compareEdgeDistance(siteToAvoid, v0, v1, b.radii.minEdgeSiteSeparationCA) < 0
		if !tooClose && (forced || b.radii.checkAllSiteCrossings) {
			tooClose = b.crossesSite(a0, a1, v0, v1, siteToAvoid)
		}
		if tooClose {
			return b.addSeparationSite(siteToAvoid, v0, v1, e, maxE, index, queue)
		}
	}
	return queue, nil
}

// crossesSite reports whether the snapped edge v0v1 passes on the other side
// of p than the input edge a0a1, where p projects onto the interior of both.
func (b *Builder) crossesSite(a0, a1, v0, v1, p s2.Point) bool {
	return s2.RobustSign(a0, a1, p) != s2.RobustSign(v0, v1, p) &&
		compareEdgeDirections(a0, a1, a0, p) > 0 &&
		compareEdgeDirections(a0, a1, p, a1) > 0 &&
		compareEdgeDirections(a0, a1, v0, p) > 0 &&
		compareEdgeDirections(a0, a1, p, v1) > 0
}

// addSeparationSite adds a site on input edge e near target, in the gap
// between the coverage of v0 and v1.
func (b *Builder) addSeparationSite(target, v0, v1 s2.Point, e, maxE InputEdgeID, index *edgeIndex,
	queue []InputEdgeID) ([]InputEdgeID, error) {
	site, err := b.separationSite(target, v0, v1, e)
	if err != nil {
		return queue, err
	}
	if site == v0 || site == v1 {
		// The snap function cannot produce a new location here, so the edge
		// may stay closer to the site than the minimum separation.
		b.log.Debug("separation site snapped onto an edge endpoint",
			"edge", e, "site", site.Vector)
		return queue, nil
	}
	return b.addExtraSite(site, maxE, index, queue), nil
}

// addExtraSite adds a site, attaches it to every input edge close enough to
// be affected and queues those edges for snapping, except edges beyond maxE
// that have not been snapped yet.
func (b *Builder) addExtraSite(site s2.Point, maxE InputEdgeID, index *edgeIndex,
	queue []InputEdgeID) []InputEdgeID {
	id := VertexID(len(b.sites))
	b.sites = append(b.sites, site)
	for _, e := range index.edgesNearPoint(site, b.radii.edgeSiteQueryCA) {
		b.edgeSites[e] = append(b.edgeSites[e], id)
		b.sortSitesByDistance(b.inputVertices[b.inputEdges[e].v0], b.edgeSites[e])
		if e <= maxE {
			queue = append(queue, e)
		}
	}
	return queue
}
