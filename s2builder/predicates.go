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

// This file holds the predicates needed by snap rounding that are not
// exported by the s2 package: comparing distances to edges, comparing edge
// directions, locating circumcenters relative to an edge and deciding whether
// one Voronoi site excludes another. Every predicate first tries a cheap
// float64 computation with a rigorous error bound and only falls back to
// exact arithmetic (and finally symbolic perturbation) when the bound is not
// sufficient to decide.

import (
	"math"
	"math/big"

	"github.com/golang/geo/r3"
	"github.com/golang/geo/s1"
	"github.com/golang/geo/s2"
)

const (
	// dblEpsilon is the distance from 1.0 to the next larger float64.
	dblEpsilon = 2.220446049250313e-16
	// dblError is the rounding epsilon of float64 arithmetic.
	dblError = 1.110223024625156e-16

	// maxDeterminantError bounds the error of the float64 triple product of
	// three unit length points.
	maxDeterminantError = 1.8274 * dblEpsilon
)

var (
	sqrt3 = math.Sqrt(3)

	// ca45Degrees is (approximately) 45 degrees.
	ca45Degrees = s1.ChordAngleFromSquaredLength(2 - math.Sqrt2)

	bigOne     = big.NewFloat(1.0).SetPrec(big.MaxPrec)
	bigHalf    = big.NewFloat(0.5).SetPrec(big.MaxPrec)
	bigQuarter = big.NewFloat(0.25).SetPrec(big.MaxPrec)
	bigFour    = big.NewFloat(4.0).SetPrec(big.MaxPrec)
)

// newBigFloat constructs a new big.Float with maximum precision.
func newBigFloat() *big.Float { return new(big.Float).SetPrec(big.MaxPrec) }

func bigMul(a, b *big.Float) *big.Float { return newBigFloat().Mul(a, b) }
func bigSub(a, b *big.Float) *big.Float { return newBigFloat().Sub(a, b) }
func bigAdd(a, b *big.Float) *big.Float { return newBigFloat().Add(a, b) }
func bigFromFloat(f float64) *big.Float { return newBigFloat().SetFloat64(f) }

func precise(p s2.Point) r3.PreciseVector { return r3.PreciseVectorFromVector(p.Vector) }

func clampSign(x int) int {
	if x < -1 {
		return -1
	}
	if x > 1 {
		return 1
	}
	return x
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// cosDistance returns cos(XY) and its maximum error.
func cosDistance(x, y r3.Vector) (cos, err float64) {
	cos = x.Dot(y)
	return cos, 9.5*dblError*math.Abs(cos) + 1.5*dblError
}

// sin2Distance returns sin**2(XY) and its maximum error.
func sin2Distance(x, y r3.Vector) (sin2, err float64) {
	n := x.Sub(y).Cross(x.Add(y))
	sin2 = 0.25 * n.Norm2()
	err = ((21+4*sqrt3)*dblError*sin2 +
		32*sqrt3*dblError*dblError*math.Sqrt(sin2) +
		768*dblError*dblError*dblError*dblError)
	return sin2, err
}

func triageCompareCosDistance(x, y r3.Vector, r2 float64) int {
	cosXY, cosXYError := cosDistance(x, y)
	cosR := 1.0 - 0.5*r2
	cosRError := 2.0 * dblError * cosR
	diff := cosXY - cosR
	err := cosXYError + cosRError
	if diff > err {
		return -1
	}
	if diff < -err {
		return 1
	}
	return 0
}

func triageCompareSin2Distance(x, y r3.Vector, r2 float64) int {
	sin2XY, sin2XYError := sin2Distance(x, y)
	sin2R := r2 * (1.0 - 0.25*r2)
	sin2RError := 3.0 * dblError * sin2R
	diff := sin2XY - sin2R
	err := sin2XYError + sin2RError
	if diff > err {
		return 1
	}
	if diff < -err {
		return -1
	}
	return 0
}

// triageCompareDistance compares the distance XY against the squared chord
// length r2, returning 0 when float64 arithmetic cannot decide.
func triageCompareDistance(x, y r3.Vector, r2 float64) int {
	sign := triageCompareCosDistance(x, y, r2)
	if sign == 0 && r2 < float64(ca45Degrees) {
		sign = triageCompareSin2Distance(x, y, r2)
	}
	return sign
}

// closestVertex returns whichever of a0 and a1 is closer to x (ties broken
// lexicographically) and the squared distance to it.
func closestVertex(x, a0, a1 r3.Vector) (r3.Vector, float64) {
	a0x2 := a0.Sub(x).Norm2()
	a1x2 := a1.Sub(x).Norm2()
	if a0x2 < a1x2 || (a0x2 == a1x2 && a0.Cmp(a1) < 0) {
		return a0, a0x2
	}
	return a1, a1x2
}

func triageCompareLineSin2Distance(x, a0, a1 r3.Vector, r2 float64, n r3.Vector, n1, n2 float64) int {
	// The distance to the interior of an edge is always below 90 degrees.
	if r2 >= 2.0 {
		return -1
	}

	n2sin2R := n2 * r2 * (1 - 0.25*r2)
	n2sin2RError := 6 * dblError * n2sin2R
	closest, ax2 := closestVertex(x, a0, a1)
	xDn := x.Sub(closest).Dot(n)
	xDn2 := xDn * xDn
	c1 := ((3.5+2*sqrt3)*n1 + 32*sqrt3*dblError) * dblError * math.Sqrt(ax2)
	xDn2Error := 4*dblError*xDn2 + (2*math.Abs(xDn)+c1)*c1
	n2sin2RError += 8 * dblError * n2sin2R

	diff := xDn2 - n2sin2R
	err := xDn2Error + n2sin2RError
	if diff > err {
		return 1
	}
	if diff < -err {
		return -1
	}
	return 0
}

func triageCompareLineCos2Distance(x, a0, a1 r3.Vector, r2 float64, n r3.Vector, n1, n2 float64) int {
	if r2 >= 2.0 {
		return -1
	}

	cosR := 1 - 0.5*r2
	n2cos2R := n2 * cosR * cosR
	n2cos2RError := 7 * dblError * n2cos2R

	// |X x N| is the cosine of the distance to the great circle.
	m2 := x.Cross(n).Norm2()
	m1 := math.Sqrt(m2)
	m1Error := ((1+8/sqrt3)*n1 + 32*sqrt3*dblError) * dblError
	m2Error := 3*dblError*m2 + (2*m1+m1Error)*m1Error
	n2cos2RError += 8 * dblError * n2cos2R

	diff := m2 - n2cos2R
	err := m2Error + n2cos2RError
	if diff > err {
		return -1
	}
	if diff < -err {
		return 1
	}
	return 0
}

func triageCompareLineDistance(x, a0, a1 r3.Vector, r2 float64, n r3.Vector, n1, n2 float64) int {
	if r2 < float64(ca45Degrees) {
		return triageCompareLineSin2Distance(x, a0, a1, r2, n, n1, n2)
	}
	return triageCompareLineCos2Distance(x, a0, a1, r2, n, n1, n2)
}

func triageCompareEdgeDistance(x, a0, a1 r3.Vector, r2 float64) int {
	// The closest point is interior to the edge exactly when a0 and a1 lie on
	// opposite sides of the plane through x perpendicular to the edge.
	n := a0.Sub(a1).Cross(a0.Add(a1))
	m := n.Cross(x)
	a0Dir := a0.Sub(x)
	a1Dir := a1.Sub(x)
	a0Sign := a0Dir.Dot(m)
	a1Sign := a1Dir.Dot(m)
	n2 := n.Norm2()
	n1 := math.Sqrt(n2)
	n1Error := ((3.5+8/sqrt3)*n1 + 32*sqrt3*dblError) * dblError
	a0SignError := n1Error * a0Dir.Norm()
	a1SignError := n1Error * a1Dir.Norm()
	if math.Abs(a0Sign) < a0SignError || math.Abs(a1Sign) < a1SignError {
		vertexSign := minInt(triageCompareDistance(x, a0, r2), triageCompareDistance(x, a1, r2))
		lineSign := triageCompareLineDistance(x, a0, a1, r2, n, n1, n2)
		if vertexSign == lineSign {
			return lineSign
		}
		return 0
	}
	if a0Sign >= 0 || a1Sign <= 0 {
		return minInt(triageCompareDistance(x, a0, r2), triageCompareDistance(x, a1, r2))
	}
	return triageCompareLineDistance(x, a0, a1, r2, n, n1, n2)
}

func exactCompareLineDistance(x, a0, a1 r3.PreciseVector, r2 float64) int {
	if r2 >= 2.0 {
		return -1
	}
	n := a0.Cross(a1)
	sinD := x.Dot(n)
	br2 := bigFromFloat(r2)
	sin2R := bigMul(br2, bigSub(bigOne, bigMul(bigQuarter, br2)))
	cmp := bigSub(bigMul(sinD, sinD), bigMul(bigMul(sin2R, x.Norm2()), n.Norm2()))
	return cmp.Sign()
}

func exactCompareEdgeDistance(x, a0, a1 s2.Point, r s1.ChordAngle) int {
	if compareEdgeDirections(a0, a1, a0, x) > 0 && compareEdgeDirections(a0, a1, x, a1) > 0 {
		return exactCompareLineDistance(precise(x), precise(a0), precise(a1), float64(r))
	}
	return minInt(s2.CompareDistance(x, a0, r), s2.CompareDistance(x, a1, r))
}

// compareEdgeDistance returns -1, 0, or +1 according to whether the distance
// from x to the edge a0a1 is less than, equal to, or greater than r. The edge
// must not consist of antipodal points.
func compareEdgeDistance(x, a0, a1 s2.Point, r s1.ChordAngle) int {
	sign := triageCompareEdgeDistance(x.Vector, a0.Vector, a1.Vector, float64(r))
	if sign != 0 {
		return sign
	}
	if a0 == a1 {
		return s2.CompareDistance(x, a0, r)
	}
	return exactCompareEdgeDistance(x, a0, a1, r)
}

func triageCompareEdgeDirections(a0, a1, b0, b1 r3.Vector) int {
	na := a0.Sub(a1).Cross(a0.Add(a1))
	nb := b0.Sub(b1).Cross(b0.Add(b1))
	naLen, nbLen := na.Norm(), nb.Norm()
	cosAB := na.Dot(nb)
	cosABError := ((5+4*sqrt3)*naLen*nbLen + 32*sqrt3*dblError*(naLen+nbLen)) * dblError
	if cosAB > cosABError {
		return 1
	}
	if cosAB < -cosABError {
		return -1
	}
	return 0
}

func arePointsLinearlyDependent(x, y r3.PreciseVector) bool {
	n := x.Cross(y)
	return n.X.Sign() == 0 && n.Y.Sign() == 0 && n.Z.Sign() == 0
}

// compareEdgeDirections returns +1 if the edges a0a1 and b0b1 point in
// similar directions (the angle between their great circle normals is less
// than 90 degrees), -1 if they point in opposite directions, and 0 if either
// edge is degenerate or the normals are exactly perpendicular.
func compareEdgeDirections(a0, a1, b0, b1 s2.Point) int {
	sign := triageCompareEdgeDirections(a0.Vector, a1.Vector, b0.Vector, b1.Vector)
	if sign != 0 {
		return sign
	}
	if a0 == a1 || b0 == b1 {
		return 0
	}
	na := precise(a0).Cross(precise(a1))
	nb := precise(b0).Cross(precise(b1))
	return na.Dot(nb).Sign()
}

// circumcenter returns an unnormalized circumcenter of the triangle abc
// (pointing towards the triangle when abc is counter-clockwise) and its
// maximum error.
func circumcenter(a, b, c r3.Vector) (r3.Vector, float64) {
	abDiff, abSum := a.Sub(b), a.Add(b)
	bcDiff, bcSum := b.Sub(c), b.Add(c)
	nab := abDiff.Cross(abSum)
	nabLen := nab.Norm()
	abLen := abDiff.Norm()
	nbc := bcDiff.Cross(bcSum)
	nbcLen := nbc.Norm()
	bcLen := bcDiff.Norm()
	mab := nab.Cross(abSum)
	mbc := nbc.Cross(bcSum)
	err := (((16+24*sqrt3)*dblError+8*dblError*(abLen+bcLen))*nabLen*nbcLen +
		128*sqrt3*dblError*dblError*(nabLen+nbcLen) +
		3*4096*dblError*dblError*dblError*dblError)
	return mab.Cross(mbc), err
}

func triageEdgeCircumcenterSign(x0, x1, a, b, c r3.Vector, abcSign int) int {
	z, zError := circumcenter(a, b, c)
	nx := x0.Sub(x1).Cross(x0.Add(x1))
	result := float64(abcSign) * nx.Dot(z)

	zLen := z.Norm()
	nxLen := nx.Norm()
	nxError := ((1+2*sqrt3)*nxLen + 32*sqrt3*dblError) * dblError
	resultError := (3*dblError*nxLen+nxError)*zLen + zError*nxLen
	if result > resultError {
		return 1
	}
	if result < -resultError {
		return -1
	}
	return 0
}

func exactEdgeCircumcenterSign(x0, x1, a, b, c r3.PreciseVector, abcSign int) int {
	if arePointsLinearlyDependent(x0, x1) {
		return 0
	}
	// Evaluates the sign of nx.(|C|(A x B) + |A|(B x C) + |B|(C x A)) without
	// square roots by repeatedly squaring both sides of the inequality.
	nx := x0.Cross(x1)
	dab := nx.Dot(a.Cross(b))
	dbc := nx.Dot(b.Cross(c))
	dca := nx.Dot(c.Cross(a))
	abc2 := bigMul(a.Norm2(), bigMul(dbc, dbc))
	bca2 := bigMul(b.Norm2(), bigMul(dca, dca))
	cab2 := bigMul(c.Norm2(), bigMul(dab, dab))

	lhs3Sign, rhs3Sign := dab.Sign(), -dbc.Sign()
	lhs2Sign := clampSign(lhs3Sign - rhs3Sign)
	if lhs2Sign == 0 && lhs3Sign != 0 {
		lhs2Sign = bigSub(cab2, abc2).Sign() * lhs3Sign
	}
	rhs2Sign := -dca.Sign()
	result := clampSign(lhs2Sign - rhs2Sign)
	if result == 0 && lhs2Sign != 0 {
		lhs4Sign := dab.Sign() * dbc.Sign()
		rhs4 := bigSub(bigSub(bca2, cab2), abc2)
		result = clampSign(lhs4Sign - rhs4.Sign())
		if result == 0 && lhs4Sign != 0 {
			result = bigSub(bigMul(bigMul(bigFour, abc2), cab2), bigMul(rhs4, rhs4)).Sign() * lhs4Sign
		}
		result *= lhs2Sign
	}
	return abcSign * result
}

// unperturbedSign returns the orientation of abc without symbolic
// perturbation, so collinear points yield 0.
func unperturbedSign(a, b, c s2.Point) int {
	det := a.Cross(b.Vector).Dot(c.Vector)
	if det > maxDeterminantError {
		return 1
	}
	if det < -maxDeterminantError {
		return -1
	}
	return precise(a).Cross(precise(b)).Dot(precise(c)).Sign()
}

func symbolicEdgeCircumcenterSign(x0, x1, a, b, c s2.Point) int {
	if a == b || b == c || c == a {
		return 0
	}
	if b.Cmp(a.Vector) < 0 {
		a, b = b, a
	}
	if c.Cmp(b.Vector) < 0 {
		b, c = c, b
	}
	if b.Cmp(a.Vector) < 0 {
		a, b = b, a
	}
	if sign := unperturbedSign(x0, x1, a); sign != 0 {
		return sign
	}
	if sign := unperturbedSign(x0, x1, b); sign != 0 {
		return sign
	}
	return unperturbedSign(x0, x1, c)
}

// edgeCircumcenterSign returns the side of the great circle through x0x1 on
// which the circumcenter of triangle abc lies: +1 for the left side, -1 for
// the right. It returns 0 only when the edge or the triangle is degenerate.
func edgeCircumcenterSign(x0, x1, a, b, c s2.Point) int {
	abcSign := int(s2.RobustSign(a, b, c))
	sign := triageEdgeCircumcenterSign(x0.Vector, x1.Vector, a.Vector, b.Vector, c.Vector, abcSign)
	if sign != 0 {
		return sign
	}
	if x0 == x1 || a == b || b == c || c == a {
		return 0
	}
	sign = exactEdgeCircumcenterSign(precise(x0), precise(x1), precise(a), precise(b), precise(c), abcSign)
	if sign != 0 {
		return sign
	}
	return symbolicEdgeCircumcenterSign(x0, x1, a, b, c)
}

// excluded reports which of two Voronoi sites has a region that does not
// intersect an edge.
type excluded int

const (
	excludedFirst excluded = iota
	excludedSecond
	excludedNeither
	excludedUncertain
)

func (e excluded) String() string {
	switch e {
	case excludedFirst:
		return "FIRST"
	case excludedSecond:
		return "SECOND"
	case excludedNeither:
		return "NEITHER"
	}
	return "UNCERTAIN"
}

func triageVoronoiSiteExclusion(a, b, x0, x1 r3.Vector, r2 float64) excluded {
	n := x0.Sub(x1).Cross(x0.Add(x1))
	n2 := n.Norm2()
	n1 := math.Sqrt(n2)
	dnError := ((3.5+2*sqrt3)*n1 + 32*sqrt3*dblError) * dblError

	cosR := 1 - 0.5*r2
	sin2R := r2 * (1 - 0.25*r2)
	n2sin2R := n2 * sin2R

	// ra and rb are the half-lengths of the chords cut from the great circle
	// of x0x1 by the discs of radius r around a and b.
	aClosest, ax2 := closestVertex(a, x0, x1)
	aDn := a.Sub(aClosest).Dot(n)
	aDn2 := aDn * aDn
	aDnError := dnError * math.Sqrt(ax2)
	ra2 := n2sin2R - aDn2
	ra2Error := (8*dblError+4*dblError)*aDn2 +
		(2*math.Abs(aDn)+aDnError)*aDnError + 6*dblError*n2sin2R
	minRa2 := ra2 - ra2Error
	if minRa2 < 0 {
		return excludedUncertain
	}
	ra := math.Sqrt(ra2)
	raError := 1.5*dblError*ra + 0.5*ra2Error/math.Sqrt(minRa2)

	bClosest, bx2 := closestVertex(b, x0, x1)
	bDn := b.Sub(bClosest).Dot(n)
	bDn2 := bDn * bDn
	bDnError := dnError * math.Sqrt(bx2)
	rb2 := n2sin2R - bDn2
	rb2Error := (8*dblError+4*dblError)*bDn2 +
		(2*math.Abs(bDn)+bDnError)*bDnError + 6*dblError*n2sin2R
	minRb2 := rb2 - rb2Error
	if minRb2 < 0 {
		return excludedUncertain
	}
	rb := math.Sqrt(rb2)
	rbError := 1.5*dblError*rb + 0.5*rb2Error/math.Sqrt(minRb2)

	lhs3 := cosR * (rb - ra)
	absLhs3 := math.Abs(lhs3)
	lhs3Error := cosR*(raError+rbError) + 3*dblError*absLhs3

	aXb := a.Sub(b).Cross(a.Add(b))
	aXb1 := aXb.Norm()
	sinD := 0.5 * aXb.Dot(n)
	sinDError := (4*dblError+(2.5+2*sqrt3)*dblError)*aXb1*n1 +
		16*sqrt3*dblError*dblError*(aXb1+n1)

	result := absLhs3 - sinD
	resultError := lhs3Error + sinDError
	if result < -resultError {
		return excludedNeither
	}

	cosD := a.Dot(b)*n2 - aDn*bDn
	cosDError := ((8*dblError+5*dblError)*math.Abs(aDn)+aDnError)*math.Abs(bDn) +
		(math.Abs(aDn)+aDnError)*bDnError + (8*dblError+8*dblError)*n2
	if cosD <= -cosDError {
		return excludedNeither
	}
	if cosD < cosDError {
		return excludedUncertain
	}

	if sinD < -sinDError {
		r90 := float64(s1.RightChordAngle)
		ca := -1
		if lhs3 >= -lhs3Error {
			ca = triageCompareCosDistance(a, x0, r90)
		}
		cb := -1
		if lhs3 <= lhs3Error {
			cb = triageCompareCosDistance(b, x1, r90)
		}
		if ca < 0 && cb < 0 {
			return excludedNeither
		}
		if ca <= 0 && cb <= 0 {
			return excludedUncertain
		}
		if absLhs3 <= lhs3Error {
			return excludedUncertain
		}
	} else if sinD <= sinDError {
		return excludedUncertain
	}
	if result <= resultError {
		return excludedUncertain
	}
	if lhs3 > 0 {
		return excludedFirst
	}
	return excludedSecond
}

func exactVoronoiSiteExclusion(pa, pb s2.Point, a, b, x0, x1 r3.PreciseVector, r2 float64) excluded {
	n := x0.Cross(x1)
	n2 := n.Norm2()
	aDn := a.Dot(n)
	bDn := b.Dot(n)
	cosD := bigSub(bigMul(a.Dot(b), n2), bigMul(aDn, bDn))
	if cosD.Sign() < 0 {
		return excludedNeither
	}

	br2 := bigFromFloat(r2)
	a2 := a.Norm2()
	b2 := b.Norm2()
	n2sin2R := bigMul(bigMul(br2, bigSub(bigOne, bigMul(bigQuarter, br2))), n2)
	sa2 := bigMul(b2, bigSub(bigMul(n2sin2R, a2), bigMul(aDn, aDn)))
	sb2 := bigMul(a2, bigSub(bigMul(n2sin2R, b2), bigMul(bDn, bDn)))
	lhs2Sign := bigSub(sb2, sa2).Sign()

	rhs2 := a.Cross(b).Dot(n)
	if rhs2.Sign() < 0 {
		r90 := bigFromFloat(float64(s1.RightChordAngle))
		ca := -1
		if lhs2Sign >= 0 {
			ca = exactCompareDistance(a, x0, r90)
		}
		cb := -1
		if lhs2Sign <= 0 {
			cb = exactCompareDistance(b, x1, r90)
		}
		if ca <= 0 && cb <= 0 {
			return excludedNeither
		}
		if ca == 1 {
			return excludedFirst
		}
		return excludedSecond
	}
	if lhs2Sign == 0 {
		return excludedNeither
	}

	cosR := bigSub(bigOne, bigMul(bigHalf, br2))
	cos2R := bigMul(cosR, cosR)
	lhs3 := bigSub(bigMul(cos2R, bigAdd(sa2, sb2)), bigMul(rhs2, rhs2))
	if lhs3.Sign() < 0 {
		return excludedNeither
	}

	lhs4 := bigMul(lhs3, lhs3)
	rhs4 := bigMul(bigMul(bigMul(bigFour, cos2R), cos2R), bigMul(sa2, sb2))
	result := bigSub(lhs4, rhs4).Sign()
	if result < 0 {
		return excludedNeither
	}
	if result == 0 && (lhs2Sign > 0) == (pa.Cmp(pb.Vector) > 0) {
		return excludedNeither
	}
	if lhs2Sign > 0 {
		return excludedFirst
	}
	return excludedSecond
}

// exactCompareDistance compares the distance XY with the squared chord
// length r2 as though both points were projected onto the unit sphere.
func exactCompareDistance(x, y r3.PreciseVector, r2 *big.Float) int {
	cosXY := x.Dot(y)
	cosR := bigSub(bigOne, bigMul(bigHalf, r2))
	xySign := cosXY.Sign()
	rSign := cosR.Sign()
	if xySign != rSign {
		if xySign > rSign {
			return -1
		}
		return 1
	}
	cmp := bigSub(bigMul(bigMul(cosR, cosR), bigMul(x.Norm2(), y.Norm2())), bigMul(cosXY, cosXY))
	return xySign * cmp.Sign()
}

// voronoiSiteExclusion decides, for two sites a and b within distance r of
// the edge x0x1 with a closer to x0 than b, whether the Voronoi region of
// either site (restricted to the disc of radius r) misses the edge entirely.
// The result is never excludedUncertain.
func voronoiSiteExclusion(a, b, x0, x1 s2.Point, r s1.ChordAngle) excluded {
	// When a is also closer to x1, a is closer to every point of the edge.
	if s2.CompareDistances(x1, a, b) < 0 {
		return excludedSecond
	}
	result := triageVoronoiSiteExclusion(a.Vector, b.Vector, x0.Vector, x1.Vector, float64(r))
	if result != excludedUncertain {
		return result
	}
	return exactVoronoiSiteExclusion(a, b, precise(a), precise(b), precise(x0), precise(x1), float64(r))
}
