package s2builder

//go:generate hwygen -input $GOFILE -output . -targets avx2,fallback

import (
	"github.com/ajroetker/go-highway/hwy"
)

// Batch kernels used by the site index to discard candidate sites before the
// exact distance predicates run. Sites are stored in SoA layout so that a
// contiguous run of cell-ordered sites can be tested in one pass.

// BaseSquaredDistanceBatch computes the squared Euclidean distance from a
// target point to every point of a set (SoA layout). For unit vectors this is
// the squared chord length, i.e. the value of an s1.ChordAngle.
// dst[i] = (xs[i]-tx)^2 + (ys[i]-ty)^2 + (zs[i]-tz)^2
func BaseSquaredDistanceBatch[T hwy.Floats](
	tx, ty, tz T,
	xs, ys, zs []T,
	dst []T,
) {
	size := min(len(xs), len(ys), len(zs), len(dst))

	vTx := hwy.Set(tx)
	vTy := hwy.Set(ty)
	vTz := hwy.Set(tz)

	hwy.ProcessWithTail[T](size,
		func(offset int) {
			dx := hwy.Sub(hwy.Load(xs[offset:]), vTx)
			dy := hwy.Sub(hwy.Load(ys[offset:]), vTy)
			dz := hwy.Sub(hwy.Load(zs[offset:]), vTz)

			dist := hwy.Mul(dx, dx)
			dist = hwy.FMA(dy, dy, dist)
			dist = hwy.FMA(dz, dz, dist)

			hwy.Store(dist, dst[offset:])
		},
		func(offset, count int) {
			mask := hwy.TailMask[T](count)
			dx := hwy.Sub(hwy.MaskLoad(mask, xs[offset:]), vTx)
			dy := hwy.Sub(hwy.MaskLoad(mask, ys[offset:]), vTy)
			dz := hwy.Sub(hwy.MaskLoad(mask, zs[offset:]), vTz)

			dist := hwy.Mul(dx, dx)
			dist = hwy.FMA(dy, dy, dist)
			dist = hwy.FMA(dz, dz, dist)

			hwy.MaskStore(mask, dist, dst[offset:])
		},
	)
}

// BaseDotProductConstBatch computes dot products of a constant vector A against
// a set of vectors B (stored in SoA layout). With A the normal of an edge's
// great circle, dst[i] is proportional to the sine of the distance from B[i]
// to that great circle.
// dst[i] = A.X * bx[i] + A.Y * by[i] + A.Z * bz[i]
func BaseDotProductConstBatch[T hwy.Floats](
	ax, ay, az T,
	bx, by, bz []T,
	dst []T,
) {
	size := min(len(bx), len(by), len(bz), len(dst))

	vAx := hwy.Set(ax)
	vAy := hwy.Set(ay)
	vAz := hwy.Set(az)

	hwy.ProcessWithTail[T](size,
		func(offset int) {
			sum := hwy.Mul(vAx, hwy.Load(bx[offset:]))
			sum = hwy.FMA(vAy, hwy.Load(by[offset:]), sum)
			sum = hwy.FMA(vAz, hwy.Load(bz[offset:]), sum)

			hwy.Store(sum, dst[offset:])
		},
		func(offset, count int) {
			mask := hwy.TailMask[T](count)
			sum := hwy.Mul(vAx, hwy.MaskLoad(mask, bx[offset:]))
			sum = hwy.FMA(vAy, hwy.MaskLoad(mask, by[offset:]), sum)
			sum = hwy.FMA(vAz, hwy.MaskLoad(mask, bz[offset:]), sum)

			hwy.MaskStore(mask, sum, dst[offset:])
		},
	)
}
