package ballpivot

import (
	"math"
	"sort"

	"github.com/go-gl/mathgl/mgl64"
)

// Epsilon is the squared-distance tolerance of the ball emptiness test, in
// position units squared. The three points a ball was fitted through sit
// exactly on its surface; without the tolerance, rounding noise would make
// them count as interior and reject every ball. Tests must not depend on
// sub-Epsilon distinctions.
const Epsilon = 1e-4

// computeBallCenter returns the center of the sphere of the given radius
// passing through the three face vertices, on the side the face normal points
// to. ok is false when the circumradius of the face exceeds the ball radius,
// in which case no such sphere exists.
func computeBallCenter(f meshFace, radius float64) (mgl64.Vec3, bool) {
	ac := f[2].Pos.Sub(f[0].Pos)
	ab := f[1].Pos.Sub(f[0].Pos)
	abXac := ab.Cross(ac)
	toCircumCenter := abXac.Cross(ab).Mul(ac.Dot(ac)).
		Add(ac.Cross(abXac).Mul(ab.Dot(ab))).
		Mul(1 / (2 * abXac.Dot(abXac)))

	heightSquared := radius*radius - toCircumCenter.Dot(toCircumCenter)
	if heightSquared < 0 {
		return mgl64.Vec3{}, false
	}

	circumCenter := f[0].Pos.Add(toCircumCenter)
	return circumCenter.Add(f.normal().Mul(math.Sqrt(heightSquared))), true
}

// ballIsEmpty reports whether none of the candidate points lies strictly
// inside the ball, up to Epsilon.
func ballIsEmpty(center mgl64.Vec3, points []*MeshPoint, radius float64) bool {
	for _, p := range points {
		if p.Pos.Sub(center).LenSqr() < radius*radius-Epsilon {
			return false
		}
	}
	return true
}

// findSeedTriangle scans the grid cells in storage order for a triangle of
// unused points whose tangent ball is empty. The face normal must agree with
// the average normal of the candidate's cell, which fixes the orientation of
// the whole reconstruction. On success the three points are marked used.
//
// The unused restriction makes reseeding after a drained front pick up the
// next untouched component; on a fresh grid nothing is used and the scan is
// unrestricted.
func findSeedTriangle(grid *Grid, radius float64) (meshFace, mgl64.Vec3, bool) {
	for _, cell := range grid.cells {
		var sum mgl64.Vec3
		for _, p := range cell {
			sum = sum.Add(p.Normal)
		}
		avgNormal := sum.Normalize()

		for _, p1 := range cell {
			if p1.Used {
				continue
			}

			neighborhood := grid.SphericalNeighborhood(p1.Pos, []mgl64.Vec3{p1.Pos})
			sort.SliceStable(neighborhood, func(i, j int) bool {
				return neighborhood[i].Pos.Sub(p1.Pos).LenSqr() < neighborhood[j].Pos.Sub(p1.Pos).LenSqr()
			})

			for _, p2 := range neighborhood {
				if p2.Used {
					continue
				}
				for _, p3 := range neighborhood {
					if p3 == p2 || p3.Used {
						continue
					}

					f := meshFace{p1, p2, p3}
					if f.normal().Dot(avgNormal) < 0 {
						continue
					}

					center, ok := computeBallCenter(f, radius)
					if !ok || !ballIsEmpty(center, neighborhood, radius) {
						continue
					}

					p1.Used = true
					p2.Used = true
					p3.Used = true
					return f, center, true
				}
			}
		}
	}

	return meshFace{}, mgl64.Vec3{}, false
}

// ballPivot rotates the ball of edge e around the edge axis, keeping it
// tangent to both endpoints, and returns the first point it touches together
// with the ball center at the moment of contact. ok is false when no
// neighborhood point survives the filters, or when the winning ball turns out
// not to be empty; the caller then marks the edge boundary.
func ballPivot(e *meshEdge, grid *Grid, radius float64) (*MeshPoint, mgl64.Vec3, bool) {
	m := e.a.Pos.Add(e.b.Pos).Mul(0.5)
	oldCenterVec := e.center.Sub(m).Normalize()
	neighborhood := grid.SphericalNeighborhood(m, []mgl64.Vec3{e.a.Pos, e.b.Pos, e.opposite.Pos})

	smallestAngle := math.MaxFloat64
	var pointWithSmallestAngle *MeshPoint
	var centerOfSmallest mgl64.Vec3

candidates:
	for _, p := range neighborhood {
		f := meshFace{e.b, e.a, p}
		newFaceNormal := f.normal()

		// not in the paper: the candidate's stored normal must point into
		// the same half-space as the new face
		if newFaceNormal.Dot(p.Normal) < 0 {
			continue
		}

		c, ok := computeBallCenter(f, radius)
		if !ok {
			continue
		}

		// not in the paper: the new ball must sit above the new triangle
		newCenterVec := c.Sub(m).Normalize()
		if newCenterVec.Dot(newFaceNormal) < 0 {
			continue
		}

		// not in the paper: a candidate already joined to an edge endpoint
		// by an inner edge would create a degenerate fin
		for _, ee := range p.edges {
			other := ee.b
			if ee.a != p {
				other = ee.a
			}
			if ee.status == edgeInner && (other == e.a || other == e.b) {
				continue candidates
			}
		}

		// rotation angle from the old center, measured about the edge axis;
		// the sign test folds the direction of rotation into [0, 2pi)
		angle := math.Acos(mgl64.Clamp(oldCenterVec.Dot(newCenterVec), -1, 1))
		if newCenterVec.Cross(oldCenterVec).Dot(e.a.Pos.Sub(e.b.Pos)) < 0 {
			angle += math.Pi
		}

		if angle < smallestAngle {
			smallestAngle = angle
			pointWithSmallestAngle = p
			centerOfSmallest = c
		}
	}

	if smallestAngle != math.MaxFloat64 && ballIsEmpty(centerOfSmallest, neighborhood, radius) {
		return pointWithSmallestAngle, centerOfSmallest, true
	}
	return nil, mgl64.Vec3{}, false
}
