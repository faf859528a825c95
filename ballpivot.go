// Package ballpivot implements the Ball-Pivoting Algorithm (BPA) for surface
// reconstruction from oriented point clouds.
//
// Given points with outward unit normals and a ball radius r, the algorithm
// rolls a ball of radius r over the cloud. A seed triangle whose tangent ball
// contains no other point bootstraps an advancing front of active edges; the
// ball then pivots around each front edge, staying tangent to the edge's two
// endpoints, until it touches a third point. Every successful pivot emits one
// triangle and advances the front. Edges the ball cannot pivot past become
// boundary edges.
//
// The output is a flat triangle list whose vertex positions are taken verbatim
// from the input; building an indexed mesh from it is the caller's concern.
//
// References:
//   - Bernardini, Mittleman, Rushmeier, Silva, Taubin: "The Ball-Pivoting
//     Algorithm for Surface Reconstruction" (1999)
package ballpivot

import (
	"errors"

	"github.com/go-gl/mathgl/mgl64"
)

// Point is one input sample: a position and its outward unit normal.
type Point struct {
	Pos    mgl64.Vec3
	Normal mgl64.Vec3
}

// Triangle is one face of the reconstructed mesh.
type Triangle [3]mgl64.Vec3

// Normal returns the unit face normal of the triangle.
func (t Triangle) Normal() mgl64.Vec3 {
	return t[0].Sub(t[1]).Cross(t[0].Sub(t[2])).Normalize()
}

// ErrNoSeed reports that no triple of input points admits an empty tangent
// ball of the requested radius, usually because the radius is too small for
// the sampling density.
var ErrNoSeed = errors.New("ballpivot: no seed triangle found")

// Reconstruct rolls a ball of the given radius over the point cloud and
// returns the resulting triangle list.
//
// Normals are assumed to be unit length and outward facing; they orient the
// reconstruction but are never re-estimated. The radius must be positive and
// is expressed in the same units as the positions. When the cloud has several
// connected components more than 2*radius apart, each component is seeded and
// meshed in turn.
//
// Reconstruct returns ErrNoSeed, with an empty triangle list, when not even
// one seed triangle exists. It is deterministic: identical inputs produce an
// identical triangle list in identical order.
func Reconstruct(points []Point, radius float64) ([]Triangle, error) {
	if len(points) == 0 {
		return nil, ErrNoSeed
	}

	grid := NewGrid(points, radius)

	var triangles []Triangle
	var f front

	for {
		seed, ballCenter, ok := findSeedTriangle(grid, radius)
		if !ok {
			if len(triangles) == 0 {
				return nil, ErrNoSeed
			}
			return triangles, nil
		}

		triangles = append(triangles, seed.triangle())
		f.spawn(seed, ballCenter)

		for {
			e, ok := f.activeEdge()
			if !ok {
				break
			}

			p, center, ok := ballPivot(e, grid, radius)
			if ok && (!p.Used || onFront(p)) {
				triangles = append(triangles, Triangle{e.a.Pos, p.Pos, e.b.Pos})
				eik, ekj := f.join(e, p, center)
				if rev := findReverseEdgeOnFront(eik); rev != nil {
					glue(eik, rev)
				}
				if rev := findReverseEdgeOnFront(ekj); rev != nil {
					glue(ekj, rev)
				}
			} else {
				e.status = edgeBoundary
			}
		}
	}
}
