package ballpivot

import "github.com/go-gl/mathgl/mgl64"

// edgeStatus tracks the lifecycle of a mesh edge.
type edgeStatus uint8

const (
	// edgeActive: the edge is on the front and eligible to pivot.
	edgeActive edgeStatus = iota
	// edgeInner: both incident triangles have been emitted.
	edgeInner
	// edgeBoundary: pivoting found no target point. Terminal.
	edgeBoundary
)

// MeshPoint is the grid-owned representation of one input point. Used flips
// to true once the point appears as a vertex of an emitted triangle and never
// resets. The edges slice holds non-owning references to every edge the point
// is an endpoint of.
type MeshPoint struct {
	Pos    mgl64.Vec3
	Normal mgl64.Vec3
	Used   bool
	edges  []*meshEdge
}

// meshEdge is a directed edge (a, b) of the reconstruction. opposite is the
// third vertex of the triangle whose emission created the edge and center the
// ball center of that triangle; the pivot step needs both. prev and next
// thread the edge into the doubly-linked loop of the front it belongs to.
type meshEdge struct {
	a, b     *MeshPoint
	opposite *MeshPoint
	center   mgl64.Vec3
	prev     *meshEdge
	next     *meshEdge
	status   edgeStatus
}

// meshFace is a candidate triangle during seed search and pivoting. It is not
// persisted; emission copies the three positions into a Triangle.
type meshFace [3]*MeshPoint

// normal returns the unit normal of the face. The operand order matches the
// one computeBallCenter picks its hemisphere with.
func (f meshFace) normal() mgl64.Vec3 {
	return f[0].Pos.Sub(f[1].Pos).Cross(f[0].Pos.Sub(f[2].Pos)).Normalize()
}

func (f meshFace) triangle() Triangle {
	return Triangle{f[0].Pos, f[1].Pos, f[2].Pos}
}

// front is the work list of the advancing boundary. It may contain edges that
// have since gone inner or boundary; activeEdge discards those lazily. The
// live front is exactly the set of edges still marked active, organized as
// disjoint cyclic loops through prev/next.
type front struct {
	edges []*meshEdge
}

// push appends newly created edges to the work list.
func (f *front) push(edges ...*meshEdge) {
	f.edges = append(f.edges, edges...)
}

// activeEdge pops stale entries off the tail of the work list and returns the
// first active edge it finds, keeping it in place. LIFO order is part of the
// algorithm's contract: it decides which edges end up as boundary.
func (f *front) activeEdge() (*meshEdge, bool) {
	for len(f.edges) > 0 {
		e := f.edges[len(f.edges)-1]
		if e.status == edgeActive {
			return e, true
		}
		f.edges = f.edges[:len(f.edges)-1]
	}
	return nil, false
}

// spawn seeds the front with the three edges of a seed triangle, linked into
// one cycle. All three share the seed's ball center and carry the remaining
// seed vertex as opposite.
func (f *front) spawn(seed meshFace, ballCenter mgl64.Vec3) {
	e0 := &meshEdge{a: seed[0], b: seed[1], opposite: seed[2], center: ballCenter}
	e1 := &meshEdge{a: seed[1], b: seed[2], opposite: seed[0], center: ballCenter}
	e2 := &meshEdge{a: seed[2], b: seed[0], opposite: seed[1], center: ballCenter}

	e0.prev, e0.next = e2, e1
	e1.prev, e1.next = e0, e2
	e2.prev, e2.next = e1, e0

	seed[0].edges = append(seed[0].edges, e0, e2)
	seed[1].edges = append(seed[1].edges, e0, e1)
	seed[2].edges = append(seed[2].edges, e1, e2)

	f.push(e0, e1, e2)
}

// join records that pivoting on eij reached p with ball center c: two new
// active edges (eij.a, p) and (p, eij.b) replace eij in its front loop, and
// eij goes inner. The inner edge stays in the work list; activeEdge drops it
// later.
func (f *front) join(eij *meshEdge, p *MeshPoint, c mgl64.Vec3) (eik, ekj *meshEdge) {
	eik = &meshEdge{a: eij.a, b: p, opposite: eij.b, center: c}
	ekj = &meshEdge{a: p, b: eij.b, opposite: eij.a, center: c}

	eik.next = ekj
	eik.prev = eij.prev
	eij.prev.next = eik
	eij.a.edges = append(eij.a.edges, eik)

	ekj.prev = eik
	ekj.next = eij.next
	eij.next.prev = ekj
	eij.b.edges = append(eij.b.edges, ekj)

	p.Used = true
	p.edges = append(p.edges, eik, ekj)

	f.push(eik, ekj)
	eij.status = edgeInner

	return eik, ekj
}

// glue merges an edge with its mirror (same endpoints, opposite direction)
// when both sit on the front. Both go inner; the surrounding loops are
// re-linked depending on how a and b touch each other.
func glue(a, b *meshEdge) {
	switch {
	case a.next == b && a.prev == b && b.next == a && b.prev == a:
		// isolated 2-cycle, nothing left to bridge

	case a.next == b && b.prev == a:
		a.prev.next = b.next
		b.next.prev = a.prev

	case a.prev == b && b.next == a:
		a.next.prev = b.prev
		b.prev.next = a.next

	default:
		a.prev.next = b.next
		b.next.prev = a.prev
		a.next.prev = b.prev
		b.prev.next = a.next
	}

	a.status = edgeInner
	b.status = edgeInner
}

// findReverseEdgeOnFront returns the edge running opposite to the given one,
// if any: an incident edge of edge.a whose own a endpoint is edge.b.
func findReverseEdgeOnFront(edge *meshEdge) *meshEdge {
	for _, e := range edge.a.edges {
		if e.a == edge.b {
			return e
		}
	}
	return nil
}

// onFront reports whether the point has at least one active incident edge.
func onFront(p *MeshPoint) bool {
	for _, e := range p.edges {
		if e.status == edgeActive {
			return true
		}
	}
	return false
}
