package ballpivot

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// CellKey addresses one cell of the grid by its integer 3D coordinates.
type CellKey struct {
	X, Y, Z int
}

// Cell holds the mesh points whose position falls inside one voxel. Points
// are allocated individually so their addresses stay stable for the lifetime
// of the grid; edges keep references into them.
type Cell []*MeshPoint

// Grid is a bounded uniform voxel grid over the input cloud, used for the
// spherical neighborhood queries of the seed search and the pivot step.
//
// The cell edge length is 2*radius: any point the pivoting ball can touch
// from an edge midpoint lies within 2*radius of it, so the 3x3x3 block of
// cells around the query cell always covers the candidate set.
type Grid struct {
	lower    mgl64.Vec3
	upper    mgl64.Vec3
	cellSize float64
	dims     CellKey
	cells    []Cell
}

// NewGrid builds the grid for the given cloud and ball radius. The grid owns
// one MeshPoint per input point; the input slice itself is not retained.
func NewGrid(points []Point, radius float64) *Grid {
	g := &Grid{cellSize: radius * 2}

	g.lower = points[0].Pos
	g.upper = points[0].Pos
	for _, p := range points {
		for i := 0; i < 3; i++ {
			g.lower[i] = math.Min(g.lower[i], p.Pos[i])
			g.upper[i] = math.Max(g.upper[i], p.Pos[i])
		}
	}

	g.dims = CellKey{
		X: max(int(math.Ceil((g.upper[0]-g.lower[0])/g.cellSize)), 1),
		Y: max(int(math.Ceil((g.upper[1]-g.lower[1])/g.cellSize)), 1),
		Z: max(int(math.Ceil((g.upper[2]-g.lower[2])/g.cellSize)), 1),
	}

	g.cells = make([]Cell, g.dims.X*g.dims.Y*g.dims.Z)
	for _, p := range points {
		c := g.cell(g.cellIndex(p.Pos))
		*c = append(*c, &MeshPoint{Pos: p.Pos, Normal: p.Normal})
	}

	return g
}

// cellIndex maps a world position to cell coordinates, clamped to the valid
// range so queries just outside the bounding box still resolve.
func (g *Grid) cellIndex(pos mgl64.Vec3) CellKey {
	rel := pos.Sub(g.lower).Mul(1 / g.cellSize)
	return CellKey{
		X: clampInt(int(rel.X()), 0, g.dims.X-1),
		Y: clampInt(int(rel.Y()), 0, g.dims.Y-1),
		Z: clampInt(int(rel.Z()), 0, g.dims.Z-1),
	}
}

// cell returns the cell at the given coordinates. The key must be in range.
func (g *Grid) cell(index CellKey) *Cell {
	return &g.cells[index.Z*g.dims.X*g.dims.Y+index.Y*g.dims.X+index.X]
}

// SphericalNeighborhood returns every mesh point whose squared distance to
// center is strictly less than (2*radius)^2, excluding points whose position
// equals one of the ignore entries. The returned pointers stay valid for the
// lifetime of the grid. Iteration order is deterministic: cells in x, y, z
// offset order, points in insertion order within a cell.
func (g *Grid) SphericalNeighborhood(center mgl64.Vec3, ignore []mgl64.Vec3) []*MeshPoint {
	centerIndex := g.cellIndex(center)
	result := make([]*MeshPoint, 0, len(*g.cell(centerIndex))*27)

	for xOff := -1; xOff <= 1; xOff++ {
		for yOff := -1; yOff <= 1; yOff++ {
			for zOff := -1; zOff <= 1; zOff++ {
				index := CellKey{centerIndex.X + xOff, centerIndex.Y + yOff, centerIndex.Z + zOff}
				if index.X < 0 || index.X >= g.dims.X {
					continue
				}
				if index.Y < 0 || index.Y >= g.dims.Y {
					continue
				}
				if index.Z < 0 || index.Z >= g.dims.Z {
					continue
				}
				for _, p := range *g.cell(index) {
					if p.Pos.Sub(center).LenSqr() >= g.cellSize*g.cellSize {
						continue
					}
					if containsPos(ignore, p.Pos) {
						continue
					}
					result = append(result, p)
				}
			}
		}
	}

	return result
}

// containsPos reports whether pos compares exactly equal to one of the
// entries. The ignore sets are at most three positions, a linear scan wins
// over any map here.
func containsPos(ignore []mgl64.Vec3, pos mgl64.Vec3) bool {
	for _, v := range ignore {
		if v == pos {
			return true
		}
	}
	return false
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
