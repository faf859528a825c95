// Package ply reads and writes the subset of the ASCII PLY format exchanged
// by the reconstruction pipeline: oriented point clouds on the way in,
// position-indexed triangle meshes on the way out.
package ply

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/akmonengine/ballpivot"
)

// vertexProps are the vertex element properties a point cloud must carry, in
// aggregation order: a point is complete once its nz value is consumed.
var vertexProps = [6]string{"x", "y", "z", "nx", "ny", "nz"}

type element struct {
	name  string
	count int
	props []string
}

// Read parses an ASCII PLY stream and returns one Point per row of its vertex
// element. The vertex element must carry x, y, z, nx, ny and nz properties;
// their order is taken from the header and extra properties are skipped.
// Elements other than vertex are skipped by row count. Binary PLY streams are
// rejected.
func Read(r io.Reader) ([]ballpivot.Point, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	line, err := nextLine(sc)
	if err != nil {
		return nil, err
	}
	if line != "ply" {
		return nil, fmt.Errorf("ply: missing magic line, got %q", line)
	}

	var elements []element
	ascii := false

header:
	for {
		line, err := nextLine(sc)
		if err != nil {
			return nil, err
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "comment", "obj_info":

		case "format":
			if len(fields) < 2 || fields[1] != "ascii" {
				return nil, fmt.Errorf("ply: unsupported format %q, want ascii", line)
			}
			ascii = true

		case "element":
			if len(fields) != 3 {
				return nil, fmt.Errorf("ply: malformed element line %q", line)
			}
			count, err := strconv.Atoi(fields[2])
			if err != nil {
				return nil, fmt.Errorf("ply: element count in %q: %w", line, err)
			}
			elements = append(elements, element{name: fields[1], count: count})

		case "property":
			if len(elements) == 0 {
				return nil, fmt.Errorf("ply: property before any element: %q", line)
			}
			last := &elements[len(elements)-1]
			last.props = append(last.props, fields[len(fields)-1])

		case "end_header":
			break header

		default:
			return nil, fmt.Errorf("ply: unexpected header line %q", line)
		}
	}

	if !ascii {
		return nil, fmt.Errorf("ply: header carries no format line")
	}

	var points []ballpivot.Point
	for _, el := range elements {
		if el.name != "vertex" {
			for i := 0; i < el.count; i++ {
				if _, err := nextLine(sc); err != nil {
					return nil, fmt.Errorf("ply: element %s: %w", el.name, err)
				}
			}
			continue
		}

		cols, err := vertexColumns(el.props)
		if err != nil {
			return nil, err
		}

		for i := 0; i < el.count; i++ {
			line, err := nextLine(sc)
			if err != nil {
				return nil, fmt.Errorf("ply: vertex %d: %w", i, err)
			}
			fields := strings.Fields(line)

			var v [6]float64
			for j, col := range cols {
				if col >= len(fields) {
					return nil, fmt.Errorf("ply: vertex %d has %d values, want at least %d", i, len(fields), col+1)
				}
				v[j], err = strconv.ParseFloat(fields[col], 64)
				if err != nil {
					return nil, fmt.Errorf("ply: vertex %d, property %s: %w", i, vertexProps[j], err)
				}
			}

			points = append(points, ballpivot.Point{
				Pos:    mgl64.Vec3{v[0], v[1], v[2]},
				Normal: mgl64.Vec3{v[3], v[4], v[5]},
			})
		}
	}

	return points, nil
}

// ReadFile reads an oriented point cloud from the file at path.
func ReadFile(path string) ([]ballpivot.Point, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Read(f)
}

// Write emits an ASCII PLY mesh: every input point as a vertex (position
// only), then one face row per triangle. Triangle vertices are mapped to
// vertex indices by exact position equality; when the cloud carries duplicate
// positions, the highest index wins.
func Write(w io.Writer, points []ballpivot.Point, triangles []ballpivot.Triangle) error {
	index := make(map[mgl64.Vec3]int, len(points))
	for i, p := range points {
		index[p.Pos] = i
	}

	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, "ply")
	fmt.Fprintln(bw, "format ascii 1.0")
	fmt.Fprintf(bw, "element vertex %d\n", len(points))
	fmt.Fprintln(bw, "property float x")
	fmt.Fprintln(bw, "property float y")
	fmt.Fprintln(bw, "property float z")
	fmt.Fprintf(bw, "element face %d\n", len(triangles))
	fmt.Fprintln(bw, "property list uchar int vertex_indices")
	fmt.Fprintln(bw, "end_header")

	for _, p := range points {
		fmt.Fprintf(bw, "%g %g %g\n", p.Pos.X(), p.Pos.Y(), p.Pos.Z())
	}
	for _, t := range triangles {
		i0, ok0 := index[t[0]]
		i1, ok1 := index[t[1]]
		i2, ok2 := index[t[2]]
		if !ok0 || !ok1 || !ok2 {
			return fmt.Errorf("ply: triangle %v has a vertex not present in the point cloud", t)
		}
		fmt.Fprintf(bw, "3 %d %d %d\n", i0, i1, i2)
	}

	return bw.Flush()
}

// WriteFile writes the mesh to the file at path, creating or truncating it.
func WriteFile(path string, points []ballpivot.Point, triangles []ballpivot.Triangle) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Write(f, points, triangles); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// vertexColumns resolves the column position of each required vertex property.
func vertexColumns(props []string) ([6]int, error) {
	var cols [6]int
	for i, name := range vertexProps {
		cols[i] = -1
		for j, p := range props {
			if p == name {
				cols[i] = j
				break
			}
		}
		if cols[i] == -1 {
			return cols, fmt.Errorf("ply: vertex element is missing property %q", name)
		}
	}
	return cols, nil
}

// nextLine returns the next line of the stream, trimmed of surrounding
// whitespace, or an error at end of stream.
func nextLine(sc *bufio.Scanner) (string, error) {
	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return "", err
		}
		return "", io.ErrUnexpectedEOF
	}
	return strings.TrimSpace(sc.Text()), nil
}
