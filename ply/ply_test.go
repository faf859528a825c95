package ply

import (
	"bytes"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/go-cmp/cmp"

	"github.com/akmonengine/ballpivot"
)

const sampleCloud = `ply
format ascii 1.0
comment generated by a scanner
element vertex 2
property float x
property float y
property float z
property float confidence
property float nx
property float ny
property float nz
element face 0
property list uchar int vertex_indices
end_header
0 0 0 0.9 0 0 1
1.5 -2 0.25 0.8 0 1 0
`

func TestRead(t *testing.T) {
	got, err := Read(strings.NewReader(sampleCloud))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}

	want := []ballpivot.Point{
		{Pos: mgl64.Vec3{0, 0, 0}, Normal: mgl64.Vec3{0, 0, 1}},
		{Pos: mgl64.Vec3{1.5, -2, 0.25}, Normal: mgl64.Vec3{0, 1, 0}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("points mismatch (-want +got):\n%s", diff)
	}
}

func TestReadSkipsForeignElements(t *testing.T) {
	input := `ply
format ascii 1.0
element edge 2
property int vertex1
property int vertex2
element vertex 1
property float x
property float y
property float z
property float nx
property float ny
property float nz
end_header
0 1
1 2
4 5 6 0 0 1
`
	got, err := Read(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(got) != 1 || got[0].Pos != (mgl64.Vec3{4, 5, 6}) {
		t.Errorf("got %v, want the single vertex at (4,5,6)", got)
	}
}

func TestReadErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"missing magic", "plx\nformat ascii 1.0\nend_header\n"},
		{"binary format", "ply\nformat binary_little_endian 1.0\nend_header\n"},
		{"no format line", "ply\nelement vertex 0\nend_header\n"},
		{"missing normals", "ply\nformat ascii 1.0\nelement vertex 1\nproperty float x\nproperty float y\nproperty float z\nend_header\n0 0 0\n"},
		{"truncated vertex rows", "ply\nformat ascii 1.0\nelement vertex 2\nproperty float x\nproperty float y\nproperty float z\nproperty float nx\nproperty float ny\nproperty float nz\nend_header\n0 0 0 0 0 1\n"},
		{"short vertex row", "ply\nformat ascii 1.0\nelement vertex 1\nproperty float x\nproperty float y\nproperty float z\nproperty float nx\nproperty float ny\nproperty float nz\nend_header\n0 0 0\n"},
		{"bad float", "ply\nformat ascii 1.0\nelement vertex 1\nproperty float x\nproperty float y\nproperty float z\nproperty float nx\nproperty float ny\nproperty float nz\nend_header\n0 zero 0 0 0 1\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Read(strings.NewReader(tt.input)); err == nil {
				t.Error("Read succeeded, want error")
			}
		})
	}
}

func TestWrite(t *testing.T) {
	points := []ballpivot.Point{
		{Pos: mgl64.Vec3{0, 0, 0}},
		{Pos: mgl64.Vec3{1, 0, 0}},
		{Pos: mgl64.Vec3{0, 1, 0.5}},
	}
	triangles := []ballpivot.Triangle{
		{{0, 0, 0}, {1, 0, 0}, {0, 1, 0.5}},
	}

	var buf bytes.Buffer
	if err := Write(&buf, points, triangles); err != nil {
		t.Fatalf("Write: %v", err)
	}

	want := `ply
format ascii 1.0
element vertex 3
property float x
property float y
property float z
element face 1
property list uchar int vertex_indices
end_header
0 0 0
1 0 0
0 1 0.5
3 0 1 2
`
	if diff := cmp.Diff(want, buf.String()); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestWriteDuplicatePositionsUseHighestIndex(t *testing.T) {
	dup := mgl64.Vec3{0, 0, 0}
	points := []ballpivot.Point{
		{Pos: dup},
		{Pos: mgl64.Vec3{1, 0, 0}},
		{Pos: dup},
	}
	triangles := []ballpivot.Triangle{
		{dup, {1, 0, 0}, dup},
	}

	var buf bytes.Buffer
	if err := Write(&buf, points, triangles); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if !strings.HasSuffix(buf.String(), "3 2 1 2\n") {
		t.Errorf("face row should reference the last duplicate, got:\n%s", buf.String())
	}
}

func TestWriteUnknownVertex(t *testing.T) {
	points := []ballpivot.Point{{Pos: mgl64.Vec3{0, 0, 0}}}
	triangles := []ballpivot.Triangle{
		{{0, 0, 0}, {9, 9, 9}, {0, 0, 0}},
	}

	if err := Write(&bytes.Buffer{}, points, triangles); err == nil {
		t.Error("Write succeeded with a vertex missing from the cloud, want error")
	}
}
