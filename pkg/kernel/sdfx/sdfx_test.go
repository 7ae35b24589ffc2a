package sdfx

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/chazu/quadsphere/pkg/kernel"
)

func TestSphere(t *testing.T) {
	k := New().WithCells(32)
	s := k.Sphere(10)
	mesh, err := k.ToMesh(s)
	if err != nil {
		t.Fatalf("ToMesh failed: %v", err)
	}
	if mesh.IsEmpty() {
		t.Fatal("mesh is empty")
	}
	triCount := mesh.TriangleCount()
	if triCount == 0 {
		t.Fatal("expected non-zero triangle count")
	}
	// Verify vertex and index array sizes are consistent.
	if len(mesh.Vertices) != len(mesh.Normals) {
		t.Fatalf("vertices length %d != normals length %d", len(mesh.Vertices), len(mesh.Normals))
	}
	if len(mesh.Indices) != triCount*3 {
		t.Fatalf("indices length %d != triCount*3 %d", len(mesh.Indices), triCount*3)
	}
	// Marching cubes vertices sit close to the analytic surface.
	maxDev, _ := kernel.Deviation(s, mesh)
	if maxDev > 1.0 {
		t.Errorf("marching cubes deviation %f, expected under one cell", maxDev)
	}
	t.Logf("sphere triangle count: %d", triCount)
}

func TestSphereDistance(t *testing.T) {
	k := New()
	s := k.Sphere(5)

	tests := []struct {
		name string
		p    [3]float64
		want float64
	}{
		{"centre", [3]float64{0, 0, 0}, -5},
		{"surface", [3]float64{0, 5, 0}, 0},
		{"outside", [3]float64{0, 0, 8}, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := s.Distance(tt.p); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Distance(%v) = %f, want %f", tt.p, got, tt.want)
			}
		})
	}
}

func TestTranslate(t *testing.T) {
	k := New()
	translated := k.Translate(k.Sphere(5), 100, 200, 300)

	min, max := translated.BoundingBox()

	const tol = 0.5
	expectMin := [3]float64{95, 195, 295}
	expectMax := [3]float64{105, 205, 305}

	for i := 0; i < 3; i++ {
		if math.Abs(min[i]-expectMin[i]) > tol {
			t.Errorf("min[%d] = %f, expected ~%f", i, min[i], expectMin[i])
		}
		if math.Abs(max[i]-expectMax[i]) > tol {
			t.Errorf("max[%d] = %f, expected ~%f", i, max[i], expectMax[i])
		}
	}
	if d := translated.Distance([3]float64{100, 200, 305}); math.Abs(d) > 1e-9 {
		t.Errorf("surface distance = %f, want 0", d)
	}
}

func TestBoundingBox(t *testing.T) {
	k := New()
	min, max := k.Sphere(12.5).BoundingBox()

	const tol = 0.01
	for i := 0; i < 3; i++ {
		if math.Abs(min[i]+12.5) > tol {
			t.Errorf("min[%d] = %f, expected -12.5", i, min[i])
		}
		if math.Abs(max[i]-12.5) > tol {
			t.Errorf("max[%d] = %f, expected 12.5", i, max[i])
		}
	}
}

func TestScale(t *testing.T) {
	k := New()
	scaled := k.Scale(k.Sphere(2), 3)
	if d := scaled.Distance([3]float64{6, 0, 0}); math.Abs(d) > 1e-9 {
		t.Errorf("scaled surface distance = %f, want 0", d)
	}
	_, max := scaled.BoundingBox()
	if math.Abs(max[0]-6) > 0.01 {
		t.Errorf("scaled max x = %f, expected 6", max[0])
	}
}

func TestRotate(t *testing.T) {
	k := New()
	// An off-centre sphere rotated 90 degrees around Z moves from +X to +Y.
	s := k.Translate(k.Sphere(1), 10, 0, 0)
	rotated := k.Rotate(s, 0, 0, 90)

	if d := rotated.Distance([3]float64{0, 10, 0}); math.Abs(d+1) > 1e-6 {
		t.Errorf("distance at new centre = %f, expected -1", d)
	}
	if d := rotated.Distance([3]float64{10, 0, 0}); d < 1 {
		t.Errorf("distance at old centre = %f, expected far outside", d)
	}
}

func TestSaveSTL(t *testing.T) {
	k := New()
	m := &kernel.Mesh{
		Vertices: []float32{0, 0, 0, 1, 0, 0, 1, 1, 0, 0, 1, 0},
		Indices:  []uint32{0, 1, 2, 0, 2, 3},
	}
	path := filepath.Join(t.TempDir(), "quad.stl")
	if err := k.SaveSTL(path, m); err != nil {
		t.Fatalf("SaveSTL failed: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	// Binary STL: 80 byte header, 4 byte count, 50 bytes per triangle.
	if want := int64(84 + 50*m.TriangleCount()); info.Size() != want {
		t.Errorf("file size = %d, want %d", info.Size(), want)
	}
}

func TestSaveSTLRejectsBadMesh(t *testing.T) {
	k := New()
	m := &kernel.Mesh{
		Vertices: []float32{0, 0, 0, 1, 0, 0, 1, 1, 0},
		Indices:  []uint32{0, 1, 7},
	}
	path := filepath.Join(t.TempDir(), "bad.stl")
	err := k.SaveSTL(path, m)
	if err == nil || !strings.Contains(err.Error(), "out of range") {
		t.Fatalf("SaveSTL = %v, want out of range error", err)
	}
	if _, statErr := os.Stat(path); !os.IsNotExist(statErr) {
		t.Error("bad mesh should not create a file")
	}
}
