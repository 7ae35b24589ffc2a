// Package kernel defines the abstract geometry kernel used to measure and
// export quad sphere meshes. The sdfx implementation provides analytic
// reference solids and file output behind this interface.
package kernel

import "math"

// Solid is an opaque handle to a geometry kernel solid.
// Implementations wrap their internal representation.
type Solid interface {
	// BoundingBox returns the axis-aligned bounding box.
	BoundingBox() (min, max [3]float64)
	// Distance returns the signed distance from p to the surface,
	// negative inside.
	Distance(p [3]float64) float64
}

// Kernel is the abstract geometry kernel interface.
type Kernel interface {
	// Primitives
	Sphere(radius float64) Solid

	// Transforms
	Translate(s Solid, x, y, z float64) Solid
	Rotate(s Solid, x, y, z float64) Solid // Euler angles in degrees
	Scale(s Solid, k float64) Solid        // uniform

	// Mesh output
	ToMesh(s Solid) (*Mesh, error)
	SaveSTL(path string, m *Mesh) error
}

// Deviation reports how far the vertices of m stray from the surface of s:
// the largest and the mean absolute signed distance. An empty mesh reports
// zero for both.
func Deviation(s Solid, m *Mesh) (maxDev, meanDev float64) {
	n := m.VertexCount()
	if n == 0 {
		return 0, 0
	}
	sum := 0.0
	for i := 0; i < n; i++ {
		p := [3]float64{
			float64(m.Vertices[i*3]),
			float64(m.Vertices[i*3+1]),
			float64(m.Vertices[i*3+2]),
		}
		d := math.Abs(s.Distance(p))
		maxDev = math.Max(maxDev, d)
		sum += d
	}
	return maxDev, sum / float64(n)
}
