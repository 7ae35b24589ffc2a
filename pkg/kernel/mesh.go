package kernel

import "fmt"

// Mesh is a triangle mesh suitable for rendering.
// All arrays are flat: vertices has 3 floats per vertex (x,y,z),
// normals has 3 floats per vertex, uvs has 2 floats per vertex,
// indices has 3 uint32s per triangle.
type Mesh struct {
	Vertices []float32 `json:"vertices"`      // [x0,y0,z0, x1,y1,z1, ...]
	Normals  []float32 `json:"normals"`       // [nx0,ny0,nz0, ...]
	UVs      []float32 `json:"uvs,omitempty"` // [u0,v0, u1,v1, ...]
	Indices  []uint32  `json:"indices"`       // [i0,i1,i2, ...] triangles
	PartName string    `json:"partName"`      // which sphere face this came from, empty for the whole sphere
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices) / 3
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// IsEmpty returns true if the mesh has no geometry.
func (m *Mesh) IsEmpty() bool {
	return len(m.Vertices) == 0
}

// Validate checks that the flat arrays agree with each other and that every
// index refers to a vertex.
func (m *Mesh) Validate() error {
	if len(m.Vertices)%3 != 0 {
		return fmt.Errorf("mesh: %d vertex floats is not a multiple of 3", len(m.Vertices))
	}
	if len(m.Indices)%3 != 0 {
		return fmt.Errorf("mesh: %d indices is not a multiple of 3", len(m.Indices))
	}
	if len(m.Normals) != 0 && len(m.Normals) != len(m.Vertices) {
		return fmt.Errorf("mesh: %d normal floats for %d vertex floats", len(m.Normals), len(m.Vertices))
	}
	if len(m.UVs) != 0 && len(m.UVs) != m.VertexCount()*2 {
		return fmt.Errorf("mesh: %d uv floats for %d vertices", len(m.UVs), m.VertexCount())
	}
	n := uint32(m.VertexCount())
	for i, idx := range m.Indices {
		if idx >= n {
			return fmt.Errorf("mesh: index %d at position %d out of range (%d vertices)", idx, i, n)
		}
	}
	return nil
}
