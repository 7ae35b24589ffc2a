// Package tessellate turns a built quad sphere into renderable triangle
// meshes: world-space positions, smooth normals and atlas UVs, with only
// the vertices the current leaves reference.
package tessellate

import (
	"errors"
	"fmt"

	"github.com/alitto/pond/v2"
	"github.com/chazu/quadsphere/pkg/kernel"
	"github.com/chazu/quadsphere/pkg/sphere"
	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// ErrNoReference is returned by Reference when the sphere's scale is not a
// single positive factor and so no longer describes a sphere.
var ErrNoReference = errors.New("tessellate: scale has no reference sphere")

// ErrNilSphere is returned when there is no sphere to tessellate.
var ErrNilSphere = errors.New("tessellate: nil sphere")

// Tessellate produces one mesh for the whole sphere. The weld map may hold
// vertices orphaned by merges; they are dropped and the rest renumbered in
// order of first use. A welded vertex on a seam is emitted once per face
// that uses it, each copy with that face's UV and the shared smooth normal.
func Tessellate(s *sphere.Sphere) (*kernel.Mesh, error) {
	if s == nil {
		return nil, ErrNilSphere
	}
	m, err := buildMesh(s, s.Faces())
	if err != nil {
		return nil, fmt.Errorf("tessellate: %w", err)
	}
	return m, nil
}

// Faces produces one mesh per cube face, in face order, named after the
// face. Faces are tessellated concurrently.
func Faces(s *sphere.Sphere) ([]*kernel.Mesh, error) {
	if s == nil {
		return nil, ErrNilSphere
	}
	faces := s.Faces()
	meshes := make([]*kernel.Mesh, len(faces))

	pool := pond.NewPool(len(faces))
	defer pool.StopAndWait()

	group := pool.NewGroup()
	for i, f := range faces {
		group.SubmitErr(func() error {
			m, err := buildMesh(s, []*sphere.Face{f})
			if err != nil {
				return fmt.Errorf("tessellate: %s face: %w", f.FaceType(), err)
			}
			m.PartName = f.FaceType().String()
			meshes[i] = m
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}
	return meshes, nil
}

// Reference builds the analytic solid the sphere approximates: a kernel
// sphere of the same radius put through the same scale, position and
// rotation.
func Reference(k kernel.Kernel, cfg sphere.Config) (kernel.Solid, error) {
	sc := cfg.Scale
	if sc.X != sc.Y || sc.Y != sc.Z || sc.X <= 0 {
		return nil, fmt.Errorf("%w: %v", ErrNoReference, sc)
	}
	solid := k.Sphere(cfg.Size / 2)
	if sc.X != 1 {
		solid = k.Scale(solid, sc.X)
	}
	p := cfg.Position
	if p != (v3.Vec{}) {
		solid = k.Translate(solid, p.X, p.Y, p.Z)
	}
	r := cfg.Rotation
	if r != (v3.Vec{}) {
		solid = k.Rotate(solid, r.X, r.Y, r.Z)
	}
	return solid, nil
}

// corner identifies one output vertex: a welded vertex as seen from one
// face.
type corner struct {
	weld int
	face sphere.FaceType
}

// buildMesh compacts the weld-map vertices referenced by the faces' triangles,
// moves them to world space and accumulates area-weighted normals per welded
// vertex, so shading stays smooth across seams even where UVs split.
func buildMesh(s *sphere.Sphere, faces []*sphere.Face) (*kernel.Mesh, error) {
	wm := s.WeldMap()
	n := wm.Len()

	remap := make(map[corner]uint32)
	var order []corner
	var uvs []v2.Vec
	var out []uint32
	for _, f := range faces {
		tris, faceUVs := f.Triangles(), f.TriangleUVs()
		if len(tris) != len(faceUVs) {
			return nil, fmt.Errorf("%s face: %d uvs for %d triangle corners", f.FaceType(), len(faceUVs), len(tris))
		}
		for i, idx := range tris {
			if idx < 0 || idx >= n {
				return nil, fmt.Errorf("index %d outside %d welded vertices", idx, n)
			}
			key := corner{weld: idx, face: f.FaceType()}
			j, ok := remap[key]
			if !ok {
				j = uint32(len(order))
				remap[key] = j
				order = append(order, key)
				uvs = append(uvs, faceUVs[i])
			}
			out = append(out, j)
		}
	}

	world := make(map[int]v3.Vec)
	for _, c := range order {
		if _, ok := world[c.weld]; ok {
			continue
		}
		p, err := s.World(wm.Position(c.weld))
		if err != nil {
			return nil, err
		}
		world[c.weld] = p
	}

	acc := make(map[int]v3.Vec, len(world))
	for i := 0; i+2 < len(out); i += 3 {
		a, b, c := order[out[i]].weld, order[out[i+1]].weld, order[out[i+2]].weld
		nrm := world[b].Sub(world[a]).Cross(world[c].Sub(world[a]))
		acc[a] = acc[a].Add(nrm)
		acc[b] = acc[b].Add(nrm)
		acc[c] = acc[c].Add(nrm)
	}

	m := &kernel.Mesh{
		Vertices: make([]float32, 0, len(order)*3),
		Normals:  make([]float32, 0, len(order)*3),
		UVs:      make([]float32, 0, len(order)*2),
		Indices:  out,
	}
	for j, c := range order {
		p := world[c.weld]
		m.Vertices = append(m.Vertices, float32(p.X), float32(p.Y), float32(p.Z))

		nrm := acc[c.weld]
		if l := nrm.Length(); l > 0 {
			nrm = nrm.DivScalar(l)
		}
		m.Normals = append(m.Normals, float32(nrm.X), float32(nrm.Y), float32(nrm.Z))

		uv := uvs[j]
		m.UVs = append(m.UVs, float32(uv.X), float32(uv.Y))
	}
	return m, nil
}
