// Package sphere builds a quad sphere: six cube faces, each a grid of
// quadtrees that subdivide by distance to an observer, projected onto a
// sphere and welded into one triangle mesh.
//
// A Sphere owns its faces and the weld map they share. Faces hold a
// read-only reference back to the sphere for the scale, position and
// rotation steps of the cube-to-world transform.
package sphere

import (
	"errors"
	"fmt"
	"math"

	"github.com/alitto/pond/v2"
	"github.com/chazu/quadsphere/pkg/weld"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Compile-time interface check.
var _ Transformer = (*Sphere)(nil)

// Sphere is a quad sphere and the owner of its six faces.
type Sphere struct {
	cfg      Config
	observer Observer
	weld     *weld.Map

	scale     sdf.M44
	translate sdf.M44
	rotate    sdf.M44

	faces []*Face // FaceTypes() order
}

// New validates cfg and builds all six faces. Any configuration error
// aborts the whole build; no partial sphere is returned.
func New(cfg Config, observer Observer) (*Sphere, error) {
	if observer == nil {
		return nil, ErrNilObserver
	}
	if err := cfg.Err(); err != nil {
		return nil, fmt.Errorf("sphere: invalid config: %w", err)
	}
	for _, w := range cfg.Warnings() {
		Logger().Warn("sphere config", "field", w.Field, "message", w.Message)
	}

	s := &Sphere{
		cfg:       cfg,
		observer:  observer,
		weld:      weld.New(cfg.WeldDistance()),
		scale:     sdf.Scale3d(cfg.Scale),
		translate: sdf.Translate3d(cfg.Position),
		rotate:    rotationMatrix(cfg.Rotation),
	}
	if err := s.build(); err != nil {
		return nil, err
	}
	return s, nil
}

// rotationMatrix builds Rz * Ry * Rx from Euler angles in degrees.
func rotationMatrix(deg v3.Vec) sdf.M44 {
	toRad := math.Pi / 180.0
	return sdf.RotateZ(deg.Z * toRad).
		Mul(sdf.RotateY(deg.Y * toRad)).
		Mul(sdf.RotateX(deg.X * toRad))
}

func (s *Sphere) build() error {
	types := FaceTypes()
	faces := make([]*Face, len(types))

	newFace := func(i int) error {
		f, err := NewFace(s, types[i], s.cfg.Size, s.observer, s.cfg.QuadsPerRow,
			s.cfg.StartingSubdivisions, s.cfg.SubdivisionDistances, s.weld)
		if err != nil {
			return fmt.Errorf("sphere: %s face: %w", types[i], err)
		}
		faces[i] = f
		return nil
	}

	if s.cfg.Parallel {
		pool := pond.NewPool(len(types))
		defer pool.StopAndWait()

		group := pool.NewGroup()
		for i := range types {
			group.SubmitErr(func() error { return newFace(i) })
		}
		if err := group.Wait(); err != nil {
			return err
		}
	} else {
		for i := range types {
			if err := newFace(i); err != nil {
				return err
			}
		}
	}

	s.faces = faces
	Logger().Info("sphere built",
		"size", s.cfg.Size,
		"quads_per_row", s.cfg.QuadsPerRow,
		"parallel", s.cfg.Parallel,
		"leaves", s.Leaves(),
		"vertices", s.weld.Len(),
	)
	return nil
}

// Rebuild discards all geometry and builds the faces again from the same
// configuration. A sequential rebuild with an unmoved observer reproduces
// the previous vertex numbering exactly.
func (s *Sphere) Rebuild() error {
	s.weld.Reset()
	s.faces = nil
	return s.build()
}

// Update re-runs split/merge on every face against the observer's current
// position.
func (s *Sphere) Update() error {
	for _, f := range s.faces {
		if err := f.Update(); err != nil {
			return fmt.Errorf("sphere: %w", err)
		}
	}
	Logger().Debug("sphere updated", "leaves", s.Leaves(), "vertices", s.weld.Len())
	return nil
}

// Config returns the configuration the sphere was built from.
func (s *Sphere) Config() Config { return s.cfg }

// Observer returns the sphere's position source.
func (s *Sphere) Observer() Observer { return s.observer }

// WeldMap returns the vertex map shared by all faces.
func (s *Sphere) WeldMap() *weld.Map { return s.weld }

// Radius returns the sphere radius before scaling.
func (s *Sphere) Radius() float64 { return s.cfg.Size / 2 }

// Faces returns the six faces in FaceTypes order.
func (s *Sphere) Faces() []*Face {
	out := make([]*Face, len(s.faces))
	copy(out, s.faces)
	return out
}

// Face returns the face of the given type, or nil if t is invalid.
func (s *Sphere) Face(t FaceType) *Face {
	for _, f := range s.faces {
		if f.faceType == t {
			return f
		}
	}
	return nil
}

// Triangles returns the triangle indices of all faces, faces in FaceTypes
// order.
func (s *Sphere) Triangles() []int {
	var tris []int
	for _, f := range s.faces {
		tris = append(tris, f.Triangles()...)
	}
	return tris
}

// Leaves returns the number of leaf quads on the sphere.
func (s *Sphere) Leaves() int {
	n := 0
	for _, f := range s.faces {
		n += f.Leaves()
	}
	return n
}

// ApplyScale scales a cube-space point.
func (s *Sphere) ApplyScale(p v3.Vec) v3.Vec {
	return s.scale.MulPosition(p)
}

// ApplyPosition translates a point by the sphere position.
func (s *Sphere) ApplyPosition(p v3.Vec) v3.Vec {
	return s.translate.MulPosition(p)
}

// ApplyRotation rotates a point about the world origin. It always returns
// exactly one point.
func (s *Sphere) ApplyRotation(p v3.Vec) []v3.Vec {
	return []v3.Vec{s.rotate.MulPosition(p)}
}

// World maps a cube-space point to world space through scale, position
// and rotation, in that order.
func (s *Sphere) World(p v3.Vec) (v3.Vec, error) {
	pts := s.ApplyRotation(s.ApplyPosition(s.ApplyScale(p)))
	if len(pts) == 0 {
		return v3.Vec{}, ErrEmptyTransform
	}
	return pts[0], nil
}

// Matrix returns the combined cube-to-world matrix.
func (s *Sphere) Matrix() sdf.M44 {
	return s.rotate.Mul(s.translate).Mul(s.scale)
}

// IsConfigError reports whether err came from rejecting a configuration.
func IsConfigError(err error) bool {
	for _, target := range []error{
		ErrInvalidFaceType, ErrInvalidSize, ErrInvalidQuadsPerRow,
		ErrInvalidSubdivisions, ErrInvalidDistance, ErrTooManyLevels,
		ErrInvalidScale, ErrInvalidWeldTolerance,
		ErrNilObserver, ErrNilParent, ErrNilWeldMap,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
