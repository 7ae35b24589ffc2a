package sphere

import (
	"fmt"
	"sync"

	"github.com/chazu/quadsphere/pkg/flatarray"
	"github.com/chazu/quadsphere/pkg/weld"
	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Transformer converts cube-space points to world space. A Sphere is the
// usual implementation; faces only ever read through it.
//
// The three steps are always composed as rotation(position(scale(p))).
// ApplyRotation returns at least one point and the first is authoritative.
type Transformer interface {
	ApplyScale(p v3.Vec) v3.Vec
	ApplyPosition(p v3.Vec) v3.Vec
	ApplyRotation(p v3.Vec) []v3.Vec
}

// Face is one of the six cube faces of a sphere. It owns a fixed
// QuadsPerRow x QuadsPerRow grid of root quads stored in row-major order.
type Face struct {
	parent               Transformer
	faceType             FaceType
	frame                frame
	size                 float64
	observer             Observer
	quadsPerRow          int
	startingSubdivisions int
	distances            []float64
	weld                 *weld.Map

	centreOnce sync.Once
	centre     v3.Vec

	quads []*Quad
}

// NewFace builds a face and all of its root quads. Root quads subdivide
// immediately against the observer's current position.
func NewFace(parent Transformer, t FaceType, size float64, observer Observer,
	quadsPerRow, startingSubdivisions int, distances []float64, m *weld.Map) (*Face, error) {

	switch {
	case parent == nil:
		return nil, ErrNilParent
	case !t.Valid():
		return nil, fmt.Errorf("%w: %d", ErrInvalidFaceType, int(t))
	case observer == nil:
		return nil, ErrNilObserver
	case m == nil:
		return nil, ErrNilWeldMap
	}
	if errs := validateSize(size); len(errs) > 0 {
		return nil, errs[0]
	}
	if errs := validateQuadsPerRow(quadsPerRow); len(errs) > 0 {
		return nil, errs[0]
	}
	for _, v := range validateSubdivisions(startingSubdivisions, distances) {
		if v.Severity == SeverityError {
			return nil, v
		}
	}

	f := &Face{
		parent:               parent,
		faceType:             t,
		frame:                t.frame(),
		size:                 size,
		observer:             observer,
		quadsPerRow:          quadsPerRow,
		startingSubdivisions: startingSubdivisions,
		distances:            distances,
		weld:                 m,
		quads:                make([]*Quad, quadsPerRow*quadsPerRow),
	}

	step := f.QuadSize()
	for row := 0; row < quadsPerRow; row++ {
		for col := 0; col < quadsPerRow; col++ {
			index := flatarray.Index(row, col, quadsPerRow)
			q, err := newQuad(f, 0, nil, Root, 0, step, startingSubdivisions, distances, m, f.rootOrigin(row, col))
			if err != nil {
				return nil, fmt.Errorf("face %s: root quad (%d,%d): %w", t, row, col, err)
			}
			f.quads[index] = q
		}
	}

	Logger().Debug("face built",
		"face", t.String(),
		"roots", len(f.quads),
		"leaves", f.Leaves(),
	)
	return f, nil
}

// rootOrigin returns the cube-space corner of the root quad at (row, col).
// The normal axis is fixed at +size/2 along the face normal; the row term
// is always -size/2 + step*row along up and the column term runs along the
// face's right axis, whose sign differs per face.
func (f *Face) rootOrigin(row, col int) v3.Vec {
	half := f.size / 2
	step := f.QuadSize()
	return f.frame.normal.MulScalar(half).
		Add(f.frame.right.MulScalar(-half + step*float64(col))).
		Add(f.frame.up.MulScalar(-half + step*float64(row)))
}

// FaceType returns the face's orientation.
func (f *Face) FaceType() FaceType { return f.faceType }

// Size returns the cube edge length.
func (f *Face) Size() float64 { return f.size }

// QuadsPerRow returns the root grid resolution.
func (f *Face) QuadsPerRow() int { return f.quadsPerRow }

// QuadSize returns the edge length of a root quad.
func (f *Face) QuadSize() float64 { return f.size / float64(f.quadsPerRow) }

// Parent returns the transformer that owns this face.
func (f *Face) Parent() Transformer { return f.parent }

// Observer returns the face's position source.
func (f *Face) Observer() Observer { return f.observer }

// Quads returns the root quads in row-major order. The slice is a copy;
// the quads themselves are shared.
func (f *Face) Quads() []*Quad {
	out := make([]*Quad, len(f.quads))
	copy(out, f.quads)
	return out
}

// Quad returns the root quad at (row, col).
func (f *Face) Quad(row, col int) *Quad {
	return f.quads[flatarray.Index(row, col, f.quadsPerRow)]
}

// UVOffset returns the face's cell in the shared texture atlas.
func (f *Face) UVOffset() v2.Vec { return f.faceType.uvOffset() }

// Centre returns the face centre in cube space. It is computed once.
func (f *Face) Centre() v3.Vec {
	f.centreOnce.Do(func() {
		f.centre = f.frame.normal.MulScalar(f.size / 2)
	})
	return f.centre
}

// toWorld runs p through the parent's scale, position and rotation steps.
func (f *Face) toWorld(p v3.Vec) (v3.Vec, error) {
	pts := f.parent.ApplyRotation(f.parent.ApplyPosition(f.parent.ApplyScale(p)))
	if len(pts) == 0 {
		return v3.Vec{}, ErrEmptyTransform
	}
	return pts[0], nil
}

// DistanceToObserver returns the straight-line distance from
// observerPosition to the world-space face centre.
func (f *Face) DistanceToObserver(observerPosition v3.Vec) (float64, error) {
	centre, err := f.toWorld(f.Centre())
	if err != nil {
		return 0, fmt.Errorf("face %s: %w", f.faceType, err)
	}
	return observerPosition.Sub(centre).Length(), nil
}

// Triangles returns the vertex indices of every triangle on the face,
// root quads in row-major order.
func (f *Face) Triangles() []int {
	var tris []int
	for _, q := range f.quads {
		tris = append(tris, q.Triangles()...)
	}
	return tris
}

// TriangleUVs returns the atlas coordinate of every corner listed by
// Triangles, in the same order. All of them lie in the face's own cell.
func (f *Face) TriangleUVs() []v2.Vec {
	var uvs []v2.Vec
	for _, q := range f.quads {
		uvs = append(uvs, q.TriangleUVs()...)
	}
	return uvs
}

// Leaves returns the number of leaf quads across the face.
func (f *Face) Leaves() int {
	n := 0
	for _, q := range f.quads {
		n += q.Leaves()
	}
	return n
}

// Update re-evaluates every root quad against the observer's current
// position, splitting and merging as needed.
func (f *Face) Update() error {
	for i, q := range f.quads {
		if err := q.update(); err != nil {
			row, col := flatarray.RowCol(i, f.quadsPerRow)
			return fmt.Errorf("face %s: root quad (%d,%d): %w", f.faceType, row, col, err)
		}
	}
	return nil
}

// faceCoords maps a cube-space point on this face to its column and row
// fractions in [0,1].
func (f *Face) faceCoords(p v3.Vec) (s, t float64) {
	half := f.size / 2
	s = (p.Dot(f.frame.right) + half) / f.size
	t = (p.Dot(f.frame.up) + half) / f.size
	return s, t
}

// uvAt returns the atlas coordinate of a cube-space point on this face.
func (f *Face) uvAt(p v3.Vec) v2.Vec {
	s, t := f.faceCoords(p)
	return f.UVOffset().Add(v2.Vec{X: s, Y: t}.MulScalar(UVCellSize))
}
