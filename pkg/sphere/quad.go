package sphere

import (
	"fmt"
	"math"

	"github.com/chazu/quadsphere/pkg/flatarray"
	"github.com/chazu/quadsphere/pkg/weld"
	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// QuadKind distinguishes a face's root quads from quads created by
// subdivision.
type QuadKind int

const (
	Root  QuadKind = iota // member of a face's fixed grid
	Child                 // created by splitting a parent
)

func (k QuadKind) String() string {
	switch k {
	case Root:
		return "root"
	case Child:
		return "child"
	default:
		return fmt.Sprintf("QuadKind(%d)", int(k))
	}
}

// Quad is a quadtree node covering a square patch of a cube face. A leaf
// registers its four projected corners in the weld map and contributes two
// triangles; an inner node delegates to its four children.
type Quad struct {
	face                 *Face
	depth                int
	parent               *Quad
	kind                 QuadKind
	index                int
	size                 float64
	startingSubdivisions int
	distances            []float64
	weld                 *weld.Map
	origin               v3.Vec // cube-space corner at the lowest column and row

	children  []*Quad // nil for leaves; 2x2 in flatarray order otherwise
	triangles []int
	uvs       []v2.Vec // parallel to triangles, in this face's atlas cell
}

func newQuad(face *Face, depth int, parent *Quad, kind QuadKind, index int, size float64,
	startingSubdivisions int, distances []float64, m *weld.Map, origin v3.Vec) (*Quad, error) {

	q := &Quad{
		face:                 face,
		depth:                depth,
		parent:               parent,
		kind:                 kind,
		index:                index,
		size:                 size,
		startingSubdivisions: startingSubdivisions,
		distances:            distances,
		weld:                 m,
		origin:               origin,
	}
	split, err := q.shouldSplit()
	if err != nil {
		return nil, err
	}
	if split {
		err = q.split()
	} else {
		q.generate()
	}
	return q, err
}

// Face returns the face the quad belongs to.
func (q *Quad) Face() *Face { return q.face }

// Depth returns the number of splits between the quad and its root.
func (q *Quad) Depth() int { return q.depth }

// Parent returns the quad this one was split from, or nil for a root.
func (q *Quad) Parent() *Quad { return q.parent }

// Kind reports whether q is a root or a child.
func (q *Quad) Kind() QuadKind { return q.kind }

// Index returns the quad's position among its siblings.
func (q *Quad) Index() int { return q.index }

// Size returns the quad's edge length in cube space.
func (q *Quad) Size() float64 { return q.size }

// Origin returns the quad's cube-space corner.
func (q *Quad) Origin() v3.Vec { return q.origin }

// IsLeaf reports whether q has no children.
func (q *Quad) IsLeaf() bool { return q.children == nil }

// Children returns a copy of the quad's children, nil for a leaf.
func (q *Quad) Children() []*Quad {
	if q.children == nil {
		return nil
	}
	out := make([]*Quad, len(q.children))
	copy(out, q.children)
	return out
}

// Leaves returns the number of leaf quads in this subtree.
func (q *Quad) Leaves() int {
	if q.IsLeaf() {
		return 1
	}
	n := 0
	for _, c := range q.children {
		n += c.Leaves()
	}
	return n
}

// Triangles returns the vertex indices of this subtree's triangles,
// children in index order.
func (q *Quad) Triangles() []int {
	if q.IsLeaf() {
		out := make([]int, len(q.triangles))
		copy(out, q.triangles)
		return out
	}
	var tris []int
	for _, c := range q.children {
		tris = append(tris, c.Triangles()...)
	}
	return tris
}

// TriangleUVs returns the atlas coordinate of every corner listed by
// Triangles, in the same order. A vertex on a seam appears with a
// different UV on each face that uses it.
func (q *Quad) TriangleUVs() []v2.Vec {
	if q.IsLeaf() {
		out := make([]v2.Vec, len(q.uvs))
		copy(out, q.uvs)
		return out
	}
	var uvs []v2.Vec
	for _, c := range q.children {
		uvs = append(uvs, c.TriangleUVs()...)
	}
	return uvs
}

// corner returns the cube-space point at fractions (s, t) of the quad
// along the face's right and up axes.
func (q *Quad) corner(s, t float64) v3.Vec {
	return q.origin.
		Add(q.face.frame.right.MulScalar(q.size * s)).
		Add(q.face.frame.up.MulScalar(q.size * t))
}

// Centre returns the quad's centre projected onto the sphere.
func (q *Quad) Centre() v3.Vec {
	return project(q.corner(0.5, 0.5), q.face.size/2)
}

// DistanceToObserver returns the distance from the observer's current
// position to the quad's world-space centre.
func (q *Quad) DistanceToObserver() (float64, error) {
	centre, err := q.face.toWorld(q.Centre())
	if err != nil {
		return 0, err
	}
	return q.face.observer.Position().Sub(centre).Length(), nil
}

func (q *Quad) shouldSplit() (bool, error) {
	if q.depth < q.startingSubdivisions {
		return true, nil
	}
	if q.depth >= len(q.distances) {
		return false, nil
	}
	d, err := q.DistanceToObserver()
	if err != nil {
		return false, err
	}
	return d <= q.distances[q.depth], nil
}

func (q *Quad) split() error {
	half := q.size / 2
	children := make([]*Quad, 4)
	for row := 0; row < 2; row++ {
		for col := 0; col < 2; col++ {
			index := flatarray.Index(row, col, 2)
			origin := q.corner(float64(col)/2, float64(row)/2)
			c, err := newQuad(q.face, q.depth+1, q, Child, index, half,
				q.startingSubdivisions, q.distances, q.weld, origin)
			if err != nil {
				return err
			}
			children[index] = c
		}
	}
	q.children = children
	q.triangles = nil
	q.uvs = nil
	return nil
}

// generate registers the leaf's corners and emits two counter-clockwise
// triangles (seen from outside the sphere).
func (q *Quad) generate() {
	radius := q.face.size / 2
	var idx [4]int
	var uv [4]v2.Vec
	for i, st := range [4][2]float64{{0, 0}, {1, 0}, {1, 1}, {0, 1}} {
		p := q.corner(st[0], st[1])
		idx[i] = q.weld.Add(project(p, radius))
		uv[i] = q.face.uvAt(p)
	}
	q.triangles = []int{
		idx[0], idx[1], idx[2],
		idx[0], idx[2], idx[3],
	}
	q.uvs = []v2.Vec{
		uv[0], uv[1], uv[2],
		uv[0], uv[2], uv[3],
	}
}

// update splits a leaf that now qualifies and collapses a subtree that no
// longer does. Collapsed vertices stay in the weld map unreferenced.
func (q *Quad) update() error {
	split, err := q.shouldSplit()
	if err != nil {
		return err
	}
	switch {
	case split && q.IsLeaf():
		return q.split()
	case !split && !q.IsLeaf():
		q.children = nil
		q.generate()
		return nil
	case split:
		for _, c := range q.children {
			if err := c.update(); err != nil {
				return err
			}
		}
	}
	return nil
}

// project maps a point on the cube of half-extent radius onto the sphere of
// that radius. The mapping spreads vertices more evenly than plain
// normalisation and is symmetric in the axes, so points on an edge shared
// by two faces land on the same sphere position.
func project(p v3.Vec, radius float64) v3.Vec {
	x, y, z := p.X/radius, p.Y/radius, p.Z/radius
	x2, y2, z2 := x*x, y*y, z*z
	return v3.Vec{
		X: x * math.Sqrt(1-y2/2-z2/2+y2*z2/3),
		Y: y * math.Sqrt(1-z2/2-x2/2+z2*x2/3),
		Z: z * math.Sqrt(1-x2/2-y2/2+x2*y2/3),
	}.MulScalar(radius)
}
