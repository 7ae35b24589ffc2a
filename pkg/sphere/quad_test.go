package sphere

import (
	"testing"

	"github.com/chazu/quadsphere/pkg/weld"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

func TestStartingSubdivisions(t *testing.T) {
	tests := []struct {
		starting   int
		wantLeaves int // per root quad
	}{
		{0, 1},
		{1, 4},
		{2, 16},
		{3, 64},
	}
	for _, tt := range tests {
		m := weld.New(0)
		f, err := NewFace(identity{}, YPosTop, 8, farAway, 2, tt.starting, nil, m)
		if err != nil {
			t.Fatal(err)
		}
		for i, q := range f.Quads() {
			if got := q.Leaves(); got != tt.wantLeaves {
				t.Errorf("starting=%d root %d: %d leaves, want %d", tt.starting, i, got, tt.wantLeaves)
			}
		}
		// A face split k times is a (2*2^k)^2 grid with (2*2^k+1)^2 vertices.
		side := 2 << tt.starting
		if got, want := m.Len(), (side+1)*(side+1); got != want {
			t.Errorf("starting=%d: %d welded vertices, want %d", tt.starting, got, want)
		}
	}
}

func TestChildQuads(t *testing.T) {
	f, err := NewFace(identity{}, ZNegBack, 8, farAway, 1, 1, nil, weld.New(0))
	if err != nil {
		t.Fatal(err)
	}
	root := f.Quad(0, 0)
	if root.IsLeaf() {
		t.Fatal("root should have split")
	}
	children := root.Children()
	if len(children) != 4 {
		t.Fatalf("%d children, want 4", len(children))
	}
	fr := ZNegBack.frame()
	for i, c := range children {
		if c.Kind() != Child || c.Depth() != 1 || c.Parent() != root || c.Index() != i {
			t.Errorf("child %d: kind=%s depth=%d index=%d", i, c.Kind(), c.Depth(), c.Index())
		}
		if c.Size() != 4 {
			t.Errorf("child %d: size %v, want 4", i, c.Size())
		}
		if c.Face() != f {
			t.Errorf("child %d: wrong face", i)
		}
		// Child (row, col) = (i/2, i%2) sits at the parent origin offset by
		// half a quad per step.
		want := root.Origin().
			Add(fr.right.MulScalar(4 * float64(i%2))).
			Add(fr.up.MulScalar(4 * float64(i/2)))
		if !vecApproxEqual(c.Origin(), want) {
			t.Errorf("child %d: origin %v, want %v", i, c.Origin(), want)
		}
	}
	children[0] = nil
	if root.Children()[0] == nil {
		t.Error("mutating Children() result changed the quad")
	}
}

func TestDistanceDrivenSubdivision(t *testing.T) {
	// Observer hovering just above one corner of the front face.
	obs := NewPointObserver(v3.Vec{X: 4, Y: 4, Z: 8})
	f, err := NewFace(identity{}, ZPosFront, 10, obs, 2, 0, []float64{6, 3}, weld.New(0))
	if err != nil {
		t.Fatal(err)
	}
	near := f.Quad(1, 1) // +X +Y corner
	far := f.Quad(0, 0)
	if near.IsLeaf() {
		t.Error("quad under the observer should have split")
	}
	if !far.IsLeaf() {
		t.Error("quad on the opposite corner should not have split")
	}
	if near.Leaves() <= far.Leaves() {
		t.Errorf("near quad has %d leaves, far quad %d", near.Leaves(), far.Leaves())
	}
}

func TestUpdateSplitsAndMerges(t *testing.T) {
	obs := NewPointObserver(v3.Vec{Z: 1000})
	m := weld.New(0)
	f, err := NewFace(identity{}, ZPosFront, 10, obs, 2, 0, []float64{8, 6, 4}, m)
	if err != nil {
		t.Fatal(err)
	}
	if f.Leaves() != 4 {
		t.Fatalf("far observer: %d leaves, want 4", f.Leaves())
	}

	obs.MoveTo(v3.Vec{Z: 6})
	if err := f.Update(); err != nil {
		t.Fatal(err)
	}
	nearLeaves := f.Leaves()
	if nearLeaves <= 4 {
		t.Fatalf("close observer: %d leaves, want more than 4", nearLeaves)
	}
	for _, idx := range f.Triangles() {
		if idx >= m.Len() {
			t.Fatalf("index %d outside weld map of %d after split", idx, m.Len())
		}
	}

	before := m.Len()
	obs.MoveTo(v3.Vec{Z: 1000})
	if err := f.Update(); err != nil {
		t.Fatal(err)
	}
	if f.Leaves() != 4 {
		t.Errorf("after moving away: %d leaves, want 4", f.Leaves())
	}
	// Root corners were registered while split, so merging adds nothing.
	if m.Len() != before {
		t.Errorf("merge grew weld map from %d to %d", before, m.Len())
	}

	// Moving back reproduces the same subdivision.
	obs.MoveTo(v3.Vec{Z: 6})
	if err := f.Update(); err != nil {
		t.Fatal(err)
	}
	if f.Leaves() != nearLeaves {
		t.Errorf("after returning: %d leaves, want %d", f.Leaves(), nearLeaves)
	}
	if m.Len() != before {
		t.Errorf("re-split grew weld map from %d to %d", before, m.Len())
	}
}

func TestAdjacentFacesWeldSharedEdge(t *testing.T) {
	m := weld.New(0)
	for _, ft := range []FaceType{ZPosFront, XPosRight} {
		if _, err := NewFace(identity{}, ft, 10, farAway, 1, 0, nil, m); err != nil {
			t.Fatal(err)
		}
	}
	// Two quads of four corners sharing the +X+Z edge.
	if m.Len() != 6 {
		t.Errorf("%d welded vertices, want 6", m.Len())
	}
}

func TestProjectFixesFaceCentres(t *testing.T) {
	for _, ft := range FaceTypes() {
		c := ft.Normal().MulScalar(5)
		if got := project(c, 5); !vecApproxEqual(got, c) {
			t.Errorf("%s: project(%v) = %v", ft, c, got)
		}
	}
}

func TestQuadKindString(t *testing.T) {
	for k, want := range map[QuadKind]string{Root: "root", Child: "child", QuadKind(7): "QuadKind(7)"} {
		if got := k.String(); got != want {
			t.Errorf("%d.String() = %q, want %q", int(k), got, want)
		}
	}
}
