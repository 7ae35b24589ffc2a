package sphere

import (
	"fmt"

	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// FaceType identifies one of the six cube faces.
type FaceType int

const (
	ZPosFront  FaceType = iota // +Z
	ZNegBack                   // -Z
	XNegLeft                   // -X
	XPosRight                  // +X
	YPosTop                    // +Y
	YNegBottom                 // -Y
)

// UVCellSize is the edge length of one face's cell in the texture atlas.
const UVCellSize = 0.25

// FaceTypes returns all six face types in sphere construction order.
func FaceTypes() []FaceType {
	return []FaceType{ZPosFront, ZNegBack, XNegLeft, XPosRight, YPosTop, YNegBottom}
}

// Valid reports whether t is one of the six face types.
func (t FaceType) Valid() bool {
	return t >= ZPosFront && t <= YNegBottom
}

func (t FaceType) String() string {
	switch t {
	case ZPosFront:
		return "front"
	case ZNegBack:
		return "back"
	case XNegLeft:
		return "left"
	case XPosRight:
		return "right"
	case YPosTop:
		return "top"
	case YNegBottom:
		return "bottom"
	default:
		return fmt.Sprintf("FaceType(%d)", int(t))
	}
}

// ParseFaceType converts a face name as produced by String back to a
// FaceType.
func ParseFaceType(name string) (FaceType, error) {
	for _, t := range FaceTypes() {
		if t.String() == name {
			return t, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidFaceType, name)
}

// ---------------------------------------------------------------------------
// Cube unwrap tables
//
// frame and uvOffset encode the same unwrap convention and must change
// together. Columns run along right, rows along up, and right x up is the
// outward normal so every face winds counter-clockwise seen from outside.
// ---------------------------------------------------------------------------

// frame is a face's orthonormal basis in cube space.
type frame struct {
	normal v3.Vec // outward
	right  v3.Vec // column direction
	up     v3.Vec // row direction
}

var (
	axisX = v3.Vec{X: 1}
	axisY = v3.Vec{Y: 1}
	axisZ = v3.Vec{Z: 1}
)

func (t FaceType) frame() frame {
	switch t {
	case ZPosFront:
		return frame{normal: axisZ, right: axisX, up: axisY}
	case ZNegBack:
		return frame{normal: axisZ.Neg(), right: axisX.Neg(), up: axisY}
	case XNegLeft:
		return frame{normal: axisX.Neg(), right: axisZ, up: axisY}
	case XPosRight:
		return frame{normal: axisX, right: axisZ.Neg(), up: axisY}
	case YPosTop:
		return frame{normal: axisY, right: axisX.Neg(), up: axisZ}
	case YNegBottom:
		return frame{normal: axisY.Neg(), right: axisX, up: axisZ}
	}
	panic(fmt.Sprintf("sphere: unhandled face type %d", int(t)))
}

func (t FaceType) uvOffset() v2.Vec {
	switch t {
	case ZPosFront:
		return v2.Vec{X: 0.25, Y: 0.25}
	case ZNegBack:
		return v2.Vec{X: 0.75, Y: 0.25}
	case XNegLeft:
		return v2.Vec{X: 0.5, Y: 0.25}
	case XPosRight:
		return v2.Vec{X: 0, Y: 0.25}
	case YPosTop:
		return v2.Vec{X: 0.25, Y: 0.5}
	case YNegBottom:
		return v2.Vec{X: 0.25, Y: 0}
	}
	panic(fmt.Sprintf("sphere: unhandled face type %d", int(t)))
}

// Normal returns the unit outward normal of the face.
func (t FaceType) Normal() v3.Vec { return t.frame().normal }

// Right returns the unit direction in which grid columns advance.
func (t FaceType) Right() v3.Vec { return t.frame().right }

// Up returns the unit direction in which grid rows advance.
func (t FaceType) Up() v3.Vec { return t.frame().up }

// UVOffset returns the lower-left corner of the face's atlas cell.
func (t FaceType) UVOffset() v2.Vec { return t.uvOffset() }
