package sphere

import "errors"

// Configuration errors. Any of these aborts construction of the whole
// sphere; a missing face would leave a hole in the mesh.
var (
	ErrInvalidFaceType      = errors.New("invalid face type")
	ErrInvalidSize          = errors.New("size must be positive and finite")
	ErrInvalidQuadsPerRow   = errors.New("quads per row out of range")
	ErrInvalidSubdivisions  = errors.New("starting subdivisions out of range")
	ErrInvalidDistance      = errors.New("subdivision distance must not be negative")
	ErrTooManyLevels        = errors.New("too many subdivision distance levels")
	ErrInvalidScale         = errors.New("scale components must be non-zero and finite")
	ErrInvalidWeldTolerance = errors.New("weld tolerance too large for the smallest leaf")
	ErrNilObserver          = errors.New("observer is nil")
	ErrNilParent            = errors.New("parent transformer is nil")
	ErrNilWeldMap           = errors.New("weld map is nil")
)

// ErrEmptyTransform is returned when the parent's rotation step yields no
// points. There is no meaningful distance in that case.
var ErrEmptyTransform = errors.New("rotation transform returned no points")
