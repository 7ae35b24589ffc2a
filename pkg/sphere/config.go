package sphere

import (
	"math"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Limits on the grid and quadtree. Beyond them the quad count overflows or
// exhausts memory long before a mesh is produced.
const (
	MaxQuadsPerRow          = 1 << 10
	MaxStartingSubdivisions = 10
	MaxSubdivisionLevels    = 24
)

// WeldFraction is the default weld distance as a fraction of the smallest
// leaf edge a configuration can produce.
const WeldFraction = 1e-3

// Config holds every construction parameter of a Sphere. All fields are
// fixed for the lifetime of the sphere.
type Config struct {
	// Size is the cube edge length in world units. The sphere radius is
	// Size/2.
	Size float64 `json:"size"`
	// QuadsPerRow is the root grid resolution of every face.
	QuadsPerRow int `json:"quads_per_row"`
	// StartingSubdivisions is the depth every quad splits to regardless of
	// observer distance.
	StartingSubdivisions int `json:"starting_subdivisions"`
	// SubdivisionDistances[d] is the largest observer distance at which a
	// quad of depth d still splits. Expected to be non-increasing.
	SubdivisionDistances []float64 `json:"subdivision_distances"`

	Position v3.Vec `json:"position"`
	Rotation v3.Vec `json:"rotation"` // Euler angles in degrees
	Scale    v3.Vec `json:"scale"`

	// WeldTolerance is the weld map merge distance in cube space. Zero
	// selects a distance proportional to the smallest leaf edge; see
	// WeldDistance.
	WeldTolerance float64 `json:"weld_tolerance"`
	// Parallel builds the six faces concurrently. Topology is unchanged but
	// vertex numbering depends on scheduling.
	Parallel bool `json:"parallel"`
}

// DefaultConfig returns a single-quad-per-face unit-scale configuration of
// the given size. Callers fill in subdivision settings.
func DefaultConfig(size float64) Config {
	return Config{
		Size:        size,
		QuadsPerRow: 1,
		Scale:       v3.Vec{X: 1, Y: 1, Z: 1},
	}
}

// MaxDepth returns the deepest level any quad can reach under c.
func (c Config) MaxDepth() int {
	return max(c.StartingSubdivisions, len(c.SubdivisionDistances))
}

// MinLeafEdge returns the cube-space edge length of a quad at MaxDepth.
func (c Config) MinLeafEdge() float64 {
	if c.QuadsPerRow < 1 {
		return 0
	}
	return math.Ldexp(c.Size/float64(c.QuadsPerRow), -c.MaxDepth())
}

// WeldDistance returns the weld tolerance a sphere built from c uses: the
// explicit WeldTolerance when positive, otherwise WeldFraction of the
// smallest leaf edge.
func (c Config) WeldDistance() float64 {
	if c.WeldTolerance > 0 {
		return c.WeldTolerance
	}
	return c.MinLeafEdge() * WeldFraction
}
