// Package weld implements the vertex weld map shared by every face and quad
// of a sphere. Positions that coincide within a tolerance resolve to the
// same vertex index, so independently generated quads that share an edge or
// corner reference one vertex instead of two.
//
// A Map is safe for concurrent use. All registration goes through a single
// mutex, which is what lets two goroutines racing to register the same
// boundary vertex agree on one index.
package weld

import (
	"math"
	"sync"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

// DefaultTolerance is the weld distance used when New is given a
// non-positive tolerance.
const DefaultTolerance = 1e-6

// cell is a quantised position bucket.
type cell [3]int64

// Map deduplicates vertex positions and hands out stable indices.
type Map struct {
	mu        sync.Mutex
	tolerance float64
	buckets   map[cell][]int
	positions []v3.Vec
}

// New returns an empty Map that merges positions closer than tolerance.
func New(tolerance float64) *Map {
	if tolerance <= 0 || math.IsNaN(tolerance) {
		tolerance = DefaultTolerance
	}
	return &Map{
		tolerance: tolerance,
		buckets:   make(map[cell][]int),
	}
}

// Tolerance returns the weld distance.
func (m *Map) Tolerance() float64 {
	return m.tolerance
}

// Add registers a vertex and returns its index. If a vertex within the
// weld tolerance already exists its index is returned.
func (m *Map) Add(p v3.Vec) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	home := m.cellOf(p)
	if idx, ok := m.find(home, p); ok {
		return idx
	}

	idx := len(m.positions)
	m.positions = append(m.positions, p)
	m.buckets[home] = append(m.buckets[home], idx)
	return idx
}

// Lookup returns the index of a registered vertex within tolerance of p.
func (m *Map) Lookup(p v3.Vec) (int, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.find(m.cellOf(p), p)
}

// Len returns the number of distinct vertices registered.
func (m *Map) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.positions)
}

// Position returns the position of vertex i.
func (m *Map) Position(i int) v3.Vec {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.positions[i]
}

// Positions returns a copy of all registered positions in index order.
func (m *Map) Positions() []v3.Vec {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]v3.Vec, len(m.positions))
	copy(out, m.positions)
	return out
}

// Reset drops every registered vertex. Indices handed out before Reset are
// invalid afterwards.
func (m *Map) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.buckets = make(map[cell][]int)
	m.positions = nil
}

func (m *Map) cellOf(p v3.Vec) cell {
	return cell{
		int64(math.Floor(p.X / m.tolerance)),
		int64(math.Floor(p.Y / m.tolerance)),
		int64(math.Floor(p.Z / m.tolerance)),
	}
}

// find scans the home bucket and its 26 neighbours. A match can sit across
// a bucket boundary from p even when it is closer than the tolerance.
// Caller must hold m.mu.
func (m *Map) find(home cell, p v3.Vec) (int, bool) {
	best, bestDist := -1, m.tolerance
	for dx := int64(-1); dx <= 1; dx++ {
		for dy := int64(-1); dy <= 1; dy++ {
			for dz := int64(-1); dz <= 1; dz++ {
				c := cell{home[0] + dx, home[1] + dy, home[2] + dz}
				for _, idx := range m.buckets[c] {
					d := m.positions[idx].Sub(p).Length()
					if d < bestDist || (d == bestDist && (best < 0 || idx < best)) {
						best, bestDist = idx, d
					}
				}
			}
		}
	}
	return best, best >= 0
}
